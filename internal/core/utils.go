package core

import (
	"github.com/bwmarrin/discordgo"
)

// Reply answers a text command in its channel, referencing the message.
func Reply(ctx *MessageContext, content string) error {
	_, err := ctx.Session.ChannelMessageSendReply(ctx.Event.ChannelID, content, ctx.Event.Reference())
	return err
}

// Send posts a complex message to the channel the command came from.
func Send(ctx *MessageContext, data *discordgo.MessageSend) error {
	_, err := ctx.Session.ChannelMessageSendComplex(ctx.Event.ChannelID, data)
	return err
}

func RespondEphemeral(s Session, i *discordgo.InteractionCreate, content string) error {
	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
}

// UpdateMessage replaces the message the component is attached to.
func UpdateMessage(s Session, i *discordgo.InteractionCreate, data *discordgo.InteractionResponseData) error {
	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: data,
	})
}
