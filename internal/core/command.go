package core

import (
	"strings"

	"github.com/bwmarrin/discordgo"
)

// Prefix starts every text command.
const Prefix = "!"

type Command interface {
	Name() string
	Description() string
	Aliases() []string
	Category() string
	RequireAdmin() bool
	Run(ctx interface{}) error
}

// ComponentRouter is implemented by commands that own message components.
// Every custom id starting with the prefix is routed to the command.
type ComponentRouter interface {
	ComponentPrefix() string
}

// Session is the part of *discordgo.Session commands rely on.
type Session interface {
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageSendReply(channelID, content string, reference *discordgo.MessageReference, options ...discordgo.RequestOption) (*discordgo.Message, error)
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	UserChannelPermissions(userID, channelID string, fetchOptions ...discordgo.RequestOption) (int64, error)
	GuildMember(guildID, userID string, options ...discordgo.RequestOption) (*discordgo.Member, error)
	GuildMemberRoleAdd(guildID, userID, roleID string, options ...discordgo.RequestOption) error
}

// Contexts - what runtime hands you when executing a command

// MessageContext carries a prefixed text command.
type MessageContext struct {
	Session Session
	Event   *discordgo.MessageCreate
}

// ComponentContext carries a button press or select menu choice.
type ComponentContext struct {
	Session Session
	Event   *discordgo.InteractionCreate
}

// CustomID of the component that fired.
func (c *ComponentContext) CustomID() string {
	return c.Event.MessageComponentData().CustomID
}

// Values selected in a select menu.
func (c *ComponentContext) Values() []string {
	return c.Event.MessageComponentData().Values
}

// User behind the interaction, in a guild or a DM.
func (c *ComponentContext) User() *discordgo.User {
	if c.Event.Member != nil && c.Event.Member.User != nil {
		return c.Event.Member.User
	}
	return c.Event.User
}

// ParseCommand returns the name in a bare "!name" message. Commands take no
// arguments, so any trailing words mean the content is not a command.
func ParseCommand(content string) (name string, ok bool) {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, Prefix) {
		return "", false
	}
	fields := strings.Fields(strings.TrimPrefix(content, Prefix))
	if len(fields) != 1 {
		return "", false
	}
	return fields[0], true
}
