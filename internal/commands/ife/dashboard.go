package ife

import (
	"github.com/bwmarrin/discordgo"
	embed "github.com/clinet/discordgo-embed"

	"github.com/egroblox/ifebot/internal/music/player"
)

const (
	SelectID    = "ife_select"
	PlayPauseID = "ife_play_pause"
	StopID      = "ife_stop"

	selectPlaceholder = "Select in-flight audio to play..."
)

// DashboardMessage turns a rendered dashboard into an embed and its two
// component rows: the track menu and the playback controls.
func DashboardMessage(view player.DashboardView) (*discordgo.MessageEmbed, []discordgo.MessageComponent) {
	embedMsg := embed.NewEmbed().
		SetTitle(view.Title).
		SetDescription(view.Description).
		SetColor(view.Color).
		SetFooter(view.Footer)

	options := make([]discordgo.SelectMenuOption, 0, len(view.Options))
	for _, opt := range view.Options {
		o := discordgo.SelectMenuOption{
			Label:       opt.Label,
			Description: opt.Description,
			Value:       opt.Value,
		}
		// marked, not preselected, so picking it again still restarts it
		if opt.Default {
			o.Emoji = &discordgo.ComponentEmoji{Name: "🎵"}
		}
		options = append(options, o)
	}

	components := []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.SelectMenu{
				MenuType:    discordgo.StringSelectMenu,
				CustomID:    SelectID,
				Placeholder: selectPlaceholder,
				Options:     options,
			},
		}},
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.Button{
				CustomID: PlayPauseID,
				Label:    view.Toggle.Label,
				Style:    discordgo.PrimaryButton,
				Emoji:    &discordgo.ComponentEmoji{Name: view.Toggle.Emoji},
			},
			discordgo.Button{
				CustomID: StopID,
				Label:    view.Stop.Label,
				Style:    discordgo.DangerButton,
				Emoji:    &discordgo.ComponentEmoji{Name: view.Stop.Emoji},
			},
		}},
	}

	return embedMsg.MessageEmbed, components
}
