package ife

import (
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"

	"github.com/egroblox/ifebot/internal/core"
	"github.com/egroblox/ifebot/internal/logging"
	"github.com/egroblox/ifebot/internal/music/player"
)

const (
	msgNotConnected  = "⚠️ I am not connected to the Stage channel. Please restart the bot or contact IT."
	msgNoActiveTrack = "⚠️ No track is currently selected. Please pick one from the menu."
	msgUnknownTrack  = "⚠️ That audio is not in the IFE catalog. Please pick one from the menu."
	msgFailed        = "❌ The IFE audio system could not complete that action. Please try again or contact IT."
)

// Controller is the playback surface the dashboard drives.
type Controller interface {
	SelectTrack(trackID string) error
	TogglePause() (player.Action, error)
	Stop() error
	RenderStatus() player.DashboardView
}

// IFECommand posts the IFE control panel and handles its components.
type IFECommand struct {
	Player           Controller
	ControlChannelID string

	log zerolog.Logger
}

func New(p Controller, controlChannelID string) *IFECommand {
	return &IFECommand{
		Player:           p,
		ControlChannelID: controlChannelID,
		log:              logging.For("ife"),
	}
}

func (c *IFECommand) Name() string            { return "setupife" }
func (c *IFECommand) Description() string     { return "Post the IFE audio control panel" }
func (c *IFECommand) Aliases() []string       { return []string{} }
func (c *IFECommand) Category() string        { return "🎵 IFE" }
func (c *IFECommand) RequireAdmin() bool      { return true }
func (c *IFECommand) ComponentPrefix() string { return "ife_" }

func (c *IFECommand) Run(ctx interface{}) error {
	switch v := ctx.(type) {
	case *core.MessageContext:
		return c.setup(v)
	case *core.ComponentContext:
		return c.component(v)
	}
	return nil
}

func (c *IFECommand) setup(ctx *core.MessageContext) error {
	if c.ControlChannelID == "" {
		return core.Reply(ctx, "⚠️ CONTROL_CHANNEL_ID is not configured in `.env`.")
	}
	if ctx.Event.ChannelID != c.ControlChannelID {
		return core.Reply(ctx, fmt.Sprintf("⚠️ Please run this command in <#%s>.", c.ControlChannelID))
	}

	emb, components := DashboardMessage(c.Player.RenderStatus())
	if err := core.Send(ctx, &discordgo.MessageSend{
		Embeds:     []*discordgo.MessageEmbed{emb},
		Components: components,
	}); err != nil {
		return fmt.Errorf("failed to send IFE control panel: %w", err)
	}

	c.log.Info().Str("channel", ctx.Event.ChannelID).Msg("IFE Control Panel sent")
	return nil
}

func (c *IFECommand) component(ctx *core.ComponentContext) error {
	var err error

	switch id := ctx.CustomID(); id {
	case SelectID:
		values := ctx.Values()
		if len(values) == 0 {
			return core.RespondEphemeral(ctx.Session, ctx.Event, msgUnknownTrack)
		}
		err = c.Player.SelectTrack(values[0])
	case PlayPauseID:
		_, err = c.Player.TogglePause()
	case StopID:
		err = c.Player.Stop()
	default:
		return fmt.Errorf("unknown IFE component %q", id)
	}

	if err != nil {
		return core.RespondEphemeral(ctx.Session, ctx.Event, c.errorMessage(err))
	}

	emb, components := DashboardMessage(c.Player.RenderStatus())
	return core.UpdateMessage(ctx.Session, ctx.Event, &discordgo.InteractionResponseData{
		Embeds:     []*discordgo.MessageEmbed{emb},
		Components: components,
	})
}

func (c *IFECommand) errorMessage(err error) string {
	switch {
	case errors.Is(err, player.ErrNotConnected):
		return msgNotConnected
	case errors.Is(err, player.ErrNoActiveTrack):
		return msgNoActiveTrack
	case errors.Is(err, player.ErrUnknownTrack):
		return msgUnknownTrack
	default:
		c.log.Error().Err(err).Msg("IFE playback command failed")
		return msgFailed
	}
}
