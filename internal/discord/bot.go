package discord

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"

	"github.com/egroblox/ifebot/internal/config"
	"github.com/egroblox/ifebot/internal/core"
	"github.com/egroblox/ifebot/internal/logging"
	"github.com/egroblox/ifebot/pkg/retrylimit"
)

const unexpectedErrorMessage = "❌ An unexpected error occurred while handling this action. Please try again or contact IT."

const intents = discordgo.IntentsGuilds |
	discordgo.IntentsGuildMessages |
	discordgo.IntentsMessageContent |
	discordgo.IntentsGuildVoiceStates |
	discordgo.IntentsDirectMessages

// VoiceSession is the stage connection the bot establishes once ready.
type VoiceSession interface {
	Connect(ctx context.Context, guildID, channelID string) error
	Disconnect()
	IsConnected() bool
}

// Bot is the gateway side of the process: it routes text commands and
// component interactions and exposes messaging to the intake API.
type Bot struct {
	dg       *discordgo.Session
	cfg      *config.Config
	voice    VoiceSession
	outbound *retrylimit.AdaptiveLimiter
	ready    atomic.Bool
	joined   sync.Once
	ctx      context.Context
	log      zerolog.Logger
}

// NewSession creates a discordgo session with the intents the bot needs.
func NewSession(token string) (*discordgo.Session, error) {
	dg, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	dg.Identify.Intents = intents
	return dg, nil
}

// New creates a Bot on an unopened session.
func New(dg *discordgo.Session, cfg *config.Config, voice VoiceSession) *Bot {
	return &Bot{
		dg:       dg,
		cfg:      cfg,
		voice:    voice,
		outbound: retrylimit.NewAdaptiveLimiter(5, 1, 20, 1, 0.5),
		ctx:      context.Background(),
		log:      logging.For("discord"),
	}
}

// Run opens the gateway and blocks until ctx is done.
func (b *Bot) Run(ctx context.Context) error {
	b.ctx = ctx

	b.dg.AddHandler(b.onReady)
	b.dg.AddHandler(b.onMessageCreate)
	b.dg.AddHandler(b.onInteractionCreate)

	if err := b.dg.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}
	defer b.dg.Close()

	<-ctx.Done()
	b.log.Info().Msg("❎ Shutdown signal received. Cleaning up...")
	b.ready.Store(false)
	b.voice.Disconnect()
	return nil
}

// onReady marks the bot ready and joins the IFE stage when configured.
// READY repeats after every re-identify; the stage is joined on the first only.
func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	b.ready.Store(true)
	b.log.Info().Msgf("✅ Emirates Group Roblox Official Bot online as %s", r.User.String())

	if !b.cfg.IFEConfigured() {
		b.log.Info().Msg("GUILD_ID or STAGE_CHANNEL_ID not set; IFE stage auto-connect skipped")
		return
	}

	b.joined.Do(func() {
		go func() {
			if err := b.voice.Connect(b.ctx, b.cfg.GuildID, b.cfg.StageChannelID); err != nil {
				b.log.Error().Err(err).Msg("❌ Error connecting to stage")
			}
		}()
	})
}

// onMessageCreate routes prefixed guild messages to text commands
func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot || m.GuildID == "" {
		return
	}

	name, ok := core.ParseCommand(m.Content)
	if !ok {
		return
	}
	cmd, ok := core.GetCommand(name)
	if !ok {
		return
	}

	ctx := &core.MessageContext{Session: s, Event: m}
	if err := cmd.Run(ctx); err != nil {
		b.log.Error().Err(err).Str("command", name).Msg("Error running command")
	}
}

// onInteractionCreate routes message components to the command owning them
func (b *Bot) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionMessageComponent {
		b.log.Debug().Int("type", int(i.Type)).Msg("Ignoring interaction")
		return
	}

	customID := i.MessageComponentData().CustomID
	cmd, ok := core.FindComponent(customID)
	if !ok {
		b.log.Warn().Str("custom_id", customID).Msg("No matching component")
		return
	}

	ctx := &core.ComponentContext{Session: s, Event: i}
	if err := cmd.Run(ctx); err != nil {
		b.log.Error().Err(err).Str("custom_id", customID).Msg("🔴 Interaction handler error")
		if err := core.RespondEphemeral(s, i, unexpectedErrorMessage); err != nil {
			b.log.Debug().Err(err).Msg("Could not send error reply")
		}
	}
}

// Ready reports whether the gateway session is established.
func (b *Bot) Ready() bool {
	return b.ready.Load()
}

// VoiceConnected reports whether the IFE stage session is live.
func (b *Bot) VoiceConnected() bool {
	return b.voice.IsConnected()
}

// DirectMessage opens a DM channel with userID and sends msg to it.
// Overload and server errors are retried; closed DMs are not.
func (b *Bot) DirectMessage(ctx context.Context, userID string, msg *discordgo.MessageSend) error {
	cfg := retrylimit.DefaultRetryConfig()
	cfg.Status = restStatus

	return retrylimit.WithRetryConfig(ctx, func() error {
		ch, err := b.dg.UserChannelCreate(userID, discordgo.WithContext(ctx))
		if err != nil {
			return fmt.Errorf("failed to open DM with %s: %w", userID, err)
		}
		if _, err := b.dg.ChannelMessageSendComplex(ch.ID, msg, discordgo.WithContext(ctx)); err != nil {
			return fmt.Errorf("failed to DM %s: %w", userID, err)
		}
		return nil
	}, b.outbound, cfg)
}

// restStatus is the HTTP status of a failed REST call, or 0.
func restStatus(err error) int {
	var rest *discordgo.RESTError
	if errors.As(err, &rest) && rest.Response != nil {
		return rest.Response.StatusCode
	}
	return 0
}

// CreateScheduledEvent creates a guild scheduled event.
func (b *Bot) CreateScheduledEvent(ctx context.Context, guildID string, params *discordgo.GuildScheduledEventParams) (*discordgo.GuildScheduledEvent, error) {
	evt, err := b.dg.GuildScheduledEventCreate(guildID, params, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduled event: %w", err)
	}
	return evt, nil
}
