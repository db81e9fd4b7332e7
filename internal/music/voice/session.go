// Package voice owns the single outbound voice connection used for playback.
package voice

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"

	"github.com/egroblox/ifebot/internal/logging"
)

var (
	ErrInvalidChannel   = errors.New("target is not a voice or stage channel")
	ErrConnectionFailed = errors.New("voice connection failed")
	ErrMissingTarget    = errors.New("guild and channel ids are required")
	ErrSuperseded       = errors.New("voice connection superseded")
)

type Status string

const (
	StatusDisconnected Status = "Disconnected"
	StatusConnecting   Status = "Connecting"
	StatusConnected    Status = "Connected"
	StatusFailed       Status = "Failed"
)

func (status Status) StringEmoji() string {
	m := map[Status]string{
		StatusDisconnected: "🔌",
		StatusConnecting:   "⏳",
		StatusConnected:    "🎧",
		StatusFailed:       "❌",
	}
	return m[status]
}

// Conn is a live voice connection owned by the Manager.
type Conn interface {
	Disconnect() error
}

// Gateway is the chat platform side of voice: channel lookup, joining and
// stage speaker control.
type Gateway interface {
	Channel(ctx context.Context, channelID string) (*discordgo.Channel, error)
	JoinVoice(ctx context.Context, guildID, channelID string) (Conn, error)
	Unsuppress(ctx context.Context, guildID, channelID string) error
}

// Binder receives the connection once it is established.
type Binder interface {
	Bind(conn Conn) error
	Unbind()
}

// Target names the configured destination.
type Target struct {
	GuildID   string
	ChannelID string
}

// Manager holds at most one live voice session.
type Manager struct {
	mu      sync.Mutex
	gw      Gateway
	sink    Binder
	timeout time.Duration
	status  Status
	target  Target
	conn    Conn
	gen     uint64 // bumped by every Connect and Disconnect
	log     zerolog.Logger
}

// NewManager returns a disconnected manager. timeout bounds each connect.
func NewManager(gw Gateway, sink Binder, timeout time.Duration) *Manager {
	return &Manager{
		gw:      gw,
		sink:    sink,
		timeout: timeout,
		status:  StatusDisconnected,
		log:     logging.For("voice"),
	}
}

// Connect joins the target channel and binds the sink to it. A session that
// is already held is torn down first. The lock is not held while joining, so
// status reads see Connecting; a later Connect or Disconnect supersedes it.
func (m *Manager) Connect(ctx context.Context, guildID, channelID string) error {
	if guildID == "" || channelID == "" {
		return ErrMissingTarget
	}

	m.mu.Lock()
	m.releaseLocked()
	m.gen++
	gen := m.gen
	m.target = Target{GuildID: guildID, ChannelID: channelID}
	m.status = StatusConnecting
	m.mu.Unlock()

	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	ch, conn, joinErr := m.join(ctx, guildID, channelID)

	m.mu.Lock()
	if gen != m.gen {
		m.mu.Unlock()
		if conn != nil {
			_ = conn.Disconnect()
		}
		return fmt.Errorf("%w: %s", ErrSuperseded, channelID)
	}
	if joinErr != nil {
		m.status = StatusFailed
		m.mu.Unlock()
		return joinErr
	}
	if err := m.sink.Bind(conn); err != nil {
		m.status = StatusFailed
		m.mu.Unlock()
		_ = conn.Disconnect()
		return fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}
	m.conn = conn
	m.status = StatusConnected
	m.mu.Unlock()

	m.log.Info().Str("guild", guildID).Str("channel", ch.Name).Msg("Connected to stage/voice channel")

	if ch.Type == discordgo.ChannelTypeGuildStageVoice {
		if err := m.gw.Unsuppress(ctx, guildID, channelID); err != nil {
			m.log.Warn().Err(err).Msg("Could not unsuppress in Stage channel")
		} else {
			m.log.Info().Msg("Bot unsuppressed in Stage channel")
		}
	}
	return nil
}

// join validates the channel and opens the voice connection.
func (m *Manager) join(ctx context.Context, guildID, channelID string) (*discordgo.Channel, Conn, error) {
	ch, err := m.gw.Channel(ctx, channelID)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s: %w", ErrInvalidChannel, channelID, err)
	}
	if ch.Type != discordgo.ChannelTypeGuildVoice && ch.Type != discordgo.ChannelTypeGuildStageVoice {
		m.log.Warn().Str("channel", channelID).Msg("Configured stage channel is not a Stage/Voice channel")
		return nil, nil, fmt.Errorf("%w: %s", ErrInvalidChannel, channelID)
	}

	conn, err := m.gw.JoinVoice(ctx, guildID, channelID)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}
	return ch, conn, nil
}

// Disconnect releases the held connection, if any, and abandons a join in
// progress.
func (m *Manager) Disconnect() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.releaseLocked()
	m.gen++
	m.status = StatusDisconnected
}

func (m *Manager) releaseLocked() {
	if m.conn == nil {
		return
	}
	m.sink.Unbind()
	if err := m.conn.Disconnect(); err != nil {
		m.log.Warn().Err(err).Msg("Failed to disconnect previous voice session")
	}
	m.conn = nil
}

// IsConnected reports whether a session is live.
func (m *Manager) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status == StatusConnected
}

// Status returns the current lifecycle status.
func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// Target returns the last requested destination.
func (m *Manager) Target() Target {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.target
}
