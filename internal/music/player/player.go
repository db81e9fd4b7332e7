package player

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/egroblox/ifebot/internal/catalog"
	"github.com/egroblox/ifebot/internal/logging"
	"github.com/egroblox/ifebot/internal/music/stream"
)

type PlayerStatus string

const (
	StatusIdle    PlayerStatus = "Idle"
	StatusPlaying PlayerStatus = "Playing"
	StatusPaused  PlayerStatus = "Paused"
)

func (status PlayerStatus) StringEmoji() string {
	m := map[PlayerStatus]string{
		StatusIdle:    "⏹️",
		StatusPlaying: "▶️",
		StatusPaused:  "⏸️",
	}
	return m[status]
}

// Action is what TogglePause did.
type Action string

const (
	ActionPaused  Action = "paused"
	ActionResumed Action = "resumed"
)

var (
	ErrNotConnected        = errors.New("not connected to a voice session")
	ErrUnknownTrack        = errors.New("unknown track")
	ErrNoActiveTrack       = errors.New("no track is currently selected")
	ErrStreamCommandFailed = errors.New("stream command failed")
)

// Sink is the single audio output the controller commands.
type Sink interface {
	Play(locator string) error
	Pause() error
	Resume() error
	Stop() error
}

// Session reports whether the voice session is live.
type Session interface {
	IsConnected() bool
}

// State is a snapshot of the playback state.
type State struct {
	ActiveTrackID string
	Paused        bool
}

// Status derives the state machine position.
func (s State) Status() PlayerStatus {
	switch {
	case s.ActiveTrackID == "":
		return StatusIdle
	case s.Paused:
		return StatusPaused
	default:
		return StatusPlaying
	}
}

// Player is the playback controller: one active track, one paused flag,
// one sink. All operations are serialized.
type Player struct {
	mu      sync.Mutex
	catalog *catalog.Catalog
	session Session
	sink    Sink
	state   State
	log     zerolog.Logger
}

// New creates an idle Player.
func New(c *catalog.Catalog, session Session, sink Sink) *Player {
	return &Player{
		catalog: c,
		session: session,
		sink:    sink,
		log:     logging.For("player"),
	}
}

// SelectTrack starts trackID from the beginning, superseding whatever plays.
// Selecting the active track restarts it.
func (p *Player) SelectTrack(trackID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.session.IsConnected() {
		p.log.Warn().Msg("No voice connection; cannot play track")
		return ErrNotConnected
	}

	track, ok := p.catalog.Lookup(trackID)
	if !ok {
		p.log.Warn().Str("track", trackID).Msg("Tried to play unknown track")
		return fmt.Errorf("%w: %q", ErrUnknownTrack, trackID)
	}

	if err := p.sink.Play(track.Source); err != nil {
		return fmt.Errorf("%w: play %s: %w", ErrStreamCommandFailed, track.ID, err)
	}

	p.state = State{ActiveTrackID: track.ID}
	p.log.Info().Str("track", track.ID).Str("source", track.Source).Msgf("Now playing: %s", track.Label)
	return nil
}

// TogglePause flips between Playing and Paused and reports which way it went.
func (p *Player) TogglePause() (Action, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.session.IsConnected() {
		return "", ErrNotConnected
	}
	if p.state.ActiveTrackID == "" {
		return "", ErrNoActiveTrack
	}

	if p.state.Paused {
		if err := p.sink.Resume(); err != nil {
			return "", fmt.Errorf("%w: resume: %w", ErrStreamCommandFailed, err)
		}
		p.state.Paused = false
		return ActionResumed, nil
	}

	if err := p.sink.Pause(); err != nil {
		return "", fmt.Errorf("%w: pause: %w", ErrStreamCommandFailed, err)
	}
	p.state.Paused = true
	return ActionPaused, nil
}

// Stop halts the sink and returns to Idle from any state.
func (p *Player) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.session.IsConnected() {
		return ErrNotConnected
	}
	if err := p.sink.Stop(); err != nil {
		return fmt.Errorf("%w: stop: %w", ErrStreamCommandFailed, err)
	}
	p.state = State{}
	return nil
}

// State returns the current playback state.
func (p *Player) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Watch follows sink notifications until ctx ends. A finished track stays
// selected, as on the dashboard; losing the voice connection returns to Idle.
func (p *Player) Watch(ctx context.Context, events <-chan stream.Event) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case evt, ok := <-events:
			if !ok {
				return nil
			}
			p.handleEvent(evt)
		}
	}
}

func (p *Player) handleEvent(evt stream.Event) {
	if evt.Type == stream.EventUnbound {
		p.mu.Lock()
		p.state = State{}
		p.mu.Unlock()
		p.log.Info().Msg("Voice session released; playback reset")
		return
	}

	label := evt.Locator
	p.mu.Lock()
	if t, ok := p.catalog.Lookup(p.state.ActiveTrackID); ok && t.Source == evt.Locator {
		label = t.Label
	}
	p.mu.Unlock()

	switch evt.Type {
	case stream.EventIdle:
		p.log.Info().Msgf("Finished: %s", label)
	case stream.EventError:
		p.log.Error().Err(evt.Err).Msgf("Audio player error: %s", label)
	}
}
