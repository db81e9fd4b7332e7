package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/egroblox/ifebot/internal/logging"
	"github.com/egroblox/ifebot/internal/music/voice"
)

var (
	ErrNotBound     = errors.New("sink is not bound to a voice connection")
	ErrNotVoiceConn = errors.New("connection cannot carry opus audio")
)

type EventType string

const (
	EventIdle    EventType = "idle"
	EventError   EventType = "error"
	EventUnbound EventType = "unbound"
)

// Event reports the end of a playback, naturally or with an error, or the
// loss of the voice connection.
type Event struct {
	Type    EventType
	Locator string
	Err     error
}

// Output is the audio side of a voice connection.
type Output interface {
	Speaking(bool) error
	OpusSend() chan<- []byte
}

// Opener opens the byte stream behind a locator.
type Opener interface {
	Open(ctx context.Context, locator string) (io.ReadCloser, error)
}

// Sink plays exactly one source at a time into a bound voice connection.
// Starting a new source supersedes the current one.
type Sink struct {
	mu          sync.Mutex
	opener      Opener
	openTimeout time.Duration
	out         Output
	cur         *playback
	events      chan Event
	newEncoder  func() (Encoder, error)
	log         zerolog.Logger
}

// NewSink returns an unbound sink. openTimeout bounds opening and probing a
// source in Play; zero means no bound.
func NewSink(opener Opener, openTimeout time.Duration) *Sink {
	return &Sink{
		opener:      opener,
		openTimeout: openTimeout,
		events:      make(chan Event, 10), // buffered to reduce drops
		newEncoder:  NewOpusEncoder,
		log:         logging.For("sink"),
	}
}

// Events delivers idle and error notifications.
func (s *Sink) Events() <-chan Event {
	return s.events
}

// Bind attaches the sink to a voice connection.
func (s *Sink) Bind(conn voice.Conn) error {
	out, ok := conn.(Output)
	if !ok {
		return ErrNotVoiceConn
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.out = out
	return nil
}

// Unbind halts playback and detaches the sink. Listeners get EventUnbound.
func (s *Sink) Unbind() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.out == nil {
		return
	}
	s.stopLocked()
	s.out = nil
	s.emit(Event{Type: EventUnbound})
}

// Play opens locator and starts streaming it, replacing any current playback.
// If the new source cannot be opened the current playback is left untouched.
func (s *Sink) Play(locator string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.out == nil {
		return ErrNotBound
	}

	// the context outlives Play: remote bodies are read for the whole track
	ctx, cancel := context.WithCancel(context.Background())
	ts, err := s.open(ctx, cancel, locator)
	if err != nil {
		cancel()
		return err
	}
	enc, err := s.newEncoder()
	if err != nil {
		ts.Close()
		cancel()
		return err
	}

	s.stopLocked()

	pb, out := newPlayback(locator), s.out
	s.cur = pb
	go func() {
		defer cancel()
		s.run(pb, ts, enc, out)
	}()

	s.log.Debug().Str("locator", locator).Msg("Playback started")
	return nil
}

// open opens and probes locator, cancelling ctx if that takes longer than
// the open timeout.
func (s *Sink) open(ctx context.Context, cancel context.CancelFunc, locator string) (*TrackStream, error) {
	var timer *time.Timer
	if s.openTimeout > 0 {
		timer = time.AfterFunc(s.openTimeout, cancel)
	}

	var ts *TrackStream
	rc, err := s.opener.Open(ctx, locator)
	if err == nil {
		ts, err = Decode(rc, locator)
	}

	if timer != nil && !timer.Stop() {
		if ts != nil {
			ts.Close()
		}
		return nil, fmt.Errorf("open %s timed out after %s: %w", locator, s.openTimeout, context.DeadlineExceeded)
	}
	return ts, err
}

// Pause suspends the current playback. It is a no-op when nothing plays.
func (s *Sink) Pause() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cur != nil {
		s.cur.pause()
	}
	return nil
}

// Resume continues a paused playback. It is a no-op when nothing plays.
func (s *Sink) Resume() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cur != nil {
		s.cur.resume()
	}
	return nil
}

// Stop halts playback. Stopping an idle sink succeeds.
func (s *Sink) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
	return nil
}

func (s *Sink) stopLocked() {
	if s.cur == nil {
		return
	}
	s.cur.halt()
	<-s.cur.done
	s.cur = nil
}

func (s *Sink) run(pb *playback, ts *TrackStream, enc Encoder, out Output) {
	defer close(pb.done)
	defer ts.Close()

	if err := out.Speaking(true); err != nil {
		s.log.Warn().Err(err).Msg("Failed to set speaking state")
	}
	defer out.Speaking(false) //nolint:errcheck

	finished, err := stream(pb, newFrameReader(ts), enc, out.OpusSend())
	switch {
	case err != nil:
		s.emit(Event{Type: EventError, Locator: pb.locator, Err: err})
	case finished:
		s.emit(Event{Type: EventIdle, Locator: pb.locator})
	}
}

// stream copies encoded frames to dst until the source drains (finished=true)
// or the playback is halted.
func stream(pb *playback, frames *frameReader, enc Encoder, dst chan<- []byte) (bool, error) {
	for {
		if wait := pb.gate(); wait != nil {
			select {
			case <-pb.stop:
				return false, nil
			case <-wait:
			}
		}

		pcm, ok, err := frames.next()
		if err != nil {
			return false, fmt.Errorf("read error: %w", err)
		}
		if !ok {
			return true, nil
		}

		opus, err := enc.Encode(pcm, FrameSize, maxOpusBytes)
		if err != nil {
			return false, fmt.Errorf("encode error: %w", err)
		}

		select {
		case dst <- opus:
		case <-pb.stop:
			return false, nil
		}
	}
}

// emit safely sends a sink event
func (s *Sink) emit(evt Event) {
	select {
	case s.events <- evt:
	default:
		s.log.Warn().Str("event", string(evt.Type)).Msg("Sink event dropped (channel full)")
	}
}

type playback struct {
	locator string
	stop    chan struct{}
	done    chan struct{}

	mu      sync.Mutex
	paused  bool
	resumed chan struct{}
	once    sync.Once
}

func newPlayback(locator string) *playback {
	return &playback{
		locator: locator,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// gate returns a channel to wait on while paused, nil otherwise.
func (p *playback) gate() <-chan struct{} {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.paused {
		return nil
	}
	return p.resumed
}

func (p *playback) pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.paused {
		return
	}
	p.paused = true
	p.resumed = make(chan struct{})
}

func (p *playback) resume() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.paused {
		return
	}
	p.paused = false
	close(p.resumed)
}

func (p *playback) halt() {
	p.once.Do(func() { close(p.stop) })
}
