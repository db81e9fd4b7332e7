package voice

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
)

type fakeConn struct {
	mu           sync.Mutex
	disconnected int
}

func (c *fakeConn) Disconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.disconnected++
	return nil
}

type fakeGateway struct {
	channels      map[string]*discordgo.Channel
	joinErr       error
	joinDelay     time.Duration
	joinGate      chan struct{}
	joinStarted   chan struct{}
	unsuppressErr error

	unsuppressed int
	joined       []*fakeConn
}

func (g *fakeGateway) Channel(_ context.Context, channelID string) (*discordgo.Channel, error) {
	ch, ok := g.channels[channelID]
	if !ok {
		return nil, errors.New("unknown channel")
	}
	return ch, nil
}

func (g *fakeGateway) JoinVoice(ctx context.Context, _, _ string) (Conn, error) {
	if g.joinGate != nil {
		close(g.joinStarted)
		<-g.joinGate
	}
	if g.joinDelay > 0 {
		select {
		case <-time.After(g.joinDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if g.joinErr != nil {
		return nil, g.joinErr
	}
	c := &fakeConn{}
	g.joined = append(g.joined, c)
	return c, nil
}

func (g *fakeGateway) Unsuppress(context.Context, string, string) error {
	g.unsuppressed++
	return g.unsuppressErr
}

type fakeBinder struct {
	bound   int
	unbound int
	err     error
}

func (b *fakeBinder) Bind(Conn) error {
	if b.err != nil {
		return b.err
	}
	b.bound++
	return nil
}

func (b *fakeBinder) Unbind() { b.unbound++ }

func newGateway() *fakeGateway {
	return &fakeGateway{channels: map[string]*discordgo.Channel{
		"stage": {ID: "stage", Name: "IFE Stage", Type: discordgo.ChannelTypeGuildStageVoice},
		"voice": {ID: "voice", Name: "Cabin", Type: discordgo.ChannelTypeGuildVoice},
		"text":  {ID: "text", Name: "general", Type: discordgo.ChannelTypeGuildText},
	}}
}

func TestConnectStage(t *testing.T) {
	gw := newGateway()
	sink := &fakeBinder{}
	m := NewManager(gw, sink, time.Second)

	if m.IsConnected() {
		t.Fatal("new manager should be disconnected")
	}

	if err := m.Connect(context.Background(), "guild", "stage"); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	if !m.IsConnected() || m.Status() != StatusConnected {
		t.Errorf("status = %s, expected Connected", m.Status())
	}
	if sink.bound != 1 {
		t.Errorf("sink bound %d times, expected 1", sink.bound)
	}
	if gw.unsuppressed != 1 {
		t.Errorf("unsuppress called %d times, expected 1", gw.unsuppressed)
	}
	if got := m.Target(); got.GuildID != "guild" || got.ChannelID != "stage" {
		t.Errorf("Target() = %+v", got)
	}
}

func TestConnectVoiceSkipsUnsuppress(t *testing.T) {
	gw := newGateway()
	m := NewManager(gw, &fakeBinder{}, time.Second)

	if err := m.Connect(context.Background(), "guild", "voice"); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	if gw.unsuppressed != 0 {
		t.Errorf("unsuppress called for a plain voice channel")
	}
}

func TestUnsuppressFailureIsNotFatal(t *testing.T) {
	gw := newGateway()
	gw.unsuppressErr = errors.New("missing permissions")
	m := NewManager(gw, &fakeBinder{}, time.Second)

	if err := m.Connect(context.Background(), "guild", "stage"); err != nil {
		t.Fatalf("Connect() error = %v, expected unsuppress failure to be swallowed", err)
	}
	if !m.IsConnected() {
		t.Error("expected Connected")
	}
}

func TestConnectErrors(t *testing.T) {
	tests := []struct {
		name      string
		guildID   string
		channelID string
		setup     func(*fakeGateway, *fakeBinder)
		want      error
	}{
		{"missing ids", "", "stage", nil, ErrMissingTarget},
		{"unknown channel", "guild", "nope", nil, ErrInvalidChannel},
		{"text channel", "guild", "text", nil, ErrInvalidChannel},
		{"join failure", "guild", "stage", func(g *fakeGateway, _ *fakeBinder) { g.joinErr = errors.New("udp handshake") }, ErrConnectionFailed},
		{"bind failure", "guild", "stage", func(_ *fakeGateway, b *fakeBinder) { b.err = errors.New("no opus") }, ErrConnectionFailed},
	}

	for _, test := range tests {
		gw := newGateway()
		sink := &fakeBinder{}
		if test.setup != nil {
			test.setup(gw, sink)
		}
		m := NewManager(gw, sink, time.Second)

		err := m.Connect(context.Background(), test.guildID, test.channelID)
		if !errors.Is(err, test.want) {
			t.Errorf("%s: error = %v, expected %v", test.name, err, test.want)
		}
		if m.IsConnected() {
			t.Errorf("%s: should not be connected", test.name)
		}
	}
}

func TestBindFailureReleasesConnection(t *testing.T) {
	gw := newGateway()
	m := NewManager(gw, &fakeBinder{err: errors.New("no opus")}, time.Second)

	_ = m.Connect(context.Background(), "guild", "stage")
	if len(gw.joined) != 1 || gw.joined[0].disconnected != 1 {
		t.Error("connection should be disconnected when binding fails")
	}
	if m.Status() != StatusFailed {
		t.Errorf("status = %s, expected Failed", m.Status())
	}
}

func TestConnectTimeout(t *testing.T) {
	gw := newGateway()
	gw.joinDelay = time.Second
	m := NewManager(gw, &fakeBinder{}, 20*time.Millisecond)

	start := time.Now()
	err := m.Connect(context.Background(), "guild", "stage")
	if !errors.Is(err, ErrConnectionFailed) || !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("error = %v, expected connection failure from deadline", err)
	}
	if time.Since(start) > 500*time.Millisecond {
		t.Error("Connect did not fail fast")
	}
}

func TestReconnectReleasesPreviousSession(t *testing.T) {
	gw := newGateway()
	sink := &fakeBinder{}
	m := NewManager(gw, sink, time.Second)

	if err := m.Connect(context.Background(), "guild", "stage"); err != nil {
		t.Fatal(err)
	}
	if err := m.Connect(context.Background(), "guild", "voice"); err != nil {
		t.Fatal(err)
	}

	if len(gw.joined) != 2 {
		t.Fatalf("joined %d times, expected 2", len(gw.joined))
	}
	if gw.joined[0].disconnected != 1 {
		t.Error("first session was not disconnected before reconnecting")
	}
	if gw.joined[1].disconnected != 0 {
		t.Error("current session should stay open")
	}
	if sink.unbound != 1 {
		t.Errorf("sink unbound %d times, expected 1", sink.unbound)
	}
}

func TestDisconnect(t *testing.T) {
	gw := newGateway()
	sink := &fakeBinder{}
	m := NewManager(gw, sink, time.Second)

	m.Disconnect()
	if m.Status() != StatusDisconnected || sink.unbound != 0 {
		t.Error("Disconnect on an idle manager should be a no-op")
	}

	_ = m.Connect(context.Background(), "guild", "stage")
	m.Disconnect()
	if m.IsConnected() {
		t.Error("still connected after Disconnect")
	}
	if gw.joined[0].disconnected != 1 || sink.unbound != 1 {
		t.Error("connection not released")
	}
}

func TestConnectDoesNotBlockReaders(t *testing.T) {
	gw := newGateway()
	gw.joinGate = make(chan struct{})
	gw.joinStarted = make(chan struct{})
	sink := &fakeBinder{}
	m := NewManager(gw, sink, time.Second)

	done := make(chan error, 1)
	go func() { done <- m.Connect(context.Background(), "guild", "stage") }()
	<-gw.joinStarted

	status := make(chan Status, 1)
	go func() { status <- m.Status() }()
	select {
	case got := <-status:
		if got != StatusConnecting {
			t.Errorf("status during join = %s, expected Connecting", got)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("Status() blocked behind Connect")
	}
	if m.IsConnected() {
		t.Error("connected before the join finished")
	}

	close(gw.joinGate)
	if err := <-done; err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	if !m.IsConnected() || sink.bound != 1 {
		t.Errorf("status = %s, bound = %d", m.Status(), sink.bound)
	}
}

func TestDisconnectSupersedesPendingJoin(t *testing.T) {
	gw := newGateway()
	gw.joinGate = make(chan struct{})
	gw.joinStarted = make(chan struct{})
	sink := &fakeBinder{}
	m := NewManager(gw, sink, time.Second)

	done := make(chan error, 1)
	go func() { done <- m.Connect(context.Background(), "guild", "stage") }()
	<-gw.joinStarted

	m.Disconnect()
	close(gw.joinGate)

	if err := <-done; !errors.Is(err, ErrSuperseded) {
		t.Errorf("Connect() error = %v, expected ErrSuperseded", err)
	}
	if m.Status() != StatusDisconnected || sink.bound != 0 {
		t.Errorf("status = %s, bound = %d", m.Status(), sink.bound)
	}
	if len(gw.joined) != 1 || gw.joined[0].disconnected != 1 {
		t.Error("abandoned connection was not closed")
	}
}

func TestStatusEmoji(t *testing.T) {
	for _, s := range []Status{StatusDisconnected, StatusConnecting, StatusConnected, StatusFailed} {
		if s.StringEmoji() == "" {
			t.Errorf("Status(%s) has no emoji", s)
		}
	}
}
