package voice

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// DiscordGateway implements Gateway on a discordgo session.
type DiscordGateway struct {
	dg *discordgo.Session
}

// NewDiscordGateway wraps an open session.
func NewDiscordGateway(dg *discordgo.Session) *DiscordGateway {
	return &DiscordGateway{dg: dg}
}

// Channel resolves a channel from state, falling back to REST.
func (g *DiscordGateway) Channel(ctx context.Context, channelID string) (*discordgo.Channel, error) {
	if ch, err := g.dg.State.Channel(channelID); err == nil {
		return ch, nil
	}
	return g.dg.Channel(channelID, discordgo.WithContext(ctx))
}

// JoinVoice joins self-deafened. The join is abandoned when ctx ends first;
// a connection that completes afterwards is closed.
func (g *DiscordGateway) JoinVoice(ctx context.Context, guildID, channelID string) (Conn, error) {
	type result struct {
		vc  *discordgo.VoiceConnection
		err error
	}
	done := make(chan result, 1)

	go func() {
		vc, err := g.dg.ChannelVoiceJoin(guildID, channelID, false, true)
		done <- result{vc, err}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			return nil, fmt.Errorf("failed to join voice channel: %w", r.err)
		}
		return &discordConn{vc: r.vc}, nil
	case <-ctx.Done():
		go func() {
			if r := <-done; r.err == nil && r.vc != nil {
				_ = r.vc.Disconnect()
			}
		}()
		return nil, fmt.Errorf("failed to join voice channel: %w", ctx.Err())
	}
}

type voiceStatePatch struct {
	ChannelID string `json:"channel_id"`
	Suppress  bool   `json:"suppress"`
}

// Unsuppress clears the bot's own stage suppression when it is set.
func (g *DiscordGateway) Unsuppress(ctx context.Context, guildID, channelID string) error {
	if g.dg.State.User != nil {
		vs, err := g.dg.State.VoiceState(guildID, g.dg.State.User.ID)
		if err == nil && !vs.Suppress {
			return nil
		}
	}

	endpoint := discordgo.EndpointGuild(guildID) + "/voice-states/@me"
	_, err := g.dg.RequestWithBucketID("PATCH", endpoint, voiceStatePatch{ChannelID: channelID}, endpoint, discordgo.WithContext(ctx))
	return err
}

// discordConn exposes a discordgo voice connection to the manager and the sink.
type discordConn struct {
	vc *discordgo.VoiceConnection
}

func (c *discordConn) Disconnect() error       { return c.vc.Disconnect() }
func (c *discordConn) Speaking(b bool) error   { return c.vc.Speaking(b) }
func (c *discordConn) OpusSend() chan<- []byte { return c.vc.OpusSend }
