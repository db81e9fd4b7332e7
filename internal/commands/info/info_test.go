package info

import (
	"strings"
	"testing"

	"github.com/bwmarrin/discordgo"

	"github.com/egroblox/ifebot/internal/core"
	"github.com/egroblox/ifebot/internal/core/coretest"
)

func TestReplies(t *testing.T) {
	tests := []struct {
		cmd      core.Command
		contains string
	}{
		{&PingCommand{}, "All core systems are operational."},
		{&EgrCommand{}, "https://emiratesgrouproblox.link"},
	}

	for _, test := range tests {
		s := coretest.New()
		ctx := &core.MessageContext{
			Session: s,
			Event: &discordgo.MessageCreate{Message: &discordgo.Message{
				ID: "m1", GuildID: "g1", ChannelID: "c1", Author: &discordgo.User{ID: "u1"},
			}},
		}

		if err := test.cmd.Run(ctx); err != nil {
			t.Fatalf("%s: error = %v", test.cmd.Name(), err)
		}
		if len(s.Replies) != 1 || s.Replies[0].ChannelID != "c1" || !strings.Contains(s.Replies[0].Content, test.contains) {
			t.Errorf("%s: replies = %+v", test.cmd.Name(), s.Replies)
		}
	}
}
