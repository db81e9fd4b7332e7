package core

import (
	"time"

	"github.com/egroblox/ifebot/internal/logging"
)

// WithCommandLogger logs every command execution with its outcome.
func WithCommandLogger() Middleware {
	log := logging.For("commands")

	return func(cmd Command) Command {
		return &wrappedCommand{
			Command: cmd,
			wrap: func(ctx interface{}) error {
				start := time.Now()
				err := cmd.Run(ctx)

				evt := log.Info()
				if err != nil {
					evt = log.Warn().Err(err)
				}
				evt = evt.Str("command", cmd.Name()).Dur("took", time.Since(start))

				switch v := ctx.(type) {
				case *MessageContext:
					evt.Str("guild", v.Event.GuildID).
						Str("channel", v.Event.ChannelID).
						Str("user", v.Event.Author.Username).
						Msg("Message command")
				case *ComponentContext:
					user := v.User()
					username := ""
					if user != nil {
						username = user.Username
					}
					evt.Str("guild", v.Event.GuildID).
						Str("channel", v.Event.ChannelID).
						Str("user", username).
						Str("custom_id", v.CustomID()).
						Msg("Component interaction")
				default:
					evt.Msg("Command")
				}
				return err
			},
		}
	}
}
