package core

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

const notAdminMessage = "⚠️ You must be an administrator to run this command."

// WithAdminOnly rejects text commands that require an administrator when
// the author lacks the Administrator permission in the channel.
func WithAdminOnly() Middleware {
	return func(cmd Command) Command {
		return &wrappedCommand{
			Command: cmd,
			wrap: func(ctx interface{}) error {
				v, ok := ctx.(*MessageContext)
				if !ok || !cmd.RequireAdmin() {
					return cmd.Run(ctx)
				}

				admin, err := IsAdministrator(v.Session, v.Event.Author.ID, v.Event.ChannelID)
				if err != nil {
					return fmt.Errorf("failed to get user permissions: %w", err)
				}
				if !admin {
					return Reply(v, notAdminMessage)
				}
				return cmd.Run(ctx)
			},
		}
	}
}

// IsAdministrator reports whether userID holds Administrator in channelID.
func IsAdministrator(s Session, userID, channelID string) (bool, error) {
	perms, err := s.UserChannelPermissions(userID, channelID)
	if err != nil {
		return false, err
	}
	return perms&discordgo.PermissionAdministrator != 0, nil
}
