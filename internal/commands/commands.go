// Package commands wires the bot's text commands and component handlers
// into the core registry.
package commands

import (
	"github.com/egroblox/ifebot/internal/commands/ife"
	"github.com/egroblox/ifebot/internal/commands/info"
	"github.com/egroblox/ifebot/internal/commands/verify"
	"github.com/egroblox/ifebot/internal/config"
	"github.com/egroblox/ifebot/internal/core"
)

// Register adds every command, wrapped in the standard middleware chain.
func Register(cfg *config.Config, controller ife.Controller) {
	cmds := []core.Command{
		&info.PingCommand{},
		&info.EgrCommand{},
		ife.New(controller, cfg.ControlChannelID),
		verify.New(cfg.UnifiedGuildID, cfg.UnifiedVerifiedRoleID),
	}

	for _, cmd := range cmds {
		core.RegisterCommand(
			core.ApplyMiddlewares(
				cmd,
				core.WithAdminOnly(),
				core.WithGuildOnly(),
				core.WithCommandLogger(),
			),
		)
	}
}
