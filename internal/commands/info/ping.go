package info

import (
	"github.com/egroblox/ifebot/internal/core"
)

type PingCommand struct{}

func (c *PingCommand) Name() string        { return "ping" }
func (c *PingCommand) Description() string { return "Check that the bot is online" }
func (c *PingCommand) Aliases() []string   { return []string{} }
func (c *PingCommand) Category() string    { return "🛠️ Maintenance" }
func (c *PingCommand) RequireAdmin() bool  { return false }

func (c *PingCommand) Run(ctx interface{}) error {
	context, ok := ctx.(*core.MessageContext)
	if !ok {
		return nil
	}
	return core.Reply(context, "🛡️ **Emirates Group Roblox Bot Online**\nAll core systems are operational.")
}
