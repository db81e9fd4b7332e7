package info

import (
	"github.com/egroblox/ifebot/internal/core"
)

const egrMessage = "✈️ **Emirates Group Roblox**\n" +
	"Official organization services and systems.\n\n" +
	"**Website:** https://emiratesgrouproblox.link\n" +
	"**Status:** This bot is operated by the Emirates Group Roblox Technology Systems Division."

type EgrCommand struct{}

func (c *EgrCommand) Name() string        { return "egr" }
func (c *EgrCommand) Description() string { return "About Emirates Group Roblox" }
func (c *EgrCommand) Aliases() []string   { return []string{} }
func (c *EgrCommand) Category() string    { return "ℹ️ Information" }
func (c *EgrCommand) RequireAdmin() bool  { return false }

func (c *EgrCommand) Run(ctx interface{}) error {
	context, ok := ctx.(*core.MessageContext)
	if !ok {
		return nil
	}
	return core.Reply(context, egrMessage)
}
