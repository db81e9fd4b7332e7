package verify

import (
	"fmt"
	"slices"

	"github.com/bwmarrin/discordgo"
	embed "github.com/clinet/discordgo-embed"
	"github.com/rs/zerolog"

	"github.com/egroblox/ifebot/internal/core"
	"github.com/egroblox/ifebot/internal/logging"
)

const (
	ButtonID   = "unified_verify_button"
	SupportURL = "https://emiratesgrouproblox.link/support"
	EmbedColor = 0xd81e05
)

const (
	msgNotConfigured   = "⚠️ Verification is not fully configured. Please contact a server administrator."
	msgOutsideGuild    = "⚠️ Please use this button inside the server."
	msgWrongGuild      = "⚠️ This verification button is not valid for this server."
	msgAlreadyVerified = "✅ You are already verified for Emirates Airlines (Unified)."
	msgVerified        = "✅ You have been verified and granted access to Emirates Airlines (Unified) channels.\n\nWelcome onboard."
	msgGrantFailed     = "❌ I was unable to grant your verification role. Please contact a member of staff."
)

// VerifyCommand posts the Unified verification panel and grants the
// verified role from its button.
type VerifyCommand struct {
	GuildID string
	RoleID  string

	log zerolog.Logger
}

func New(guildID, roleID string) *VerifyCommand {
	return &VerifyCommand{GuildID: guildID, RoleID: roleID, log: logging.For("verify")}
}

func (c *VerifyCommand) Name() string            { return "setupverify" }
func (c *VerifyCommand) Description() string     { return "Post the Unified verification panel" }
func (c *VerifyCommand) Aliases() []string       { return []string{} }
func (c *VerifyCommand) Category() string        { return "🛡️ Verification" }
func (c *VerifyCommand) RequireAdmin() bool      { return true }
func (c *VerifyCommand) ComponentPrefix() string { return ButtonID }

func (c *VerifyCommand) configured() bool {
	return c.GuildID != "" && c.RoleID != ""
}

func (c *VerifyCommand) Run(ctx interface{}) error {
	switch v := ctx.(type) {
	case *core.MessageContext:
		return c.setup(v)
	case *core.ComponentContext:
		return c.verify(v)
	}
	return nil
}

func (c *VerifyCommand) setup(ctx *core.MessageContext) error {
	if !c.configured() {
		return core.Reply(ctx, "⚠️ Unified verification env vars are not configured in `.env`.")
	}
	if ctx.Event.GuildID != c.GuildID {
		return core.Reply(ctx, "⚠️ This command can only be used in the Emirates Airlines (Unified) server.")
	}

	if err := core.Send(ctx, &discordgo.MessageSend{
		Embeds:     []*discordgo.MessageEmbed{PanelEmbed()},
		Components: PanelComponents(),
	}); err != nil {
		return fmt.Errorf("failed to send verification panel: %w", err)
	}
	return nil
}

func (c *VerifyCommand) verify(ctx *core.ComponentContext) error {
	s, e := ctx.Session, ctx.Event

	if !c.configured() {
		return core.RespondEphemeral(s, e, msgNotConfigured)
	}
	if e.GuildID == "" {
		return core.RespondEphemeral(s, e, msgOutsideGuild)
	}
	if e.GuildID != c.GuildID {
		return core.RespondEphemeral(s, e, msgWrongGuild)
	}

	user := ctx.User()
	if user == nil {
		return core.RespondEphemeral(s, e, msgOutsideGuild)
	}

	member, err := s.GuildMember(e.GuildID, user.ID)
	if err != nil {
		return fmt.Errorf("failed to fetch member %s: %w", user.ID, err)
	}
	if slices.Contains(member.Roles, c.RoleID) {
		return core.RespondEphemeral(s, e, msgAlreadyVerified)
	}

	if err := s.GuildMemberRoleAdd(e.GuildID, user.ID, c.RoleID); err != nil {
		c.log.Error().Err(err).Str("user", user.ID).Msg("Error adding verification role")
		return core.RespondEphemeral(s, e, msgGrantFailed)
	}

	c.log.Info().Str("user", user.Username).Msg("Member verified")
	return core.RespondEphemeral(s, e, msgVerified)
}

func PanelEmbed() *discordgo.MessageEmbed {
	return embed.NewEmbed().
		SetTitle("Emirates Airlines (Unified) — Verification").
		SetDescription("Welcome to the **Emirates Airlines (Unified)** Discord server.\n\n" +
			"To access passenger and operations channels, you must confirm that you understand and accept our community guidelines and virtual operations policy.\n\n" +
			"Click **Verify** to continue. If you need help, click **Contact Support**.").
		SetColor(EmbedColor).
		SetFooter("Emirates Group Roblox • This is a virtual experience, not affiliated with Emirates or the Emirates Group.").
		MessageEmbed
}

func PanelComponents() []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.Button{
				CustomID: ButtonID,
				Label:    "Verify",
				Style:    discordgo.SuccessButton,
				Emoji:    &discordgo.ComponentEmoji{Name: "✅"},
			},
			discordgo.Button{
				Label: "Contact Support",
				Style: discordgo.LinkButton,
				URL:   SupportURL,
			},
		}},
	}
}
