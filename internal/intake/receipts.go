package intake

import (
	"fmt"
	"net/http"
	"time"

	"github.com/bwmarrin/discordgo"
	embed "github.com/clinet/discordgo-embed"
	"github.com/gin-gonic/gin"
)

const (
	receiptColor   = 0xd81e05
	bookingFooter  = "Emirates Group Roblox • Booking system"
	checkinFooter  = "Emirates Group Roblox • Online Check-in system"
	notSpecified   = "Not specified"
	bookingContent = "🧾 **Your Emirates Airlines (Unified) booking has been received.**\n\n" +
		"Please keep this reference safe — you will need it for online check-in."
	checkinContent = "🛄 **Your online check-in has been submitted.**\n\n" +
		"Please monitor your Discord for further instructions from our staff."
)

// BookingRequest is the body of POST /api/booking.
type BookingRequest struct {
	BookingRef       string `json:"bookingRef"`
	Simulator        string `json:"simulator"`
	Cabin            string `json:"cabin"`
	From             string `json:"from"`
	To               string `json:"to"`
	Date             string `json:"date"`
	TimeOfDay        string `json:"timeOfDay"`
	PaxCount         any    `json:"paxCount"`
	PrimaryDiscord   string `json:"primaryDiscord"`
	PrimaryDiscordID string `json:"primaryDiscordId"`
}

// CheckinRequest is the body of POST /api/checkin.
type CheckinRequest struct {
	BookingRef     string `json:"bookingRef"`
	Simulator      string `json:"simulator"`
	Cabin          string `json:"cabin"`
	From           string `json:"from"`
	To             string `json:"to"`
	Date           string `json:"date"`
	Roblox         string `json:"roblox"`
	DiscordUser    string `json:"discordUser"`
	DiscordID      string `json:"discordId"`
	SeatPreference string `json:"seatPreference"`
	Baggage        string `json:"baggage"`
	CheckinType    string `json:"checkinType"`
}

func (s *Server) booking(c *gin.Context) {
	var req BookingRequest
	// an unreadable body is treated as empty
	_ = c.ShouldBindJSON(&req)

	if req.BookingRef == "" || req.PrimaryDiscord == "" || req.PrimaryDiscordID == "" {
		fail(c, http.StatusBadRequest, "Missing bookingRef, primaryDiscord or primaryDiscordId")
		return
	}

	msg := &discordgo.MessageSend{
		Content: bookingContent,
		Embeds:  []*discordgo.MessageEmbed{BookingEmbed(req, s.now())},
	}
	if err := s.bot.DirectMessage(c.Request.Context(), req.PrimaryDiscordID, msg); err != nil {
		s.log.Error().Err(err).Str("user_id", req.PrimaryDiscordID).Msg("❌ Failed to DM booking receipt")
		fail(c, http.StatusInternalServerError, "Failed to send DM to primary contact.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (s *Server) checkin(c *gin.Context) {
	var req CheckinRequest
	_ = c.ShouldBindJSON(&req)

	if req.BookingRef == "" || req.Roblox == "" || req.DiscordUser == "" || req.DiscordID == "" {
		fail(c, http.StatusBadRequest, "Missing bookingRef, roblox, discordUser or discordId")
		return
	}

	msg := &discordgo.MessageSend{
		Content: checkinContent,
		Embeds:  []*discordgo.MessageEmbed{CheckinEmbed(req, s.now())},
	}
	if err := s.bot.DirectMessage(c.Request.Context(), req.DiscordID, msg); err != nil {
		s.log.Error().Err(err).Str("user_id", req.DiscordID).Msg("❌ Failed to DM check-in confirmation")
		fail(c, http.StatusInternalServerError, "Failed to send DM to passenger.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// BookingEmbed renders the booking receipt.
func BookingEmbed(req BookingRequest, now time.Time) *discordgo.MessageEmbed {
	e := embed.NewEmbed().
		SetTitle("Emirates Airlines (Unified) — Booking Confirmation").
		SetDescription("Thank you for creating a booking with **Emirates Airlines (Unified)**.\n\n" +
			"Your booking details are summarised below.").
		SetColor(receiptColor).
		SetFooter(bookingFooter)

	e.Fields = []*discordgo.MessageEmbedField{
		field("Booking reference", "`"+req.BookingRef+"`", true),
		field("Simulator", or(req.Simulator, notSpecified), true),
		field("Cabin", or(req.Cabin, notSpecified), true),
		field("Route", route(req.From, req.To), false),
		field("Preferred date / time", or(req.Date, notSpecified)+" • "+or(req.TimeOfDay, "Any"), false),
		field("Passengers", paxCount(req.PaxCount), true),
		field("Primary contact", fmt.Sprintf("Discord: `%s`\nID: `%s`", req.PrimaryDiscord, req.PrimaryDiscordID), false),
	}
	e.Timestamp = now.UTC().Format(time.RFC3339)
	return e.MessageEmbed
}

// CheckinEmbed renders the online check-in confirmation.
func CheckinEmbed(req CheckinRequest, now time.Time) *discordgo.MessageEmbed {
	e := embed.NewEmbed().
		SetTitle("Emirates Airlines (Unified) — Online Check-in Confirmed").
		SetDescription(fmt.Sprintf("Your online check-in request for booking `%s` has been received.\n\n", req.BookingRef) +
			"A member of our team will validate your details and provide gate / server information on Discord.").
		SetColor(receiptColor).
		SetFooter(checkinFooter)

	e.Fields = []*discordgo.MessageEmbedField{
		field("Booking reference", "`"+req.BookingRef+"`", true),
		field("Simulator", or(req.Simulator, notSpecified), true),
		field("Cabin", or(req.Cabin, notSpecified), true),
		field("Route", route(req.From, req.To), false),
		field("Flight date", or(req.Date, notSpecified), true),
		field("Check-in type", or(req.CheckinType, "Standard"), true),
		field("Passenger", fmt.Sprintf("Roblox: `%s`\nDiscord: `%s`\nID: `%s`", req.Roblox, req.DiscordUser, req.DiscordID), false),
		field("Preferences", "Seat: "+or(req.SeatPreference, "Any available")+"\nBaggage: "+or(req.Baggage, notSpecified), false),
	}
	e.Timestamp = now.UTC().Format(time.RFC3339)
	return e.MessageEmbed
}

func field(name, value string, inline bool) *discordgo.MessageEmbedField {
	return &discordgo.MessageEmbedField{Name: name, Value: value, Inline: inline}
}

func or(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func route(from, to string) string {
	return or(from, "Unknown") + " → " + or(to, "Unknown")
}

// paxCount accepts a JSON number or string and defaults to one passenger.
func paxCount(v any) string {
	switch n := v.(type) {
	case nil:
		return "1"
	case float64:
		if n == 0 {
			return "1"
		}
		return fmt.Sprint(n)
	case string:
		return or(n, "1")
	case bool:
		if !n {
			return "1"
		}
	}
	return fmt.Sprint(v)
}
