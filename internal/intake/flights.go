package intake

import (
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/gin-gonic/gin"
)

const (
	flightLocation = "Emirates Airlines (Unified) — Flight Operations"
	flightDisclaim = "_This is a virtual flight operated by Emirates Group Roblox. Not affiliated with, sponsored by or endorsed by Emirates or the Emirates Group._"
	checkInLead    = 20 * time.Minute
)

// Dubai is fixed at UTC+4 with no daylight saving.
var Dubai = time.FixedZone("GST", 4*60*60)

var airportCode = regexp.MustCompile(`\(([A-Z0-9]{3,4})\)`)

// FlightRequest is the body of POST /api/flights/create.
type FlightRequest struct {
	Date         string `json:"date"`
	FlightNumber string `json:"flightNumber"`
	Airline      string `json:"airline"`
	Aircraft     string `json:"aircraft"`
	Simulator    string `json:"simulator"`
	From         string `json:"from"`
	To           string `json:"to"`
	DepTime      string `json:"depTime"`
	ArrTime      string `json:"arrTime"`
	Status       string `json:"status"`
	Gate         string `json:"gate"`
	Remarks      string `json:"remarks"`
}

func (s *Server) createFlight(c *gin.Context) {
	var req FlightRequest
	_ = c.ShouldBindJSON(&req)

	if req.Date == "" || req.FlightNumber == "" || req.From == "" || req.To == "" || req.DepTime == "" {
		fail(c, http.StatusBadRequest, "Missing required flight fields.")
		return
	}
	if !s.bot.Ready() {
		fail(c, http.StatusServiceUnavailable, "Bot is not ready to create events.")
		return
	}
	if s.cfg.UnifiedGuildID == "" {
		fail(c, http.StatusInternalServerError, "UNIFIED_GUILD_ID is not configured.")
		return
	}

	params, err := FlightEvent(req)
	if err != nil {
		s.log.Error().Err(err).Str("flight", req.FlightNumber).Msg("❌ Error creating scheduled event")
		fail(c, http.StatusInternalServerError, "Failed to create Discord event.")
		return
	}

	evt, err := s.bot.CreateScheduledEvent(c.Request.Context(), s.cfg.UnifiedGuildID, params)
	if err != nil {
		s.log.Error().Err(err).Str("flight", req.FlightNumber).Msg("❌ Error creating scheduled event")
		fail(c, http.StatusInternalServerError, "Failed to create Discord event.")
		return
	}

	s.log.Info().Msgf("📅 Created scheduled event %s (%s) for flight %s", evt.Name, evt.ID, req.FlightNumber)
	c.JSON(http.StatusOK, gin.H{"ok": true, "eventId": evt.ID})
}

// FlightEvent turns a flight into scheduled event parameters. The event
// opens with check-in and ends at departure.
func FlightEvent(req FlightRequest) (*discordgo.GuildScheduledEventParams, error) {
	dep, err := DubaiTime(req.Date, req.DepTime)
	if err != nil {
		return nil, fmt.Errorf("departure: %w", err)
	}
	checkIn := dep.Add(-checkInLead)

	return &discordgo.GuildScheduledEventParams{
		Name:               AirportCode(req.From) + " → " + AirportCode(req.To),
		Description:        flightDescription(req, checkIn),
		ScheduledStartTime: &checkIn,
		ScheduledEndTime:   &dep,
		PrivacyLevel:       discordgo.GuildScheduledEventPrivacyLevelGuildOnly,
		EntityType:         discordgo.GuildScheduledEventEntityTypeExternal,
		EntityMetadata:     &discordgo.GuildScheduledEventEntityMetadata{Location: flightLocation},
	}, nil
}

// DubaiTime parses a "2006-01-02" date and "15:04" clock time as Dubai local time.
func DubaiTime(date, clock string) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02 15:04", date+" "+clock, Dubai)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date/time %q %q: %w", date, clock, err)
	}
	return t, nil
}

// AirportCode extracts "DXB" from "Dubai (DXB)", or returns the name unchanged.
func AirportCode(place string) string {
	if m := airportCode.FindStringSubmatch(place); m != nil {
		return m[1]
	}
	return place
}

func flightDescription(req FlightRequest, checkIn time.Time) string {
	lines := []string{
		"**Flight:** " + req.FlightNumber,
		"**Airline:** " + or(req.Airline, "Emirates Airlines (Unified)"),
		"**Route:** " + req.From + " → " + req.To,
		"",
		fmt.Sprintf("**Departure (Dubai / GMT+4):** %s on %s", req.DepTime, req.Date),
		fmt.Sprintf("**Check-in opens:** %s (Dubai time)", checkIn.In(Dubai).Format("15:04")),
		fmt.Sprintf("**Estimated arrival:** %s (Dubai time)", or(req.ArrTime, "TBA")),
		"",
		"**Aircraft:** " + or(req.Aircraft, "TBA"),
		"**Simulator:** " + or(req.Simulator, "TBA"),
		"**Gate / stand:** " + or(req.Gate, "TBA"),
		"",
		"**Status:** " + or(req.Status, "Scheduled"),
	}
	if req.Remarks != "" {
		lines = append(lines, "", "**Remarks:** "+req.Remarks)
	}
	lines = append(lines, "", flightDisclaim)
	return strings.Join(lines, "\n")
}
