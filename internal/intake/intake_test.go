package intake

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/gin-gonic/gin"

	"github.com/egroblox/ifebot/internal/config"
)

type dm struct {
	userID string
	msg    *discordgo.MessageSend
}

type fakeBot struct {
	mu       sync.Mutex
	ready    bool
	voice    bool
	dmErr    error
	eventErr error
	dms      []dm
	events   []*discordgo.GuildScheduledEventParams
	guilds   []string
}

func (f *fakeBot) Ready() bool          { return f.ready }
func (f *fakeBot) VoiceConnected() bool { return f.voice }

func (f *fakeBot) DirectMessage(_ context.Context, userID string, msg *discordgo.MessageSend) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.dmErr != nil {
		return f.dmErr
	}
	f.dms = append(f.dms, dm{userID, msg})
	return nil
}

func (f *fakeBot) CreateScheduledEvent(_ context.Context, guildID string, params *discordgo.GuildScheduledEventParams) (*discordgo.GuildScheduledEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.eventErr != nil {
		return nil, f.eventErr
	}
	f.guilds = append(f.guilds, guildID)
	f.events = append(f.events, params)
	return &discordgo.GuildScheduledEvent{ID: "evt1", Name: params.Name}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Port:           3000,
		UnifiedGuildID: "unified",
		CORSOrigins:    []string{"https://flyemirates.emiratesgrouproblox.link"},
		APIRateLimit:   1000,
		APIRateBurst:   1000,
	}
}

func newTestServer(cfg *config.Config, bot *fakeBot) *Server {
	gin.SetMode(gin.TestMode)
	s := New(cfg, bot)
	s.now = func() time.Time { return time.Date(2025, 11, 23, 10, 0, 0, 0, time.UTC) }
	return s
}

func do(s *Server, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	var out map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return w, out
}

func TestBooking(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		dmErr   error
		status  int
		errText string
	}{
		{"ok", `{"bookingRef":"EK1","primaryDiscord":"pax","primaryDiscordId":"42","paxCount":3}`, nil, 200, ""},
		{"missing id", `{"bookingRef":"EK1","primaryDiscord":"pax"}`, nil, 400, "Missing bookingRef, primaryDiscord or primaryDiscordId"},
		{"empty body", ``, nil, 400, "Missing bookingRef, primaryDiscord or primaryDiscordId"},
		{"dm fails", `{"bookingRef":"EK1","primaryDiscord":"pax","primaryDiscordId":"42"}`, errors.New("closed"), 500, "Failed to send DM to primary contact."},
	}

	for _, test := range tests {
		bot := &fakeBot{dmErr: test.dmErr}
		w, out := do(newTestServer(testConfig(), bot), http.MethodPost, "/api/booking", test.body)

		if w.Code != test.status {
			t.Errorf("%s: status = %d, expected %d", test.name, w.Code, test.status)
		}
		if test.errText != "" && (out["ok"] != false || out["error"] != test.errText) {
			t.Errorf("%s: body = %v", test.name, out)
		}
		if test.status == 200 {
			if out["ok"] != true || len(bot.dms) != 1 || bot.dms[0].userID != "42" {
				t.Fatalf("%s: body = %v, dms = %v", test.name, out, bot.dms)
			}
			if !strings.Contains(bot.dms[0].msg.Content, "booking has been received") {
				t.Errorf("%s: content = %q", test.name, bot.dms[0].msg.Content)
			}
		}
	}
}

func TestBookingEmbed(t *testing.T) {
	now := time.Date(2025, 11, 23, 10, 0, 0, 0, time.UTC)
	e := BookingEmbed(BookingRequest{BookingRef: "EK1", From: "Dubai (DXB)", PrimaryDiscord: "pax", PrimaryDiscordID: "42"}, now)

	want := map[string]string{
		"Booking reference":     "`EK1`",
		"Simulator":             "Not specified",
		"Route":                 "Dubai (DXB) → Unknown",
		"Preferred date / time": "Not specified • Any",
		"Passengers":            "1",
		"Primary contact":       "Discord: `pax`\nID: `42`",
	}
	for _, f := range e.Fields {
		if v, ok := want[f.Name]; ok && f.Value != v {
			t.Errorf("field %q = %q, expected %q", f.Name, f.Value, v)
		}
	}
	if e.Color != 0xd81e05 || e.Footer == nil || e.Footer.Text != "Emirates Group Roblox • Booking system" {
		t.Errorf("embed = %+v", e)
	}
	if e.Timestamp != "2025-11-23T10:00:00Z" {
		t.Errorf("timestamp = %q", e.Timestamp)
	}
}

func TestPaxCount(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, "1"},
		{float64(0), "1"},
		{float64(4), "4"},
		{"", "1"},
		{"2", "2"},
		{false, "1"},
	}
	for _, test := range tests {
		if got := paxCount(test.in); got != test.want {
			t.Errorf("paxCount(%v) = %q, expected %q", test.in, got, test.want)
		}
	}
}

func TestCheckin(t *testing.T) {
	full := `{"bookingRef":"EK1","roblox":"rb","discordUser":"pax","discordId":"42","seatPreference":"Window"}`

	bot := &fakeBot{}
	w, _ := do(newTestServer(testConfig(), bot), http.MethodPost, "/api/checkin", full)
	if w.Code != 200 || len(bot.dms) != 1 {
		t.Fatalf("status = %d, dms = %d", w.Code, len(bot.dms))
	}
	e := bot.dms[0].msg.Embeds[0]
	if !strings.Contains(e.Description, "booking `EK1`") {
		t.Errorf("description = %q", e.Description)
	}
	last := e.Fields[len(e.Fields)-1]
	if last.Value != "Seat: Window\nBaggage: Not specified" {
		t.Errorf("preferences = %q", last.Value)
	}

	w, out := do(newTestServer(testConfig(), &fakeBot{}), http.MethodPost, "/api/checkin", `{"bookingRef":"EK1"}`)
	if w.Code != 400 || out["error"] != "Missing bookingRef, roblox, discordUser or discordId" {
		t.Errorf("missing fields: %d %v", w.Code, out)
	}

	w, out = do(newTestServer(testConfig(), &fakeBot{dmErr: errors.New("closed")}), http.MethodPost, "/api/checkin", full)
	if w.Code != 500 || out["error"] != "Failed to send DM to passenger." {
		t.Errorf("dm failure: %d %v", w.Code, out)
	}
}

const flightBody = `{"date":"2025-11-23","flightNumber":"EK201","from":"Dubai (DXB)","to":"New York JFK","depTime":"18:00","remarks":"Heavy"}`

func TestCreateFlight(t *testing.T) {
	noGuild := testConfig()
	noGuild.UnifiedGuildID = ""

	tests := []struct {
		name    string
		cfg     *config.Config
		bot     *fakeBot
		body    string
		status  int
		errText string
	}{
		{"ok", testConfig(), &fakeBot{ready: true}, flightBody, 200, ""},
		{"missing", testConfig(), &fakeBot{ready: true}, `{"date":"2025-11-23"}`, 400, "Missing required flight fields."},
		{"not ready", testConfig(), &fakeBot{}, flightBody, 503, "Bot is not ready to create events."},
		{"no guild", noGuild, &fakeBot{ready: true}, flightBody, 500, "UNIFIED_GUILD_ID is not configured."},
		{"bad time", testConfig(), &fakeBot{ready: true}, strings.Replace(flightBody, "18:00", "6pm", 1), 500, "Failed to create Discord event."},
		{"discord fails", testConfig(), &fakeBot{ready: true, eventErr: errors.New("403")}, flightBody, 500, "Failed to create Discord event."},
	}

	for _, test := range tests {
		w, out := do(newTestServer(test.cfg, test.bot), http.MethodPost, "/api/flights/create", test.body)
		if w.Code != test.status {
			t.Errorf("%s: status = %d, expected %d", test.name, w.Code, test.status)
		}
		if test.errText != "" && out["error"] != test.errText {
			t.Errorf("%s: body = %v", test.name, out)
		}
		if test.status == 200 && (out["eventId"] != "evt1" || test.bot.guilds[0] != "unified") {
			t.Errorf("%s: body = %v, guilds = %v", test.name, out, test.bot.guilds)
		}
	}
}

func TestFlightEvent(t *testing.T) {
	params, err := FlightEvent(FlightRequest{
		Date: "2025-11-23", FlightNumber: "EK201", From: "Dubai (DXB)", To: "New York JFK", DepTime: "00:10",
	})
	if err != nil {
		t.Fatal(err)
	}

	if params.Name != "DXB → New York JFK" {
		t.Errorf("name = %q", params.Name)
	}
	wantEnd := time.Date(2025, 11, 22, 20, 10, 0, 0, time.UTC)
	if !params.ScheduledEndTime.Equal(wantEnd) {
		t.Errorf("end = %v, expected %v", params.ScheduledEndTime, wantEnd)
	}
	if got := params.ScheduledEndTime.Sub(*params.ScheduledStartTime); got != 20*time.Minute {
		t.Errorf("check-in lead = %v", got)
	}
	if params.EntityType != discordgo.GuildScheduledEventEntityTypeExternal ||
		params.PrivacyLevel != discordgo.GuildScheduledEventPrivacyLevelGuildOnly ||
		params.EntityMetadata.Location != "Emirates Airlines (Unified) — Flight Operations" {
		t.Errorf("params = %+v", params)
	}

	for _, line := range []string{
		"**Check-in opens:** 23:50 (Dubai time)",
		"**Estimated arrival:** TBA (Dubai time)",
		"**Airline:** Emirates Airlines (Unified)",
		"**Status:** Scheduled",
		"_This is a virtual flight",
	} {
		if !strings.Contains(params.Description, line) {
			t.Errorf("description missing %q", line)
		}
	}
	if strings.Contains(params.Description, "Remarks") {
		t.Error("remarks line without remarks")
	}
}

func TestAirportCode(t *testing.T) {
	tests := map[string]string{
		"Dubai (DXB)":            "DXB",
		"London Heathrow (EGLL)": "EGLL",
		"Paris (cdg)":            "Paris (cdg)",
		"Sydney":                 "Sydney",
	}
	for in, want := range tests {
		if got := AirportCode(in); got != want {
			t.Errorf("AirportCode(%q) = %q, expected %q", in, got, want)
		}
	}
}

func TestHealthAndMiddleware(t *testing.T) {
	s := newTestServer(testConfig(), &fakeBot{ready: true})

	w, out := do(s, http.MethodGet, "/healthz", "")
	if w.Code != 200 || out["ready"] != true || out["voiceConnected"] != false {
		t.Errorf("healthz = %d %v", w.Code, out)
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("missing request id")
	}

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "abc")
	req.Header.Set("Origin", "https://flyemirates.emiratesgrouproblox.link")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if rec.Header().Get("X-Request-ID") != "abc" {
		t.Errorf("request id = %q", rec.Header().Get("X-Request-ID"))
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "https://flyemirates.emiratesgrouproblox.link" {
		t.Errorf("cors header = %q", rec.Header().Get("Access-Control-Allow-Origin"))
	}
}

func TestRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.APIRateLimit = 0.001
	cfg.APIRateBurst = 1
	s := newTestServer(cfg, &fakeBot{})

	if w, _ := do(s, http.MethodGet, "/healthz", ""); w.Code != 200 {
		t.Fatalf("first request = %d", w.Code)
	}
	w, out := do(s, http.MethodGet, "/healthz", "")
	if w.Code != http.StatusTooManyRequests || out["ok"] != false {
		t.Errorf("second request = %d %v", w.Code, out)
	}
}
