// Package intake is the HTTP API the booking and flight dashboards post to.
// Every request ends in a Discord side effect: a DM receipt or a scheduled
// event in the unified guild.
package intake

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/egroblox/ifebot/internal/config"
	"github.com/egroblox/ifebot/internal/logging"
)

// Messenger is the part of the bot the API drives.
type Messenger interface {
	Ready() bool
	VoiceConnected() bool
	DirectMessage(ctx context.Context, userID string, msg *discordgo.MessageSend) error
	CreateScheduledEvent(ctx context.Context, guildID string, params *discordgo.GuildScheduledEventParams) (*discordgo.GuildScheduledEvent, error)
}

// Server serves the intake routes.
type Server struct {
	cfg    *config.Config
	bot    Messenger
	router *gin.Engine
	now    func() time.Time
	log    zerolog.Logger
}

// New builds the router. Nothing listens until Run.
func New(cfg *config.Config, bot Messenger) *Server {
	s := &Server{
		cfg: cfg,
		bot: bot,
		now: time.Now,
		log: logging.For("intake"),
	}

	r := gin.New()
	r.Use(gin.Recovery(), requestID(), accessLog(s.log))
	// no allow-list means no cross-origin access at all
	if len(cfg.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins: cfg.CORSOrigins,
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowHeaders: []string{"Origin", "Content-Type", requestIDHeader},
			MaxAge:       12 * time.Hour,
		}))
	}
	r.Use(rateLimit(rate.NewLimiter(rate.Limit(cfg.APIRateLimit), cfg.APIRateBurst)))

	r.GET("/healthz", s.health)
	api := r.Group("/api")
	api.POST("/booking", s.booking)
	api.POST("/checkin", s.checkin)
	api.POST("/flights/create", s.createFlight)

	s.router = r
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run listens on the configured port until ctx is done, then drains
// in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr(),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Msgf("🌐 Bot API listening on port %d", s.cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("intake server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("intake shutdown: %w", err)
	}
	return nil
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"ok":             true,
		"ready":          s.bot.Ready(),
		"voiceConnected": s.bot.VoiceConnected(),
	})
}

func fail(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"ok": false, "error": msg})
}
