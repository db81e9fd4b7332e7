// /internal/config/config.go
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config is the process configuration, read once from the environment.
type Config struct {
	DiscordToken string `env:"DISCORD_TOKEN,required,notEmpty"`

	// IFE stage playback
	GuildID             string        `env:"GUILD_ID"`
	StageChannelID      string        `env:"STAGE_CHANNEL_ID"`
	ControlChannelID    string        `env:"CONTROL_CHANNEL_ID"`
	VoiceConnectTimeout time.Duration `env:"VOICE_CONNECT_TIMEOUT" envDefault:"10s"`
	SourceOpenTimeout   time.Duration `env:"SOURCE_OPEN_TIMEOUT" envDefault:"15s"`
	Media

	// Unified server verification and flight events
	UnifiedGuildID        string `env:"UNIFIED_GUILD_ID"`
	UnifiedVerifiedRoleID string `env:"UNIFIED_VERIFIED_ROLE_ID"`

	// Intake API
	Port         int      `env:"PORT" envDefault:"3000"`
	CORSOrigins  []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"https://flyemirates.emiratesgrouproblox.link,https://flightdashboard.emiratesgrouproblox.link"`
	APIRateLimit float64  `env:"API_RATE_LIMIT" envDefault:"5"`
	APIRateBurst int      `env:"API_RATE_BURST" envDefault:"10"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	LogFile  string `env:"LOG_FILE"`
}

// Media locates the track catalog and its audio. It is parsed on its own
// by tooling that runs without a bot token.
type Media struct {
	AudioDir    string `env:"AUDIO_DIR" envDefault:"audio"`
	CatalogPath string `env:"CATALOG_PATH"`

	// Object storage for s3:// track sources
	S3Region    string `env:"S3_REGION" envDefault:"us-east-1"`
	S3Endpoint  string `env:"S3_ENDPOINT"`
	S3AccessKey string `env:"S3_ACCESS_KEY"`
	S3SecretKey string `env:"S3_SECRET_KEY"`
}

// Load reads an optional .env file and parses the environment.
func Load(files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil {
		log.Info().Msg("No .env file found, falling back to system environment variables")
	}
	return Parse()
}

// Parse reads the configuration from the current environment only.
func Parse() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("invalid PORT %d", cfg.Port)
	}
	if cfg.VoiceConnectTimeout <= 0 {
		return nil, fmt.Errorf("VOICE_CONNECT_TIMEOUT must be positive")
	}
	if cfg.SourceOpenTimeout <= 0 {
		return nil, fmt.Errorf("SOURCE_OPEN_TIMEOUT must be positive")
	}
	return &cfg, nil
}

// LoadMedia reads an optional .env file and parses only the media settings.
func LoadMedia(files ...string) (*Media, error) {
	if err := godotenv.Load(files...); err != nil {
		log.Info().Msg("No .env file found, falling back to system environment variables")
	}
	m, err := env.ParseAs[Media]()
	if err != nil {
		return nil, fmt.Errorf("failed to parse media config: %w", err)
	}
	return &m, nil
}

// IFEConfigured reports whether the bot should join a stage at startup.
func (c *Config) IFEConfigured() bool {
	return c.GuildID != "" && c.StageChannelID != ""
}

// VerificationConfigured reports whether the unified verification flow is usable.
func (c *Config) VerificationConfigured() bool {
	return c.UnifiedGuildID != "" && c.UnifiedVerifiedRoleID != ""
}

// S3Configured reports whether s3:// sources can be resolved.
func (m *Media) S3Configured() bool {
	return m.S3AccessKey != "" && m.S3SecretKey != ""
}

// Addr is the listen address of the intake API.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
