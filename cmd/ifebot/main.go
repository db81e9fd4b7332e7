// cmd/ifebot/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/egroblox/ifebot/internal/catalog"
	"github.com/egroblox/ifebot/internal/commands"
	"github.com/egroblox/ifebot/internal/config"
	"github.com/egroblox/ifebot/internal/discord"
	"github.com/egroblox/ifebot/internal/intake"
	"github.com/egroblox/ifebot/internal/logging"
	"github.com/egroblox/ifebot/internal/music/player"
	"github.com/egroblox/ifebot/internal/music/source"
	"github.com/egroblox/ifebot/internal/music/stream"
	"github.com/egroblox/ifebot/internal/music/voice"
	"github.com/egroblox/ifebot/pkg/jobmgr"
)

var rootCmd = &cobra.Command{
	Use:           "ifebot",
	Short:         "Emirates Group Roblox bot",
	Long:          `Plays in-flight audio into a Discord stage, runs member verification and serves the booking and flight API.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return run(cmd.Context())
	},
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rootCmd.AddCommand(newCatalogCommand())

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "❌", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logging.Setup(cfg.LogLevel, cfg.LogFile)
	log := logging.For("main")
	log.Info().Msg("Starting Emirates Group Roblox bot...")

	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		return err
	}
	opener, err := newOpener(&cfg.Media)
	if err != nil {
		return err
	}

	dg, err := discord.NewSession(cfg.DiscordToken)
	if err != nil {
		return err
	}

	sink := stream.NewSink(opener, cfg.SourceOpenTimeout)
	stage := voice.NewManager(voice.NewDiscordGateway(dg), sink, cfg.VoiceConnectTimeout)
	ife := player.New(cat, stage, sink)
	commands.Register(cfg, ife)

	bot := discord.New(dg, cfg, stage)
	api := intake.New(cfg, bot)

	jm := jobmgr.NewManager(ctx, jobmgr.LogReporter(logging.For("jobs")))
	if err := errors.Join(
		jm.StartAsync("gateway", bot.Run),
		jm.StartAsync("intake", api.Run),
		jm.StartAsync("player", func(ctx context.Context) error {
			return ife.Watch(ctx, sink.Events())
		}),
	); err != nil {
		jm.Shutdown()
		_ = jm.Wait()
		return err
	}

	if err := jm.Wait(); err != nil {
		log.Error().Err(err).Msg("Bot stopped with error")
		return err
	}
	log.Info().Msg("Bot exited cleanly")
	return nil
}

// newOpener resolves track sources, through S3 only when credentials exist.
func newOpener(m *config.Media) (*source.Opener, error) {
	if !m.S3Configured() {
		return source.NewOpener(m.AudioDir, nil), nil
	}
	objects, err := source.NewS3Objects(source.S3Config{
		Region:    m.S3Region,
		Endpoint:  m.S3Endpoint,
		AccessKey: m.S3AccessKey,
		SecretKey: m.S3SecretKey,
	})
	if err != nil {
		return nil, err
	}
	return source.NewOpener(m.AudioDir, objects), nil
}
