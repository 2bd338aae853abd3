// Command racectl drives the race pipeline: lock, import, settle, reprice,
// leaderboard and race deletion.
//
// Usage:
//
//	racectl migrate up
//	racectl seed-demo
//	racectl lock xco-nove-mesto-2026 --force
//	racectl import xco-nove-mesto-2026 --file results.json
//	racectl settle xco-nove-mesto-2026
//	racectl leaderboard xco-world-cup-2026 --team-type elite
//	racectl demo
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/riskibarqy/fantasy-cycling/internal/app"
	"github.com/riskibarqy/fantasy-cycling/internal/config"
	"github.com/riskibarqy/fantasy-cycling/internal/observability"
	"github.com/riskibarqy/fantasy-cycling/internal/platform/logging"
	"github.com/spf13/cobra"
)

type globalFlags struct {
	memory bool
}

func main() {
	_ = godotenv.Load(".env")

	var flags globalFlags
	root := &cobra.Command{
		Use:           "racectl",
		Short:         "Fantasy cycling race pipeline",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVar(&flags.memory, "memory", false, "Use an in-memory store seeded with the demo season instead of Postgres")

	root.AddCommand(
		lockCmd(&flags),
		lockDueCmd(&flags),
		importCmd(&flags),
		settleCmd(&flags),
		settlePendingCmd(&flags),
		deleteRaceCmd(&flags),
		leaderboardCmd(&flags),
		scoresCmd(&flags),
		seedDemoCmd(),
		migrateCmd(),
		demoCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// env is what every subcommand runs with.
type env struct {
	cfg       config.Config
	logger    *logging.Logger
	container *app.Container
	out       io.Writer
}

func newLogger(cfg config.Config) *logging.Logger {
	logger := logging.New(logging.Options{
		Level:          cfg.LogLevel,
		ServiceName:    cfg.ServiceName,
		ServiceVersion: cfg.ServiceVersion,
		Environment:    cfg.AppEnv,
		Output:         os.Stderr,
	})
	logging.SetDefault(logger)
	return logger
}

// run loads configuration, builds the container and calls fn with a
// context cancelled on SIGINT/SIGTERM.
func run(cmd *cobra.Command, flags *globalFlags, fn func(ctx context.Context, e env) error) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := newLogger(cfg)
	defer func() { _ = logger.Sync() }()

	telemetry, err := observability.StartTelemetry(cfg, logger, observability.TelemetryOptions{})
	if err != nil {
		return fmt.Errorf("start telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			logger.Warn("telemetry shutdown failed", "error", err)
		}
	}()

	var container *app.Container
	if flags != nil && flags.memory {
		container = app.NewMemoryContainer(cfg, logger, time.Now().UTC())
	} else {
		container, err = app.NewPostgresContainer(ctx, cfg, logger)
		if err != nil {
			return err
		}
	}
	defer func() {
		if err := container.Close(); err != nil {
			logger.Warn("close db", "error", err)
		}
	}()

	return fn(ctx, env{cfg: cfg, logger: logger, container: container, out: cmd.OutOrStdout()})
}
