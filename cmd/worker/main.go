// Command worker runs the lock/settle scheduler and serves /metrics.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/riskibarqy/fantasy-cycling/internal/app"
	"github.com/riskibarqy/fantasy-cycling/internal/config"
	"github.com/riskibarqy/fantasy-cycling/internal/observability"
	"github.com/riskibarqy/fantasy-cycling/internal/platform/logging"
)

func main() {
	_ = godotenv.Load(".env")

	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "worker:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := logging.New(logging.Options{
		Level:          cfg.LogLevel,
		ServiceName:    cfg.ServiceName,
		ServiceVersion: cfg.ServiceVersion,
		Environment:    cfg.AppEnv,
		Output:         os.Stdout,
	})
	logging.SetDefault(logger)
	defer func() { _ = logger.Sync() }()

	telemetry, err := observability.StartTelemetry(cfg, logger, observability.TelemetryOptions{Profiling: true})
	if err != nil {
		return fmt.Errorf("start telemetry: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := telemetry.Shutdown(ctx); err != nil {
			logger.Warn("telemetry shutdown failed", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	container, err := app.NewPostgresContainer(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := container.Close(); err != nil {
			logger.Warn("close db", "error", err)
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewDBStatsCollector(container.DB().DB, "fantasy_cycling"),
	)
	if err := container.Metrics.Register(registry); err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}

	srv := observability.StartMetricsServer(cfg.MetricsAddr, registry, logger)
	defer func() {
		if err := observability.StopMetricsServer(srv, logger, 10*time.Second); err != nil {
			logger.Error("metrics server shutdown failed", "error", err)
		}
	}()

	logger.Info("scheduler starting",
		"interval", cfg.SchedulerInterval.String(),
		"settle_max_workers", cfg.SettleMaxWorkers,
	)
	err = container.NewScheduler(cfg, logger.With("component", "scheduler")).Run(ctx)
	if errors.Is(err, context.Canceled) {
		logger.Info("scheduler stopped")
		return nil
	}
	return err
}
