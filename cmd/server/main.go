package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/JonMunkholm/hsclassify/internal/config"
	"github.com/JonMunkholm/hsclassify/internal/core"
	"github.com/JonMunkholm/hsclassify/internal/logging"
	"github.com/JonMunkholm/hsclassify/internal/metrics"
	"github.com/JonMunkholm/hsclassify/internal/oracle"
	"github.com/JonMunkholm/hsclassify/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging based on config
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"oracle_provider", cfg.Oracle.Provider,
		"batch_max_concurrent", cfg.Batch.MaxConcurrent,
		"batch_workers", cfg.Batch.Workers,
		"cache_enabled", cfg.Cache.Enabled,
		"rate_limit_enabled", cfg.Rate.Enabled,
	)
	slog.Debug("configuration", "config", cfg.String())

	// Private registry so /metrics only exposes what this service registers
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	ctx := context.Background()
	o, closeOracle, err := oracle.Build(ctx, cfg, m)
	if err != nil {
		slog.Error("failed to create oracle", "error", err)
		os.Exit(1)
	}
	defer closeOracle()

	service, err := core.NewService(o, cfg, m)
	if err != nil {
		slog.Error("failed to create service", "error", err)
		os.Exit(1)
	}

	slog.Info("jurisdictions loaded", "count", service.Table().Len())

	server := web.NewServer(service, cfg, reg)

	// Graceful shutdown
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		// Wait for running batches to complete (with timeout)
		if status := service.BatchStatus(); status.Active > 0 {
			slog.Info("waiting for batches to complete", "active", status.Active)
			if err := service.WaitForBatches(shutdownCtx); err != nil {
				slog.Warn("batches did not complete in time", "error", err)
			} else {
				slog.Info("all batches completed")
			}
		}

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	if err := server.Start(cfg.Server.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server failed", "error", err)
		closeOracle()
		os.Exit(1)
	}
	<-stopped
	slog.Info("server stopped")
}
