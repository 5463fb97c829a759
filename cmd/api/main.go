// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api is the entry point for the Yomira media HTTP server.
//
// # Startup Sequence
//
//  1. Load configuration from environment variables (and an optional .env).
//  2. Initialize the structured logger.
//  3. Open the storage sandbox and staging area.
//  4. Wire metrics, services and HTTP handlers.
//  5. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/taibuivan/yomira-media/internal/api"
	"github.com/taibuivan/yomira-media/internal/chapter"
	"github.com/taibuivan/yomira-media/internal/media"
	"github.com/taibuivan/yomira-media/internal/platform/config"
	"github.com/taibuivan/yomira-media/internal/platform/constants"
	"github.com/taibuivan/yomira-media/internal/platform/logger"
	"github.com/taibuivan/yomira-media/internal/platform/metrics"
	"github.com/taibuivan/yomira-media/internal/storage"
)

func main() {
	// ── 1. Configuration ──────────────────────────────────────────────────
	// Fail with a plain structured line: the real logger depends on config.
	cfg, err := config.Load()
	must(logger.Default(), err, "load configuration")

	// ── 2. Logger ─────────────────────────────────────────────────────────
	log, logCloser := logger.New(os.Stdout, logger.FromConfig(cfg))
	defer func() {
		if cerr := logCloser.Close(); cerr != nil {
			log.Error("log file close error", slog.Any("error", cerr))
		}
	}()
	slog.SetDefault(log)

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.String("storage_root", cfg.StorageRoot),
		slog.Any("extensions", cfg.AllowedExtensions),
	)

	// ── 3. Storage ────────────────────────────────────────────────────────
	store, err := storage.New(storage.Options{
		Root:       cfg.StorageRoot,
		StagingDir: cfg.StagingDir,
		Extensions: cfg.AllowedExtensions,
		Logger:     log,
	})
	must(log, err, "open storage root")

	// ── 4. Domain Wiring ──────────────────────────────────────────────────
	var recorder *metrics.Metrics
	if cfg.MetricsEnabled {
		recorder = metrics.New()
	}

	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckStorage: store.Check,
	}, log)

	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Media:     media.NewHandler(media.NewService(store, recorder, log)),
		Chapter:   chapter.NewHandler(chapter.NewService(store, recorder, log)),
		Metrics:   recorder,
	}

	server := api.NewServer(cfg, log, handlers)

	// ── 5. Graceful Shutdown ──────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server startup error", slog.Any("error", err))
	}

	log.Info("shutting down server", slog.Duration("timeout", constants.ShutdownTimeout))

	if err := server.Shutdown(constants.ShutdownTimeout); err != nil {
		log.Error("shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server stopped cleanly")
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is limited to startup wiring. After startup, all errors are returned and
// handled explicitly.
func must(log *slog.Logger, err error, step string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("step", step),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
