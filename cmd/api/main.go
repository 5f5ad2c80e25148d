// Command api is the League Data API server.
//
// Usage:
//
//	league-api
//	API_PORT=8080 STORE_BACKEND=postgres league-api

// @title League Data API
// @version 1.0.0
// @description Standings, leader lists and team/player detail for a basketball league. Standings and leader lists are served from cached documents rebuilt by recompute jobs.
// @host localhost:8000
// @BasePath /
// @schemes http https
// @contact.name League Data
// @license.name MIT
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description HS256 JWT with role=admin, as "Bearer <token>".
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/albapepper/league-data/internal/api"
	"github.com/albapepper/league-data/internal/api/handler"
	"github.com/albapepper/league-data/internal/backend"
	"github.com/albapepper/league-data/internal/cache"
	"github.com/albapepper/league-data/internal/config"
	"github.com/albapepper/league-data/internal/listener"
	"github.com/albapepper/league-data/internal/notifications"
	"github.com/albapepper/league-data/internal/recompute"
	"github.com/albapepper/league-data/internal/schedule"

	_ "github.com/albapepper/league-data/docs" // swagger docs
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	// Load .env if present
	_ = godotenv.Load(".env")

	cfg, err := config.Load()
	if err != nil {
		logger.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if cfg.Debug {
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
		slog.SetDefault(logger)
	}
	for _, w := range cfg.Warnings() {
		logger.Warn("Insecure configuration", "warning", w, "environment", cfg.Environment)
	}

	// Context with signal handling
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	backends, err := backend.Open(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to open backends", "error", err)
		os.Exit(1)
	}
	defer backends.Close()

	appCache := cache.New(cfg.CacheEnabled)
	defer appCache.Close()
	logger.Info("Cache initialized", "enabled", cfg.CacheEnabled)

	// Recompute pipeline
	orch := recompute.NewOrchestrator(backends.Source, backends.Documents, logger)
	dispatcher := recompute.NewDispatcher(orch, backends.Jobs, cfg.RecomputeWorkers, cfg.RecomputeQueue, logger)
	logger.Info("Recompute dispatcher started", "workers", cfg.RecomputeWorkers, "queue", cfg.RecomputeQueue)

	// Drop a season's cached responses as soon as its documents are rewritten.
	finished, unsubscribe := dispatcher.Subscribe(cfg.RecomputeQueue)
	go func() {
		for job := range finished {
			n := appCache.InvalidatePrefix(handler.SeasonCachePrefix(job.SeasonID))
			logger.Debug("Response cache invalidated", "season", job.SeasonID, "entries", n)
		}
	}()

	// Operator alerts for jobs that did not fully succeed
	if sender := notifications.NewWebhookSender(cfg.NotifyWebhookURL, cfg.NotifyPerMinute, logger); sender != nil {
		alerts, stopAlerts := dispatcher.Subscribe(cfg.RecomputeQueue)
		defer stopAlerts()
		go notifications.StartWorker(context.WithoutCancel(ctx), alerts, sender, cfg.NotifyAllJobs, logger)
	} else {
		logger.Info("Job alerts disabled (no NOTIFY_WEBHOOK_URL)")
	}

	// Scheduled recompute of the active season
	schedCfg := schedule.DefaultConfig()
	schedCfg.Cron = cfg.RecomputeCron
	scheduler, err := schedule.New(schedCfg, dispatcher, backends.ActiveSeasonID, backends.Documents, logger)
	if err != nil {
		logger.Error("Failed to configure schedule", "error", err)
		os.Exit(1)
	}
	scheduler.Start()

	// LISTEN/NOTIFY consumer for upload completion
	if cfg.ListenEnabled {
		go listener.Start(ctx, cfg.DatabaseURL, cfg.ListenChannel, dispatcher, backends.ActiveSeasonID, logger)
	} else {
		logger.Info("Upload listener disabled (LISTEN_ENABLED=false)")
	}

	deps := handler.Deps{
		Source:       backends.Source,
		Documents:    backends.Documents,
		Orchestrator: orch,
		Dispatcher:   dispatcher,
		Jobs:         backends.Jobs,
		Cache:        appCache,
		Config:       cfg,
		Logger:       logger,
	}
	if backends.DB != nil {
		deps.Database = backends.DB
	}
	router := api.NewRouter(handler.New(deps), cfg)

	addr := fmt.Sprintf("%s:%d", cfg.APIHost, cfg.APIPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	go func() {
		logger.Info("Starting League Data API",
			"addr", addr,
			"environment", cfg.Environment,
			"docs", fmt.Sprintf("http://localhost:%d/docs/", cfg.APIPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt
	<-ctx.Done()
	logger.Info("Shutting down...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown error", "error", err)
	}
	if err := scheduler.Shutdown(); err != nil {
		logger.Error("Scheduler shutdown error", "error", err)
	}

	// Queued recomputes finish before exit.
	dispatcher.Close()
	unsubscribe()
	logger.Info("Server stopped")
}
