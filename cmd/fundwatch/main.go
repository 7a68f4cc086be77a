// Package main is the entry point for fundwatch, a tracker for Indian
// mutual fund historical returns. It pulls full NAV histories from the
// mfapi.in provider, computes 1/2/3-year ROI for every fund, persists the
// top performers per report date, and serves the results over HTTP.
//
// Startup sequence:
//  1. Load configuration from environment variables
//  2. Initialize structured logging
//  3. Open and migrate the returns database
//  4. Wire the NAV store, return engine, and repository
//  5. Run one refresh cycle so the API has data immediately
//  6. Register the scheduled refresh job
//  7. Start the HTTP server and wait for a shutdown signal
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fundwatch/fundwatch/internal/config"
	"github.com/fundwatch/fundwatch/internal/database"
	"github.com/fundwatch/fundwatch/internal/jobs"
	"github.com/fundwatch/fundwatch/internal/mfapi"
	"github.com/fundwatch/fundwatch/internal/navstore"
	"github.com/fundwatch/fundwatch/internal/returns"
	"github.com/fundwatch/fundwatch/internal/scheduler"
	"github.com/fundwatch/fundwatch/internal/server"
	"github.com/fundwatch/fundwatch/pkg/logger"
)

func main() {
	// Load configuration first to get log level
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{
			Level:  "info",
			Pretty: true,
		})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})

	log.Info().Str("data_dir", cfg.DataDir).Msg("Starting fundwatch")

	// Returns database
	db, err := database.New(database.Config{
		Path: cfg.DatabasePath(),
		Name: "returns",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open returns database")
	}
	defer db.Close()

	if err := db.Migrate(returns.Schema); err != nil {
		log.Fatal().Err(err).Msg("Failed to migrate returns database")
	}

	// NAV provider, store, engine, and repository
	client := mfapi.NewClient(cfg.MFAPIBaseURL, log)
	store := navstore.New(client, navstore.Config{
		SnapshotPath: cfg.SnapshotPath(),
		MaxAgeHours:  cfg.CacheMaxAge,
	}, log)
	engine := returns.NewEngine(store, log)
	repo := returns.NewRepository(db.Conn(), log)

	refresh := jobs.NewRefreshJob(client, store, engine, repo, db, jobs.RefreshConfig{
		MaxFunds:     cfg.MaxFunds,
		FetchWorkers: cfg.FetchWorkers,
		TopN:         cfg.TopN,
	}, log)

	// One refresh up front so the API serves data from the first request.
	// A failure here is not fatal - the scheduled run will retry.
	sched := scheduler.New(log)
	if err := sched.RunNow(context.Background(), refresh); err != nil {
		log.Error().Err(err).Msg("Initial refresh failed")
	}

	if _, err := sched.AddJob(cfg.RefreshSchedule, refresh); err != nil {
		log.Fatal().Err(err).Str("schedule", cfg.RefreshSchedule).Msg("Failed to register refresh job")
	}
	sched.Start()

	srv := server.New(server.Config{
		Log:     log,
		DB:      db,
		Repo:    repo,
		Port:    cfg.Port,
		DevMode: cfg.DevMode,
	})

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.Start()
	}()

	// Wait for shutdown signal or server failure
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		if err != nil {
			log.Error().Err(err).Msg("Server failed")
		}
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("Shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server shutdown failed")
	}
	sched.Stop()

	log.Info().Msg("Shutdown complete")
}
