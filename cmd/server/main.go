// Package main is the entry point for the portfolio service. It wires
// configuration, logging, the dependency container, the HTTP server and the
// background scheduler, then blocks until a shutdown signal arrives.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alfredorueda/portfolio-service/internal/config"
	"github.com/alfredorueda/portfolio-service/internal/di"
	"github.com/alfredorueda/portfolio-service/internal/scheduler"
	"github.com/alfredorueda/portfolio-service/internal/seed"
	"github.com/alfredorueda/portfolio-service/internal/server"
	"github.com/alfredorueda/portfolio-service/pkg/logger"
)

const (
	// priceWarmSchedule refreshes quotes for every held ticker so reads hit
	// the cache instead of the upstream API.
	priceWarmSchedule = "0 */5 * * * *"
	// cacheCleanupSchedule sweeps expired cache rows once an hour.
	cacheCleanupSchedule = "0 0 * * * *"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{Level: "info", Pretty: true})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})

	log.Info().Str("data_dir", cfg.DataDir).Msg("Starting portfolio service")

	container, err := di.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to wire dependencies")
	}
	defer container.Close()

	if cfg.SeedDemoData {
		if err := seed.Run(container, log); err != nil {
			log.Error().Err(err).Msg("Demo seed failed, continuing without demo data")
		}
	}

	srv := server.New(server.Config{
		Log:       log,
		Port:      cfg.Port,
		DevMode:   cfg.DevMode,
		Container: container,
	})

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()
	log.Info().Int("port", cfg.Port).Msg("Server started")

	sched := scheduler.New(log)
	warmJob := scheduler.NewPriceWarmJob(container.PortfolioRepo, container.PriceClient, log)
	if err := sched.AddJob(priceWarmSchedule, warmJob); err != nil {
		log.Fatal().Err(err).Msg("Failed to schedule price warm job")
	}
	cleanupJob := scheduler.NewCacheCleanupJob(container.ClientDataRepo, log)
	if err := sched.AddJob(cacheCleanupSchedule, cleanupJob); err != nil {
		log.Fatal().Err(err).Msg("Failed to schedule cache cleanup job")
	}
	sched.Start()
	log.Info().Msg("Background scheduler started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down...")
	sched.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
