package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/almoxops/replen/internal/api"
	"github.com/almoxops/replen/internal/cache"
	"github.com/almoxops/replen/internal/config"
	"github.com/almoxops/replen/internal/ingest"
	"github.com/almoxops/replen/internal/repository"
	"github.com/almoxops/replen/internal/repository/postgres"
	"github.com/almoxops/replen/internal/service"
	"github.com/almoxops/replen/pkg/logger"
)

// buildSources wires the configured source kind: flat files for the
// standalone deployment, postgres after an ingest, or a published sheet
// for teams that keep the ledger in a shared spreadsheet.
func buildSources(cfg *config.Config) (repository.MovementSource, repository.CatalogSource, error) {
	opts := ingest.Options{ExcludeDates: cfg.Replen.ExcludeDates}

	switch cfg.Replen.Source {
	case "files":
		return repository.FileMovementSource{Path: cfg.Replen.LedgerPath, Options: opts},
			repository.FileCatalogSource{Path: cfg.Replen.ItemsPath}, nil
	case "postgres":
		db, err := postgres.NewDB(&cfg.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		return postgres.NewLedgerRepository(db), postgres.NewCatalogRepository(db), nil
	case "sheet":
		client := ingest.NewSheetClient()
		return repository.SheetMovementSource{Client: client, URL: cfg.Replen.LedgerURL, Options: opts},
			repository.SheetCatalogSource{Client: client, URL: cfg.Replen.ItemsURL}, nil
	default:
		return nil, nil, fmt.Errorf("unknown data source %q, expected files, postgres or sheet", cfg.Replen.Source)
	}
}

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	logger.SetLevel(cfg.Server.Mode)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	movements, catalog, err := buildSources(cfg)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to initialize data sources")
	}

	reports, cacheErr := cache.NewReportCache(cfg.Cache)
	if cacheErr != nil {
		logger.Log.Warn().Err(cacheErr).Msg("report cache unavailable, running without it")
		reports = cache.NewNoopReportCache()
	}

	svc := service.NewReportService(movements, catalog, reports)

	router := api.NewRouter(svc, cfg.EngineParams(), cfg.Server.AllowedOrigins)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}
