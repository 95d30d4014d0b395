package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/brewops/schemasync/internal/api"
	"github.com/brewops/schemasync/internal/config"
	"github.com/brewops/schemasync/internal/domain"
	"github.com/brewops/schemasync/internal/logger"
	"github.com/brewops/schemasync/internal/repository"
	"github.com/brewops/schemasync/internal/service"
	"github.com/brewops/schemasync/internal/storage"
)

func main() {
	// Initialize logger first (with defaults)
	appLogger := logger.New(logger.DefaultConfig())
	logger.SetDefaultLogger(appLogger)
	defer logger.Sync()

	// Load configuration
	// Support CONFIG_PATH environment variable for production deployments
	configPath := os.Getenv("CONFIG_PATH")
	cfg, err := config.Load(configPath)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to load config")
	}

	// Initialize database
	db, err := repository.InitDB(&cfg.Database)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize database")
	}

	// Initialize repositories
	pageRepo := repository.NewPageRepository(db)
	runRepo := repository.NewRunRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)

	// Seed fetch settings from config on first start; dashboard edits win
	// over config afterwards.
	ctx := context.Background()
	err = settingsRepo.EnsureDefaults(ctx, &domain.FetchSettings{
		BaseURL:       cfg.Fetch.BaseURL,
		BasicAuthUser: cfg.Fetch.BasicAuthUser,
		BasicAuthPass: cfg.Fetch.BasicAuthPass,
		UserAgent:     cfg.Fetch.UserAgent,
	})
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to seed fetch settings")
	}

	// Initialize snapshot archive when enabled
	var archive storage.SnapshotStore
	if cfg.Archive.Enabled {
		store, err := storage.NewS3Store(&storage.S3Config{
			Endpoint:  cfg.Archive.Endpoint,
			AccessKey: cfg.Archive.AccessKey,
			SecretKey: cfg.Archive.SecretKey,
			UseSSL:    cfg.Archive.UseSSL,
			Bucket:    cfg.Archive.Bucket,
			Region:    cfg.Archive.Region,
			PublicURL: cfg.Archive.PublicURL,
		})
		if err != nil {
			appLogger.WithError(err).Fatal("Failed to initialize snapshot archive")
		}
		if err := store.EnsureBucket(ctx); err != nil {
			appLogger.WithError(err).Fatal("Failed to ensure archive bucket")
		}
		archive = store
	}

	// Initialize services
	fetchService := service.NewFetchService(pageRepo, settingsRepo, archive, appLogger, &service.FetchClientConfig{
		TimeoutSecs: cfg.Fetch.TimeoutSecs,
	})

	generator := service.NewHTTPGenerator(&service.GeneratorConfig{
		Endpoint:    cfg.Generate.Endpoint,
		APIKey:      cfg.Generate.APIKey,
		TimeoutSecs: cfg.Generate.TimeoutSecs,
	}, appLogger)

	if generator.IsEnabled() {
		appLogger.WithField("endpoint", cfg.Generate.Endpoint).Info("Schema generation enabled")
	}

	reconcileService := service.NewReconcileService(pageRepo, appLogger)
	runService := service.NewRunService(runRepo, reconcileService, fetchService, generator, appLogger)

	// Setup router
	router := api.SetupRouter(runService, fetchService, runRepo, pageRepo, settingsRepo, cfg, appLogger)

	// Create HTTP server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		appLogger.WithFields(logger.Fields{
			"port": cfg.Server.Port,
			"mode": cfg.Server.Mode,
		}).Info("Starting API server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.WithError(err).Fatal("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.WithError(err).Fatal("Server forced to shutdown")
	}

	appLogger.Info("Server exited")
}
