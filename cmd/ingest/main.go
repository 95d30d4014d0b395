package main

import (
	"context"
	"encoding/csv"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/brewops/schemasync/internal/config"
	"github.com/brewops/schemasync/internal/domain"
	"github.com/brewops/schemasync/internal/logger"
	"github.com/brewops/schemasync/internal/repository"
	"github.com/brewops/schemasync/internal/service"
	"github.com/brewops/schemasync/internal/storage"
	"github.com/google/uuid"
)

func main() {
	// Initialize logger first (with defaults)
	appLogger := logger.New(&logger.Config{
		Level:       "info",
		Format:      "json",
		ServiceName: "schemasync-ingest",
	})
	logger.SetDefaultLogger(appLogger)

	// Parse command line flags
	filePath := flag.String("file", "", "CSV file with rows: domain,path,page_type,category")
	runName := flag.String("name", "", "Name for the batch run (defaults to the file name)")
	configPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	if *filePath == "" {
		appLogger.Fatal("Missing required -file flag")
	}

	name := *runName
	if name == "" {
		name = *filePath
	}

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to load config")
	}

	appLogger.WithFields(logger.Fields{
		"file": *filePath,
		"name": name,
	}).Info("Starting batch intake")

	// Initialize database
	db, err := repository.InitDB(&cfg.Database)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize database")
	}

	// Initialize repositories
	pageRepo := repository.NewPageRepository(db)
	runRepo := repository.NewRunRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

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
	reconcileService := service.NewReconcileService(pageRepo, appLogger)
	runService := service.NewRunService(runRepo, reconcileService, fetchService, generator, appLogger)

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		appLogger.Info("Received shutdown signal, canceling...")
		cancel()
	}()

	// Read rows and create the run
	run, err := readRun(*filePath, name)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to read CSV file")
	}
	if len(run.Items) == 0 {
		appLogger.Fatal("CSV file contains no rows")
	}

	if err := runRepo.CreateWithItems(ctx, run); err != nil {
		appLogger.WithError(err).Fatal("Failed to create run")
	}

	// Process the run
	stats, err := runService.Process(ctx, run.ID)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to process run")
	}

	appLogger.WithFields(logger.Fields{
		"run_id":        run.ID,
		"total":         stats.TotalItems,
		"created":       stats.Created,
		"updated":       stats.Updated,
		"errored":       stats.Errored,
		"html_failed":   stats.HTMLFailed,
		"schema_failed": stats.SchemaFailed,
	}).Info("Batch completed")
}

// readRun parses a CSV file into a pending run. Columns are
// domain,path,page_type,category; a header row is skipped when the first
// cell reads "domain". Row contents are not validated here so that bad rows
// surface as item-level errors during processing.
func readRun(path, name string) (*domain.Run, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}

	run := &domain.Run{
		ID:     uuid.New().String(),
		Name:   name,
		Status: domain.RunStatusPending,
	}

	rowNumber := 0
	for i, record := range records {
		if i == 0 && len(record) > 0 && strings.EqualFold(strings.TrimSpace(record[0]), "domain") {
			continue
		}
		// Pad short records so missing columns become empty fields.
		for len(record) < 4 {
			record = append(record, "")
		}
		rowNumber++
		run.Items = append(run.Items, domain.RunItem{
			ID:        uuid.New().String(),
			RunID:     run.ID,
			RowNumber: rowNumber,
			Domain:    domain.SiteDomain(strings.TrimSpace(record[0])),
			Path:      strings.TrimSpace(record[1]),
			PageType:  strings.TrimSpace(record[2]),
			Category:  strings.TrimSpace(record[3]),
		})
	}

	return run, nil
}
