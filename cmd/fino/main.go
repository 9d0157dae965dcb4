package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"fino/internal/amqp"
	"fino/internal/backend"
	"fino/internal/config"
	"fino/internal/export"
	gsheet "fino/internal/export/google"
	apphttp "fino/internal/http"
	"fino/internal/log"
	"fino/internal/services"
	"fino/internal/storage"
	"fino/internal/store"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := log.New(log.DefaultConfig())
	log.SetDefault(logger)
	appLogger := logger.WithComponent(log.ComponentApp)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		appLogger.Error("configuration validation failed", log.FieldError, err.Error())
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Session expiry forces a full restart login; there is no interactive
	// re-auth path in a headless service.
	tokens := backend.NewTokenSource(cfg.APIToken, cfg.APIRefreshToken, func() {
		appLogger.Error("session expired, restart with fresh API tokens")
	})
	client := backend.New(backend.Config{
		BaseURL: cfg.APIBaseURL,
		Timeout: cfg.APITimeout,
	}, tokens, logger)

	snapshots := store.New(client, logger)

	// Seed from the SQLite cache so reads work before the first remote
	// refresh lands. A missing or empty cache is not an error.
	repo, err := storage.NewSnapshotRepository(cfg.SQLiteDBPath)
	if err != nil {
		appLogger.Error("failed to open snapshot cache", log.FieldError, err.Error(), log.FieldPath, cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	if cached, ok, loadErr := repo.Load(ctx); loadErr != nil {
		appLogger.Warn("failed to load cached snapshot", log.FieldError, loadErr.Error())
	} else if ok {
		if snapshots.Replace(cached) {
			appLogger.Info("seeded snapshot from cache",
				log.FieldRecordCount, len(cached.Transactions)+len(cached.Budgets)+len(cached.Goals),
				log.FieldSnapshotTime, cached.FetchedAt)
		}
	}

	// AMQP is optional; without it strategy reconciliation runs inline.
	var publisher services.ContributionPublisher
	if cfg.AMQPURL != "" {
		amqpClient, amqpErr := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if amqpErr != nil {
			appLogger.Error("failed to initialize AMQP client", log.FieldError, amqpErr.Error())
			os.Exit(1)
		}
		defer amqpClient.Close()
		publisher = amqpClient
		appLogger.Info("AMQP publisher initialized", "exchange", cfg.AMQPExchange)
	} else {
		appLogger.Info("AMQP disabled, strategy reconciliation runs inline")
	}

	goalService := services.NewGoalService(client, publisher, logger)

	// Sheets export is optional too.
	var exporter export.ReportWriter
	if cfg.GoogleSpreadsheetID != "" {
		sheets, sheetsErr := gsheet.New(ctx, gsheet.Config{
			SpreadsheetID:   cfg.GoogleSpreadsheetID,
			SheetName:       cfg.GoogleSheetName,
			CredentialsFile: cfg.GoogleCredentialsFile,
			CredentialsJSON: cfg.GoogleCredentialsJSON,
		})
		if sheetsErr != nil {
			appLogger.Error("failed to initialize sheets export", log.FieldError, sheetsErr.Error())
			os.Exit(1)
		}
		exporter = sheets
		appLogger.Info("sheets export initialized", log.FieldSpreadsheet, cfg.GoogleSpreadsheetID)
	} else {
		appLogger.Info("sheets export disabled, no GOOGLE_SPREADSHEET_ID provided")
	}

	go snapshots.RunPeriodic(ctx, cfg.RefreshInterval)
	go repo.RunPersist(ctx, snapshots, 30*time.Second, logger)

	srv := apphttp.NewServer(apphttp.Options{
		Addr:      ":" + cfg.Port,
		CacheSize: cfg.CacheSize,
		CacheTTL:  cfg.CacheTTL,
	}, snapshots, client, goalService, exporter, logger)

	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		appLogger.Info("shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			appLogger.Error("server shutdown error", log.FieldError, err.Error())
		}
		cancel()
	}()

	appLogger.Info("starting fino server", "port", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		appLogger.Error("server error", log.FieldError, err.Error(), "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	appLogger.Info("server stopped gracefully")
}
