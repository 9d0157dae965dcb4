package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"fino/internal/amqp"
	"fino/internal/backend"
	"fino/internal/config"
	"fino/internal/log"
	"fino/internal/services"
	"fino/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := log.New(log.DefaultConfig())
	log.SetDefault(logger)
	appLogger := logger.WithComponent(log.ComponentWorker)

	appLogger.Info("starting fino-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		appLogger.Error("configuration validation failed", log.FieldError, err.Error())
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		appLogger.Error("AMQP_URL is required for the worker")
		os.Exit(1)
	}

	tokens := backend.NewTokenSource(cfg.APIToken, cfg.APIRefreshToken, func() {
		appLogger.Error("session expired, restart with fresh API tokens")
	})
	client := backend.New(backend.Config{
		BaseURL: cfg.APIBaseURL,
		Timeout: cfg.APITimeout,
	}, tokens, logger)

	// The worker reconciles inline; it never publishes back to the broker.
	goalService := services.NewGoalService(client, nil, logger)
	reconciler := worker.NewReconcileWorker(goalService, logger)

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		appLogger.Error("failed to initialize AMQP client", log.FieldError, err.Error())
		os.Exit(1)
	}
	defer amqpClient.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		handler := func(msg *amqp.ContributionRecordedMessage) error {
			return reconciler.HandleContributionMessage(ctx, msg)
		}
		if err := amqpClient.ConsumeContributionRecorded(ctx, handler); err != nil {
			if err != context.Canceled {
				appLogger.Error("message consumption failed", log.FieldError, err.Error())
			}
			cancel()
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		appLogger.Info("shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
		appLogger.Info("context cancelled")
	}

	appLogger.Info("shutting down worker")
	cancel()

	// Give the in-flight handler a moment to finish before Close tears
	// down the channel.
	time.Sleep(2 * time.Second)
	appLogger.Info("worker shutdown complete")
}
