package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"github.com/wolfman30/ems-vitals-platform/cmd/mainconfig"
	"github.com/wolfman30/ems-vitals-platform/internal/alerts"
	"github.com/wolfman30/ems-vitals-platform/internal/app/bootstrap"
	appconfig "github.com/wolfman30/ems-vitals-platform/internal/config"
	"github.com/wolfman30/ems-vitals-platform/pkg/logging"
)

func main() {
	if err := appconfig.LoadDotEnv(); err != nil {
		logging.Default().Warn("failed to read .env", "error", err)
	}
	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel).With("component", "alert-worker")

	if strings.TrimSpace(cfg.AlertQueueURL) == "" {
		logger.Error("ALERT_QUEUE_URL is required")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
	if err != nil {
		logger.Error("failed to load AWS config", "error", err)
		os.Exit(1)
	}

	pool, err := bootstrap.BuildPostgresPool(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		logger.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	if pool == nil {
		logger.Warn("DATABASE_URL is empty; contacts are in-memory and alerts will reach nobody")
	} else {
		defer pool.Close()
	}

	var sesClient *sesv2.Client
	if cfg.EmailProvider == "ses" {
		sesClient = sesv2.NewFromConfig(awsCfg)
	}

	opts := []alerts.DispatcherOption{
		alerts.WithBatchSize(cfg.AlertBatchSize),
		alerts.WithWaitSeconds(cfg.AlertPollWait),
	}
	if redisClient := bootstrap.BuildRedisClient(ctx, cfg, logger, true); redisClient != nil {
		defer func() { _ = redisClient.Close() }()
		opts = append(opts, alerts.WithDeliveryLog(alerts.NewRedisDeliveryLog(redisClient, 0)))
	} else {
		logger.Warn("redis unavailable; alert deliveries are tracked in memory only")
	}

	dispatcher := alerts.NewDispatcher(
		alerts.NewSQSQueue(sqs.NewFromConfig(awsCfg), cfg.AlertQueueURL),
		bootstrap.BuildContactsRepository(pool),
		bootstrap.BuildEmailSender(cfg, sesClient, logger),
		logger,
		opts...,
	)

	logger.Info("alert worker started", "queue", cfg.AlertQueueURL, "email_provider", cfg.EmailProvider)
	if err := dispatcher.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Error("alert worker exited", "error", err)
		os.Exit(1)
	}
	logger.Info("alert worker stopped")
}
