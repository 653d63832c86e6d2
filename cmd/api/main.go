package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/wolfman30/ems-vitals-platform/cmd/mainconfig"
	"github.com/wolfman30/ems-vitals-platform/internal/api/router"
	"github.com/wolfman30/ems-vitals-platform/internal/app/bootstrap"
	"github.com/wolfman30/ems-vitals-platform/internal/archive"
	appconfig "github.com/wolfman30/ems-vitals-platform/internal/config"
	"github.com/wolfman30/ems-vitals-platform/internal/contacts"
	"github.com/wolfman30/ems-vitals-platform/internal/http/handlers"
	httpmiddleware "github.com/wolfman30/ems-vitals-platform/internal/http/middleware"
	"github.com/wolfman30/ems-vitals-platform/internal/observability/metrics"
	"github.com/wolfman30/ems-vitals-platform/internal/vitals"
	"github.com/wolfman30/ems-vitals-platform/pkg/logging"
)

func main() {
	if err := appconfig.LoadDotEnv(); err != nil {
		logging.Default().Warn("failed to read .env", "error", err)
	}
	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting ems-vitals-platform API server",
		"env", cfg.Env,
		"port", cfg.Port,
		"store", cfg.VitalsStore,
	)

	ctx := context.Background()

	metricsHandler, vitalsMetrics := setupMetrics()

	var awsCfg *aws.Config
	if needsAWS(cfg) {
		loaded, err := mainconfig.LoadAWSConfig(ctx, cfg)
		if err != nil {
			logger.Error("failed to load AWS config", "error", err)
			os.Exit(1)
		}
		awsCfg = &loaded
	}

	pool, err := bootstrap.BuildPostgresPool(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		logger.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	if pool != nil {
		defer pool.Close()
	}

	redisClient := bootstrap.BuildRedisClient(ctx, cfg, logger, true)
	if redisClient != nil {
		defer func() { _ = redisClient.Close() }()
	}

	backends := bootstrap.Backends{Postgres: pool, Redis: redisClient}
	if awsCfg != nil && cfg.VitalsStore == appconfig.StoreDynamo {
		backends.Dynamo = dynamodb.NewFromConfig(*awsCfg)
	}
	store, err := bootstrap.BuildVitalsStore(cfg, backends, logger)
	if err != nil {
		logger.Error("failed to build vitals store", "error", err)
		os.Exit(1)
	}

	auditService, auditDB, err := bootstrap.BuildAuditService(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to connect to audit database", "error", err)
		os.Exit(1)
	}
	if auditDB != nil {
		defer func() { _ = auditDB.Close() }()
	}

	opts := []vitals.ServiceOption{
		vitals.WithMetrics(vitalsMetrics),
		vitals.WithListLimit(cfg.VitalsListLimit),
	}
	if auditService != nil {
		opts = append(opts, vitals.WithAuditor(auditService), vitals.WithAuditTrail(auditService))
	}
	var sqsClient *sqs.Client
	if awsCfg != nil && cfg.AlertQueueURL != "" {
		sqsClient = sqs.NewFromConfig(*awsCfg)
	}
	opts = append(opts, vitals.WithAlerts(bootstrap.BuildAlertPublisher(cfg, sqsClient, logger)))
	if awsCfg != nil && cfg.ArchiveBucket != "" {
		opts = append(opts, vitals.WithExporter(archive.NewStore(mainconfig.NewS3Client(*awsCfg, cfg), cfg.ArchiveBucket, logger)))
	}
	service := vitals.NewService(store, logger, opts...)

	limiter := httpmiddleware.NewRateLimiter(cfg.RateLimitPerSec, cfg.RateLimitBurst)
	defer limiter.Stop()

	if cfg.UserJWTSecret == "" {
		logger.Warn("USER_JWT_SECRET is empty; /v1 routes will reject every request")
	}

	r := router.New(&router.Config{
		Logger:             logger,
		VitalsHandler:      vitals.NewHandler(service, logger),
		ContactsHandler:    contacts.NewHandler(bootstrap.BuildContactsRepository(pool), logger),
		HealthHandler:      handlers.NewHealthHandler(healthChecks(pool, redisClient, auditDB), logger),
		MetricsHandler:     metricsHandler,
		UserAuthSecret:     cfg.UserJWTSecret,
		CORSAllowedOrigins: cfg.CORSAllowedOrigin,
		RateLimiter:        limiter,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		return
	}
	logger.Info("server stopped")
}

func setupMetrics() (http.Handler, *metrics.VitalsMetrics) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), metrics.NewVitalsMetrics(reg)
}

// needsAWS reports whether any configured feature talks to AWS.
func needsAWS(cfg *appconfig.Config) bool {
	return cfg.VitalsStore == appconfig.StoreDynamo ||
		strings.TrimSpace(cfg.AlertQueueURL) != "" ||
		strings.TrimSpace(cfg.ArchiveBucket) != ""
}

func healthChecks(pool *pgxpool.Pool, redisClient *redis.Client, auditDB *sql.DB) map[string]handlers.HealthCheck {
	checks := map[string]handlers.HealthCheck{}
	if pool != nil {
		checks["postgres"] = pool.Ping
	}
	if redisClient != nil {
		checks["redis"] = func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}
	}
	if auditDB != nil {
		checks["audit_db"] = auditDB.PingContext
	}
	return checks
}
