package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tuanvumaihuynh/product-management/internal/config"
	"github.com/tuanvumaihuynh/product-management/internal/event"
	"github.com/tuanvumaihuynh/product-management/internal/health"
	"github.com/tuanvumaihuynh/product-management/internal/http"
	"github.com/tuanvumaihuynh/product-management/internal/http/middleware"
	"github.com/tuanvumaihuynh/product-management/internal/log"
	"github.com/tuanvumaihuynh/product-management/internal/relay"
	"github.com/tuanvumaihuynh/product-management/internal/repository"
	"github.com/tuanvumaihuynh/product-management/internal/service"
	"github.com/tuanvumaihuynh/product-management/internal/storage/cache"
	"github.com/tuanvumaihuynh/product-management/internal/storage/db"
	"github.com/tuanvumaihuynh/product-management/internal/storage/mq"
	"github.com/tuanvumaihuynh/product-management/internal/telemetry"
	"github.com/tuanvumaihuynh/product-management/pkg/cmdutil"
)

func main() {
	if err := run(); err != nil {
		fmt.Printf("error running standalone application: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	time.Local = time.UTC

	type Config struct {
		Log       config.Log
		Postgres  config.Postgres
		HTTP      config.HTTP
		RateLimit config.RateLimit
		Redis     config.Redis
		Events    config.Events
		Relay     config.Relay
		Kafka     config.Kafka
		Otel      config.Otel
	}
	cfg, err := config.New[Config]()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	logger := log.NewSlogLogger(cfg.Log)

	cleanupTracer, err := telemetry.InitTracer(ctx, cfg.Otel)
	if err != nil {
		return fmt.Errorf("error initializing tracer: %w", err)
	}
	defer func() {
		if err := cleanupTracer(ctx); err != nil {
			logger.ErrorContext(ctx, "error cleaning up tracer", slog.Any("error", err))
		}
	}()

	pgxPool, err := db.NewPgxPool(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("error creating pgx pool: %w", err)
	}
	defer pgxPool.Close()

	dbClient := db.NewClient(pgxPool)

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			return fmt.Errorf("error creating redis client: %w", err)
		}
		defer redisClient.Close()
	}

	productRepository := repository.NewProductRepository(dbClient)

	// Left nil when events are disabled so no outbox rows are written.
	var outboxMsgRepository repository.OutboxMsgRepository
	if cfg.Events.Enabled {
		outboxMsgRepository = repository.NewOutboxMsgRepository(dbClient)
	}

	productService := service.NewProductService(logger, dbClient, productRepository, outboxMsgRepository)

	interruptChan := cmdutil.InterruptChan()

	if cfg.Events.Enabled {
		kafkaProducer, err := mq.NewKafkaProducer(ctx, cfg.Kafka)
		if err != nil {
			return fmt.Errorf("error creating kafka producer: %w", err)
		}
		defer kafkaProducer.Close()

		kafkaConsumer, err := mq.NewKafkaConsumer(ctx, cfg.Kafka, logger)
		if err != nil {
			return fmt.Errorf("error creating kafka consumer: %w", err)
		}

		eventSvc := event.New(cfg.Events, logger, kafkaConsumer)
		cleanupEvents, err := eventSvc.Run(ctx)
		if err != nil {
			return fmt.Errorf("error running event service: %w", err)
		}
		logger.InfoContext(ctx, "event service started")
		defer func() {
			logger.InfoContext(ctx, "event service is shutting down")
			cleanupEvents()
			logger.InfoContext(ctx, "event service is stopped")
		}()

		relaySvc := relay.NewService(cfg.Relay, logger, dbClient, outboxMsgRepository, kafkaProducer)
		cleanupRelay := relaySvc.Run(ctx)
		logger.InfoContext(ctx, "relay service started")
		defer func() {
			logger.InfoContext(ctx, "relay service is shutting down")
			cleanupRelay()
			logger.InfoContext(ctx, "relay service is stopped")
		}()
	}

	probe := health.NewProbeRunner(2*time.Second,
		health.NewDBChecker(dbClient),
		health.NewRedisChecker(redisClient),
	)

	var httpOpts []http.Option
	if cfg.RateLimit.Enabled {
		var limiter middleware.Limiter = middleware.NewLocalLimiter()
		if redisClient != nil {
			limiter = middleware.NewRedisLimiter(redisClient, "")
		}
		httpOpts = append(httpOpts, http.WithRateLimit(limiter, cfg.RateLimit))
	}

	httpSvc := http.New(cfg.HTTP, logger, productService, probe, httpOpts...)
	cleanupHTTP, err := httpSvc.Run(ctx)
	if err != nil {
		return fmt.Errorf("error running http service: %w", err)
	}
	logger.InfoContext(ctx, "http service started", slog.String("address", fmt.Sprintf(":%d", cfg.HTTP.Port)))

	<-interruptChan

	logger.InfoContext(ctx, "http service is shutting down")
	if err := cleanupHTTP(ctx); err != nil {
		logger.ErrorContext(ctx, "error shutting down http service", slog.Any("error", err))
	}
	logger.InfoContext(ctx, "http service is stopped")

	return nil
}
