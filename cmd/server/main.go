package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpAdapter "github.com/iho/revrec/internal/adapter/http"
	"github.com/iho/revrec/internal/adapter/http/handler"
	"github.com/iho/revrec/internal/adapter/http/middleware"
	postgresRepo "github.com/iho/revrec/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/revrec/internal/adapter/repository/redis"
	"github.com/iho/revrec/internal/infrastructure/config"
	"github.com/iho/revrec/internal/infrastructure/eventpublisher"
	"github.com/iho/revrec/internal/infrastructure/logger"
	"github.com/iho/revrec/internal/infrastructure/metrics"
	"github.com/iho/revrec/internal/infrastructure/postgres"
	"github.com/iho/revrec/internal/infrastructure/redis"
	"github.com/iho/revrec/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Setup logger
	appLogger := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	zerolog.SetGlobalLevel(logger.ParseLevel(cfg.LogLevel))
	log.Logger = appLogger

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, appLogger); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}

	log.Info().Msg("server stopped")
}

func run(ctx context.Context, cfg *config.Config, logger zerolog.Logger) error {
	// Connect to PostgreSQL
	pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
		DatabaseURL:    cfg.DatabaseURL,
		MaxConns:       cfg.DatabaseMaxConns,
		MinConns:       cfg.DatabaseMinConns,
		ConnectTimeout: cfg.DatabaseTimeout,
	})
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer pool.Close()
	logger.Info().Msg("connected to postgres")

	if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	logger.Info().Str("path", cfg.MigrationsPath).Msg("migrations applied")

	// Redis backs the trial balance cache and idempotency keys; both are optional.
	var (
		cache            usecase.Cache
		idempotencyStore usecase.IdempotencyStore
		redisPinger      handler.Pinger
	)
	if cfg.RedisURL != "" {
		redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("connect to redis: %w", err)
		}
		defer redisClient.Close()
		logger.Info().Msg("connected to redis")

		cache = redisRepo.NewCache(redisClient)
		idempotencyStore = redisRepo.NewIdempotencyStore(redisClient)
		redisPinger = handler.PingerFunc(func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
	}

	recorder := metrics.NewWithRegisterer(prometheus.DefaultRegisterer)

	// Initialize repositories
	txManager := postgresRepo.NewTxManager(pool)
	journalRepo := postgresRepo.NewJournalRepository(pool)
	outboxRepo := postgresRepo.NewOutboxRepository(pool)
	idGen := postgresRepo.NewULIDGenerator()
	retrier := postgresRepo.NewRetrier().WithLogger(logger)

	// Initialize use cases
	postingUC := usecase.NewPostingUseCase(usecase.PostingConfig{
		TxManager:   txManager,
		JournalRepo: journalRepo,
		OutboxRepo:  outboxRepo,
		IDGen:       idGen,
		Retrier:     retrier,
		Cache:       cache,
		Recorder:    recorder,
		Logger:      logger,
		MaxEvents:   cfg.MaxEventsPerRequest,
		Concurrency: cfg.PostingConcurrency,
	})
	ledgerUC := usecase.NewLedgerUseCase(usecase.LedgerConfig{
		JournalRepo: journalRepo,
		Cache:       cache,
		Recorder:    recorder,
		Logger:      logger,
		CacheTTL:    cfg.TrialBalanceCacheTTL,
	})
	reconciliationUC := usecase.NewReconciliationUseCase(recorder, logger)

	// Outbox relay
	publisher := eventpublisher.NewEventPublisher(eventpublisher.Config{
		OutboxRepo: outboxRepo,
		Publisher:  eventpublisher.NewLogPublisher(logger),
		Logger:     logger,
		BatchSize:  cfg.OutboxBatchSize,
		Interval:   cfg.OutboxInterval,
		Retention:  cfg.OutboxRetention,
	})
	go publisher.Start(ctx)

	rateLimiter := newRateLimiter(cfg)
	if rateLimiter != nil {
		go rateLimiter.RunCleanup(ctx, time.Minute, 10*time.Minute)
	}

	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		PostingHandler:        handler.NewPostingHandler(postingUC),
		LedgerHandler:         handler.NewLedgerHandler(ledgerUC),
		ReconciliationHandler: handler.NewReconciliationHandler(reconciliationUC),
		HealthHandler:         handler.NewHealthHandler(pool, redisPinger),
		IdempotencyStore:      idempotencyStore,
		IdempotencyTTL:        cfg.IdempotencyTTL,
		RateLimiter:           rateLimiter,
		Logger:                logger,
		Registerer:            prometheus.DefaultRegisterer,
		Gatherer:              prometheus.DefaultGatherer,
	})

	return serve(ctx, newServer(cfg, router), cfg.HTTPShutdownTimeout, logger)
}

// newRateLimiter returns nil when rate limiting is disabled.
func newRateLimiter(cfg *config.Config) *middleware.RateLimiter {
	if cfg.RateLimitRPS <= 0 {
		return nil
	}
	return middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
}

func newServer(cfg *config.Config, h http.Handler) *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      h,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}
}

// serve runs server until ctx is cancelled, then shuts it down gracefully.
func serve(ctx context.Context, server *http.Server, shutdownTimeout time.Duration, logger zerolog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	return nil
}
