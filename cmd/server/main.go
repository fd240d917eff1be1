package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/iho/loanticker/internal/adapter/events/kafka"
	"github.com/iho/loanticker/internal/adapter/exchange/indodax"
	httpAdapter "github.com/iho/loanticker/internal/adapter/http"
	"github.com/iho/loanticker/internal/adapter/http/handler"
	"github.com/iho/loanticker/internal/adapter/http/middleware"
	memoryRepo "github.com/iho/loanticker/internal/adapter/repository/memory"
	postgresRepo "github.com/iho/loanticker/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/loanticker/internal/adapter/repository/redis"
	sqliteRepo "github.com/iho/loanticker/internal/adapter/repository/sqlite"
	"github.com/iho/loanticker/internal/domain"
	"github.com/iho/loanticker/internal/infrastructure/config"
	"github.com/iho/loanticker/internal/infrastructure/eventpublisher"
	"github.com/iho/loanticker/internal/infrastructure/idgen"
	"github.com/iho/loanticker/internal/infrastructure/logger"
	"github.com/iho/loanticker/internal/infrastructure/metrics"
	"github.com/iho/loanticker/internal/infrastructure/postgres"
	"github.com/iho/loanticker/internal/infrastructure/redis"
	"github.com/iho/loanticker/internal/infrastructure/sqlite"
	"github.com/iho/loanticker/internal/usecase"
)

const (
	redisKeyPrefix       = "loanticker:"
	limiterCleanupPeriod = 10 * time.Minute
	limiterMaxIdle       = time.Hour
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	log.Logger = appLogger

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, appLogger); err != nil {
		appLogger.Error().Err(err).Msg("server exited with error")
		os.Exit(1)
	}
}

// storage is the opened ledger backend plus everything that must be closed
// with it.
type storage struct {
	store  usecase.SnapshotStore
	redis  *goredis.Client
	checks map[string]handler.Pinger
	closer []func()
}

func (s *storage) Close() {
	for i := len(s.closer) - 1; i >= 0; i-- {
		s.closer[i]()
	}
}

func run(ctx context.Context, cfg *config.Config, logger zerolog.Logger) error {
	loc, err := cfg.Location()
	if err != nil {
		return fmt.Errorf("ledger timezone: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.New(reg)

	st, err := openStorage(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	// Ledger events
	sink, closeSink := newEventSink(cfg, logger)
	defer closeSink()
	publisher := eventpublisher.NewEventPublisher(eventpublisher.Config{
		Sink:     sink,
		Observer: appMetrics,
		Logger:   logger.With().Str("component", "event_publisher").Logger(),
	})
	publisherCtx, stopPublisher := context.WithCancel(context.Background())
	publisherDone := make(chan struct{})
	go func() {
		defer close(publisherDone)
		publisher.Start(publisherCtx)
	}()
	defer func() {
		stopPublisher()
		<-publisherDone
	}()

	loanUC := usecase.NewLoanUseCase(usecase.LoanUseCaseConfig{
		Store:      st.store,
		IDGen:      idgen.NewMillisGenerator(),
		Publisher:  publisher,
		Observer:   appMetrics,
		Logger:     logger.With().Str("component", "ledger").Logger(),
		StorageKey: cfg.StorageKey,
		Location:   loc,
	})
	loanUC.Load(ctx)

	feed := newPriceFeed(cfg, appMetrics, logger)
	if cfg.FeedEnabled {
		if err := feed.Start(ctx); err != nil {
			return fmt.Errorf("start price feed: %w", err)
		}
		defer feed.Stop()
	}

	var idempotencyStore usecase.IdempotencyStore
	if cfg.IdempotencyEnabled {
		if st.redis == nil {
			client, err := redis.NewClient(ctx, cfg.RedisURL)
			if err != nil {
				return fmt.Errorf("connect redis for idempotency: %w", err)
			}
			st.redis = client
			st.checks["redis"] = redisPinger{client}
			st.closer = append(st.closer, func() { client.Close() })
		}
		idempotencyStore = redisRepo.NewIdempotencyStore(st.redis)
	}

	var rateLimiter *middleware.RateLimiter
	if cfg.RateLimitRPS > 0 {
		rateLimiter = middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
		go cleanupLimiters(ctx, rateLimiter, logger)
	}

	priceHandler := handler.NewPriceHandler(feed.Table(), feed, logger)
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		LoanHandler:      handler.NewLoanHandler(loanUC),
		PriceHandler:     priceHandler,
		HealthHandler:    handler.NewHealthHandler(st.checks),
		IdempotencyStore: idempotencyStore,
		IdempotencyTTL:   cfg.IdempotencyTTL,
		RateLimiter:      rateLimiter,
		HTTPMetrics:      middleware.NewHTTPMetrics(reg),
		MetricsHandler:   promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
		Logger:           logger,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info().Str("port", cfg.HTTPPort).Str("store", cfg.StoreDriver).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	if err := priceHandler.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("price streams did not close in time")
	}

	logger.Info().Msg("server stopped")
	return nil
}

// openStorage connects the snapshot store selected by cfg.StoreDriver.
func openStorage(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*storage, error) {
	st := &storage{checks: make(map[string]handler.Pinger)}

	switch cfg.StoreDriver {
	case config.StoreDriverMemory:
		st.store = memoryRepo.NewSnapshotStore()

	case config.StoreDriverSQLite, "":
		db, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		st.closer = append(st.closer, func() { db.Close() })
		st.store = sqliteRepo.NewSnapshotStore(db)
		logger.Info().Str("path", cfg.SQLitePath).Msg("opened sqlite store")

	case config.StoreDriverRedis:
		client, err := redis.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		st.closer = append(st.closer, func() { client.Close() })
		st.redis = client
		st.store = redisRepo.NewSnapshotStore(client, redisKeyPrefix)
		logger.Info().Msg("connected to redis")

	case config.StoreDriverPostgres:
		if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, logger); err != nil {
			return nil, fmt.Errorf("run migrations: %w", err)
		}
		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		st.closer = append(st.closer, pool.Close)
		st.store = postgresRepo.NewSnapshotStore(pool, postgresRepo.NewRetrier(logger))
		logger.Info().Msg("connected to postgres")

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}

	st.checks["store"] = st.store
	if st.redis != nil {
		st.checks["redis"] = redisPinger{st.redis}
	}
	return st, nil
}

// newEventSink returns the kafka writer when brokers are configured and a
// log sink otherwise.
func newEventSink(cfg *config.Config, logger zerolog.Logger) (eventpublisher.Sink, func()) {
	if len(cfg.KafkaBrokers) == 0 {
		return eventpublisher.NewLogPublisher(logger), func() {}
	}

	p := kafka.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
	logger.Info().Strs("brokers", cfg.KafkaBrokers).Str("topic", cfg.KafkaTopic).Msg("publishing ledger events to kafka")
	return p, func() {
		if err := p.Close(); err != nil {
			logger.Warn().Err(err).Msg("failed to close kafka writer")
		}
	}
}

func newPriceFeed(cfg *config.Config, observer usecase.FeedObserver, logger zerolog.Logger) *usecase.PriceFeed {
	feedLogger := logger.With().Str("component", "price_feed").Logger()
	initial, maxDelay, jitter := cfg.FeedReconnectInitial, cfg.FeedReconnectMax, cfg.FeedReconnectJitter

	return usecase.NewPriceFeed(usecase.PriceFeedConfig{
		Client: indodax.NewRESTClient(cfg.FeedRESTBaseURL,
			indodax.WithRateLimit(cfg.FeedRESTRateLimit, len(domain.DefaultPairs))),
		Dialer:       indodax.NewStreamDialer(cfg.FeedStreamURL, feedLogger),
		PollInterval: cfg.FeedPollInterval,
		NewBackOff: func() backoff.BackOff {
			return usecase.NewReconnectBackOff(initial, maxDelay, jitter)
		},
		MaxDelay: maxDelay,
		Observer: observer,
		Logger:   feedLogger,
	})
}

func cleanupLimiters(ctx context.Context, rl *middleware.RateLimiter, logger zerolog.Logger) {
	ticker := time.NewTicker(limiterCleanupPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := rl.CleanupLimiters(limiterMaxIdle); n > 0 {
				logger.Debug().Int("removed", n).Msg("dropped idle rate limiters")
			}
		}
	}
}

type redisPinger struct {
	client *goredis.Client
}

func (p redisPinger) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}
