// Package main is the entry point for the booking-service API.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"booking-service/internal/app/service"
	"booking-service/internal/config"
	"booking-service/internal/domain"
	"booking-service/internal/infra/cache"
	"booking-service/internal/infra/kafka"
	"booking-service/internal/infra/postgres"
	"booking-service/internal/infra/postgres/migrations"
	"booking-service/internal/infra/redis"
	"booking-service/internal/job"
	"booking-service/internal/logger"
	"booking-service/internal/metrics"
	"booking-service/internal/transport/httpserver"
	"booking-service/internal/transport/httpserver/middleware"
	"booking-service/internal/validator"
	"booking-service/pkg/locker"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log, err := logger.New(
		logger.Config{
			Level:  cfg.Logger.Level,
			Format: cfg.Logger.Format,
			Output: cfg.Logger.Output,
		},
		logger.SentryConfig{
			Enabled:     cfg.Sentry.Enabled,
			DSN:         cfg.Sentry.DSN,
			Environment: cfg.Sentry.Environment,
			SampleRate:  cfg.Sentry.SampleRate,
		},
	)
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting booking-service",
		zap.String("env", cfg.App.Env),
		zap.Int("port", cfg.App.Port),
		zap.String("lock_backend", cfg.Lock.Backend),
	)

	ctx := context.Background()

	db, err := postgres.NewConnection(
		postgres.Config{
			Host:          cfg.Database.Host,
			Port:          cfg.Database.Port,
			Name:          cfg.Database.Name,
			User:          cfg.Database.User,
			Password:      cfg.Database.Password,
			SSLMode:       cfg.Database.SSLMode,
			MaxOpenConns:  cfg.Database.MaxOpenConns,
			MaxIdleConns:  cfg.Database.MaxIdleConns,
			MaxLifetime:   cfg.Database.MaxLifetime,
			SlowThreshold: cfg.Database.SlowThreshold,
		},
		log.Logger,
	)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer func() { _ = postgres.Close(db) }()

	if cfg.Database.AutoMigrate {
		if err := migrations.Run(db); err != nil {
			log.Fatal("failed to run migrations", zap.Error(err))
		}
		log.Info("database migrations completed")
	}

	redisCfg := redis.Config{
		Addr:         cfg.Redis.Addr(),
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	}
	redisClient, err := redis.NewClient(ctx, redisCfg)
	if err != nil {
		log.Fatal("failed to connect to Redis", zap.Error(err))
	}
	defer func() { _ = redisClient.Close() }()
	log.Info("connected to Redis", zap.String("addr", redisCfg.Addr))

	// Distributed lock
	var store locker.Store
	switch cfg.Lock.Backend {
	case config.LockBackendRedlock:
		nodes, err := redis.NewClients(ctx, redisCfg, cfg.Lock.RedlockAddrs)
		if err != nil {
			log.Fatal("failed to connect to redlock nodes", zap.Error(err))
		}
		defer func() {
			for _, n := range nodes {
				_ = n.Close()
			}
		}()
		store = locker.NewRedlockStore(nodes...)
	default:
		store = locker.NewRedisStore(redisClient)
	}

	mutex := locker.NewMutex(store, log.Logger,
		locker.WithBackoff(cfg.Lock.BaseDelay, cfg.Lock.MaxDelay),
		locker.WithObserver(func(o locker.Outcome) { metrics.ObserveLock(string(o)) }),
	)

	// Cache (optional, based on config)
	var appCache domain.Cache
	if cfg.Cache.Enabled {
		appCache, err = newCache(cfg, redisClient, log.Logger)
		if err != nil {
			log.Fatal("failed to create cache", zap.Error(err))
		}
		log.Info("cache enabled",
			zap.String("backend", cfg.Cache.Backend),
			zap.Duration("article_ttl", cfg.Cache.ArticleTTL),
		)
	} else {
		log.Info("cache disabled")
	}

	// Events
	var publisher domain.EventPublisher = kafka.NoopPublisher{}
	if cfg.Kafka.Enabled {
		p, err := kafka.NewPublisher(kafka.Config{
			Brokers:      cfg.Kafka.Brokers,
			Topic:        cfg.Kafka.Topic,
			MaxAttempts:  cfg.Kafka.MaxAttempts,
			BatchTimeout: cfg.Kafka.BatchTimeout,
			WriteTimeout: cfg.Kafka.WriteTimeout,
		}, log.Logger)
		if err != nil {
			log.Fatal("failed to create kafka publisher", zap.Error(err))
		}
		defer func() { _ = p.Close() }()
		publisher = p
	}

	// Services
	reservationSvc := service.NewReservationService(
		postgres.NewTxManager(db),
		postgres.NewResourceRepository(db),
		postgres.NewReservationRepository(db),
		log.Logger,
		service.WithEventPublisher(publisher),
		service.WithPublishTimeout(cfg.Kafka.WriteTimeout),
	)
	catalogSvc := service.NewCatalogService(
		postgres.NewCatalogRepository(db),
		appCache,
		log.Logger,
		service.WithArticleTTL(cfg.Cache.ArticleTTL),
		service.WithStampedeLock(mutex, cfg.Lock.Lease, cfg.Lock.MaxWait),
	)
	accessSvc := service.NewAccessService(
		postgres.NewClientRepository(db),
		appCache,
		redis.NewRateLimiter(redisClient),
		service.Limits{
			IP:     cfg.RateLimit.IPLimit,
			APIKey: cfg.RateLimit.APIKeyLimit,
			Window: cfg.RateLimit.Window,
		},
		cfg.Cache.ClientTTL,
		log.Logger,
	)

	server := httpserver.NewServer(
		httpserver.ServerConfig{
			Port:      cfg.App.Port,
			BodyLimit: 1024 * 1024, // 1MB
			Debug:     cfg.App.Debug,
		},
		httpserver.Dependencies{
			Reservations: reservationSvc,
			Catalog:      catalogSvc,
			Access:       accessSvc,
			Probes: map[string]middleware.Probe{
				"postgres": func(ctx context.Context) error { return postgres.HealthCheck(ctx, db) },
				"redis":    func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
			},
			Metrics:   metrics.Handler(metrics.NewRegistry()),
			Validator: validator.New(),
		},
		log.Logger,
	)

	// Background cache refresh. A shared cache is refreshed by one instance
	// per interval; an in-process cache must be refreshed by every instance,
	// so its cooldown lock is local.
	var refresher *job.CacheRefresher
	if cfg.Cache.Enabled && cfg.Refresh.Enabled {
		var refreshLock locker.DistributedLocker = mutex
		if !cfg.Cache.Shared() {
			refreshLock = locker.NewMutex(locker.NewMemoryStore(), log.Logger)
		}

		refresher = job.NewCacheRefresher(
			catalogSvc,
			job.RefreshConfig{
				Interval:  cfg.Refresh.Interval,
				Timeout:   cfg.Refresh.Timeout,
				OnStartup: cfg.Refresh.OnStartup,
			},
			log.Logger,
			refreshLock,
		)
		refresher.Start(cfg.Refresh.OnStartup)
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Info("shutdown signal received")

		if refresher != nil {
			refresher.Stop()
		}

		ctx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
		defer cancel()

		if err := server.App.ShutdownWithContext(ctx); err != nil {
			log.Error("server shutdown error", zap.Error(err))
		}
	}()

	if err := server.Start(cfg.App.Port); err != nil {
		log.Fatal("server error", zap.Error(err))
	}
}

// newCache builds the configured cache backend behind a circuit breaker.
func newCache(cfg *config.Config, client goredis.UniversalClient, log *zap.Logger) (domain.Cache, error) {
	var backend domain.Cache
	switch cfg.Cache.Backend {
	case config.CacheBackendMemory:
		mem, err := cache.NewMemory(cache.MemoryConfig{MaxCost: cfg.Cache.MaxCost})
		if err != nil {
			return nil, err
		}
		backend = mem
	default:
		backend = redis.NewCache(client, log, cfg.Cache.KeyPrefix)
	}

	return cache.NewResilient("cache-"+cfg.Cache.Backend, backend, cache.BreakerConfig{
		MaxRequests:  cfg.Cache.Breaker.MaxRequests,
		Interval:     cfg.Cache.Breaker.Interval,
		Timeout:      cfg.Cache.Breaker.Timeout,
		FailureRatio: cfg.Cache.Breaker.FailureRatio,
	}, log), nil
}
