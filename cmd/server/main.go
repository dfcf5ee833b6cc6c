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

	"github.com/oklog/ulid/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	httpAdapter "github.com/gtservice/gtledger/internal/adapter/http"
	"github.com/gtservice/gtledger/internal/adapter/http/handler"
	"github.com/gtservice/gtledger/internal/adapter/http/middleware"
	postgresRepo "github.com/gtservice/gtledger/internal/adapter/repository/postgres"
	redisRepo "github.com/gtservice/gtledger/internal/adapter/repository/redis"
	"github.com/gtservice/gtledger/internal/app"
	"github.com/gtservice/gtledger/internal/infrastructure/auth"
	"github.com/gtservice/gtledger/internal/infrastructure/config"
	"github.com/gtservice/gtledger/internal/infrastructure/eventpublisher"
	"github.com/gtservice/gtledger/internal/infrastructure/logger"
	"github.com/gtservice/gtledger/internal/infrastructure/metrics"
	"github.com/gtservice/gtledger/internal/infrastructure/postgres"
	"github.com/gtservice/gtledger/internal/infrastructure/redis"
	"github.com/gtservice/gtledger/internal/usecase"
)

const limiterCleanupInterval = 5 * time.Minute

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	application, err := build(ctx, cfg, log, reg)
	if err != nil {
		return err
	}
	defer application.close()

	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()
	application.startWorkers(workerCtx)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      application.handler,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.HTTPPort).Str("storage", cfg.Storage).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	cancelWorkers()
	log.Info().Msg("server stopped")
	return nil
}

// application is the fully wired server: its HTTP handler, the background
// workers to start and the resources to release.
type application struct {
	handler http.Handler
	workers []func(ctx context.Context)
	closers []func()
}

func (a *application) startWorkers(ctx context.Context) {
	for _, worker := range a.workers {
		go worker(ctx)
	}
}

func (a *application) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func build(ctx context.Context, cfg *config.Config, log zerolog.Logger, reg *prometheus.Registry) (*application, error) {
	a := &application{}
	m := metrics.NewWithRegistry(reg)
	checks := map[string]handler.Check{}

	var repos app.Repositories
	var retrier usecase.Retrier

	switch cfg.Storage {
	case config.StorageMemory:
		log.Warn().Msg("using in-memory storage, data is lost on exit")
		repos = app.MemoryRepositories()

	default:
		if cfg.RunMigrations {
			if err := postgres.NewMigrator(cfg.DatabaseURL, cfg.MigrationsPath, log).Up(); err != nil {
				return nil, fmt.Errorf("run migrations: %w", err)
			}
		}

		pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
			DatabaseURL:    cfg.DatabaseURL,
			MaxConns:       cfg.DatabaseMaxConns,
			MinConns:       cfg.DatabaseMinConns,
			ConnectTimeout: cfg.DatabaseTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}
		a.closers = append(a.closers, pool.Close)
		log.Info().Msg("connected to postgres")

		repos = app.PostgresRepositories(pool)
		checks["postgres"] = pool.Ping
		if cfg.TxRetryEnabled {
			retrier = postgresRepo.NewRetrier(m, log)
		}
	}

	var redisClient *goredis.Client
	if cfg.RedisURL != "" {
		client, err := redis.NewClient(ctx, cfg.RedisURL, redis.ClientOptions{
			PoolSize:    cfg.RedisPoolSize,
			PingTimeout: cfg.RedisPingTimeout,
		})
		if err != nil {
			a.close()
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		a.closers = append(a.closers, func() { _ = client.Close() })
		log.Info().Msg("connected to redis")

		redisClient = client
		checks["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
	}

	taxRate, err := cfg.TaxRate()
	if err != nil {
		a.close()
		return nil, err
	}

	secret := cfg.JWTSecret
	if secret == "" {
		secret = ulid.Make().String()
		log.Warn().Msg("JWT_SECRET not set, tokens will not survive a restart")
	}
	jwt := auth.NewJWTManager(secret, cfg.JWTExpiration)

	opts := app.Options{
		TaxRate:         taxRate,
		InvoiceDueDays:  cfg.InvoiceDueDays,
		SummaryCacheTTL: cfg.SummaryCacheTTL,
		Auth: usecase.AuthSettings{
			MaxFailedAttempts: cfg.AuthMaxFailedAttempts,
			LockoutDuration:   cfg.AuthLockoutDuration,
		},
		Tokens:  jwt,
		OTP:     auth.NewTOTP(cfg.TOTPIssuer),
		IDs:     postgresRepo.NewULIDGenerator(),
		Metrics: m,
		Logger:  log,
	}
	if redisClient != nil {
		opts.SummaryCache = redisRepo.NewCache(redisClient)
	}
	services := app.NewServices(repos, opts)

	loginLimiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, "login", m)

	routerCfg := httpAdapter.RouterConfig{
		StockHandler:          handler.NewStockHandler(services.Stock, retrier),
		InvoiceHandler:        handler.NewInvoiceHandler(services.Invoices, services.Accounting),
		AccountingHandler:     handler.NewAccountingHandler(services.Accounting),
		CustomerHandler:       handler.NewCustomerHandler(services.Customers),
		JobHandler:            handler.NewJobHandler(services.Jobs),
		AuthHandler:           handler.NewAuthHandler(services.Auth),
		ReconciliationHandler: handler.NewReconciliationHandler(services.Reconciliation),
		HealthHandler:         handler.NewHealthHandler(checks),
		LoginLimiter:          loginLimiter,
		IdempotencyTTL:        cfg.IdempotencyTTL,
		CORSAllowedOrigins:    cfg.CORSAllowedOrigins,
		Metrics:               m,
		MetricsHandler:        promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		Logger:                log,
	}
	if cfg.AuthEnabled {
		routerCfg.TokenVerifier = jwt
	}
	if redisClient != nil {
		routerCfg.IdempotencyStore = redisRepo.NewIdempotencyStore(redisClient)
	}
	a.handler = httpAdapter.NewRouter(routerCfg)

	var publisher eventpublisher.Publisher = eventpublisher.NewLogPublisher(log)
	if redisClient != nil && cfg.OutboxStream != "" {
		publisher = eventpublisher.NewStreamPublisher(redisClient, cfg.OutboxStream, cfg.OutboxStreamMaxLen)
	}
	outbox := eventpublisher.NewEventPublisher(eventpublisher.Config{
		OutboxRepo: repos.Outbox,
		Publisher:  publisher,
		Metrics:    m,
		Logger:     log,
		BatchSize:  cfg.OutboxBatchSize,
		Interval:   cfg.OutboxPollInterval,
		Retention:  cfg.OutboxRetention,
	})

	a.workers = append(a.workers,
		func(ctx context.Context) { _ = outbox.Start(ctx) },
		func(ctx context.Context) { loginLimiter.RunCleanup(ctx, limiterCleanupInterval) },
	)

	return a, nil
}
