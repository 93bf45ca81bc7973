package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"leadmarket_backend/internal/adapters"
	"leadmarket_backend/internal/auth"
	"leadmarket_backend/internal/contractors"
	"leadmarket_backend/internal/events"
	apphttp "leadmarket_backend/internal/http"
	"leadmarket_backend/internal/http/router"
	"leadmarket_backend/internal/leads"
	"leadmarket_backend/internal/notification"
	"leadmarket_backend/internal/payments"
	"leadmarket_backend/internal/requesters"
	"leadmarket_backend/internal/scheduler"
	"leadmarket_backend/migrations"
	"leadmarket_backend/platform/config"
	"leadmarket_backend/platform/db"
	"leadmarket_backend/platform/logger"
	"leadmarket_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg, migrations.FS)
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	// Shared validator instance for dependency injection
	val := validator.New()

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	contractorsModule := contractors.NewModule(pool, eventBus, val, log)
	requestersModule := requesters.NewModule(pool, log)

	requesterRegistrar := adapters.NewRequesterRegistrarAdapter(requestersModule.Service())
	contractorRegistrar := adapters.NewContractorRegistrarAdapter(contractorsModule.Service())
	authModule := auth.NewModule(pool, requesterRegistrar, contractorRegistrar, cfg, val, log)

	contractorDirectory := adapters.NewContractorDirectoryAdapter(contractorsModule.Service().Repository())
	creditLedger := adapters.NewCreditLedgerAdapter(contractorsModule.Service().Repository())
	leadsModule := leads.NewModule(pool, contractorDirectory, creditLedger, eventBus, val, cfg, log)

	modules := []apphttp.Module{
		authModule,
		requestersModule,
		contractorsModule,
		leadsModule,
	}

	// Payments require redis for checkout session state. Without it reveals
	// still work; blocked reveals just carry no checkout redirect.
	if cfg.RedisURL != "" {
		redisOpt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Error("failed to parse redis url", "error", err)
			panic("failed to parse redis url: " + err.Error())
		}
		paymentsModule := payments.NewModule(redis.NewClient(redisOpt), contractorsModule.Service(), cfg, val, log)
		leadsModule.SetPaymentInitiator(paymentsModule.Service())
		modules = append(modules, paymentsModule)
	} else {
		log.Warn("REDIS_URL not configured; checkout disabled")
	}

	// Notification module subscribes to domain events (not HTTP-facing)
	if enqueuer, closeEnqueuer := initNotificationEnqueuer(cfg, log); enqueuer != nil {
		defer closeEnqueuer()
		notificationModule := notification.NewModule(enqueuer, log)
		notificationModule.RegisterHandlers(eventBus)
	}

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   db.NewPoolAdapter(pool),
		EventBus: eventBus,
		Modules:  modules,
	}

	engine := router.New(app)

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- engine.Run(cfg.HTTPAddr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = shutdownCtx
	case err := <-srvErr:
		if err != nil {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

func initNotificationEnqueuer(cfg config.SchedulerConfig, log *logger.Logger) (scheduler.NotificationEnqueuer, func()) {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; email notifications disabled")
		return nil, nil
	}

	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize scheduler client", "error", err)
		return nil, nil
	}

	return client, func() {
		_ = client.Close()
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
