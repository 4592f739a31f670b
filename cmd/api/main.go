package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"localist_backend/internal/adapters"
	"localist_backend/internal/events"
	apphttp "localist_backend/internal/http"
	"localist_backend/internal/http/router"
	"localist_backend/internal/i18n"
	"localist_backend/internal/mapcore"
	"localist_backend/internal/notify"
	"localist_backend/internal/pins"
	"localist_backend/internal/search"
	"localist_backend/internal/search/geocode"
	"localist_backend/internal/worker"
	"localist_backend/platform/config"
	"localist_backend/platform/db"
	"localist_backend/platform/kv"
	"localist_backend/platform/logger"
	"localist_backend/platform/validator"
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
		return db.RunMigrations(ctx, cfg, "migrations")
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

	// Durable key-value store for the search cache and history. Falls back
	// to in-process memory when Redis is not configured.
	store := initStore(cfg, log)

	locales, err := i18n.New(cfg.Locale)
	if err != nil {
		log.Error("failed to load locale bundles", "error", err)
		panic("failed to load locale bundles: " + err.Error())
	}
	log.Info("locales loaded", "locale", locales.Locale())

	// The outbox is both the notifier and the haptics sink; clients poll it.
	outbox := notify.NewOutbox(locales)

	// Shared validator instance for dependency injection
	val := validator.New()

	geocoder := geocode.NewClient(cfg, log)

	taskClient, closeTaskClient := initTaskClient(cfg, log)
	if closeTaskClient != nil {
		defer closeTaskClient()
	}

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	pinsModule := pins.NewModule(pool, eventBus, val, log)

	pinProvider := adapters.NewMapPinProvider(pinsModule.Repository())
	addressResolver := adapters.NewMapAddressResolver(geocoder)
	mapsModule := mapcore.NewModule(cfg, pinProvider, addressResolver, locales, outbox, outbox, val, log)
	mapsModule.RegisterHandlers(eventBus)

	mapPorts := adapters.NewSearchMapPortProvider(mapsModule)
	searchModule := search.NewModule(store, geocoder, mapPorts, outbox, locales, cfg, val, log)

	notifyModule := notify.NewModule(outbox)

	// New pins get their address reverse-geocoded in the background.
	if taskClient != nil {
		taskClient.RegisterHandlers(eventBus, log)
	}

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   pool,
		EventBus: eventBus,
		Modules: []apphttp.Module{
			searchModule,
			mapsModule,
			pinsModule,
			notifyModule,
		},
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

func initStore(cfg config.RedisConfig, log *logger.Logger) kv.Store {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; search cache and history are in-process only")
		return kv.NewMemoryStore()
	}

	store, err := kv.NewRedisStore(cfg)
	if err != nil {
		log.Error("failed to initialize redis store, falling back to memory", "error", err)
		return kv.NewMemoryStore()
	}
	return store
}

func initTaskClient(cfg config.WorkerConfig, log *logger.Logger) (*worker.Client, func()) {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; pin address backfill disabled")
		return nil, nil
	}

	taskClient, err := worker.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize task client", "error", err)
		return nil, nil
	}

	return taskClient, func() {
		_ = taskClient.Close()
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
