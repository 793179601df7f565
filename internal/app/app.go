/**
 * Application Coordinator for the Resilience Framework
 *
 * Features:
 * - Dependency injection and initialization
 * - Default strategy registration order
 * - Component lifecycle management
 * - Graceful shutdown handling
 * - Signal handling (SIGINT/SIGTERM)
 *
 * Author: Roshni Games Team
 * Created: 2026-08-20
 */

package app

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/roshni-games/resilience/internal/cache"
	"github.com/roshni-games/resilience/internal/config"
	"github.com/roshni-games/resilience/internal/errors"
	"github.com/roshni-games/resilience/internal/events"
	"github.com/roshni-games/resilience/internal/logger"
	"github.com/roshni-games/resilience/internal/metrics"
	"github.com/roshni-games/resilience/internal/recovery"
)

// App wires configuration, logging, the event stream, the cache store,
// and the recovery handler into a usable unit.
type App struct {
	config    *config.Config
	logger    *logger.Logger
	bus       *events.Bus
	store     cache.Store
	handler   *recovery.Handler
	collector *metrics.Collector
	breaker   *recovery.CircuitBreakerStrategy
	adaptive  *recovery.AdaptiveStrategy

	shutdownChan  chan struct{}
	mu            sync.RWMutex
	shutdownOnce  sync.Once
	isInitialized bool
}

// New creates an uninitialized application instance.
func New() *App {
	return &App{
		shutdownChan: make(chan struct{}),
	}
}

// Initialize loads configuration and builds the recovery pipeline.
// cfgFile may be empty to use the default config search path.
func (app *App) Initialize(ctx context.Context, cfgFile string) error {
	app.mu.Lock()
	defer app.mu.Unlock()

	if app.isInitialized {
		return fmt.Errorf("application already initialized")
	}

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	app.config = cfg

	app.logger = logger.FromLevel(cfg.Log.Level, cfg.Log.Format)

	app.bus = events.NewBus(cfg.Events.BufferSize)

	store, err := openStore(ctx, cfg.Cache)
	if err != nil {
		return fmt.Errorf("failed to open cache store: %w", err)
	}
	app.store = store

	app.collector = metrics.NewCollector()
	app.collector.Attach(app.bus)

	app.handler = recovery.NewHandler(app.logger, app.bus)
	app.registerDefaults(cfg)

	app.isInitialized = true
	app.logger.Info("application initialized",
		"cache_backend", cfg.Cache.Backend,
		"strategies", len(app.handler.Registered()),
	)

	return nil
}

// registerDefaults installs the standard strategy stack. Registration
// order is selection priority, so the specific strategies come first and
// the adaptive catch-all last.
func (app *App) registerDefaults(cfg *config.Config) {
	retry := cfg.Retry

	// OOM: a single failure trips the breaker, nothing is retried.
	oom := recovery.NewOutOfMemoryBreaker(cfg.Circuit.RecoveryTimeout())
	app.handler.Register(oom)

	// Failures only a user can resolve.
	app.handler.Register(recovery.NewUserIntervention(
		recovery.ActionReauthenticate,
		"sign in again to restore the connection",
		errors.KindNetworkAuth,
	))
	app.handler.Register(recovery.NewUserIntervention(
		recovery.ActionGrantPermission,
		"grant the required permission in settings",
		errors.KindPermissionDenied,
		errors.KindPermissionNotGranted,
		errors.KindPermissionExpired,
	))
	app.handler.Register(recovery.NewUserIntervention(
		recovery.ActionFreeStorage,
		"free up storage space and try again",
		errors.KindSystemStorageFull,
	))

	// Rate limits get paced retries instead of exponential backoff.
	rl := cfg.RateLimit
	app.handler.Register(recovery.NewRateLimit(
		rl.MaxAttempts, rl.BaseDelay(), rl.RetriesPerSec, rl.Burst))

	// Unavailable services sit behind a circuit breaker so repeated
	// failures stop hammering them.
	app.breaker = recovery.NewCircuitBreaker("service_breaker",
		cfg.Circuit.MaxAttempts,
		cfg.Circuit.FailureThreshold,
		cfg.Circuit.RecoveryTimeout(),
		cfg.Circuit.MonitoringPeriod(),
		errors.KindNetworkUnavailable,
	)
	app.handler.Register(app.breaker)

	netRetry := recovery.NewNetworkRetry(
		retry.MaxAttempts, retry.BaseDelay(), retry.MaxDelay(), retry.Multiplier)
	if retry.Jitter {
		netRetry = netRetry.WithJitter()
	}
	app.handler.Register(netRetry)

	app.handler.Register(recovery.NewGameplayRetry(
		retry.MaxAttempts, retry.BaseDelay(), retry.MaxDelay(), retry.Multiplier))

	// Stale-tolerant reads fall back to the cache, then to offline
	// snapshots with no age bound.
	app.handler.Register(recovery.NewCache(app.store, cfg.Cache.MaxAge(),
		errors.KindNetworkConnection,
		errors.KindNetworkTimeout,
		errors.KindNetworkUnavailable,
	))
	app.handler.Register(recovery.NewOffline(app.store,
		errors.KindGameplayLoadFailed,
	))

	// Everything else lands on the learning catch-all.
	app.adaptive = recovery.NewAdaptive(
		cfg.Adaptive.MaxAttempts,
		cfg.Adaptive.LearningRate,
		cfg.Adaptive.MinConfidence,
	)
	app.handler.Register(app.adaptive)
}

// openStore builds the configured cache backend.
func openStore(ctx context.Context, cfg config.CacheConfig) (cache.Store, error) {
	switch cfg.Backend {
	case "", "memory":
		return cache.NewMemory(), nil
	case "sqlite":
		sc := cache.DefaultSQLiteConfig()
		sc.Path = cfg.Path
		return cache.NewSQLite(sc)
	case "redis":
		return cache.NewRedis(ctx, cache.RedisConfig{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		})
	default:
		return nil, fmt.Errorf("unknown cache backend: %s", cfg.Backend)
	}
}

// Handler returns the recovery handler.
func (app *App) Handler() *recovery.Handler {
	app.mu.RLock()
	defer app.mu.RUnlock()
	return app.handler
}

// Bus returns the error event stream.
func (app *App) Bus() *events.Bus {
	app.mu.RLock()
	defer app.mu.RUnlock()
	return app.bus
}

// Config returns the loaded configuration.
func (app *App) Config() *config.Config {
	app.mu.RLock()
	defer app.mu.RUnlock()
	return app.config
}

// Logger returns the application logger.
func (app *App) Logger() *logger.Logger {
	app.mu.RLock()
	defer app.mu.RUnlock()
	return app.logger
}

// Metrics returns the prometheus collector.
func (app *App) Metrics() *metrics.Collector {
	app.mu.RLock()
	defer app.mu.RUnlock()
	return app.collector
}

// Breaker returns the service circuit breaker for inspection.
func (app *App) Breaker() *recovery.CircuitBreakerStrategy {
	app.mu.RLock()
	defer app.mu.RUnlock()
	return app.breaker
}

// Adaptive returns the adaptive strategy for inspection.
func (app *App) Adaptive() *recovery.AdaptiveStrategy {
	app.mu.RLock()
	defer app.mu.RUnlock()
	return app.adaptive
}

// Store returns the cache store.
func (app *App) Store() cache.Store {
	app.mu.RLock()
	defer app.mu.RUnlock()
	return app.store
}

// WaitForShutdown blocks until a termination signal arrives or the
// context is cancelled, then shuts the application down.
func (app *App) WaitForShutdown(ctx context.Context) {
	sigChan := make(chan os.Signal, 1)
	app.setupSignalHandling(sigChan)

	select {
	case sig := <-sigChan:
		app.logger.Info("received signal, shutting down", "signal", sig.String())
	case <-ctx.Done():
	case <-app.shutdownChan:
	}

	app.Shutdown()
}

// Shutdown releases all resources. It is safe to call more than once.
func (app *App) Shutdown() {
	app.shutdownOnce.Do(func() {
		app.mu.Lock()
		defer app.mu.Unlock()

		close(app.shutdownChan)

		if app.collector != nil {
			app.collector.Detach()
		}
		if app.bus != nil {
			// Give in-flight events a moment to drain.
			time.Sleep(10 * time.Millisecond)
			app.bus.Close()
		}
		if app.store != nil {
			if err := app.store.Close(); err != nil && app.logger != nil {
				app.logger.Error(err, "failed to close cache store")
			}
		}

		if app.logger != nil {
			app.logger.Info("shutdown complete")
		}
		app.isInitialized = false
	})
}
