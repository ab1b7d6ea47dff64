// Package main runs the sales analytics GraphQL service.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/abgdnv/gocommerce-analytics/internal/app"
	"github.com/abgdnv/gocommerce-analytics/internal/cache"
	"github.com/abgdnv/gocommerce-analytics/internal/config"
	"github.com/abgdnv/gocommerce-analytics/internal/store"
	"github.com/abgdnv/gocommerce-analytics/internal/transport/rest"
	"github.com/abgdnv/gocommerce-analytics/migrations"
	"github.com/abgdnv/gocommerce-analytics/pkg/bootstrap"
	"github.com/abgdnv/gocommerce-analytics/pkg/config/configloader"
	"github.com/abgdnv/gocommerce-analytics/pkg/messaging"
	pnats "github.com/abgdnv/gocommerce-analytics/pkg/nats"
	"github.com/abgdnv/gocommerce-analytics/pkg/telemetry"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"
)

const serviceName = "analytics"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Printf("application run failed: %v", err)
		os.Exit(1)
	}
	log.Println("application stopped gracefully")
}

// run loads the configuration, connects the store, cache and broker, and serves until ctx is canceled.
func run(ctx context.Context) error {
	cfg, cfgErr := configloader.Load[*config.Config](serviceName)
	if cfgErr != nil {
		return fmt.Errorf("failed to load configuration: %w", cfgErr)
	}
	log.Printf("Configuration loaded: %v", cfg)

	logger := bootstrap.NewLogger(cfg.Log)
	slog.SetDefault(logger)

	meterProvider, err := telemetry.NewMeterProvider(cfg.Telemetry.ServiceName)
	if err != nil {
		return err
	}

	g, gCtx := errgroup.WithContext(ctx)

	if cfg.Telemetry.Traces.Enabled {
		tracerProvider, err := telemetry.NewTracerProvider(ctx, cfg.Telemetry)
		if err != nil {
			logger.Error("error creating tracer provider", slog.Any("error", err))
			return err
		}
		// gracefully shutdown tracer provider
		g.Go(func() error {
			<-gCtx.Done()
			logger.Info("Shutting down tracer provider")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Shutdown.Timeout)
			defer cancel()
			if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("failed to shutdown tracer provider: %w", err)
			}
			return nil
		})
	}

	st, closeStore, err := newStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	clock := clockwork.NewRealClock()
	checks := map[string]rest.Check{}
	var publisher messaging.Publisher = messaging.NopPublisher{}
	var resultCache cache.Cache = cache.NewMemory(clock, cfg.Cache.TTL)

	if cfg.NatsEnabled() {
		nc, err := pnats.NewClient(cfg.Nats, logger)
		if err != nil {
			return err
		}
		defer nc.Close()
		js, err := pnats.NewJetStreamContext(nc)
		if err != nil {
			return err
		}
		if err := pnats.EnsureStream(ctx, js, messaging.OrdersStream, messaging.OrdersSubjects); err != nil {
			return err
		}
		publisher = pnats.NewPublisher(js)
		checks["nats"] = pnats.Ping(nc)

		if cfg.Cache.UsesNats() {
			kv, err := cache.NewNatsKV(ctx, js, cfg.Cache)
			if err != nil {
				return err
			}
			resultCache = kv
		}
		logger.Info("Connected to NATS", slog.String("url", nc.ConnectedUrlRedacted()))
	}
	logger.Info("Result cache ready", slog.String("driver", cfg.Cache.Driver), slog.Duration("ttl", cfg.Cache.TTL))

	deps, err := app.SetupDependencies(cfg, st, resultCache, publisher, clock, logger, checks)
	if err != nil {
		return err
	}
	httpServer := app.SetupHttpServer(deps, cfg)

	g.Go(func() error {
		logger.Info("HTTP server listening", slog.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	})
	// gracefully shutdown HTTP server on context cancellation, after the drain period
	g.Go(func() error {
		<-gCtx.Done()
		deps.Health.Drain()
		if cfg.Shutdown.Drain > 0 && ctx.Err() != nil {
			logger.Info("Draining before shutdown", slog.Duration("drain", cfg.Shutdown.Drain))
			<-clock.After(cfg.Shutdown.Drain)
		}
		logger.Info("Shutting down HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Shutdown.Timeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	// Start the pprof server if enabled
	if cfg.PProf.Enabled {
		runtime.SetBlockProfileRate(cfg.PProf.BlockProfileRate)
		runtime.SetMutexProfileFraction(cfg.PProf.MutexProfileFraction)
		pprofServer := &http.Server{
			Addr: cfg.PProf.Addr,
		}
		g.Go(func() error {
			logger.Info("Pprof server listening", slog.String("addr", pprofServer.Addr))
			if err := pprofServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("pprof server failed: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gCtx.Done()
			logger.Info("Shutting down pprof server...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Shutdown.Timeout)
			defer cancel()
			return pprofServer.Shutdown(shutdownCtx)
		})
	}

	// flush metric readers
	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Shutdown.Timeout)
		defer cancel()
		if err := meterProvider.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shutdown meter provider: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("errgroup encountered an error: %w", err)
	}
	return nil
}

// newStore opens the configured backend for orders and products, applying migrations when asked to.
func newStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (store.Store, func(), error) {
	if !cfg.Storage.UsesPostgres() {
		logger.Warn("Using in-memory storage, data is lost on restart")
		return store.NewInMemoryStore(), func() {}, nil
	}

	dbPool, err := bootstrap.NewDbPool(ctx, cfg.Database.URL, cfg.Database.Timeout)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("Successfully connected to the database!")

	if cfg.Database.Migrate {
		if err := bootstrap.Migrate(migrations.FS, cfg.Database.URL, logger); err != nil {
			dbPool.Close()
			return nil, nil, err
		}
	}
	return store.NewPgStore(dbPool), dbPool.Close, nil
}
