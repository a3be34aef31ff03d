// Package app wires together all dependencies and runs the storefront.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/TuancoderLo/perfumestore/internal/catalog"
	"github.com/TuancoderLo/perfumestore/internal/config"
	"github.com/TuancoderLo/perfumestore/internal/event"
	handler "github.com/TuancoderLo/perfumestore/internal/handler/http"
	"github.com/TuancoderLo/perfumestore/internal/proxy"
	"github.com/TuancoderLo/perfumestore/internal/service"
	"github.com/TuancoderLo/perfumestore/pkg/cache"
	"github.com/TuancoderLo/perfumestore/pkg/health"
	"github.com/TuancoderLo/perfumestore/pkg/httpclient"
	pkgkafka "github.com/TuancoderLo/perfumestore/pkg/kafka"
	"github.com/TuancoderLo/perfumestore/pkg/middleware"
	"github.com/TuancoderLo/perfumestore/pkg/tracing"
)

// App holds the running components of the storefront service.
type App struct {
	cfg             *config.Config
	logger          *slog.Logger
	httpServer      *http.Server
	limiter         *middleware.RateLimiter
	suggester       *service.Suggester
	cache           *cache.Cache
	producer        *pkgkafka.Producer
	consumer        *pkgkafka.Consumer
	shutdownTracing func(context.Context) error
}

// NewApp creates the application, initializing all dependencies.
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	a := &App{cfg: cfg, logger: logger}

	// Tracing.
	shutdownTracing, err := tracing.InitTracer(ctx, tracing.Config{
		ServiceName:    "storefront",
		ServiceVersion: "1.0.0",
		Endpoint:       cfg.TracingEndpoint,
		Environment:    cfg.Environment,
		SampleRate:     cfg.TracingSampleRate,
		Enabled:        cfg.TracingEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}
	a.shutdownTracing = shutdownTracing

	// Optional Redis payload cache. Unavailability is not fatal: the
	// storefront works without the cache, just slower.
	if cfg.CacheEnabled() {
		c, err := cache.New(ctx, cache.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			TTL:      cfg.CacheTTL,
		}, logger)
		if err != nil {
			logger.Warn("redis unavailable, payload cache disabled",
				slog.String("addr", cfg.RedisAddr),
				slog.String("error", err.Error()),
			)
		} else {
			a.cache = c
			logger.Info("payload cache initialized", slog.String("addr", cfg.RedisAddr))
		}
	}

	// Upstream catalog client behind a circuit breaker.
	hcCfg := httpclient.DefaultConfig()
	hcCfg.Timeout = cfg.UpstreamTimeout
	hc := httpclient.New(hcCfg)
	cb := httpclient.NewCircuitBreakerClient(hc, httpclient.DefaultCircuitBreakerConfig("catalog-upstream"), logger)
	catalogClient := catalog.New(cfg.UpstreamBaseURL, cb, a.cache, logger)

	// Service layer.
	storefront := service.NewStorefront(catalogClient, logger)
	a.suggester = service.NewSuggester(catalogClient, logger)

	// Kafka invalidation events.
	var invalidate proxy.InvalidateFunc
	if cfg.EventsEnabled() {
		a.producer = pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
		publisher := event.NewPublisher(a.producer, logger)
		invalidate = func(r *http.Request, inv event.Invalidation) {
			if err := publisher.Publish(r.Context(), inv); err != nil {
				logger.ErrorContext(r.Context(), "failed to publish invalidation",
					slog.String("scope", inv.Scope),
					slog.String("error", err.Error()),
				)
			}
		}

		if a.cache != nil {
			invalidationHandler := event.NewInvalidationHandler(a.cache, catalog.InvalidationKeys(), logger)
			a.consumer = pkgkafka.NewConsumer(pkgkafka.ConsumerConfig{
				Brokers:  cfg.KafkaBrokers,
				GroupID:  cfg.KafkaGroupID,
				Topic:    event.TopicCatalogInvalidated,
				MinBytes: 1,
				MaxBytes: 10e6, // 10 MB
			}, invalidationHandler, logger)
		}
		logger.Info("kafka invalidation events initialized", slog.Any("brokers", cfg.KafkaBrokers))
	} else if a.cache != nil {
		// No event bus: mutations through this instance still invalidate
		// the local cache directly.
		localCache := a.cache
		invalidate = func(r *http.Request, inv event.Invalidation) {
			localCache.Delete(r.Context(), catalog.InvalidationKeys()...)
		}
	}

	// Mutation pass-through proxy.
	upstreamProxy, err := proxy.New(cfg.UpstreamBaseURL, invalidate, logger)
	if err != nil {
		return nil, fmt.Errorf("init upstream proxy: %w", err)
	}

	// Health checks.
	healthHandler := health.NewHandler()
	healthHandler.Register("upstream", func(ctx context.Context) error {
		resp, err := hc.Get(ctx, cfg.UpstreamBaseURL+"/api/public/brands")
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode >= 500 {
			return fmt.Errorf("upstream returned %d", resp.StatusCode)
		}
		return nil
	})
	if a.cache != nil {
		healthHandler.Register("redis", a.cache.Ping)
	}
	if a.producer != nil {
		healthHandler.Register("kafka", a.producer.Ping)
	}

	// Rate limiter for the suggest endpoint.
	a.limiter = middleware.NewRateLimiter(middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		Burst:             cfg.RateLimitBurst,
		CleanupInterval:   time.Minute,
		ClientTTL:         3 * time.Minute,
	}, logger)

	// HTTP router and server.
	router := handler.NewRouter(cfg, storefront, a.suggester, upstreamProxy, healthHandler, a.limiter, logger)

	a.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return a, nil
}

// Run starts the HTTP server and the invalidation consumer, blocking until
// the context is canceled or a component fails.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 2)

	if a.consumer != nil {
		go func() {
			if err := a.consumer.Start(ctx); err != nil {
				errCh <- fmt.Errorf("kafka consumer: %w", err)
			}
		}()
	}

	go func() {
		a.logger.Info("starting HTTP server", slog.String("addr", a.httpServer.Addr))
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	a.limiter.Stop()
	a.suggester.Stop()

	if a.consumer != nil {
		if err := a.consumer.Close(); err != nil {
			a.logger.Error("kafka consumer close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}
	if a.shutdownTracing != nil {
		if err := a.shutdownTracing(shutdownCtx); err != nil {
			a.logger.Error("tracing shutdown error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}
