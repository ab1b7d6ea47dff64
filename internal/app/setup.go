// Package app contains the application setup for the analytics service.
package app

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/abgdnv/gocommerce-analytics/internal/cache"
	"github.com/abgdnv/gocommerce-analytics/internal/config"
	"github.com/abgdnv/gocommerce-analytics/internal/service"
	"github.com/abgdnv/gocommerce-analytics/internal/store"
	"github.com/abgdnv/gocommerce-analytics/internal/transport/graphql"
	"github.com/abgdnv/gocommerce-analytics/internal/transport/rest"
	"github.com/abgdnv/gocommerce-analytics/pkg/messaging"
	"github.com/abgdnv/gocommerce-analytics/pkg/server"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
)

type Dependencies struct {
	Service service.AnalyticsService
	GraphQL http.Handler
	Health  *rest.HealthHandler
	Logger  *slog.Logger
	// MaxRequestBytes caps GraphQL request bodies, zero disables the limit.
	MaxRequestBytes int64
}

// SetupDependencies builds the service graph. The cache is wrapped in a circuit breaker and used read-through
// by the sales analytics query. Extra readiness checks run next to the store.
func SetupDependencies(cfg *config.Config, st store.Store, resultCache cache.Cache, publisher messaging.Publisher,
	clock clockwork.Clock, logger *slog.Logger, checks map[string]rest.Check) (*Dependencies, error) {
	breaker := cache.NewBreaker(resultCache, cfg.Resilience.CircuitBreaker, logger.With("component", "cache"))
	salesCache, err := cache.NewReadThrough[store.SalesAnalytics](breaker, logger.With("component", "cache"), otel.Meter("analytics-cache"))
	if err != nil {
		return nil, err
	}
	salesCache.WithLoadTimeout(cfg.Analytics.QueryTimeout)

	svc := service.NewService(st, salesCache, publisher, clock, cfg.Analytics.MaxPageSize, logger.With("component", "service"))
	schema, err := graphql.NewSchema(svc, logger.With("component", "graphql"))
	if err != nil {
		return nil, fmt.Errorf("failed to set up GraphQL: %w", err)
	}

	allChecks := map[string]rest.Check{"store": st.Ping}
	for name, check := range checks {
		allChecks[name] = check
	}

	return &Dependencies{
		Service: svc,
		GraphQL: graphql.NewHandler(schema),
		Health:  rest.NewHealthHandler(allChecks, logger),
		Logger:  logger,

		MaxRequestBytes: cfg.HTTPServer.MaxRequestBytes,
	}, nil
}

// SetupHttpHandler initializes the routes and middleware of the service.
func SetupHttpHandler(deps *Dependencies) http.Handler {
	mux := server.NewChiRouter(deps.Logger)
	wireRoutes(mux, deps)
	return mux
}

func wireRoutes(mux *chi.Mux, deps *Dependencies) {
	mux.Group(func(r chi.Router) {
		if deps.MaxRequestBytes > 0 {
			r.Use(middleware.RequestSize(deps.MaxRequestBytes))
		}
		r.Method(http.MethodPost, "/graphql", otelhttp.NewHandler(deps.GraphQL, "graphql"))
	})
	deps.Health.RegisterRoutes(mux)
	mux.Method(http.MethodGet, "/metrics", promhttp.Handler())
}

// SetupHttpServer creates and configures the HTTP server of the analytics service.
func SetupHttpServer(deps *Dependencies, cfg *config.Config) *http.Server {
	return server.NewHTTPServer(cfg.HTTPServer, SetupHttpHandler(deps))
}
