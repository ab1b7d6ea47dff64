// Package rest provides the operational HTTP endpoints of the analytics service.
package rest

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/abgdnv/gocommerce-analytics/pkg/web"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"
)

const readinessTimeout = 2 * time.Second

const (
	statusOK          = "ok"
	statusUnavailable = "unavailable"
	statusDraining    = "draining"
)

// Check reports whether a dependency can serve requests.
type Check func(ctx context.Context) error

// ReadinessReport is the body of /readyz. Checks maps each dependency to "ok" or its error.
type ReadinessReport struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

type HealthHandler struct {
	checks   map[string]Check
	draining atomic.Bool
	logger   *slog.Logger
}

// NewHealthHandler creates the liveness and readiness endpoints. Readiness runs every check concurrently.
func NewHealthHandler(checks map[string]Check, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		checks: checks,
		logger: logger.With("component", "health"),
	}
}

func (h *HealthHandler) RegisterRoutes(r chi.Router) {
	r.Get("/healthz", h.HealthCheck)
	r.Get("/readyz", h.Ready)
}

// Drain makes readiness fail from now on so load balancers stop routing before shutdown.
func (h *HealthHandler) Drain() {
	if h.draining.CompareAndSwap(false, true) {
		h.logger.Info("Readiness switched to draining")
	}
}

// HealthCheck is a simple health check endpoint.
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	if h.draining.Load() {
		web.RespondJSON(w, h.logger, http.StatusServiceUnavailable, ReadinessReport{Status: statusDraining})
		return
	}

	report := h.runChecks(r.Context())
	if report.Status != statusOK {
		h.logger.WarnContext(r.Context(), "Readiness check failed",
			"request_id", middleware.GetReqID(r.Context()), "checks", report.Checks)
		web.RespondJSON(w, h.logger, http.StatusServiceUnavailable, report)
		return
	}
	web.RespondJSON(w, h.logger, http.StatusOK, report)
}

func (h *HealthHandler) runChecks(ctx context.Context) ReadinessReport {
	ctx, cancel := context.WithTimeout(ctx, readinessTimeout)
	defer cancel()

	var (
		mu     sync.Mutex
		eg     errgroup.Group
		report = ReadinessReport{Status: statusOK, Checks: make(map[string]string, len(h.checks))}
	)
	for name, check := range h.checks {
		eg.Go(func() error {
			result := statusOK
			if err := check(ctx); err != nil {
				result = err.Error()
			}
			mu.Lock()
			defer mu.Unlock()
			report.Checks[name] = result
			if result != statusOK {
				report.Status = statusUnavailable
			}
			return nil
		})
	}
	_ = eg.Wait()
	return report
}
