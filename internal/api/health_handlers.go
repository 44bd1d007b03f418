package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/marqueeapp/marquee/internal/health"
)

// healthCheckTimeout bounds each dependency check.
const healthCheckTimeout = 3 * time.Second

// HealthHandlers aggregates dependency health checks.
type HealthHandlers struct {
	checkers map[string]health.Checker
	logger   *slog.Logger
}

// NewHealthHandlers creates health check handlers over named checkers.
func NewHealthHandlers(checkers map[string]health.Checker, logger *slog.Logger) *HealthHandlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthHandlers{checkers: checkers, logger: logger}
}

// healthResponse is the JSON body for GET /health.
type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// GetHealth handles GET /health. It runs every registered checker and
// returns 503 when any dependency is unhealthy.
func (h *HealthHandlers) GetHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status: "healthy",
		Checks: make(map[string]string, len(h.checkers)),
	}
	status := http.StatusOK

	for name, checker := range h.checkers {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		err := checker.HealthCheck(ctx)
		cancel()

		if err != nil {
			h.logger.Warn("health check failed", "dependency", name, "error", err)
			resp.Checks[name] = "unhealthy"
			resp.Status = "unhealthy"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[name] = "healthy"
	}

	WriteJSON(w, r.Context(), status, resp)
}
