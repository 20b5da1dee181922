package handlers

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/alchemorsel/marco/pkg/healthcheck"
)

// HealthChecker runs a round of dependency checks
type HealthChecker interface {
	Check(ctx context.Context) healthcheck.Response
}

// HealthHandler serves GET /health
type HealthHandler struct {
	checker HealthChecker
	logger  *zap.Logger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(checker HealthChecker, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{checker: checker, logger: logger}
}

// ServeHTTP answers 200 while the service can generate recipes, degraded
// included, and 503 otherwise
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	response := h.checker.Check(r.Context())
	status := http.StatusOK
	if response.Status == healthcheck.StatusUnhealthy {
		status = http.StatusServiceUnavailable
	}
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, status, response, h.logger)
}
