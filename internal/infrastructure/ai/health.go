package ai

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/alchemorsel/marco/internal/infrastructure/config"
	"github.com/alchemorsel/marco/internal/ports/outbound"
)

// healthCheckTimeout bounds a single provider probe
const healthCheckTimeout = 10 * time.Second

// Pinger is implemented by backends that can probe their server
type Pinger interface {
	HealthCheck(ctx context.Context) error
}

// ProviderStatus is the result of a provider health check
type ProviderStatus struct {
	Provider  string    `json:"provider"`
	Model     string    `json:"model"`
	Healthy   bool      `json:"healthy"`
	Detail    string    `json:"detail"`
	CheckedAt time.Time `json:"checked_at"`
}

// HealthChecker reports whether the configured provider is usable
type HealthChecker struct {
	cfg       *config.Config
	generator outbound.RecipeGenerator
	logger    *zap.Logger
}

// NewHealthChecker creates a health checker for the configured generator
func NewHealthChecker(cfg *config.Config, generator outbound.RecipeGenerator, logger *zap.Logger) *HealthChecker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HealthChecker{cfg: cfg, generator: generator, logger: logger.Named("ai-health")}
}

// Check verifies the API key and, when the backend supports it, probes
// the server. Cloud APIs are not called to avoid per-request cost.
func (h *HealthChecker) Check(ctx context.Context) ProviderStatus {
	status := ProviderStatus{
		Provider:  h.cfg.AI.Provider,
		Model:     h.cfg.ModelName(),
		CheckedAt: time.Now(),
	}

	if _, err := h.cfg.APIKey(); err != nil {
		status.Detail = err.Error()
		h.logger.Warn("AI provider not configured", zap.String("provider", status.Provider), zap.Error(err))
		return status
	}

	pinger, ok := unwrap(h.generator).(Pinger)
	if !ok {
		status.Healthy = true
		status.Detail = "configured"
		return status
	}

	probeCtx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()
	if err := pinger.HealthCheck(probeCtx); err != nil {
		status.Detail = fmt.Sprintf("unavailable: %v", err)
		h.logger.Warn("AI provider health check failed", zap.String("provider", status.Provider), zap.Error(err))
		return status
	}

	status.Healthy = true
	status.Detail = "reachable"
	h.logger.Debug("AI provider health check passed", zap.String("provider", status.Provider))
	return status
}

// unwrap strips decorators down to the provider client
func unwrap(g outbound.RecipeGenerator) outbound.RecipeGenerator {
	for {
		w, ok := g.(interface{ Unwrap() outbound.RecipeGenerator })
		if !ok {
			return g
		}
		g = w.Unwrap()
	}
}
