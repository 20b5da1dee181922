package ai

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/alchemorsel/marco/internal/domain/recipe"
	"github.com/alchemorsel/marco/internal/ports/outbound"
)

// RateLimitedGenerator spaces calls to a paid or shared backend. Callers
// block until a token is available or their context ends.
type RateLimitedGenerator struct {
	next    outbound.RecipeGenerator
	limiter *rate.Limiter
	logger  *zap.Logger
}

var _ outbound.RecipeGenerator = (*RateLimitedGenerator)(nil)

// NewRateLimitedGenerator allows requestsPerMinute calls with the given burst
func NewRateLimitedGenerator(next outbound.RecipeGenerator, requestsPerMinute, burst int, logger *zap.Logger) *RateLimitedGenerator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if burst < 1 {
		burst = 1
	}
	return &RateLimitedGenerator{
		next:    next,
		limiter: rate.NewLimiter(rate.Limit(requestsPerMinute)/60, burst),
		logger:  logger.Named("rate-limiter"),
	}
}

// Name returns the wrapped provider name
func (g *RateLimitedGenerator) Name() string {
	return g.next.Name()
}

// GenerateRecipe waits for the limiter and delegates
func (g *RateLimitedGenerator) GenerateRecipe(ctx context.Context, req recipe.Request) (*recipe.Recipe, error) {
	start := time.Now()
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	if waited := time.Since(start); waited > 100*time.Millisecond {
		g.logger.Debug("Generation delayed by rate limit",
			zap.String("provider", g.next.Name()),
			zap.Duration("waited", waited),
		)
	}
	return g.next.GenerateRecipe(ctx, req)
}

// Unwrap returns the wrapped generator
func (g *RateLimitedGenerator) Unwrap() outbound.RecipeGenerator {
	return g.next
}
