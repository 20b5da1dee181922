package ai

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/alchemorsel/marco/internal/domain/recipe"
	"github.com/alchemorsel/marco/internal/infrastructure/cache"
	"github.com/alchemorsel/marco/internal/ports/outbound"
)

// CachedGenerator wraps a generator with a cache-first lookup keyed by the
// request. Only successful generations are cached.
type CachedGenerator struct {
	next   outbound.RecipeGenerator
	model  string
	cache  *cache.GenerationCache
	logger *zap.Logger
}

var _ outbound.RecipeGenerator = (*CachedGenerator)(nil)

// NewCachedGenerator creates a new cached generator
func NewCachedGenerator(next outbound.RecipeGenerator, model string, c *cache.GenerationCache, logger *zap.Logger) *CachedGenerator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedGenerator{
		next:   next,
		model:  model,
		cache:  c,
		logger: logger.Named("cached-generator"),
	}
}

// Name returns the wrapped provider name
func (g *CachedGenerator) Name() string {
	return g.next.Name()
}

// GenerateRecipe returns a cached recipe for an identical request, or
// generates and caches a new one
func (g *CachedGenerator) GenerateRecipe(ctx context.Context, req recipe.Request) (*recipe.Recipe, error) {
	key := cache.Key(g.next.Name(), g.model, req)
	if hit := g.cache.Get(ctx, key); hit != nil {
		g.logger.Debug("Generation cache hit", zap.String("key", key), zap.Time("cached_at", hit.CachedAt))
		return hit.Recipe, nil
	}

	start := time.Now()
	r, err := g.next.GenerateRecipe(ctx, req)
	if err != nil {
		return nil, err
	}

	entry := &cache.CachedGeneration{
		Provider:       g.next.Name(),
		Model:          g.model,
		RequestHash:    key,
		Recipe:         r.Clone(),
		ProcessingTime: time.Since(start),
	}
	if err := g.cache.Put(ctx, key, entry); err != nil {
		g.logger.Warn("Failed to cache generated recipe", zap.Error(err))
	}
	return r, nil
}

// Unwrap returns the wrapped generator
func (g *CachedGenerator) Unwrap() outbound.RecipeGenerator {
	return g.next
}
