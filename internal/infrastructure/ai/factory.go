// Package ai selects and assembles the recipe generation backend
package ai

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/alchemorsel/marco/internal/infrastructure/ai/anthropic"
	"github.com/alchemorsel/marco/internal/infrastructure/ai/offline"
	"github.com/alchemorsel/marco/internal/infrastructure/ai/ollama"
	"github.com/alchemorsel/marco/internal/infrastructure/ai/openai"
	"github.com/alchemorsel/marco/internal/infrastructure/cache"
	"github.com/alchemorsel/marco/internal/infrastructure/config"
	"github.com/alchemorsel/marco/internal/ports/outbound"
)

// NewGenerator returns the backend for cfg.AI.Provider. A configured request
// rate wraps it in a RateLimitedGenerator; when caching is enabled and a store
// is given, the result is wrapped in a CachedGenerator.
func NewGenerator(cfg *config.Config, store outbound.CacheRepository, logger *zap.Logger) (outbound.RecipeGenerator, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var (
		gen outbound.RecipeGenerator
		err error
	)
	switch cfg.AI.Provider {
	case config.ProviderOllama:
		gen = ollama.NewClient(cfg.AI, logger)
	case config.ProviderOpenAI:
		gen, err = openai.NewClient(cfg.AI, logger)
	case config.ProviderAnthropic:
		gen, err = anthropic.NewClient(cfg.AI, logger)
	case config.ProviderLlamaCpp:
		gen = openai.NewLlamaCppClient(cfg.AI, logger)
	case config.ProviderOffline:
		gen = offline.NewGenerator(logger)
	default:
		return nil, fmt.Errorf("unknown LLM provider: %s", cfg.AI.Provider)
	}
	if err != nil {
		return nil, err
	}

	// limit before caching so cache hits never wait
	if cfg.AI.RequestsPerMinute > 0 {
		gen = NewRateLimitedGenerator(gen, cfg.AI.RequestsPerMinute, cfg.AI.RequestBurst, logger)
	}

	if cfg.AI.EnableCache && store != nil {
		gc := cache.NewGenerationCache(store, cfg.AI.CacheTTL, logger)
		gen = NewCachedGenerator(gen, cfg.ModelName(), gc, logger)
	}

	logger.Debug("Recipe generator ready",
		zap.String("provider", cfg.AI.Provider),
		zap.String("model", cfg.ModelName()),
		zap.Bool("cached", cfg.AI.EnableCache && store != nil))
	return gen, nil
}
