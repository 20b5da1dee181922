package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/alchemorsel/marco/internal/domain/recipe"
	"github.com/alchemorsel/marco/internal/ports/outbound"
)

// generationKeyPrefix namespaces generated recipes in the cache
const generationKeyPrefix = "generation"

// CachedGeneration is a generated recipe with its cache metadata
type CachedGeneration struct {
	Provider       string         `json:"provider"`
	Model          string         `json:"model,omitempty"`
	RequestHash    string         `json:"request_hash"`
	Recipe         *recipe.Recipe `json:"recipe"`
	ProcessingTime time.Duration  `json:"processing_time"`
	CachedAt       time.Time      `json:"cached_at"`
}

// GenerationCache stores generated recipes keyed by provider, model and request
type GenerationCache struct {
	store  outbound.CacheRepository
	ttl    time.Duration
	now    func() time.Time
	logger *zap.Logger
}

// NewGenerationCache creates a generation cache over any cache repository
func NewGenerationCache(store outbound.CacheRepository, ttl time.Duration, logger *zap.Logger) *GenerationCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GenerationCache{store: store, ttl: ttl, now: time.Now, logger: logger.Named("generation-cache")}
}

// Key builds the cache key for a request. Dietary restrictions are
// order-insensitive and the description is case-insensitive.
func Key(provider, model string, req recipe.Request) string {
	restrictions := append([]string(nil), req.DietaryRestrictions...)
	for i := range restrictions {
		restrictions[i] = strings.ToLower(strings.TrimSpace(restrictions[i]))
	}
	sort.Strings(restrictions)

	parts := []string{
		strings.ToLower(strings.TrimSpace(req.Description)),
		fmt.Sprintf("anxiety=%t", req.AnxietyFocus),
		"restrictions=" + strings.Join(restrictions, ","),
		"season=" + req.Season,
		"region=" + req.Region,
		fmt.Sprintf("servings=%d", req.Servings),
	}
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return fmt.Sprintf("%s:%s:%s:%s", generationKeyPrefix, provider, model, hex.EncodeToString(sum[:])[:32])
}

// Get returns a cached recipe, or nil on a miss. Undecodable entries are
// removed and reported as misses.
func (c *GenerationCache) Get(ctx context.Context, key string) *CachedGeneration {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		return nil
	}
	var cached CachedGeneration
	if err := json.Unmarshal(data, &cached); err != nil || cached.Recipe == nil {
		c.logger.Debug("Dropping undecodable cache entry", zap.String("key", key), zap.Error(err))
		_ = c.store.Delete(ctx, key)
		return nil
	}
	return &cached
}

// Put stores a generated recipe
func (c *GenerationCache) Put(ctx context.Context, key string, entry *CachedGeneration) error {
	if entry == nil || entry.Recipe == nil {
		return fmt.Errorf("cannot cache an empty generation")
	}
	entry.CachedAt = c.now()
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal generation: %w", err)
	}
	if err := c.store.Set(ctx, key, data, c.ttl); err != nil {
		return fmt.Errorf("failed to cache generation: %w", err)
	}
	c.logger.Debug("Generation cached",
		zap.String("key", key),
		zap.Duration("ttl", c.ttl),
		zap.Duration("processing_time", entry.ProcessingTime))
	return nil
}
