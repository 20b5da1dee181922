// Package redis provides the Redis-backed cache repository
package redis

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/alchemorsel/marco/internal/infrastructure/cache"
	"github.com/alchemorsel/marco/internal/ports/outbound"
)

// CacheRepository implements outbound.CacheRepository on a Redis client
type CacheRepository struct {
	client *cache.RedisClient
	logger *zap.Logger
}

var _ outbound.CacheRepository = (*CacheRepository)(nil)

// NewCacheRepository creates a new cache repository
func NewCacheRepository(client *cache.RedisClient, logger *zap.Logger) *CacheRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheRepository{client: client, logger: logger}
}

// Get retrieves a value from cache
func (r *CacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, outbound.ErrCacheMiss) {
			r.logger.Debug("Cache get failed", zap.String("key", key), zap.Error(err))
		}
		return nil, err
	}
	return data, nil
}

// Set stores a value in cache with TTL
func (r *CacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := r.client.Set(ctx, key, value, ttl); err != nil {
		r.logger.Error("Cache set failed", zap.String("key", key), zap.Error(err))
		return err
	}
	return nil
}

// Delete removes a value from cache
func (r *CacheRepository) Delete(ctx context.Context, key string) error {
	if err := r.client.Delete(ctx, key); err != nil {
		r.logger.Error("Cache delete failed", zap.String("key", key), zap.Error(err))
		return err
	}
	return nil
}

// Exists checks if a key exists in cache
func (r *CacheRepository) Exists(ctx context.Context, key string) (bool, error) {
	n, err := r.client.Exists(ctx, key)
	if err != nil {
		r.logger.Error("Cache exists check failed", zap.String("key", key), zap.Error(err))
		return false, err
	}
	return n > 0, nil
}
