// Package cache provides the Redis client and the generation cache that sit
// behind the outbound cache port
package cache

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/alchemorsel/marco/internal/infrastructure/config"
	"github.com/alchemorsel/marco/internal/ports/outbound"
)

// RedisClient wraps a go-redis client and counts hits and misses
type RedisClient struct {
	client redis.UniversalClient
	logger *zap.Logger
	hits   atomic.Int64
	misses atomic.Int64
}

// RedisStats is a snapshot of cache effectiveness
type RedisStats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
}

// HitRatio returns hits over lookups, or zero before the first lookup
func (s RedisStats) HitRatio() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// NewRedisClient connects to Redis and verifies the connection
func NewRedisClient(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) (*RedisClient, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("redis address is required")
	}
	client := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:        []string{cfg.Addr},
		Password:     cfg.Password,
		DB:           cfg.Database,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	r := WrapRedisClient(client, logger)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := r.Ping(pingCtx); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	r.logger.Info("Redis client initialized", zap.String("addr", cfg.Addr), zap.Int("db", cfg.Database))
	return r, nil
}

// WrapRedisClient wraps an existing go-redis client
func WrapRedisClient(client redis.UniversalClient, logger *zap.Logger) *RedisClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisClient{client: client, logger: logger.Named("redis")}
}

// Ping checks the connection
func (r *RedisClient) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Get returns the value for key or outbound.ErrCacheMiss
func (r *RedisClient) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		r.misses.Add(1)
		return nil, outbound.ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	r.hits.Add(1)
	return val, nil
}

// Set stores value under key for ttl
func (r *RedisClient) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := r.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Delete removes keys
func (r *RedisClient) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// Exists reports how many of keys exist
func (r *RedisClient) Exists(ctx context.Context, keys ...string) (int64, error) {
	n, err := r.client.Exists(ctx, keys...).Result()
	if err != nil {
		return 0, fmt.Errorf("redis exists: %w", err)
	}
	return n, nil
}

// Stats returns the hit and miss counters
func (r *RedisClient) Stats() RedisStats {
	return RedisStats{Hits: r.hits.Load(), Misses: r.misses.Load()}
}

// Close closes the connection pool
func (r *RedisClient) Close() error {
	return r.client.Close()
}
