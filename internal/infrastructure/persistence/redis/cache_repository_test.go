package redis_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/alchemorsel/marco/internal/infrastructure/cache"
	"github.com/alchemorsel/marco/internal/infrastructure/config"
	"github.com/alchemorsel/marco/internal/infrastructure/persistence/redis"
	"github.com/alchemorsel/marco/internal/ports/outbound"
)

// newRepository connects to the redis named by MARCO_TEST_REDIS_ADDR
func newRepository(t *testing.T) (*redis.CacheRepository, *cache.RedisClient) {
	t.Helper()
	addr := os.Getenv("MARCO_TEST_REDIS_ADDR")
	if testing.Short() || addr == "" {
		t.Skip("set MARCO_TEST_REDIS_ADDR to run redis integration tests")
	}

	logger := zaptest.NewLogger(t)
	client, err := cache.NewRedisClient(context.Background(), config.RedisConfig{Addr: addr, Database: 15}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return redis.NewCacheRepository(client, logger), client
}

func TestCacheRepositoryRoundTrip(t *testing.T) {
	repo, client := newRepository(t)
	ctx := context.Background()
	key := "marco:test:" + t.Name()
	t.Cleanup(func() { _ = repo.Delete(ctx, key) })

	_, err := repo.Get(ctx, key)
	assert.ErrorIs(t, err, outbound.ErrCacheMiss)

	require.NoError(t, repo.Set(ctx, key, []byte(`{"name":"soup"}`), time.Minute))

	ok, err := repo.Exists(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := repo.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, `{"name":"soup"}`, string(got))

	require.NoError(t, repo.Delete(ctx, key))
	ok, err = repo.Exists(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	stats := client.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.InDelta(t, 0.5, stats.HitRatio(), 0.001)
}

func TestCacheRepositoryExpiry(t *testing.T) {
	repo, _ := newRepository(t)
	ctx := context.Background()
	key := "marco:test:" + t.Name()

	require.NoError(t, repo.Set(ctx, key, []byte("x"), 50*time.Millisecond))
	time.Sleep(150 * time.Millisecond)

	_, err := repo.Get(ctx, key)
	assert.ErrorIs(t, err, outbound.ErrCacheMiss)
}
