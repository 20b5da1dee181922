// Package memory provides in-memory cache repository implementation
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/alchemorsel/marco/internal/ports/outbound"
)

// DefaultTTL applies when Set is called with a zero ttl
const DefaultTTL = 24 * time.Hour

// CacheItem represents a cached item
type CacheItem struct {
	Value     []byte
	ExpiresAt time.Time
}

// CacheRepository implements an in-memory cache repository. Expired items
// are dropped lazily on access.
type CacheRepository struct {
	data  map[string]CacheItem
	mutex sync.Mutex
	now   func() time.Time
}

var _ outbound.CacheRepository = (*CacheRepository)(nil)

// NewCacheRepository creates a new in-memory cache repository
func NewCacheRepository() *CacheRepository {
	return NewCacheRepositoryWithClock(time.Now)
}

// NewCacheRepositoryWithClock creates a repository that reads time from now
func NewCacheRepositoryWithClock(now func() time.Time) *CacheRepository {
	return &CacheRepository{
		data: make(map[string]CacheItem),
		now:  now,
	}
}

// Get retrieves a value from cache
func (r *CacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	item, ok := r.live(key)
	if !ok {
		return nil, outbound.ErrCacheMiss
	}
	return append([]byte(nil), item.Value...), nil
}

// Set stores a value in cache with TTL
func (r *CacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if ttl <= 0 {
		ttl = DefaultTTL
	}
	r.data[key] = CacheItem{
		Value:     append([]byte(nil), value...),
		ExpiresAt: r.now().Add(ttl),
	}
	return nil
}

// Delete removes a key from cache
func (r *CacheRepository) Delete(ctx context.Context, key string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	delete(r.data, key)
	return nil
}

// Exists checks if a key exists in cache
func (r *CacheRepository) Exists(ctx context.Context, key string) (bool, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	_, ok := r.live(key)
	return ok, nil
}

// Len returns the number of unexpired items
func (r *CacheRepository) Len() int {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	n := 0
	for key := range r.data {
		if _, ok := r.live(key); ok {
			n++
		}
	}
	return n
}

// live returns the item for key, deleting it when expired. Callers hold the lock.
func (r *CacheRepository) live(key string) (CacheItem, bool) {
	item, exists := r.data[key]
	if !exists {
		return CacheItem{}, false
	}
	if !r.now().Before(item.ExpiresAt) {
		delete(r.data, key)
		return CacheItem{}, false
	}
	return item, true
}
