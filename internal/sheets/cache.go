package sheets

import (
	"context"
	"sync"
	"time"

	"github.com/The-WildNuts/The-Wild-Nuts/pkg/metrics"
)

// DefaultTTL is how long a cached sheet read stays fresh.
const DefaultTTL = 300 * time.Second

type cacheEntry struct {
	value    any
	storedAt time.Time
}

// Cache is a TTL read-through cache for sheet-derived values. Freshness
// is judged against the injected clock, so tests can advance time
// without sleeping. Mutating services invalidate their keys after a
// successful write.
type Cache struct {
	mu      sync.Mutex
	ttl     time.Duration
	clock   func() time.Time
	entries map[string]cacheEntry
	metrics *metrics.StoreMetrics
}

type CacheParams struct {
	TTL     time.Duration
	Clock   func() time.Time
	Metrics *metrics.StoreMetrics
}

func NewCache(params CacheParams) *Cache {
	if params.TTL <= 0 {
		params.TTL = DefaultTTL
	}
	if params.Clock == nil {
		params.Clock = time.Now
	}
	return &Cache{
		ttl:     params.TTL,
		clock:   params.Clock,
		entries: map[string]cacheEntry{},
		metrics: params.Metrics,
	}
}

func (c *Cache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.clock().Sub(entry.storedAt) >= c.ttl {
		delete(c.entries, key)
		return nil, false
	}
	return entry.value, true
}

func (c *Cache) Put(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{value: value, storedAt: c.clock()}
}

// Invalidate drops the given keys. With no arguments it clears the
// whole cache.
func (c *Cache) Invalidate(keys ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(keys) == 0 {
		c.entries = map[string]cacheEntry{}
		return
	}
	for _, key := range keys {
		delete(c.entries, key)
	}
}

// Fetch returns the cached value for key when fresh, otherwise calls fn
// and caches the result. A fetch error is returned to the caller and
// nothing is cached, so the next read retries.
func Fetch[T any](ctx context.Context, c *Cache, key string, fn func(context.Context) (T, error)) (T, error) {
	if cached, ok := c.Get(key); ok {
		if value, ok := cached.(T); ok {
			c.metrics.IncCacheHit(key)
			return value, nil
		}
	}
	c.metrics.IncCacheMiss(key)
	value, err := fn(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	c.Put(key, value)
	return value, nil
}
