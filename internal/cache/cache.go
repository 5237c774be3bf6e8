// Package cache provides a generic in-process TTL cache with a single-flight
// guarantee: concurrent callers of the same key share one computation.
package cache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// TTLs used by the application.
const (
	// FareTTL caches a full fetch/aggregate/fit cycle per fare query.
	FareTTL = 2700 * time.Second
	// CityTTL caches single-city enrichment lookups.
	CityTTL = 900 * time.Second
)

type entry[V any] struct {
	expiry time.Time
	value  V
}

// Cache memoizes expensive computations per key with time-based expiry.
// Nothing survives process restart; entries live in memory only.
type Cache[V any] struct {
	entries map[string]entry[V]
	stopCh  chan struct{}
	group   singleflight.Group
	mu      sync.RWMutex
	now     func() time.Time
}

// New creates a cache and starts its cleanup goroutine.
func New[V any]() *Cache[V] {
	c := &Cache[V]{
		entries: make(map[string]entry[V]),
		stopCh:  make(chan struct{}),
		now:     time.Now,
	}

	go c.cleanup()

	return c
}

// GetOrCompute returns the cached value for key, or runs compute and caches
// its result for ttl. At most one compute runs per key at a time; later
// callers block on and share the in-flight result. Errors are not cached.
func (c *Cache[V]) GetOrCompute(ctx context.Context, key string, ttl time.Duration, compute func(context.Context) (V, error)) (V, error) {
	if v, ok := c.get(key); ok {
		return v, nil
	}

	result, err, _ := c.group.Do(key, func() (any, error) {
		// A racing caller may have populated the entry while we waited
		// for the flight slot.
		if v, ok := c.get(key); ok {
			return v, nil
		}

		v, err := compute(ctx)
		if err != nil {
			return nil, err
		}

		c.set(key, v, ttl)
		return v, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}

	return result.(V), nil
}

// Invalidate drops a single key.
func (c *Cache[V]) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Clear removes all entries from the cache.
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry[V])
}

// Size returns the number of entries, expired ones included.
func (c *Cache[V]) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Close stops the cleanup goroutine.
func (c *Cache[V]) Close() {
	close(c.stopCh)
}

func (c *Cache[V]) get(key string) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, exists := c.entries[key]
	if !exists || c.now().After(e.expiry) {
		var zero V
		return zero, false
	}

	return e.value, true
}

func (c *Cache[V]) set(key string, value V, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry[V]{
		value:  value,
		expiry: c.now().Add(ttl),
	}
}

func (c *Cache[V]) cleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.mu.Lock()
			now := c.now()
			for key, e := range c.entries {
				if now.After(e.expiry) {
					delete(c.entries, key)
				}
			}
			c.mu.Unlock()
		}
	}
}
