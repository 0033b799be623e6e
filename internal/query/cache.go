// Package query caches and deduplicates API requests by key.
package query

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Key identifies a request: endpoint plus canonical parameters.
type Key string

type entry struct {
	value     any
	fetchedAt time.Time
}

// Cache holds the last successful result per key and joins concurrent
// requests for the same key into one.
type Cache struct {
	mu      sync.Mutex
	entries map[Key]entry
	gens    map[Key]uint64
	group   singleflight.Group
	ttl     time.Duration
	now     func() time.Time
}

// CacheOption configures a Cache.
type CacheOption func(*Cache)

// WithTTL marks results stale after d. Zero keeps them until invalidated.
func WithTTL(d time.Duration) CacheOption {
	return func(c *Cache) {
		c.ttl = d
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) CacheOption {
	return func(c *Cache) {
		c.now = now
	}
}

// NewCache creates an empty cache.
func NewCache(opts ...CacheOption) *Cache {
	c := &Cache{
		entries: make(map[Key]entry),
		gens:    make(map[Key]uint64),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Invalidate drops the cached result for key. A request already in flight
// for key still completes but its result is not stored.
func (c *Cache) Invalidate(key Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	c.gens[key]++
	c.group.Forget(string(key))
}

// Clear drops every cached result. Requests in flight for any key still
// complete but their results are not stored.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.gens {
		c.gens[k]++
		c.group.Forget(string(k))
	}
	c.entries = make(map[Key]entry)
}

// Len returns the number of cached results.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cache) lookup(key Key) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.ttl > 0 && c.now().Sub(e.fetchedAt) > c.ttl {
		delete(c.entries, key)
		return nil, false
	}
	return e.value, true
}

// generation returns the current generation of key and registers key so a
// later Clear reaches requests started now.
func (c *Cache) generation(key Key) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	gen, ok := c.gens[key]
	if !ok {
		c.gens[key] = 0
	}
	return gen
}

func (c *Cache) store(key Key, gen uint64, v any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gens[key] != gen {
		return
	}
	c.entries[key] = entry{value: v, fetchedAt: c.now()}
}

// Do returns the cached result for key or runs fn, sharing a single call
// among concurrent callers with the same key. Errors are not cached.
func Do[T any](ctx context.Context, c *Cache, key Key, fn func(context.Context) (T, error)) (T, error) {
	if v, ok := c.lookup(key); ok {
		if typed, ok := v.(T); ok {
			return typed, nil
		}
	}

	gen := c.generation(key)
	v, err, _ := c.group.Do(string(key), func() (any, error) {
		res, err := fn(ctx)
		if err != nil {
			return nil, err
		}
		c.store(key, gen, res)
		return res, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}

	typed, ok := v.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("query: cached value for %s has type %T", key, v)
	}
	return typed, nil
}
