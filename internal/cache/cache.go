// Package cache provides a concurrency-safe TTL cache with LRU eviction,
// used to hold catalog responses keyed by external identifier so a batch
// run never fetches the same item twice.
package cache

import (
	"sync"
	"sync/atomic"
	"time"
)

// TTL is a bounded key/value cache with per-entry expiration. Safe for
// concurrent use; a single instance is owned by one RemoteCatalogSource
// and injected explicitly, never a process-wide singleton.
type TTL[V any] struct {
	mu         sync.Mutex
	entries    map[string]*entry[V]
	order      []string // LRU order: front=oldest, back=newest
	maxEntries int
	ttl        time.Duration
	hits       atomic.Int64
	misses     atomic.Int64
}

type entry[V any] struct {
	value     V
	createdAt time.Time
}

// Stats reports cache effectiveness for diagnostics.
type Stats struct {
	Entries int     `json:"entries"`
	Hits    int64   `json:"hits"`
	Misses  int64   `json:"misses"`
	HitRate float64 `json:"hit_rate"`
}

// NewTTL creates a cache holding at most maxEntries values for ttl each.
func NewTTL[V any](maxEntries int, ttl time.Duration) *TTL[V] {
	if maxEntries <= 0 {
		maxEntries = 256
	}
	return &TTL[V]{
		entries:    make(map[string]*entry[V]),
		maxEntries: maxEntries,
		ttl:        ttl,
	}
}

// Get returns the cached value for key, or ok=false on miss or expiry.
func (c *TTL[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	e, ok := c.entries[key]
	if !ok {
		c.misses.Add(1)
		return zero, false
	}
	if c.ttl > 0 && time.Since(e.createdAt) > c.ttl {
		delete(c.entries, key)
		c.removeFromOrder(key)
		c.misses.Add(1)
		return zero, false
	}

	c.removeFromOrder(key)
	c.order = append(c.order, key)
	c.hits.Add(1)
	return e.value, true
}

// Put stores a value, evicting the least recently used entry at capacity.
func (c *TTL[V]) Put(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[key]; ok {
		c.entries[key] = &entry[V]{value: value, createdAt: time.Now()}
		c.removeFromOrder(key)
		c.order = append(c.order, key)
		return
	}

	for len(c.entries) >= c.maxEntries && len(c.order) > 0 {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}

	c.entries[key] = &entry[V]{value: value, createdAt: time.Now()}
	c.order = append(c.order, key)
}

// Len returns the current entry count.
func (c *TTL[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats returns hit/miss counters accumulated since construction.
func (c *TTL[V]) Stats() Stats {
	c.mu.Lock()
	entries := len(c.entries)
	c.mu.Unlock()

	hits := c.hits.Load()
	misses := c.misses.Load()
	var hitRate float64
	if total := hits + misses; total > 0 {
		hitRate = float64(hits) / float64(total)
	}
	return Stats{Entries: entries, Hits: hits, Misses: misses, HitRate: hitRate}
}

func (c *TTL[V]) removeFromOrder(key string) {
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}
