// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package cache

import (
	"sync"
	"sync/atomic"
)

// Cache memoizes values by key.
//
// Cache is safe for concurrent use.
// Cache must not be copied after creation (has mutex).
type Cache[K comparable, V any] struct {
	mu      sync.RWMutex
	entries map[K]V

	hits   atomic.Uint64
	misses atomic.Uint64
}

// New creates an empty cache.
func New[K comparable, V any]() *Cache[K, V] {
	return &Cache[K, V]{entries: make(map[K]V)}
}

// Get retrieves a value from the cache.
// Returns (value, true) if found, (zero, false) otherwise.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.RLock()
	v, ok := c.entries[key]
	c.mu.RUnlock()
	if ok {
		c.hits.Add(1)
	}
	return v, ok
}

// GetOrCreate returns the cached value or creates it. create runs under the
// write lock, so it is called at most once per key. A failed creation is not
// cached and the next call retries.
func (c *Cache[K, V]) GetOrCreate(key K, create func() (V, error)) (V, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Another writer may have won the race.
	if v, ok := c.entries[key]; ok {
		c.hits.Add(1)
		return v, nil
	}

	c.misses.Add(1)
	v, err := create()
	if err != nil {
		var zero V
		return zero, err
	}
	c.entries[key] = v
	return v, nil
}

// Len returns the number of entries in the cache.
func (c *Cache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}

// Drain removes every entry, passing each value to release.
func (c *Cache[K, V]) Drain(release func(K, V)) {
	c.mu.Lock()
	entries := c.entries
	c.entries = make(map[K]V)
	c.mu.Unlock()

	for k, v := range entries {
		release(k, v)
	}
}

// Stats returns cache statistics.
func (c *Cache[K, V]) Stats() Stats {
	hits, misses := c.hits.Load(), c.misses.Load()
	s := Stats{Len: c.Len(), Hits: hits, Misses: misses}
	if total := hits + misses; total > 0 {
		s.HitRate = float64(hits) / float64(total)
	}
	return s
}

// Stats contains cache statistics.
type Stats struct {
	// Len is the current number of entries.
	Len int
	// Hits is the number of lookups served from the cache.
	Hits uint64
	// Misses is the number of values created.
	Misses uint64
	// HitRate is the cache hit rate 0.0 to 1.0.
	HitRate float64
}
