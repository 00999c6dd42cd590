// Package cache provides a bounded, mutex-guarded memoization map keyed
// by a normalized user pair. Entries never expire on their own; callers
// invalidate explicitly whenever the underlying store mutates.
package cache

import (
	"sync"
)

// PairKey is a normalized two-user key: A is always the smaller id, so
// (a,b) and (b,a) address the same entry.
type PairKey struct {
	A int64
	B int64
}

func NewPairKey(a, b int64) PairKey {
	if a > b {
		a, b = b, a
	}
	return PairKey{A: a, B: b}
}

// PairCache memoizes up to capacity values. When full, the oldest
// inserted entry is evicted.
type PairCache[V any] struct {
	mu       sync.Mutex
	capacity int
	entries  map[PairKey]V
	order    []PairKey
}

func NewPairCache[V any](capacity int) *PairCache[V] {
	if capacity <= 0 {
		capacity = 1
	}
	return &PairCache[V]{
		capacity: capacity,
		entries:  make(map[PairKey]V, capacity),
	}
}

func (c *PairCache[V]) Get(key PairKey) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[key]
	return v, ok
}

func (c *PairCache[V]) Set(key PairKey, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[key]; ok {
		c.entries[key] = value
		return
	}
	if len(c.entries) >= c.capacity {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}
	c.entries[key] = value
	c.order = append(c.order, key)
}

func (c *PairCache[V]) Invalidate(key PairKey) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[key]; !ok {
		return
	}
	delete(c.entries, key)
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

// Purge drops every entry; the next read recomputes from the store.
func (c *PairCache[V]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[PairKey]V, c.capacity)
	c.order = nil
}

func (c *PairCache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
