// Package lru provides a bounded, thread-safe key/value cache which evicts the
// least recently used entry when it is full.
package lru

import (
	"fmt"
	"sync"
)

// Cache implements a thread-safe LRU cache with a fixed capacity. The zero
// value is not usable; create caches with New.
type Cache[K comparable, V any] struct {
	mu       sync.Mutex
	capacity int
	size     int
	index    index[K]
	seq      sequence[K, V]
	stats    Stats

	// most and least recently used entries, or none when empty.
	head ref
	tail ref
}

// New creates a new LRU cache with the specified capacity. A cache with zero
// capacity never retains anything.
func New[K comparable, V any](capacity int) *Cache[K, V] {
	if capacity < 0 {
		panic("cache capacity must not be negative")
	}

	return &Cache[K, V]{
		capacity: capacity,
		index:    newIndex[K](capacity),
		seq:      newSequence[K, V](capacity),
		head:     none,
		tail:     none,
	}
}

// Contains reports whether the key is present, without changing its recency.
func (c *Cache[K, V]) Contains(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.index.contains(key)
}

// Put adds or updates a value in the cache, and marks it as the most recently
// used. If the cache is at capacity, the least recently used entry is evicted
// first. Does nothing if the capacity is zero.
func (c *Cache[K, V]) Put(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.capacity == 0 {
		return
	}

	if r, ok := c.index.tryGet(key); ok {
		c.seq.at(r).value = value
		c.promote(r)
		return
	}

	if c.size == c.capacity {
		c.evict()
	}

	r := c.seq.alloc(key, value)
	c.seq.linkBefore(c.head, r)
	c.head = r
	if !c.tail.ok() {
		c.tail = r
	}

	c.index.insert(key, r)
	c.size++
}

// Get retrieves a value from the cache. Returns the value and true if found,
// or the zero value and false if not. A hit marks the entry as the most
// recently used.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	r, ok := c.index.tryGet(key)
	if !ok {
		c.stats.Misses++
		var zero V
		return zero, false
	}

	c.promote(r)
	c.stats.Hits++
	return c.seq.at(r).value, true
}

// Peek is like Get, but does not change the recency of the entry or count
// towards the hit and miss stats.
func (c *Cache[K, V]) Peek(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if r, ok := c.index.tryGet(key); ok {
		return c.seq.at(r).value, true
	}

	var zero V
	return zero, false
}

// Delete removes the key from the cache. Returns true if it was present.
func (c *Cache[K, V]) Delete(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	r, ok := c.index.tryGet(key)
	if !ok {
		return false
	}

	c.remove(r)
	return true
}

// Clear removes all items from the cache. Stats are kept.
func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.index.reset()
	c.seq.reset()
	c.head = none
	c.tail = none
	c.size = 0
}

// Close releases every entry. It's the same as Clear, and may be called any
// number of times.
func (c *Cache[K, V]) Close() {
	c.Clear()
}

// Len returns the current number of items in the cache.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.size
}

// Cap returns the maximum number of items the cache will hold.
func (c *Cache[K, V]) Cap() int {
	return c.capacity
}

// Keys returns the keys in the cache, from most to least recently used.
func (c *Cache[K, V]) Keys() []K {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := make([]K, 0, c.size)
	for r := c.head; r.ok(); r = c.seq.at(r).next {
		if len(keys) == c.size {
			panic(fmt.Sprintf("lru: chain is longer than size (%d)", c.size))
		}
		keys = append(keys, c.seq.at(r).key)
	}

	if len(keys) != c.size {
		panic(fmt.Sprintf("lru: chain length %d does not match size %d", len(keys), c.size))
	}

	return keys
}

// Stats returns a snapshot of the hit, miss, and eviction counters.
func (c *Cache[K, V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// promote moves r to the head of the sequence. The caller must hold the lock.
func (c *Cache[K, V]) promote(r ref) {
	if !c.head.ok() {
		panic("lru: index contains key but head is not set")
	}

	// already the most recent, which includes being the sole entry.
	if r == c.head {
		return
	}

	if r == c.tail {
		c.tail = c.seq.at(r).prev
	}

	c.seq.detach(r)
	c.seq.linkBefore(c.head, r)
	c.head = r
}

// evict removes the least recently used entry. The caller must hold the lock.
// Evicting from an empty cache means that the size and the sequence disagree,
// which can't be recovered from.
func (c *Cache[K, V]) evict() {
	if !c.tail.ok() {
		panic(fmt.Sprintf("lru: evict with no tail (size=%d, indexed=%d)", c.size, c.index.len()))
	}

	c.remove(c.tail)
	c.stats.Evictions++
}

// remove unlinks r, moving head and tail as needed, then drops it from the
// index and frees its slot. The caller must hold the lock.
func (c *Cache[K, V]) remove(r ref) {
	e := c.seq.at(r)

	switch {
	case r == c.head && r == c.tail:
		c.head = none
		c.tail = none

	case r == c.head:
		c.head = e.next

	case r == c.tail:
		if !e.prev.ok() {
			panic("lru: tail has no predecessor but is not the head")
		}
		c.tail = e.prev
	}

	c.seq.detach(r)
	c.index.remove(e.key)
	c.seq.release(r)
	c.size--
}
