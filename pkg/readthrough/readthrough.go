// Package readthrough puts a bounded LRU cache in front of an api.Store. Reads
// which miss the cache are loaded from the store, with concurrent loads of the
// same key collapsed into one; writes go to the store first and then to the
// cache.
package readthrough

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/adammck/lrucache/pkg/api"
	"github.com/adammck/lrucache/pkg/filter"
	"github.com/adammck/lrucache/pkg/lru"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/singleflight"
)

// ErrFilterStale is returned by RebuildFilter when a Put landed while the key
// set was being listed, so the new filter might not contain it. The old filter
// has been dropped; it's safe to try again.
var ErrFilterStale = errors.New("key filter went stale during rebuild")

type entry struct {
	value   []byte
	fetched time.Time
}

// keyFilter boxes a filter so it can live in an atomic.Pointer.
type keyFilter struct {
	f filter.Filter
}

type Cache struct {
	store  api.Store
	lru    *lru.Cache[string, entry]
	clock  clockwork.Clock
	logger *slog.Logger
	group  singleflight.Group

	// filter is nil unless RebuildFilter has installed one, and no Put has
	// happened since.
	filter atomic.Pointer[keyFilter]

	// mu orders cache fills by loads against Put and Delete, and filter
	// installs against Put. writes counts Puts, and mutations counts Puts and
	// Deletes, so that a load or rebuild can tell that it raced with one.
	mu        sync.Mutex
	writes    uint64
	mutations uint64

	hits     atomic.Int64
	misses   atomic.Int64
	loads    atomic.Int64
	filtered atomic.Int64
}

// Metrics is a snapshot of cache activity.
type Metrics struct {
	// Hits and Misses count Gets which were and were not answered by the LRU.
	Hits   int64
	Misses int64

	// Loads counts calls to the store's Get. This is less than Misses when
	// concurrent loads were collapsed, or the filter ruled keys out.
	Loads int64

	// Filtered counts misses answered by the key filter.
	Filtered int64

	// Len is the number of cached values.
	Len int

	LRU lru.Stats
}

func New(store api.Store, capacity int, opts ...Option) *Cache {
	c := &Cache{
		store:  store,
		lru:    lru.New[string, entry](capacity),
		clock:  clockwork.NewRealClock(),
		logger: newNopLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Get returns the value of key, from the cache if possible, or else from the
// store. Returns a *api.NotFound if the key doesn't exist; misses are not
// cached.
//
// When several goroutines miss on the same key at once, one of them loads it
// with its own ctx and the rest wait for the result.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, *api.GetStats, error) {
	if e, ok := c.lru.Get(key); ok {
		c.hits.Add(1)
		return bytes.Clone(e.value), &api.GetStats{Source: api.SourceCache, Fetched: e.fetched}, nil
	}

	c.misses.Add(1)

	if kf := c.filter.Load(); kf != nil && !kf.f.Contains(key) {
		c.filtered.Add(1)
		return nil, &api.GetStats{Source: api.SourceFilter}, &api.NotFound{Key: key}
	}

	v, err, shared := c.group.Do(key, func() (interface{}, error) {
		return c.load(ctx, key)
	})

	stats := &api.GetStats{Source: api.SourceStore, Shared: shared}
	if err != nil {
		return nil, stats, err
	}

	e := v.(entry)
	stats.Fetched = e.fetched
	return bytes.Clone(e.value), stats, nil
}

func (c *Cache) load(ctx context.Context, key string) (entry, error) {
	c.loads.Add(1)

	c.mu.Lock()
	gen := c.mutations
	c.mu.Unlock()

	b, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, &api.NotFound{}) {
			c.logger.DebugContext(ctx, "load failed", "key", key, "err", err)
		}
		return entry{}, fmt.Errorf("store.Get: %w", err)
	}

	e := entry{value: b, fetched: c.clock.Now()}

	// the value may predate a concurrent write; return it, but don't cache it.
	c.mu.Lock()
	if c.mutations == gen {
		c.lru.Put(key, e)
	}
	c.mu.Unlock()

	return e, nil
}

// Put writes value to the store, and then caches it. The key filter, if any,
// is dropped, since it no longer covers every key.
func (c *Cache) Put(ctx context.Context, key string, value []byte) error {
	if err := c.store.Put(ctx, key, value); err != nil {
		return fmt.Errorf("store.Put: %w", err)
	}

	c.mu.Lock()
	c.writes++
	c.mutations++
	if c.filter.Swap(nil) != nil {
		c.logger.DebugContext(ctx, "dropped key filter", "key", key)
	}
	c.lru.Put(key, entry{value: bytes.Clone(value), fetched: c.clock.Now()})
	c.mu.Unlock()

	c.group.Forget(key)
	return nil
}

// Delete removes key from the store, and then from the cache.
func (c *Cache) Delete(ctx context.Context, key string) error {
	if err := c.store.Delete(ctx, key); err != nil {
		return fmt.Errorf("store.Delete: %w", err)
	}

	c.mu.Lock()
	c.mutations++
	c.lru.Delete(key)
	c.mu.Unlock()

	// later Gets must not join a load which may have read the deleted value.
	c.group.Forget(key)
	return nil
}

// Invalidate drops key from the cache, leaving the store alone. Returns true if
// it was cached.
func (c *Cache) Invalidate(key string) bool {
	return c.lru.Delete(key)
}

// Purge drops everything from the cache, leaving the store alone.
func (c *Cache) Purge() {
	c.lru.Clear()
}

// Contains reports whether key is currently cached. It does not consult the
// store, or change the key's recency.
func (c *Cache) Contains(key string) bool {
	return c.lru.Contains(key)
}

// RebuildFilter lists every key in the store and installs a filter built from
// them, so that Gets for keys which don't exist can skip the store. An empty
// store leaves no filter installed.
func (c *Cache) RebuildFilter(ctx context.Context) error {
	c.mu.Lock()
	gen := c.writes
	c.mu.Unlock()

	keys, err := c.store.Keys(ctx)
	if err != nil {
		return fmt.Errorf("store.Keys: %w", err)
	}

	var kf *keyFilter
	if len(keys) > 0 {
		f, err := filter.Create(keys)
		if err != nil {
			return fmt.Errorf("filter.Create: %w", err)
		}
		kf = &keyFilter{f: f}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.writes != gen {
		return ErrFilterStale
	}

	c.filter.Store(kf)
	c.logger.DebugContext(ctx, "rebuilt key filter", "keys", len(keys))
	return nil
}

// HasFilter reports whether a key filter is installed.
func (c *Cache) HasFilter() bool {
	return c.filter.Load() != nil
}

func (c *Cache) Metrics() Metrics {
	return Metrics{
		Hits:     c.hits.Load(),
		Misses:   c.misses.Load(),
		Loads:    c.loads.Load(),
		Filtered: c.filtered.Load(),
		Len:      c.lru.Len(),
		LRU:      c.lru.Stats(),
	}
}

// Close drops every cached value. The store is not closed.
func (c *Cache) Close() {
	c.lru.Close()
}
