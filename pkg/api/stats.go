package api

import "time"

// Source identifies where a read-through cache found a value, or decided that
// there wasn't one.
type Source string

const (
	// SourceCache means the value was already in the cache.
	SourceCache Source = "cache"

	// SourceStore means the value was loaded from the backing store.
	SourceStore Source = "store"

	// SourceFilter means the key filter ruled the key out, so the store was
	// not consulted at all.
	SourceFilter Source = "filter"
)

// GetStats contains metadata about a read-through Get.
type GetStats struct {
	Source Source

	// When the value was loaded from, or written through to, the store. Zero
	// when there is no value.
	Fetched time.Time

	// Shared is true when the load was started by a concurrent Get of the same
	// key, and this call only waited for it.
	Shared bool
}
