// This package contains only interfaces to be used by other packages. The
// implementations of these should be in pkg/impl/whatever. To avoid circular
// deps, this package should import nothing from pkg.
package api

import "context"

// Store is a durable key/value store which a read-through cache sits in front
// of. Implementations must be safe for concurrent use.
type Store interface {
	// Get returns the value of key, or a *NotFound if there is no such key.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put creates or replaces the value of key.
	Put(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting a key which doesn't exist is not an error.
	Delete(ctx context.Context, key string) error

	// Keys returns every key in the store, in no particular order.
	Keys(ctx context.Context) ([]string, error)
}
