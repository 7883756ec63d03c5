package mock

import (
	"bytes"
	"context"
	"sync"

	"github.com/adammck/lrucache/pkg/api"
)

// Store is an in-memory api.Store. It's used by tests, and as the backend of
// last resort for the CLI.
type Store struct {
	mu   sync.RWMutex
	data map[string][]byte

	// Err, if set, is returned from every call. Set it before use.
	Err error

	gets int
}

var _ api.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		data: make(map[string][]byte),
	}
}

func (m *Store) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.gets++
	if m.Err != nil {
		return nil, m.Err
	}

	v, ok := m.data[key]
	if !ok {
		return nil, &api.NotFound{Key: key}
	}

	return bytes.Clone(v), nil
}

func (m *Store) Put(ctx context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return m.Err
	}

	m.data[key] = bytes.Clone(value)
	return nil
}

func (m *Store) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return m.Err
	}

	delete(m.data, key)
	return nil
}

func (m *Store) Keys(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.Err != nil {
		return nil, m.Err
	}

	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}

	return keys, nil
}

// Gets returns the number of calls to Get so far, so tests can tell whether a
// read went through to the store.
func (m *Store) Gets() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.gets
}
