// Package filter holds approximate set-membership filters over cache keys. A
// filter may report keys which are absent, but never misses one which is
// present, so a negative answer can skip a trip to the backing store.
package filter

import (
	"github.com/adammck/lrucache/pkg/filter/xor"
)

type Filter interface {
	Contains(key string) bool
}

func Create(keys []string) (Filter, error) {
	return xor.Create(keys)
}
