package xor

import (
	"errors"
	"fmt"
	"hash/fnv"
	"slices"

	"github.com/FastFilter/xorfilter"
)

const FilterType = "xor"

type Filter struct {
	xf *xorfilter.BinaryFuse8
}

// Create builds a filter containing every key. Duplicate keys are fine.
func Create(keys []string) (*Filter, error) {
	if len(keys) == 0 {
		return nil, errors.New("empty key set")
	}

	hashes := make([]uint64, len(keys))
	for i, key := range keys {
		hashes[i] = hashKey(key)
	}

	// construction can fail to converge on repeated hashes.
	slices.Sort(hashes)
	hashes = slices.Compact(hashes)

	filter, err := xorfilter.PopulateBinaryFuse8(hashes)
	if err != nil {
		return nil, fmt.Errorf("PopulateBinaryFuse8: %w", err)
	}

	return &Filter{xf: filter}, nil
}

func (f *Filter) Contains(key string) bool {
	return f.xf.Contains(hashKey(key))
}

// Size returns the number of bytes of fingerprints held by the filter.
func (f *Filter) Size() int {
	return len(f.xf.Fingerprints)
}

func hashKey(key string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(key))
	return h.Sum64()
}
