package lru

// index maps keys to their slot in the sequence. It has no ordering of its
// own; it only saves walking the chain to find an entry.
type index[K comparable] struct {
	m map[K]ref
}

func newIndex[K comparable](capacity int) index[K] {
	return index[K]{m: make(map[K]ref, min(capacity, 1024))}
}

func (i *index[K]) tryGet(key K) (ref, bool) {
	r, ok := i.m[key]
	return r, ok
}

func (i *index[K]) insert(key K, r ref) {
	i.m[key] = r
}

func (i *index[K]) remove(key K) {
	delete(i.m, key)
}

func (i *index[K]) contains(key K) bool {
	_, ok := i.m[key]
	return ok
}

func (i *index[K]) len() int {
	return len(i.m)
}

func (i *index[K]) reset() {
	clear(i.m)
}
