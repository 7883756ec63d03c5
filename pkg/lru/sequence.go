package lru

// ref is the index of an entry in a sequence's arena. Links between entries
// are refs rather than pointers, so an entry can never outlive its slot.
type ref int32

// none is the absent ref: no predecessor, no successor, no head or tail.
const none ref = -1

func (r ref) ok() bool {
	return r != none
}

// entry is a single key/value pair plus its position in the recency order.
type entry[K comparable, V any] struct {
	key   K
	value V
	prev  ref
	next  ref
}

// sequence is a doubly linked list of entries stored in a slot arena. Slots
// released by free are reused by alloc before the arena grows.
//
// The sequence knows nothing about which entry is the head or the tail; the
// Cache keeps those refs and updates them around every detach and link.
type sequence[K comparable, V any] struct {
	slots []entry[K, V]

	// head of the free list, threaded through the next field of free slots.
	free ref
}

func newSequence[K comparable, V any](capacity int) sequence[K, V] {
	return sequence[K, V]{
		slots: make([]entry[K, V], 0, min(capacity, 1024)),
		free:  none,
	}
}

func (s *sequence[K, V]) at(r ref) *entry[K, V] {
	return &s.slots[r]
}

// alloc returns an unlinked slot holding key and value.
func (s *sequence[K, V]) alloc(key K, value V) ref {
	if s.free.ok() {
		r := s.free
		e := s.at(r)
		s.free = e.next
		*e = entry[K, V]{key: key, value: value, prev: none, next: none}
		return r
	}

	s.slots = append(s.slots, entry[K, V]{key: key, value: value, prev: none, next: none})
	return ref(len(s.slots) - 1)
}

// release zeroes the slot and puts it on the free list. The entry must have
// been detached already.
func (s *sequence[K, V]) release(r ref) {
	e := s.at(r)
	if e.prev.ok() || e.next.ok() {
		panic("lru: releasing a linked entry")
	}

	*e = entry[K, V]{prev: none, next: s.free}
	s.free = r
}

// detach removes r from the chain, joining its neighbours to each other. r's
// own links are cleared. Detaching an unlinked entry does nothing.
func (s *sequence[K, V]) detach(r ref) {
	e := s.at(r)

	switch {
	case e.prev.ok() && e.next.ok():
		// interior
		s.at(e.prev).next = e.next
		s.at(e.next).prev = e.prev

	case e.next.ok():
		// head; the successor loses its predecessor.
		s.at(e.next).prev = none

	case e.prev.ok():
		// tail; the predecessor loses its successor.
		s.at(e.prev).next = none

	default:
		// sole entry, or already unlinked.
	}

	e.prev = none
	e.next = none
}

// linkBefore places r immediately in front of head, making r the new logical
// head of the chain. head may be none, when the chain is empty.
func (s *sequence[K, V]) linkBefore(head, r ref) {
	e := s.at(r)
	e.prev = none
	e.next = head

	if head.ok() {
		s.at(head).prev = r
	}
}

// reset drops every slot. Values are zeroed so that nothing stays reachable
// through the retained backing array.
func (s *sequence[K, V]) reset() {
	clear(s.slots)
	s.slots = s.slots[:0]
	s.free = none
}
