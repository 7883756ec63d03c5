package lru

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// build returns a sequence holding keys in order from head to tail.
func build(keys ...string) (*sequence[string, int], ref) {
	s := newSequence[string, int](len(keys))
	head := none
	for i := len(keys) - 1; i >= 0; i-- {
		r := s.alloc(keys[i], i)
		s.linkBefore(head, r)
		head = r
	}
	return &s, head
}

func walk(s *sequence[string, int], head ref) []string {
	out := []string{}
	for r := head; r.ok(); r = s.at(r).next {
		out = append(out, s.at(r).key)
	}
	return out
}

func TestSequenceLinkBefore(t *testing.T) {
	s, head := build("a", "b", "c")
	require.Equal(t, []string{"a", "b", "c"}, walk(s, head))
	require.False(t, s.at(head).prev.ok())

	r := s.alloc("z", 9)
	s.linkBefore(head, r)
	require.Equal(t, []string{"z", "a", "b", "c"}, walk(s, r))
	require.Equal(t, r, s.at(head).prev)
}

func TestSequenceLinkBeforeEmpty(t *testing.T) {
	s := newSequence[string, int](1)
	r := s.alloc("a", 1)
	s.linkBefore(none, r)

	require.False(t, s.at(r).prev.ok())
	require.False(t, s.at(r).next.ok())
}

func TestSequenceDetach(t *testing.T) {
	tests := []struct {
		name     string
		keys     []string
		detach   int
		newHead  int
		want     []string
		wantTail string
	}{
		{name: "sole", keys: []string{"a"}, detach: 0, newHead: -1, want: []string{}},
		{name: "head", keys: []string{"a", "b", "c"}, detach: 0, newHead: 1, want: []string{"b", "c"}, wantTail: "c"},
		{name: "tail", keys: []string{"a", "b", "c"}, detach: 2, newHead: 0, want: []string{"a", "b"}, wantTail: "b"},
		{name: "interior", keys: []string{"a", "b", "c"}, detach: 1, newHead: 0, want: []string{"a", "c"}, wantTail: "c"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s, _ := build(tc.keys...)

			// build allocates from the tail, so slot i holds key n-1-i.
			n := len(tc.keys)
			slot := func(i int) ref { return ref(n - 1 - i) }

			r := slot(tc.detach)
			s.detach(r)
			require.False(t, s.at(r).prev.ok())
			require.False(t, s.at(r).next.ok())

			if tc.newHead < 0 {
				return
			}

			head := slot(tc.newHead)
			require.False(t, s.at(head).prev.ok())
			require.Equal(t, tc.want, walk(s, head))

			last := head
			for s.at(last).next.ok() {
				last = s.at(last).next
			}
			require.Equal(t, tc.wantTail, s.at(last).key)
		})
	}
}

func TestSequenceDetachUnlinked(t *testing.T) {
	s, head := build("a", "b")
	r := s.at(head).next
	s.detach(r)

	// a second detach must not disturb the remaining chain.
	s.detach(r)
	require.Equal(t, []string{"a"}, walk(s, head))
}

func TestSequenceReleaseReuse(t *testing.T) {
	s, head := build("a", "b", "c")
	mid := s.at(head).next

	s.detach(mid)
	s.release(mid)
	require.Equal(t, mid, s.free)
	require.Equal(t, "", s.at(mid).key)
	require.Equal(t, 0, s.at(mid).value)

	r := s.alloc("d", 4)
	require.Equal(t, mid, r)
	require.False(t, s.free.ok())
	require.Len(t, s.slots, 3)
}

func TestSequenceReleaseLinkedPanics(t *testing.T) {
	s, head := build("a", "b")
	require.Panics(t, func() {
		s.release(head)
	})
}

func TestSequenceReset(t *testing.T) {
	s, _ := build("a", "b")
	s.reset()

	require.Empty(t, s.slots)
	require.False(t, s.free.ok())
	require.Equal(t, ref(0), s.alloc("c", 1))
}
