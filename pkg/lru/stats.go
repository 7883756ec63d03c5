package lru

// Stats counts cache activity since the cache was created.
type Stats struct {
	// Hits and Misses count calls to Get. Peek and Contains are not counted.
	Hits   int64
	Misses int64

	// Evictions counts entries removed to make room for a new key. Explicit
	// deletes and clears are not evictions.
	Evictions int64
}

// HitRatio returns Hits / (Hits + Misses), or zero if there were no lookups.
func (s Stats) HitRatio() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}
