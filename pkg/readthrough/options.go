package readthrough

import (
	"log/slog"

	"github.com/jonboulle/clockwork"
)

type Option func(*Cache)

// WithClock sets the clock used to timestamp loaded values. Defaults to the
// real clock.
func WithClock(clock clockwork.Clock) Option {
	return func(c *Cache) {
		c.clock = clock
	}
}

// WithLogger sets the logger. By default nothing is logged. Pass nil to keep
// the default.
func WithLogger(l *slog.Logger) Option {
	return func(c *Cache) {
		if l != nil {
			c.logger = l
		}
	}
}
