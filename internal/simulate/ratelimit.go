package simulate

import (
	"time"

	"github.com/fnrow/fnrow/internal/keymap"
)

// fireInterval is the minimum spacing between two fires of the same key.
// Physical auto-repeat and feed clients can both hammer a key; anything
// faster than this is dropped silently.
const fireInterval = 150 * time.Millisecond

// rateLimiter tracks the last fire time per key. The table is keyed by
// the closed key domain, so it never grows past twelve entries. It is
// not safe for concurrent use on its own; the Dispatcher's mutex is the
// single gate for every read-modify-write.
type rateLimiter struct {
	interval  time.Duration
	lastFired map[keymap.Key]time.Time
}

func newRateLimiter(interval time.Duration) *rateLimiter {
	return &rateLimiter{
		interval:  interval,
		lastFired: make(map[keymap.Key]time.Time),
	}
}

// shouldFire allows the fire and records now if the key has never fired
// or its interval has elapsed. A deny records nothing and has no side
// effect. Timestamps carry Go's monotonic reading, so wall clock
// adjustments cannot widen or shrink the window.
func (r *rateLimiter) shouldFire(k keymap.Key, now time.Time) bool {
	if last, ok := r.lastFired[k]; ok && now.Sub(last) < r.interval {
		return false
	}
	r.lastFired[k] = now
	return true
}
