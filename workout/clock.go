package workout

import "time"

// Clock is the countdown for the current phase. Remaining never goes
// below zero or above Total.
type Clock struct {
	Total     time.Duration
	Remaining time.Duration
}

// NewClock starts a countdown covering total.
func NewClock(total time.Duration) Clock {
	if total < 0 {
		total = 0
	}
	return Clock{Total: total, Remaining: total}
}

// Advance subtracts elapsed wall-clock time, floored at zero.
func (c *Clock) Advance(elapsed time.Duration) {
	if elapsed <= 0 {
		return
	}
	c.Remaining -= elapsed
	if c.Remaining < 0 {
		c.Remaining = 0
	}
}

// Second returns the current countdown second, the ceiling of the
// remaining time. It is the only second ever spoken for this instant,
// even when a stalled frame crossed several boundaries at once.
func (c Clock) Second() int {
	return int((c.Remaining + time.Second - 1) / time.Second)
}

// Done reports whether the countdown reached zero.
func (c Clock) Done() bool { return c.Remaining <= 0 }
