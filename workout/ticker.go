package workout

import (
	"context"
	"time"
)

// DefaultTickInterval approximates a display refresh cadence.
const DefaultTickInterval = 16 * time.Millisecond

// Drive runs the tick loop until ctx is cancelled or the run
// finishes. Leaving the loop releases the timer and stops in-flight
// speech, so abandoning a session never leaves audio playing.
func Drive(ctx context.Context, r *Run, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	defer r.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Tick()
			if r.Phase() == PhaseFinished {
				// Let the completion cue finish before tearing down.
				select {
				case <-ctx.Done():
				case <-time.After(3 * time.Second):
				}
				return
			}
		}
	}
}
