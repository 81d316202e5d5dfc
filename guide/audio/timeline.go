package audio

import (
	"fmt"
	"time"

	"github.com/systomic777/alex-workout/guide"
)

// Timeline is a pre-rendered cue track for one phase. Clips are mixed
// into a silent buffer at their scheduled offsets and the whole phase
// plays as a single uninterrupted clip, trading reactivity for exact
// cue timing.
type Timeline struct {
	rate    int
	samples []int16
}

// NewTimeline allocates a silent track covering total at the given
// sample rate.
func NewTimeline(total time.Duration, rate int) *Timeline {
	if rate <= 0 {
		rate = guide.SampleRate
	}
	n := int(total.Seconds() * float64(rate))
	if n < 0 {
		n = 0
	}
	return &Timeline{rate: rate, samples: make([]int16, n)}
}

// Duration returns the track length.
func (t *Timeline) Duration() time.Duration {
	return time.Duration(len(t.samples)) * time.Second / time.Duration(t.rate)
}

// ScheduleAt mixes a PCM clip into the track starting at offset. A cue
// starting past the end of the track is an error; a clip that merely
// runs over the end is truncated at the boundary.
func (t *Timeline) ScheduleAt(offset time.Duration, pcm []byte) error {
	if offset < 0 {
		return fmt.Errorf("%w: negative offset %v", guide.ErrTimelineOverflow, offset)
	}
	start := int(offset.Seconds() * float64(t.rate))
	if start >= len(t.samples) {
		return fmt.Errorf("%w: offset %v beyond %v", guide.ErrTimelineOverflow, offset, t.Duration())
	}
	mixInto(t.samples, toSamples(pcm), start)
	return nil
}

// Render returns the mixed track as PCM bytes.
func (t *Timeline) Render() []byte {
	return fromSamples(t.samples)
}
