// Package workout drives a timed exercise session: the phase state
// machine, the countdown clock, per-tick cue selection and the
// speaker bridge into the guidance cache and playback layer. The
// countdown depends only on elapsed wall-clock time; speech is
// fire-and-forget and can never stall or skew the timer.
package workout

// Phase is the state of the run for the current exercise. Exactly one
// phase is active at a time.
type Phase int

const (
	// PhaseAnnounce speaks the exercise name. It mirrors the prep
	// duration but does not count down; it ends when the announcement
	// finishes.
	PhaseAnnounce Phase = iota
	// PhasePrep counts down the preparation time.
	PhasePrep
	// PhaseWork counts down reps multiplied by rep duration.
	PhaseWork
	// PhaseCool counts down the rest time. Skipped entirely when the
	// exercise has no cooling time.
	PhaseCool
	// PhaseFinished is terminal.
	PhaseFinished
)

func (p Phase) String() string {
	switch p {
	case PhaseAnnounce:
		return "announce"
	case PhasePrep:
		return "prep"
	case PhaseWork:
		return "work"
	case PhaseCool:
		return "cool"
	case PhaseFinished:
		return "finished"
	default:
		return "unknown"
	}
}
