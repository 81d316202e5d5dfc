package workout

import (
	"time"

	"github.com/systomic777/alex-workout/guide"
)

// cueClass distinguishes countdown cues for suppression purposes.
// Only plain numbers are suppressible; everything else is critical.
type cueClass int

const (
	cueNumber cueClass = iota
	cueGetReady
	cueGo
	cueMotivation
)

// criticalSecond reports whether a countdown second must always be
// spoken, suppression window or not.
func criticalSecond(second int) bool { return second <= 3 }

// boundaryCue picks the cue for one countdown second of a prep or
// cool phase, in priority order: get-ready, go, motivational line,
// plain number. Suppression is applied by the caller; the choice
// itself is pure so the reactive tick and the pre-scheduled timeline
// agree on what every second says.
func boundaryCue(phase Phase, phaseTotal time.Duration, second, exerciseIndex int) (guide.CueSpec, cueClass) {
	initial := int((phaseTotal + time.Second - 1) / time.Second)
	switch phase {
	case PhasePrep:
		if phaseTotal > 2*time.Second && second == initial {
			return guide.Phrase(guide.PhraseGetReady), cueGetReady
		}
		if second == 1 {
			return guide.Phrase(guide.PhraseGo), cueGo
		}
		if phaseTotal >= 8*time.Second && second == 8 {
			return guide.RotatingMotivation(exerciseIndex, second), cueMotivation
		}
	case PhaseCool:
		if phaseTotal >= 10*time.Second && second == 10 {
			return guide.RotatingMotivation(exerciseIndex, second), cueMotivation
		}
	}
	return guide.Number(second), cueNumber
}

// suppressionFloor computes the remaining-time threshold below which
// number cues speak again after a motivational line. Anchoring the
// window to phase time instead of wall time keeps suppression
// identical across pauses and stalled frames. The extra second covers
// the boundary that falls exactly on the window edge.
func suppressionFloor(remainingAtCue, window time.Duration) time.Duration {
	return remainingAtCue - window - time.Second
}

// timedCue is one entry of a pre-computed phase schedule.
type timedCue struct {
	// Second is the countdown second the cue belongs to.
	Second int
	// Offset is the time from phase start at which the cue fires.
	Offset time.Duration
	Spec   guide.CueSpec
}

// phaseCues computes the full cue schedule for a prep or cool phase,
// applying the same priority and suppression rules the reactive tick
// applies second by second. For cool phases the initial second is
// omitted; the rest announcement owns phase entry.
func phaseCues(phase Phase, total time.Duration, exerciseIndex int, window time.Duration) []timedCue {
	if phase != PhasePrep && phase != PhaseCool {
		return nil
	}
	initial := int((total + time.Second - 1) / time.Second)
	var cues []timedCue
	floor := time.Duration(-1)
	for second := initial; second >= 1; second-- {
		if phase == PhaseCool && second == initial {
			continue
		}
		remaining := time.Duration(second) * time.Second
		spec, class := boundaryCue(phase, total, second, exerciseIndex)
		if class == cueNumber && !criticalSecond(second) && floor >= 0 && remaining >= floor {
			continue
		}
		if class == cueMotivation {
			floor = suppressionFloor(remaining, window)
		}
		offset := total - remaining
		if offset < 0 {
			offset = 0
		}
		cues = append(cues, timedCue{Second: second, Offset: offset, Spec: spec})
	}
	return cues
}
