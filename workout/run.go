package workout

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/systomic777/alex-workout/guide"
)

// Speaker voices cues for a run. Implementations are fire-and-forget:
// calls return immediately and failures never reach the caller, so
// the tick loop cannot be blocked or broken by audio.
type Speaker interface {
	// Announce speaks the exercise name. The returned channel closes
	// when the announcement finishes; a nil channel means the
	// announcement could not start.
	Announce(exerciseID string) <-chan struct{}
	// Number speaks a countdown second.
	Number(second int)
	// Phrase speaks a named phrase by identifier.
	Phrase(id string)
	// CountReps speaks a remaining rep count, tempo-fitted so it ends
	// within the rep window.
	CountReps(remaining int, within time.Duration)
	// Pause suspends the playing clip in place; Resume continues it.
	// Pre-rendered phase timelines must freeze with the countdown.
	Pause()
	Resume()
	// Stop cancels in-flight speech, pending schedules included.
	Stop()
}

// phaseScheduler is implemented by speakers that can pre-render a
// whole phase as one timeline instead of reacting tick by tick.
type phaseScheduler interface {
	SchedulePhase(total time.Duration, cues []timedCue)
	ScheduleReps(reps int, repDuration time.Duration)
}

// RunOptions tunes a run. Zero values select the defaults.
type RunOptions struct {
	// Now overrides the wall clock, for tests.
	Now func() time.Time
	// SuppressionWindow is how long number cues stay quiet after a
	// motivational line. Defaults to 2400ms.
	SuppressionWindow time.Duration
	// Scheduled selects the pre-rendered timeline strategy instead of
	// reactive per-tick cues.
	Scheduled bool
	// OnFinish is invoked once when the run reaches PhaseFinished.
	OnFinish func()
}

// Run is one workout session. It owns a snapshot of the exercise
// sequence, the current phase and its countdown, and decides which
// cue fires at which tick. All methods are safe for concurrent use.
type Run struct {
	mu        sync.Mutex
	exercises []guide.Exercise
	speaker   Speaker
	now       func() time.Time
	window    time.Duration
	scheduled bool
	onFinish  func()

	started       bool
	paused        bool
	pausedAt      time.Time
	index         int
	phase         Phase
	clock         Clock
	lastTick      time.Time
	lastSpoken    int
	suppressFloor time.Duration
	repIndex      int
	pending       bool

	announceDone     <-chan struct{}
	announceDeadline time.Time
}

// NewRun creates a session over a snapshot of the exercise sequence.
func NewRun(exercises []guide.Exercise, speaker Speaker, opts RunOptions) *Run {
	snapshot := make([]guide.Exercise, len(exercises))
	copy(snapshot, exercises)
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.SuppressionWindow <= 0 {
		opts.SuppressionWindow = 2400 * time.Millisecond
	}
	return &Run{
		exercises:     snapshot,
		speaker:       speaker,
		now:           opts.Now,
		window:        opts.SuppressionWindow,
		scheduled:     opts.Scheduled,
		onFinish:      opts.OnFinish,
		suppressFloor: -1,
	}
}

// Start begins the run at the first exercise's announcement.
func (r *Run) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started {
		return
	}
	r.started = true
	r.lastTick = r.now()
	if len(r.exercises) == 0 {
		r.finishLocked()
		return
	}
	r.index = 0
	r.enterAnnounceLocked()
}

// Tick advances the countdown by the wall-clock time since the last
// tick and fires due cues. It runs once per frame while the session
// is live; a late frame is absorbed by speaking only the current
// second, never a backlog.
func (r *Run) Tick() {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if !r.started || r.paused || r.phase == PhaseFinished {
		r.lastTick = now
		return
	}
	if r.pending {
		// Phase completion is deferred by one tick so transitions
		// never happen mid-update.
		r.pending = false
		r.lastTick = now
		r.advanceLocked()
		return
	}

	if r.phase == PhaseAnnounce {
		r.lastTick = now
		if r.announceFinished(now) {
			r.enterPhaseLocked(PhasePrep)
		}
		return
	}

	elapsed := now.Sub(r.lastTick)
	r.lastTick = now
	r.clock.Advance(elapsed)

	switch r.phase {
	case PhasePrep, PhaseCool:
		cur := r.clock.Second()
		if cur > 0 && cur != r.lastSpoken {
			r.lastSpoken = cur
			if !r.scheduled {
				r.speakBoundaryLocked(cur)
			}
		}
	case PhaseWork:
		r.tickWorkLocked()
	}

	if r.clock.Done() {
		r.pending = true
	}
}

func (r *Run) announceFinished(now time.Time) bool {
	if r.announceDone == nil {
		return true
	}
	select {
	case <-r.announceDone:
		return true
	default:
	}
	return now.After(r.announceDeadline)
}

func (r *Run) tickWorkLocked() {
	e := r.exercises[r.index]
	if e.RepDuration <= 0 {
		return
	}
	idx := int((r.clock.Total - r.clock.Remaining) / e.RepDuration)
	if idx <= r.repIndex {
		return
	}
	r.repIndex = idx
	if remaining := e.Reps - idx; remaining > 0 && !r.scheduled {
		r.speaker.CountReps(remaining, e.RepDuration)
	}
}

// speakBoundaryLocked applies the cue policy for one countdown second
// of a prep or cool phase.
func (r *Run) speakBoundaryLocked(second int) {
	spec, class := boundaryCue(r.phase, r.clock.Total, second, r.index)
	if class == cueNumber && !criticalSecond(second) &&
		r.suppressFloor >= 0 && r.clock.Remaining >= r.suppressFloor {
		return
	}
	if class == cueMotivation {
		r.suppressFloor = suppressionFloor(r.clock.Remaining, r.window)
	}
	if spec.Kind == guide.KindNumber {
		r.speaker.Number(second)
	} else {
		r.speaker.Phrase(spec.ID)
	}
}

func (r *Run) enterAnnounceLocked() {
	e := r.exercises[r.index]
	r.phase = PhaseAnnounce
	r.pending = false
	r.clock = NewClock(e.PrepTime)
	r.announceDone = r.speaker.Announce(e.ID)
	// The announcement gates on its own completion, with the prep
	// duration as an upper bound so a hung clip cannot stall the run.
	gate := e.PrepTime
	if gate < time.Second {
		gate = time.Second
	}
	r.announceDeadline = r.now().Add(gate)
	log.Debug("exercise announced", "index", r.index, "exercise", e.Name)
}

func (r *Run) enterPhaseLocked(phase Phase) {
	e := r.exercises[r.index]
	r.phase = phase
	r.suppressFloor = -1
	r.lastSpoken = 0

	switch phase {
	case PhasePrep:
		r.clock = NewClock(e.PrepTime)
		if s := r.schedulerLocked(); s != nil {
			s.SchedulePhase(r.clock.Total, phaseCues(PhasePrep, r.clock.Total, r.index, r.window))
		}
	case PhaseWork:
		r.clock = NewClock(e.WorkDuration())
		r.repIndex = 0
		if e.Reps > 0 {
			if s := r.schedulerLocked(); s != nil {
				s.ScheduleReps(e.Reps, e.RepDuration)
			} else {
				r.speaker.CountReps(e.Reps, e.RepDuration)
			}
		}
	case PhaseCool:
		r.clock = NewClock(e.CoolingTime)
		// The rest announcement owns the entry second; the countdown
		// picks up from the next boundary.
		r.lastSpoken = r.clock.Second()
		if s := r.schedulerLocked(); s != nil {
			cues := append(
				[]timedCue{{Second: r.lastSpoken, Spec: guide.Phrase(guide.PhraseRest)}},
				phaseCues(PhaseCool, r.clock.Total, r.index, r.window)...)
			s.SchedulePhase(r.clock.Total, cues)
		} else {
			r.speaker.Phrase(guide.PhraseRest)
		}
	}
	log.Debug("phase entered", "phase", phase, "total", r.clock.Total)

	if r.clock.Done() {
		r.pending = true
	}
}

// schedulerLocked returns the speaker's scheduling side when the
// scheduled strategy is active, or nil to fall back to reactive cues.
func (r *Run) schedulerLocked() phaseScheduler {
	if !r.scheduled {
		return nil
	}
	s, ok := r.speaker.(phaseScheduler)
	if !ok {
		r.scheduled = false
		return nil
	}
	return s
}

func (r *Run) advanceLocked() {
	e := r.exercises[r.index]
	switch r.phase {
	case PhasePrep:
		r.enterPhaseLocked(PhaseWork)
	case PhaseWork:
		if e.CoolingTime > 0 {
			r.enterPhaseLocked(PhaseCool)
		} else {
			r.nextExerciseLocked()
		}
	case PhaseCool:
		r.nextExerciseLocked()
	}
}

func (r *Run) nextExerciseLocked() {
	if r.index+1 >= len(r.exercises) {
		r.finishLocked()
		return
	}
	r.index++
	r.enterAnnounceLocked()
}

func (r *Run) finishLocked() {
	r.phase = PhaseFinished
	r.pending = false
	r.speaker.Phrase(guide.PhraseWorkoutComplete)
	log.Info("workout finished", "exercises", len(r.exercises))
	if r.onFinish != nil {
		go r.onFinish()
	}
}

// Pause freezes the countdown and suspends the playing clip, so a
// pre-rendered phase timeline stops speaking with the clock.
func (r *Run) Pause() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.paused || !r.started {
		return
	}
	r.paused = true
	r.pausedAt = r.now()
	r.speaker.Pause()
}

// Resume re-anchors the wall-clock reference so paused time is never
// counted as elapsed.
func (r *Run) Resume() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.paused {
		return
	}
	now := r.now()
	r.announceDeadline = r.announceDeadline.Add(now.Sub(r.pausedAt))
	r.paused = false
	r.lastTick = now
	r.speaker.Resume()
}

// Next skips to the next exercise's announcement, or finishes the run
// from the last exercise.
func (r *Run) Next() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.started || r.phase == PhaseFinished {
		return
	}
	r.nextExerciseLocked()
}

// Previous moves to the previous exercise's announcement. At the
// first exercise it restarts the same announcement instead of
// underflowing.
func (r *Run) Previous() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.started || r.phase == PhaseFinished {
		return
	}
	if r.index > 0 {
		r.index--
	}
	r.enterAnnounceLocked()
}

// Jump moves directly to an exercise, cancelling in-flight speech and
// restarting at its announcement. The index is clamped.
func (r *Run) Jump(i int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.started || len(r.exercises) == 0 {
		return
	}
	if i < 0 {
		i = 0
	}
	if i >= len(r.exercises) {
		i = len(r.exercises) - 1
	}
	r.speaker.Stop()
	r.index = i
	r.enterAnnounceLocked()
}

// Close stops in-flight speech. The run is not reusable afterwards.
func (r *Run) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.speaker.Stop()
}

// Phase returns the current phase.
func (r *Run) Phase() Phase {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.phase
}

// ExerciseIndex returns the current exercise index.
func (r *Run) ExerciseIndex() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.index
}

// Clock returns a copy of the current countdown.
func (r *Run) Clock() Clock {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.clock
}

// Paused reports whether the run is paused.
func (r *Run) Paused() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.paused
}

// Current returns the exercise the run is on.
func (r *Run) Current() guide.Exercise {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.exercises) == 0 {
		return guide.Exercise{}
	}
	return r.exercises[r.index]
}
