package workout

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/systomic777/alex-workout/guide"
)

// fakeClock is a manually advanced wall clock.
type fakeClock struct {
	t time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 3, 1, 7, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

// recordingSpeaker captures every cue in order. Announcements finish
// immediately.
type recordingSpeaker struct {
	mu     sync.Mutex
	events []string
}

func (s *recordingSpeaker) record(e string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
}

func (s *recordingSpeaker) Announce(exerciseID string) <-chan struct{} {
	s.record("announce:" + exerciseID)
	ch := make(chan struct{})
	close(ch)
	return ch
}

func (s *recordingSpeaker) Number(second int) { s.record(fmt.Sprintf("n:%d", second)) }

func (s *recordingSpeaker) Phrase(id string) { s.record(id) }

func (s *recordingSpeaker) CountReps(remaining int, within time.Duration) {
	s.record(fmt.Sprintf("reps:%d", remaining))
}

func (s *recordingSpeaker) Pause() { s.record("pause") }

func (s *recordingSpeaker) Resume() { s.record("resume") }

func (s *recordingSpeaker) Stop() { s.record("stop") }

func (s *recordingSpeaker) Events() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.events))
	copy(out, s.events)
	return out
}

func (s *recordingSpeaker) has(e string) bool {
	for _, got := range s.Events() {
		if got == e {
			return true
		}
	}
	return false
}

// drive ticks the run at a steady cadence for the given span.
func drive(t *testing.T, r *Run, clk *fakeClock, span time.Duration) {
	t.Helper()
	const step = 16 * time.Millisecond
	for elapsed := time.Duration(0); elapsed < span; elapsed += step {
		clk.advance(step)
		r.Tick()
		c := r.Clock()
		if c.Remaining < 0 || c.Remaining > c.Total {
			t.Fatalf("clock invariant broken: remaining %v, total %v", c.Remaining, c.Total)
		}
	}
}

func TestRunSpokenSequence(t *testing.T) {
	// Exercise with cooling 0 transitions straight into the next
	// announcement after the rep count-out.
	exercises := []guide.Exercise{
		{ID: "ex1", Name: "Squats", Reps: 3, RepDuration: time.Second, PrepTime: 3 * time.Second},
		{ID: "ex2", Name: "Lunges", Reps: 2, RepDuration: time.Second, PrepTime: 3 * time.Second},
	}
	clk := newFakeClock()
	spk := &recordingSpeaker{}
	r := NewRun(exercises, spk, RunOptions{Now: clk.now})
	r.Start()
	drive(t, r, clk, 8*time.Second)

	want := []string{
		"announce:ex1",
		guide.PhraseGetReady, // initial prep second, prep > 2s
		"n:2",
		guide.PhraseGo, // prep second 1
		"reps:3",       // work entry
		"reps:2",
		"reps:1",
		"announce:ex2", // cooling 0: no cool phase
	}
	got := spk.Events()
	if len(got) < len(want) {
		t.Fatalf("events = %v, want prefix %v", got, want)
	}
	for i, w := range want {
		if got[i] != w {
			t.Fatalf("event %d = %q, want %q (all: %v)", i, got[i], w, got)
		}
	}
}

func TestPrepMotivationalSuppression(t *testing.T) {
	exercises := []guide.Exercise{
		{ID: "ex1", Name: "Plank", Reps: 1, RepDuration: time.Second, PrepTime: 10 * time.Second},
	}
	clk := newFakeClock()
	spk := &recordingSpeaker{}
	r := NewRun(exercises, spk, RunOptions{Now: clk.now})
	r.Start()
	drive(t, r, clk, 11*time.Second)

	// Second 8 plays the rotating line; 7, 6, 5 are suppressed; 4
	// speaks again and 3..1 are critical.
	if !spk.has("mot_9") {
		t.Errorf("motivational line missing: %v", spk.Events())
	}
	for _, suppressed := range []string{"n:7", "n:6", "n:5"} {
		if spk.has(suppressed) {
			t.Errorf("%s spoken inside suppression window: %v", suppressed, spk.Events())
		}
	}
	for _, spoken := range []string{"n:9", "n:4", "n:3", "n:2"} {
		if !spk.has(spoken) {
			t.Errorf("%s missing: %v", spoken, spk.Events())
		}
	}
	if !spk.has(guide.PhraseGo) {
		t.Errorf("go cue missing: %v", spk.Events())
	}
}

func TestStallSpeaksOnlyFinalSecond(t *testing.T) {
	exercises := []guide.Exercise{
		{ID: "ex1", Name: "Plank", Reps: 1, RepDuration: time.Second, PrepTime: 10 * time.Second},
	}
	clk := newFakeClock()
	spk := &recordingSpeaker{}
	r := NewRun(exercises, spk, RunOptions{Now: clk.now})
	r.Start()

	// Two normal ticks get us into prep with second 10 spoken.
	clk.advance(16 * time.Millisecond)
	r.Tick()
	clk.advance(16 * time.Millisecond)
	r.Tick()
	if !spk.has(guide.PhraseGetReady) {
		t.Fatalf("initial prep second not spoken: %v", spk.Events())
	}

	// A 5s stall crosses seconds 9..5; only the resulting second 5 is
	// spoken, no backlog and no late motivational line.
	clk.advance(5 * time.Second)
	r.Tick()
	if !spk.has("n:5") {
		t.Errorf("post-stall second missing: %v", spk.Events())
	}
	for _, skipped := range []string{"n:9", "n:8", "mot_9", "n:7", "n:6"} {
		if spk.has(skipped) {
			t.Errorf("stalled boundary %s replayed: %v", skipped, spk.Events())
		}
	}
}

func TestPauseFreezesAndResumeReanchors(t *testing.T) {
	exercises := []guide.Exercise{
		{ID: "ex1", Name: "Plank", Reps: 1, RepDuration: time.Second, PrepTime: 10 * time.Second},
	}
	clk := newFakeClock()
	spk := &recordingSpeaker{}
	r := NewRun(exercises, spk, RunOptions{Now: clk.now})
	r.Start()
	drive(t, r, clk, 2*time.Second)

	before := r.Clock().Remaining
	r.Pause()
	for i := 0; i < 100; i++ {
		clk.advance(time.Second)
		r.Tick()
	}
	if got := r.Clock().Remaining; got != before {
		t.Fatalf("remaining changed while paused: %v -> %v", before, got)
	}

	r.Resume()
	clk.advance(16 * time.Millisecond)
	r.Tick()
	after := r.Clock().Remaining
	if diff := before - after; diff < 0 || diff > 100*time.Millisecond {
		t.Errorf("resume counted paused time as elapsed: %v -> %v", before, after)
	}

	// Playback freezes and thaws with the clock.
	if !spk.has("pause") || !spk.has("resume") {
		t.Errorf("pause/resume not forwarded to the speaker: %v", spk.Events())
	}
}

func TestCoolPhaseSpeaksRest(t *testing.T) {
	exercises := []guide.Exercise{
		{ID: "ex1", Name: "Plank", Reps: 1, RepDuration: time.Second, PrepTime: time.Second, CoolingTime: 5 * time.Second},
		{ID: "ex2", Name: "Squats", Reps: 1, RepDuration: time.Second, PrepTime: time.Second},
	}
	clk := newFakeClock()
	spk := &recordingSpeaker{}
	r := NewRun(exercises, spk, RunOptions{Now: clk.now})
	r.Start()
	drive(t, r, clk, 9*time.Second)

	if !spk.has(guide.PhraseRest) {
		t.Fatalf("rest cue missing: %v", spk.Events())
	}
	// The rest announcement owns the entry second.
	if spk.has("n:5") {
		t.Errorf("entry second spoken over rest: %v", spk.Events())
	}
	if !spk.has("n:4") {
		t.Errorf("cool countdown missing: %v", spk.Events())
	}
	if r.ExerciseIndex() != 1 {
		t.Errorf("run did not advance past cool: index %d", r.ExerciseIndex())
	}
}

func TestCoolMotivationalAtTen(t *testing.T) {
	exercises := []guide.Exercise{
		{ID: "ex1", Name: "Plank", Reps: 1, RepDuration: time.Second, PrepTime: time.Second, CoolingTime: 15 * time.Second},
	}
	clk := newFakeClock()
	spk := &recordingSpeaker{}
	r := NewRun(exercises, spk, RunOptions{Now: clk.now})
	r.Start()
	drive(t, r, clk, 19*time.Second)

	if !spk.has("mot_1") {
		t.Errorf("cool motivational missing: %v", spk.Events())
	}
	for _, suppressed := range []string{"n:9", "n:8", "n:7"} {
		if spk.has(suppressed) {
			t.Errorf("%s spoken inside suppression window: %v", suppressed, spk.Events())
		}
	}
	if !spk.has("n:6") {
		t.Errorf("n:6 missing after suppression window: %v", spk.Events())
	}
}

func TestPreviousAtFirstRestartsAnnounce(t *testing.T) {
	exercises := []guide.Exercise{
		{ID: "ex1", Name: "Plank", Reps: 1, RepDuration: time.Second, PrepTime: 4 * time.Second},
	}
	clk := newFakeClock()
	spk := &recordingSpeaker{}
	r := NewRun(exercises, spk, RunOptions{Now: clk.now})
	r.Start()
	drive(t, r, clk, 2*time.Second)

	r.Previous()
	if r.ExerciseIndex() != 0 {
		t.Errorf("index underflowed to %d", r.ExerciseIndex())
	}
	if r.Phase() != PhaseAnnounce {
		t.Errorf("phase = %v, want announce restart", r.Phase())
	}
	var announces int
	for _, e := range spk.Events() {
		if strings.HasPrefix(e, "announce:") {
			announces++
		}
	}
	if announces != 2 {
		t.Errorf("announcements = %d, want restart of the same exercise", announces)
	}
}

func TestJumpCancelsSpeechAndRestartsAnnounce(t *testing.T) {
	exercises := []guide.Exercise{
		{ID: "ex1", Name: "Plank", Reps: 1, RepDuration: time.Second, PrepTime: 4 * time.Second},
		{ID: "ex2", Name: "Squats", Reps: 1, RepDuration: time.Second, PrepTime: 4 * time.Second},
		{ID: "ex3", Name: "Lunges", Reps: 1, RepDuration: time.Second, PrepTime: 4 * time.Second},
	}
	clk := newFakeClock()
	spk := &recordingSpeaker{}
	r := NewRun(exercises, spk, RunOptions{Now: clk.now})
	r.Start()
	drive(t, r, clk, 2*time.Second)

	r.Jump(2)
	events := spk.Events()
	if events[len(events)-1] != "announce:ex3" || events[len(events)-2] != "stop" {
		t.Fatalf("jump did not stop speech and re-announce: %v", events)
	}
	if r.ExerciseIndex() != 2 || r.Phase() != PhaseAnnounce {
		t.Errorf("jump landed at index %d phase %v", r.ExerciseIndex(), r.Phase())
	}

	// Out-of-range jumps clamp.
	r.Jump(99)
	if r.ExerciseIndex() != 2 {
		t.Errorf("jump past end landed at %d", r.ExerciseIndex())
	}
}

func TestFinishSpeaksCompletionAndNotifies(t *testing.T) {
	exercises := []guide.Exercise{
		{ID: "ex1", Name: "Plank", Reps: 1, RepDuration: time.Second, PrepTime: time.Second},
	}
	clk := newFakeClock()
	spk := &recordingSpeaker{}
	finished := make(chan struct{})
	r := NewRun(exercises, spk, RunOptions{Now: clk.now, OnFinish: func() { close(finished) }})
	r.Start()
	drive(t, r, clk, 4*time.Second)

	if r.Phase() != PhaseFinished {
		t.Fatalf("phase = %v, want finished", r.Phase())
	}
	if !spk.has(guide.PhraseWorkoutComplete) {
		t.Errorf("completion cue missing: %v", spk.Events())
	}
	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Error("finish callback never invoked")
	}

	// Ticks after the end are inert.
	drive(t, r, clk, time.Second)
	if r.Phase() != PhaseFinished {
		t.Error("run left the terminal phase")
	}
}

func TestWorkRepCallouts(t *testing.T) {
	exercises := []guide.Exercise{
		{ID: "ex1", Name: "Push ups", Reps: 5, RepDuration: 2 * time.Second, PrepTime: time.Second},
	}
	clk := newFakeClock()
	spk := &recordingSpeaker{}
	r := NewRun(exercises, spk, RunOptions{Now: clk.now})
	r.Start()
	drive(t, r, clk, 13*time.Second)

	var reps []string
	for _, e := range spk.Events() {
		if strings.HasPrefix(e, "reps:") {
			reps = append(reps, e)
		}
	}
	want := []string{"reps:5", "reps:4", "reps:3", "reps:2", "reps:1"}
	if len(reps) != len(want) {
		t.Fatalf("rep call-outs = %v, want %v", reps, want)
	}
	for i := range want {
		if reps[i] != want[i] {
			t.Fatalf("rep call-outs = %v, want %v", reps, want)
		}
	}
}
