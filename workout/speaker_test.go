package workout

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/systomic777/alex-workout/guide"
	"github.com/systomic777/alex-workout/guide/audio"
	"github.com/systomic777/alex-workout/guide/cache"
	"github.com/systomic777/alex-workout/guide/engines"
)

// gateEngine blocks Synthesize until released, so tests can cancel
// speech while a schedule is still resolving cues.
type gateEngine struct {
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func newGateEngine() *gateEngine {
	return &gateEngine{entered: make(chan struct{}), release: make(chan struct{})}
}

func (g *gateEngine) Name() string    { return "gate" }
func (g *gateEngine) Available() bool { return true }

func (g *gateEngine) Synthesize(ctx context.Context, text string) (guide.Audio, error) {
	g.once.Do(func() { close(g.entered) })
	select {
	case <-g.release:
	case <-ctx.Done():
		return guide.Audio{}, ctx.Err()
	}
	samples := guide.SampleRate / 10
	return guide.Audio{
		MIME: guide.MIMEPCM,
		Data: make([]byte, samples*guide.BytesPerSample),
		Rate: guide.SampleRate,
	}, nil
}

func newTestSpeaker(t *testing.T, engine engines.Engine, exercises []guide.Exercise) (*GuideSpeaker, *audio.MockContext) {
	t.Helper()
	store, err := cache.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory() error = %v", err)
	}
	c := cache.New(store, engine)
	t.Cleanup(func() { c.Close() })

	devices := &audio.MockContext{Hold: true}
	player := audio.NewPlayer(devices, 0)
	t.Cleanup(func() {
		player.Close()
		devices.Release()
	})
	return NewGuideSpeaker(c, player, nil, exercises, guide.DefaultConfig()), devices
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestStopCancelsPendingSchedule(t *testing.T) {
	exercises := []guide.Exercise{{ID: "ex1", Name: "Plank"}}
	engine := newGateEngine()
	sp, devices := newTestSpeaker(t, engine, exercises)

	sp.SchedulePhase(3*time.Second, []timedCue{
		{Second: 3, Offset: 0, Spec: guide.Number(3)},
		{Second: 2, Offset: time.Second, Spec: guide.Number(2)},
	})
	select {
	case <-engine.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("schedule never reached the engine")
	}

	// The schedule is still resolving when speech is cancelled; its
	// pre-rendered track must never reach the device afterwards.
	sp.Stop()
	close(engine.release)
	time.Sleep(100 * time.Millisecond)
	if n := len(devices.Players()); n != 0 {
		t.Fatalf("cancelled schedule started %d device players", n)
	}
}

func TestScheduleStillPlaysWithoutStop(t *testing.T) {
	exercises := []guide.Exercise{{ID: "ex1", Name: "Plank"}}
	sp, devices := newTestSpeaker(t, &engines.MockEngine{}, exercises)

	sp.SchedulePhase(3*time.Second, []timedCue{
		{Second: 3, Offset: 0, Spec: guide.Number(3)},
	})
	waitFor(t, "timeline playback", func() bool { return len(devices.Players()) == 1 })
}

func TestScheduledRunPauseSuspendsPlayback(t *testing.T) {
	exercises := []guide.Exercise{
		{ID: "ex1", Name: "Plank", Reps: 1, RepDuration: time.Second, PrepTime: 3 * time.Second},
	}
	sp, devices := newTestSpeaker(t, &engines.MockEngine{ClipDuration: 50 * time.Millisecond}, exercises)

	clk := newFakeClock()
	r := NewRun(exercises, sp, RunOptions{Now: clk.now, Scheduled: true})
	r.Start()
	waitFor(t, "announcement", func() bool { return len(devices.Players()) == 1 })

	// Step past the announce gate into prep; the phase timeline is
	// rendered asynchronously and replaces the announcement clip.
	clk.advance(4 * time.Second)
	r.Tick()
	waitFor(t, "phase timeline", func() bool { return len(devices.Players()) >= 2 })
	players := devices.Players()
	timeline := players[len(players)-1]

	r.Pause()
	if !timeline.Paused() {
		t.Fatal("phase timeline kept playing while the run was paused")
	}

	r.Resume()
	if timeline.Paused() || !timeline.IsPlaying() {
		t.Fatal("phase timeline did not resume with the run")
	}
}
