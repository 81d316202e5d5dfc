package engines

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/systomic777/alex-workout/guide"
)

// Tiered chains the acquisition tiers in policy order and walks down
// the chain on error. Unlike a sticky primary/fallback pair, every
// request starts at the top of its chain again; a tier that recovers
// is picked back up without an explicit reset.
type Tiered struct {
	chain      []Engine
	native     *NativeEngine
	fitSafety  float64
	fitMaxRate float64

	mu        sync.Mutex
	lastUsed  string
	failTally map[string]int
}

// NewTiered builds the acquisition chain for the configured policy.
// The on-device tier always terminates the chain, so synthesis only
// exhausts when even local speech fails.
func NewTiered(cfg guide.Config) *Tiered {
	neural := NewNeuralEngine(cfg.Neural, cfg.MaxScriptLen)
	cloud := NewCloudEngine(cfg.Cloud)
	native := NewNativeEngine(cfg.Native)

	var chain []Engine
	switch cfg.ResolvedEngine() {
	case guide.PolicyNeural:
		chain = []Engine{neural, cloud, native}
	case guide.PolicyCloud:
		chain = []Engine{cloud, native}
	default:
		chain = []Engine{native}
	}
	return &Tiered{
		chain:      chain,
		native:     native,
		fitSafety:  cfg.FitSafety,
		fitMaxRate: cfg.FitMaxRate,
		failTally:  make(map[string]int),
	}
}

// NewChain builds a Tiered from an explicit engine chain, with
// default tempo-fit parameters. Callers with custom engines use this
// instead of NewTiered.
func NewChain(chain ...Engine) *Tiered {
	return &Tiered{
		chain:      chain,
		fitSafety:  0.85,
		fitMaxRate: 1.35,
		failTally:  make(map[string]int),
	}
}

// Native returns the on-device engine for direct live speech.
func (t *Tiered) Native() *NativeEngine { return t.native }

// Name returns the identifier of the engine that served the most
// recent successful request, or the head of the chain before any.
func (t *Tiered) Name() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.lastUsed != "" {
		return t.lastUsed
	}
	return t.chain[0].Name()
}

// Available reports whether any tier in the chain is usable.
func (t *Tiered) Available() bool {
	for _, e := range t.chain {
		if e.Available() {
			return true
		}
	}
	return false
}

// Synthesize walks the chain until a tier produces audio. Unavailable
// tiers are skipped silently; failing tiers are logged and counted.
// When every tier has failed the joined errors are wrapped in
// ErrSynthesisExhausted.
func (t *Tiered) Synthesize(ctx context.Context, text string) (guide.Audio, error) {
	var failures []error
	for _, e := range t.chain {
		if !e.Available() {
			continue
		}
		audio, err := e.Synthesize(ctx, text)
		if err == nil {
			t.mu.Lock()
			t.lastUsed = e.Name()
			t.mu.Unlock()
			return audio, nil
		}
		if ctx.Err() != nil {
			return guide.Audio{}, err
		}
		t.mu.Lock()
		t.failTally[e.Name()]++
		n := t.failTally[e.Name()]
		t.mu.Unlock()
		log.Warn("synthesis tier failed, trying next", "tier", e.Name(), "failures", n, "err", err)
		failures = append(failures, err)
	}
	if len(failures) == 0 {
		return guide.Audio{}, guide.ErrTierUnavailable
	}
	return guide.Audio{}, fmt.Errorf("%w: %w", guide.ErrSynthesisExhausted, errors.Join(failures...))
}

// SynthesizeFit synthesizes text and returns the playback rate that
// fits the clip into the target duration. The rate is computed here,
// where the clip length is first known, but applied by the playback
// layer. Compressed payloads whose length is unknown before decoding
// get rate 1.0.
func (t *Tiered) SynthesizeFit(ctx context.Context, text string, target time.Duration) (guide.Audio, float64, error) {
	audio, err := t.Synthesize(ctx, text)
	if err != nil {
		return guide.Audio{}, 0, err
	}
	clip := guide.AudioDuration(audio)
	if clip == 0 {
		return audio, 1.0, nil
	}
	return audio, guide.FitRate(clip, target, t.fitSafety, t.fitMaxRate), nil
}
