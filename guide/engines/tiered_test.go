package engines

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/systomic777/alex-workout/guide"
)

func TestTieredFallsThroughOnError(t *testing.T) {
	broken := &MockEngine{EngineName: "broken", Err: errors.New("quota exceeded")}
	working := &MockEngine{EngineName: "working"}
	chain := NewChain(broken, working)

	audio, err := chain.Synthesize(context.Background(), "Go!")
	if err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}
	if len(audio.Data) == 0 {
		t.Fatal("Synthesize() returned empty audio")
	}
	if got := chain.Name(); got != "working" {
		t.Errorf("Name() = %q, want %q", got, "working")
	}
	if calls := broken.Calls(); len(calls) != 1 {
		t.Errorf("broken engine calls = %d, want 1", len(calls))
	}
}

func TestTieredSkipsUnavailable(t *testing.T) {
	offline := &MockEngine{EngineName: "offline", Unavailable: true}
	working := &MockEngine{EngineName: "working"}
	chain := NewChain(offline, working)

	if _, err := chain.Synthesize(context.Background(), "Rest"); err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}
	if calls := offline.Calls(); len(calls) != 0 {
		t.Errorf("unavailable engine was called %d times", len(calls))
	}
}

func TestTieredExhausted(t *testing.T) {
	a := &MockEngine{EngineName: "a", Err: errors.New("a failed")}
	b := &MockEngine{EngineName: "b", Err: errors.New("b failed")}
	chain := NewChain(a, b)

	_, err := chain.Synthesize(context.Background(), "1")
	if !errors.Is(err, guide.ErrSynthesisExhausted) {
		t.Fatalf("Synthesize() error = %v, want ErrSynthesisExhausted", err)
	}
}

func TestTieredAllUnavailable(t *testing.T) {
	chain := NewChain(&MockEngine{Unavailable: true})
	if chain.Available() {
		t.Error("Available() = true, want false")
	}
	_, err := chain.Synthesize(context.Background(), "1")
	if !errors.Is(err, guide.ErrTierUnavailable) {
		t.Fatalf("Synthesize() error = %v, want ErrTierUnavailable", err)
	}
}

func TestTieredCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	chain := NewChain(&MockEngine{}, &MockEngine{})
	if _, err := chain.Synthesize(ctx, "1"); !errors.Is(err, context.Canceled) {
		t.Fatalf("Synthesize() error = %v, want context.Canceled", err)
	}
}

func TestSynthesizeFit(t *testing.T) {
	tests := []struct {
		name     string
		clip     time.Duration
		target   time.Duration
		wantRate float64
	}{
		{"fits without speedup", 500 * time.Millisecond, 10 * time.Second, 1.0},
		{"moderate speedup", 1 * time.Second, 1 * time.Second, 1.0 / 0.85},
		{"clamped to max", 5 * time.Second, 1 * time.Second, 1.35},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chain := NewChain(&MockEngine{ClipDuration: tt.clip})
			_, rate, err := chain.SynthesizeFit(context.Background(), "Bench press", tt.target)
			if err != nil {
				t.Fatalf("SynthesizeFit() error = %v", err)
			}
			if diff := rate - tt.wantRate; diff > 0.001 || diff < -0.001 {
				t.Errorf("rate = %.4f, want %.4f", rate, tt.wantRate)
			}
		})
	}
}
