package guide

import (
	"testing"
	"time"
)

func TestFitRate(t *testing.T) {
	tests := []struct {
		name   string
		clip   time.Duration
		target time.Duration
		want   float64
	}{
		{"fits within budget", 1500 * time.Millisecond, 2 * time.Second, 1.0},
		{"exactly at budget", 1700 * time.Millisecond, 2 * time.Second, 1.0},
		{"needs speedup", 2 * time.Second, 2 * time.Second, float64(2*time.Second) / float64(1700*time.Millisecond)},
		{"clamped to max", 10 * time.Second, 2 * time.Second, 1.35},
		{"zero clip", 0, 2 * time.Second, 1.0},
		{"zero target", time.Second, 0, 1.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FitRate(tt.clip, tt.target, 0.85, 1.35)
			if diff := got - tt.want; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("FitRate(%v, %v) = %v, want %v", tt.clip, tt.target, got, tt.want)
			}
		})
	}
}

func TestFitRateNeverSlowsDown(t *testing.T) {
	if got := FitRate(100*time.Millisecond, time.Minute, 0.85, 1.35); got != 1.0 {
		t.Errorf("FitRate for a tiny clip = %v, want 1.0", got)
	}
}

func TestFitRateSanitizesBounds(t *testing.T) {
	// Out-of-range safety and max fall back to usable values.
	if got := FitRate(10*time.Second, time.Second, -1, 0); got != 1 {
		t.Errorf("FitRate with broken bounds = %v, want clamp at 1", got)
	}
}
