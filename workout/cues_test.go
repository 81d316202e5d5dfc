package workout

import (
	"testing"
	"time"

	"github.com/systomic777/alex-workout/guide"
)

func TestBoundaryCuePriority(t *testing.T) {
	tests := []struct {
		name      string
		phase     Phase
		total     time.Duration
		second    int
		wantToken string
		wantClass cueClass
	}{
		{"get ready at initial prep second", PhasePrep, 10 * time.Second, 10, "get_ready", cueGetReady},
		{"no get ready for short prep", PhasePrep, 2 * time.Second, 2, "n:2", cueNumber},
		{"go at prep second one", PhasePrep, 10 * time.Second, 1, "go", cueGo},
		{"motivational at prep eight", PhasePrep, 10 * time.Second, 8, "mot_9", cueMotivation},
		{"no motivational for short prep", PhasePrep, 7 * time.Second, 7, "get_ready", cueGetReady},
		{"motivational at cool ten", PhaseCool, 15 * time.Second, 10, "mot_1", cueMotivation},
		{"no motivational for short cool", PhaseCool, 9 * time.Second, 8, "n:8", cueNumber},
		{"plain number otherwise", PhaseCool, 15 * time.Second, 12, "n:12", cueNumber},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec, class := boundaryCue(tt.phase, tt.total, tt.second, 0)
			if got := spec.Token(); got != tt.wantToken {
				t.Errorf("token = %q, want %q", got, tt.wantToken)
			}
			if class != tt.wantClass {
				t.Errorf("class = %d, want %d", class, tt.wantClass)
			}
		})
	}
}

func TestPhaseCuesPrepSchedule(t *testing.T) {
	window := 2400 * time.Millisecond
	cues := phaseCues(PhasePrep, 10*time.Second, 0, window)

	var tokens []string
	for _, c := range cues {
		tokens = append(tokens, c.Spec.Token())
	}
	want := []string{"get_ready", "n:9", "mot_9", "n:4", "n:3", "n:2", "go"}
	if len(tokens) != len(want) {
		t.Fatalf("schedule = %v, want %v", tokens, want)
	}
	for i := range want {
		if tokens[i] != want[i] {
			t.Fatalf("schedule = %v, want %v", tokens, want)
		}
	}

	// Offsets descend one second apart from the spoken seconds.
	for _, c := range cues {
		wantOffset := 10*time.Second - time.Duration(c.Second)*time.Second
		if c.Offset != wantOffset {
			t.Errorf("second %d at offset %v, want %v", c.Second, c.Offset, wantOffset)
		}
	}
}

func TestPhaseCuesCoolSkipsEntrySecond(t *testing.T) {
	cues := phaseCues(PhaseCool, 15*time.Second, 0, 2400*time.Millisecond)
	for _, c := range cues {
		if c.Second == 15 {
			t.Fatalf("entry second scheduled over the rest announcement: %+v", cues)
		}
	}
	var motSeen bool
	for _, c := range cues {
		if c.Spec.Token() == "mot_1" {
			motSeen = true
		}
		if c.Second == 9 || c.Second == 8 || c.Second == 7 {
			t.Errorf("suppressed second %d scheduled", c.Second)
		}
	}
	if !motSeen {
		t.Error("cool motivational missing from schedule")
	}
}

func TestPhaseCuesOnlyCountdownPhases(t *testing.T) {
	if got := phaseCues(PhaseWork, 10*time.Second, 0, 0); got != nil {
		t.Errorf("work phase produced a countdown schedule: %v", got)
	}
	if got := phaseCues(PhaseAnnounce, 10*time.Second, 0, 0); got != nil {
		t.Errorf("announce phase produced a countdown schedule: %v", got)
	}
}

func TestRotatingMotivationVariesWithExercise(t *testing.T) {
	a, _ := boundaryCue(PhasePrep, 10*time.Second, 8, 0)
	b, _ := boundaryCue(PhasePrep, 10*time.Second, 8, 1)
	if a.ID == b.ID {
		t.Errorf("motivational line did not rotate: %q vs %q", a.ID, b.ID)
	}
	if a.Token() != guide.Motivation(9).Token() {
		t.Errorf("seed changed: %+v", a)
	}
}
