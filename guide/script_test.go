package guide

import (
	"errors"
	"testing"
)

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Push ups", "Push ups"},
		{"markup stripped", "Push ups [warmup] (slow)", "Push ups warmup slow"},
		{"whitespace collapsed", "  Push   ups  ", "Push ups"},
		{"db expanded", "DB rows", "dumbbell rows"},
		{"kb expanded lowercase", "kb swings", "kettlebell swings"},
		{"rdl expanded", "Single-leg RDL", "Single-leg Romanian deadlift"},
		{"amrap expanded", "Burpees AMRAP", "Burpees as many reps as possible"},
		{"empty", "***", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeName(tt.in); got != tt.want {
				t.Errorf("NormalizeName(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestScript(t *testing.T) {
	exercises := []Exercise{
		{ID: "ex1", Name: "KB swings"},
		{ID: "ex2", Name: "Push ups"},
	}
	tests := []struct {
		name    string
		spec    CueSpec
		want    string
		wantErr error
	}{
		{"number", Number(42), "42", nil},
		{"go", Phrase(PhraseGo), "Go!", nil},
		{"motivation", Motivation(3), "Stay strong!", nil},
		{"announce", Announce("ex1"), "kettlebell swings", nil},
		{"unknown phrase", Phrase("mot_99"), "", ErrUnknownCue},
		{"unknown exercise", Announce("nope"), "", ErrUnknownCue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Script(tt.spec, exercises)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Script() error = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Script() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestScriptEmptyAnnounceName(t *testing.T) {
	_, err := Script(Announce("ex1"), []Exercise{{ID: "ex1", Name: "[ ]"}})
	if !errors.Is(err, ErrEmptyScript) {
		t.Fatalf("Script() error = %v, want %v", err, ErrEmptyScript)
	}
}

func TestTruncateScript(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		limit int
		want  string
	}{
		{"under limit", "short", 10, "short"},
		{"at limit", "exact", 5, "exact"},
		{"over limit", "overflowing", 4, "over…"},
		{"no limit", "anything", 0, "anything"},
		{"rune boundary", "héllo wörld", 6, "héllo …"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TruncateScript(tt.text, tt.limit); got != tt.want {
				t.Errorf("TruncateScript(%q, %d) = %q, want %q", tt.text, tt.limit, got, tt.want)
			}
		})
	}
}

func TestExpectedCues(t *testing.T) {
	exercises := make([]Exercise, 5)
	for i := range exercises {
		exercises[i] = Exercise{ID: string(rune('a' + i)), Name: "Exercise"}
	}
	specs := ExpectedCues(exercises)

	// 180 numbers, 4 named phrases, 5 announcements and up to 2
	// motivational lines for exercises 0 and 4.
	counts := map[Kind]int{}
	motivations := 0
	for _, s := range specs {
		counts[s.Kind]++
		if s.Kind == KindPhrase && len(s.ID) > 4 && s.ID[:4] == "mot_" {
			motivations++
		}
	}
	if counts[KindNumber] != MaxNumberCue {
		t.Errorf("number cues = %d, want %d", counts[KindNumber], MaxNumberCue)
	}
	if counts[KindAnnounce] != 5 {
		t.Errorf("announce cues = %d, want 5", counts[KindAnnounce])
	}
	if got := counts[KindPhrase] - motivations; got != 4 {
		t.Errorf("named phrase cues = %d, want 4", got)
	}
	if motivations < 1 || motivations > 2 {
		t.Errorf("motivational cues = %d, want 1 or 2", motivations)
	}
}
