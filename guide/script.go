package guide

import (
	"fmt"
	"strings"
)

// phraseScripts maps named phrase identifiers to their literal spoken
// text. The table is shared by cache population and runtime playback;
// both sides must derive identical script text for a fingerprint to be
// reusable.
var phraseScripts = map[string]string{
	PhraseGo:              "Go!",
	PhraseRest:            "Rest",
	PhraseGetReady:        "Get ready",
	PhraseWorkoutComplete: "Workout complete. Great job!",
	"mot_1":               "You've got this!",
	"mot_2":               "Keep pushing!",
	"mot_3":               "Stay strong!",
	"mot_4":               "Almost there!",
	"mot_5":               "Don't give up!",
	"mot_6":               "Push through!",
	"mot_7":               "You're doing great!",
	"mot_8":               "Stay focused!",
	"mot_9":               "Keep it up!",
	"mot_10":              "Finish strong!",
}

// abbreviations expands common fitness shorthand so the synthesized
// name is intelligible. Matching is case-insensitive per word.
var abbreviations = map[string]string{
	"db":    "dumbbell",
	"kb":    "kettlebell",
	"rdl":   "Romanian deadlift",
	"amrap": "as many reps as possible",
}

// markupStripper removes bracket and markup punctuation that exercise
// names picked up from imports or notes.
var markupStripper = strings.NewReplacer(
	"[", " ", "]", " ",
	"(", " ", ")", " ",
	"{", " ", "}", " ",
	"*", " ", "_", " ",
	"#", " ", "`", " ", "~", " ",
)

// NormalizeName prepares an exercise name for speech: markup stripped,
// whitespace collapsed, known abbreviations expanded. No words are
// added.
func NormalizeName(name string) string {
	words := strings.Fields(markupStripper.Replace(name))
	for i, w := range words {
		if full, ok := abbreviations[strings.ToLower(w)]; ok {
			words[i] = full
		}
	}
	return strings.Join(words, " ")
}

// Script derives the literal text to synthesize for a cue. It is a
// pure function of the cue and the exercise sequence; identical inputs
// always yield identical text.
func Script(spec CueSpec, exercises []Exercise) (string, error) {
	switch spec.Kind {
	case KindNumber:
		return spec.ID, nil
	case KindPhrase:
		text, ok := phraseScripts[spec.ID]
		if !ok {
			return "", fmt.Errorf("%w: phrase %q", ErrUnknownCue, spec.ID)
		}
		return text, nil
	case KindAnnounce:
		for _, e := range exercises {
			if e.ID == spec.ID {
				text := NormalizeName(e.Name)
				if text == "" {
					return "", ErrEmptyScript
				}
				return text, nil
			}
		}
		return "", fmt.Errorf("%w: exercise %q not in sequence", ErrUnknownCue, spec.ID)
	default:
		return "", fmt.Errorf("%w: kind %q", ErrUnknownCue, spec.Kind)
	}
}

// TruncateScript enforces the synthesis text limit, cutting on a rune
// boundary and appending an ellipsis.
func TruncateScript(text string, limit int) string {
	if limit <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "…"
}

// ExpectedCues computes the full set of cues the cache should hold for
// an exercise sequence: every countdown number, the fixed named
// phrases, one announcement per exercise, and one motivational line
// per fourth exercise (bulk-selected by a stable hash). It never
// triggers generation. Duplicate fingerprints are reported once.
func ExpectedCues(exercises []Exercise) []CueSpec {
	specs := make([]CueSpec, 0, MaxNumberCue+4+len(exercises)+len(exercises)/4+1)
	for k := 1; k <= MaxNumberCue; k++ {
		specs = append(specs, Number(k))
	}
	specs = append(specs, Phrase(PhraseGo), Phrase(PhraseRest), Phrase(PhraseGetReady), Phrase(PhraseWorkoutComplete))
	seen := map[string]bool{}
	for i, e := range exercises {
		specs = append(specs, Announce(e.ID))
		if i%4 == 0 {
			mot := BulkMotivation(e)
			if !seen[mot.ID] {
				seen[mot.ID] = true
				specs = append(specs, mot)
			}
		}
	}
	return specs
}
