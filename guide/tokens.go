package guide

import (
	"fmt"
	"hash/fnv"
	"sort"
	"strconv"
	"strings"
)

// Kind classifies a cue for fingerprinting.
type Kind string

const (
	// KindNumber is a spoken countdown or rep number.
	KindNumber Kind = "number"
	// KindPhrase is a fixed named phrase ("go", "rest", "mot_3", ...).
	KindPhrase Kind = "phrase"
	// KindAnnounce is a per-exercise name announcement.
	KindAnnounce Kind = "announce"
)

// MaxNumberCue is the highest countdown number that is pre-generated
// and cached. Longer phases fall back to on-device rendering.
const MaxNumberCue = 180

// MotivationCount is the size of the fixed motivational line pool.
const MotivationCount = 10

// Named phrase identifiers.
const (
	PhraseGo              = "go"
	PhraseRest            = "rest"
	PhraseGetReady        = "get_ready"
	PhraseWorkoutComplete = "workout_complete"
)

// CueSpec identifies a single spoken cue. Together with the exercise
// sequence it determines both the script text and the cache
// fingerprint.
type CueSpec struct {
	Kind Kind
	ID   string
	// Params carries extra fingerprint-relevant parameters such as a
	// tempo-fit target. Nil for plain cues.
	Params map[string]string
}

// Number returns the cue for the spoken number k.
func Number(k int) CueSpec {
	return CueSpec{Kind: KindNumber, ID: strconv.Itoa(k)}
}

// Phrase returns the cue for a named phrase.
func Phrase(name string) CueSpec {
	return CueSpec{Kind: KindPhrase, ID: name}
}

// Motivation returns the cue for motivational line i (1-based).
func Motivation(i int) CueSpec {
	return Phrase(fmt.Sprintf("mot_%d", i))
}

// Announce returns the cue announcing the exercise with the given id.
func Announce(exerciseID string) CueSpec {
	return CueSpec{Kind: KindAnnounce, ID: exerciseID}
}

// Token renders the spec as its short symbolic key.
func (c CueSpec) Token() string {
	switch c.Kind {
	case KindNumber:
		return "n:" + c.ID
	case KindAnnounce:
		return "ex:" + c.ID
	default:
		return c.ID
	}
}

// ParseToken parses a symbolic cue key back into a CueSpec.
func ParseToken(token string) (CueSpec, error) {
	switch {
	case strings.HasPrefix(token, "n:"):
		k, err := strconv.Atoi(token[2:])
		if err != nil || k < 0 {
			return CueSpec{}, fmt.Errorf("%w: %q", ErrUnknownCue, token)
		}
		return Number(k), nil
	case strings.HasPrefix(token, "ex:"):
		if token == "ex:" {
			return CueSpec{}, fmt.Errorf("%w: %q", ErrUnknownCue, token)
		}
		return Announce(token[3:]), nil
	default:
		if _, ok := phraseScripts[token]; !ok {
			return CueSpec{}, fmt.Errorf("%w: %q", ErrUnknownCue, token)
		}
		return Phrase(token), nil
	}
}

// RotatingMotivation picks the motivational line for a countdown
// moment. The seed deliberately repeats across exercises; it is
// pseudo-randomness, not a uniqueness guarantee.
func RotatingMotivation(exerciseIndex, second int) CueSpec {
	return Motivation((exerciseIndex+second)%MotivationCount + 1)
}

// BulkMotivation selects the motivational line pre-generated for an
// exercise during bulk cache population. The choice is a stable hash
// of the exercise identity so repeated bulk runs agree.
func BulkMotivation(e Exercise) CueSpec {
	h := fnv.New32a()
	_, _ = h.Write([]byte(e.ID + e.Name))
	return Motivation(int(h.Sum32()%MotivationCount) + 1)
}

// sortedParams renders Params deterministically for fingerprinting.
func (c CueSpec) sortedParams() string {
	if len(c.Params) == 0 {
		return ""
	}
	keys := make([]string, 0, len(c.Params))
	for k := range c.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(c.Params[k])
	}
	return b.String()
}
