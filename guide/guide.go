// Package guide contains the core types of the voice guidance engine:
// cue tokens, script derivation, cache fingerprints and shared audio
// payloads. Everything in this package is pure and deterministic; the
// same inputs always produce the same script text and the same
// fingerprint, which is what makes cached audio safely reusable across
// sessions.
package guide

import "time"

// Audio format constants for synthesized guidance audio.
// These are used by both the engines and the playback layer.
const (
	// SampleRate is the canonical playback sample rate in Hz.
	SampleRate = 22050
	// Channels is the number of audio channels (1 = mono).
	Channels = 1
	// BitDepth is the bit depth per sample (16-bit signed).
	BitDepth = 16
	// BytesPerSample is the number of bytes per sample.
	BytesPerSample = BitDepth / 8
)

// Well-known MIME types for guidance audio payloads.
const (
	MIMEPCM  = "audio/pcm"
	MIMEWAV  = "audio/wav"
	MIMEMPEG = "audio/mpeg"
)

// Audio is a synthesized audio payload. Data is encoded according to
// MIME; for MIMEPCM it is raw signed 16-bit little-endian mono samples
// at Rate Hz.
type Audio struct {
	MIME string
	Data []byte

	// Rate is the sample rate for PCM payloads. Zero for compressed
	// payloads whose rate is only known after decoding.
	Rate int
}

// PCMDuration returns the play time of a raw PCM payload. It returns
// zero for non-PCM payloads.
func (a Audio) PCMDuration() time.Duration {
	if a.MIME != MIMEPCM || a.Rate <= 0 || len(a.Data) < BytesPerSample {
		return 0
	}
	samples := len(a.Data) / BytesPerSample
	return time.Duration(samples) * time.Second / time.Duration(a.Rate)
}

// Exercise is one user-authored entry of the workout. It is immutable
// once read into a running session; the session operates on a snapshot
// of the sequence so concurrent edits cannot skew fingerprints or
// timing mid-run.
type Exercise struct {
	ID          string        `yaml:"id"`
	Name        string        `yaml:"name"`
	Reps        int           `yaml:"reps"`
	RepDuration time.Duration `yaml:"rep_duration"`
	PrepTime    time.Duration `yaml:"prep_time"`
	CoolingTime time.Duration `yaml:"cooling_time"`
}

// WorkDuration is the total duration of the work phase.
func (e Exercise) WorkDuration() time.Duration {
	if e.Reps <= 0 {
		return 0
	}
	return time.Duration(e.Reps) * e.RepDuration
}

// Validate reports the first structural problem of the exercise.
func (e Exercise) Validate() error {
	switch {
	case e.ID == "":
		return ErrMissingExerciseID
	case e.Name == "":
		return ErrMissingExerciseName
	case e.Reps < 0:
		return ErrNegativeDuration
	case e.RepDuration < 0 || e.PrepTime < 0 || e.CoolingTime < 0:
		return ErrNegativeDuration
	}
	return nil
}
