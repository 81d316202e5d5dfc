package guide

import "errors"

// Common errors for the guidance engine.
var (
	// Acquisition errors
	ErrSynthesisExhausted = errors.New("all speech synthesis tiers exhausted")
	ErrTierUnavailable    = errors.New("synthesis tier is not available")
	ErrEmptyScript        = errors.New("empty script text")
	ErrNotAudioResponse   = errors.New("synthesis response is not audio")

	// Cache errors
	ErrNotCached   = errors.New("no cached audio for fingerprint")
	ErrCacheClosed = errors.New("guidance cache is closed")

	// Playback errors
	ErrPlaybackFailed   = errors.New("audio playback failed")
	ErrNoAudioContext   = errors.New("audio context not initialized")
	ErrInvalidClip      = errors.New("invalid audio clip")
	ErrTimelineOverflow = errors.New("cue scheduled past end of timeline")

	// Data model errors
	ErrMissingExerciseID   = errors.New("exercise id is required")
	ErrMissingExerciseName = errors.New("exercise name is required")
	ErrNegativeDuration    = errors.New("durations must be non-negative")
	ErrUnknownCue          = errors.New("unknown cue token")

	// Configuration errors
	ErrInvalidConfig = errors.New("invalid guidance configuration")
)
