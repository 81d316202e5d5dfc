// Package engines implements the tiered speech acquisition chain: a
// premium neural HTTP tier, a free cloud tier and an always-available
// on-device tier, plus the policy-driven fallback that binds them.
package engines

import (
	"context"

	"github.com/systomic777/alex-workout/guide"
)

// Engine synthesizes speech audio from text.
type Engine interface {
	// Name returns the engine identifier used in logs and status output.
	Name() string
	// Available reports whether the engine can be used right now. An
	// unavailable engine is skipped without counting as a failure.
	Available() bool
	// Synthesize converts text to an audio payload. Implementations
	// must honor ctx cancellation.
	Synthesize(ctx context.Context, text string) (guide.Audio, error)
}

// LiveSpeaker is implemented by engines that can speak directly
// through the operating system, bypassing the playback layer. The
// on-device tier uses this for uncacheable text.
type LiveSpeaker interface {
	Speak(ctx context.Context, text string) error
}
