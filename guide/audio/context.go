// Package audio is the playback layer: PCM utilities, decoding,
// a single-slot cue player and pre-rendered phase timelines. All
// playback goes through one shared device context; cues are short and
// never overlap, so the player holds at most one active clip.
package audio

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/ebitengine/oto/v3"

	"github.com/systomic777/alex-workout/guide"
)

// Context abstracts the audio device so tests can run without
// hardware.
type Context interface {
	// NewPlayer creates a device player reading PCM from r.
	NewPlayer(r io.Reader) DevicePlayer
	// SampleRate returns the device sample rate in Hz.
	SampleRate() int
}

// DevicePlayer is the minimal surface of an oto player the cue player
// needs.
type DevicePlayer interface {
	Play()
	Pause()
	IsPlaying() bool
	Close() error
}

// otoContext wraps the process-wide oto context. oto allows only one
// context per process, so it is created once and shared.
type otoContext struct {
	ctx  *oto.Context
	rate int
}

var (
	globalContext *otoContext
	globalErr     error
	contextOnce   sync.Once
)

// NewContext returns the shared device context, initializing it on
// first use. The first caller's sample rate wins; zero selects the
// default. Initialization failure is sticky for the process.
func NewContext(sampleRate int) (Context, error) {
	contextOnce.Do(func() {
		if sampleRate <= 0 {
			sampleRate = guide.SampleRate
		}
		options := &oto.NewContextOptions{
			SampleRate:   sampleRate,
			ChannelCount: guide.Channels,
			Format:       oto.FormatSignedInt16LE,
			BufferSize:   50 * time.Millisecond,
		}
		ctx, readyChan, err := oto.NewContext(options)
		if err != nil {
			globalErr = fmt.Errorf("create audio context: %w", err)
			return
		}
		select {
		case <-readyChan:
			globalContext = &otoContext{ctx: ctx, rate: sampleRate}
			log.Debug("audio context ready", "sample_rate", options.SampleRate)
		case <-time.After(5 * time.Second):
			globalErr = fmt.Errorf("%w: initialization timeout", guide.ErrNoAudioContext)
		}
	})
	if globalErr != nil {
		return nil, globalErr
	}
	return globalContext, nil
}

func (c *otoContext) NewPlayer(r io.Reader) DevicePlayer {
	return c.ctx.NewPlayer(r)
}

func (c *otoContext) SampleRate() int { return c.rate }
