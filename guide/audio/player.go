package audio

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/systomic777/alex-workout/guide"
)

// Player owns the single playback slot for guidance cues. Starting a
// new cue fades out whatever is still playing; cues never stack, the
// newest one always wins. This matches how a human coach talks over
// themselves: the old sentence stops, the new one starts.
type Player struct {
	ctx  Context
	fade time.Duration

	mu      sync.Mutex
	current *activeClip
	closed  bool
}

type activeClip struct {
	reader *fadeReader
	device DevicePlayer
	done   chan struct{}
	once   sync.Once

	// paused is guarded by the player mutex. While set, the monitor
	// keeps the clip alive even though the device reports not playing.
	paused bool
}

func (c *activeClip) finish() {
	c.once.Do(func() {
		c.device.Close()
		close(c.done)
	})
}

// NewPlayer creates the cue player on a device context. fade is the
// ramp applied to an interrupted clip; zero disables fading.
func NewPlayer(ctx Context, fade time.Duration) *Player {
	return &Player{ctx: ctx, fade: fade}
}

// Play starts a PCM clip, interrupting the current one. The returned
// channel closes when this clip finishes or is itself interrupted.
func (p *Player) Play(pcm []byte) (<-chan struct{}, error) {
	if len(pcm) < guide.BytesPerSample || len(pcm)%guide.BytesPerSample != 0 {
		return nil, fmt.Errorf("%w: %d bytes", guide.ErrInvalidClip, len(pcm))
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil, guide.ErrPlaybackFailed
	}
	p.interruptLocked()

	fadeSamples := int(p.fade.Seconds() * float64(p.ctx.SampleRate()))
	clip := &activeClip{
		reader: newFadeReader(pcm, fadeSamples),
		done:   make(chan struct{}),
	}
	clip.device = p.ctx.NewPlayer(clip.reader)
	clip.device.Play()
	p.current = clip
	go p.monitor(clip)
	return clip.done, nil
}

// Stop fades out the current clip, if any.
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.interruptLocked()
}

// Pause suspends the current clip in place without releasing it.
func (p *Player) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil || p.current.paused {
		return
	}
	p.current.paused = true
	p.current.device.Pause()
}

// Resume continues a paused clip from where it stopped.
func (p *Player) Resume() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil || !p.current.paused {
		return
	}
	p.current.paused = false
	p.current.device.Play()
}

// SampleRate returns the device sample rate clips must match.
func (p *Player) SampleRate() int {
	return p.ctx.SampleRate()
}

// Busy reports whether a clip occupies the slot, paused or playing.
func (p *Player) Busy() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current != nil && (p.current.paused || p.current.device.IsPlaying())
}

// Close stops playback and rejects further clips.
func (p *Player) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	if p.current != nil {
		p.current.finish()
		p.current = nil
	}
	return nil
}

// interruptLocked starts the fade on the current clip and detaches it.
// The clip's monitor closes the device once the ramp has drained. A
// paused clip is resumed first so the ramp can drain.
func (p *Player) interruptLocked() {
	if p.current == nil {
		return
	}
	p.current.reader.FadeOut()
	if p.current.paused {
		p.current.paused = false
		p.current.device.Play()
	}
	p.current = nil
}

// monitor waits for the device to drain, then releases the clip.
func (p *Player) monitor(clip *activeClip) {
	for {
		p.mu.Lock()
		paused := clip.paused
		p.mu.Unlock()
		if !paused && !clip.device.IsPlaying() {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	clip.finish()

	p.mu.Lock()
	if p.current == clip {
		p.current = nil
	}
	p.mu.Unlock()
}

// fadeReader serves a PCM buffer and can be told to ramp the remaining
// samples down to silence. After the ramp it reports EOF so the device
// drains and stops on its own.
type fadeReader struct {
	mu          sync.Mutex
	data        []byte
	pos         int
	fadeSamples int
	fading      bool
	fadePos     int
}

func newFadeReader(data []byte, fadeSamples int) *fadeReader {
	return &fadeReader{data: data, fadeSamples: fadeSamples}
}

// FadeOut begins the ramp. With no configured fade the reader cuts to
// EOF immediately.
func (r *fadeReader) FadeOut() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fadeSamples == 0 {
		r.pos = len(r.data)
		return
	}
	r.fading = true
}

func (r *fadeReader) Read(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.pos >= len(r.data) || (r.fading && r.fadePos >= r.fadeSamples) {
		return 0, io.EOF
	}
	n := copy(p, r.data[r.pos:])
	n -= n % guide.BytesPerSample
	if n == 0 {
		return 0, io.EOF
	}
	if r.fading {
		samples := n / guide.BytesPerSample
		if remaining := r.fadeSamples - r.fadePos; samples > remaining {
			samples = remaining
			n = samples * guide.BytesPerSample
		}
		for i := 0; i < samples; i++ {
			off := r.pos + i*guide.BytesPerSample
			s := int16(uint16(r.data[off]) | uint16(r.data[off+1])<<8)
			gain := 1.0 - float64(r.fadePos+i)/float64(r.fadeSamples)
			s = int16(float64(s) * gain)
			p[i*2] = byte(uint16(s))
			p[i*2+1] = byte(uint16(s) >> 8)
		}
		r.fadePos += samples
	}
	r.pos += n
	return n, nil
}
