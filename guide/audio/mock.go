package audio

import (
	"io"
	"sync"

	"github.com/systomic777/alex-workout/guide"
)

// MockContext is an in-memory device context for tests. Players read
// their input eagerly and report playback as finished immediately
// unless Hold is set.
type MockContext struct {
	// Hold keeps mock players "playing" until Release is called, so
	// tests can observe the playing state.
	Hold bool

	mu      sync.Mutex
	players []*MockPlayer
}

func (m *MockContext) NewPlayer(r io.Reader) DevicePlayer {
	data, _ := io.ReadAll(r)
	p := &MockPlayer{data: data, hold: m.Hold}
	m.mu.Lock()
	m.players = append(m.players, p)
	m.mu.Unlock()
	return p
}

func (m *MockContext) SampleRate() int { return guide.SampleRate }

// Players returns every player created so far.
func (m *MockContext) Players() []*MockPlayer {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*MockPlayer, len(m.players))
	copy(out, m.players)
	return out
}

// Release finishes playback on all held players.
func (m *MockContext) Release() {
	for _, p := range m.Players() {
		p.finish()
	}
}

// MockPlayer records the PCM it was given and its lifecycle calls.
type MockPlayer struct {
	mu      sync.Mutex
	data    []byte
	hold    bool
	playing bool
	played  bool
	paused  bool
	closed  bool
}

func (p *MockPlayer) Play() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.played = true
	p.paused = false
	p.playing = p.hold
}

func (p *MockPlayer) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.paused = true
	p.playing = false
}

func (p *MockPlayer) IsPlaying() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}

func (p *MockPlayer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	p.playing = false
	return nil
}

func (p *MockPlayer) finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.playing = false
}

// Data returns the PCM the player was created with.
func (p *MockPlayer) Data() []byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.data
}

// Played reports whether Play was ever called.
func (p *MockPlayer) Played() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.played
}

// Closed reports whether Close was called.
func (p *MockPlayer) Closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

// Paused reports whether the player is currently paused.
func (p *MockPlayer) Paused() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.paused
}

var _ Context = (*MockContext)(nil)
