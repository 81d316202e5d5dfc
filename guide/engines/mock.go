package engines

import (
	"context"
	"sync"
	"time"

	"github.com/systomic777/alex-workout/guide"
)

// MockEngine is a deterministic in-memory engine for tests. It records
// every synthesized text and returns silence sized to ClipDuration.
type MockEngine struct {
	// EngineName overrides the reported name. Defaults to "mock".
	EngineName string
	// Unavailable makes Available report false.
	Unavailable bool
	// Err, when set, is returned by every Synthesize call.
	Err error
	// ClipDuration sizes the returned silent clip. Defaults to 500ms.
	ClipDuration time.Duration

	mu    sync.Mutex
	calls []string
}

func (m *MockEngine) Name() string {
	if m.EngineName == "" {
		return "mock"
	}
	return m.EngineName
}

func (m *MockEngine) Available() bool { return !m.Unavailable }

func (m *MockEngine) Synthesize(ctx context.Context, text string) (guide.Audio, error) {
	if err := ctx.Err(); err != nil {
		return guide.Audio{}, err
	}
	m.mu.Lock()
	m.calls = append(m.calls, text)
	m.mu.Unlock()
	if m.Err != nil {
		return guide.Audio{}, m.Err
	}
	dur := m.ClipDuration
	if dur == 0 {
		dur = 500 * time.Millisecond
	}
	samples := int(dur.Seconds() * float64(guide.SampleRate))
	return guide.Audio{
		MIME: guide.MIMEPCM,
		Data: make([]byte, samples*guide.BytesPerSample),
		Rate: guide.SampleRate,
	}, nil
}

// Calls returns a copy of the synthesized texts in order.
func (m *MockEngine) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.calls))
	copy(out, m.calls)
	return out
}

var _ Engine = (*MockEngine)(nil)
