package engines

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/systomic777/alex-workout/guide"
)

// maxResponseBytes bounds a single synthesized clip. Guidance cues are
// seconds long; anything bigger is a broken response.
const maxResponseBytes = 20 << 20

// NeuralEngine is the premium tier: a neural voice service spoken to
// over HTTPS. The API key is held server-side by the operator; an
// empty key leaves the tier permanently unavailable and the chain
// falls through to the free tiers.
type NeuralEngine struct {
	cfg          guide.NeuralConfig
	maxScriptLen int
	client       *http.Client
}

// NewNeuralEngine creates the premium neural voice tier.
func NewNeuralEngine(cfg guide.NeuralConfig, maxScriptLen int) *NeuralEngine {
	return &NeuralEngine{
		cfg:          cfg,
		maxScriptLen: maxScriptLen,
		client:       &http.Client{Timeout: cfg.Timeout},
	}
}

func (e *NeuralEngine) Name() string { return "neural" }

// Available reports whether the tier is configured. Network health is
// not probed here; a dead endpoint surfaces as a Synthesize error and
// the chain moves on.
func (e *NeuralEngine) Available() bool {
	return e.cfg.URL != "" && e.cfg.APIKey != ""
}

type neuralRequest struct {
	Text    string `json:"text"`
	VoiceID string `json:"voiceId,omitempty"`
}

type neuralError struct {
	Error   string `json:"error"`
	Status  string `json:"status"`
	Details string `json:"details"`
}

// Synthesize requests a clip from the neural voice service. Responses
// must be 2xx with an audio content type; structured error bodies are
// surfaced in the returned error.
func (e *NeuralEngine) Synthesize(ctx context.Context, text string) (guide.Audio, error) {
	if !e.Available() {
		return guide.Audio{}, fmt.Errorf("neural: %w", guide.ErrTierUnavailable)
	}
	if strings.TrimSpace(text) == "" {
		return guide.Audio{}, guide.ErrEmptyScript
	}
	text = guide.TruncateScript(text, e.maxScriptLen)

	body, err := json.Marshal(neuralRequest{Text: text, VoiceID: e.cfg.VoiceID})
	if err != nil {
		return guide.Audio{}, fmt.Errorf("neural: encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return guide.Audio{}, fmt.Errorf("neural: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/*")
	req.Header.Set("Authorization", "Bearer "+e.cfg.APIKey)

	log.Debug("requesting neural synthesis", "chars", len(text))
	resp, err := e.client.Do(req)
	if err != nil {
		return guide.Audio{}, fmt.Errorf("neural: request failed: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return guide.Audio{}, fmt.Errorf("neural: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr neuralError
		if json.Unmarshal(payload, &apiErr) == nil && apiErr.Error != "" {
			return guide.Audio{}, fmt.Errorf("neural: %s (%s): %s", apiErr.Error, apiErr.Status, apiErr.Details)
		}
		return guide.Audio{}, fmt.Errorf("neural: unexpected status %d", resp.StatusCode)
	}
	ct := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(ct, "audio/") {
		// A 200 with an HTML or JSON body means a proxy or quota page,
		// not speech. Treat it as a tier failure.
		return guide.Audio{}, fmt.Errorf("%w: content type %q", guide.ErrNotAudioResponse, ct)
	}
	if len(payload) == 0 {
		return guide.Audio{}, fmt.Errorf("%w: empty body", guide.ErrNotAudioResponse)
	}
	mime, _, _ := strings.Cut(ct, ";")
	return guide.Audio{MIME: strings.TrimSpace(mime), Data: payload}, nil
}
