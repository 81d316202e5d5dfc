package engines

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/systomic777/alex-workout/guide"
)

// CloudEngine is the free cloud tier: an unauthenticated speech
// endpoint addressed by simple voice/text query parameters. A client
// side rate limiter keeps bulk cache population polite.
type CloudEngine struct {
	cfg     guide.CloudConfig
	client  *http.Client
	limiter *rate.Limiter
}

// NewCloudEngine creates the free cloud voice tier.
func NewCloudEngine(cfg guide.CloudConfig) *CloudEngine {
	rpm := cfg.RequestsPerMinute
	if rpm <= 0 {
		rpm = 50
	}
	return &CloudEngine{
		cfg:     cfg,
		client:  &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Limit(float64(rpm)/60.0), 1),
	}
}

func (e *CloudEngine) Name() string { return "cloud" }

func (e *CloudEngine) Available() bool { return e.cfg.URL != "" }

// Synthesize fetches a clip from the cloud endpoint, waiting on the
// rate limiter first so bursts of cache misses do not hammer it.
func (e *CloudEngine) Synthesize(ctx context.Context, text string) (guide.Audio, error) {
	if !e.Available() {
		return guide.Audio{}, fmt.Errorf("cloud: %w", guide.ErrTierUnavailable)
	}
	if strings.TrimSpace(text) == "" {
		return guide.Audio{}, guide.ErrEmptyScript
	}
	if err := e.limiter.Wait(ctx); err != nil {
		return guide.Audio{}, fmt.Errorf("cloud: rate limit wait: %w", err)
	}

	q := url.Values{}
	q.Set("voice", e.cfg.Voice)
	q.Set("text", text)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.cfg.URL+"?"+q.Encode(), nil)
	if err != nil {
		return guide.Audio{}, fmt.Errorf("cloud: build request: %w", err)
	}
	req.Header.Set("Accept", "audio/*")

	log.Debug("requesting cloud synthesis", "voice", e.cfg.Voice, "chars", len(text))
	resp, err := e.client.Do(req)
	if err != nil {
		return guide.Audio{}, fmt.Errorf("cloud: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return guide.Audio{}, fmt.Errorf("cloud: unexpected status %d", resp.StatusCode)
	}
	ct := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(ct, "audio/") {
		return guide.Audio{}, fmt.Errorf("%w: content type %q", guide.ErrNotAudioResponse, ct)
	}
	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return guide.Audio{}, fmt.Errorf("cloud: read response: %w", err)
	}
	if len(payload) == 0 {
		return guide.Audio{}, fmt.Errorf("%w: empty body", guide.ErrNotAudioResponse)
	}
	mime, _, _ := strings.Cut(ct, ";")
	return guide.Audio{MIME: strings.TrimSpace(mime), Data: payload}, nil
}
