package engines

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"time"

	"github.com/charmbracelet/log"

	"github.com/systomic777/alex-workout/guide"
)

// synthesisTimeout bounds a single on-device synthesis run. Cues are a
// few words; a stuck speech binary should not stall the chain.
const synthesisTimeout = 15 * time.Second

// NativeEngine is the on-device tier. It shells out to the platform
// speech binary (say on darwin, espeak-ng elsewhere) and is the
// guaranteed last tier: no network, no key, no quota.
type NativeEngine struct {
	cfg    guide.NativeConfig
	binary string
}

// NewNativeEngine creates the on-device speech tier. The binary can be
// overridden in config; otherwise the platform default is used.
func NewNativeEngine(cfg guide.NativeConfig) *NativeEngine {
	binary := cfg.Binary
	if binary == "" {
		if runtime.GOOS == "darwin" {
			binary = "say"
		} else {
			binary = "espeak-ng"
		}
	}
	return &NativeEngine{cfg: cfg, binary: binary}
}

func (e *NativeEngine) Name() string { return "native" }

func (e *NativeEngine) Available() bool {
	_, err := exec.LookPath(e.binary)
	return err == nil
}

// Synthesize renders text to a WAV payload via the speech binary.
func (e *NativeEngine) Synthesize(ctx context.Context, text string) (guide.Audio, error) {
	if text == "" {
		return guide.Audio{}, guide.ErrEmptyScript
	}
	if !e.Available() {
		return guide.Audio{}, fmt.Errorf("native: %s not in PATH: %w", e.binary, guide.ErrTierUnavailable)
	}

	ctx, cancel := context.WithTimeout(ctx, synthesisTimeout)
	defer cancel()

	var data []byte
	var err error
	if filepath.Base(e.binary) == "say" {
		data, err = e.synthesizeSay(ctx, text)
	} else {
		data, err = e.synthesizeEspeak(ctx, text)
	}
	if err != nil {
		return guide.Audio{}, err
	}
	if len(data) == 0 {
		return guide.Audio{}, fmt.Errorf("native: %s produced no audio", e.binary)
	}
	return guide.Audio{MIME: guide.MIMEWAV, Data: data}, nil
}

// synthesizeSay uses the darwin say binary. say cannot stream WAV to
// stdout, so it renders into a temp file that is read back.
func (e *NativeEngine) synthesizeSay(ctx context.Context, text string) ([]byte, error) {
	tmp, err := os.CreateTemp("", "guide-*.wav")
	if err != nil {
		return nil, fmt.Errorf("native: create temp file: %w", err)
	}
	tmpName := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpName)

	args := []string{
		"-o", tmpName,
		"--data-format", fmt.Sprintf("LEI16@%d", guide.SampleRate),
		"--file-format", "WAVE",
	}
	if e.cfg.Voice != "" {
		args = append(args, "-v", e.cfg.Voice)
	}
	if e.cfg.Rate > 0 {
		args = append(args, "-r", strconv.Itoa(e.cfg.Rate))
	}
	args = append(args, text)

	if err := e.run(ctx, args); err != nil {
		return nil, err
	}
	return os.ReadFile(tmpName)
}

// synthesizeEspeak uses espeak-ng, which writes WAV straight to
// stdout.
func (e *NativeEngine) synthesizeEspeak(ctx context.Context, text string) ([]byte, error) {
	args := []string{"--stdout"}
	if e.cfg.Voice != "" {
		args = append(args, "-v", e.cfg.Voice)
	}
	if e.cfg.Rate > 0 {
		args = append(args, "-s", strconv.Itoa(e.cfg.Rate))
	}
	if e.cfg.Pitch > 0 && e.cfg.Pitch != 1.0 {
		// espeak-ng pitch is 0-99 with 50 as neutral.
		args = append(args, "-p", strconv.Itoa(int(50*e.cfg.Pitch)))
	}
	args = append(args, text)

	cmd := exec.CommandContext(ctx, e.binary, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("native: %s timed out: %w", e.binary, ctx.Err())
		}
		return nil, fmt.Errorf("native: %s failed: %w, stderr: %s", e.binary, err, stderr.String())
	}
	return stdout.Bytes(), nil
}

// Speak voices text directly through the operating system without
// producing a payload. Used for uncacheable text such as names of
// exercises past the pre-generated range.
func (e *NativeEngine) Speak(ctx context.Context, text string) error {
	if text == "" {
		return guide.ErrEmptyScript
	}
	ctx, cancel := context.WithTimeout(ctx, synthesisTimeout)
	defer cancel()

	var args []string
	if e.cfg.Voice != "" {
		args = append(args, "-v", e.cfg.Voice)
	}
	if e.cfg.Rate > 0 {
		if filepath.Base(e.binary) == "say" {
			args = append(args, "-r", strconv.Itoa(e.cfg.Rate))
		} else {
			args = append(args, "-s", strconv.Itoa(e.cfg.Rate))
		}
	}
	args = append(args, text)
	log.Debug("speaking live", "binary", e.binary, "chars", len(text))
	return e.run(ctx, args)
}

func (e *NativeEngine) run(ctx context.Context, args []string) error {
	cmd := exec.CommandContext(ctx, e.binary, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("native: %s timed out: %w", e.binary, ctx.Err())
		}
		return fmt.Errorf("native: %s failed: %w, stderr: %s", e.binary, err, stderr.String())
	}
	return nil
}
