package audio

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"time"

	"github.com/systomic777/alex-workout/guide"
)

// decodeTimeout bounds an ffmpeg run. Clips are seconds long.
const decodeTimeout = 15 * time.Second

// ToPCM converts any supported audio payload to raw PCM at the target
// rate. Raw and WAV payloads decode in-process; compressed payloads go
// through ffmpeg.
func ToPCM(ctx context.Context, a guide.Audio, targetRate int) ([]byte, error) {
	switch a.MIME {
	case guide.MIMEPCM:
		if a.Rate <= 0 {
			return nil, fmt.Errorf("%w: PCM payload without sample rate", guide.ErrInvalidClip)
		}
		return Resample(a.Data, a.Rate, targetRate), nil
	case guide.MIMEWAV:
		pcm, rate, err := guide.DecodeWAV(a.Data)
		if err != nil {
			return nil, err
		}
		return Resample(pcm, rate, targetRate), nil
	default:
		return decodeWithFFmpeg(ctx, a.Data, targetRate)
	}
}

// decodeWithFFmpeg shells out to ffmpeg for compressed formats. The
// payload goes through a temp file because some demuxers need a
// seekable input.
func decodeWithFFmpeg(ctx context.Context, data []byte, targetRate int) ([]byte, error) {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return nil, fmt.Errorf("ffmpeg not in PATH: %w", err)
	}
	tmp, err := os.CreateTemp("", "guide-clip-*")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	tmp.Close()

	ctx, cancel := context.WithTimeout(ctx, decodeTimeout)
	defer cancel()

	args := []string{
		"-i", tmp.Name(),
		"-f", "s16le",
		"-ar", strconv.Itoa(targetRate),
		"-ac", strconv.Itoa(guide.Channels),
		"-",
	}
	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("ffmpeg timed out: %w", ctx.Err())
		}
		return nil, fmt.Errorf("ffmpeg failed: %w, stderr: %s", err, stderr.String())
	}
	pcm := stdout.Bytes()
	if len(pcm) == 0 {
		return nil, fmt.Errorf("%w: ffmpeg produced no output", guide.ErrInvalidClip)
	}
	return pcm, nil
}
