package audio

import (
	"testing"
	"time"

	"github.com/systomic777/alex-workout/guide"
)

func TestSilenceDuration(t *testing.T) {
	pcm := Silence(2*time.Second, guide.SampleRate)
	if got := Duration(pcm, guide.SampleRate); got != 2*time.Second {
		t.Errorf("Duration(Silence(2s)) = %v", got)
	}
	for _, b := range pcm[:64] {
		if b != 0 {
			t.Fatal("silence contains non-zero samples")
		}
	}
}

func TestResampleLength(t *testing.T) {
	tests := []struct {
		name     string
		from, to int
	}{
		{"upsample", 22050, 44100},
		{"downsample", 44100, 22050},
		{"identity", 22050, 22050},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := Silence(time.Second, tt.from)
			out := Resample(in, tt.from, tt.to)
			got := Duration(out, tt.to)
			if diff := got - time.Second; diff > 5*time.Millisecond || diff < -5*time.Millisecond {
				t.Errorf("resampled duration = %v, want ~1s", got)
			}
		})
	}
}

func TestApplyRateShortensClip(t *testing.T) {
	in := Silence(2*time.Second, guide.SampleRate)
	rate := 1.35
	out := ApplyRate(in, rate)
	got := Duration(out, guide.SampleRate)
	want := time.Duration(float64(2*time.Second) / rate)
	if diff := got - want; diff > 5*time.Millisecond || diff < -5*time.Millisecond {
		t.Errorf("duration after rate 1.35 = %v, want ~%v", got, want)
	}
}

func TestApplyRateNeverSlowsDown(t *testing.T) {
	in := Silence(time.Second, guide.SampleRate)
	out := ApplyRate(in, 0.5)
	if len(out) != len(in) {
		t.Errorf("rate 0.5 changed clip length: %d -> %d", len(in), len(out))
	}
}

func TestMixIntoSaturates(t *testing.T) {
	dst := []int16{30000, -30000}
	mixInto(dst, []int16{10000, -10000}, 0)
	if dst[0] != 32767 {
		t.Errorf("positive overflow = %d, want 32767", dst[0])
	}
	if dst[1] != -32768 {
		t.Errorf("negative overflow = %d, want -32768", dst[1])
	}
}
