package audio

import (
	"encoding/binary"
	"time"

	"github.com/systomic777/alex-workout/guide"
)

// Silence returns d worth of silent PCM at the given rate.
func Silence(d time.Duration, rate int) []byte {
	if d <= 0 || rate <= 0 {
		return nil
	}
	samples := int(d.Seconds() * float64(rate))
	return make([]byte, samples*guide.BytesPerSample)
}

// Duration returns the play time of a PCM buffer at the given rate.
func Duration(pcm []byte, rate int) time.Duration {
	if rate <= 0 {
		return 0
	}
	samples := len(pcm) / guide.BytesPerSample
	return time.Duration(samples) * time.Second / time.Duration(rate)
}

func toSamples(pcm []byte) []int16 {
	n := len(pcm) / guide.BytesPerSample
	out := make([]int16, n)
	for i := 0; i < n; i++ {
		out[i] = int16(binary.LittleEndian.Uint16(pcm[i*2:]))
	}
	return out
}

func fromSamples(samples []int16) []byte {
	out := make([]byte, len(samples)*guide.BytesPerSample)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(s))
	}
	return out
}

// Resample converts PCM between sample rates using linear
// interpolation. Guidance cues are speech, where interpolation
// artifacts are inaudible.
func Resample(pcm []byte, from, to int) []byte {
	if from == to || from <= 0 || to <= 0 || len(pcm) < guide.BytesPerSample {
		return pcm
	}
	in := toSamples(pcm)
	outLen := int(float64(len(in)) * float64(to) / float64(from))
	if outLen == 0 {
		return nil
	}
	out := make([]int16, outLen)
	step := float64(len(in)-1) / float64(outLen)
	for i := range out {
		pos := float64(i) * step
		j := int(pos)
		frac := pos - float64(j)
		a := float64(in[j])
		b := a
		if j+1 < len(in) {
			b = float64(in[j+1])
		}
		out[i] = int16(a + (b-a)*frac)
	}
	return fromSamples(out)
}

// ApplyRate speeds a clip up by the given playback rate. Rates at or
// below 1.0 leave the clip unchanged; speech is never slowed down.
func ApplyRate(pcm []byte, rate float64) []byte {
	if rate <= 1.0 || len(pcm) < guide.BytesPerSample {
		return pcm
	}
	in := toSamples(pcm)
	outLen := int(float64(len(in)) / rate)
	if outLen == 0 {
		return nil
	}
	out := make([]int16, outLen)
	for i := range out {
		pos := float64(i) * rate
		j := int(pos)
		frac := pos - float64(j)
		a := float64(in[j])
		b := a
		if j+1 < len(in) {
			b = float64(in[j+1])
		}
		out[i] = int16(a + (b-a)*frac)
	}
	return fromSamples(out)
}

// mixInto adds src samples into dst starting at sample offset,
// saturating instead of wrapping on overflow.
func mixInto(dst []int16, src []int16, offset int) {
	for i, s := range src {
		j := offset + i
		if j >= len(dst) {
			return
		}
		sum := int32(dst[j]) + int32(s)
		if sum > 32767 {
			sum = 32767
		} else if sum < -32768 {
			sum = -32768
		}
		dst[j] = int16(sum)
	}
}
