package guide

import (
	"encoding/binary"
	"fmt"
	"time"
)

// EncodeWAV wraps raw signed 16-bit little-endian mono PCM in a
// minimal RIFF/WAVE container.
func EncodeWAV(pcm []byte, sampleRate int) []byte {
	if sampleRate <= 0 {
		sampleRate = SampleRate
	}
	byteRate := sampleRate * Channels * BytesPerSample
	out := make([]byte, 0, 44+len(pcm))
	out = append(out, []byte("RIFF")...)
	out = binary.LittleEndian.AppendUint32(out, uint32(36+len(pcm)))
	out = append(out, []byte("WAVE")...)
	out = append(out, []byte("fmt ")...)
	out = binary.LittleEndian.AppendUint32(out, 16)
	out = binary.LittleEndian.AppendUint16(out, 1) // PCM
	out = binary.LittleEndian.AppendUint16(out, uint16(Channels))
	out = binary.LittleEndian.AppendUint32(out, uint32(sampleRate))
	out = binary.LittleEndian.AppendUint32(out, uint32(byteRate))
	out = binary.LittleEndian.AppendUint16(out, uint16(Channels*BytesPerSample))
	out = binary.LittleEndian.AppendUint16(out, uint16(BitDepth))
	out = append(out, []byte("data")...)
	out = binary.LittleEndian.AppendUint32(out, uint32(len(pcm)))
	out = append(out, pcm...)
	return out
}

// DecodeWAV extracts PCM samples and the sample rate from a RIFF/WAVE
// payload. Only 16-bit PCM data is supported; anything else is
// rejected so the playback layer never feeds garbage to the device.
func DecodeWAV(data []byte) (pcm []byte, sampleRate int, err error) {
	if len(data) < 44 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, 0, fmt.Errorf("%w: not a RIFF/WAVE payload", ErrInvalidClip)
	}
	off := 12
	for off+8 <= len(data) {
		id := string(data[off : off+4])
		size := int(binary.LittleEndian.Uint32(data[off+4 : off+8]))
		body := off + 8
		if body+size > len(data) {
			size = len(data) - body
		}
		switch id {
		case "fmt ":
			if size < 16 {
				return nil, 0, fmt.Errorf("%w: short fmt chunk", ErrInvalidClip)
			}
			format := binary.LittleEndian.Uint16(data[body : body+2])
			channels := binary.LittleEndian.Uint16(data[body+2 : body+4])
			bits := binary.LittleEndian.Uint16(data[body+14 : body+16])
			if format != 1 || bits != 16 || channels != Channels {
				return nil, 0, fmt.Errorf("%w: unsupported WAV layout %d/%d-bit/%dch", ErrInvalidClip, format, bits, channels)
			}
			sampleRate = int(binary.LittleEndian.Uint32(data[body+4 : body+8]))
		case "data":
			pcm = data[body : body+size]
		}
		// Chunks are word-aligned.
		off = body + size + size%2
	}
	if pcm == nil || sampleRate <= 0 {
		return nil, 0, fmt.Errorf("%w: missing fmt or data chunk", ErrInvalidClip)
	}
	return pcm, sampleRate, nil
}

// AudioDuration returns the play time of a payload when it can be
// determined without a full decode (raw PCM or WAV). It returns zero
// for compressed payloads.
func AudioDuration(a Audio) time.Duration {
	switch a.MIME {
	case MIMEPCM:
		return a.PCMDuration()
	case MIMEWAV:
		pcm, rate, err := DecodeWAV(a.Data)
		if err != nil {
			return 0
		}
		samples := len(pcm) / BytesPerSample
		return time.Duration(samples) * time.Second / time.Duration(rate)
	}
	return 0
}
