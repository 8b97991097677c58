package whisper

import (
	"encoding/binary"
	"fmt"

	"github.com/phonaid/phonaid/pkg/provider/asr"
)

// decodeSamples converts audio bytes into mono float32 samples normalised to
// [-1.0, 1.0]. A RIFF/WAVE header is parsed when present; otherwise the
// bytes are treated as raw 16 kHz mono 16-bit little-endian PCM.
func decodeSamples(audio []byte) ([]float32, error) {
	if len(audio) == 0 {
		return nil, nil
	}

	pcm := audio
	channels := 1

	if len(audio) >= 12 && string(audio[0:4]) == "RIFF" && string(audio[8:12]) == "WAVE" {
		var err error
		pcm, channels, err = parseWAV(audio)
		if err != nil {
			return nil, err
		}
	}

	if len(pcm) < 2 {
		return nil, fmt.Errorf("%w: no PCM payload", asr.ErrUndecodable)
	}
	return pcmToFloat32Mono(pcm, channels), nil
}

// parseWAV walks the RIFF chunk list and returns the data chunk payload and
// the channel count from the fmt chunk. Only 16-bit integer PCM is accepted.
func parseWAV(wav []byte) (pcm []byte, channels int, err error) {
	channels = 1
	pos := 12
	var data []byte
	sawFmt := false

	for pos+8 <= len(wav) {
		id := string(wav[pos : pos+4])
		size := int(binary.LittleEndian.Uint32(wav[pos+4 : pos+8]))
		body := pos + 8
		if size < 0 || body+size > len(wav) {
			return nil, 0, fmt.Errorf("%w: truncated %q chunk", asr.ErrUndecodable, id)
		}

		switch id {
		case "fmt ":
			if size < 16 {
				return nil, 0, fmt.Errorf("%w: short fmt chunk", asr.ErrUndecodable)
			}
			format := binary.LittleEndian.Uint16(wav[body : body+2])
			channels = int(binary.LittleEndian.Uint16(wav[body+2 : body+4]))
			bits := binary.LittleEndian.Uint16(wav[body+14 : body+16])
			if format != 1 || bits != 16 || channels < 1 {
				return nil, 0, fmt.Errorf("%w: only 16-bit integer PCM is supported", asr.ErrUndecodable)
			}
			sawFmt = true
		case "data":
			data = wav[body : body+size]
		}

		// Chunks are word-aligned.
		pos = body + size + size%2
	}

	if !sawFmt || data == nil {
		return nil, 0, fmt.Errorf("%w: missing fmt or data chunk", asr.ErrUndecodable)
	}
	return data, channels, nil
}

// pcmToFloat32Mono down-mixes 16-bit signed little-endian PCM to mono
// float32 by averaging all channels per frame. A trailing odd byte is
// silently ignored.
func pcmToFloat32Mono(pcm []byte, channels int) []float32 {
	if channels <= 1 {
		n := len(pcm) / 2
		samples := make([]float32, n)
		for i := range n {
			sample := int16(binary.LittleEndian.Uint16(pcm[i*2 : i*2+2]))
			samples[i] = float32(sample) / 32768.0
		}
		return samples
	}

	samplesPerChannel := len(pcm) / (2 * channels)
	mono := make([]float32, samplesPerChannel)
	for i := range samplesPerChannel {
		var sum float32
		for ch := range channels {
			idx := (i*channels + ch) * 2
			sample := int16(binary.LittleEndian.Uint16(pcm[idx : idx+2]))
			sum += float32(sample) / 32768.0
		}
		mono[i] = sum / float32(channels)
	}
	return mono
}
