package whisper

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/phonaid/phonaid/pkg/provider/asr"
)

// buildWAV assembles a minimal RIFF/WAVE file with a 16-bit PCM fmt chunk
// and the given interleaved samples.
func buildWAV(channels int, samples []int16) []byte {
	data := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(data[i*2:], uint16(s))
	}

	fmtChunk := make([]byte, 16)
	binary.LittleEndian.PutUint16(fmtChunk[0:], 1) // PCM
	binary.LittleEndian.PutUint16(fmtChunk[2:], uint16(channels))
	binary.LittleEndian.PutUint32(fmtChunk[4:], 16000)
	binary.LittleEndian.PutUint16(fmtChunk[14:], 16) // bits per sample

	var wav []byte
	wav = append(wav, "RIFF"...)
	wav = append(wav, 0, 0, 0, 0)
	wav = append(wav, "WAVE"...)
	wav = appendChunk(wav, "fmt ", fmtChunk)
	wav = appendChunk(wav, "data", data)
	binary.LittleEndian.PutUint32(wav[4:], uint32(len(wav)-8))
	return wav
}

func appendChunk(wav []byte, id string, body []byte) []byte {
	wav = append(wav, id...)
	size := make([]byte, 4)
	binary.LittleEndian.PutUint32(size, uint32(len(body)))
	wav = append(wav, size...)
	wav = append(wav, body...)
	if len(body)%2 == 1 {
		wav = append(wav, 0)
	}
	return wav
}

func almostEqual(a, b float32) bool {
	return math.Abs(float64(a-b)) < 1e-4
}

func TestDecodeSamples_MonoWAV(t *testing.T) {
	t.Parallel()

	wav := buildWAV(1, []int16{0, 16384, -32768})
	got, err := decodeSamples(wav)
	if err != nil {
		t.Fatalf("decodeSamples: %v", err)
	}
	want := []float32{0, 0.5, -1.0}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if !almostEqual(got[i], want[i]) {
			t.Errorf("sample %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestDecodeSamples_StereoDownmix(t *testing.T) {
	t.Parallel()

	// Frames: (16384, 0) and (-16384, -16384).
	wav := buildWAV(2, []int16{16384, 0, -16384, -16384})
	got, err := decodeSamples(wav)
	if err != nil {
		t.Fatalf("decodeSamples: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2 mono frames", len(got))
	}
	if !almostEqual(got[0], 0.25) || !almostEqual(got[1], -0.5) {
		t.Errorf("samples = %v, want [0.25 -0.5]", got)
	}
}

func TestDecodeSamples_RawPCM(t *testing.T) {
	t.Parallel()

	raw := make([]byte, 4)
	binary.LittleEndian.PutUint16(raw[0:], uint16(int16(16384)))
	binary.LittleEndian.PutUint16(raw[2:], uint16(int16(-16384)))

	got, err := decodeSamples(raw)
	if err != nil {
		t.Fatalf("decodeSamples: %v", err)
	}
	if len(got) != 2 || !almostEqual(got[0], 0.5) || !almostEqual(got[1], -0.5) {
		t.Errorf("samples = %v, want [0.5 -0.5]", got)
	}
}

func TestDecodeSamples_Empty(t *testing.T) {
	t.Parallel()

	got, err := decodeSamples(nil)
	if err != nil || got != nil {
		t.Fatalf("decodeSamples(nil) = (%v, %v), want (nil, nil)", got, err)
	}
}

func TestDecodeSamples_Undecodable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		wav  []byte
	}{
		{"truncated chunk", append([]byte("RIFF\x00\x00\x00\x00WAVEdata"), 0xff, 0xff, 0xff, 0x7f)},
		{"missing data chunk", appendChunk([]byte("RIFF\x00\x00\x00\x00WAVE"), "fmt ", make([]byte, 16))},
		{"short fmt chunk", appendChunk([]byte("RIFF\x00\x00\x00\x00WAVE"), "fmt ", make([]byte, 8))},
		{"single byte", []byte{0x42}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := decodeSamples(tt.wav)
			if !errors.Is(err, asr.ErrUndecodable) {
				t.Fatalf("decodeSamples error = %v, want ErrUndecodable", err)
			}
		})
	}
}

func TestDecodeSamples_FloatWAVRejected(t *testing.T) {
	t.Parallel()

	fmtChunk := make([]byte, 16)
	binary.LittleEndian.PutUint16(fmtChunk[0:], 3) // IEEE float
	binary.LittleEndian.PutUint16(fmtChunk[2:], 1)
	binary.LittleEndian.PutUint16(fmtChunk[14:], 32)

	wav := []byte("RIFF\x00\x00\x00\x00WAVE")
	wav = appendChunk(wav, "fmt ", fmtChunk)
	wav = appendChunk(wav, "data", make([]byte, 8))

	_, err := decodeSamples(wav)
	if !errors.Is(err, asr.ErrUndecodable) {
		t.Fatalf("decodeSamples error = %v, want ErrUndecodable for float WAV", err)
	}
}
