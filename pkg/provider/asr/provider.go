// Package asr defines the Recognizer interface for batch speech-to-text
// backends.
//
// Unlike streaming conversational systems, a pronunciation attempt arrives
// as one complete recording, so the contract is a single one-shot call:
// audio bytes in, transcript plus per-word confidences out.
//
// Contract notes:
//
//   - Audio that decodes but contains no recognisable speech (silence,
//     noise, a wrong-language mumble) must yield an empty Result, not an
//     error. The scoring pipeline treats an empty transcript as a
//     zero-confidence attempt.
//   - Audio that cannot be decoded at all is a caller error and must be
//     reported as ErrUndecodable (possibly wrapped).
//
// Implementations must be safe for concurrent use.
package asr

import (
	"context"
	"errors"
)

// ErrUndecodable is returned when the supplied audio bytes are not in a
// format the recognizer can decode.
var ErrUndecodable = errors.New("asr: audio is not decodable")

// WordConfidence is one recognised word with its confidence score.
type WordConfidence struct {
	// Word is the recognised word, without surrounding whitespace.
	Word string

	// Confidence is the recognizer's confidence for this word in [0, 1].
	Confidence float64
}

// Result is the outcome of recognising one recording.
type Result struct {
	// Transcript is the full recognised text. Empty when no speech was
	// detected.
	Transcript string

	// Words holds per-word detail in spoken order. May be empty when the
	// backend reports no word-level data.
	Words []WordConfidence
}

// Recognizer is the abstraction over any batch speech-to-text backend.
type Recognizer interface {
	// Recognize transcribes a complete recording. language is a BCP-47
	// primary subtag ("en", "fr", "de"); an empty string lets the backend
	// auto-detect where supported.
	Recognize(ctx context.Context, audio []byte, language string) (*Result, error)
}
