// Package mock provides a test double for the asr.Recognizer interface.
//
// Zero values cause Recognize to return an empty Result and nil error —
// equivalent to a recording with no detected speech.
package mock

import (
	"context"
	"sync"

	"github.com/phonaid/phonaid/pkg/provider/asr"
)

// RecognizeCall records a single invocation of Recognize.
type RecognizeCall struct {
	// Ctx is the context passed to Recognize.
	Ctx context.Context
	// Audio is the audio payload passed to Recognize.
	Audio []byte
	// Language is the language code passed to Recognize.
	Language string
}

// Recognizer is a mock implementation of asr.Recognizer.
type Recognizer struct {
	mu sync.Mutex

	// Result is returned from Recognize when RecognizeFunc is nil.
	Result *asr.Result

	// Err, if non-nil, is returned from Recognize instead of Result.
	Err error

	// RecognizeFunc, if non-nil, overrides the canned response entirely.
	RecognizeFunc func(ctx context.Context, audio []byte, language string) (*asr.Result, error)

	// Calls records every invocation of Recognize in order.
	Calls []RecognizeCall
}

// Compile-time interface assertion.
var _ asr.Recognizer = (*Recognizer)(nil)

// Recognize implements asr.Recognizer.
func (r *Recognizer) Recognize(ctx context.Context, audio []byte, language string) (*asr.Result, error) {
	r.mu.Lock()
	r.Calls = append(r.Calls, RecognizeCall{Ctx: ctx, Audio: audio, Language: language})
	fn := r.RecognizeFunc
	res := r.Result
	err := r.Err
	r.mu.Unlock()

	if fn != nil {
		return fn(ctx, audio, language)
	}
	if err != nil {
		return nil, err
	}
	if res == nil {
		return &asr.Result{}, nil
	}
	return res, nil
}
