package resilience

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phonaid/phonaid/pkg/provider/asr"
)

// ASRFallback implements [asr.Recognizer] with automatic failover across
// multiple recognition backends. Each backend has its own circuit breaker.
type ASRFallback struct {
	group *FallbackGroup[asr.Recognizer]
}

// Compile-time interface assertion.
var _ asr.Recognizer = (*ASRFallback)(nil)

// NewASRFallback creates an [ASRFallback] with primary as the preferred
// backend.
func NewASRFallback(primary asr.Recognizer, primaryName string, cfg FallbackConfig) *ASRFallback {
	return &ASRFallback{
		group: NewFallbackGroup(primary, primaryName, cfg),
	}
}

// AddFallback registers an additional recognizer as a fallback.
func (f *ASRFallback) AddFallback(name string, recognizer asr.Recognizer) {
	f.group.AddFallback(name, recognizer)
}

// Recognize transcribes audio against the first healthy backend.
//
// An [asr.ErrUndecodable] error stops the failover immediately: if one
// backend cannot decode the bytes, neither can the rest, and retrying would
// only trip breakers on healthy providers.
func (f *ASRFallback) Recognize(ctx context.Context, audio []byte, language string) (*asr.Result, error) {
	var lastErr error
	for i := range f.group.entries {
		entry := &f.group.entries[i]
		var result *asr.Result
		err := entry.breaker.Execute(func() error {
			var innerErr error
			result, innerErr = entry.value.Recognize(ctx, audio, language)
			return innerErr
		})
		if err == nil {
			return result, nil
		}
		if errors.Is(err, asr.ErrUndecodable) {
			return nil, err
		}
		lastErr = err
		if errors.Is(err, ErrCircuitOpen) {
			slog.Debug("skipping provider (circuit open)", "provider", entry.name)
		} else {
			slog.Warn("provider failed, trying next",
				"provider", entry.name, "error", err)
		}
	}
	return nil, fmt.Errorf("%w: %v", ErrAllFailed, lastErr)
}
