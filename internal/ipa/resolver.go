// Package ipa resolves a word or short phrase to its phonemic (IPA)
// transcription through an ordered chain of sources.
//
// The default chain tries a community lexicon first and falls back to a
// generative model with a per-language few-shot prompt. Sources are tried
// in registration order and the first success wins — a plain
// chain-of-responsibility with no shared state.
//
// The resolver holds no cache: resolution is idempotent per (word,
// language) and callers or external stores own any caching.
package ipa

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// ErrNotFound is the authoritative miss: the source looked and the word is
// not there. The resolver moves on to the next source.
var ErrNotFound = errors.New("ipa: transcription not found")

// ErrUnavailable is returned by Resolve when every source either missed or
// failed. Callers treat it as "no IPA for this attempt", never as fatal.
var ErrUnavailable = errors.New("ipa: no source produced a transcription")

// Source is one strategy for looking up a phonemic transcription.
//
// Lookup returns the bare IPA string (no surrounding slashes or brackets).
// An authoritative miss is ErrNotFound; any other error is a source
// failure. Implementations must be safe for concurrent use.
type Source interface {
	// Name identifies the source in logs.
	Name() string

	Lookup(ctx context.Context, word, language string) (string, error)
}

// Resolver tries each configured Source in order.
type Resolver struct {
	sources []Source
}

// NewResolver creates a Resolver over the given sources, tried in order.
func NewResolver(sources ...Source) *Resolver {
	return &Resolver{sources: sources}
}

// Resolve returns the first transcription any source produces.
//
// A source miss or failure never aborts the chain — failures are logged and
// the next source is tried. When the chain is exhausted, Resolve returns
// ErrUnavailable wrapped with the last error, and the caller degrades to a
// null transcription.
func (r *Resolver) Resolve(ctx context.Context, word, language string) (string, error) {
	var lastErr error = ErrNotFound

	for _, src := range r.sources {
		if err := ctx.Err(); err != nil {
			return "", fmt.Errorf("ipa: resolve %q: %w", word, err)
		}

		result, err := src.Lookup(ctx, word, language)
		if err == nil && result != "" {
			return result, nil
		}
		if err == nil {
			err = ErrNotFound
		}
		lastErr = err

		if errors.Is(err, ErrNotFound) {
			slog.Debug("ipa source miss", "source", src.Name(), "word", word, "language", language)
		} else {
			slog.Warn("ipa source failed, trying next",
				"source", src.Name(), "word", word, "language", language, "error", err)
		}
	}

	return "", fmt.Errorf("%w: %v", ErrUnavailable, lastErr)
}
