// Package whisper implements asr.Recognizer using the whisper.cpp CGO
// bindings. The whisper.cpp static library (libwhisper.a) and headers
// (whisper.h) must be available at link time via LIBRARY_PATH and
// C_INCLUDE_PATH environment variables.
//
// The model is loaded once in New and shared across all Recognize calls;
// each call creates its own whisper context, so concurrent recognition is
// safe.
package whisper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	whisperlib "github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"

	"github.com/phonaid/phonaid/pkg/provider/asr"
)

const (
	defaultLanguage   = "en"
	defaultSampleRate = 16000
)

// Compile-time assertion that Recognizer satisfies asr.Recognizer.
var _ asr.Recognizer = (*Recognizer)(nil)

// Recognizer is a batch whisper.cpp recognizer.
type Recognizer struct {
	model    whisperlib.Model
	language string
}

// Option is a functional option for configuring a Recognizer.
type Option func(*Recognizer)

// WithLanguage sets the default language used when Recognize is called with
// an empty language code. Defaults to "en".
func WithLanguage(lang string) Option {
	return func(r *Recognizer) { r.language = lang }
}

// New creates a Recognizer that loads the whisper.cpp model from the given
// file path. The caller must call Close when the recognizer is no longer
// needed.
func New(modelPath string, opts ...Option) (*Recognizer, error) {
	if modelPath == "" {
		return nil, errors.New("whisper: modelPath must not be empty")
	}
	model, err := whisperlib.New(modelPath)
	if err != nil {
		return nil, fmt.Errorf("whisper: load model %q: %w", modelPath, err)
	}

	r := &Recognizer{
		model:    model,
		language: defaultLanguage,
	}
	for _, o := range opts {
		o(r)
	}
	return r, nil
}

// Close releases the whisper model.
func (r *Recognizer) Close() error {
	if r.model != nil {
		return r.model.Close()
	}
	return nil
}

// Recognize implements asr.Recognizer.
//
// audio must be a 16-bit little-endian PCM WAV file, or raw 16 kHz mono
// 16-bit PCM. Undecodable input is reported as asr.ErrUndecodable; decodable
// audio with no detected speech yields an empty Result.
func (r *Recognizer) Recognize(ctx context.Context, audio []byte, language string) (*asr.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("whisper: context already cancelled: %w", err)
	}

	samples, err := decodeSamples(audio)
	if err != nil {
		return nil, fmt.Errorf("whisper: %w", err)
	}
	if len(samples) == 0 {
		return &asr.Result{}, nil
	}

	lang := language
	if lang == "" {
		lang = r.language
	}

	// Each whisper context is single-use and not thread-safe; the model
	// itself can be shared across goroutines.
	wctx, err := r.model.NewContext()
	if err != nil {
		return nil, fmt.Errorf("whisper: create context: %w", err)
	}
	if err := wctx.SetLanguage(lang); err != nil {
		return nil, fmt.Errorf("whisper: set language %q: %w", lang, err)
	}
	wctx.SetTokenTimestamps(true)

	if err := wctx.Process(samples, nil, nil, nil); err != nil {
		return nil, fmt.Errorf("whisper: process audio: %w", err)
	}

	result := &asr.Result{}
	var parts []string
	for {
		segment, err := wctx.NextSegment()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("whisper: read segment: %w", err)
		}

		text := strings.TrimSpace(segment.Text)
		if text == "" {
			continue
		}
		parts = append(parts, text)
		result.Words = append(result.Words, wordsFromTokens(segment.Tokens)...)
	}
	result.Transcript = strings.Join(parts, " ")

	return result, nil
}

// wordsFromTokens regroups whisper sub-word tokens into whole words and
// averages the token probabilities of each word. Special marker tokens
// ("[_BEG_]", "[_TT_...]") are skipped.
func wordsFromTokens(tokens []whisperlib.Token) []asr.WordConfidence {
	var (
		words   []asr.WordConfidence
		current strings.Builder
		probSum float64
		nTokens int
	)

	flush := func() {
		w := strings.TrimSpace(current.String())
		if w != "" && nTokens > 0 {
			words = append(words, asr.WordConfidence{
				Word:       strings.Trim(w, ".,!?;:"),
				Confidence: probSum / float64(nTokens),
			})
		}
		current.Reset()
		probSum = 0
		nTokens = 0
	}

	for _, tok := range tokens {
		if strings.HasPrefix(tok.Text, "[") && strings.HasSuffix(tok.Text, "]") {
			continue
		}
		// A leading space marks a word boundary in whisper's BPE output.
		if strings.HasPrefix(tok.Text, " ") {
			flush()
		}
		current.WriteString(tok.Text)
		probSum += float64(tok.P)
		nTokens++
	}
	flush()

	return words
}
