// Package openai implements asr.Recognizer using the OpenAI audio
// transcription API (whisper-1 with verbose JSON output).
//
// The API reports per-segment average log-probabilities rather than per-word
// confidences, so each word inherits exp(avg_logprob) of its segment. This
// is coarser than whisper.cpp's token probabilities but keeps the word-score
// contract uniform across backends.
package openai

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	oai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/packages/param"

	"github.com/phonaid/phonaid/pkg/provider/asr"
)

// Compile-time interface assertion.
var _ asr.Recognizer = (*Recognizer)(nil)

// Recognizer implements asr.Recognizer using the OpenAI API.
type Recognizer struct {
	client oai.Client
	model  string
}

// config holds optional configuration for the recognizer.
type config struct {
	baseURL string
	timeout time.Duration
}

// Option is a functional option for Recognizer.
type Option func(*config)

// WithBaseURL overrides the default OpenAI API base URL.
func WithBaseURL(url string) Option {
	return func(c *config) {
		c.baseURL = url
	}
}

// WithTimeout sets a per-request HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		c.timeout = d
	}
}

// New constructs a new OpenAI Recognizer. model defaults to "whisper-1"
// when empty.
func New(apiKey string, model string, opts ...Option) (*Recognizer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai: apiKey must not be empty")
	}
	if model == "" {
		model = "whisper-1"
	}

	cfg := &config{}
	for _, o := range opts {
		o(cfg)
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
	}
	if cfg.baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.baseURL))
	}
	if cfg.timeout > 0 {
		reqOpts = append(reqOpts, option.WithHTTPClient(&http.Client{
			Timeout: cfg.timeout,
		}))
	}

	return &Recognizer{client: oai.NewClient(reqOpts...), model: model}, nil
}

// Recognize implements asr.Recognizer.
func (r *Recognizer) Recognize(ctx context.Context, audio []byte, language string) (*asr.Result, error) {
	if len(audio) == 0 {
		return nil, fmt.Errorf("openai: %w: empty audio", asr.ErrUndecodable)
	}

	params := oai.AudioTranscriptionNewParams{
		File:           oai.File(bytes.NewReader(audio), "attempt.wav", "audio/wav"),
		Model:          oai.AudioModel(r.model),
		ResponseFormat: oai.AudioResponseFormatVerboseJSON,
	}
	if language != "" {
		params.Language = param.NewOpt(language)
	}

	resp, err := r.client.Audio.Transcriptions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai: transcribe: %w", err)
	}

	result := &asr.Result{Transcript: strings.TrimSpace(resp.Text)}
	for _, seg := range resp.Segments {
		conf := math.Exp(seg.AvgLogprob)
		if conf > 1 {
			conf = 1
		}
		for _, w := range strings.Fields(seg.Text) {
			result.Words = append(result.Words, asr.WordConfidence{
				Word:       strings.Trim(w, ".,!?;:"),
				Confidence: conf,
			})
		}
	}

	return result, nil
}
