package ipa

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultLexiconTimeout = 10 * time.Second
)

// LexiconSource looks up phonemic transcriptions in a community dictionary
// service exposing entries per language, in the shape of the free
// dictionary API: GET {base}/{language}/{word} returns a JSON array of
// entries carrying phonetic strings.
type LexiconSource struct {
	baseURL string
	client  *http.Client
}

// Compile-time interface assertion.
var _ Source = (*LexiconSource)(nil)

// LexiconOption is a functional option for configuring a LexiconSource.
type LexiconOption func(*LexiconSource)

// WithLexiconTimeout sets the per-request HTTP timeout. Default: 10s.
func WithLexiconTimeout(d time.Duration) LexiconOption {
	return func(s *LexiconSource) {
		s.client.Timeout = d
	}
}

// WithLexiconHTTPClient replaces the HTTP client entirely (used in tests).
func WithLexiconHTTPClient(c *http.Client) LexiconOption {
	return func(s *LexiconSource) {
		s.client = c
	}
}

// NewLexiconSource creates a LexiconSource against baseURL.
func NewLexiconSource(baseURL string, opts ...LexiconOption) (*LexiconSource, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("ipa: lexicon baseURL must not be empty")
	}
	s := &LexiconSource{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: defaultLexiconTimeout},
	}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

// Name implements Source.
func (s *LexiconSource) Name() string { return "lexicon" }

// lexiconEntry mirrors the subset of the dictionary response we consume.
type lexiconEntry struct {
	Phonetic  string `json:"phonetic"`
	Phonetics []struct {
		Text string `json:"text"`
	} `json:"phonetics"`
}

// Lookup implements Source. The lookup is read-only and idempotent, so a
// transport failure is retried exactly once before giving up; an HTTP 404
// is an authoritative miss and is not retried.
func (s *LexiconSource) Lookup(ctx context.Context, word, language string) (string, error) {
	result, err := s.fetch(ctx, word, language)
	if err != nil && !isAuthoritative(err) && ctx.Err() == nil {
		result, err = s.fetch(ctx, word, language)
	}
	return result, err
}

func (s *LexiconSource) fetch(ctx context.Context, word, language string) (string, error) {
	u := fmt.Sprintf("%s/%s/%s", s.baseURL, url.PathEscape(language), url.PathEscape(word))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", fmt.Errorf("ipa: lexicon request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("ipa: lexicon call: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return "", ErrNotFound
	case resp.StatusCode != http.StatusOK:
		return "", fmt.Errorf("ipa: lexicon returned status %d", resp.StatusCode)
	}

	var entries []lexiconEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return "", fmt.Errorf("ipa: decode lexicon response: %w", err)
	}

	for _, e := range entries {
		if t := cleanTranscription(e.Phonetic); t != "" {
			return t, nil
		}
		for _, p := range e.Phonetics {
			if t := cleanTranscription(p.Text); t != "" {
				return t, nil
			}
		}
	}
	return "", ErrNotFound
}

// isAuthoritative reports whether err is a definitive miss rather than a
// transient failure worth one retry.
func isAuthoritative(err error) bool {
	return err == nil || errors.Is(err, ErrNotFound)
}

// cleanTranscription strips transcription delimiters and whitespace from a
// dictionary phonetic string.
func cleanTranscription(s string) string {
	return strings.Trim(strings.TrimSpace(s), "/[]")
}
