package analysis

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/phonaid/phonaid/internal/prompt"
	"github.com/phonaid/phonaid/pkg/provider/llm"
	llmmock "github.com/phonaid/phonaid/pkg/provider/llm/mock"
)

const validCritiqueJSON = `{
  "clarity_score": 0.8,
  "rhythm_assessment": "Pacing is even.",
  "issues": [{"description": "nasal vowel too open", "example": "bonjour"}],
  "top_issue": "nasal vowels",
  "drill": "Repeat bon-jour slowly five times."
}`

// stubTemplates is a canned prompt.Store.
type stubTemplates struct {
	template *prompt.Template
	err      error
}

func (s *stubTemplates) Lookup(ctx context.Context, kind prompt.Kind, language string) (*prompt.Template, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.template, nil
}

func TestCritique_ParsesValidResponse(t *testing.T) {
	t.Parallel()

	p := &llmmock.Provider{
		CompleteResponse: &llm.CompletionResponse{Content: validCritiqueJSON},
	}
	c := NewCritic(p, nil)

	got, err := c.Critique(context.Background(), []byte("wav"), "Bonjour", "fr")
	if err != nil {
		t.Fatalf("Critique: %v", err)
	}
	if got == nil {
		t.Fatal("Critique = nil, want a parsed critique")
	}
	if got.ClarityScore != 0.8 {
		t.Errorf("ClarityScore = %v, want 0.8", got.ClarityScore)
	}
	if len(got.Issues) != 1 || got.Issues[0].Example != "bonjour" {
		t.Errorf("Issues = %+v, want the bonjour issue", got.Issues)
	}

	req := p.Calls()[0].Req
	if req.Audio == nil || req.Audio.Format != "wav" {
		t.Errorf("Audio = %+v, want the wav recording attached", req.Audio)
	}
	if req.SystemPrompt == "" {
		t.Error("SystemPrompt is empty, want the critique prompt")
	}
}

func TestCritique_StripsMarkdownFences(t *testing.T) {
	t.Parallel()

	p := &llmmock.Provider{
		CompleteResponse: &llm.CompletionResponse{Content: "```json\n" + validCritiqueJSON + "\n```"},
	}
	c := NewCritic(p, nil)

	got, err := c.Critique(context.Background(), []byte("wav"), "Bonjour", "fr")
	if err != nil || got == nil {
		t.Fatalf("Critique = (%+v, %v), want fenced JSON parsed", got, err)
	}
}

func TestCritique_UnparseableIsNilNil(t *testing.T) {
	t.Parallel()

	p := &llmmock.Provider{
		CompleteResponse: &llm.CompletionResponse{Content: "I could not assess this recording, sorry."},
	}
	c := NewCritic(p, nil)

	got, err := c.Critique(context.Background(), []byte("wav"), "Bonjour", "fr")
	if err != nil {
		t.Fatalf("Critique error = %v, want nil for unparseable output", err)
	}
	if got != nil {
		t.Fatalf("Critique = %+v, want nil", got)
	}
}

func TestCritique_ClarityOutOfRangeRejected(t *testing.T) {
	t.Parallel()

	p := &llmmock.Provider{
		CompleteResponse: &llm.CompletionResponse{Content: `{"clarity_score": 7.5}`},
	}
	c := NewCritic(p, nil)

	got, err := c.Critique(context.Background(), []byte("wav"), "Bonjour", "fr")
	if err != nil || got != nil {
		t.Fatalf("Critique = (%+v, %v), want (nil, nil) for an out-of-range score", got, err)
	}
}

func TestCritique_ProviderErrorPropagates(t *testing.T) {
	t.Parallel()

	p := &llmmock.Provider{CompleteErr: errors.New("timeout")}
	c := NewCritic(p, nil)

	_, err := c.Critique(context.Background(), []byte("wav"), "Bonjour", "fr")
	if err == nil {
		t.Fatal("Critique error = nil, want the provider failure surfaced")
	}
}

func TestCritique_AppendsKnownInterferences(t *testing.T) {
	t.Parallel()

	p := &llmmock.Provider{
		CompleteResponse: &llm.CompletionResponse{Content: validCritiqueJSON},
	}
	store := &stubTemplates{template: &prompt.Template{
		Kind:               prompt.KindCritique,
		LanguageCode:       "fr",
		NativeLanguage:     "English",
		Text:               "Critique the French recording.",
		KnownInterferences: []string{"dropping nasal vowels", "aspirating initial p/t/k"},
	}}
	c := NewCritic(p, store)

	if _, err := c.Critique(context.Background(), []byte("wav"), "Bonjour", "fr"); err != nil {
		t.Fatalf("Critique: %v", err)
	}
	sys := p.Calls()[0].Req.SystemPrompt
	if !strings.Contains(sys, "English speakers") {
		t.Errorf("SystemPrompt = %q, want the learner population named", sys)
	}
	if !strings.Contains(sys, "dropping nasal vowels") {
		t.Errorf("SystemPrompt = %q, want the interference list appended", sys)
	}
}

func TestCritique_TemplateMissUsesGenericPrompt(t *testing.T) {
	t.Parallel()

	p := &llmmock.Provider{
		CompleteResponse: &llm.CompletionResponse{Content: validCritiqueJSON},
	}
	c := NewCritic(p, &stubTemplates{err: prompt.ErrNotFound})

	if _, err := c.Critique(context.Background(), []byte("wav"), "Bonjour", "fr"); err != nil {
		t.Fatalf("Critique: %v", err)
	}
	if !strings.Contains(p.Calls()[0].Req.SystemPrompt, "pronunciation coach") {
		t.Error("want the built-in generic critique prompt on a template miss")
	}
}
