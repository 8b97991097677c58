// Package analysis implements the optional deep-analysis pass: an
// audio-capable model critiques a stored attempt's recording, the critique
// is cross-validated against the quantitative word confidences, and the
// reconciled result is attached to the attempt as its write-once
// enrichment.
//
// The pass runs outside the attempt pipeline, at any later time, against an
// attempt selected by id. A failed or unparseable critique leaves the base
// attempt untouched.
package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/phonaid/phonaid/internal/prompt"
	"github.com/phonaid/phonaid/pkg/provider/llm"
)

const (
	criticTemperature = 0.2
	criticMaxTokens   = 768
)

// genericCritiqueTemplate is the system prompt used when the template table
// has no active critique row for the attempt's language.
const genericCritiqueTemplate = `You are a pronunciation coach. You will receive a recording of a language learner saying a target phrase. Assess the pronunciation.

Rules:
- Judge only what you hear; do not invent problems.
- Each issue must name the exact word or phrase it refers to in the "example" field.
- Be concise: one sentence per field.

Respond with ONLY a JSON object in this exact format (no markdown, no prose):
{
  "clarity_score": <0.0-1.0>,
  "rhythm_assessment": "<one sentence on pacing and stress>",
  "issues": [
    {"description": "<what is wrong>", "example": "<the word or phrase affected>"}
  ],
  "top_issue": "<the single most impactful problem>",
  "drill": "<one concrete practice exercise>"
}

If the pronunciation is flawless, return an empty issues array.`

// Issue is one raw critique finding, before cross-validation.
type Issue struct {
	Description string `json:"description"`
	Example     string `json:"example"`
}

// Critique is the parsed model output.
type Critique struct {
	ClarityScore     float64 `json:"clarity_score"`
	RhythmAssessment string  `json:"rhythm_assessment"`
	Issues           []Issue `json:"issues"`
	TopIssue         string  `json:"top_issue"`
	Drill            string  `json:"drill"`
}

// Critic produces a qualitative pronunciation critique from a recording
// using an audio-capable [llm.Provider]. It is safe for concurrent use.
type Critic struct {
	llm       llm.Provider
	templates prompt.Store
}

// NewCritic returns a Critic backed by the given provider. templates may be
// nil, in which case the built-in generic critique prompt is always used.
func NewCritic(provider llm.Provider, templates prompt.Store) *Critic {
	return &Critic{llm: provider, templates: templates}
}

// Critique sends the recording to the model and parses its structured
// critique.
//
// When the model response is unparseable, Critique returns (nil, nil): a
// garbled critique must not fail deep analysis, the enrichment simply stays
// absent. Network and context errors are returned as non-nil errors.
func (c *Critic) Critique(ctx context.Context, audio []byte, targetText, language string) (*Critique, error) {
	req := llm.CompletionRequest{
		SystemPrompt: c.systemPrompt(ctx, language),
		Temperature:  criticTemperature,
		MaxTokens:    criticMaxTokens,
		Messages: []llm.Message{
			{Role: "user", Content: fmt.Sprintf("The learner was asked to say: %q (language: %s). Assess the attached recording.", targetText, language)},
		},
		Audio: &llm.Audio{Data: audio, Format: "wav"},
	}

	resp, err := c.llm.Complete(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("analysis: critique: %w", err)
	}

	critique, parseErr := parseCritique(resp.Content)
	if parseErr != nil {
		return nil, nil //nolint:nilerr // intentional graceful fallback
	}
	return critique, nil
}

// systemPrompt looks up the per-language critique template, appending the
// known interference patterns when the row lists any.
func (c *Critic) systemPrompt(ctx context.Context, language string) string {
	if c.templates == nil {
		return genericCritiqueTemplate
	}
	t, err := c.templates.Lookup(ctx, prompt.KindCritique, language)
	if err != nil {
		return genericCritiqueTemplate
	}

	body := t.Text
	if len(t.KnownInterferences) > 0 {
		var sb strings.Builder
		sb.WriteString(body)
		sb.WriteString("\n\nTypical problems for ")
		sb.WriteString(t.NativeLanguage)
		sb.WriteString(" speakers learning this language:\n")
		for _, k := range t.KnownInterferences {
			sb.WriteString("- ")
			sb.WriteString(k)
			sb.WriteByte('\n')
		}
		body = sb.String()
	}
	return body
}

// parseCritique unmarshals the model output, stripping markdown code fences
// first. A critique without a clarity score in [0, 1] is rejected.
func parseCritique(content string) (*Critique, error) {
	cleaned := stripMarkdown(content)

	var c Critique
	if err := json.Unmarshal([]byte(cleaned), &c); err != nil {
		return nil, fmt.Errorf("analysis: parse critique: %w", err)
	}
	if c.ClarityScore < 0 || c.ClarityScore > 1 {
		return nil, errors.New("analysis: clarity score out of range")
	}
	return &c, nil
}

// stripMarkdown removes optional markdown code fences (```json ... ```) that
// some models prepend and append to JSON output.
func stripMarkdown(s string) string {
	s = strings.TrimSpace(s)
	for _, prefix := range []string{"```json", "```"} {
		if after, ok := strings.CutPrefix(s, prefix); ok {
			s = after
			break
		}
	}
	if before, ok := strings.CutSuffix(s, "```"); ok {
		s = before
	}
	return strings.TrimSpace(s)
}
