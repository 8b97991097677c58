// Package prompt defines the per-language prompt template model shared by
// the generative IPA fallback and the deep-analysis critic.
//
// Templates live in an externally maintained table (see the postgres store)
// so that language teams can tune prompts without a redeploy. A lookup that
// finds no active row for the requested language falls back to the wildcard
// language "*"; when that is missing too, callers use their built-in generic
// template.
package prompt

import (
	"context"
	"errors"
)

// Kind selects which prompt family a template belongs to.
type Kind string

const (
	// KindIPA templates drive the generative phonemic-transcription fallback.
	KindIPA Kind = "ipa"

	// KindCritique templates drive the deep-analysis pronunciation critique.
	KindCritique Kind = "critique"
)

// WildcardLanguage matches any language code not covered by a dedicated row.
const WildcardLanguage = "*"

// ErrNotFound is returned when no active template matches a lookup.
var ErrNotFound = errors.New("prompt: no active template found")

// Template is one per-language prompt row.
type Template struct {
	// Kind is the prompt family this template belongs to.
	Kind Kind

	// LanguageCode is the BCP-47 primary subtag this template targets, or
	// WildcardLanguage.
	LanguageCode string

	// NativeLanguage names the learner population the prompt assumes
	// (e.g., "English"), used to surface typical interference patterns.
	NativeLanguage string

	// Text is the template body. IPA templates contain one %s verb for the
	// word; critique templates are used as the system prompt verbatim.
	Text string

	// KnownInterferences lists pronunciation pitfalls typical for
	// NativeLanguage speakers learning LanguageCode.
	KnownInterferences []string

	// Active rows participate in lookups; inactive rows are drafts.
	Active bool
}

// Store is the lookup contract over the template table.
//
// Implementations must return only active templates and must fall back to
// the WildcardLanguage row when the requested language has no dedicated
// active row, returning ErrNotFound when neither exists.
type Store interface {
	Lookup(ctx context.Context, kind Kind, languageCode string) (*Template, error)
}
