package ipa

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/phonaid/phonaid/internal/prompt"
	"github.com/phonaid/phonaid/pkg/provider/llm"
)

const (
	generativeTemperature = 0.0
	generativeMaxTokens   = 64

	// maxShortToken is the rune-length ceiling for accepting an ASCII-only
	// answer as a plausible transcription of a short word.
	maxShortToken = 12
)

// genericIPATemplate is the cross-language few-shot prompt used when the
// template table has no active row for the requested language. The single
// %s verb receives the word.
const genericIPATemplate = `You are a phonetician. Convert the given word to its broad IPA (International Phonetic Alphabet) transcription.

Examples:
word: hello -> transcription: həˈloʊ
word: bonjour -> transcription: bɔ̃ʒuʁ
word: danke -> transcription: ˈdaŋkə

Respond with ONLY the IPA transcription, no slashes, no brackets, no explanation.

word: %s -> transcription:`

// GenerativeSource produces phonemic transcriptions with a text-completion
// model when the lexicon has no entry. The prompt comes from the
// per-language template table; output is validated against a permissive
// phonetic-character check so that a model echoing prose in the wrong
// language is rejected rather than stored.
type GenerativeSource struct {
	llm       llm.Provider
	templates prompt.Store
}

// Compile-time interface assertion.
var _ Source = (*GenerativeSource)(nil)

// NewGenerativeSource creates a GenerativeSource. templates may be nil, in
// which case the built-in generic template is always used.
func NewGenerativeSource(provider llm.Provider, templates prompt.Store) *GenerativeSource {
	return &GenerativeSource{llm: provider, templates: templates}
}

// Name implements Source.
func (s *GenerativeSource) Name() string { return "generative" }

// Lookup implements Source. A completion that fails validation is treated
// as a silent miss (ErrNotFound): an invalid transcription is worth less
// than none.
func (s *GenerativeSource) Lookup(ctx context.Context, word, language string) (string, error) {
	body := s.templateFor(ctx, language)

	resp, err := s.llm.Complete(ctx, llm.CompletionRequest{
		Temperature: generativeTemperature,
		MaxTokens:   generativeMaxTokens,
		Messages: []llm.Message{
			{Role: "user", Content: fmt.Sprintf(body, word)},
		},
	})
	if err != nil {
		return "", fmt.Errorf("ipa: generative lookup: %w", err)
	}

	candidate := cleanTranscription(resp.Content)
	if !plausibleIPA(candidate) {
		return "", fmt.Errorf("%w: generative output rejected", ErrNotFound)
	}
	return candidate, nil
}

// templateFor fetches the active template for language, falling back to the
// built-in generic template on any miss or store failure.
func (s *GenerativeSource) templateFor(ctx context.Context, language string) string {
	if s.templates == nil {
		return genericIPATemplate
	}
	t, err := s.templates.Lookup(ctx, prompt.KindIPA, language)
	if err != nil {
		if !errors.Is(err, prompt.ErrNotFound) {
			// Store trouble must not block resolution; the generic
			// template is always good enough to try.
			return genericIPATemplate
		}
		return genericIPATemplate
	}
	return t.Text
}

// ipaGlyphs holds code points that occur in IPA transcriptions but not in
// ordinary prose of the major Latin-script languages. One of these in the
// output is strong evidence the model actually transcribed.
const ipaGlyphs = "ɐɑɒæɓʙβɔɕçɗɖðʤəɘɚɛɜɝɞɟʄɡɠɢʛɦɧħɥʜɨɪʝɭɬɫɮʟɱɯɰŋɳɲɴøɵɸθœɶʘɹɺɾɻʀʁɽʂʃʈʧʉʊʋⱱʌɣɤʍχʎʏʑʐʒʔʡʕʢǀǁǂǃˈˌːˑ"

// plausibleIPA is the permissive validation gate for generative output:
// the candidate must contain at least one recognisable IPA glyph (including
// combining diacritics), or otherwise be a single short alphabetic token —
// short real words ("no", "tea") can have all-ASCII transcriptions.
func plausibleIPA(s string) bool {
	if s == "" {
		return false
	}

	for _, r := range s {
		if strings.ContainsRune(ipaGlyphs, r) || unicode.Is(unicode.Mn, r) {
			return true
		}
	}

	// No IPA-specific glyph: accept only a short bare token.
	if strings.ContainsFunc(s, unicode.IsSpace) {
		return false
	}
	if utf8.RuneCountInString(s) > maxShortToken {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
