// Package phoneme implements IPA phoneme tokenization and sequence
// alignment, the diagnostic core of phonaid.
//
// Tokenize splits an IPA string into perceptually distinct phoneme units; a
// unit may span several Unicode code points (an affricate with a tie bar, a
// nasalised vowel). Align then computes a minimum-edit alignment between a
// target and a spoken token sequence and annotates substitutions with
// corrective tips from a table of known cross-linguistic confusions.
//
// Both operations are pure, deterministic, and total: they never fail on
// malformed input.
package phoneme

import "unicode"

// tieBar is U+0361 COMBINING DOUBLE INVERTED BREVE, the IPA affricate /
// double-articulation linker.
const tieBar = '͡'

// threeRune lists multi-codepoint phonemes spelled with exactly three runes:
// tie-bar affricates and tie-bar affricates of the palatal series.
var threeRune = map[string]struct{}{
	"t͡ʃ": {},
	"d͡ʒ": {},
	"t͡s": {},
	"d͡z": {},
	"t͡ɕ": {},
	"d͡ʑ": {},
	"k͡p": {},
	"ɡ͡b": {},
}

// twoRune lists two-rune phonemes: tie-less affricates and the common
// closing/centring diphthongs. Base-plus-combining-diacritic pairs (ɛ̃, ã)
// are not listed — the scanner attaches trailing combining marks to their
// base generically.
var twoRune = map[string]struct{}{
	"tʃ": {},
	"dʒ": {},
	"ts": {},
	"dz": {},
	"tɕ": {},
	"dʑ": {},
	"pf": {},
	"aɪ": {},
	"aʊ": {},
	"ɔɪ": {},
	"eɪ": {},
	"oʊ": {},
	"əʊ": {},
	"ɪə": {},
	"eə": {},
	"ʊə": {},
	"ɔʏ": {},
}

// skippable runes are consumed without ever appearing in a token: stress
// marks, length marks, syllable separators, transcription delimiters, and
// whitespace.
func skippable(r rune) bool {
	switch r {
	case 'ˈ', 'ˌ', 'ː', 'ˑ', '.', '|', '‖', '‿', '/', '[', ']', '(', ')':
		return true
	}
	return unicode.IsSpace(r)
}

// Tokenize splits an IPA string into phoneme tokens using a greedy
// longest-match-first scan: a three-rune spelling is preferred over a
// two-rune one, which is preferred over a single rune. Trailing combining
// diacritics (nasalisation, tone marks) always attach to the preceding base
// and never start a token of their own. Unrecognised runes are emitted as
// singleton tokens, so the scan is total and always consumes its input.
func Tokenize(ipa string) []string {
	runes := []rune(ipa)
	tokens := make([]string, 0, len(runes))

	i := 0
	for i < len(runes) {
		if skippable(runes[i]) {
			i++
			continue
		}

		n := 1
		if i+3 <= len(runes) {
			if _, ok := threeRune[string(runes[i:i+3])]; ok {
				n = 3
			}
		}
		if n == 1 && i+2 < len(runes) && runes[i+1] == tieBar {
			// Unlisted tie-bar combination: still one articulation.
			n = 3
		}
		if n == 1 && i+2 <= len(runes) {
			if _, ok := twoRune[string(runes[i:i+2])]; ok {
				n = 2
			}
		}

		// Attach trailing combining marks to the base just consumed. A tie
		// bar in that position links the next base as well.
		j := i + n
		for j < len(runes) && unicode.Is(unicode.Mn, runes[j]) {
			if runes[j] == tieBar && j+1 < len(runes) {
				j += 2
			} else {
				j++
			}
		}

		tokens = append(tokens, string(runes[i:j]))
		i = j
	}

	return tokens
}
