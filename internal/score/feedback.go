package score

import (
	"fmt"
	"math"
	"strings"
)

// maxCitedWords caps how many needs_work words the feedback line names.
const maxCitedWords = 3

// ComposeFeedback builds the one-line message shown to the learner.
//
//   - Transcript equal to the target (case-insensitive, ignoring surrounding
//     whitespace) → an encouraging all-words-recognised message.
//   - No word classified needs_work → a "matches well" message citing the
//     transcript.
//   - Otherwise → the first three needs_work words with their confidence
//     rounded to a whole percentage.
func ComposeFeedback(target, transcript string, words []WordScore) string {
	t := strings.TrimSpace(target)
	h := strings.TrimSpace(transcript)

	if h != "" && strings.EqualFold(t, h) {
		return fmt.Sprintf("Excellent! Every word of %q was recognised clearly.", t)
	}

	var weak []WordScore
	for _, w := range words {
		if w.Status == StatusNeedsWork {
			weak = append(weak, w)
		}
	}

	if len(weak) == 0 {
		if h == "" {
			return fmt.Sprintf("No speech was recognised. Try saying %q again, a little closer to the microphone.", t)
		}
		return fmt.Sprintf("Good attempt — %q matches the target well.", h)
	}

	cited := weak
	if len(cited) > maxCitedWords {
		cited = cited[:maxCitedWords]
	}
	parts := make([]string, 0, len(cited))
	for _, w := range cited {
		parts = append(parts, fmt.Sprintf("%q (%d%%)", w.Word, int(math.Round(w.Confidence*100))))
	}

	return fmt.Sprintf("Keep practising %s — focus on these words next time.", strings.Join(parts, ", "))
}
