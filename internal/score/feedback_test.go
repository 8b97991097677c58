package score

import (
	"strings"
	"testing"
)

func TestComposeFeedback_PerfectMatch(t *testing.T) {
	t.Parallel()

	words := []WordScore{{Word: "Bonjour", Confidence: 0.97, Status: StatusGood}}
	got := ComposeFeedback("Bonjour", "bonjour", words)
	if !strings.Contains(got, "Excellent") {
		t.Errorf("feedback = %q, want an excellent-style message", got)
	}
}

func TestComposeFeedback_NoWeakWords(t *testing.T) {
	t.Parallel()

	words := []WordScore{
		{Word: "good", Confidence: 0.9, Status: StatusGood},
		{Word: "morning", Confidence: 0.75, Status: StatusAcceptable},
	}
	got := ComposeFeedback("good morning everyone", "good morning", words)
	if !strings.Contains(got, "good morning") {
		t.Errorf("feedback = %q, want the transcript cited", got)
	}
}

func TestComposeFeedback_EmptyTranscript(t *testing.T) {
	t.Parallel()

	got := ComposeFeedback("Bonjour", "", nil)
	if !strings.Contains(got, "No speech") {
		t.Errorf("feedback = %q, want a no-speech message", got)
	}
}

func TestComposeFeedback_CitesWeakWords(t *testing.T) {
	t.Parallel()

	words := []WordScore{
		{Word: "je", Confidence: 0.95, Status: StatusGood},
		{Word: "voudrais", Confidence: 0.55, Status: StatusNeedsWork},
		{Word: "un", Confidence: 0.62, Status: StatusNeedsWork},
	}
	got := ComposeFeedback("je voudrais un café", "je voudrais un", words)

	if !strings.Contains(got, `"voudrais" (55%)`) {
		t.Errorf("feedback = %q, want voudrais cited at 55%%", got)
	}
	if !strings.Contains(got, `"un" (62%)`) {
		t.Errorf("feedback = %q, want un cited at 62%%", got)
	}
	if strings.Contains(got, "je") && strings.Contains(got, `"je"`) {
		t.Errorf("feedback = %q, good words should not be cited", got)
	}
}

func TestComposeFeedback_CitesAtMostThree(t *testing.T) {
	t.Parallel()

	words := []WordScore{
		{Word: "one", Confidence: 0.1, Status: StatusNeedsWork},
		{Word: "two", Confidence: 0.2, Status: StatusNeedsWork},
		{Word: "three", Confidence: 0.3, Status: StatusNeedsWork},
		{Word: "four", Confidence: 0.4, Status: StatusNeedsWork},
	}
	got := ComposeFeedback("one two three four", "won too tree for", words)
	if strings.Contains(got, `"four"`) {
		t.Errorf("feedback = %q, want only the first three weak words cited", got)
	}
	if !strings.Contains(got, `"three"`) {
		t.Errorf("feedback = %q, want the third weak word cited", got)
	}
}
