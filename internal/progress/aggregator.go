// Package progress computes derived statistics over a learner's historical
// pronunciation attempts. Summaries are built on demand and never persisted.
package progress

import (
	"fmt"
	"sort"
	"strings"

	"github.com/phonaid/phonaid/internal/attempt"
)

// TrendInsufficientData is the trend sentinel when fewer than two attempts
// exist.
const TrendInsufficientData = "insufficient data"

// maxProblemWords caps the problem-word list.
const maxProblemWords = 10

// ProblemWord is one word the learner consistently struggles with.
type ProblemWord struct {
	Word          string  `json:"word"`
	AvgConfidence float64 `json:"avgConfidence"`
	Attempts      int     `json:"attempts"`
}

// Summary is the derived progress view over a set of attempts.
type Summary struct {
	TotalAttempts int `json:"totalAttempts"`

	// AvgConfidence is the mean of attempt-level overall confidences, or 0
	// when there are no attempts.
	AvgConfidence float64 `json:"avgConfidence"`

	// ProblemWords holds up to ten words with the lowest per-word mean
	// confidence, ascending.
	ProblemWords []ProblemWord `json:"problemWords"`

	// Trend is a signed percentage change of the later half of attempts
	// against the earlier half, or TrendInsufficientData.
	Trend string `json:"trend"`
}

// Summarize builds a Summary over attempts. The slice may arrive in any
// order; trend computation sorts a copy chronologically by CreatedAt.
func Summarize(attempts []*attempt.Attempt) *Summary {
	s := &Summary{
		TotalAttempts: len(attempts),
		Trend:         TrendInsufficientData,
	}
	if len(attempts) == 0 {
		return s
	}

	var sum float64
	for _, a := range attempts {
		sum += a.OverallConfidence
	}
	s.AvgConfidence = sum / float64(len(attempts))

	s.ProblemWords = problemWords(attempts)
	s.Trend = trend(attempts)
	return s
}

// wordStat accumulates confidences for one word across attempts.
type wordStat struct {
	word  string
	sum   float64
	count int
}

// problemWords returns the ten lowest-mean words across all word scores,
// ascending by mean. Words are folded case-insensitively so "Bonjour" and
// "bonjour" accumulate together.
func problemWords(attempts []*attempt.Attempt) []ProblemWord {
	stats := make(map[string]*wordStat)
	for _, a := range attempts {
		for _, w := range a.WordScores {
			key := strings.ToLower(w.Word)
			st, ok := stats[key]
			if !ok {
				st = &wordStat{word: w.Word}
				stats[key] = st
			}
			st.sum += w.Confidence
			st.count++
		}
	}

	words := make([]ProblemWord, 0, len(stats))
	for _, st := range stats {
		words = append(words, ProblemWord{
			Word:          st.word,
			AvgConfidence: st.sum / float64(st.count),
			Attempts:      st.count,
		})
	}

	sort.Slice(words, func(i, j int) bool {
		if words[i].AvgConfidence != words[j].AvgConfidence {
			return words[i].AvgConfidence < words[j].AvgConfidence
		}
		return words[i].Word < words[j].Word
	})

	if len(words) > maxProblemWords {
		words = words[:maxProblemWords]
	}
	return words
}

// trend splits the chronologically ordered attempts at the midpoint and
// expresses the later half's mean confidence as a signed percentage change
// against the earlier half's.
func trend(attempts []*attempt.Attempt) string {
	if len(attempts) < 2 {
		return TrendInsufficientData
	}

	ordered := make([]*attempt.Attempt, len(attempts))
	copy(ordered, attempts)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
	})

	mid := len(ordered) / 2
	earlier := mean(ordered[:mid])
	later := mean(ordered[mid:])

	if earlier == 0 {
		if later == 0 {
			return "+0.0%"
		}
		return TrendInsufficientData
	}

	change := (later - earlier) / earlier * 100
	return fmt.Sprintf("%+.1f%%", change)
}

func mean(attempts []*attempt.Attempt) float64 {
	if len(attempts) == 0 {
		return 0
	}
	var sum float64
	for _, a := range attempts {
		sum += a.OverallConfidence
	}
	return sum / float64(len(attempts))
}
