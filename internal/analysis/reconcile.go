package analysis

import (
	"strings"

	"github.com/antzucaro/matchr"

	"github.com/phonaid/phonaid/internal/attempt"
	"github.com/phonaid/phonaid/internal/score"
)

const (
	defaultHighConfidenceThreshold = 0.90

	// defaultFuzzyThreshold is the Jaro-Winkler score above which an issue
	// example and a recognised word are considered the same word despite
	// spelling drift in the model output.
	defaultFuzzyThreshold = 0.85
)

// Reconciliation is the summary produced by cross-validating a critique
// against the quantitative word confidences.
type Reconciliation struct {
	// Issues is the annotated critique list, in input order.
	Issues []attempt.QualitativeIssue

	// SuppressedFlags lists issue examples the quantitative signal
	// contradicted: the recognizer found every matched word easy.
	SuppressedFlags []string

	// ConfirmedIssues lists issue examples both signals agreed on.
	ConfirmedIssues []string

	// HighConfidenceWords and LowConfidenceWords record the partition.
	HighConfidenceWords []string
	LowConfidenceWords  []string
}

// ReconcilerOption is a functional option for configuring a Reconciler.
type ReconcilerOption func(*Reconciler)

// WithHighConfidenceThreshold sets the exclusive lower bound of the
// high-confidence partition. Default: 0.90.
func WithHighConfidenceThreshold(t float64) ReconcilerOption {
	return func(r *Reconciler) {
		r.highConfidence = t
	}
}

// WithFuzzyThreshold sets the Jaro-Winkler score required for a fuzzy
// example-to-word match. Default: 0.85.
func WithFuzzyThreshold(t float64) ReconcilerOption {
	return func(r *Reconciler) {
		r.fuzzy = t
	}
}

// Reconciler cross-validates qualitative critique issues against the
// recognizer's per-word confidences.
//
// The two signals are independently noisy readings of the same recording:
// agreement corroborates an issue, disagreement (the critique flags a word
// the recognizer found easy) marks a likely false positive. Contradicted
// issues are kept but annotated and downgraded, never deleted.
type Reconciler struct {
	highConfidence float64
	fuzzy          float64
}

// NewReconciler returns a Reconciler configured with the supplied options.
func NewReconciler(opts ...ReconcilerOption) *Reconciler {
	r := &Reconciler{
		highConfidence: defaultHighConfidenceThreshold,
		fuzzy:          defaultFuzzyThreshold,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Reconcile partitions words at the high-confidence threshold, matches each
// issue's example text against both partitions, and annotates accordingly.
//
// An issue matching only high-confidence words gets a ConfidenceWarning and
// lands in SuppressedFlags; an issue matching any low-confidence word is
// marked CrossValidated and lands in ConfirmedIssues. An issue matching
// neither partition passes through unannotated.
func (r *Reconciler) Reconcile(issues []Issue, words []score.WordScore) *Reconciliation {
	out := &Reconciliation{
		Issues: make([]attempt.QualitativeIssue, 0, len(issues)),
	}

	var high, low []string
	for _, w := range words {
		if w.Confidence > r.highConfidence {
			high = append(high, w.Word)
		} else {
			low = append(low, w.Word)
		}
	}
	out.HighConfidenceWords = high
	out.LowConfidenceWords = low

	for _, issue := range issues {
		annotated := attempt.QualitativeIssue{
			Description: issue.Description,
			Example:     issue.Example,
		}

		inHigh := r.matchesAny(issue.Example, high)
		inLow := r.matchesAny(issue.Example, low)

		switch {
		case inLow:
			annotated.CrossValidated = true
			out.ConfirmedIssues = append(out.ConfirmedIssues, issue.Example)
		case inHigh:
			annotated.ConfidenceWarning = "the recognizer scored the named words as clearly pronounced; this finding may be a false positive"
			out.SuppressedFlags = append(out.SuppressedFlags, issue.Example)
		}

		out.Issues = append(out.Issues, annotated)
	}

	return out
}

// matchesAny reports whether example names any of the given words, by
// case-insensitive substring containment or by fuzzy per-token similarity.
func (r *Reconciler) matchesAny(example string, words []string) bool {
	ex := strings.ToLower(strings.TrimSpace(example))
	if ex == "" {
		return false
	}

	for _, w := range words {
		lw := strings.ToLower(w)
		if strings.Contains(ex, lw) {
			return true
		}
		for _, token := range strings.Fields(ex) {
			if matchr.JaroWinkler(token, lw, false) >= r.fuzzy {
				return true
			}
		}
	}
	return false
}
