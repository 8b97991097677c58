// Package attempt holds the pronunciation-attempt model, the attempt store
// contract, and the orchestrator that turns one recording into a scored,
// persisted attempt.
package attempt

import (
	"time"

	"github.com/phonaid/phonaid/internal/score"
)

// Attempt is one persisted pronunciation attempt. Core fields are written
// exactly once by the orchestrator and are immutable afterwards; the
// Enrichment pointer is written at most once later by the deep-analysis
// pass.
type Attempt struct {
	// ID is the unique attempt identifier (UUID).
	ID string `json:"id"`

	// FlashcardID identifies the flashcard the learner practised.
	FlashcardID string `json:"flashcardId"`

	// UserID identifies the learner.
	UserID string `json:"userId"`

	// AudioRef is the opaque blob-store reference of the recording.
	AudioRef string `json:"audioRef"`

	// TargetText is the word or phrase the learner was asked to say.
	TargetText string `json:"targetText"`

	// TranscribedText is what the recognizer heard. Empty when no speech
	// was recognised.
	TranscribedText string `json:"transcribedText"`

	// Language is the BCP-47 primary subtag of the target language.
	Language string `json:"language"`

	// OverallConfidence is the mean of WordScores confidences, or 0 when
	// WordScores is empty.
	OverallConfidence float64 `json:"overallConfidence"`

	// WordScores holds the classified per-word confidences in spoken order.
	WordScores []score.WordScore `json:"wordScores"`

	// IPATarget is the phonemic transcription of TargetText, or "" when no
	// source produced one.
	IPATarget string `json:"ipaTarget,omitempty"`

	// IPATranscribed is the phonemic transcription of TranscribedText, or "".
	IPATranscribed string `json:"ipaTranscribed,omitempty"`

	// CreatedAt is when the orchestrator created the attempt.
	CreatedAt time.Time `json:"createdAt"`

	// Enrichment holds the deep-analysis critique, or nil when the attempt
	// has not been analysed.
	Enrichment *Enrichment `json:"enrichment,omitempty"`
}

// QualitativeIssue is one critique finding from the deep-analysis model,
// annotated by cross-validation against the quantitative word confidences.
type QualitativeIssue struct {
	// Description is the short free-text critique.
	Description string `json:"description"`

	// Example is the phrase or word the critique refers to.
	Example string `json:"example"`

	// CrossValidated is true when the quantitative signal agrees that the
	// named words were hard to recognise.
	CrossValidated bool `json:"crossValidated"`

	// ConfidenceWarning explains why the issue's weight was downgraded:
	// the recognizer found the named words easy. Empty when not downgraded.
	ConfidenceWarning string `json:"confidenceWarning,omitempty"`
}

// Enrichment is the write-once-late deep-analysis payload attached to an
// attempt.
type Enrichment struct {
	// ClarityScore is the critic's overall clarity rating in [0, 1].
	ClarityScore float64 `json:"clarityScore"`

	// RhythmAssessment is a one-line judgement of pacing and stress.
	RhythmAssessment string `json:"rhythmAssessment"`

	// Issues is the annotated critique list.
	Issues []QualitativeIssue `json:"issues"`

	// TopIssue names the single most impactful problem.
	TopIssue string `json:"topIssue"`

	// Drill is a concrete practice suggestion.
	Drill string `json:"drill"`

	// SuppressedFlags lists issue examples the quantitative signal
	// contradicted.
	SuppressedFlags []string `json:"suppressedFlags,omitempty"`

	// ConfirmedIssues lists issue examples both signals agreed on.
	ConfirmedIssues []string `json:"confirmedIssues,omitempty"`

	// HighConfidenceWords and LowConfidenceWords record the partition the
	// reconciliation ran against.
	HighConfidenceWords []string `json:"highConfidenceWords,omitempty"`
	LowConfidenceWords  []string `json:"lowConfidenceWords,omitempty"`

	// AnalyzedAt is when the deep-analysis pass ran.
	AnalyzedAt time.Time `json:"analyzedAt"`
}

// Result is what the orchestrator returns to the caller after processing
// one recording.
type Result struct {
	AttemptID       string            `json:"attemptId"`
	TargetText      string            `json:"targetText"`
	TranscribedText string            `json:"transcribedText"`
	OverallScore    float64           `json:"overallScore"`
	WordScores      []score.WordScore `json:"wordScores"`
	IPATarget       string            `json:"ipaTarget,omitempty"`
	Feedback        string            `json:"feedback"`
}
