// Package app wires the pipeline collaborators into the service surface the
// enclosing application consumes: analyze an attempt, query progress, page
// through flashcard history, and run deep analysis.
package app

import (
	"context"
	"fmt"

	"github.com/phonaid/phonaid/internal/analysis"
	"github.com/phonaid/phonaid/internal/attempt"
	"github.com/phonaid/phonaid/internal/phoneme"
	"github.com/phonaid/phonaid/internal/progress"
)

// Pagination describes the window a paged listing covers.
type Pagination struct {
	Skip  int `json:"skip"`
	Limit int `json:"limit"`
	Total int `json:"total"`
}

// FlashcardHistory is the paged attempt history of one flashcard.
type FlashcardHistory struct {
	TotalAttempts int                `json:"totalAttempts"`
	AvgConfidence float64            `json:"avgConfidence"`
	Attempts      []*attempt.Attempt `json:"attempts"`
	Pagination    Pagination         `json:"pagination"`
}

// Service is the application facade over the attempt pipeline, the attempt
// store, and the deep-analysis pass. Safe for concurrent use.
type Service struct {
	orchestrator *attempt.Orchestrator
	attempts     attempt.Store
	analysis     *analysis.Service
}

// New creates a Service. analysisService may be nil when no LLM provider is
// configured; RunDeepAnalysis then reports that deep analysis is disabled.
func New(orchestrator *attempt.Orchestrator, attempts attempt.Store, analysisService *analysis.Service) *Service {
	return &Service{
		orchestrator: orchestrator,
		attempts:     attempts,
		analysis:     analysisService,
	}
}

// AnalyzeAttempt runs the attempt pipeline for one recording.
func (s *Service) AnalyzeAttempt(ctx context.Context, audio []byte, targetText, language, userID, flashcardID string) (*attempt.Result, error) {
	return s.orchestrator.Process(ctx, audio, targetText, language, userID, flashcardID)
}

// UserProgress summarises a learner's full attempt history.
func (s *Service) UserProgress(ctx context.Context, userID string) (*progress.Summary, error) {
	attempts, err := s.attempts.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("app: list attempts for user %s: %w", userID, err)
	}
	return progress.Summarize(attempts), nil
}

// FlashcardHistory returns a page of one flashcard's attempts together with
// aggregate statistics over the whole history (not just the page).
func (s *Service) FlashcardHistory(ctx context.Context, flashcardID string, skip, limit int) (*FlashcardHistory, error) {
	if skip < 0 {
		skip = 0
	}
	if limit < 0 {
		limit = 0
	}

	total, err := s.attempts.CountByFlashcard(ctx, flashcardID)
	if err != nil {
		return nil, fmt.Errorf("app: count attempts for flashcard %s: %w", flashcardID, err)
	}

	page, err := s.attempts.ListByFlashcard(ctx, flashcardID, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("app: list attempts for flashcard %s: %w", flashcardID, err)
	}

	// The average covers all attempts, so a page deep in the history still
	// shows the flashcard's overall standing.
	all, err := s.attempts.ListByFlashcard(ctx, flashcardID, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("app: list attempts for flashcard %s: %w", flashcardID, err)
	}
	var sum float64
	for _, a := range all {
		sum += a.OverallConfidence
	}
	avg := 0.0
	if len(all) > 0 {
		avg = sum / float64(len(all))
	}

	return &FlashcardHistory{
		TotalAttempts: total,
		AvgConfidence: avg,
		Attempts:      page,
		Pagination:    Pagination{Skip: skip, Limit: limit, Total: total},
	}, nil
}

// RunDeepAnalysis critiques a stored attempt's recording and attaches the
// enrichment. audio may be nil; the stored recording is then used.
func (s *Service) RunDeepAnalysis(ctx context.Context, attemptID string, audio []byte) (*attempt.Enrichment, error) {
	if s.analysis == nil {
		return nil, fmt.Errorf("app: deep analysis is disabled (no LLM provider configured)")
	}
	return s.analysis.DeepAnalysis(ctx, attemptID, audio)
}

// Diagnose aligns two IPA strings phoneme by phoneme. Exposed for clients
// that render a per-phoneme diff of an attempt.
func (s *Service) Diagnose(targetIPA, spokenIPA string) *phoneme.Alignment {
	return s.orchestrator.Diagnose(targetIPA, spokenIPA)
}
