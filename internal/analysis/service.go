package analysis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/metric"

	"github.com/phonaid/phonaid/internal/attempt"
	"github.com/phonaid/phonaid/internal/observe"
	"github.com/phonaid/phonaid/pkg/blob"
)

// defaultAnalysisTimeout bounds the critique call.
const defaultAnalysisTimeout = 60 * time.Second

// ServiceOption is a functional option for configuring a Service.
type ServiceOption func(*Service)

// WithAnalysisTimeout bounds the critique call. Default: 60s.
func WithAnalysisTimeout(d time.Duration) ServiceOption {
	return func(s *Service) {
		s.timeout = d
	}
}

// WithServiceMetrics sets the metrics instance. Default: observe.DefaultMetrics().
func WithServiceMetrics(m *observe.Metrics) ServiceOption {
	return func(s *Service) {
		s.metrics = m
	}
}

// Service runs the deep-analysis pass end to end: fetch the attempt,
// critique the recording, reconcile, and attach the enrichment.
type Service struct {
	critic     *Critic
	reconciler *Reconciler
	attempts   attempt.Store
	blobs      blob.Store
	metrics    *observe.Metrics
	timeout    time.Duration
}

// NewService wires the deep-analysis collaborators together.
func NewService(critic *Critic, reconciler *Reconciler, attempts attempt.Store, blobs blob.Store, opts ...ServiceOption) *Service {
	s := &Service{
		critic:     critic,
		reconciler: reconciler,
		attempts:   attempts,
		blobs:      blobs,
		timeout:    defaultAnalysisTimeout,
	}
	for _, o := range opts {
		o(s)
	}
	if s.metrics == nil {
		s.metrics = observe.DefaultMetrics()
	}
	return s
}

// DeepAnalysis critiques the recording of a stored attempt and attaches the
// reconciled enrichment to it.
//
// audio may be nil, in which case the recording is fetched from the blob
// store via the attempt's AudioRef. A failed or unparseable critique
// returns (nil, nil) and leaves the attempt untouched; an attempt that was
// already enriched returns its stored enrichment unchanged.
func (s *Service) DeepAnalysis(ctx context.Context, attemptID string, audio []byte) (*attempt.Enrichment, error) {
	ctx, span := observe.StartSpan(ctx, "analysis.deep")
	defer span.End()

	log := observe.Logger(ctx)

	a, err := s.attempts.Get(ctx, attemptID)
	if err != nil {
		return nil, fmt.Errorf("analysis: load attempt %s: %w", attemptID, err)
	}
	if a.Enrichment != nil {
		return a.Enrichment, nil
	}

	if audio == nil {
		audio, err = s.blobs.Get(ctx, a.AudioRef)
		if err != nil {
			return nil, fmt.Errorf("analysis: fetch recording %s: %w", a.AudioRef, err)
		}
	}

	critCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	critique, err := s.critic.Critique(critCtx, audio, a.TargetText, a.Language)
	s.metrics.AnalysisDuration.Record(ctx, time.Since(start).Seconds(),
		metric.WithAttributes(observe.Attr("language", a.Language)))
	if err != nil {
		log.Warn("deep analysis degraded, enrichment skipped", "attempt_id", attemptID, "error", err)
		return nil, nil
	}
	if critique == nil {
		log.Warn("critique unparseable, enrichment skipped", "attempt_id", attemptID)
		return nil, nil
	}

	rec := s.reconciler.Reconcile(critique.Issues, a.WordScores)

	e := &attempt.Enrichment{
		ClarityScore:        critique.ClarityScore,
		RhythmAssessment:    critique.RhythmAssessment,
		Issues:              rec.Issues,
		TopIssue:            critique.TopIssue,
		Drill:               critique.Drill,
		SuppressedFlags:     rec.SuppressedFlags,
		ConfirmedIssues:     rec.ConfirmedIssues,
		HighConfidenceWords: rec.HighConfidenceWords,
		LowConfidenceWords:  rec.LowConfidenceWords,
		AnalyzedAt:          time.Now().UTC(),
	}

	if err := s.attempts.Enrich(ctx, attemptID, e); err != nil {
		if errors.Is(err, attempt.ErrAlreadyEnriched) {
			// A concurrent pass won the write-once race; keep its result.
			stored, getErr := s.attempts.Get(ctx, attemptID)
			if getErr == nil && stored.Enrichment != nil {
				return stored.Enrichment, nil
			}
			return nil, nil
		}
		return nil, fmt.Errorf("analysis: enrich attempt %s: %w", attemptID, err)
	}

	log.Info("attempt enriched",
		"attempt_id", attemptID,
		"issues", len(rec.Issues),
		"confirmed", len(rec.ConfirmedIssues),
		"suppressed", len(rec.SuppressedFlags))

	return e, nil
}
