package attempt

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/errgroup"

	"github.com/phonaid/phonaid/internal/observe"
	"github.com/phonaid/phonaid/internal/phoneme"
	"github.com/phonaid/phonaid/internal/score"
	"github.com/phonaid/phonaid/pkg/blob"
	"github.com/phonaid/phonaid/pkg/provider/asr"
)

const (
	defaultASRTimeout = 30 * time.Second

	// defaultIPATimeout covers the whole resolver chain: the lexicon lookup
	// plus the generative fallback.
	defaultIPATimeout = 25 * time.Second

	// persistTimeout bounds the attempt-record insert that runs detached
	// from the caller's context.
	persistTimeout = 10 * time.Second
)

// Resolver is the slice of the IPA resolver the orchestrator needs.
type Resolver interface {
	Resolve(ctx context.Context, word, language string) (string, error)
}

// Option is a functional option for configuring an Orchestrator.
type Option func(*Orchestrator)

// WithASRTimeout bounds the transcription stage. Default: 30s.
func WithASRTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		o.asrTimeout = d
	}
}

// WithIPATimeout bounds the target-IPA resolution stage. Default: 25s.
func WithIPATimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		o.ipaTimeout = d
	}
}

// WithMetrics sets the metrics instance. Default: observe.DefaultMetrics().
func WithMetrics(m *observe.Metrics) Option {
	return func(o *Orchestrator) {
		o.metrics = m
	}
}

// WithClock overrides the time source (used in tests).
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		o.now = now
	}
}

// Orchestrator runs the attempt pipeline: store the recording, transcribe
// it and resolve the target's IPA concurrently, classify and score the
// recognised words, compose feedback, and persist the attempt.
//
// Only storage failures are fatal. A transcription or IPA failure degrades
// to an empty value so the learner still gets a partially informative
// result.
type Orchestrator struct {
	blobs    blob.Store
	asr      asr.Recognizer
	resolver Resolver
	class    *score.Classifier
	store    Store
	metrics  *observe.Metrics

	asrTimeout time.Duration
	ipaTimeout time.Duration
	now        func() time.Time
}

// NewOrchestrator wires the pipeline collaborators together.
func NewOrchestrator(blobs blob.Store, recognizer asr.Recognizer, resolver Resolver, class *score.Classifier, store Store, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		blobs:      blobs,
		asr:        recognizer,
		resolver:   resolver,
		class:      class,
		store:      store,
		asrTimeout: defaultASRTimeout,
		ipaTimeout: defaultIPATimeout,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.metrics == nil {
		o.metrics = observe.DefaultMetrics()
	}
	return o
}

// Process runs the full pipeline for one recording and returns the scored
// result. The returned error is always a storage failure (wrapped
// ErrStorage); every other degradation is absorbed into the result.
func (o *Orchestrator) Process(ctx context.Context, audio []byte, targetText, language, userID, flashcardID string) (*Result, error) {
	ctx, span := observe.StartSpan(ctx, "attempt.process")
	defer span.End()

	log := observe.Logger(ctx)
	start := o.now()
	createdAt := start.UTC()

	var (
		audioRef  string
		recResult *asr.Result
		ipaTarget string
	)

	// The upload, transcription, and IPA resolution are independent; they
	// run concurrently and only the upload can fail the pipeline.
	eg, egCtx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		path := audioPath(userID, flashcardID, createdAt)
		ref, err := o.blobs.Put(egCtx, path, audio, "audio/wav")
		if err != nil {
			return fmt.Errorf("%w: store audio: %v", ErrStorage, err)
		}
		audioRef = ref
		return nil
	})

	eg.Go(func() error {
		asrCtx, cancel := context.WithTimeout(egCtx, o.asrTimeout)
		defer cancel()

		asrStart := o.now()
		res, err := o.asr.Recognize(asrCtx, audio, language)
		o.metrics.ASRDuration.Record(ctx, o.now().Sub(asrStart).Seconds(),
			metric.WithAttributes(observe.Attr("language", language)))
		if err != nil {
			log.Warn("transcription degraded to empty", "error", err)
			o.metrics.RecordDegradedStage(ctx, "asr")
			recResult = &asr.Result{}
			return nil
		}
		recResult = res
		return nil
	})

	eg.Go(func() error {
		ipaCtx, cancel := context.WithTimeout(egCtx, o.ipaTimeout)
		defer cancel()

		result, err := o.resolver.Resolve(ipaCtx, targetText, language)
		if err != nil {
			log.Debug("target IPA unavailable", "target", targetText, "error", err)
			o.metrics.RecordDegradedStage(ctx, "ipa")
			return nil
		}
		ipaTarget = result
		return nil
	})

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	words := make([]score.WordScore, 0, len(recResult.Words))
	var sum float64
	for _, w := range recResult.Words {
		words = append(words, score.WordScore{
			Word:       w.Word,
			Confidence: w.Confidence,
			Status:     o.class.Classify(w.Confidence),
		})
		sum += w.Confidence
	}

	overall := 0.0
	if len(words) > 0 {
		overall = sum / float64(len(words))
	}

	feedback := score.ComposeFeedback(targetText, recResult.Transcript, words)

	a := &Attempt{
		ID:                uuid.NewString(),
		FlashcardID:       flashcardID,
		UserID:            userID,
		AudioRef:          audioRef,
		TargetText:        targetText,
		TranscribedText:   recResult.Transcript,
		Language:          language,
		OverallConfidence: overall,
		WordScores:        words,
		IPATarget:         ipaTarget,
		IPATranscribed:    o.transcribedIPA(ctx, targetText, recResult.Transcript, ipaTarget, language),
		CreatedAt:         createdAt,
	}

	// The recording is already durably stored, so the record is persisted
	// even if the caller has gone away by now.
	insertCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
	defer cancel()
	if err := o.store.Insert(insertCtx, a); err != nil {
		return nil, fmt.Errorf("%w: insert attempt: %v", ErrStorage, err)
	}

	o.metrics.RecordAttempt(ctx, language, o.now().Sub(start).Seconds())
	log.Info("attempt processed",
		"attempt_id", a.ID, "user_id", userID, "flashcard_id", flashcardID,
		"overall_confidence", overall, "words", len(words))

	return &Result{
		AttemptID:       a.ID,
		TargetText:      a.TargetText,
		TranscribedText: a.TranscribedText,
		OverallScore:    a.OverallConfidence,
		WordScores:      a.WordScores,
		IPATarget:       a.IPATarget,
		Feedback:        feedback,
	}, nil
}

// Diagnose tokenizes two IPA strings and aligns them. The alignment is
// ephemeral and never persisted.
func (o *Orchestrator) Diagnose(targetIPA, spokenIPA string) *phoneme.Alignment {
	return phoneme.Align(phoneme.Tokenize(targetIPA), phoneme.Tokenize(spokenIPA))
}

// transcribedIPA best-effort resolves the IPA of what was actually said.
// When the transcript matches the target, the target's transcription is
// reused; otherwise one more resolver call is made and any failure degrades
// to "".
func (o *Orchestrator) transcribedIPA(ctx context.Context, target, transcript, ipaTarget, language string) string {
	if transcript == "" {
		return ""
	}
	if strings.EqualFold(strings.TrimSpace(target), strings.TrimSpace(transcript)) {
		return ipaTarget
	}

	ipaCtx, cancel := context.WithTimeout(ctx, o.ipaTimeout)
	defer cancel()

	result, err := o.resolver.Resolve(ipaCtx, transcript, language)
	if err != nil {
		return ""
	}
	return result
}

// audioPath builds the deterministic blob path for a recording. Retrying an
// upload for the same attempt overwrites rather than duplicates.
func audioPath(userID, flashcardID string, at time.Time) string {
	return fmt.Sprintf("attempts/%s/%s/%d.wav", userID, flashcardID, at.UnixMilli())
}
