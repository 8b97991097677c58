package app

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"go.opentelemetry.io/otel/metric/noop"

	"github.com/phonaid/phonaid/internal/attempt"
	"github.com/phonaid/phonaid/internal/observe"
	"github.com/phonaid/phonaid/internal/score"
	"github.com/phonaid/phonaid/internal/store/memstore"
	"github.com/phonaid/phonaid/pkg/blob"
	"github.com/phonaid/phonaid/pkg/provider/asr"
	asrmock "github.com/phonaid/phonaid/pkg/provider/asr/mock"
)

// stubResolver is a canned attempt.Resolver.
type stubResolver struct {
	ipa string
}

func (r *stubResolver) Resolve(context.Context, string, string) (string, error) {
	return r.ipa, nil
}

func newTestService(t *testing.T, rec asr.Recognizer, store *memstore.Store) *Service {
	t.Helper()

	blobs, err := blob.NewFSStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFSStore: %v", err)
	}
	metrics, err := observe.NewMetrics(noop.NewMeterProvider())
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	o := attempt.NewOrchestrator(blobs, rec, &stubResolver{ipa: "bɔ̃ʒuʁ"},
		score.NewClassifier(), store, attempt.WithMetrics(metrics))
	return New(o, store, nil)
}

func seedAttempts(t *testing.T, store *memstore.Store, flashcardID string, confidences ...float64) {
	t.Helper()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, c := range confidences {
		err := store.Insert(context.Background(), &attempt.Attempt{
			ID:                fmt.Sprintf("%s-%d", flashcardID, i),
			UserID:            "u1",
			FlashcardID:       flashcardID,
			OverallConfidence: c,
			CreatedAt:         base.Add(time.Duration(i) * time.Hour),
		})
		if err != nil {
			t.Fatalf("Insert: %v", err)
		}
	}
}

func TestAnalyzeAttempt(t *testing.T) {
	t.Parallel()

	store := memstore.New()
	rec := &asrmock.Recognizer{Result: &asr.Result{
		Transcript: "Bonjour",
		Words:      []asr.WordConfidence{{Word: "Bonjour", Confidence: 0.97}},
	}}
	svc := newTestService(t, rec, store)

	result, err := svc.AnalyzeAttempt(context.Background(), []byte("wav"), "Bonjour", "fr", "u1", "c1")
	if err != nil {
		t.Fatalf("AnalyzeAttempt: %v", err)
	}
	if result.OverallScore != 0.97 {
		t.Errorf("OverallScore = %v, want 0.97", result.OverallScore)
	}
	if _, err := store.Get(context.Background(), result.AttemptID); err != nil {
		t.Errorf("attempt not persisted: %v", err)
	}
}

func TestUserProgress(t *testing.T) {
	t.Parallel()

	store := memstore.New()
	seedAttempts(t, store, "c1", 0.5, 0.9)
	svc := newTestService(t, &asrmock.Recognizer{}, store)

	s, err := svc.UserProgress(context.Background(), "u1")
	if err != nil {
		t.Fatalf("UserProgress: %v", err)
	}
	if s.TotalAttempts != 2 {
		t.Errorf("TotalAttempts = %d, want 2", s.TotalAttempts)
	}
	if s.Trend != "+80.0%" {
		t.Errorf("Trend = %q, want +80.0%%", s.Trend)
	}

	empty, err := svc.UserProgress(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("UserProgress: %v", err)
	}
	if empty.TotalAttempts != 0 {
		t.Errorf("TotalAttempts = %d for an unknown user, want 0", empty.TotalAttempts)
	}
}

func TestFlashcardHistory_Pagination(t *testing.T) {
	t.Parallel()

	store := memstore.New()
	seedAttempts(t, store, "c1", 0.2, 0.4, 0.6, 0.8)
	svc := newTestService(t, &asrmock.Recognizer{}, store)

	h, err := svc.FlashcardHistory(context.Background(), "c1", 1, 2)
	if err != nil {
		t.Fatalf("FlashcardHistory: %v", err)
	}
	if h.TotalAttempts != 4 {
		t.Errorf("TotalAttempts = %d, want 4", h.TotalAttempts)
	}
	if len(h.Attempts) != 2 {
		t.Errorf("page size = %d, want 2", len(h.Attempts))
	}
	// The average covers the full history, not the page.
	if h.AvgConfidence != 0.5 {
		t.Errorf("AvgConfidence = %v, want 0.5", h.AvgConfidence)
	}
	if h.Pagination != (Pagination{Skip: 1, Limit: 2, Total: 4}) {
		t.Errorf("Pagination = %+v", h.Pagination)
	}
}

func TestFlashcardHistory_ClampsNegativeWindow(t *testing.T) {
	t.Parallel()

	store := memstore.New()
	seedAttempts(t, store, "c1", 0.5)
	svc := newTestService(t, &asrmock.Recognizer{}, store)

	h, err := svc.FlashcardHistory(context.Background(), "c1", -3, -1)
	if err != nil {
		t.Fatalf("FlashcardHistory: %v", err)
	}
	if h.Pagination.Skip != 0 || h.Pagination.Limit != 0 {
		t.Errorf("Pagination = %+v, want negative values clamped to 0", h.Pagination)
	}
	if len(h.Attempts) != 1 {
		t.Errorf("page size = %d, want 1", len(h.Attempts))
	}
}

func TestRunDeepAnalysis_DisabledWithoutLLM(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, &asrmock.Recognizer{}, memstore.New())

	_, err := svc.RunDeepAnalysis(context.Background(), "att-1", nil)
	if err == nil || !strings.Contains(err.Error(), "disabled") {
		t.Fatalf("RunDeepAnalysis error = %v, want the disabled message", err)
	}
}

func TestDiagnose(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, &asrmock.Recognizer{}, memstore.New())
	a := svc.Diagnose("e", "ɛ̃")
	if a.IsPerfect || len(a.Entries) != 1 {
		t.Errorf("alignment = %+v, want one substitution", a)
	}
}
