package resilience

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/phonaid/phonaid/pkg/provider/asr"
	asrmock "github.com/phonaid/phonaid/pkg/provider/asr/mock"
)

func TestASRFallback_FailsOver(t *testing.T) {
	t.Parallel()

	primary := &asrmock.Recognizer{Err: errBoom}
	backup := &asrmock.Recognizer{Result: &asr.Result{Transcript: "bonjour"}}

	f := NewASRFallback(primary, "whisper", FallbackConfig{})
	f.AddFallback("openai", backup)

	got, err := f.Recognize(context.Background(), []byte("wav"), "fr")
	if err != nil {
		t.Fatalf("Recognize: %v", err)
	}
	if got.Transcript != "bonjour" {
		t.Errorf("Transcript = %q, want bonjour", got.Transcript)
	}
	if len(primary.Calls) != 1 || len(backup.Calls) != 1 {
		t.Errorf("calls = %d/%d, want 1/1", len(primary.Calls), len(backup.Calls))
	}
}

func TestASRFallback_UndecodableShortCircuits(t *testing.T) {
	t.Parallel()

	primary := &asrmock.Recognizer{Err: fmt.Errorf("%w: truncated header", asr.ErrUndecodable)}
	backup := &asrmock.Recognizer{Result: &asr.Result{Transcript: "should not be reached"}}

	f := NewASRFallback(primary, "whisper", FallbackConfig{})
	f.AddFallback("openai", backup)

	_, err := f.Recognize(context.Background(), []byte("not a wav"), "fr")
	if !errors.Is(err, asr.ErrUndecodable) {
		t.Fatalf("Recognize error = %v, want ErrUndecodable", err)
	}
	if len(backup.Calls) != 0 {
		t.Errorf("backup called %d times for undecodable audio, want 0", len(backup.Calls))
	}
}

func TestASRFallback_AllFail(t *testing.T) {
	t.Parallel()

	f := NewASRFallback(&asrmock.Recognizer{Err: errBoom}, "whisper", FallbackConfig{})
	f.AddFallback("openai", &asrmock.Recognizer{Err: errBoom})

	_, err := f.Recognize(context.Background(), []byte("wav"), "fr")
	if !errors.Is(err, ErrAllFailed) {
		t.Fatalf("Recognize error = %v, want ErrAllFailed", err)
	}
}
