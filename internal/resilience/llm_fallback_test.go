package resilience

import (
	"context"
	"errors"
	"testing"

	"github.com/phonaid/phonaid/pkg/provider/llm"
	llmmock "github.com/phonaid/phonaid/pkg/provider/llm/mock"
)

func TestLLMFallback_FailsOver(t *testing.T) {
	t.Parallel()

	primary := &llmmock.Provider{CompleteErr: errBoom}
	backup := &llmmock.Provider{CompleteResponse: &llm.CompletionResponse{Content: "bɔ̃ʒuʁ"}}

	f := NewLLMFallback(primary, "anthropic", FallbackConfig{})
	f.AddFallback("openai", backup)

	got, err := f.Complete(context.Background(), llm.CompletionRequest{})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got.Content != "bɔ̃ʒuʁ" {
		t.Errorf("Content = %q, want bɔ̃ʒuʁ", got.Content)
	}
}

// A text-only primary rejecting audio is an ordinary failure; the request
// falls through to an audio-capable backup.
func TestLLMFallback_AudioRequestFallsThrough(t *testing.T) {
	t.Parallel()

	primary := &llmmock.Provider{CompleteErr: llm.ErrAudioNotSupported}
	backup := &llmmock.Provider{CompleteResponse: &llm.CompletionResponse{Content: "critique"}}

	f := NewLLMFallback(primary, "ollama", FallbackConfig{})
	f.AddFallback("openai", backup)

	got, err := f.Complete(context.Background(), llm.CompletionRequest{
		Audio: &llm.Audio{Data: []byte("wav"), Format: "wav"},
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got.Content != "critique" {
		t.Errorf("Content = %q, want the audio-capable backup's answer", got.Content)
	}
}

func TestLLMFallback_AllFail(t *testing.T) {
	t.Parallel()

	f := NewLLMFallback(&llmmock.Provider{CompleteErr: errBoom}, "a", FallbackConfig{})
	f.AddFallback("b", &llmmock.Provider{CompleteErr: errBoom})

	_, err := f.Complete(context.Background(), llm.CompletionRequest{})
	if !errors.Is(err, ErrAllFailed) {
		t.Fatalf("Complete error = %v, want ErrAllFailed", err)
	}
}
