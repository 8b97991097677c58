package ipa

import (
	"context"
	"errors"
	"testing"
)

// stubSource is a canned Source for resolver chain tests.
type stubSource struct {
	name   string
	result string
	err    error
	calls  int
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) Lookup(ctx context.Context, word, language string) (string, error) {
	s.calls++
	return s.result, s.err
}

func TestResolve_FirstSourceWins(t *testing.T) {
	t.Parallel()

	first := &stubSource{name: "first", result: "bɔ̃ʒuʁ"}
	second := &stubSource{name: "second", result: "wrong"}
	r := NewResolver(first, second)

	got, err := r.Resolve(context.Background(), "bonjour", "fr")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != "bɔ̃ʒuʁ" {
		t.Errorf("Resolve = %q, want bɔ̃ʒuʁ", got)
	}
	if second.calls != 0 {
		t.Errorf("second source called %d times, want 0", second.calls)
	}
}

func TestResolve_FallsThroughOnMiss(t *testing.T) {
	t.Parallel()

	first := &stubSource{name: "first", err: ErrNotFound}
	second := &stubSource{name: "second", result: "həˈloʊ"}
	r := NewResolver(first, second)

	got, err := r.Resolve(context.Background(), "hello", "en")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != "həˈloʊ" {
		t.Errorf("Resolve = %q, want həˈloʊ", got)
	}
}

func TestResolve_FallsThroughOnFailure(t *testing.T) {
	t.Parallel()

	first := &stubSource{name: "first", err: errors.New("connection refused")}
	second := &stubSource{name: "second", result: "teə"}
	r := NewResolver(first, second)

	got, err := r.Resolve(context.Background(), "tear", "en")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != "teə" {
		t.Errorf("Resolve = %q, want teə", got)
	}
}

func TestResolve_EmptyResultCountsAsMiss(t *testing.T) {
	t.Parallel()

	first := &stubSource{name: "first", result: ""}
	second := &stubSource{name: "second", result: "no"}
	r := NewResolver(first, second)

	got, err := r.Resolve(context.Background(), "no", "en")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != "no" {
		t.Errorf("Resolve = %q, want no", got)
	}
}

func TestResolve_ExhaustedReturnsUnavailable(t *testing.T) {
	t.Parallel()

	r := NewResolver(
		&stubSource{name: "first", err: ErrNotFound},
		&stubSource{name: "second", err: errors.New("boom")},
	)

	_, err := r.Resolve(context.Background(), "zyzzyva", "en")
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("Resolve error = %v, want ErrUnavailable", err)
	}
}

func TestResolve_NoSources(t *testing.T) {
	t.Parallel()

	_, err := NewResolver().Resolve(context.Background(), "word", "en")
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("Resolve error = %v, want ErrUnavailable", err)
	}
}

func TestResolve_CancelledContext(t *testing.T) {
	t.Parallel()

	src := &stubSource{name: "src", result: "x"}
	r := NewResolver(src)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Resolve(ctx, "word", "en")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Resolve error = %v, want context.Canceled", err)
	}
	if src.calls != 0 {
		t.Errorf("source called %d times after cancellation, want 0", src.calls)
	}
}
