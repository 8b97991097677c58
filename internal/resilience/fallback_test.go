package resilience

import (
	"errors"
	"testing"
	"time"
)

type fakeProvider struct {
	name  string
	err   error
	calls int
}

func (p *fakeProvider) do() (string, error) {
	p.calls++
	if p.err != nil {
		return "", p.err
	}
	return p.name, nil
}

func TestExecuteWithResult_PrimarySucceeds(t *testing.T) {
	t.Parallel()

	primary := &fakeProvider{name: "primary"}
	backup := &fakeProvider{name: "backup"}
	fg := NewFallbackGroup[*fakeProvider](primary, "primary", FallbackConfig{})
	fg.AddFallback("backup", backup)

	got, err := ExecuteWithResult(fg, (*fakeProvider).do)
	if err != nil {
		t.Fatalf("ExecuteWithResult: %v", err)
	}
	if got != "primary" {
		t.Errorf("result = %q, want primary", got)
	}
	if backup.calls != 0 {
		t.Errorf("backup called %d times, want 0", backup.calls)
	}
}

func TestExecuteWithResult_FailsOverToBackup(t *testing.T) {
	t.Parallel()

	primary := &fakeProvider{name: "primary", err: errBoom}
	backup := &fakeProvider{name: "backup"}
	fg := NewFallbackGroup[*fakeProvider](primary, "primary", FallbackConfig{})
	fg.AddFallback("backup", backup)

	got, err := ExecuteWithResult(fg, (*fakeProvider).do)
	if err != nil {
		t.Fatalf("ExecuteWithResult: %v", err)
	}
	if got != "backup" {
		t.Errorf("result = %q, want backup", got)
	}
	if primary.calls != 1 {
		t.Errorf("primary called %d times, want 1", primary.calls)
	}
}

func TestExecuteWithResult_AllFail(t *testing.T) {
	t.Parallel()

	fg := NewFallbackGroup[*fakeProvider](&fakeProvider{err: errBoom}, "primary", FallbackConfig{})
	fg.AddFallback("backup", &fakeProvider{err: errBoom})

	_, err := ExecuteWithResult(fg, (*fakeProvider).do)
	if !errors.Is(err, ErrAllFailed) {
		t.Fatalf("ExecuteWithResult error = %v, want ErrAllFailed", err)
	}
}

func TestExecuteWithResult_OpenBreakerSkipsPrimary(t *testing.T) {
	t.Parallel()

	primary := &fakeProvider{name: "primary", err: errBoom}
	backup := &fakeProvider{name: "backup"}
	fg := NewFallbackGroup[*fakeProvider](primary, "primary", FallbackConfig{
		CircuitBreaker: CircuitBreakerConfig{MaxFailures: 2, ResetTimeout: time.Hour},
	})
	fg.AddFallback("backup", backup)

	// Trip the primary's breaker, then confirm it is no longer called.
	for i := 0; i < 3; i++ {
		if _, err := ExecuteWithResult(fg, (*fakeProvider).do); err != nil {
			t.Fatalf("ExecuteWithResult: %v", err)
		}
	}
	if primary.calls != 2 {
		t.Errorf("primary called %d times, want 2 (breaker open afterwards)", primary.calls)
	}
	if backup.calls != 3 {
		t.Errorf("backup called %d times, want 3", backup.calls)
	}
}
