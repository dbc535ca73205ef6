package provider

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testExecutor(maxAttempts int) *Executor {
	policy := RetryPolicy{
		MaxAttempts: maxAttempts,
		BaseDelay:   time.Millisecond,
		MaxDelay:    5 * time.Millisecond,
	}
	return NewExecutor(NewRateLimiterMap(nil), policy, testLogger())
}

func transientErr() error {
	return &ErrProviderUnavailable{
		Provider: NameMusicBrainz,
		Cause:    errors.New("HTTP 503"),
	}
}

func TestExecuteSucceedsAfterTransientFailures(t *testing.T) {
	exec := testExecutor(5)

	attempts := 0
	err := exec.Execute(context.Background(), NameMusicBrainz, func(context.Context) error {
		attempts++
		if attempts <= 3 {
			return transientErr()
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if attempts != 4 {
		t.Errorf("expected 4 attempts, got %d", attempts)
	}
}

func TestExecuteExhaustsAttempts(t *testing.T) {
	exec := testExecutor(3)

	attempts := 0
	lastCause := fmt.Errorf("HTTP 500 on attempt 3")
	err := exec.Execute(context.Background(), NameMusicBrainz, func(context.Context) error {
		attempts++
		if attempts == 3 {
			return &ErrProviderUnavailable{Provider: NameMusicBrainz, Cause: lastCause}
		}
		return transientErr()
	})
	if err == nil {
		t.Fatal("expected error after exhausting attempts")
	}
	if attempts != 3 {
		t.Errorf("expected exactly 3 attempts, got %d", attempts)
	}
	if !errors.Is(err, lastCause) {
		t.Errorf("expected last cause to surface, got %v", err)
	}
}

func TestExecuteTerminalErrorPropagatesImmediately(t *testing.T) {
	exec := testExecutor(5)

	terminal := []error{
		&ErrNotFound{Provider: NameMusicBrainz, ID: "xyz"},
		&ErrAuthRequired{Provider: NameLastFM},
	}
	for _, want := range terminal {
		attempts := 0
		err := exec.Execute(context.Background(), NameMusicBrainz, func(context.Context) error {
			attempts++
			return want
		})
		if !errors.Is(err, want) {
			t.Errorf("expected %v, got %v", want, err)
		}
		if attempts != 1 {
			t.Errorf("terminal error consumed %d attempts, want 1", attempts)
		}
	}
}

func TestExecuteRespectsCancellation(t *testing.T) {
	exec := testExecutor(10)

	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0
	err := exec.Execute(ctx, NameMusicBrainz, func(context.Context) error {
		attempts++
		cancel()
		return transientErr()
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if attempts != 1 {
		t.Errorf("expected 1 attempt before cancellation, got %d", attempts)
	}
}

func TestRetryableClassification(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{transientErr(), true},
		{fmt.Errorf("wrapped: %w", transientErr()), true},
		{&ErrNotFound{Provider: NameGenius, ID: "1"}, false},
		{&ErrAuthRequired{Provider: NameLastFM}, false},
		{context.Canceled, false},
		{context.DeadlineExceeded, false},
		{errors.New("unclassified"), false},
	}
	for _, c := range cases {
		if got := Retryable(c.err); got != c.want {
			t.Errorf("Retryable(%v) = %v, want %v", c.err, got, c.want)
		}
	}
}
