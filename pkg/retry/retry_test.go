package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"dailybrief/internal/domain"
)

func noSleep(ctx context.Context, d time.Duration) error { return nil }

func TestDoSucceedsAfterTransientFailures(t *testing.T) {
	t.Parallel()

	attempts := 0
	op := func(ctx context.Context) (string, error) {
		attempts++
		if attempts < 3 {
			return "", domain.Transient(errors.New("rate limited"))
		}
		return "ok", nil
	}

	got, err := Do(context.Background(), Policy{MaxAttempts: 3, Sleep: noSleep}, op)
	if err != nil {
		t.Fatalf("Do returned error: %v", err)
	}
	if got != "ok" {
		t.Fatalf("unexpected value: %q", got)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}

func TestDoStopsOnPermanentFailure(t *testing.T) {
	t.Parallel()

	attempts := 0
	op := func(ctx context.Context) (int, error) {
		attempts++
		return 0, domain.Permanent(errors.New("bad credentials"))
	}

	_, err := Do(context.Background(), Policy{MaxAttempts: 5, Sleep: noSleep}, op)
	if err == nil {
		t.Fatal("expected error")
	}
	if attempts != 1 {
		t.Fatalf("permanent failure must not retry, got %d attempts", attempts)
	}
	if domain.ClassOf(err) != domain.FailurePermanent {
		t.Fatalf("classification lost: %v", err)
	}
}

func TestDoExhaustsAttemptBudget(t *testing.T) {
	t.Parallel()

	attempts := 0
	op := func(ctx context.Context) (int, error) {
		attempts++
		return 0, domain.Transient(errors.New("timeout"))
	}

	_, err := Do(context.Background(), Policy{MaxAttempts: 4, Sleep: noSleep}, op)
	if err == nil {
		t.Fatal("expected error after exhaustion")
	}
	if attempts != 4 {
		t.Fatalf("expected 4 attempts, got %d", attempts)
	}
	if domain.ClassOf(err) != domain.FailureTransient {
		t.Fatalf("exhausted error should stay transient: %v", err)
	}
}

func TestDoHonorsContextCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	attempts := 0
	_, err := Do(ctx, Policy{MaxAttempts: 3, Sleep: noSleep}, func(ctx context.Context) (int, error) {
		attempts++
		return 0, domain.Transient(errors.New("transient"))
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context error, got %v", err)
	}
	if attempts != 0 {
		t.Fatalf("cancelled context must not run the operation, got %d attempts", attempts)
	}
}

func TestBackoffStaysWithinBounds(t *testing.T) {
	t.Parallel()

	p := Policy{MaxAttempts: 5, BackoffBase: 100 * time.Millisecond, MaxBackoff: time.Second}.normalized()
	for attempt := 1; attempt <= 10; attempt++ {
		d := backoff(p, attempt)
		if d <= 0 || d > p.MaxBackoff {
			t.Fatalf("attempt %d: backoff %v out of bounds", attempt, d)
		}
	}
}
