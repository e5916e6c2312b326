// Package retry implements a bounded retry loop over operations whose
// errors are classified transient or permanent. Transient failures back
// off exponentially with jitter; permanent failures stop immediately.
package retry

import (
	"context"
	"math/rand"
	"time"

	"dailybrief/internal/domain"
)

// Policy bounds the retry loop.
type Policy struct {
	MaxAttempts int
	BackoffBase time.Duration
	MaxBackoff  time.Duration

	// Sleep is replaceable in tests; nil means a context-aware timer.
	Sleep func(ctx context.Context, d time.Duration) error
}

func (p Policy) normalized() Policy {
	if p.MaxAttempts < 1 {
		p.MaxAttempts = 1
	}
	if p.BackoffBase <= 0 {
		p.BackoffBase = 500 * time.Millisecond
	}
	if p.MaxBackoff <= 0 {
		p.MaxBackoff = 30 * time.Second
	}
	if p.Sleep == nil {
		p.Sleep = sleep
	}
	return p
}

// Do invokes op until it succeeds, fails permanently, exhausts the attempt
// budget, or the context ends. The returned error keeps its classification
// so callers can distinguish exhaustion from a permanent fault.
func Do[T any](ctx context.Context, policy Policy, op func(ctx context.Context) (T, error)) (T, error) {
	p := policy.normalized()

	var zero T
	var lastErr error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		value, err := op(ctx)
		if err == nil {
			return value, nil
		}
		lastErr = err

		if domain.ClassOf(err) == domain.FailurePermanent {
			return zero, err
		}
		if attempt == p.MaxAttempts {
			break
		}

		if err := p.Sleep(ctx, backoff(p, attempt)); err != nil {
			return zero, err
		}
	}

	return zero, lastErr
}

// backoff doubles per attempt and jitters between 50% and 150% of the
// nominal delay so synchronized retries spread out.
func backoff(p Policy, attempt int) time.Duration {
	d := p.BackoffBase << (attempt - 1)
	if d > p.MaxBackoff {
		d = p.MaxBackoff
	}
	jittered := time.Duration(float64(d) * (0.5 + rand.Float64()))
	if jittered > p.MaxBackoff {
		jittered = p.MaxBackoff
	}
	return jittered
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
