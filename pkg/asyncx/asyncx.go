package asyncx

import (
	"context"
	"time"
)

// ─── Retry ────────────────────────────────────────────────────────────────────

// RetryPolicy controls Retry. Attempts below one are treated as one.
type RetryPolicy struct {
	Attempts int
	// Interval is the wait after the first failure.
	Interval time.Duration
	// Multiplier grows Interval after each failure. Zero or one keeps it fixed.
	Multiplier float64
	// OnFailure, if set, is called after every failed attempt.
	OnFailure func(attempt int, err error)
}

// Retry calls fn until it succeeds or the policy's attempts run out,
// returning the last error. Cancellation of ctx between attempts returns
// ctx.Err().
func Retry[T any](ctx context.Context, p RetryPolicy, fn func(context.Context) (T, error)) (T, error) {
	var (
		zero  T
		err   error
		val   T
		delay = p.Interval
	)

	attempts := max(p.Attempts, 1)
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return zero, ctxErr
		}

		val, err = fn(ctx)
		if err == nil {
			return val, nil
		}
		if p.OnFailure != nil {
			p.OnFailure(attempt, err)
		}

		if attempt < attempts {
			select {
			case <-ctx.Done():
				return zero, ctx.Err()
			case <-time.After(delay):
			}
			if p.Multiplier > 1 {
				delay = time.Duration(float64(delay) * p.Multiplier)
			}
		}
	}
	return zero, err
}

// ─── Timeout ──────────────────────────────────────────────────────────────────

// WithTimeout runs fn with a deadline of d and returns
// context.DeadlineExceeded if fn has not finished by then, even when fn
// ignores its context.
func WithTimeout[T any](ctx context.Context, d time.Duration, fn func(context.Context) (T, error)) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()

	type res struct {
		v   T
		err error
	}

	ch := make(chan res, 1)
	go func() {
		v, err := fn(ctx)
		ch <- res{v, err}
	}()

	select {
	case r := <-ch:
		return r.v, r.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
