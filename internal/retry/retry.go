// Package retry provides a small bounded retry policy shared by the crawler
// and the AI fixer. A Policy is max attempts plus a backoff function; callers
// that need per-error backoff selection set BackoffFor.
package retry

import (
	"context"
	"time"
)

// BackoffFunc returns the delay to sleep before retrying after the given
// attempt (1-based, the attempt that just failed).
type BackoffFunc func(attempt int, base time.Duration) time.Duration

// Linear grows the delay by base per attempt: base, 2*base, 3*base, ...
func Linear(attempt int, base time.Duration) time.Duration {
	return time.Duration(attempt) * base
}

// Exponential doubles the delay each attempt: base, 2*base, 4*base, ...
func Exponential(attempt int, base time.Duration) time.Duration {
	return base << (attempt - 1)
}

// Flat always waits base.
func Flat(_ int, base time.Duration) time.Duration {
	return base
}

type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Backoff     BackoffFunc

	// BackoffFor, when set, picks the backoff function from the error that
	// caused the retry; otherwise Backoff is used for every error.
	BackoffFor func(err error) BackoffFunc
}

// Do runs op until it succeeds or MaxAttempts are exhausted, sleeping the
// policy's backoff between attempts. The last error is returned. Context
// cancellation cuts the wait short and surfaces ctx.Err().
func (p Policy) Do(ctx context.Context, op func() error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = op(); err == nil {
			return nil
		}
		if attempt == attempts {
			break
		}

		backoff := p.Backoff
		if p.BackoffFor != nil {
			if chosen := p.BackoffFor(err); chosen != nil {
				backoff = chosen
			}
		}
		delay := p.BaseDelay
		if backoff != nil {
			delay = backoff(attempt, p.BaseDelay)
		}

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}
