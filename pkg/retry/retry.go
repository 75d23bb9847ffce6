// Package retry runs an operation again after transient failures, waiting
// according to a caller supplied delay function between attempts.
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Policy bounds the retries of one operation. MaxRetries counts retries,
// not attempts: MaxRetries 3 runs the operation at most 4 times.
type Policy struct {
	MaxRetries int
	Delay      func(attempt int) time.Duration
}

// Linear waits attempt*step before retry number attempt (1-based).
func Linear(step time.Duration) func(attempt int) time.Duration {
	return func(attempt int) time.Duration {
		return time.Duration(attempt) * step
	}
}

// Notify is called before each wait with the error that caused the retry.
type Notify func(err error, attempt int, wait time.Duration)

// Permanent marks err as not worth retrying. Do returns the unwrapped err.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return backoff.Permanent(err)
}

// Do runs op until it succeeds, returns a Permanent error, the retries are
// exhausted or ctx is done. It returns the last error of op, or ctx.Err().
func Do(ctx context.Context, p Policy, op func(ctx context.Context) error, notify Notify) error {
	delay := p.Delay
	if delay == nil {
		delay = func(int) time.Duration { return 0 }
	}
	maxRetries := p.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}

	steps := &delayBackOff{delay: delay}
	b := backoff.WithContext(backoff.WithMaxRetries(steps, uint64(maxRetries)), ctx)

	return backoff.RetryNotify(
		func() error { return op(ctx) },
		b,
		func(err error, wait time.Duration) {
			if notify != nil {
				notify(err, steps.attempt, wait)
			}
		},
	)
}

// delayBackOff adapts a delay function to backoff.BackOff.
type delayBackOff struct {
	delay   func(attempt int) time.Duration
	attempt int
}

func (b *delayBackOff) NextBackOff() time.Duration {
	b.attempt++
	return b.delay(b.attempt)
}

func (b *delayBackOff) Reset() { b.attempt = 0 }
