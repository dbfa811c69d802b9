package client

import (
	"context"
	"math/rand"
	"time"
)

// BackoffStrategy defines how to calculate the next wait time.
type BackoffStrategy interface {
	Next(attempt int) time.Duration
}

// ExponentialBackoff implements exponential backoff with jitter.
type ExponentialBackoff struct {
	Base   time.Duration
	Max    time.Duration
	Factor float64
	Jitter float64 // 0.0 to 1.0
}

// DefaultBackoff returns the strategy used for read retries.
// Base: 50ms, Max: 1s, Factor: 2.0, Jitter: 0.2
func DefaultBackoff() *ExponentialBackoff {
	return &ExponentialBackoff{
		Base:   50 * time.Millisecond,
		Max:    time.Second,
		Factor: 2.0,
		Jitter: 0.2,
	}
}

// Next calculates the wait duration for the given attempt (0-based).
func (b *ExponentialBackoff) Next(attempt int) time.Duration {
	if attempt < 0 {
		return b.Base
	}

	delay := float64(b.Base)
	for i := 0; i < attempt; i++ {
		delay *= b.Factor
	}
	if delay > float64(b.Max) {
		delay = float64(b.Max)
	}

	// delay * (1 +/- Jitter)
	if b.Jitter > 0 {
		jitterFactor := (rand.Float64()*2 - 1) * b.Jitter
		delay += delay * jitterFactor
	}

	if delay < 0 {
		return 0
	}
	return time.Duration(delay)
}

// retry runs fn up to attempts times, sleeping per strategy between failures.
// Only transport errors are retried; fn reports them through retryable.
func retry(ctx context.Context, strategy BackoffStrategy, attempts int, fn func() (retryable bool, err error)) error {
	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		var retryable bool
		retryable, err = fn()
		if err == nil || !retryable {
			return err
		}
		if attempt == attempts-1 {
			break
		}
		select {
		case <-time.After(strategy.Next(attempt)):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}
