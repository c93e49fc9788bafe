// Package retry runs short operations with bounded attempts and exponential
// backoff. Used for one-shot setup calls (webhook registration), never inside
// the worker loop - the loop is its own retry mechanism.
package retry

import (
	"context"
	"fmt"
	"time"
)

// Policy controls attempt count and backoff growth.
type Policy struct {
	MaxAttempts    int
	InitialBackoff time.Duration
	OnRetry        func(attempt int, err error, backoff time.Duration)
}

// Do runs op until it succeeds, attempts are exhausted, or ctx is cancelled.
// Backoff doubles after each failed attempt.
func Do(ctx context.Context, p Policy, op func() error) error {
	backoff := p.InitialBackoff

	for attempt := 1; ; attempt++ {
		err := op()
		if err == nil {
			return nil
		}

		if attempt >= p.MaxAttempts {
			return fmt.Errorf("failed after %d attempts: %w", p.MaxAttempts, err)
		}

		if p.OnRetry != nil {
			p.OnRetry(attempt, err, backoff)
		}

		select {
		case <-time.After(backoff):
			backoff *= 2
		case <-ctx.Done():
			return fmt.Errorf("context cancelled during retry: %w", ctx.Err())
		}
	}
}
