// Package retry runs an operation under a fixed attempt budget with
// exponential backoff between retryable failures.
package retry

import (
	"context"
	"time"
)

// Do runs op up to attempts times. After a failure that retryable classifies
// as transient it sleeps baseDelay * 2^(attempt-1) and tries again; there is
// no delay after the final attempt. A failure classified as fatal stops the
// budget immediately. The last observed error is returned.
func Do(ctx context.Context, attempts int, baseDelay time.Duration, op func(context.Context) error, retryable func(error) bool) error {
	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		lastErr = op(ctx)
		if lastErr == nil {
			return nil
		}
		if !retryable(lastErr) {
			return lastErr
		}
		if attempt == attempts {
			break
		}

		delay := baseDelay * time.Duration(1<<(attempt-1))
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return lastErr
}
