package httputil

import (
	"context"
	"errors"
	"time"
)

// RetryableError marks an error as transient so that [Retry] attempts the
// operation again.
type RetryableError struct{ Err error }

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Retry executes fn up to attempts times, doubling delay after each failure.
// Only errors wrapped in [RetryableError] are retried. It returns the last
// error if all attempts fail, or ctx.Err() if cancelled while waiting.
func Retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	attempts = max(attempts, 1)
	var lastErr error

	for i := range attempts {
		if err := fn(); err == nil {
			return nil
		} else if lastErr = err; !IsRetryable(err) {
			return err
		}

		if i < attempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				delay *= 2
			}
		}
	}
	return lastErr
}

// IsRetryable reports whether err, or any error it wraps, is a
// [RetryableError].
func IsRetryable(err error) bool {
	return errors.As(err, new(*RetryableError))
}
