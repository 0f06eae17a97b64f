package cache

import (
	"context"
	"errors"
	"time"

	"github.com/matzehuels/sitegrid/pkg/httputil"
)

// ErrUnavailable is returned when a cache backend cannot be reached.
var ErrUnavailable = errors.New("cache backend unavailable")

// RetryableError marks an error as transient.
type RetryableError = httputil.RetryableError

// Retryable wraps err as a RetryableError. Retryable(nil) is nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

// retryDelay is the first backoff interval; it doubles per attempt.
var retryDelay = 500 * time.Millisecond

// RetryWithBackoff calls fn up to attempts times with exponential backoff.
// Only errors wrapped with [Retryable] trigger another attempt.
func RetryWithBackoff(ctx context.Context, attempts int, fn func() error) error {
	return httputil.Retry(ctx, attempts, retryDelay, fn)
}
