package download

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"time"
)

// StatusError marks a non-2xx HTTP response during an asset download. It is
// a terminal failure for that asset: the server answered, retrying the same
// request will not change the answer.
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.Code, e.Status)
}

// RetryPolicy retries an operation on transport-level failures with
// exponential backoff.
//
// MaxRetries is the number of additional attempts after the first, so an
// always-failing operation runs MaxRetries+1 times. Retryable classifies
// errors; a nil predicate retries everything.
type RetryPolicy struct {
	MaxRetries int
	Cooldown   float64 // seconds before the first retry
	Exponent   float64 // backoff multiplier per retry
	Retryable  func(error) bool
}

// Do runs fn until it succeeds, fails non-retryably, or attempts run out.
// The last error is returned on exhaustion.
func (p RetryPolicy) Do(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 0; attempt <= p.MaxRetries; attempt++ {
		if attempt > 0 {
			if werr := p.wait(ctx, attempt-1); werr != nil {
				return werr
			}
		}
		err = fn()
		if err == nil {
			return nil
		}
		if p.Retryable != nil && !p.Retryable(err) {
			return err
		}
	}
	return err
}

func (p RetryPolicy) wait(ctx context.Context, tries int) error {
	cooldown := p.Cooldown * math.Pow(p.Exponent, float64(tries))
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(time.Duration(cooldown * float64(time.Second))):
		return nil
	}
}

// retryable reports whether a download error is worth another attempt.
// Transport errors (connection reset, timeout, broken stream) are; non-2xx
// statuses, file system failures, and cancellation are not.
func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return false
	}
	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		return false
	}
	var linkErr *os.LinkError
	if errors.As(err, &linkErr) {
		return false
	}
	return true
}
