// Package resilience provides a generic retry engine used to wrap flaky
// provider calls with exponential backoff.
package resilience

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"

	"github.com/lookatitude/omnisearch/core"
)

// RetryPolicy configures how Retry retries a failing operation. Retry fills
// zero numeric fields from DefaultRetryPolicy; Jitter is used as given.
type RetryPolicy struct {
	// MaxAttempts is the total number of attempts, including the first.
	// MaxAttempts <= 1 means no retries.
	MaxAttempts int

	// InitialBackoff is the delay before the first retry.
	InitialBackoff time.Duration

	// MaxBackoff caps the computed delay between attempts.
	MaxBackoff time.Duration

	// BackoffFactor is the multiplier applied to the delay after each
	// attempt.
	BackoffFactor float64

	// Jitter adds up to 50% random jitter to each computed delay.
	Jitter bool

	// RetryableErrors extends core.IsRetryable with additional codes that
	// should be retried for this call only.
	RetryableErrors []core.ErrorCode
}

// DefaultRetryPolicy returns the generic default policy. Retry takes the
// values of any zero numeric fields of its policy from it.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:    3,
		InitialBackoff: 500 * time.Millisecond,
		MaxBackoff:     30 * time.Second,
		BackoffFactor:  2.0,
		Jitter:         true,
	}
}

// normalize fills in zero numeric fields from DefaultRetryPolicy and raises a
// negative MaxAttempts to 1.
func (p RetryPolicy) normalize() RetryPolicy {
	def := DefaultRetryPolicy()
	if p.MaxAttempts == 0 {
		p.MaxAttempts = def.MaxAttempts
	}
	if p.MaxAttempts < 1 {
		p.MaxAttempts = 1
	}
	if p.InitialBackoff == 0 {
		p.InitialBackoff = def.InitialBackoff
	}
	if p.MaxBackoff == 0 {
		p.MaxBackoff = def.MaxBackoff
	}
	if p.BackoffFactor == 0 {
		p.BackoffFactor = def.BackoffFactor
	}
	return p
}

// isRetryable reports whether err should be retried under p: either
// core.IsRetryable(err) or err carries one of p.RetryableErrors.
func (p RetryPolicy) isRetryable(err error) bool {
	if core.IsRetryable(err) {
		return true
	}
	if len(p.RetryableErrors) == 0 {
		return false
	}
	var ce *core.Error
	if !errors.As(err, &ce) {
		return false
	}
	for _, code := range p.RetryableErrors {
		if ce.Code == code {
			return true
		}
	}
	return false
}

// delay computes the backoff before the given retry attempt (0-indexed,
// counting from the first retry).
func (p RetryPolicy) delay(attempt int) time.Duration {
	exp := math.Pow(p.BackoffFactor, float64(attempt))
	d := time.Duration(float64(p.InitialBackoff) * exp)
	if d > p.MaxBackoff {
		d = p.MaxBackoff
	}
	if p.Jitter {
		d += time.Duration(rand.Int64N(int64(d)/2 + 1))
	}
	return d
}

// Retry runs op, retrying on retryable failures according to p until it
// succeeds, a non-retryable error is returned, attempts are exhausted, or ctx
// is cancelled.
func Retry[T any](ctx context.Context, p RetryPolicy, op func(context.Context) (T, error)) (T, error) {
	p = p.normalize()

	var zero T
	var lastErr error

	for attempt := 0; attempt < p.MaxAttempts; attempt++ {
		result, err := op(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !p.isRetryable(err) {
			return zero, err
		}
		if attempt == p.MaxAttempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(p.delay(attempt)):
		}
	}

	return zero, lastErr
}
