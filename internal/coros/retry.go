package coros

import (
	"context"
	"errors"
	"log"
	"time"
)

// RetryPolicy bounds a retried call: a fixed number of attempts with a
// fixed delay between them. No backoff growth; the vendor's flakiness
// is transient rather than load-related.
type RetryPolicy struct {
	MaxAttempts int
	Delay       time.Duration
}

// DefaultRetryPolicy matches the vendor detail endpoint's observed
// behavior: occasional empty payloads that clear up within a retry or
// two.
var DefaultRetryPolicy = RetryPolicy{
	MaxAttempts: 3,
	Delay:       500 * time.Millisecond,
}

// errRetriesExhausted signals that every attempt ran and none produced
// a valid result, as opposed to the loop being cut short by the
// context.
var errRetriesExhausted = errors.New("retries exhausted")

// retry runs call until valid accepts its result or the policy is
// exhausted. Both transport errors and invalid-but-successful results
// count as failed attempts and are logged before retrying. Exhaustion
// returns errRetriesExhausted; a context canceled mid-delay returns
// ctx.Err() so callers can tell cancellation from a flaky endpoint.
func retry[T any](ctx context.Context, p RetryPolicy, call func(context.Context) (T, error), valid func(T) bool) (T, error) {
	var zero T
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		result, err := call(ctx)
		if err != nil {
			log.Printf("attempt %d/%d failed: %v", attempt, p.MaxAttempts, err)
		} else if valid(result) {
			return result, nil
		} else {
			log.Printf("attempt %d/%d returned a malformed or empty payload", attempt, p.MaxAttempts)
		}

		if attempt < p.MaxAttempts {
			log.Printf("will retry %d more times", p.MaxAttempts-attempt)
			select {
			case <-time.After(p.Delay):
			case <-ctx.Done():
				return zero, ctx.Err()
			}
		}
	}
	return zero, errRetriesExhausted
}
