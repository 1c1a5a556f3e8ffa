package llm

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// Policy is an explicit retry policy: attempt count, backoff between
// attempts, and the predicate deciding which errors deserve another try.
// It is a plain value so tests can exercise retry behavior with synthetic
// predicates and no provider client.
type Policy struct {
	MaxAttempts int
	Backoff     time.Duration
	Retryable   func(error) bool
}

// DefaultPolicy retries transient provider errors once with a short pause.
func DefaultPolicy(maxAttempts int, pause time.Duration) Policy {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return Policy{
		MaxAttempts: maxAttempts,
		Backoff:     pause,
		Retryable:   IsTransient,
	}
}

// CallWithPolicy runs op under the policy: non-retryable errors and
// exhausted attempts are returned to the caller unchanged.
func CallWithPolicy[T any](ctx context.Context, p Policy, op func(context.Context) (T, error)) (T, error) {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	wrapped := func() (T, error) {
		v, err := op(ctx)
		if err != nil && p.Retryable != nil && !p.Retryable(err) {
			return v, backoff.Permanent(err)
		}
		return v, err
	}

	return backoff.Retry(ctx, wrapped,
		backoff.WithBackOff(backoff.NewConstantBackOff(p.Backoff)),
		backoff.WithMaxTries(uint(attempts)),
	)
}
