package llm

import (
	"context"
	"errors"
	"time"

	"github.com/specforge/specforge/internal/specerr"
)

// RetryPolicy is the shared retry primitive every backend routes its
// invocation through, grounded on the original's single
// execute_with_retry(request, timeout, provider) call shared by both
// HTTP backends.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

// DefaultRetryPolicy matches the original's implicit defaults: a handful
// of attempts with a short exponential backoff between them.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, BaseDelay: 500 * time.Millisecond}
}

// retryable reports whether a failure is transient enough to retry:
// quota (429), outage (5xx), and plain transport failures are; auth,
// budget, misconfiguration and unsupported-feature failures are not —
// retrying those would just repeat the same failure.
func retryable(err error) bool {
	var se *specerr.Error
	if !errors.As(err, &se) {
		return false
	}
	switch se.Kind {
	case specerr.KindLLMTransport, specerr.KindLLMProviderQuota, specerr.KindLLMProviderOutage:
		return true
	default:
		return false
	}
}

// WithRetry runs fn up to policy.MaxAttempts times, retrying only
// retryable failures, with exponential backoff between attempts. The
// last attempt's Result and error are always returned so callers keep
// whatever partial output the final attempt produced.
func WithRetry(ctx context.Context, policy RetryPolicy, fn func() (Result, error)) (Result, error) {
	attempts := policy.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}

	var res Result
	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		res, err = fn()
		if err == nil || !retryable(err) {
			return res, err
		}
		if attempt == attempts-1 {
			break
		}
		delay := policy.BaseDelay * (1 << attempt)
		select {
		case <-ctx.Done():
			return res, ctx.Err()
		case <-time.After(delay):
		}
	}
	return res, err
}
