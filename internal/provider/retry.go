package provider

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sethvargo/go-retry"
)

// RetryPolicy bounds how an operation is retried on transient failure.
type RetryPolicy struct {
	MaxAttempts   int
	BaseDelay     time.Duration
	MaxDelay      time.Duration
	JitterPercent uint64
}

// DefaultRetryPolicy mirrors the crawler's historical defaults:
// three attempts, one second base delay, doubling, capped at a minute.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:   3,
		BaseDelay:     time.Second,
		MaxDelay:      time.Minute,
		JitterPercent: 10,
	}
}

// Executor runs provider operations under the shared rate limiter and
// the retry policy. Every attempt, including retries, passes through
// the provider's rate budget first.
type Executor struct {
	limiter *RateLimiterMap
	policy  RetryPolicy
	logger  *slog.Logger
	stats   *Stats
}

// NewExecutor creates an Executor.
func NewExecutor(limiter *RateLimiterMap, policy RetryPolicy, logger *slog.Logger) *Executor {
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}
	return &Executor{
		limiter: limiter,
		policy:  policy,
		logger:  logger.With(slog.String("component", "retry")),
		stats:   NewStats(),
	}
}

// Stats returns a snapshot of the per-provider request counters
// accumulated so far.
func (e *Executor) Stats() map[ProviderName]RequestStats {
	return e.stats.Snapshot()
}

// Execute runs op for the named provider. Transient failures
// (ErrProviderUnavailable) are retried with exponential backoff and
// jitter up to the attempt budget; terminal failures (not-found, auth,
// cancellation) propagate immediately. When the budget is exhausted the
// last underlying cause is returned.
func (e *Executor) Execute(ctx context.Context, name ProviderName, op func(ctx context.Context) error) error {
	b := retry.NewExponential(e.policy.BaseDelay)
	if e.policy.JitterPercent > 0 {
		b = retry.WithJitterPercent(e.policy.JitterPercent, b)
	}
	if e.policy.MaxDelay > 0 {
		b = retry.WithCappedDuration(e.policy.MaxDelay, b)
	}
	b = retry.WithMaxRetries(uint64(e.policy.MaxAttempts-1), b)

	attempt := 0
	return retry.Do(ctx, b, func(ctx context.Context) error {
		attempt++
		if err := e.limiter.Wait(ctx, name); err != nil {
			return err // context canceled, terminal
		}

		err := op(ctx)
		e.stats.record(name, err != nil, attempt > 1)
		if err == nil {
			return nil
		}
		if !Retryable(err) {
			return err
		}

		e.logger.Warn("transient provider failure",
			slog.String("provider", string(name)),
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", e.policy.MaxAttempts),
			slog.String("error", err.Error()))
		return retry.RetryableError(err)
	})
}

// Retryable classifies an error as transient. Not-found, auth failures
// and context cancellation are terminal; everything tagged
// ErrProviderUnavailable (timeouts, 5xx, upstream rate limiting) can be
// retried.
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var notFound *ErrNotFound
	if errors.As(err, &notFound) {
		return false
	}
	var auth *ErrAuthRequired
	if errors.As(err, &auth) {
		return false
	}
	var unavail *ErrProviderUnavailable
	return errors.As(err, &unavail)
}
