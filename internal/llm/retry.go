package llm

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"
)

// RetryProvider repeats calls that failed because the backend was
// unreachable. Rate limits, truncation and malformed output go straight
// back to the caller so the learner sees the matching message at once.
// DefaultConfig makes a single attempt.
type RetryProvider struct {
	inner Provider
	cfg   RetryConfig
}

func WithRetry(p Provider, cfg RetryConfig) Provider {
	cfg.MaxAttempts = max(cfg.MaxAttempts, 1)
	return &RetryProvider{inner: p, cfg: cfg}
}

func (r *RetryProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	for attempt := 0; ; attempt++ {
		resp, err := r.inner.Generate(ctx, req)
		if err == nil || !retryable(err) || attempt+1 >= r.cfg.MaxAttempts {
			return resp, err
		}

		t := time.NewTimer(r.wait(attempt))
		select {
		case <-ctx.Done():
			t.Stop()
			return nil, ctx.Err()
		case <-t.C:
		}
	}
}

func (r *RetryProvider) ModelID() string {
	return r.inner.ModelID()
}

func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || IsRateLimit(err) {
		return false
	}
	var unavailable *ErrProviderUnavailable
	return errors.As(err, &unavailable)
}

// wait returns the exponential backoff for attempt, capped at MaxWait,
// with 20% jitter either way.
func (r *RetryProvider) wait(attempt int) time.Duration {
	d := float64(r.cfg.InitialWait)
	for range attempt {
		d *= r.cfg.Multiplier
	}
	d = min(d, float64(r.cfg.MaxWait))
	d *= 0.8 + 0.4*rand.Float64()
	return time.Duration(max(d, 0))
}
