package sources

import (
	"context"
	"math/rand"
	"time"

	"crate/internal/config"
)

// Policy bounds how often a transient failure is retried and how long the
// caller sleeps between attempts. Backoff doubles per attempt up to
// MaxDelay, then a jitter fraction is added to spread concurrent callers.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	JitterPct   int
}

// DefaultPolicy matches the stock retry configuration.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 3,
		BaseDelay:   time.Second,
		MaxDelay:    30 * time.Second,
		JitterPct:   20,
	}
}

// PolicyFromConfig builds a retry policy from the retry config section.
func PolicyFromConfig(cfg config.Retry) Policy {
	policy := Policy{
		MaxAttempts: cfg.MaxAttempts,
		BaseDelay:   time.Duration(cfg.BaseDelayMS) * time.Millisecond,
		MaxDelay:    time.Duration(cfg.MaxDelayMS) * time.Millisecond,
		JitterPct:   cfg.JitterPct,
	}
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}
	if policy.BaseDelay <= 0 {
		policy.BaseDelay = time.Second
	}
	if policy.MaxDelay < policy.BaseDelay {
		policy.MaxDelay = policy.BaseDelay
	}
	return policy
}

// Do runs fn until it succeeds, fails permanently, or attempts run out.
// Only transient failures are retried. A Retry-After hint from the server
// overrides the computed backoff for that attempt. The final error is
// returned unwrapped so callers can still classify it.
func (p Policy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if !IsTransient(lastErr) || attempt == attempts {
			return lastErr
		}

		delay := p.backoff(attempt)
		if hint := RetryAfterHint(lastErr); hint > delay {
			delay = hint
		}
		if err := sleepContext(ctx, delay); err != nil {
			return err
		}
	}
	return lastErr
}

func (p Policy) backoff(attempt int) time.Duration {
	base := p.BaseDelay
	if base <= 0 {
		base = time.Second
	}
	delay := base << (attempt - 1)
	if p.MaxDelay > 0 && delay > p.MaxDelay {
		delay = p.MaxDelay
	}
	if p.JitterPct > 0 {
		jitter := time.Duration(rand.Int63n(int64(delay)*int64(p.JitterPct)/100 + 1))
		delay += jitter
	}
	return delay
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
