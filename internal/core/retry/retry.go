package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// ErrExhausted is returned (wrapped) when every attempt failed.
var ErrExhausted = errors.New("retry attempts exhausted")

// Policy describes a bounded exponential backoff.
type Policy struct {
	MaxAttempts  int
	InitialDelay time.Duration
	Multiplier   float64
	MaxDelay     time.Duration
}

// DefaultPolicy returns 10 attempts starting at 2s, growing x1.5, capped at 30s.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:  10,
		InitialDelay: 2 * time.Second,
		Multiplier:   1.5,
		MaxDelay:     30 * time.Second,
	}
}

func (p Policy) normalized() Policy {
	def := DefaultPolicy()
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = def.MaxAttempts
	}
	if p.InitialDelay < 0 {
		p.InitialDelay = 0
	}
	if p.Multiplier < 1 {
		p.Multiplier = 1
	}
	if p.MaxDelay <= 0 {
		p.MaxDelay = def.MaxDelay
	}
	return p
}

// exponential builds the jitter-free, never-expiring backoff for p.
// The attempt bound is applied separately with backoff.WithMaxRetries.
func (p Policy) exponential() *backoff.ExponentialBackOff {
	return backoff.NewExponentialBackOff(
		backoff.WithInitialInterval(p.InitialDelay),
		backoff.WithMultiplier(p.Multiplier),
		backoff.WithMaxInterval(p.MaxDelay),
		backoff.WithRandomizationFactor(0),
		backoff.WithMaxElapsedTime(0),
	)
}

// Schedule returns the sleeps taken between attempts, len == MaxAttempts-1.
func (p Policy) Schedule() []time.Duration {
	p = p.normalized()
	b := backoff.WithMaxRetries(p.exponential(), uint64(p.MaxAttempts-1))

	delays := make([]time.Duration, 0, p.MaxAttempts-1)
	for next := b.NextBackOff(); next != backoff.Stop; next = b.NextBackOff() {
		delays = append(delays, next)
	}
	return delays
}

// SleepFunc blocks for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Option customizes a Backoff.
type Option func(*Backoff)

// WithSleep replaces the timer used between attempts.
func WithSleep(fn SleepFunc) Option {
	return func(b *Backoff) {
		if fn != nil {
			b.sleep = fn
		}
	}
}

// Backoff runs an operation until it succeeds or the policy runs out.
type Backoff struct {
	policy Policy
	sleep  SleepFunc
}

// New creates a Backoff for the given policy.
func New(policy Policy, opts ...Option) *Backoff {
	b := &Backoff{policy: policy.normalized()}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Do calls op up to MaxAttempts times. name only labels log lines.
// It returns the number of attempts made and nil on success, or an error
// wrapping both ErrExhausted and the last failure.
func (b *Backoff) Do(ctx context.Context, name string, op func(ctx context.Context) error) (int, error) {
	policy := backoff.WithContext(
		backoff.WithMaxRetries(b.policy.exponential(), uint64(b.policy.MaxAttempts-1)),
		ctx,
	)

	var (
		attempt int
		lastErr error
	)
	operation := func() error {
		attempt++
		lastErr = op(ctx)
		if lastErr != nil {
			slog.Warn(fmt.Sprintf("[%s] Connection attempt failed", name),
				"attempt", attempt,
				"max_attempts", b.policy.MaxAttempts,
				"error", lastErr,
			)
		}
		return lastErr
	}
	notify := func(_ error, delay time.Duration) {
		slog.Info(fmt.Sprintf("[%s] Retrying", name), "delay", delay)
	}

	var timer backoff.Timer
	if b.sleep != nil {
		timer = &sleepTimer{ctx: ctx, sleep: b.sleep}
	}

	err := backoff.RetryNotifyWithTimer(operation, policy, notify, timer)
	if err == nil {
		return attempt, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return attempt, fmt.Errorf("%s: retry aborted after %d attempts: %w", name, attempt, ctxErr)
	}
	return attempt, fmt.Errorf("%s: %w after %d attempts: %w", name, ErrExhausted, attempt, lastErr)
}

// sleepTimer adapts a SleepFunc to backoff.Timer. Start blocks in the
// SleepFunc and then fires unless ctx is done.
type sleepTimer struct {
	ctx   context.Context
	sleep SleepFunc
	c     chan time.Time
}

func (t *sleepTimer) Start(d time.Duration) {
	t.c = make(chan time.Time, 1)
	_ = t.sleep(t.ctx, d)
	if t.ctx.Err() == nil {
		t.c <- time.Now()
	}
}

func (t *sleepTimer) Stop() {}

func (t *sleepTimer) C() <-chan time.Time { return t.c }
