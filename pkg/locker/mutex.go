package locker

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Outcome labels the result of a single Acquire call.
type Outcome string

const (
	OutcomeAcquired Outcome = "acquired"
	OutcomeTimeout  Outcome = "timeout"
	OutcomeCanceled Outcome = "canceled"
	OutcomeError    Outcome = "error"
)

// Mutex implements DistributedLocker on top of a Store.
//
// Contended acquisitions are retried with exponential backoff and full
// jitter until maxWait elapses. Between attempts the calling goroutine only
// sleeps, and the sleep is interrupted by context cancellation.
type Mutex struct {
	store     Store
	logger    *zap.Logger
	baseDelay time.Duration
	maxDelay  time.Duration
	observe   func(Outcome)
}

// Option configures a Mutex.
type Option func(*Mutex)

// WithBackoff overrides the base and cap of the retry delay.
func WithBackoff(base, max time.Duration) Option {
	return func(m *Mutex) {
		if base > 0 {
			m.baseDelay = base
		}
		if max > 0 {
			m.maxDelay = max
		}
	}
}

// WithObserver registers a callback invoked once per Acquire with its outcome.
func WithObserver(fn func(Outcome)) Option {
	return func(m *Mutex) {
		if fn != nil {
			m.observe = fn
		}
	}
}

// NewMutex creates a Mutex over store.
func NewMutex(store Store, logger *zap.Logger, opts ...Option) *Mutex {
	m := &Mutex{
		store:     store,
		logger:    logger,
		baseDelay: DefaultBaseDelay,
		maxDelay:  DefaultMaxDelay,
		observe:   func(Outcome) {},
	}
	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Acquire implements DistributedLocker.
//
// A maxWait of zero or less makes exactly one attempt. The call never waits
// longer than maxWait plus the latency of the attempt in flight when the
// wait runs out. A lease of zero or less is rejected with ErrInvalidLease.
func (m *Mutex) Acquire(ctx context.Context, key, token string, lease, maxWait time.Duration) (bool, error) {
	if lease <= 0 {
		m.observe(OutcomeError)
		return false, fmt.Errorf("acquire lock %s: %w: %s", key, ErrInvalidLease, lease)
	}

	deadline := time.Now().Add(maxWait)
	b := newJitterBackoff(m.baseDelay, m.maxDelay)

	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			m.observe(OutcomeCanceled)
			return false, fmt.Errorf("acquire lock %s: %w", key, err)
		}

		ok, err := m.store.SetIfAbsent(ctx, key, token, lease)
		if err != nil {
			m.observe(OutcomeError)
			return false, fmt.Errorf("acquire lock %s: %w", key, err)
		}
		if ok {
			m.observe(OutcomeAcquired)
			m.logger.Debug("lock acquired",
				zap.String("key", key),
				zap.Duration("lease", lease),
				zap.Int("attempt", attempt),
			)

			return true, nil
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			m.observe(OutcomeTimeout)
			m.logger.Warn("failed to acquire lock within wait",
				zap.String("key", key),
				zap.Duration("max_wait", maxWait),
				zap.Int("attempts", attempt),
			)

			return false, nil
		}

		delay := min(b.Next(), remaining)
		m.logger.Debug("lock busy, retrying",
			zap.String("key", key),
			zap.Duration("delay", delay),
			zap.Int("attempt", attempt),
		)

		if err := sleep(ctx, delay); err != nil {
			m.observe(OutcomeCanceled)
			return false, fmt.Errorf("acquire lock %s: %w", key, err)
		}
	}
}

// Release implements DistributedLocker.
func (m *Mutex) Release(ctx context.Context, key, token string) (bool, error) {
	released, err := m.store.CompareAndDelete(ctx, key, token)
	if err != nil {
		return false, fmt.Errorf("release lock %s: %w", key, err)
	}

	if !released {
		m.logger.Warn("lock not owned by token or already expired",
			zap.String("key", key),
		)

		return false, nil
	}

	m.logger.Debug("lock released", zap.String("key", key))

	return true, nil
}

// WithLock runs fn while holding key under a freshly minted token.
// It returns ErrLockAcquisitionTimeout if the lock is not obtained within
// maxWait. The lock is released after fn returns, even if ctx was canceled.
func (m *Mutex) WithLock(ctx context.Context, key string, lease, maxWait time.Duration, fn func(ctx context.Context) error) error {
	token := NewToken()

	acquired, err := m.Acquire(ctx, key, token, lease, maxWait)
	if err != nil {
		return err
	}
	if !acquired {
		return fmt.Errorf("%w: %s", ErrLockAcquisitionTimeout, key)
	}

	defer func() {
		if _, err := m.Release(context.WithoutCancel(ctx), key, token); err != nil {
			m.logger.Error("failed to release lock", zap.String("key", key), zap.Error(err))
		}
	}()

	return fn(ctx)
}

func sleep(ctx context.Context, d time.Duration) error {
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
