package cache

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"booking-service/internal/domain"
)

// BreakerConfig holds circuit breaker configuration.
type BreakerConfig struct {
	MaxRequests  uint32
	Interval     time.Duration
	Timeout      time.Duration
	FailureRatio float64
	MinRequests  uint32
}

// Resilient wraps a domain.Cache with a circuit breaker. Backend errors and
// an open breaker are reported as misses on reads and swallowed on writes,
// so a failing cache never fails the caller.
type Resilient struct {
	next   domain.Cache
	cb     *gobreaker.CircuitBreaker[[]byte]
	logger *zap.Logger
}

// NewResilient wraps next.
func NewResilient(name string, next domain.Cache, cfg BreakerConfig, logger *zap.Logger) *Resilient {
	return &Resilient{
		next:   next,
		cb:     newCircuitBreaker(name, cfg, logger),
		logger: logger,
	}
}

func newCircuitBreaker(name string, cfg BreakerConfig, logger *zap.Logger) *gobreaker.CircuitBreaker[[]byte] {
	minRequests := cfg.MinRequests
	if minRequests == 0 {
		minRequests = 3
	}
	ratio := cfg.FailureRatio
	if ratio <= 0 {
		ratio = 0.5
	}

	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)

			return counts.Requests >= minRequests && failureRatio >= ratio
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("cache circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	}

	return gobreaker.NewCircuitBreaker[[]byte](settings)
}

// Get returns nil on backend failure or when the breaker is open.
func (r *Resilient) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := r.cb.Execute(func() ([]byte, error) {
		return r.next.Get(ctx, key)
	})
	if err != nil {
		r.logger.Debug("cache get skipped", zap.String("key", key), zap.Error(err))
		return nil, nil
	}

	return data, nil
}

// Set is a no-op on backend failure or when the breaker is open.
func (r *Resilient) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	_, err := r.cb.Execute(func() ([]byte, error) {
		return nil, r.next.Set(ctx, key, value, ttl)
	})
	if err != nil {
		r.logger.Debug("cache set skipped", zap.String("key", key), zap.Error(err))
	}

	return nil
}

// Delete reports backend errors so callers know an entry may be stale.
func (r *Resilient) Delete(ctx context.Context, key string) error {
	_, err := r.cb.Execute(func() ([]byte, error) {
		return nil, r.next.Delete(ctx, key)
	})

	return err
}

// State returns the breaker state.
func (r *Resilient) State() gobreaker.State {
	return r.cb.State()
}
