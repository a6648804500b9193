// Package job provides background job schedulers.
package job

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"booking-service/pkg/locker"
)

// RefreshLockKey guards the refresh run across instances.
const RefreshLockKey = "refresh:categories"

// CatalogRefresher reloads every category into the cache.
// Implementations: internal/app/service.CatalogService
type CatalogRefresher interface {
	RefreshAll(ctx context.Context) (int, error)
}

// CacheRefresher periodically re-populates the catalog cache so hot reads
// rarely miss. A distributed lock ensures only one instance refreshes per
// interval.
type CacheRefresher struct {
	catalog  CatalogRefresher
	interval time.Duration
	timeout  time.Duration
	logger   *zap.Logger
	locker   locker.DistributedLocker

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// RefreshConfig holds refresher configuration.
type RefreshConfig struct {
	Interval  time.Duration
	Timeout   time.Duration
	OnStartup bool
}

// NewCacheRefresher creates a new CacheRefresher.
func NewCacheRefresher(
	catalog CatalogRefresher,
	cfg RefreshConfig,
	logger *zap.Logger,
	locker locker.DistributedLocker,
) *CacheRefresher {
	return &CacheRefresher{
		catalog:  catalog,
		interval: cfg.Interval,
		timeout:  cfg.Timeout,
		logger:   logger,
		locker:   locker,
	}
}

// Start begins the background refresh loop.
func (r *CacheRefresher) Start(runOnStartup bool) {
	r.ctx, r.cancel = context.WithCancel(context.Background())

	r.logger.Info("starting cache refresher",
		zap.Duration("interval", r.interval),
		zap.Bool("run_on_startup", runOnStartup),
	)

	r.wg.Add(1)
	go r.run(runOnStartup)
}

// Stop cancels the loop and waits for an in-flight run to finish.
func (r *CacheRefresher) Stop() {
	r.logger.Info("stopping cache refresher")
	r.cancel()
	r.wg.Wait()
	r.logger.Info("cache refresher stopped")
}

func (r *CacheRefresher) run(runOnStartup bool) {
	defer r.wg.Done()

	if runOnStartup {
		r.RunOnce(r.ctx)
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.ctx.Done():
			return
		case <-ticker.C:
			r.RunOnce(r.ctx)
		}
	}
}

// RunOnce performs one refresh if no other instance has refreshed within
// the interval. It reports whether this call did the refresh.
//
// The lock lease equals the interval and is kept after a successful run, so
// it doubles as a cooldown. After a failed run it is released so another
// instance can retry right away.
func (r *CacheRefresher) RunOnce(ctx context.Context) bool {
	token := locker.NewToken()

	acquired, err := r.locker.Acquire(ctx, RefreshLockKey, token, r.interval, 0)
	if err != nil {
		r.logger.Error("failed to acquire refresh lock", zap.Error(err))
		return false
	}
	if !acquired {
		r.logger.Debug("another instance refreshed recently, skipping")
		return false
	}

	runCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	start := time.Now()
	refreshed, err := r.catalog.RefreshAll(runCtx)
	if err != nil {
		if _, relErr := r.locker.Release(context.WithoutCancel(ctx), RefreshLockKey, token); relErr != nil {
			r.logger.Error("failed to release refresh lock", zap.Error(relErr))
		}
		r.logger.Warn("cache refresh completed with errors, lock released for retry",
			zap.Int("refreshed", refreshed),
			zap.Error(err),
		)
		return true
	}

	r.logger.Info("cache refresh completed, lock held for cooldown",
		zap.Int("refreshed", refreshed),
		zap.Duration("duration", time.Since(start)),
		zap.Duration("cooldown", r.interval),
	)

	return true
}
