package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"booking-service/internal/domain"
	"booking-service/internal/metrics"
	"booking-service/pkg/locker"
)

// DefaultArticleTTL is how long a category's article list stays cached.
const DefaultArticleTTL = 5 * time.Minute

// Locker runs fn while holding a distributed lock on key.
// Implementations: pkg/locker.Mutex
type Locker interface {
	WithLock(ctx context.Context, key string, lease, maxWait time.Duration, fn func(ctx context.Context) error) error
}

// CatalogService serves categories and their articles through a read-through cache.
type CatalogService struct {
	repo   domain.CatalogRepository
	cache  domain.Cache
	logger *zap.Logger
	ttl    time.Duration

	locker    Locker
	lockLease time.Duration
	lockWait  time.Duration
}

// CatalogOption configures a CatalogService.
type CatalogOption func(*CatalogService)

// WithArticleTTL overrides DefaultArticleTTL.
func WithArticleTTL(ttl time.Duration) CatalogOption {
	return func(s *CatalogService) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithStampedeLock makes concurrent cache misses for one key wait on a
// distributed lock so that only one of them loads from the repository.
func WithStampedeLock(l Locker, lease, maxWait time.Duration) CatalogOption {
	return func(s *CatalogService) {
		s.locker = l
		s.lockLease = lease
		s.lockWait = maxWait
	}
}

// NewCatalogService creates a new CatalogService. cache may be nil.
func NewCatalogService(repo domain.CatalogRepository, cache domain.Cache, logger *zap.Logger, opts ...CatalogOption) *CatalogService {
	s := &CatalogService{
		repo:   repo,
		cache:  cache,
		logger: logger,
		ttl:    DefaultArticleTTL,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// CategoryKey is the cache key holding the articles of a category.
func CategoryKey(categoryID int64) string {
	return fmt.Sprintf("category:%d", categoryID)
}

const categoriesKey = "categories"

// GetArticles returns the articles of a category, serving from cache when
// possible. Cache failures degrade to a repository read.
func (s *CatalogService) GetArticles(ctx context.Context, categoryID int64) ([]*domain.Article, error) {
	return readThrough(ctx, s, CategoryKey(categoryID), func(ctx context.Context) ([]*domain.Article, error) {
		return s.loadArticles(ctx, categoryID)
	})
}

// ListCategories returns every category, cached like articles.
func (s *CatalogService) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	return readThrough(ctx, s, categoriesKey, func(ctx context.Context) ([]*domain.Category, error) {
		categories, err := s.repo.ListCategories(ctx)
		if err != nil {
			return nil, fmt.Errorf("list categories: %w", err)
		}
		if categories == nil {
			categories = []*domain.Category{}
		}

		return categories, nil
	})
}

// Refresh reloads a category's articles from the repository into the cache,
// regardless of what is cached.
func (s *CatalogService) Refresh(ctx context.Context, categoryID int64) error {
	articles, err := s.loadArticles(ctx, categoryID)
	if err != nil {
		return err
	}

	s.store(ctx, CategoryKey(categoryID), articles)

	return nil
}

// RefreshAll refreshes the category list and every category's articles.
// It returns the number of categories refreshed; per-category failures are
// joined into the returned error without stopping the run.
func (s *CatalogService) RefreshAll(ctx context.Context) (int, error) {
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return 0, fmt.Errorf("list categories: %w", err)
	}
	if categories == nil {
		categories = []*domain.Category{}
	}
	s.store(ctx, categoriesKey, categories)

	var (
		refreshed int
		errs      []error
	)
	for _, c := range categories {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if err := s.Refresh(ctx, c.ID); err != nil {
			errs = append(errs, fmt.Errorf("category %d: %w", c.ID, err))
			continue
		}
		refreshed++
	}

	return refreshed, errors.Join(errs...)
}

// Evict drops a category's cached articles.
func (s *CatalogService) Evict(ctx context.Context, categoryID int64) error {
	if s.cache == nil {
		return nil
	}

	return s.cache.Delete(ctx, CategoryKey(categoryID))
}

func (s *CatalogService) loadArticles(ctx context.Context, categoryID int64) ([]*domain.Article, error) {
	articles, err := s.repo.ListArticlesByCategory(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}

	if len(articles) == 0 {
		category, err := s.repo.GetCategory(ctx, categoryID)
		if err != nil {
			return nil, fmt.Errorf("get category: %w", err)
		}
		if category == nil {
			return nil, fmt.Errorf("%w: %d", domain.ErrCategoryNotFound, categoryID)
		}

		return []*domain.Article{}, nil
	}

	return articles, nil
}

// readThrough returns the cached value under key or loads, caches and returns it.
// With a stampede lock configured, only the lock holder loads; a caller that
// cannot get the lock in time, or hits a lock backend error, loads on its own.
func readThrough[T any](ctx context.Context, s *CatalogService, key string, load func(ctx context.Context) (T, error)) (T, error) {
	if v, ok := lookup[T](ctx, s, key); ok {
		return v, nil
	}

	if s.locker == nil || s.cache == nil {
		return loadAndStore(ctx, s, key, load)
	}

	var (
		result  T
		loadErr error
		loaded  bool
	)
	lockErr := s.locker.WithLock(ctx, "lock:"+key, s.lockLease, s.lockWait, func(ctx context.Context) error {
		// Another holder may have populated the key while we waited.
		if v, ok := lookup[T](ctx, s, key); ok {
			result, loaded = v, true
			return nil
		}

		result, loadErr = loadAndStore(ctx, s, key, load)
		loaded = loadErr == nil

		return loadErr
	})

	switch {
	case loaded:
		return result, nil
	case loadErr != nil:
		var zero T
		return zero, loadErr
	case errors.Is(lockErr, locker.ErrLockAcquisitionTimeout):
		s.logger.Warn("cache fill lock busy, reading store directly", zap.String("key", key))
	case lockErr != nil:
		if ctxErr := ctx.Err(); ctxErr != nil {
			var zero T
			return zero, ctxErr
		}
		s.logger.Warn("cache fill lock failed, reading store directly",
			zap.String("key", key),
			zap.Error(lockErr),
		)
	}

	if v, ok := lookup[T](ctx, s, key); ok {
		return v, nil
	}

	return loadAndStore(ctx, s, key, load)
}

func lookup[T any](ctx context.Context, s *CatalogService, key string) (T, bool) {
	var v T
	if s.cache == nil {
		return v, false
	}

	data, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn("cache get failed, falling back to store", zap.String("key", key), zap.Error(err))
		metrics.CacheLookupsTotal.WithLabelValues("catalog", "error").Inc()
		return v, false
	}
	if data == nil {
		metrics.CacheLookupsTotal.WithLabelValues("catalog", "miss").Inc()
		s.logger.Debug("cache miss", zap.String("key", key))
		return v, false
	}

	if err := json.Unmarshal(data, &v); err != nil {
		s.logger.Warn("discarding undecodable cache entry", zap.String("key", key), zap.Error(err))
		metrics.CacheLookupsTotal.WithLabelValues("catalog", "error").Inc()
		return v, false
	}

	metrics.CacheLookupsTotal.WithLabelValues("catalog", "hit").Inc()
	s.logger.Debug("cache hit", zap.String("key", key))

	return v, true
}

func loadAndStore[T any](ctx context.Context, s *CatalogService, key string, load func(ctx context.Context) (T, error)) (T, error) {
	v, err := load(ctx)
	if err != nil {
		return v, err
	}
	s.store(ctx, key, v)

	return v, nil
}

func (s *CatalogService) store(ctx context.Context, key string, v any) {
	if s.cache == nil {
		return
	}

	data, err := json.Marshal(v)
	if err != nil {
		s.logger.Error("encode cache entry failed", zap.String("key", key), zap.Error(err))
		return
	}

	if err := s.cache.Set(ctx, key, data, s.ttl); err != nil {
		s.logger.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
}
