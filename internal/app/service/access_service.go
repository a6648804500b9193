package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"booking-service/internal/domain"
	"booking-service/internal/metrics"
)

// Default rate limits applied to the public catalog endpoints.
const (
	DefaultIPLimit     = 5
	DefaultAPIKeyLimit = 10
	DefaultLimitWindow = time.Minute
	DefaultClientTTL   = 10 * time.Minute
)

// Limits configures the fixed-window rate limits.
type Limits struct {
	IP     int64
	APIKey int64
	Window time.Duration
}

// AccessService authenticates API clients and enforces rate limits.
type AccessService struct {
	clients   domain.ClientRepository
	cache     domain.Cache
	limiter   domain.RateLimiter
	limits    Limits
	clientTTL time.Duration
	logger    *zap.Logger
}

// NewAccessService creates a new AccessService. cache may be nil.
// Zero fields in limits take the package defaults.
func NewAccessService(
	clients domain.ClientRepository,
	cache domain.Cache,
	limiter domain.RateLimiter,
	limits Limits,
	clientTTL time.Duration,
	logger *zap.Logger,
) *AccessService {
	if limits.IP <= 0 {
		limits.IP = DefaultIPLimit
	}
	if limits.APIKey <= 0 {
		limits.APIKey = DefaultAPIKeyLimit
	}
	if limits.Window <= 0 {
		limits.Window = DefaultLimitWindow
	}
	if clientTTL <= 0 {
		clientTTL = DefaultClientTTL
	}

	return &AccessService{
		clients:   clients,
		cache:     cache,
		limiter:   limiter,
		limits:    limits,
		clientTTL: clientTTL,
		logger:    logger,
	}
}

// APIKeyLimitKey is the rate limit counter key for an API key.
func APIKeyLimitKey(apiKey string) string {
	return "rate_limit:api_key:" + apiKey
}

// IPLimitKey is the rate limit counter key for a client address.
func IPLimitKey(ip string) string {
	return "rate_limit:" + ip
}

// Authorize resolves apiKey to a registered client and counts the request
// against the per-key and then the per-IP limit.
//
// It returns domain.ErrUnauthorized for a missing or unknown key and
// domain.ErrRateLimited when either limit is exceeded. Limiter backend
// errors let the request through.
func (s *AccessService) Authorize(ctx context.Context, apiKey, ip string) (*domain.APIClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: missing api key", domain.ErrUnauthorized)
	}

	client, err := s.GetByAPIKey(ctx, apiKey)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, fmt.Errorf("%w: unknown api key", domain.ErrUnauthorized)
	}

	if err := s.allow(ctx, "api_key", APIKeyLimitKey(apiKey), s.limits.APIKey); err != nil {
		return nil, err
	}
	if err := s.allow(ctx, "ip", IPLimitKey(ip), s.limits.IP); err != nil {
		return nil, err
	}

	return client, nil
}

// GetByAPIKey returns the active client owning apiKey, or nil.
// Lookups are cached for the configured client TTL.
func (s *AccessService) GetByAPIKey(ctx context.Context, apiKey string) (*domain.APIClient, error) {
	key := "api_client:" + apiKey

	if s.cache != nil {
		data, err := s.cache.Get(ctx, key)
		switch {
		case err != nil:
			s.logger.Warn("client cache get failed", zap.Error(err))
		case data != nil:
			var client domain.APIClient
			if err := json.Unmarshal(data, &client); err == nil {
				metrics.CacheLookupsTotal.WithLabelValues("api_client", "hit").Inc()
				return &client, nil
			}
		}
		metrics.CacheLookupsTotal.WithLabelValues("api_client", "miss").Inc()
	}

	client, err := s.clients.GetByAPIKey(ctx, apiKey)
	if err != nil {
		return nil, fmt.Errorf("get client by api key: %w", err)
	}
	if client == nil || !client.Active {
		return nil, nil
	}

	if s.cache != nil {
		if data, err := json.Marshal(client); err == nil {
			if err := s.cache.Set(ctx, key, data, s.clientTTL); err != nil {
				s.logger.Warn("client cache set failed", zap.Error(err))
			}
		}
	}

	return client, nil
}

func (s *AccessService) allow(ctx context.Context, scope, key string, limit int64) error {
	allowed, count, err := s.limiter.Allow(ctx, key, limit, s.limits.Window)
	if err != nil {
		s.logger.Warn("rate limiter unavailable, allowing request",
			zap.String("scope", scope),
			zap.Error(err),
		)
		return nil
	}

	if !allowed {
		metrics.RateLimitedTotal.WithLabelValues(scope).Inc()
		s.logger.Info("rate limit exceeded",
			zap.String("scope", scope),
			zap.String("key", key),
			zap.Int64("count", count),
			zap.Int64("limit", limit),
		)
		return fmt.Errorf("%w: %s", domain.ErrRateLimited, scope)
	}

	return nil
}
