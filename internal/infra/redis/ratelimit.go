package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// The expiry is set on the first hit only, so a window starts at the first
// request and the counter resets when it expires.
var fixedWindowScript = redis.NewScript(`
local count = redis.call("INCR", KEYS[1])
if count == 1 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return count
`)

// RateLimiter implements domain.RateLimiter with fixed-window counters.
type RateLimiter struct {
	client redis.UniversalClient
}

// NewRateLimiter creates a new RateLimiter.
func NewRateLimiter(client redis.UniversalClient) *RateLimiter {
	return &RateLimiter{client: client}
}

// Allow increments the counter for key and reports whether it is still
// within limit for the current window.
func (l *RateLimiter) Allow(ctx context.Context, key string, limit int64, window time.Duration) (bool, int64, error) {
	count, err := fixedWindowScript.Run(ctx, l.client, []string{key}, window.Milliseconds()).Int64()
	if err != nil {
		return false, 0, fmt.Errorf("rate limit %s: %w", key, err)
	}

	return count <= limit, count, nil
}
