package locker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-redsync/redsync/v4"
	redsyncredis "github.com/go-redsync/redsync/v4/redis"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
)

// RedlockStore implements Store across one or more independent Redis nodes
// using the Redlock algorithm (via Redsync). A key counts as set or deleted
// only when a quorum of nodes agrees.
//
// Unlike Redsync's default behaviour the stored value is the caller's owner
// token, so a lease taken here can be released by any process holding it.
type RedlockStore struct {
	rs *redsync.Redsync
}

// NewRedlockStore creates a Redlock-backed Store over the given clients.
// A single client degrades to plain single-node locking.
func NewRedlockStore(clients ...redis.UniversalClient) *RedlockStore {
	pools := make([]redsyncredis.Pool, 0, len(clients))
	for _, c := range clients {
		pools = append(pools, goredis.NewPool(c))
	}

	return &RedlockStore{rs: redsync.New(pools...)}
}

// SetIfAbsent implements Store with a single, non-retrying Redlock attempt.
// Retrying is left to the Mutex so every backend shares one backoff policy.
func (s *RedlockStore) SetIfAbsent(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	mutex := s.rs.NewMutex(
		key,
		redsync.WithExpiry(ttl),
		redsync.WithTries(1),
		redsync.WithGenValueFunc(func() (string, error) { return value, nil }),
	)

	err := mutex.LockContext(ctx)
	if err != nil {
		// Redsync reports contention either as ErrFailed or as a wrapped
		// "lock already taken, locked nodes: [X]" error.
		if isContention(err) {
			return false, nil
		}

		return false, fmt.Errorf("redlock set %s: %w", key, err)
	}

	return true, nil
}

// CompareAndDelete implements Store. Redsync's release script already
// compares the stored value before deleting, on every node.
func (s *RedlockStore) CompareAndDelete(ctx context.Context, key, expected string) (bool, error) {
	mutex := s.rs.NewMutex(key, redsync.WithValue(expected))

	ok, err := mutex.UnlockContext(ctx)
	if err != nil {
		if isContention(err) {
			return false, nil
		}

		return false, fmt.Errorf("redlock delete %s: %w", key, err)
	}

	return ok, nil
}

func isContention(err error) bool {
	if errors.Is(err, redsync.ErrFailed) || errors.Is(err, redsync.ErrLockAlreadyExpired) {
		return true
	}
	msg := err.Error()

	return strings.Contains(msg, "lock already taken") || strings.Contains(msg, "already expired")
}
