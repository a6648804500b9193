// Package locker provides a lease-based distributed mutex for coordinating
// critical sections across processes that only share a key-value store.
package locker

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrLockAcquisitionTimeout is returned by WithLock when the lock could not be
// obtained within the allowed wait.
var ErrLockAcquisitionTimeout = errors.New("lock acquisition timed out")

// ErrInvalidLease is returned by Acquire for a non-positive lease. Stores
// treat a zero expiry as "never expires", so such a lock would outlive a
// crashed holder.
var ErrInvalidLease = errors.New("lock lease must be positive")

// Store is the key-value backend a Mutex is built on.
// Implementations must be safe for concurrent use.
type Store interface {
	// SetIfAbsent atomically stores value at key with the given expiry,
	// only if key is currently absent. Returns true when the value was stored.
	SetIfAbsent(ctx context.Context, key, value string, ttl time.Duration) (bool, error)

	// CompareAndDelete atomically deletes key if and only if its current
	// value equals expected. Returns true when the key was deleted.
	CompareAndDelete(ctx context.Context, key, expected string) (bool, error)
}

// DistributedLocker provides named, time-bounded locks across instances.
//
// Typical usage:
//
//	token := locker.NewToken()
//	acquired, err := l.Acquire(ctx, "room:1", token, 30*time.Second, 3*time.Second)
//	if err != nil {
//	    return err
//	}
//	if !acquired {
//	    // Another owner held the lock for the whole wait
//	    return nil
//	}
//	defer l.Release(ctx, "room:1", token)
type DistributedLocker interface {
	// Acquire tries to bind key to token for lease, retrying with jittered
	// exponential backoff for at most maxWait. Returns false (not error)
	// when the lock stayed held for the whole wait.
	Acquire(ctx context.Context, key, token string, lease, maxWait time.Duration) (bool, error)

	// Release deletes key only if it is still bound to token.
	// Returns false (not error) when token no longer owns the lock.
	Release(ctx context.Context, key, token string) (bool, error)
}

// NewToken mints an owner token. Every acquisition should use a fresh one.
func NewToken() string {
	return uuid.NewString()
}
