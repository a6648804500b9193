package domain

import "errors"

var (
	// ErrResourceUnavailable means no available resource matched at read time.
	ErrResourceUnavailable = errors.New("resource unavailable")
	// ErrConcurrentConflict means the optimistic claim lost a race.
	// Retrying with a fresh read is safe.
	ErrConcurrentConflict = errors.New("concurrent conflict")
	ErrInvalidStrategy    = errors.New("invalid reservation strategy")
	ErrResourceNotFound   = errors.New("resource not found")
	ErrCategoryNotFound   = errors.New("category not found")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrRateLimited        = errors.New("rate limit exceeded")
)

// ErrDuplicate means a uniquely keyed record already exists.
var ErrDuplicate = errors.New("already exists")
