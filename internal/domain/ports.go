package domain

import (
	"context"
	"time"
)

// Transactor runs fn inside one store transaction. The transaction is
// committed when fn returns nil and rolled back on any error or panic.
// Repositories called with the context passed to fn join the transaction.
// Implementations: internal/infra/postgres/tx.go
type Transactor interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// ResourceRepository defines persistence for bookable resources.
// Implementations: internal/infra/postgres/resource_repository.go
type ResourceRepository interface {
	// GetByID returns the resource regardless of availability, or nil if absent.
	GetByID(ctx context.Context, id int64) (*Resource, error)

	// FindAvailableByID returns the resource only if it is available, or nil.
	FindAvailableByID(ctx context.Context, id int64) (*Resource, error)

	// FindAvailableByIDForUpdate is FindAvailableByID holding an exclusive
	// row lock until the enclosing transaction ends.
	FindAvailableByIDForUpdate(ctx context.Context, id int64) (*Resource, error)

	// ConditionalMarkUnavailable marks the resource unavailable and bumps its
	// version in one write, only if the stored version equals expectedVersion.
	// Returns the number of rows affected (0 or 1).
	ConditionalMarkUnavailable(ctx context.Context, id, expectedVersion int64) (int64, error)

	// MarkUnavailable marks the resource unavailable unconditionally.
	// Callers must hold the row lock.
	MarkUnavailable(ctx context.Context, id int64) error
}

// ReservationRepository defines persistence for reservation records.
// Implementations: internal/infra/postgres/reservation_repository.go
type ReservationRepository interface {
	// Create inserts the reservation and fills its ID and CreatedAt.
	Create(ctx context.Context, r *Reservation) error

	// ListByResource returns committed reservations for a resource, oldest first.
	ListByResource(ctx context.Context, resourceID int64) ([]*Reservation, error)
}

// CatalogRepository defines read access to categories and articles.
// Implementations: internal/infra/postgres/catalog_repository.go
type CatalogRepository interface {
	ListCategories(ctx context.Context) ([]*Category, error)

	// GetCategory returns nil if the category does not exist.
	GetCategory(ctx context.Context, id int64) (*Category, error)

	ListArticlesByCategory(ctx context.Context, categoryID int64) ([]*Article, error)
}

// ClientRepository looks up registered API clients.
// Implementations: internal/infra/postgres/client_repository.go
type ClientRepository interface {
	// GetByAPIKey returns the active client owning key, or nil.
	GetByAPIKey(ctx context.Context, key string) (*APIClient, error)
}

// Cache defines the interface for caching operations.
// Implementations: internal/infra/redis/cache.go, internal/infra/cache/memory.go
type Cache interface {
	// Get retrieves a value by key. Returns nil if not found.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value with the given TTL.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value by key.
	Delete(ctx context.Context, key string) error
}

// RateLimiter counts hits per key in fixed windows.
// Implementations: internal/infra/redis/ratelimit.go
type RateLimiter interface {
	// Allow records one hit for key and reports whether it is within limit
	// for the current window, along with the hit count so far.
	Allow(ctx context.Context, key string, limit int64, window time.Duration) (bool, int64, error)
}

// EventPublisher delivers domain events to other systems.
// Implementations: internal/infra/kafka/publisher.go
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
}
