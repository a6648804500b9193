// Package domain contains the core business entities, errors and ports.
// This package has no external dependencies (only stdlib).
package domain

import "time"

// Strategy selects how a reservation guards against concurrent claims.
type Strategy string

const (
	// StrategyOptimistic reads without locking and claims the resource with a
	// version-checked conditional write.
	StrategyOptimistic Strategy = "optimistic"
	// StrategyPessimistic takes an exclusive row lock at read time.
	StrategyPessimistic Strategy = "pessimistic"
)

// Valid reports whether s is a known strategy.
func (s Strategy) Valid() bool {
	return s == StrategyOptimistic || s == StrategyPessimistic
}

// Resource is a bookable unit.
//
// Version is the optimistic-concurrency token. It only grows, and it grows
// exactly once when the resource goes from available to unavailable.
// Available never flips back to true inside this system.
type Resource struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Available bool      `json:"available"`
	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Reservation is the record of a user claiming a resource.
// ID and CreatedAt are assigned by the store.
type Reservation struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"user_id"`
	ResourceID int64     `json:"resource_id"`
	Strategy   Strategy  `json:"strategy"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewReservation creates an unsaved Reservation.
func NewReservation(userID, resourceID int64, strategy Strategy) *Reservation {
	return &Reservation{
		UserID:     userID,
		ResourceID: resourceID,
		Strategy:   strategy,
	}
}
