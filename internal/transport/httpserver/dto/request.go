// Package dto provides Data Transfer Objects for HTTP requests and responses.
package dto

import "booking-service/internal/domain"

// ReserveRequest is the body of POST /api/v1/resources/:id/reservations.
type ReserveRequest struct {
	UserID   int64  `json:"user_id" validate:"required,min=1"`
	Strategy string `json:"strategy" validate:"omitempty,strategy"`
}

// StrategyOrDefault returns the requested strategy, optimistic when omitted.
func (r *ReserveRequest) StrategyOrDefault() domain.Strategy {
	if r.Strategy == "" {
		return domain.StrategyOptimistic
	}

	return domain.Strategy(r.Strategy)
}
