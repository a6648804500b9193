package dto

import (
	"time"

	"booking-service/internal/domain"
)

// ResourceResponse represents a bookable resource.
type ResourceResponse struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Available bool   `json:"available"`
	Version   int64  `json:"version"`
	UpdatedAt string `json:"updated_at"`
}

// FromDomainResource converts domain.Resource to ResourceResponse.
func FromDomainResource(r *domain.Resource) ResourceResponse {
	return ResourceResponse{
		ID:        r.ID,
		Name:      r.Name,
		Available: r.Available,
		Version:   r.Version,
		UpdatedAt: r.UpdatedAt.Format(time.RFC3339),
	}
}

// ReservationResponse represents a committed reservation.
type ReservationResponse struct {
	ID         int64  `json:"id"`
	UserID     int64  `json:"user_id"`
	ResourceID int64  `json:"resource_id"`
	Strategy   string `json:"strategy"`
	CreatedAt  string `json:"created_at"`
}

// FromDomainReservation converts domain.Reservation to ReservationResponse.
func FromDomainReservation(r *domain.Reservation) ReservationResponse {
	return ReservationResponse{
		ID:         r.ID,
		UserID:     r.UserID,
		ResourceID: r.ResourceID,
		Strategy:   string(r.Strategy),
		CreatedAt:  r.CreatedAt.Format(time.RFC3339),
	}
}

// ReservationsResponse lists the reservations of a resource.
type ReservationsResponse struct {
	Reservations []ReservationResponse `json:"reservations"`
}

// FromDomainReservations converts a reservation list.
func FromDomainReservations(list []*domain.Reservation) ReservationsResponse {
	resp := ReservationsResponse{Reservations: make([]ReservationResponse, len(list))}
	for i, r := range list {
		resp.Reservations[i] = FromDomainReservation(r)
	}

	return resp
}

// CategoriesResponse lists all categories.
type CategoriesResponse struct {
	Categories []*domain.Category `json:"categories"`
}

// ArticlesResponse lists the articles of a category.
type ArticlesResponse struct {
	Articles []*domain.Article `json:"articles"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}
