package domain

import (
	"strconv"
	"time"
)

// EventReservationCreated is emitted after a reservation commits.
const EventReservationCreated = "reservation.created"

// Event is a domain event published after a state change commits.
type Event struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	Key        string    `json:"key"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload"`
}

// NewReservationCreatedEvent builds the event for a committed reservation,
// keyed by resource so events for one resource stay ordered.
func NewReservationCreatedEvent(id string, r *Reservation) Event {
	return Event{
		ID:         id,
		Type:       EventReservationCreated,
		Key:        strconv.FormatInt(r.ResourceID, 10),
		OccurredAt: r.CreatedAt,
		Payload:    r,
	}
}
