package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"booking-service/internal/domain"
)

// ReservationRepository implements domain.ReservationRepository using PostgreSQL.
type ReservationRepository struct {
	db *gorm.DB
}

// NewReservationRepository creates a new ReservationRepository.
func NewReservationRepository(db *gorm.DB) *ReservationRepository {
	return &ReservationRepository{db: db}
}

// Create inserts the reservation and fills its ID and CreatedAt.
func (r *ReservationRepository) Create(ctx context.Context, res *domain.Reservation) error {
	model := &ReservationModel{
		UserID:     res.UserID,
		ResourceID: res.ResourceID,
		Strategy:   string(res.Strategy),
	}

	if err := conn(ctx, r.db).Create(model).Error; err != nil {
		return fmt.Errorf("creating reservation: %w", err)
	}

	res.ID = model.ID
	res.CreatedAt = model.CreatedAt

	return nil
}

// ListByResource returns the reservations of a resource, oldest first.
func (r *ReservationRepository) ListByResource(ctx context.Context, resourceID int64) ([]*domain.Reservation, error) {
	var models []ReservationModel
	err := conn(ctx, r.db).
		Where("resource_id = ?", resourceID).
		Order("created_at ASC, id ASC").
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("listing reservations: %w", err)
	}

	reservations := make([]*domain.Reservation, len(models))
	for i := range models {
		reservations[i] = models[i].ToDomain()
	}

	return reservations, nil
}

// CountByResource returns how many reservations a resource has.
func (r *ReservationRepository) CountByResource(ctx context.Context, resourceID int64) (int64, error) {
	var count int64
	err := conn(ctx, r.db).
		Model(&ReservationModel{}).
		Where("resource_id = ?", resourceID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("counting reservations: %w", err)
	}

	return count, nil
}
