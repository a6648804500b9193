package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"booking-service/internal/domain"
)

// ClientRepository implements domain.ClientRepository using PostgreSQL.
type ClientRepository struct {
	db *gorm.DB
}

// NewClientRepository creates a new ClientRepository.
func NewClientRepository(db *gorm.DB) *ClientRepository {
	return &ClientRepository{db: db}
}

// GetByAPIKey returns the active client owning key, or nil.
func (r *ClientRepository) GetByAPIKey(ctx context.Context, key string) (*domain.APIClient, error) {
	var model APIClientModel
	err := conn(ctx, r.db).
		Where("api_key = ? AND active = ?", key, true).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil // Not found
		}

		return nil, fmt.Errorf("getting client by api key: %w", err)
	}

	return model.ToDomain(), nil
}

// Create registers a client.
func (r *ClientRepository) Create(ctx context.Context, c *domain.APIClient) error {
	model := &APIClientModel{Name: c.Name, APIKey: c.APIKey, Active: c.Active}
	if err := conn(ctx, r.db).Create(model).Error; err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("api client: %w", domain.ErrDuplicate)
		}

		return fmt.Errorf("creating api client: %w", err)
	}
	c.ID = model.ID

	return nil
}
