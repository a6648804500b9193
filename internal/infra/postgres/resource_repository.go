package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"booking-service/internal/domain"
)

// ResourceRepository implements domain.ResourceRepository using PostgreSQL.
type ResourceRepository struct {
	db *gorm.DB
}

// NewResourceRepository creates a new ResourceRepository.
func NewResourceRepository(db *gorm.DB) *ResourceRepository {
	return &ResourceRepository{db: db}
}

// Create inserts an available resource at version 0.
func (r *ResourceRepository) Create(ctx context.Context, name string) (*domain.Resource, error) {
	model := &ResourceModel{Name: name, Available: true}

	if err := conn(ctx, r.db).Create(model).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("resource %q: %w", name, domain.ErrDuplicate)
		}

		return nil, fmt.Errorf("creating resource: %w", err)
	}

	return model.ToDomain(), nil
}

// GetByID retrieves a resource by ID regardless of availability.
func (r *ResourceRepository) GetByID(ctx context.Context, id int64) (*domain.Resource, error) {
	return r.first(conn(ctx, r.db).Where("id = ?", id), "getting resource by id")
}

// FindAvailableByID retrieves a resource only if it is available.
func (r *ResourceRepository) FindAvailableByID(ctx context.Context, id int64) (*domain.Resource, error) {
	return r.first(
		conn(ctx, r.db).Where("id = ? AND available = ?", id, true),
		"finding available resource",
	)
}

// FindAvailableByIDForUpdate is FindAvailableByID with SELECT ... FOR UPDATE.
// It must run inside a transaction; the row lock lasts until it ends.
func (r *ResourceRepository) FindAvailableByIDForUpdate(ctx context.Context, id int64) (*domain.Resource, error) {
	if txFromContext(ctx) == nil {
		return nil, errors.New("finding available resource for update: no transaction in context")
	}

	return r.first(
		conn(ctx, r.db).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND available = ?", id, true),
		"locking available resource",
	)
}

// ConditionalMarkUnavailable claims the resource in one statement guarded
// by the expected version.
func (r *ResourceRepository) ConditionalMarkUnavailable(ctx context.Context, id, expectedVersion int64) (int64, error) {
	result := conn(ctx, r.db).
		Model(&ResourceModel{}).
		Where("id = ? AND version = ? AND available = ?", id, expectedVersion, true).
		Updates(map[string]any{
			"available": false,
			"version":   gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return 0, fmt.Errorf("conditionally marking resource unavailable: %w", result.Error)
	}

	return result.RowsAffected, nil
}

// MarkUnavailable marks the resource unavailable and bumps its version.
func (r *ResourceRepository) MarkUnavailable(ctx context.Context, id int64) error {
	result := conn(ctx, r.db).
		Model(&ResourceModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"available": false,
			"version":   gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return fmt.Errorf("marking resource unavailable: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("marking resource unavailable: %w", domain.ErrResourceNotFound)
	}

	return nil
}

func (r *ResourceRepository) first(query *gorm.DB, op string) (*domain.Resource, error) {
	var model ResourceModel
	if err := query.First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil // Not found
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return model.ToDomain(), nil
}
