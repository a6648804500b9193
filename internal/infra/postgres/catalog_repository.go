package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"booking-service/internal/domain"
)

// CatalogRepository implements domain.CatalogRepository using PostgreSQL.
type CatalogRepository struct {
	db *gorm.DB
}

// NewCatalogRepository creates a new CatalogRepository.
func NewCatalogRepository(db *gorm.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// ListCategories returns all categories ordered by ID.
func (r *CatalogRepository) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	var models []CategoryModel
	if err := conn(ctx, r.db).Order("id ASC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}

	categories := make([]*domain.Category, len(models))
	for i := range models {
		categories[i] = models[i].ToDomain()
	}

	return categories, nil
}

// GetCategory returns the category or nil if it does not exist.
func (r *CatalogRepository) GetCategory(ctx context.Context, id int64) (*domain.Category, error) {
	var model CategoryModel
	if err := conn(ctx, r.db).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil // Not found
		}

		return nil, fmt.Errorf("getting category: %w", err)
	}

	return model.ToDomain(), nil
}

// ListArticlesByCategory returns the articles of a category, newest first.
func (r *CatalogRepository) ListArticlesByCategory(ctx context.Context, categoryID int64) ([]*domain.Article, error) {
	var models []ArticleModel
	err := conn(ctx, r.db).
		Where("category_id = ?", categoryID).
		Order("published_at DESC, id ASC").
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("listing articles: %w", err)
	}

	articles := make([]*domain.Article, len(models))
	for i := range models {
		articles[i] = models[i].ToDomain()
	}

	return articles, nil
}

// CreateCategory inserts a category.
func (r *CatalogRepository) CreateCategory(ctx context.Context, c *domain.Category) error {
	model := &CategoryModel{Name: c.Name}
	if err := conn(ctx, r.db).Create(model).Error; err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("category %q: %w", c.Name, domain.ErrDuplicate)
		}

		return fmt.Errorf("creating category: %w", err)
	}
	c.ID = model.ID

	return nil
}

// CreateArticle inserts an article.
func (r *CatalogRepository) CreateArticle(ctx context.Context, a *domain.Article) error {
	model := &ArticleModel{
		CategoryID:  a.CategoryID,
		Title:       a.Title,
		Body:        a.Body,
		Tags:        a.Tags,
		PublishedAt: a.PublishedAt,
	}
	if err := conn(ctx, r.db).Create(model).Error; err != nil {
		return fmt.Errorf("creating article: %w", err)
	}
	a.ID = model.ID

	return nil
}
