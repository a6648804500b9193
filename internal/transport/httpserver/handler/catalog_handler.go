package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"booking-service/internal/domain"
	"booking-service/internal/transport/httpserver/dto"
)

// CatalogReader is the subset of service.CatalogService the handler needs.
type CatalogReader interface {
	ListCategories(ctx context.Context) ([]*domain.Category, error)
	GetArticles(ctx context.Context, categoryID int64) ([]*domain.Article, error)
}

// CatalogHandler handles category and article requests.
type CatalogHandler struct {
	service CatalogReader
	logger  *zap.Logger
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(svc CatalogReader, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{service: svc, logger: logger}
}

// ListCategories handles GET /api/v1/categories
func (h *CatalogHandler) ListCategories(c *fiber.Ctx) error {
	categories, err := h.service.ListCategories(c.UserContext())
	if err != nil {
		return WriteError(c, h.logger, err)
	}

	return c.JSON(dto.CategoriesResponse{Categories: categories})
}

// GetArticles handles GET /api/v1/categories/:id/articles
func (h *CatalogHandler) GetArticles(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return badRequest(c, "id must be a positive integer", CodeInvalidParams, nil)
	}

	articles, err := h.service.GetArticles(c.UserContext(), int64(id))
	if err != nil {
		return WriteError(c, h.logger, err)
	}

	return c.JSON(dto.ArticlesResponse{Articles: articles})
}
