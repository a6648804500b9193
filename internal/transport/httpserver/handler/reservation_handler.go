package handler

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"booking-service/internal/domain"
	"booking-service/internal/transport/httpserver/dto"
	"booking-service/internal/validator"
)

// ReservationService is the subset of service.ReservationService the handler needs.
type ReservationService interface {
	Reserve(ctx context.Context, strategy domain.Strategy, userID, resourceID int64) (*domain.Reservation, error)
	GetResource(ctx context.Context, id int64) (*domain.Resource, error)
	ListReservations(ctx context.Context, resourceID int64) ([]*domain.Reservation, error)
}

// ReservationHandler handles resource and reservation requests.
type ReservationHandler struct {
	service   ReservationService
	validator *validator.Validator
	logger    *zap.Logger
}

// NewReservationHandler creates a new ReservationHandler.
func NewReservationHandler(svc ReservationService, v *validator.Validator, logger *zap.Logger) *ReservationHandler {
	return &ReservationHandler{
		service:   svc,
		validator: v,
		logger:    logger,
	}
}

// GetResource handles GET /api/v1/resources/:id
func (h *ReservationHandler) GetResource(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return badRequest(c, "id must be a positive integer", CodeInvalidParams, nil)
	}

	resource, err := h.service.GetResource(c.UserContext(), int64(id))
	if err != nil {
		return WriteError(c, h.logger, err)
	}

	return c.JSON(dto.FromDomainResource(resource))
}

// Reserve handles POST /api/v1/resources/:id/reservations
func (h *ReservationHandler) Reserve(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return badRequest(c, "id must be a positive integer", CodeInvalidParams, nil)
	}

	var req dto.ReserveRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body", CodeInvalidParams, nil)
	}

	if err := h.validator.Validate(&req); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return WriteError(c, h.logger, err)
		}
		return badRequest(c, "validation failed", CodeValidation, fieldErrs)
	}

	reservation, err := h.service.Reserve(c.UserContext(), req.StrategyOrDefault(), req.UserID, int64(id))
	if err != nil {
		return WriteError(c, h.logger, err)
	}

	return c.Status(fiber.StatusCreated).JSON(dto.FromDomainReservation(reservation))
}

// ListReservations handles GET /api/v1/resources/:id/reservations
func (h *ReservationHandler) ListReservations(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return badRequest(c, "id must be a positive integer", CodeInvalidParams, nil)
	}

	list, err := h.service.ListReservations(c.UserContext(), int64(id))
	if err != nil {
		return WriteError(c, h.logger, err)
	}

	return c.JSON(dto.FromDomainReservations(list))
}
