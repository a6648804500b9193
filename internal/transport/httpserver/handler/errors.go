// Package handler provides HTTP handlers for the API.
package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"booking-service/internal/domain"
	"booking-service/internal/transport/httpserver/dto"
	"booking-service/pkg/locker"
)

// Error codes returned in dto.ErrorResponse.
const (
	CodeResourceUnavailable = "RESOURCE_UNAVAILABLE"
	CodeConcurrentConflict  = "CONCURRENT_CONFLICT"
	CodeInvalidStrategy     = "INVALID_STRATEGY"
	CodeNotFound            = "NOT_FOUND"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeRateLimited         = "RATE_LIMITED"
	CodeLockTimeout         = "LOCK_TIMEOUT"
	CodeInvalidParams       = "INVALID_PARAMS"
	CodeValidation          = "VALIDATION_ERROR"
	CodeInternal            = "INTERNAL_ERROR"
)

// StatusFor maps a service error to its HTTP status and error code.
func StatusFor(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrResourceUnavailable):
		return fiber.StatusConflict, CodeResourceUnavailable
	case errors.Is(err, domain.ErrConcurrentConflict):
		return fiber.StatusConflict, CodeConcurrentConflict
	case errors.Is(err, domain.ErrInvalidStrategy):
		return fiber.StatusBadRequest, CodeInvalidStrategy
	case errors.Is(err, domain.ErrResourceNotFound), errors.Is(err, domain.ErrCategoryNotFound):
		return fiber.StatusNotFound, CodeNotFound
	case errors.Is(err, domain.ErrUnauthorized):
		return fiber.StatusUnauthorized, CodeUnauthorized
	case errors.Is(err, domain.ErrRateLimited):
		return fiber.StatusTooManyRequests, CodeRateLimited
	case errors.Is(err, locker.ErrLockAcquisitionTimeout):
		return fiber.StatusServiceUnavailable, CodeLockTimeout
	default:
		return fiber.StatusInternalServerError, CodeInternal
	}
}

// WriteError writes err as a dto.ErrorResponse. Internal errors are logged
// and their message is not exposed.
func WriteError(c *fiber.Ctx, logger *zap.Logger, err error) error {
	status, code := StatusFor(err)

	msg := err.Error()
	if status == fiber.StatusInternalServerError {
		logger.Error("request failed",
			zap.String("path", c.Path()),
			zap.String("method", c.Method()),
			zap.Error(err),
		)
		msg = "internal server error"
	}

	return c.Status(status).JSON(dto.ErrorResponse{
		Error: msg,
		Code:  code,
	})
}

func badRequest(c *fiber.Ctx, msg, code string, details any) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
		Error:   msg,
		Code:    code,
		Details: details,
	})
}
