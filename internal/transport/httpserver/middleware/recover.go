package middleware

import (
	"runtime/debug"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/zap"

	"booking-service/internal/transport/httpserver/dto"
	"booking-service/internal/transport/httpserver/handler"
)

// Recover turns a panicking handler into a 500 INTERNAL_ERROR response.
// The request id, when present, is logged and echoed in the error details
// so a client report can be matched to the stack trace.
func Recover(logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}

			rid, _ := c.Locals(requestid.ConfigDefault.ContextKey).(string)
			logger.Error("panic recovered",
				zap.Any("error", r),
				zap.String("stack", string(debug.Stack())),
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("request_id", rid),
			)

			resp := dto.ErrorResponse{
				Error: "internal server error",
				Code:  handler.CodeInternal,
			}
			if rid != "" {
				resp.Details = fiber.Map{"request_id": rid}
			}

			err = c.Status(fiber.StatusInternalServerError).JSON(resp)
		}()

		return c.Next()
	}
}
