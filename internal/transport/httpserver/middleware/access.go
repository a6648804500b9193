package middleware

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"booking-service/internal/domain"
	"booking-service/internal/transport/httpserver/handler"
)

// APIKeyHeader carries the client's API key.
const APIKeyHeader = "X-API-KEY"

// ClientLocalsKey is the fiber Locals key holding the authorized *domain.APIClient.
const ClientLocalsKey = "api_client"

// Authorizer authenticates an API key and applies rate limits.
// Implementations: internal/app/service.AccessService
type Authorizer interface {
	Authorize(ctx context.Context, apiKey, ip string) (*domain.APIClient, error)
}

// APIKeyAuth rejects requests without a known API key (401) or over the
// per-key or per-IP rate limit (429).
func APIKeyAuth(auth Authorizer, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		client, err := auth.Authorize(c.UserContext(), c.Get(APIKeyHeader), c.IP())
		if err != nil {
			return handler.WriteError(c, logger, err)
		}

		c.Locals(ClientLocalsKey, client)

		return c.Next()
	}
}
