// Package httpserver provides HTTP server and routing.
package httpserver

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/zap"

	"booking-service/internal/transport/httpserver/dto"
	"booking-service/internal/transport/httpserver/handler"
	"booking-service/internal/transport/httpserver/middleware"
	"booking-service/internal/validator"
)

// ServerConfig holds server configuration.
type ServerConfig struct {
	Port      int
	BodyLimit int
	Debug     bool
}

// Dependencies are the services the routes dispatch to.
type Dependencies struct {
	Reservations handler.ReservationService
	Catalog      handler.CatalogReader
	Access       middleware.Authorizer
	Probes       map[string]middleware.Probe
	Metrics      http.Handler
	Validator    *validator.Validator
}

// Server wraps Fiber app with handlers.
type Server struct {
	App    *fiber.App
	Logger *zap.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(cfg ServerConfig, deps Dependencies, logger *zap.Logger) *Server {
	if deps.Validator == nil {
		deps.Validator = validator.New()
	}

	app := fiber.New(fiber.Config{
		AppName:               "booking-service",
		BodyLimit:             cfg.BodyLimit,
		ErrorHandler:          errorHandler(logger),
		DisableStartupMessage: !cfg.Debug,
		EnablePrintRoutes:     cfg.Debug,
	})

	// Health check middleware MUST be registered BEFORE other middleware
	// for Kubernetes probes to work even during high load
	app.Use(middleware.NewHealthCheck(deps.Probes, logger))

	app.Use(requestid.New())
	app.Use(middleware.Recover(logger))
	app.Use(middleware.Logger(logger))
	app.Use(middleware.CORS())
	app.Use(compress.New())

	if deps.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(deps.Metrics))
	}

	reservationHandler := handler.NewReservationHandler(deps.Reservations, deps.Validator, logger)
	catalogHandler := handler.NewCatalogHandler(deps.Catalog, logger)
	apiKeyAuth := middleware.APIKeyAuth(deps.Access, logger)

	registerRoutes(app, reservationHandler, catalogHandler, apiKeyAuth)

	return &Server{
		App:    app,
		Logger: logger,
	}
}

// registerRoutes sets up all API routes.
func registerRoutes(
	app *fiber.App,
	reservationHandler *handler.ReservationHandler,
	catalogHandler *handler.CatalogHandler,
	apiKeyAuth fiber.Handler,
) {
	// Health checks are handled by middleware (/livez, /readyz)

	v1 := app.Group("/api/v1")

	resources := v1.Group("/resources")
	resources.Get("/:id", reservationHandler.GetResource)
	resources.Post("/:id/reservations", reservationHandler.Reserve)
	resources.Get("/:id/reservations", reservationHandler.ListReservations)

	categories := v1.Group("/categories")
	categories.Get("/", catalogHandler.ListCategories)
	categories.Get("/:id/articles", apiKeyAuth, catalogHandler.GetArticles)
}

// errorHandler returns a custom error handler that logs based on HTTP status code.
// 404s are logged at DEBUG level (expected client behavior), 4xx at WARN, 5xx at ERROR.
func errorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError

		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
		}

		switch {
		case code == fiber.StatusNotFound:
			logger.Debug("route not found",
				zap.String("path", c.Path()),
				zap.String("method", c.Method()),
			)
		case code >= 500:
			logger.Error("server error",
				zap.Error(err),
				zap.Int("status", code),
				zap.String("path", c.Path()),
			)
		default:
			logger.Warn("client error",
				zap.Error(err),
				zap.Int("status", code),
				zap.String("path", c.Path()),
			)
		}

		msg := err.Error()
		if code >= 500 {
			msg = "internal server error"
		}

		return c.Status(code).JSON(dto.ErrorResponse{
			Error: msg,
			Code:  "UNHANDLED_ERROR",
		})
	}
}

// Start starts the HTTP server.
func (s *Server) Start(port int) error {
	s.Logger.Info("starting HTTP server", zap.Int("port", port))

	return s.App.Listen(fmt.Sprintf(":%d", port))
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown() error {
	s.Logger.Info("shutting down HTTP server")

	return s.App.Shutdown()
}
