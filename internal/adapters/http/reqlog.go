package http

import (
	"context"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/geoengine/internal/pkg/logging"
)

// RequestIDLogMiddleware scopes a logger to the request so services logging
// through logging.FromContext emit the request ID.
func RequestIDLogMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		rid, _ := c.Locals("requestid").(string)
		if rid == "" {
			return c.Next()
		}

		reqLogger := slog.Default().With("request_id", rid)
		c.SetUserContext(logging.WithLogger(c.UserContext(), reqLogger))
		return c.Next()
	}
}

// LoggerFromCtx returns the request logger, or slog.Default outside a request.
func LoggerFromCtx(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx)
}
