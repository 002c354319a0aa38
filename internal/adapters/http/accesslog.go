package http

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
)

// quietPaths are polled by orchestrators and scrapers; they log at debug.
var quietPaths = map[string]bool{
	"/metrics":     true,
	"/v1/health":   true,
	"/v1/ready":    true,
	"/docs":        true,
	"/favicon.ico": true,
}

// AccessLogMiddleware writes one line per request through the request-scoped
// logger. The route pattern is logged next to the raw path so lines for
// /v1/partners/:id group together.
func AccessLogMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		method, path := c.Method(), c.Path()

		err := c.Next()

		status := c.Response().StatusCode()
		attrs := []slog.Attr{
			slog.String("method", method),
			slog.String("path", path),
			slog.String("route", c.Route().Path),
			slog.Int("status", status),
			slog.Duration("latency", time.Since(start)),
			slog.Int("bytes_out", len(c.Response().Body())),
		}

		level := slog.LevelInfo
		switch {
		case err != nil:
			attrs = append(attrs, slog.String("error", err.Error()))
			level = slog.LevelError
		case status >= 500:
			level = slog.LevelError
		case status >= 400:
			level = slog.LevelWarn
		case quietPaths[path]:
			level = slog.LevelDebug
		}

		ctx := c.UserContext()
		LoggerFromCtx(ctx).LogAttrs(ctx, level, "http request", attrs...)
		return err
	}
}
