package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// CachingMiddleware sets Cache-Control on GET responses the handler left
// without one.
func CachingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		if c.Method() != fiber.MethodGet || c.Get(fiber.HeaderCacheControl) != "" {
			return err
		}
		if ttl := cacheControlFor(c.Path()); ttl != "" {
			c.Set(fiber.HeaderCacheControl, ttl)
		}
		return err
	}
}

func cacheControlFor(path string) string {
	switch {
	case path == "/v1/health" || path == "/v1/ready":
		return "public, max-age=10"
	case path == "/metrics":
		return "no-cache"
	case path == "/v1/session/info" || strings.HasPrefix(path, "/v1/settings"):
		return "private, no-store"
	case strings.HasPrefix(path, "/v1/layers/vector/") && strings.HasSuffix(path, "/features"):
		return "public, max-age=60"
	case strings.HasPrefix(path, "/v1/layers"):
		return "public, max-age=600"
	case strings.HasPrefix(path, "/v1/partners"):
		return "private, max-age=30"
	case strings.HasPrefix(path, "/v1/"):
		return "public, max-age=60"
	}
	return ""
}
