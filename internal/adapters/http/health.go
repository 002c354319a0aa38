package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

// HealthHandler returns a basic liveness check.
func HealthHandler(deps *Dependencies) fiber.Handler {
	startedAt := time.Now()
	version := deps.Version
	if version == "" {
		version = "dev"
	}

	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"uptime":  time.Since(startedAt).String(),
			"version": version,
		})
	}
}

// ReadyHandler checks PostGIS, NATS, and cache connectivity. The database is
// required; NATS and the cache are optional.
func ReadyHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 3*time.Second)
		defer cancel()

		checks := make(map[string]string)
		allOK := true

		if deps.DB != nil {
			if version, err := deps.DB.CheckPostGIS(ctx); err != nil {
				checks["database"] = "error: " + err.Error()
				allOK = false
			} else {
				checks["database"] = "ok"
				checks["postgis"] = version
			}
		} else {
			checks["database"] = "not configured"
			allOK = false
		}

		switch {
		case deps.NATS == nil:
			checks["nats"] = "not configured"
		case deps.NATS.IsConnected():
			checks["nats"] = "ok"
		default:
			checks["nats"] = "disconnected"
			allOK = false
		}

		if deps.Cache != nil {
			if err := deps.Cache.Ping(ctx); err != nil {
				checks["cache"] = "error: " + err.Error()
				allOK = false
			} else {
				checks["cache"] = "ok"
			}
		} else {
			checks["cache"] = "not configured"
		}

		status, code := "ready", fiber.StatusOK
		if !allOK {
			status, code = "not ready", fiber.StatusServiceUnavailable
		}
		return c.Status(code).JSON(fiber.Map{
			"status": status,
			"checks": checks,
		})
	}
}
