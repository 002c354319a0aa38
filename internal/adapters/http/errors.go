package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/geoengine/internal/core/domain"
	"github.com/samirrijal/geoengine/internal/core/geo"
)

// APIError is a structured error response.
type APIError struct {
	Status    int    `json:"status"`
	Code      string `json:"code"`    // bad_request, invalid_geometry, not_found, geocoding_failed, ...
	Message   string `json:"message"` // Human-readable message
	RequestID string `json:"request_id,omitempty"`
}

// newError builds a JSON error response with a request ID.
func newError(c *fiber.Ctx, status int, code string, message string) error {
	reqID, _ := c.Locals("requestid").(string)
	return c.Status(status).JSON(APIError{
		Status:    status,
		Code:      code,
		Message:   message,
		RequestID: reqID,
	})
}

func errBadRequest(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusBadRequest, "bad_request", msg)
}

func errNotFound(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusNotFound, "not_found", msg)
}

func errInternal(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusInternalServerError, "internal_error", msg)
}

// errFromDomain maps use case errors onto HTTP statuses.
func errFromDomain(c *fiber.Ctx, err error) error {
	var (
		formatErr *geo.FormatError
		typeErr   *geo.TypeError
		rowErr    *domain.ImportRowError
		coerceErr *domain.ImportCoercionError
		geoErr    *domain.GeocodingError
	)
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return errBadRequest(c, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		return errNotFound(c, err.Error())
	case errors.As(err, &rowErr), errors.As(err, &coerceErr):
		return newError(c, fiber.StatusUnprocessableEntity, "import_error", err.Error())
	case errors.As(err, &formatErr):
		return newError(c, fiber.StatusBadRequest, "invalid_geometry", err.Error())
	case errors.As(err, &typeErr):
		return newError(c, fiber.StatusUnprocessableEntity, "unsupported_geometry_value", err.Error())
	case errors.Is(err, domain.ErrInvalidLayer):
		return newError(c, fiber.StatusUnprocessableEntity, "invalid_layer", err.Error())
	case errors.As(err, &geoErr):
		return newError(c, fiber.StatusBadGateway, "geocoding_failed", err.Error())
	}
	LoggerFromCtx(c.UserContext()).Error("request failed", "path", c.Path(), "error", err)
	return errInternal(c, "internal error")
}
