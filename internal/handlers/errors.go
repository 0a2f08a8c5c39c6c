package handlers

import (
	"errors"

	"biterush/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// statusFor maps a service error to its HTTP status. Unknown errors are 500.
func statusFor(err error) int {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		return fiber.StatusBadRequest
	case errors.Is(err, services.ErrProductNotFound),
		errors.Is(err, services.ErrPriceMismatch),
		errors.Is(err, services.ErrOutOfStock):
		return fiber.StatusBadRequest
	case errors.Is(err, services.ErrVoucherNotFound),
		errors.Is(err, services.ErrOrderNotFound),
		errors.Is(err, services.ErrUserNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, services.ErrVoucherUnauthorized),
		errors.Is(err, services.ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, services.ErrInvalidCredentials):
		return fiber.StatusUnauthorized
	case errors.Is(err, services.ErrVersionConflict),
		errors.Is(err, services.ErrVoucherExists),
		errors.Is(err, services.ErrEmailTaken),
		errors.Is(err, services.ErrSelfModification),
		errors.Is(err, services.ErrInvalidTransition):
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// writeError renders err as a JSON error response. Server errors are logged
// and their details are not exposed.
func writeError(c *fiber.Ctx, logger *zap.Logger, err error, message string) error {
	status := statusFor(err)

	var verr *services.ValidationError
	if errors.As(err, &verr) {
		return c.Status(status).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  verr.Fields,
		})
	}

	if status == fiber.StatusInternalServerError {
		logger.Error(message,
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Error(err),
		)
		return c.Status(status).JSON(fiber.Map{
			"message": message,
		})
	}

	return c.Status(status).JSON(fiber.Map{
		"message": err.Error(),
	})
}

// badRequest reports a malformed body or query string.
func badRequest(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Invalid request body",
		"error":   err.Error(),
	})
}
