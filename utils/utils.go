package utils

import (
	"errors"
	"strconv"

	"github.com/getsentry/sentry-go"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"collabhub/store"
)

// ErrorResponse creates a standardized error response
func ErrorResponse(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"error": message,
	})
}

// StoreError maps a store-layer error onto the HTTP taxonomy. Anything
// outside the known domain errors is reported to Sentry and surfaced as a
// plain server error.
func StoreError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return ErrorResponse(c, fiber.StatusNotFound, "Not found")
	case errors.Is(err, store.ErrForbidden):
		return ErrorResponse(c, fiber.StatusForbidden, "Forbidden")
	case errors.Is(err, store.ErrConflict):
		return ErrorResponse(c, fiber.StatusConflict, "Conflict")
	case errors.Is(err, store.ErrValidation):
		return ErrorResponse(c, fiber.StatusBadRequest, "Invalid input")
	default:
		sentry.CaptureException(err)
		logrus.WithFields(logrus.Fields{
			"path":   c.Path(),
			"method": c.Method(),
		}).WithError(err).Error("store operation failed")
		return ErrorResponse(c, fiber.StatusInternalServerError, "Server error")
	}
}

// ParseUint safely parses a string to uint
func ParseUint(s string) uint {
	i, _ := strconv.ParseUint(s, 10, 32)
	return uint(i)
}

// Pointer returns a pointer to the given value
func Pointer[T any](v T) *T {
	return &v
}
