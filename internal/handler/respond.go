package handler

import (
	"errors"

	"go-batch-inventory/internal/apperr"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// respondError maps the service error taxonomy onto HTTP. Clients get a
// machine-distinguishable condition; only genuinely unexpected errors are
// logged as server faults, and those never leak details.
func respondError(c *fiber.Ctx, log *zap.Logger, err error) error {
	var validation *apperr.ValidationError
	if errors.As(err, &validation) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":  "Validation failed",
			"fields": validation.Fields,
		})
	}

	var notFound *apperr.NotFoundError
	if errors.As(err, &notFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":  notFound.Message,
			"fields": fiber.Map{notFound.Field: notFound.Message},
		})
	}

	switch {
	case errors.Is(err, apperr.ErrNoEligibleBatches),
		errors.Is(err, apperr.ErrInsufficientStock),
		errors.Is(err, apperr.ErrStaleBatch):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})

	case errors.Is(err, apperr.ErrUnitIntegrity):
		log.Error("unit reference data is corrupt", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})

	case errors.Is(err, apperr.ErrInvalidCredentials):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	}

	log.Error("request failed", zap.String("path", c.Path()), zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal Server Error"})
}

// actorID returns the authenticated user's id set by the auth middleware.
func actorID(c *fiber.Ctx) uint {
	if id, ok := c.Locals("actor_id").(uint); ok {
		return id
	}
	return 0
}
