package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// Health is a lightweight liveness signal for monitors; it carries nothing
// sensitive.
func Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}
