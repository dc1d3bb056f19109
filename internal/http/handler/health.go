package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"inventario/internal/database"
)

// HealthCheck reports that the process is up. It touches no dependency.
func HealthCheck() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	}
}

// Readiness checks DB connectivity.
func Readiness(db database.Pinger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := database.Check(c.UserContext(), db, 2*time.Second); err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		return c.JSON(fiber.Map{"status": "ok"})
	}
}
