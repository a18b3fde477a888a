package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/luma-learn/luma-api/database"
	"github.com/luma-learn/luma-api/utils/response"
)

// HandleCheckHealth reports liveness and database reachability.
func HandleCheckHealth(store database.Storage) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := store.HealthCheck(); err != nil {
			return response.ServiceUnavailable(c, "Database unreachable")
		}
		return c.JSON(fiber.Map{"status": "ok"})
	}
}
