package middlewares

import (
	"github.com/gofiber/fiber/v2"

	helper "archive_backend/internals/helpers"
)

// DevOnly answers 403 unless the app runs in development.
func DevOnly(isDevelopment bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !isDevelopment {
			return helper.JsonError(c, fiber.StatusForbidden, "only available in development")
		}
		return c.Next()
	}
}
