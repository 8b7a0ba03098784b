package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"archive_backend/internals/configs"
	database "archive_backend/internals/databases"
	"archive_backend/internals/metrics"
)

func BaseRoutes(app *fiber.App, db *gorm.DB, m *metrics.Metrics, cfg configs.Config, started time.Time) {
	app.Get("/health", func(c *fiber.Ctx) error {
		dbStatus := "connected"
		serverStatus := "ok"
		httpStatus := fiber.StatusOK

		if err := database.Ping(c.UserContext(), db); err != nil {
			dbStatus = "database connection error"
			serverStatus = "down"
			httpStatus = fiber.StatusServiceUnavailable
		}

		return c.Status(httpStatus).JSON(fiber.Map{
			"success":        httpStatus == fiber.StatusOK,
			"status":         serverStatus,
			"database":       dbStatus,
			"server_time":    time.Now().UTC().Format(time.RFC3339),
			"uptime_seconds": int(time.Since(started).Seconds()),
			"environment":    cfg.AppEnv,
		})
	})

	app.Get("/metrics", m.Handler())
}
