package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/omengineers/booking-backend/database"
)

// Health handles GET /health for monitoring
func Health(c *fiber.Ctx) error {
	status := "healthy"
	statusCode := fiber.StatusOK

	dbHealthy := true
	if database.DB != nil {
		sqlDB, err := database.DB.DB()
		if err != nil || sqlDB.Ping() != nil {
			dbHealthy = false
			status = "unhealthy"
			statusCode = fiber.StatusServiceUnavailable
		}
	}

	return c.Status(statusCode).JSON(fiber.Map{
		"status": status,
		"services": fiber.Map{
			"database": dbHealthy,
		},
	})
}
