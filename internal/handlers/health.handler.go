package handlers

import (
	"cinestream/config"

	"github.com/gofiber/fiber/v2"
)

func HealthHandler(router fiber.Router, config config.Config) {
	router.Get("/health", func(c *fiber.Ctx) error {
		return respond(c, fiber.StatusOK, fiber.Map{
			"status":  "ok",
			"version": config.GeneralVersion,
			"service": "cinestream_api",
		})
	})
}
