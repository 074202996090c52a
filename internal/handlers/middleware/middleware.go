package middleware

import (
	"cinestream/config"
	authController "cinestream/internal/controllers/auth"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/gofiber/fiber/v2"
)

type Middleware struct {
	Config         config.Config
	authController authController.AuthControllerInterface
	log            logger.Logger
}

func New(config config.Config, authController authController.AuthControllerInterface) Middleware {
	return Middleware{
		Config:         config,
		authController: authController,
		log:            logger.New("middleware"),
	}
}

// reject writes the failure envelope; handlers share the same shape.
func reject(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"message": message,
	})
}
