package middleware

import (
	"github.com/gofiber/fiber/v2"
)

// RequireAdmin must run after RequireAuth.
func (m *Middleware) RequireAdmin() fiber.Handler {
	log := m.log.Function("RequireAdmin")

	return func(c *fiber.Ctx) error {
		user := GetUser(c)
		if user == nil {
			log.Info("user not found in context")
			return reject(c, fiber.StatusUnauthorized, "Authentication required")
		}

		if !user.IsAdmin {
			log.Info("user is not admin", "userID", user.ID)
			return reject(c, fiber.StatusForbidden, "Admin access required")
		}

		return c.Next()
	}
}
