package middleware

import (
	"cinestream/internal/models"
	"cinestream/internal/types"
	"context"
	"errors"
	"strings"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/gofiber/fiber/v2"
)

type AuthContextKey string

const (
	UserKey      AuthContextKey = "user"
	UserKeyFiber string         = "User"
)

// RequireAuth resolves the bearer token to a user and stores it in locals.
func (m *Middleware) RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		log := logger.New("middleware").TraceFromContext(c.UserContext()).Function("RequireAuth")

		token, ok := bearerToken(c.Get(fiber.HeaderAuthorization))
		if !ok {
			log.Info("missing or malformed authorization header")
			return reject(c, fiber.StatusUnauthorized, "Authentication required")
		}

		user, err := m.authController.Authenticate(c.UserContext(), token)
		if err != nil {
			if errors.Is(err, types.ErrUnauthorized) {
				log.Info("token rejected", "error", err.Error())
				return reject(c, fiber.StatusUnauthorized, "Invalid or expired token")
			}
			log.Er("failed to authenticate request", err)
			return reject(c, fiber.StatusInternalServerError, "Internal server error")
		}

		c.Locals(UserKeyFiber, user)
		c.SetUserContext(context.WithValue(c.UserContext(), UserKey, user))

		return c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}

	token = strings.TrimSpace(token)
	return token, token != ""
}

func GetUser(c *fiber.Ctx) *models.User {
	user, ok := c.Locals(UserKeyFiber).(*models.User)
	if !ok {
		return nil
	}
	return user
}
