package handlers

import (
	"cinestream/internal/app"
	authController "cinestream/internal/controllers/auth"
	"cinestream/internal/handlers/middleware"

	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	Handler
	authController authController.AuthControllerInterface
}

func NewAuthHandler(app app.App, router fiber.Router) *AuthHandler {
	return &AuthHandler{
		authController: app.Controllers.Auth,
		Handler:        newHandler(app, router, "auth_handler"),
	}
}

func (h *AuthHandler) Register() {
	auth := h.router.Group("/auth")
	auth.Post("/register", h.register)
	auth.Post("/login", h.login)
	auth.Get("/me", h.middleware.RequireAuth(), h.getCurrentUser)
}

func (h *AuthHandler) register(c *fiber.Ctx) error {
	log := h.log.Function("register")

	var req authController.RegisterRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, log, err)
	}

	response, err := h.authController.Register(c.UserContext(), &req)
	if err != nil {
		return respondError(c, log, err)
	}

	return respond(c, fiber.StatusCreated, response)
}

func (h *AuthHandler) login(c *fiber.Ctx) error {
	log := h.log.Function("login")

	var req authController.LoginRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, log, err)
	}

	response, err := h.authController.Login(c.UserContext(), &req)
	if err != nil {
		return respondError(c, log, err)
	}

	return respond(c, fiber.StatusOK, response)
}

func (h *AuthHandler) getCurrentUser(c *fiber.Ctx) error {
	user := middleware.GetUser(c)
	if user == nil {
		return fail(c, fiber.StatusUnauthorized, "Authentication required", nil)
	}

	return respond(c, fiber.StatusOK, user.ToProfile())
}
