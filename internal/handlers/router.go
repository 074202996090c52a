package handlers

import (
	"cinestream/internal/app"
	"cinestream/internal/handlers/middleware"
	"cinestream/internal/metrics"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
)

type Handler struct {
	middleware middleware.Middleware
	log        logger.Logger
	router     fiber.Router
}

func newHandler(app app.App, router fiber.Router, file string) Handler {
	return Handler{
		middleware: app.Middleware,
		log:        logger.New("handlers").File(file),
		router:     router,
	}
}

func Router(router fiber.Router, app *app.App) (err error) {
	router.Use(app.Middleware.TraceID())
	router.Use(app.Middleware.Metrics())
	router.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	api := router.Group("/api")
	HealthHandler(api, app.Config)
	NewAuthHandler(*app, api).Register()
	NewCatalogHandler(*app, api).Register()
	NewMeHandler(*app, api).Register()
	NewAdminHandler(*app, api).Register()

	return nil
}
