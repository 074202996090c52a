package handlers

import (
	"cinestream/internal/app"
	relationController "cinestream/internal/controllers/relations"
	"cinestream/internal/handlers/middleware"

	"github.com/gofiber/fiber/v2"
)

// MeHandler serves the signed-in user's favorites, watchlist, history and ratings.
type MeHandler struct {
	Handler
	relationController relationController.RelationControllerInterface
}

func NewMeHandler(app app.App, router fiber.Router) *MeHandler {
	return &MeHandler{
		relationController: app.Controllers.Relation,
		Handler:            newHandler(app, router, "me_handler"),
	}
}

func (h *MeHandler) Register() {
	me := h.router.Group("/me", h.middleware.RequireAuth())

	me.Get("/favorites", h.listFavorites)
	me.Post("/favorites/toggle", h.toggleFavorite)
	me.Delete("/favorites/:id", h.deleteFavorite)

	me.Get("/watchlist", h.listWatchlist)
	me.Post("/watchlist/toggle", h.toggleWatchlist)

	me.Get("/history", h.listHistory)
	me.Post("/history", h.recordProgress)
	me.Put("/history/progress", h.updateProgress)

	me.Get("/ratings", h.listRatings)
	me.Post("/ratings", h.rate)
	me.Delete("/ratings", h.removeRating)

	me.Get("/media/:id/state", h.getState)
}

func (h *MeHandler) listFavorites(c *fiber.Ctx) error {
	favorites, err := h.relationController.ListFavorites(c.UserContext(), middleware.GetUser(c))
	if err != nil {
		return respondError(c, h.log.Function("listFavorites"), err)
	}
	return respond(c, fiber.StatusOK, favorites)
}

func (h *MeHandler) toggleFavorite(c *fiber.Ctx) error {
	log := h.log.Function("toggleFavorite")

	var req relationController.TargetRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, log, err)
	}

	result, err := h.relationController.ToggleFavorite(c.UserContext(), middleware.GetUser(c), &req)
	if err != nil {
		return respondError(c, log, err)
	}
	return respond(c, fiber.StatusOK, result)
}

func (h *MeHandler) deleteFavorite(c *fiber.Ctx) error {
	log := h.log.Function("deleteFavorite")

	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, log, err)
	}

	if err := h.relationController.DeleteFavorite(c.UserContext(), middleware.GetUser(c), id); err != nil {
		return respondError(c, log, err)
	}
	return respond(c, fiber.StatusOK, fiber.Map{"id": id})
}

func (h *MeHandler) listWatchlist(c *fiber.Ctx) error {
	watchlist, err := h.relationController.ListWatchlist(c.UserContext(), middleware.GetUser(c))
	if err != nil {
		return respondError(c, h.log.Function("listWatchlist"), err)
	}
	return respond(c, fiber.StatusOK, watchlist)
}

func (h *MeHandler) toggleWatchlist(c *fiber.Ctx) error {
	log := h.log.Function("toggleWatchlist")

	var req relationController.TargetRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, log, err)
	}

	result, err := h.relationController.ToggleWatchlist(c.UserContext(), middleware.GetUser(c), &req)
	if err != nil {
		return respondError(c, log, err)
	}
	return respond(c, fiber.StatusOK, result)
}

func (h *MeHandler) listHistory(c *fiber.Ctx) error {
	history, err := h.relationController.ListHistory(c.UserContext(), middleware.GetUser(c))
	if err != nil {
		return respondError(c, h.log.Function("listHistory"), err)
	}
	return respond(c, fiber.StatusOK, history)
}

func (h *MeHandler) recordProgress(c *fiber.Ctx) error {
	log := h.log.Function("recordProgress")

	var req relationController.ProgressRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, log, err)
	}

	entry, err := h.relationController.RecordProgress(c.UserContext(), middleware.GetUser(c), &req)
	if err != nil {
		return respondError(c, log, err)
	}
	return respond(c, fiber.StatusCreated, entry)
}

func (h *MeHandler) updateProgress(c *fiber.Ctx) error {
	log := h.log.Function("updateProgress")

	var req relationController.ProgressRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, log, err)
	}

	entry, err := h.relationController.UpdateLatestProgress(c.UserContext(), middleware.GetUser(c), &req)
	if err != nil {
		return respondError(c, log, err)
	}
	return respond(c, fiber.StatusOK, entry)
}

func (h *MeHandler) listRatings(c *fiber.Ctx) error {
	ratings, err := h.relationController.ListRatings(c.UserContext(), middleware.GetUser(c))
	if err != nil {
		return respondError(c, h.log.Function("listRatings"), err)
	}
	return respond(c, fiber.StatusOK, ratings)
}

func (h *MeHandler) rate(c *fiber.Ctx) error {
	log := h.log.Function("rate")

	var req relationController.RatingRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, log, err)
	}

	rating, err := h.relationController.Rate(c.UserContext(), middleware.GetUser(c), &req)
	if err != nil {
		return respondError(c, log, err)
	}
	return respond(c, fiber.StatusOK, rating)
}

func (h *MeHandler) removeRating(c *fiber.Ctx) error {
	log := h.log.Function("removeRating")

	var req relationController.TargetRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, log, err)
	}

	if err := h.relationController.RemoveRating(c.UserContext(), middleware.GetUser(c), &req); err != nil {
		return respondError(c, log, err)
	}
	return respond(c, fiber.StatusOK, req)
}

func (h *MeHandler) getState(c *fiber.Ctx) error {
	log := h.log.Function("getState")

	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, log, err)
	}

	state, err := h.relationController.State(c.UserContext(), middleware.GetUser(c), id)
	if err != nil {
		return respondError(c, log, err)
	}
	return respond(c, fiber.StatusOK, state)
}
