package handlers

import (
	"cinestream/internal/app"
	catalogController "cinestream/internal/controllers/catalog"
	episodeController "cinestream/internal/controllers/episodes"
	genreController "cinestream/internal/controllers/genres"
	metadataController "cinestream/internal/controllers/metadata"
	userController "cinestream/internal/controllers/users"
	"cinestream/internal/handlers/middleware"
	"cinestream/internal/models"
	"cinestream/internal/types"
	"strconv"

	"github.com/gofiber/fiber/v2"
)

type AdminHandler struct {
	Handler
	catalogController  catalogController.CatalogControllerInterface
	genreController    genreController.GenreControllerInterface
	episodeController  episodeController.EpisodeControllerInterface
	userController     userController.UserControllerInterface
	metadataController metadataController.MetadataControllerInterface
}

func NewAdminHandler(app app.App, router fiber.Router) *AdminHandler {
	return &AdminHandler{
		catalogController:  app.Controllers.Catalog,
		genreController:    app.Controllers.Genre,
		episodeController:  app.Controllers.Episode,
		userController:     app.Controllers.User,
		metadataController: app.Controllers.Metadata,
		Handler:            newHandler(app, router, "admin_handler"),
	}
}

func (h *AdminHandler) Register() {
	admin := h.router.Group("/admin", h.middleware.RequireAuth(), h.middleware.RequireAdmin())

	h.registerMedia(admin.Group("/media"), "")
	h.registerMedia(admin.Group("/movies"), models.MediaTypeMovie)
	tvshows := admin.Group("/tvshows")
	h.registerMedia(tvshows, models.MediaTypeTV)
	tvshows.Get("/:id/episodes", h.listShowEpisodes)
	tvshows.Post("/:id/seasons/:season/import", h.importSeason)
	admin.Post("/media/:id/link", h.linkMedia)

	genres := admin.Group("/genres")
	genres.Get("/", h.listGenres)
	genres.Post("/", h.createGenre)
	genres.Put("/:id", h.updateGenre)
	genres.Delete("/:id", h.deleteGenre)

	episodes := admin.Group("/episodes")
	episodes.Get("/", h.listEpisodes)
	episodes.Post("/", h.createEpisode)
	episodes.Get("/:id", h.getEpisode)
	episodes.Put("/:id", h.updateEpisode)
	episodes.Delete("/:id", h.deleteEpisode)

	users := admin.Group("/users")
	users.Get("/", h.listUsers)
	users.Put("/:id", h.updateUser)
	users.Delete("/:id", h.deleteUser)

	metadata := admin.Group("/metadata")
	metadata.Get("/search", h.searchMetadata)
	metadata.Post("/import", h.importMedia)
	metadata.Get("/:kind/:externalId", h.fetchMetadata)
}

// registerMedia mounts the CRUD routes for one media listing. A non-empty
// mediaType pins the listing and rejects rows of the other type.
func (h *AdminHandler) registerMedia(group fiber.Router, mediaType models.MediaType) {
	group.Get("/", h.listMedia(mediaType))
	group.Post("/", h.createMedia(mediaType))
	group.Get("/:id", h.getMedia(mediaType))
	group.Put("/:id", h.updateMedia(mediaType))
	group.Delete("/:id", h.deleteMedia(mediaType))
}

func (h *AdminHandler) listMedia(mediaType models.MediaType) fiber.Handler {
	return func(c *fiber.Ctx) error {
		log := h.log.Function("listMedia")

		var query catalogController.ListMediaQuery
		if err := c.QueryParser(&query); err != nil {
			return respondError(c, log, types.NewValidationError("query", "is malformed"))
		}
		if mediaType != "" {
			query.Type = string(mediaType)
		}

		page, err := h.catalogController.ListMedia(c.UserContext(), query, types.AdminPageSize)
		if err != nil {
			return respondError(c, log, err)
		}
		return respondPage(c, page)
	}
}

func (h *AdminHandler) createMedia(mediaType models.MediaType) fiber.Handler {
	return func(c *fiber.Ctx) error {
		log := h.log.Function("createMedia")

		var req catalogController.MediaRequest
		if err := parseBody(c, &req); err != nil {
			return respondError(c, log, err)
		}
		if mediaType != "" {
			pinned := mediaType
			req.Type = &pinned
		}

		media, err := h.catalogController.CreateMedia(c.UserContext(), &req)
		if err != nil {
			return respondError(c, log, err)
		}
		return respond(c, fiber.StatusCreated, media)
	}
}

func (h *AdminHandler) getMedia(mediaType models.MediaType) fiber.Handler {
	return func(c *fiber.Ctx) error {
		log := h.log.Function("getMedia")

		id, err := parseID(c, "id")
		if err != nil {
			return respondError(c, log, err)
		}

		media, err := h.catalogController.GetMediaOfType(c.UserContext(), id, mediaType)
		if err != nil {
			return respondError(c, log, err)
		}
		return respond(c, fiber.StatusOK, media)
	}
}

func (h *AdminHandler) updateMedia(mediaType models.MediaType) fiber.Handler {
	return func(c *fiber.Ctx) error {
		log := h.log.Function("updateMedia")

		id, err := parseID(c, "id")
		if err != nil {
			return respondError(c, log, err)
		}

		var req catalogController.MediaRequest
		if err := parseBody(c, &req); err != nil {
			return respondError(c, log, err)
		}

		media, err := h.catalogController.UpdateMedia(c.UserContext(), id, mediaType, &req)
		if err != nil {
			return respondError(c, log, err)
		}
		return respond(c, fiber.StatusOK, media)
	}
}

func (h *AdminHandler) deleteMedia(mediaType models.MediaType) fiber.Handler {
	return func(c *fiber.Ctx) error {
		log := h.log.Function("deleteMedia")

		id, err := parseID(c, "id")
		if err != nil {
			return respondError(c, log, err)
		}

		if err := h.catalogController.DeleteMedia(c.UserContext(), id, mediaType); err != nil {
			return respondError(c, log, err)
		}
		return respond(c, fiber.StatusOK, fiber.Map{"id": id})
	}
}

func (h *AdminHandler) listShowEpisodes(c *fiber.Ctx) error {
	log := h.log.Function("listShowEpisodes")

	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, log, err)
	}

	episodes, err := h.episodeController.ListForShow(c.UserContext(), id)
	if err != nil {
		return respondError(c, log, err)
	}
	return respond(c, fiber.StatusOK, episodes)
}

func (h *AdminHandler) importSeason(c *fiber.Ctx) error {
	log := h.log.Function("importSeason")

	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, log, err)
	}

	season, err := strconv.Atoi(c.Params("season"))
	if err != nil {
		return respondError(c, log, types.NewValidationError("season", "must be a number"))
	}

	result, err := h.metadataController.ImportSeason(c.UserContext(), id, season)
	if err != nil {
		return respondError(c, log, err)
	}
	return respond(c, fiber.StatusOK, result)
}

func (h *AdminHandler) linkMedia(c *fiber.Ctx) error {
	log := h.log.Function("linkMedia")

	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, log, err)
	}

	var req metadataController.LinkRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, log, err)
	}

	media, err := h.metadataController.Link(c.UserContext(), id, &req)
	if err != nil {
		return respondError(c, log, err)
	}
	return respond(c, fiber.StatusOK, media)
}

func (h *AdminHandler) listGenres(c *fiber.Ctx) error {
	genres, err := h.genreController.List(c.UserContext())
	if err != nil {
		return respondError(c, h.log.Function("listGenres"), err)
	}
	return respond(c, fiber.StatusOK, genres)
}

func (h *AdminHandler) createGenre(c *fiber.Ctx) error {
	log := h.log.Function("createGenre")

	var req genreController.GenreRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, log, err)
	}

	genre, err := h.genreController.Create(c.UserContext(), &req)
	if err != nil {
		return respondError(c, log, err)
	}
	return respond(c, fiber.StatusCreated, genre)
}

func (h *AdminHandler) updateGenre(c *fiber.Ctx) error {
	log := h.log.Function("updateGenre")

	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, log, err)
	}

	var req genreController.GenreRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, log, err)
	}

	genre, err := h.genreController.Update(c.UserContext(), id, &req)
	if err != nil {
		return respondError(c, log, err)
	}
	return respond(c, fiber.StatusOK, genre)
}

func (h *AdminHandler) deleteGenre(c *fiber.Ctx) error {
	log := h.log.Function("deleteGenre")

	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, log, err)
	}

	if err := h.genreController.Delete(c.UserContext(), id); err != nil {
		return respondError(c, log, err)
	}
	return respond(c, fiber.StatusOK, fiber.Map{"id": id})
}

func (h *AdminHandler) listEpisodes(c *fiber.Ctx) error {
	log := h.log.Function("listEpisodes")

	var mediaID *uint
	if raw := c.Query("mediaId"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || id == 0 {
			return respondError(c, log, types.NewValidationError("mediaId", "must be a positive id"))
		}
		value := uint(id)
		mediaID = &value
	}

	page, err := h.episodeController.List(c.UserContext(), mediaID, parsePagination(c))
	if err != nil {
		return respondError(c, log, err)
	}
	return respondPage(c, page)
}

func (h *AdminHandler) createEpisode(c *fiber.Ctx) error {
	log := h.log.Function("createEpisode")

	var req episodeController.EpisodeRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, log, err)
	}

	episode, err := h.episodeController.Create(c.UserContext(), &req)
	if err != nil {
		return respondError(c, log, err)
	}
	return respond(c, fiber.StatusCreated, episode)
}

func (h *AdminHandler) getEpisode(c *fiber.Ctx) error {
	log := h.log.Function("getEpisode")

	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, log, err)
	}

	episode, err := h.episodeController.Get(c.UserContext(), id)
	if err != nil {
		return respondError(c, log, err)
	}
	return respond(c, fiber.StatusOK, episode)
}

func (h *AdminHandler) updateEpisode(c *fiber.Ctx) error {
	log := h.log.Function("updateEpisode")

	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, log, err)
	}

	var req episodeController.EpisodeRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, log, err)
	}

	episode, err := h.episodeController.Update(c.UserContext(), id, &req)
	if err != nil {
		return respondError(c, log, err)
	}
	return respond(c, fiber.StatusOK, episode)
}

func (h *AdminHandler) deleteEpisode(c *fiber.Ctx) error {
	log := h.log.Function("deleteEpisode")

	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, log, err)
	}

	if err := h.episodeController.Delete(c.UserContext(), id); err != nil {
		return respondError(c, log, err)
	}
	return respond(c, fiber.StatusOK, fiber.Map{"id": id})
}

func (h *AdminHandler) listUsers(c *fiber.Ctx) error {
	page, err := h.userController.List(c.UserContext(), parsePagination(c))
	if err != nil {
		return respondError(c, h.log.Function("listUsers"), err)
	}
	return respondPage(c, page)
}

func (h *AdminHandler) updateUser(c *fiber.Ctx) error {
	log := h.log.Function("updateUser")

	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, log, err)
	}

	var req userController.UpdateUserRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, log, err)
	}

	profile, err := h.userController.Update(c.UserContext(), middleware.GetUser(c), id, &req)
	if err != nil {
		return respondError(c, log, err)
	}
	return respond(c, fiber.StatusOK, profile)
}

func (h *AdminHandler) deleteUser(c *fiber.Ctx) error {
	log := h.log.Function("deleteUser")

	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, log, err)
	}

	if err := h.userController.Delete(c.UserContext(), middleware.GetUser(c), id); err != nil {
		return respondError(c, log, err)
	}
	return respond(c, fiber.StatusOK, fiber.Map{"id": id})
}

func (h *AdminHandler) searchMetadata(c *fiber.Ctx) error {
	log := h.log.Function("searchMetadata")

	var query metadataController.SearchQuery
	if err := c.QueryParser(&query); err != nil {
		return respondError(c, log, types.NewValidationError("query", "is malformed"))
	}

	results, err := h.metadataController.Search(c.UserContext(), query)
	if err != nil {
		return respondError(c, log, err)
	}
	return respond(c, fiber.StatusOK, results)
}

func (h *AdminHandler) fetchMetadata(c *fiber.Ctx) error {
	log := h.log.Function("fetchMetadata")

	attributes, err := h.metadataController.Fetch(
		c.UserContext(),
		models.MediaType(c.Params("kind")),
		c.Params("externalId"),
	)
	if err != nil {
		return respondError(c, log, err)
	}
	return respond(c, fiber.StatusOK, attributes)
}

func (h *AdminHandler) importMedia(c *fiber.Ctx) error {
	log := h.log.Function("importMedia")

	var req metadataController.ImportRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, log, err)
	}

	media, err := h.metadataController.Import(c.UserContext(), &req)
	if err != nil {
		return respondError(c, log, err)
	}
	return respond(c, fiber.StatusCreated, media)
}
