package handlers

import (
	"cinestream/internal/app"
	catalogController "cinestream/internal/controllers/catalog"
	episodeController "cinestream/internal/controllers/episodes"
	genreController "cinestream/internal/controllers/genres"
	metadataController "cinestream/internal/controllers/metadata"
	"cinestream/internal/models"
	"cinestream/internal/types"
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// CatalogHandler serves the public browsing API.
type CatalogHandler struct {
	Handler
	catalogController  catalogController.CatalogControllerInterface
	genreController    genreController.GenreControllerInterface
	episodeController  episodeController.EpisodeControllerInterface
	metadataController metadataController.MetadataControllerInterface
}

func NewCatalogHandler(app app.App, router fiber.Router) *CatalogHandler {
	return &CatalogHandler{
		catalogController:  app.Controllers.Catalog,
		genreController:    app.Controllers.Genre,
		episodeController:  app.Controllers.Episode,
		metadataController: app.Controllers.Metadata,
		Handler:            newHandler(app, router, "catalog_handler"),
	}
}

func (h *CatalogHandler) Register() {
	media := h.router.Group("/media")
	media.Get("/", h.listMedia(""))
	media.Get("/:id", h.getMedia)
	media.Get("/:id/related", h.getRelated)
	media.Get("/:id/embed", h.getEmbed)

	h.router.Get("/movies", h.listMedia(models.MediaTypeMovie))
	h.router.Get("/tvshows", h.listMedia(models.MediaTypeTV))

	genres := h.router.Group("/genres")
	genres.Get("/", h.listGenres)
	genres.Get("/:slug/media", h.getGenreMedia)

	h.router.Get("/episodes/:id", h.getEpisode)
}

// listMedia serves the shared listing; a fixed type overrides the query.
func (h *CatalogHandler) listMedia(fixed models.MediaType) fiber.Handler {
	return func(c *fiber.Ctx) error {
		log := h.log.Function("listMedia")

		var query catalogController.ListMediaQuery
		if err := c.QueryParser(&query); err != nil {
			return respondError(c, log, types.NewValidationError("query", "is malformed"))
		}
		if fixed != "" {
			query.Type = string(fixed)
		}

		page, err := h.catalogController.ListMedia(c.UserContext(), query, types.PublicPageSize)
		if err != nil {
			return respondError(c, log, err)
		}

		return respondPage(c, page)
	}
}

func (h *CatalogHandler) getMedia(c *fiber.Ctx) error {
	log := h.log.Function("getMedia")

	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, log, err)
	}

	media, err := h.catalogController.GetMedia(c.UserContext(), id)
	if err != nil {
		return respondError(c, log, err)
	}

	return respond(c, fiber.StatusOK, media)
}

func (h *CatalogHandler) getRelated(c *fiber.Ctx) error {
	log := h.log.Function("getRelated")

	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, log, err)
	}

	related, err := h.catalogController.GetRelated(c.UserContext(), id)
	if err != nil {
		return respondError(c, log, err)
	}

	return respond(c, fiber.StatusOK, related)
}

func (h *CatalogHandler) getEmbed(c *fiber.Ctx) error {
	log := h.log.Function("getEmbed")

	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, log, err)
	}

	query, err := embedQuery(c)
	if err != nil {
		return respondError(c, log, err)
	}

	embed, err := h.metadataController.Embed(c.UserContext(), id, query)
	if err != nil {
		return respondError(c, log, err)
	}

	return respond(c, fiber.StatusOK, embed)
}

func embedQuery(c *fiber.Ctx) (metadataController.EmbedQuery, error) {
	validationErr := &types.ValidationError{}

	season, ok := optionalInt(c.Query("season"))
	if !ok {
		validationErr.Add("season", "must be a number")
	}
	episode, ok := optionalInt(c.Query("episode"))
	if !ok {
		validationErr.Add("episode", "must be a number")
	}

	if validationErr.HasErrors() {
		return metadataController.EmbedQuery{}, validationErr
	}
	return metadataController.EmbedQuery{Season: season, Episode: episode}, nil
}

func optionalInt(value string) (*int, bool) {
	if value == "" {
		return nil, true
	}

	n, err := strconv.Atoi(value)
	if err != nil {
		return nil, false
	}
	return &n, true
}

func (h *CatalogHandler) listGenres(c *fiber.Ctx) error {
	log := h.log.Function("listGenres")

	genres, err := h.genreController.List(c.UserContext())
	if err != nil {
		return respondError(c, log, err)
	}

	return respond(c, fiber.StatusOK, genres)
}

func (h *CatalogHandler) getGenreMedia(c *fiber.Ctx) error {
	log := h.log.Function("getGenreMedia")

	result, err := h.genreController.MediaBySlug(c.UserContext(), c.Params("slug"), parsePagination(c))
	if err != nil {
		return respondError(c, log, err)
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"genre":    result.Genre,
		"data":     result.Data,
		"page":     result.Page.Page,
		"pageSize": result.PageSize,
		"total":    result.Total,
		"lastPage": result.LastPage,
	})
}

func (h *CatalogHandler) getEpisode(c *fiber.Ctx) error {
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
