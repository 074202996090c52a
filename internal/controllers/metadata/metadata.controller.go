package metadataController

import (
	"cinestream/config"
	"cinestream/internal/database"
	. "cinestream/internal/models"
	"cinestream/internal/repositories"
	"cinestream/internal/services"
	"cinestream/internal/types"
	"context"
	"errors"
	"strings"
	"time"

	logger "github.com/Bparsons0904/goLogger"
	"gorm.io/gorm"
)

const RefreshBatchSize = 50

type SearchQuery struct {
	Query string `query:"query"`
	Type  string `query:"type"`
	Page  int    `query:"page"`
}

type ImportRequest struct {
	ExternalID string    `json:"externalId" validate:"required,numeric,max=32"`
	Type       MediaType `json:"type"       validate:"required,oneof=movie tv"`
}

// LinkRequest.Type is optional; when given it must match the media's own type.
type LinkRequest struct {
	ExternalID string    `json:"externalId" validate:"required,numeric,max=32"`
	Type       MediaType `json:"type"       validate:"omitempty,oneof=movie tv"`
}

type EmbedQuery struct {
	Season  *int `query:"season"`
	Episode *int `query:"episode"`
}

type SeasonImport struct {
	MediaID  uint      `json:"mediaId"`
	Season   int       `json:"season"`
	Imported int       `json:"imported"`
	Episodes []Episode `json:"episodes"`
}

type RefreshSummary struct {
	Checked   int `json:"checked"`
	Updated   int `json:"updated"`
	Unchanged int `json:"unchanged"`
	Failed    int `json:"failed"`
}

type MetadataControllerInterface interface {
	Search(ctx context.Context, query SearchQuery) (*services.TMDBSearchResponse, error)
	Fetch(ctx context.Context, kind MediaType, externalID string) (*services.MediaAttributes, error)
	Import(ctx context.Context, request *ImportRequest) (*Media, error)
	Link(ctx context.Context, mediaID uint, request *LinkRequest) (*Media, error)
	ImportSeason(ctx context.Context, mediaID uint, season int) (*SeasonImport, error)
	Embed(ctx context.Context, mediaID uint, query EmbedQuery) (*services.Embed, error)
	RefreshLinked(ctx context.Context, limit int) (RefreshSummary, error)
}

type MetadataController struct {
	mediaRepo          repositories.MediaRepository
	genreRepo          repositories.GenreRepository
	episodeRepo        repositories.EpisodeRepository
	tmdbService        *services.TMDBService
	vidsrcService      *services.VidsrcService
	transactionService *services.TransactionService
	validationService  *services.ValidationService
	db                 database.DB
	Config             config.Config
	log                logger.Logger
}

func New(
	repos repositories.Repository,
	services services.Service,
	config config.Config,
	db database.DB,
) MetadataControllerInterface {
	return &MetadataController{
		mediaRepo:          repos.Media,
		genreRepo:          repos.Genre,
		episodeRepo:        repos.Episode,
		tmdbService:        services.TMDB,
		vidsrcService:      services.Vidsrc,
		transactionService: services.Transaction,
		validationService:  services.Validation,
		db:                 db,
		Config:             config,
		log:                logger.New("metadataController"),
	}
}

func (c *MetadataController) Search(
	ctx context.Context,
	query SearchQuery,
) (*services.TMDBSearchResponse, error) {
	kind := services.SearchKind(strings.TrimSpace(query.Type))
	if kind == "" {
		kind = services.SearchMulti
	}

	return c.tmdbService.Search(ctx, query.Query, kind, query.Page)
}

func (c *MetadataController) Fetch(
	ctx context.Context,
	kind MediaType,
	externalID string,
) (*services.MediaAttributes, error) {
	attributes, err := c.tmdbService.FetchAttributes(ctx, externalID, kind)
	if err != nil {
		return nil, err
	}
	return &attributes, nil
}

// Import creates a media from the provider detail. The provider is called
// before the transaction opens so no connection is held across the request.
func (c *MetadataController) Import(ctx context.Context, request *ImportRequest) (*Media, error) {
	log := c.log.Function("Import").TraceFromContext(ctx)

	request.ExternalID = strings.TrimSpace(request.ExternalID)
	if err := c.validationService.Struct(request); err != nil {
		return nil, err
	}

	if err := c.ensureUnlinked(ctx, c.db.SQLWithContext(ctx), request.ExternalID, 0); err != nil {
		return nil, err
	}

	attributes, err := c.tmdbService.FetchAttributes(ctx, request.ExternalID, request.Type)
	if err != nil {
		return nil, err
	}

	media := &Media{}
	attributes.Apply(media)

	err = c.transactionService.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		if err := c.ensureUnlinked(ctx, tx, *media.ExternalID, 0); err != nil {
			return err
		}

		if err := c.mediaRepo.Create(ctx, tx, media); err != nil {
			return externalIDConflict(err)
		}

		return c.syncGenres(ctx, tx, media, attributes.GenreNames)
	})
	if err != nil {
		return nil, err
	}

	log.Info("media imported", "id", media.ID, "externalID", request.ExternalID, "type", media.Type)
	return media, nil
}

// Link overwrites the provider-owned fields of an existing media, fetched as
// the media's own type.
func (c *MetadataController) Link(
	ctx context.Context,
	mediaID uint,
	request *LinkRequest,
) (*Media, error) {
	log := c.log.Function("Link").TraceFromContext(ctx)

	request.ExternalID = strings.TrimSpace(request.ExternalID)
	if err := c.validationService.Struct(request); err != nil {
		return nil, err
	}

	tx := c.db.SQLWithContext(ctx)
	media, err := c.mediaRepo.GetByID(ctx, tx, mediaID)
	if err != nil {
		return nil, err
	}

	if request.Type != "" && request.Type != media.Type {
		return nil, types.SubtypeMismatch("media", media.ID, media.Type.Label(), request.Type.Label())
	}

	if err := c.ensureUnlinked(ctx, tx, request.ExternalID, media.ID); err != nil {
		return nil, err
	}

	attributes, err := c.tmdbService.FetchAttributes(ctx, request.ExternalID, media.Type)
	if err != nil {
		return nil, err
	}

	err = c.transactionService.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		attributes.Apply(media)
		if err := c.mediaRepo.Update(ctx, tx, media); err != nil {
			return externalIDConflict(err)
		}
		return c.syncGenres(ctx, tx, media, attributes.GenreNames)
	})
	if err != nil {
		return nil, err
	}

	log.Info("media linked", "id", media.ID, "externalID", request.ExternalID)
	return media, nil
}

// ImportSeason upserts the provider's episodes for one season of a linked
// tv show. Each episode plays through its embed URL.
func (c *MetadataController) ImportSeason(
	ctx context.Context,
	mediaID uint,
	season int,
) (*SeasonImport, error) {
	log := c.log.Function("ImportSeason").TraceFromContext(ctx)

	if season < 1 {
		return nil, types.NewValidationError("season", "must be at least 1")
	}

	tx := c.db.SQLWithContext(ctx)
	media, err := c.mediaRepo.GetByID(ctx, tx, mediaID)
	if err != nil {
		return nil, err
	}
	if !media.IsTV() {
		return nil, types.SubtypeMismatch("media", media.ID, media.Type.Label(), MediaTypeTV.Label())
	}
	if media.ExternalID == nil || *media.ExternalID == "" {
		return nil, types.NewValidationError("externalId", "must be linked before importing seasons")
	}

	details, err := c.tmdbService.FetchSeason(ctx, *media.ExternalID, season)
	if err != nil {
		return nil, err
	}

	episodes := c.tmdbService.MapSeason(media.ID, details)
	for i := range episodes {
		seasonNumber, episodeNumber := episodes[i].Season, episodes[i].EpisodeNumber
		embed, err := c.vidsrcService.BuildEmbed(
			*media.ExternalID,
			MediaTypeTV,
			&seasonNumber,
			&episodeNumber,
		)
		if err != nil {
			return nil, log.Err("failed to build episode embed", err, "mediaID", media.ID)
		}
		episodes[i].VideoURL = embed.URL
	}

	var stored []Episode
	err = c.transactionService.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		if err := c.episodeRepo.UpsertSeason(ctx, tx, episodes); err != nil {
			return err
		}

		all, err := c.episodeRepo.ListByMedia(ctx, tx, media.ID)
		if err != nil {
			return err
		}
		for _, episode := range all {
			if episode.Season == season {
				stored = append(stored, episode)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if stored == nil {
		stored = []Episode{}
	}

	log.Info("season imported", "mediaID", media.ID, "season", season, "episodes", len(episodes))
	return &SeasonImport{
		MediaID:  media.ID,
		Season:   season,
		Imported: len(episodes),
		Episodes: stored,
	}, nil
}

// Embed builds the player for a media, or for one episode of a show.
func (c *MetadataController) Embed(
	ctx context.Context,
	mediaID uint,
	query EmbedQuery,
) (*services.Embed, error) {
	media, err := c.mediaRepo.GetByID(ctx, c.db.SQLWithContext(ctx), mediaID)
	if err != nil {
		return nil, err
	}

	if media.ExternalID == nil || strings.TrimSpace(*media.ExternalID) == "" {
		return nil, types.ProviderNotFound("media", media.ID)
	}

	embed, err := c.vidsrcService.BuildEmbed(*media.ExternalID, media.Type, query.Season, query.Episode)
	if err != nil {
		return nil, err
	}
	return &embed, nil
}

// RefreshLinked re-fetches the least recently checked linked media and saves
// the volatile fields of those whose provider payload changed. Every media it
// fetched is stamped as checked, failures included, so the next batch moves
// on. One failing media does not stop the batch.
func (c *MetadataController) RefreshLinked(ctx context.Context, limit int) (RefreshSummary, error) {
	log := c.log.Function("RefreshLinked").TraceFromContext(ctx)

	if limit <= 0 {
		limit = RefreshBatchSize
	}

	linked, err := c.mediaRepo.ListLinked(ctx, c.db.SQLWithContext(ctx), limit)
	if err != nil {
		return RefreshSummary{}, err
	}

	summary := RefreshSummary{}
	checked := make([]uint, 0, len(linked))
	defer func() {
		stampCtx := context.WithoutCancel(ctx)
		err := c.mediaRepo.MarkChecked(stampCtx, c.db.SQLWithContext(stampCtx), checked, time.Now())
		if err != nil {
			log.Warn("failed to stamp checked media", "count", len(checked), "error", err)
		}
	}()

	for i := range linked {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		media := &linked[i]
		summary.Checked++
		checked = append(checked, media.ID)

		changed, err := c.refresh(ctx, media)
		switch {
		case err != nil:
			summary.Failed++
			log.Warn("failed to refresh media", "id", media.ID, "error", err)
		case changed:
			summary.Updated++
		default:
			summary.Unchanged++
		}
	}

	log.Info(
		"metadata refresh finished",
		"checked", summary.Checked,
		"updated", summary.Updated,
		"unchanged", summary.Unchanged,
		"failed", summary.Failed,
	)
	return summary, nil
}

func (c *MetadataController) refresh(ctx context.Context, media *Media) (bool, error) {
	attributes, err := c.tmdbService.FetchAttributes(ctx, *media.ExternalID, media.Type)
	if err != nil {
		return false, err
	}

	if attributes.Hash() == media.MetadataHash {
		return false, nil
	}

	attributes.ApplyVolatile(media)
	if err := c.mediaRepo.UpdateVolatile(ctx, c.db.SQLWithContext(ctx), media); err != nil {
		return false, err
	}

	return true, nil
}

// ensureUnlinked fails when externalID already belongs to a media other than owner.
func (c *MetadataController) ensureUnlinked(
	ctx context.Context,
	tx *gorm.DB,
	externalID string,
	owner uint,
) error {
	existing, err := c.mediaRepo.GetByExternalID(ctx, tx, externalID)
	switch {
	case errors.Is(err, types.ErrNotFound):
		return nil
	case err != nil:
		return err
	case existing.ID != owner:
		return types.NewValidationError("externalId", "is already linked to another media")
	}
	return nil
}

func (c *MetadataController) syncGenres(
	ctx context.Context,
	tx *gorm.DB,
	media *Media,
	names []string,
) error {
	genres, err := c.genreRepo.FindOrCreateByNames(ctx, tx, names)
	if err != nil {
		return err
	}
	return c.mediaRepo.ReplaceGenres(ctx, tx, media, genres)
}

func externalIDConflict(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return types.NewValidationError("externalId", "is already linked to another media")
	}
	return err
}
