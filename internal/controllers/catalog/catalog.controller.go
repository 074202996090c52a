package catalogController

import (
	"cinestream/config"
	"cinestream/internal/database"
	. "cinestream/internal/models"
	"cinestream/internal/repositories"
	"cinestream/internal/services"
	"cinestream/internal/types"
	"cinestream/internal/utils"
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	minYear        = 1870
	futureYearSpan = 5
)

// ListMediaQuery is bound from the query string; GenreIDs is a comma separated id list.
type ListMediaQuery struct {
	Title    string `query:"title"`
	GenreIDs string `query:"genreIds"`
	Type     string `query:"type"`
	Sort     string `query:"sort"`
	Page     int    `query:"page"`
	PageSize int    `query:"pageSize"`
}

// MediaRequest is shared by create and update. On update nil fields are left
// untouched; a nil GenreIDs keeps the genres and an empty list clears them.
type MediaRequest struct {
	Title            *string    `json:"title"            validate:"omitempty,min=1,max=255"`
	Description      *string    `json:"description"      validate:"omitempty,max=5000"`
	Year             *int       `json:"year"             validate:"omitempty,gte=1870"`
	Duration         *int       `json:"duration"         validate:"omitempty,gte=1"`
	Type             *MediaType `json:"type"             validate:"omitempty,oneof=movie tv"`
	PosterURL        *string    `json:"posterUrl"        validate:"omitempty,url"`
	BackdropURL      *string    `json:"backdropUrl"      validate:"omitempty,url"`
	TrailerURL       *string    `json:"trailerUrl"       validate:"omitempty,url"`
	Rating           *float64   `json:"rating"           validate:"omitempty,gte=0,lte=10"`
	ExternalID       *string    `json:"externalId"       validate:"omitempty,max=32"`
	FirstAirDate     *string    `json:"firstAirDate"`
	LastAirDate      *string    `json:"lastAirDate"`
	Status           *string    `json:"status"           validate:"omitempty,max=64"`
	SeasonsCount     *int       `json:"seasonsCount"     validate:"omitempty,gte=0"`
	EpisodesCount    *int       `json:"episodesCount"    validate:"omitempty,gte=0"`
	OriginalLanguage *string    `json:"originalLanguage" validate:"omitempty,max=16"`
	Adult            *bool      `json:"adult"`
	GenreIDs         *[]uint    `json:"genreIds"         validate:"omitempty,dive,gt=0"`
}

// MediaDetail is the public detail payload: the media with its genres, its
// episodes for tv, and the community rating.
type MediaDetail struct {
	*Media
	Ratings repositories.RatingSummary `json:"ratings"`
}

type CatalogControllerInterface interface {
	ListMedia(ctx context.Context, query ListMediaQuery, defaultPageSize int) (types.Page[Media], error)
	GetMedia(ctx context.Context, id uint) (*MediaDetail, error)
	GetMediaOfType(ctx context.Context, id uint, mediaType MediaType) (*Media, error)
	GetRelated(ctx context.Context, id uint) ([]Media, error)
	CreateMedia(ctx context.Context, request *MediaRequest) (*Media, error)
	UpdateMedia(
		ctx context.Context,
		id uint,
		expected MediaType,
		request *MediaRequest,
	) (*Media, error)
	DeleteMedia(ctx context.Context, id uint, expected MediaType) error
}

type CatalogController struct {
	mediaRepo          repositories.MediaRepository
	genreRepo          repositories.GenreRepository
	ratingRepo         repositories.RatingRepository
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
) CatalogControllerInterface {
	return &CatalogController{
		mediaRepo:          repos.Media,
		genreRepo:          repos.Genre,
		ratingRepo:         repos.Rating,
		transactionService: services.Transaction,
		validationService:  services.Validation,
		db:                 db,
		Config:             config,
		log:                logger.New("catalogController"),
	}
}

func (c *CatalogController) ListMedia(
	ctx context.Context,
	query ListMediaQuery,
	defaultPageSize int,
) (types.Page[Media], error) {
	filter, err := parseFilter(query)
	if err != nil {
		return types.Page[Media]{}, err
	}

	pagination := types.Pagination{Page: query.Page, PageSize: query.PageSize}.
		Normalize(defaultPageSize)

	media, total, err := c.mediaRepo.List(ctx, c.db.SQLWithContext(ctx), filter, pagination)
	if err != nil {
		return types.Page[Media]{}, err
	}

	return types.NewPage(media, pagination, total), nil
}

func parseFilter(query ListMediaQuery) (repositories.MediaFilter, error) {
	validationErr := &types.ValidationError{}

	filter := repositories.MediaFilter{
		Title: strings.TrimSpace(query.Title),
		Type:  MediaType(strings.TrimSpace(query.Type)),
		Sort:  repositories.MediaSort(strings.TrimSpace(query.Sort)),
	}

	if filter.Type != "" && !filter.Type.Valid() {
		validationErr.Add("type", "must be one of movie, tv")
	}

	if !filter.Sort.Valid() {
		validationErr.Add("sort", "must be one of newest, oldest, title, rating, year")
	}

	genreIDs, err := ParseIDList(query.GenreIDs)
	if err != nil {
		validationErr.Add("genreIds", "must be a comma separated list of ids")
	}
	filter.GenreIDs = genreIDs

	if validationErr.HasErrors() {
		return repositories.MediaFilter{}, validationErr
	}

	return filter, nil
}

// ParseIDList parses "1,2, 3" into ids, ignoring empty items.
func ParseIDList(value string) ([]uint, error) {
	var ids []uint
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		id, err := strconv.ParseUint(part, 10, 64)
		if err != nil || id == 0 {
			return nil, errors.New("invalid id " + part)
		}
		ids = append(ids, uint(id))
	}
	return ids, nil
}

func (c *CatalogController) GetMedia(ctx context.Context, id uint) (*MediaDetail, error) {
	tx := c.db.SQLWithContext(ctx)

	media, err := c.mediaRepo.GetDetail(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	summary, err := c.ratingRepo.Summary(ctx, tx, MediaTarget(media.ID))
	if err != nil {
		return nil, err
	}

	return &MediaDetail{Media: media, Ratings: summary}, nil
}

func (c *CatalogController) GetMediaOfType(
	ctx context.Context,
	id uint,
	mediaType MediaType,
) (*Media, error) {
	media, err := c.mediaRepo.GetDetail(ctx, c.db.SQLWithContext(ctx), id)
	if err != nil {
		return nil, err
	}

	if err := checkSubtype(media, mediaType); err != nil {
		return nil, err
	}

	return media, nil
}

func checkSubtype(media *Media, expected MediaType) error {
	if expected != "" && media.Type != expected {
		return types.SubtypeMismatch("media", media.ID, media.Type.Label(), expected.Label())
	}
	return nil
}

func (c *CatalogController) GetRelated(ctx context.Context, id uint) ([]Media, error) {
	tx := c.db.SQLWithContext(ctx)

	media, err := c.mediaRepo.GetByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	related, err := c.mediaRepo.Related(ctx, tx, media, repositories.RelatedMediaLimit)
	if err != nil {
		return nil, err
	}
	if related == nil {
		related = []Media{}
	}

	return related, nil
}

func (c *CatalogController) CreateMedia(ctx context.Context, request *MediaRequest) (*Media, error) {
	log := c.log.Function("CreateMedia").TraceFromContext(ctx)

	validationErr := c.validate(request)
	if request.Title == nil {
		validationErr.Add("title", "is required")
	}
	if request.Type == nil {
		validationErr.Add("type", "is required")
	}
	if validationErr.HasErrors() {
		return nil, validationErr
	}

	media := &Media{}
	request.apply(media)

	err := c.transactionService.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		if err := c.mediaRepo.Create(ctx, tx, media); err != nil {
			return externalIDConflict(err)
		}
		return c.syncGenres(ctx, tx, media, request.GenreIDs)
	})
	if err != nil {
		return nil, err
	}

	log.Info("media created", "id", media.ID, "type", media.Type)
	return media, nil
}

func (c *CatalogController) UpdateMedia(
	ctx context.Context,
	id uint,
	expected MediaType,
	request *MediaRequest,
) (*Media, error) {
	log := c.log.Function("UpdateMedia").TraceFromContext(ctx)

	if validationErr := c.validate(request); validationErr.HasErrors() {
		return nil, validationErr
	}

	var media *Media
	err := c.transactionService.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		var err error
		media, err = c.mediaRepo.GetByID(ctx, tx, id)
		if err != nil {
			return err
		}

		if err := checkSubtype(media, expected); err != nil {
			return err
		}

		if err := c.checkTypeChange(ctx, tx, media, request.Type); err != nil {
			return err
		}

		request.apply(media)
		if err := c.mediaRepo.Update(ctx, tx, media); err != nil {
			return externalIDConflict(err)
		}

		return c.syncGenres(ctx, tx, media, request.GenreIDs)
	})
	if err != nil {
		return nil, err
	}

	log.Info("media updated", "id", media.ID)
	return media, nil
}

// checkTypeChange refuses to turn a tv show with episodes into a movie.
func (c *CatalogController) checkTypeChange(
	ctx context.Context,
	tx *gorm.DB,
	media *Media,
	requested *MediaType,
) error {
	if requested == nil || *requested == media.Type || !media.IsTV() {
		return nil
	}

	var episodes int64
	if err := tx.Model(&Episode{}).Where("media_id = ?", media.ID).Count(&episodes).Error; err != nil {
		return c.log.Function("checkTypeChange").Err("failed to count episodes", err, "id", media.ID)
	}
	if episodes > 0 {
		return types.NewValidationError("type", "cannot change while the tv show has episodes")
	}

	return nil
}

func (c *CatalogController) syncGenres(
	ctx context.Context,
	tx *gorm.DB,
	media *Media,
	genreIDs *[]uint,
) error {
	if genreIDs == nil {
		return nil
	}

	genres, err := c.genreRepo.GetByIDs(ctx, tx, *genreIDs)
	if err != nil {
		return err
	}

	return c.mediaRepo.ReplaceGenres(ctx, tx, media, genres)
}

func (c *CatalogController) DeleteMedia(ctx context.Context, id uint, expected MediaType) error {
	log := c.log.Function("DeleteMedia").TraceFromContext(ctx)

	err := c.transactionService.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		media, err := c.mediaRepo.GetByID(ctx, tx, id)
		if err != nil {
			return err
		}

		if err := checkSubtype(media, expected); err != nil {
			return err
		}

		return c.mediaRepo.Delete(ctx, tx, id)
	})
	if err != nil {
		return err
	}

	log.Info("media deleted", "id", id)
	return nil
}

func (c *CatalogController) validate(request *MediaRequest) *types.ValidationError {
	validationErr := &types.ValidationError{}

	if err := c.validationService.Struct(request); err != nil {
		if fieldErrs, ok := types.IsValidation(err); ok {
			validationErr = fieldErrs
		} else {
			validationErr.Add("body", "is invalid")
		}
	}

	if request.Title != nil && strings.TrimSpace(*request.Title) == "" {
		validationErr.Add("title", "is required")
	}

	if request.Year != nil && *request.Year > time.Now().UTC().Year()+futureYearSpan {
		validationErr.Add("year", "is too far in the future")
	}

	checkDate(validationErr, "firstAirDate", request.FirstAirDate)
	checkDate(validationErr, "lastAirDate", request.LastAirDate)

	return validationErr
}

func checkDate(validationErr *types.ValidationError, field string, value *string) {
	if value == nil || strings.TrimSpace(*value) == "" {
		return
	}
	if utils.ParseDate(*value) == nil {
		validationErr.Add(field, "must be a date formatted as YYYY-MM-DD")
	}
}

func externalIDConflict(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return types.NewValidationError("externalId", "is already linked to another media")
	}
	return err
}

// apply copies the set fields onto media. Normalize drops whatever the final
// type does not own when the row is saved.
func (r *MediaRequest) apply(media *Media) {
	if r.Title != nil {
		media.Title = strings.TrimSpace(*r.Title)
	}
	if r.Description != nil {
		media.Description = *r.Description
	}
	if r.Year != nil {
		media.Year = r.Year
	}
	if r.Duration != nil {
		media.Duration = r.Duration
	}
	if r.Type != nil {
		media.Type = *r.Type
	}
	if r.PosterURL != nil {
		media.PosterURL = *r.PosterURL
	}
	if r.BackdropURL != nil {
		media.BackdropURL = *r.BackdropURL
	}
	if r.TrailerURL != nil {
		media.TrailerURL = *r.TrailerURL
	}
	if r.Rating != nil {
		media.Rating = decimal.NewFromFloat(*r.Rating).Round(1)
	}
	if r.ExternalID != nil {
		externalID := strings.TrimSpace(*r.ExternalID)
		media.ExternalID = &externalID
	}
	if r.FirstAirDate != nil {
		media.FirstAirDate = utils.ParseDate(*r.FirstAirDate)
	}
	if r.LastAirDate != nil {
		media.LastAirDate = utils.ParseDate(*r.LastAirDate)
	}
	if r.Status != nil {
		status := strings.TrimSpace(*r.Status)
		media.Status = &status
		if status == "" {
			media.Status = nil
		}
	}
	if r.SeasonsCount != nil {
		media.SeasonsCount = r.SeasonsCount
	}
	if r.EpisodesCount != nil {
		media.EpisodesCount = r.EpisodesCount
	}
	if r.OriginalLanguage != nil {
		media.OriginalLanguage = *r.OriginalLanguage
	}
	if r.Adult != nil {
		media.Adult = *r.Adult
	}
	if media.ProductionCompanies == nil {
		media.ProductionCompanies = datatypes.JSONSlice[string]{}
	}
	if media.ProductionCountries == nil {
		media.ProductionCountries = datatypes.JSONSlice[string]{}
	}
}
