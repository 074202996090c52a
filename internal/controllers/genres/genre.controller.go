package genreController

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
	"strings"

	logger "github.com/Bparsons0904/goLogger"
	"gorm.io/gorm"
)

type GenreRequest struct {
	Name  string  `json:"name"  validate:"required,max=100"`
	Color *string `json:"color" validate:"omitempty,hexcolor"`
}

type GenreMedia struct {
	Genre *Genre `json:"genre"`
	types.Page[Media]
}

type GenreControllerInterface interface {
	List(ctx context.Context) ([]Genre, error)
	MediaBySlug(ctx context.Context, slug string, pagination types.Pagination) (*GenreMedia, error)
	Create(ctx context.Context, request *GenreRequest) (*Genre, error)
	Update(ctx context.Context, id uint, request *GenreRequest) (*Genre, error)
	Delete(ctx context.Context, id uint) error
}

type GenreController struct {
	genreRepo          repositories.GenreRepository
	mediaRepo          repositories.MediaRepository
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
) GenreControllerInterface {
	return &GenreController{
		genreRepo:          repos.Genre,
		mediaRepo:          repos.Media,
		transactionService: services.Transaction,
		validationService:  services.Validation,
		db:                 db,
		Config:             config,
		log:                logger.New("genreController"),
	}
}

func (c *GenreController) List(ctx context.Context) ([]Genre, error) {
	genres, err := c.genreRepo.List(ctx, c.db.SQLWithContext(ctx))
	if err != nil {
		return nil, err
	}
	if genres == nil {
		genres = []Genre{}
	}
	return genres, nil
}

func (c *GenreController) MediaBySlug(
	ctx context.Context,
	slug string,
	pagination types.Pagination,
) (*GenreMedia, error) {
	tx := c.db.SQLWithContext(ctx)

	genre, err := c.genreRepo.GetBySlug(ctx, tx, strings.ToLower(strings.TrimSpace(slug)))
	if err != nil {
		return nil, err
	}

	pagination = pagination.Normalize(types.PublicPageSize)
	media, total, err := c.mediaRepo.List(ctx, tx, repositories.MediaFilter{
		GenreIDs: []uint{genre.ID},
	}, pagination)
	if err != nil {
		return nil, err
	}

	return &GenreMedia{Genre: genre, Page: types.NewPage(media, pagination, total)}, nil
}

func (c *GenreController) Create(ctx context.Context, request *GenreRequest) (*Genre, error) {
	log := c.log.Function("Create").TraceFromContext(ctx)

	if err := c.validate(request); err != nil {
		return nil, err
	}

	genre := &Genre{Name: request.Name, Color: request.Color}
	err := c.transactionService.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		return duplicateName(c.genreRepo.Create(ctx, tx, genre))
	})
	if err != nil {
		return nil, err
	}

	log.Info("genre created", "id", genre.ID, "slug", genre.Slug)
	return genre, nil
}

func (c *GenreController) Update(
	ctx context.Context,
	id uint,
	request *GenreRequest,
) (*Genre, error) {
	if err := c.validate(request); err != nil {
		return nil, err
	}

	var genre *Genre
	err := c.transactionService.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		var err error
		genre, err = c.genreRepo.GetByID(ctx, tx, id)
		if err != nil {
			return err
		}

		genre.Name = request.Name
		genre.Color = request.Color
		return duplicateName(c.genreRepo.Update(ctx, tx, genre))
	})
	if err != nil {
		return nil, err
	}

	return genre, nil
}

// Delete unlinks the genre; the media it was attached to are kept.
func (c *GenreController) Delete(ctx context.Context, id uint) error {
	return c.transactionService.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		return c.genreRepo.Delete(ctx, tx, id)
	})
}

func (c *GenreController) validate(request *GenreRequest) error {
	request.Name = strings.TrimSpace(request.Name)

	if err := c.validationService.Struct(request); err != nil {
		return err
	}

	if utils.Slugify(request.Name) == "" {
		return types.NewValidationError("name", "must contain a letter or digit")
	}

	return nil
}

func duplicateName(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return types.NewValidationError("name", "is already taken by a genre with the same name or slug")
	}
	return err
}
