package episodeController

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

// EpisodeRequest is shared by create and update; update leaves nil fields as they are.
type EpisodeRequest struct {
	MediaID       *uint   `json:"mediaId"       validate:"omitempty,gt=0"`
	Season        *int    `json:"season"        validate:"omitempty,gte=1"`
	EpisodeNumber *int    `json:"episodeNumber" validate:"omitempty,gte=1"`
	Title         *string `json:"title"         validate:"omitempty,max=255"`
	Description   *string `json:"description"   validate:"omitempty,max=5000"`
	Duration      *int    `json:"duration"      validate:"omitempty,gte=0"`
	VideoURL      *string `json:"videoUrl"      validate:"omitempty,url"`
	StillURL      *string `json:"stillUrl"      validate:"omitempty,url"`
	AirDate       *string `json:"airDate"`
}

type EpisodeControllerInterface interface {
	List(ctx context.Context, mediaID *uint, pagination types.Pagination) (types.Page[Episode], error)
	ListForShow(ctx context.Context, mediaID uint) ([]Episode, error)
	Get(ctx context.Context, id uint) (*Episode, error)
	Create(ctx context.Context, request *EpisodeRequest) (*Episode, error)
	Update(ctx context.Context, id uint, request *EpisodeRequest) (*Episode, error)
	Delete(ctx context.Context, id uint) error
}

type EpisodeController struct {
	episodeRepo        repositories.EpisodeRepository
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
) EpisodeControllerInterface {
	return &EpisodeController{
		episodeRepo:        repos.Episode,
		mediaRepo:          repos.Media,
		transactionService: services.Transaction,
		validationService:  services.Validation,
		db:                 db,
		Config:             config,
		log:                logger.New("episodeController"),
	}
}

func (c *EpisodeController) List(
	ctx context.Context,
	mediaID *uint,
	pagination types.Pagination,
) (types.Page[Episode], error) {
	pagination = pagination.Normalize(types.AdminPageSize)

	episodes, total, err := c.episodeRepo.List(ctx, c.db.SQLWithContext(ctx), mediaID, pagination)
	if err != nil {
		return types.Page[Episode]{}, err
	}

	return types.NewPage(episodes, pagination, total), nil
}

func (c *EpisodeController) ListForShow(ctx context.Context, mediaID uint) ([]Episode, error) {
	tx := c.db.SQLWithContext(ctx)

	if _, err := c.showByID(ctx, tx, mediaID); err != nil {
		return nil, err
	}

	episodes, err := c.episodeRepo.ListByMedia(ctx, tx, mediaID)
	if err != nil {
		return nil, err
	}
	if episodes == nil {
		episodes = []Episode{}
	}

	return episodes, nil
}

func (c *EpisodeController) Get(ctx context.Context, id uint) (*Episode, error) {
	return c.episodeRepo.GetByID(ctx, c.db.SQLWithContext(ctx), id)
}

func (c *EpisodeController) Create(ctx context.Context, request *EpisodeRequest) (*Episode, error) {
	log := c.log.Function("Create").TraceFromContext(ctx)

	validationErr := c.validate(request)
	if request.MediaID == nil {
		validationErr.Add("mediaId", "is required")
	}
	if request.Season == nil {
		validationErr.Add("season", "is required")
	}
	if request.EpisodeNumber == nil {
		validationErr.Add("episodeNumber", "is required")
	}
	if validationErr.HasErrors() {
		return nil, validationErr
	}

	episode := &Episode{}
	err := c.transactionService.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		if _, err := c.showByID(ctx, tx, *request.MediaID); err != nil {
			return err
		}

		request.apply(episode)
		return duplicateEpisode(c.episodeRepo.Create(ctx, tx, episode))
	})
	if err != nil {
		return nil, err
	}

	log.Info("episode created", "id", episode.ID, "mediaID", episode.MediaID, "code", episode.Code())
	return episode, nil
}

func (c *EpisodeController) Update(
	ctx context.Context,
	id uint,
	request *EpisodeRequest,
) (*Episode, error) {
	if validationErr := c.validate(request); validationErr.HasErrors() {
		return nil, validationErr
	}

	var episode *Episode
	err := c.transactionService.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		var err error
		episode, err = c.episodeRepo.GetByID(ctx, tx, id)
		if err != nil {
			return err
		}

		if request.MediaID != nil && *request.MediaID != episode.MediaID {
			show, err := c.showByID(ctx, tx, *request.MediaID)
			if err != nil {
				return err
			}
			episode.Media = show
		}

		request.apply(episode)
		return duplicateEpisode(c.episodeRepo.Update(ctx, tx, episode))
	})
	if err != nil {
		return nil, err
	}

	return episode, nil
}

func (c *EpisodeController) Delete(ctx context.Context, id uint) error {
	return c.transactionService.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		return c.episodeRepo.Delete(ctx, tx, id)
	})
}

// showByID loads the owner of an episode, which must be a tv show.
func (c *EpisodeController) showByID(ctx context.Context, tx *gorm.DB, mediaID uint) (*Media, error) {
	media, err := c.mediaRepo.GetByID(ctx, tx, mediaID)
	if err != nil {
		return nil, err
	}

	if !media.IsTV() {
		return nil, types.SubtypeMismatch("media", media.ID, media.Type.Label(), MediaTypeTV.Label())
	}

	return media, nil
}

func (c *EpisodeController) validate(request *EpisodeRequest) *types.ValidationError {
	validationErr := &types.ValidationError{}

	if err := c.validationService.Struct(request); err != nil {
		if fieldErrs, ok := types.IsValidation(err); ok {
			validationErr = fieldErrs
		} else {
			validationErr.Add("body", "is invalid")
		}
	}

	if request.AirDate != nil && strings.TrimSpace(*request.AirDate) != "" &&
		utils.ParseDate(*request.AirDate) == nil {
		validationErr.Add("airDate", "must be a date formatted as YYYY-MM-DD")
	}

	return validationErr
}

func duplicateEpisode(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return types.NewValidationError("episodeNumber", "already exists for this season")
	}
	return err
}

func (r *EpisodeRequest) apply(episode *Episode) {
	if r.MediaID != nil {
		episode.MediaID = *r.MediaID
	}
	if r.Season != nil {
		episode.Season = *r.Season
	}
	if r.EpisodeNumber != nil {
		episode.EpisodeNumber = *r.EpisodeNumber
	}
	if r.Title != nil {
		episode.Title = strings.TrimSpace(*r.Title)
	}
	if r.Description != nil {
		episode.Description = *r.Description
	}
	if r.Duration != nil {
		episode.Duration = *r.Duration
	}
	if r.VideoURL != nil {
		episode.VideoURL = *r.VideoURL
	}
	if r.StillURL != nil {
		episode.StillURL = *r.StillURL
	}
	if r.AirDate != nil {
		episode.AirDate = utils.ParseDate(*r.AirDate)
	}
}
