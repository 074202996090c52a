package relationController

import (
	"cinestream/config"
	"cinestream/internal/database"
	"cinestream/internal/metrics"
	. "cinestream/internal/models"
	"cinestream/internal/repositories"
	"cinestream/internal/services"
	"cinestream/internal/types"
	"context"
	"errors"
	"time"

	logger "github.com/Bparsons0904/goLogger"
	"gorm.io/gorm"
)

type TargetRequest struct {
	MediaID   *uint `json:"mediaId"   validate:"required_without=EpisodeID,excluded_with=EpisodeID"`
	EpisodeID *uint `json:"episodeId" validate:"required_without=MediaID,excluded_with=MediaID"`
}

type RatingRequest struct {
	MediaID   *uint `json:"mediaId"   validate:"required_without=EpisodeID,excluded_with=EpisodeID"`
	EpisodeID *uint `json:"episodeId" validate:"required_without=MediaID,excluded_with=MediaID"`
	Rating    int   `json:"rating"    validate:"min=1,max=5"`
}

type ProgressRequest struct {
	MediaID   *uint      `json:"mediaId"   validate:"required_without=EpisodeID,excluded_with=EpisodeID"`
	EpisodeID *uint      `json:"episodeId" validate:"required_without=MediaID,excluded_with=MediaID"`
	Progress  int        `json:"progress"  validate:"gte=0"`
	Duration  int        `json:"duration"  validate:"gte=0"`
	WatchedAt *time.Time `json:"watchedAt"`
}

type ToggleResult struct {
	Status    repositories.ToggleStatus `json:"status"`
	MediaID   *uint                     `json:"mediaId"`
	EpisodeID *uint                     `json:"episodeId"`
}

// MediaState is what the detail page shows for the signed-in user.
type MediaState struct {
	Favorited   bool          `json:"favorited"`
	InWatchlist bool          `json:"inWatchlist"`
	Rating      *int          `json:"rating"`
	Progress    *WatchHistory `json:"progress"`
}

type RelationControllerInterface interface {
	ToggleFavorite(ctx context.Context, user *User, request *TargetRequest) (*ToggleResult, error)
	ListFavorites(ctx context.Context, user *User) ([]Favorite, error)
	DeleteFavorite(ctx context.Context, user *User, id uint) error
	ToggleWatchlist(ctx context.Context, user *User, request *TargetRequest) (*ToggleResult, error)
	ListWatchlist(ctx context.Context, user *User) ([]Watchlist, error)
	RecordProgress(ctx context.Context, user *User, request *ProgressRequest) (*WatchHistory, error)
	UpdateLatestProgress(
		ctx context.Context,
		user *User,
		request *ProgressRequest,
	) (*WatchHistory, error)
	ListHistory(ctx context.Context, user *User) ([]WatchHistory, error)
	Rate(ctx context.Context, user *User, request *RatingRequest) (*Rating, error)
	RemoveRating(ctx context.Context, user *User, request *TargetRequest) error
	ListRatings(ctx context.Context, user *User) ([]Rating, error)
	State(ctx context.Context, user *User, mediaID uint) (*MediaState, error)
}

type RelationController struct {
	favoriteRepo       repositories.FavoriteRepository
	watchlistRepo      repositories.WatchlistRepository
	ratingRepo         repositories.RatingRepository
	historyRepo        repositories.HistoryRepository
	mediaRepo          repositories.MediaRepository
	episodeRepo        repositories.EpisodeRepository
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
) RelationControllerInterface {
	return &RelationController{
		favoriteRepo:       repos.Favorite,
		watchlistRepo:      repos.Watchlist,
		ratingRepo:         repos.Rating,
		historyRepo:        repos.History,
		mediaRepo:          repos.Media,
		episodeRepo:        repos.Episode,
		transactionService: services.Transaction,
		validationService:  services.Validation,
		db:                 db,
		Config:             config,
		log:                logger.New("relationController"),
	}
}

func (c *RelationController) ToggleFavorite(
	ctx context.Context,
	user *User,
	request *TargetRequest,
) (*ToggleResult, error) {
	return c.toggle(ctx, "favorite", user, request, c.favoriteRepo.Toggle)
}

func (c *RelationController) ToggleWatchlist(
	ctx context.Context,
	user *User,
	request *TargetRequest,
) (*ToggleResult, error) {
	return c.toggle(ctx, "watchlist", user, request, c.watchlistRepo.Toggle)
}

type toggleFunc func(context.Context, *gorm.DB, uint, Target) (repositories.ToggleStatus, error)

func (c *RelationController) toggle(
	ctx context.Context,
	kind string,
	user *User,
	request *TargetRequest,
	toggle toggleFunc,
) (*ToggleResult, error) {
	log := c.log.Function("toggle").TraceFromContext(ctx)

	target, err := c.target(request.MediaID, request.EpisodeID, request)
	if err != nil {
		return nil, err
	}

	tx := c.db.SQLWithContext(ctx)
	if _, err := c.resolve(ctx, tx, target); err != nil {
		return nil, err
	}

	status, err := toggle(ctx, tx, user.ID, target)
	if err != nil {
		return nil, err
	}

	metrics.RelationToggles.WithLabelValues(kind, string(status)).Inc()
	log.Info("relation toggled", "kind", kind, "userID", user.ID, "target", target.String(), "status", status)

	mediaID, episodeID := target.Columns()
	return &ToggleResult{Status: status, MediaID: mediaID, EpisodeID: episodeID}, nil
}

func (c *RelationController) ListFavorites(ctx context.Context, user *User) ([]Favorite, error) {
	return c.favoriteRepo.List(ctx, c.db.SQLWithContext(ctx), user.ID)
}

func (c *RelationController) DeleteFavorite(ctx context.Context, user *User, id uint) error {
	return c.favoriteRepo.DeleteByID(ctx, c.db.SQLWithContext(ctx), user.ID, id)
}

func (c *RelationController) ListWatchlist(ctx context.Context, user *User) ([]Watchlist, error) {
	return c.watchlistRepo.List(ctx, c.db.SQLWithContext(ctx), user.ID)
}

// RecordProgress appends a history row on every call.
func (c *RelationController) RecordProgress(
	ctx context.Context,
	user *User,
	request *ProgressRequest,
) (*WatchHistory, error) {
	target, err := c.target(request.MediaID, request.EpisodeID, request)
	if err != nil {
		return nil, err
	}

	var entry *WatchHistory
	err = c.transactionService.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		mediaID, err := c.resolve(ctx, tx, target)
		if err != nil {
			return err
		}

		entry = newHistoryEntry(user.ID, mediaID, target, request)
		return c.historyRepo.Create(ctx, tx, entry)
	})
	if err != nil {
		return nil, err
	}

	return entry, nil
}

// UpdateLatestProgress resumes the newest unfinished row for the target and
// appends a new one once the previous viewing was completed.
func (c *RelationController) UpdateLatestProgress(
	ctx context.Context,
	user *User,
	request *ProgressRequest,
) (*WatchHistory, error) {
	target, err := c.target(request.MediaID, request.EpisodeID, request)
	if err != nil {
		return nil, err
	}

	var entry *WatchHistory
	err = c.transactionService.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		mediaID, err := c.resolve(ctx, tx, target)
		if err != nil {
			return err
		}

		latest, err := c.historyRepo.Latest(ctx, tx, user.ID, target)
		switch {
		case err == nil && !latest.Completed:
			entry = latest
			return c.historyRepo.UpdateProgress(ctx, tx, entry, request.Progress, request.Duration)
		case err != nil && !errors.Is(err, types.ErrNotFound):
			return err
		}

		entry = newHistoryEntry(user.ID, mediaID, target, request)
		return c.historyRepo.Create(ctx, tx, entry)
	})
	if err != nil {
		return nil, err
	}

	return entry, nil
}

func newHistoryEntry(userID, mediaID uint, target Target, request *ProgressRequest) *WatchHistory {
	entry := &WatchHistory{
		UserID:   userID,
		MediaID:  mediaID,
		Progress: request.Progress,
		Duration: request.Duration,
	}
	if target.IsEpisode() {
		episodeID := target.ID()
		entry.EpisodeID = &episodeID
	}
	if request.WatchedAt != nil {
		entry.WatchedAt = request.WatchedAt.UTC()
	}
	return entry
}

func (c *RelationController) ListHistory(ctx context.Context, user *User) ([]WatchHistory, error) {
	return c.historyRepo.List(ctx, c.db.SQLWithContext(ctx), user.ID, repositories.HISTORY_LIST_LIMIT)
}

func (c *RelationController) Rate(
	ctx context.Context,
	user *User,
	request *RatingRequest,
) (*Rating, error) {
	target, err := c.target(request.MediaID, request.EpisodeID, request)
	if err != nil {
		return nil, err
	}

	var rating *Rating
	err = c.transactionService.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		if _, err := c.resolve(ctx, tx, target); err != nil {
			return err
		}

		var err error
		rating, err = c.ratingRepo.Upsert(ctx, tx, user.ID, target, request.Rating)
		return err
	})
	if err != nil {
		return nil, err
	}

	return rating, nil
}

func (c *RelationController) RemoveRating(
	ctx context.Context,
	user *User,
	request *TargetRequest,
) error {
	target, err := c.target(request.MediaID, request.EpisodeID, request)
	if err != nil {
		return err
	}

	return c.ratingRepo.Remove(ctx, c.db.SQLWithContext(ctx), user.ID, target)
}

func (c *RelationController) ListRatings(ctx context.Context, user *User) ([]Rating, error) {
	return c.ratingRepo.List(ctx, c.db.SQLWithContext(ctx), user.ID)
}

func (c *RelationController) State(
	ctx context.Context,
	user *User,
	mediaID uint,
) (*MediaState, error) {
	tx := c.db.SQLWithContext(ctx)
	target := MediaTarget(mediaID)

	if _, err := c.mediaRepo.GetByID(ctx, tx, mediaID); err != nil {
		return nil, err
	}

	state := &MediaState{}

	var err error
	if state.Favorited, err = c.favoriteRepo.Exists(ctx, tx, user.ID, target); err != nil {
		return nil, err
	}
	if state.InWatchlist, err = c.watchlistRepo.Exists(ctx, tx, user.ID, target); err != nil {
		return nil, err
	}

	rating, err := c.ratingRepo.Get(ctx, tx, user.ID, target)
	switch {
	case err == nil:
		state.Rating = &rating.Rating
	case !errors.Is(err, types.ErrNotFound):
		return nil, err
	}

	progress, err := c.historyRepo.LatestForMedia(ctx, tx, user.ID, mediaID)
	switch {
	case err == nil:
		state.Progress = progress
	case !errors.Is(err, types.ErrNotFound):
		return nil, err
	}

	return state, nil
}

// target validates the request and builds the Target it names.
func (c *RelationController) target(mediaID, episodeID *uint, request any) (Target, error) {
	if err := c.validationService.Struct(request); err != nil {
		return Target{}, err
	}

	target, err := NewTarget(mediaID, episodeID)
	if err != nil {
		return Target{}, types.NewValidationError("mediaId", "must reference a media or an episode")
	}

	return target, nil
}

// resolve checks that the target exists and returns the media id history rows
// are filed under: the media itself or the episode's show.
func (c *RelationController) resolve(ctx context.Context, tx *gorm.DB, target Target) (uint, error) {
	if target.IsEpisode() {
		episode, err := c.episodeRepo.GetByID(ctx, tx, target.ID())
		if err != nil {
			return 0, err
		}
		return episode.MediaID, nil
	}

	media, err := c.mediaRepo.GetByID(ctx, tx, target.ID())
	if err != nil {
		return 0, err
	}
	return media.ID, nil
}
