package repositories

import (
	. "cinestream/internal/models"
	"cinestream/internal/types"
	"context"
	"errors"

	logger "github.com/Bparsons0904/goLogger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EpisodeRepository interface {
	List(
		ctx context.Context,
		tx *gorm.DB,
		mediaID *uint,
		pagination types.Pagination,
	) ([]Episode, int64, error)
	ListByMedia(ctx context.Context, tx *gorm.DB, mediaID uint) ([]Episode, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*Episode, error)
	Create(ctx context.Context, tx *gorm.DB, episode *Episode) error
	Update(ctx context.Context, tx *gorm.DB, episode *Episode) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
	UpsertSeason(ctx context.Context, tx *gorm.DB, episodes []Episode) error
}

type episodeRepository struct {
	log logger.Logger
}

func NewEpisodeRepository() EpisodeRepository {
	return &episodeRepository{
		log: logger.New("episodeRepository"),
	}
}

func (r *episodeRepository) List(
	ctx context.Context,
	tx *gorm.DB,
	mediaID *uint,
	pagination types.Pagination,
) ([]Episode, int64, error) {
	log := r.log.Function("List")

	query := tx.Model(&Episode{})
	if mediaID != nil {
		query = query.Where("media_id = ?", *mediaID)
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, log.Err("failed to count episodes", err)
	}

	var episodes []Episode
	err := query.Preload("Media").
		Order("media_id ASC, season ASC, episode_number ASC").
		Limit(pagination.PageSize).
		Offset(pagination.Offset()).
		Find(&episodes).Error
	if err != nil {
		return nil, 0, log.Err("failed to list episodes", err)
	}

	return episodes, total, nil
}

func (r *episodeRepository) ListByMedia(
	ctx context.Context,
	tx *gorm.DB,
	mediaID uint,
) ([]Episode, error) {
	log := r.log.Function("ListByMedia")

	episodes, err := gorm.G[Episode](tx).
		Where("media_id = ?", mediaID).
		Order("season ASC, episode_number ASC").
		Find(ctx)
	if err != nil {
		return nil, log.Err("failed to list episodes", err, "mediaID", mediaID)
	}

	return episodes, nil
}

func (r *episodeRepository) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*Episode, error) {
	log := r.log.Function("GetByID")

	var episode Episode
	if err := tx.Preload("Media").First(&episode, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NotFound("episode", id)
		}
		return nil, log.Err("failed to get episode", err, "id", id)
	}

	return &episode, nil
}

func (r *episodeRepository) Create(ctx context.Context, tx *gorm.DB, episode *Episode) error {
	if err := tx.Omit(clause.Associations).Create(episode).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return err
		}
		return r.log.Function("Create").Err("failed to create episode", err, "mediaID", episode.MediaID)
	}

	return nil
}

func (r *episodeRepository) Update(ctx context.Context, tx *gorm.DB, episode *Episode) error {
	if err := tx.Omit(clause.Associations).Save(episode).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return err
		}
		return r.log.Function("Update").Err("failed to update episode", err, "id", episode.ID)
	}

	return nil
}

// Delete removes the episode with the relation rows targeting it.
func (r *episodeRepository) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	log := r.log.Function("Delete")

	dependents := []any{&Favorite{}, &Watchlist{}, &Rating{}, &WatchHistory{}}
	for _, model := range dependents {
		if err := tx.Where("episode_id = ?", id).Delete(model).Error; err != nil {
			return log.Err("failed to delete episode dependents", err, "id", id)
		}
	}

	rowsAffected, err := gorm.G[Episode](tx).Where("id = ?", id).Delete(ctx)
	if err != nil {
		return log.Err("failed to delete episode", err, "id", id)
	}
	if rowsAffected == 0 {
		return types.NotFound("episode", id)
	}

	return nil
}

// UpsertSeason inserts provider episodes, refreshing the descriptive columns of
// episodes that already exist at the same (media, season, number).
func (r *episodeRepository) UpsertSeason(
	ctx context.Context,
	tx *gorm.DB,
	episodes []Episode,
) error {
	log := r.log.Function("UpsertSeason")

	if len(episodes) == 0 {
		return nil
	}

	err := tx.Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "media_id"},
				{Name: "season"},
				{Name: "episode_number"},
			},
			DoUpdates: clause.AssignmentColumns([]string{
				"title",
				"description",
				"duration",
				"video_url",
				"still_url",
				"air_date",
				"updated_at",
			}),
		}).
		Create(&episodes).Error
	if err != nil {
		return log.Err("failed to upsert season", err, "count", len(episodes))
	}

	return nil
}
