package repositories

import (
	. "cinestream/internal/models"
	"cinestream/internal/types"
	"context"
	"errors"
	"time"

	logger "github.com/Bparsons0904/goLogger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const HISTORY_LIST_LIMIT = 100

type HistoryRepository interface {
	Create(ctx context.Context, tx *gorm.DB, entry *WatchHistory) error
	Latest(ctx context.Context, tx *gorm.DB, userID uint, target Target) (*WatchHistory, error)
	LatestForMedia(ctx context.Context, tx *gorm.DB, userID, mediaID uint) (*WatchHistory, error)
	UpdateProgress(
		ctx context.Context,
		tx *gorm.DB,
		entry *WatchHistory,
		progress, duration int,
	) error
	List(ctx context.Context, tx *gorm.DB, userID uint, limit int) ([]WatchHistory, error)
}

type historyRepository struct {
	log logger.Logger
}

func NewHistoryRepository() HistoryRepository {
	return &historyRepository{
		log: logger.New("historyRepository"),
	}
}

// historyScope matches rows for target. Episode rows also carry the owning
// show's media id, so only the media side checks episode_id.
func historyScope(target Target) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if target.IsEpisode() {
			return db.Where("episode_id = ?", target.ID())
		}
		return db.Where("media_id = ? AND episode_id IS NULL", target.ID())
	}
}

func (r *historyRepository) Create(ctx context.Context, tx *gorm.DB, entry *WatchHistory) error {
	if err := tx.Omit(clause.Associations).Create(entry).Error; err != nil {
		return r.log.Function("Create").
			Err("failed to record watch history", err, "userID", entry.UserID, "mediaID", entry.MediaID)
	}

	return nil
}

func (r *historyRepository) Latest(
	ctx context.Context,
	tx *gorm.DB,
	userID uint,
	target Target,
) (*WatchHistory, error) {
	return r.latest(tx.Where("user_id = ?", userID).Scopes(historyScope(target)), target.String())
}

// LatestForMedia includes rows for any episode of the media.
func (r *historyRepository) LatestForMedia(
	ctx context.Context,
	tx *gorm.DB,
	userID, mediaID uint,
) (*WatchHistory, error) {
	return r.latest(tx.Where("user_id = ? AND media_id = ?", userID, mediaID), MediaTarget(mediaID).String())
}

func (r *historyRepository) latest(query *gorm.DB, target string) (*WatchHistory, error) {
	var entry WatchHistory
	err := query.Order("watched_at DESC, id DESC").First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NotFound("watch history for", target)
		}
		return nil, r.log.Function("latest").Err("failed to get latest watch history", err, "target", target)
	}

	return &entry, nil
}

func (r *historyRepository) UpdateProgress(
	ctx context.Context,
	tx *gorm.DB,
	entry *WatchHistory,
	progress, duration int,
) error {
	watchedAt := time.Now().UTC()
	err := tx.Model(entry).Updates(map[string]any{
		"progress":   progress,
		"duration":   duration,
		"watched_at": watchedAt,
	}).Error
	if err != nil {
		return r.log.Function("UpdateProgress").Err("failed to update progress", err, "id", entry.ID)
	}

	entry.Progress = progress
	entry.Duration = duration
	entry.WatchedAt = watchedAt
	entry.Completed = entry.IsCompleted()
	return nil
}

func (r *historyRepository) List(
	ctx context.Context,
	tx *gorm.DB,
	userID uint,
	limit int,
) ([]WatchHistory, error) {
	log := r.log.Function("List")

	if limit <= 0 || limit > HISTORY_LIST_LIMIT {
		limit = HISTORY_LIST_LIMIT
	}

	entries := []WatchHistory{}
	err := tx.Where("user_id = ?", userID).
		Preload("Media").
		Preload("Episode.Media").
		Order("watched_at DESC, id DESC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, log.Err("failed to list watch history", err, "userID", userID)
	}

	return entries, nil
}
