package repositories

import (
	. "cinestream/internal/models"
	"cinestream/internal/types"
	"context"
	"errors"
	"strings"
	"time"

	logger "github.com/Bparsons0904/goLogger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const RelatedMediaLimit = 6

type MediaSort string

const (
	SortNewest MediaSort = "newest"
	SortOldest MediaSort = "oldest"
	SortTitle  MediaSort = "title"
	SortRating MediaSort = "rating"
	SortYear   MediaSort = "year"
)

var mediaOrderings = map[MediaSort]string{
	SortNewest: "media.created_at DESC, media.id DESC",
	SortOldest: "media.created_at ASC, media.id ASC",
	SortTitle:  "LOWER(media.title) ASC, media.id ASC",
	SortRating: "media.rating DESC, media.id DESC",
	SortYear:   "media.year DESC, media.id DESC",
}

func (s MediaSort) Valid() bool {
	_, ok := mediaOrderings[s]
	return ok || s == ""
}

// MediaFilter narrows a catalog listing. Zero values match everything; GenreIDs
// match media carrying any of the listed genres.
type MediaFilter struct {
	Title    string
	GenreIDs []uint
	Type     MediaType
	Sort     MediaSort
}

type MediaRepository interface {
	List(
		ctx context.Context,
		tx *gorm.DB,
		filter MediaFilter,
		pagination types.Pagination,
	) ([]Media, int64, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*Media, error)
	GetDetail(ctx context.Context, tx *gorm.DB, id uint) (*Media, error)
	GetByExternalID(ctx context.Context, tx *gorm.DB, externalID string) (*Media, error)
	Create(ctx context.Context, tx *gorm.DB, media *Media) error
	Update(ctx context.Context, tx *gorm.DB, media *Media) error
	ReplaceGenres(ctx context.Context, tx *gorm.DB, media *Media, genres []Genre) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
	Related(ctx context.Context, tx *gorm.DB, media *Media, limit int) ([]Media, error)
	ListLinked(ctx context.Context, tx *gorm.DB, limit int) ([]Media, error)
	UpdateVolatile(ctx context.Context, tx *gorm.DB, media *Media) error
	MarkChecked(ctx context.Context, tx *gorm.DB, ids []uint, checkedAt time.Time) error
}

type mediaRepository struct {
	log logger.Logger
}

func NewMediaRepository() MediaRepository {
	return &mediaRepository{
		log: logger.New("mediaRepository"),
	}
}

func (r *mediaRepository) List(
	ctx context.Context,
	tx *gorm.DB,
	filter MediaFilter,
	pagination types.Pagination,
) ([]Media, int64, error) {
	log := r.log.Function("List")

	var total int64
	if err := applyMediaFilter(tx.Model(&Media{}), filter).Count(&total).Error; err != nil {
		return nil, 0, log.Err("failed to count media", err, "filter", filter)
	}

	ordering, ok := mediaOrderings[filter.Sort]
	if !ok {
		ordering = mediaOrderings[SortNewest]
	}

	var media []Media
	err := applyMediaFilter(tx.Model(&Media{}), filter).
		Preload("Genres", orderGenres).
		Order(ordering).
		Limit(pagination.PageSize).
		Offset(pagination.Offset()).
		Find(&media).Error
	if err != nil {
		return nil, 0, log.Err("failed to list media", err, "filter", filter)
	}

	return media, total, nil
}

func applyMediaFilter(db *gorm.DB, filter MediaFilter) *gorm.DB {
	if title := strings.TrimSpace(filter.Title); title != "" {
		db = db.Where("LOWER(media.title) LIKE ? ESCAPE '\\'", "%"+escapeLike(strings.ToLower(title))+"%")
	}

	if filter.Type != "" {
		db = db.Where("media.type = ?", filter.Type)
	}

	if len(filter.GenreIDs) > 0 {
		db = db.Where(
			"media.id IN (SELECT media_id FROM media_genres WHERE genre_id IN ?)",
			filter.GenreIDs,
		)
	}

	return db
}

func escapeLike(value string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(value)
}

func orderGenres(db *gorm.DB) *gorm.DB {
	return db.Order("genres.name ASC")
}

func orderEpisodes(db *gorm.DB) *gorm.DB {
	return db.Order("episodes.season ASC, episodes.episode_number ASC")
}

func (r *mediaRepository) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*Media, error) {
	log := r.log.Function("GetByID")

	var media Media
	if err := tx.Preload("Genres", orderGenres).First(&media, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NotFound("media", id)
		}
		return nil, log.Err("failed to get media", err, "id", id)
	}

	return &media, nil
}

// GetDetail loads genres and, for tv shows, episodes in broadcast order.
func (r *mediaRepository) GetDetail(ctx context.Context, tx *gorm.DB, id uint) (*Media, error) {
	media, err := r.GetByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	if media.IsTV() {
		err := tx.Where("media_id = ?", media.ID).
			Scopes(orderEpisodes).
			Find(&media.Episodes).Error
		if err != nil {
			return nil, r.log.Function("GetDetail").Err("failed to load episodes", err, "id", id)
		}
	}

	return media, nil
}

func (r *mediaRepository) GetByExternalID(
	ctx context.Context,
	tx *gorm.DB,
	externalID string,
) (*Media, error) {
	log := r.log.Function("GetByExternalID")

	media, err := gorm.G[Media](tx).Where("external_id = ?", externalID).First(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NotFound("media with external id", externalID)
		}
		return nil, log.Err("failed to get media by external id", err, "externalID", externalID)
	}

	return &media, nil
}

// Create inserts the row only; genres are attached with ReplaceGenres.
func (r *mediaRepository) Create(ctx context.Context, tx *gorm.DB, media *Media) error {
	if err := tx.Omit(clause.Associations).Create(media).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return err
		}
		return r.log.Function("Create").Err("failed to create media", err, "title", media.Title)
	}

	return nil
}

func (r *mediaRepository) Update(ctx context.Context, tx *gorm.DB, media *Media) error {
	if err := tx.Omit(clause.Associations).Save(media).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return err
		}
		return r.log.Function("Update").Err("failed to update media", err, "id", media.ID)
	}

	return nil
}

func (r *mediaRepository) ReplaceGenres(
	ctx context.Context,
	tx *gorm.DB,
	media *Media,
	genres []Genre,
) error {
	log := r.log.Function("ReplaceGenres")

	if genres == nil {
		genres = []Genre{}
	}

	if err := tx.Model(media).Association("Genres").Replace(genres); err != nil {
		return log.Err("failed to replace media genres", err, "id", media.ID)
	}

	media.Genres = genres
	return nil
}

// Delete removes the media and everything pointing at it or at its episodes.
// Callers run it inside a transaction.
func (r *mediaRepository) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	log := r.log.Function("Delete")

	episodeIDs := tx.Model(&Episode{}).Select("id").Where("media_id = ?", id)

	dependents := []any{&Favorite{}, &Watchlist{}, &Rating{}, &WatchHistory{}}
	for _, model := range dependents {
		err := tx.Where("media_id = ? OR episode_id IN (?)", id, episodeIDs).Delete(model).Error
		if err != nil {
			return log.Err("failed to delete media dependents", err, "id", id)
		}
	}

	if err := tx.Where("media_id = ?", id).Delete(&Episode{}).Error; err != nil {
		return log.Err("failed to delete media episodes", err, "id", id)
	}

	if err := tx.Exec("DELETE FROM media_genres WHERE media_id = ?", id).Error; err != nil {
		return log.Err("failed to delete media genre links", err, "id", id)
	}

	rowsAffected, err := gorm.G[Media](tx).Where("id = ?", id).Delete(ctx)
	if err != nil {
		return log.Err("failed to delete media", err, "id", id)
	}
	if rowsAffected == 0 {
		return types.NotFound("media", id)
	}

	return nil
}

// Related returns other media of the same type sharing at least one genre.
func (r *mediaRepository) Related(
	ctx context.Context,
	tx *gorm.DB,
	media *Media,
	limit int,
) ([]Media, error) {
	log := r.log.Function("Related")

	var related []Media
	err := tx.Model(&Media{}).
		Where("media.id <> ? AND media.type = ?", media.ID, media.Type).
		Where(
			"media.id IN (SELECT media_id FROM media_genres WHERE genre_id IN (SELECT genre_id FROM media_genres WHERE media_id = ?))",
			media.ID,
		).
		Preload("Genres", orderGenres).
		Order(mediaOrderings[SortNewest]).
		Limit(limit).
		Find(&related).Error
	if err != nil {
		return nil, log.Err("failed to get related media", err, "id", media.ID)
	}

	return related, nil
}

// ListLinked returns provider-linked media, never checked first, then least
// recently checked.
func (r *mediaRepository) ListLinked(ctx context.Context, tx *gorm.DB, limit int) ([]Media, error) {
	log := r.log.Function("ListLinked")

	media, err := gorm.G[Media](tx).
		Where("external_id IS NOT NULL").
		Order("metadata_checked_at IS NOT NULL, metadata_checked_at ASC, id ASC").
		Limit(limit).
		Find(ctx)
	if err != nil {
		return nil, log.Err("failed to list linked media", err, "limit", limit)
	}

	return media, nil
}

var volatileColumns = []string{
	"vote_average",
	"vote_count",
	"status",
	"last_air_date",
	"seasons_count",
	"episodes_count",
	"metadata_hash",
	"updated_at",
}

// UpdateVolatile writes the provider columns that drift over time and leaves
// every curated column as stored.
func (r *mediaRepository) UpdateVolatile(ctx context.Context, tx *gorm.DB, media *Media) error {
	err := tx.Model(media).Select(volatileColumns).Updates(media).Error
	if err != nil {
		return r.log.Function("UpdateVolatile").Err("failed to update media metadata", err, "id", media.ID)
	}

	return nil
}

// MarkChecked stamps the refresh time without touching updated_at.
func (r *mediaRepository) MarkChecked(
	ctx context.Context,
	tx *gorm.DB,
	ids []uint,
	checkedAt time.Time,
) error {
	if len(ids) == 0 {
		return nil
	}

	err := tx.Model(&Media{}).Where("id IN ?", ids).UpdateColumn("metadata_checked_at", checkedAt).Error
	if err != nil {
		return r.log.Function("MarkChecked").Err("failed to mark media checked", err, "count", len(ids))
	}

	return nil
}
