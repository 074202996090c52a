package repositories

import (
	. "cinestream/internal/models"
	"cinestream/internal/types"
	"cinestream/internal/utils"
	"context"
	"errors"
	"strings"

	logger "github.com/Bparsons0904/goLogger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GenreRepository interface {
	List(ctx context.Context, tx *gorm.DB) ([]Genre, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*Genre, error)
	GetBySlug(ctx context.Context, tx *gorm.DB, slug string) (*Genre, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uint) ([]Genre, error)
	Create(ctx context.Context, tx *gorm.DB, genre *Genre) error
	Update(ctx context.Context, tx *gorm.DB, genre *Genre) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
	FindOrCreateByNames(ctx context.Context, tx *gorm.DB, names []string) ([]Genre, error)
}

type genreRepository struct {
	log logger.Logger
}

func NewGenreRepository() GenreRepository {
	return &genreRepository{
		log: logger.New("genreRepository"),
	}
}

func (r *genreRepository) List(ctx context.Context, tx *gorm.DB) ([]Genre, error) {
	log := r.log.Function("List")

	var genres []Genre
	err := tx.Model(&Genre{}).
		Select("genres.*, (SELECT COUNT(*) FROM media_genres WHERE media_genres.genre_id = genres.id) AS media_count").
		Order("genres.name ASC").
		Find(&genres).Error
	if err != nil {
		return nil, log.Err("failed to list genres", err)
	}

	return genres, nil
}

func (r *genreRepository) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*Genre, error) {
	log := r.log.Function("GetByID")

	genre, err := gorm.G[Genre](tx).Where("id = ?", id).First(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NotFound("genre", id)
		}
		return nil, log.Err("failed to get genre", err, "id", id)
	}

	return &genre, nil
}

func (r *genreRepository) GetBySlug(ctx context.Context, tx *gorm.DB, slug string) (*Genre, error) {
	log := r.log.Function("GetBySlug")

	genre, err := gorm.G[Genre](tx).Where("slug = ?", slug).First(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NotFound("genre", slug)
		}
		return nil, log.Err("failed to get genre by slug", err, "slug", slug)
	}

	return &genre, nil
}

// GetByIDs fails with a validation error naming genreIds when any id is unknown.
func (r *genreRepository) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uint) ([]Genre, error) {
	log := r.log.Function("GetByIDs")

	unique := uniqueIDs(ids)
	if len(unique) == 0 {
		return []Genre{}, nil
	}

	genres, err := gorm.G[Genre](tx).Where("id IN ?", unique).Order("name ASC").Find(ctx)
	if err != nil {
		return nil, log.Err("failed to get genres by ids", err, "ids", unique)
	}

	if len(genres) != len(unique) {
		return nil, types.NewValidationError("genreIds", "contains an unknown genre")
	}

	return genres, nil
}

func (r *genreRepository) Create(ctx context.Context, tx *gorm.DB, genre *Genre) error {
	if err := tx.Create(genre).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return err
		}
		return r.log.Function("Create").Err("failed to create genre", err, "name", genre.Name)
	}

	return nil
}

func (r *genreRepository) Update(ctx context.Context, tx *gorm.DB, genre *Genre) error {
	if err := tx.Save(genre).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return err
		}
		return r.log.Function("Update").Err("failed to update genre", err, "id", genre.ID)
	}

	return nil
}

// Delete unlinks the genre from every media before removing it.
func (r *genreRepository) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	log := r.log.Function("Delete")

	if err := tx.Exec("DELETE FROM media_genres WHERE genre_id = ?", id).Error; err != nil {
		return log.Err("failed to unlink genre", err, "id", id)
	}

	rowsAffected, err := gorm.G[Genre](tx).Where("id = ?", id).Delete(ctx)
	if err != nil {
		return log.Err("failed to delete genre", err, "id", id)
	}
	if rowsAffected == 0 {
		return types.NotFound("genre", id)
	}

	return nil
}

// FindOrCreateByNames resolves provider genre names by slug, creating the
// missing ones. Names that slug to nothing are skipped.
func (r *genreRepository) FindOrCreateByNames(
	ctx context.Context,
	tx *gorm.DB,
	names []string,
) ([]Genre, error) {
	log := r.log.Function("FindOrCreateByNames")

	genres := make([]Genre, 0, len(names))
	seen := make(map[string]bool, len(names))

	for _, name := range names {
		name = strings.TrimSpace(name)
		slug := utils.Slugify(name)
		if slug == "" || seen[slug] {
			continue
		}
		seen[slug] = true

		genre := Genre{Name: name}
		err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&genre).Error
		if err != nil {
			return nil, log.Err("failed to create genre", err, "name", name)
		}

		var stored Genre
		if err := tx.Where("slug = ?", slug).First(&stored).Error; err != nil {
			return nil, log.Err("failed to load genre", err, "slug", slug)
		}

		genres = append(genres, stored)
	}

	return genres, nil
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	unique := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id == 0 || seen[id] {
			continue
		}
		seen[id] = true
		unique = append(unique, id)
	}
	return unique
}
