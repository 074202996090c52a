package repositories

import (
	. "cinestream/internal/models"
	"cinestream/internal/types"
	"context"
	"errors"
	"math"

	logger "github.com/Bparsons0904/goLogger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RatingSummary struct {
	Average float64 `json:"average"`
	Count   int64   `json:"count"`
}

type RatingRepository interface {
	Upsert(ctx context.Context, tx *gorm.DB, userID uint, target Target, value int) (*Rating, error)
	Remove(ctx context.Context, tx *gorm.DB, userID uint, target Target) error
	Get(ctx context.Context, tx *gorm.DB, userID uint, target Target) (*Rating, error)
	List(ctx context.Context, tx *gorm.DB, userID uint) ([]Rating, error)
	Summary(ctx context.Context, tx *gorm.DB, target Target) (RatingSummary, error)
}

type ratingRepository struct {
	log logger.Logger
}

func NewRatingRepository() RatingRepository {
	return &ratingRepository{
		log: logger.New("ratingRepository"),
	}
}

// Upsert keeps a single rating per user and target. An insert that loses a
// race against a concurrent one falls back to updating the winner's row.
func (r *ratingRepository) Upsert(
	ctx context.Context,
	tx *gorm.DB,
	userID uint,
	target Target,
	value int,
) (*Rating, error) {
	log := r.log.Function("Upsert")

	existing, err := r.Get(ctx, tx, userID, target)
	switch {
	case err == nil:
		return r.update(tx, existing, value)
	case !errors.Is(err, types.ErrNotFound):
		return nil, err
	}

	mediaID, episodeID := target.Columns()
	rating := &Rating{UserID: userID, MediaID: mediaID, EpisodeID: episodeID, Rating: value}

	result := tx.Omit(clause.Associations).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(rating)
	if result.Error != nil {
		return nil, log.Err("failed to create rating", result.Error, "userID", userID, "target", target.String())
	}
	if result.RowsAffected > 0 {
		return rating, nil
	}

	existing, err = r.Get(ctx, tx, userID, target)
	if err != nil {
		return nil, err
	}

	return r.update(tx, existing, value)
}

func (r *ratingRepository) update(tx *gorm.DB, rating *Rating, value int) (*Rating, error) {
	if err := tx.Model(rating).Update("rating", value).Error; err != nil {
		return nil, r.log.Function("update").Err("failed to update rating", err, "id", rating.ID)
	}

	rating.Rating = value
	return rating, nil
}

func (r *ratingRepository) Remove(ctx context.Context, tx *gorm.DB, userID uint, target Target) error {
	result := tx.Where("user_id = ?", userID).Scopes(target.Scope).Delete(&Rating{})
	if result.Error != nil {
		return r.log.Function("Remove").
			Err("failed to remove rating", result.Error, "userID", userID, "target", target.String())
	}
	if result.RowsAffected == 0 {
		return types.NotFound("rating for", target.String())
	}

	return nil
}

func (r *ratingRepository) Get(
	ctx context.Context,
	tx *gorm.DB,
	userID uint,
	target Target,
) (*Rating, error) {
	var rating Rating
	err := tx.Where("user_id = ?", userID).Scopes(target.Scope).First(&rating).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NotFound("rating for", target.String())
		}
		return nil, r.log.Function("Get").
			Err("failed to get rating", err, "userID", userID, "target", target.String())
	}

	return &rating, nil
}

func (r *ratingRepository) List(ctx context.Context, tx *gorm.DB, userID uint) ([]Rating, error) {
	ratings, err := listForUser[Rating](tx, userID)
	if err != nil {
		return nil, r.log.Function("List").Err("failed to list ratings", err, "userID", userID)
	}

	return ratings, nil
}

// Summary averages user ratings of the target to one decimal place.
func (r *ratingRepository) Summary(
	ctx context.Context,
	tx *gorm.DB,
	target Target,
) (RatingSummary, error) {
	var summary RatingSummary
	err := tx.Model(&Rating{}).
		Select("COALESCE(AVG(rating), 0) AS average, COUNT(*) AS count").
		Scopes(target.Scope).
		Scan(&summary).Error
	if err != nil {
		return RatingSummary{}, r.log.Function("Summary").
			Err("failed to summarize ratings", err, "target", target.String())
	}

	summary.Average = math.Round(summary.Average*10) / 10
	return summary, nil
}
