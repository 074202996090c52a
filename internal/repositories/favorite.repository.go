package repositories

import (
	. "cinestream/internal/models"
	"context"

	logger "github.com/Bparsons0904/goLogger"
	"gorm.io/gorm"
)

type FavoriteRepository interface {
	Toggle(ctx context.Context, tx *gorm.DB, userID uint, target Target) (ToggleStatus, error)
	List(ctx context.Context, tx *gorm.DB, userID uint) ([]Favorite, error)
	Exists(ctx context.Context, tx *gorm.DB, userID uint, target Target) (bool, error)
	DeleteByID(ctx context.Context, tx *gorm.DB, userID, id uint) error
}

type favoriteRepository struct {
	log logger.Logger
}

func NewFavoriteRepository() FavoriteRepository {
	return &favoriteRepository{
		log: logger.New("favoriteRepository"),
	}
}

func (r *favoriteRepository) Toggle(
	ctx context.Context,
	tx *gorm.DB,
	userID uint,
	target Target,
) (ToggleStatus, error) {
	status, err := toggleTarget(tx, userID, target, NewFavorite(userID, target))
	if err != nil {
		return "", r.log.Function("Toggle").
			Err("failed to toggle favorite", err, "userID", userID, "target", target.String())
	}

	return status, nil
}

func (r *favoriteRepository) List(ctx context.Context, tx *gorm.DB, userID uint) ([]Favorite, error) {
	favorites, err := listForUser[Favorite](tx, userID)
	if err != nil {
		return nil, r.log.Function("List").Err("failed to list favorites", err, "userID", userID)
	}

	return favorites, nil
}

func (r *favoriteRepository) Exists(
	ctx context.Context,
	tx *gorm.DB,
	userID uint,
	target Target,
) (bool, error) {
	exists, err := targetExists[Favorite](tx, userID, target)
	if err != nil {
		return false, r.log.Function("Exists").
			Err("failed to check favorite", err, "userID", userID, "target", target.String())
	}

	return exists, nil
}

func (r *favoriteRepository) DeleteByID(ctx context.Context, tx *gorm.DB, userID, id uint) error {
	return deleteOwned[Favorite](tx, "favorite", userID, id)
}
