package repositories

import (
	. "cinestream/internal/models"
	"context"

	logger "github.com/Bparsons0904/goLogger"
	"gorm.io/gorm"
)

type WatchlistRepository interface {
	Toggle(ctx context.Context, tx *gorm.DB, userID uint, target Target) (ToggleStatus, error)
	List(ctx context.Context, tx *gorm.DB, userID uint) ([]Watchlist, error)
	Exists(ctx context.Context, tx *gorm.DB, userID uint, target Target) (bool, error)
	DeleteByID(ctx context.Context, tx *gorm.DB, userID, id uint) error
}

type watchlistRepository struct {
	log logger.Logger
}

func NewWatchlistRepository() WatchlistRepository {
	return &watchlistRepository{
		log: logger.New("watchlistRepository"),
	}
}

func (r *watchlistRepository) Toggle(
	ctx context.Context,
	tx *gorm.DB,
	userID uint,
	target Target,
) (ToggleStatus, error) {
	status, err := toggleTarget(tx, userID, target, NewWatchlist(userID, target))
	if err != nil {
		return "", r.log.Function("Toggle").
			Err("failed to toggle watchlist", err, "userID", userID, "target", target.String())
	}

	return status, nil
}

func (r *watchlistRepository) List(ctx context.Context, tx *gorm.DB, userID uint) ([]Watchlist, error) {
	entries, err := listForUser[Watchlist](tx, userID)
	if err != nil {
		return nil, r.log.Function("List").Err("failed to list watchlist", err, "userID", userID)
	}

	return entries, nil
}

func (r *watchlistRepository) Exists(
	ctx context.Context,
	tx *gorm.DB,
	userID uint,
	target Target,
) (bool, error) {
	exists, err := targetExists[Watchlist](tx, userID, target)
	if err != nil {
		return false, r.log.Function("Exists").
			Err("failed to check watchlist", err, "userID", userID, "target", target.String())
	}

	return exists, nil
}

func (r *watchlistRepository) DeleteByID(ctx context.Context, tx *gorm.DB, userID, id uint) error {
	return deleteOwned[Watchlist](tx, "watchlist entry", userID, id)
}
