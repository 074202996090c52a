package repositories

import (
	"cinestream/internal/database"
)

type Repository struct {
	Media     MediaRepository
	Genre     GenreRepository
	Episode   EpisodeRepository
	User      UserRepository
	Favorite  FavoriteRepository
	Watchlist WatchlistRepository
	Rating    RatingRepository
	History   HistoryRepository
}

func New(db database.DB) Repository {
	return Repository{
		Media:     NewMediaRepository(),
		Genre:     NewGenreRepository(),
		Episode:   NewEpisodeRepository(),
		User:      NewUserRepository(db.Cache.General),
		Favorite:  NewFavoriteRepository(),
		Watchlist: NewWatchlistRepository(),
		Rating:    NewRatingRepository(),
		History:   NewHistoryRepository(),
	}
}
