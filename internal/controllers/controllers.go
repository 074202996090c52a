package controllers

import (
	"cinestream/config"
	"cinestream/internal/database"
	"cinestream/internal/repositories"
	"cinestream/internal/services"

	authController "cinestream/internal/controllers/auth"
	catalogController "cinestream/internal/controllers/catalog"
	episodeController "cinestream/internal/controllers/episodes"
	genreController "cinestream/internal/controllers/genres"
	metadataController "cinestream/internal/controllers/metadata"
	relationController "cinestream/internal/controllers/relations"
	userController "cinestream/internal/controllers/users"
)

type Controllers struct {
	Catalog  catalogController.CatalogControllerInterface
	Genre    genreController.GenreControllerInterface
	Episode  episodeController.EpisodeControllerInterface
	User     userController.UserControllerInterface
	Auth     authController.AuthControllerInterface
	Relation relationController.RelationControllerInterface
	Metadata metadataController.MetadataControllerInterface
}

func New(
	services services.Service,
	repos repositories.Repository,
	config config.Config,
	db database.DB,
) Controllers {
	return Controllers{
		Catalog:  catalogController.New(repos, services, config, db),
		Genre:    genreController.New(repos, services, config, db),
		Episode:  episodeController.New(repos, services, config, db),
		User:     userController.New(repos, services, config, db),
		Auth:     authController.New(repos, services, config, db),
		Relation: relationController.New(repos, services, config, db),
		Metadata: metadataController.New(repos, services, config, db),
	}
}
