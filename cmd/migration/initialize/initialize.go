package initialize

import (
	"cinestream/config"
	"cinestream/internal/database"
	. "cinestream/internal/models"

	logger "github.com/Bparsons0904/goLogger"
	"gorm.io/gorm"
)

// DefaultGenres are created on every migration so the catalog never starts empty.
var DefaultGenres = []string{
	"Action",
	"Adventure",
	"Animation",
	"Comedy",
	"Crime",
	"Documentary",
	"Drama",
	"Family",
	"Fantasy",
	"History",
	"Horror",
	"Music",
	"Mystery",
	"Romance",
	"Science Fiction",
	"Thriller",
	"War",
	"Western",
}

func InitializeTables(db database.DB, config config.Config, log logger.Logger) error {
	log = log.Function("InitializeTables")
	log.Info("Initializing essential production data")

	if err := db.CreateIndexes(); err != nil {
		return log.Err("failed to create indexes", err)
	}

	if err := initializeGenres(db.SQL, log); err != nil {
		return log.Err("failed to initialize genres", err)
	}

	log.Info("Table initialization complete")
	return nil
}

func initializeGenres(db *gorm.DB, log logger.Logger) error {
	log.Info("Initializing genre reference data")

	for _, name := range DefaultGenres {
		var existing Genre
		if err := db.First(&existing, "name = ?", name).Error; err == nil {
			log.Debug("Genre already exists", "name", name)
			continue
		}

		genre := Genre{Name: name}
		log.Info("Initializing genre", "name", name)
		if err := db.Create(&genre).Error; err != nil {
			return log.Err("failed to create genre", err, "name", name)
		}
	}

	log.Info("Genre reference data initialized", "count", len(DefaultGenres))
	return nil
}
