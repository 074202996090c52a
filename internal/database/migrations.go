package database

import (
	"cinestream/internal/models"

	logger "github.com/Bparsons0904/goLogger"
)

// MigrateModels runs GORM AutoMigrate for all models
func (db *DB) MigrateModels() error {
	log := logger.New("database").Function("MigrateModels")
	log.Info("Starting database migration")

	// Order matters: referenced tables first.
	modelsToMigrate := []any{
		&models.User{},
		&models.Genre{},
		&models.Media{},
		&models.Episode{},
		&models.Favorite{},
		&models.Watchlist{},
		&models.Rating{},
		&models.WatchHistory{},
	}

	for _, model := range modelsToMigrate {
		if err := db.SQL.AutoMigrate(model); err != nil {
			return log.Err("Failed to migrate model", err, "model", model)
		}
	}

	log.Info("Database migration completed successfully")
	return nil
}

// targetTables carry the (media_id, episode_id) pair where exactly one side is set.
var targetTables = []string{"favorites", "watchlists", "ratings"}

// RelationIndexes returns the partial unique indexes that give every user at
// most one row per target. A plain composite index would not do since NULLs
// compare distinct.
func RelationIndexes() []string {
	indexes := make([]string, 0, len(targetTables)*2+2)
	for _, table := range targetTables {
		indexes = append(indexes,
			"CREATE UNIQUE INDEX IF NOT EXISTS idx_"+table+"_user_media ON "+table+
				"(user_id, media_id) WHERE episode_id IS NULL",
			"CREATE UNIQUE INDEX IF NOT EXISTS idx_"+table+"_user_episode ON "+table+
				"(user_id, episode_id) WHERE media_id IS NULL",
		)
	}

	return append(indexes,
		"CREATE INDEX IF NOT EXISTS idx_watch_history_user_media_watched ON watch_history(user_id, media_id, watched_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_media_created_at_id ON media(created_at DESC, id DESC)",
	)
}

// CreateIndexes creates additional indexes that GORM doesn't create automatically
func (db *DB) CreateIndexes() error {
	log := logger.New("database").Function("CreateIndexes")
	log.Info("Creating additional database indexes")

	for _, indexSQL := range RelationIndexes() {
		if err := db.SQL.Exec(indexSQL).Error; err != nil {
			return log.Err("Failed to create index", err, "sql", indexSQL)
		}
	}

	log.Info("Additional database indexes created")
	return nil
}
