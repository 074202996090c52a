package testutil

import (
	"cinestream/config"
	"cinestream/internal/database"
	"cinestream/internal/models"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var dbCounter atomic.Int64

// NewDB opens an isolated in-memory sqlite database with the schema and
// relation indexes applied. A single connection keeps the shared-cache
// database alive and serializes writers.
func NewDB(t *testing.T) database.DB {
	t.Helper()

	dsn := fmt.Sprintf(
		"file:cinestream_test_%d?mode=memory&cache=shared&_foreign_keys=on",
		dbCounter.Add(1),
	)

	sqlDB, err := gorm.Open(sqlite.Open(dsn), database.GormConfig())
	require.NoError(t, err)

	raw, err := sqlDB.DB()
	require.NoError(t, err)
	raw.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = raw.Close() })

	db := database.NewWithSQL(sqlDB)
	require.NoError(t, db.MigrateModels())
	require.NoError(t, db.CreateIndexes())

	return db
}

// Config returns settings good enough for controllers and handlers under test.
// tmdbURL points the provider client at a fake server; empty leaves it unconfigured.
func Config(tmdbURL string) config.Config {
	cfg := config.Config{
		Environment:         "test",
		ServerPort:          8288,
		JWTSecret:           "test-secret-with-enough-length",
		JWTTTLHours:         1,
		TMDBBaseURL:         tmdbURL,
		TMDBImageBaseURL:    "https://images.test/t/p/original",
		TMDBTimeoutSeconds:  2,
		TMDBCacheTTLMinutes: 0,
		VidsrcBaseURL:       "https://vidsrc.test/embed",
		CorsAllowOrigins:    "*",
	}
	if tmdbURL != "" {
		cfg.TMDBAPIKey = "test-key"
	}
	return cfg
}

func CreateGenre(t *testing.T, db *gorm.DB, name string) models.Genre {
	t.Helper()

	genre := models.Genre{Name: name}
	require.NoError(t, db.Create(&genre).Error)
	return genre
}

func CreateMovie(t *testing.T, db *gorm.DB, title string, genres ...models.Genre) models.Media {
	t.Helper()

	duration := 120
	year := 2020
	media := models.Media{
		Title:    title,
		Type:     models.MediaTypeMovie,
		Duration: &duration,
		Year:     &year,
		Rating:   decimal.NewFromFloat(7.5),
		Genres:   genres,
	}
	require.NoError(t, db.Create(&media).Error)
	return media
}

func CreateShow(t *testing.T, db *gorm.DB, title string, genres ...models.Genre) models.Media {
	t.Helper()

	seasons := 1
	media := models.Media{
		Title:        title,
		Type:         models.MediaTypeTV,
		SeasonsCount: &seasons,
		Rating:       decimal.NewFromFloat(8),
		Genres:       genres,
	}
	require.NoError(t, db.Create(&media).Error)
	return media
}

func CreateEpisode(t *testing.T, db *gorm.DB, mediaID uint, season, number int) models.Episode {
	t.Helper()

	episode := models.Episode{
		MediaID:       mediaID,
		Season:        season,
		EpisodeNumber: number,
		Duration:      45,
	}
	require.NoError(t, db.Create(&episode).Error)
	return episode
}

func CreateUser(t *testing.T, db *gorm.DB, email string, isAdmin bool) models.User {
	t.Helper()

	user := models.User{Name: strings.Split(email, "@")[0], Email: email, IsAdmin: isAdmin}
	require.NoError(t, user.SetPassword("password123"))
	require.NoError(t, db.Create(&user).Error)
	return user
}
