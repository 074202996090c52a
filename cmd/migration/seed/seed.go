package seed

import (
	"cinestream/config"
	. "cinestream/internal/models"
	"time"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const seedPassword = "password"

func intPtr(i int) *int {
	return &i
}

func stringPtr(s string) *string {
	return &s
}

func datePtr(year int, month time.Month, day int) *time.Time {
	date := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &date
}

type seedMedia struct {
	media    Media
	genres   []string
	episodes []Episode
}

func Seed(db *gorm.DB, config config.Config, log logger.Logger) error {
	log = log.Function("seed")
	log.Info("Seeding development data")

	if err := seedUsers(db, log); err != nil {
		return err
	}

	return seedCatalog(db, log)
}

func seedUsers(db *gorm.DB, log logger.Logger) error {
	users := []User{
		{Name: "Administrator", Email: "admin@example.com", IsAdmin: true},
		{Name: "Test User", Email: "test@example.com"},
		{Name: "Ada Lovelace", Email: "ada.lovelace@example.com"},
	}

	for _, user := range users {
		var existingUser User
		if err := db.First(&existingUser, "email = ?", user.Email).Error; err == nil {
			log.Info("User already exists", "email", user.Email)
			continue
		}

		if err := user.SetPassword(seedPassword); err != nil {
			return log.Err("failed to hash password", err, "email", user.Email)
		}

		log.Info("Seeding user", "email", user.Email, "isAdmin", user.IsAdmin)
		if err := db.Create(&user).Error; err != nil {
			return log.Err("failed to create user", err, "email", user.Email)
		}
	}

	return nil
}

func seedCatalog(db *gorm.DB, log logger.Logger) error {
	catalog := []seedMedia{
		{
			media: Media{
				Title:       "The Matrix",
				Description: "A hacker learns the world he knows is a simulation.",
				Year:        intPtr(1999),
				Duration:    intPtr(136),
				Type:        MediaTypeMovie,
				Rating:      decimal.NewFromFloat(8.7),
				ExternalID:  stringPtr("603"),
			},
			genres: []string{"Action", "Science Fiction"},
		},
		{
			media: Media{
				Title:       "Spirited Away",
				Description: "A girl wanders into a world of spirits.",
				Year:        intPtr(2001),
				Duration:    intPtr(125),
				Type:        MediaTypeMovie,
				Rating:      decimal.NewFromFloat(8.5),
				ExternalID:  stringPtr("129"),
			},
			genres: []string{"Animation", "Family", "Fantasy"},
		},
		{
			media: Media{
				Title:        "Game of Thrones",
				Description:  "Noble families fight for the Iron Throne.",
				Year:         intPtr(2011),
				Type:         MediaTypeTV,
				Rating:       decimal.NewFromFloat(8.4),
				ExternalID:   stringPtr("1399"),
				FirstAirDate: datePtr(2011, time.April, 17),
				LastAirDate:  datePtr(2019, time.May, 19),
				Status:       stringPtr("Ended"),
				SeasonsCount: intPtr(8),
			},
			genres: []string{"Drama", "Fantasy", "Adventure"},
			episodes: []Episode{
				{Season: 1, EpisodeNumber: 1, Title: "Winter Is Coming", Duration: 62},
				{Season: 1, EpisodeNumber: 2, Title: "The Kingsroad", Duration: 56},
			},
		},
	}

	for _, entry := range catalog {
		var existing Media
		if err := db.First(&existing, "title = ? AND type = ?", entry.media.Title, entry.media.Type).Error; err == nil {
			log.Info("Media already exists", "title", entry.media.Title)
			continue
		}

		var genres []Genre
		if err := db.Where("name IN ?", entry.genres).Find(&genres).Error; err != nil {
			return log.Err("failed to load genres", err, "title", entry.media.Title)
		}

		media := entry.media
		media.Genres = genres
		media.Episodes = entry.episodes
		if media.IsTV() {
			media.EpisodesCount = intPtr(len(entry.episodes))
		}

		log.Info("Seeding media", "title", media.Title, "type", media.Type)
		if err := db.Create(&media).Error; err != nil {
			return log.Err("failed to create media", err, "title", media.Title)
		}
	}

	return nil
}
