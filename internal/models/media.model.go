package models

import (
	"cinestream/internal/utils"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type MediaType string

const (
	MediaTypeMovie MediaType = "movie"
	MediaTypeTV    MediaType = "tv"
)

func (t MediaType) Valid() bool {
	return t == MediaTypeMovie || t == MediaTypeTV
}

// Label is the human readable name used in error messages.
func (t MediaType) Label() string {
	if t == MediaTypeTV {
		return "tv show"
	}
	return string(t)
}

var (
	MinRating = decimal.Zero
	MaxRating = decimal.NewFromInt(10)
)

type Media struct {
	BaseModel
	Title               string                      `gorm:"type:text;not null;index"       json:"title"`
	Description         string                      `gorm:"type:text"                      json:"description"`
	Year                *int                        `gorm:"type:int"                       json:"year"`
	Duration            *int                        `gorm:"type:int"                       json:"duration,omitempty"`
	Type                MediaType                   `gorm:"type:text;not null;index"       json:"type"`
	PosterURL           string                      `gorm:"type:text"                      json:"posterUrl"`
	BackdropURL         string                      `gorm:"type:text"                      json:"backdropUrl"`
	TrailerURL          string                      `gorm:"type:text"                      json:"trailerUrl"`
	Rating              decimal.Decimal             `gorm:"type:numeric(3,1);not null"     json:"rating"`
	ExternalID          *string                     `gorm:"type:text;uniqueIndex"          json:"externalId"`
	FirstAirDate        *time.Time                  `gorm:"type:date"                      json:"firstAirDate,omitempty"`
	LastAirDate         *time.Time                  `gorm:"type:date"                      json:"lastAirDate,omitempty"`
	Status              *string                     `gorm:"type:text"                      json:"status,omitempty"`
	SeasonsCount        *int                        `gorm:"type:int"                       json:"seasonsCount,omitempty"`
	EpisodesCount       *int                        `gorm:"type:int"                       json:"episodesCount,omitempty"`
	VoteAverage         float64                     `gorm:"not null;default:0"             json:"voteAverage"`
	VoteCount           int                         `gorm:"not null;default:0"             json:"voteCount"`
	OriginalLanguage    string                      `gorm:"type:text"                      json:"originalLanguage"`
	ProductionCompanies datatypes.JSONSlice[string] `                                      json:"productionCompanies"`
	ProductionCountries datatypes.JSONSlice[string] `                                      json:"productionCountries"`
	Adult               bool                        `gorm:"not null;default:false"         json:"adult"`
	MetadataHash        string                      `gorm:"type:text"                      json:"-"`
	MetadataCheckedAt   *time.Time                  `gorm:"index"                          json:"-"`
	Genres              []Genre                     `gorm:"many2many:media_genres;constraint:OnDelete:CASCADE" json:"genres,omitempty"`
	Episodes            []Episode                   `gorm:"foreignKey:MediaID;constraint:OnDelete:CASCADE"     json:"episodes,omitempty"`
}

func (Media) TableName() string {
	return "media"
}

func (m *Media) IsMovie() bool {
	return m.Type == MediaTypeMovie
}

func (m *Media) IsTV() bool {
	return m.Type == MediaTypeTV
}

// Normalize drops the fields the media type does not own. A movie never carries
// air dates, status or season/episode counts; a tv show never carries a runtime.
func (m *Media) Normalize() {
	m.Title, _ = utils.CleanUTF8(strings.TrimSpace(m.Title))

	switch m.Type {
	case MediaTypeMovie:
		m.FirstAirDate = nil
		m.LastAirDate = nil
		m.Status = nil
		m.SeasonsCount = nil
		m.EpisodesCount = nil
	case MediaTypeTV:
		m.Duration = nil
	}

	if m.ExternalID != nil && strings.TrimSpace(*m.ExternalID) == "" {
		m.ExternalID = nil
	}

	m.Rating = m.Rating.Round(1)
}

func (m *Media) BeforeSave(tx *gorm.DB) error {
	m.Normalize()
	return nil
}

func (m *Media) GenreIDs() []uint {
	ids := make([]uint, 0, len(m.Genres))
	for _, genre := range m.Genres {
		ids = append(ids, genre.ID)
	}
	return ids
}
