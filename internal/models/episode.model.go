package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

type Episode struct {
	BaseModel
	MediaID       uint       `gorm:"not null;uniqueIndex:idx_episodes_media_season_number,priority:1" json:"mediaId"`
	Media         *Media     `gorm:"foreignKey:MediaID"                                               json:"media,omitempty"`
	Season        int        `gorm:"not null;uniqueIndex:idx_episodes_media_season_number,priority:2" json:"season"`
	EpisodeNumber int        `gorm:"not null;uniqueIndex:idx_episodes_media_season_number,priority:3" json:"episodeNumber"`
	Title         string     `gorm:"type:text;not null"                                               json:"title"`
	Description   string     `gorm:"type:text"                                                        json:"description"`
	Duration      int        `gorm:"not null;default:0"                                               json:"duration"`
	VideoURL      string     `gorm:"type:text"                                                        json:"videoUrl"`
	StillURL      string     `gorm:"type:text"                                                        json:"stillUrl"`
	AirDate       *time.Time `gorm:"type:date"                                                        json:"airDate,omitempty"`
}

func (e *Episode) BeforeSave(tx *gorm.DB) error {
	if e.Title == "" {
		e.Title = e.Code()
	}
	return nil
}

// Code renders the conventional S01E02 label.
func (e *Episode) Code() string {
	return fmt.Sprintf("S%02dE%02d", e.Season, e.EpisodeNumber)
}
