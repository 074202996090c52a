package models

import (
	"time"

	"gorm.io/gorm"
)

const completedRatio = 0.95

type Favorite struct {
	BaseModel
	UserID    uint     `gorm:"not null;index"     json:"userId"`
	MediaID   *uint    `gorm:"index"              json:"mediaId"`
	Media     *Media   `gorm:"foreignKey:MediaID"   json:"media,omitempty"`
	EpisodeID *uint    `gorm:"index"              json:"episodeId"`
	Episode   *Episode `gorm:"foreignKey:EpisodeID" json:"episode,omitempty"`
}

func (f *Favorite) Target() Target {
	return targetFromColumns(f.MediaID, f.EpisodeID)
}

func NewFavorite(userID uint, target Target) *Favorite {
	mediaID, episodeID := target.Columns()
	return &Favorite{UserID: userID, MediaID: mediaID, EpisodeID: episodeID}
}

type Watchlist struct {
	BaseModel
	UserID    uint     `gorm:"not null;index"     json:"userId"`
	MediaID   *uint    `gorm:"index"              json:"mediaId"`
	Media     *Media   `gorm:"foreignKey:MediaID"   json:"media,omitempty"`
	EpisodeID *uint    `gorm:"index"              json:"episodeId"`
	Episode   *Episode `gorm:"foreignKey:EpisodeID" json:"episode,omitempty"`
}

func (w *Watchlist) Target() Target {
	return targetFromColumns(w.MediaID, w.EpisodeID)
}

func NewWatchlist(userID uint, target Target) *Watchlist {
	mediaID, episodeID := target.Columns()
	return &Watchlist{UserID: userID, MediaID: mediaID, EpisodeID: episodeID}
}

type Rating struct {
	BaseModel
	UserID    uint     `gorm:"not null;index"     json:"userId"`
	MediaID   *uint    `gorm:"index"              json:"mediaId"`
	Media     *Media   `gorm:"foreignKey:MediaID"   json:"media,omitempty"`
	EpisodeID *uint    `gorm:"index"              json:"episodeId"`
	Episode   *Episode `gorm:"foreignKey:EpisodeID" json:"episode,omitempty"`
	Rating    int      `gorm:"not null"           json:"rating"`
}

func (r *Rating) Target() Target {
	return targetFromColumns(r.MediaID, r.EpisodeID)
}

// WatchHistory is an append-only progress log. MediaID is always set; for an
// episode it is the owning show.
type WatchHistory struct {
	BaseModel
	UserID    uint      `gorm:"not null;index"       json:"userId"`
	MediaID   uint      `gorm:"not null;index"       json:"mediaId"`
	Media     *Media    `gorm:"foreignKey:MediaID"   json:"media,omitempty"`
	EpisodeID *uint     `gorm:"index"                json:"episodeId"`
	Episode   *Episode  `gorm:"foreignKey:EpisodeID" json:"episode,omitempty"`
	Progress  int       `gorm:"not null;default:0"   json:"progress"`
	Duration  int       `gorm:"not null;default:0"   json:"duration"`
	WatchedAt time.Time `gorm:"not null;index"       json:"watchedAt"`
	Completed bool      `gorm:"-"                    json:"completed"`
}

func (WatchHistory) TableName() string {
	return "watch_history"
}

func (w *WatchHistory) Target() Target {
	if w.EpisodeID != nil {
		return EpisodeTarget(*w.EpisodeID)
	}
	return MediaTarget(w.MediaID)
}

// IsCompleted infers completion from progress; it is never stored.
func (w *WatchHistory) IsCompleted() bool {
	if w.Duration <= 0 {
		return false
	}
	return float64(w.Progress) >= float64(w.Duration)*completedRatio
}

func (w *WatchHistory) BeforeSave(tx *gorm.DB) error {
	if w.WatchedAt.IsZero() {
		w.WatchedAt = time.Now().UTC()
	}
	w.Completed = w.IsCompleted()
	return nil
}

func (w *WatchHistory) AfterFind(tx *gorm.DB) error {
	w.Completed = w.IsCompleted()
	return nil
}
