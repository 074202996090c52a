package models

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

type TargetKind string

const (
	TargetMedia   TargetKind = "media"
	TargetEpisode TargetKind = "episode"
)

var (
	ErrTargetMissing   = errors.New("one of mediaId or episodeId is required")
	ErrTargetAmbiguous = errors.New("only one of mediaId or episodeId may be set")
)

// Target is the object of a favorite, watchlist entry, rating or history row:
// either a Media or an Episode, never both. The nullable column pair only
// exists at the storage boundary.
type Target struct {
	kind TargetKind
	id   uint
}

func MediaTarget(id uint) Target {
	return Target{kind: TargetMedia, id: id}
}

func EpisodeTarget(id uint) Target {
	return Target{kind: TargetEpisode, id: id}
}

// NewTarget builds a Target from the nullable pair used by request bodies.
func NewTarget(mediaID, episodeID *uint) (Target, error) {
	hasMedia := mediaID != nil && *mediaID != 0
	hasEpisode := episodeID != nil && *episodeID != 0

	switch {
	case hasMedia && hasEpisode:
		return Target{}, ErrTargetAmbiguous
	case hasMedia:
		return MediaTarget(*mediaID), nil
	case hasEpisode:
		return EpisodeTarget(*episodeID), nil
	default:
		return Target{}, ErrTargetMissing
	}
}

func (t Target) Kind() TargetKind { return t.kind }
func (t Target) ID() uint         { return t.id }
func (t Target) IsZero() bool     { return t.id == 0 }
func (t Target) IsMedia() bool    { return t.kind == TargetMedia }
func (t Target) IsEpisode() bool  { return t.kind == TargetEpisode }

func (t Target) String() string {
	return fmt.Sprintf("%s:%d", t.kind, t.id)
}

// Columns returns the (media_id, episode_id) pair for storage.
func (t Target) Columns() (mediaID *uint, episodeID *uint) {
	id := t.id
	if t.kind == TargetEpisode {
		return nil, &id
	}
	return &id, nil
}

// Scope restricts a query on a target-bearing table to rows pointing at t.
func (t Target) Scope(db *gorm.DB) *gorm.DB {
	if t.kind == TargetEpisode {
		return db.Where("episode_id = ? AND media_id IS NULL", t.id)
	}
	return db.Where("media_id = ? AND episode_id IS NULL", t.id)
}

func targetFromColumns(mediaID, episodeID *uint) Target {
	target, _ := NewTarget(mediaID, episodeID)
	return target
}
