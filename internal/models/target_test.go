package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uintPtr(i uint) *uint { return &i }

func TestNewTarget(t *testing.T) {
	tests := []struct {
		name      string
		mediaID   *uint
		episodeID *uint
		expected  Target
		err       error
	}{
		{"media only", uintPtr(3), nil, MediaTarget(3), nil},
		{"episode only", nil, uintPtr(9), EpisodeTarget(9), nil},
		{"zero media treated as missing", uintPtr(0), uintPtr(9), EpisodeTarget(9), nil},
		{"neither", nil, nil, Target{}, ErrTargetMissing},
		{"both", uintPtr(3), uintPtr(9), Target{}, ErrTargetAmbiguous},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target, err := NewTarget(tt.mediaID, tt.episodeID)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				assert.True(t, target.IsZero())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, target)
		})
	}
}

func TestTarget_Columns(t *testing.T) {
	mediaID, episodeID := MediaTarget(5).Columns()
	require.NotNil(t, mediaID)
	assert.Equal(t, uint(5), *mediaID)
	assert.Nil(t, episodeID)

	mediaID, episodeID = EpisodeTarget(8).Columns()
	assert.Nil(t, mediaID)
	require.NotNil(t, episodeID)
	assert.Equal(t, uint(8), *episodeID)
}

func TestRelationTargets(t *testing.T) {
	favorite := NewFavorite(1, EpisodeTarget(4))
	assert.Equal(t, EpisodeTarget(4), favorite.Target())
	assert.Equal(t, "episode:4", favorite.Target().String())

	watchlist := NewWatchlist(1, MediaTarget(2))
	assert.Equal(t, MediaTarget(2), watchlist.Target())

	history := &WatchHistory{MediaID: 2, EpisodeID: uintPtr(4)}
	assert.Equal(t, EpisodeTarget(4), history.Target())
}

func TestWatchHistory_Completed(t *testing.T) {
	tests := []struct {
		progress int
		duration int
		expected bool
	}{
		{0, 0, false},
		{100, 0, false},
		{50, 100, false},
		{95, 100, true},
		{120, 100, true},
	}

	for _, tt := range tests {
		history := &WatchHistory{Progress: tt.progress, Duration: tt.duration}
		assert.Equal(t, tt.expected, history.IsCompleted(), "progress %d duration %d", tt.progress, tt.duration)
	}
}

func TestWatchHistory_BeforeSaveDefaultsWatchedAt(t *testing.T) {
	history := &WatchHistory{Progress: 99, Duration: 100}
	require.NoError(t, history.BeforeSave(nil))

	assert.WithinDuration(t, time.Now(), history.WatchedAt, time.Second)
	assert.True(t, history.Completed)
}
