package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(i int) *int              { return &i }
func strPtr(s string) *string        { return &s }
func timePtr(t time.Time) *time.Time { return &t }

func TestMedia_NormalizeMovieDropsTVFields(t *testing.T) {
	media := &Media{
		Title:         "  Heat ",
		Type:          MediaTypeMovie,
		Duration:      intPtr(170),
		FirstAirDate:  timePtr(time.Date(1995, 12, 15, 0, 0, 0, 0, time.UTC)),
		Status:        strPtr("Released"),
		SeasonsCount:  intPtr(1),
		EpisodesCount: intPtr(2),
		Rating:        decimal.RequireFromString("8.26"),
	}

	media.Normalize()

	assert.Equal(t, "Heat", media.Title)
	assert.Equal(t, 170, *media.Duration)
	assert.Nil(t, media.FirstAirDate)
	assert.Nil(t, media.Status)
	assert.Nil(t, media.SeasonsCount)
	assert.Nil(t, media.EpisodesCount)
	assert.Equal(t, "8.3", media.Rating.String())
}

func TestMedia_NormalizeTVDropsDuration(t *testing.T) {
	media := &Media{
		Title:        "Dark",
		Type:         MediaTypeTV,
		Duration:     intPtr(60),
		SeasonsCount: intPtr(3),
		ExternalID:   strPtr("  "),
	}

	media.Normalize()

	assert.Nil(t, media.Duration)
	assert.Equal(t, 3, *media.SeasonsCount)
	assert.Nil(t, media.ExternalID)
}

func TestMedia_JSONOmitsFieldsOfOtherType(t *testing.T) {
	movie := &Media{Title: "Heat", Type: MediaTypeMovie, Duration: intPtr(170), SeasonsCount: intPtr(2)}
	movie.Normalize()

	raw, err := json.Marshal(movie)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, float64(170), out["duration"])
	assert.NotContains(t, out, "seasonsCount")
	assert.NotContains(t, out, "firstAirDate")
	assert.NotContains(t, out, "status")
	assert.NotContains(t, out, "metadataHash")

	show := &Media{Title: "Dark", Type: MediaTypeTV, Duration: intPtr(60), SeasonsCount: intPtr(3)}
	show.Normalize()

	raw, err = json.Marshal(show)
	require.NoError(t, err)
	out = map[string]any{}
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.NotContains(t, out, "duration")
	assert.Equal(t, float64(3), out["seasonsCount"])
}

func TestMedia_RatingSerializesAsNumber(t *testing.T) {
	media := &Media{Title: "Heat", Type: MediaTypeMovie, Rating: decimal.RequireFromString("7.5")}

	raw, err := json.Marshal(media)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"rating":7.5`)
}

func TestMediaType(t *testing.T) {
	assert.True(t, MediaTypeMovie.Valid())
	assert.True(t, MediaTypeTV.Valid())
	assert.False(t, MediaType("anime").Valid())
	assert.Equal(t, "tv show", MediaTypeTV.Label())
	assert.Equal(t, "movie", MediaTypeMovie.Label())
}

func TestGenre_BeforeSaveDerivesSlug(t *testing.T) {
	genre := &Genre{Name: "  Science Fiction "}
	require.NoError(t, genre.BeforeSave(nil))

	assert.Equal(t, "Science Fiction", genre.Name)
	assert.Equal(t, "science-fiction", genre.Slug)
}

func TestEpisode_DefaultTitle(t *testing.T) {
	episode := &Episode{Season: 2, EpisodeNumber: 7}
	require.NoError(t, episode.BeforeSave(nil))

	assert.Equal(t, "S02E07", episode.Title)
}
