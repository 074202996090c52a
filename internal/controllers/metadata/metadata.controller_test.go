package metadataController_test

import (
	metadataController "cinestream/internal/controllers/metadata"
	"cinestream/internal/database"
	"cinestream/internal/models"
	"cinestream/internal/repositories"
	"cinestream/internal/services"
	"cinestream/internal/testutil"
	"cinestream/internal/types"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const showJSON = `{
	"id": 1399,
	"name": "Game of Thrones",
	"overview": "Seven noble families fight.",
	"first_air_date": "2011-04-17",
	"last_air_date": "2019-05-19",
	"status": "Ended",
	"number_of_seasons": 8,
	"number_of_episodes": 73,
	"vote_average": 8.45,
	"vote_count": 22000,
	"genres": [{"id": 18, "name": "Drama"}, {"id": 10765, "name": "Sci-Fi & Fantasy"}]
}`

const seasonJSON = `{
	"season_number": 1,
	"episodes": [
		{"name": "Winter Is Coming", "episode_number": 1, "season_number": 1, "runtime": 62, "air_date": "2011-04-17"},
		{"name": "The Kingsroad", "episode_number": 2, "season_number": 1, "runtime": 56, "air_date": "2011-04-24"}
	]
}`

type provider struct {
	voteCount atomic.Int64
	calls     atomic.Int64

	mu   sync.Mutex
	hits map[string]int
}

func (p *provider) hitsFor(path string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.hits[path]
}

func (p *provider) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p.calls.Add(1)
	p.mu.Lock()
	p.hits[r.URL.Path]++
	p.mu.Unlock()

	switch r.URL.Path {
	case "/movie/603":
		_, _ = fmt.Fprintf(w, `{
			"id": 603,
			"title": "The Matrix",
			"release_date": "1999-03-30",
			"runtime": 136,
			"vote_average": 8.2,
			"vote_count": %d,
			"genres": [{"id": 28, "name": "Action"}, {"id": 878, "name": "Science Fiction"}]
		}`, p.voteCount.Load())
	case "/movie/604":
		_, _ = w.Write([]byte(`{"id": 604, "title": "The Matrix Reloaded", "release_date": "2003-05-15", "runtime": 138}`))
	case "/tv/1399":
		_, _ = w.Write([]byte(showJSON))
	case "/tv/1399/season/1":
		_, _ = w.Write([]byte(seasonJSON))
	case "/search/movie":
		_, _ = w.Write([]byte(`{"page": 1, "results": [{"id": 603, "title": "The Matrix"}], "total_pages": 1, "total_results": 1}`))
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func newController(t *testing.T) (metadataController.MetadataControllerInterface, database.DB, *provider) {
	t.Helper()

	fake := &provider{hits: map[string]int{}}
	fake.voteCount.Store(25000)
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)

	db := testutil.NewDB(t)
	cfg := testutil.Config(server.URL)
	controller := metadataController.New(repositories.New(db), services.New(db, cfg), cfg, db)
	return controller, db, fake
}

func TestMetadataController_Import(t *testing.T) {
	ctx := context.Background()
	controller, db, fake := newController(t)

	media, err := controller.Import(ctx, &metadataController.ImportRequest{ExternalID: "603", Type: models.MediaTypeMovie})
	require.NoError(t, err)
	assert.Equal(t, "The Matrix", media.Title)
	require.NotNil(t, media.Duration)
	assert.Equal(t, 136, *media.Duration)
	require.NotNil(t, media.ExternalID)
	assert.Equal(t, "603", *media.ExternalID)
	assert.NotEmpty(t, media.MetadataHash)

	var stored models.Media
	require.NoError(t, db.SQL.Preload("Genres").First(&stored, media.ID).Error)
	require.Len(t, stored.Genres, 2)

	calls := fake.calls.Load()
	_, err = controller.Import(ctx, &metadataController.ImportRequest{ExternalID: "603", Type: models.MediaTypeMovie})
	validationErr, ok := types.IsValidation(err)
	require.True(t, ok)
	assert.Contains(t, validationErr.Fields, "externalId")
	assert.Equal(t, calls, fake.calls.Load(), "a linked id is rejected before calling the provider")

	_, err = controller.Import(ctx, &metadataController.ImportRequest{ExternalID: "404", Type: models.MediaTypeMovie})
	assert.ErrorIs(t, err, types.ErrProviderNotFound)

	_, err = controller.Import(ctx, &metadataController.ImportRequest{ExternalID: "abc", Type: "episode"})
	validationErr, ok = types.IsValidation(err)
	require.True(t, ok)
	assert.Contains(t, validationErr.Fields, "externalId")
	assert.Contains(t, validationErr.Fields, "type")
}

func TestMetadataController_LinkAndImportSeason(t *testing.T) {
	ctx := context.Background()
	controller, db, _ := newController(t)

	tx := db.SQLWithContext(ctx)
	show := testutil.CreateShow(t, tx, "GoT")
	movie := testutil.CreateMovie(t, tx, "Heat")

	_, err := controller.ImportSeason(ctx, show.ID, 1)
	validationErr, ok := types.IsValidation(err)
	require.True(t, ok)
	assert.Contains(t, validationErr.Fields, "externalId")

	_, err = controller.Link(ctx, show.ID, &metadataController.LinkRequest{ExternalID: "1399", Type: models.MediaTypeMovie})
	assert.ErrorIs(t, err, types.ErrSubtypeMismatch)

	linked, err := controller.Link(ctx, show.ID, &metadataController.LinkRequest{ExternalID: "1399"})
	require.NoError(t, err)
	assert.Equal(t, "Game of Thrones", linked.Title)
	require.NotNil(t, linked.SeasonsCount)
	assert.Equal(t, 8, *linked.SeasonsCount)
	require.Len(t, linked.Genres, 2)

	_, err = controller.Link(ctx, movie.ID, &metadataController.LinkRequest{ExternalID: "1399"})
	validationErr, ok = types.IsValidation(err)
	require.True(t, ok)
	assert.Contains(t, validationErr.Fields, "externalId")

	imported, err := controller.ImportSeason(ctx, show.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, imported.Imported)
	require.Len(t, imported.Episodes, 2)
	assert.Equal(t, "Winter Is Coming", imported.Episodes[0].Title)
	assert.Equal(t, "https://vidsrc.test/embed/tv?tmdb=1399&season=1&episode=1", imported.Episodes[0].VideoURL)

	imported, err = controller.ImportSeason(ctx, show.ID, 1)
	require.NoError(t, err)
	assert.Len(t, imported.Episodes, 2, "re-importing a season updates in place")

	_, err = controller.ImportSeason(ctx, movie.ID, 1)
	assert.ErrorIs(t, err, types.ErrSubtypeMismatch)

	_, err = controller.ImportSeason(ctx, show.ID, 2)
	assert.ErrorIs(t, err, types.ErrProviderNotFound)
}

func TestMetadataController_Embed(t *testing.T) {
	ctx := context.Background()
	controller, db, _ := newController(t)

	movie := testutil.CreateMovie(t, db.SQLWithContext(ctx), "Heat")
	_, err := controller.Embed(ctx, movie.ID, metadataController.EmbedQuery{})
	assert.ErrorIs(t, err, types.ErrProviderNotFound)

	imported, err := controller.Import(ctx, &metadataController.ImportRequest{ExternalID: "1399", Type: models.MediaTypeTV})
	require.NoError(t, err)

	season, episode := 2, 3
	embed, err := controller.Embed(ctx, imported.ID, metadataController.EmbedQuery{Season: &season, Episode: &episode})
	require.NoError(t, err)
	assert.Equal(t, "https://vidsrc.test/embed/tv?tmdb=1399&season=2&episode=3", embed.URL)
	assert.Contains(t, embed.HTML, "allowfullscreen")

	_, err = controller.Embed(ctx, imported.ID, metadataController.EmbedQuery{Season: &season})
	_, ok := types.IsValidation(err)
	assert.True(t, ok)

	_, err = controller.Embed(ctx, 9999, metadataController.EmbedQuery{})
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestMetadataController_RefreshLinked(t *testing.T) {
	ctx := context.Background()
	controller, db, fake := newController(t)

	movie, err := controller.Import(ctx, &metadataController.ImportRequest{ExternalID: "603", Type: models.MediaTypeMovie})
	require.NoError(t, err)
	testutil.CreateMovie(t, db.SQLWithContext(ctx), "Unlinked")

	summary, err := controller.RefreshLinked(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, metadataController.RefreshSummary{Checked: 1, Unchanged: 1}, summary)

	fake.voteCount.Store(26000)
	summary, err = controller.RefreshLinked(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, metadataController.RefreshSummary{Checked: 1, Updated: 1}, summary)

	var stored models.Media
	require.NoError(t, db.SQL.First(&stored, movie.ID).Error)
	assert.Equal(t, 26000, stored.VoteCount)
	assert.NotNil(t, stored.MetadataCheckedAt)
}

func TestMetadataController_RefreshLinkedRotatesBatches(t *testing.T) {
	ctx := context.Background()
	controller, db, fake := newController(t)

	for _, externalID := range []string{"603", "604"} {
		_, err := controller.Import(ctx, &metadataController.ImportRequest{ExternalID: externalID, Type: models.MediaTypeMovie})
		require.NoError(t, err)
	}
	lost := testutil.CreateMovie(t, db.SQLWithContext(ctx), "Lost Link")
	require.NoError(t, db.SQL.Model(&lost).UpdateColumn("external_id", "999").Error)

	summary, err := controller.RefreshLinked(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, metadataController.RefreshSummary{Checked: 2, Unchanged: 2}, summary)
	assert.Equal(t, 2, fake.hitsFor("/movie/603"))
	assert.Equal(t, 2, fake.hitsFor("/movie/604"))
	assert.Zero(t, fake.hitsFor("/movie/999"))

	summary, err = controller.RefreshLinked(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, metadataController.RefreshSummary{Checked: 2, Unchanged: 1, Failed: 1}, summary)
	assert.Equal(t, 1, fake.hitsFor("/movie/999"), "never checked media go first")
	assert.Equal(t, 3, fake.hitsFor("/movie/603"))

	_, err = controller.RefreshLinked(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, fake.hitsFor("/movie/604"), "the least recently checked media is next")

	var failed models.Media
	require.NoError(t, db.SQL.First(&failed, lost.ID).Error)
	assert.NotNil(t, failed.MetadataCheckedAt, "failed checks are stamped too")
}

func TestMetadataController_RefreshLinkedKeepsCuratedFields(t *testing.T) {
	ctx := context.Background()
	controller, db, fake := newController(t)

	movie, err := controller.Import(ctx, &metadataController.ImportRequest{ExternalID: "603", Type: models.MediaTypeMovie})
	require.NoError(t, err)

	require.NoError(t, db.SQL.Model(&models.Media{}).Where("id = ?", movie.ID).
		UpdateColumn("title", "The Matrix (Director's Cut)").Error)
	require.NoError(t, db.SQL.Model(movie).Association("Genres").Clear())

	fake.voteCount.Store(27000)
	summary, err := controller.RefreshLinked(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, metadataController.RefreshSummary{Checked: 1, Updated: 1}, summary)

	var stored models.Media
	require.NoError(t, db.SQL.Preload("Genres").First(&stored, movie.ID).Error)
	assert.Equal(t, "The Matrix (Director's Cut)", stored.Title)
	assert.Empty(t, stored.Genres)
	assert.Equal(t, 27000, stored.VoteCount)
	require.NotNil(t, stored.Duration)
	assert.Equal(t, 136, *stored.Duration)

	summary, err = controller.RefreshLinked(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, metadataController.RefreshSummary{Checked: 1, Unchanged: 1}, summary)
}

func TestMetadataController_Search(t *testing.T) {
	ctx := context.Background()
	controller, _, _ := newController(t)

	response, err := controller.Search(ctx, metadataController.SearchQuery{Query: "matrix", Type: "movie"})
	require.NoError(t, err)
	require.Len(t, response.Results, 1)
	assert.Equal(t, 603, response.Results[0].ID)

	_, err = controller.Search(ctx, metadataController.SearchQuery{Query: " "})
	_, ok := types.IsValidation(err)
	assert.True(t, ok)

	attributes, err := controller.Fetch(ctx, models.MediaTypeTV, "1399")
	require.NoError(t, err)
	assert.Equal(t, []string{"Drama", "Sci-Fi & Fantasy"}, attributes.GenreNames)
}
