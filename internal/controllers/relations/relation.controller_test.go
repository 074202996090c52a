package relationController_test

import (
	relationController "cinestream/internal/controllers/relations"
	"cinestream/internal/models"
	"cinestream/internal/repositories"
	"cinestream/internal/services"
	"cinestream/internal/testutil"
	"cinestream/internal/types"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	ctx        context.Context
	tx         *gorm.DB
	controller relationController.RelationControllerInterface
	user       models.User
	movie      models.Media
	show       models.Media
	episode    models.Episode
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	ctx := context.Background()
	db := testutil.NewDB(t)
	cfg := testutil.Config("")
	tx := db.SQLWithContext(ctx)

	show := testutil.CreateShow(t, tx, "Other Show")
	return fixture{
		ctx:        ctx,
		tx:         tx,
		controller: relationController.New(repositories.New(db), services.New(db, cfg), cfg, db),
		user:       testutil.CreateUser(t, tx, "viewer@example.com", false),
		movie:      testutil.CreateMovie(t, tx, "Heat"),
		show:       show,
		episode:    testutil.CreateEpisode(t, tx, show.ID, 1, 1),
	}
}

func ptr[T any](v T) *T { return &v }

func (f fixture) count(t *testing.T, model any) int64 {
	t.Helper()

	var n int64
	require.NoError(t, f.tx.Model(model).Where("user_id = ?", f.user.ID).Count(&n).Error)
	return n
}

func TestRelationController_ToggleFavorite(t *testing.T) {
	f := newFixture(t)

	result, err := f.controller.ToggleFavorite(f.ctx, &f.user, &relationController.TargetRequest{MediaID: &f.movie.ID})
	require.NoError(t, err)
	assert.Equal(t, repositories.ToggleAdded, result.Status)
	assert.Equal(t, int64(1), f.count(t, &models.Favorite{}))

	result, err = f.controller.ToggleFavorite(f.ctx, &f.user, &relationController.TargetRequest{MediaID: &f.movie.ID})
	require.NoError(t, err)
	assert.Equal(t, repositories.ToggleRemoved, result.Status)
	assert.Zero(t, f.count(t, &models.Favorite{}))

	result, err = f.controller.ToggleFavorite(f.ctx, &f.user, &relationController.TargetRequest{EpisodeID: &f.episode.ID})
	require.NoError(t, err)
	assert.Equal(t, repositories.ToggleAdded, result.Status)
	assert.Nil(t, result.MediaID)
	require.NotNil(t, result.EpisodeID)
	assert.Equal(t, f.episode.ID, *result.EpisodeID)

	favorites, err := f.controller.ListFavorites(f.ctx, &f.user)
	require.NoError(t, err)
	require.Len(t, favorites, 1)
	assert.True(t, favorites[0].Target().IsEpisode())
}

func TestRelationController_TargetValidation(t *testing.T) {
	f := newFixture(t)

	_, err := f.controller.ToggleWatchlist(f.ctx, &f.user, &relationController.TargetRequest{})
	validationErr, ok := types.IsValidation(err)
	require.True(t, ok)
	assert.Contains(t, validationErr.Fields, "mediaId")

	_, err = f.controller.ToggleWatchlist(f.ctx, &f.user, &relationController.TargetRequest{
		MediaID:   &f.movie.ID,
		EpisodeID: &f.episode.ID,
	})
	_, ok = types.IsValidation(err)
	assert.True(t, ok)

	_, err = f.controller.ToggleWatchlist(f.ctx, &f.user, &relationController.TargetRequest{MediaID: ptr(uint(9999))})
	assert.ErrorIs(t, err, types.ErrNotFound)
	assert.Zero(t, f.count(t, &models.Watchlist{}))
}

func TestRelationController_DeleteFavoriteOwnership(t *testing.T) {
	f := newFixture(t)
	other := testutil.CreateUser(t, f.tx, "other@example.com", false)

	_, err := f.controller.ToggleFavorite(f.ctx, &f.user, &relationController.TargetRequest{MediaID: &f.movie.ID})
	require.NoError(t, err)

	favorites, err := f.controller.ListFavorites(f.ctx, &f.user)
	require.NoError(t, err)
	require.Len(t, favorites, 1)

	err = f.controller.DeleteFavorite(f.ctx, &other, favorites[0].ID)
	assert.ErrorIs(t, err, types.ErrForbidden)

	require.NoError(t, f.controller.DeleteFavorite(f.ctx, &f.user, favorites[0].ID))
	assert.ErrorIs(t, f.controller.DeleteFavorite(f.ctx, &f.user, favorites[0].ID), types.ErrNotFound)
}

func TestRelationController_Rate(t *testing.T) {
	f := newFixture(t)

	rating, err := f.controller.Rate(f.ctx, &f.user, &relationController.RatingRequest{MediaID: &f.movie.ID, Rating: 5})
	require.NoError(t, err)
	assert.Equal(t, 5, rating.Rating)

	rating, err = f.controller.Rate(f.ctx, &f.user, &relationController.RatingRequest{MediaID: &f.movie.ID, Rating: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, rating.Rating)
	assert.Equal(t, int64(1), f.count(t, &models.Rating{}))

	_, err = f.controller.Rate(f.ctx, &f.user, &relationController.RatingRequest{MediaID: &f.movie.ID, Rating: 6})
	validationErr, ok := types.IsValidation(err)
	require.True(t, ok)
	assert.Contains(t, validationErr.Fields, "rating")

	require.NoError(t, f.controller.RemoveRating(f.ctx, &f.user, &relationController.TargetRequest{MediaID: &f.movie.ID}))
	assert.Zero(t, f.count(t, &models.Rating{}))

	err = f.controller.RemoveRating(f.ctx, &f.user, &relationController.TargetRequest{MediaID: &f.movie.ID})
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestRelationController_History(t *testing.T) {
	f := newFixture(t)

	watchedAt := time.Date(2024, 5, 1, 20, 0, 0, 0, time.UTC)
	entry, err := f.controller.RecordProgress(f.ctx, &f.user, &relationController.ProgressRequest{
		EpisodeID: &f.episode.ID,
		Progress:  60,
		Duration:  2700,
		WatchedAt: &watchedAt,
	})
	require.NoError(t, err)
	assert.Equal(t, f.show.ID, entry.MediaID, "episode history is filed under its show")
	assert.True(t, entry.WatchedAt.Equal(watchedAt))

	_, err = f.controller.RecordProgress(f.ctx, &f.user, &relationController.ProgressRequest{
		EpisodeID: &f.episode.ID,
		Progress:  120,
		Duration:  2700,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), f.count(t, &models.WatchHistory{}), "recording always appends")

	resumed, err := f.controller.UpdateLatestProgress(f.ctx, &f.user, &relationController.ProgressRequest{
		EpisodeID: &f.episode.ID,
		Progress:  2600,
		Duration:  2700,
	})
	require.NoError(t, err)
	assert.True(t, resumed.Completed)
	assert.Equal(t, int64(2), f.count(t, &models.WatchHistory{}), "an unfinished viewing is resumed")

	_, err = f.controller.UpdateLatestProgress(f.ctx, &f.user, &relationController.ProgressRequest{
		EpisodeID: &f.episode.ID,
		Progress:  10,
		Duration:  2700,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3), f.count(t, &models.WatchHistory{}), "a completed viewing starts a new row")

	history, err := f.controller.ListHistory(f.ctx, &f.user)
	require.NoError(t, err)
	assert.Len(t, history, 3)
}

func TestRelationController_State(t *testing.T) {
	f := newFixture(t)

	state, err := f.controller.State(f.ctx, &f.user, f.movie.ID)
	require.NoError(t, err)
	assert.False(t, state.Favorited)
	assert.False(t, state.InWatchlist)
	assert.Nil(t, state.Rating)
	assert.Nil(t, state.Progress)

	_, err = f.controller.ToggleWatchlist(f.ctx, &f.user, &relationController.TargetRequest{MediaID: &f.movie.ID})
	require.NoError(t, err)
	_, err = f.controller.Rate(f.ctx, &f.user, &relationController.RatingRequest{MediaID: &f.movie.ID, Rating: 4})
	require.NoError(t, err)
	_, err = f.controller.RecordProgress(f.ctx, &f.user, &relationController.ProgressRequest{
		MediaID:  &f.movie.ID,
		Progress: 300,
		Duration: 7200,
	})
	require.NoError(t, err)

	state, err = f.controller.State(f.ctx, &f.user, f.movie.ID)
	require.NoError(t, err)
	assert.False(t, state.Favorited)
	assert.True(t, state.InWatchlist)
	require.NotNil(t, state.Rating)
	assert.Equal(t, 4, *state.Rating)
	require.NotNil(t, state.Progress)
	assert.Equal(t, 300, state.Progress.Progress)

	_, err = f.controller.State(f.ctx, &f.user, 9999)
	assert.ErrorIs(t, err, types.ErrNotFound)
}
