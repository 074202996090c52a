package genreController_test

import (
	genreController "cinestream/internal/controllers/genres"
	"cinestream/internal/repositories"
	"cinestream/internal/services"
	"cinestream/internal/testutil"
	"cinestream/internal/types"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestGenreController_CreateAndUpdate(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	cfg := testutil.Config("")
	controller := genreController.New(repositories.New(db), services.New(db, cfg), cfg, db)

	genre, err := controller.Create(ctx, &genreController.GenreRequest{
		Name:  "  Science Fiction ",
		Color: ptr("#1A2B3C"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Science Fiction", genre.Name)
	assert.Equal(t, "science-fiction", genre.Slug)

	tests := []struct {
		name    string
		request genreController.GenreRequest
		field   string
	}{
		{name: "duplicate name", request: genreController.GenreRequest{Name: "Science Fiction"}, field: "name"},
		{name: "duplicate slug", request: genreController.GenreRequest{Name: "science fiction!"}, field: "name"},
		{name: "empty name", request: genreController.GenreRequest{Name: "   "}, field: "name"},
		{name: "no letters", request: genreController.GenreRequest{Name: "!!!"}, field: "name"},
		{name: "bad color", request: genreController.GenreRequest{Name: "Drama", Color: ptr("blue")}, field: "color"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := controller.Create(ctx, &tt.request)
			validationErr, ok := types.IsValidation(err)
			require.True(t, ok, "expected validation error, got %v", err)
			assert.Contains(t, validationErr.Fields, tt.field)
		})
	}

	updated, err := controller.Update(ctx, genre.ID, &genreController.GenreRequest{Name: "Sci-Fi"})
	require.NoError(t, err)
	assert.Equal(t, "sci-fi", updated.Slug)
	assert.Nil(t, updated.Color)

	_, err = controller.Update(ctx, 9999, &genreController.GenreRequest{Name: "Western"})
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestGenreController_MediaBySlugAndDelete(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	cfg := testutil.Config("")
	controller := genreController.New(repositories.New(db), services.New(db, cfg), cfg, db)

	tx := db.SQLWithContext(ctx)
	drama := testutil.CreateGenre(t, tx, "Drama")
	testutil.CreateMovie(t, tx, "Heat", drama)
	testutil.CreateShow(t, tx, "The Wire", drama)
	testutil.CreateMovie(t, tx, "Alien")

	result, err := controller.MediaBySlug(ctx, " DRAMA ", types.Pagination{})
	require.NoError(t, err)
	assert.Equal(t, drama.ID, result.Genre.ID)
	assert.Equal(t, int64(2), result.Total)
	assert.Equal(t, types.PublicPageSize, result.PageSize)

	_, err = controller.MediaBySlug(ctx, "horror", types.Pagination{})
	assert.ErrorIs(t, err, types.ErrNotFound)

	genres, err := controller.List(ctx)
	require.NoError(t, err)
	require.Len(t, genres, 1)
	assert.Equal(t, int64(2), genres[0].MediaCount)

	require.NoError(t, controller.Delete(ctx, drama.ID))
	assert.ErrorIs(t, controller.Delete(ctx, drama.ID), types.ErrNotFound)

	genres, err = controller.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, genres)
}
