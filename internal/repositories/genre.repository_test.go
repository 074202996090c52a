package repositories_test

import (
	"cinestream/internal/models"
	"cinestream/internal/repositories"
	"cinestream/internal/testutil"
	"cinestream/internal/types"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestGenreRepository_CreateRejectsDuplicates(t *testing.T) {
	ctx := context.Background()
	conn := testutil.NewDB(t)
	db := conn.SQLWithContext(ctx)
	repo := repositories.NewGenreRepository()

	require.NoError(t, repo.Create(ctx, db, &models.Genre{Name: "Sci-Fi"}))

	tests := []struct {
		name  string
		genre string
	}{
		{name: "same name", genre: "Sci-Fi"},
		{name: "name normalising to an existing slug", genre: "Sci Fi"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repo.Create(ctx, db, &models.Genre{Name: tt.genre})
			assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
		})
	}
}

func TestGenreRepository_ListCountsMedia(t *testing.T) {
	ctx := context.Background()
	conn := testutil.NewDB(t)
	db := conn.SQLWithContext(ctx)
	repo := repositories.NewGenreRepository()

	drama := testutil.CreateGenre(t, db, "Drama")
	testutil.CreateGenre(t, db, "Action")
	testutil.CreateMovie(t, db, "Heat", drama)
	testutil.CreateShow(t, db, "The Wire", drama)

	genres, err := repo.List(ctx, db)
	require.NoError(t, err)
	require.Len(t, genres, 2)
	assert.Equal(t, "Action", genres[0].Name)
	assert.Zero(t, genres[0].MediaCount)
	assert.Equal(t, "Drama", genres[1].Name)
	assert.Equal(t, int64(2), genres[1].MediaCount)
}

func TestGenreRepository_Lookups(t *testing.T) {
	ctx := context.Background()
	conn := testutil.NewDB(t)
	db := conn.SQLWithContext(ctx)
	repo := repositories.NewGenreRepository()

	genre := testutil.CreateGenre(t, db, "Action & Adventure")

	bySlug, err := repo.GetBySlug(ctx, db, "action-and-adventure")
	require.NoError(t, err)
	assert.Equal(t, genre.ID, bySlug.ID)

	_, err = repo.GetBySlug(ctx, db, "missing")
	assert.ErrorIs(t, err, types.ErrNotFound)

	_, err = repo.GetByID(ctx, db, 9999)
	assert.ErrorIs(t, err, types.ErrNotFound)

	genres, err := repo.GetByIDs(ctx, db, []uint{genre.ID, genre.ID})
	require.NoError(t, err)
	assert.Len(t, genres, 1)

	_, err = repo.GetByIDs(ctx, db, []uint{genre.ID, 9999})
	validationErr, ok := types.IsValidation(err)
	require.True(t, ok)
	assert.Contains(t, validationErr.Fields, "genreIds")
}

func TestGenreRepository_DeleteKeepsMedia(t *testing.T) {
	ctx := context.Background()
	conn := testutil.NewDB(t)
	db := conn.SQLWithContext(ctx)
	repo := repositories.NewGenreRepository()
	mediaRepo := repositories.NewMediaRepository()

	drama := testutil.CreateGenre(t, db, "Drama")
	movie := testutil.CreateMovie(t, db, "Test Movie", drama)

	listed, _, err := mediaRepo.List(ctx, db, repositories.MediaFilter{
		GenreIDs: []uint{drama.ID},
		Type:     models.MediaTypeMovie,
	}, types.Pagination{Page: 1, PageSize: 12})
	require.NoError(t, err)
	assert.Equal(t, []string{"Test Movie"}, titles(listed))

	require.NoError(t, repo.Delete(ctx, db, drama.ID))

	loaded, err := mediaRepo.GetByID(ctx, db, movie.ID)
	require.NoError(t, err)
	assert.Empty(t, loaded.Genres)

	assert.ErrorIs(t, repo.Delete(ctx, db, drama.ID), types.ErrNotFound)
}

func TestGenreRepository_FindOrCreateByNames(t *testing.T) {
	ctx := context.Background()
	conn := testutil.NewDB(t)
	db := conn.SQLWithContext(ctx)
	repo := repositories.NewGenreRepository()

	existing := testutil.CreateGenre(t, db, "Science Fiction")

	genres, err := repo.FindOrCreateByNames(ctx, db, []string{
		"Science Fiction",
		"Thriller",
		"science   fiction",
		"",
		"  ",
	})
	require.NoError(t, err)
	require.Len(t, genres, 2)
	assert.Equal(t, existing.ID, genres[0].ID)
	assert.Equal(t, "Thriller", genres[1].Name)
	assert.NotZero(t, genres[1].ID)

	again, err := repo.FindOrCreateByNames(ctx, db, []string{"Thriller"})
	require.NoError(t, err)
	assert.Equal(t, genres[1].ID, again[0].ID)
}
