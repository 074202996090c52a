package types

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPagination_Normalize(t *testing.T) {
	tests := []struct {
		name     string
		input    Pagination
		def      int
		expected Pagination
	}{
		{"zero values use default", Pagination{}, PublicPageSize, Pagination{Page: 1, PageSize: 12}},
		{"admin default", Pagination{Page: 2}, AdminPageSize, Pagination{Page: 2, PageSize: 15}},
		{"clamps page size", Pagination{Page: 1, PageSize: 500}, PublicPageSize, Pagination{Page: 1, PageSize: MaxPageSize}},
		{"negative page", Pagination{Page: -3, PageSize: 5}, PublicPageSize, Pagination{Page: 1, PageSize: 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.input.Normalize(tt.def))
		})
	}
}

func TestNewPage_LastPage(t *testing.T) {
	page := NewPage([]int{1, 2}, Pagination{Page: 1, PageSize: 12}, 25)
	assert.Equal(t, 3, page.LastPage)
	assert.Equal(t, int64(25), page.Total)

	empty := NewPage[int](nil, Pagination{Page: 1, PageSize: 12}, 0)
	assert.NotNil(t, empty.Data)
	assert.Equal(t, 1, empty.LastPage)
}

func TestValidationError(t *testing.T) {
	err := NewValidationError("title", "is required").Add("year", "must be at least 1870")
	err.Add("title", "ignored duplicate")

	assert.True(t, err.HasErrors())
	assert.Equal(t, "is required", err.Fields["title"])
	assert.Equal(t, "validation failed: title is required, year must be at least 1870", err.Error())

	wrapped := errors.Join(errors.New("outer"), err)
	found, ok := IsValidation(wrapped)
	assert.True(t, ok)
	assert.Same(t, err, found)
}

func TestSubtypeMismatch_IsDistinctFromNotFound(t *testing.T) {
	err := SubtypeMismatch("media", 7, "movie", "tv")

	assert.ErrorIs(t, err, ErrSubtypeMismatch)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "media 7 is a movie, not a tv")
}
