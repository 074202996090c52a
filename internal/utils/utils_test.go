package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Drama", "drama"},
		{"  drama  ", "drama"},
		{"Science Fiction", "science-fiction"},
		{"Action & Adventure", "action-and-adventure"},
		{"Sci-Fi / Fantasy", "sci-fi-fantasy"},
		{"Película Española", "pelicula-espanola"},
		{"--War--", "war"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, Slugify(tt.input))
		})
	}
}

func TestCleanUTF8(t *testing.T) {
	cleaned, changed := CleanUTF8("ok")
	assert.Equal(t, "ok", cleaned)
	assert.False(t, changed)

	cleaned, changed = CleanUTF8("bad\x00value\xff")
	assert.Equal(t, "badvalue", cleaned)
	assert.True(t, changed)
}

func TestHashFields_Deterministic(t *testing.T) {
	count := 3
	first := HashFields(map[string]any{"title": "Dark", "seasons": &count, "adult": false})
	second := HashFields(map[string]any{"adult": false, "seasons": 3, "title": "Dark"})
	different := HashFields(map[string]any{"adult": false, "seasons": 4, "title": "Dark"})

	assert.Equal(t, first, second)
	assert.NotEqual(t, first, different)
	assert.Len(t, first, 64)
}

func TestParseDate(t *testing.T) {
	parsed := ParseDate("2008-01-20")
	require.NotNil(t, parsed)
	assert.Equal(t, time.Date(2008, 1, 20, 0, 0, 0, 0, time.UTC), *parsed)

	assert.Nil(t, ParseDate(""))
	assert.Nil(t, ParseDate("20-01-2008"))
}

func TestYearFromDate(t *testing.T) {
	year := YearFromDate("2008-01-20")
	require.NotNil(t, year)
	assert.Equal(t, 2008, *year)

	assert.Nil(t, YearFromDate(""))
	assert.Nil(t, YearFromDate("abc"))
	assert.Nil(t, YearFromDate("0000-01-01"))
}
