package database

import (
	"cinestream/config"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheConstants(t *testing.T) {
	assert.Equal(t, 0, GENERAL_CACHE_INDEX)
	assert.Equal(t, 1, CLIENT_API_CACHE_INDEX)
}

func TestPostgresDSN(t *testing.T) {
	dsn := PostgresDSN(config.Config{
		DatabaseHost:     "db",
		DatabasePort:     5432,
		DatabaseUser:     "cinestream",
		DatabasePassword: "secret",
		DatabaseName:     "catalog",
	})

	assert.Equal(t, "host=db port=5432 user=cinestream password=secret dbname=catalog sslmode=disable TimeZone=UTC", dsn)
}

func TestRelationIndexes(t *testing.T) {
	indexes := RelationIndexes()

	for _, table := range targetTables {
		var mediaIndex, episodeIndex string
		for _, index := range indexes {
			if strings.Contains(index, "idx_"+table+"_user_media ") {
				mediaIndex = index
			}
			if strings.Contains(index, "idx_"+table+"_user_episode ") {
				episodeIndex = index
			}
		}

		require.NotEmpty(t, mediaIndex, table)
		require.NotEmpty(t, episodeIndex, table)
		assert.Contains(t, mediaIndex, "UNIQUE")
		assert.Contains(t, mediaIndex, "WHERE episode_id IS NULL")
		assert.Contains(t, episodeIndex, "WHERE media_id IS NULL")
	}
}

func TestCacheBuilder_KeyComposition(t *testing.T) {
	cb := NewCacheBuilder(nil, "movie/603").WithHash("tmdb")
	assert.Equal(t, "tmdb:movie/603", cb.Key())

	cb = NewCacheBuilder(nil, "plain").WithHash("")
	assert.Equal(t, "plain", cb.Key())
}

func TestCacheBuilder_ValidationBeforeNetwork(t *testing.T) {
	err := NewCacheBuilder(nil, "").WithValue("x").Set()
	assert.ErrorIs(t, err, ErrCacheKeyRequired)

	err = NewCacheBuilder(nil, "key").WithValue("x").Set()
	assert.ErrorIs(t, err, ErrCacheUnavailable)

	found, err := NewCacheBuilder(nil, "key").Get(&struct{}{})
	assert.False(t, found)
	assert.ErrorIs(t, err, ErrCacheUnavailable)

	err = NewCacheBuilder(nil, "key").WithStruct(make(chan int)).Set()
	assert.ErrorContains(t, err, "failed to marshal value to json")
}

func TestCacheBuilder_TimeoutContextRespectsDeadline(t *testing.T) {
	parent, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	cb := NewCacheBuilder(nil, "key").WithContext(parent).WithTimeout(time.Minute)
	ctx, done := cb.createTimeoutContext()
	defer done()

	deadline, ok := ctx.Deadline()
	require.True(t, ok)
	parentDeadline, _ := parent.Deadline()
	assert.Equal(t, parentDeadline, deadline)
}
