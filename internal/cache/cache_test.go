package cache

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"videoapi/internal/media"
)

func openTestCache(t *testing.T) *Cache {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "nested", "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestMovieRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := openTestCache(t)

	_, ok, err := c.Movie(ctx, "The Matrix")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.PutMovie(ctx, "The Matrix", "https://cdn.example.com/a/1080/index.m3u8"))

	url, ok, err := c.Movie(ctx, "  the MATRIX ")
	require.NoError(t, err)
	assert.True(t, ok, "titles are keyed case-insensitively")
	assert.Equal(t, "https://cdn.example.com/a/1080/index.m3u8", url)
}

func TestPutMovieReplaces(t *testing.T) {
	ctx := context.Background()
	c := openTestCache(t)

	require.NoError(t, c.PutMovie(ctx, "Dune", "https://cdn.example.com/old/index.m3u8"))
	require.NoError(t, c.PutMovie(ctx, "DUNE", "https://cdn.example.com/new/index.m3u8"))

	url, ok, err := c.Movie(ctx, "dune")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "https://cdn.example.com/new/index.m3u8", url)

	entries, err := c.List(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestEpisodeRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := openTestCache(t)

	require.NoError(t, c.PutEpisode(ctx, "Dark", 2, 5, "https://cdn.example.com/s2e5/index.m3u8"))

	url, ok, err := c.Episode(ctx, "dark", 2, 5)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "https://cdn.example.com/s2e5/index.m3u8", url)

	_, ok, err = c.Episode(ctx, "dark", 2, 6)
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = c.Movie(ctx, "dark")
	require.NoError(t, err)
	assert.False(t, ok, "episodes and movies are separate namespaces")
}

func TestListAndClear(t *testing.T) {
	ctx := context.Background()
	c := openTestCache(t)

	require.NoError(t, c.PutMovie(ctx, "Dune", "https://cdn.example.com/dune/index.m3u8"))
	require.NoError(t, c.PutEpisode(ctx, "Dark", 1, 1, "https://cdn.example.com/dark/index.m3u8"))

	entries, err := c.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	kinds := map[media.Kind]Entry{}
	for _, e := range entries {
		kinds[e.Kind] = e
	}
	assert.Equal(t, "Dune", kinds[media.Movie].Title)
	assert.Equal(t, "Dark", kinds[media.TV].Title)
	assert.Equal(t, 1, kinds[media.TV].Season)
	assert.False(t, kinds[media.TV].UpdatedAt.IsZero())

	n, err := c.Clear(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	entries, err = c.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
