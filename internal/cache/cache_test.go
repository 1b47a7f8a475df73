package cache_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soender/kvittering/internal/cache"
)

func openCache(t *testing.T) *cache.Cache {
	t.Helper()

	c, err := cache.Open(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })

	return c
}

const hash = "9f86d081884c7d659a2feaa0c55ad015a3bf4f1b2b0b822cd15d6c15b0f00a08"

func TestCache_ReserveBlocksResubmission(t *testing.T) {
	c := openCache(t)

	known, err := c.Has(hash)
	require.NoError(t, err)
	assert.False(t, known)

	require.NoError(t, c.Reserve(hash))

	// A placeholder counts as known: the submission is in flight.
	known, err = c.Has(hash)
	require.NoError(t, err)
	assert.True(t, known)

	raw, err := c.Load(hash)
	require.NoError(t, err)
	assert.Empty(t, raw)
}

func TestCache_StoreOverwritesPlaceholder(t *testing.T) {
	c := openCache(t)

	require.NoError(t, c.Reserve(hash))
	require.NoError(t, c.Store(hash, `{"status":"succeeded"}`))

	raw, err := c.Load(hash)
	require.NoError(t, err)
	assert.Equal(t, `{"status":"succeeded"}`, raw)
}

func TestCache_LoadMissingEntry(t *testing.T) {
	c := openCache(t)

	_, err := c.Load(hash)
	assert.Error(t, err)
}

func TestCache_List(t *testing.T) {
	c := openCache(t)

	hashes, err := c.List()
	require.NoError(t, err)
	assert.Empty(t, hashes)

	require.NoError(t, c.Reserve("aaaa"))
	require.NoError(t, c.Store("bbbb", "payload"))

	hashes, err = c.List()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"aaaa", "bbbb"}, hashes)
}

func TestCache_SurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cache.db")

	c, err := cache.Open(path)
	require.NoError(t, err)
	require.NoError(t, c.Store(hash, "payload"))
	require.NoError(t, c.Close())

	c, err = cache.Open(path)
	require.NoError(t, err)
	defer c.Close()

	raw, err := c.Load(hash)
	require.NoError(t, err)
	assert.Equal(t, "payload", raw)
}
