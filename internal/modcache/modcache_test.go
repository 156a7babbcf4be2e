package modcache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_Load(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "util.js")
	require.NoError(t, os.WriteFile(path, []byte("export const a = 1"), 0600))

	c := New()

	mod, err := c.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "export const a = 1", string(mod.Contents))
	assert.Equal(t, Stats{Misses: 1}, c.Stats())

	again, err := c.Load(path)
	require.NoError(t, err)
	assert.Same(t, mod, again)
	assert.Equal(t, Stats{Hits: 1, Misses: 1}, c.Stats())
	assert.Equal(t, 1, c.Len())
}

func TestCache_Invalidation(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "util.js")
	require.NoError(t, os.WriteFile(path, []byte("export const a = 1"), 0600))

	c := New()
	_, err := c.Load(path)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("export const a = 22"), 0600))
	later := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(path, later, later))

	mod, err := c.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "export const a = 22", string(mod.Contents))
	assert.Equal(t, Stats{Misses: 2}, c.Stats())
}

func TestCache_Missing(t *testing.T) {
	c := New()
	_, err := c.Load(filepath.Join(t.TempDir(), "missing.js"))
	assert.Error(t, err)
	assert.Equal(t, 0, c.Len())
}
