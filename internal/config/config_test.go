package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 4, cfg.Indexer.Workers)
	assert.Equal(t, 100, cfg.Indexer.ChunkSize)
	assert.Equal(t, 5*time.Minute, cfg.Indexer.ChunkTimeout.Std())
	assert.Equal(t, 1000, cfg.Cache.MaxMemoryEntries)
	assert.Equal(t, 24*time.Hour, cfg.Cache.DiskTTL.Std())
	assert.True(t, cfg.Cache.Enabled)
	assert.True(t, cfg.Scanner.UseGitignore)
}

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_OverridesLayerOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scipdex.yaml")
	content := `
indexer:
  workers: 8
  chunk_timeout: 30s
cache:
  enabled: false
scanner:
  includes:
    - "src/**/*.go"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8, cfg.Indexer.Workers)
	assert.Equal(t, 30*time.Second, cfg.Indexer.ChunkTimeout.Std())
	assert.False(t, cfg.Cache.Enabled)
	assert.Equal(t, []string{"src/**/*.go"}, cfg.Scanner.Includes)

	// Untouched fields keep their defaults.
	assert.Equal(t, 100, cfg.Indexer.ChunkSize)
	assert.Equal(t, ".scipdex_cache", cfg.Cache.Dir)
}

func TestLoad_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scipdex.yaml")
	require.NoError(t, os.WriteFile(path, []byte("indexer: [not a map]"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultFileName)

	cfg := Default()
	cfg.Indexer.Workers = 2
	require.NoError(t, cfg.Save(path))

	loaded, err := LoadFromDir(dir)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
