package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), DefaultFile)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, "pdf_pairs.json", cfg.Files.Pairs)
	assert.Equal(t, "links.json", cfg.Files.Links)
}

func TestLoadConfig_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
files:
  links: data/links.json
log:
  level: debug
repair:
  on_load: false
watch:
  debounce: 2s
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "pdf_pairs.json", cfg.Files.Pairs, "unset keys keep defaults")
	assert.Equal(t, "data/links.json", cfg.Files.Links)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.False(t, cfg.Repair.OnLoad)
	assert.Equal(t, 2*time.Second, cfg.Watch.Debounce)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("STUDYLINK_PAIRS_FILE", "/tmp/pairs.json")
	t.Setenv("STUDYLINK_LINKS_FILE", "/tmp/links.json")
	t.Setenv("STUDYLINK_DB", "/tmp/snap.db")
	t.Setenv("STUDYLINK_LOG_LEVEL", "WARN")

	cfg, err := LoadConfig(writeConfig(t, "log:\n  level: debug\n"))
	require.NoError(t, err)
	assert.Equal(t, "/tmp/pairs.json", cfg.Files.Pairs)
	assert.Equal(t, "/tmp/links.json", cfg.Files.Links)
	assert.Equal(t, "/tmp/snap.db", cfg.Snapshot.DB)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadConfig_Invalid(t *testing.T) {
	t.Run("bad level", func(t *testing.T) {
		_, err := LoadConfig(writeConfig(t, "log:\n  level: loud\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Level")
	})

	t.Run("empty path", func(t *testing.T) {
		_, err := LoadConfig(writeConfig(t, "files:\n  pairs: \"\"\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Pairs")
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := writeConfig(t, "files: [\n")
		_, err := LoadConfig(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), path)
	})
}
