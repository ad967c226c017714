package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	chdirEmpty(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://api.audnex.us", cfg.Catalog.BaseURL)
	assert.Equal(t, 30, cfg.Catalog.TimeoutSecs)
	assert.Equal(t, 10.0, cfg.Catalog.RatePerSec)
	assert.Equal(t, 3, cfg.Catalog.RetryAttempts)
	assert.Equal(t, "ffprobe", cfg.Probe.FfprobePath)
	assert.Equal(t, 4, cfg.Batch.MaxConcurrentItems)
	assert.Equal(t, "quill.db", cfg.Store.Path)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Empty(t, cfg.Rules.File)
}

func TestLoadEnvOverride(t *testing.T) {
	chdirEmpty(t)
	t.Setenv("QUILL_CATALOG_BASE_URL", "http://localhost:8081")
	t.Setenv("QUILL_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8081", cfg.Catalog.BaseURL)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadConfigFile(t *testing.T) {
	dir := chdirEmpty(t)
	content := `catalog:
  timeout_secs: 5
batch:
  max_concurrent_items: 12
`
	require.NoError(t, os.WriteFile(dir+"/config.yaml", []byte(content), 0o644))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Catalog.TimeoutSecs)
	assert.Equal(t, 12, cfg.Batch.MaxConcurrentItems)
	// Untouched keys keep their defaults.
	assert.Equal(t, "https://api.audnex.us", cfg.Catalog.BaseURL)
}

func TestLoadClampsBatchConcurrency(t *testing.T) {
	dir := chdirEmpty(t)
	content := `batch:
  max_concurrent_items: 0
`
	require.NoError(t, os.WriteFile(dir+"/config.yaml", []byte(content), 0o644))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.Batch.MaxConcurrentItems)
}

func TestInitLoggerRejectsBadLevel(t *testing.T) {
	assert.Error(t, InitLogger(LogConfig{Level: "shouty", Format: "console"}))
	assert.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
}

// chdirEmpty runs the test from an empty directory so a developer's
// local config.yaml never leaks into assertions.
func chdirEmpty(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
	return dir
}
