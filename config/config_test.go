package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
logging:
  level: debug
  format: json
classify:
  backend: gemini
  model: gemini-2.0-flash
redis:
  enabled: true
  host: cache.local
  port: "6380"
journal:
  path: notes.db
scheduler:
  interval_seconds: 5
ratelimit:
  classify_per_minute: 3
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "gemini", cfg.Classify.Backend)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, "cache.local:6380", cfg.Redis.Addr())
	assert.Equal(t, "notes.db", cfg.Journal.Path)
	assert.Equal(t, 5*time.Second, cfg.Scheduler.Interval())
	assert.Equal(t, 3, cfg.RateLimit.ClassifyPerMinute)

	// Unset keys fall back to defaults.
	assert.Equal(t, "stdout", cfg.Logging.Output)
	assert.Equal(t, 5, cfg.RateLimit.SummarizePerMinute)
	assert.Equal(t, 24, cfg.Summary.CacheTTLHours)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "static", cfg.Classify.Backend)
	assert.False(t, cfg.Redis.Enabled)
	assert.Empty(t, cfg.Journal.Path)
	assert.Equal(t, 30*time.Second, cfg.Scheduler.Interval())
	assert.Equal(t, 15, cfg.RateLimit.ClassifyPerMinute)
}
