package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, 5, cfg.Search.MaxResults)
	require.Equal(t, 1440, cfg.Tracker.Capacity)
	require.Equal(t, StrategySequential, cfg.Search.Strategy)
	require.False(t, cfg.Search.Parallel())
}

func TestLoadYAMLWithEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
search:
  maxResults: 3
  strategy: parallel
index:
  stopWords: [and, with]
tracker:
  capacity: 10
`)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	t.Setenv("SP_TRACKER_CAPACITY", "20")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 3, cfg.Search.MaxResults)
	require.True(t, cfg.Search.Parallel())
	require.Equal(t, []string{"and", "with"}, cfg.Index.StopWords)
	require.Equal(t, 20, cfg.Tracker.Capacity)
	require.Equal(t, 8080, cfg.Server.Port)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("search:\n  strategy: random\n"), 0o644))
	_, err := Load(path)
	require.Error(t, err)

	t.Setenv("SP_SEARCH_MAX_RESULTS", "0")
	_, err = Load("")
	require.Error(t, err)
}

func TestValidateRateLimit(t *testing.T) {
	cfg := Default()
	cfg.Server.RateLimit.Enabled = true
	require.NoError(t, cfg.Validate())

	cfg.Server.RateLimit.Requests = 0
	require.ErrorContains(t, cfg.Validate(), "server.rateLimit")
}
