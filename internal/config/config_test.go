package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rpggio/storyverse/internal/config"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("STORYVERSE_CONFIG_PATH", "")
	cfg, err := config.Load()
	require.NoError(t, err)
	require.Equal(t, config.Default(), cfg)
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storyverse.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
db:
  path: /data/sv.db
gateway:
  latency: 20ms
  failure_rate: 0.25
search:
  debounce: 1s
analytics:
  days: 30
`), 0o644))

	t.Setenv("STORYVERSE_CONFIG_PATH", path)
	t.Setenv("STORYVERSE_LOG_LEVEL", "debug")
	t.Setenv("STORYVERSE_SEARCH_DEBOUNCE", "0s")

	cfg, err := config.Load()
	require.NoError(t, err)
	require.Equal(t, "/data/sv.db", cfg.DB.Path)
	require.Equal(t, 20*time.Millisecond, cfg.Gateway.Latency)
	require.Equal(t, 0.25, cfg.Gateway.FailureRate)
	require.Equal(t, uint64(3), cfg.Gateway.MaxRetries)
	require.Equal(t, 30, cfg.Analytics.Days)
	require.Equal(t, "debug", cfg.Log.Level)
	require.Zero(t, cfg.Search.Debounce)
}

func TestLoad_InvalidEnv(t *testing.T) {
	t.Setenv("STORYVERSE_GATEWAY_LATENCY", "soon")
	_, err := config.Load()
	require.ErrorContains(t, err, "STORYVERSE_GATEWAY_LATENCY")
}

func TestLoad_FailureRateOutOfRange(t *testing.T) {
	t.Setenv("STORYVERSE_GATEWAY_FAILURE_RATE", "1.5")
	_, err := config.Load()
	require.ErrorContains(t, err, "failure_rate")
}

func TestValidate_AnalyticsDaysBounded(t *testing.T) {
	cfg := config.Default()
	cfg.Analytics.Days = 1 << 30
	require.ErrorContains(t, cfg.Validate(), "analytics days")

	cfg.Analytics.Days = 366
	require.NoError(t, cfg.Validate())
}

func TestLoad_MissingFile(t *testing.T) {
	t.Setenv("STORYVERSE_CONFIG_PATH", filepath.Join(t.TempDir(), "absent.yaml"))
	_, err := config.Load()
	require.ErrorContains(t, err, "read config file")
}
