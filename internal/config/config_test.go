package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.LoadDefaults()

	assert.Equal(t, 2*time.Hour, cfg.SessionTimeout)
	assert.Equal(t, 15*time.Minute, cfg.LockoutDuration)
	assert.Equal(t, 3, cfg.LockoutThreshold)
	assert.False(t, cfg.RemoteEnabled)
	assert.True(t, cfg.AllowLocalFallback)
}

func TestParseJsonOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "conf.json")
	content := map[string]any{
		"database_dsn":     "postgres://u:p@localhost/esg",
		"remote_enabled":   true,
		"session_timeout":  "90m",
		"lockout_duration": "5m",
	}
	raw, err := json.Marshal(content)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, raw, 0o600))

	oldArgs := os.Args
	os.Args = []string{"esgkeeper", "-c", path}
	defer func() { os.Args = oldArgs }()

	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)

	assert.Equal(t, "postgres://u:p@localhost/esg", cfg.DatabaseDSN)
	assert.True(t, cfg.RemoteEnabled)
	assert.Equal(t, 90*time.Minute, cfg.SessionTimeout)
	assert.Equal(t, 5*time.Minute, cfg.LockoutDuration)
	// fields absent from the file keep their defaults
	assert.Equal(t, 3, cfg.LockoutThreshold)
}

func TestParseFlagsOverridesDefaults(t *testing.T) {
	oldArgs := os.Args
	os.Args = []string{"esgkeeper", "-d", "local.db", "-t", "60", "-n", "5"}
	defer func() { os.Args = oldArgs }()

	cfg := &Config{}
	cfg.LoadDefaults()
	parseFlags(cfg)

	assert.Equal(t, "local.db", cfg.DatabaseDSN)
	assert.Equal(t, time.Hour, cfg.SessionTimeout)
	assert.Equal(t, 5, cfg.LockoutThreshold)
}
