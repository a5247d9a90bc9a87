package internal

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fallbackdb.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg, err := DefaultConfig()
	require.NoError(t, err)

	assert.Equal(t, "fallbackdb", cfg.AppName)
	assert.Equal(t, ".mockdb-data", cfg.Storage.Dir)
	assert.Len(t, cfg.Storage.DefaultTables, 10)
	assert.Zero(t, cfg.Latency.Min)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "127.0.0.1:5454", cfg.Server.Addr)
	assert.Equal(t, 30*time.Second, cfg.Server.Timeout)
	assert.Equal(t, 5*time.Minute, cfg.Server.IdleTimeout)
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
storage:
  dir: /var/lib/fallbackdb
  default_tables: [users, payments]
latency:
  min: 5ms
  max: 25ms
log:
  level: debug
  format: json
server:
  addr: 0.0.0.0:6000
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/fallbackdb", cfg.Storage.Dir)
	assert.Equal(t, []string{"users", "payments"}, cfg.Storage.DefaultTables)
	assert.Equal(t, 5*time.Millisecond, cfg.Latency.Min)
	assert.Equal(t, 25*time.Millisecond, cfg.Latency.Max)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "0.0.0.0:6000", cfg.Server.Addr)
	// untouched keys keep their defaults
	assert.Equal(t, "fallbackdb", cfg.AppName)
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	t.Setenv("FALLBACKDB_STORAGE_DIR", "/tmp/override")
	path := writeConfig(t, "storage:\n  dir: /from/file\n")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/override", cfg.Storage.Dir)
}

func TestLoadConfig_Errors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	path := writeConfig(t, "latency:\n  min: 50ms\n  max: 10ms\n")
	_, err = LoadConfig(path)
	require.Error(t, err)
}
