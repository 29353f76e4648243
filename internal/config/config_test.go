package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 30*time.Second, cfg.UpstreamTimeout)
}

func TestFromEnvReadsUpstreams(t *testing.T) {
	t.Setenv(EnvBooksAPI, " https://example.com/books/ ")
	t.Setenv(EnvRemoteConfigAPI, "https://example.com/remote_config")
	t.Setenv(EnvPort, "9090")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "https://example.com/books/", cfg.BooksAPI)
	assert.Equal(t, "https://example.com/remote_config", cfg.RemoteConfigAPI)
	assert.Equal(t, "9090", cfg.Port)
}

func TestFromEnvAppliesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
port: "7070"
log_level: debug
allowed_origins:
  - https://admin.example.com
upstream_timeout: 10s
`), 0o600))
	t.Setenv(EnvConfigFile, path)

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "7070", cfg.Port)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, []string{"https://admin.example.com"}, cfg.AllowedOrigins)
	assert.Equal(t, 10*time.Second, cfg.UpstreamTimeout)
	// Unset file fields keep their defaults.
	assert.Equal(t, 30*time.Second, cfg.ReadTimeout)
}

func TestFromEnvRejectsBadDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte("read_timeout: soon\n"), 0o600))
	t.Setenv(EnvConfigFile, path)

	_, err := FromEnv()
	assert.Error(t, err)
}

func TestFromEnvMissingFile(t *testing.T) {
	t.Setenv(EnvConfigFile, filepath.Join(t.TempDir(), "absent.yaml"))
	_, err := FromEnv()
	assert.Error(t, err)
}
