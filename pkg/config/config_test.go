package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bsidebar/insights/pkg/kvstore"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "insights.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Empty(t, cfg.Endpoint)
	assert.Equal(t, 30*time.Second, cfg.Interval)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 15*time.Second, cfg.RetryDelay)
	assert.Equal(t, 100, cfg.MaxRetries)
	assert.True(t, cfg.Enabled)
	assert.False(t, cfg.DevMode)
	assert.Equal(t, kvstore.DriverFile, cfg.Store.Driver)
	assert.Equal(t, "state.yaml", filepath.Base(cfg.Store.Path))
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
endpoint: https://insights.example.com/api/evaluate
interval: 1m
retry_delay: 2s
max_retries: 5
dev_mode: true
store:
  driver: sqlite
  path: /tmp/insights.db
bookmarks:
  path: /tmp/Bookmarks
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://insights.example.com/api/evaluate", cfg.Endpoint)
	assert.Equal(t, time.Minute, cfg.Interval)
	assert.Equal(t, 2*time.Second, cfg.RetryDelay)
	assert.Equal(t, 5, cfg.MaxRetries)
	assert.True(t, cfg.DevMode)
	assert.Equal(t, kvstore.Options{Driver: "sqlite", Path: "/tmp/insights.db"}, cfg.StoreOptions())
	assert.Equal(t, "/tmp/Bookmarks", cfg.Bookmarks.Path)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
endpoint: https://file.example.com/api/evaluate
store:
  driver: memory
`)
	t.Setenv("INSIGHTS_ENDPOINT", "https://env.example.com/api/evaluate")
	t.Setenv("INSIGHTS_STORE_DRIVER", "redis")
	t.Setenv("INSIGHTS_STORE_REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("INSIGHTS_MAX_RETRIES", "7")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://env.example.com/api/evaluate", cfg.Endpoint)
	assert.Equal(t, kvstore.DriverRedis, cfg.Store.Driver)
	assert.Equal(t, "redis://localhost:6379/0", cfg.Store.RedisURL)
	assert.Equal(t, 7, cfg.MaxRetries)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestLoad_Invalid(t *testing.T) {
	path := writeConfig(t, `
endpoint: ftp://example.com
store:
  driver: etcd
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "endpoint must be an http(s) URL")
	assert.Contains(t, err.Error(), `unknown store.driver "etcd"`)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Interval:       time.Second,
			RequestTimeout: time.Second,
			RetryDelay:     time.Second,
			MaxRetries:     1,
			Store:          StoreConfig{Driver: kvstore.DriverMemory},
		}
	}

	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{name: "valid", modify: func(*Config) {}},
		{name: "zero retries", modify: func(c *Config) { c.MaxRetries = 0 }},
		{name: "negative retries", modify: func(c *Config) { c.MaxRetries = -1 }, wantErr: "max_retries"},
		{name: "zero interval", modify: func(c *Config) { c.Interval = 0 }, wantErr: "interval"},
		{name: "sqlite without path", modify: func(c *Config) { c.Store.Driver = kvstore.DriverSQLite }, wantErr: "store.path"},
		{name: "redis without url", modify: func(c *Config) { c.Store.Driver = kvstore.DriverRedis }, wantErr: "store.redis_url"},
		{name: "relative endpoint", modify: func(c *Config) { c.Endpoint = "/api/evaluate" }, wantErr: "endpoint"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := valid()
			tt.modify(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
