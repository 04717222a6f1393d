package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "Mozilla/5.0", cfg.HTTP.UserAgent)
	assert.Equal(t, 3, cfg.HTTP.MaxRetries)
	assert.Equal(t, 500*time.Millisecond, cfg.HTTP.RetryDelay)
	assert.Equal(t, "https://www.findagrave.com", cfg.Site.BaseURL)
	assert.Equal(t, 20, cfg.Search.PageSize)
	assert.Equal(t, "sqlite", cfg.DB.Driver)
	assert.Equal(t, "graves.db", cfg.DB.DSN)
	assert.True(t, cfg.Scrape.FollowMerged)
}

func TestLoadWithFileOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "graver.yaml")
	configYAML := `
http:
  user_agent: test-agent
  max_retries: 5
  retry_delay: 250ms
db:
  dsn: /tmp/test.db
scrape:
  delay: 2s
  follow_merged: false
`
	require.NoError(t, os.WriteFile(path, []byte(configYAML), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "test-agent", cfg.HTTP.UserAgent)
	assert.Equal(t, 5, cfg.HTTP.MaxRetries)
	assert.Equal(t, 250*time.Millisecond, cfg.HTTP.RetryDelay)
	assert.Equal(t, "/tmp/test.db", cfg.DB.DSN)
	assert.Equal(t, 2*time.Second, cfg.Scrape.Delay)
	assert.False(t, cfg.Scrape.FollowMerged)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("GRAVER_HTTP_MAX_RETRIES", "7")
	t.Setenv("GRAVER_DB_DRIVER", "sqlserver")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.HTTP.MaxRetries)
	assert.Equal(t, "sqlserver", cfg.DB.Driver)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base, err := Load("")
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative retries", func(c *Config) { c.HTTP.MaxRetries = -1 }},
		{"zero timeout", func(c *Config) { c.HTTP.Timeout = 0 }},
		{"empty base url", func(c *Config) { c.Site.BaseURL = "" }},
		{"zero page size", func(c *Config) { c.Search.PageSize = 0 }},
		{"unknown driver", func(c *Config) { c.DB.Driver = "postgres" }},
		{"jitter too large", func(c *Config) { c.Scrape.Jitter = 1.5 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
