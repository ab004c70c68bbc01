package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Endpoint != DefaultEndpoint {
		t.Errorf("expected Endpoint=%s, got %s", DefaultEndpoint, cfg.Endpoint)
	}
	if cfg.Query.Limit != 30 {
		t.Errorf("expected Limit=30, got %d", cfg.Query.Limit)
	}
	if cfg.Table.PageSize != 10 {
		t.Errorf("expected PageSize=10, got %d", cfg.Table.PageSize)
	}
	if cfg.Storage.Backend != BackendFile {
		t.Errorf("expected Backend=file, got %s", cfg.Storage.Backend)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestConfig_SaveLoad(t *testing.T) {
	t.Setenv("LAUNCHDECK_ENDPOINT", "")
	t.Setenv("LAUNCHDECK_STORE", "")

	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := DefaultConfig()
	cfg.Endpoint = "http://localhost:4000/graphql"
	cfg.Storage.Backend = BackendSQLite
	cfg.Table.PageSize = 25

	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:4000/graphql", loaded.Endpoint)
	assert.Equal(t, BackendSQLite, loaded.Storage.Backend)
	assert.Equal(t, 25, loaded.Table.PageSize)
	assert.Equal(t, 30, loaded.Query.Limit, "unset fields keep defaults")
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	t.Setenv("LAUNCHDECK_ENDPOINT", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultEndpoint, cfg.Endpoint)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, writeFile(path, "endpoint: [unterminated"))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty endpoint", func(c *Config) { c.Endpoint = "" }},
		{"non-http endpoint", func(c *Config) { c.Endpoint = "ftp://example.com" }},
		{"zero limit", func(c *Config) { c.Query.Limit = 0 }},
		{"negative page size", func(c *Config) { c.Table.PageSize = -1 }},
		{"bad timeout", func(c *Config) { c.Query.Timeout = "soon" }},
		{"bad ttl", func(c *Config) { c.Query.CacheTTL = "forever" }},
		{"bad timezone", func(c *Config) { c.Table.Timezone = "Mars/Olympus" }},
		{"bad mode", func(c *Config) { c.Table.Mode = "sideways" }},
		{"bad backend", func(c *Config) { c.Storage.Backend = "etcd" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestConfig_Durations(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 30*time.Second, cfg.GetQueryTimeout())
	assert.Equal(t, 10*time.Minute, cfg.GetCacheTTL())

	cfg.Query.Timeout = ""
	assert.Equal(t, time.Duration(0), cfg.GetQueryTimeout())
}

func TestConfig_Location(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, time.Local, cfg.Location())

	cfg.Table.Timezone = "UTC"
	assert.Equal(t, "UTC", cfg.Location().String())
}

func TestConfig_StoragePath(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, filepath.Join(DefaultDir(), "store"), cfg.StoragePath())

	cfg.Storage.Backend = BackendSQLite
	assert.Equal(t, filepath.Join(DefaultDir(), "launchdeck.db"), cfg.StoragePath())

	cfg.Storage.Path = "/tmp/custom.db"
	assert.Equal(t, "/tmp/custom.db", cfg.StoragePath())
}

func TestConfig_LoggingOptions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Logging.File = "/tmp/ld.log"

	opts := cfg.LoggingOptions(true, true)
	assert.True(t, opts.Verbose)
	assert.Equal(t, "/tmp/ld.log", opts.File)

	opts = cfg.LoggingOptions(false, false)
	assert.Empty(t, opts.File)
}
