package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultEndpoint is the public SpaceX GraphQL API.
const DefaultEndpoint = "https://spacex-production.up.railway.app/"

// Storage backends.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Launch list modes.
const (
	ModePast     = "past"
	ModeUpcoming = "upcoming"
)

// Config holds all launchdeck configuration.
type Config struct {
	// GraphQL endpoint serving launchesPast / launchesUpcoming
	Endpoint string `yaml:"endpoint"`

	Query   QueryConfig   `yaml:"query"`
	Table   TableConfig   `yaml:"table"`
	Storage StorageConfig `yaml:"storage"`
	Logging LoggingConfig `yaml:"logging"`
}

// QueryConfig configures the launch query client.
type QueryConfig struct {
	Limit    int    `yaml:"limit"`     // rows per fetched window
	Timeout  string `yaml:"timeout"`   // per-request timeout, empty = none
	Cache    bool   `yaml:"cache"`     // keep a response cache
	CacheTTL string `yaml:"cache_ttl"` // how long a cached window stays fresh
}

// TableConfig configures the presentation.
type TableConfig struct {
	PageSize int    `yaml:"page_size"`
	Timezone string `yaml:"timezone"` // IANA name or "Local"
	Mode     string `yaml:"mode"`     // past, upcoming
	DarkMode bool   `yaml:"dark_mode"`
}

// StorageConfig selects the favorites backend.
type StorageConfig struct {
	Backend string      `yaml:"backend"`
	Path    string      `yaml:"path"` // file / sqlite location, empty = default under DefaultDir
	Redis   RedisConfig `yaml:"redis"`
}

// RedisConfig configures the redis backend.
type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// DefaultDir returns ~/.launchdeck, falling back to the working directory.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".launchdeck"
	}
	return filepath.Join(home, ".launchdeck")
}

// DefaultConfigPath returns the config location used when --config is not set.
func DefaultConfigPath() string {
	return filepath.Join(DefaultDir(), "config.yaml")
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Endpoint: DefaultEndpoint,
		Query: QueryConfig{
			Limit:    30,
			Timeout:  "30s",
			Cache:    true,
			CacheTTL: "10m",
		},
		Table: TableConfig{
			PageSize: 10,
			Timezone: "Local",
			Mode:     ModePast,
		},
		Storage: StorageConfig{
			Backend: BackendFile,
			Redis: RedisConfig{
				Address: "localhost:6379",
			},
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("LAUNCHDECK_ENDPOINT"); v != "" {
		c.Endpoint = v
	}
	if v := os.Getenv("LAUNCHDECK_STORE"); v != "" {
		c.Storage.Backend = v
	}
	if v := os.Getenv("LAUNCHDECK_STORE_PATH"); v != "" {
		c.Storage.Path = v
	}
	if v := os.Getenv("LAUNCHDECK_REDIS_ADDR"); v != "" {
		c.Storage.Redis.Address = v
	}
	if v := os.Getenv("LAUNCHDECK_PAGE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Table.PageSize = n
		}
	}
	if os.Getenv("LAUNCHDECK_DARK_MODE") == "1" {
		c.Table.DarkMode = true
	}
}

// GetQueryTimeout returns the request timeout. Zero means no timeout.
func (c *Config) GetQueryTimeout() time.Duration {
	if c.Query.Timeout == "" {
		return 0
	}
	d, err := time.ParseDuration(c.Query.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// GetCacheTTL returns the response cache TTL.
func (c *Config) GetCacheTTL() time.Duration {
	d, err := time.ParseDuration(c.Query.CacheTTL)
	if err != nil {
		return 10 * time.Minute
	}
	return d
}

// Location returns the display time zone.
func (c *Config) Location() *time.Location {
	if c.Table.Timezone == "" || c.Table.Timezone == "Local" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Table.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// StoragePath returns the configured backend path or the default for the backend.
func (c *Config) StoragePath() string {
	if c.Storage.Path != "" {
		return c.Storage.Path
	}
	switch c.Storage.Backend {
	case BackendSQLite:
		return filepath.Join(DefaultDir(), "launchdeck.db")
	default:
		return filepath.Join(DefaultDir(), "store")
	}
}

// LogFile returns the interactive-mode log file.
func (c *Config) LogFile() string {
	if c.Logging.File != "" {
		return c.Logging.File
	}
	return filepath.Join(DefaultDir(), "logs", "launchdeck.log")
}

// ValidBackends lists all supported storage backends.
var ValidBackends = []string{BackendFile, BackendSQLite, BackendRedis, BackendMemory}

// Validate validates the configuration.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Endpoint)
	if c.Endpoint == "" || err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid endpoint %q: must be an http(s) URL", c.Endpoint)
	}
	if c.Query.Limit <= 0 {
		return fmt.Errorf("query.limit must be positive, got %d", c.Query.Limit)
	}
	if c.Table.PageSize <= 0 {
		return fmt.Errorf("table.page_size must be positive, got %d", c.Table.PageSize)
	}
	if c.Query.Timeout != "" {
		if _, err := time.ParseDuration(c.Query.Timeout); err != nil {
			return fmt.Errorf("invalid query.timeout %q: %w", c.Query.Timeout, err)
		}
	}
	if c.Query.CacheTTL != "" {
		if _, err := time.ParseDuration(c.Query.CacheTTL); err != nil {
			return fmt.Errorf("invalid query.cache_ttl %q: %w", c.Query.CacheTTL, err)
		}
	}
	if tz := c.Table.Timezone; tz != "" && tz != "Local" {
		if _, err := time.LoadLocation(tz); err != nil {
			return fmt.Errorf("invalid table.timezone %q: %w", tz, err)
		}
	}
	if c.Table.Mode != ModePast && c.Table.Mode != ModeUpcoming {
		return fmt.Errorf("invalid table.mode: %s (valid: %s, %s)", c.Table.Mode, ModePast, ModeUpcoming)
	}

	validBackend := false
	for _, b := range ValidBackends {
		if c.Storage.Backend == b {
			validBackend = true
			break
		}
	}
	if !validBackend {
		return fmt.Errorf("invalid storage backend: %s (valid: %v)", c.Storage.Backend, ValidBackends)
	}

	return nil
}
