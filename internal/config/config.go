package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the mediasearch service configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Database  DatabaseConfig  `yaml:"database"`
	Primary   PrimaryConfig   `yaml:"primary"`
	Fallback  FallbackConfig  `yaml:"fallback"`
	Indexer   IndexerConfig   `yaml:"indexer"`
	Search    SearchConfig    `yaml:"search"`
	Expansion ExpansionConfig `yaml:"expansion"`
	Auth      AuthConfig      `yaml:"auth"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds Redis connection settings for the primary index.
type DatabaseConfig struct {
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// PrimaryConfig holds primary index settings.
type PrimaryConfig struct {
	Enabled           bool   `yaml:"enabled"`
	KeyPrefix         string `yaml:"key_prefix"`
	CreateTimeoutSec  int    `yaml:"create_timeout_sec"`
	DeleteWaitSec     int    `yaml:"delete_wait_sec"`
	MaxCreateAttempts int    `yaml:"max_create_attempts"`
}

// FallbackConfig holds fallback document store settings.
type FallbackConfig struct {
	Enabled        bool    `yaml:"enabled"`
	Driver         string  `yaml:"driver"` // sqlite, postgres (default: sqlite)
	DSN            string  `yaml:"dsn"`
	FuzzyThreshold float64 `yaml:"fuzzy_threshold"`
	AutoMigrate    bool    `yaml:"auto_migrate"`
	MaxOpenConns   int     `yaml:"max_open_conns"`
}

// IndexerConfig holds batch indexing settings.
type IndexerConfig struct {
	BatchSize      int  `yaml:"batch_size"`
	BatchDelayMs   int  `yaml:"batch_delay_ms"`
	MirrorFallback bool `yaml:"mirror_fallback"`
}

// SearchConfig holds search orchestration settings.
type SearchConfig struct {
	MaxParallel     int    `yaml:"max_parallel"`
	ExpandMinChars  int    `yaml:"expand_min_chars"`
	DefaultPageSize int    `yaml:"default_page_size"`
	MaxPageSize     int    `yaml:"max_page_size"`
	DefaultBackend  string `yaml:"default_backend"` // primary, fallback (default: primary)
	AutoIndex       bool   `yaml:"auto_index"`
}

// ExpansionConfig holds LLM query expansion settings.
type ExpansionConfig struct {
	Enabled    bool   `yaml:"enabled"`
	APIKey     string `yaml:"api_key"`
	BaseURL    string `yaml:"base_url"`
	Model      string `yaml:"model"`
	MaxQueries int    `yaml:"max_queries"`
	CacheSize  int    `yaml:"cache_size"`
	TimeoutSec int    `yaml:"timeout_sec"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Primary.KeyPrefix == "" {
		c.Primary.KeyPrefix = "mediasearch:"
	}
	if c.Primary.CreateTimeoutSec <= 0 {
		c.Primary.CreateTimeoutSec = 120
	}
	if c.Primary.DeleteWaitSec <= 0 {
		c.Primary.DeleteWaitSec = 10
	}
	if c.Primary.MaxCreateAttempts <= 0 {
		c.Primary.MaxCreateAttempts = 3
	}
	if c.Fallback.Driver == "" {
		c.Fallback.Driver = "sqlite"
	}
	if c.Fallback.FuzzyThreshold <= 0 {
		c.Fallback.FuzzyThreshold = 0.9
	}
	if c.Indexer.BatchSize <= 0 {
		c.Indexer.BatchSize = 10
	}
	if c.Indexer.BatchDelayMs < 0 {
		c.Indexer.BatchDelayMs = 0
	}
	if c.Search.MaxParallel <= 0 {
		c.Search.MaxParallel = 5
	}
	if c.Search.ExpandMinChars <= 0 {
		c.Search.ExpandMinChars = 3
	}
	if c.Search.DefaultPageSize <= 0 {
		c.Search.DefaultPageSize = 20
	}
	if c.Search.MaxPageSize <= 0 {
		c.Search.MaxPageSize = 100
	}
	if c.Search.DefaultBackend == "" {
		c.Search.DefaultBackend = "primary"
	}
	if c.Expansion.Model == "" {
		c.Expansion.Model = "gpt-4o-mini"
	}
	if c.Expansion.MaxQueries <= 0 {
		c.Expansion.MaxQueries = 3
	}
	if c.Expansion.CacheSize <= 0 {
		c.Expansion.CacheSize = 1000
	}
	if c.Expansion.TimeoutSec <= 0 {
		c.Expansion.TimeoutSec = 5
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if !c.Primary.Enabled && !c.Fallback.Enabled {
		return fmt.Errorf("at least one of primary.enabled and fallback.enabled is required")
	}
	if c.Primary.Enabled && len(c.Database.Addrs) == 0 {
		return fmt.Errorf("database.addrs is required when primary is enabled")
	}
	if c.Fallback.Enabled {
		switch c.Fallback.Driver {
		case "sqlite", "postgres":
		default:
			return fmt.Errorf("fallback.driver must be \"sqlite\" or \"postgres\", got %q", c.Fallback.Driver)
		}
		if c.Fallback.DSN == "" {
			return fmt.Errorf("fallback.dsn is required when fallback is enabled")
		}
	}
	if c.Fallback.FuzzyThreshold > 1 {
		return fmt.Errorf("fallback.fuzzy_threshold must be in (0, 1], got %g", c.Fallback.FuzzyThreshold)
	}
	switch c.Search.DefaultBackend {
	case "primary", "fallback":
	default:
		return fmt.Errorf("search.default_backend must be \"primary\" or \"fallback\", got %q", c.Search.DefaultBackend)
	}
	if c.Search.DefaultPageSize > c.Search.MaxPageSize {
		return fmt.Errorf("search.default_page_size %d exceeds search.max_page_size %d",
			c.Search.DefaultPageSize, c.Search.MaxPageSize)
	}
	if c.Expansion.Enabled && c.Expansion.APIKey == "" {
		return fmt.Errorf("expansion.api_key is required when expansion is enabled")
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
