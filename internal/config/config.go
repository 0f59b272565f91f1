// Package config handles loading and validating the application configuration
// from YAML files with environment variable substitution.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/aaearon/i4-scout/internal/match"
	domain "github.com/aaearon/i4-scout/pkg/types"
)

// Config is the top-level application configuration.
type Config struct {
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Catalog   CatalogConfig   `yaml:"catalog"`
	Scoring   ScoringConfig   `yaml:"scoring"`
	Lifecycle LifecycleConfig `yaml:"lifecycle"`
	Scrape    ScrapeConfig    `yaml:"scrape"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// DatabaseConfig defines PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
	PoolSize int    `yaml:"pool_size"`
}

// DSN returns a PostgreSQL connection string.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		d.Host, d.Port, d.Name, d.User, d.Password, d.SSLMode,
	)
}

// RedisConfig defines the retrieval cache backend settings.
type RedisConfig struct {
	Enabled   bool          `yaml:"enabled"`
	Addr      string        `yaml:"addr"`
	SearchTTL time.Duration `yaml:"search_ttl"`
	DetailTTL time.Duration `yaml:"detail_ttl"`
}

// CatalogConfig locates the option catalog file.
type CatalogConfig struct {
	Path string `yaml:"path"`
}

// ScoringConfig defines the scoring weights.
type ScoringConfig struct {
	RequiredWeight   float64 `yaml:"required_weight"`
	NiceToHaveWeight float64 `yaml:"nice_to_have_weight"`
}

// Weights converts the config into match weights.
func (s *ScoringConfig) Weights() match.Weights {
	return match.Weights{Required: s.RequiredWeight, NiceToHave: s.NiceToHaveWeight}
}

// LifecycleConfig defines delisting behavior.
type LifecycleConfig struct {
	DelistAfterMisses int `yaml:"delist_after_misses"`
}

// ScrapeConfig defines scrape pass behavior per source.
type ScrapeConfig struct {
	FetchInterval time.Duration  `yaml:"fetch_interval"`
	Sources       []SourceConfig `yaml:"sources"`
}

// SourceConfig defines one marketplace to scrape.
type SourceConfig struct {
	Source     domain.Source `yaml:"source"`
	SearchURLs []string      `yaml:"search_urls"`
	Interval   time.Duration `yaml:"interval"`
}

// MetricsConfig defines the Prometheus exposition endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// Load reads and parses a YAML config file, performing environment variable
// substitution and validation.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // config path from trusted CLI flag
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables in the YAML content.
	expanded := os.ExpandEnv(string(data))

	cfg := &Config{}
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	applyDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	applyDatabaseDefaults(&cfg.Database)
	applyRedisDefaults(&cfg.Redis)
	applyCatalogDefaults(&cfg.Catalog)
	applyScoringDefaults(&cfg.Scoring)
	applyLifecycleDefaults(&cfg.Lifecycle)
	applyScrapeDefaults(&cfg.Scrape)
	applyMetricsDefaults(&cfg.Metrics)
	applyLoggingDefaults(&cfg.Logging)
}

func applyDatabaseDefaults(d *DatabaseConfig) {
	if d.Port == 0 {
		d.Port = 5432
	}
	if d.SSLMode == "" {
		d.SSLMode = "disable"
	}
	if d.PoolSize == 0 {
		d.PoolSize = 10
	}
}

func applyRedisDefaults(r *RedisConfig) {
	if r.Addr == "" {
		r.Addr = "localhost:6379"
	}
	if r.SearchTTL == 0 {
		r.SearchTTL = 1 * time.Hour
	}
	if r.DetailTTL == 0 {
		r.DetailTTL = 24 * time.Hour
	}
}

func applyCatalogDefaults(c *CatalogConfig) {
	if c.Path == "" {
		c.Path = "options.yaml"
	}
}

func applyScoringDefaults(s *ScoringConfig) {
	if s.RequiredWeight == 0 {
		s.RequiredWeight = 75
	}
	if s.NiceToHaveWeight == 0 {
		s.NiceToHaveWeight = 25
	}
}

func applyLifecycleDefaults(l *LifecycleConfig) {
	if l.DelistAfterMisses == 0 {
		l.DelistAfterMisses = 2
	}
}

func applyScrapeDefaults(s *ScrapeConfig) {
	if s.FetchInterval == 0 {
		s.FetchInterval = 2 * time.Second
	}
	for i := range s.Sources {
		if s.Sources[i].Interval == 0 {
			s.Sources[i].Interval = 1 * time.Hour
		}
	}
}

func applyMetricsDefaults(m *MetricsConfig) {
	if m.Addr == "" {
		m.Addr = ":9090"
	}
}

func applyLoggingDefaults(l *LoggingConfig) {
	if l.Level == "" {
		l.Level = "info"
	}
	if l.Format == "" {
		l.Format = "text"
	}
}

func validate(cfg *Config) error {
	var errs []error

	if cfg.Database.Host == "" {
		errs = append(errs, fmt.Errorf("database.host is required"))
	}
	if cfg.Database.Name == "" {
		errs = append(errs, fmt.Errorf("database.name is required"))
	}
	if cfg.Database.User == "" {
		errs = append(errs, fmt.Errorf("database.user is required"))
	}

	if cfg.Scoring.RequiredWeight < 0 || cfg.Scoring.NiceToHaveWeight < 0 {
		errs = append(errs, fmt.Errorf("scoring weights must be non-negative"))
	}
	if cfg.Lifecycle.DelistAfterMisses < 1 {
		errs = append(errs, fmt.Errorf("lifecycle.delist_after_misses must be at least 1"))
	}

	seen := make(map[domain.Source]bool)
	for i, src := range cfg.Scrape.Sources {
		if src.Source == "" {
			errs = append(errs, fmt.Errorf("scrape.sources[%d].source is required", i))
			continue
		}
		if seen[src.Source] {
			errs = append(errs, fmt.Errorf("scrape.sources: duplicate source %q", src.Source))
		}
		seen[src.Source] = true
		if len(src.SearchURLs) == 0 {
			errs = append(errs, fmt.Errorf("scrape.sources[%d]: search_urls is required", i))
		}
	}

	return errors.Join(errs...)
}
