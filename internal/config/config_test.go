package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aaearon/i4-scout/internal/match"
	domain "github.com/aaearon/i4-scout/pkg/types"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name      string
		yaml      string
		envVars   map[string]string
		wantErr   string
		checkFunc func(t *testing.T, cfg *Config)
	}{
		{
			name: "valid minimal config",
			yaml: `
database:
  host: localhost
  name: i4scout
  user: scout
scrape:
  sources:
    - source: mobile.de
      search_urls:
        - https://suchen.mobile.de/fahrzeuge/search.html?ms=3500%3B%3B%3Bi4
`,
			checkFunc: func(t *testing.T, cfg *Config) {
				t.Helper()
				assert.Equal(t, "localhost", cfg.Database.Host)
				assert.Equal(t, "i4scout", cfg.Database.Name)
				assert.Equal(t, "scout", cfg.Database.User)
				require.Len(t, cfg.Scrape.Sources, 1)
				assert.Equal(t, domain.Source("mobile.de"), cfg.Scrape.Sources[0].Source)
				assert.Len(t, cfg.Scrape.Sources[0].SearchURLs, 1)
			},
		},
		{
			name: "defaults applied for optional fields",
			yaml: `
database:
  host: localhost
  name: i4scout
  user: scout
scrape:
  sources:
    - source: mobile.de
      search_urls:
        - https://example.com/search
`,
			checkFunc: func(t *testing.T, cfg *Config) {
				t.Helper()
				assert.Equal(t, 5432, cfg.Database.Port)
				assert.Equal(t, "disable", cfg.Database.SSLMode)
				assert.Equal(t, 10, cfg.Database.PoolSize)
				assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
				assert.Equal(t, 1*time.Hour, cfg.Redis.SearchTTL)
				assert.Equal(t, 24*time.Hour, cfg.Redis.DetailTTL)
				assert.Equal(t, "options.yaml", cfg.Catalog.Path)
				assert.Equal(t, 75.0, cfg.Scoring.RequiredWeight)
				assert.Equal(t, 25.0, cfg.Scoring.NiceToHaveWeight)
				assert.Equal(t, 2, cfg.Lifecycle.DelistAfterMisses)
				assert.Equal(t, 2*time.Second, cfg.Scrape.FetchInterval)
				assert.Equal(t, 1*time.Hour, cfg.Scrape.Sources[0].Interval)
				assert.Equal(t, ":9090", cfg.Metrics.Addr)
				assert.Equal(t, "info", cfg.Logging.Level)
				assert.Equal(t, "text", cfg.Logging.Format)
			},
		},
		{
			name: "env var substitution",
			yaml: `
database:
  host: localhost
  name: i4scout
  user: scout
  password: "${TEST_DB_PASSWORD}"
scrape:
  sources:
    - source: mobile.de
      search_urls:
        - https://example.com/search
`,
			envVars: map[string]string{
				"TEST_DB_PASSWORD": "secret123",
			},
			checkFunc: func(t *testing.T, cfg *Config) {
				t.Helper()
				assert.Equal(t, "secret123", cfg.Database.Password)
			},
		},
		{
			name: "missing required database.host",
			yaml: `
database:
  name: i4scout
  user: scout
scrape:
  sources:
    - source: mobile.de
      search_urls:
        - https://example.com/search
`,
			wantErr: "database.host is required",
		},
		{
			name: "missing required database.name",
			yaml: `
database:
  host: localhost
  user: scout
scrape:
  sources:
    - source: mobile.de
      search_urls:
        - https://example.com/search
`,
			wantErr: "database.name is required",
		},
		{
			name: "missing required database.user",
			yaml: `
database:
  host: localhost
  name: i4scout
scrape:
  sources:
    - source: mobile.de
      search_urls:
        - https://example.com/search
`,
			wantErr: "database.user is required",
		},
		{
			name: "negative scoring weight",
			yaml: `
database:
  host: localhost
  name: i4scout
  user: scout
scoring:
  required_weight: -10
scrape:
  sources:
    - source: mobile.de
      search_urls:
        - https://example.com/search
`,
			wantErr: "scoring weights must be non-negative",
		},
		{
			name: "delist threshold below one",
			yaml: `
database:
  host: localhost
  name: i4scout
  user: scout
lifecycle:
  delist_after_misses: -1
scrape:
  sources:
    - source: mobile.de
      search_urls:
        - https://example.com/search
`,
			wantErr: "lifecycle.delist_after_misses must be at least 1",
		},
		{
			name: "source without search urls",
			yaml: `
database:
  host: localhost
  name: i4scout
  user: scout
scrape:
  sources:
    - source: mobile.de
`,
			wantErr: "search_urls is required",
		},
		{
			name: "source without name",
			yaml: `
database:
  host: localhost
  name: i4scout
  user: scout
scrape:
  sources:
    - search_urls:
        - https://example.com/search
`,
			wantErr: "scrape.sources[0].source is required",
		},
		{
			name: "duplicate source",
			yaml: `
database:
  host: localhost
  name: i4scout
  user: scout
scrape:
  sources:
    - source: mobile.de
      search_urls:
        - https://example.com/a
    - source: mobile.de
      search_urls:
        - https://example.com/b
`,
			wantErr: `duplicate source "mobile.de"`,
		},
		{
			name:    "invalid YAML",
			yaml:    "{{{not valid yaml",
			wantErr: "parsing config YAML",
		},
		{
			name: "full config with overrides",
			yaml: `
database:
  host: db.example.com
  port: 5433
  name: i4scout_prod
  user: admin
  password: pass
  sslmode: require
  pool_size: 20
redis:
  enabled: true
  addr: redis.example.com:6380
  search_ttl: 30m
  detail_ttl: 12h
catalog:
  path: /etc/i4scout/options.yaml
scoring:
  required_weight: 60
  nice_to_have_weight: 40
lifecycle:
  delist_after_misses: 3
scrape:
  fetch_interval: 5s
  sources:
    - source: mobile.de
      search_urls:
        - https://example.com/mobile
      interval: 30m
    - source: autoscout24
      search_urls:
        - https://example.com/as24
metrics:
  enabled: true
  addr: ":9191"
logging:
  level: debug
  format: json
`,
			checkFunc: func(t *testing.T, cfg *Config) {
				t.Helper()
				assert.Equal(t, "db.example.com", cfg.Database.Host)
				assert.Equal(t, 5433, cfg.Database.Port)
				assert.Equal(t, "require", cfg.Database.SSLMode)
				assert.Equal(t, 20, cfg.Database.PoolSize)
				assert.True(t, cfg.Redis.Enabled)
				assert.Equal(t, "redis.example.com:6380", cfg.Redis.Addr)
				assert.Equal(t, 30*time.Minute, cfg.Redis.SearchTTL)
				assert.Equal(t, 12*time.Hour, cfg.Redis.DetailTTL)
				assert.Equal(t, "/etc/i4scout/options.yaml", cfg.Catalog.Path)
				assert.Equal(t, match.Weights{Required: 60, NiceToHave: 40}, cfg.Scoring.Weights())
				assert.Equal(t, 3, cfg.Lifecycle.DelistAfterMisses)
				assert.Equal(t, 5*time.Second, cfg.Scrape.FetchInterval)
				require.Len(t, cfg.Scrape.Sources, 2)
				assert.Equal(t, 30*time.Minute, cfg.Scrape.Sources[0].Interval)
				assert.Equal(t, 1*time.Hour, cfg.Scrape.Sources[1].Interval)
				assert.True(t, cfg.Metrics.Enabled)
				assert.Equal(t, ":9191", cfg.Metrics.Addr)
				assert.Equal(t, "debug", cfg.Logging.Level)
				assert.Equal(t, "json", cfg.Logging.Format)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Only parallelize tests that don't modify env vars.
			if len(tt.envVars) == 0 {
				t.Parallel()
			}

			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			dir := t.TempDir()
			path := filepath.Join(dir, "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.yaml), 0o644))

			cfg, err := Load(path)

			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, cfg)

			if tt.checkFunc != nil {
				tt.checkFunc(t, cfg)
			}
		})
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	t.Parallel()

	_, err := Load("/nonexistent/path/config.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config file")
}

func TestDatabaseConfig_DSN(t *testing.T) {
	t.Parallel()

	cfg := DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		Name:     "i4scout",
		User:     "scout",
		Password: "secret",
		SSLMode:  "disable",
	}
	assert.Equal(t, "host=localhost port=5432 dbname=i4scout user=scout password=secret sslmode=disable", cfg.DSN())
}
