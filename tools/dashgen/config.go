package main

import "errors"

// KnownMetrics is the set of metric names exported by i4-scout plus
// recording rule names referenced in dashboards and alerts.
var KnownMetrics = map[string]bool{
	// Scrape pass metrics.
	"i4scout_pass_duration_seconds_bucket": true,
	"i4scout_pass_duration_seconds_sum":    true,
	"i4scout_pass_duration_seconds_count":  true,
	"i4scout_pass_listings_found_total":    true,
	"i4scout_pass_errors_total":            true,

	// Reconciliation metrics.
	"i4scout_listings_created_total":  true,
	"i4scout_listings_updated_total":  true,
	"i4scout_listings_delisted_total": true,
	"i4scout_price_changes_total":     true,

	// Scoring metrics.
	"i4scout_score_distribution_bucket": true,

	// Retrieval cache metrics.
	"i4scout_cache_hits_total":   true,
	"i4scout_cache_misses_total": true,

	// Recording rules.
	"i4scout:pass_listings:rate5m": true,
	"i4scout:pass_errors:rate5m":   true,
	"i4scout:cache_hits:rate5m":    true,
	"i4scout:cache_misses:rate5m":  true,

	// Standard Prometheus metrics referenced in dashboards.
	"up":                         true,
	"process_start_time_seconds": true,
}

// Config controls which artifacts the generator produces and where they go.
type Config struct {
	OutputDir        string
	DashboardEnabled bool
	RulesEnabled     bool
}

// DefaultConfig returns a Config that generates all artifacts into ../../deploy
// (relative to tools/dashgen/).
func DefaultConfig() Config {
	return Config{
		OutputDir:        "../../deploy",
		DashboardEnabled: true,
		RulesEnabled:     true,
	}
}

// Validate checks that the config is usable.
func (c Config) Validate() error {
	if c.OutputDir == "" {
		return errors.New("output directory must be set")
	}
	if !c.DashboardEnabled && !c.RulesEnabled {
		return errors.New("at least one of dashboard or rules must be enabled")
	}
	return nil
}
