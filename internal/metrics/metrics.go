// Package metrics defines Prometheus metrics for i4-scout.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "i4scout"

// Scrape pass metrics.
var (
	PassDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "pass_duration_seconds",
		Help:      "Duration of scrape passes in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"source"})

	PassListingsFound = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "pass_listings_found_total",
		Help:      "Total listings observed across scrape passes.",
	}, []string{"source"})

	PassErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "pass_errors_total",
		Help:      "Total per-listing failures during scrape passes.",
	}, []string{"source"})
)

// Reconciliation metrics.
var (
	ListingsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "listings_created_total",
		Help:      "Total new listings created by reconciliation.",
	})

	ListingsUpdatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "listings_updated_total",
		Help:      "Total existing listings updated by reconciliation.",
	})

	ListingsDelistedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "listings_delisted_total",
		Help:      "Total listings flipped to delisted by lifecycle updates.",
	})

	PriceChangesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "price_changes_total",
		Help:      "Total price changes recorded in price history.",
	})
)

// Scoring metrics.
var (
	ScoreDistribution = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "score_distribution",
		Help:      "Distribution of computed listing match scores.",
		Buckets:   prometheus.LinearBuckets(0, 10, 11), // 0, 10, 20, ..., 100
	})
)

// Retrieval cache metrics.
var (
	CacheHitsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_hits_total",
		Help:      "Total retrieval cache hits.",
	}, []string{"class"})

	CacheMissesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_misses_total",
		Help:      "Total retrieval cache misses.",
	}, []string{"class"})
)
