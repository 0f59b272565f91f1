package rules

// AlertRules returns a PrometheusRule CR containing alert rules for
// i4-scout operational monitoring.
func AlertRules() PrometheusRule {
	return PrometheusRule{
		APIVersion: "monitoring.coreos.com/v1",
		Kind:       "PrometheusRule",
		Metadata: PrometheusRuleMetadata{
			Name: "i4scout-alerts",
			Labels: map[string]string{
				"prometheus": "system-rules-prometheus",
			},
		},
		Spec: PrometheusRuleSpec{
			Groups: []RuleGroup{
				{
					Name: "i4scout-alerts",
					Rules: []Rule{
						{
							Alert: "I4ScoutDown",
							Expr:  `absent(up{job="i4-scout"})`,
							For:   "5m",
							Labels: map[string]string{
								"severity": "critical",
							},
							Annotations: map[string]string{
								"summary":     "i4-scout is down",
								"description": "The i4-scout job has been absent for more than 5 minutes.",
							},
						},
						{
							Alert: "I4ScoutNoRecentPass",
							Expr:  `sum(increase(i4scout_pass_duration_seconds_count[3h])) == 0`,
							For:   "15m",
							Labels: map[string]string{
								"severity": "warning",
							},
							Annotations: map[string]string{
								"summary":     "No scrape pass completed recently",
								"description": "No scrape pass has completed in the last 3 hours. Listings are going stale and delisting detection is paused.",
							},
						},
						{
							Alert: "I4ScoutPassErrors",
							Expr:  `i4scout:pass_errors:rate5m > 0.1`,
							For:   "10m",
							Labels: map[string]string{
								"severity": "warning",
							},
							Annotations: map[string]string{
								"summary":     "Elevated per-listing failures during scrape passes",
								"description": "Per-listing failures are occurring at more than 0.1/s for the last 10 minutes. The source markup or feed format may have changed.",
							},
						},
						{
							Alert: "I4ScoutDelistSpike",
							Expr:  `increase(i4scout_listings_delisted_total[1h]) > 20`,
							For:   "0m",
							Labels: map[string]string{
								"severity": "warning",
							},
							Annotations: map[string]string{
								"summary":     "Unusually many listings delisted",
								"description": "More than 20 listings were delisted in the last hour. A broken search feed can empty the seen-set and mass-delist the inventory.",
							},
						},
						{
							Alert: "I4ScoutCacheMissSurge",
							Expr:  `i4scout:cache_misses:rate5m / (i4scout:cache_hits:rate5m + i4scout:cache_misses:rate5m) > 0.9`,
							For:   "30m",
							Labels: map[string]string{
								"severity": "warning",
							},
							Annotations: map[string]string{
								"summary":     "Retrieval cache is barely hitting",
								"description": "More than 90% of page fetches have missed the cache for 30 minutes. Redis may be down or being flushed.",
							},
						},
					},
				},
			},
		},
	}
}
