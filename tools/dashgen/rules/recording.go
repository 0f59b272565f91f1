package rules

// RecordingRules returns a PrometheusRule CR containing pre-computed rate
// expressions used by dashboards and alert rules.
func RecordingRules() PrometheusRule {
	return PrometheusRule{
		APIVersion: "monitoring.coreos.com/v1",
		Kind:       "PrometheusRule",
		Metadata: PrometheusRuleMetadata{
			Name: "i4scout-recording-rules",
			Labels: map[string]string{
				"prometheus": "system-rules-prometheus",
			},
		},
		Spec: PrometheusRuleSpec{
			Groups: []RuleGroup{
				{
					Name: "i4scout-recording",
					Rules: []Rule{
						{
							Record: "i4scout:pass_listings:rate5m",
							Expr:   `sum(rate(i4scout_pass_listings_found_total[5m]))`,
						},
						{
							Record: "i4scout:pass_errors:rate5m",
							Expr:   `sum(rate(i4scout_pass_errors_total[5m]))`,
						},
						{
							Record: "i4scout:cache_hits:rate5m",
							Expr:   `sum(rate(i4scout_cache_hits_total[5m]))`,
						},
						{
							Record: "i4scout:cache_misses:rate5m",
							Expr:   `sum(rate(i4scout_cache_misses_total[5m]))`,
						},
					},
				},
			},
		},
	}
}
