package panels

import (
	"github.com/grafana/grafana-foundation-sdk/go/common"
	"github.com/grafana/grafana-foundation-sdk/go/timeseries"
)

// PassDurationP95 returns a timeseries panel showing the p95 scrape pass
// duration per source.
func PassDurationP95() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Pass Duration (p95)").
		Description("95th percentile scrape pass duration per source").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(8).
		WithTarget(PromQuery(
			`histogram_quantile(0.95, sum(rate(i4scout_pass_duration_seconds_bucket[30m])) by (le, source))`,
			"{{source}}", "A",
		)).
		Unit("s").
		FillOpacity(10).
		LineWidth(2).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleLine).
		Tooltip(MultiTooltip())
}

// ListingsFoundRate returns a timeseries panel showing listings seen on
// search pages per minute.
func ListingsFoundRate() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Listings Found / min").
		Description("Rate of listings observed on search pages per minute").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(8).
		WithTarget(PromQuery(`i4scout:pass_listings:rate5m * 60`, "listings/min", "A")).
		FillOpacity(10).
		LineWidth(2).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleLine)
}

// PassErrorsRate returns a timeseries panel showing per-listing failures
// per second.
func PassErrorsRate() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Pass Errors").
		Description("Rate of per-listing failures during scrape passes").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(8).
		WithTarget(PromQuery(`i4scout:pass_errors:rate5m`, "errors/s", "A")).
		FillOpacity(10).
		LineWidth(2).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleLine)
}
