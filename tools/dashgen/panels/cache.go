package panels

import (
	"github.com/grafana/grafana-foundation-sdk/go/common"
	"github.com/grafana/grafana-foundation-sdk/go/timeseries"
)

// CacheHitRatio returns a timeseries panel showing the retrieval cache
// hit ratio.
func CacheHitRatio() *timeseries.PanelBuilder {
	expr := `i4scout:cache_hits:rate5m / (i4scout:cache_hits:rate5m + i4scout:cache_misses:rate5m) * 100`
	return timeseries.NewPanelBuilder().
		Title("Cache Hit Ratio").
		Description("Percentage of page fetches served from the retrieval cache").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(TSWidth).
		WithTarget(PromQuery(expr, "hit %", "A")).
		Unit("percent").
		FillOpacity(10).
		LineWidth(2).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleLine)
}

// CacheOpsRate returns a timeseries panel showing cache hits and misses
// per second, split by page class.
func CacheOpsRate() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Cache Operations").
		Description("Cache hits and misses per second by page class").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(TSWidth).
		WithTarget(PromQuery(`sum(rate(i4scout_cache_hits_total[5m])) by (class)`, "hit {{class}}", "A")).
		WithTarget(PromQuery(`sum(rate(i4scout_cache_misses_total[5m])) by (class)`, "miss {{class}}", "B")).
		FillOpacity(10).
		LineWidth(2).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleLine).
		Tooltip(MultiTooltip())
}
