package panels

import (
	"github.com/grafana/grafana-foundation-sdk/go/common"
	"github.com/grafana/grafana-foundation-sdk/go/timeseries"
)

// CreatedVsUpdated returns a timeseries panel comparing new listings to
// updates of known listings.
func CreatedVsUpdated() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Created vs Updated").
		Description("Rate of listings created and updated by reconciliation").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(TSWidth).
		WithTarget(PromQuery(`rate(i4scout_listings_created_total[15m]) * 60`, "created/min", "A")).
		WithTarget(PromQuery(`rate(i4scout_listings_updated_total[15m]) * 60`, "updated/min", "B")).
		FillOpacity(10).
		LineWidth(2).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleLine).
		Tooltip(MultiTooltip())
}

// PriceChanges returns a timeseries panel showing observed price changes
// per hour.
func PriceChanges() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Price Changes / h").
		Description("Price changes observed and appended to price history").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(TSWidth).
		WithTarget(PromQuery(`increase(i4scout_price_changes_total[1h])`, "changes/h", "A")).
		FillOpacity(10).
		LineWidth(2).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleLine)
}
