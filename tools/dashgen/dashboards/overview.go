// Package dashboards assembles Grafana dashboard definitions from panel builders.
package dashboards

import (
	"github.com/grafana/grafana-foundation-sdk/go/dashboard"

	"github.com/aaearon/i4-scout/tools/dashgen/panels"
)

// BuildOverview constructs the i4-scout Overview dashboard with all metric rows.
func BuildOverview() *dashboard.DashboardBuilder {
	b := dashboard.NewDashboardBuilder("i4-scout Overview").
		Uid("i4scout-overview").
		Tags([]string{"i4scout"}).
		Refresh("30s").
		Time("now-6h", "now").
		Timezone("browser").
		Editable().
		Tooltip(dashboard.DashboardCursorSyncCrosshair).
		WithVariable(datasourceVar())

	// Row 1: Overview.
	b.WithRow(dashboard.NewRowBuilder("Overview").
		WithPanel(panels.UpStat()).
		WithPanel(panels.UptimeStat()).
		WithPanel(panels.PassErrors24h()).
		WithPanel(panels.Delisted24h()))

	// Row 2: Scrape Passes.
	b.WithRow(dashboard.NewRowBuilder("Scrape Passes").
		WithPanel(panels.PassDurationP95()).
		WithPanel(panels.ListingsFoundRate()).
		WithPanel(panels.PassErrorsRate()))

	// Row 3: Reconciliation.
	b.WithRow(dashboard.NewRowBuilder("Reconciliation").
		WithPanel(panels.CreatedVsUpdated()).
		WithPanel(panels.PriceChanges()))

	// Row 4: Scoring.
	b.WithRow(dashboard.NewRowBuilder("Scoring").
		WithPanel(panels.ScoreDistribution()))

	// Row 5: Retrieval Cache.
	b.WithRow(dashboard.NewRowBuilder("Retrieval Cache").
		WithPanel(panels.CacheHitRatio()).
		WithPanel(panels.CacheOpsRate()))

	return b
}

func datasourceVar() *dashboard.DatasourceVariableBuilder {
	return dashboard.NewDatasourceVariableBuilder("datasource").
		Label("Datasource").
		Type("prometheus")
}
