// Package validate checks generated dashboards against the set of metric
// names the application actually exports, catching renamed or misspelled
// metrics before they ship as silently empty panels.
package validate

import (
	"fmt"

	"github.com/grafana/grafana-foundation-sdk/go/dashboard"
	promdq "github.com/grafana/grafana-foundation-sdk/go/prometheus"
	"github.com/prometheus/prometheus/promql/parser"
)

// Result collects validation findings. Errors make the artifact
// unusable; warnings are advisory.
type Result struct {
	Errors   []string
	Warnings []string
}

// Ok reports whether validation passed.
func (r Result) Ok() bool { return len(r.Errors) == 0 }

// Dashboard validates every Prometheus target in the dashboard: each
// expression must parse as PromQL and reference only known metric names.
func Dashboard(dash dashboard.Dashboard, known map[string]bool) Result {
	var res Result
	for _, item := range dash.Panels {
		if item.RowPanel == nil {
			continue
		}
		for _, p := range item.RowPanel.Panels {
			title := ""
			if p.Title != nil {
				title = *p.Title
			}
			for _, target := range p.Targets {
				switch q := target.(type) {
				case promdq.Dataquery:
					checkExpr(&res, "panel "+title, q.Expr, known)
				case *promdq.Dataquery:
					checkExpr(&res, "panel "+title, q.Expr, known)
				default:
					res.Warnings = append(res.Warnings,
						fmt.Sprintf("panel %q: non-prometheus target", title))
				}
			}
		}
	}
	return res
}

// Exprs validates a set of named PromQL expressions, for rule files.
func Exprs(exprs map[string]string, known map[string]bool) Result {
	var res Result
	for name, expr := range exprs {
		checkExpr(&res, name, expr, known)
	}
	return res
}

func checkExpr(res *Result, where, expr string, known map[string]bool) {
	if expr == "" {
		res.Warnings = append(res.Warnings, fmt.Sprintf("%s: empty expression", where))
		return
	}

	node, err := parser.ParseExpr(expr)
	if err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("%s: invalid PromQL: %v", where, err))
		return
	}

	parser.Inspect(node, func(n parser.Node, _ []parser.Node) error {
		if vs, ok := n.(*parser.VectorSelector); ok {
			if vs.Name != "" && !known[vs.Name] {
				res.Errors = append(res.Errors,
					fmt.Sprintf("%s: unknown metric %q", where, vs.Name))
			}
		}
		return nil
	})
}
