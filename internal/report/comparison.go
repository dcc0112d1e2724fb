// Package report renders scenario comparisons for terminals.
package report

import (
	"fmt"
	"io"
	"math"
	"route-scenario-service/internal/domain"
	"strings"

	"github.com/logrusorgru/aurora"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

type metricRow struct {
	label string
	value func(domain.Metrics) float64
	delta func(domain.PairwiseDelta) domain.Delta
	// Whether an increase is an improvement; only used for colouring.
	higherIsBetter bool
	// 0 renders whole numbers, anything else one decimal.
	decimals int
}

var metricRows = []metricRow{
	{
		label: "Total cost",
		value: func(m domain.Metrics) float64 { return m.TotalCost },
		delta: func(p domain.PairwiseDelta) domain.Delta { return p.TotalCost },
	},
	{
		label: "Total trucks",
		value: func(m domain.Metrics) float64 { return m.TotalTrucks },
		delta: func(p domain.PairwiseDelta) domain.Delta { return p.TotalTrucks },
	},
	{
		label:          "Routes optimized",
		value:          func(m domain.Metrics) float64 { return m.RoutesOptimized },
		delta:          func(p domain.PairwiseDelta) domain.Delta { return p.RoutesOptimized },
		higherIsBetter: true,
	},
	{
		label:          "Capacity used",
		value:          func(m domain.Metrics) float64 { return m.CapacityUsed },
		delta:          func(p domain.PairwiseDelta) domain.Delta { return p.CapacityUsed },
		higherIsBetter: true,
		decimals:       1,
	},
}

// Renderer writes comparisons as aligned text tables.
type Renderer struct {
	au      aurora.Aurora
	printer *message.Printer
}

// NewRenderer returns a renderer; colors toggles ANSI escapes.
func NewRenderer(colors bool) *Renderer {
	return &Renderer{
		au:      aurora.NewAurora(colors),
		printer: message.NewPrinter(language.AmericanEnglish),
	}
}

func (r *Renderer) number(v float64, decimals int) string {
	if decimals == 0 {
		return r.printer.Sprintf("%d", int64(math.Round(v)))
	}
	return r.printer.Sprintf("%.1f", v)
}

func (r *Renderer) delta(d domain.Delta, higherIsBetter bool) string {
	text := fmt.Sprintf("%-10s", r.printer.Sprintf("%s %.1f%%", arrow(d.Direction), d.Percent))

	switch {
	case d.Direction == domain.DirectionNeutral:
		return text
	case (d.Direction == domain.DirectionUp) == higherIsBetter:
		return r.au.Green(text).String()
	default:
		return r.au.Red(text).String()
	}
}

func arrow(d domain.Direction) string {
	switch d {
	case domain.DirectionUp:
		return "↑"
	case domain.DirectionDown:
		return "↓"
	default:
		return "="
	}
}

const (
	labelWidth = 18
	colWidth   = 20
)

func truncate(s string, n int) string {
	rs := []rune(s)
	if len(rs) <= n {
		return s
	}
	return string(rs[:n-1]) + "…"
}

// Render writes cmp to w. A delta column is added for two-scenario
// comparisons; scenarios without results are listed underneath.
func (r *Renderer) Render(w io.Writer, cmp domain.Comparison) error {
	var b strings.Builder

	header := fmt.Sprintf("%-*s", labelWidth, "Metric")
	for _, m := range cmp.Metrics {
		header += fmt.Sprintf(" %*s", colWidth, truncate(m.ScenarioName, colWidth))
	}
	if cmp.Pairwise != nil {
		header += "   Change"
	}
	b.WriteString(r.au.Bold(header).String())
	b.WriteString("\n")

	for _, row := range metricRows {
		line := fmt.Sprintf("%-*s", labelWidth, row.label)
		for _, m := range cmp.Metrics {
			line += fmt.Sprintf(" %*s", colWidth, r.number(row.value(m), row.decimals))
		}
		if cmp.Pairwise != nil {
			line += "   " + r.delta(row.delta(*cmp.Pairwise), row.higherIsBetter)
		}
		b.WriteString(strings.TrimRight(line, " "))
		b.WriteString("\n")
	}

	if !cmp.AllOptimized() {
		names := make([]string, 0, len(cmp.NotOptimized))
		for _, m := range cmp.Metrics {
			if !m.Optimized {
				names = append(names, m.ScenarioName)
			}
		}
		b.WriteString("\n")
		b.WriteString(r.au.Brown("Not yet optimized: " + strings.Join(names, ", ")).String())
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// RenderList writes one line per scenario: id, name, creation date and
// whether it has results.
func (r *Renderer) RenderList(w io.Writer, scenarios []domain.Scenario) error {
	var b strings.Builder
	b.WriteString(r.au.Bold(fmt.Sprintf("%-36s  %-24s  %-16s  %s", "ID", "Name", "Created", "Total cost")).String())
	b.WriteString("\n")

	for _, s := range scenarios {
		cost := r.au.Brown("not optimized").String()
		if s.OptimizationResults != nil {
			cost = r.number(s.OptimizationResults.SummaryMetrics.TotalCost, 0)
		}
		fmt.Fprintf(&b, "%-36s  %-24s  %-16s  %s\n",
			s.ID,
			truncate(s.Name, 24),
			s.CreatedAt.Local().Format("2006-01-02 15:04"),
			cost,
		)
	}

	_, err := io.WriteString(w, b.String())
	return err
}
