package report

import (
	"bytes"
	"route-scenario-service/internal/domain"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scenario(id, name string, sm *domain.SummaryMetrics) domain.Scenario {
	s := domain.Scenario{ID: id, Name: name, CreatedAt: time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)}
	if sm != nil {
		s.OptimizationResults = &domain.Result{SummaryMetrics: *sm}
	}
	return s
}

func comparisonOf(scs ...domain.Scenario) domain.Comparison {
	cmp := domain.Comparison{Scenarios: scs, NotOptimized: []string{}}
	for _, s := range scs {
		cmp.Metrics = append(cmp.Metrics, domain.MetricsFor(s))
		if !s.Optimized() {
			cmp.NotOptimized = append(cmp.NotOptimized, s.ID)
		}
	}
	if len(cmp.Metrics) == 2 {
		pd := domain.NewPairwiseDelta(cmp.Metrics[0], cmp.Metrics[1])
		cmp.Pairwise = &pd
	}
	return cmp
}

func TestRenderTwoScenarios(t *testing.T) {
	cmp := comparisonOf(
		scenario("a", "Baseline", &domain.SummaryMetrics{TotalCost: 100000, TotalTrucks: 3, RoutesOptimized: 2, TotalCapacityUsed: 40.5}),
		scenario("b", "Monsoon", &domain.SummaryMetrics{TotalCost: 120000, TotalTrucks: 4, RoutesOptimized: 2, TotalCapacityUsed: 45}),
	)

	var buf bytes.Buffer
	require.NoError(t, NewRenderer(false).Render(&buf, cmp))
	out := buf.String()

	assert.Contains(t, out, "Baseline")
	assert.Contains(t, out, "Monsoon")
	assert.Contains(t, out, "Change")
	assert.Contains(t, out, "100,000")
	assert.Contains(t, out, "120,000")
	assert.Contains(t, out, "↑ 20.0%")
	assert.Contains(t, out, "↑ 33.3%")
	assert.Contains(t, out, "= 0.0%")
	assert.NotContains(t, out, "\x1b[")
	assert.NotContains(t, out, "Not yet optimized")
}

func TestRenderThreeScenariosFlagsMissingResults(t *testing.T) {
	cmp := comparisonOf(
		scenario("a", "A", &domain.SummaryMetrics{TotalCost: 10}),
		scenario("b", "B", &domain.SummaryMetrics{TotalCost: 20}),
		scenario("c", "Draft", nil),
	)

	var buf bytes.Buffer
	require.NoError(t, NewRenderer(false).Render(&buf, cmp))
	out := buf.String()

	assert.NotContains(t, out, "Change")
	assert.Contains(t, out, "Not yet optimized: Draft")
	assert.Equal(t, 7, strings.Count(out, "\n"))
}

func TestRenderColors(t *testing.T) {
	cmp := comparisonOf(
		scenario("a", "A", &domain.SummaryMetrics{TotalCost: 100}),
		scenario("b", "B", &domain.SummaryMetrics{TotalCost: 80}),
	)

	var buf bytes.Buffer
	require.NoError(t, NewRenderer(true).Render(&buf, cmp))
	assert.Contains(t, buf.String(), "\x1b[")
}

func TestRenderList(t *testing.T) {
	var buf bytes.Buffer
	err := NewRenderer(false).RenderList(&buf, []domain.Scenario{
		scenario("id-1", "Baseline", &domain.SummaryMetrics{TotalCost: 2500}),
		scenario("id-2", "Draft", nil),
	})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[1], "2,500")
	assert.Contains(t, lines[2], "not optimized")
}
