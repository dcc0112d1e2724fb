package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeDelta(t *testing.T) {
	tests := []struct {
		v1, v2 float64
		want   Delta
	}{
		{100000, 120000, Delta{Percent: 20.0, Direction: DirectionUp}},
		{0, 120000, Delta{Percent: 0, Direction: DirectionNeutral}},
		{120000, 0, Delta{Percent: 0, Direction: DirectionNeutral}},
		{100, 100, Delta{Percent: 0.0, Direction: DirectionNeutral}},
		{120, 100, Delta{Percent: 16.7, Direction: DirectionDown}},
		{3, 4, Delta{Percent: 33.3, Direction: DirectionUp}},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ComputeDelta(tt.v1, tt.v2), "ComputeDelta(%v, %v)", tt.v1, tt.v2)
	}
}

func TestMetricsForDefaultsToZero(t *testing.T) {
	m := MetricsFor(Scenario{ID: "1", Name: "Base"})
	assert.Equal(t, Metrics{ScenarioID: "1", ScenarioName: "Base"}, m)

	m = MetricsFor(Scenario{
		ID:   "2",
		Name: "Peak",
		OptimizationResults: &Result{SummaryMetrics: SummaryMetrics{
			TotalCost:         4500,
			TotalCapacityUsed: 540,
		}},
	})
	assert.True(t, m.Optimized)
	assert.Equal(t, 4500.0, m.TotalCost)
	assert.Equal(t, 540.0, m.CapacityUsed)
	assert.Zero(t, m.TotalTrucks)
	assert.Zero(t, m.RoutesOptimized)
}

func TestValidateCompareCount(t *testing.T) {
	assert.ErrorIs(t, ValidateCompareCount(1), ErrTooFewScenarios)
	assert.NoError(t, ValidateCompareCount(2))
	assert.NoError(t, ValidateCompareCount(3))
	assert.ErrorIs(t, ValidateCompareCount(4), ErrTooManyScenarios)
}

func TestSelectionCapsAtThree(t *testing.T) {
	var s Selection
	require.NoError(t, s.Toggle("a"))
	assert.ErrorIs(t, s.Ready(), ErrTooFewScenarios)

	require.NoError(t, s.Toggle("b"))
	require.NoError(t, s.Toggle("c"))
	assert.NoError(t, s.Ready())

	assert.ErrorIs(t, s.Toggle("d"), ErrTooManyScenarios)
	assert.Equal(t, []string{"a", "b", "c"}, s.IDs())

	require.NoError(t, s.Toggle("b"))
	assert.Equal(t, []string{"a", "c"}, s.IDs())
}
