package domain

import "math"

const (
	MinCompareScenarios = 2
	MaxCompareScenarios = 3
)

// Direction of change between two metric values. It carries no valence:
// whether "up" is good depends on the metric.
type Direction string

const (
	DirectionUp      Direction = "up"
	DirectionDown    Direction = "down"
	DirectionNeutral Direction = "neutral"
)

// Delta is the percentage change from a first to a second value.
type Delta struct {
	Percent   float64   `json:"percent"`
	Direction Direction `json:"direction"`
}

// ComputeDelta returns |(v2-v1)/v1|*100 rounded to one decimal.
// A zero on either side yields a neutral zero delta.
func ComputeDelta(v1, v2 float64) Delta {
	if v1 == 0 || v2 == 0 || math.IsNaN(v1) || math.IsNaN(v2) {
		return Delta{Percent: 0, Direction: DirectionNeutral}
	}

	pct := math.Round(math.Abs((v2-v1)/v1)*100*10) / 10

	dir := DirectionNeutral
	switch {
	case v2 > v1:
		dir = DirectionUp
	case v2 < v1:
		dir = DirectionDown
	}

	return Delta{Percent: pct, Direction: dir}
}

// Metrics are the comparable figures of one scenario.
type Metrics struct {
	ScenarioID      string  `json:"scenario_id"`
	ScenarioName    string  `json:"scenario_name"`
	TotalCost       float64 `json:"total_cost"`
	TotalTrucks     float64 `json:"total_trucks"`
	RoutesOptimized float64 `json:"routes_optimized"`
	CapacityUsed    float64 `json:"capacity_used"`
	Optimized       bool    `json:"optimized"`
}

// MetricsFor reads the summary metrics of s, each defaulting to 0.
func MetricsFor(s Scenario) Metrics {
	m := Metrics{ScenarioID: s.ID, ScenarioName: s.Name}
	if s.OptimizationResults == nil {
		return m
	}
	sm := s.OptimizationResults.SummaryMetrics
	m.TotalCost = sm.TotalCost
	m.TotalTrucks = sm.TotalTrucks
	m.RoutesOptimized = sm.RoutesOptimized
	m.CapacityUsed = sm.TotalCapacityUsed
	m.Optimized = true
	return m
}

// PairwiseDelta compares the second scenario against the first.
type PairwiseDelta struct {
	TotalCost       Delta `json:"total_cost"`
	TotalTrucks     Delta `json:"total_trucks"`
	RoutesOptimized Delta `json:"routes_optimized"`
	CapacityUsed    Delta `json:"capacity_used"`
}

func NewPairwiseDelta(a, b Metrics) PairwiseDelta {
	return PairwiseDelta{
		TotalCost:       ComputeDelta(a.TotalCost, b.TotalCost),
		TotalTrucks:     ComputeDelta(a.TotalTrucks, b.TotalTrucks),
		RoutesOptimized: ComputeDelta(a.RoutesOptimized, b.RoutesOptimized),
		CapacityUsed:    ComputeDelta(a.CapacityUsed, b.CapacityUsed),
	}
}

// Comparison aligns the metrics of 2 or 3 scenarios.
// Pairwise is set only when exactly two scenarios are compared.
type Comparison struct {
	Scenarios    []Scenario     `json:"scenarios"`
	Metrics      []Metrics      `json:"comparison_metrics"`
	Pairwise     *PairwiseDelta `json:"pairwise_delta,omitempty"`
	NotOptimized []string       `json:"not_optimized"`
}

// AllOptimized reports whether every compared scenario has results.
func (c Comparison) AllOptimized() bool { return len(c.NotOptimized) == 0 }

// ValidateCompareCount enforces the 2..3 bound on compared scenarios.
func ValidateCompareCount(n int) error {
	if n < MinCompareScenarios {
		return ErrTooFewScenarios
	}
	if n > MaxCompareScenarios {
		return ErrTooManyScenarios
	}
	return nil
}

// Selection is the interactive pick of scenarios to compare.
// It never holds more than MaxCompareScenarios ids.
type Selection struct {
	ids []string
}

// Toggle adds id, or removes it if already selected.
func (s *Selection) Toggle(id string) error {
	for i, existing := range s.ids {
		if existing == id {
			s.ids = append(s.ids[:i], s.ids[i+1:]...)
			return nil
		}
	}
	if len(s.ids) >= MaxCompareScenarios {
		return ErrTooManyScenarios
	}
	s.ids = append(s.ids, id)
	return nil
}

// IDs returns a copy of the selected ids in selection order.
func (s *Selection) IDs() []string {
	return append([]string(nil), s.ids...)
}

// Ready returns nil once enough scenarios are selected.
func (s *Selection) Ready() error {
	return ValidateCompareCount(len(s.ids))
}
