package services

import (
	"context"
	"fmt"
	"route-scenario-service/internal/domain"
	"route-scenario-service/internal/ports"
)

// Comparer aligns the metrics of 2 or 3 stored scenarios.
type Comparer struct {
	repo ports.ScenarioRepository
}

func NewComparer(repo ports.ScenarioRepository) *Comparer {
	return &Comparer{repo: repo}
}

// Compare fetches each scenario in order and builds the comparison.
// Scenarios without results are compared with zero metrics and listed in
// NotOptimized.
func (c *Comparer) Compare(ctx context.Context, ids []string) (domain.Comparison, error) {
	if err := domain.ValidateCompareCount(len(ids)); err != nil {
		return domain.Comparison{}, fmt.Errorf("compare: %w", err)
	}

	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			return domain.Comparison{}, fmt.Errorf("compare: %w: scenario %q selected twice", domain.ErrInvalidInput, id)
		}
		seen[id] = struct{}{}
	}

	cmp := domain.Comparison{
		Scenarios:    make([]domain.Scenario, 0, len(ids)),
		Metrics:      make([]domain.Metrics, 0, len(ids)),
		NotOptimized: []string{},
	}

	for _, id := range ids {
		sc, err := c.repo.Get(ctx, id)
		if err != nil {
			return domain.Comparison{}, fmt.Errorf("compare: %w", err)
		}

		cmp.Scenarios = append(cmp.Scenarios, sc)
		cmp.Metrics = append(cmp.Metrics, domain.MetricsFor(sc))
		if !sc.Optimized() {
			cmp.NotOptimized = append(cmp.NotOptimized, sc.ID)
		}
	}

	if len(cmp.Metrics) == 2 {
		pd := domain.NewPairwiseDelta(cmp.Metrics[0], cmp.Metrics[1])
		cmp.Pairwise = &pd
	}

	return cmp, nil
}
