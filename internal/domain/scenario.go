package domain

import "time"

// Scenario is a named, persisted input with an optional optimization result.
// OptimizationResults is nil until an optimize-and-save succeeds and is
// replaced wholesale on every later one. CreatedAt never changes.
type Scenario struct {
	ID                  string          `json:"id"`
	Name                string          `json:"name"`
	Description         string          `json:"description"`
	InputData           NormalizedInput `json:"input_data"`
	OptimizationResults *Result         `json:"optimization_results"`
	CreatedAt           time.Time       `json:"created_at"`
}

// Optimized reports whether the scenario carries results.
func (s Scenario) Optimized() bool { return s.OptimizationResults != nil }

// ScenarioPatch is a partial update. Nil fields are left untouched.
type ScenarioPatch struct {
	Name                *string          `json:"name,omitempty"`
	Description         *string          `json:"description,omitempty"`
	InputData           *NormalizedInput `json:"input_data,omitempty"`
	OptimizationResults *Result          `json:"optimization_results,omitempty"`
	ClearResults        bool             `json:"clear_results,omitempty"`
}

// Apply merges the patch into s. ID and CreatedAt are never modified.
func (s *Scenario) Apply(p ScenarioPatch) {
	if p.Name != nil {
		s.Name = *p.Name
	}
	if p.Description != nil {
		s.Description = *p.Description
	}
	if p.InputData != nil {
		s.InputData = *p.InputData
	}
	if p.ClearResults {
		s.OptimizationResults = nil
	}
	if p.OptimizationResults != nil {
		s.OptimizationResults = p.OptimizationResults
	}
}
