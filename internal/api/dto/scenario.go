package dto

import (
	"bytes"
	"encoding/json"
	"route-scenario-service/internal/domain"
)

type CreateScenarioRequest struct {
	Name                string                 `json:"name"`
	Description         string                 `json:"description"`
	InputData           domain.NormalizedInput `json:"input_data"`
	OptimizationResults *domain.Result         `json:"optimization_results"`
}

func (r CreateScenarioRequest) ToScenario() domain.Scenario {
	return domain.Scenario{
		Name:                r.Name,
		Description:         r.Description,
		InputData:           r.InputData,
		OptimizationResults: r.OptimizationResults,
	}
}

// UpdateScenarioRequest is a partial update; omitted fields are unchanged.
type UpdateScenarioRequest struct {
	Name                *string                 `json:"name"`
	Description         *string                 `json:"description"`
	InputData           *domain.NormalizedInput `json:"input_data"`
	OptimizationResults *domain.Result          `json:"optimization_results"`
	ClearResults        bool                    `json:"clear_results"`
}

func (r UpdateScenarioRequest) ToPatch() domain.ScenarioPatch {
	return domain.ScenarioPatch{
		Name:                r.Name,
		Description:         r.Description,
		InputData:           r.InputData,
		OptimizationResults: r.OptimizationResults,
		ClearResults:        r.ClearResults,
	}
}

type RenameRequest struct {
	Name string `json:"name"`
}

type TablesRequest struct {
	Name        string                `json:"name"`
	Description string                `json:"description"`
	Tables      domain.EditableTables `json:"tables"`
}

type TablesResponse struct {
	ScenarioID  string                `json:"scenario_id"`
	Name        string                `json:"name"`
	Description string                `json:"description"`
	Optimized   bool                  `json:"optimized"`
	Tables      domain.EditableTables `json:"tables"`
}

// CompareRequest accepts {"scenario_ids": [...]} or a bare array of ids.
type CompareRequest struct {
	ScenarioIDs []string `json:"scenario_ids"`
}

func (r *CompareRequest) UnmarshalJSON(b []byte) error {
	if b = bytes.TrimSpace(b); len(b) > 0 && b[0] == '[' {
		return json.Unmarshal(b, &r.ScenarioIDs)
	}

	type plain CompareRequest
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()
	return dec.Decode((*plain)(r))
}
