package repositories

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"route-scenario-service/internal/domain"
	"time"
)

// Fixed-width UTC timestamps sort lexically in both dialects.
const createdAtLayout = "2006-01-02T15:04:05.000000000Z"

const scenarioColumns = `id, name, description, input_data, optimization_results, created_at`

type scenarioRow struct {
	ID          string
	Name        string
	Description string
	InputData   string
	Results     sql.NullString
	CreatedAt   string
}

func (r scenarioRow) args() []any {
	return []any{r.ID, r.Name, r.Description, r.InputData, r.Results, r.CreatedAt}
}

func toRow(s domain.Scenario) (scenarioRow, error) {
	input, err := json.Marshal(s.InputData)
	if err != nil {
		return scenarioRow{}, fmt.Errorf("encode input_data: %w", err)
	}

	row := scenarioRow{
		ID:          s.ID,
		Name:        s.Name,
		Description: s.Description,
		InputData:   string(input),
		CreatedAt:   s.CreatedAt.UTC().Format(createdAtLayout),
	}

	if s.OptimizationResults != nil {
		res, err := json.Marshal(s.OptimizationResults)
		if err != nil {
			return scenarioRow{}, fmt.Errorf("encode optimization_results: %w", err)
		}
		row.Results = sql.NullString{String: string(res), Valid: true}
	}

	return row, nil
}

func (r scenarioRow) toScenario() (domain.Scenario, error) {
	s := domain.Scenario{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
	}

	if err := json.Unmarshal([]byte(r.InputData), &s.InputData); err != nil {
		return domain.Scenario{}, fmt.Errorf("decode input_data of %s: %w", r.ID, err)
	}

	if r.Results.Valid && r.Results.String != "" {
		var res domain.Result
		if err := json.Unmarshal([]byte(r.Results.String), &res); err != nil {
			return domain.Scenario{}, fmt.Errorf("decode optimization_results of %s: %w", r.ID, err)
		}
		s.OptimizationResults = &res
	}

	created, err := time.Parse(createdAtLayout, r.CreatedAt)
	if err != nil {
		return domain.Scenario{}, fmt.Errorf("decode created_at of %s: %w", r.ID, err)
	}
	s.CreatedAt = created

	return s, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanScenario(sc rowScanner) (domain.Scenario, error) {
	var r scenarioRow
	if err := sc.Scan(&r.ID, &r.Name, &r.Description, &r.InputData, &r.Results, &r.CreatedAt); err != nil {
		return domain.Scenario{}, err
	}
	return r.toScenario()
}
