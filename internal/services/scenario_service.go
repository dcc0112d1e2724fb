package services

import (
	"context"
	"errors"
	"fmt"
	"route-scenario-service/internal/domain"
	"route-scenario-service/internal/ports"
	"strings"
)

// ScenarioService is the single-scenario flow: CRUD, saving edited tables,
// optimize-and-save and export.
type ScenarioService struct {
	repo      ports.ScenarioRepository
	optimizer ports.Optimizer
	exporter  ports.ResultExporter
}

func NewScenarioService(
	repo ports.ScenarioRepository,
	optimizer ports.Optimizer,
	exporter ports.ResultExporter,
) *ScenarioService {
	return &ScenarioService{repo: repo, optimizer: optimizer, exporter: exporter}
}

func (s *ScenarioService) List(ctx context.Context) ([]domain.Scenario, error) {
	out, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list scenarios: %w", err)
	}
	return out, nil
}

func (s *ScenarioService) Get(ctx context.Context, id string) (domain.Scenario, error) {
	return s.repo.Get(ctx, id)
}

// Create stores a new scenario as given; results may be nil.
func (s *ScenarioService) Create(ctx context.Context, sc domain.Scenario) (domain.Scenario, error) {
	if strings.TrimSpace(sc.Name) == "" {
		return domain.Scenario{}, fmt.Errorf("create scenario: %w: name is required", domain.ErrInvalidInput)
	}
	return s.repo.Create(ctx, sc)
}

func (s *ScenarioService) Update(ctx context.Context, id string, patch domain.ScenarioPatch) (domain.Scenario, error) {
	return s.repo.Update(ctx, id, patch)
}

func (s *ScenarioService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func (s *ScenarioService) Duplicate(ctx context.Context, id, newName string) (domain.Scenario, error) {
	return s.repo.Duplicate(ctx, id, newName)
}

func (s *ScenarioService) Rename(ctx context.Context, id, name string) (domain.Scenario, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Scenario{}, fmt.Errorf("rename scenario: %w: name is required", domain.ErrInvalidInput)
	}
	return s.repo.Update(ctx, id, domain.ScenarioPatch{Name: &name})
}

// SaveTablesRequest carries an edited scenario. An empty ID creates a new one.
type SaveTablesRequest struct {
	ID          string
	Name        string
	Description string
	Tables      domain.EditableTables
}

// SaveTablesResult is the stored scenario plus any rows that were collapsed
// during conversion.
type SaveTablesResult struct {
	Scenario   domain.Scenario        `json:"scenario"`
	Duplicates domain.DuplicateReport `json:"duplicates"`
}

// SaveTables converts the tables and stores them without optimizing.
// Existing results are kept.
func (s *ScenarioService) SaveTables(ctx context.Context, req SaveTablesRequest) (SaveTablesResult, error) {
	input, dups, err := prepareTables(req)
	if err != nil {
		return SaveTablesResult{}, fmt.Errorf("save tables: %w", err)
	}

	sc, err := s.store(ctx, req, input, nil)
	if err != nil {
		return SaveTablesResult{}, fmt.Errorf("save tables: %w", err)
	}

	return SaveTablesResult{Scenario: sc, Duplicates: dups}, nil
}

// OptimizeTables converts and validates the tables, runs the optimizer and
// stores input and results together. Nothing is written when validation or
// the optimizer fails.
func (s *ScenarioService) OptimizeTables(ctx context.Context, req SaveTablesRequest) (SaveTablesResult, error) {
	input, dups, err := prepareTables(req)
	if err != nil {
		return SaveTablesResult{}, fmt.Errorf("optimize tables: %w", err)
	}
	if err := input.Validate(); err != nil {
		return SaveTablesResult{}, fmt.Errorf("optimize tables: %w", err)
	}

	res, err := s.optimizer.Optimize(ctx, input)
	if err != nil {
		return SaveTablesResult{}, fmt.Errorf("optimize tables: %w", err)
	}

	sc, err := s.store(ctx, req, input, res)
	if err != nil {
		return SaveTablesResult{}, fmt.Errorf("optimize tables: %w", err)
	}

	return SaveTablesResult{Scenario: sc, Duplicates: dups}, nil
}

func prepareTables(req SaveTablesRequest) (domain.NormalizedInput, domain.DuplicateReport, error) {
	if strings.TrimSpace(req.Name) == "" {
		return domain.NormalizedInput{}, domain.DuplicateReport{}, fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
	}
	input := req.Tables.Normalize()
	for _, p := range input.RouteTruckTypes {
		if _, err := p.WireKey(); err != nil {
			return domain.NormalizedInput{}, domain.DuplicateReport{}, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
		}
	}
	return input, req.Tables.Duplicates(), nil
}

func (s *ScenarioService) store(
	ctx context.Context,
	req SaveTablesRequest,
	input domain.NormalizedInput,
	res *domain.Result,
) (domain.Scenario, error) {
	if req.ID == "" {
		return s.repo.Create(ctx, domain.Scenario{
			Name:                req.Name,
			Description:         req.Description,
			InputData:           input,
			OptimizationResults: res,
		})
	}

	return s.repo.Update(ctx, req.ID, domain.ScenarioPatch{
		Name:                &req.Name,
		Description:         &req.Description,
		InputData:           &input,
		OptimizationResults: res,
	})
}

// Tables returns a stored scenario with its input in editable form.
func (s *ScenarioService) Tables(ctx context.Context, id string) (domain.Scenario, domain.EditableTables, error) {
	sc, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.Scenario{}, domain.EditableTables{}, err
	}
	return sc, domain.NewEditableTables(sc.InputData), nil
}

// ErrNotOptimized is returned when exporting a scenario without results.
var ErrNotOptimized = errors.New("scenario has no optimization results")

// Export renders the stored results of a scenario as a spreadsheet.
func (s *ScenarioService) Export(ctx context.Context, id string) (domain.Scenario, []byte, error) {
	sc, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.Scenario{}, nil, fmt.Errorf("export: %w", err)
	}
	if sc.OptimizationResults == nil {
		return domain.Scenario{}, nil, fmt.Errorf("export %q: %w", id, ErrNotOptimized)
	}

	b, err := s.exporter.Export(ctx, *sc.OptimizationResults)
	if err != nil {
		return domain.Scenario{}, nil, fmt.Errorf("export %q: %w", id, err)
	}
	return sc, b, nil
}
