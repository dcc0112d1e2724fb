package ports

import (
	"context"
	"route-scenario-service/internal/domain"
)

// Port: a boundary for persisting Scenario records.
//
// Get, Update, Delete and Duplicate return an error wrapping domain.ErrNotFound
// for unknown ids. Update is last-write-wins.
type ScenarioRepository interface {
	// List all scenarios, newest first.
	List(ctx context.Context) ([]domain.Scenario, error)
	// Persist a new scenario. ID and CreatedAt are assigned by the repository.
	Create(ctx context.Context, s domain.Scenario) (domain.Scenario, error)
	Get(ctx context.Context, id string) (domain.Scenario, error)
	Update(ctx context.Context, id string, patch domain.ScenarioPatch) (domain.Scenario, error)
	Delete(ctx context.Context, id string) error
	// Copy a scenario's input and results under a new id and name.
	Duplicate(ctx context.Context, id string, newName string) (domain.Scenario, error)
}
