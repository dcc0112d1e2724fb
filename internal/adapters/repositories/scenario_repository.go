package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"route-scenario-service/internal/domain"
	"route-scenario-service/internal/platform/db"
	"route-scenario-service/internal/platform/obs"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SQLScenarioRepository implements ports.ScenarioRepository on database/sql.
// The same queries serve sqlite and postgres; only bind syntax differs.
type SQLScenarioRepository struct {
	DB      *sql.DB
	Dialect db.Dialect

	now   func() time.Time
	newID func() string
}

func NewSQLScenarioRepository(conn *sql.DB, dialect db.Dialect) *SQLScenarioRepository {
	return &SQLScenarioRepository{
		DB:      conn,
		Dialect: dialect,
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

func NewSqliteScenarioRepository(conn *sql.DB) *SQLScenarioRepository {
	return NewSQLScenarioRepository(conn, db.DialectSQLite)
}

func NewPostgresScenarioRepository(conn *sql.DB) *SQLScenarioRepository {
	return NewSQLScenarioRepository(conn, db.DialectPostgres)
}

func notFound(op, id string) error {
	return fmt.Errorf("%s: scenario %q: %w", op, id, domain.ErrNotFound)
}

// List all scenarios, newest first.
func (r *SQLScenarioRepository) List(ctx context.Context) (_ []domain.Scenario, err error) {
	defer obs.Time(ctx, "scenarios.List")(&err)

	if r.DB == nil {
		return nil, errors.New("list scenarios: db is nil")
	}

	rows, err := r.DB.QueryContext(ctx, `
	SELECT `+scenarioColumns+`
	FROM scenarios
	ORDER BY created_at DESC, id;
	`)
	if err != nil {
		return nil, fmt.Errorf("list scenarios: query scenarios table: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Scenario, 0)
	for rows.Next() {
		s, err := scanScenario(rows)
		if err != nil {
			return nil, fmt.Errorf("list scenarios: scan rows: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list scenarios: row iteration: %w", err)
	}

	return out, nil
}

func (r *SQLScenarioRepository) Get(ctx context.Context, id string) (_ domain.Scenario, err error) {
	defer obs.Time(ctx, "scenarios.Get")(&err)

	return r.get(ctx, r.DB, id)
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (r *SQLScenarioRepository) get(ctx context.Context, q queryer, id string) (domain.Scenario, error) {
	if r.DB == nil {
		return domain.Scenario{}, errors.New("get scenario: db is nil")
	}

	row := q.QueryRowContext(ctx, r.Dialect.Rebind(`
	SELECT `+scenarioColumns+`
	FROM scenarios
	WHERE id = ?;
	`), id)

	s, err := scanScenario(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Scenario{}, notFound("get scenario", id)
	}
	if err != nil {
		return domain.Scenario{}, fmt.Errorf("get scenario %q: %w", id, err)
	}

	return s, nil
}

// Create assigns a fresh id and creation time and inserts the scenario.
func (r *SQLScenarioRepository) Create(ctx context.Context, s domain.Scenario) (_ domain.Scenario, err error) {
	defer obs.Time(ctx, "scenarios.Create")(&err)

	s.Name = strings.TrimSpace(s.Name)
	if s.Name == "" {
		return domain.Scenario{}, fmt.Errorf("create scenario: %w: name must not be empty", domain.ErrInvalidInput)
	}

	s.ID = r.newID()
	s.CreatedAt = r.now().UTC()

	if err := r.insert(ctx, s); err != nil {
		return domain.Scenario{}, fmt.Errorf("create scenario: %w", err)
	}

	return s, nil
}

func (r *SQLScenarioRepository) insert(ctx context.Context, s domain.Scenario) error {
	if r.DB == nil {
		return errors.New("db is nil")
	}

	row, err := toRow(s)
	if err != nil {
		return err
	}

	_, err = r.DB.ExecContext(ctx, r.Dialect.Rebind(`
	INSERT INTO scenarios (`+scenarioColumns+`)
	VALUES (?, ?, ?, ?, ?, ?);
	`), row.args()...)
	if err != nil {
		return fmt.Errorf("insert id=%s: %w", s.ID, err)
	}

	return nil
}

// Update applies patch to the stored scenario. Concurrent updates are
// last-write-wins: there is no version check.
func (r *SQLScenarioRepository) Update(
	ctx context.Context,
	id string,
	patch domain.ScenarioPatch,
) (_ domain.Scenario, err error) {
	defer obs.Time(ctx, "scenarios.Update")(&err)

	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return domain.Scenario{}, fmt.Errorf("update scenario: %w: name must not be empty", domain.ErrInvalidInput)
	}

	if r.DB == nil {
		return domain.Scenario{}, errors.New("update scenario: db is nil")
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return domain.Scenario{}, fmt.Errorf("update scenario: db begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	s, err := r.get(ctx, tx, id)
	if err != nil {
		return domain.Scenario{}, fmt.Errorf("update scenario: %w", err)
	}

	s.Apply(patch)
	s.Name = strings.TrimSpace(s.Name)

	row, err := toRow(s)
	if err != nil {
		return domain.Scenario{}, fmt.Errorf("update scenario %q: %w", id, err)
	}

	_, err = tx.ExecContext(ctx, r.Dialect.Rebind(`
	UPDATE scenarios
	SET name = ?,
		description = ?,
		input_data = ?,
		optimization_results = ?
	WHERE id = ?;
	`), row.Name, row.Description, row.InputData, row.Results, row.ID)
	if err != nil {
		return domain.Scenario{}, fmt.Errorf("update scenario %q: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		return domain.Scenario{}, fmt.Errorf("update scenario commit: %w", err)
	}

	return s, nil
}

func (r *SQLScenarioRepository) Delete(ctx context.Context, id string) (err error) {
	defer obs.Time(ctx, "scenarios.Delete")(&err)

	if r.DB == nil {
		return errors.New("delete scenario: db is nil")
	}

	res, err := r.DB.ExecContext(ctx, r.Dialect.Rebind(`DELETE FROM scenarios WHERE id = ?;`), id)
	if err != nil {
		return fmt.Errorf("delete scenario %q: %w", id, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete scenario %q: rows affected: %w", id, err)
	}
	if n == 0 {
		return notFound("delete scenario", id)
	}

	return nil
}

// Duplicate copies input and results under a new id and name. The copy keeps
// the original description or, when there is none, notes where it came from.
func (r *SQLScenarioRepository) Duplicate(
	ctx context.Context,
	id string,
	newName string,
) (_ domain.Scenario, err error) {
	defer obs.Time(ctx, "scenarios.Duplicate")(&err)

	newName = strings.TrimSpace(newName)
	if newName == "" {
		return domain.Scenario{}, fmt.Errorf("duplicate scenario: %w: new name must not be empty", domain.ErrInvalidInput)
	}

	orig, err := r.get(ctx, r.DB, id)
	if err != nil {
		return domain.Scenario{}, fmt.Errorf("duplicate scenario: %w", err)
	}

	cp := orig
	cp.ID = r.newID()
	cp.Name = newName
	cp.CreatedAt = r.now().UTC()
	if strings.TrimSpace(cp.Description) == "" {
		cp.Description = "Copy of " + orig.Name
	}

	if err := r.insert(ctx, cp); err != nil {
		return domain.Scenario{}, fmt.Errorf("duplicate scenario: %w", err)
	}

	return cp, nil
}
