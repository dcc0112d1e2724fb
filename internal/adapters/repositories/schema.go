package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"route-scenario-service/internal/domain"
	"route-scenario-service/internal/platform/db"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Initialize the scenario schema. Statements are valid for both dialects.
func InitSchema(ctx context.Context, conn *sql.DB, dialect db.Dialect) error {
	if conn == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createScenariosQuery := `
	CREATE TABLE IF NOT EXISTS scenarios (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		input_data TEXT NOT NULL,
		optimization_results TEXT,
		created_at TEXT NOT NULL
	);
	`

	createResultCacheQuery := `
	CREATE TABLE IF NOT EXISTS result_cache (
		cache_key TEXT PRIMARY KEY,
		result TEXT NOT NULL,
		expires_at BIGINT NOT NULL
	);
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_scenarios_created_at
	ON scenarios(created_at);
	`

	statements := []string{
		createScenariosQuery,
		createResultCacheQuery,
		createIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, dialect.Rebind(stmt)); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

// Populate the scenarios table from a JSON array of scenario documents.
// Records whose id already exists are left untouched; missing ids and
// timestamps are generated.
func SeedFromJSON(ctx context.Context, conn *sql.DB, dialect db.Dialect, jsonPath string) (int, error) {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return 0, fmt.Errorf("seed scenarios: read %q: %w", jsonPath, err)
	}

	var data []domain.Scenario
	if err := json.Unmarshal(bytes, &data); err != nil {
		return 0, fmt.Errorf("seed scenarios: parse json: %w", err)
	}

	rows := make([]scenarioRow, 0, len(data))
	for i, item := range data {
		item.Name = strings.TrimSpace(item.Name)
		if item.Name == "" {
			return 0, fmt.Errorf("seed scenarios: item at index %d: name cannot be empty", i+1)
		}
		if item.ID == "" {
			item.ID = uuid.NewString()
		}
		if item.CreatedAt.IsZero() {
			item.CreatedAt = time.Now()
		}

		row, err := toRow(item)
		if err != nil {
			return 0, fmt.Errorf("seed scenarios: item at index %d: %w", i+1, err)
		}
		rows = append(rows, row)
	}

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("seed scenarios: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, dialect.Rebind(`
	INSERT INTO scenarios (
		id,
		name,
		description,
		input_data,
		optimization_results,
		created_at
	)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT (id) DO NOTHING;
	`))
	if err != nil {
		return 0, fmt.Errorf("seed scenarios: prepare insert: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, r := range rows {
		res, err := stmt.ExecContext(ctx, r.args()...)
		if err != nil {
			return 0, fmt.Errorf("seed scenarios: insert id=%s: %w", r.ID, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			inserted += int(n)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("seed scenarios: commit tx: %w", err)
	}

	return inserted, nil
}
