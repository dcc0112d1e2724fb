package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"route-scenario-service/internal/domain"
	"route-scenario-service/internal/platform/db"
	"testing"
	"time"

	"github.com/sclevine/spec"
	"github.com/sclevine/spec/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleInput() domain.NormalizedInput {
	p := domain.RouteTruckType{Route: "R1", TruckType: "Small"}
	return domain.NormalizedInput{
		Cities:          []string{"Pune", "Mumbai"},
		Demand:          map[string]float64{"Pune": 10, "Mumbai": 20},
		LatDict:         map[string]float64{"Pune": 18.52},
		LongDict:        map[string]float64{"Pune": 73.85},
		Routes:          []string{"R1"},
		TruckTypes:      []string{"Small"},
		RouteCities:     map[string][]string{"R1": {"Pune", "Mumbai"}},
		RouteTruckTypes: []domain.RouteTruckType{p},
		Capacity:        domain.PairValues{p: 40},
		Cost:            domain.PairValues{p: 900},
	}
}

func TestSQLScenarioRepository(t *testing.T) {
	spec.Run(t, "SQLScenarioRepository", testScenarioRepository, spec.Report(report.Terminal{}))
}

func testScenarioRepository(t *testing.T, describe spec.G, it spec.S) {
	var subject *SQLScenarioRepository
	var conn *sql.DB
	var ctx context.Context
	var clock time.Time
	var seq int

	it.Before(func() {
		var err error
		ctx = context.Background()
		conn, err = db.OpenSQLite(":memory:")
		require.NoError(t, err)
		require.NoError(t, InitSchema(ctx, conn, db.DialectSQLite))

		clock = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
		seq = 0
		subject = NewSqliteScenarioRepository(conn)
		subject.now = func() time.Time {
			clock = clock.Add(time.Minute)
			return clock
		}
		subject.newID = func() string {
			seq++
			return fmt.Sprintf("sc-%d", seq)
		}
	})

	it.After(func() {
		_ = conn.Close()
	})

	describe("Create()", func() {
		it("assigns an id and creation time and stores the input", func() {
			created, err := subject.Create(ctx, domain.Scenario{Name: "  North  ", InputData: sampleInput()})
			require.NoError(t, err)
			assert.Equal(t, "sc-1", created.ID)
			assert.Equal(t, "North", created.Name)
			assert.False(t, created.CreatedAt.IsZero())

			got, err := subject.Get(ctx, created.ID)
			require.NoError(t, err)
			assert.Equal(t, created, got)
			assert.Nil(t, got.OptimizationResults)
		})

		it("rejects an empty name", func() {
			_, err := subject.Create(ctx, domain.Scenario{Name: " "})
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	})

	describe("List()", func() {
		it("returns scenarios newest first", func() {
			_, err := subject.Create(ctx, domain.Scenario{Name: "first"})
			require.NoError(t, err)
			_, err = subject.Create(ctx, domain.Scenario{Name: "second"})
			require.NoError(t, err)

			all, err := subject.List(ctx)
			require.NoError(t, err)
			require.Len(t, all, 2)
			assert.Equal(t, "second", all[0].Name)
			assert.Equal(t, "first", all[1].Name)
		})

		it("returns an empty slice for an empty store", func() {
			all, err := subject.List(ctx)
			require.NoError(t, err)
			assert.NotNil(t, all)
			assert.Empty(t, all)
		})
	})

	describe("Update()", func() {
		var created domain.Scenario

		it.Before(func() {
			var err error
			created, err = subject.Create(ctx, domain.Scenario{Name: "base", InputData: sampleInput()})
			require.NoError(t, err)
		})

		it("replaces results wholesale and keeps created_at", func() {
			res := &domain.Result{TotalCost: 900, SummaryMetrics: domain.SummaryMetrics{TotalTrucks: 1}}
			updated, err := subject.Update(ctx, created.ID, domain.ScenarioPatch{OptimizationResults: res})
			require.NoError(t, err)
			assert.Equal(t, created.CreatedAt, updated.CreatedAt)
			require.NotNil(t, updated.OptimizationResults)

			res2 := &domain.Result{TotalCost: 700}
			_, err = subject.Update(ctx, created.ID, domain.ScenarioPatch{OptimizationResults: res2})
			require.NoError(t, err)

			got, err := subject.Get(ctx, created.ID)
			require.NoError(t, err)
			assert.Equal(t, 700.0, got.OptimizationResults.TotalCost)
			assert.Equal(t, 0.0, got.OptimizationResults.SummaryMetrics.TotalTrucks)
		})

		it("is last-write-wins for concurrent edits", func() {
			a, b := "from A", "from B"
			_, err := subject.Update(ctx, created.ID, domain.ScenarioPatch{Name: &a})
			require.NoError(t, err)
			_, err = subject.Update(ctx, created.ID, domain.ScenarioPatch{Name: &b})
			require.NoError(t, err)

			got, err := subject.Get(ctx, created.ID)
			require.NoError(t, err)
			assert.Equal(t, "from B", got.Name)
		})

		it("clears results on request", func() {
			_, err := subject.Update(ctx, created.ID, domain.ScenarioPatch{OptimizationResults: &domain.Result{TotalCost: 1}})
			require.NoError(t, err)
			got, err := subject.Update(ctx, created.ID, domain.ScenarioPatch{ClearResults: true})
			require.NoError(t, err)
			assert.Nil(t, got.OptimizationResults)
		})

		it("reports unknown ids as not found", func() {
			name := "x"
			_, err := subject.Update(ctx, "missing", domain.ScenarioPatch{Name: &name})
			assert.ErrorIs(t, err, domain.ErrNotFound)
		})
	})

	describe("Delete()", func() {
		it("removes the scenario", func() {
			created, err := subject.Create(ctx, domain.Scenario{Name: "gone"})
			require.NoError(t, err)
			require.NoError(t, subject.Delete(ctx, created.ID))

			_, err = subject.Get(ctx, created.ID)
			assert.ErrorIs(t, err, domain.ErrNotFound)
		})

		it("reports unknown ids as not found", func() {
			assert.ErrorIs(t, subject.Delete(ctx, "missing"), domain.ErrNotFound)
		})
	})

	describe("Duplicate()", func() {
		it("copies input and results under a new id and name", func() {
			orig, err := subject.Create(ctx, domain.Scenario{Name: "Base", InputData: sampleInput()})
			require.NoError(t, err)
			_, err = subject.Update(ctx, orig.ID, domain.ScenarioPatch{OptimizationResults: &domain.Result{TotalCost: 900}})
			require.NoError(t, err)

			cp, err := subject.Duplicate(ctx, orig.ID, "Base v2")
			require.NoError(t, err)
			assert.NotEqual(t, orig.ID, cp.ID)
			assert.Equal(t, "Base v2", cp.Name)
			assert.Equal(t, "Copy of Base", cp.Description)
			assert.True(t, cp.CreatedAt.After(orig.CreatedAt))
			assert.Equal(t, orig.InputData, cp.InputData)
			require.NotNil(t, cp.OptimizationResults)
			assert.Equal(t, 900.0, cp.OptimizationResults.TotalCost)

			all, err := subject.List(ctx)
			require.NoError(t, err)
			assert.Len(t, all, 2)
		})

		it("keeps an existing description", func() {
			orig, err := subject.Create(ctx, domain.Scenario{Name: "Base", Description: "monsoon demand"})
			require.NoError(t, err)
			cp, err := subject.Duplicate(ctx, orig.ID, "Other")
			require.NoError(t, err)
			assert.Equal(t, "monsoon demand", cp.Description)
		})

		it("requires a name and an existing source", func() {
			_, err := subject.Duplicate(ctx, "missing", "x")
			assert.ErrorIs(t, err, domain.ErrNotFound)

			_, err = subject.Duplicate(ctx, "missing", "")
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	})

	describe("SeedFromJSON()", func() {
		it("inserts new scenarios and skips known ids", func() {
			path := filepath.Join(t.TempDir(), "seed.json")
			require.NoError(t, os.WriteFile(path, []byte(`[
				{"id": "seed-1", "name": "Seeded", "input_data": {"cities": ["Pune"], "demand": {"Pune": 5}}},
				{"name": "No id"}
			]`), 0o600))

			n, err := SeedFromJSON(ctx, conn, db.DialectSQLite, path)
			require.NoError(t, err)
			assert.Equal(t, 2, n)

			n, err = SeedFromJSON(ctx, conn, db.DialectSQLite, path)
			require.NoError(t, err)
			assert.Equal(t, 1, n)

			got, err := subject.Get(ctx, "seed-1")
			require.NoError(t, err)
			assert.Equal(t, []string{"Pune"}, got.InputData.Cities)
		})

		it("rejects records without a name", func() {
			path := filepath.Join(t.TempDir(), "seed.json")
			require.NoError(t, os.WriteFile(path, []byte(`[{"id": "x"}]`), 0o600))

			_, err := SeedFromJSON(ctx, conn, db.DialectSQLite, path)
			assert.Error(t, err)
		})
	})
}
