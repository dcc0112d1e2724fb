package services

import (
	"context"
	"route-scenario-service/internal/adapters/repositories"
	"route-scenario-service/internal/domain"
	"route-scenario-service/internal/platform/db"
	"testing"

	"github.com/stretchr/testify/require"
)

func inputWithCost(cost float64) domain.NormalizedInput {
	p := domain.RouteTruckType{Route: "R1", TruckType: "Small"}
	return domain.NormalizedInput{
		Cities:          []string{"Pune", "Mumbai"},
		Demand:          map[string]float64{"Pune": 10, "Mumbai": 15},
		LatDict:         map[string]float64{},
		LongDict:        map[string]float64{},
		Routes:          []string{"R1"},
		TruckTypes:      []string{"Small"},
		RouteCities:     map[string][]string{"R1": {"Pune", "Mumbai"}},
		RouteTruckTypes: []domain.RouteTruckType{p},
		Capacity:        domain.PairValues{p: 30},
		Cost:            domain.PairValues{p: cost},
	}
}

func newTestRepo(t *testing.T) *repositories.SQLScenarioRepository {
	t.Helper()
	conn, err := db.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, repositories.InitSchema(context.Background(), conn, db.DialectSQLite))
	return repositories.NewSqliteScenarioRepository(conn)
}
