package api

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"route-scenario-service/internal/adapters/optimizer"
	"route-scenario-service/internal/adapters/repositories"
	"route-scenario-service/internal/api/dto"
	"route-scenario-service/internal/domain"
	"route-scenario-service/internal/platform/db"
	"route-scenario-service/internal/services"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleInput(cost float64) domain.NormalizedInput {
	p := domain.RouteTruckType{Route: "R1", TruckType: "Small"}
	return domain.NormalizedInput{
		Cities:          []string{"Pune"},
		Demand:          map[string]float64{"Pune": 10},
		LatDict:         map[string]float64{"Pune": 18.52},
		LongDict:        map[string]float64{"Pune": 73.85},
		Routes:          []string{"R1"},
		TruckTypes:      []string{"Small"},
		RouteCities:     map[string][]string{"R1": {"Pune"}},
		RouteTruckTypes: []domain.RouteTruckType{p},
		Capacity:        domain.PairValues{p: 20},
		Cost:            domain.PairValues{p: cost},
	}
}

type testServer struct {
	srv     *httptest.Server
	backend *optimizer.MockBackend
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	conn, err := db.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, repositories.InitSchema(context.Background(), conn, db.DialectSQLite))

	repo := repositories.NewSqliteScenarioRepository(conn)
	backend := optimizer.NewMockBackend()

	h := NewRouter(Deps{
		Scenarios: services.NewScenarioService(repo, backend, backend),
		Batches:   services.NewBatchOrchestrator(backend, backend, repo),
		Comparer:  services.NewComparer(repo),
	})
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	return &testServer{srv: srv, backend: backend}
}

func (ts *testServer) do(t *testing.T, method, path string, body any) *http.Response {
	t.Helper()
	var rd *bytes.Reader
	switch b := body.(type) {
	case nil:
		rd = bytes.NewReader(nil)
	case string:
		rd = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		rd = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, ts.srv.URL+path, rd)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", decode[map[string]string](t, resp)["status"])
}

func TestScenarioCRUD(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(t, http.MethodPost, "/api/scenarios", dto.CreateScenarioRequest{Name: "Base", InputData: sampleInput(100)})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[domain.Scenario](t, resp)
	require.NotEmpty(t, created.ID)

	resp = ts.do(t, http.MethodGet, "/api/scenarios/"+created.ID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Base", decode[domain.Scenario](t, resp).Name)

	resp = ts.do(t, http.MethodPut, "/api/scenarios/"+created.ID, `{"description": "updated"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	updated := decode[domain.Scenario](t, resp)
	assert.Equal(t, "updated", updated.Description)
	assert.Equal(t, "Base", updated.Name)

	resp = ts.do(t, http.MethodPut, "/api/scenarios/"+created.ID+"/name", dto.RenameRequest{Name: "  Base  "})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Base", decode[domain.Scenario](t, resp).Name)

	resp = ts.do(t, http.MethodPut, "/api/scenarios/"+created.ID+"/name", dto.RenameRequest{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = ts.do(t, http.MethodPost, "/api/scenarios/"+created.ID+"/duplicate?new_name=Base%20v2", nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	dup := decode[domain.Scenario](t, resp)
	assert.Equal(t, "Base v2", dup.Name)

	resp = ts.do(t, http.MethodGet, "/api/scenarios", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]domain.Scenario](t, resp), 2)

	resp = ts.do(t, http.MethodDelete, "/api/scenarios/"+created.ID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = ts.do(t, http.MethodGet, "/api/scenarios/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestScenarioRequestValidation(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(t, http.MethodPost, "/api/scenarios", `{"name": ""}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = ts.do(t, http.MethodPost, "/api/scenarios", `{"name": "x", "bogus": 1}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = ts.do(t, http.MethodPost, "/api/scenarios/missing/duplicate", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = ts.do(t, http.MethodPost, "/api/scenarios/missing/duplicate?new_name=x", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestTablesSaveOptimizeAndExport(t *testing.T) {
	ts := newTestServer(t)

	tables := domain.NewEditableTables(sampleInput(300))
	resp := ts.do(t, http.MethodPost, "/api/scenarios/tables", dto.TablesRequest{Name: "Edited", Tables: tables})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	saved := decode[services.SaveTablesResult](t, resp)
	id := saved.Scenario.ID

	resp = ts.do(t, http.MethodGet, "/api/scenarios/"+id+"/export", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = ts.do(t, http.MethodGet, "/api/scenarios/"+id+"/tables", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decode[dto.TablesResponse](t, resp)
	assert.False(t, got.Optimized)
	assert.Equal(t, tables, got.Tables)

	resp = ts.do(t, http.MethodPost, "/api/scenarios/"+id+"/tables/optimize", dto.TablesRequest{Name: "Edited", Tables: tables})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	opt := decode[services.SaveTablesResult](t, resp)
	require.NotNil(t, opt.Scenario.OptimizationResults)
	assert.Equal(t, 300.0, opt.Scenario.OptimizationResults.TotalCost)

	resp = ts.do(t, http.MethodGet, "/api/scenarios/"+id+"/export", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, spreadsheetType, resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "Edited_results.xlsx")
}

const spreadsheetType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func TestOptimizeUpstreamFailureIsBadGateway(t *testing.T) {
	ts := newTestServer(t)
	ts.backend.OptimizeFunc = func(domain.NormalizedInput) (*domain.Result, error) {
		return nil, &optimizer.UpstreamError{Code: 500, Detail: "solver crashed"}
	}

	resp := ts.do(t, http.MethodPost, "/api/scenarios/tables/optimize", dto.TablesRequest{Name: "X", Tables: domain.NewEditableTables(sampleInput(1))})
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Equal(t, "solver crashed", decode[map[string]string](t, resp)["error"])
}

func TestOptimizeRejectsInvalidTables(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(t, http.MethodPost, "/api/scenarios/tables/optimize", dto.TablesRequest{Name: "X", Tables: domain.NewEditableTables(domain.NormalizedInput{})})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Empty(t, ts.backend.Calls())
}

func TestSaveTablesRejectsDelimiterInRoute(t *testing.T) {
	ts := newTestServer(t)

	tables := domain.NewEditableTables(sampleInput(1))
	tables.RouteCities[0].Route = "R|1"
	tables.RouteTrucks[0].Route = "R|1"

	resp := ts.do(t, http.MethodPost, "/api/scenarios/tables", dto.TablesRequest{Name: "X", Tables: tables})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, decode[map[string]string](t, resp)["error"], "reserved delimiter")

	resp = ts.do(t, http.MethodGet, "/api/scenarios", nil)
	assert.Empty(t, decode[[]domain.Scenario](t, resp))
}

func TestSaveTablesTreatsNonFiniteCellsAsZero(t *testing.T) {
	ts := newTestServer(t)

	tables := domain.NewEditableTables(sampleInput(1))
	tables.Cities[0].Demand = "NaN"
	tables.RouteTrucks[0].Cost = "Infinity"

	resp := ts.do(t, http.MethodPost, "/api/scenarios/tables", dto.TablesRequest{Name: "X", Tables: tables})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	saved := decode[services.SaveTablesResult](t, resp)
	assert.Equal(t, 0.0, saved.Scenario.InputData.Demand["Pune"])

	resp = ts.do(t, http.MethodPost, "/api/scenarios/tables/optimize", dto.TablesRequest{Name: "X", Tables: tables})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	opt := decode[services.SaveTablesResult](t, resp)
	require.NotNil(t, opt.Scenario.OptimizationResults)
	assert.Equal(t, 0.0, opt.Scenario.OptimizationResults.TotalCost)
}

func TestCompare(t *testing.T) {
	ts := newTestServer(t)

	var ids []string
	for _, cost := range []float64{100000, 120000} {
		resp := ts.do(t, http.MethodPost, "/api/scenarios", dto.CreateScenarioRequest{
			Name:                "S",
			OptimizationResults: &domain.Result{SummaryMetrics: domain.SummaryMetrics{TotalCost: cost}},
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		ids = append(ids, decode[domain.Scenario](t, resp).ID)
	}

	resp := ts.do(t, http.MethodPost, "/api/scenarios/compare", dto.CompareRequest{ScenarioIDs: ids[:1]})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, decode[map[string]string](t, resp)["error"], domain.ErrTooFewScenarios.Error())

	resp = ts.do(t, http.MethodPost, "/api/scenarios/compare", dto.CompareRequest{ScenarioIDs: ids})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	cmp := decode[domain.Comparison](t, resp)
	require.NotNil(t, cmp.Pairwise)
	assert.Equal(t, domain.Delta{Percent: 20, Direction: domain.DirectionUp}, cmp.Pairwise.TotalCost)

	resp = ts.do(t, http.MethodPost, "/api/scenarios/compare", ids)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[domain.Comparison](t, resp).Scenarios, 2)

	resp = ts.do(t, http.MethodPost, "/api/scenarios/compare", `{"scenario_ids": [], "bogus": 1}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestBatchStreamsProgressAndOutcome(t *testing.T) {
	ts := newTestServer(t)
	ts.backend.AcceptFile("north.xlsx", sampleInput(100))
	ts.backend.AcceptFile("east.xlsx", sampleInput(200))
	ts.backend.RejectFile("south.xlsx", &optimizer.UpstreamError{Code: 400, Detail: "bad sheet"})

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for _, name := range []string{"north.xlsx", "south.xlsx", "east.xlsx"} {
		part, err := mw.CreateFormFile("files", name)
		require.NoError(t, err)
		_, _ = part.Write([]byte("content of " + name))
	}
	require.NoError(t, mw.Close())

	resp, err := http.Post(ts.srv.URL+"/api/batches", mw.FormDataContentType(), &body)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.HasPrefix(resp.Header.Get("Content-Type"), "application/x-ndjson"))

	var events []dto.BatchEvent
	sc := bufio.NewScanner(resp.Body)
	for sc.Scan() {
		var ev dto.BatchEvent
		require.NoError(t, json.Unmarshal(sc.Bytes(), &ev))
		events = append(events, ev)
	}
	require.NoError(t, sc.Err())
	require.NotEmpty(t, events)

	last := events[len(events)-1]
	require.Equal(t, dto.BatchEventOutcome, last.Type)
	require.NotNil(t, last.Outcome)
	assert.Equal(t, domain.OutcomeCompare, last.Outcome.Kind)
	assert.Len(t, last.Outcome.ScenarioIDs, 2)
	assert.Equal(t, "bad sheet", last.Outcome.Items[1].Error)

	for _, ev := range events[:len(events)-1] {
		assert.Equal(t, dto.BatchEventProgress, ev.Type)
		assert.Equal(t, 3, ev.Progress.Total)
	}
}

func TestBatchRequiresFiles(t *testing.T) {
	ts := newTestServer(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("note", "nothing here"))
	require.NoError(t, mw.Close())

	resp, err := http.Post(ts.srv.URL+"/api/batches", mw.FormDataContentType(), &body)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
