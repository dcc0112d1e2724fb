package optimizer

import (
	"context"
	"encoding/json"
	"fmt"
	"route-scenario-service/internal/domain"
	"sync"
)

// MockBackend is an in-process stand-in for the optimizer backend.
// Parse answers come from per-file fixtures; Optimize derives a
// deterministic result from the input unless OptimizeFunc is set.
type MockBackend struct {
	mu sync.Mutex

	parsed      map[string]domain.NormalizedInput
	parseErrors map[string]error

	OptimizeFunc func(domain.NormalizedInput) (*domain.Result, error)
	ExportErr    error

	calls []string
}

func NewMockBackend() *MockBackend {
	return &MockBackend{
		parsed:      map[string]domain.NormalizedInput{},
		parseErrors: map[string]error{},
	}
}

// AcceptFile registers the input returned when name is parsed.
func (m *MockBackend) AcceptFile(name string, input domain.NormalizedInput) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.parsed[name] = input
}

// RejectFile makes parsing name fail with err.
func (m *MockBackend) RejectFile(name string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.parseErrors[name] = err
}

// Calls returns the operations seen so far, e.g. "parse:a.xlsx", "optimize".
func (m *MockBackend) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func (m *MockBackend) record(call string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, call)
}

func (m *MockBackend) ParseAndValidate(ctx context.Context, file domain.SourceFile) (domain.ParseResult, error) {
	m.record("parse:" + file.Name)

	m.mu.Lock()
	in, ok := m.parsed[file.Name]
	perr := m.parseErrors[file.Name]
	m.mu.Unlock()

	if perr != nil {
		return domain.ParseResult{}, perr
	}
	if !ok {
		return domain.ParseResult{}, &UpstreamError{Code: 400, Detail: fmt.Sprintf("no fixture for %q", file.Name)}
	}

	return domain.ParseResult{
		Success: true,
		Message: "File uploaded and validated successfully",
		Data: domain.ParseSummary{
			CitiesCount: len(in.Cities),
			RoutesCount: len(in.Routes),
			TruckTypes:  append([]string(nil), in.TruckTypes...),
		},
		FileData: in,
	}, nil
}

func (m *MockBackend) Optimize(ctx context.Context, input domain.NormalizedInput) (*domain.Result, error) {
	m.record("optimize")
	if m.OptimizeFunc != nil {
		return m.OptimizeFunc(input)
	}
	return SummarizeInput(input), nil
}

func (m *MockBackend) Export(ctx context.Context, result domain.Result) ([]byte, error) {
	m.record("export")
	if m.ExportErr != nil {
		return nil, m.ExportErr
	}
	return json.Marshal(result)
}

// SummarizeInput builds a plausible result that selects one truck per
// route/truck-type pair.
func SummarizeInput(in domain.NormalizedInput) *domain.Result {
	var demand float64
	for _, d := range in.Demand {
		demand += d
	}

	res := &domain.Result{
		CityCoordinates: map[string]domain.Coordinates{},
	}
	for _, p := range in.RouteTruckTypes {
		res.TotalCost += in.Cost[p]
		res.SummaryMetrics.TotalCapacityUsed += in.Capacity[p]
		res.RoutesSelected = append(res.RoutesSelected, domain.SelectedRoute{
			RouteID:      p.Route,
			TruckType:    p.TruckType,
			TrucksUsed:   1,
			Capacity:     in.Capacity[p],
			CostPerTruck: in.Cost[p],
			TotalCost:    in.Cost[p],
			SortedCities: in.RouteCities[p.Route],
		})
	}
	for _, city := range in.Cities {
		lat, okLat := in.LatDict[city]
		long, okLong := in.LongDict[city]
		if okLat && okLong {
			res.CityCoordinates[city] = domain.Coordinates{Lat: lat, Lon: long}
		}
	}

	res.SummaryMetrics.TotalCost = res.TotalCost
	res.SummaryMetrics.TotalTrucks = float64(len(in.RouteTruckTypes))
	res.SummaryMetrics.TotalDemand = demand
	res.SummaryMetrics.RoutesOptimized = float64(len(in.Routes))
	res.SummaryMetrics.CitiesServed = float64(len(in.Cities))
	return res
}
