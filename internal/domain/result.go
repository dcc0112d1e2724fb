package domain

// Aggregate figures reported by the optimizer for one run.
// Missing fields decode as 0.
type SummaryMetrics struct {
	TotalCost         float64 `json:"total_cost"`
	TotalTrucks       float64 `json:"total_trucks"`
	TotalDemand       float64 `json:"total_demand"`
	TotalCapacityUsed float64 `json:"total_capacity_used"`
	RoutesOptimized   float64 `json:"routes_optimized"`
	CitiesServed      float64 `json:"cities_served"`
}

// Quantity delivered to one city by a selected route.
type CityDelivery struct {
	City     string  `json:"city"`
	Quantity float64 `json:"quantity"`
	Demand   float64 `json:"demand"`
}

// A route/truck-type combination the optimizer chose to run.
type SelectedRoute struct {
	RouteID             string         `json:"route_id"`
	TruckType           string         `json:"truck_type"`
	TrucksUsed          float64        `json:"trucks_used"`
	Capacity            float64        `json:"capacity"`
	CostPerTruck        float64        `json:"cost_per_truck"`
	TotalCost           float64        `json:"total_cost"`
	CitiesDelivered     []CityDelivery `json:"cities_delivered"`
	SortedCities        []string       `json:"sorted_cities"`
	TotalDelivered      float64        `json:"total_delivered"`
	CapacityUtilization float64        `json:"capacity_utilization"`
}

// Result is the output of one optimize call. It is opaque to this service
// apart from the summary metrics read by the comparison engine.
type Result struct {
	TotalCost       float64                `json:"total_cost"`
	SummaryMetrics  SummaryMetrics         `json:"summary_metrics"`
	RoutesSelected  []SelectedRoute        `json:"routes_selected"`
	CityCoordinates map[string]Coordinates `json:"city_coordinates"`
}

// Summary of a successful parse_and_validate call.
type ParseSummary struct {
	CitiesCount int      `json:"cities_count"`
	RoutesCount int      `json:"routes_count"`
	TruckTypes  []string `json:"truck_types"`
}

// ParseResult is returned by the external parse/validate operation.
type ParseResult struct {
	Success  bool            `json:"success"`
	Message  string          `json:"message"`
	Data     ParseSummary    `json:"data"`
	FileData NormalizedInput `json:"file_data"`
}

// SourceFile is one raw spreadsheet handed to the parser.
type SourceFile struct {
	Name    string
	Content []byte
}
