package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Numeric is a user-typed numeric cell. It holds whatever the editor sent,
// including blanks and partial input, and is only interpreted on conversion.
type Numeric string

// FormatNumeric renders v without trailing zeros (100, 12.5, 19.07).
func FormatNumeric(v float64) Numeric {
	return Numeric(strconv.FormatFloat(v, 'f', -1, 64))
}

// Float parses the cell. ok is false for blank, unparsable or non-finite input.
func (n Numeric) Float() (v float64, ok bool) {
	s := strings.TrimSpace(string(n))
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// FloatOrZero parses the cell, falling back to 0.
func (n Numeric) FloatOrZero() float64 {
	v, _ := n.Float()
	return v
}

func (n Numeric) MarshalJSON() ([]byte, error) {
	if v, ok := n.Float(); ok {
		return json.Marshal(v)
	}
	return json.Marshal(string(n))
}

// UnmarshalJSON accepts a JSON number, a string or null.
func (n *Numeric) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*n = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return fmt.Errorf("numeric cell: %w", err)
		}
		*n = Numeric(s)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(b, &num); err != nil {
		return fmt.Errorf("numeric cell: %w", err)
	}
	*n = Numeric(num.String())
	return nil
}

// CityRow is one editable line of the cities table.
type CityRow struct {
	City   string  `json:"city"`
	Demand Numeric `json:"demand"`
	Lat    Numeric `json:"lat"`
	Long   Numeric `json:"long"`
}

// RouteCityRow records that a route serves a city.
type RouteCityRow struct {
	Route string `json:"route"`
	City  string `json:"city"`
}

// RouteTruckRow declares a truck type on a route with its capacity and cost.
type RouteTruckRow struct {
	Route     string  `json:"route"`
	TruckType string  `json:"truck_type"`
	Capacity  Numeric `json:"capacity"`
	Cost      Numeric `json:"cost"`
}

// EditableTables is the denormalized, row-based form of a NormalizedInput.
// Rows may be partial while the user edits them.
type EditableTables struct {
	Cities      []CityRow       `json:"cities"`
	RouteCities []RouteCityRow  `json:"route_cities"`
	RouteTrucks []RouteTruckRow `json:"route_trucktypes"`
}

func blankCityRow() CityRow { return CityRow{Demand: "0"} }

func blankRouteTruckRow() RouteTruckRow { return RouteTruckRow{Capacity: "0", Cost: "0"} }

// NewEditableTables expands a NormalizedInput into editable rows.
// A table that would be empty gets exactly one blank row.
func NewEditableTables(in NormalizedInput) EditableTables {
	t := EditableTables{
		Cities:      make([]CityRow, 0, len(in.Cities)),
		RouteCities: make([]RouteCityRow, 0),
		RouteTrucks: make([]RouteTruckRow, 0, len(in.RouteTruckTypes)),
	}

	for _, city := range in.Cities {
		row := CityRow{City: city, Demand: FormatNumeric(in.Demand[city])}
		if lat, ok := in.LatDict[city]; ok {
			row.Lat = FormatNumeric(lat)
		}
		if long, ok := in.LongDict[city]; ok {
			row.Long = FormatNumeric(long)
		}
		t.Cities = append(t.Cities, row)
	}

	for _, route := range in.OrderedRoutes() {
		for _, city := range in.RouteCities[route] {
			t.RouteCities = append(t.RouteCities, RouteCityRow{Route: route, City: city})
		}
	}

	for _, p := range in.RouteTruckTypes {
		t.RouteTrucks = append(t.RouteTrucks, RouteTruckRow{
			Route:     p.Route,
			TruckType: p.TruckType,
			Capacity:  FormatNumeric(in.Capacity[p]),
			Cost:      FormatNumeric(in.Cost[p]),
		})
	}

	if len(t.Cities) == 0 {
		t.Cities = append(t.Cities, blankCityRow())
	}
	if len(t.RouteCities) == 0 {
		t.RouteCities = append(t.RouteCities, RouteCityRow{})
	}
	if len(t.RouteTrucks) == 0 {
		t.RouteTrucks = append(t.RouteTrucks, blankRouteTruckRow())
	}

	return t
}

// Normalize collapses the rows into a NormalizedInput. Rows missing their
// city, route or truck type are skipped; conversion never fails.
//
// Duplicate city rows and duplicate (route, truck_type) rows collapse into one
// entry at their first position, taking values from the last row. Duplicate
// (route, city) rows are kept as-is. Duplicates reports what collapsed.
func (t EditableTables) Normalize() NormalizedInput {
	in := NormalizedInput{
		Cities:          make([]string, 0, len(t.Cities)),
		Demand:          make(map[string]float64, len(t.Cities)),
		LatDict:         make(map[string]float64),
		LongDict:        make(map[string]float64),
		Routes:          make([]string, 0),
		TruckTypes:      make([]string, 0),
		RouteCities:     make(map[string][]string),
		RouteTruckTypes: make([]RouteTruckType, 0, len(t.RouteTrucks)),
		Capacity:        make(PairValues, len(t.RouteTrucks)),
		Cost:            make(PairValues, len(t.RouteTrucks)),
	}

	seenCity := make(map[string]struct{}, len(t.Cities))
	for _, row := range t.Cities {
		city := strings.TrimSpace(row.City)
		if city == "" {
			continue
		}
		if _, ok := seenCity[city]; !ok {
			seenCity[city] = struct{}{}
			in.Cities = append(in.Cities, city)
		}

		in.Demand[city] = row.Demand.FloatOrZero()
		// Absent coordinates stay absent so they are geocoded downstream.
		if lat, ok := row.Lat.Float(); ok {
			in.LatDict[city] = lat
		} else {
			delete(in.LatDict, city)
		}
		if long, ok := row.Long.Float(); ok {
			in.LongDict[city] = long
		} else {
			delete(in.LongDict, city)
		}
	}

	for _, row := range t.RouteCities {
		route, city := strings.TrimSpace(row.Route), strings.TrimSpace(row.City)
		if route == "" || city == "" {
			continue
		}
		if _, ok := in.RouteCities[route]; !ok {
			in.Routes = append(in.Routes, route)
		}
		in.RouteCities[route] = append(in.RouteCities[route], city)
	}

	seenTruck := make(map[string]struct{})
	seenPair := make(map[RouteTruckType]struct{}, len(t.RouteTrucks))
	for _, row := range t.RouteTrucks {
		p := RouteTruckType{Route: strings.TrimSpace(row.Route), TruckType: strings.TrimSpace(row.TruckType)}
		if p.Route == "" || p.TruckType == "" {
			continue
		}
		if _, ok := seenTruck[p.TruckType]; !ok {
			seenTruck[p.TruckType] = struct{}{}
			in.TruckTypes = append(in.TruckTypes, p.TruckType)
		}
		if _, ok := seenPair[p]; !ok {
			seenPair[p] = struct{}{}
			in.RouteTruckTypes = append(in.RouteTruckTypes, p)
		}
		in.Capacity[p] = row.Capacity.FloatOrZero()
		in.Cost[p] = row.Cost.FloatOrZero()
	}

	return in
}

// DuplicateReport lists keys that appear in more than one complete row.
type DuplicateReport struct {
	Cities          []string         `json:"cities,omitempty"`
	RouteCities     []RouteCityRow   `json:"route_cities,omitempty"`
	RouteTruckTypes []RouteTruckType `json:"route_trucktypes,omitempty"`
}

// Empty reports whether no duplicates were found.
func (d DuplicateReport) Empty() bool {
	return len(d.Cities) == 0 && len(d.RouteCities) == 0 && len(d.RouteTruckTypes) == 0
}

// Duplicates reports every key that occurs in more than one complete row,
// once per key, in first-seen order.
func (t EditableTables) Duplicates() DuplicateReport {
	var report DuplicateReport

	cityCount := make(map[string]int)
	for _, row := range t.Cities {
		city := strings.TrimSpace(row.City)
		if city == "" {
			continue
		}
		cityCount[city]++
		if cityCount[city] == 2 {
			report.Cities = append(report.Cities, city)
		}
	}

	rcCount := make(map[RouteCityRow]int)
	for _, row := range t.RouteCities {
		rc := RouteCityRow{Route: strings.TrimSpace(row.Route), City: strings.TrimSpace(row.City)}
		if rc.Route == "" || rc.City == "" {
			continue
		}
		rcCount[rc]++
		if rcCount[rc] == 2 {
			report.RouteCities = append(report.RouteCities, rc)
		}
	}

	pairCount := make(map[RouteTruckType]int)
	for _, row := range t.RouteTrucks {
		p := RouteTruckType{Route: strings.TrimSpace(row.Route), TruckType: strings.TrimSpace(row.TruckType)}
		if p.Route == "" || p.TruckType == "" {
			continue
		}
		pairCount[p]++
		if pairCount[p] == 2 {
			report.RouteTruckTypes = append(report.RouteTruckTypes, p)
		}
	}

	return report
}
