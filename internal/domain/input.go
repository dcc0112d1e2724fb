package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// PairKeyDelimiter joins a route and a truck type in the wire form of a
// capacity/cost key ("R1|Small"). It never appears in memory: maps are keyed
// by RouteTruckType.
const PairKeyDelimiter = "|"

// RouteTruckType declares that a truck type is available on a route.
// It is encoded on the wire as a two-element array [route, truck_type].
type RouteTruckType struct {
	Route     string
	TruckType string
}

// WireKey returns the delimiter-joined form used by the optimizer contract.
func (p RouteTruckType) WireKey() (string, error) {
	if strings.Contains(p.Route, PairKeyDelimiter) {
		return "", fmt.Errorf("route %q contains reserved delimiter %q", p.Route, PairKeyDelimiter)
	}
	return p.Route + PairKeyDelimiter + p.TruckType, nil
}

// ParseWireKey splits a "route|truck_type" key on the first delimiter.
func ParseWireKey(key string) (RouteTruckType, error) {
	route, truck, ok := strings.Cut(key, PairKeyDelimiter)
	if !ok {
		return RouteTruckType{}, fmt.Errorf("compound key %q: missing delimiter %q", key, PairKeyDelimiter)
	}
	if route == "" || truck == "" {
		return RouteTruckType{}, fmt.Errorf("compound key %q: empty route or truck type", key)
	}
	return RouteTruckType{Route: route, TruckType: truck}, nil
}

func (p RouteTruckType) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]string{p.Route, p.TruckType})
}

func (p *RouteTruckType) UnmarshalJSON(b []byte) error {
	var pair []string
	if err := json.Unmarshal(b, &pair); err != nil {
		return fmt.Errorf("route truck type: %w", err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("route truck type: expected [route, truck_type], got %d elements", len(pair))
	}
	p.Route, p.TruckType = pair[0], pair[1]
	return nil
}

// PairValues maps a route/truck-type pair to a numeric value (capacity or cost).
type PairValues map[RouteTruckType]float64

func (v PairValues) MarshalJSON() ([]byte, error) {
	out := make(map[string]float64, len(v))
	for pair, value := range v {
		key, err := pair.WireKey()
		if err != nil {
			return nil, fmt.Errorf("encode pair values: %w", err)
		}
		out[key] = value
	}
	return json.Marshal(out)
}

func (v *PairValues) UnmarshalJSON(b []byte) error {
	var raw map[string]float64
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("decode pair values: %w", err)
	}
	out := make(PairValues, len(raw))
	for key, value := range raw {
		pair, err := ParseWireKey(key)
		if err != nil {
			return fmt.Errorf("decode pair values: %w", err)
		}
		out[pair] = value
	}
	*v = out
	return nil
}

// NormalizedInput is the canonical city/route/truck-type data consumed by the
// optimizer and by the comparison engine.
type NormalizedInput struct {
	Cities          []string            `json:"cities"`
	Demand          map[string]float64  `json:"demand"`
	LatDict         map[string]float64  `json:"lat_dict"`
	LongDict        map[string]float64  `json:"long_dict"`
	Routes          []string            `json:"routes"`
	TruckTypes      []string            `json:"truck_types"`
	RouteCities     map[string][]string `json:"route_cities"`
	RouteTruckTypes []RouteTruckType    `json:"route_trucktypes"`
	Capacity        PairValues          `json:"capacity"`
	Cost            PairValues          `json:"cost"`
}

// OrderedRoutes returns the keys of RouteCities, following Routes first and
// then any remaining keys in lexical order so iteration is deterministic.
func (in NormalizedInput) OrderedRoutes() []string {
	out := make([]string, 0, len(in.RouteCities))
	seen := make(map[string]struct{}, len(in.RouteCities))
	for _, r := range in.Routes {
		if _, ok := in.RouteCities[r]; !ok {
			continue
		}
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}

	rest := make([]string, 0)
	for r := range in.RouteCities {
		if _, ok := seen[r]; !ok {
			rest = append(rest, r)
		}
	}
	sort.Strings(rest)

	return append(out, rest...)
}

// Validate checks the structural invariants the optimizer relies on.
// All violations are reported together, each wrapping ErrInvalidInput.
func (in NormalizedInput) Validate() error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidInput}, args...)...))
	}

	if len(in.Cities) == 0 {
		add("no cities")
	}

	for city, d := range in.Demand {
		if d < 0 {
			add("city %q has negative demand %v", city, d)
		}
	}

	pairs := make(map[RouteTruckType]struct{}, len(in.RouteTruckTypes))
	for _, p := range in.RouteTruckTypes {
		if _, ok := pairs[p]; ok {
			add("duplicate route/truck type pair (%q, %q)", p.Route, p.TruckType)
			continue
		}
		pairs[p] = struct{}{}

		if _, err := p.WireKey(); err != nil {
			add("%v", err)
		}
		if _, ok := in.RouteCities[p.Route]; !ok {
			add("route %q has truck types but no cities", p.Route)
		}
		if _, ok := in.Capacity[p]; !ok {
			add("missing capacity for (%q, %q)", p.Route, p.TruckType)
		}
		if _, ok := in.Cost[p]; !ok {
			add("missing cost for (%q, %q)", p.Route, p.TruckType)
		}
	}

	for p := range in.Capacity {
		if _, ok := pairs[p]; !ok {
			add("orphan capacity for (%q, %q)", p.Route, p.TruckType)
		}
	}
	for p := range in.Cost {
		if _, ok := pairs[p]; !ok {
			add("orphan cost for (%q, %q)", p.Route, p.TruckType)
		}
	}

	return errors.Join(errs...)
}
