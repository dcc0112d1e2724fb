package domain

import (
	"encoding/json"
	"fmt"
)

// Immutable geographic coordinates (latitude, longitude).
type Coordinates struct {
	Lat float64
	Lon float64
}

// Return coordinates as [lat, long], the order used by the optimizer.
func (c Coordinates) CoordsToList() []float64 { return []float64{c.Lat, c.Lon} }

func (c Coordinates) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.CoordsToList())
}

func (c *Coordinates) UnmarshalJSON(b []byte) error {
	var pair []float64
	if err := json.Unmarshal(b, &pair); err != nil {
		return fmt.Errorf("coordinates: %w", err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("coordinates: expected [lat, long], got %d values", len(pair))
	}
	c.Lat, c.Lon = pair[0], pair[1]
	return nil
}
