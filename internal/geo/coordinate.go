package geo

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/paulmach/orb"
)

// ErrOutOfRange is returned for a latitude outside [-90, 90] or a longitude outside [-180, 180]
var ErrOutOfRange = errors.New("coordinate out of range")

// Coordinate is a WGS84 latitude/longitude pair
// On the wire it is a two element array [lat, lon]
type Coordinate struct {
	Lat float64
	Lon float64
}

// NewCoordinate validates lat/lon and returns the coordinate
func NewCoordinate(lat, lon float64) (Coordinate, error) {
	c := Coordinate{Lat: lat, Lon: lon}
	if err := c.Validate(); err != nil {
		return Coordinate{}, err
	}
	return c, nil
}

// Validate reports ErrOutOfRange if the coordinate is not on the globe
func (c Coordinate) Validate() error {
	// NaN fails every comparison, so check the accepted range rather than the rejected one
	if !(c.Lat >= -90 && c.Lat <= 90) || !(c.Lon >= -180 && c.Lon <= 180) {
		return fmt.Errorf("%w: (%v, %v)", ErrOutOfRange, c.Lat, c.Lon)
	}
	return nil
}

// Point converts to an orb point (X is longitude, Y is latitude)
func (c Coordinate) Point() orb.Point {
	return orb.Point{c.Lon, c.Lat}
}

// FromPoint converts an orb point back to a coordinate
func FromPoint(p orb.Point) Coordinate {
	return Coordinate{Lat: p.Lat(), Lon: p.Lon()}
}

// String returns a formatted lat/lon string
func (c Coordinate) String() string {
	lat, lon := c.Lat, c.Lon

	latDir := "N"
	if lat < 0 {
		latDir = "S"
		lat = -lat
	}

	lonDir := "E"
	if lon < 0 {
		lonDir = "W"
		lon = -lon
	}

	return fmt.Sprintf("%.6f*%s, %.6f*%s", lat, latDir, lon, lonDir)
}

// MarshalJSON encodes the coordinate as [lat, lon]
func (c Coordinate) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{c.Lat, c.Lon})
}

// UnmarshalJSON decodes a [lat, lon] array
func (c *Coordinate) UnmarshalJSON(data []byte) error {
	var pair []float64
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("coordinate: %w", err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("coordinate: want [lat, lon], got %d values", len(pair))
	}
	c.Lat, c.Lon = pair[0], pair[1]
	return nil
}

// UnmarshalYAML accepts the same [lat, lon] form used on the wire
func (c *Coordinate) UnmarshalYAML(unmarshal func(any) error) error {
	var pair []float64
	if err := unmarshal(&pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("coordinate: want [lat, lon], got %d values", len(pair))
	}
	c.Lat, c.Lon = pair[0], pair[1]
	return nil
}
