package geo

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
)

func TestNewCoordinate(t *testing.T) {
	tests := []struct {
		name    string
		lat     float64
		lon     float64
		wantErr bool
	}{
		{"center of us", 39.8283, -98.5795, false},
		{"north pole", 90, 0, false},
		{"antimeridian", 0, -180, false},
		{"lat too high", 90.1, 0, true},
		{"lon too low", 0, -180.5, true},
		{"nan", math.NaN(), 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCoordinate(tt.lat, tt.lon)
			if tt.wantErr {
				if !errors.Is(err, ErrOutOfRange) {
					t.Fatalf("expected ErrOutOfRange, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestCoordinateJSON(t *testing.T) {
	c := Coordinate{Lat: 39.5, Lon: -98.5}

	data, err := json.Marshal(c)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != "[39.5,-98.5]" {
		t.Errorf("expected [39.5,-98.5], got %s", data)
	}

	var got Coordinate
	if err := json.Unmarshal([]byte("[40.25,-100.75]"), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got != (Coordinate{Lat: 40.25, Lon: -100.75}) {
		t.Errorf("unexpected coordinate %+v", got)
	}

	if err := json.Unmarshal([]byte("[1,2,3]"), &got); err == nil {
		t.Error("expected error for three values")
	}
}

func TestCoordinatePoint(t *testing.T) {
	c := Coordinate{Lat: 45, Lon: -85}
	p := c.Point()
	if p.Lon() != -85 || p.Lat() != 45 {
		t.Errorf("unexpected point %v", p)
	}
	if FromPoint(p) != c {
		t.Errorf("FromPoint(%v) = %v", p, FromPoint(p))
	}
}
