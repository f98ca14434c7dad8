package geo

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
)

func TestProjectCenter(t *testing.T) {
	center := Coordinate{Lat: 39.8283, Lon: -98.5795}
	p := NewProjection(center, 1500, 80, 24, 2.0)

	pt := p.Project(center)
	if pt.X != 40 || pt.Y != 12 {
		t.Errorf("center projected to %+v, expected {40 12}", pt)
	}
}

func TestProjectUnprojectRoundTrip(t *testing.T) {
	p := NewProjection(Coordinate{Lat: 39.8283, Lon: -98.5795}, 1500, 100, 40, 2.0)

	for _, cell := range []Point{{0, 0}, {10, 5}, {50, 20}, {99, 39}} {
		c := p.Unproject(cell.X, cell.Y)
		got := p.Project(c)
		if got != cell {
			t.Errorf("round trip of %+v returned %+v", cell, got)
		}
	}
}

func TestProjectionNorthIsUp(t *testing.T) {
	p := NewProjection(Coordinate{Lat: 40, Lon: -100}, 500, 80, 24, 2.0)

	north := p.Project(Coordinate{Lat: 42, Lon: -100})
	south := p.Project(Coordinate{Lat: 38, Lon: -100})
	if north.Y >= south.Y {
		t.Errorf("expected north above south, got north=%+v south=%+v", north, south)
	}

	east := p.Project(Coordinate{Lat: 40, Lon: -98})
	west := p.Project(Coordinate{Lat: 40, Lon: -102})
	if east.X <= west.X {
		t.Errorf("expected east right of west, got east=%+v west=%+v", east, west)
	}
}

func TestZoomClamps(t *testing.T) {
	p := NewProjection(Coordinate{Lat: 40, Lon: -100}, 100, 80, 24, 2.0)

	p.Zoom(1000)
	if p.Radius() != MaxRadiusMiles {
		t.Errorf("expected radius clamped to %v, got %v", MaxRadiusMiles, p.Radius())
	}

	p.Zoom(0.00001)
	if p.Radius() != MinRadiusMiles {
		t.Errorf("expected radius clamped to %v, got %v", MinRadiusMiles, p.Radius())
	}
}

func TestFitKeepsBoundVisible(t *testing.T) {
	p := NewProjection(Coordinate{Lat: 0, Lon: 0}, 100, 80, 24, 2.0)

	b := orb.MultiPoint{{-100.5, 40.5}, {-98.5, 39.5}}.Bound()
	p.Fit(b)

	c := p.Center()
	if math.Abs(c.Lat-40) > 1e-9 || math.Abs(c.Lon+99.5) > 1e-9 {
		t.Errorf("unexpected center %+v", c)
	}
	for _, corner := range []Coordinate{{Lat: 40.5, Lon: -100.5}, {Lat: 39.5, Lon: -98.5}} {
		if !p.Visible(corner) {
			t.Errorf("expected %v to be visible after fit", corner)
		}
	}
}
