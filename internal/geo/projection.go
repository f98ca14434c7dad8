package geo

import (
	"math"

	"github.com/paulmach/orb"
)

const (
	milesPerDegreeLat = 69.0

	MinRadiusMiles = 5.0
	MaxRadiusMiles = 3000.0
)

// Point represents a screen cell
type Point struct {
	X int
	Y int
}

// Projection maps lat/lon onto a character grid with an equirectangular projection.
// The view shows a circle of radiusMiles around center; aspectRatio compensates for
// terminal cells being taller than they are wide.
type Projection struct {
	center      Coordinate
	radiusMiles float64
	width       int
	height      int
	aspectRatio float64
	scaleX      float64
	scaleY      float64
}

// NewProjection creates a projection for the given center, radius and grid size
func NewProjection(center Coordinate, radiusMiles float64, width, height int, aspectRatio float64) *Projection {
	p := &Projection{
		center:      center,
		radiusMiles: clampRadius(radiusMiles),
		width:       width,
		height:      height,
		aspectRatio: aspectRatio,
	}
	p.calculateScale()
	return p
}

func clampRadius(r float64) float64 {
	return math.Max(MinRadiusMiles, math.Min(MaxRadiusMiles, r))
}

// calculateScale computes cells-per-degree for both axes. A mile spans aspectRatio
// columns for every row so the radius fits in whichever dimension is tighter.
func (p *Projection) calculateScale() {
	milesPerDegreeLon := milesPerDegreeLat * math.Cos(p.center.Lat*math.Pi/180.0)
	if milesPerDegreeLon < 1 {
		milesPerDegreeLon = 1
	}

	diameter := 2 * p.radiusMiles
	rowsPerMile := math.Min(
		float64(p.height)/diameter,
		float64(p.width)/(diameter*p.aspectRatio),
	)

	p.scaleY = rowsPerMile * milesPerDegreeLat
	p.scaleX = rowsPerMile * p.aspectRatio * milesPerDegreeLon
}

// Project converts a coordinate to a screen cell, (0, 0) at top-left
func (p *Projection) Project(c Coordinate) Point {
	x := int(math.Round((c.Lon - p.center.Lon) * p.scaleX))
	y := int(math.Round(-(c.Lat - p.center.Lat) * p.scaleY))

	return Point{X: x + p.width/2, Y: y + p.height/2}
}

// Unproject converts a screen cell back to a coordinate. The result is not range
// checked; callers validate before accepting it as a selection.
func (p *Projection) Unproject(x, y int) Coordinate {
	dx := float64(x - p.width/2)
	dy := float64(y - p.height/2)

	return Coordinate{
		Lat: p.center.Lat - dy/p.scaleY,
		Lon: p.center.Lon + dx/p.scaleX,
	}
}

// Visible reports whether a coordinate falls inside the grid
func (p *Projection) Visible(c Coordinate) bool {
	pt := p.Project(c)
	return pt.X >= 0 && pt.X < p.width && pt.Y >= 0 && pt.Y < p.height
}

// Center returns the current center point
func (p *Projection) Center() Coordinate {
	return p.center
}

// SetCenter moves the view without changing the zoom
func (p *Projection) SetCenter(c Coordinate) {
	p.center = c
	p.calculateScale()
}

// Radius returns the visible radius in miles
func (p *Projection) Radius() float64 {
	return p.radiusMiles
}

// Zoom multiplies the radius by factor; factors below 1 zoom in
func (p *Projection) Zoom(factor float64) {
	p.radiusMiles = clampRadius(p.radiusMiles * factor)
	p.calculateScale()
}

// Resize updates the grid dimensions
func (p *Projection) Resize(width, height int) {
	p.width = width
	p.height = height
	p.calculateScale()
}

// Bounds returns the geographic bounds visible on screen
func (p *Projection) Bounds() orb.Bound {
	tl := p.Unproject(0, 0)
	br := p.Unproject(p.width-1, p.height-1)
	return orb.MultiPoint{tl.Point(), br.Point()}.Bound()
}

// Fit centers on b and picks a radius that keeps all of it on screen with a small margin
func (p *Projection) Fit(b orb.Bound) {
	center := FromPoint(b.Center())

	halfLat := (b.Max.Lat() - b.Min.Lat()) / 2 * milesPerDegreeLat
	halfLon := (b.Max.Lon() - b.Min.Lon()) / 2 * milesPerDegreeLat * math.Cos(center.Lat*math.Pi/180.0)

	p.center = center
	p.radiusMiles = clampRadius(math.Max(halfLat, halfLon) * 1.2)
	p.calculateScale()
}
