package render

import (
	"piperoute/internal/geo"

	"github.com/gdamore/tcell/v2"
	"github.com/paulmach/orb"
	"github.com/rs/zerolog/log"
)

// MapRenderer renders the basemap, result shapes and markers to a canvas
type MapRenderer struct {
	projection *geo.Projection
	basemap    geo.Basemap
	canvas     *Canvas
}

// NewMapRenderer creates a new map renderer
func NewMapRenderer(projection *geo.Projection, basemap geo.Basemap, canvas *Canvas) *MapRenderer {
	return &MapRenderer{
		projection: projection,
		basemap:    basemap,
		canvas:     canvas,
	}
}

// RenderMap draws the basemap outlines in layer order: lakes, coastlines, then state borders
func (m *MapRenderer) RenderMap() {
	m.renderFeatureType(geo.FeatureLake)
	m.renderFeatureType(geo.FeatureCoastline)
	m.renderFeatureType(geo.FeatureStateBorder)
}

func (m *MapRenderer) renderFeatureType(ftype geo.FeatureType) {
	features, exists := m.basemap[ftype]
	if !exists {
		return
	}

	visible := geo.FilterByBounds(features, m.projection)
	log.Trace().
		Stringer("type", ftype).
		Int("visible", len(visible)).
		Int("total", len(features)).
		Msg("Rendering basemap layer")

	for _, feature := range visible {
		m.RenderFeature(feature)
	}
}

// RenderFeature draws a single basemap outline
func (m *MapRenderer) RenderFeature(feature *geo.Feature) {
	style := GetStyleForFeature(feature.Type)
	char := GetCharForFeature(feature.Type)

	for i := 0; i < len(feature.Points)-1; i++ {
		p1 := m.projection.Project(feature.Points[i])
		p2 := m.projection.Project(feature.Points[i+1])
		m.DrawLine(p1.X, p1.Y, p2.X, p2.Y, char, style)
	}
}

// DrawGeometry draws line and polygon geometries. Points are drawn as single cells.
// Unsupported geometry types are ignored.
func (m *MapRenderer) DrawGeometry(g orb.Geometry, char rune, style tcell.Style) {
	switch geom := g.(type) {
	case orb.Point:
		pt := m.projection.Project(geo.FromPoint(geom))
		m.canvas.Set(pt.X, pt.Y, char, style)
	case orb.LineString:
		m.drawPath(geom, char, style)
	case orb.Ring:
		m.drawPath(orb.LineString(geom), char, style)
	case orb.MultiLineString:
		for _, ls := range geom {
			m.drawPath(ls, char, style)
		}
	case orb.Polygon:
		for _, ring := range geom {
			m.drawPath(orb.LineString(ring), char, style)
		}
	case orb.MultiPolygon:
		for _, poly := range geom {
			m.DrawGeometry(poly, char, style)
		}
	case orb.Collection:
		for _, child := range geom {
			m.DrawGeometry(child, char, style)
		}
	}
}

func (m *MapRenderer) drawPath(ls orb.LineString, char rune, style tcell.Style) {
	if len(ls) == 1 {
		pt := m.projection.Project(geo.FromPoint(ls[0]))
		m.canvas.Set(pt.X, pt.Y, char, style)
		return
	}
	for i := 0; i < len(ls)-1; i++ {
		p1 := m.projection.Project(geo.FromPoint(ls[i]))
		p2 := m.projection.Project(geo.FromPoint(ls[i+1]))
		m.DrawLine(p1.X, p1.Y, p2.X, p2.Y, char, style)
	}
}

// DrawMarker draws symbol at c with an optional label to its right.
// The label is dropped when it would run off the canvas.
func (m *MapRenderer) DrawMarker(c geo.Coordinate, symbol rune, label string, style tcell.Style) {
	pt := m.projection.Project(c)
	m.canvas.Set(pt.X, pt.Y, symbol, style)

	if label != "" && pt.X+1+len(label) < m.canvas.Width() {
		m.canvas.DrawText(pt.X+1, pt.Y, label, StyleLabel)
	}
}

// DrawLine implements Bresenham's line algorithm for drawing lines on the canvas
func (m *MapRenderer) DrawLine(x0, y0, x1, y1 int, char rune, style tcell.Style) {
	// Segments far off-canvas come from features wrapping the antimeridian
	if offCanvas(x0, x1, m.canvas.Width()) || offCanvas(y0, y1, m.canvas.Height()) {
		return
	}

	dx := abs(x1 - x0)
	dy := abs(y1 - y0)

	sx := -1
	if x0 < x1 {
		sx = 1
	}

	sy := -1
	if y0 < y1 {
		sy = 1
	}

	err := dx - dy

	for {
		m.canvas.Set(x0, y0, char, style)

		if x0 == x1 && y0 == y1 {
			break
		}

		e2 := 2 * err

		if e2 > -dy {
			err -= dy
			x0 += sx
		}

		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// offCanvas reports whether both ends lie on the same side outside [0, size)
func offCanvas(a, b, size int) bool {
	return (a < 0 && b < 0) || (a >= size && b >= size)
}

// abs returns the absolute value of an integer
func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// UpdateProjection updates the renderer's projection
func (m *MapRenderer) UpdateProjection(projection *geo.Projection) {
	m.projection = projection
}

// UpdateCanvas updates the renderer's canvas
func (m *MapRenderer) UpdateCanvas(canvas *Canvas) {
	m.canvas = canvas
}
