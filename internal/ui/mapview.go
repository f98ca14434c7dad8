package ui

import (
	"piperoute/internal/geo"
	"piperoute/internal/render"
	"piperoute/internal/session"

	"github.com/gdamore/tcell/v2"
	"github.com/rs/zerolog/log"
)

const (
	zoomInFactor  = 0.75
	zoomOutFactor = 1.33
)

// MapView displays the basemap, the current result shape, the selected
// endpoints and the keyboard cursor
type MapView struct {
	renderer   *render.MapRenderer
	projection *geo.Projection
	canvas     *render.Canvas
	width      int
	height     int
	cursor     geo.Point
}

// NewMapView creates a new map view centered on center
func NewMapView(width, height int, basemap geo.Basemap, center geo.Coordinate, radiusMiles float64, aspectRatio float64) *MapView {
	projection := geo.NewProjection(center, radiusMiles, width, height, aspectRatio)
	canvas := render.NewCanvas(width, height)
	renderer := render.NewMapRenderer(projection, basemap, canvas)

	return &MapView{
		renderer:   renderer,
		projection: projection,
		canvas:     canvas,
		width:      width,
		height:     height,
		cursor:     geo.Point{X: width / 2, Y: height / 2},
	}
}

// Draw renders the map view to the screen
func (m *MapView) Draw(screen tcell.Screen, s *session.Session) {
	m.canvas.Clear()

	m.renderer.RenderMap()

	shape := s.Shape()
	switch shape.Kind {
	case session.ShapePolyline:
		m.renderer.DrawGeometry(shape.Geometry, '•', render.StyleRoute)
	case session.ShapePolygon:
		m.renderer.DrawGeometry(shape.Geometry, '#', render.StyleCorridor)
	}

	m.drawEndpoint(s, session.RoleStart, 'S', render.StyleStart)
	m.drawEndpoint(s, session.RoleEnd, 'E', render.StyleEnd)

	m.canvas.Set(m.cursor.X, m.cursor.Y, '+', render.StyleCursor)

	m.canvas.Blit(screen, 0, 0)
}

func (m *MapView) drawEndpoint(s *session.Session, role session.Role, symbol rune, style tcell.Style) {
	p := s.Point(role)
	if !p.Set {
		return
	}
	m.renderer.DrawMarker(p.RenderCoord, symbol, p.Site, style)
}

// Contains reports whether a screen cell is on the map
func (m *MapView) Contains(x, y int) bool {
	return x >= 0 && x < m.width && y >= 0 && y < m.height
}

// MoveCursor moves the cursor by (dx, dy). Moving past an edge pans the map.
func (m *MapView) MoveCursor(dx, dy int) {
	x, y := m.cursor.X+dx, m.cursor.Y+dy

	if !m.Contains(x, y) {
		m.projection.SetCenter(m.projection.Unproject(m.width/2+dx, m.height/2+dy))
		return
	}
	m.cursor = geo.Point{X: x, Y: y}
}

// SetCursor places the cursor at a screen cell
func (m *MapView) SetCursor(x, y int) {
	if m.Contains(x, y) {
		m.cursor = geo.Point{X: x, Y: y}
	}
}

// Cursor returns the cursor cell
func (m *MapView) Cursor() geo.Point {
	return m.cursor
}

// CursorCoord returns the coordinate under the cursor. It may be off the globe
// when zoomed far out; selection rejects those.
func (m *MapView) CursorCoord() geo.Coordinate {
	return m.projection.Unproject(m.cursor.X, m.cursor.Y)
}

// FitShape centers and zooms the map to show shape. It reports false when
// there is nothing to fit.
func (m *MapView) FitShape(shape session.Shape) bool {
	bound, ok := shape.Bound()
	if !ok {
		return false
	}
	m.projection.Fit(bound)
	m.cursor = geo.Point{X: m.width / 2, Y: m.height / 2}
	log.Debug().
		Str("center", m.projection.Center().String()).
		Float64("radius", m.projection.Radius()).
		Msg("Map fit to result")
	return true
}

// UpdateDimensions updates the view dimensions when the screen is resized
func (m *MapView) UpdateDimensions(width, height int) {
	m.width = width
	m.height = height

	m.projection.Resize(width, height)

	m.canvas = render.NewCanvas(width, height)
	m.renderer.UpdateCanvas(m.canvas)

	if !m.Contains(m.cursor.X, m.cursor.Y) {
		m.cursor = geo.Point{X: width / 2, Y: height / 2}
	}
}

// Projection returns the current projection
func (m *MapView) Projection() *geo.Projection {
	return m.projection
}

// ZoomIn decreases the radius
func (m *MapView) ZoomIn() {
	m.zoom(zoomInFactor)
}

// ZoomOut increases the radius
func (m *MapView) ZoomOut() {
	m.zoom(zoomOutFactor)
}

func (m *MapView) zoom(factor float64) {
	m.projection.Zoom(factor)
	log.Debug().Float64("radius", m.projection.Radius()).Msg("Map radius changed")
}

// Radius returns the current map radius
func (m *MapView) Radius() float64 {
	return m.projection.Radius()
}
