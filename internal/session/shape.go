package session

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"piperoute/internal/backend"
	"piperoute/internal/geo"
)

// ShapeKind is the kind of shape drawn for the current result
type ShapeKind int

const (
	ShapeNone ShapeKind = iota
	ShapePolyline
	ShapePolygon
)

// String returns a string representation of the shape kind
func (k ShapeKind) String() string {
	switch k {
	case ShapePolyline:
		return "polyline"
	case ShapePolygon:
		return "polygon"
	default:
		return "none"
	}
}

// Shape is the single drawable result. Geometry is an orb.LineString,
// orb.MultiLineString, orb.Polygon or orb.MultiPolygon, or nil for ShapeNone.
type Shape struct {
	Kind     ShapeKind
	Geometry orb.Geometry
	Mode     MainMode
}

// Shape derives the shape to draw from the current mode and its ready result
func (s *Session) Shape() Shape {
	if s.mainMode == ModeIdentify {
		return DeriveShape(s.mainMode, s.route, s.routeReady, nil, false)
	}
	return DeriveShape(s.mainMode, nil, false, s.eval, s.evalReady)
}

// DeriveShape picks the shape for mode: the route as a polyline in identify
// mode, or the evaluation as a polygon or polyline in evaluate mode. Results
// that are not ready, degenerate parts and unknown shape types draw nothing.
func DeriveShape(mode MainMode, route *backend.RouteResult, routeReady bool, eval *backend.EvaluationResult, evalReady bool) Shape {
	none := Shape{Kind: ShapeNone, Mode: mode}

	switch mode {
	case ModeIdentify:
		if !routeReady || route == nil || len(route.Points) < 2 {
			return none
		}
		return Shape{Kind: ShapePolyline, Geometry: lineString(route.Points), Mode: mode}

	case ModeEvaluate:
		if !evalReady || eval == nil {
			return none
		}

		switch eval.ShapeType {
		case backend.ShapePolygon:
			var polys orb.MultiPolygon
			for _, part := range eval.Parts {
				if len(part) < 3 {
					continue
				}
				polys = append(polys, orb.Polygon{ring(part)})
			}
			switch len(polys) {
			case 0:
				return none
			case 1:
				return Shape{Kind: ShapePolygon, Geometry: polys[0], Mode: mode}
			default:
				return Shape{Kind: ShapePolygon, Geometry: polys, Mode: mode}
			}

		case backend.ShapeLineString:
			var lines orb.MultiLineString
			for _, part := range eval.Parts {
				if len(part) < 2 {
					continue
				}
				lines = append(lines, lineString(part))
			}
			switch len(lines) {
			case 0:
				return none
			case 1:
				return Shape{Kind: ShapePolyline, Geometry: lines[0], Mode: mode}
			default:
				return Shape{Kind: ShapePolyline, Geometry: lines, Mode: mode}
			}
		}
	}

	return none
}

func lineString(coords []geo.Coordinate) orb.LineString {
	ls := make(orb.LineString, 0, len(coords))
	for _, c := range coords {
		ls = append(ls, c.Point())
	}
	return ls
}

// ring closes coords if the backend left the ring open
func ring(coords []geo.Coordinate) orb.Ring {
	r := make(orb.Ring, 0, len(coords)+1)
	for _, c := range coords {
		r = append(r, c.Point())
	}
	if !r.Closed() {
		r = append(r, r[0])
	}
	return r
}

// Bound returns the bounding box of the shape
func (sh Shape) Bound() (orb.Bound, bool) {
	if sh.Kind == ShapeNone || sh.Geometry == nil {
		return orb.Bound{}, false
	}
	return sh.Geometry.Bound(), true
}

// GeoJSON encodes the shape as a feature collection with one feature
func (sh Shape) GeoJSON() ([]byte, error) {
	fc := geojson.NewFeatureCollection()
	if sh.Geometry != nil {
		f := geojson.NewFeature(sh.Geometry)
		f.Properties["mode"] = sh.Mode.String()
		f.Properties["kind"] = sh.Kind.String()
		fc.Append(f)
	}
	return fc.MarshalJSON()
}
