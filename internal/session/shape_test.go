package session

import (
	"testing"

	"github.com/paulmach/orb"

	"piperoute/internal/backend"
	"piperoute/internal/geo"
)

func TestDeriveShape(t *testing.T) {
	line := []geo.Coordinate{{Lat: 40, Lon: -100}, {Lat: 41, Lon: -101}}
	tri := []geo.Coordinate{{Lat: 40, Lon: -100}, {Lat: 41, Lon: -100}, {Lat: 41, Lon: -101}, {Lat: 40, Lon: -100}}

	tests := []struct {
		name     string
		mode     MainMode
		route    *backend.RouteResult
		routeOK  bool
		eval     *backend.EvaluationResult
		evalOK   bool
		wantKind ShapeKind
		wantGeom string
	}{
		{name: "nothing ready", mode: ModeIdentify, wantKind: ShapeNone},
		{name: "route not ready", mode: ModeIdentify, route: &backend.RouteResult{Points: line}, wantKind: ShapeNone},
		{name: "route", mode: ModeIdentify, route: &backend.RouteResult{Points: line}, routeOK: true, wantKind: ShapePolyline, wantGeom: "LineString"},
		{name: "single point route", mode: ModeIdentify, route: &backend.RouteResult{Points: line[:1]}, routeOK: true, wantKind: ShapeNone},
		{name: "route ignored in evaluate", mode: ModeEvaluate, route: &backend.RouteResult{Points: line}, routeOK: true, wantKind: ShapeNone},
		{
			name: "polygon", mode: ModeEvaluate, evalOK: true,
			eval:     &backend.EvaluationResult{ShapeType: backend.ShapePolygon, Parts: [][]geo.Coordinate{tri}},
			wantKind: ShapePolygon, wantGeom: "Polygon",
		},
		{
			name: "multi polygon", mode: ModeEvaluate, evalOK: true,
			eval:     &backend.EvaluationResult{ShapeType: backend.ShapePolygon, Parts: [][]geo.Coordinate{tri, tri}},
			wantKind: ShapePolygon, wantGeom: "MultiPolygon",
		},
		{
			name: "line string", mode: ModeEvaluate, evalOK: true,
			eval:     &backend.EvaluationResult{ShapeType: backend.ShapeLineString, Parts: [][]geo.Coordinate{line}},
			wantKind: ShapePolyline, wantGeom: "LineString",
		},
		{
			name: "multi line string", mode: ModeEvaluate, evalOK: true,
			eval:     &backend.EvaluationResult{ShapeType: backend.ShapeLineString, Parts: [][]geo.Coordinate{line, line}},
			wantKind: ShapePolyline, wantGeom: "MultiLineString",
		},
		{
			name: "degenerate polygon", mode: ModeEvaluate, evalOK: true,
			eval:     &backend.EvaluationResult{ShapeType: backend.ShapePolygon, Parts: [][]geo.Coordinate{line}},
			wantKind: ShapeNone,
		},
		{
			name: "unknown type", mode: ModeEvaluate, evalOK: true,
			eval:     &backend.EvaluationResult{ShapeType: "Point", Parts: [][]geo.Coordinate{line}},
			wantKind: ShapeNone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shape := DeriveShape(tt.mode, tt.route, tt.routeOK, tt.eval, tt.evalOK)
			if shape.Kind != tt.wantKind {
				t.Fatalf("expected %v, got %v", tt.wantKind, shape.Kind)
			}
			if tt.wantGeom == "" {
				if shape.Geometry != nil {
					t.Errorf("expected no geometry, got %v", shape.Geometry.GeoJSONType())
				}
				return
			}
			if got := shape.Geometry.GeoJSONType(); got != tt.wantGeom {
				t.Errorf("expected %s geometry, got %s", tt.wantGeom, got)
			}
		})
	}
}

func TestShapeRingIsClosed(t *testing.T) {
	open := []geo.Coordinate{{Lat: 40, Lon: -100}, {Lat: 41, Lon: -100}, {Lat: 41, Lon: -101}}
	shape := DeriveShape(ModeEvaluate, nil, false, &backend.EvaluationResult{ShapeType: backend.ShapePolygon, Parts: [][]geo.Coordinate{open}}, true)

	poly := shape.Geometry.(orb.Polygon)
	if len(poly[0]) != 4 || poly[0][0] != poly[0][3] {
		t.Errorf("expected ring closed by repeating first vertex, got %v", poly[0])
	}

	b, ok := shape.Bound()
	if !ok || b.Min != (orb.Point{-101, 40}) || b.Max != (orb.Point{-100, 41}) {
		t.Errorf("unexpected bound %v", b)
	}
}
