package geo

import (
	"path/filepath"

	"github.com/jonas-p/go-shp"
	"github.com/rs/zerolog/log"
)

// BasemapLayer names a shapefile in the data directory and the feature type it provides
type BasemapLayer struct {
	Base string
	Type FeatureType
}

// DefaultBasemapLayers are the Natural Earth layers drawn under the route
var DefaultBasemapLayers = []BasemapLayer{
	{Base: "ne_50m_admin_1_states_provinces", Type: FeatureStateBorder},
	{Base: "ne_50m_coastline", Type: FeatureCoastline},
	{Base: "ne_50m_lakes", Type: FeatureLake},
}

// ShapefileLoader loads basemap outlines from ESRI shapefiles
type ShapefileLoader struct {
	dataDir string
}

// NewShapefileLoader creates a new shapefile loader
func NewShapefileLoader(dataDir string) *ShapefileLoader {
	return &ShapefileLoader{
		dataDir: dataDir,
	}
}

// LoadBasemap loads every layer it can. A missing or broken layer is logged and
// skipped; the map still works without outlines.
func (s *ShapefileLoader) LoadBasemap(layers []BasemapLayer) Basemap {
	basemap := make(Basemap)

	for _, layer := range layers {
		path := filepath.Join(s.dataDir, layer.Base+".shp")
		features, err := s.LoadShapefile(path, layer.Type)
		if err != nil {
			log.Warn().Err(err).Str("layer", layer.Base).Msg("Skipping basemap layer")
			continue
		}
		basemap[layer.Type] = append(basemap[layer.Type], features...)
	}

	log.Info().
		Int("states", len(basemap[FeatureStateBorder])).
		Int("coastlines", len(basemap[FeatureCoastline])).
		Int("lakes", len(basemap[FeatureLake])).
		Msg("Basemap loaded")

	return basemap
}

// LoadShapefile reads polylines and polygon outlines from a shapefile.
// Multi-part shapes are split so parts are never joined by a stray segment.
func (s *ShapefileLoader) LoadShapefile(path string, ftype FeatureType) ([]*Feature, error) {
	shape, err := shp.Open(path)
	if err != nil {
		return nil, err
	}
	defer shape.Close()

	features := make([]*Feature, 0)

	for shape.Next() {
		_, p := shape.Shape()

		switch geom := p.(type) {
		case *shp.PolyLine:
			features = append(features, splitParts(ftype, geom.Parts, geom.Points)...)
		case *shp.Polygon:
			features = append(features, splitParts(ftype, geom.Parts, geom.Points)...)
		}
	}

	return features, nil
}

// splitParts converts shapefile part offsets into one feature per part
func splitParts(ftype FeatureType, parts []int32, points []shp.Point) []*Feature {
	var out []*Feature

	for i, start := range parts {
		end := int32(len(points))
		if i+1 < len(parts) {
			end = parts[i+1]
		}
		if start < 0 || end > int32(len(points)) || end-start < 2 {
			continue
		}

		coords := make([]Coordinate, 0, end-start)
		for _, pt := range points[start:end] {
			coords = append(coords, Coordinate{Lat: pt.Y, Lon: pt.X})
		}
		out = append(out, NewLineFeature(ftype, coords))
	}

	return out
}

// FilterByBounds keeps features with at least one vertex inside the view
func FilterByBounds(features []*Feature, view *Projection) []*Feature {
	bound := view.Bounds()
	filtered := make([]*Feature, 0)

	for _, feature := range features {
		for _, pt := range feature.Points {
			if bound.Contains(pt.Point()) {
				filtered = append(filtered, feature)
				break
			}
		}
	}

	return filtered
}
