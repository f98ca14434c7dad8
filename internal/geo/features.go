package geo

// FeatureType represents the type of basemap feature
type FeatureType int

const (
	FeatureStateBorder FeatureType = iota
	FeatureCoastline
	FeatureLake
)

// String returns a string representation of the feature type
func (f FeatureType) String() string {
	switch f {
	case FeatureStateBorder:
		return "StateBorder"
	case FeatureCoastline:
		return "Coastline"
	case FeatureLake:
		return "Lake"
	default:
		return "Unknown"
	}
}

// Feature is a basemap outline drawn under the route layer
type Feature struct {
	Type   FeatureType
	Points []Coordinate
}

// NewLineFeature creates a new line/polyline feature
func NewLineFeature(ftype FeatureType, points []Coordinate) *Feature {
	return &Feature{
		Type:   ftype,
		Points: points,
	}
}

// Basemap groups loaded features by type
type Basemap map[FeatureType][]*Feature

// Count returns the total number of features across all types
func (b Basemap) Count() int {
	n := 0
	for _, fs := range b {
		n += len(fs)
	}
	return n
}
