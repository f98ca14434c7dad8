package backend

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rs/zerolog/log"
)

// shapefileSiblings are the side files a .shp needs to be read by the backend
var shapefileSiblings = []string{".shx", ".dbf", ".prj", ".cpg"}

// BundleUploads expands the chosen paths into the upload list. A .shp path
// brings along its sibling files when they exist next to it. Duplicates are
// dropped and order follows the selection.
func BundleUploads(paths []string) ([]Upload, error) {
	var uploads []Upload
	seen := make(map[string]bool)

	add := func(path string) {
		clean := filepath.Clean(path)
		if seen[clean] {
			return
		}
		seen[clean] = true
		uploads = append(uploads, Upload{Name: filepath.Base(clean), Path: clean})
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("upload %s: %w", path, err)
		}
		if info.IsDir() {
			return nil, fmt.Errorf("upload %s: is a directory", path)
		}
		add(path)

		ext := filepath.Ext(path)
		if !strings.EqualFold(ext, ".shp") {
			continue
		}

		describeShapefile(path)

		stem := strings.TrimSuffix(path, ext)
		for _, sib := range shapefileSiblings {
			for _, candidate := range []string{stem + sib, stem + strings.ToUpper(sib)} {
				if _, err := os.Stat(candidate); err == nil {
					add(candidate)
					break
				}
			}
		}
	}

	return uploads, nil
}

// describeShapefile logs the header of a shapefile about to be uploaded. The
// file is uploaded whether or not it can be read here.
func describeShapefile(path string) {
	reader, err := shp.Open(path)
	if err != nil {
		log.Debug().Err(err).Str("file", path).Msg("Could not read shapefile header")
		return
	}
	defer reader.Close()

	box := reader.BBox()
	log.Info().
		Str("file", filepath.Base(path)).
		Str("geometry", shapeTypeName(reader.GeometryType)).
		Float64("min_lon", box.MinX).
		Float64("min_lat", box.MinY).
		Float64("max_lon", box.MaxX).
		Float64("max_lat", box.MaxY).
		Msg("Bundling shapefile")
}

func shapeTypeName(t shp.ShapeType) string {
	switch t {
	case shp.POINT, shp.POINTZ, shp.POINTM:
		return "Point"
	case shp.POLYLINE, shp.POLYLINEZ, shp.POLYLINEM:
		return ShapeLineString
	case shp.POLYGON, shp.POLYGONZ, shp.POLYGONM:
		return ShapePolygon
	case shp.MULTIPOINT, shp.MULTIPOINTZ, shp.MULTIPOINTM:
		return "MultiPoint"
	case shp.NULL:
		return "Null"
	default:
		return fmt.Sprintf("ShapeType(%d)", t)
	}
}
