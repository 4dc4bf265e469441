package vector

import (
	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"

	"github.com/greenatlas/ecoserv/internal/habitat"
)

func openShapefile(path string) (*shp.Reader, error) {
	reader, err := shp.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "vector: open shapefile %s", path)
	}
	return reader, nil
}

func shapePolygon(shape shp.Shape) (*shp.Polygon, bool) {
	poly, ok := shape.(*shp.Polygon)
	if !ok || poly == nil {
		return nil, false
	}
	return poly, true
}

// ReadPolygons reads all polygon geometries from a shapefile, ignoring
// attributes. Used for auxiliary layers that carry no habitat code.
func ReadPolygons(path string) ([]geom.T, error) {
	return readShapes(path)
}

// Filter returns the features eligible under the selector. Filtering is
// deterministic and idempotent: the relative order of features is kept.
func Filter(features []Feature, sel habitat.Selector) []Feature {
	var out []Feature
	for _, f := range features {
		if sel.Eligible(f.Code) {
			out = append(out, f)
		}
	}
	return out
}

// Extent returns the bounding box of all features.
func Extent(features []Feature) (*geom.Bounds, error) {
	if len(features) == 0 {
		return nil, eris.New("vector: no features to bound")
	}
	b := geom.NewBounds(geom.XY)
	for _, f := range features {
		b = b.Extend(f.Geom)
	}
	return b, nil
}

// GeomExtent returns the bounding box of a single geometry.
func GeomExtent(g geom.T) *geom.Bounds {
	return geom.NewBounds(geom.XY).Extend(g)
}
