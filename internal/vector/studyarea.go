package vector

import (
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
)

// ReadStudyArea loads the study-area boundary polygon. GeoJSON and
// shapefile inputs are accepted; for collections the union of all polygon
// features is returned as a single MultiPolygon.
func ReadStudyArea(path string) (geom.T, error) {
	if strings.HasSuffix(strings.ToLower(path), ".shp") {
		return studyAreaFromShapefile(path)
	}
	return studyAreaFromGeoJSON(path)
}

func studyAreaFromShapefile(path string) (geom.T, error) {
	// The code attribute is irrelevant for a boundary; read geometry only.
	features, err := readShapes(path)
	if err != nil {
		return nil, err
	}
	return mergePolygons(features)
}

// readShapes reads all polygon geometries from a shapefile without
// requiring any attribute field.
func readShapes(path string) ([]geom.T, error) {
	if err := checkPRJ(path); err != nil {
		return nil, err
	}
	reader, err := openShapefile(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = reader.Close() }()

	var geoms []geom.T
	for reader.Next() {
		_, shape := reader.Shape()
		if poly, ok := shapePolygon(shape); ok {
			if g := polygonToMultiPolygon(poly); g != nil {
				geoms = append(geoms, g)
			}
		}
	}
	return geoms, nil
}

func studyAreaFromGeoJSON(path string) (geom.T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "vector: read study area %s", path)
	}

	// Try a feature collection first, then a bare feature, then a geometry.
	var fc geojson.FeatureCollection
	if err := fc.UnmarshalJSON(data); err == nil && len(fc.Features) > 0 {
		geoms := make([]geom.T, 0, len(fc.Features))
		for _, f := range fc.Features {
			if f.Geometry != nil {
				geoms = append(geoms, f.Geometry)
			}
		}
		return mergePolygons(geoms)
	}

	var feature geojson.Feature
	if err := feature.UnmarshalJSON(data); err == nil && feature.Geometry != nil {
		return mergePolygons([]geom.T{feature.Geometry})
	}

	var g geom.T
	if err := geojson.Unmarshal(data, &g); err != nil {
		return nil, eris.Wrapf(err, "vector: parse study area %s", path)
	}
	return mergePolygons([]geom.T{g})
}

// mergePolygons flattens polygons and multipolygons into one MultiPolygon.
func mergePolygons(geoms []geom.T) (geom.T, error) {
	mp := geom.NewMultiPolygon(geom.XY).SetSRID(SRID)
	for _, g := range geoms {
		switch t := g.(type) {
		case *geom.Polygon:
			flat := geom.NewPolygonFlat(geom.XY, t.FlatCoords(), t.Ends())
			if err := mp.Push(flat); err != nil {
				return nil, eris.Wrap(err, "vector: merge study area polygon")
			}
		case *geom.MultiPolygon:
			for i := 0; i < t.NumPolygons(); i++ {
				p := t.Polygon(i)
				flat := geom.NewPolygonFlat(geom.XY, p.FlatCoords(), p.Ends())
				if err := mp.Push(flat); err != nil {
					return nil, eris.Wrap(err, "vector: merge study area polygon")
				}
			}
		default:
			return nil, eris.Errorf("vector: study area must be polygonal, got %T", g)
		}
	}
	if mp.NumPolygons() == 0 {
		return nil, eris.New("vector: study area contains no polygons")
	}
	return mp, nil
}
