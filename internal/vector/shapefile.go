// Package vector loads classified land-cover polygons and study-area
// boundaries into go-geom geometries on the national planar grid.
package vector

import (
	"os"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"
)

// SRID of the fixed coordinate reference system (British National Grid).
const SRID = 27700

// Feature is a classified land-cover polygon with its raw habitat code.
type Feature struct {
	Code string
	Geom geom.T
}

// ReadBasemap reads polygon features and their habitat-code attribute from a
// shapefile. Non-polygon and nil shapes are skipped with a debug count.
func ReadBasemap(shpPath, codeField string) ([]Feature, error) {
	if err := checkPRJ(shpPath); err != nil {
		return nil, err
	}

	reader, err := shp.Open(shpPath)
	if err != nil {
		return nil, eris.Wrapf(err, "vector: open shapefile %s", shpPath)
	}
	defer func() { _ = reader.Close() }()

	// Build field name → index map.
	fields := reader.Fields()
	codeIdx := -1
	for i, f := range fields {
		name := strings.TrimRight(f.String(), "\x00")
		if strings.EqualFold(name, codeField) {
			codeIdx = i
			break
		}
	}
	if codeIdx < 0 {
		return nil, eris.Errorf("vector: attribute %q not found in %s", codeField, shpPath)
	}

	var features []Feature
	var skipped int

	for reader.Next() {
		_, shape := reader.Shape()

		poly, ok := shape.(*shp.Polygon)
		if !ok || poly == nil {
			skipped++
			continue
		}
		g := polygonToMultiPolygon(poly)
		if g == nil {
			skipped++
			continue
		}

		code := strings.TrimSpace(strings.TrimRight(reader.Attribute(codeIdx), "\x00"))
		features = append(features, Feature{Code: code, Geom: g})
	}

	if skipped > 0 {
		zap.L().Debug("vector: skipped shapefile records",
			zap.String("path", shpPath),
			zap.Int("skipped", skipped),
		)
	}

	return features, nil
}

// polygonToMultiPolygon converts a shapefile Polygon to a geom.MultiPolygon.
// Shapefile parts are rings; each ring becomes a single-ring polygon, which
// is sufficient for presence rasterization with even-odd filling.
func polygonToMultiPolygon(p *shp.Polygon) geom.T {
	if p.NumParts == 0 || len(p.Points) == 0 {
		return nil
	}

	mp := geom.NewMultiPolygon(geom.XY).SetSRID(SRID)

	for i := int32(0); i < p.NumParts; i++ {
		start := p.Parts[i]
		var end int32
		if i+1 < p.NumParts {
			end = p.Parts[i+1]
		} else {
			end = int32(len(p.Points))
		}

		flat := make([]float64, 0, (end-start)*2)
		for j := start; j < end; j++ {
			flat = append(flat, p.Points[j].X, p.Points[j].Y)
		}

		ring := geom.NewLinearRingFlat(geom.XY, flat)
		poly := geom.NewPolygon(geom.XY)
		if err := poly.Push(ring); err != nil {
			zap.L().Debug("vector: skipping malformed polygon ring", zap.Int32("part", i), zap.Error(err))
			continue
		}
		if err := mp.Push(poly); err != nil {
			zap.L().Debug("vector: skipping malformed polygon part", zap.Int32("part", i), zap.Error(err))
			continue
		}
	}

	if mp.NumPolygons() == 0 {
		return nil
	}
	return mp
}

// checkPRJ validates the shapefile's .prj sidecar against the fixed datum.
// A missing sidecar is accepted with a warning; a foreign datum is an error.
func checkPRJ(shpPath string) error {
	prjPath := strings.TrimSuffix(shpPath, ".shp") + ".prj"
	data, err := os.ReadFile(prjPath)
	if err != nil {
		if os.IsNotExist(err) {
			zap.L().Warn("vector: no .prj sidecar, assuming British National Grid",
				zap.String("path", shpPath))
			return nil
		}
		return eris.Wrapf(err, "vector: read %s", prjPath)
	}

	wkt := string(data)
	for _, marker := range []string{"27700", "OSGB", "British_National_Grid", "British National Grid"} {
		if strings.Contains(wkt, marker) {
			return nil
		}
	}
	return eris.Errorf("vector: %s is not in British National Grid (EPSG:%d); reproject the input", shpPath, SRID)
}
