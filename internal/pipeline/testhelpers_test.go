package pipeline

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/jonas-p/go-shp"
	"github.com/stretchr/testify/require"

	"github.com/greenatlas/ecoserv/internal/config"
	"github.com/greenatlas/ecoserv/internal/habitat"
)

const osgbWKT = `PROJCS["British_National_Grid",GEOGCS["GCS_OSGB_1936",DATUM["D_OSGB_1936",SPHEROID["Airy_1830",6377563.396,299.3249646]],PRIMEM["Greenwich",0],UNIT["Degree",0.0174532925199433]],PROJECTION["Transverse_Mercator"],UNIT["Meter",1]]`

// writeBasemap writes axis-aligned squares with habitat codes to a shapefile.
func writeBasemap(t *testing.T, dir string, squares [][4]float64, codes []string) string {
	t.Helper()
	path := filepath.Join(dir, "basemap.shp")

	w, err := shp.Create(path, shp.POLYGON)
	require.NoError(t, err)
	w.SetFields([]shp.Field{shp.StringField("HABITAT", 16)})

	for i, s := range squares {
		ring := []shp.Point{
			{X: s[0], Y: s[1]},
			{X: s[2], Y: s[1]},
			{X: s[2], Y: s[3]},
			{X: s[0], Y: s[3]},
			{X: s[0], Y: s[1]},
		}
		poly := shp.Polygon(*shp.NewPolyLine([][]shp.Point{ring}))
		w.Write(&poly)
		w.WriteAttribute(i, 0, codes[i])
	}
	w.Close()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "basemap.prj"), []byte(osgbWKT), 0o644))
	return path
}

// writeStudyArea writes a square study-area boundary as GeoJSON.
func writeStudyArea(t *testing.T, dir string, minX, minY, maxX, maxY float64) string {
	t.Helper()
	path := filepath.Join(dir, "study.geojson")
	content := `{"type":"Feature","properties":{},"geometry":{"type":"Polygon","coordinates":[[` +
		coord(minX, minY) + `,` + coord(maxX, minY) + `,` + coord(maxX, maxY) + `,` +
		coord(minX, maxY) + `,` + coord(minX, minY) + `]]}}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func coord(x, y float64) string {
	return "[" + strconv.FormatFloat(x, 'f', -1, 64) + "," + strconv.FormatFloat(y, 'f', -1, 64) + "]"
}

// testConfig returns a config pointing at temp inputs and outputs.
func testConfig(t *testing.T, dir, basemap, study string) *config.Config {
	t.Helper()
	return &config.Config{
		Project: config.ProjectConfig{Title: "proj", RunTitle: "test"},
		Inputs: config.InputConfig{
			Basemap:   basemap,
			CodeField: "HABITAT",
			StudyArea: study,
			OutputDir: filepath.Join(dir, "out"),
		},
		Climate: config.ClimateConfig{
			Resolution: 10,
			Radius:     100,
			GapBuffer:  5,
			Classes:    []string{"Woodland and scrub", "Grassland", "Heathland", "Wetland", "Water"},
		},
		Pollination: config.PollinationConfig{
			Resolution: 10,
			Cutoff:     150,
			Classes:    []string{"Cultivated"},
		},
		Hedgerow: config.HedgerowConfig{Code: "J2.1.2"},
	}
}

func defaultTable() habitat.Table { return habitat.DefaultTable() }

// readTIFFPixels extracts the float32 sample block of a single-band
// uncompressed GeoTIFF written by this module: the samples are the last
// cols*rows*4 bytes of the file, row-major from the north-west corner.
func readTIFFPixels(t *testing.T, path string, cols, rows int) func(col, row int) float64 {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	n := cols * rows * 4
	require.Greater(t, len(data), n)
	pixels := data[len(data)-n:]
	return func(col, row int) float64 {
		off := (row*cols + col) * 4
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(pixels[off : off+4])))
	}
}
