package pipeline

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunPollination(t *testing.T) {
	dir := t.TempDir()
	basemap := writeBasemap(t, dir,
		[][4]float64{{190, 190, 210, 210}, {0, 0, 50, 50}},
		[]string{"J1.1", "A1.1.1"},
	)
	study := writeStudyArea(t, dir, 0, 0, 400, 400)
	cfg := testConfig(t, dir, basemap, study)

	p := New(cfg, defaultTable(), nil)
	res, err := p.RunPollination(context.Background())
	require.NoError(t, err)

	assert.Equal(t, ModelPollination, res.Model)
	assert.Equal(t, filepath.Join(dir, "out", "proj_test_pollination.tif"), res.RawPath)

	// Study area 0..400 buffered by the 150 m cutoff at 10 m resolution.
	const cols, rows = 70, 70
	raw := readTIFFPixels(t, res.RawPath, cols, rows)

	// A cell inside the cultivated patch scores the full 100.
	assert.InDelta(t, 100.0, raw(35, 35), 1e-4)

	// 40 m east of the patch the linear decay gives (150-40)/150*100.
	assert.InDelta(t, 100.0*(150.0-40.0)/150.0, raw(40, 35), 1e-3)

	// A study-area corner is beyond the cutoff from every source and
	// stays no-data.
	assert.Equal(t, -9999.0, raw(15, 54))

	// Padding cells outside the study area are no-data.
	assert.Equal(t, -9999.0, raw(0, 0))

	// Rescaled peaks at 100 over the patch.
	rescaled := readTIFFPixels(t, res.RescaledPath, cols, rows)
	assert.InDelta(t, 100.0, rescaled(35, 35), 1e-4)
}

func TestRunPollinationDecaysMonotonically(t *testing.T) {
	dir := t.TempDir()
	basemap := writeBasemap(t, dir,
		[][4]float64{{190, 190, 210, 210}},
		[]string{"J1.1"},
	)
	study := writeStudyArea(t, dir, 0, 0, 400, 400)
	cfg := testConfig(t, dir, basemap, study)

	p := New(cfg, defaultTable(), nil)
	res, err := p.RunPollination(context.Background())
	require.NoError(t, err)

	const cols, rows = 70, 70
	raw := readTIFFPixels(t, res.RawPath, cols, rows)

	prev := raw(36, 35)
	for col := 37; col <= 50; col++ {
		v := raw(col, 35)
		if v == -9999.0 {
			break
		}
		assert.Less(t, v, prev, "score must fall moving away from the source at col %d", col)
		prev = v
	}
}

func TestRunPollinationNoSources(t *testing.T) {
	dir := t.TempDir()
	basemap := writeBasemap(t, dir,
		[][4]float64{{100, 100, 300, 300}},
		[]string{"A1.1.1"},
	)
	study := writeStudyArea(t, dir, 0, 0, 400, 400)
	cfg := testConfig(t, dir, basemap, study)

	p := New(cfg, defaultTable(), nil)
	res, err := p.RunPollination(context.Background())
	require.NoError(t, err)

	// No cultivated habitat: the score degrades to zero across the whole
	// study area instead of failing.
	const cols, rows = 70, 70
	raw := readTIFFPixels(t, res.RawPath, cols, rows)
	assert.Equal(t, 0.0, raw(35, 35))
	assert.Equal(t, 0.0, raw(20, 50))
	assert.Equal(t, -9999.0, raw(0, 0))
}
