package raster

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistanceTransformSingleSource(t *testing.T) {
	grid := testGrid(t, 11, 11, 10)
	r := New(grid)
	r.Set(5, 5, 1)

	d := DistanceTransform(r)

	assert.Equal(t, 0.0, d.At(5, 5))
	assert.InDelta(t, 30.0, d.At(8, 5), 1e-9)
	assert.InDelta(t, 10*math.Sqrt(8), d.At(7, 7), 1e-9)
	assert.InDelta(t, 10*math.Hypot(5, 5), d.At(0, 0), 1e-9)
}

func TestDistanceTransformMatchesBruteForce(t *testing.T) {
	grid := testGrid(t, 17, 12, 5)
	r := New(grid)
	// Deterministic scatter of sources.
	for i := 0; i < len(r.Data); i += 11 {
		r.Data[i] = 1
	}

	d := DistanceTransform(r)

	for row := 0; row < grid.Rows; row++ {
		for col := 0; col < grid.Cols; col++ {
			want := math.Inf(1)
			for y := 0; y < grid.Rows; y++ {
				for x := 0; x < grid.Cols; x++ {
					if r.At(x, y) == 1 {
						dist := grid.CellSize * math.Hypot(float64(x-col), float64(y-row))
						want = math.Min(want, dist)
					}
				}
			}
			assert.InDelta(t, want, d.At(col, row), 1e-9, "col %d row %d", col, row)
		}
	}
}

func TestDistanceTransformNoSources(t *testing.T) {
	grid := testGrid(t, 6, 6, 10)
	d := DistanceTransform(New(grid))
	for _, v := range d.Data {
		assert.True(t, math.IsInf(v, 1))
	}
}

func TestDistanceTransformNonDecreasingFromSource(t *testing.T) {
	grid := testGrid(t, 20, 3, 10)
	r := New(grid)
	r.Set(0, 1, 1)

	d := DistanceTransform(r)
	prev := -1.0
	for col := 0; col < grid.Cols; col++ {
		v := d.At(col, 1)
		assert.Greater(t, v, prev)
		prev = v
	}
}
