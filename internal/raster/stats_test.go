package raster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaxDefined(t *testing.T) {
	grid := testGrid(t, 4, 4, 10)
	r := New(grid)
	r.Set(0, 0, 3)
	r.Set(1, 1, 7)
	r.Set(2, 2, 0)

	max, ok := MaxDefined(r)
	require.True(t, ok)
	assert.Equal(t, 7.0, max)
}

func TestMaxDefinedAllNoData(t *testing.T) {
	grid := testGrid(t, 4, 4, 10)
	_, ok := MaxDefined(New(grid))
	assert.False(t, ok)
}

func TestRescale(t *testing.T) {
	grid := testGrid(t, 4, 4, 10)
	r := New(grid)
	r.Set(0, 0, 5)
	r.Set(1, 0, 20)
	r.Set(2, 0, 0)

	out, degenerate := Rescale(r)
	assert.False(t, degenerate)
	assert.Equal(t, 25.0, out.At(0, 0))
	assert.Equal(t, 100.0, out.At(1, 0))
	assert.Equal(t, 0.0, out.At(2, 0))
	assert.True(t, out.IsNoData(3, 3))

	// Round trip: the rescaled maximum is exactly 100.
	max, ok := MaxDefined(out)
	require.True(t, ok)
	assert.Equal(t, 100.0, max)
}

func TestRescaleAllZero(t *testing.T) {
	grid := testGrid(t, 3, 3, 10)
	r := NewFilled(grid, 0)

	out, degenerate := Rescale(r)
	assert.True(t, degenerate)
	for _, v := range out.Data {
		assert.Equal(t, 0.0, v)
	}
}

func TestRescaleAllNoData(t *testing.T) {
	grid := testGrid(t, 3, 3, 10)
	out, degenerate := Rescale(New(grid))
	assert.True(t, degenerate)
	assert.Equal(t, 0, out.DefinedCount())
}

func TestRescaleDoesNotMutateInput(t *testing.T) {
	grid := testGrid(t, 2, 2, 10)
	r := NewFilled(grid, 4)
	_, _ = Rescale(r)
	assert.Equal(t, 4.0, r.At(0, 0))
}
