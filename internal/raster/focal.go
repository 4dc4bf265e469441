package raster

import (
	"math"
	"runtime"

	"github.com/rotisserie/eris"
	"golang.org/x/sync/errgroup"
)

// discOffsets returns the per-row half-widths of a disc kernel: for each
// dy in [-n, n], the largest dx such that a cell center at offset (dx, dy)
// lies within radius of the focal cell center.
func discOffsets(radiusCells float64) []int {
	n := int(math.Floor(radiusCells))
	half := make([]int, 2*n+1)
	for dy := -n; dy <= n; dy++ {
		half[dy+n] = int(math.Floor(math.Sqrt(radiusCells*radiusCells - float64(dy*dy))))
	}
	return half
}

// FocalSum computes, for every cell, the sum of presence values within a
// circular neighborhood of radius meters (cell centers within the radius of
// the focal cell center). NoData input cells contribute zero; cells past
// the grid edge are simply absent from the sum. The result is defined
// everywhere.
//
// Rows are computed in parallel; each row writes a disjoint slice of the
// output and the input is read-only, so the result is identical to the
// sequential loop.
func FocalSum(r *Raster, radius float64) (*Raster, error) {
	if radius < 0 {
		return nil, eris.Errorf("raster: focal radius must be non-negative, got %g", radius)
	}
	grid := r.Grid
	radiusCells := radius / grid.CellSize
	half := discOffsets(radiusCells)
	n := len(half) / 2

	out := NewFilled(grid, 0)

	g := new(errgroup.Group)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for row := 0; row < grid.Rows; row++ {
		row := row
		g.Go(func() error {
			for col := 0; col < grid.Cols; col++ {
				var sum float64
				for dy := -n; dy <= n; dy++ {
					y := row + dy
					if y < 0 || y >= grid.Rows {
						continue
					}
					w := half[dy+n]
					x0, x1 := col-w, col+w
					if x0 < 0 {
						x0 = 0
					}
					if x1 >= grid.Cols {
						x1 = grid.Cols - 1
					}
					base := y * grid.Cols
					for x := x0; x <= x1; x++ {
						v := r.Data[base+x]
						if v != r.NoData {
							sum += v
						}
					}
				}
				out.Data[row*grid.Cols+col] = sum
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
