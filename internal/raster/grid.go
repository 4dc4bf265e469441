// Package raster implements the regular-grid numeric kernels of the
// ecosystem-service models: polygon rasterization, focal statistics,
// Euclidean distance transforms, raster morphology and score rescaling.
package raster

import (
	"math"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
)

// ErrDegenerateBounds marks a zero-width or zero-height input extent.
var ErrDegenerateBounds = eris.New("raster: degenerate bounds")

// Grid is an axis-aligned regular grid. Row 0 is the northernmost row;
// cell (0,0) sits at the north-west corner. CellSize applies to both axes.
type Grid struct {
	MinX     float64
	MinY     float64
	CellSize float64
	Cols     int
	Rows     int
	SRID     int
}

// NewGrid derives a grid that exactly covers bounds at the requested cell
// size. The extent is snapped outward so partial edge cells are included;
// the cell size is never adjusted.
func NewGrid(bounds *geom.Bounds, cellSize float64, srid int) (Grid, error) {
	if cellSize <= 0 {
		return Grid{}, eris.Errorf("raster: cell size must be positive, got %g", cellSize)
	}
	width := bounds.Max(0) - bounds.Min(0)
	height := bounds.Max(1) - bounds.Min(1)
	if width <= 0 || height <= 0 {
		return Grid{}, eris.Wrapf(ErrDegenerateBounds, "extent %gx%g", width, height)
	}

	cols := int(math.Ceil(width / cellSize))
	rows := int(math.Ceil(height / cellSize))

	return Grid{
		MinX:     bounds.Min(0),
		MinY:     bounds.Min(1),
		CellSize: cellSize,
		Cols:     cols,
		Rows:     rows,
		SRID:     srid,
	}, nil
}

// MaxX returns the eastern edge of the grid.
func (g Grid) MaxX() float64 { return g.MinX + float64(g.Cols)*g.CellSize }

// MaxY returns the northern edge of the grid.
func (g Grid) MaxY() float64 { return g.MinY + float64(g.Rows)*g.CellSize }

// CellCenter returns the coordinates of the center of cell (col, row).
func (g Grid) CellCenter(col, row int) (x, y float64) {
	x = g.MinX + (float64(col)+0.5)*g.CellSize
	y = g.MaxY() - (float64(row)+0.5)*g.CellSize
	return x, y
}

// CellAt returns the cell containing point (x, y); ok is false outside the grid.
func (g Grid) CellAt(x, y float64) (col, row int, ok bool) {
	col = int(math.Floor((x - g.MinX) / g.CellSize))
	row = int(math.Floor((g.MaxY() - y) / g.CellSize))
	if col < 0 || col >= g.Cols || row < 0 || row >= g.Rows {
		return col, row, false
	}
	return col, row, true
}

// Buffered returns a copy of bounds expanded by margin on all sides.
func Buffered(bounds *geom.Bounds, margin float64) *geom.Bounds {
	b := geom.NewBounds(geom.XY)
	b.SetCoords(
		geom.Coord{bounds.Min(0) - margin, bounds.Min(1) - margin},
		geom.Coord{bounds.Max(0) + margin, bounds.Max(1) + margin},
	)
	return b
}
