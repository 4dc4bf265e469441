package raster

// DefaultNoData is the sentinel for undefined cells.
const DefaultNoData = -9999.0

// Raster is a single-band grid of float64 cells aligned to a Grid.
// Undefined cells hold the NoData sentinel.
type Raster struct {
	Grid   Grid
	Data   []float64
	NoData float64
}

// New returns a raster over grid with every cell set to NoData.
func New(grid Grid) *Raster {
	r := &Raster{
		Grid:   grid,
		Data:   make([]float64, grid.Cols*grid.Rows),
		NoData: DefaultNoData,
	}
	for i := range r.Data {
		r.Data[i] = r.NoData
	}
	return r
}

// NewFilled returns a raster over grid with every cell set to value.
func NewFilled(grid Grid, value float64) *Raster {
	r := New(grid)
	for i := range r.Data {
		r.Data[i] = value
	}
	return r
}

func (r *Raster) idx(col, row int) int { return row*r.Grid.Cols + col }

// At returns the value of cell (col, row).
func (r *Raster) At(col, row int) float64 { return r.Data[r.idx(col, row)] }

// Set assigns the value of cell (col, row).
func (r *Raster) Set(col, row int, v float64) { r.Data[r.idx(col, row)] = v }

// IsNoData reports whether cell (col, row) is undefined.
func (r *Raster) IsNoData(col, row int) bool { return r.At(col, row) == r.NoData }

// Clone returns a deep copy sharing no buffers with r.
func (r *Raster) Clone() *Raster {
	out := &Raster{Grid: r.Grid, Data: make([]float64, len(r.Data)), NoData: r.NoData}
	copy(out.Data, r.Data)
	return out
}

// DefinedCount returns the number of cells that are not NoData.
func (r *Raster) DefinedCount() int {
	n := 0
	for _, v := range r.Data {
		if v != r.NoData {
			n++
		}
	}
	return n
}

// FillNoData replaces every NoData cell with value.
func (r *Raster) FillNoData(value float64) {
	for i, v := range r.Data {
		if v == r.NoData {
			r.Data[i] = value
		}
	}
}

// MaskOutside forces cells to fill wherever mask is undefined or zero.
// Cells inside the mask are left untouched.
func (r *Raster) MaskOutside(mask *Raster, fill float64) {
	for i := range r.Data {
		if mask.Data[i] == mask.NoData || mask.Data[i] == 0 {
			r.Data[i] = fill
		}
	}
}

// ClipTo sets cells to NoData wherever mask is undefined or zero.
func (r *Raster) ClipTo(mask *Raster) {
	for i := range r.Data {
		if mask.Data[i] == mask.NoData || mask.Data[i] == 0 {
			r.Data[i] = r.NoData
		}
	}
}
