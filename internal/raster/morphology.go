package raster

// Binary raster morphology built on the exact Euclidean distance transform.
// Masks are rasters holding 1 inside and NoData outside.

// DilateByDistance returns a mask of cells within dist meters of any
// source cell (sources included).
func DilateByDistance(r *Raster, dist float64) *Raster {
	d := DistanceTransform(r)
	out := New(r.Grid)
	for i, v := range d.Data {
		if v <= dist {
			out.Data[i] = 1
		}
	}
	return out
}

// ErodeByDistance returns a mask of source cells farther than dist meters
// from every non-source cell.
func ErodeByDistance(r *Raster, dist float64) *Raster {
	// Complement: non-source cells become the sources of the transform.
	comp := New(r.Grid)
	for i, v := range r.Data {
		if v == r.NoData || v <= 0 {
			comp.Data[i] = 1
		}
	}
	d := DistanceTransform(comp)
	out := New(r.Grid)
	for i, v := range r.Data {
		if v != r.NoData && v > 0 && d.Data[i] > dist {
			out.Data[i] = 1
		}
	}
	return out
}

// Close performs a morphological closing: dilate by dist, then erode by
// dist. Gaps narrower than 2*dist between nearby patches are sealed while
// the original cells are always retained.
func Close(r *Raster, dist float64) *Raster {
	closed := ErodeByDistance(DilateByDistance(r, dist), dist)
	// Closing is extensive: the input is always covered by the output.
	for i, v := range r.Data {
		if v != r.NoData && v > 0 {
			closed.Data[i] = 1
		}
	}
	return closed
}

// Union merges masks: a cell is set where any input mask is set.
func Union(grid Grid, masks ...*Raster) *Raster {
	out := New(grid)
	for _, m := range masks {
		if m == nil {
			continue
		}
		for i, v := range m.Data {
			if v != m.NoData && v > 0 {
				out.Data[i] = 1
			}
		}
	}
	return out
}
