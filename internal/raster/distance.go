package raster

import "math"

// DistanceTransform computes, for every cell, the exact Euclidean distance
// in meters from the cell center to the center of the nearest source cell.
// A source is any defined cell with a positive value. Cells are +Inf when
// the raster contains no sources.
//
// This is the two-pass parabolic-envelope transform of Felzenszwalb and
// Huttenlocher, which yields exact squared Euclidean distances, first along
// columns and then along rows.
func DistanceTransform(r *Raster) *Raster {
	grid := r.Grid
	inf := math.Inf(1)

	// Squared distance field in cell units, seeded at sources.
	d := make([]float64, grid.Cols*grid.Rows)
	for i, v := range r.Data {
		if v != r.NoData && v > 0 {
			d[i] = 0
		} else {
			d[i] = inf
		}
	}

	maxDim := grid.Cols
	if grid.Rows > maxDim {
		maxDim = grid.Rows
	}
	f := make([]float64, maxDim)
	out := make([]float64, maxDim)
	v := make([]int, maxDim)
	z := make([]float64, maxDim+1)

	// Pass 1: columns.
	for col := 0; col < grid.Cols; col++ {
		for row := 0; row < grid.Rows; row++ {
			f[row] = d[row*grid.Cols+col]
		}
		dt1d(f[:grid.Rows], out[:grid.Rows], v, z)
		for row := 0; row < grid.Rows; row++ {
			d[row*grid.Cols+col] = out[row]
		}
	}

	// Pass 2: rows.
	for row := 0; row < grid.Rows; row++ {
		base := row * grid.Cols
		copy(f[:grid.Cols], d[base:base+grid.Cols])
		dt1d(f[:grid.Cols], out[:grid.Cols], v, z)
		copy(d[base:base+grid.Cols], out[:grid.Cols])
	}

	res := New(grid)
	for i, sq := range d {
		if math.IsInf(sq, 1) {
			res.Data[i] = inf
		} else {
			res.Data[i] = math.Sqrt(sq) * grid.CellSize
		}
	}
	return res
}

// dt1d computes the 1-D squared-distance transform of f into d using the
// lower envelope of parabolas. v and z are scratch buffers of length
// >= len(f) and len(f)+1.
func dt1d(f, d []float64, v []int, z []float64) {
	n := len(f)
	k := 0
	v[0] = 0
	z[0] = math.Inf(-1)
	z[1] = math.Inf(1)

	for q := 1; q < n; q++ {
		if math.IsInf(f[q], 1) {
			continue
		}
		var s float64
		for {
			p := v[k]
			if math.IsInf(f[p], 1) {
				// Parabola at p is everywhere above; drop it.
				if k == 0 {
					s = math.Inf(-1)
					break
				}
				k--
				continue
			}
			s = ((f[q] + float64(q*q)) - (f[p] + float64(p*p))) / float64(2*q-2*p)
			if s <= z[k] {
				k--
				continue
			}
			break
		}
		k++
		v[k] = q
		z[k] = s
		z[k+1] = math.Inf(1)
	}

	k = 0
	for q := 0; q < n; q++ {
		for z[k+1] < float64(q) {
			k++
		}
		p := v[k]
		if math.IsInf(f[p], 1) {
			d[q] = math.Inf(1)
		} else {
			d[q] = float64((q-p)*(q-p)) + f[p]
		}
	}
}
