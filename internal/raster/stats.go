package raster

import "gonum.org/v1/gonum/floats"

// MaxDefined returns the maximum over all defined cells. ok is false when
// no cell is defined.
func MaxDefined(r *Raster) (max float64, ok bool) {
	defined := make([]float64, 0, len(r.Data))
	for _, v := range r.Data {
		if v != r.NoData {
			defined = append(defined, v)
		}
	}
	if len(defined) == 0 {
		return 0, false
	}
	return floats.Max(defined), true
}

// Rescale returns a copy of r with defined cells scaled so the observed
// maximum maps to 100. A zero or undefined maximum yields an all-zero
// result (NoData cells preserved) rather than dividing by zero; degenerate
// reports that case so callers can warn.
func Rescale(r *Raster) (out *Raster, degenerate bool) {
	max, ok := MaxDefined(r)
	out = r.Clone()
	if !ok || max == 0 {
		for i, v := range out.Data {
			if v != out.NoData {
				out.Data[i] = 0
			}
		}
		return out, true
	}
	for i, v := range out.Data {
		if v != out.NoData {
			out.Data[i] = v / max * 100
		}
	}
	return out, false
}
