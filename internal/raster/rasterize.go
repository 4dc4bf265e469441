package raster

import (
	"math"
	"sort"

	"github.com/twpayne/go-geom"
)

// Burn rasterizes polygonal geometries onto grid: every cell overlapped by
// at least one geometry, however fractionally, takes value; all other cells
// stay NoData. The burn is idempotent, so overlapping and duplicate
// geometries are safe.
//
// Coverage is realized in two passes per geometry: an even-odd scanline
// fill of cells whose center lies inside, plus a traversal of every
// boundary segment marking each cell it passes through. A partially
// covered cell either contains boundary or has its center inside, so the
// union of the passes is exactly the any-overlap set.
func Burn(grid Grid, geoms []geom.T, value float64) *Raster {
	out := New(grid)
	for _, g := range geoms {
		rings := collectRings(g)
		if len(rings) == 0 {
			continue
		}
		scanlineFill(out, rings, value)
		for _, ring := range rings {
			traceRing(out, ring, value)
		}
	}
	return out
}

// collectRings flattens a polygonal geometry into XY rings.
func collectRings(g geom.T) [][]float64 {
	var rings [][]float64

	appendPolygon := func(p *geom.Polygon) {
		stride := p.Layout().Stride()
		for i := 0; i < p.NumLinearRings(); i++ {
			flat := p.LinearRing(i).FlatCoords()
			if stride == 2 {
				rings = append(rings, flat)
				continue
			}
			xy := make([]float64, 0, len(flat)/stride*2)
			for j := 0; j+1 < len(flat); j += stride {
				xy = append(xy, flat[j], flat[j+1])
			}
			rings = append(rings, xy)
		}
	}

	switch t := g.(type) {
	case *geom.Polygon:
		appendPolygon(t)
	case *geom.MultiPolygon:
		for i := 0; i < t.NumPolygons(); i++ {
			appendPolygon(t.Polygon(i))
		}
	}
	return rings
}

// scanlineFill marks cells whose center falls inside the rings (even-odd rule).
func scanlineFill(r *Raster, rings [][]float64, value float64) {
	grid := r.Grid

	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, ring := range rings {
		for i := 1; i < len(ring); i += 2 {
			minY = math.Min(minY, ring[i])
			maxY = math.Max(maxY, ring[i])
		}
	}

	rowStart := int(math.Floor((grid.MaxY() - maxY) / grid.CellSize))
	rowEnd := int(math.Ceil((grid.MaxY() - minY) / grid.CellSize))
	if rowStart < 0 {
		rowStart = 0
	}
	if rowEnd > grid.Rows {
		rowEnd = grid.Rows
	}

	var xs []float64
	for row := rowStart; row < rowEnd; row++ {
		_, y := grid.CellCenter(0, row)
		xs = xs[:0]

		for _, ring := range rings {
			n := len(ring) / 2
			for i := 0; i < n; i++ {
				j := (i + 1) % n
				y1, y2 := ring[2*i+1], ring[2*j+1]
				if (y1 <= y) == (y2 <= y) {
					continue
				}
				x1, x2 := ring[2*i], ring[2*j]
				xs = append(xs, x1+(y-y1)*(x2-x1)/(y2-y1))
			}
		}
		if len(xs) < 2 {
			continue
		}
		sort.Float64s(xs)

		for i := 0; i+1 < len(xs); i += 2 {
			// Cells whose center x lies in (xs[i], xs[i+1]).
			c0 := int(math.Ceil((xs[i]-grid.MinX)/grid.CellSize - 0.5))
			c1 := int(math.Floor((xs[i+1]-grid.MinX)/grid.CellSize - 0.5))
			if c0 < 0 {
				c0 = 0
			}
			if c1 >= grid.Cols {
				c1 = grid.Cols - 1
			}
			for c := c0; c <= c1; c++ {
				r.Set(c, row, value)
			}
		}
	}
}

// traceRing marks every cell each ring segment passes through.
func traceRing(r *Raster, ring []float64, value float64) {
	n := len(ring) / 2
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		traceSegment(r, ring[2*i], ring[2*i+1], ring[2*j], ring[2*j+1], value)
	}
}

// traceSegment walks the grid cells intersected by one segment using
// Amanatides-Woo traversal in grid-index space.
func traceSegment(r *Raster, x1, y1, x2, y2, value float64) {
	grid := r.Grid

	// Grid space: u east in cells, v south in cells.
	u1 := (x1 - grid.MinX) / grid.CellSize
	v1 := (grid.MaxY() - y1) / grid.CellSize
	u2 := (x2 - grid.MinX) / grid.CellSize
	v2 := (grid.MaxY() - y2) / grid.CellSize

	col := int(math.Floor(u1))
	row := int(math.Floor(v1))
	endCol := int(math.Floor(u2))
	endRow := int(math.Floor(v2))

	mark := func(c, w int) {
		if c >= 0 && c < grid.Cols && w >= 0 && w < grid.Rows {
			r.Set(c, w, value)
		}
	}
	mark(col, row)

	du := u2 - u1
	dv := v2 - v1

	stepC, stepR := 0, 0
	tMaxU, tMaxV := math.Inf(1), math.Inf(1)
	tDeltaU, tDeltaV := math.Inf(1), math.Inf(1)

	if du > 0 {
		stepC = 1
		tMaxU = (math.Floor(u1) + 1 - u1) / du
		tDeltaU = 1 / du
	} else if du < 0 {
		stepC = -1
		tMaxU = (u1 - math.Floor(u1)) / -du
		tDeltaU = -1 / du
	}
	if dv > 0 {
		stepR = 1
		tMaxV = (math.Floor(v1) + 1 - v1) / dv
		tDeltaV = 1 / dv
	} else if dv < 0 {
		stepR = -1
		tMaxV = (v1 - math.Floor(v1)) / -dv
		tDeltaV = -1 / dv
	}

	// A segment can cross at most this many cell boundaries.
	limit := abs(endCol-col) + abs(endRow-row)
	for i := 0; i < limit; i++ {
		if tMaxU < tMaxV {
			tMaxU += tDeltaU
			col += stepC
		} else {
			tMaxV += tDeltaV
			row += stepR
		}
		mark(col, row)
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
