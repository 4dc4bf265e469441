package pipeline

import (
	"math"

	"github.com/twpayne/go-geom"
	"go.uber.org/zap"

	"github.com/greenatlas/ecoserv/internal/raster"
)

// influenceBand couples a patch-area ceiling with the buffer width applied
// to patches in that band. A patch area exactly on a ceiling belongs to
// the lower band.
type influenceBand struct {
	maxArea float64 // m²
	buffer  float64 // m
}

// Buffer widths step up with patch area: larger green patches cool a
// wider surrounding zone.
var influenceBands = []influenceBand{
	{maxArea: 20000, buffer: 20},
	{maxArea: 50000, buffer: 40},
	{maxArea: 100000, buffer: 80},
	{maxArea: math.Inf(1), buffer: 100},
}

func bandIndex(area float64) int {
	for i, b := range influenceBands {
		if area <= b.maxArea {
			return i
		}
	}
	return len(influenceBands) - 1
}

// buildInfluenceMask derives the zone of influence of vegetated patches on
// the computation grid: patches are burned, gaps narrower than twice the
// gap buffer (paths, streams) are closed, touching patches dissolve and
// disjoint parts split via connected-component labeling, and each
// component is buffered by the width of its area band. The union of the
// buffered bands is the mask.
//
// When no patch covers any cell the mask degrades to full coverage with a
// warning, so downstream masking has no effect rather than failing.
func buildInfluenceMask(grid raster.Grid, patches []geom.T, gapBuffer float64) *raster.Raster {
	if len(patches) == 0 {
		zap.L().Warn("pipeline: no vegetated patches, influence mask covers whole grid")
		return raster.NewFilled(grid, 1)
	}

	presence := raster.Burn(grid, patches, 1)
	if presence.DefinedCount() == 0 {
		zap.L().Warn("pipeline: patches cover no cells, influence mask covers whole grid")
		return raster.NewFilled(grid, 1)
	}

	closed := raster.Close(presence, gapBuffer)
	labels, counts := raster.Components(closed)

	cellArea := grid.CellSize * grid.CellSize
	bandOf := make([]int, len(counts))
	for k, c := range counts {
		bandOf[k] = bandIndex(float64(c) * cellArea)
	}

	// One source raster per band holding that band's components.
	sources := make([]*raster.Raster, len(influenceBands))
	for i, lbl := range labels {
		if lbl == 0 {
			continue
		}
		b := bandOf[lbl-1]
		if sources[b] == nil {
			sources[b] = raster.New(grid)
		}
		sources[b].Data[i] = 1
	}

	masks := make([]*raster.Raster, 0, len(influenceBands))
	for b, src := range sources {
		if src == nil {
			continue
		}
		masks = append(masks, raster.DilateByDistance(src, influenceBands[b].buffer))
	}

	zap.L().Info("pipeline: influence zones built",
		zap.Int("patches", len(counts)),
	)
	return raster.Union(grid, masks...)
}
