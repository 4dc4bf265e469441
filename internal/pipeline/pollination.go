package pipeline

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"

	"github.com/greenatlas/ecoserv/internal/raster"
	"github.com/greenatlas/ecoserv/internal/vector"
)

// RunPollination computes the pollination-demand proximity rasters: the
// exact Euclidean distance from every cell to the nearest
// pollinator-requiring patch, turned into a linear 0-100 decay score that
// reaches zero at the cutoff distance. Cells farther than the cutoff from
// every source stay no-data.
func (p *Pipeline) RunPollination(ctx context.Context) (*Result, error) {
	log := zap.L().With(zap.String("model", ModelPollination))
	log.Info("pipeline: starting model run")
	start := time.Now()

	in, err := p.loadInputs()
	if err != nil {
		return nil, err
	}

	var filtered []vector.Feature
	err = stage(log, "classify", func() error {
		hedges, err := p.hedgerowFeatures()
		if err != nil {
			return err
		}
		sel := p.selector(p.cfg.Pollination.Classes)
		filtered = vector.Filter(append(in.features, hedges...), sel)
		if len(filtered) == 0 {
			log.Warn("pipeline: no pollinator-requiring habitat, score will be zero")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	cutoff := p.cfg.Pollination.Cutoff
	grid, err := raster.NewGrid(
		raster.Buffered(in.studyBound, cutoff),
		p.cfg.Pollination.Resolution,
		vector.SRID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "stage grid")
	}

	var raw *raster.Raster
	empty := len(filtered) == 0
	err = stage(log, "distance field", func() error {
		sources := raster.Burn(grid, featureGeoms(filtered), 1)
		dist := raster.DistanceTransform(sources)

		raw = raster.New(grid)
		for i, d := range dist.Data {
			if d <= cutoff {
				raw.Data[i] = (cutoff - d) / cutoff * 100
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = stage(log, "clip", func() error {
		clip := raster.Burn(grid, []geom.T{in.studyArea}, 1)
		raw.ClipTo(clip)
		if empty {
			// Degrade gracefully: an empty source set yields a zero
			// raster inside the study area, mirroring the climate model.
			for i := range raw.Data {
				if clip.Data[i] == 1 {
					raw.Data[i] = 0
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	var rawPath, rescaledPath string
	err = stage(log, "save", func() error {
		var werr error
		rawPath, rescaledPath, werr = p.writeOutputs(log, ModelPollination, raw)
		return werr
	})
	if err != nil {
		return nil, err
	}

	elapsed := time.Since(start)
	p.record(ctx, ModelPollination, elapsed, rawPath)
	log.Info("pipeline: model run complete", zap.Duration("elapsed", elapsed))

	return &Result{
		Model:        ModelPollination,
		RawPath:      rawPath,
		RescaledPath: rescaledPath,
		Duration:     elapsed,
	}, nil
}
