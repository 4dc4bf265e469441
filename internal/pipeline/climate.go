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

// RunClimate computes the local climate-cooling capacity rasters: a focal
// disc sum of vegetated/water presence, masked to the zone of influence of
// vegetated patches, clipped to the study area and rescaled to 0-100.
func (p *Pipeline) RunClimate(ctx context.Context) (*Result, error) {
	log := zap.L().With(zap.String("model", ModelClimate))
	log.Info("pipeline: starting model run")
	start := time.Now()

	in, err := p.loadInputs()
	if err != nil {
		return nil, err
	}

	// Classification.
	var filtered []vector.Feature
	var patches []vector.Feature
	err = stage(log, "classify", func() error {
		hedges, err := p.hedgerowFeatures()
		if err != nil {
			return err
		}
		sel := p.selector(p.cfg.Climate.Classes)
		filtered = vector.Filter(append(in.features, hedges...), sel)

		// Influence zones are driven by vegetated patches only; the
		// linear hedgerow layer contributes presence, not patch area.
		patchSel := p.selector(p.cfg.Climate.Classes)
		patchSel.AlwaysCodes = nil
		patches = vector.Filter(in.features, patchSel)

		if len(filtered) == 0 {
			log.Warn("pipeline: no qualifying habitat, cooling score will be zero")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Grid over the study area padded by the radius to avoid edge
	// artifacts; the padding is trimmed again at the clip stage.
	grid, err := raster.NewGrid(
		raster.Buffered(in.studyBound, p.cfg.Climate.Radius),
		p.cfg.Climate.Resolution,
		vector.SRID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "stage grid")
	}

	var raw *raster.Raster
	err = stage(log, "focal sum", func() error {
		presence := raster.Burn(grid, featureGeoms(filtered), 1)
		var ferr error
		raw, ferr = raster.FocalSum(presence, p.cfg.Climate.Radius)
		return ferr
	})
	if err != nil {
		return nil, err
	}

	err = stage(log, "influence mask", func() error {
		mask := buildInfluenceMask(grid, featureGeoms(patches), p.cfg.Climate.GapBuffer)
		raw.MaskOutside(mask, 0)
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = stage(log, "clip", func() error {
		clip := raster.Burn(grid, []geom.T{in.studyArea}, 1)
		raw.ClipTo(clip)
		return nil
	})
	if err != nil {
		return nil, err
	}

	var rawPath, rescaledPath string
	err = stage(log, "save", func() error {
		var werr error
		rawPath, rescaledPath, werr = p.writeOutputs(log, ModelClimate, raw)
		return werr
	})
	if err != nil {
		return nil, err
	}

	elapsed := time.Since(start)
	p.record(ctx, ModelClimate, elapsed, rawPath)
	log.Info("pipeline: model run complete", zap.Duration("elapsed", elapsed))

	return &Result{
		Model:        ModelClimate,
		RawPath:      rawPath,
		RescaledPath: rescaledPath,
		Duration:     elapsed,
	}, nil
}
