// Package pipeline sequences the ecosystem-service models: input loading,
// classification, rasterization, the model kernels, masking, clipping and
// output writing, with per-stage progress logging and run-log timing.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"

	"github.com/greenatlas/ecoserv/internal/config"
	"github.com/greenatlas/ecoserv/internal/habitat"
	"github.com/greenatlas/ecoserv/internal/raster"
	"github.com/greenatlas/ecoserv/internal/runlog"
	"github.com/greenatlas/ecoserv/internal/vector"
)

// Model names used in output filenames and run-log keys.
const (
	ModelClimate     = "climate"
	ModelPollination = "pollination"
)

// Pipeline runs the ecosystem-service models for one configuration.
type Pipeline struct {
	cfg   *config.Config
	table habitat.Table
	log   runlog.Store
}

// New creates a Pipeline. The run-log store may be nil, in which case
// timings are only logged.
func New(cfg *config.Config, table habitat.Table, store runlog.Store) *Pipeline {
	return &Pipeline{cfg: cfg, table: table, log: store}
}

// Result reports one completed model run.
type Result struct {
	Model        string        `json:"model"`
	RawPath      string        `json:"raw_path"`
	RescaledPath string        `json:"rescaled_path"`
	Duration     time.Duration `json:"duration"`
}

// inputs holds the validated vector inputs shared by both models.
type inputs struct {
	features   []vector.Feature
	studyArea  geom.T
	studyBound *geom.Bounds
}

// loadInputs validates the output directory and loads the basemap and
// study area. All input and geometry validation happens here, before any
// compute, so a failing run writes no partial output.
func (p *Pipeline) loadInputs() (*inputs, error) {
	if p.cfg.Inputs.Basemap == "" {
		return nil, eris.New("pipeline: basemap path is required")
	}
	if p.cfg.Inputs.StudyArea == "" {
		return nil, eris.New("pipeline: study area path is required")
	}
	if err := os.MkdirAll(p.cfg.Inputs.OutputDir, 0o755); err != nil {
		return nil, eris.Wrapf(err, "pipeline: create output dir %s", p.cfg.Inputs.OutputDir)
	}

	features, err := vector.ReadBasemap(p.cfg.Inputs.Basemap, p.cfg.Inputs.CodeField)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: load basemap")
	}

	study, err := vector.ReadStudyArea(p.cfg.Inputs.StudyArea)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: load study area")
	}

	zap.L().Info("pipeline: inputs loaded",
		zap.Int("features", len(features)),
		zap.String("basemap", p.cfg.Inputs.Basemap),
	)

	return &inputs{
		features:   features,
		studyArea:  study,
		studyBound: vector.GeomExtent(study),
	}, nil
}

// hedgerowFeatures loads the auxiliary linear-habitat layer when enabled.
// A configured layer that is missing on disk is an input error.
func (p *Pipeline) hedgerowFeatures() ([]vector.Feature, error) {
	if !p.cfg.Hedgerow.Enabled {
		return nil, nil
	}
	if p.cfg.Hedgerow.Layer == "" {
		return nil, nil
	}
	if _, err := os.Stat(p.cfg.Hedgerow.Layer); err != nil {
		return nil, eris.Wrapf(err, "pipeline: hedgerow layer %s", p.cfg.Hedgerow.Layer)
	}
	geoms, err := vector.ReadPolygons(p.cfg.Hedgerow.Layer)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: load hedgerow layer")
	}
	features := make([]vector.Feature, 0, len(geoms))
	for _, g := range geoms {
		features = append(features, vector.Feature{Code: p.cfg.Hedgerow.Code, Geom: g})
	}
	return features, nil
}

// stage runs one pipeline stage, logging its duration and naming it in any
// returned error.
func stage(log *zap.Logger, name string, fn func() error) error {
	start := time.Now()
	if err := fn(); err != nil {
		return eris.Wrapf(err, "stage %s", name)
	}
	log.Info("pipeline: stage complete",
		zap.String("stage", name),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()),
	)
	return nil
}

// outputPaths returns the deterministic raw and rescaled filenames.
func (p *Pipeline) outputPaths(model string) (raw, rescaled string) {
	base := fmt.Sprintf("%s_%s_%s", p.cfg.Project.Title, p.cfg.Project.RunTitle, model)
	raw = filepath.Join(p.cfg.Inputs.OutputDir, base+".tif")
	rescaled = filepath.Join(p.cfg.Inputs.OutputDir, base+"_rescaled.tif")
	return raw, rescaled
}

// writeOutputs persists the raw raster, rescales it against its own
// maximum and persists the rescaled raster.
func (p *Pipeline) writeOutputs(log *zap.Logger, model string, raw *raster.Raster) (rawPath, rescaledPath string, err error) {
	rawPath, rescaledPath = p.outputPaths(model)

	if err := raster.WriteGeoTIFF(rawPath, raw); err != nil {
		return "", "", eris.Wrap(err, "write raw raster")
	}

	rescaled, degenerate := raster.Rescale(raw)
	if degenerate {
		log.Warn("pipeline: zero maximum, rescaled output is all zero")
	}
	if err := raster.WriteGeoTIFF(rescaledPath, rescaled); err != nil {
		return "", "", eris.Wrap(err, "write rescaled raster")
	}

	log.Info("pipeline: outputs written",
		zap.String("raw", rawPath),
		zap.String("rescaled", rescaledPath),
	)
	return rawPath, rescaledPath, nil
}

// record stores the run timing keyed by model name.
func (p *Pipeline) record(ctx context.Context, model string, elapsed time.Duration, outputs string) {
	if p.log == nil {
		return
	}
	err := p.log.Record(ctx, runlog.Entry{
		Project:  p.cfg.Project.Title,
		RunTitle: p.cfg.Project.RunTitle,
		Model:    model,
		Duration: elapsed,
		Outputs:  outputs,
	})
	if err != nil {
		zap.L().Warn("pipeline: failed to record run timing", zap.Error(err))
	}
}

// selector builds the habitat selector for a model's class list, adding
// the hedgerow code as always-eligible when the layer toggle is on.
func (p *Pipeline) selector(classes []string) habitat.Selector {
	cls := make([]habitat.Class, 0, len(classes))
	for _, c := range classes {
		cls = append(cls, habitat.Class(c))
	}
	var always []string
	if p.cfg.Hedgerow.Enabled && p.cfg.Hedgerow.Code != "" {
		always = append(always, p.cfg.Hedgerow.Code)
	}
	return habitat.NewSelector(p.table, cls, always)
}

func featureGeoms(features []vector.Feature) []geom.T {
	geoms := make([]geom.T, 0, len(features))
	for _, f := range features {
		geoms = append(geoms, f.Geom)
	}
	return geoms
}
