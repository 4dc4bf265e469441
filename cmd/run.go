package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/greenatlas/ecoserv/internal/habitat"
	"github.com/greenatlas/ecoserv/internal/pipeline"
	"github.com/greenatlas/ecoserv/internal/runlog"
)

var (
	runModel      string
	runBasemap    string
	runStudy      string
	runOut        string
	runProject    string
	runTitle      string
	runLookup     string
	runHedgerow   string
	runResolution float64
	runRadius     float64
	runCutoff     float64
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one or both ecosystem-service models",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		applyRunFlags()

		table, err := loadLookupTable()
		if err != nil {
			return err
		}

		store, err := initRunLog(ctx)
		if err != nil {
			return err
		}
		defer store.Close() //nolint:errcheck

		p := pipeline.New(cfg, table, store)

		var results []*pipeline.Result
		switch runModel {
		case pipeline.ModelClimate:
			r, err := p.RunClimate(ctx)
			if err != nil {
				return eris.Wrap(err, "climate model")
			}
			results = append(results, r)
		case pipeline.ModelPollination:
			r, err := p.RunPollination(ctx)
			if err != nil {
				return eris.Wrap(err, "pollination model")
			}
			results = append(results, r)
		case "all":
			r, err := p.RunClimate(ctx)
			if err != nil {
				return eris.Wrap(err, "climate model")
			}
			results = append(results, r)
			r, err = p.RunPollination(ctx)
			if err != nil {
				return eris.Wrap(err, "pollination model")
			}
			results = append(results, r)
		default:
			return eris.Errorf("unknown model %q (want climate, pollination or all)", runModel)
		}

		zap.L().Info("run complete", zap.Int("models", len(results)))

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	},
}

// applyRunFlags overlays non-empty flag values onto the loaded config.
func applyRunFlags() {
	if runBasemap != "" {
		cfg.Inputs.Basemap = runBasemap
	}
	if runStudy != "" {
		cfg.Inputs.StudyArea = runStudy
	}
	if runOut != "" {
		cfg.Inputs.OutputDir = runOut
	}
	if runProject != "" {
		cfg.Project.Title = runProject
	}
	if runTitle != "" {
		cfg.Project.RunTitle = runTitle
	}
	if runLookup != "" {
		cfg.Inputs.LookupTable = runLookup
	}
	if runHedgerow != "" {
		cfg.Hedgerow.Enabled = true
		cfg.Hedgerow.Layer = runHedgerow
	}
	if runResolution > 0 {
		cfg.Climate.Resolution = runResolution
		cfg.Pollination.Resolution = runResolution
	}
	if runRadius > 0 {
		cfg.Climate.Radius = runRadius
	}
	if runCutoff > 0 {
		cfg.Pollination.Cutoff = runCutoff
	}
}

// loadLookupTable returns the configured habitat lookup table, falling back
// to the built-in Phase 1 classification.
func loadLookupTable() (habitat.Table, error) {
	if cfg.Inputs.LookupTable == "" {
		return habitat.DefaultTable(), nil
	}
	table, err := habitat.LoadTable(cfg.Inputs.LookupTable)
	if err != nil {
		return nil, eris.Wrap(err, "load lookup table")
	}
	return table, nil
}

// initRunLog opens and migrates the run-log database.
func initRunLog(ctx context.Context) (*runlog.SQLiteStore, error) {
	store, err := runlog.NewSQLite(cfg.RunLog.Path)
	if err != nil {
		return nil, err
	}
	if err := store.Migrate(ctx); err != nil {
		store.Close() //nolint:errcheck
		return nil, err
	}
	return store, nil
}

func init() {
	runCmd.Flags().StringVar(&runModel, "model", "all", "model to run (climate, pollination, all)")
	runCmd.Flags().StringVar(&runBasemap, "basemap", "", "habitat basemap shapefile")
	runCmd.Flags().StringVar(&runStudy, "study-area", "", "study area boundary (shapefile or GeoJSON)")
	runCmd.Flags().StringVar(&runOut, "out", "", "output directory")
	runCmd.Flags().StringVar(&runProject, "project", "", "project title used in output filenames")
	runCmd.Flags().StringVar(&runTitle, "run-title", "", "run title used in output filenames")
	runCmd.Flags().StringVar(&runLookup, "lookup", "", "habitat lookup table YAML")
	runCmd.Flags().StringVar(&runHedgerow, "hedgerow", "", "auxiliary hedgerow layer shapefile")
	runCmd.Flags().Float64Var(&runResolution, "resolution", 0, "cell size in meters for both models")
	runCmd.Flags().Float64Var(&runRadius, "radius", 0, "climate focal radius in meters")
	runCmd.Flags().Float64Var(&runCutoff, "cutoff", 0, "pollination cutoff distance in meters")
	rootCmd.AddCommand(runCmd)
}
