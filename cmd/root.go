package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/greenatlas/ecoserv/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "ecoserv",
	Short: "Ecosystem-service indicator rasters from habitat basemaps",
	Long:  "Classifies a habitat basemap, rasterizes it and runs the climate-cooling and pollination models, writing 0-100 indicator GeoTIFFs for the study area.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
