package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Project     ProjectConfig     `yaml:"project" mapstructure:"project"`
	Inputs      InputConfig       `yaml:"inputs" mapstructure:"inputs"`
	Climate     ClimateConfig     `yaml:"climate" mapstructure:"climate"`
	Pollination PollinationConfig `yaml:"pollination" mapstructure:"pollination"`
	Hedgerow    HedgerowConfig    `yaml:"hedgerow" mapstructure:"hedgerow"`
	RunLog      RunLogConfig      `yaml:"runlog" mapstructure:"runlog"`
	Log         LogConfig         `yaml:"log" mapstructure:"log"`
}

// ProjectConfig names the project and run; both appear in output filenames
// and run-log keys.
type ProjectConfig struct {
	Title    string `yaml:"title" mapstructure:"title"`
	RunTitle string `yaml:"run_title" mapstructure:"run_title"`
}

// InputConfig locates the input datasets and the output directory.
type InputConfig struct {
	Basemap     string `yaml:"basemap" mapstructure:"basemap"`
	CodeField   string `yaml:"code_field" mapstructure:"code_field"`
	StudyArea   string `yaml:"study_area" mapstructure:"study_area"`
	LookupTable string `yaml:"lookup_table" mapstructure:"lookup_table"`
	OutputDir   string `yaml:"output_dir" mapstructure:"output_dir"`
}

// ClimateConfig tunes the local climate-cooling model.
type ClimateConfig struct {
	Resolution float64  `yaml:"resolution" mapstructure:"resolution"`
	Radius     float64  `yaml:"radius" mapstructure:"radius"`
	GapBuffer  float64  `yaml:"gap_buffer" mapstructure:"gap_buffer"`
	Classes    []string `yaml:"classes" mapstructure:"classes"`
}

// PollinationConfig tunes the pollination-demand model.
type PollinationConfig struct {
	Resolution float64  `yaml:"resolution" mapstructure:"resolution"`
	Cutoff     float64  `yaml:"cutoff" mapstructure:"cutoff"`
	Classes    []string `yaml:"classes" mapstructure:"classes"`
}

// HedgerowConfig controls the auxiliary linear-habitat layer.
type HedgerowConfig struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	Layer   string `yaml:"layer" mapstructure:"layer"`
	Code    string `yaml:"code" mapstructure:"code"`
}

// RunLogConfig locates the run-log database.
type RunLogConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("ECOSERV")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("project.title", "ecoserv")
	v.SetDefault("project.run_title", "run")
	v.SetDefault("inputs.code_field", "HABITAT")
	v.SetDefault("inputs.output_dir", "output")
	v.SetDefault("climate.resolution", 5.0)
	v.SetDefault("climate.radius", 200.0)
	v.SetDefault("climate.gap_buffer", 5.0)
	v.SetDefault("climate.classes", []string{
		"Woodland and scrub", "Grassland", "Heathland", "Wetland", "Water",
	})
	v.SetDefault("pollination.resolution", 10.0)
	v.SetDefault("pollination.cutoff", 800.0)
	v.SetDefault("pollination.classes", []string{"Cultivated"})
	v.SetDefault("hedgerow.code", "J2.1.2")
	v.SetDefault("runlog.path", "ecoserv_runs.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
