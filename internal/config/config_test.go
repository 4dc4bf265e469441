package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	// Run from a directory with no config file so only defaults apply.
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5.0, cfg.Climate.Resolution)
	assert.Equal(t, 200.0, cfg.Climate.Radius)
	assert.Equal(t, 5.0, cfg.Climate.GapBuffer)
	assert.Contains(t, cfg.Climate.Classes, "Woodland and scrub")
	assert.Equal(t, 800.0, cfg.Pollination.Cutoff)
	assert.Equal(t, 10.0, cfg.Pollination.Resolution)
	assert.Equal(t, []string{"Cultivated"}, cfg.Pollination.Classes)
	assert.Equal(t, "J2.1.2", cfg.Hedgerow.Code)
	assert.False(t, cfg.Hedgerow.Enabled)
	assert.Equal(t, "HABITAT", cfg.Inputs.CodeField)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadFromFile(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	dir := t.TempDir()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	content := `
project:
  title: greenford
  run_title: baseline
climate:
  radius: 150
pollination:
  cutoff: 500
`
	require.NoError(t, os.WriteFile("config.yaml", []byte(content), 0o644))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "greenford", cfg.Project.Title)
	assert.Equal(t, "baseline", cfg.Project.RunTitle)
	assert.Equal(t, 150.0, cfg.Climate.Radius)
	assert.Equal(t, 500.0, cfg.Pollination.Cutoff)
	// Unset values keep defaults.
	assert.Equal(t, 5.0, cfg.Climate.Resolution)
}

func TestInitLoggerBadLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "nope", Format: "json"})
	assert.Error(t, err)
}
