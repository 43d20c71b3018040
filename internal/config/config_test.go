package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 30, cfg.Tigerweb.TimeoutSecs)
	assert.Equal(t, 4, cfg.Tigerweb.RequestsPerSecond)
	assert.Equal(t, 3, cfg.Tigerweb.Retries)
	assert.Equal(t, "POP100", cfg.Shapefile.PopulationField)
	assert.Equal(t, 1200, cfg.Render.Width)
	assert.Equal(t, 800, cfg.Render.Height)
	assert.Equal(t, 100, cfg.Hover.ThrottleMillis)
	assert.Equal(t, 1000, cfg.Hover.ShowDelayMillis)
	assert.Equal(t, "quantile", cfg.Classify.Method)
	assert.Equal(t, "Reds", cfg.Classify.Palette)
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
log:
  level: debug
  format: console
render:
  width: 1600
classify:
  method: jenks
  palette: Blues
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 1600, cfg.Render.Width)
	assert.Equal(t, "jenks", cfg.Classify.Method)
	assert.Equal(t, "Blues", cfg.Classify.Palette)
	// Defaults still apply for unset values
	assert.Equal(t, 800, cfg.Render.Height)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
log:
  level: debug
classify:
  method: jenks
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("CHLORO_LOG_LEVEL", "warn")
	t.Setenv("CHLORO_CLASSIFY_METHOD", "equal-interval")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "equal-interval", cfg.Classify.Method)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	t.Setenv("CHLORO_RENDER_WIDTH", "2000")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 2000, cfg.Render.Width)
}

func TestHoverDurations(t *testing.T) {
	h := HoverConfig{ThrottleMillis: 100, ShowDelayMillis: 1000}
	assert.Equal(t, "100ms", h.Throttle().String())
	assert.Equal(t, "1s", h.ShowDelay().String())
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}
