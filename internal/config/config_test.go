package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, ".spice", cfg.Extension)
	assert.Equal(t, 64, cfg.MaxRevisitPasses)
	assert.Equal(t, ColorAuto, cfg.Color)
	assert.NoError(t, cfg.Validate())
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "spice.yaml", `
project_name: demo
extension: sp
max_revisit_passes: 8
color: never
warnings:
  disabled: [W0002, W0004]
  as_errors: true
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "demo", cfg.ProjectName)
	assert.Equal(t, ".sp", cfg.Extension)
	assert.Equal(t, 8, cfg.MaxRevisitPasses)
	assert.Equal(t, ColorNever, cfg.Color)
	assert.Equal(t, []string{"W0002", "W0004"}, cfg.Warnings.Disabled)
	assert.True(t, cfg.Warnings.AsErrors)
}

func TestLoadProperties(t *testing.T) {
	path := writeFile(t, "spice.properties", `
project_name = demo
max_revisit_passes = 16
warnings.disabled = W0001, W0004
debug = true
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "demo", cfg.ProjectName)
	assert.Equal(t, 16, cfg.MaxRevisitPasses)
	assert.Equal(t, []string{"W0001", "W0004"}, cfg.Warnings.Disabled)
	assert.True(t, cfg.Debug)
	assert.Equal(t, ".spice", cfg.Extension)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero passes", func(c *Config) { c.MaxRevisitPasses = 0 }},
		{"negative passes", func(c *Config) { c.MaxRevisitPasses = -3 }},
		{"color", func(c *Config) { c.Color = "rainbow" }},
		{"warning code", func(c *Config) { c.Warnings.Disabled = []string{"T0001"} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.True(t, errors.Is(cfg.Validate(), ErrInvalidConfig))
		})
	}
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "spice.toml", "x = 1"))
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))

	_, err = Load(writeFile(t, "bad.yaml", "max_revisit_passes: 0\n"))
	assert.True(t, errors.Is(err, ErrInvalidConfig))

	_, err = Load(writeFile(t, "broken.yaml", "warnings: [\n"))
	assert.Error(t, err)
}
