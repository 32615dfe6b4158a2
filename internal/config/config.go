// Package config loads compiler settings from YAML or .properties files.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/magiconair/properties"
	"gopkg.in/yaml.v3"

	"github.com/spicelang/spice-sub000/internal/utils/fs"
)

const (
	DefaultExtension        = ".spice"
	DefaultMaxRevisitPasses = 64
)

var (
	ErrInvalidConfig     = errors.New("invalid config")
	ErrUnsupportedFormat = errors.New("unsupported config format")
)

// Color modes
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Warnings configures the warning channel
type Warnings struct {
	Disabled []string `yaml:"disabled"`
	AsErrors bool     `yaml:"as_errors"`
}

// Config holds compiler configuration
type Config struct {
	// Project information
	ProjectName string `yaml:"project_name"`
	ProjectRoot string `yaml:"project_root"`
	Extension   string `yaml:"extension"` // source file extension, default ".spice"

	// Upper bound of check passes per file in the revisit loop
	MaxRevisitPasses int `yaml:"max_revisit_passes"`

	Warnings Warnings `yaml:"warnings"`
	Color    string   `yaml:"color"`
	Debug    bool     `yaml:"debug"`

	// Treat every scope as unsafe. Only meant for tests.
	AllowUnsafeEverywhere bool `yaml:"allow_unsafe_everywhere"`
}

// Default returns the configuration used when no file is given
func Default() *Config {
	return &Config{
		Extension:        DefaultExtension,
		MaxRevisitPasses: DefaultMaxRevisitPasses,
		Color:            ColorAuto,
	}
}

// Load reads a config file, choosing the format by extension
func Load(path string) (*Config, error) {
	if !fs.IsValidFile(path) {
		return nil, fmt.Errorf("config %s does not exist", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseYAML(data, path)
	case ".properties":
		return ParseProperties(data, path)
	}
	return nil, fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
}

// ParseYAML parses YAML content. The path is only used in error messages.
func ParseYAML(data []byte, path string) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return finish(cfg, path)
}

// ParseProperties parses flat `key = value` content, e.g.
//
//	max_revisit_passes = 16
//	warnings.disabled = W0001,W0004
func ParseProperties(data []byte, path string) (*Config, error) {
	p, err := properties.Load(data, properties.UTF8)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	cfg := Default()
	cfg.ProjectName = p.GetString("project_name", cfg.ProjectName)
	cfg.ProjectRoot = p.GetString("project_root", cfg.ProjectRoot)
	cfg.Extension = p.GetString("extension", cfg.Extension)
	cfg.MaxRevisitPasses = p.GetInt("max_revisit_passes", cfg.MaxRevisitPasses)
	cfg.Warnings.AsErrors = p.GetBool("warnings.as_errors", cfg.Warnings.AsErrors)
	cfg.Color = p.GetString("color", cfg.Color)
	cfg.Debug = p.GetBool("debug", cfg.Debug)
	cfg.AllowUnsafeEverywhere = p.GetBool("allow_unsafe_everywhere", cfg.AllowUnsafeEverywhere)
	for _, code := range strings.Split(p.GetString("warnings.disabled", ""), ",") {
		if code = strings.TrimSpace(code); code != "" {
			cfg.Warnings.Disabled = append(cfg.Warnings.Disabled, code)
		}
	}
	return finish(cfg, path)
}

func finish(cfg *Config, path string) (*Config, error) {
	if !strings.HasPrefix(cfg.Extension, ".") {
		cfg.Extension = "." + cfg.Extension
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects settings the compiler cannot run with
func (c *Config) Validate() error {
	if c.MaxRevisitPasses <= 0 {
		return fmt.Errorf("max_revisit_passes must be positive, got %d: %w", c.MaxRevisitPasses, ErrInvalidConfig)
	}
	switch c.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("unknown color mode %q: %w", c.Color, ErrInvalidConfig)
	}
	for _, code := range c.Warnings.Disabled {
		if !strings.HasPrefix(code, "W") {
			return fmt.Errorf("%q is not a warning code: %w", code, ErrInvalidConfig)
		}
	}
	return nil
}
