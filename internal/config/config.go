// Package config loads the viewer's TOML or YAML configuration and watches it for changes.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Carmen-Shannon/h2scape/engine/facility"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

var (
	// ErrUnknownProfile is returned when the configured facility profile does not exist.
	ErrUnknownProfile = errors.New("config: unknown facility profile")

	// ErrUnknownBackend is returned when the configured renderer backend does not exist.
	ErrUnknownBackend = errors.New("config: unknown renderer backend")

	// ErrUnsupportedFormat is returned by Load for files that are neither TOML nor YAML.
	ErrUnsupportedFormat = errors.New("config: unsupported file format")
)

// Config is the complete viewer configuration.
type Config struct {
	Profile  string         `toml:"profile" yaml:"profile"`
	Params   Params         `toml:"params" yaml:"params"`
	Engine   EngineConfig   `toml:"engine" yaml:"engine"`
	Window   WindowConfig   `toml:"window" yaml:"window"`
	Renderer RendererConfig `toml:"renderer" yaml:"renderer"`
	Log      LogConfig      `toml:"log" yaml:"log"`
	Metrics  MetricsConfig  `toml:"metrics" yaml:"metrics"`
	Tracing  TracingConfig  `toml:"tracing" yaml:"tracing"`
}

// Params are the requested facility counts. The engine clamps them, so any value loads.
type Params struct {
	PrimaryUnitCount      int `toml:"primary_unit_count" yaml:"primary_unit_count"`
	ElectrolysisUnitCount int `toml:"electrolysis_unit_count" yaml:"electrolysis_unit_count"`
}

// Facility converts the counts to builder parameters.
func (p Params) Facility() facility.Params {
	return facility.Params{
		PrimaryUnitCount:      p.PrimaryUnitCount,
		ElectrolysisUnitCount: p.ElectrolysisUnitCount,
	}
}

type EngineConfig struct {
	FrameRate    int   `toml:"frame_rate" yaml:"frame_rate"`
	MaxUnitCount int   `toml:"max_unit_count" yaml:"max_unit_count"` // 0 disables the cap
	Seed         int64 `toml:"seed" yaml:"seed"`                     // 0 seeds from the clock
	Workers      int   `toml:"workers" yaml:"workers"`               // 0 picks from the CPU count
	Profiling    bool  `toml:"profiling" yaml:"profiling"`
}

type WindowConfig struct {
	Title  string `toml:"title" yaml:"title"`
	Width  int    `toml:"width" yaml:"width"`
	Height int    `toml:"height" yaml:"height"`
}

type RendererConfig struct {
	Backend string `toml:"backend" yaml:"backend"` // wgpu | terminal
	VSync   bool   `toml:"vsync" yaml:"vsync"`
	MSAA    bool   `toml:"msaa" yaml:"msaa"`
}

type LogConfig struct {
	Level  string `toml:"level" yaml:"level"`
	Format string `toml:"format" yaml:"format"`
	File   string `toml:"file" yaml:"file"` // empty logs to stderr
}

type MetricsConfig struct {
	Addr string `toml:"addr" yaml:"addr"` // empty disables the /metrics server
}

type TracingConfig struct {
	Enabled     bool    `toml:"enabled" yaml:"enabled"`
	Exporter    string  `toml:"exporter" yaml:"exporter"`
	Endpoint    string  `toml:"endpoint" yaml:"endpoint"`
	SampleRatio float64 `toml:"sample_ratio" yaml:"sample_ratio"`
	ServiceName string  `toml:"service_name" yaml:"service_name"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Profile: "wind",
		Params:  Params{PrimaryUnitCount: 3, ElectrolysisUnitCount: 2},
		Engine: EngineConfig{
			FrameRate:    60,
			MaxUnitCount: 64,
		},
		Window: WindowConfig{
			Title:  "h2scape",
			Width:  1280,
			Height: 720,
		},
		Renderer: RendererConfig{
			Backend: "wgpu",
			VSync:   true,
			MSAA:    true,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Tracing: TracingConfig{
			Exporter:    "stdout",
			SampleRatio: 1,
			ServiceName: "h2scape",
		},
	}
}

// Load reads a configuration file over the defaults; fields the file omits keep their default
// values. The format follows the extension: .toml, .yaml or .yml.
//
// Parameters:
//   - path: the file to read
//
// Returns:
//   - Config: the validated configuration
//   - error: a read, parse or validation error
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config TOML: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config YAML: %w", err)
		}
	default:
		return cfg, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate reports every setting that cannot be used.
func (c Config) Validate() error {
	var errs []error
	if _, ok := facility.ProfileByName(c.Profile); !ok {
		errs = append(errs, fmt.Errorf("%w: %q (have %s)", ErrUnknownProfile, c.Profile, strings.Join(facility.ProfileNames(), ", ")))
	}
	switch c.Renderer.Backend {
	case "wgpu", "terminal":
	default:
		errs = append(errs, fmt.Errorf("%w: %q", ErrUnknownBackend, c.Renderer.Backend))
	}
	if c.Engine.FrameRate <= 0 {
		errs = append(errs, fmt.Errorf("config: frame_rate must be positive, got %d", c.Engine.FrameRate))
	}
	if c.Engine.MaxUnitCount < 0 {
		errs = append(errs, fmt.Errorf("config: max_unit_count must not be negative, got %d", c.Engine.MaxUnitCount))
	}
	if c.Tracing.SampleRatio < 0 || c.Tracing.SampleRatio > 1 {
		errs = append(errs, fmt.Errorf("config: sample_ratio must be in [0, 1], got %g", c.Tracing.SampleRatio))
	}
	return errors.Join(errs...)
}
