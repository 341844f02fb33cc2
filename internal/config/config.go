// Package config loads the settings of the digit segmentation tools.
//
// Settings are resolved in this order, later sources winning:
//
//  1. Built-in defaults (Default)
//  2. An optional YAML file
//  3. Variables from a .env file in the working directory, if present
//  4. Process environment: DIGITSEG_OUTPUT_DIR, DIGITSEG_DEBUG_DIR,
//     DIGITSEG_DETECTOR and LOG_LEVEL
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	yaml "go.yaml.in/yaml/v3"

	"github.com/ironsheep/digit-roi/internal/detection"
	"github.com/ironsheep/digit-roi/internal/imaging"
	"github.com/ironsheep/digit-roi/internal/segment"
)

// Environment variables read by Load.
const (
	EnvOutputDir = "DIGITSEG_OUTPUT_DIR"
	EnvDebugDir  = "DIGITSEG_DEBUG_DIR"
	EnvDetector  = "DIGITSEG_DETECTOR"
	EnvLogLevel  = "LOG_LEVEL"
)

// Config holds every tunable of the pipeline and its tools.
type Config struct {
	// OutputDir receives DetectedArea and BoundingBox artifacts.
	OutputDir string `yaml:"output_dir"`

	// DebugDir, when set, receives one rendered image per pipeline stage.
	DebugDir string `yaml:"debug_dir"`

	// Detector selects the candidate generator backend: "blob" or "gocv".
	Detector string `yaml:"detector"`

	// LogLevel is one of DEBUG, INFO, WARN or ERROR.
	LogLevel string `yaml:"log_level"`

	Preprocess imaging.PreprocessOptions `yaml:"preprocess"`
	Detection  detection.Options         `yaml:"detection"`
	Segment    segment.Params            `yaml:"segment"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		OutputDir:  "output",
		Detector:   detection.BackendBlob,
		LogLevel:   "INFO",
		Preprocess: imaging.DefaultPreprocessOptions(),
		Detection:  detection.DefaultOptions(),
		Segment:    segment.DefaultParams(),
	}
}

// Load resolves the configuration. An empty path skips the YAML file; a
// path that cannot be read is an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	// A missing .env file is not an error
	_ = godotenv.Load()

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvOutputDir); v != "" {
		c.OutputDir = v
	}
	if v := os.Getenv(EnvDebugDir); v != "" {
		c.DebugDir = v
	}
	if v := os.Getenv(EnvDetector); v != "" {
		c.Detector = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
}

// Validate reports the first setting the pipeline cannot run with.
func (c *Config) Validate() error {
	switch c.Detector {
	case detection.BackendBlob, detection.BackendContours:
	default:
		return fmt.Errorf("unknown detector %q", c.Detector)
	}

	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}

	p := c.Preprocess
	if p.LargeImageThreshold < 0 || p.WorkingWidth <= 0 || p.WorkingHeight <= 0 {
		return fmt.Errorf("preprocess: working resolution must be positive")
	}
	if p.BlurRadius < 0 || p.MorphRadius < 0 {
		return fmt.Errorf("preprocess: radii must not be negative")
	}

	d := c.Detection
	if d.MinArea < 0 || (d.MaxArea > 0 && d.MaxArea < d.MinArea) {
		return fmt.Errorf("detection: invalid area range [%d, %d]", d.MinArea, d.MaxArea)
	}

	if err := c.Segment.Validate(); err != nil {
		return fmt.Errorf("segment: %w", err)
	}
	return nil
}

// ParseLevel maps a level name to its slog.Level.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToUpper(name) {
	case "", "INFO":
		return slog.LevelInfo, nil
	case "DEBUG":
		return slog.LevelDebug, nil
	case "WARN":
		return slog.LevelWarn, nil
	case "ERROR":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", name)
	}
}

// NewPipeline builds a pipeline from the configuration.
func (c *Config) NewPipeline(opts ...segment.Option) (*segment.Pipeline, error) {
	det, err := detection.New(c.Detector, c.Detection)
	if err != nil {
		return nil, err
	}
	pre := imaging.NewPreprocessor(c.Preprocess)
	return segment.New(pre, det, c.Segment, opts...), nil
}
