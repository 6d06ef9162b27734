// Package config provides configuration loading and validation for the
// generator, its exporters and the websocket server.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/voltex/volume"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("invalid config")

// Raw compression modes.
const (
	CompressionNone = "none"
	CompressionZstd = "zstd"
)

// Interactive bounds for the generation parameters.
const (
	MinResolution = 16
	MaxResolution = 256
	MinFrequency  = 1
	MaxFrequency  = 32
	MinOctaves    = 1
	MaxOctaves    = 8
)

// Config holds all configuration parameters.
type Config struct {
	Generation volume.Config  `yaml:"generation"`
	Output     OutputConfig   `yaml:"output"`
	Parallel   ParallelConfig `yaml:"parallel"`
	S3         S3Config       `yaml:"s3"`
	Server     ServerConfig   `yaml:"server"`
}

// OutputConfig controls which files are written and where.
type OutputConfig struct {
	Dir            string `yaml:"dir"`
	Basename       string `yaml:"basename"`        // files are <basename>_<N>.<ext>
	RawCompression string `yaml:"raw_compression"` // none | zstd
	WriteStats     bool   `yaml:"write_stats"`     // per-slice stats CSV
	WriteConfig    bool   `yaml:"write_config"`    // effective config snapshot
}

// ParallelConfig holds volume generation worker settings.
type ParallelConfig struct {
	Workers int `yaml:"workers"` // 0 = GOMAXPROCS, 1 = sequential
}

// S3Config selects the S3 export sink when Bucket is set.
type S3Config struct {
	Bucket string `yaml:"bucket"`
	Prefix string `yaml:"prefix"`
	Region string `yaml:"region"`
}

// ServerConfig holds websocket server settings.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Default returns the embedded defaults.
func Default() *Config {
	cfg, err := Parse(nil)
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	if path == "" {
		return Parse(nil)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return Parse(data)
}

// Parse merges YAML data over the embedded defaults.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}
	if len(data) > 0 {
		// Only overwrites fields present in data
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}
	return cfg, nil
}

// Validate checks the generation parameters against the interactive
// bounds and the output settings for known values.
func (c *Config) Validate() error {
	if err := ValidateGeneration(c.Generation); err != nil {
		return err
	}

	switch c.Output.RawCompression {
	case "", CompressionNone, CompressionZstd:
	default:
		return fmt.Errorf("%w: raw_compression %q", ErrInvalid, c.Output.RawCompression)
	}
	if c.Parallel.Workers < 0 {
		return fmt.Errorf("%w: workers %d is negative", ErrInvalid, c.Parallel.Workers)
	}
	return nil
}

// ValidateGeneration checks generation parameters against the interactive
// bounds.
func ValidateGeneration(g volume.Config) error {
	switch {
	case g.Resolution < MinResolution || g.Resolution > MaxResolution:
		return fmt.Errorf("%w: resolution %d outside [%d, %d]", ErrInvalid, g.Resolution, MinResolution, MaxResolution)
	case g.Frequency < MinFrequency || g.Frequency > MaxFrequency:
		return fmt.Errorf("%w: frequency %d outside [%d, %d]", ErrInvalid, g.Frequency, MinFrequency, MaxFrequency)
	case g.Octaves < MinOctaves || g.Octaves > MaxOctaves:
		return fmt.Errorf("%w: octaves %d outside [%d, %d]", ErrInvalid, g.Octaves, MinOctaves, MaxOctaves)
	case g.WarpStrength < 0:
		return fmt.Errorf("%w: warp_strength %g is negative", ErrInvalid, g.WarpStrength)
	case g.Gamma <= 0:
		return fmt.Errorf("%w: gamma %g must be positive", ErrInvalid, g.Gamma)
	}
	return nil
}

// YAML encodes the configuration.
func (c *Config) YAML() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshaling config: %w", err)
	}
	return data, nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := c.YAML()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
