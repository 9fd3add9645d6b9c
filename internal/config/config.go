package config

import (
	"fmt"
	"runtime"
)

// Config holds the settings shared by all kspace commands. It loads from a
// configuration file, KSPACE_* environment variables, and command-line
// flags, in increasing priority.
type Config struct {
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	// Verbose is a shorthand for log_level=debug.
	Verbose bool `mapstructure:"verbose" yaml:"verbose" json:"verbose"`

	// Oversample divides the first acquisition axis when planning fid
	// geometry. 1 means no oversampling.
	Oversample int `mapstructure:"oversample" yaml:"oversample" json:"oversample"`
	// Workers caps the decode fan-out. 0 means one worker per CPU.
	Workers int `mapstructure:"workers" yaml:"workers" json:"workers"`

	// Output groups export settings.
	Output OutputConfig `mapstructure:"output" yaml:"output" json:"output"`
}

// OutputConfig groups settings of the export command.
type OutputConfig struct {
	// Encoding selects the NRRD payload encoding, raw or gzip.
	Encoding string `mapstructure:"encoding" yaml:"encoding" json:"encoding"`
	// Magnitude exports |z| as real data instead of complex samples.
	Magnitude bool `mapstructure:"magnitude" yaml:"magnitude" json:"magnitude"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		LogLevel:   "info",
		Oversample: 1,
		Workers:    0,
		Output: OutputConfig{
			Encoding: "raw",
		},
	}
}

// Validate checks value ranges and enumerations.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: invalid log_level %q", c.LogLevel)
	}
	if c.Oversample < 1 {
		return fmt.Errorf("config: oversample must be >= 1, got %d", c.Oversample)
	}
	if c.Workers < 0 {
		return fmt.Errorf("config: workers must be >= 0, got %d", c.Workers)
	}
	switch c.Output.Encoding {
	case "raw", "gzip":
	default:
		return fmt.Errorf("config: invalid output encoding %q", c.Output.Encoding)
	}
	return nil
}

// EffectiveWorkers resolves the configured worker count to a concrete
// number.
func (c *Config) EffectiveWorkers() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return runtime.GOMAXPROCS(0)
}
