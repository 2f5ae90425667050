// Package config handles wadtool configuration loading and management.
package config

import (
	"errors"
	"fmt"
)

// Config holds all wadtool settings.
type Config struct {
	Data    DataConfig    `yaml:"data"`
	Export  ExportConfig  `yaml:"export"`
	Logging LoggingConfig `yaml:"logging"`
}

// DataConfig holds archive paths.
type DataConfig struct {
	WADPaths []string `yaml:"wad_paths"` // IWAD first, then PWADs in load order
	Workers  int      `yaml:"workers"`   // Levels loaded in parallel
}

// ExportConfig holds image export settings.
type ExportConfig struct {
	OutputDir string `yaml:"output_dir"`
	Format    string `yaml:"format"` // png or bmp
	Scale     int    `yaml:"scale"`  // Nearest-neighbour upscale factor
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
	JSON    bool   `yaml:"json"` // JSON lines in the log file
}

// Export formats.
const (
	FormatPNG = "png"
	FormatBMP = "bmp"
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid config")

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Data: DataConfig{
			WADPaths: []string{"doom.wad"},
			Workers:  4,
		},
		Export: ExportConfig{
			OutputDir: ".",
			Format:    FormatPNG,
			Scale:     1,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate checks values that cannot be corrected silently.
func (c *Config) Validate() error {
	switch c.Export.Format {
	case FormatPNG, FormatBMP:
	default:
		return fmt.Errorf("%w: export format %q", ErrInvalidConfig, c.Export.Format)
	}
	if c.Export.Scale < 1 {
		return fmt.Errorf("%w: export scale %d", ErrInvalidConfig, c.Export.Scale)
	}
	if c.Data.Workers < 1 {
		return fmt.Errorf("%w: workers %d", ErrInvalidConfig, c.Data.Workers)
	}
	return nil
}
