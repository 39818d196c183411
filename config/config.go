// Package config loads the demo harness's on-disk configuration: the core
// PipelineConfig plus the handful of fields only the harness cares about
// (where frames come from, how loud to log).
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/TheGonzalezDesigns/waldo-vision/pipeline"
)

// HarnessConfig is cmd/waldoplay's full configuration surface.
type HarnessConfig struct {
	Pipeline pipeline.PipelineConfig `toml:"pipeline"`

	FixturePaths    []string `toml:"fixture_paths"`
	MetricsEnabled  bool     `toml:"metrics_enabled"`
	MetricsAddr     string   `toml:"metrics_addr"`
	MomentStoreSize int      `toml:"moment_store_size"`
	LogLevel        string   `toml:"log_level"`
}

// DefaultConfig returns a HarnessConfig built on pipeline.DefaultConfig,
// sized for the built-in synthetic demo frames.
func DefaultConfig() HarnessConfig {
	cfg := pipeline.DefaultConfig()
	cfg.ImageWidth = 320
	cfg.ImageHeight = 240
	cfg.ChunkWidth = 16
	cfg.ChunkHeight = 16

	return HarnessConfig{
		Pipeline:        cfg,
		MetricsEnabled:  false,
		MetricsAddr:     ":9090",
		MomentStoreSize: 256,
		LogLevel:        "info",
	}
}

// Load reads a TOML file at path into a HarnessConfig seeded with
// DefaultConfig, so a file only needs to set the fields it wants to
// override.
func Load(path string) (HarnessConfig, error) {
	cfg := DefaultConfig()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("config: decode %s: %w", path, err)
	}
	return cfg, nil
}

// Validate delegates geometry/threshold checks to the embedded
// PipelineConfig and additionally rejects a non-positive moment store size.
func (c HarnessConfig) Validate() error {
	if err := c.Pipeline.Validate(); err != nil {
		return err
	}
	if c.MomentStoreSize <= 0 {
		return fmt.Errorf("config: moment_store_size must be > 0, got %d", c.MomentStoreSize)
	}
	return nil
}
