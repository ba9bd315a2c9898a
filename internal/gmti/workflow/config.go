// Package workflow owns the orchestration of the GMTI signal chain: loading
// chain geometry, sequencing the three stages with fresh instances per call,
// and applying detection-floor augmentation to sparse results.
package workflow

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/banshee-data/gmti.report/internal/gmti"
)

// Config is the chain geometry the runner drives the stages with.
type Config struct {
	Taps        int `yaml:"taps" json:"taps"`
	RangeBins   int `yaml:"range_bins" json:"range_bins"`
	DopplerBins int `yaml:"doppler_bins" json:"doppler_bins"`
}

// DefaultConfig returns the production chain geometry.
func DefaultConfig() Config {
	return Config{Taps: 4, RangeBins: 2048, DopplerBins: 256}
}

// FromFlags builds a Config from command-line overrides.
func FromFlags(taps, rangeBins, dopplerBins int) Config {
	return Config{Taps: taps, RangeBins: rangeBins, DopplerBins: dopplerBins}
}

// Load reads a workflow config from a YAML file. The file must carry a
// .yaml/.yml extension and stay under 1 MiB; fields omitted from the file
// keep their defaults so partial configs are safe.
func Load(path string) (Config, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".yaml" && ext != ".yml" {
		return Config{}, fmt.Errorf("workflow config must have .yaml or .yml extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return Config{}, fmt.Errorf("failed to stat workflow config: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024
	if fileInfo.Size() > maxFileSize {
		return Config{}, fmt.Errorf("workflow config too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read workflow config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse workflow config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the geometry bounds.
func (c Config) Validate() error {
	return c.StageConfig().Validate()
}

// StageConfig converts to the per-stage configuration form.
func (c Config) StageConfig() gmti.StageConfig {
	return gmti.StageConfig{Taps: c.Taps, RangeBins: c.RangeBins, DopplerBins: c.DopplerBins}
}
