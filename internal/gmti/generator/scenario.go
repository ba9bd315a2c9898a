package generator

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/banshee-data/gmti.report/internal/gmti"
)

// Preset pairs a baseline collection profile with the burst rate the profile
// was tuned to stream at.
type Preset struct {
	Config      Config
	FrameRateHz float64
}

// Presets returns the named baseline scenarios shipped with the simulator.
// Callers get fresh copies and may mutate them freely.
func Presets() map[string]Preset {
	airborneAlt := 8200.0
	landAlt := 30.0

	return map[string]Preset{
		"airborne": {
			FrameRateHz: 2.0,
			Config: Config{
				Taps:                4,
				RangeBins:           1024,
				DopplerBins:         256,
				FrequencyGhz:        32.0,
				NoiseLevel:          0.07,
				Seed:                1337,
				Mode:                gmti.ModeAdvGmtiScan,
				ScenarioName:        "airborne_intel",
				PlatformType:        "Airborne ISR",
				PlatformVelocityKmh: 750.0,
				AltitudeM:           &airborneAlt,
				AreaWidthKm:         10.0,
				AreaHeightKm:        10.0,
				ClutterLevel:        0.45,
				SnrTargetDb:         18.0,
				InterferenceDb:      -10.0,
				TargetMotion:        "Cruise, gentle zig-zag",
			},
		},
		"land": {
			FrameRateHz: 1.5,
			Config: Config{
				Taps:                6,
				RangeBins:           768,
				DopplerBins:         192,
				FrequencyGhz:        0.9,
				NoiseLevel:          0.08,
				Seed:                404,
				Mode:                gmti.ModeAdvDmtiStare,
				ScenarioName:        "land_ambush",
				PlatformType:        "Land-based Radar",
				PlatformVelocityKmh: 40.0,
				AltitudeM:           &landAlt,
				AreaWidthKm:         10.0,
				AreaHeightKm:        10.0,
				ClutterLevel:        0.6,
				SnrTargetDb:         14.0,
				InterferenceDb:      -6.0,
				TargetMotion:        "Tactical convoy moving east",
			},
		},
	}
}

// LoadScenario reads a scenario profile from a YAML file. Fields omitted
// from the file keep their DefaultConfig values, so a scenario can override
// just the knobs it cares about.
func LoadScenario(path string) (Config, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".yaml" && ext != ".yml" {
		return Config{}, fmt.Errorf("scenario file must have .yaml or .yml extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return Config{}, fmt.Errorf("failed to stat scenario file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024
	if fileInfo.Size() > maxFileSize {
		return Config{}, fmt.Errorf("scenario file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read scenario file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse scenario file: %w", err)
	}
	if cfg.ScenarioName == "" {
		base := filepath.Base(cleanPath)
		cfg.ScenarioName = base[:len(base)-len(filepath.Ext(base))]
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
