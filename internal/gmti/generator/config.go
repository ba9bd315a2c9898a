// Package generator synthesizes PRI bursts from scenario profiles. Every
// payload is a pure function of its Config, so the same profile and seed
// always reproduce the same burst sample for sample.
package generator

import (
	"github.com/banshee-data/gmti.report/internal/gmti"
)

// Config is a full scenario profile: chain geometry, waveform parameters and
// the collection scenario stamped into the payload's ancillary word.
type Config struct {
	Taps         int     `yaml:"taps" json:"taps"`
	RangeBins    int     `yaml:"range_bins" json:"range_bins"`
	DopplerBins  int     `yaml:"doppler_bins" json:"doppler_bins"`
	FrequencyGhz float64 `yaml:"frequency_ghz" json:"frequency_ghz"`
	NoiseLevel   float64 `yaml:"noise_level" json:"noise_level"`
	Seed         uint64  `yaml:"seed" json:"seed"`

	Mode gmti.PriMode `yaml:"mode" json:"mode"`

	ScenarioName        string   `yaml:"scenario_name,omitempty" json:"scenario_name,omitempty"`
	PlatformType        string   `yaml:"platform_type" json:"platform_type"`
	PlatformVelocityKmh float64  `yaml:"platform_velocity_kmh" json:"platform_velocity_kmh"`
	AltitudeM           *float64 `yaml:"altitude_m,omitempty" json:"altitude_m,omitempty"`
	AreaWidthKm         float64  `yaml:"area_width_km" json:"area_width_km"`
	AreaHeightKm        float64  `yaml:"area_height_km" json:"area_height_km"`
	ClutterLevel        float64  `yaml:"clutter_level" json:"clutter_level"`
	SnrTargetDb         float64  `yaml:"snr_target_db" json:"snr_target_db"`
	InterferenceDb      float64  `yaml:"interference_db" json:"interference_db"`
	TargetMotion        string   `yaml:"target_motion" json:"target_motion"`
	Description         string   `yaml:"description,omitempty" json:"description,omitempty"`

	// TimestampStart is the collection time of the first pulse in seconds.
	// Streaming producers advance it between bursts to animate the scene.
	TimestampStart float64 `yaml:"timestamp_start" json:"timestamp_start"`
}

// DefaultConfig returns the standard airborne collection profile.
func DefaultConfig() Config {
	altitude := 8200.0
	return Config{
		Taps:                4,
		RangeBins:           2048,
		DopplerBins:         256,
		FrequencyGhz:        32.0,
		NoiseLevel:          0.03,
		Seed:                0,
		Mode:                gmti.ModeAdvGmtiScan,
		PlatformType:        "Airborne ISR",
		PlatformVelocityKmh: 750.0,
		AltitudeM:           &altitude,
		AreaWidthKm:         10.0,
		AreaHeightKm:        10.0,
		ClutterLevel:        0.45,
		SnrTargetDb:         18.0,
		InterferenceDb:      -10.0,
		TargetMotion:        "Cruise, gentle zig-zag",
		TimestampStart:      0,
	}
}

// Validate checks the profile bounds ahead of synthesis. The builder itself
// clamps geometry to survive odd inputs, so Validate is for surfaces that
// should reject bad profiles loudly instead (config files, ingest endpoints).
func (c Config) Validate() error {
	if c.Taps < 1 {
		return gmti.Errorf(gmti.ErrInvalidInput, "taps must be >= 1, got %d", c.Taps)
	}
	if c.RangeBins < 1 {
		return gmti.Errorf(gmti.ErrInvalidInput, "range_bins must be >= 1, got %d", c.RangeBins)
	}
	if c.DopplerBins < 1 {
		return gmti.Errorf(gmti.ErrInvalidInput, "doppler_bins must be >= 1, got %d", c.DopplerBins)
	}
	if c.NoiseLevel < 0 {
		return gmti.Errorf(gmti.ErrInvalidInput, "noise_level must be >= 0, got %g", c.NoiseLevel)
	}
	if c.ClutterLevel < 0 || c.ClutterLevel > 1 {
		return gmti.Errorf(gmti.ErrInvalidInput, "clutter_level must be in [0,1], got %g", c.ClutterLevel)
	}
	if c.Mode != "" && !c.Mode.Valid() {
		return gmti.Errorf(gmti.ErrInvalidInput, "unknown mode %q", c.Mode)
	}
	return nil
}

// StageConfig converts the profile's geometry into the per-stage form the
// processing chain consumes.
func (c Config) StageConfig() gmti.StageConfig {
	return gmti.StageConfig{Taps: c.Taps, RangeBins: c.RangeBins, DopplerBins: c.DopplerBins}
}

// Scenario builds the metadata block stamped into generated payloads.
func (c Config) Scenario() *gmti.ScenarioMetadata {
	name := c.ScenarioName
	if name == "" {
		name = "generated-burst"
	}
	start := c.TimestampStart
	return &gmti.ScenarioMetadata{
		Name:                name,
		PlatformType:        c.PlatformType,
		PlatformVelocityKmh: c.PlatformVelocityKmh,
		AltitudeM:           c.AltitudeM,
		AreaWidthKm:         c.AreaWidthKm,
		AreaHeightKm:        c.AreaHeightKm,
		ClutterLevel:        c.ClutterLevel,
		SnrTargetDb:         c.SnrTargetDb,
		InterferenceDb:      c.InterferenceDb,
		TargetMotion:        c.TargetMotion,
		Description:         c.Description,
		TimestampStart:      &start,
	}
}

func (c Config) normalizedTaps() int {
	if c.Taps < 1 {
		return 1
	}
	return c.Taps
}

func (c Config) normalizedRangeBins() int {
	if c.RangeBins < 1 {
		return 1
	}
	return c.RangeBins
}
