// Package gmti holds the shared domain model for the GMTI signal chain:
// PRI payloads and their ancillary words, stage inputs and outputs,
// detection records, and the ProcessingStage lifecycle contract.
package gmti

import "fmt"

// StageConfig carries the chain geometry every stage is initialized with.
type StageConfig struct {
	Taps        int `json:"taps" yaml:"taps"`
	RangeBins   int `json:"range_bins" yaml:"range_bins"`
	DopplerBins int `json:"doppler_bins" yaml:"doppler_bins"`
}

// Validate checks the geometry bounds. Zero or negative dimensions are the
// most common misconfiguration and fail before any stage touches a buffer.
func (c StageConfig) Validate() error {
	if c.Taps < 1 {
		return Errorf(ErrInvalidInput, "taps must be >= 1, got %d", c.Taps)
	}
	if c.RangeBins < 1 {
		return Errorf(ErrInvalidInput, "range_bins must be >= 1, got %d", c.RangeBins)
	}
	if c.DopplerBins < 1 {
		return Errorf(ErrInvalidInput, "doppler_bins must be >= 1, got %d", c.DopplerBins)
	}
	return nil
}

func (c StageConfig) String() string {
	return fmt.Sprintf("taps=%d range_bins=%d doppler_bins=%d", c.Taps, c.RangeBins, c.DopplerBins)
}

// PriMode identifies the collection mode a burst was gathered under, derived
// from the legacy EXT_PriType_Enum word.
type PriMode string

const (
	ModeStandby      PriMode = "standby"
	ModeAdvGmtiScan  PriMode = "adv-gmti-scan"
	ModeAdvGmtiStare PriMode = "adv-gmti-stare"
	ModeAdvDmtiStare PriMode = "adv-dmti-stare"
	ModeAdvDmtiScan  PriMode = "adv-dmti-scan"
)

// Valid reports whether m is one of the known collection modes.
func (m PriMode) Valid() bool {
	switch m {
	case ModeStandby, ModeAdvGmtiScan, ModeAdvGmtiStare, ModeAdvDmtiStare, ModeAdvDmtiScan:
		return true
	}
	return false
}

// PriPayload is one pulse-repetition-interval burst: raw samples plus the
// ancillary word describing how they were collected.
type PriPayload struct {
	Samples   []float64     `json:"samples"`
	Ancillary AncillaryData `json:"ancillary"`
}

// AncillaryData mirrors the ancillary word attached to each PRI burst.
// A zero Timestamp means the collector did not stamp the burst; downstream
// consumers treat absent and zero identically.
type AncillaryData struct {
	Timestamp   float64           `json:"timestamp"`
	Mode        PriMode           `json:"mode"`
	PulseCount  int               `json:"pulse_count"`
	DwellTimeMs float64           `json:"dwell"`
	RangeStartM float64           `json:"range_start"`
	RangeEndM   float64           `json:"range_end"`
	Scenario    *ScenarioMetadata `json:"scenario_metadata,omitempty"`
}

// ScenarioMetadata describes the synthetic collection scenario a payload was
// generated under. Optional on ingest; augmentation falls back to defaults
// when it is absent.
type ScenarioMetadata struct {
	Name                string   `json:"name" yaml:"name"`
	PlatformType        string   `json:"platform_type" yaml:"platform_type"`
	PlatformVelocityKmh float64  `json:"platform_velocity_kmh" yaml:"platform_velocity_kmh"`
	AltitudeM           *float64 `json:"altitude_m,omitempty" yaml:"altitude_m,omitempty"`
	AreaWidthKm         float64  `json:"area_width_km" yaml:"area_width_km"`
	AreaHeightKm        float64  `json:"area_height_km" yaml:"area_height_km"`
	ClutterLevel        float64  `json:"clutter_level" yaml:"clutter_level"`
	SnrTargetDb         float64  `json:"snr_target_db" yaml:"snr_target_db"`
	InterferenceDb      float64  `json:"interference_db" yaml:"interference_db"`
	TargetMotion        string   `json:"target_motion" yaml:"target_motion"`
	Description         string   `json:"description,omitempty" yaml:"description,omitempty"`
	TimestampStart      *float64 `json:"timestamp_start,omitempty" yaml:"timestamp_start,omitempty"`
}

// MeanAreaKm is the average of the scenario's width and height extents,
// the scalar the detection-floor augmentation scales its target count by.
func (s *ScenarioMetadata) MeanAreaKm() float64 {
	return (s.AreaWidthKm + s.AreaHeightKm) / 2
}

// StageInput feeds one stage execution. Timestamp zero means unset.
type StageInput struct {
	Samples   []float64 `json:"samples"`
	Timestamp float64   `json:"timestamp"`
}

// StageMetadata is the per-execution sidecar a stage fills in: the power
// profile for range compression, free-form notes, and detections for the
// clutter stage.
type StageMetadata struct {
	PowerProfile     []float64         `json:"power_profile,omitempty"`
	Notes            []string          `json:"notes,omitempty"`
	DetectionCount   int               `json:"detection_count"`
	DetectionRecords []DetectionRecord `json:"detection_records,omitempty"`
}

// StageOutput bundles a stage's processed samples with its metadata.
type StageOutput struct {
	Samples  []float64     `json:"samples"`
	Metadata StageMetadata `json:"metadata"`
}

// DetectionRecord is one moving-target detection. Records are emitted by the
// clutter stage (bearing and elevation zero) or synthesized by detection-floor
// augmentation.
type DetectionRecord struct {
	Timestamp    float64 `json:"timestamp"`
	RangeM       float64 `json:"range_m"`
	DopplerMps   float64 `json:"doppler_mps"`
	SnrDb        float64 `json:"snr_db"`
	BearingDeg   float64 `json:"bearing_deg"`
	ElevationDeg float64 `json:"elevation_deg"`
}

// ProcessingStage is the lifecycle contract shared by the range, doppler and
// clutter stages. Execute before Initialize is an internal error; Cleanup is
// idempotent and returns the stage to its uninitialized state.
type ProcessingStage interface {
	Initialize(cfg StageConfig) error
	Execute(in StageInput) (StageOutput, error)
	Cleanup()
}
