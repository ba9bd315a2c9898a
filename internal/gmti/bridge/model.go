// Package bridge hosts the HTTP surface of the simulator: payload ingest,
// scenario-config ingest, and the visualization model consumed by GUI
// frontends and the debug charts.
package bridge

import (
	"sync"
	"time"

	"github.com/banshee-data/gmti.report/internal/gmti"
	"github.com/banshee-data/gmti.report/internal/gmti/workflow"
	"github.com/banshee-data/gmti.report/internal/monitoring"
)

// maxProfilePoints caps the power profile carried by the model. Frontends
// render at most this many points, so longer profiles get decimated.
const maxProfilePoints = 512

// Model is the visualization state published after each chain run.
type Model struct {
	PowerProfile     []float64              `json:"power_profile"`
	DetectionCount   int                    `json:"detection_count"`
	DetectionRecords []gmti.DetectionRecord `json:"detection_records"`
	Notes            []string               `json:"detection_notes"`
	Scenario         *gmti.ScenarioMetadata `json:"scenario_metadata,omitempty"`
	Status           string                 `json:"status,omitempty"`
	UpdatedAtNs      int64                  `json:"updated_at_ns"`
}

// State guards the latest Model. Writers publish whole results; readers take
// snapshots. Safe for concurrent use.
type State struct {
	mu    sync.RWMutex
	model Model
}

// NewState returns an empty state.
func NewState() *State {
	return &State{}
}

// Publish replaces the model with the outcome of a chain run.
func (s *State) Publish(res *workflow.Result) {
	if res == nil {
		return
	}

	model := Model{
		PowerProfile:     downsampleProfile(res.PowerProfile, maxProfilePoints),
		DetectionCount:   res.DetectionCount,
		DetectionRecords: append([]gmti.DetectionRecord(nil), res.DetectionRecords...),
		Notes:            append([]string(nil), res.DopplerNotes...),
		Scenario:         res.Scenario,
		Status:           "ok",
		UpdatedAtNs:      time.Now().UnixNano(),
	}

	s.mu.Lock()
	s.model = model
	s.mu.Unlock()

	monitoring.Logf("[bridge] power profile points: %d, detections: %d",
		len(model.PowerProfile), model.DetectionCount)
}

// PublishStatus updates only the status line, leaving the last run's data in
// place.
func (s *State) PublishStatus(msg string) {
	s.mu.Lock()
	s.model.Status = msg
	s.model.UpdatedAtNs = time.Now().UnixNano()
	s.mu.Unlock()

	monitoring.Logf("[bridge] %s", msg)
}

// Snapshot returns a copy of the current model. Slices are cloned so callers
// cannot mutate published state.
func (s *State) Snapshot() Model {
	s.mu.RLock()
	defer s.mu.RUnlock()

	model := s.model
	model.PowerProfile = append([]float64(nil), s.model.PowerProfile...)
	model.DetectionRecords = append([]gmti.DetectionRecord(nil), s.model.DetectionRecords...)
	model.Notes = append([]string(nil), s.model.Notes...)
	return model
}

// downsampleProfile decimates profile to at most max points, keeping the
// first point of each stride so the range axis stays monotonic.
func downsampleProfile(profile []float64, max int) []float64 {
	if max < 1 || len(profile) == 0 {
		return []float64{}
	}
	if len(profile) <= max {
		return append([]float64(nil), profile...)
	}

	out := make([]float64, max)
	for i := 0; i < max; i++ {
		out[i] = profile[i*len(profile)/max]
	}
	return out
}
