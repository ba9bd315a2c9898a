package stages

import (
	"fmt"

	"github.com/banshee-data/gmti.report/internal/gmti"
	"github.com/banshee-data/gmti.report/internal/gmti/dsp"
)

// thresholdFactor sets the detection threshold relative to the burst RMS.
const thresholdFactor = 1.2

// ClutterStage suppresses clutter by thresholding the doppler spectrum at
// 1.2x its RMS and emits a DetectionRecord per surviving bin.
type ClutterStage struct {
	pool *BufferPool
	cfg  *gmti.StageConfig
}

// NewClutterStage creates an uninitialized clutter stage with its own pool.
func NewClutterStage(poolCapacity int) *ClutterStage {
	return &ClutterStage{pool: NewBufferPool(poolCapacity)}
}

// Initialize stores the chain geometry.
func (s *ClutterStage) Initialize(cfg gmti.StageConfig) error {
	s.cfg = &cfg
	return nil
}

// Execute thresholds the spectrum and emits detections. Bin index maps
// linearly onto range; doppler is normalized to [-1, 1] around the centre
// bin. Bearing and elevation stay zero; only augmentation synthesizes them.
func (s *ClutterStage) Execute(in gmti.StageInput) (gmti.StageOutput, error) {
	cfg := s.cfg
	if cfg == nil {
		return gmti.StageOutput{}, gmti.Errorf(gmti.ErrInternal, "clutter stage not initialized")
	}
	if len(in.Samples) == 0 {
		return gmti.StageOutput{}, gmti.Errorf(gmti.ErrInvalidInput, "empty sample buffer")
	}

	rms := dsp.RMS(in.Samples)
	threshold := rms * thresholdFactor

	buf, err := s.pool.Checkout(len(in.Samples))
	if err != nil {
		return gmti.StageOutput{}, err
	}
	copy(buf, in.Samples)

	n := len(buf)
	half := float64(n / 2)

	var records []gmti.DetectionRecord
	for i, v := range buf {
		if v <= threshold {
			continue
		}
		doppler := 0.0
		if half > 0 {
			doppler = (float64(i) - half) / half
		}
		records = append(records, gmti.DetectionRecord{
			Timestamp:  in.Timestamp,
			RangeM:     float64(cfg.RangeBins) * (float64(i) / float64(n)),
			DopplerMps: doppler,
			SnrDb:      v / threshold,
		})
	}

	gmti.Tracef("ClutterStage detections %d threshold %.3f", len(records), threshold)

	return gmti.StageOutput{
		Samples: buf,
		Metadata: gmti.StageMetadata{
			DetectionCount:   len(records),
			DetectionRecords: records,
			Notes:            []string{fmt.Sprintf("threshold %.3f", threshold)},
		},
	}, nil
}

// Cleanup resets the pool and drops the configuration. Safe to call more
// than once.
func (s *ClutterStage) Cleanup() {
	s.pool.Reset()
	s.cfg = nil
}
