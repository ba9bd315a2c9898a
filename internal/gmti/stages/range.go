package stages

import (
	"fmt"

	"github.com/banshee-data/gmti.report/internal/gmti"
	"github.com/banshee-data/gmti.report/internal/gmti/dsp"
)

// RangeStage performs range compression over one PRI burst. The taps count
// scales the expected input length only; samples arrive as a single
// contiguous slice, never as interleaved channels.
type RangeStage struct {
	pool *BufferPool
	cfg  *gmti.StageConfig
}

// NewRangeStage creates an uninitialized range stage with its own pool.
func NewRangeStage(poolCapacity int) *RangeStage {
	return &RangeStage{pool: NewBufferPool(poolCapacity)}
}

// Initialize stores the chain geometry. It does not validate bounds; config
// validation happens at the workflow boundary.
func (s *RangeStage) Initialize(cfg gmti.StageConfig) error {
	s.cfg = &cfg
	return nil
}

// Execute compresses the burst down to range_bins samples and attaches the
// power profile. Failures leave no partial output.
func (s *RangeStage) Execute(in gmti.StageInput) (gmti.StageOutput, error) {
	cfg := s.cfg
	if cfg == nil {
		return gmti.StageOutput{}, gmti.Errorf(gmti.ErrInternal, "range stage not initialized")
	}

	expected := cfg.RangeBins * cfg.Taps
	if len(in.Samples) < expected {
		return gmti.StageOutput{}, gmti.Errorf(gmti.ErrInvalidInput,
			"insufficient samples: got %d, want %d", len(in.Samples), expected)
	}

	buf, err := s.pool.Checkout(cfg.RangeBins)
	if err != nil {
		return gmti.StageOutput{}, err
	}
	copy(buf, in.Samples[:cfg.RangeBins])

	profile := dsp.PowerProfile(nil, buf)
	rms := dsp.RMS(buf)
	gmti.Tracef("RangeStage RMS %.4f over %d bins", rms, len(buf))

	return gmti.StageOutput{
		Samples: buf,
		Metadata: gmti.StageMetadata{
			PowerProfile: profile,
			Notes:        []string{fmt.Sprintf("Range RMS %.4f", rms)},
		},
	}, nil
}

// Cleanup resets the pool and drops the configuration. Safe to call more
// than once.
func (s *RangeStage) Cleanup() {
	s.pool.Reset()
	s.cfg = nil
}
