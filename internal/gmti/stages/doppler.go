package stages

import (
	"fmt"

	"github.com/banshee-data/gmti.report/internal/gmti"
	"github.com/banshee-data/gmti.report/internal/gmti/dsp"
)

// DopplerStage transforms range-compressed samples into a doppler magnitude
// spectrum of exactly doppler_bins values.
type DopplerStage struct {
	pool *BufferPool
	cfg  *gmti.StageConfig
	fft  *dsp.FFT
}

// NewDopplerStage creates an uninitialized doppler stage with its own pool.
func NewDopplerStage(poolCapacity int) *DopplerStage {
	return &DopplerStage{pool: NewBufferPool(poolCapacity)}
}

// Initialize stores the geometry and builds the transform engine. Bin counts
// below one are clamped so a degenerate config still yields one output bin.
func (s *DopplerStage) Initialize(cfg gmti.StageConfig) error {
	s.cfg = &cfg
	bins := cfg.DopplerBins
	if bins < 1 {
		bins = 1
	}
	s.fft = dsp.NewFFT(bins)
	return nil
}

// Execute runs the forward DFT and fills a pool buffer with the coefficient
// magnitudes.
func (s *DopplerStage) Execute(in gmti.StageInput) (gmti.StageOutput, error) {
	if len(in.Samples) == 0 {
		return gmti.StageOutput{}, gmti.Errorf(gmti.ErrInvalidInput, "empty sample buffer")
	}
	if s.fft == nil {
		return gmti.StageOutput{}, gmti.Errorf(gmti.ErrInternal, "transform engine not configured")
	}

	coeffs := s.fft.Forward(in.Samples)

	buf, err := s.pool.Checkout(len(coeffs))
	if err != nil {
		return gmti.StageOutput{}, err
	}
	dsp.Magnitudes(buf, coeffs)

	rms := dsp.RMS(buf)
	gmti.Tracef("Doppler RMS %.4f over %d bins", rms, len(buf))

	return gmti.StageOutput{
		Samples: buf,
		Metadata: gmti.StageMetadata{
			Notes: []string{fmt.Sprintf("doppler RMS %.4f", rms)},
		},
	}, nil
}

// Cleanup resets the pool and drops both the configuration and the transform
// engine. Safe to call more than once.
func (s *DopplerStage) Cleanup() {
	s.pool.Reset()
	s.cfg = nil
	s.fft = nil
}
