// Package dsp wraps the gonum transform and statistics primitives the signal
// chain is built on.
package dsp

import (
	"gonum.org/v1/gonum/dsp/fourier"
)

// FFT is a fixed-size forward DFT engine. The plan and the complex working
// buffer are built once and reused across calls; only the returned
// coefficient slice is allocated per call.
type FFT struct {
	size int
	plan *fourier.CmplxFFT
	work []complex128
}

// NewFFT builds an engine for size-point transforms. Sizes below one are
// clamped to one.
func NewFFT(size int) *FFT {
	if size < 1 {
		size = 1
	}
	return &FFT{
		size: size,
		plan: fourier.NewCmplxFFT(size),
		work: make([]complex128, size),
	}
}

// Size returns the configured transform length.
func (f *FFT) Size() int {
	return f.size
}

// Forward computes the forward DFT of samples, treating each sample as the
// real part of a complex input. Short inputs are zero-padded and long inputs
// truncated to the engine size. The result always holds exactly Size()
// unnormalized coefficients.
func (f *FFT) Forward(samples []float64) []complex128 {
	for i := range f.work {
		if i < len(samples) {
			f.work[i] = complex(samples[i], 0)
		} else {
			f.work[i] = 0
		}
	}
	return f.plan.Coefficients(nil, f.work)
}
