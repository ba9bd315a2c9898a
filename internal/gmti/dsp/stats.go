package dsp

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/floats"
)

// RMS returns the root mean square of samples, 0 for empty input.
func RMS(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	return math.Sqrt(floats.Dot(samples, samples) / float64(len(samples)))
}

// PowerProfile fills dst with the elementwise square of samples and returns
// it, allocating when dst is nil. dst must otherwise match len(samples).
func PowerProfile(dst, samples []float64) []float64 {
	if dst == nil {
		dst = make([]float64, len(samples))
	}
	return floats.MulTo(dst, samples, samples)
}

// Magnitudes fills dst with the modulus of each coefficient and returns it,
// allocating when dst is nil. dst must otherwise match len(coeffs).
func Magnitudes(dst []float64, coeffs []complex128) []float64 {
	if dst == nil {
		dst = make([]float64, len(coeffs))
	}
	for i, c := range coeffs {
		dst[i] = cmplx.Abs(c)
	}
	return dst
}
