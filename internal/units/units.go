// Package units provides shared conversions between the decibel, distance and
// velocity scales used across the signal chain.
package units

import "math"

// DBToAmplitude converts a decibel value to a linear amplitude ratio (20 dB per decade).
func DBToAmplitude(db float64) float64 {
	return math.Pow(10, db/20)
}

// DBToPower converts a decibel value to a linear power ratio (10 dB per decade).
func DBToPower(db float64) float64 {
	return math.Pow(10, db/10)
}

// AmplitudeToDB converts a linear amplitude ratio to decibels.
// Non-positive ratios return -Inf.
func AmplitudeToDB(ratio float64) float64 {
	if ratio <= 0 {
		return math.Inf(-1)
	}
	return 20 * math.Log10(ratio)
}

// KmToMeters converts kilometres to metres.
func KmToMeters(km float64) float64 {
	return km * 1000
}

// MetersToKm converts metres to kilometres.
func MetersToKm(m float64) float64 {
	return m / 1000
}

// MpsToKmh converts metres per second to kilometres per hour.
// Doppler velocities are stored in m/s; display surfaces label in km/h.
func MpsToKmh(mps float64) float64 {
	return mps * 3.6
}
