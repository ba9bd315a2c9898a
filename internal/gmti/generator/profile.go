package generator

import (
	"math"
	"math/rand"

	"github.com/banshee-data/gmti.report/internal/gmti"
	"github.com/banshee-data/gmti.report/internal/units"
)

// BuildPayload synthesizes one PRI burst from the profile. The burst carries
// taps*range_bins samples plus an ancillary word holding the collection time,
// mode and scenario metadata. Identical configs produce identical payloads.
func BuildPayload(cfg Config) (*gmti.PriPayload, error) {
	samples, err := buildSamples(cfg)
	if err != nil {
		return nil, err
	}

	return &gmti.PriPayload{
		Samples: samples,
		Ancillary: gmti.AncillaryData{
			Timestamp:   cfg.TimestampStart,
			Mode:        cfg.Mode,
			PulseCount:  cfg.normalizedTaps(),
			DwellTimeMs: 45.0,
			RangeStartM: 0,
			RangeEndM:   30000,
			Scenario:    cfg.Scenario(),
		},
	}, nil
}

// buildSamples renders the raw waveform: a range-decaying carrier modulated
// by platform motion, over a clutter floor with an interference tone, a
// target echo component and uniform receiver noise.
func buildSamples(cfg Config) ([]float64, error) {
	taps := cfg.normalizedTaps()
	rangeBins := cfg.normalizedRangeBins()
	sampleCount := taps * rangeBins
	if sampleCount/rangeBins != taps {
		return nil, gmti.Errorf(gmti.ErrInvalidInput, "sample count overflows: %d taps x %d range bins", taps, rangeBins)
	}

	rng := rand.New(rand.NewSource(int64(cfg.Seed)))
	samples := make([]float64, 0, sampleCount)

	timeOffset := cfg.TimestampStart
	motionBias := motionSignature(cfg.TargetMotion)
	snrLinear := units.DBToAmplitude(cfg.SnrTargetDb)
	interferenceAmp := units.DBToAmplitude(cfg.InterferenceDb)
	speedFactor := math.Min(cfg.PlatformVelocityKmh/500.0, 3.0)

	for tap := 0; tap < taps; tap++ {
		phaseOffset := float64(tap) * 0.25
		for bin := 0; bin < rangeBins; bin++ {
			nr := float64(bin) / float64(rangeBins)
			basePhase := (nr + timeOffset*0.0001 + phaseOffset*0.01) * 2 * math.Pi * cfg.FrequencyGhz
			envelope := 0.2 + 0.8*(1.0-nr)
			jitter := uniform(rng, cfg.NoiseLevel)
			timeWave := math.Sin(timeOffset*0.02*speedFactor + nr*2.0 + motionBias)
			motionWobble := math.Sin(nr*8.0 + motionBias + timeOffset*0.05)
			clutterJitter := cfg.ClutterLevel * uniform(rng, 1.0)
			interference := interferenceAmp * math.Cos(nr*4.0+timeOffset*0.08)
			snrComponent := snrLinear * motionWobble * (1.0 - nr*0.6)

			value := math.Sin(basePhase+phaseOffset+timeWave)*envelope*(1.0+0.3*motionWobble*speedFactor) +
				clutterJitter + interference + snrComponent + jitter
			samples = append(samples, value)
		}
	}

	return samples, nil
}

// uniform draws from [-scale, scale).
func uniform(rng *rand.Rand, scale float64) float64 {
	return (rng.Float64()*2.0 - 1.0) * scale
}

// motionSignature folds the target-motion description into a stable phase
// bias in radians, so distinct motion profiles shift the waveform without a
// second seed.
func motionSignature(motion string) float64 {
	var acc uint64
	for _, b := range []byte(motion) {
		acc = acc*31 + uint64(b)
	}
	deg := math.Mod(float64(acc), 360.0)
	return deg * math.Pi / 180.0
}
