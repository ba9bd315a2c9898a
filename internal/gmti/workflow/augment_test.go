package workflow

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/banshee-data/gmti.report/internal/gmti"
)

func TestAugmentTargetScalesWithArea(t *testing.T) {
	tests := []struct {
		name     string
		scenario *gmti.ScenarioMetadata
		want     int
	}{
		{"nil scenario defaults to 10 km", nil, 18},
		{"small area clamps up", &gmti.ScenarioMetadata{AreaWidthKm: 1, AreaHeightKm: 1}, 18},
		{"mean of width and height", &gmti.ScenarioMetadata{AreaWidthKm: 30, AreaHeightKm: 20}, 45},
		{"large area clamps down", &gmti.ScenarioMetadata{AreaWidthKm: 100, AreaHeightKm: 80}, 64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := augmentDetections(nil, tt.scenario, 0)
			if len(got) != tt.want {
				t.Errorf("synthesized count = %d, want %d", len(got), tt.want)
			}
		})
	}
}

func TestAugmentKeepsRealRecordsAsPrefix(t *testing.T) {
	real := []gmti.DetectionRecord{
		{Timestamp: 1, RangeM: 10, DopplerMps: -2, SnrDb: 3},
		{Timestamp: 1, RangeM: 20, DopplerMps: 2, SnrDb: 4},
	}

	got := augmentDetections(real, nil, 1)
	if len(got) != 18 {
		t.Fatalf("count = %d, want 18", len(got))
	}
	if diff := cmp.Diff(real, got[:2]); diff != "" {
		t.Errorf("real records mutated (-want +got):\n%s", diff)
	}

	// synthesized indices start where the real records end
	wantTs := 1 + 2*0.0004
	if math.Abs(got[2].Timestamp-wantTs) > 1e-12 {
		t.Errorf("first synthesized timestamp = %v, want %v", got[2].Timestamp, wantTs)
	}
}

func TestAugmentAboveTargetUnchanged(t *testing.T) {
	records := make([]gmti.DetectionRecord, 20)
	for i := range records {
		records[i].RangeM = float64(i)
	}

	got := augmentDetections(records, nil, 0)
	if len(got) != 20 {
		t.Errorf("count = %d, want 20 records untouched", len(got))
	}
}

func TestAugmentSynthesisFormulas(t *testing.T) {
	scenario := &gmti.ScenarioMetadata{
		AreaWidthKm:    10,
		AreaHeightKm:   10,
		ClutterLevel:   0.45,
		SnrTargetDb:    18,
		InterferenceDb: -10,
	}
	const ts = 2.5

	got := augmentDetections(nil, scenario, ts)
	if len(got) != 18 {
		t.Fatalf("count = %d, want 18", len(got))
	}

	for i, rec := range got {
		ratio := float64(i+1) / 18.0

		wantRange := 10000 * (0.3 + 0.7*ratio)
		if math.Abs(rec.RangeM-wantRange) > 1e-9 {
			t.Errorf("record %d range = %v, want %v", i, rec.RangeM, wantRange)
		}

		base := (ratio*2 - 1) * 40 * 1.45
		wobble := math.Sin(ts+float64(i)*0.18) * 12
		wantDoppler := base + wobble
		if wantDoppler > 80 {
			wantDoppler = 80
		} else if wantDoppler < -80 {
			wantDoppler = -80
		}
		if math.Abs(rec.DopplerMps-wantDoppler) > 1e-9 {
			t.Errorf("record %d doppler = %v, want %v", i, rec.DopplerMps, wantDoppler)
		}

		wantSnr := 18 + ratio*8 - 1.0
		if math.Abs(rec.SnrDb-wantSnr) > 1e-9 {
			t.Errorf("record %d snr = %v, want %v", i, rec.SnrDb, wantSnr)
		}

		wantBearing := float64(i) / 18.0 * 360
		if math.Abs(rec.BearingDeg-wantBearing) > 1e-9 {
			t.Errorf("record %d bearing = %v, want %v", i, rec.BearingDeg, wantBearing)
		}
		if rec.ElevationDeg != 0 {
			t.Errorf("record %d elevation = %v, want 0", i, rec.ElevationDeg)
		}
		if math.Abs(rec.Timestamp-(ts+float64(i)*0.0004)) > 1e-12 {
			t.Errorf("record %d timestamp = %v", i, rec.Timestamp)
		}
	}
}

func TestAugmentSnrFloor(t *testing.T) {
	scenario := &gmti.ScenarioMetadata{
		AreaWidthKm:    10,
		AreaHeightKm:   10,
		SnrTargetDb:    -20,
		InterferenceDb: 40,
	}

	got := augmentDetections(nil, scenario, 0)
	for i, rec := range got {
		if rec.SnrDb != 2.0 {
			t.Errorf("record %d snr = %v, want floor 2.0", i, rec.SnrDb)
		}
	}
}

func TestAugmentDopplerClamped(t *testing.T) {
	scenario := &gmti.ScenarioMetadata{
		AreaWidthKm:  10,
		AreaHeightKm: 10,
		ClutterLevel: 1.0,
	}

	got := augmentDetections(nil, scenario, 12.3)
	sawClamp := false
	for i, rec := range got {
		if math.Abs(rec.DopplerMps) > 80 {
			t.Errorf("record %d doppler = %v exceeds the ±80 bound", i, rec.DopplerMps)
		}
		if rec.DopplerMps == 80 || rec.DopplerMps == -80 {
			sawClamp = true
		}
	}
	if !sawClamp {
		t.Error("expected at least one synthesized doppler to hit the clamp")
	}
}

func TestAugmentDeterministic(t *testing.T) {
	scenario := &gmti.ScenarioMetadata{AreaWidthKm: 25, AreaHeightKm: 25, ClutterLevel: 0.3, SnrTargetDb: 12}

	a := augmentDetections(nil, scenario, 7.7)
	b := augmentDetections(nil, scenario, 7.7)
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("augmentation not deterministic (-first +second):\n%s", diff)
	}
}
