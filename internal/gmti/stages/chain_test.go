package stages

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/gmti.report/internal/gmti"
)

// chainConfig is small enough to predict the spectrum by hand.
var chainConfig = gmti.StageConfig{Taps: 2, RangeBins: 32, DopplerBins: 8}

// cosineBurst fills a burst with cos(pi*n/2), a pure tone that lands on
// doppler bins 2 and 6 after the transform.
func cosineBurst(cfg gmti.StageConfig) []float64 {
	samples := make([]float64, cfg.RangeBins*cfg.Taps)
	for n := range samples {
		switch n % 4 {
		case 0:
			samples[n] = 1
		case 2:
			samples[n] = -1
		}
	}
	return samples
}

// TestStageChainHandoff wires the three stages back to back the way the
// workflow runner drives them and follows a single tone through.
func TestStageChainHandoff(t *testing.T) {
	t.Parallel()

	cfg := chainConfig
	rangeStage := NewRangeStage(cfg.RangeBins)
	dopplerStage := NewDopplerStage(cfg.DopplerBins)
	clutterStage := NewClutterStage(cfg.DopplerBins)
	require.NoError(t, rangeStage.Initialize(cfg))
	require.NoError(t, dopplerStage.Initialize(cfg))
	require.NoError(t, clutterStage.Initialize(cfg))

	rangeOut, err := rangeStage.Execute(gmti.StageInput{Samples: cosineBurst(cfg), Timestamp: 2.5})
	require.NoError(t, err)
	assert.Len(t, rangeOut.Samples, cfg.RangeBins)
	assert.Len(t, rangeOut.Metadata.PowerProfile, cfg.RangeBins)

	dopplerOut, err := dopplerStage.Execute(gmti.StageInput{Samples: rangeOut.Samples, Timestamp: 2.5})
	require.NoError(t, err)
	require.Len(t, dopplerOut.Samples, cfg.DopplerBins)
	// tone energy concentrates in the two conjugate bins
	assert.InDelta(t, 4.0, dopplerOut.Samples[2], 1e-9)
	assert.InDelta(t, 4.0, dopplerOut.Samples[6], 1e-9)

	clutterOut, err := clutterStage.Execute(gmti.StageInput{Samples: dopplerOut.Samples, Timestamp: 2.5})
	require.NoError(t, err)
	require.Len(t, clutterOut.Metadata.DetectionRecords, 2)
	assert.Equal(t, 2, clutterOut.Metadata.DetectionCount)

	records := clutterOut.Metadata.DetectionRecords
	assert.InDelta(t, 8.0, records[0].RangeM, 1e-9)
	assert.InDelta(t, -0.5, records[0].DopplerMps, 1e-9)
	assert.InDelta(t, 4.0/2.4, records[0].SnrDb, 1e-9)
	assert.InDelta(t, 24.0, records[1].RangeM, 1e-9)
	assert.InDelta(t, 0.5, records[1].DopplerMps, 1e-9)
	for _, rec := range records {
		assert.Equal(t, 2.5, rec.Timestamp)
	}
}

// TestStageChainReuse keeps one set of initialized stages across bursts.
func TestStageChainReuse(t *testing.T) {
	t.Parallel()

	t.Run("consecutive bursts within pool capacity", func(t *testing.T) {
		t.Parallel()
		cfg := chainConfig
		rangeStage := NewRangeStage(3)
		dopplerStage := NewDopplerStage(3)
		clutterStage := NewClutterStage(3)
		require.NoError(t, rangeStage.Initialize(cfg))
		require.NoError(t, dopplerStage.Initialize(cfg))
		require.NoError(t, clutterStage.Initialize(cfg))

		for burst := 0; burst < 3; burst++ {
			ts := float64(burst) * 0.5
			rangeOut, err := rangeStage.Execute(gmti.StageInput{Samples: cosineBurst(cfg), Timestamp: ts})
			require.NoError(t, err, "burst %d range", burst)
			dopplerOut, err := dopplerStage.Execute(gmti.StageInput{Samples: rangeOut.Samples, Timestamp: ts})
			require.NoError(t, err, "burst %d doppler", burst)
			clutterOut, err := clutterStage.Execute(gmti.StageInput{Samples: dopplerOut.Samples, Timestamp: ts})
			require.NoError(t, err, "burst %d clutter", burst)
			for _, rec := range clutterOut.Metadata.DetectionRecords {
				assert.Equal(t, ts, rec.Timestamp)
			}
		}
	})

	t.Run("reinitialize recovers an exhausted stage", func(t *testing.T) {
		t.Parallel()
		cfg := chainConfig
		stage := NewRangeStage(1)
		require.NoError(t, stage.Initialize(cfg))

		_, err := stage.Execute(gmti.StageInput{Samples: cosineBurst(cfg)})
		require.NoError(t, err)

		_, err = stage.Execute(gmti.StageInput{Samples: cosineBurst(cfg)})
		require.ErrorIs(t, err, gmti.ErrBufferExhausted)

		stage.Cleanup()
		require.NoError(t, stage.Initialize(cfg))
		_, err = stage.Execute(gmti.StageInput{Samples: cosineBurst(cfg)})
		assert.NoError(t, err)
	})
}
