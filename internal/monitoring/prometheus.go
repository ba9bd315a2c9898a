package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	// OutcomeOK labels payloads that ran the full chain.
	OutcomeOK = "ok"
	// OutcomeError labels payloads rejected by any stage.
	OutcomeError = "error"
)

var (
	payloadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gmti",
			Name:      "payloads_total",
			Help:      "Total number of PRI payloads ingested, partitioned by outcome.",
		},
		[]string{"outcome"},
	)

	processingSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "gmti",
			Name:      "processing_seconds",
			Help:      "Full signal-chain latency in seconds.",
			Buckets:   []float64{0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
	)

	detectionsLast = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "gmti",
			Name:      "detections_last",
			Help:      "Detection count of the most recent completed run.",
		},
	)
)

// RegisterPrometheus attaches the gmti collectors to the supplied registerer.
func RegisterPrometheus(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		payloadsTotal,
		processingSeconds,
		detectionsLast,
	}

	for _, collector := range collectors {
		if err := reg.Register(collector); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return err
		}
	}
	return nil
}

// ObserveRun records one signal-chain run: duration, outcome label, and the
// detection count when the run succeeded.
func ObserveRun(duration time.Duration, outcome string, detections int) {
	label := outcome
	if label != OutcomeError {
		label = OutcomeOK
	}
	payloadsTotal.WithLabelValues(label).Inc()
	if duration < 0 {
		duration = 0
	}
	processingSeconds.Observe(duration.Seconds())
	if label == OutcomeOK {
		detectionsLast.Set(float64(detections))
	}
}
