package monitoring

import "sync"

// Metrics counts payloads processed and errors raised by the signal chain.
// All methods are safe for concurrent use; the bridge records from its
// handler goroutines while health checks snapshot from another.
type Metrics struct {
	mu        sync.Mutex
	processed uint64
	errors    uint64
}

// NewMetrics returns a zeroed counter set.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// RecordProcessed increments the processed-payload counter.
func (m *Metrics) RecordProcessed() {
	m.mu.Lock()
	m.processed++
	m.mu.Unlock()
}

// RecordError increments the error counter.
func (m *Metrics) RecordError() {
	m.mu.Lock()
	m.errors++
	m.mu.Unlock()
}

// Snapshot returns the current processed and error counts.
func (m *Metrics) Snapshot() (processed, errors uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.processed, m.errors
}

// Reset zeroes both counters.
func (m *Metrics) Reset() {
	m.mu.Lock()
	m.processed = 0
	m.errors = 0
	m.mu.Unlock()
}
