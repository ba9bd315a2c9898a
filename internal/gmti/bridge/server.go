package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/banshee-data/gmti.report/internal/gmti"
	"github.com/banshee-data/gmti.report/internal/gmti/generator"
	"github.com/banshee-data/gmti.report/internal/gmti/storage/sqlite"
	"github.com/banshee-data/gmti.report/internal/gmti/workflow"
	"github.com/banshee-data/gmti.report/internal/httputil"
	"github.com/banshee-data/gmti.report/internal/monitoring"
	"github.com/banshee-data/gmti.report/internal/timeutil"
	"github.com/banshee-data/gmti.report/internal/version"
)

// DefaultListenAddr is where the bridge binds unless configured otherwise.
const DefaultListenAddr = "127.0.0.1:9000"

// ANSI escape codes for request logging
const (
	colorCyan      = "\033[36m"
	colorReset     = "\033[0m"
	colorYellow    = "\033[33m"
	colorBoldGreen = "\033[1;32m"
	colorBoldRed   = "\033[1;31m"
)

// Config holds the bridge server settings.
type Config struct {
	ListenAddr  string
	EnableDebug bool
}

// Option customises a Server beyond its Config.
type Option func(*Server)

// WithRunStore wires run persistence into the ingest handlers. Persistence
// is best effort; a failed insert never fails the request.
func WithRunStore(store *sqlite.RunStore) Option {
	return func(s *Server) { s.store = store }
}

// WithClock swaps the wall clock, for tests.
func WithClock(clock timeutil.Clock) Option {
	return func(s *Server) { s.clock = clock }
}

// WithDebugRoutes registers extra routes against the bridge mux when
// EnableDebug is set. The monitor package plugs its chart handlers in here.
func WithDebugRoutes(attach func(mux *http.ServeMux, snapshot func() Model)) Option {
	return func(s *Server) { s.debugAttach = attach }
}

// Server hosts the ingest and visualization endpoints in front of a chain
// runner.
type Server struct {
	cfg         Config
	runner      *workflow.Runner
	state       *State
	metrics     *monitoring.Metrics
	store       *sqlite.RunStore
	clock       timeutil.Clock
	started     time.Time
	debugAttach func(mux *http.ServeMux, snapshot func() Model)
	server      *http.Server
}

// NewServer builds the bridge around the given runner.
func NewServer(cfg Config, runner *workflow.Runner, opts ...Option) *Server {
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = DefaultListenAddr
	}

	s := &Server{
		cfg:     cfg,
		runner:  runner,
		state:   NewState(),
		metrics: monitoring.NewMetrics(),
		clock:   timeutil.RealClock{},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.started = s.clock.Now()

	if err := monitoring.RegisterPrometheus(prometheus.DefaultRegisterer); err != nil {
		monitoring.Logf("[bridge] prometheus registration failed: %v", err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/payload", s.handlePayload)
	mux.HandleFunc("/ingest", s.handleIngest)
	mux.HandleFunc("/ingest-config", s.handleIngestConfig)
	mux.HandleFunc("/health", s.handleHealth)
	mux.Handle("/metrics", promhttp.Handler())

	if cfg.EnableDebug && s.debugAttach != nil {
		s.debugAttach(mux, s.state.Snapshot)
	}

	s.server = &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: loggingMiddleware(mux),
	}

	return s
}

// State exposes the visualization state, for offline mode and debug routes.
func (s *Server) State() *State {
	return s.state
}

// Handler returns the full route tree, for tests driving the server without
// a listener.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start runs the server until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		monitoring.Logf("[bridge] listening on %s", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("bridge server: %w", err)
	case <-ctx.Done():
	}

	monitoring.Logf("[bridge] shutting down HTTP server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	if err := s.server.Shutdown(shutdownCtx); err != nil {
		monitoring.Logf("[bridge] shutdown error: %v", err)
		if err := s.server.Close(); err != nil {
			monitoring.Logf("[bridge] force close error: %v", err)
		}
	}

	monitoring.Logf("[bridge] HTTP server stopped")
	return nil
}

func (s *Server) handlePayload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	httputil.WriteJSONOK(w, s.state.Snapshot())
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}

	var payload gmti.PriPayload
	if err := httputil.DecodeJSON(w, r, &payload); err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}

	scenario := ""
	if payload.Ancillary.Scenario != nil {
		scenario = payload.Ancillary.Scenario.Name
	}

	res, err := s.runPayload(s.runner, &payload, scenario, string(payload.Ancillary.Mode))
	if err != nil {
		monitoring.Logf("[bridge] ingest error: %v", err)
		writeRunError(w, err)
		return
	}

	httputil.WriteJSONOK(w, map[string]interface{}{
		"status":     "ok",
		"detections": res.DetectionCount,
	})
}

func (s *Server) handleIngestConfig(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, httputil.MaxBodyBytes))
	if err != nil {
		httputil.BadRequest(w, fmt.Sprintf("read request body: %v", err))
		return
	}

	if err := ValidateConfigJSON(body); err != nil {
		monitoring.Logf("[bridge] ingest-config rejected: %v", err)
		writeRunError(w, err)
		return
	}

	// Absent keys keep their default profile values, matching scenario file
	// loading.
	cfg := generator.DefaultConfig()
	if err := json.Unmarshal(body, &cfg); err != nil {
		httputil.BadRequest(w, fmt.Sprintf("decode config: %v", err))
		return
	}
	if err := cfg.Validate(); err != nil {
		writeRunError(w, err)
		return
	}

	payload, err := generator.BuildPayload(cfg)
	if err != nil {
		monitoring.Logf("[bridge] ingest-config error: %v", err)
		writeRunError(w, err)
		return
	}

	// Each profile runs through a chain sized to its own geometry, so posted
	// configs never have to match the server's startup flags.
	runner := workflow.NewRunner(workflow.Config{
		Taps:        cfg.Taps,
		RangeBins:   cfg.RangeBins,
		DopplerBins: cfg.DopplerBins,
	})

	res, err := s.runPayload(runner, payload, cfg.ScenarioName, string(cfg.Mode))
	if err != nil {
		monitoring.Logf("[bridge] ingest-config error: %v", err)
		writeRunError(w, err)
		return
	}

	if cfg.ScenarioName != "" {
		monitoring.Logf("[bridge] scenario %s -> detections %d", cfg.ScenarioName, res.DetectionCount)
	}

	httputil.WriteJSONOK(w, map[string]interface{}{
		"status":      "ok",
		"detections":  res.DetectionCount,
		"description": cfg.Description,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}

	processed, failed := s.metrics.Snapshot()
	httputil.WriteJSONOK(w, map[string]interface{}{
		"status":             "ok",
		"service":            "gmti-bridge",
		"version":            version.String(),
		"uptime":             s.clock.Since(s.started).Round(time.Second).String(),
		"payloads_processed": processed,
		"payload_errors":     failed,
	})
}

// runPayload drives one payload through the chain, then fans the result out
// to the model, metrics, and the optional run store.
func (s *Server) runPayload(runner *workflow.Runner, payload *gmti.PriPayload, scenario, mode string) (*workflow.Result, error) {
	start := s.clock.Now()
	res, err := runner.Execute(payload)
	elapsed := s.clock.Since(start)

	if err != nil {
		s.metrics.RecordError()
		monitoring.ObserveRun(elapsed, monitoring.OutcomeError, 0)
		return nil, err
	}

	s.metrics.RecordProcessed()
	monitoring.ObserveRun(elapsed, monitoring.OutcomeOK, res.DetectionCount)
	s.state.Publish(res)

	if s.store != nil {
		runID, err := s.store.RecordRun(runner.Config(), scenario, mode, res)
		if err != nil {
			monitoring.Logf("[bridge] failed to persist run: %v", err)
		} else {
			gmti.Diagf("persisted run %s", runID)
		}
	}

	return res, nil
}

// writeRunError maps chain error kinds onto HTTP statuses, keeping the full
// error chain in the JSON message.
func writeRunError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, gmti.ErrInvalidInput):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, gmti.ErrBufferExhausted):
		status = http.StatusServiceUnavailable
	}
	httputil.WriteJSONError(w, status, err.Error())
}

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Flush() {
	if flusher, ok := lrw.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func statusCodeColor(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return colorBoldGreen + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 300 && statusCode < 400:
		return colorYellow + strconv.Itoa(statusCode) + colorReset
	default:
		return colorBoldRed + strconv.Itoa(statusCode) + colorReset
	}
}

// loggingMiddleware logs method, path, status, and duration for every request.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &loggingResponseWriter{w, http.StatusOK}
		next.ServeHTTP(lrw, r)
		monitoring.Logf(
			"[%s] %s %s%s%s %vms",
			statusCodeColor(lrw.statusCode), r.Method,
			colorCyan, r.RequestURI, colorReset,
			float64(time.Since(start).Nanoseconds())/1e6,
		)
	})
}
