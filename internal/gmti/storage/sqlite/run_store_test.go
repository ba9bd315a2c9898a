package sqlite

import (
	"database/sql"
	"strings"
	"testing"

	"github.com/banshee-data/gmti.report/internal/gmti"
	"github.com/banshee-data/gmti.report/internal/gmti/workflow"
)

// setupTestRunDB creates an in-memory database with the run schema.
func setupTestRunDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`
		CREATE TABLE workflow_runs (
			run_id            TEXT PRIMARY KEY,
			scenario          TEXT,
			mode              TEXT,
			taps              INTEGER NOT NULL,
			range_bins        INTEGER NOT NULL,
			doppler_bins      INTEGER NOT NULL,
			raw_detections    INTEGER NOT NULL,
			final_detections  INTEGER NOT NULL,
			augmented         BOOLEAN NOT NULL DEFAULT FALSE,
			power_profile_len INTEGER NOT NULL,
			notes             TEXT,
			created_at        BIGINT NOT NULL
		);
		CREATE TABLE run_detections (
			run_id            TEXT NOT NULL,
			idx               INTEGER NOT NULL,
			timestamp_s       DOUBLE NOT NULL,
			range_m           DOUBLE NOT NULL,
			doppler_mps       DOUBLE NOT NULL,
			snr_db            DOUBLE NOT NULL,
			bearing_deg       DOUBLE NOT NULL,
			elevation_deg     DOUBLE NOT NULL,
			synthetic         BOOLEAN NOT NULL DEFAULT FALSE,
			PRIMARY KEY (run_id, idx),
			FOREIGN KEY (run_id) REFERENCES workflow_runs(run_id) ON DELETE CASCADE
		);
	`)
	if err != nil {
		t.Fatalf("failed to create run schema: %v", err)
	}

	return db
}

func sampleResult() *workflow.Result {
	return &workflow.Result{
		PowerProfile:      []float64{1, 4, 9, 16},
		DetectionCount:    4,
		RawDetectionCount: 2,
		DopplerNotes:      []string{"doppler RMS 1.2345"},
		DetectionRecords: []gmti.DetectionRecord{
			{Timestamp: 1.0, RangeM: 120, DopplerMps: -3.5, SnrDb: 2.1},
			{Timestamp: 1.0, RangeM: 450, DopplerMps: 8.0, SnrDb: 1.4},
			{Timestamp: 1.0004, RangeM: 3100, DopplerMps: -12, SnrDb: 15, BearingDeg: 40},
			{Timestamp: 1.0008, RangeM: 4200, DopplerMps: 22, SnrDb: 16, BearingDeg: 80},
		},
		TimestampS: 1.0,
	}
}

func TestRecordRunAndGet(t *testing.T) {
	store := NewRunStore(setupTestRunDB(t))
	cfg := workflow.Config{Taps: 2, RangeBins: 16, DopplerBins: 8}

	runID, err := store.RecordRun(cfg, "airborne_intel", "adv-gmti-scan", sampleResult())
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if runID == "" {
		t.Fatal("empty run ID")
	}

	summary, err := store.GetRun(runID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if summary.Scenario != "airborne_intel" || summary.Mode != "adv-gmti-scan" {
		t.Errorf("provenance = %q/%q", summary.Scenario, summary.Mode)
	}
	if summary.Taps != 2 || summary.RangeBins != 16 || summary.DopplerBins != 8 {
		t.Errorf("geometry = %d/%d/%d", summary.Taps, summary.RangeBins, summary.DopplerBins)
	}
	if summary.RawDetections != 2 || summary.FinalDetections != 4 {
		t.Errorf("counts = %d/%d, want 2/4", summary.RawDetections, summary.FinalDetections)
	}
	if !summary.Augmented {
		t.Error("augmented flag lost")
	}
	if summary.ProfileLen != 4 {
		t.Errorf("profile len = %d, want 4", summary.ProfileLen)
	}
	if !strings.Contains(summary.Notes, "doppler RMS") {
		t.Errorf("notes = %q", summary.Notes)
	}
	if summary.CreatedAt == 0 {
		t.Error("created_at not stamped")
	}
}

func TestRecordRunMarksSyntheticRows(t *testing.T) {
	store := NewRunStore(setupTestRunDB(t))
	cfg := workflow.Config{Taps: 2, RangeBins: 16, DopplerBins: 8}

	runID, err := store.RecordRun(cfg, "", "", sampleResult())
	if err != nil {
		t.Fatalf("record: %v", err)
	}

	detections, err := store.ListDetections(runID)
	if err != nil {
		t.Fatalf("list detections: %v", err)
	}
	if len(detections) != 4 {
		t.Fatalf("detections = %d, want 4", len(detections))
	}

	for i, d := range detections {
		if d.Idx != i {
			t.Errorf("row %d has idx %d", i, d.Idx)
		}
		wantSynthetic := i >= 2
		if d.Synthetic != wantSynthetic {
			t.Errorf("row %d synthetic = %v, want %v", i, d.Synthetic, wantSynthetic)
		}
	}

	// spot-check a full row round trip
	if detections[2].RangeM != 3100 || detections[2].DopplerMps != -12 || detections[2].BearingDeg != 40 {
		t.Errorf("row 2 = %+v", detections[2])
	}
}

func TestGetRunMissing(t *testing.T) {
	store := NewRunStore(setupTestRunDB(t))

	_, err := store.GetRun("no-such-run")
	if err == nil {
		t.Fatal("expected not-found error")
	}
	if !strings.Contains(err.Error(), "not found") {
		t.Errorf("error = %v", err)
	}
}

func TestListRunsNewestFirst(t *testing.T) {
	store := NewRunStore(setupTestRunDB(t))
	cfg := workflow.Config{Taps: 2, RangeBins: 16, DopplerBins: 8}

	var ids []string
	for i := 0; i < 3; i++ {
		id, err := store.RecordRun(cfg, "", "", sampleResult())
		if err != nil {
			t.Fatalf("record %d: %v", i, err)
		}
		ids = append(ids, id)
	}

	runs, err := store.ListRuns(0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("runs = %d, want 3", len(runs))
	}
	for i := 1; i < len(runs); i++ {
		if runs[i].CreatedAt > runs[i-1].CreatedAt {
			t.Errorf("runs out of order at %d: %d after %d", i, runs[i].CreatedAt, runs[i-1].CreatedAt)
		}
	}

	limited, err := store.ListRuns(2)
	if err != nil {
		t.Fatalf("list limited: %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("limited runs = %d, want 2", len(limited))
	}

	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		seen[id] = true
	}
	for _, run := range runs {
		if !seen[run.RunID] {
			t.Errorf("unexpected run %s", run.RunID)
		}
	}
}

func TestRecordRunNilResult(t *testing.T) {
	store := NewRunStore(setupTestRunDB(t))
	if _, err := store.RecordRun(workflow.Config{}, "", "", nil); err == nil {
		t.Fatal("expected nil-result rejection")
	}
}

func TestListDetectionsEmptyRun(t *testing.T) {
	store := NewRunStore(setupTestRunDB(t))

	res := sampleResult()
	res.DetectionRecords = nil
	res.DetectionCount = 0
	res.RawDetectionCount = 0

	runID, err := store.RecordRun(workflow.Config{Taps: 1, RangeBins: 4, DopplerBins: 2}, "", "", res)
	if err != nil {
		t.Fatalf("record: %v", err)
	}

	detections, err := store.ListDetections(runID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(detections) != 0 {
		t.Errorf("detections = %d, want 0", len(detections))
	}
}
