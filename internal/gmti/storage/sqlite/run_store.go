package sqlite

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/gmti.report/internal/gmti/workflow"
)

// RunSummary is a persisted workflow run: chain geometry, detection counts
// and provenance, without the sample data itself.
type RunSummary struct {
	RunID           string `json:"run_id"`
	Scenario        string `json:"scenario,omitempty"`
	Mode            string `json:"mode,omitempty"`
	Taps            int    `json:"taps"`
	RangeBins       int    `json:"range_bins"`
	DopplerBins     int    `json:"doppler_bins"`
	RawDetections   int    `json:"raw_detections"`
	FinalDetections int    `json:"final_detections"`
	Augmented       bool   `json:"augmented"`
	ProfileLen      int    `json:"power_profile_len"`
	Notes           string `json:"notes,omitempty"`
	CreatedAt       int64  `json:"created_at"`
}

// StoredDetection is one persisted detection row. Synthetic marks records
// appended by detection-floor augmentation rather than the clutter stage.
type StoredDetection struct {
	RunID        string  `json:"run_id"`
	Idx          int     `json:"idx"`
	TimestampS   float64 `json:"timestamp_s"`
	RangeM       float64 `json:"range_m"`
	DopplerMps   float64 `json:"doppler_mps"`
	SnrDb        float64 `json:"snr_db"`
	BearingDeg   float64 `json:"bearing_deg"`
	ElevationDeg float64 `json:"elevation_deg"`
	Synthetic    bool    `json:"synthetic"`
}

// RunStore provides persistence for workflow runs and their detections.
type RunStore struct {
	db *sql.DB
}

// NewRunStore creates a RunStore backed by the given database.
func NewRunStore(db *sql.DB) *RunStore {
	return &RunStore{db: db}
}

// RecordRun persists a run summary plus its final detection list in one
// transaction and returns the generated run ID. Detections past the raw
// count are marked synthetic.
func (s *RunStore) RecordRun(cfg workflow.Config, scenario, mode string, res *workflow.Result) (string, error) {
	if res == nil {
		return "", fmt.Errorf("recording run: nil result")
	}

	runID := uuid.New().String()
	createdAt := time.Now().UnixNano()
	notes := strings.Join(res.DopplerNotes, "; ")

	err := retryOnBusy(func() error {
		tx, err := s.db.Begin()
		if err != nil {
			return err
		}
		defer tx.Rollback()

		if _, err := tx.Exec(`
			INSERT INTO workflow_runs (
				run_id, scenario, mode, taps, range_bins, doppler_bins,
				raw_detections, final_detections, augmented,
				power_profile_len, notes, created_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			runID, nullStr(scenario), nullStr(mode),
			cfg.Taps, cfg.RangeBins, cfg.DopplerBins,
			res.RawDetectionCount, res.DetectionCount, res.Augmented(),
			len(res.PowerProfile), nullStr(notes), createdAt,
		); err != nil {
			return err
		}

		stmt, err := tx.Prepare(`
			INSERT INTO run_detections (
				run_id, idx, timestamp_s, range_m, doppler_mps, snr_db,
				bearing_deg, elevation_deg, synthetic
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for i, rec := range res.DetectionRecords {
			synthetic := i >= res.RawDetectionCount
			if _, err := stmt.Exec(runID, i,
				rec.Timestamp, rec.RangeM, rec.DopplerMps, rec.SnrDb,
				rec.BearingDeg, rec.ElevationDeg, synthetic,
			); err != nil {
				return err
			}
		}

		return tx.Commit()
	})
	if err != nil {
		return "", fmt.Errorf("recording run %s: %w", runID, err)
	}
	return runID, nil
}

// GetRun returns a single run summary by ID.
func (s *RunStore) GetRun(runID string) (*RunSummary, error) {
	row := s.db.QueryRow(`
		SELECT run_id, scenario, mode, taps, range_bins, doppler_bins,
		       raw_detections, final_detections, augmented,
		       power_profile_len, notes, created_at
		FROM workflow_runs
		WHERE run_id = ?`, runID)

	summary, err := scanRunSummary(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run %s not found", runID)
	}
	if err != nil {
		return nil, fmt.Errorf("scanning run %s: %w", runID, err)
	}
	return summary, nil
}

// ListRuns returns the most recent runs, newest first. A non-positive limit
// defaults to 50.
func (s *RunStore) ListRuns(limit int) ([]*RunSummary, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.Query(`
		SELECT run_id, scenario, mode, taps, range_bins, doppler_bins,
		       raw_detections, final_detections, augmented,
		       power_profile_len, notes, created_at
		FROM workflow_runs
		ORDER BY created_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var summaries []*RunSummary
	for rows.Next() {
		summary, err := scanRunSummary(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning run row: %w", err)
		}
		summaries = append(summaries, summary)
	}
	return summaries, rows.Err()
}

// ListDetections returns a run's detection rows in emission order.
func (s *RunStore) ListDetections(runID string) ([]*StoredDetection, error) {
	rows, err := s.db.Query(`
		SELECT run_id, idx, timestamp_s, range_m, doppler_mps, snr_db,
		       bearing_deg, elevation_deg, synthetic
		FROM run_detections
		WHERE run_id = ?
		ORDER BY idx ASC`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying detections for run %s: %w", runID, err)
	}
	defer rows.Close()

	var detections []*StoredDetection
	for rows.Next() {
		var d StoredDetection
		if err := rows.Scan(&d.RunID, &d.Idx,
			&d.TimestampS, &d.RangeM, &d.DopplerMps, &d.SnrDb,
			&d.BearingDeg, &d.ElevationDeg, &d.Synthetic,
		); err != nil {
			return nil, fmt.Errorf("scanning detection row: %w", err)
		}
		detections = append(detections, &d)
	}
	return detections, rows.Err()
}

// scanner covers both sql.Row and sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRunSummary(row scanner) (*RunSummary, error) {
	var (
		summary  RunSummary
		scenario sql.NullString
		mode     sql.NullString
		notes    sql.NullString
	)
	err := row.Scan(&summary.RunID, &scenario, &mode,
		&summary.Taps, &summary.RangeBins, &summary.DopplerBins,
		&summary.RawDetections, &summary.FinalDetections, &summary.Augmented,
		&summary.ProfileLen, &notes, &summary.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	summary.Scenario = scenario.String
	summary.Mode = mode.String
	summary.Notes = notes.String
	return &summary, nil
}

// nullStr returns nil for empty strings, pointer to string otherwise.
func nullStr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
