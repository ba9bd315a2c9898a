package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/banshee-data/gmti.report/internal/httputil"
)

const publishedModel = `{
	"power_profile": [1.0, 4.0, 9.0, 16.0, 9.0, 4.0],
	"detection_count": 2,
	"detection_records": [
		{"timestamp": 1.0, "range_m": 3100, "doppler_mps": -12, "snr_db": 15, "bearing_deg": 40, "elevation_deg": 0},
		{"timestamp": 1.0004, "range_m": 5200, "doppler_mps": 8, "snr_db": 22, "bearing_deg": 120, "elevation_deg": 0}
	],
	"detection_notes": ["doppler RMS 1.2345"],
	"scenario_metadata": {"name": "coastal sweep", "platform_type": "Airborne ISR", "platform_velocity_kmh": 750, "area_width_km": 10, "area_height_km": 10, "clutter_level": 0.45, "snr_target_db": 18, "interference_db": -10, "target_motion": "Cruise"},
	"status": "ok",
	"updated_at_ns": 42
}`

func TestPlotPayload(t *testing.T) {
	client := httputil.NewMockHTTPClient()
	client.AddResponse(200, publishedModel)

	out := t.TempDir()
	if err := plotPayload(client, "http://bridge.test", out); err != nil {
		t.Fatalf("plotPayload() error = %v", err)
	}

	if url := client.RequestURL(0); !strings.HasSuffix(url, "/payload") {
		t.Errorf("request URL = %q, want /payload suffix", url)
	}
	for _, name := range []string{"coastal_sweep_power_profile.png", "coastal_sweep_detections.png"} {
		info, err := os.Stat(filepath.Join(out, name))
		if err != nil {
			t.Errorf("expected plot %s: %v", name, err)
			continue
		}
		if info.Size() == 0 {
			t.Errorf("plot %s is empty", name)
		}
	}
}

func TestPlotPayloadNoDetections(t *testing.T) {
	client := httputil.NewMockHTTPClient()
	client.AddResponse(200, `{"power_profile": [1.0, 2.0, 3.0], "detection_count": 0, "detection_records": [], "detection_notes": [], "updated_at_ns": 1}`)

	out := t.TempDir()
	if err := plotPayload(client, "http://bridge.test", out); err != nil {
		t.Fatalf("plotPayload() error = %v", err)
	}

	if _, err := os.Stat(filepath.Join(out, "run_power_profile.png")); err != nil {
		t.Errorf("expected power profile plot: %v", err)
	}
	if _, err := os.Stat(filepath.Join(out, "run_detections.png")); !os.IsNotExist(err) {
		t.Errorf("detections plot should be skipped, stat err = %v", err)
	}
}

func TestPlotPayloadEmptyModel(t *testing.T) {
	client := httputil.NewMockHTTPClient()
	client.AddResponse(200, `{"power_profile": [], "detection_count": 0, "updated_at_ns": 0}`)

	if err := plotPayload(client, "http://bridge.test", t.TempDir()); err == nil {
		t.Fatal("expected error when no run is published")
	}
}

func TestPlotPayloadBridgeDown(t *testing.T) {
	client := httputil.NewMockHTTPClient()
	client.AddResponse(500, `{"error":"internal"}`)

	err := plotPayload(client, "http://bridge.test", t.TempDir())
	if err == nil {
		t.Fatal("expected error for bridge failure")
	}
	if !strings.Contains(err.Error(), "status 500") {
		t.Errorf("error = %v, want status 500 mention", err)
	}
}
