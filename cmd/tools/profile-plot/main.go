// Command profile-plot renders the latest bridge model as PNG plots.
//
// It fetches /payload from a running bridge and writes a power-profile line
// plot plus a detection scatter to the output directory.
//
// Usage:
//
//	go run ./cmd/tools/profile-plot [flags]
//
// Flags:
//
//	-addr  Bridge base URL (default: http://127.0.0.1:9000)
//	-out   Output directory for the plots (default: tools/data/plots)
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"time"

	"github.com/banshee-data/gmti.report/internal/gmti/bridge"
	"github.com/banshee-data/gmti.report/internal/gmti/monitor"
	"github.com/banshee-data/gmti.report/internal/httputil"
	"github.com/banshee-data/gmti.report/internal/security"
)

func main() {
	addr := flag.String("addr", "http://127.0.0.1:9000", "Bridge base URL")
	out := flag.String("out", "tools/data/plots", "Output directory for the plots")
	flag.Parse()

	client := httputil.NewStandardClient(&http.Client{Timeout: 10 * time.Second})
	if err := plotPayload(client, *addr, *out); err != nil {
		log.Fatalf("Failed to render plots: %v", err)
	}
}

func plotPayload(client httputil.HTTPClient, baseURL, outDir string) error {
	resp, err := client.Get(baseURL + "/payload")
	if err != nil {
		return fmt.Errorf("fetching payload: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("bridge returned status %d", resp.StatusCode)
	}

	var model bridge.Model
	if err := json.NewDecoder(io.LimitReader(resp.Body, httputil.MaxBodyBytes)).Decode(&model); err != nil {
		return fmt.Errorf("decoding payload: %w", err)
	}
	if len(model.PowerProfile) == 0 {
		return fmt.Errorf("bridge has no published run yet")
	}

	// Prefix the files with the scenario so successive runs don't clobber
	// each other. Scenario names are free text from profiles.
	prefix := "run"
	if model.Scenario != nil && model.Scenario.Name != "" {
		prefix = security.SanitizeFilename(model.Scenario.Name)
	}

	profilePath := filepath.Join(outDir, prefix+"_power_profile.png")
	if err := monitor.SavePowerProfilePNG(model.PowerProfile, profilePath); err != nil {
		return err
	}
	log.Printf("saved %s", profilePath)

	if len(model.DetectionRecords) == 0 {
		log.Print("no detections published, skipping scatter plot")
		return nil
	}

	detectionsPath := filepath.Join(outDir, prefix+"_detections.png")
	if err := monitor.SaveDetectionsPNG(model.DetectionRecords, detectionsPath); err != nil {
		return err
	}
	log.Printf("saved %s", detectionsPath)
	return nil
}
