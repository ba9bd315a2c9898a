// Command scenario-runner posts scenario profiles to a running bridge.
//
// Each YAML profile becomes one /ingest-config request; the bridge builds the
// burst, runs the chain and answers with the detection count. Pass profile
// files as arguments, or point -dir at a directory of profiles.
//
// Usage:
//
//	go run ./cmd/tools/scenario-runner [flags] [profile.yaml ...]
//
// Flags:
//
//	-addr  Bridge base URL (default: http://127.0.0.1:9000)
//	-dir   Directory scanned for profiles when no files are given (default: configs)
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"sort"
	"time"

	"github.com/banshee-data/gmti.report/internal/gmti/generator"
	"github.com/banshee-data/gmti.report/internal/httputil"
)

func main() {
	addr := flag.String("addr", "http://127.0.0.1:9000", "Bridge base URL")
	dir := flag.String("dir", "configs", "Directory scanned for *.yaml profiles when no files are given")
	flag.Parse()

	files := flag.Args()
	if len(files) == 0 {
		var err error
		files, err = scenarioFiles(*dir)
		if err != nil {
			log.Fatalf("Failed to list scenario profiles: %v", err)
		}
	}
	if len(files) == 0 {
		log.Fatalf("No scenario profiles found in %s", *dir)
	}

	client := httputil.NewStandardClient(&http.Client{Timeout: 30 * time.Second})
	for _, file := range files {
		if err := postScenario(client, *addr, file); err != nil {
			log.Fatalf("Failed to run %s: %v", file, err)
		}
	}
}

// scenarioFiles lists the YAML profiles under dir in a stable order.
func scenarioFiles(dir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, err
	}
	more, err := filepath.Glob(filepath.Join(dir, "*.yml"))
	if err != nil {
		return nil, err
	}
	matches = append(matches, more...)
	sort.Strings(matches)
	return matches, nil
}

type ingestReply struct {
	Status      string `json:"status"`
	Detections  int    `json:"detections"`
	Description string `json:"description,omitempty"`
	Error       string `json:"error,omitempty"`
}

func postScenario(client httputil.HTTPClient, baseURL, file string) error {
	cfg, err := generator.LoadScenario(file)
	if err != nil {
		return err
	}

	body, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding profile: %w", err)
	}

	resp, err := client.Post(baseURL+"/ingest-config", "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("posting profile: %w", err)
	}
	defer resp.Body.Close()

	var reply ingestReply
	if err := json.NewDecoder(io.LimitReader(resp.Body, httputil.MaxBodyBytes)).Decode(&reply); err != nil {
		return fmt.Errorf("decoding reply: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("bridge rejected profile (status %d): %s", resp.StatusCode, reply.Error)
	}

	log.Printf("%s -> detections %d", cfg.ScenarioName, reply.Detections)
	if reply.Description != "" {
		log.Printf("  %s", reply.Description)
	}
	return nil
}
