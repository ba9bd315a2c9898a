// Command iq-stream replays a preset scenario against a running bridge.
//
// Bursts are generated with an advancing seed and timestamp so the scene
// animates in the GUI, and posted to /ingest at the preset's tuned frame
// rate.
//
// Usage:
//
//	go run ./cmd/tools/iq-stream [flags]
//
// Flags:
//
//	-addr    Bridge base URL (default: http://127.0.0.1:9000)
//	-preset  Scenario preset to replay (default: airborne)
//	-frames  Number of bursts to send, 0 streams until interrupted
//	-rate    Frame rate in Hz, 0 uses the preset's rate
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/banshee-data/gmti.report/internal/gmti/generator"
	"github.com/banshee-data/gmti.report/internal/httputil"
	"github.com/banshee-data/gmti.report/internal/timeutil"
)

func main() {
	addr := flag.String("addr", "http://127.0.0.1:9000", "Bridge base URL")
	presetName := flag.String("preset", "airborne", "Scenario preset to replay")
	frames := flag.Int("frames", 0, "Number of bursts to send (0 streams until interrupted)")
	rate := flag.Float64("rate", 0, "Frame rate in Hz (0 uses the preset's rate)")
	flag.Parse()

	presets := generator.Presets()
	preset, ok := presets[*presetName]
	if !ok {
		names := make([]string, 0, len(presets))
		for name := range presets {
			names = append(names, name)
		}
		sort.Strings(names)
		log.Fatalf("Unknown preset %q (have: %s)", *presetName, strings.Join(names, ", "))
	}

	rateHz := preset.FrameRateHz
	if *rate > 0 {
		rateHz = *rate
	}

	log.Printf("Streaming preset %q to %s at %.1f Hz", *presetName, *addr, rateHz)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := httputil.NewStandardClient(&http.Client{Timeout: 10 * time.Second})
	if err := stream(ctx, client, timeutil.RealClock{}, *addr, preset, *frames, rateHz); err != nil && err != context.Canceled {
		log.Fatalf("Stream failed: %v", err)
	}
	log.Print("Stream finished")
}

// stream posts bursts until frames are exhausted or ctx is cancelled. Each
// burst reseeds the generator and advances the collection timestamp by the
// frame interval.
func stream(ctx context.Context, client httputil.HTTPClient, clock timeutil.Clock, baseURL string, preset generator.Preset, frames int, rateHz float64) error {
	if rateHz <= 0 {
		return fmt.Errorf("frame rate must be > 0, got %g", rateHz)
	}

	ticker := clock.NewTicker(time.Duration(float64(time.Second) / rateHz))
	defer ticker.Stop()

	for i := 0; frames <= 0 || i < frames; i++ {
		cfg := preset.Config
		cfg.Seed = preset.Config.Seed + uint64(i)
		cfg.TimestampStart = float64(i) / rateHz
		cfg.Description = fmt.Sprintf("%s run %d", cfg.ScenarioName, i+1)

		detections, err := postBurst(client, baseURL, cfg)
		if err != nil {
			return fmt.Errorf("burst %d: %w", i+1, err)
		}
		log.Printf("burst %d -> detections %d", i+1, detections)

		if frames > 0 && i == frames-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C():
		}
	}
	return nil
}

func postBurst(client httputil.HTTPClient, baseURL string, cfg generator.Config) (int, error) {
	payload, err := generator.BuildPayload(cfg)
	if err != nil {
		return 0, fmt.Errorf("building payload: %w", err)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return 0, fmt.Errorf("encoding payload: %w", err)
	}

	resp, err := client.Post(baseURL+"/ingest", "application/json", bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("posting payload: %w", err)
	}
	defer resp.Body.Close()

	var reply struct {
		Status     string `json:"status"`
		Detections int    `json:"detections"`
		Error      string `json:"error,omitempty"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, httputil.MaxBodyBytes)).Decode(&reply); err != nil {
		return 0, fmt.Errorf("decoding reply: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("bridge rejected payload (status %d): %s", resp.StatusCode, reply.Error)
	}
	return reply.Detections, nil
}
