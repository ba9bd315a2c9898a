package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/banshee-data/gmti.report/internal/gmti"
	"github.com/banshee-data/gmti.report/internal/gmti/bridge"
	"github.com/banshee-data/gmti.report/internal/gmti/generator"
	"github.com/banshee-data/gmti.report/internal/gmti/monitor"
	"github.com/banshee-data/gmti.report/internal/gmti/storage/sqlite"
	"github.com/banshee-data/gmti.report/internal/gmti/workflow"
	"github.com/banshee-data/gmti.report/internal/version"
)

var (
	offline       = flag.Bool("offline", false, "Run a single offline CPI wave and emit a baseline summary")
	serve         = flag.Bool("serve", false, "Keep the HTTP bridge alive for incoming real-time payloads")
	listen        = flag.String("listen", bridge.DefaultListenAddr, "HTTP listen address for the bridge")
	workflowPath  = flag.String("workflow", "", "Load a workflow config from YAML")
	scenarioPath  = flag.String("scenario", "", "Load a scenario profile from YAML for the offline burst")
	taps          = flag.Int("taps", 4, "Pulse taps per range bin")
	rangeBins     = flag.Int("range-bins", 1024, "Range bins per dwell")
	dopplerBins   = flag.Int("doppler-bins", 128, "Doppler bins per dwell")
	dbFile        = flag.String("db", "", "Path to the SQLite run database (empty disables persistence)")
	migrationsDir = flag.String("migrations", "db/migrations", "Path to the run database migrations")
	reportFile    = flag.String("report", "tools/data/offline_detection.log", "Offline detection report file")
	plotDir       = flag.String("plot-dir", "", "Directory for offline PNG plots (empty disables plotting)")
	debugCharts   = flag.Bool("debug", false, "Mount the /debug/charts routes on the bridge")
	trace         = flag.Bool("trace", false, "Enable per-stage trace logging")
	showVersion   = flag.Bool("version", false, "Print version and exit")
)

// Main
func main() {
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}
	if !*offline && !*serve {
		log.Fatal("Nothing to do: pass -offline and/or -serve")
	}
	if *listen == "" {
		log.Fatal("Listen address is required")
	}
	if *trace {
		gmti.SetLogWriters(gmti.LogWriters{Ops: os.Stderr, Diag: os.Stderr, Trace: os.Stderr})
	}

	cfg := workflow.FromFlags(*taps, *rangeBins, *dopplerBins)
	if *workflowPath != "" {
		var err error
		cfg, err = workflow.Load(*workflowPath)
		if err != nil {
			log.Fatalf("Failed to load workflow config: %v", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid workflow config: %v", err)
	}

	var store *sqlite.RunStore
	if *dbFile != "" {
		db, err := sqlite.Open(*dbFile)
		if err != nil {
			log.Fatalf("Failed to open run database: %v", err)
		}
		defer db.Close()
		if err := sqlite.MigrateUp(db, *migrationsDir); err != nil {
			log.Fatalf("Failed to migrate run database: %v", err)
		}
		store = sqlite.NewRunStore(db)
	}

	runner := workflow.NewRunner(cfg)

	opts := []bridge.Option{}
	if store != nil {
		opts = append(opts, bridge.WithRunStore(store))
	}
	if *debugCharts {
		opts = append(opts, bridge.WithDebugRoutes(monitor.AttachDebugRoutes))
	}
	server := bridge.NewServer(bridge.Config{ListenAddr: *listen, EnableDebug: *debugCharts}, runner, opts...)

	if *offline {
		if err := runOffline(runner, server.State(), store); err != nil {
			log.Fatalf("Offline run failed: %v", err)
		}
	}

	if !*serve {
		return
	}

	server.State().PublishStatus("HTTP bridge running (Ctrl+C to stop)...")

	// Create a wait group for the bridge server routine
	var wg sync.WaitGroup
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := server.Start(ctx); err != nil {
			log.Printf("bridge server error: %v", err)
			stop()
		}
		log.Print("bridge routine terminated")
	}()

	// Wait for all goroutines to finish
	wg.Wait()
	log.Printf("Graceful shutdown complete")
}

// runOffline pushes one generated burst through the chain, publishes the
// outcome to the visualization model, and appends a baseline summary line to
// the report file.
func runOffline(runner *workflow.Runner, state *bridge.State, store *sqlite.RunStore) error {
	genCfg := generator.DefaultConfig()
	genCfg.Taps = runner.Config().Taps
	genCfg.RangeBins = runner.Config().RangeBins
	genCfg.DopplerBins = runner.Config().DopplerBins
	if *scenarioPath != "" {
		var err error
		genCfg, err = generator.LoadScenario(*scenarioPath)
		if err != nil {
			return fmt.Errorf("loading scenario: %w", err)
		}
	}
	if err := genCfg.Validate(); err != nil {
		return fmt.Errorf("invalid scenario config: %w", err)
	}

	payload, err := generator.BuildPayload(genCfg)
	if err != nil {
		return fmt.Errorf("building payload: %w", err)
	}

	// A scenario file may carry its own geometry, so the chain is sized from
	// the generator config rather than the startup flags.
	if genCfg.StageConfig() != runner.Config().StageConfig() {
		runner = workflow.NewRunner(workflow.FromFlags(genCfg.Taps, genCfg.RangeBins, genCfg.DopplerBins))
	}

	res, err := runner.Execute(payload)
	if err != nil {
		return fmt.Errorf("executing chain: %w", err)
	}

	fmt.Printf("Offline run -> detections %d, power_profile len %d, records %d\n",
		res.DetectionCount, len(res.PowerProfile), len(res.DetectionRecords))

	state.Publish(res)
	state.PublishStatus("Offline workflow results ready.")

	if err := appendReport(*reportFile, res); err != nil {
		return fmt.Errorf("writing detection report: %w", err)
	}

	if store != nil {
		runID, err := store.RecordRun(runner.Config(), genCfg.Scenario().Name, string(payload.Ancillary.Mode), res)
		if err != nil {
			log.Printf("failed to persist offline run: %v", err)
		} else {
			log.Printf("persisted offline run %s", runID)
		}
	}

	if *plotDir != "" {
		savePlots(*plotDir, res)
	}

	return nil
}

// appendReport appends one summary line per run so successive baselines can
// be diffed.
func appendReport(path string, res *workflow.Result) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = fmt.Fprintf(f, "detections=%d range_profile=%d records=%d doppler_notes=%q\n",
		res.DetectionCount, len(res.PowerProfile), len(res.DetectionRecords), res.DopplerNotes)
	return err
}

func savePlots(dir string, res *workflow.Result) {
	profilePath := filepath.Join(dir, "power_profile.png")
	if err := monitor.SavePowerProfilePNG(res.PowerProfile, profilePath); err != nil {
		log.Printf("failed to plot power profile: %v", err)
	} else {
		log.Printf("saved power profile plot to %s", profilePath)
	}

	detectionsPath := filepath.Join(dir, "detections.png")
	if err := monitor.SaveDetectionsPNG(res.DetectionRecords, detectionsPath); err != nil {
		log.Printf("failed to plot detections: %v", err)
	} else {
		log.Printf("saved detections plot to %s", detectionsPath)
	}
}
