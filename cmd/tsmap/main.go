// Command tsmap runs the TS-map estimator over a simulated point-source
// observation and writes plots, an HTML report and a run record.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/skywatch-data/significance.report/internal/config"
	"github.com/skywatch-data/significance.report/internal/monitor"
	"github.com/skywatch-data/significance.report/internal/resultdb"
	"github.com/skywatch-data/significance.report/internal/synth"
	"github.com/skywatch-data/significance.report/internal/tsmap"
)

func main() {
	configPath := flag.String("config", "", "Path to estimator JSON config (optional)")
	outputDir := flag.String("out", "out", "Output directory for plots and report")
	dbPath := flag.String("db", "", "Run store path (default <out>/runs.db)")
	jobs := flag.Int("jobs", 0, "Parallel fit workers (0 = sequential)")
	fluxUnit := flag.String("flux-unit", "", `Output flux unit ("cm-2 s-1" or "m-2 s-1")`)
	factor := flag.Int("downsample", 0, "Downsampling factor (power of two, 0 = off)")

	gridSize := flag.Int("grid", 21, "Simulated map size in pixels per side")
	flux := flag.Float64("flux", 1e-9, "Injected source flux (cm-2 s-1)")
	background := flag.Float64("background", 2.0, "Flat background level (counts per bin)")
	seed := flag.Uint64("seed", 1, "Simulation random seed")
	flag.Parse()

	opts := tsmap.DefaultOptions()
	if *configPath != "" {
		cfg, err := config.LoadEstimatorConfig(*configPath)
		if err != nil {
			log.Fatalf("load config: %v", err)
		}
		opts = cfg.Apply(opts)
	}
	if *jobs > 0 {
		opts.NJobs = *jobs
	}
	if *factor > 0 {
		opts.DownsamplingFactor = *factor
	}
	if *fluxUnit != "" {
		opts.FluxUnit = *fluxUnit
	}

	sim := synth.DefaultSim()
	sim.NY = *gridSize
	sim.NX = *gridSize
	sim.Flux = *flux
	sim.Background = *background
	sim.Seed = *seed

	dataset, err := sim.Build()
	if err != nil {
		log.Fatalf("build dataset: %v", err)
	}
	log.Printf("simulated %dx%d map: %.0f counts total", sim.NY, sim.NX, dataset.Counts.Total())

	estimator, err := tsmap.NewTSMapEstimator(opts)
	if err != nil {
		log.Fatalf("configure estimator: %v", err)
	}
	result, err := estimator.Run(dataset)
	if err != nil {
		log.Fatalf("run estimator: %v", err)
	}

	summary := monitor.Summarize(result)
	log.Printf("peak sqrt_ts %.2f at (%d, %d), flux %.3g",
		summary.PeakSqrtTS, summary.PeakRow, summary.PeakCol, summary.PeakFlux)

	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		log.Fatalf("create output dir: %v", err)
	}
	nPlots, err := monitor.SaveResultPlots(result, *outputDir)
	if err != nil {
		log.Fatalf("save plots: %v", err)
	}
	reportPath := filepath.Join(*outputDir, fmt.Sprintf("report_%s.html", result.RunID))
	if err := monitor.WriteRunReport(result, summary, reportPath); err != nil {
		log.Fatalf("write report: %v", err)
	}
	log.Printf("wrote %d plots and %s", nPlots, reportPath)

	storePath := *dbPath
	if storePath == "" {
		storePath = filepath.Join(*outputDir, "runs.db")
	}
	if err := recordRun(storePath, opts, result, summary, reportPath); err != nil {
		log.Fatalf("record run: %v", err)
	}
	log.Printf("recorded run %s in %s", result.RunID, storePath)
}

// recordRun stores the run summary in the sqlite run store.
func recordRun(path string, opts tsmap.Options, result *tsmap.Result, summary *monitor.RunSummary, reportPath string) error {
	db, err := resultdb.Open(path)
	if err != nil {
		return err
	}
	defer db.Close()

	cfgJSON, err := json.Marshal(opts)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	_, err = db.SaveRun(&resultdb.RunRecord{
		RunID:      result.RunID,
		ConfigJSON: string(cfgJSON),
		NPixels:    result.Positions,
		PeakTS:     summary.PeakTS,
		PeakSqrtTS: summary.PeakSqrtTS,
		PeakRow:    summary.PeakRow,
		PeakCol:    summary.PeakCol,
		PeakFlux:   summary.PeakFlux,
		Elapsed:    result.Elapsed,
		ReportPath: reportPath,
	})
	return err
}
