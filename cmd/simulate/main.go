// Command simulate runs the detector simulation over an event file and
// writes the triggered events plus a run record.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/polarfield-data/radiomc/internal/config"
	"github.com/polarfield-data/radiomc/internal/detector"
	"github.com/polarfield-data/radiomc/internal/eventio"
	"github.com/polarfield-data/radiomc/internal/medium"
	"github.com/polarfield-data/radiomc/internal/randomness"
	"github.com/polarfield-data/radiomc/internal/rundb"
	"github.com/polarfield-data/radiomc/internal/sim"
	"github.com/polarfield-data/radiomc/internal/version"
)

func iceModel(name string) (medium.Model, error) {
	switch name {
	case "southpole":
		return medium.SouthPole(), nil
	case "greenland":
		return medium.Greenland(), nil
	case "uniform":
		return medium.Uniform{N: 1.78}, nil
	}
	return nil, os.ErrInvalid
}

func main() {
	var (
		in           = flag.String("in", "", "input event file")
		out          = flag.String("out", "triggered.arrow", "output event file with triggered events")
		configPath   = flag.String("config", "", "run configuration JSON")
		detectorPath = flag.String("detector", "", "detector description JSON")
		dbPath       = flag.String("db", "runs.db", "run database path")
		ice          = flag.String("medium", "southpole", "ice model: southpole, greenland or uniform")
		seed         = flag.Int64("seed", 0, "override the random seed, 0 uses the config value")
		workers      = flag.Int("workers", 0, "override the number of worker goroutines, 0 uses the config value")
	)
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()
	if *showVersion {
		log.Printf("radiomc %s (%s, built %s)", version.Version, version.GitSHA, version.BuildTime)
		return
	}
	if *in == "" || *detectorPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	cfg := config.EmptyRunConfig()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			log.Fatalf("load config: %v", err)
		}
	}
	if *seed != 0 {
		randomness.SetGlobalSeed(*seed)
	} else {
		randomness.SetGlobalSeed(cfg.GetSeed())
	}
	if *workers > 0 {
		cfg.Workers = workers
	}

	det, err := detector.Load(*detectorPath)
	if err != nil {
		log.Fatalf("load detector: %v", err)
	}
	med, err := iceModel(*ice)
	if err != nil {
		log.Fatalf("unknown ice model '%s'", *ice)
	}

	ds, err := eventio.Read(*in)
	if err != nil {
		log.Fatalf("read events: %v", err)
	}

	db, err := rundb.NewDB(*dbPath)
	if err != nil {
		log.Fatalf("open run database: %v", err)
	}
	defer db.Close()

	detJSON, err := det.JSON()
	if err != nil {
		log.Fatalf("encode detector: %v", err)
	}
	cfgJSON, err := json.Marshal(cfg)
	if err != nil {
		log.Fatalf("encode config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	engine := sim.New(cfg, det, med)
	res, err := engine.Run(ctx, ds)
	if err != nil {
		log.Fatalf("simulate: %v", err)
	}

	runID, err := db.StartRun(*in, *out, res.NEvents, cfg.GetSeed(), string(detJSON), string(cfgJSON))
	if err != nil {
		log.Fatalf("record run: %v", err)
	}
	for _, t := range res.Triggers {
		if err := db.RecordTrigger(runID, t); err != nil {
			log.Fatalf("record trigger: %v", err)
		}
	}
	if err := eventio.WriteWithMetadata(*out, res.Triggered, map[string]string{
		"detector": string(detJSON),
		"run_id":   runID,
	}); err != nil {
		log.Fatalf("write output: %v", err)
	}
	if err := db.FinishRun(runID); err != nil {
		log.Fatalf("finish run: %v", err)
	}
	log.Printf("run %s: %d of %d event groups triggered (sum of weights %.3f)",
		runID, res.NTriggered, res.NEvents, res.SumWeights)
}
