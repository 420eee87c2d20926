// Command veff computes the effective volume of a simulation run from the
// generated event files and the recorded triggers, and optionally plots it.
// Several part files of one generation run may be given; their accounted
// event counts are summed.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/polarfield-data/radiomc/internal/eventio"
	"github.com/polarfield-data/radiomc/internal/rundb"
	"github.com/polarfield-data/radiomc/internal/veff"
)

func main() {
	var (
		dbPath   = flag.String("db", "runs.db", "run database path")
		runID    = flag.String("run", "", "run id to evaluate")
		nBins    = flag.Int("bins", 10, "number of logarithmic energy bins")
		workers  = flag.Int("workers", 4, "number of files read in parallel")
		plotPath = flag.String("plot", "", "write a PNG of the result, empty to skip")
	)
	flag.Parse()
	inputs := flag.Args()
	if len(inputs) == 0 || *runID == "" {
		log.Println("usage: veff [flags] generated.arrow ...")
		flag.PrintDefaults()
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ds, err := eventio.Merge(ctx, inputs, *workers)
	if err != nil {
		log.Fatalf("read events: %v", err)
	}

	db, err := rundb.NewDB(*dbPath)
	if err != nil {
		log.Fatalf("open run database: %v", err)
	}
	defer db.Close()

	triggers, err := db.Triggers(*runID)
	if err != nil {
		log.Fatalf("load triggers: %v", err)
	}

	results, err := veff.Compute(ds, veff.FromTriggers(triggers), *nBins)
	if err != nil {
		log.Fatalf("compute: %v", err)
	}
	for _, r := range results {
		if err := db.RecordVeff(*runID, r); err != nil {
			log.Fatalf("record: %v", err)
		}
	}
	if *plotPath != "" {
		if err := veff.Plot(results, *plotPath); err != nil {
			log.Fatalf("plot: %v", err)
		}
		log.Printf("wrote %s", *plotPath)
	}
}
