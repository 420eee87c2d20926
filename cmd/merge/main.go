// Command merge combines several event files into one. Inputs with
// overlapping event group ids or incompatible generation settings are
// rejected.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/polarfield-data/radiomc/internal/eventio"
)

func main() {
	var (
		out     = flag.String("out", "merged.arrow", "output event file")
		workers = flag.Int("workers", 4, "number of files read in parallel")
	)
	flag.Parse()
	inputs := flag.Args()
	if len(inputs) == 0 {
		log.Println("usage: merge [flags] input.arrow ...")
		flag.PrintDefaults()
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := eventio.MergeToFile(ctx, *out, inputs, *workers); err != nil {
		log.Fatalf("merge: %v", err)
	}
	log.Printf("merged %d files into %s", len(inputs), *out)
}
