// Command split cuts an event file into parts of a fixed number of event
// groups, for distributing simulation jobs.
package main

import (
	"flag"
	"log"
	"os"

	"github.com/polarfield-data/radiomc/internal/eventio"
)

func main() {
	var (
		in          = flag.String("in", "", "input event file")
		out         = flag.String("out", "", "output base name, defaults to the input name")
		nPerFile    = flag.Int64("n", 1000, "event groups per output file")
		startFileID = flag.Int("start-file-id", 0, "numbering offset for part files")
	)
	flag.Parse()
	if *in == "" {
		flag.Usage()
		os.Exit(1)
	}
	if *out == "" {
		*out = *in
	}

	files, err := eventio.Split(*in, *out, *nPerFile, *startFileID)
	if err != nil {
		log.Fatalf("split: %v", err)
	}
	for _, f := range files {
		log.Printf("wrote %s", f)
	}
}
