package eventio

import (
	"fmt"
)

// Split reads an event file and rewrites it as part files of at most
// nEventsPerFile event groups each, numbered from startFileID. It is used to
// chop large outputs into chunks small enough to resimulate on a cluster
// within the per-core memory budget. Returns the names of the written files.
func Split(filename, out string, nEventsPerFile int64, startFileID int) ([]string, error) {
	if nEventsPerFile <= 0 {
		return nil, fmt.Errorf("split %s: events per file must be positive, got %d", filename, nEventsPerFile)
	}

	ds, err := Read(filename)
	if err != nil {
		return nil, err
	}
	if out == "" {
		out = filename
	}
	return WriteSplit(out, ds, nEventsPerFile, startFileID)
}
