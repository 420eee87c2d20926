package eventio

import (
	"fmt"
	"os"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/polarfield-data/radiomc/internal/event"
	"github.com/polarfield-data/radiomc/internal/monitoring"
)

func buildRecord(ds *event.Dataset, schema *arrow.Schema) arrow.Record {
	b := array.NewRecordBuilder(memory.DefaultAllocator, schema)
	defer b.Release()

	b.Field(colEventGroupID).(*array.Int64Builder).AppendValues(ds.EventGroupIDs, nil)
	b.Field(colShowerID).(*array.Int64Builder).AppendValues(ds.ShowerIDs, nil)
	b.Field(colNInteraction).(*array.Int32Builder).AppendValues(ds.NInteraction, nil)
	b.Field(colX).(*array.Float64Builder).AppendValues(ds.XX, nil)
	b.Field(colY).(*array.Float64Builder).AppendValues(ds.YY, nil)
	b.Field(colZ).(*array.Float64Builder).AppendValues(ds.ZZ, nil)
	b.Field(colVertexTime).(*array.Float64Builder).AppendValues(ds.VertexTimes, nil)
	b.Field(colZenith).(*array.Float64Builder).AppendValues(ds.Zeniths, nil)
	b.Field(colAzimuth).(*array.Float64Builder).AppendValues(ds.Azimuths, nil)
	b.Field(colFlavor).(*array.Int32Builder).AppendValues(ds.Flavors, nil)
	b.Field(colEnergy).(*array.Float64Builder).AppendValues(ds.Energies, nil)
	b.Field(colShowerEnergy).(*array.Float64Builder).AppendValues(ds.ShowerEnergies, nil)
	b.Field(colShowerType).(*array.StringBuilder).AppendValues(ds.ShowerTypes, nil)
	b.Field(colInteractionType).(*array.StringBuilder).AppendValues(ds.InteractionType, nil)
	b.Field(colInelasticity).(*array.Float64Builder).AppendValues(ds.Inelasticity, nil)

	return b.NewRecord()
}

// Write stores the dataset in a single Arrow IPC file.
func Write(filename string, ds *event.Dataset) error {
	return WriteWithMetadata(filename, ds, nil)
}

// WriteWithMetadata stores the dataset with additional schema metadata
// entries attached.
func WriteWithMetadata(filename string, ds *event.Dataset, extra map[string]string) error {
	if err := ds.Validate(); err != nil {
		return fmt.Errorf("write %s: %w", filename, err)
	}

	schema := SchemaWithMetadata(ds.Attrs, extra)
	rec := buildRecord(ds, schema)
	defer rec.Release()

	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("write %s: %w", filename, err)
	}
	defer f.Close()

	w, err := ipc.NewFileWriter(f, ipc.WithSchema(schema), ipc.WithAllocator(memory.DefaultAllocator))
	if err != nil {
		return fmt.Errorf("write %s: %w", filename, err)
	}
	if err := w.Write(rec); err != nil {
		w.Close()
		return fmt.Errorf("write %s: %w", filename, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("write %s: %w", filename, err)
	}
	return f.Close()
}

// PartName returns the filename of the i-th part file.
func PartName(filename string, i int) string {
	return fmt.Sprintf("%s.part%04d", filename, i)
}

// WriteSplit stores the dataset, splitting it into part files of at most
// nEventsPerFile event groups each. A group is never split across files. If
// everything fits in one file no part suffix is appended. startFileID offsets
// the part numbering, which is useful when extending an existing data set.
//
// The per-file n_events attribute counts the events this file accounts for in
// the run bookkeeping, which is not the same as the number of rows (or even
// of groups) in the file: events whose interactions fall outside the fiducial
// volume leave no rows but still count. The accounting splits the id range
// [start_event_id, start_event_id+total) at the group boundaries of the
// files, so summing n_events over all files recovers the run total.
func WriteSplit(filename string, ds *event.Dataset, nEventsPerFile int64, startFileID int) ([]string, error) {
	if err := ds.Validate(); err != nil {
		return nil, err
	}
	if ds.Len() == 0 {
		return nil, fmt.Errorf("write %s: empty dataset", filename)
	}

	total := ds.Attrs.TotalNumberOfEvents
	if total == 0 {
		total = ds.Attrs.NEvents
	}
	monitoring.Logf("saving %d events in total", total)

	if nEventsPerFile <= 0 {
		nEventsPerFile = total
	}

	unique := ds.UniqueGroupIDs()

	var written []string
	startIndex := 0
	var evtIDLastPrevious int64
	var nEventsTotal int64

	for iFile := 0; ; iFile++ {
		lo := int64(iFile) * nEventsPerFile
		hi := lo + nEventsPerFile
		if lo >= int64(len(unique)) {
			break
		}
		if hi > int64(len(unique)) {
			hi = int64(len(unique))
		}
		idsThisFile := unique[lo:hi]
		evtIDLast := idsThisFile[len(idsThisFile)-1]

		name := filename
		if iFile > 0 || nEventsPerFile < total {
			name = PartName(filename, iFile+startFileID)
		}

		// stop index: the last row of the last group, inclusive
		stopIndex := startIndex
		for i := startIndex; i < ds.Len(); i++ {
			if ds.EventGroupIDs[i] == evtIDLast {
				stopIndex = i + 1
			}
		}

		lastFile := hi == int64(len(unique))
		var nEventsThisFile int64
		switch {
		case iFile == 0 && lastFile:
			nEventsThisFile = total
		case lastFile:
			nEventsThisFile = total - (evtIDLastPrevious + 1) + ds.Attrs.StartEventID
		case iFile == 0:
			nEventsThisFile = evtIDLast - ds.Attrs.StartEventID + 1
		default:
			nEventsThisFile = evtIDLast - evtIDLastPrevious
		}

		part := ds.Slice(startIndex, stopIndex)
		part.Attrs.NEvents = nEventsThisFile
		part.Attrs.TotalNumberOfEvents = total
		if err := Write(name, part); err != nil {
			return written, err
		}
		monitoring.Logf("writing file %s with %d events (id %d - %d) and %d entries",
			name, nEventsThisFile, idsThisFile[0], evtIDLast, stopIndex-startIndex)

		written = append(written, name)
		nEventsTotal += nEventsThisFile
		startIndex = stopIndex
		evtIDLastPrevious = evtIDLast
	}

	monitoring.Logf("wrote %d events in total", nEventsTotal)
	return written, nil
}
