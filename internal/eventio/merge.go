package eventio

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/polarfield-data/radiomc/internal/event"
	"github.com/polarfield-data/radiomc/internal/monitoring"
)

// ErrDuplicateGroupIDs is returned when the same event group id appears in
// more than one input file. Merging such files would double count events and
// bias any effective volume computed from the result.
var ErrDuplicateGroupIDs = errors.New("duplicate event group ids across input files")

// ErrAttributeMismatch is returned when input files disagree on the
// generation attributes that must be common to a run.
var ErrAttributeMismatch = errors.New("input files have incompatible attributes")

// Merge combines part files into a single dataset. Input files are read
// concurrently by at most workers goroutines, which also bounds how many
// files are held in memory at once beyond the accumulating result. The row
// order of the result follows the input file order.
func Merge(ctx context.Context, inputs []string, workers int) (*event.Dataset, error) {
	if len(inputs) == 0 {
		return nil, errors.New("merge: no input files")
	}
	if workers < 1 {
		workers = 1
	}

	parts := make([]*event.Dataset, len(inputs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, name := range inputs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			ds, err := Read(name)
			if err != nil {
				return err
			}
			parts[i] = ds
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := checkDuplicateGroupIDs(inputs, parts); err != nil {
		return nil, err
	}

	merged := &event.Dataset{Attrs: parts[0].Attrs}
	merged.Attrs.NEvents = 0
	merged.Attrs.TotalNumberOfEvents = 0
	for i, part := range parts {
		if err := checkCompatible(&parts[0].Attrs, &part.Attrs); err != nil {
			return nil, fmt.Errorf("%s: %w", inputs[i], err)
		}
		merged.Append(part)
		merged.Attrs.NEvents += part.Attrs.NEvents
		merged.Attrs.TotalNumberOfEvents += part.Attrs.NEvents
		if part.Attrs.StartEventID < merged.Attrs.StartEventID {
			merged.Attrs.StartEventID = part.Attrs.StartEventID
		}
	}

	monitoring.Logf("merged %d files into %d rows covering %d events",
		len(inputs), merged.Len(), merged.Attrs.NEvents)
	return merged, nil
}

// MergeToFile merges the inputs and writes the result to out.
func MergeToFile(ctx context.Context, out string, inputs []string, workers int) error {
	merged, err := Merge(ctx, inputs, workers)
	if err != nil {
		return err
	}
	return Write(out, merged)
}

func checkDuplicateGroupIDs(inputs []string, parts []*event.Dataset) error {
	owner := make(map[int64]int)
	var dups []int64
	for i, part := range parts {
		for _, id := range part.UniqueGroupIDs() {
			if j, ok := owner[id]; ok && j != i {
				dups = append(dups, id)
				continue
			}
			owner[id] = i
		}
	}
	if len(dups) == 0 {
		return nil
	}
	sort.Slice(dups, func(a, b int) bool { return dups[a] < dups[b] })
	const maxListed = 10
	listed := dups
	if len(listed) > maxListed {
		listed = listed[:maxListed]
	}
	return fmt.Errorf("%w: %d ids, first %v", ErrDuplicateGroupIDs, len(dups), listed)
}

func checkCompatible(a, b *event.Attributes) error {
	type check struct {
		name string
		x, y float64
	}
	checks := []check{
		{"emin", a.EMin, b.EMin},
		{"emax", a.EMax, b.EMax},
		{"thetamin", a.ThetaMin, b.ThetaMin},
		{"thetamax", a.ThetaMax, b.ThetaMax},
		{"volume", a.Volume, b.Volume},
	}
	for _, c := range checks {
		if !floatsEqual(c.x, c.y) {
			return fmt.Errorf("%w: %s %g != %g", ErrAttributeMismatch, c.name, c.y, c.x)
		}
	}
	if a.Deposited != b.Deposited {
		return fmt.Errorf("%w: deposited flag differs", ErrAttributeMismatch)
	}
	return nil
}

func floatsEqual(a, b float64) bool {
	if a == b {
		return true
	}
	scale := math.Max(math.Abs(a), math.Abs(b))
	return math.Abs(a-b) <= 1e-9*scale
}
