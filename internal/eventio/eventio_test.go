package eventio

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polarfield-data/radiomc/internal/event"
)

// makeDataset builds a dataset with nGroups event groups starting at
// startID. Every third group gets a second row, mimicking the extra
// electromagnetic shower of nu_e charged current events.
func makeDataset(startID int64, nGroups int) *event.Dataset {
	ds := &event.Dataset{
		Attrs: event.Attributes{
			NEvents:             int64(nGroups),
			TotalNumberOfEvents: int64(nGroups),
			StartEventID:        startID,
			Flavors:             []int32{12, -12, 14, -14, 16, -16},
			EMin:                1e17,
			EMax:                1e19,
			ThetaMax:            3.141592653589793,
			PhiMax:              6.283185307179586,
			FiducialRMax:        4000,
			FiducialZMin:        -2700,
			Volume:              1.357e11,
		},
	}
	showerID := int64(0)
	addRow := func(gid int64, nInt int32, st string) {
		ds.EventGroupIDs = append(ds.EventGroupIDs, gid)
		ds.ShowerIDs = append(ds.ShowerIDs, showerID)
		showerID++
		ds.NInteraction = append(ds.NInteraction, nInt)
		ds.XX = append(ds.XX, float64(gid))
		ds.YY = append(ds.YY, -float64(gid))
		ds.ZZ = append(ds.ZZ, -500)
		ds.VertexTimes = append(ds.VertexTimes, 0)
		ds.Zeniths = append(ds.Zeniths, 1.2)
		ds.Azimuths = append(ds.Azimuths, 0.5)
		ds.Flavors = append(ds.Flavors, 12)
		ds.Energies = append(ds.Energies, 1e18)
		ds.ShowerEnergies = append(ds.ShowerEnergies, 2e17)
		ds.ShowerTypes = append(ds.ShowerTypes, st)
		ds.InteractionType = append(ds.InteractionType, event.InteractionCC)
		ds.Inelasticity = append(ds.Inelasticity, 0.2)
	}
	for i := 0; i < nGroups; i++ {
		gid := startID + int64(i)
		addRow(gid, 1, event.ShowerHadronic)
		if i%3 == 0 {
			addRow(gid, 1, event.ShowerElectromagnetic)
		}
	}
	return ds
}

func TestWriteReadRoundtrip(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "events.arrow")

	ds := makeDataset(1, 10)
	require.NoError(t, Write(name, ds))

	got, err := Read(name)
	require.NoError(t, err)

	assert.Equal(t, ds.Len(), got.Len())
	assert.Equal(t, ds.EventGroupIDs, got.EventGroupIDs)
	assert.Equal(t, ds.ShowerTypes, got.ShowerTypes)
	assert.Equal(t, ds.Flavors, got.Flavors)
	assert.InDeltaSlice(t, ds.Energies, got.Energies, 0)

	assert.Equal(t, VersionMajor, got.Attrs.VersionMajor)
	assert.Equal(t, int64(10), got.Attrs.NEvents)
	assert.Equal(t, ds.Attrs.Flavors, got.Attrs.Flavors)
	assert.Equal(t, ds.Attrs.EMin, got.Attrs.EMin)
	assert.Equal(t, ds.Attrs.Volume, got.Attrs.Volume)
}

func TestWriteWithMetadata(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "events.arrow")

	ds := makeDataset(1, 3)
	extra := map[string]string{"detector": `{"stations":[]}`}
	require.NoError(t, WriteWithMetadata(name, ds, extra))

	md, err := Metadata(name)
	require.NoError(t, err)
	assert.Equal(t, `{"stations":[]}`, md["detector"])
	assert.Contains(t, md, "n_events")

	// extra entries must not confuse the attribute parsing
	got, err := Read(name)
	require.NoError(t, err)
	assert.Equal(t, int64(3), got.Attrs.NEvents)
}

func TestWriteSplitSingleFile(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "events.arrow")

	ds := makeDataset(1, 5)
	files, err := WriteSplit(name, ds, 0, 0)
	require.NoError(t, err)
	require.Equal(t, []string{name}, files, "no part suffix when everything fits")

	got, err := Read(name)
	require.NoError(t, err)
	// case: first and last file carries the full event count
	assert.Equal(t, int64(5), got.Attrs.NEvents)
}

func TestWriteSplitMultipleFiles(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "events.arrow")

	ds := makeDataset(1, 10)
	files, err := WriteSplit(name, ds, 4, 0)
	require.NoError(t, err)
	require.Len(t, files, 3)
	assert.Equal(t, PartName(name, 0), files[0])
	assert.Equal(t, PartName(name, 2), files[2])

	var totalEvents int64
	var totalRows int
	var prevLast int64
	for i, f := range files {
		part, err := Read(f)
		require.NoError(t, err)
		totalEvents += part.Attrs.NEvents
		totalRows += part.Len()
		assert.Equal(t, int64(10), part.Attrs.TotalNumberOfEvents)

		// groups are never split across files
		first := part.EventGroupIDs[0]
		if i > 0 {
			assert.Greater(t, first, prevLast, "file %d overlaps previous", i)
		}
		prevLast = part.EventGroupIDs[part.Len()-1]
	}
	// the per-file bookkeeping must recover the run totals
	assert.Equal(t, int64(10), totalEvents)
	assert.Equal(t, ds.Len(), totalRows)
}

func TestWriteSplitStartFileID(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "events.arrow")

	ds := makeDataset(1, 6)
	files, err := WriteSplit(name, ds, 3, 5)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, PartName(name, 5), files[0])
	assert.Equal(t, PartName(name, 6), files[1])
}

func TestMergeRoundtrip(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "events.arrow")

	ds := makeDataset(1, 9)
	files, err := WriteSplit(name, ds, 3, 0)
	require.NoError(t, err)
	require.Len(t, files, 3)

	merged, err := Merge(context.Background(), files, 2)
	require.NoError(t, err)

	assert.Equal(t, ds.Len(), merged.Len())
	assert.Equal(t, ds.EventGroupIDs, merged.EventGroupIDs)
	assert.Equal(t, int64(9), merged.Attrs.NEvents)
	assert.Equal(t, ds.Attrs.Volume, merged.Attrs.Volume)
}

func TestMergeDetectsDuplicateGroupIDs(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.arrow")
	b := filepath.Join(dir, "b.arrow")

	require.NoError(t, Write(a, makeDataset(1, 5)))
	require.NoError(t, Write(b, makeDataset(3, 5))) // ids 3..7 overlap 1..5

	_, err := Merge(context.Background(), []string{a, b}, 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDuplicateGroupIDs), "got %v", err)
}

func TestMergeDetectsAttributeMismatch(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.arrow")
	b := filepath.Join(dir, "b.arrow")

	dsA := makeDataset(1, 3)
	dsB := makeDataset(10, 3)
	dsB.Attrs.EMax = 1e20
	require.NoError(t, Write(a, dsA))
	require.NoError(t, Write(b, dsB))

	_, err := Merge(context.Background(), []string{a, b}, 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAttributeMismatch), "got %v", err)
}

func TestSplitFile(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "events.arrow")

	ds := makeDataset(1, 8)
	require.NoError(t, Write(name, ds))

	out := filepath.Join(dir, "chunk.arrow")
	files, err := Split(name, out, 2, 0)
	require.NoError(t, err)
	require.Len(t, files, 4)

	merged, err := Merge(context.Background(), files, 4)
	require.NoError(t, err)
	assert.Equal(t, ds.EventGroupIDs, merged.EventGroupIDs)
	assert.Equal(t, int64(8), merged.Attrs.NEvents)
}

func TestSplitRejectsNonPositiveChunk(t *testing.T) {
	_, err := Split("in.arrow", "", 0, 0)
	require.Error(t, err)
}
