package veff

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/polarfield-data/radiomc/internal/event"
	"github.com/polarfield-data/radiomc/internal/eventio"
	"github.com/polarfield-data/radiomc/internal/rundb"
	"github.com/polarfield-data/radiomc/internal/units"
)

func binnedDataset(energies []float64) *event.Dataset {
	ds := &event.Dataset{
		Attrs: event.Attributes{
			EMin:    1e16,
			EMax:    1e20,
			Volume:  1e11, // m^3
			NEvents: int64(len(energies)),
		},
	}
	for i, e := range energies {
		ds.EventGroupIDs = append(ds.EventGroupIDs, int64(i))
		ds.Energies = append(ds.Energies, e)
	}
	return ds
}

func TestComputeSingleBin(t *testing.T) {
	ds := binnedDataset([]float64{1e17, 1e18, 1e19, 1e19})
	trig := TriggerWeights{1: 1.0, 2: 0.5}

	res, err := Compute(ds, trig, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(res) != 1 {
		t.Fatalf("got %d bins, want 1", len(res))
	}
	r := res[0]
	if r.NEvents != 4 || r.NTriggered != 2 {
		t.Fatalf("accounting: %d events, %d triggered", r.NEvents, r.NTriggered)
	}

	want := 1e11 * units.DensityIce / units.DensityWater * 4 * math.Pi * 1.5 / 4
	if math.Abs(r.Veff-want) > 1e-6*want {
		t.Errorf("veff = %g, want %g", r.Veff, want)
	}
	if wantErr := want / math.Sqrt(2); math.Abs(r.VeffErr-wantErr) > 1e-6*wantErr {
		t.Errorf("veff err = %g, want %g", r.VeffErr, wantErr)
	}
}

func TestComputeBinning(t *testing.T) {
	// one event per decade bin
	ds := binnedDataset([]float64{3e16, 3e17, 3e18, 3e19})
	trig := TriggerWeights{2: 1.0}

	res, err := Compute(ds, trig, 4)
	if err != nil {
		t.Fatal(err)
	}
	if len(res) != 4 {
		t.Fatalf("got %d bins, want 4", len(res))
	}
	for b, r := range res {
		if r.NEvents != 1 {
			t.Errorf("bin %d: %d events, want 1", b, r.NEvents)
		}
		wantTrig := int64(0)
		if b == 2 {
			wantTrig = 1
		}
		if r.NTriggered != wantTrig {
			t.Errorf("bin %d: %d triggered, want %d", b, r.NTriggered, wantTrig)
		}
	}
	// empty bins carry zero volume
	if res[0].Veff != 0 || res[2].Veff <= 0 {
		t.Errorf("veff values: %g, %g", res[0].Veff, res[2].Veff)
	}
	// centers ascend through the range
	for b := 1; b < 4; b++ {
		if res[b].Energy <= res[b-1].Energy {
			t.Errorf("bin centers not ascending: %g after %g", res[b].Energy, res[b-1].Energy)
		}
	}
}

func TestComputeCountsGroupsOnce(t *testing.T) {
	ds := binnedDataset([]float64{1e18})
	// second shower row of the same event group
	ds.EventGroupIDs = append(ds.EventGroupIDs, 0)
	ds.Energies = append(ds.Energies, 1e18)

	res, err := Compute(ds, TriggerWeights{0: 1}, 1)
	if err != nil {
		t.Fatal(err)
	}
	if res[0].NEvents != 1 || res[0].NTriggered != 1 {
		t.Errorf("multi-shower group double counted: %+v", res[0])
	}
}

func TestComputeRejectsBadAttrs(t *testing.T) {
	ds := binnedDataset([]float64{1e18})
	ds.Attrs.Volume = 0
	if _, err := Compute(ds, nil, 1); err == nil {
		t.Error("expected error for missing volume")
	}

	ds = binnedDataset([]float64{1e18})
	ds.Attrs.EMax = ds.Attrs.EMin
	if _, err := Compute(ds, nil, 1); err == nil {
		t.Error("expected error for empty energy range")
	}
}

func TestComputeRejectsIncompleteDataset(t *testing.T) {
	// a triggered-only output file accounts for more events than it holds
	ds := binnedDataset([]float64{1e17, 1e18})
	ds.Attrs.NEvents = 50
	if _, err := Compute(ds, TriggerWeights{0: 1}, 1); err == nil {
		t.Error("expected error for a dataset missing untriggered events")
	}
}

// partDataset fills every column so the dataset can be written to a file.
func partDataset(startGID int64, energies []float64) *event.Dataset {
	ds := &event.Dataset{
		Attrs: event.Attributes{
			EMin:         1e16,
			EMax:         1e20,
			Volume:       1e11,
			NEvents:      int64(len(energies)),
			StartEventID: startGID,
		},
	}
	for i, e := range energies {
		ds.EventGroupIDs = append(ds.EventGroupIDs, startGID+int64(i))
		ds.ShowerIDs = append(ds.ShowerIDs, startGID+int64(i))
		ds.NInteraction = append(ds.NInteraction, 1)
		ds.XX = append(ds.XX, 0)
		ds.YY = append(ds.YY, 0)
		ds.ZZ = append(ds.ZZ, -500)
		ds.VertexTimes = append(ds.VertexTimes, 0)
		ds.Zeniths = append(ds.Zeniths, 1.2)
		ds.Azimuths = append(ds.Azimuths, 0)
		ds.Flavors = append(ds.Flavors, event.FlavorNuMu)
		ds.Energies = append(ds.Energies, e)
		ds.ShowerEnergies = append(ds.ShowerEnergies, 0.2*e)
		ds.ShowerTypes = append(ds.ShowerTypes, event.ShowerHadronic)
		ds.InteractionType = append(ds.InteractionType, event.InteractionCC)
		ds.Inelasticity = append(ds.Inelasticity, 0.2)
	}
	return ds
}

func TestComputeAggregatesPartFiles(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "part0.arrow")
	b := filepath.Join(dir, "part1.arrow")
	if err := eventio.Write(a, partDataset(0, []float64{1e17, 1e18})); err != nil {
		t.Fatal(err)
	}
	if err := eventio.Write(b, partDataset(2, []float64{1e18, 1e19})); err != nil {
		t.Fatal(err)
	}

	ds, err := eventio.Merge(context.Background(), []string{a, b}, 2)
	if err != nil {
		t.Fatal(err)
	}

	res, err := Compute(ds, TriggerWeights{3: 1.0}, 1)
	if err != nil {
		t.Fatal(err)
	}
	r := res[0]
	if r.NEvents != 4 || r.NTriggered != 1 {
		t.Fatalf("accounting across parts: %d events, %d triggered", r.NEvents, r.NTriggered)
	}
	want := 1e11 * units.DensityIce / units.DensityWater * 4 * math.Pi * 1.0 / 4
	if math.Abs(r.Veff-want) > 1e-6*want {
		t.Errorf("veff = %g, want %g", r.Veff, want)
	}
}

func TestFromTriggers(t *testing.T) {
	w := FromTriggers([]rundb.Trigger{
		{EventGroupID: 1, Weight: 0.5},
		{EventGroupID: 1, Weight: 0.5}, // second channel of the same group
		{EventGroupID: 7, Weight: 1},
	})
	if len(w) != 2 {
		t.Fatalf("got %d groups, want 2", len(w))
	}
	if w[1] != 0.5 || w[7] != 1 {
		t.Errorf("weights = %v", w)
	}
}

func TestPlot(t *testing.T) {
	results := []rundb.VeffResult{
		{Energy: 1e17, Veff: 4e8, VeffErr: 1e8, NTriggered: 4, NEvents: 100},
		{Energy: 1e18, Veff: 2.5e9, VeffErr: 5e8, NTriggered: 25, NEvents: 100},
		{Energy: 1e19, Veff: 0}, // no triggers, skipped
	}
	path := filepath.Join(t.TempDir(), "veff.png")
	if err := Plot(results, path); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Size() == 0 {
		t.Error("empty plot file")
	}
}

func TestPlotRejectsEmptyResults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "veff.png")
	if err := Plot([]rundb.VeffResult{{Energy: 1e18}}, path); err == nil {
		t.Error("expected error when nothing triggered")
	}
}
