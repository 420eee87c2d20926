package eventio

import (
	"fmt"
	"os"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/polarfield-data/radiomc/internal/event"
)

// Read loads an event file into memory.
func Read(filename string) (*event.Dataset, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filename, err)
	}
	defer f.Close()

	r, err := ipc.NewFileReader(f, ipc.WithAllocator(memory.DefaultAllocator))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filename, err)
	}
	defer r.Close()

	attrs, err := metadataToAttrs(r.Schema().Metadata())
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filename, err)
	}

	ds := &event.Dataset{Attrs: attrs}
	for i := 0; i < r.NumRecords(); i++ {
		rec, err := r.RecordAt(i)
		if err != nil {
			return nil, fmt.Errorf("read %s: record %d: %w", filename, i, err)
		}
		if err := appendRecord(ds, rec); err != nil {
			rec.Release()
			return nil, fmt.Errorf("read %s: record %d: %w", filename, i, err)
		}
		rec.Release()
	}

	if err := ds.Validate(); err != nil {
		return nil, fmt.Errorf("read %s: %w", filename, err)
	}
	return ds, nil
}

// Metadata returns all schema metadata entries of an event file, including
// any extra entries written alongside the run attributes.
func Metadata(filename string) (map[string]string, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filename, err)
	}
	defer f.Close()

	r, err := ipc.NewFileReader(f, ipc.WithAllocator(memory.DefaultAllocator))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filename, err)
	}
	defer r.Close()

	md := r.Schema().Metadata()
	out := make(map[string]string, md.Len())
	for i, k := range md.Keys() {
		out[k] = md.Values()[i]
	}
	return out, nil
}

func appendRecord(ds *event.Dataset, rec arrow.Record) error {
	if rec.NumCols() != numCols {
		return fmt.Errorf("unexpected column count %d, want %d", rec.NumCols(), numCols)
	}

	int64Col := func(idx int) ([]int64, error) {
		a, ok := rec.Column(idx).(*array.Int64)
		if !ok {
			return nil, fmt.Errorf("column %d is %T, want int64", idx, rec.Column(idx))
		}
		return a.Int64Values(), nil
	}
	int32Col := func(idx int) ([]int32, error) {
		a, ok := rec.Column(idx).(*array.Int32)
		if !ok {
			return nil, fmt.Errorf("column %d is %T, want int32", idx, rec.Column(idx))
		}
		return a.Int32Values(), nil
	}
	floatCol := func(idx int) ([]float64, error) {
		a, ok := rec.Column(idx).(*array.Float64)
		if !ok {
			return nil, fmt.Errorf("column %d is %T, want float64", idx, rec.Column(idx))
		}
		return a.Float64Values(), nil
	}
	stringCol := func(idx int) ([]string, error) {
		a, ok := rec.Column(idx).(*array.String)
		if !ok {
			return nil, fmt.Errorf("column %d is %T, want string", idx, rec.Column(idx))
		}
		out := make([]string, a.Len())
		for i := range out {
			out[i] = a.Value(i)
		}
		return out, nil
	}

	var err error
	var groupIDs, showerIDs []int64
	var nInteraction, flavors []int32
	var xx, yy, zz, vertexTimes, zeniths, azimuths, energies, showerEnergies, inelasticity []float64
	var showerTypes, interactionTypes []string

	if groupIDs, err = int64Col(colEventGroupID); err != nil {
		return err
	}
	if showerIDs, err = int64Col(colShowerID); err != nil {
		return err
	}
	if nInteraction, err = int32Col(colNInteraction); err != nil {
		return err
	}
	if xx, err = floatCol(colX); err != nil {
		return err
	}
	if yy, err = floatCol(colY); err != nil {
		return err
	}
	if zz, err = floatCol(colZ); err != nil {
		return err
	}
	if vertexTimes, err = floatCol(colVertexTime); err != nil {
		return err
	}
	if zeniths, err = floatCol(colZenith); err != nil {
		return err
	}
	if azimuths, err = floatCol(colAzimuth); err != nil {
		return err
	}
	if flavors, err = int32Col(colFlavor); err != nil {
		return err
	}
	if energies, err = floatCol(colEnergy); err != nil {
		return err
	}
	if showerEnergies, err = floatCol(colShowerEnergy); err != nil {
		return err
	}
	if showerTypes, err = stringCol(colShowerType); err != nil {
		return err
	}
	if interactionTypes, err = stringCol(colInteractionType); err != nil {
		return err
	}
	if inelasticity, err = floatCol(colInelasticity); err != nil {
		return err
	}

	ds.EventGroupIDs = append(ds.EventGroupIDs, groupIDs...)
	ds.ShowerIDs = append(ds.ShowerIDs, showerIDs...)
	ds.NInteraction = append(ds.NInteraction, nInteraction...)
	ds.XX = append(ds.XX, xx...)
	ds.YY = append(ds.YY, yy...)
	ds.ZZ = append(ds.ZZ, zz...)
	ds.VertexTimes = append(ds.VertexTimes, vertexTimes...)
	ds.Zeniths = append(ds.Zeniths, zeniths...)
	ds.Azimuths = append(ds.Azimuths, azimuths...)
	ds.Flavors = append(ds.Flavors, flavors...)
	ds.Energies = append(ds.Energies, energies...)
	ds.ShowerEnergies = append(ds.ShowerEnergies, showerEnergies...)
	ds.ShowerTypes = append(ds.ShowerTypes, showerTypes...)
	ds.InteractionType = append(ds.InteractionType, interactionTypes...)
	ds.Inelasticity = append(ds.Inelasticity, inelasticity...)
	return nil
}
