// Package veff computes effective volumes from simulated event sets. The
// effective volume of an energy bin is the sampled volume scaled by the
// weighted trigger fraction, expressed in water equivalent and multiplied by
// the full solid angle.
package veff

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/polarfield-data/radiomc/internal/event"
	"github.com/polarfield-data/radiomc/internal/monitoring"
	"github.com/polarfield-data/radiomc/internal/rundb"
	"github.com/polarfield-data/radiomc/internal/units"
)

// TriggerWeights maps the event groups that triggered to their Earth
// absorption weight.
type TriggerWeights map[int64]float64

// FromTriggers collapses a trigger list into per-group weights.
func FromTriggers(triggers []rundb.Trigger) TriggerWeights {
	w := make(TriggerWeights)
	for _, t := range triggers {
		w[t.EventGroupID] = t.Weight
	}
	return w
}

// Compute bins the event groups of the dataset into nBins logarithmic
// energy bins and returns the effective volume of each. With nBins <= 1 a
// single result covering the full energy range is returned.
//
// The dataset must cover every generated event: the denominator needs the
// energy of the events that did not trigger, so a triggered-only output
// file is rejected. Part files of one generation run are combined with
// eventio.Merge, which sums their accounted events.
func Compute(ds *event.Dataset, triggered TriggerWeights, nBins int) ([]rundb.VeffResult, error) {
	if ds.Attrs.EMin <= 0 || ds.Attrs.EMax <= ds.Attrs.EMin {
		return nil, fmt.Errorf("veff: bad energy range [%g, %g]", ds.Attrs.EMin, ds.Attrs.EMax)
	}
	if ds.Attrs.Volume <= 0 {
		return nil, fmt.Errorf("veff: dataset carries no sampled volume")
	}
	if nBins < 1 {
		nBins = 1
	}

	edges := make([]float64, nBins+1)
	floats.Span(edges, math.Log10(ds.Attrs.EMin), math.Log10(ds.Attrs.EMax))

	nEvents := make([]int64, nBins)
	nTrig := make([]int64, nBins)
	sumW := make([]float64, nBins)

	seen := make(map[int64]bool)
	for i := 0; i < ds.Len(); i++ {
		gid := ds.EventGroupIDs[i]
		if seen[gid] {
			continue
		}
		seen[gid] = true

		b := binIndex(edges, math.Log10(ds.Energies[i]))
		nEvents[b]++
		if w, ok := triggered[gid]; ok {
			nTrig[b]++
			sumW[b] += w
		}
	}

	if ds.Attrs.NEvents > 0 && int64(len(seen)) != ds.Attrs.NEvents {
		return nil, fmt.Errorf("veff: dataset holds %d event groups but accounts for %d events; "+
			"the full generated event set is required", len(seen), ds.Attrs.NEvents)
	}

	// water equivalent volume times full solid angle
	scale := ds.Attrs.Volume * units.DensityIce / units.DensityWater * 4 * math.Pi

	out := make([]rundb.VeffResult, nBins)
	for b := range out {
		center := math.Pow(10, 0.5*(edges[b]+edges[b+1]))
		r := rundb.VeffResult{
			Energy:     center,
			NTriggered: nTrig[b],
			NEvents:    nEvents[b],
		}
		if nEvents[b] > 0 {
			r.Veff = scale * sumW[b] / float64(nEvents[b])
			if nTrig[b] > 0 {
				r.VeffErr = r.Veff / math.Sqrt(float64(nTrig[b]))
			}
		}
		out[b] = r
		monitoring.Logf("veff at %.3g eV: %.4g m^3 sr (%d / %d events)",
			center, r.Veff, nTrig[b], nEvents[b])
	}
	return out, nil
}

func binIndex(edges []float64, v float64) int {
	n := len(edges) - 1
	for b := 0; b < n; b++ {
		if v < edges[b+1] {
			return b
		}
	}
	return n - 1
}
