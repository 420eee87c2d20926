// Package sim runs the detector simulation: for every shower of an event
// set it traces the signal paths to every channel, computes the Askaryan
// emission along them and applies the trigger.
package sim

import (
	"context"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/polarfield-data/radiomc/internal/askaryan"
	"github.com/polarfield-data/radiomc/internal/config"
	"github.com/polarfield-data/radiomc/internal/detector"
	"github.com/polarfield-data/radiomc/internal/event"
	"github.com/polarfield-data/radiomc/internal/medium"
	"github.com/polarfield-data/radiomc/internal/monitoring"
	"github.com/polarfield-data/radiomc/internal/randomness"
	"github.com/polarfield-data/radiomc/internal/raytrace"
	"github.com/polarfield-data/radiomc/internal/rundb"
)

// Engine holds the fixed inputs of a simulation run.
type Engine struct {
	cfg      *config.RunConfig
	det      *detector.Description
	channels []detector.ResolvedChannel
	med      medium.Model
}

// New builds an engine from the run configuration and detector layout.
func New(cfg *config.RunConfig, det *detector.Description, med medium.Model) *Engine {
	return &Engine{
		cfg:      cfg,
		det:      det,
		channels: det.Resolve(cfg),
		med:      med,
	}
}

// Result summarizes one simulated event set.
type Result struct {
	// Triggered holds the rows of all event groups that fired at least
	// one channel, ready for writing.
	Triggered *event.Dataset
	// Triggers lists every channel trigger.
	Triggers []rundb.Trigger

	NEvents    int64
	NTriggered int64
	// SumWeights is the Earth absorption weighted count of triggered
	// event groups, the numerator of the effective volume.
	SumWeights float64
}

type groupRange struct {
	start, stop int
}

func groupRanges(ds *event.Dataset) []groupRange {
	var out []groupRange
	for i := 0; i < ds.Len(); {
		j := i + 1
		for j < ds.Len() && ds.EventGroupIDs[j] == ds.EventGroupIDs[i] {
			j++
		}
		out = append(out, groupRange{i, j})
		i = j
	}
	return out
}

// Run simulates all event groups of the dataset. Groups are independent
// and processed in parallel up to the configured worker count.
func (e *Engine) Run(ctx context.Context, ds *event.Dataset) (*Result, error) {
	if err := ds.Validate(); err != nil {
		return nil, err
	}
	if len(e.channels) == 0 {
		return nil, fmt.Errorf("sim: detector has no channels")
	}

	groups := groupRanges(ds)
	monitoring.Logf("simulating %d event groups on %d channels with %d workers",
		len(groups), len(e.channels), e.cfg.GetWorkers())

	perGroup := make([][]rundb.Trigger, len(groups))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.GetWorkers())
	for gi, gr := range groups {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			triggers, err := e.runGroup(ds, gr)
			if err != nil {
				return err
			}
			perGroup[gi] = triggers
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &Result{
		Triggered: &event.Dataset{Attrs: ds.Attrs},
		NEvents:   ds.Attrs.NEvents,
	}
	for gi, triggers := range perGroup {
		if len(triggers) == 0 {
			continue
		}
		res.Triggers = append(res.Triggers, triggers...)
		res.NTriggered++
		res.SumWeights += triggers[0].Weight
		gr := groups[gi]
		res.Triggered.Append(ds.Slice(gr.start, gr.stop))
	}
	monitoring.Logf("%d of %d event groups triggered (weighted %.4g)",
		res.NTriggered, len(groups), res.SumWeights)
	return res, nil
}

// runGroup simulates one event group and returns its channel triggers.
func (e *Engine) runGroup(ds *event.Dataset, gr groupRange) ([]rundb.Trigger, error) {
	weight := SimpleWeight(ds.Zeniths[gr.start], ds.Energies[gr.start])

	// realizations come from a stream derived from the event group id, so
	// a seeded run is reproducible for any worker count
	rng := randomness.Seeded("askaryan", ds.EventGroupIDs[gr.start])

	samples := e.cfg.GetNSamples()
	dt := e.cfg.GetSampleInterval()
	maxView := e.cfg.GetMaxViewingAngle()

	var triggers []rundb.Trigger
	for i := gr.start; i < gr.stop; i++ {
		if ds.ShowerEnergies[i] <= 0 {
			continue
		}
		shower, err := askaryan.NewShower(rng, ds.ShowerEnergies[i], ds.ShowerTypes[i])
		if err != nil {
			return nil, fmt.Errorf("event group %d: %w", ds.EventGroupIDs[i], err)
		}

		n := e.med.IndexOfRefraction(ds.ZZ[i])
		thetaC := math.Acos(1 / n)

		for _, ch := range e.channels {
			sols := raytrace.Trace(e.med, ds.XX[i], ds.YY[i], ds.ZZ[i], ch.X, ch.Y, ch.Z)
			for _, sol := range sols {
				view := raytrace.ViewingAngle(sol, ds.Zeniths[i], ds.Azimuths[i])
				if math.Abs(view-thetaC) > maxView {
					continue
				}
				tr, err := shower.TimeTrace(askaryan.TraceOptions{
					Theta:        view,
					Samples:      samples,
					Dt:           dt,
					NIndex:       n,
					Distance:     sol.PathLength,
					ShiftForXmax: true,
				})
				if err != nil {
					return nil, fmt.Errorf("event group %d: %w", ds.EventGroupIDs[i], err)
				}
				amp := maxAbs(tr.ETheta) * sol.Reflection
				if amp < effectiveThreshold(ch) {
					continue
				}
				triggers = append(triggers, rundb.Trigger{
					EventGroupID: ds.EventGroupIDs[i],
					ShowerID:     ds.ShowerIDs[i],
					StationID:    ch.StationID,
					ChannelID:    ch.ChannelID,
					Solution:     sol.Type,
					Amplitude:    amp,
					TravelTime:   sol.TravelTime,
					ViewingAngle: view,
					Weight:       weight,
				})
			}
		}
	}
	return triggers, nil
}

func maxAbs(x []float64) float64 {
	var m float64
	for _, v := range x {
		if a := math.Abs(v); a > m {
			m = a
		}
	}
	return m
}
