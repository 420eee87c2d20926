// Package event defines the in-memory representation of a simulated event
// set: one row per shower, grouped into events by group id, plus the run
// attributes carried alongside the data in every file.
package event

import (
	"fmt"
	"math"
)

// PDG particle codes for the flavors handled by the generator.
// Anti-particles carry a negative sign.
const (
	FlavorNuE   = 12
	FlavorNuMu  = 14
	FlavorNuTau = 16
	FlavorMu    = 13
)

// Shower types.
const (
	ShowerHadronic        = "had"
	ShowerElectromagnetic = "em"
)

// Interaction types.
const (
	InteractionCC = "cc"
	InteractionNC = "nc"
)

// Dataset holds the per-shower columns of an event set. All slices have the
// same length; several rows may share an event group id when one neutrino
// interaction produces more than one shower.
type Dataset struct {
	EventGroupIDs   []int64
	ShowerIDs       []int64
	NInteraction    []int32
	XX              []float64
	YY              []float64
	ZZ              []float64
	VertexTimes     []float64
	Zeniths         []float64
	Azimuths        []float64
	Flavors         []int32
	Energies        []float64
	ShowerEnergies  []float64
	ShowerTypes     []string
	InteractionType []string
	Inelasticity    []float64

	Attrs Attributes
}

// Attributes carries the run metadata stored with every event file.
type Attributes struct {
	VersionMajor int
	VersionMinor int

	NEvents             int64 // events described by this file
	TotalNumberOfEvents int64 // events in the whole run, across all files
	StartEventID        int64

	Flavors []int32
	EMin    float64
	EMax    float64

	ThetaMin float64
	ThetaMax float64
	PhiMin   float64
	PhiMax   float64

	Deposited bool

	// Volume bounds. A cylinder sets RMin/RMax, a box sets XMin..YMax;
	// both set ZMin/ZMax. Volume is the sampled volume in m^3.
	FiducialRMin float64
	FiducialRMax float64
	FiducialXMin float64
	FiducialXMax float64
	FiducialYMin float64
	FiducialYMax float64
	FiducialZMin float64
	FiducialZMax float64
	Volume       float64
}

// Len returns the number of shower rows.
func (d *Dataset) Len() int { return len(d.EventGroupIDs) }

// Validate checks that all columns have equal length.
func (d *Dataset) Validate() error {
	n := d.Len()
	cols := map[string]int{
		"shower_ids":       len(d.ShowerIDs),
		"n_interaction":    len(d.NInteraction),
		"xx":               len(d.XX),
		"yy":               len(d.YY),
		"zz":               len(d.ZZ),
		"vertex_times":     len(d.VertexTimes),
		"zeniths":          len(d.Zeniths),
		"azimuths":         len(d.Azimuths),
		"flavors":          len(d.Flavors),
		"energies":         len(d.Energies),
		"shower_energies":  len(d.ShowerEnergies),
		"shower_type":      len(d.ShowerTypes),
		"interaction_type": len(d.InteractionType),
		"inelasticity":     len(d.Inelasticity),
	}
	for name, l := range cols {
		if l != n {
			return fmt.Errorf("column %s has %d rows, event_group_ids has %d", name, l, n)
		}
	}
	return nil
}

// UniqueGroupIDs returns the distinct event group ids in first-seen order.
// Group ids are assigned monotonically by the generator, so first-seen order
// is ascending order.
func (d *Dataset) UniqueGroupIDs() []int64 {
	seen := make(map[int64]bool, len(d.EventGroupIDs))
	var ids []int64
	for _, id := range d.EventGroupIDs {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids
}

// Slice returns a shallow copy of rows [start, stop) sharing the attributes.
func (d *Dataset) Slice(start, stop int) *Dataset {
	out := &Dataset{
		EventGroupIDs:   d.EventGroupIDs[start:stop],
		ShowerIDs:       d.ShowerIDs[start:stop],
		NInteraction:    d.NInteraction[start:stop],
		XX:              d.XX[start:stop],
		YY:              d.YY[start:stop],
		ZZ:              d.ZZ[start:stop],
		VertexTimes:     d.VertexTimes[start:stop],
		Zeniths:         d.Zeniths[start:stop],
		Azimuths:        d.Azimuths[start:stop],
		Flavors:         d.Flavors[start:stop],
		Energies:        d.Energies[start:stop],
		ShowerEnergies:  d.ShowerEnergies[start:stop],
		ShowerTypes:     d.ShowerTypes[start:stop],
		InteractionType: d.InteractionType[start:stop],
		Inelasticity:    d.Inelasticity[start:stop],
		Attrs:           d.Attrs,
	}
	return out
}

// Append adds all rows of other to d. Attributes are left untouched.
func (d *Dataset) Append(other *Dataset) {
	d.EventGroupIDs = append(d.EventGroupIDs, other.EventGroupIDs...)
	d.ShowerIDs = append(d.ShowerIDs, other.ShowerIDs...)
	d.NInteraction = append(d.NInteraction, other.NInteraction...)
	d.XX = append(d.XX, other.XX...)
	d.YY = append(d.YY, other.YY...)
	d.ZZ = append(d.ZZ, other.ZZ...)
	d.VertexTimes = append(d.VertexTimes, other.VertexTimes...)
	d.Zeniths = append(d.Zeniths, other.Zeniths...)
	d.Azimuths = append(d.Azimuths, other.Azimuths...)
	d.Flavors = append(d.Flavors, other.Flavors...)
	d.Energies = append(d.Energies, other.Energies...)
	d.ShowerEnergies = append(d.ShowerEnergies, other.ShowerEnergies...)
	d.ShowerTypes = append(d.ShowerTypes, other.ShowerTypes...)
	d.InteractionType = append(d.InteractionType, other.InteractionType...)
	d.Inelasticity = append(d.Inelasticity, other.Inelasticity...)
}

// Direction returns the unit vector of travel for row i. Zenith and azimuth
// point back to where the particle came from, so the direction of propagation
// is the negated spherical unit vector.
func (d *Dataset) Direction(i int) (x, y, z float64) {
	theta := d.Zeniths[i]
	phi := d.Azimuths[i]
	return -math.Sin(theta) * math.Cos(phi),
		-math.Sin(theta) * math.Sin(phi),
		-math.Cos(theta)
}
