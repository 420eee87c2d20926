// Package evtgen draws neutrino interactions for the simulation input files.
// It samples vertices, arrival directions, energies and interaction
// kinematics and packs them into an event dataset ready for writing.
package evtgen

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/polarfield-data/radiomc/internal/event"
	"github.com/polarfield-data/radiomc/internal/monitoring"
	"github.com/polarfield-data/radiomc/internal/randomness"
)

// Interaction selection for Params.Interaction.
const (
	InteractionAuto = "ccnc"
)

// ccFraction is the charged current fraction of the total neutrino-nucleon
// cross section at the energies of interest.
const ccFraction = 0.7064

// Inelasticity parametrization constants.
const (
	inelR1 = 0.36787944
	inelR2 = 0.64493502
)

// Params configures a generator run.
type Params struct {
	NEvents      int64
	StartEventID int64

	// Flavors lists the PDG codes to draw from. Empty means all six
	// neutrino flavors in equal parts.
	Flavors []int32

	EMin, EMax float64
	Spectrum   string // see DrawEnergies; empty means log_uniform

	ThetaMin, ThetaMax float64 // zenith range; zero ThetaMax means [0, pi]
	PhiMin, PhiMax     float64 // azimuth range; zero PhiMax means [0, 2pi]

	Volume Volume

	// Deposited treats the sampled energy as the deposited shower energy
	// instead of the neutrino energy.
	Deposited bool

	// Interaction forces "cc" or "nc"; InteractionAuto draws from the
	// cross section ratio.
	Interaction string
}

func (p *Params) setDefaults() error {
	if p.NEvents <= 0 {
		return fmt.Errorf("generate: n_events must be positive, got %d", p.NEvents)
	}
	if len(p.Flavors) == 0 {
		p.Flavors = []int32{
			event.FlavorNuE, -event.FlavorNuE,
			event.FlavorNuMu, -event.FlavorNuMu,
			event.FlavorNuTau, -event.FlavorNuTau,
		}
	}
	if p.Spectrum == "" {
		p.Spectrum = SpectrumLogUniform
	}
	if p.ThetaMax == 0 {
		p.ThetaMax = math.Pi
	}
	if p.PhiMax == 0 {
		p.PhiMax = 2 * math.Pi
	}
	if p.Interaction == "" {
		p.Interaction = InteractionAuto
	}
	if p.Interaction != InteractionAuto && p.Interaction != event.InteractionCC && p.Interaction != event.InteractionNC {
		return fmt.Errorf("generate: unknown interaction mode %q", p.Interaction)
	}
	return p.Volume.Validate()
}

func (p *Params) attributes() event.Attributes {
	a := event.Attributes{
		NEvents:             p.NEvents,
		TotalNumberOfEvents: p.NEvents,
		StartEventID:        p.StartEventID,
		Flavors:             p.Flavors,
		EMin:                p.EMin,
		EMax:                p.EMax,
		ThetaMin:            p.ThetaMin,
		ThetaMax:            p.ThetaMax,
		PhiMin:              p.PhiMin,
		PhiMax:              p.PhiMax,
		Deposited:           p.Deposited,
	}
	p.Volume.fillAttributes(&a)
	return a
}

// drawZenith samples an isotropic arrival direction, uniform in cos(theta).
func drawZenith(rng *rand.Rand, thetaMin, thetaMax float64) float64 {
	cMin := math.Cos(thetaMax)
	cMax := math.Cos(thetaMin)
	return math.Acos(cMin + rng.Float64()*(cMax-cMin))
}

// drawInelasticity samples the energy fraction transferred to the hadronic
// system.
func drawInelasticity(rng *rand.Rand) float64 {
	for {
		a := inelR1 + rng.Float64()*inelR2
		if a < 1 {
			return math.Pow(-math.Log(a), 2.5)
		}
	}
}

func drawInteraction(rng *rand.Rand, mode string) string {
	switch mode {
	case event.InteractionCC, event.InteractionNC:
		return mode
	}
	if rng.Float64() <= ccFraction {
		return event.InteractionCC
	}
	return event.InteractionNC
}

// GenerateEventList draws NEvents neutrino interactions. Every interaction
// produces a hadronic shower carrying the inelasticity fraction of the
// neutrino energy; electron neutrino charged current events additionally
// produce an electromagnetic shower from the outgoing electron, stored as a
// second row of the same event group.
func GenerateEventList(p Params) (*event.Dataset, error) {
	if err := p.setDefaults(); err != nil {
		return nil, err
	}
	rng := randomness.Module("generator")

	energies, err := DrawEnergies(rng, int(p.NEvents), p.EMin, p.EMax, p.Spectrum)
	if err != nil {
		return nil, err
	}

	ds := &event.Dataset{Attrs: p.attributes()}
	showerID := int64(0)
	for i := int64(0); i < p.NEvents; i++ {
		gid := p.StartEventID + i
		vx, vy, vz := p.Volume.Sample(rng)
		zenith := drawZenith(rng, p.ThetaMin, p.ThetaMax)
		azimuth := p.PhiMin + rng.Float64()*(p.PhiMax-p.PhiMin)
		flavor := p.Flavors[rng.Intn(len(p.Flavors))]
		inter := drawInteraction(rng, p.Interaction)
		y := drawInelasticity(rng)

		enu := energies[i]
		if p.Deposited {
			enu = neutrinoEnergyFromDeposited(energies[i], flavor, inter, y)
		}

		appendShower(ds, gid, showerID, 1, vx, vy, vz, zenith, azimuth,
			flavor, enu, enu*y, event.ShowerHadronic, inter, y)
		showerID++

		if inter == event.InteractionCC && abs32(flavor) == event.FlavorNuE {
			appendShower(ds, gid, showerID, 1, vx, vy, vz, zenith, azimuth,
				flavor, enu, enu*(1-y), event.ShowerElectromagnetic, inter, y)
			showerID++
		}
	}
	monitoring.Logf("generated %d events with %d showers", p.NEvents, ds.Len())
	return ds, nil
}

// neutrinoEnergyFromDeposited inverts the visible energy relation: neutral
// current events and muon or tau charged current events only deposit the
// hadronic fraction, while electron charged current events deposit
// everything.
func neutrinoEnergyFromDeposited(edep float64, flavor int32, inter string, y float64) float64 {
	if inter == event.InteractionCC && abs32(flavor) == event.FlavorNuE {
		return edep
	}
	if y <= 0 {
		return edep
	}
	return edep / y
}

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}

// Atmospheric muon generation constants. Radiative losses are modeled as at
// most one catastrophic stochastic loss per track, with an interaction
// length lambda and a 1/v loss fraction spectrum above vMin.
const (
	muonLossLength = 2500.0 // meter
	muonLossVMin   = 1e-3
)

// GenerateSurfaceMuons draws atmospheric muons entering through the top
// surface of the volume. A muon row carries an empty interaction type and
// zero inelasticity; when the track produces no shower inside the volume a
// placeholder row with zero shower energy keeps the event group accounted
// for in the file bookkeeping.
func GenerateSurfaceMuons(p Params) (*event.Dataset, error) {
	if len(p.Flavors) == 0 {
		p.Flavors = []int32{event.FlavorMu, -event.FlavorMu}
	}
	if p.ThetaMax == 0 {
		p.ThetaMax = math.Pi / 2
	}
	if err := p.setDefaults(); err != nil {
		return nil, err
	}
	rng := randomness.Module("generator_muons")

	energies, err := DrawEnergies(rng, int(p.NEvents), p.EMin, p.EMax, p.Spectrum)
	if err != nil {
		return nil, err
	}

	ds := &event.Dataset{Attrs: p.attributes()}
	showerID := int64(0)
	for i := int64(0); i < p.NEvents; i++ {
		gid := p.StartEventID + i
		ex, ey, ez := p.Volume.SampleSurface(rng)
		zenith := drawMuonZenith(rng, p.ThetaMin, p.ThetaMax)
		azimuth := p.PhiMin + rng.Float64()*(p.PhiMax-p.PhiMin)
		flavor := p.Flavors[rng.Intn(len(p.Flavors))]
		emu := energies[i]

		sx, sy, sz, eloss, ok := muonShower(rng, p.Volume, ex, ey, ez, zenith, azimuth, emu)
		if !ok {
			// placeholder so the group id still appears in the file
			appendShower(ds, gid, showerID, 1, ex, ey, ez, zenith, azimuth,
				event.FlavorNuMu, emu, 0, event.ShowerHadronic, "", 0)
			showerID++
			continue
		}
		appendShower(ds, gid, showerID, 1, sx, sy, sz, zenith, azimuth,
			flavor, emu, eloss, event.ShowerHadronic, "", 0)
		showerID++
	}
	monitoring.Logf("generated %d surface muons with %d showers", p.NEvents, ds.Len())
	return ds, nil
}

// drawMuonZenith weights the isotropic flux with the projection onto the
// horizontal entry surface.
func drawMuonZenith(rng *rand.Rand, thetaMin, thetaMax float64) float64 {
	sMin := math.Sin(thetaMin)
	sMax := math.Sin(thetaMax)
	u := sMin*sMin + rng.Float64()*(sMax*sMax-sMin*sMin)
	return math.Asin(math.Sqrt(u))
}

// muonShower propagates a muon from its entry point down through the volume
// and draws a stochastic energy loss along the contained part of the track.
func muonShower(rng *rand.Rand, vol Volume, ex, ey, ez, zenith, azimuth, emu float64) (x, y, z, eloss float64, ok bool) {
	// travel direction: the zenith names where the muon comes from
	dx := -math.Sin(zenith) * math.Cos(azimuth)
	dy := -math.Sin(zenith) * math.Sin(azimuth)
	dz := -math.Cos(zenith)

	// contained path length by stepping, which handles the cylinder wall
	const step = 10.0 // meter
	var path float64
	for t := step; ; t += step {
		if !vol.Contains(ex+t*dx, ey+t*dy, ez+t*dz) {
			path = t - step
			break
		}
	}
	if path <= 0 {
		return 0, 0, 0, 0, false
	}
	if rng.Float64() > 1-math.Exp(-path/muonLossLength) {
		return 0, 0, 0, 0, false
	}
	t := rng.Float64() * path
	v := math.Pow(muonLossVMin, rng.Float64())
	return ex + t*dx, ey + t*dy, ez + t*dz, v * emu, true
}

func appendShower(ds *event.Dataset, gid, sid int64, nInt int32, x, y, z, zenith, azimuth float64,
	flavor int32, energy, showerEnergy float64, showerType, inter string, inelasticity float64) {
	ds.EventGroupIDs = append(ds.EventGroupIDs, gid)
	ds.ShowerIDs = append(ds.ShowerIDs, sid)
	ds.NInteraction = append(ds.NInteraction, nInt)
	ds.XX = append(ds.XX, x)
	ds.YY = append(ds.YY, y)
	ds.ZZ = append(ds.ZZ, z)
	ds.VertexTimes = append(ds.VertexTimes, 0)
	ds.Zeniths = append(ds.Zeniths, zenith)
	ds.Azimuths = append(ds.Azimuths, azimuth)
	ds.Flavors = append(ds.Flavors, flavor)
	ds.Energies = append(ds.Energies, energy)
	ds.ShowerEnergies = append(ds.ShowerEnergies, showerEnergy)
	ds.ShowerTypes = append(ds.ShowerTypes, showerType)
	ds.InteractionType = append(ds.InteractionType, inter)
	ds.Inelasticity = append(ds.Inelasticity, inelasticity)
}
