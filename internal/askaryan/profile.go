package askaryan

import (
	"fmt"
	"math"
	"math/rand"
	"sync"

	"github.com/polarfield-data/radiomc/internal/event"
	"github.com/polarfield-data/radiomc/internal/randomness"
	"github.com/polarfield-data/radiomc/internal/units"
)

// Charge-excess profile parameters. Depths are in g/cm^2.
const (
	radiationLength = 36.08 * units.Gram / (units.Centimeter * units.Centimeter)
	criticalEnergy  = 79.0255 * units.MeV

	gaisserHillasLambda = 70 * units.Gram / (units.Centimeter * units.Centimeter)

	profileMaxDepth = 3000 * units.Gram / (units.Centimeter * units.Centimeter)
	profileStep     = 5 * units.Gram / (units.Centimeter * units.Centimeter)

	// shower-to-shower fluctuation of the depth of the maximum
	xmaxSigmaEM  = 30 * units.Gram / (units.Centimeter * units.Centimeter)
	xmaxSigmaHad = 60 * units.Gram / (units.Centimeter * units.Centimeter)
)

// rhoShower is the ice density the charge-excess profiles are tabulated for,
// used to convert shower depth to geometric length.
const rhoShower = 0.924 * units.Gram / (units.Centimeter * units.Centimeter * units.Centimeter)

// profile is a charge-excess profile sampled along the shower depth. The
// absolute normalization is arbitrary, the emission model divides it out.
type profile struct {
	depth []float64
	ce    []float64
}

func (p *profile) xmax() float64 {
	iMax := 0
	for i, v := range p.ce {
		if v > p.ce[iMax] {
			iMax = i
		}
	}
	return p.depth[iMax]
}

// Generator produces shower realizations and the Askaryan emission they
// give rise to. Realizations fluctuate in the depth of the shower maximum;
// a request with SameShower set reuses the previous realization of the same
// shower type, which is needed to feed both propagation solutions of one
// shower with identical emission.
type Generator struct {
	mu        sync.Mutex
	rng       *rand.Rand
	lastShift map[string]float64
}

// NewGenerator returns a Generator drawing from the askaryan random stream.
func NewGenerator() *Generator {
	return &Generator{
		rng:       randomness.Module("askaryan"),
		lastShift: make(map[string]float64),
	}
}

func (g *Generator) xmaxShift(showerType string, sameShower bool) float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	if sameShower {
		if s, ok := g.lastShift[showerType]; ok {
			return s
		}
	}
	s := drawXmaxShift(g.rng, showerType)
	g.lastShift[showerType] = s
	return s
}

func drawXmaxShift(rng *rand.Rand, showerType string) float64 {
	sigma := xmaxSigmaHad
	if showerType == event.ShowerElectromagnetic {
		sigma = xmaxSigmaEM
	}
	return rng.NormFloat64() * sigma
}

// showerProfile returns a charge-excess realization for the given shower.
func (g *Generator) showerProfile(energy float64, showerType string, sameShower bool) (*profile, error) {
	return shiftedProfile(energy, showerType, g.xmaxShift(showerType, sameShower))
}

func shiftedProfile(energy float64, showerType string, shift float64) (*profile, error) {
	switch showerType {
	case event.ShowerElectromagnetic:
		xmax := radiationLength * math.Log(energy/criticalEnergy)
		return greisen(xmax + shift), nil
	case event.ShowerHadronic:
		xmax := (400 + 58*math.Log10(energy/units.PeV)) * units.Gram / (units.Centimeter * units.Centimeter)
		return gaisserHillas(xmax + shift), nil
	}
	return nil, fmt.Errorf("askaryan: unknown shower type %q", showerType)
}

// greisen is the analytic longitudinal profile of electromagnetic showers.
func greisen(xmax float64) *profile {
	p := newProfileGrid()
	for i, x := range p.depth {
		if x == 0 {
			continue
		}
		t := x / radiationLength
		s := 3 * x / (x + 2*xmax)
		p.ce[i] = math.Exp(t * (1 - 1.5*math.Log(s)))
	}
	return p
}

// gaisserHillas is the longitudinal profile of hadronic showers, with the
// first interaction pinned to the profile start.
func gaisserHillas(xmax float64) *profile {
	p := newProfileGrid()
	for i, x := range p.depth {
		if x == 0 {
			continue
		}
		p.ce[i] = math.Pow(x/xmax, xmax/gaisserHillasLambda) *
			math.Exp((xmax-x)/gaisserHillasLambda)
	}
	return p
}

func newProfileGrid() *profile {
	n := int(profileMaxDepth/profileStep) + 1
	p := &profile{
		depth: make([]float64, n),
		ce:    make([]float64, n),
	}
	for i := range p.depth {
		p.depth[i] = float64(i) * profileStep
	}
	return p
}
