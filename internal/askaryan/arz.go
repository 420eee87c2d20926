// Package askaryan computes the radio emission of particle showers in ice.
// The electric field follows the parametrization of Alvarez-Muniz,
// Romero-Wolf and Zas (Phys. Rev. D 84, 103003), evaluating the vector
// potential as a convolution of the charge-excess profile with the
// Cherenkov-cone form factor.
package askaryan

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/integrate"

	"github.com/polarfield-data/radiomc/internal/event"
	"github.com/polarfield-data/radiomc/internal/units"
)

// Form factor amplitudes, refit to ZHAireS simulations.
const (
	afEM  = -4.5e-14 * 0.88 * units.Volt * units.Second
	afHad = -3.2e-14 * units.Volt * units.Second
)

// formFactor evaluates RA_C(t), the Fourier pair of the Cherenkov cone
// emission, at time t for a shower of the given energy.
func formFactor(t, energy float64, showerType string) float64 {
	eTeV := energy / units.TeV
	at := math.Abs(t)
	switch showerType {
	case event.ShowerHadronic:
		if t > 0 {
			return afHad * eTeV * (math.Exp(-at/(0.065*units.Nanosecond)) +
				math.Pow(1+3.00*at/units.Nanosecond, -2.65))
		}
		return afHad * eTeV * (math.Exp(-at/(0.043*units.Nanosecond)) +
			math.Pow(1+2.92*at/units.Nanosecond, -3.21))
	case event.ShowerElectromagnetic:
		if t > 0 {
			return afEM * eTeV * (math.Exp(-at/(0.057*units.Nanosecond)) +
				math.Pow(1+2.87*at/units.Nanosecond, -3.00))
		}
		return afEM * eTeV * (math.Exp(-at/(0.030*units.Nanosecond)) +
			math.Pow(1+3.05*at/units.Nanosecond, -3.50))
	}
	return 0
}

// ThetaFromXmaxFrame converts a viewing angle measured against the shower
// maximum into one measured against the start of the profile.
func ThetaFromXmaxFrame(thetaprime, xmax, distance float64) float64 {
	l := xmax / rhoShower
	return thetaprime - math.Asin(l*math.Sin(math.Pi-thetaprime)/distance)
}

// ThetaToXmaxFrame converts a viewing angle measured against the start of
// the profile into one measured against the shower maximum.
func ThetaToXmaxFrame(theta, xmax, distance float64) float64 {
	l := xmax / rhoShower
	return math.Atan2(distance*math.Sin(theta), distance*math.Cos(theta)-l)
}

// TraceOptions configures one emission calculation.
type TraceOptions struct {
	Energy     float64 // shower energy
	Theta      float64 // viewing angle against the shower axis, from the profile start
	Samples    int     // number of time samples of the field trace
	Dt         float64 // sampling interval
	ShowerType string
	NIndex     float64 // index of refraction at the vertex
	Distance   float64 // propagation path length, scales the amplitude as 1/R

	// ShiftForXmax places the observer relative to the shower maximum
	// instead of the profile start.
	ShiftForXmax bool
	// SameShower reuses the previous shower realization of this type.
	SameShower bool
}

// Trace is an electric field trace in on-sky polarization components.
type Trace struct {
	ER, ETheta, EPhi []float64
}

// Shower is one shower realization. All traces computed from it share the
// same longitudinal profile, as required when feeding several propagation
// paths of the same interaction.
type Shower struct {
	energy     float64
	showerType string
	prof       *profile
}

// NewShower draws a fresh realization from the given stream. Callers that
// distribute showers across goroutines pass a per-event stream so the
// realizations do not depend on scheduling order.
func NewShower(rng *rand.Rand, energy float64, showerType string) (*Shower, error) {
	prof, err := shiftedProfile(energy, showerType, drawXmaxShift(rng, showerType))
	if err != nil {
		return nil, err
	}
	return &Shower{energy: energy, showerType: showerType, prof: prof}, nil
}

// TimeTrace computes the field pulse of this realization; the energy and
// shower type of the options are taken from the realization.
func (s *Shower) TimeTrace(o TraceOptions) (*Trace, error) {
	o.Energy = s.energy
	o.ShowerType = s.showerType
	return timeTrace(o, s.prof)
}

// TimeTrace computes the Askaryan electric field pulse seen by an observer.
func (g *Generator) TimeTrace(o TraceOptions) (*Trace, error) {
	prof, err := g.showerProfile(o.Energy, o.ShowerType, o.SameShower)
	if err != nil {
		return nil, err
	}
	return timeTrace(o, prof)
}

func timeTrace(o TraceOptions, prof *profile) (*Trace, error) {
	if o.Samples <= 0 || o.Dt <= 0 {
		return nil, fmt.Errorf("askaryan: need positive sample count and interval")
	}
	if o.NIndex <= 1 || o.Distance <= 0 {
		return nil, fmt.Errorf("askaryan: bad geometry: n=%g, distance=%g", o.NIndex, o.Distance)
	}
	xmax := prof.xmax()

	a := vectorPotential(o, prof)

	// the field is the (negative) time derivative of the vector potential
	n := o.Samples
	tr := &Trace{
		ER:     make([]float64, n),
		ETheta: make([]float64, n),
		EPhi:   make([]float64, n),
	}
	// rotate into on-sky components using the viewing angle at the shower
	// maximum, which minimizes the radial field component
	tp := ThetaToXmaxFrame(o.Theta, xmax, o.Distance)
	sin, cos := math.Sin(tp), math.Cos(tp)
	for i := 0; i < n; i++ {
		ex := -(a[0][i+1] - a[0][i]) / o.Dt
		ey := -(a[1][i+1] - a[1][i]) / o.Dt
		ez := -(a[2][i+1] - a[2][i]) / o.Dt
		tr.ER[i] = sin*ex + cos*ez
		tr.ETheta[i] = cos*ex - sin*ez
		tr.EPhi[i] = ey
	}
	return tr, nil
}

// vectorPotential evaluates the three cartesian components of the vector
// potential on n+1 time samples centered on the signal arrival, following
// the convolution formulation of the ARZ parametrization.
func vectorPotential(o TraceOptions, prof *profile) [3][]float64 {
	n := o.Samples + 1
	tStart := 0.5*o.Dt - float64(n)*o.Dt/2

	zToT := (1 - o.NIndex*math.Cos(o.Theta)) / units.C
	// degenerate exactly on the Cherenkov cone
	const minZToT = 1e-3 / units.C
	if math.Abs(zToT) < minZToT {
		zToT = math.Copysign(minZToT, zToT)
	}

	length := make([]float64, len(prof.depth))
	for i, d := range prof.depth {
		length[i] = d / rhoShower
	}
	zMax := length[len(length)-1]
	dxmax := prof.xmax() / rhoShower

	// refine the z-step until it resolves both the shower profile and the
	// width of the form factor
	dividerQ := int(math.Trunc(math.Abs(1000*o.Dt/zMax/zToT))) + 1
	dividerRAC := int(math.Trunc(math.Abs(o.Dt/(10*units.Picosecond)))) + 1
	divider := dividerQ
	if dividerRAC > divider {
		divider = dividerRAC
	}
	dz := o.Dt / float64(divider) / zToT

	nQ := 2 * int(math.Abs(zMax/dz))
	nQNeg := nQ / 2
	zQ := make([]float64, nQ)
	q := make([]float64, nQ)
	sign := math.Copysign(1, zToT)
	for i := range zQ {
		zQ[i] = float64(i-nQNeg) * math.Abs(dz)
		q[i] = interpClamped(sign*zQ[i], length, prof.ce)
	}

	// size the form factor window to cover 10 ns around its peak
	const tTolerance = 10 * units.Nanosecond
	nExtraBegin := int(math.Trunc((tStart+tTolerance)/dz/zToT)) + 1
	nExtraEnd := int(math.Trunc((tTolerance-tStart)/dz/zToT)) + 1 + nQ - n*divider
	nRAC := n*divider + 1 - nQ + nQNeg + nExtraBegin + nExtraEnd
	rac := make([]float64, nRAC)
	for i := range rac {
		t := float64(i)*dz*zToT + tStart - float64(nExtraBegin)*dz*zToT
		rac[i] = formFactor(t, o.Energy, o.ShowerType)
	}

	// polarization of the vector potential at the observer
	obsZ := o.Distance * math.Cos(o.Theta)
	if o.ShiftForXmax {
		obsZ += dxmax
	}
	ux := math.Sin(o.Theta)
	var qv [3][]float64
	for c := range qv {
		qv[c] = make([]float64, nQ)
	}
	for i := range zQ {
		uz := (obsZ - zQ[i]) / o.Distance
		qv[0][i] = q[i] * ux * uz
		qv[1][i] = 0
		qv[2][i] = q[i] * -(ux * ux)
	}

	trim := func(conv []float64) []float64 {
		begin := nExtraBegin + nQNeg
		if begin < 0 {
			conv = append(make([]float64, -begin), conv...)
		} else {
			conv = conv[begin:]
		}
		if nExtraEnd <= 0 {
			conv = append(conv, make([]float64, -nExtraEnd)...)
		} else {
			conv = conv[:len(conv)-nExtraEnd]
		}
		return conv
	}

	// excess longitudinal track length, signed like the z-step
	zGrid := make([]float64, nQ)
	for i := range zGrid {
		zGrid[i] = float64(i) * math.Abs(dz)
	}
	lqTot := math.Copysign(1, dz) * integrate.Trapezoidal(zGrid, q)
	sinThetaC := math.Sqrt(1 - 1/(o.NIndex*o.NIndex))
	scale := -1 / sinThetaC / lqTot / zToT / float64(divider) * o.Dt / o.Distance

	var a [3][]float64
	for c := range a {
		conv := trim(fftConvolve(qv[c], rac))
		conv = resample(conv, n)
		for i := range conv {
			conv[i] *= scale
		}
		a[c] = conv
	}
	return a
}
