// Package medium models the dielectric properties of the ice the radio
// signals propagate through.
package medium

import "math"

// Model gives the index of refraction as a function of depth. Depths are
// negative z in meters; z >= 0 is air.
type Model interface {
	// IndexOfRefraction returns n at depth z.
	IndexOfRefraction(z float64) float64
	// MeanIndex returns the average index along a straight line between
	// two depths, used for propagation times.
	MeanIndex(z1, z2 float64) float64
}

// Uniform is ice with a constant index of refraction.
type Uniform struct {
	N float64
}

func (u Uniform) IndexOfRefraction(z float64) float64 {
	if z > 0 {
		return 1
	}
	return u.N
}

func (u Uniform) MeanIndex(z1, z2 float64) float64 { return u.N }

// Exponential is the standard density profile with the firn transition,
// n(z) = nIce - deltaN * exp(z / z0).
type Exponential struct {
	NIce   float64
	DeltaN float64
	Z0     float64
}

// SouthPole returns the simple South Pole profile.
func SouthPole() Exponential {
	return Exponential{NIce: 1.78, DeltaN: 0.425, Z0: 71}
}

// Greenland returns the profile for the Greenland ice sheet.
func Greenland() Exponential {
	return Exponential{NIce: 1.78, DeltaN: 0.51, Z0: 37.25}
}

func (e Exponential) IndexOfRefraction(z float64) float64 {
	if z > 0 {
		return 1
	}
	return e.NIce - e.DeltaN*math.Exp(z/e.Z0)
}

// MeanIndex integrates the profile analytically between the two depths.
func (e Exponential) MeanIndex(z1, z2 float64) float64 {
	if z1 > z2 {
		z1, z2 = z2, z1
	}
	if z2 > 0 {
		z2 = 0
	}
	if z1 == z2 {
		return e.IndexOfRefraction(z1)
	}
	// integral of n(z) dz = nIce*z - deltaN*z0*exp(z/z0)
	anti := func(z float64) float64 {
		return e.NIce*z - e.DeltaN*e.Z0*math.Exp(z/e.Z0)
	}
	return (anti(z2) - anti(z1)) / (z2 - z1)
}
