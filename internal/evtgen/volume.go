package evtgen

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/polarfield-data/radiomc/internal/event"
)

// Volume describes the region interaction vertices are sampled in, either a
// vertical cylinder around the origin or an axis-aligned box. Depths are
// negative z.
type Volume struct {
	RMin, RMax float64

	XMin, XMax float64
	YMin, YMax float64

	ZMin, ZMax float64
}

// Cylinder returns a cylindrical sampling volume.
func Cylinder(rmin, rmax, zmin, zmax float64) Volume {
	return Volume{RMin: rmin, RMax: rmax, ZMin: zmin, ZMax: zmax}
}

// Box returns a rectangular sampling volume.
func Box(xmin, xmax, ymin, ymax, zmin, zmax float64) Volume {
	return Volume{XMin: xmin, XMax: xmax, YMin: ymin, YMax: ymax, ZMin: zmin, ZMax: zmax}
}

// IsCylinder reports whether the volume is cylindrical.
func (v Volume) IsCylinder() bool { return v.RMax > 0 }

// Validate checks the bounds.
func (v Volume) Validate() error {
	if v.ZMax < v.ZMin {
		return fmt.Errorf("volume: zmax %g below zmin %g", v.ZMax, v.ZMin)
	}
	if v.IsCylinder() {
		if v.RMin < 0 || v.RMax <= v.RMin {
			return fmt.Errorf("volume: bad radii [%g, %g]", v.RMin, v.RMax)
		}
		return nil
	}
	if v.XMax <= v.XMin || v.YMax <= v.YMin {
		return fmt.Errorf("volume: bad box bounds")
	}
	return nil
}

// Size returns the volume in internal units.
func (v Volume) Size() float64 {
	h := v.ZMax - v.ZMin
	if v.IsCylinder() {
		return math.Pi * (v.RMax*v.RMax - v.RMin*v.RMin) * h
	}
	return (v.XMax - v.XMin) * (v.YMax - v.YMin) * h
}

// Sample draws a uniformly distributed point. Radii are sampled uniformly in
// r^2 so the density is flat across the cylinder.
func (v Volume) Sample(rng *rand.Rand) (x, y, z float64) {
	z = v.ZMin + rng.Float64()*(v.ZMax-v.ZMin)
	if v.IsCylinder() {
		r2 := v.RMin*v.RMin + rng.Float64()*(v.RMax*v.RMax-v.RMin*v.RMin)
		r := math.Sqrt(r2)
		phi := rng.Float64() * 2 * math.Pi
		return r * math.Cos(phi), r * math.Sin(phi), z
	}
	x = v.XMin + rng.Float64()*(v.XMax-v.XMin)
	y = v.YMin + rng.Float64()*(v.YMax-v.YMin)
	return x, y, z
}

// SampleSurface draws a point on the top face of the volume.
func (v Volume) SampleSurface(rng *rand.Rand) (x, y, z float64) {
	if v.IsCylinder() {
		r2 := v.RMin*v.RMin + rng.Float64()*(v.RMax*v.RMax-v.RMin*v.RMin)
		r := math.Sqrt(r2)
		phi := rng.Float64() * 2 * math.Pi
		return r * math.Cos(phi), r * math.Sin(phi), v.ZMax
	}
	x = v.XMin + rng.Float64()*(v.XMax-v.XMin)
	y = v.YMin + rng.Float64()*(v.YMax-v.YMin)
	return x, y, v.ZMax
}

// Contains reports whether the point lies inside the volume.
func (v Volume) Contains(x, y, z float64) bool {
	if z < v.ZMin || z > v.ZMax {
		return false
	}
	if v.IsCylinder() {
		r := math.Hypot(x, y)
		return r >= v.RMin && r <= v.RMax
	}
	return x >= v.XMin && x <= v.XMax && y >= v.YMin && y <= v.YMax
}

func (v Volume) fillAttributes(a *event.Attributes) {
	a.FiducialZMin = v.ZMin
	a.FiducialZMax = v.ZMax
	if v.IsCylinder() {
		a.FiducialRMin = v.RMin
		a.FiducialRMax = v.RMax
	} else {
		a.FiducialXMin = v.XMin
		a.FiducialXMax = v.XMax
		a.FiducialYMin = v.YMin
		a.FiducialYMax = v.YMax
	}
	a.Volume = v.Size()
}
