// Package raytrace finds propagation paths from an emission vertex to a
// receiver inside the ice. Rays are traced as straight lines with the
// propagation time averaged over the local index of refraction, which keeps
// the geometry analytic; a direct path and a surface-reflected path are
// considered.
package raytrace

import (
	"math"

	"github.com/polarfield-data/radiomc/internal/medium"
	"github.com/polarfield-data/radiomc/internal/units"
)

// Solution types.
const (
	Direct    = "direct"
	Reflected = "reflected"
)

// Solution describes one propagation path.
type Solution struct {
	Type string

	// Launch is the unit direction the signal leaves the vertex with.
	Launch [3]float64
	// Receive is the unit direction the signal arrives at the receiver
	// with.
	Receive [3]float64

	PathLength float64
	TravelTime float64

	// Reflection is the field amplitude factor picked up at the surface,
	// 1 for the direct path and for total internal reflection.
	Reflection float64
}

// Trace returns the propagation solutions from the vertex to the receiver.
// Both points must be in the ice (z <= 0); vertices above the surface have
// no solutions.
func Trace(m medium.Model, vx, vy, vz, rx, ry, rz float64) []Solution {
	if vz > 0 || rz > 0 {
		return nil
	}

	var sols []Solution

	dx, dy, dz := rx-vx, ry-vy, rz-vz
	l := math.Sqrt(dx*dx + dy*dy + dz*dz)
	if l > 0 {
		n := m.MeanIndex(vz, rz)
		sols = append(sols, Solution{
			Type:       Direct,
			Launch:     [3]float64{dx / l, dy / l, dz / l},
			Receive:    [3]float64{dx / l, dy / l, dz / l},
			PathLength: l,
			TravelTime: l * n / units.C,
			Reflection: 1,
		})
	}

	if s, ok := reflected(m, vx, vy, vz, rx, ry, rz); ok {
		sols = append(sols, s)
	}
	return sols
}

// reflected mirrors the receiver at the ice surface and traces the straight
// path to the image, splitting the propagation time at the surface hit.
func reflected(m medium.Model, vx, vy, vz, rx, ry, rz float64) (Solution, bool) {
	if vz == 0 && rz == 0 {
		return Solution{}, false
	}
	ix, iy, iz := rx, ry, -rz

	dx, dy, dz := ix-vx, iy-vy, iz-vz
	l := math.Sqrt(dx*dx + dy*dy + dz*dz)
	if l == 0 || dz <= 0 {
		return Solution{}, false
	}

	// surface hit point at z = 0
	t := -vz / dz
	sx, sy := vx+t*dx, vy+t*dy
	up := [3]float64{dx / l, dy / l, dz / l}

	l1 := math.Sqrt((sx-vx)*(sx-vx) + (sy-vy)*(sy-vy) + vz*vz)
	l2 := l - l1
	n1 := m.MeanIndex(vz, 0)
	n2 := m.MeanIndex(0, rz)
	time := (l1*n1 + l2*n2) / units.C

	// incidence angle against the surface normal
	cosI := up[2]
	nSurf := m.IndexOfRefraction(-1e-3)
	refl := fresnel(cosI, nSurf)

	down := [3]float64{up[0], up[1], -up[2]}
	return Solution{
		Type:       Reflected,
		Launch:     up,
		Receive:    down,
		PathLength: l,
		TravelTime: time,
		Reflection: refl,
	}, true
}

// fresnel returns the magnitude of the perpendicular polarization
// reflection coefficient at the ice-air boundary. Beyond the critical angle
// the reflection is total.
func fresnel(cosI, n float64) float64 {
	sinI := math.Sqrt(1 - cosI*cosI)
	sinT := n * sinI // Snell, into air with n = 1
	if sinT >= 1 {
		return 1
	}
	cosT := math.Sqrt(1 - sinT*sinT)
	r := (n*cosI - cosT) / (n*cosI + cosT)
	return math.Abs(r)
}

// ViewingAngle returns the angle between the shower axis and the launch
// direction of a solution. The zenith and azimuth give the arrival
// direction of the primary, so the shower moves along the negated
// direction vector.
func ViewingAngle(s Solution, zenith, azimuth float64) float64 {
	ax := -math.Sin(zenith) * math.Cos(azimuth)
	ay := -math.Sin(zenith) * math.Sin(azimuth)
	az := -math.Cos(zenith)
	dot := ax*s.Launch[0] + ay*s.Launch[1] + az*s.Launch[2]
	if dot > 1 {
		dot = 1
	} else if dot < -1 {
		dot = -1
	}
	return math.Acos(dot)
}
