package sim

import (
	"math"

	"github.com/polarfield-data/radiomc/internal/units"
)

// Earth absorption constants.
const (
	earthRadius  = 6371 * units.Kilometer
	avogadro     = 6.02214076e23 // nucleons per gram
	earthDensity = 5.51          // mean density in g/cm^3
)

// InteractionLength returns the neutrino-nucleon interaction length in
// average Earth matter, using a power law fit of the total cross section.
func InteractionLength(energy float64) float64 {
	sigma := 7.84e-36 * math.Pow(energy/units.GeV, 0.363) // cm^2
	return 1 / (sigma * avogadro * earthDensity) * units.Centimeter
}

// SimpleWeight returns the probability for a neutrino to survive the
// passage through the Earth. Downgoing events are unattenuated; upgoing
// events are weighted by the chord through a spherical Earth.
func SimpleWeight(zenith, energy float64) float64 {
	if zenith <= math.Pi/2 {
		return 1
	}
	chord := -2 * earthRadius * math.Cos(zenith)
	return math.Exp(-chord / InteractionLength(energy))
}
