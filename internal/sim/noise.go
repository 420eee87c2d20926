package sim

import (
	"math"

	"github.com/polarfield-data/radiomc/internal/detector"
	"github.com/polarfield-data/radiomc/internal/units"
)

const (
	boltzmann       = 1.380649e-23 // J/K
	systemImpedance = 50.0         // ohm

	// effective antenna height relating field strength to voltage
	effectiveHeight = 1.0 * units.Meter

	// a channel never triggers below this multiple of its noise floor
	noiseSigma = 3.0
)

// NoiseRMS returns the thermal noise floor of a channel as an equivalent
// field strength, from the matched-load noise power of its temperature and
// bandwidth.
func NoiseRMS(temperatureK, bandwidth float64) float64 {
	bHz := bandwidth / units.Hertz
	v := math.Sqrt(boltzmann * temperatureK * systemImpedance * bHz)
	return v * units.Volt / effectiveHeight
}

// effectiveThreshold returns the trigger threshold of a channel, raised to
// the noise floor where the configured threshold dips below it.
func effectiveThreshold(ch detector.ResolvedChannel) float64 {
	floor := noiseSigma * NoiseRMS(ch.NoiseTemperature, ch.Bandwidth)
	if ch.TriggerThreshold > floor {
		return ch.TriggerThreshold
	}
	return floor
}
