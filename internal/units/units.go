// Package units provides the shared physical unit system used throughout the
// simulation. All internal quantities are expressed in the base units of
// meters, nanoseconds, electron volts, volts and radians; multiplying a value
// by its unit constant converts it into the internal representation, dividing
// converts it back.
package units

import "math"

// Length units. Base unit: meter.
const (
	Meter      = 1.0
	Millimeter = 1e-3 * Meter
	Centimeter = 1e-2 * Meter
	Kilometer  = 1e3 * Meter
)

// Time units. Base unit: nanosecond.
const (
	Nanosecond  = 1.0
	Femtosecond = 1e-6 * Nanosecond
	Picosecond  = 1e-3 * Nanosecond
	Microsecond = 1e3 * Nanosecond
	Millisecond = 1e6 * Nanosecond
	Second      = 1e9 * Nanosecond
)

// Energy units. Base unit: electron volt.
const (
	EV  = 1.0
	KeV = 1e3 * EV
	MeV = 1e6 * EV
	GeV = 1e9 * EV
	TeV = 1e12 * EV
	PeV = 1e15 * EV
	EeV = 1e18 * EV
)

// Voltage units. Base unit: volt.
const (
	Volt      = 1.0
	MilliVolt = 1e-3 * Volt
	MicroVolt = 1e-6 * Volt
)

// Angle units. Base unit: radian.
const (
	Rad = 1.0
	Deg = math.Pi / 180.0 * Rad
)

// Frequency units derived from the time base.
const (
	Hertz     = 1.0 / Second
	Megahertz = 1e6 * Hertz
	Gigahertz = 1e9 * Hertz
)

// Mass units. Base unit: gram.
const (
	Gram     = 1.0
	Kilogram = 1e3 * Gram
)

// C is the vacuum speed of light in internal units (m/ns).
const C = 0.299792458 * Meter / Nanosecond

// Material densities used by the effective volume calculation.
const (
	DensityIce   = 0.9167 * Gram / (Centimeter * Centimeter * Centimeter)
	DensityWater = 0.997 * Gram / (Centimeter * Centimeter * Centimeter)
)
