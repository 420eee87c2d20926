// Package config loads the run configuration for the simulation chain.
//
// The configuration is a flat JSON file. Fields omitted from the file retain
// their defaults, so partial configs are safe. Per-station and per-channel
// overrides of noise temperature, bandwidth and trigger threshold live in the
// detector description; this package carries the run-wide values.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/polarfield-data/radiomc/internal/units"
)

// RunConfig represents the root run configuration. All fields are pointers so
// that absent keys can be distinguished from zero values; use the Get*
// accessors to obtain resolved values with defaults applied.
type RunConfig struct {
	// Seed overrides the base seed of every per-module random number
	// generator in the run.
	Seed *int64 `json:"seed,omitempty"`

	// Sampling params
	NSamples       *int    `json:"n_samples,omitempty"`
	SampleInterval *string `json:"sample_interval,omitempty"` // duration string like "1ns"

	// Detector defaults, overridable per station/channel in the detector file
	TriggerThresholdMicroVolt *float64 `json:"trigger_threshold_microvolt,omitempty"`
	NoiseTemperatureKelvin    *float64 `json:"noise_temperature_kelvin,omitempty"`
	BandwidthMegahertz        *float64 `json:"bandwidth_megahertz,omitempty"`

	// Signal params
	IndexOfRefraction  *float64 `json:"index_of_refraction,omitempty"`
	MaxViewingAngleDeg *float64 `json:"max_viewing_angle_deg,omitempty"`

	// Scheduling params
	Workers *int `json:"workers,omitempty"`
}

// EmptyRunConfig returns a RunConfig with all fields unset.
func EmptyRunConfig() *RunConfig {
	return &RunConfig{}
}

// Load reads a RunConfig from a JSON file. The file must have a .json
// extension and stay under the max file size.
func Load(path string) (*RunConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyRunConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration values are usable.
func (c *RunConfig) Validate() error {
	if c.NSamples != nil && *c.NSamples <= 0 {
		return fmt.Errorf("n_samples must be positive, got %d", *c.NSamples)
	}
	if c.SampleInterval != nil && *c.SampleInterval != "" {
		if _, err := time.ParseDuration(*c.SampleInterval); err != nil {
			return fmt.Errorf("invalid sample_interval '%s': %w", *c.SampleInterval, err)
		}
	}
	if c.TriggerThresholdMicroVolt != nil && *c.TriggerThresholdMicroVolt <= 0 {
		return fmt.Errorf("trigger_threshold_microvolt must be positive, got %f", *c.TriggerThresholdMicroVolt)
	}
	if c.IndexOfRefraction != nil && *c.IndexOfRefraction < 1 {
		return fmt.Errorf("index_of_refraction must be >= 1, got %f", *c.IndexOfRefraction)
	}
	if c.Workers != nil && *c.Workers < 1 {
		return fmt.Errorf("workers must be >= 1, got %d", *c.Workers)
	}
	return nil
}

// GetSeed returns the configured seed or the default.
func (c *RunConfig) GetSeed() int64 {
	if c.Seed == nil {
		return 1234
	}
	return *c.Seed
}

// GetNSamples returns the number of time-domain samples per trace.
func (c *RunConfig) GetNSamples() int {
	if c.NSamples == nil {
		return 256
	}
	return *c.NSamples
}

// GetSampleInterval returns the time bin size in internal units.
func (c *RunConfig) GetSampleInterval() float64 {
	if c.SampleInterval == nil || *c.SampleInterval == "" {
		return 1 * units.Nanosecond
	}
	d, err := time.ParseDuration(*c.SampleInterval)
	if err != nil {
		return 1 * units.Nanosecond
	}
	return float64(d.Nanoseconds()) * units.Nanosecond
}

// GetTriggerThreshold returns the default trigger threshold in internal units.
func (c *RunConfig) GetTriggerThreshold() float64 {
	if c.TriggerThresholdMicroVolt == nil {
		return 45 * units.MicroVolt / units.Meter
	}
	return *c.TriggerThresholdMicroVolt * units.MicroVolt / units.Meter
}

// GetNoiseTemperature returns the default channel noise temperature in Kelvin.
func (c *RunConfig) GetNoiseTemperature() float64 {
	if c.NoiseTemperatureKelvin == nil {
		return 300
	}
	return *c.NoiseTemperatureKelvin
}

// GetBandwidth returns the default channel bandwidth in internal units.
func (c *RunConfig) GetBandwidth() float64 {
	if c.BandwidthMegahertz == nil {
		return 500 * units.Megahertz
	}
	return *c.BandwidthMegahertz * units.Megahertz
}

// GetIndexOfRefraction returns the index of refraction at the shower.
func (c *RunConfig) GetIndexOfRefraction() float64 {
	if c.IndexOfRefraction == nil {
		return 1.78
	}
	return *c.IndexOfRefraction
}

// GetMaxViewingAngle returns the viewing angle cut around the Cherenkov cone.
func (c *RunConfig) GetMaxViewingAngle() float64 {
	if c.MaxViewingAngleDeg == nil {
		return 15 * units.Deg
	}
	return *c.MaxViewingAngleDeg * units.Deg
}

// GetWorkers returns the number of parallel workers.
func (c *RunConfig) GetWorkers() int {
	if c.Workers == nil {
		return 1
	}
	return *c.Workers
}
