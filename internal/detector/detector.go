// Package detector loads the detector description, the list of stations and
// their channels with positions and response parameters. Noise temperature,
// bandwidth and trigger threshold can be set per channel, per station or
// run-wide; the most specific setting wins.
package detector

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/polarfield-data/radiomc/internal/config"
	"github.com/polarfield-data/radiomc/internal/units"
)

// Channel is one antenna of a station. The position is relative to the
// station position.
type Channel struct {
	ID int     `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
	Z  float64 `json:"z"`

	NoiseTemperatureKelvin    *float64 `json:"noise_temperature_kelvin,omitempty"`
	BandwidthMegahertz        *float64 `json:"bandwidth_megahertz,omitempty"`
	TriggerThresholdMicroVolt *float64 `json:"trigger_threshold_microvolt,omitempty"`
}

// Station is a group of channels at one site.
type Station struct {
	ID int     `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
	Z  float64 `json:"z"`

	NoiseTemperatureKelvin    *float64 `json:"noise_temperature_kelvin,omitempty"`
	BandwidthMegahertz        *float64 `json:"bandwidth_megahertz,omitempty"`
	TriggerThresholdMicroVolt *float64 `json:"trigger_threshold_microvolt,omitempty"`

	Channels []Channel `json:"channels"`
}

// Description is the full detector layout.
type Description struct {
	Stations []Station `json:"stations"`
}

// Load reads a detector description from a JSON file.
func Load(path string) (*Description, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("detector file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat detector file: %w", err)
	}
	const maxFileSize = 4 * 1024 * 1024 // 4MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("detector file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read detector file: %w", err)
	}

	var d Description
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("failed to parse detector JSON: %w", err)
	}
	if err := d.Validate(); err != nil {
		return nil, fmt.Errorf("invalid detector description: %w", err)
	}
	return &d, nil
}

// Validate checks ids for uniqueness and that every station has channels.
func (d *Description) Validate() error {
	if len(d.Stations) == 0 {
		return fmt.Errorf("no stations defined")
	}
	stationIDs := make(map[int]bool, len(d.Stations))
	for _, s := range d.Stations {
		if stationIDs[s.ID] {
			return fmt.Errorf("duplicate station id %d", s.ID)
		}
		stationIDs[s.ID] = true
		if len(s.Channels) == 0 {
			return fmt.Errorf("station %d has no channels", s.ID)
		}
		channelIDs := make(map[int]bool, len(s.Channels))
		for _, c := range s.Channels {
			if channelIDs[c.ID] {
				return fmt.Errorf("station %d: duplicate channel id %d", s.ID, c.ID)
			}
			channelIDs[c.ID] = true
		}
	}
	return nil
}

// JSON serializes the description for storage alongside simulation output.
func (d *Description) JSON() ([]byte, error) {
	return json.Marshal(d)
}

// ResolvedChannel is a channel with its absolute position and all response
// parameters resolved against the station and run-wide defaults, in
// internal units.
type ResolvedChannel struct {
	StationID int
	ChannelID int

	X, Y, Z float64

	NoiseTemperature float64 // kelvin
	Bandwidth        float64
	TriggerThreshold float64
}

// Resolve flattens the detector into per-channel parameters, applying the
// channel over station over config precedence.
func (d *Description) Resolve(cfg *config.RunConfig) []ResolvedChannel {
	var out []ResolvedChannel
	for _, s := range d.Stations {
		for _, c := range s.Channels {
			rc := ResolvedChannel{
				StationID: s.ID,
				ChannelID: c.ID,
				X:         s.X + c.X,
				Y:         s.Y + c.Y,
				Z:         s.Z + c.Z,

				NoiseTemperature: pick(c.NoiseTemperatureKelvin, s.NoiseTemperatureKelvin,
					cfg.GetNoiseTemperature(), 1),
				Bandwidth: pick(c.BandwidthMegahertz, s.BandwidthMegahertz,
					cfg.GetBandwidth(), units.Megahertz),
				TriggerThreshold: pick(c.TriggerThresholdMicroVolt, s.TriggerThresholdMicroVolt,
					cfg.GetTriggerThreshold(), units.MicroVolt/units.Meter),
			}
			out = append(out, rc)
		}
	}
	return out
}

func pick(channel, station *float64, fallback, unit float64) float64 {
	if channel != nil {
		return *channel * unit
	}
	if station != nil {
		return *station * unit
	}
	return fallback
}
