package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/polarfield-data/radiomc/internal/units"
)

func TestDefaults(t *testing.T) {
	cfg := EmptyRunConfig()

	if cfg.GetSeed() != 1234 {
		t.Errorf("GetSeed() = %d, want 1234", cfg.GetSeed())
	}
	if cfg.GetNSamples() != 256 {
		t.Errorf("GetNSamples() = %d, want 256", cfg.GetNSamples())
	}
	if cfg.GetSampleInterval() != 1*units.Nanosecond {
		t.Errorf("GetSampleInterval() = %f, want 1ns", cfg.GetSampleInterval())
	}
	want := 45 * units.MicroVolt / units.Meter
	if math.Abs(cfg.GetTriggerThreshold()-want) > 1e-15 {
		t.Errorf("GetTriggerThreshold() = %g, want %g", cfg.GetTriggerThreshold(), want)
	}
	if cfg.GetIndexOfRefraction() != 1.78 {
		t.Errorf("GetIndexOfRefraction() = %f, want 1.78", cfg.GetIndexOfRefraction())
	}
	if cfg.GetMaxViewingAngle() != 15*units.Deg {
		t.Errorf("GetMaxViewingAngle() = %f, want 15deg", cfg.GetMaxViewingAngle())
	}
	if cfg.GetWorkers() != 1 {
		t.Errorf("GetWorkers() = %d, want 1", cfg.GetWorkers())
	}
}

func TestLoad(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "run.json")

	testJSON := `{
  "seed": 42,
  "n_samples": 512,
  "sample_interval": "500ms",
  "trigger_threshold_microvolt": 100,
  "index_of_refraction": 1.35,
  "workers": 8
}`
	if err := os.WriteFile(configPath, []byte(testJSON), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.GetSeed() != 42 {
		t.Errorf("GetSeed() = %d, want 42", cfg.GetSeed())
	}
	if cfg.GetNSamples() != 512 {
		t.Errorf("GetNSamples() = %d, want 512", cfg.GetNSamples())
	}
	if cfg.GetSampleInterval() != 500*units.Millisecond {
		t.Errorf("GetSampleInterval() = %f, want 500ms in ns", cfg.GetSampleInterval())
	}
	if cfg.GetTriggerThreshold() != 100*units.MicroVolt/units.Meter {
		t.Errorf("GetTriggerThreshold() = %g", cfg.GetTriggerThreshold())
	}
	if cfg.GetIndexOfRefraction() != 1.35 {
		t.Errorf("GetIndexOfRefraction() = %f, want 1.35", cfg.GetIndexOfRefraction())
	}
	if cfg.GetWorkers() != 8 {
		t.Errorf("GetWorkers() = %d, want 8", cfg.GetWorkers())
	}
}

func TestLoadMissing(t *testing.T) {
	if _, err := Load("/nonexistent/run.json"); err == nil {
		t.Error("expected error when loading missing file, got nil")
	}
}

func TestLoadRejectsNonJSONExtension(t *testing.T) {
	if _, err := Load("run.yaml"); err == nil {
		t.Error("expected error for non-json extension, got nil")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*RunConfig)
		wantErr bool
	}{
		{"empty is valid", func(c *RunConfig) {}, false},
		{"zero samples", func(c *RunConfig) { n := 0; c.NSamples = &n }, true},
		{"bad interval", func(c *RunConfig) { s := "fast"; c.SampleInterval = &s }, true},
		{"negative threshold", func(c *RunConfig) { v := -1.0; c.TriggerThresholdMicroVolt = &v }, true},
		{"index below one", func(c *RunConfig) { v := 0.5; c.IndexOfRefraction = &v }, true},
		{"zero workers", func(c *RunConfig) { n := 0; c.Workers = &n }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := EmptyRunConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
