package config

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Dim != 64 {
		t.Errorf("expected dim 64, got %d", cfg.Dim)
	}
	if cfg.Pattern != "ramp" {
		t.Errorf("expected ramp pattern, got %s", cfg.Pattern)
	}
	if cfg.FirstPass != "vertical" {
		t.Errorf("expected vertical first pass, got %s", cfg.FirstPass)
	}
	if cfg.Live.RotateStep != 0.2 {
		t.Errorf("expected rotate step 0.2, got %f", cfg.Live.RotateStep)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tiltsand.yaml")

	cfg := DefaultConfig()
	cfg.Seed = 99
	cfg.Rotations = []RotationStep{{Tick: 3, Until: 5, Axis: [3]float64{0, 0, 1}, Angle: -0.2}}
	cfg.Impulses = []ImpulseStep{{Tick: 4, CenterX: 0.5, CenterY: 0.5, Width: 1, Height: 1, First: "vertical"}}

	if err := Save(path, cfg); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if loaded.Seed != 99 {
		t.Errorf("seed = %d, want 99", loaded.Seed)
	}
	if len(loaded.Rotations) != 1 || loaded.Rotations[0].Axis[2] != 1 || loaded.Rotations[0].Until != 5 {
		t.Errorf("rotations not preserved: %+v", loaded.Rotations)
	}
	if len(loaded.Impulses) != 1 || loaded.Impulses[0].First != "vertical" {
		t.Errorf("impulses not preserved: %+v", loaded.Impulses)
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	if err := os.WriteFile(path, []byte("dim: 32\npattern: pile\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Dim != 32 || cfg.Pattern != "pile" {
		t.Errorf("unexpected values %d %s", cfg.Dim, cfg.Pattern)
	}
	if cfg.Ticks != DefaultTicks || cfg.Stamp.Size != DefaultStampSize {
		t.Errorf("defaults lost: ticks=%d stamp=%d", cfg.Ticks, cfg.Stamp.Size)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"zero dim", func(c *Config) { c.Dim = 0 }},
		{"bad pattern", func(c *Config) { c.Pattern = "sponge" }},
		{"bad first pass", func(c *Config) { c.FirstPass = "diagonal" }},
		{"negative ticks", func(c *Config) { c.Ticks = -1 }},
		{"zero stamp", func(c *Config) { c.Stamp.Size = 0 }},
		{"zero fps", func(c *Config) { c.Live.FPS = 0 }},
		{"nan tilt", func(c *Config) { c.Tilt.Angle = math.NaN() }},
		{"rotation at zero", func(c *Config) { c.Rotations = []RotationStep{{Tick: 0, Axis: [3]float64{0, 0, 1}}} }},
		{"negative impulse", func(c *Config) { c.Impulses = []ImpulseStep{{Tick: 1, Width: -1}} }},
		{"impulse axis", func(c *Config) { c.Impulses = []ImpulseStep{{Tick: 1, First: "up"}} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestRotationStep_Active(t *testing.T) {
	single := RotationStep{Tick: 4}
	span := RotationStep{Tick: 4, Until: 6}

	tests := []struct {
		step RotationStep
		tick int
		want bool
	}{
		{single, 3, false},
		{single, 4, true},
		{single, 5, false},
		{span, 4, true},
		{span, 6, true},
		{span, 7, false},
	}
	for _, tt := range tests {
		if got := tt.step.Active(tt.tick); got != tt.want {
			t.Errorf("%+v.Active(%d) = %v, want %v", tt.step, tt.tick, got, tt.want)
		}
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("pile", "topple")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Tilt.Angle != -math.Pi/2 {
		t.Errorf("expected tilt -pi/2, got %f", cfg.Tilt.Angle)
	}
	if cfg.Stamp.Size != DefaultStampSize {
		t.Errorf("defaults not filled: stamp size %d", cfg.Stamp.Size)
	}

	cfg.Ticks = 1
	if GetPreset("pile", "topple").Ticks == 1 {
		t.Error("preset mutated through returned copy")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if cfg := GetPreset("pile", "nonexistent"); cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}
	if cfg := GetPreset("nonexistent", "topple"); cfg != nil {
		t.Error("expected nil for nonexistent pattern")
	}
	if _, err := LookupPreset("pile/nope"); !errors.Is(err, ErrUnknownPreset) {
		t.Errorf("expected ErrUnknownPreset, got %v", err)
	}
}

func TestPresets_Valid(t *testing.T) {
	for _, pattern := range PresetPatterns() {
		for _, name := range ListPresets(pattern) {
			cfg, err := LookupPreset(pattern + "/" + name)
			if err != nil {
				t.Fatalf("lookup %s/%s: %v", pattern, name, err)
			}
			if err := cfg.Validate(); err != nil {
				t.Errorf("preset %s/%s invalid: %v", pattern, name, err)
			}
			if cfg.Pattern != pattern {
				t.Errorf("preset %s/%s seeds %s", pattern, name, cfg.Pattern)
			}
		}
	}
}

func TestListPresets(t *testing.T) {
	presets := ListPresets("ramp")
	if len(presets) != 3 || presets[0] != "pitch" {
		t.Errorf("unexpected ramp presets %v", presets)
	}
	if presets := ListPresets("nonexistent"); presets != nil {
		t.Error("expected nil for nonexistent pattern")
	}
}
