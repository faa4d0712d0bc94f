package config

import (
	"fmt"
	"math"
	"sort"
)

var Presets = map[string]map[string]*Config{
	"ramp": {
		"roll": {
			Dim: 64, Pattern: "ramp", Ticks: 400, FirstPass: "vertical",
			Rotations: []RotationStep{{Tick: 1, Until: 8, Axis: [3]float64{0, 0, 1}, Angle: -0.2}},
		},
		"pitch": {
			Dim: 64, Pattern: "ramp", Ticks: 400, FirstPass: "vertical",
			Rotations: []RotationStep{{Tick: 1, Until: 8, Axis: [3]float64{1, 0, 0}, Angle: -0.2}},
		},
		"rock": {
			Dim: 64, Pattern: "ramp", Ticks: 600, FirstPass: "vertical",
			Rotations: []RotationStep{
				{Tick: 1, Until: 8, Axis: [3]float64{0, 0, 1}, Angle: -0.2},
				{Tick: 200, Until: 215, Axis: [3]float64{0, 0, 1}, Angle: 0.2},
				{Tick: 400, Until: 415, Axis: [3]float64{0, 0, 1}, Angle: -0.2},
			},
		},
	},
	"pile": {
		"topple": {
			Dim: 64, Pattern: "pile", Ticks: 300, FirstPass: "horizontal",
			Tilt: RotationStep{Axis: [3]float64{0, 0, 1}, Angle: -math.Pi / 2},
		},
		"splash": {
			Dim: 64, Pattern: "pile", Ticks: 300, FirstPass: "vertical",
			Impulses: []ImpulseStep{
				{Tick: 1, CenterX: 0.5, CenterY: 0.5, Width: 0.5, Height: 0.5, Strength: 1},
				{Tick: 50, CenterX: 0.5, CenterY: 0.5, Width: 0.5, Height: 0.5, Strength: 1, First: "vertical"},
			},
		},
	},
	"random": {
		"settle": {
			Dim: 96, Pattern: "random", Seed: 1, Ticks: 500, FirstPass: "vertical",
			Tilt: RotationStep{Axis: [3]float64{1, 0, 0}, Angle: -math.Pi / 2},
		},
		"shake": {
			Dim: 64, Pattern: "random", Seed: 7, Ticks: 500, FirstPass: "vertical",
			Tilt: RotationStep{Axis: [3]float64{0, 0, 1}, Angle: -1.2},
			Impulses: []ImpulseStep{
				{Tick: 100, CenterX: 0.25, CenterY: 0.25, Width: 0.4, Height: 0.4, Strength: 1},
				{Tick: 200, CenterX: 0.75, CenterY: 0.75, Width: 0.4, Height: 0.4, Strength: 1},
				{Tick: 300, CenterX: 1.0, CenterY: 0.0, Width: 0.6, Height: 0.6, Strength: 1},
			},
		},
	},
}

// GetPreset returns a copy of the named preset with unset fields filled
// from DefaultConfig, or nil when it does not exist.
func GetPreset(pattern, preset string) *Config {
	patternPresets, ok := Presets[pattern]
	if !ok {
		return nil
	}
	cfg, ok := patternPresets[preset]
	if !ok {
		return nil
	}
	return withDefaults(cfg)
}

// LookupPreset resolves a "pattern/name" reference.
func LookupPreset(ref string) (*Config, error) {
	for pattern, presets := range Presets {
		for name := range presets {
			if pattern+"/"+name == ref {
				return GetPreset(pattern, name), nil
			}
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownPreset, ref)
}

func ListPresets(pattern string) []string {
	patternPresets, ok := Presets[pattern]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(patternPresets))
	for name := range patternPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// PresetPatterns lists the seed patterns that have presets.
func PresetPatterns() []string {
	patterns := make([]string, 0, len(Presets))
	for p := range Presets {
		patterns = append(patterns, p)
	}
	sort.Strings(patterns)
	return patterns
}

func withDefaults(p *Config) *Config {
	cfg := p.Clone()
	def := DefaultConfig()
	if cfg.Stamp.Variety == "" {
		cfg.Stamp.Variety = def.Stamp.Variety
	}
	if cfg.Stamp.Size == 0 {
		cfg.Stamp.Size = def.Stamp.Size
	}
	if cfg.Live.FPS == 0 {
		cfg.Live.FPS = def.Live.FPS
	}
	if cfg.Live.RotateStep == 0 {
		cfg.Live.RotateStep = def.Live.RotateStep
	}
	return cfg
}
