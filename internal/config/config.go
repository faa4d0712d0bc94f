package config

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/tiltsand/internal/grid"
	"github.com/san-kum/tiltsand/internal/stamp"
)

const (
	DefaultTicks      = 500
	DefaultStampSize  = stamp.DefaultSize
	DefaultFPS        = 30
	DefaultRotateStep = 0.2
)

type Config struct {
	Dim       int            `yaml:"dim"`
	Pattern   string         `yaml:"pattern"`
	Seed      int64          `yaml:"seed"`
	Workers   int            `yaml:"workers"`
	Ticks     int            `yaml:"ticks"`
	FirstPass string         `yaml:"first_pass"`
	Stamp     StampConfig    `yaml:"stamp"`
	Tilt      RotationStep   `yaml:"tilt"`
	Rotations []RotationStep `yaml:"rotations,omitempty"`
	Impulses  []ImpulseStep  `yaml:"impulses,omitempty"`
	Live      LiveConfig     `yaml:"live"`
}

type StampConfig struct {
	Variety string `yaml:"variety"`
	Size    int    `yaml:"size"`
}

// RotationStep rotates the grid by Angle radians about Axis at the start of
// tick Tick, and of every tick up to Until when Until is set.
type RotationStep struct {
	Tick  int        `yaml:"tick"`
	Until int        `yaml:"until,omitempty"`
	Axis  [3]float64 `yaml:"axis,flow"`
	Angle float64    `yaml:"angle"`
}

// Active reports whether the step applies on tick n.
func (r RotationStep) Active(n int) bool {
	if r.Until <= r.Tick {
		return n == r.Tick
	}
	return n >= r.Tick && n <= r.Until
}

// ImpulseStep fires one impulse after tick Tick.
type ImpulseStep struct {
	Tick     int     `yaml:"tick"`
	CenterX  float64 `yaml:"center_x"`
	CenterY  float64 `yaml:"center_y"`
	Width    float64 `yaml:"width"`
	Height   float64 `yaml:"height"`
	Strength float64 `yaml:"strength"`
	First    string  `yaml:"first"`
}

func (s ImpulseStep) Impulse() stamp.Impulse {
	return stamp.Impulse{
		CenterX:  s.CenterX,
		CenterY:  s.CenterY,
		Width:    s.Width,
		Height:   s.Height,
		Strength: s.Strength,
	}
}

// FirstAxis parses First, defaulting to horizontal.
func (s ImpulseStep) FirstAxis() (grid.Axis, error) {
	if s.First == "" {
		return grid.Horizontal, nil
	}
	return grid.ParseAxis(s.First)
}

type LiveConfig struct {
	FPS        int     `yaml:"fps"`
	RotateStep float64 `yaml:"rotate_step"`
}

func DefaultConfig() *Config {
	return &Config{
		Dim:       grid.DefaultDim,
		Pattern:   string(grid.PatternRamp),
		Ticks:     DefaultTicks,
		FirstPass: grid.Vertical.String(),
		Stamp: StampConfig{
			Variety: stamp.Ellipse.String(),
			Size:    DefaultStampSize,
		},
		Live: LiveConfig{
			FPS:        DefaultFPS,
			RotateStep: DefaultRotateStep,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	out.Rotations = append([]RotationStep(nil), c.Rotations...)
	out.Impulses = append([]ImpulseStep(nil), c.Impulses...)
	return &out
}

func (c *Config) Validate() error {
	if c.Dim <= 0 {
		return fmt.Errorf("%w: dim must be positive, got %d", ErrInvalidConfig, c.Dim)
	}
	if _, err := grid.ParsePattern(c.Pattern); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if _, err := grid.ParseAxis(c.FirstPass); err != nil {
		return fmt.Errorf("%w: first_pass: %v", ErrInvalidConfig, err)
	}
	if c.Ticks < 0 {
		return fmt.Errorf("%w: ticks must not be negative, got %d", ErrInvalidConfig, c.Ticks)
	}
	if c.Stamp.Size <= 0 {
		return fmt.Errorf("%w: stamp size must be positive, got %d", ErrInvalidConfig, c.Stamp.Size)
	}
	if c.Live.FPS <= 0 {
		return fmt.Errorf("%w: fps must be positive, got %d", ErrInvalidConfig, c.Live.FPS)
	}
	if err := finite(append(c.Tilt.Axis[:], c.Tilt.Angle, c.Live.RotateStep)...); err != nil {
		return err
	}
	for i, r := range c.Rotations {
		if r.Tick < 1 {
			return fmt.Errorf("%w: rotation %d starts at tick %d", ErrInvalidConfig, i, r.Tick)
		}
		if err := finite(append(r.Axis[:], r.Angle)...); err != nil {
			return fmt.Errorf("rotation %d: %w", i, err)
		}
	}
	for i, s := range c.Impulses {
		if s.Tick < 0 {
			return fmt.Errorf("%w: impulse %d at tick %d", ErrInvalidConfig, i, s.Tick)
		}
		if err := s.Impulse().Validate(); err != nil {
			return fmt.Errorf("%w: impulse %d: %v", ErrInvalidConfig, i, err)
		}
		if _, err := s.FirstAxis(); err != nil {
			return fmt.Errorf("%w: impulse %d: %v", ErrInvalidConfig, i, err)
		}
	}
	return nil
}

func finite(vs ...float64) error {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: non-finite value %v", ErrInvalidConfig, v)
		}
	}
	return nil
}
