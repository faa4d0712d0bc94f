// Package automation runs scripted sequences of scenarios and parameter
// sweeps over the tilt of a base configuration.
package automation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/tiltsand/internal/config"
	"github.com/san-kum/tiltsand/internal/experiment"
)

var (
	ErrEmptyScenario = errors.New("automation: scenario has no steps")
	ErrInvalidSweep  = errors.New("automation: invalid sweep")
)

// Scenario defines a scripted sequence of runs.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep selects a preset or config file and overrides some fields.
// Zero overrides keep the base value.
type ScenarioStep struct {
	Preset string `yaml:"preset,omitempty"`
	Config string `yaml:"config,omitempty"`
	Dim    int    `yaml:"dim,omitempty"`
	Seed   int64  `yaml:"seed,omitempty"`
	Ticks  int    `yaml:"ticks,omitempty"`
	SaveAs string `yaml:"save_as,omitempty"`
}

// StepResult pairs a step's resolved configuration with its result.
type StepResult struct {
	Step   ScenarioStep
	Config *config.Config
	Result *experiment.Result
}

// LoadScenario loads a scenario from a YAML file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	if len(scenario.Steps) == 0 {
		return nil, ErrEmptyScenario
	}
	return &scenario, nil
}

// Resolve builds the configuration a step describes.
func (s ScenarioStep) Resolve() (*config.Config, error) {
	cfg := config.DefaultConfig()
	switch {
	case s.Config != "":
		c, err := config.Load(s.Config)
		if err != nil {
			return nil, err
		}
		cfg = c
	case s.Preset != "":
		c, err := config.LookupPreset(s.Preset)
		if err != nil {
			return nil, err
		}
		cfg = c
	}
	if s.Dim > 0 {
		cfg.Dim = s.Dim
	}
	if s.Seed != 0 {
		cfg.Seed = s.Seed
	}
	if s.Ticks > 0 {
		cfg.Ticks = s.Ticks
	}
	return cfg, cfg.Validate()
}

// RunScenario executes the steps in order. On failure the results of the
// completed steps are returned with the error.
func RunScenario(ctx context.Context, scenario *Scenario, logger *slog.Logger) ([]StepResult, error) {
	if len(scenario.Steps) == 0 {
		return nil, ErrEmptyScenario
	}
	if logger == nil {
		logger = slog.Default()
	}
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		logger.Info("scenario step", "scenario", scenario.Name, "step", i+1, "of", len(scenario.Steps), "preset", step.Preset)

		cfg, err := step.Resolve()
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		result, err := runOnce(ctx, cfg, logger)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}
		results = append(results, StepResult{Step: step, Config: cfg, Result: result})
	}
	return results, nil
}

func runOnce(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*experiment.Result, error) {
	exp, err := experiment.New(cfg, experiment.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	defer exp.Close()
	return exp.Run(ctx)
}

// TiltSweep runs the base configuration once per tilt angle, spread evenly
// over [AngleMin, AngleMax], about Axis.
type TiltSweep struct {
	Base     *config.Config
	Axis     [3]float64
	AngleMin float64
	AngleMax float64
	NumSteps int
}

// SweepResult summarizes one run of a sweep.
type SweepResult struct {
	Angle     float64
	Mass      float64
	Flow      float64
	Saturated float64
	Peak      float64
}

// RunSweep executes the sweep in order of increasing angle.
func RunSweep(ctx context.Context, sweep *TiltSweep, logger *slog.Logger) ([]SweepResult, error) {
	if sweep.Base == nil || sweep.NumSteps < 2 || sweep.AngleMax < sweep.AngleMin {
		return nil, ErrInvalidSweep
	}
	if logger == nil {
		logger = slog.Default()
	}

	results := make([]SweepResult, 0, sweep.NumSteps)
	step := (sweep.AngleMax - sweep.AngleMin) / float64(sweep.NumSteps-1)

	for i := 0; i < sweep.NumSteps; i++ {
		angle := sweep.AngleMin + float64(i)*step
		cfg := sweep.Base.Clone()
		cfg.Tilt = config.RotationStep{Axis: sweep.Axis, Angle: angle}
		if err := cfg.Validate(); err != nil {
			return results, err
		}

		result, err := runOnce(ctx, cfg, logger)
		if err != nil {
			return results, fmt.Errorf("sweep angle %.3f: %w", angle, err)
		}
		results = append(results, SweepResult{
			Angle:     angle,
			Mass:      result.Metrics["mass"],
			Flow:      result.Metrics["flow"],
			Saturated: result.Metrics["saturated"],
			Peak:      result.Metrics["peak"],
		})
		logger.Debug("sweep step done", "step", i+1, "of", sweep.NumSteps, "angle", angle)
	}
	return results, nil
}
