package automation

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/tiltsand/internal/config"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLoadScenario(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "s.yaml")
	script := `name: demo
description: two presets
steps:
  - preset: ramp/roll
    dim: 16
    ticks: 10
  - preset: pile/splash
    dim: 16
    ticks: 5
`
	if err := os.WriteFile(path, []byte(script), 0644); err != nil {
		t.Fatal(err)
	}

	sc, err := LoadScenario(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if sc.Name != "demo" || len(sc.Steps) != 2 {
		t.Fatalf("unexpected scenario %+v", sc)
	}

	results, err := RunScenario(context.Background(), sc, quietLogger())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if got := len(results[0].Result.Ticks); got != 10 {
		t.Errorf("step 1 ran %d ticks, want 10", got)
	}
	if results[1].Config.Dim != 16 || results[1].Config.Pattern != "pile" {
		t.Errorf("step 2 config not resolved: %+v", results[1].Config)
	}
}

func TestLoadScenario_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.yaml")
	os.WriteFile(path, []byte("name: nothing\n"), 0644)
	if _, err := LoadScenario(path); !errors.Is(err, ErrEmptyScenario) {
		t.Errorf("expected ErrEmptyScenario, got %v", err)
	}
}

func TestRunScenario_BadPreset(t *testing.T) {
	sc := &Scenario{Steps: []ScenarioStep{
		{Dim: 8, Ticks: 2},
		{Preset: "ramp/nope"},
	}}
	results, err := RunScenario(context.Background(), sc, quietLogger())
	if !errors.Is(err, config.ErrUnknownPreset) {
		t.Errorf("expected ErrUnknownPreset, got %v", err)
	}
	if len(results) != 1 {
		t.Errorf("completed steps should be kept, got %d", len(results))
	}
}

func TestRunSweep(t *testing.T) {
	base := config.DefaultConfig()
	base.Dim = 16
	base.Ticks = 40
	base.Pattern = "pile"

	results, err := RunSweep(context.Background(), &TiltSweep{
		Base:     base,
		Axis:     [3]float64{0, 0, 1},
		AngleMin: 0,
		AngleMax: -math.Pi / 2,
		NumSteps: 3,
	}, quietLogger())
	if !errors.Is(err, ErrInvalidSweep) {
		t.Fatalf("reversed range should be rejected, got %v", err)
	}

	results, err = RunSweep(context.Background(), &TiltSweep{
		Base:     base,
		Axis:     [3]float64{0, 0, 1},
		AngleMin: -math.Pi / 2,
		AngleMax: 0,
		NumSteps: 3,
	}, quietLogger())
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if results[0].Angle != -math.Pi/2 || results[2].Angle != 0 {
		t.Errorf("angles %v .. %v", results[0].Angle, results[2].Angle)
	}
	if results[0].Flow <= 0 {
		t.Error("a steep tilt should move sand")
	}
	if results[2].Flow != 0 {
		t.Errorf("a flat board should not move sand, flow %v", results[2].Flow)
	}
	if base.Tilt.Angle != 0 {
		t.Error("sweep modified the base config")
	}
}
