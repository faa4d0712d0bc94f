// Package experiment drives the automaton from a configuration: it seeds the
// grid, applies the rotation and impulse schedules tick by tick and collects
// per-tick statistics.
package experiment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/tiltsand/internal/automaton"
	"github.com/san-kum/tiltsand/internal/config"
	"github.com/san-kum/tiltsand/internal/dispatch"
	"github.com/san-kum/tiltsand/internal/grid"
	"github.com/san-kum/tiltsand/internal/metrics"
	"github.com/san-kum/tiltsand/internal/stamp"
)

// TickStats is one row of the per-tick record.
type TickStats struct {
	Tick      int    `csv:"tick" json:"tick"`
	Axis      string `csv:"axis" json:"axis"`
	Hint      string `csv:"hint" json:"hint"`
	Bias      uint8  `csv:"bias" json:"bias"`
	Mass      int    `csv:"mass" json:"mass"`
	Moving    int    `csv:"moving" json:"moving"`
	Saturated int    `csv:"saturated" json:"saturated"`
	Peak      int    `csv:"peak" json:"peak"`
}

type Result struct {
	Dim      int
	Ticks    []TickStats
	Metrics  map[string]float64
	Frame    []byte
	Impulses int
	OffGrid  int
	Elapsed  time.Duration
}

type Experiment struct {
	cfg      *config.Config
	logger   *slog.Logger
	pool     *dispatch.Pool
	ownPool  bool
	grid     *grid.Grid
	stamp    *stamp.Stamp
	engine   *automaton.Engine
	metrics  []metrics.Metric
	ticks    []TickStats
	observer []automaton.Observer
	impulses int
	offGrid  int
}

type Option func(*Experiment)

func WithLogger(l *slog.Logger) Option {
	return func(e *Experiment) { e.logger = l }
}

// WithPool runs the experiment on a shared pool. Close leaves it open.
func WithPool(p *dispatch.Pool) Option {
	return func(e *Experiment) { e.pool = p }
}

// WithObserver adds an observer called after every tick.
func WithObserver(o automaton.Observer) Option {
	return func(e *Experiment) { e.observer = append(e.observer, o) }
}

// New validates cfg and builds the grid, stamp and engine it describes.
func New(cfg *config.Config, opts ...Option) (*Experiment, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &Experiment{
		cfg:     cfg,
		logger:  slog.Default(),
		metrics: metrics.Standard(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.pool == nil {
		e.pool = dispatch.New(cfg.Workers)
		e.ownPool = true
	}

	if err := e.setup(); err != nil {
		e.Close()
		return nil, err
	}
	return e, nil
}

func (e *Experiment) setup() error {
	first, err := grid.ParseAxis(e.cfg.FirstPass)
	if err != nil {
		return err
	}
	pattern, err := grid.ParsePattern(e.cfg.Pattern)
	if err != nil {
		return err
	}

	e.grid, err = grid.New(e.cfg.Dim, grid.WithFirstPass(first))
	if err != nil {
		return err
	}
	if err := e.grid.Fill(pattern, e.cfg.Seed); err != nil {
		return err
	}
	e.grid.Rotate(r3.Vec{X: e.cfg.Tilt.Axis[0], Y: e.cfg.Tilt.Axis[1], Z: e.cfg.Tilt.Axis[2]}, e.cfg.Tilt.Angle)

	size := e.cfg.Stamp.Size
	e.stamp, err = stamp.New(stamp.ParseVariety(e.cfg.Stamp.Variety), size, size,
		stamp.WithPool(e.pool), stamp.WithLogger(e.logger))
	if err != nil {
		return err
	}

	e.engine, err = automaton.New(e.pool, e.grid,
		automaton.WithLogger(e.logger),
		automaton.WithObserver(automaton.ObserverFunc(e.record)))
	if err != nil {
		return err
	}
	for _, o := range e.observer {
		e.engine.AddObserver(o)
	}
	return nil
}

func (e *Experiment) Grid() *grid.Grid { return e.grid }

func (e *Experiment) Engine() *automaton.Engine { return e.engine }

func (e *Experiment) Stamp() *stamp.Stamp { return e.stamp }

func (e *Experiment) Config() *config.Config { return e.cfg }

// Close releases the worker pool unless it was supplied with WithPool.
func (e *Experiment) Close() {
	if e.ownPool {
		e.pool.Close()
	}
}

func (e *Experiment) record(info automaton.TickInfo, g *grid.Grid) {
	for _, m := range e.metrics {
		m.Observe(g)
	}
	e.ticks = append(e.ticks, TickStats{
		Tick:      info.Tick,
		Axis:      info.Axis.String(),
		Hint:      info.Hint.String(),
		Bias:      info.Bias,
		Mass:      int(e.metric("mass")),
		Moving:    int(e.metric("moving")),
		Saturated: int(e.metric("saturated")),
		Peak:      int(e.metric("peak")),
	})
}

func (e *Experiment) metric(name string) float64 {
	for _, m := range e.metrics {
		if m.Name() == name {
			return m.Value()
		}
	}
	return 0
}

// Run executes cfg.Ticks ticks. Rotations active on a tick are composed in
// schedule order before it runs; impulses scheduled for tick n fire after
// it, and those for tick 0 before the first tick. On cancellation the
// partial result is returned with the context error.
func (e *Experiment) Run(ctx context.Context) (*Result, error) {
	for _, m := range e.metrics {
		m.Reset()
	}
	e.ticks = make([]TickStats, 0, e.cfg.Ticks)
	e.impulses, e.offGrid = 0, 0
	res := &Result{Dim: e.cfg.Dim}
	start := time.Now()

	e.logger.Info("run started",
		"dim", e.cfg.Dim, "pattern", e.cfg.Pattern, "ticks", e.cfg.Ticks,
		"workers", e.pool.Workers())

	if err := e.fireImpulses(0); err != nil {
		return e.finish(res, start), err
	}

	for n := 1; n <= e.cfg.Ticks; n++ {
		select {
		case <-ctx.Done():
			e.logger.Warn("run canceled", "tick", n)
			return e.finish(res, start), fmt.Errorf("%w: %w", ErrCanceled, ctx.Err())
		default:
		}

		if err := e.Step(r3.Vec{}, 0); err != nil {
			return e.finish(res, start), err
		}
	}

	e.finish(res, start)
	e.logger.Info("run finished", "ticks", len(res.Ticks), "elapsed", res.Elapsed,
		"mass", res.Metrics["mass"], "flow", res.Metrics["flow"])
	return res, nil
}

// Step runs the next tick. Scheduled rotations for that tick are applied
// first, then the extra rotation, which the live view uses for keyboard
// tilt. Scheduled impulses fire after the tick.
func (e *Experiment) Step(axis r3.Vec, angle float64) error {
	n := e.engine.Ticks() + 1

	schedAxis, schedAngle := e.rotationFor(n)
	if r3.Norm2(axis) > 0.5 {
		e.grid.Rotate(schedAxis, schedAngle)
	} else {
		axis, angle = schedAxis, schedAngle
	}

	if err := e.engine.Tick(axis, angle); err != nil {
		return &TickError{Tick: n, Phase: "tick", Wrapped: err}
	}
	return e.fireImpulses(n)
}

// Impulse fires one impulse immediately. A miss is counted and returned as
// stamp.ErrOffGrid.
func (e *Experiment) Impulse(imp stamp.Impulse, first grid.Axis) error {
	err := e.engine.ApplyImpulse(e.stamp, imp, first)
	switch {
	case errors.Is(err, stamp.ErrOffGrid):
		e.logger.Warn("impulse missed the grid", "tick", e.engine.Ticks(),
			"center_x", imp.CenterX, "center_y", imp.CenterY)
		e.offGrid++
	case err == nil:
		e.impulses++
	}
	return err
}

// Last returns the statistics of the most recent tick.
func (e *Experiment) Last() (TickStats, bool) {
	if len(e.ticks) == 0 {
		return TickStats{}, false
	}
	return e.ticks[len(e.ticks)-1], true
}

// rotationFor composes every rotation active on tick n except the last into
// the grid and returns the last for the engine to apply.
func (e *Experiment) rotationFor(n int) (r3.Vec, float64) {
	var axis r3.Vec
	var angle float64
	pending := false
	for _, r := range e.cfg.Rotations {
		if !r.Active(n) {
			continue
		}
		if pending {
			e.grid.Rotate(axis, angle)
		}
		axis = r3.Vec{X: r.Axis[0], Y: r.Axis[1], Z: r.Axis[2]}
		angle = r.Angle
		pending = true
	}
	return axis, angle
}

func (e *Experiment) fireImpulses(n int) error {
	for _, s := range e.cfg.Impulses {
		if s.Tick != n {
			continue
		}
		first, err := s.FirstAxis()
		if err != nil {
			return &TickError{Tick: n, Phase: "impulse", Wrapped: err}
		}
		if err := e.Impulse(s.Impulse(), first); err != nil && !errors.Is(err, stamp.ErrOffGrid) {
			return &TickError{Tick: n, Phase: "impulse", Wrapped: err}
		}
	}
	return nil
}

func (e *Experiment) finish(res *Result, start time.Time) *Result {
	res.Elapsed = time.Since(start)
	res.Ticks = e.ticks
	res.Impulses = e.impulses
	res.OffGrid = e.offGrid
	res.Frame = e.grid.Snapshot()
	res.Metrics = make(map[string]float64, len(e.metrics))
	for _, m := range e.metrics {
		res.Metrics[m.Name()] = m.Value()
	}
	if mass, ok := e.metrics[0].(*metrics.Mass); ok {
		res.Metrics["mass_drift"] = float64(mass.Drift())
	}
	return res
}
