// Package automaton advances the sand grid one tick at a time.
//
// A tick composes the requested rotation into the grid's orientation,
// projects gravity onto the active axis to get a hint direction, commits the
// transfers of the previous tick while broadcasting the hint (integrate),
// runs the transfer kernel along the active axis and flips the axis. Each
// phase is a blocking dispatch over the shared pool.
//
// Transfers found by the kernel are written to the gained and lost channels
// only; totals change when the next integrate commits them.
package automaton

import (
	"fmt"
	"log/slog"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/tiltsand/internal/dispatch"
	"github.com/san-kum/tiltsand/internal/grid"
	"github.com/san-kum/tiltsand/internal/stamp"
)

// Engine owns the phase sequence for one grid. It is not safe for
// concurrent use.
type Engine struct {
	pool      *dispatch.Pool
	grid      *grid.Grid
	logger    *slog.Logger
	observers []Observer
	ticks     int
}

type Option func(*Engine)

func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithObserver registers o before the first tick.
func WithObserver(o Observer) Option {
	return func(e *Engine) { e.observers = append(e.observers, o) }
}

func New(pool *dispatch.Pool, g *grid.Grid, opts ...Option) (*Engine, error) {
	if pool == nil {
		return nil, ErrNilPool
	}
	if g == nil {
		return nil, ErrNilGrid
	}
	e := &Engine{
		pool:   pool,
		grid:   g,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

func (e *Engine) AddObserver(o Observer) { e.observers = append(e.observers, o) }

func (e *Engine) Grid() *grid.Grid { return e.grid }

// Ticks returns the number of completed ticks.
func (e *Engine) Ticks() int { return e.ticks }

// Tick runs one full step. A rotation axis with squared length of 0.5 or
// less leaves the orientation unchanged.
func (e *Engine) Tick(axis r3.Vec, angle float64) error {
	e.grid.Rotate(axis, angle)

	active := e.grid.NextPass()
	bias := e.grid.GravityBias(active)
	hint := grid.HintFor(bias)

	if err := e.integrate(hint); err != nil {
		return fmt.Errorf("integrate: %w", err)
	}
	if err := e.kernel(active); err != nil {
		return fmt.Errorf("kernel %v: %w", active, err)
	}

	e.ticks++
	info := TickInfo{Tick: e.ticks, Axis: active, Bias: bias, Hint: hint}
	for _, o := range e.observers {
		o.OnTick(info, e.grid)
	}
	e.grid.Advance()

	e.logger.Debug("tick", "n", e.ticks, "axis", active.String(), "bias", bias, "hint", hint.String())
	return nil
}

// ApplyImpulse stamps st over the rectangle described by imp, first along
// the first axis and then along the other. Each half commits pending
// transfers, sets directions from the stamp and runs the kernel. An impulse
// that misses the grid changes nothing and returns stamp.ErrOffGrid.
func (e *Engine) ApplyImpulse(st *stamp.Stamp, imp stamp.Impulse, first grid.Axis) error {
	if st == nil {
		return ErrNilStamp
	}
	p, err := stamp.Place(imp, st.Size(), e.grid.Dim())
	if err != nil {
		return err
	}

	for _, axis := range []grid.Axis{first, first.Next()} {
		if err := e.commit(); err != nil {
			return fmt.Errorf("impulse commit: %w", err)
		}
		if err := stamp.Apply(e.pool, e.grid, st, p, axis); err != nil {
			return fmt.Errorf("impulse apply %v: %w", axis, err)
		}
		if err := e.kernel(axis); err != nil {
			return fmt.Errorf("impulse kernel %v: %w", axis, err)
		}
	}

	e.logger.Debug("impulse applied",
		"center_x", imp.CenterX, "center_y", imp.CenterY,
		"dest_rows", p.Dest.Height, "dest_cols", p.Dest.Width)
	return nil
}
