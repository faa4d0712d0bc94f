package automaton

import "github.com/san-kum/tiltsand/internal/grid"

// TickInfo describes a completed tick.
type TickInfo struct {
	Tick int
	Axis grid.Axis
	Bias uint8
	Hint grid.Direction
}

// Observer is notified after every tick, once the kernel pass has run and
// before the axis flips. The grid must not be retained or mutated.
type Observer interface {
	OnTick(info TickInfo, g *grid.Grid)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(info TickInfo, g *grid.Grid)

func (f ObserverFunc) OnTick(info TickInfo, g *grid.Grid) { f(info, g) }
