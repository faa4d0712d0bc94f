package automaton

import (
	"github.com/san-kum/tiltsand/internal/dispatch"
	"github.com/san-kum/tiltsand/internal/grid"
)

type integrateArgs struct {
	cells     []byte
	hint      grid.Direction
	broadcast bool
}

// integrate commits pending transfers and sets every cell's direction to
// hint.
func (e *Engine) integrate(hint grid.Direction) error {
	e.grid.SetDirection(0, 0, hint)
	args := integrateArgs{cells: e.grid.Cells(), hint: hint, broadcast: true}
	return dispatch.For(e.pool, e.grid.Len(), args, integrateCells)
}

// commit is integrate without the hint broadcast; directions are kept.
func (e *Engine) commit() error {
	args := integrateArgs{cells: e.grid.Cells()}
	return dispatch.For(e.pool, e.grid.Len(), args, integrateCells)
}

func integrateCells(begin, end int, a integrateArgs) {
	cells := a.cells[begin*grid.Channels : end*grid.Channels]
	for o := 0; o < len(cells); o += grid.Channels {
		cells[o+grid.ChanTotal] = grid.Commit(cells[o+grid.ChanTotal], cells[o+grid.ChanGained], cells[o+grid.ChanLost])
		cells[o+grid.ChanGained] = 0
		cells[o+grid.ChanLost] = 0
		if a.broadcast {
			cells[o+grid.ChanDirection] = uint8(a.hint)
		}
	}
}

type kernelArgs struct {
	frozen []byte
	cells  []byte
	dim    int
	axis   grid.Axis
}

// kernel finds at most one transfer into every non-full cell along axis.
// Neighbours are read from a frozen copy of the buffer and each worker only
// writes the gained and lost channels of the cells it owns: a cell's lost
// flag is set when the neighbour it points at accepts from it.
func (e *Engine) kernel(axis grid.Axis) error {
	args := kernelArgs{
		frozen: e.grid.Freeze(),
		cells:  e.grid.Cells(),
		dim:    e.grid.Dim(),
		axis:   axis,
	}
	return dispatch.For(e.pool, e.grid.Len(), args, kernelCells)
}

func kernelCells(begin, end int, a kernelArgs) {
	for i := begin; i < end; i++ {
		o := i * grid.Channels

		var gained uint8
		if a.source(i) >= 0 {
			gained = 1
		}

		var lost uint8
		var target int
		var ok bool
		switch grid.Direction(a.frozen[o+grid.ChanDirection]) {
		case grid.Negative:
			target, ok = a.neighbour(i, -1)
		case grid.Positive:
			target, ok = a.neighbour(i, 1)
		}
		if ok && a.source(target) == i {
			lost = 1
		}

		a.cells[o+grid.ChanGained] = gained
		a.cells[o+grid.ChanLost] = lost
	}
}

// neighbour returns the index one step along the axis in the given sense,
// or false at the edge.
func (a kernelArgs) neighbour(i, step int) (int, bool) {
	row, col := i/a.dim, i%a.dim
	if a.axis == grid.Horizontal {
		col += step
		if col < 0 || col >= a.dim {
			return 0, false
		}
	} else {
		row += step
		if row < 0 || row >= a.dim {
			return 0, false
		}
	}
	return row*a.dim + col, true
}

// source returns the neighbour cell i accepts a particle from, or -1. The
// negative side is checked first.
func (a kernelArgs) source(i int) int {
	total := a.frozen[i*grid.Channels+grid.ChanTotal]
	if total >= grid.MaxTotal {
		return -1
	}
	if n, ok := a.neighbour(i, -1); ok && a.pushes(n, total, grid.Positive) {
		return n
	}
	if n, ok := a.neighbour(i, 1); ok && a.pushes(n, total, grid.Negative) {
		return n
	}
	return -1
}

func (a kernelArgs) pushes(n int, than uint8, toward grid.Direction) bool {
	o := n * grid.Channels
	return a.frozen[o+grid.ChanTotal] > than && grid.Direction(a.frozen[o+grid.ChanDirection]) == toward
}
