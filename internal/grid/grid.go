// Package grid holds the simulation lattice: a square, row-major buffer of
// four-channel cells and the orientation transform describing its tilt.
//
// The buffer layout is shared with the renderer: D*D cells of four bytes in
// the order (direction, gained, lost, total).
package grid

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// DefaultDim is the side of the lattice when none is configured.
const DefaultDim = 64

// Grid is not safe for concurrent use except through disjoint cell ranges
// handed out by a dispatcher.
type Grid struct {
	dim         int
	cells       []byte
	frozen      []byte
	orientation *mat.Dense
	next        Axis
}

// Option configures a Grid.
type Option func(*Grid)

// WithFirstPass sets the axis of the first tick. The default is Vertical.
func WithFirstPass(a Axis) Option {
	return func(g *Grid) { g.next = a }
}

// New allocates a zeroed dim×dim grid with an identity orientation.
func New(dim int, opts ...Option) (*Grid, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidDim, dim)
	}
	g := &Grid{
		dim:         dim,
		cells:       make([]byte, dim*dim*Channels),
		frozen:      make([]byte, dim*dim*Channels),
		orientation: identity4(),
		next:        Vertical,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

func (g *Grid) Dim() int { return g.dim }

// Len returns the number of cells.
func (g *Grid) Len() int { return g.dim * g.dim }

// Cells exposes the backing buffer.
func (g *Grid) Cells() []byte { return g.cells }

// Index returns the cell index of (row, col).
func (g *Grid) Index(row, col int) int { return row*g.dim + col }

// Coords returns the (row, col) of cell index i.
func (g *Grid) Coords(i int) (row, col int) { return i / g.dim, i % g.dim }

func (g *Grid) At(row, col int) Cell {
	o := g.Index(row, col) * Channels
	return Cell{
		Direction: Direction(g.cells[o+ChanDirection]),
		Gained:    g.cells[o+ChanGained],
		Lost:      g.cells[o+ChanLost],
		Total:     g.cells[o+ChanTotal],
	}
}

func (g *Grid) Set(row, col int, c Cell) {
	o := g.Index(row, col) * Channels
	g.cells[o+ChanDirection] = uint8(c.Direction)
	g.cells[o+ChanGained] = c.Gained
	g.cells[o+ChanLost] = c.Lost
	g.cells[o+ChanTotal] = c.Total
}

func (g *Grid) SetTotal(row, col int, total uint8) {
	g.cells[g.Index(row, col)*Channels+ChanTotal] = total
}

func (g *Grid) SetDirection(row, col int, d Direction) {
	g.cells[g.Index(row, col)*Channels+ChanDirection] = uint8(d)
}

// Pending returns the total of (row, col) after its transfers commit.
func (g *Grid) Pending(row, col int) uint8 { return g.At(row, col).Pending() }

// Mass is the sum of all committed totals.
func (g *Grid) Mass() int {
	sum := 0
	for o := ChanTotal; o < len(g.cells); o += Channels {
		sum += int(g.cells[o])
	}
	return sum
}

// PendingMass is the sum of totals as they will be after the next commit.
func (g *Grid) PendingMass() int {
	sum := 0
	for o := 0; o < len(g.cells); o += Channels {
		sum += int(Commit(g.cells[o+ChanTotal], g.cells[o+ChanGained], g.cells[o+ChanLost]))
	}
	return sum
}

// NextPass returns the axis the next tick will use.
func (g *Grid) NextPass() Axis { return g.next }

// Advance flips the pass axis and returns the new value.
func (g *Grid) Advance() Axis {
	g.next = g.next.Next()
	return g.next
}

// Freeze copies the live buffer into the grid's read-only view and returns
// it. The view stays valid until the next Freeze.
func (g *Grid) Freeze() []byte {
	copy(g.frozen, g.cells)
	return g.frozen
}

// Snapshot returns a copy of the live buffer.
func (g *Grid) Snapshot() []byte {
	frame := make([]byte, len(g.cells))
	copy(frame, g.cells)
	return frame
}

// Restore replaces the live buffer with frame.
func (g *Grid) Restore(frame []byte) error {
	if len(frame) != len(g.cells) {
		return fmt.Errorf("%w: got %d bytes, want %d", ErrFrameSize, len(frame), len(g.cells))
	}
	copy(g.cells, frame)
	return nil
}

// Clear zeroes every cell.
func (g *Grid) Clear() {
	for i := range g.cells {
		g.cells[i] = 0
	}
}
