package stamp

import (
	"fmt"
	"math"

	"github.com/san-kum/tiltsand/internal/dispatch"
	"github.com/san-kum/tiltsand/internal/grid"
)

// Impulse is a request to stamp the field over a normalized rectangle of
// the grid. The rectangle [Center-Size/2, Center+Size/2] must intersect
// [0, 1] on both axes to have any effect.
type Impulse struct {
	CenterX, CenterY float64
	Width, Height    float64
	// Strength is carried through but does not scale the direction bits.
	Strength float64
}

// Validate rejects non-finite values, negative extents and negative
// strength.
func (imp Impulse) Validate() error {
	for _, v := range []float64{imp.CenterX, imp.CenterY, imp.Width, imp.Height, imp.Strength} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: non-finite value", ErrInvalidImpulse)
		}
	}
	if imp.Width < 0 || imp.Height < 0 {
		return fmt.Errorf("%w: negative extent %gx%g", ErrInvalidImpulse, imp.Width, imp.Height)
	}
	if imp.Strength < 0 {
		return fmt.Errorf("%w: negative strength %g", ErrInvalidImpulse, imp.Strength)
	}
	return nil
}

// Rect is an integer sub-rectangle in stamp or grid cells.
type Rect struct {
	Row, Col      int
	Height, Width int
}

func (r Rect) Empty() bool { return r.Height <= 0 || r.Width <= 0 }

// Placement pairs the part of the stamp that is read with the part of the
// grid that is written.
type Placement struct {
	Source Rect
	Dest   Rect
}

// ClipStart returns where [0, 1] begins inside [center-size/2,
// center+size/2], as a fraction of that interval.
func ClipStart(size, center float64) float64 {
	start := center - size/2
	end := center + size/2
	if start >= 0 || end == start {
		return 0
	}
	return (0 - start) / (end - start)
}

// ClipEnd returns where [0, 1] ends inside [center-size/2, center+size/2],
// as a fraction of that interval.
func ClipEnd(size, center float64) float64 {
	start := center - size/2
	end := center + size/2
	if end <= 1 || end == start {
		return 1
	}
	return (1 - start) / (end - start)
}

// clipAxis returns the source (stamp) and destination (grid) spans of one
// axis as start index and extent.
func clipAxis(size, center float64, stampSize, gridDim int) (srcStart, srcLen, dstStart, dstLen int) {
	from := ClipStart(size, center)
	to := ClipEnd(size, center)

	lo := math.Max(0, center-size/2)
	hi := math.Min(1, center+size/2)

	srcStart = int(from * float64(stampSize))
	srcLen = int(math.Max(0, to-from) * float64(stampSize))
	dstStart = int(lo * float64(gridDim))
	dstLen = int(math.Max(0, hi-lo) * float64(gridDim))
	return srcStart, srcLen, dstStart, dstLen
}

// Place clips imp against the unit square and converts the visible part to
// stamp and grid rectangles. A rectangle that covers no grid cell yields an
// empty Placement and ErrOffGrid.
func Place(imp Impulse, stampSize, gridDim int) (Placement, error) {
	if err := imp.Validate(); err != nil {
		return Placement{}, err
	}

	var p Placement
	p.Source.Col, p.Source.Width, p.Dest.Col, p.Dest.Width = clipAxis(imp.Width, imp.CenterX, stampSize, gridDim)
	p.Source.Row, p.Source.Height, p.Dest.Row, p.Dest.Height = clipAxis(imp.Height, imp.CenterY, stampSize, gridDim)

	if p.Dest.Empty() {
		return Placement{}, fmt.Errorf("%w: center (%g, %g) size %gx%g",
			ErrOffGrid, imp.CenterX, imp.CenterY, imp.Width, imp.Height)
	}
	return p, nil
}

type applyArgs struct {
	cells []byte
	dim   int
	s     *Stamp
	p     Placement
	axis  grid.Axis
}

// Apply sets the direction channel over p.Dest from the sign of the sampled
// field component: DX for a horizontal pass, DY for a vertical one. Zero
// samples leave the cell untouched. Destination rows are split across the
// pool's workers.
func Apply(pool *dispatch.Pool, g *grid.Grid, s *Stamp, p Placement, axis grid.Axis) error {
	if p.Dest.Empty() {
		return nil
	}
	args := applyArgs{cells: g.Cells(), dim: g.Dim(), s: s, p: p, axis: axis}
	return dispatch.For(pool, p.Dest.Height, args, applyRows)
}

func applyRows(begin, end int, a applyArgs) {
	src, dst := a.p.Source, a.p.Dest
	last := a.s.size - 1
	for y := begin; y < end; y++ {
		sy := min(y*src.Height/dst.Height+src.Row, last)
		rowBase := (y + dst.Row) * a.dim
		for x := 0; x < dst.Width; x++ {
			sx := min(x*src.Width/dst.Width+src.Col, last)
			v := a.s.field[sy*a.s.size+sx]

			c := v.DX
			if a.axis == grid.Vertical {
				c = v.DY
			}
			o := (rowBase+x+dst.Col)*grid.Channels + grid.ChanDirection
			switch {
			case c < 0:
				a.cells[o] = uint8(grid.Negative)
			case c > 0:
				a.cells[o] = uint8(grid.Positive)
			}
		}
	}
}
