// Package stamp builds the radial impulse field and places it onto the grid.
//
// A [Stamp] is computed once and never changes. Applying it means clipping
// a normalized target rectangle against the unit square ([Place]),
// resampling the visible part of the field onto the covered grid cells and
// turning each sampled vector component into a direction bit ([Apply]).
package stamp

import (
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/san-kum/tiltsand/internal/dispatch"
)

// DefaultSize is the side of a stamp built with Default.
const DefaultSize = 64

// Variety selects the shape of the impulse field.
type Variety int

const (
	// Invalid is returned by ParseVariety for unknown names.
	Invalid Variety = -1
	Ellipse Variety = 0
)

func (v Variety) String() string {
	if v == Ellipse {
		return "ellipse"
	}
	return fmt.Sprintf("variety(%d)", int(v))
}

// ParseVariety maps a configuration name to a Variety. Unknown names yield
// Invalid, which New replaces with Ellipse after logging a warning.
func ParseVariety(name string) Variety {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "ellipse":
		return Ellipse
	}
	return Invalid
}

// Vector is one field sample; both components lie in [-127, 127].
type Vector struct {
	DX, DY int8
}

// Stamp is an immutable square vector field.
type Stamp struct {
	variety Variety
	size    int
	field   []Vector
}

type options struct {
	pool   *dispatch.Pool
	logger *slog.Logger
}

// Option configures stamp construction.
type Option func(*options)

// WithPool builds the field on the given dispatcher instead of inline.
func WithPool(p *dispatch.Pool) Option {
	return func(o *options) { o.pool = p }
}

func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// Default builds a DefaultSize×DefaultSize stamp.
func Default(variety Variety, opts ...Option) (*Stamp, error) {
	return New(variety, DefaultSize, DefaultSize, opts...)
}

// New builds a width×height stamp of the given variety.
func New(variety Variety, width, height int, opts ...Option) (*Stamp, error) {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	if width != height {
		return nil, fmt.Errorf("%w: %dx%d", ErrNotSquare, width, height)
	}

	if variety != Ellipse {
		o.logger.Warn("unknown stamp variety, falling back to ellipse", "variety", variety.String())
		variety = Ellipse
	}

	s := &Stamp{
		variety: variety,
		size:    width,
		field:   make([]Vector, width*height),
	}

	fill := func(begin, end int) { s.fillEllipse(begin, end) }
	if o.pool == nil {
		fill(0, len(s.field))
		return s, nil
	}
	if err := o.pool.Dispatch(len(s.field), fill); err != nil {
		return nil, fmt.Errorf("build stamp field: %w", err)
	}
	return s, nil
}

func (s *Stamp) Variety() Variety { return s.variety }

// Size returns the side of the field.
func (s *Stamp) Size() int { return s.size }

// At returns the vector at (row, col).
func (s *Stamp) At(row, col int) Vector { return s.field[row*s.size+col] }

// fillEllipse writes cells [begin, end). Coordinates are normalized to the
// unit circle; cells outside it stay zero. The magnitude falls from 127 at
// the centre to 0 on the rim and points away from the centre.
func (s *Stamp) fillEllipse(begin, end int) {
	n := float64(s.size)
	c := (n - 1) / 2
	for i := begin; i < end; i++ {
		row, col := i/s.size, i%s.size
		dx := (float64(col) - c) * 2 / n
		dy := (float64(row) - c) * 2 / n

		r2 := dx*dx + dy*dy
		if r2 > 1 {
			continue
		}
		r := math.Sqrt(r2)
		if r == 0 {
			continue
		}

		m := 127 * (math.Sqrt(2-r2) - 1) / (math.Sqrt2 - 1)
		s.field[i] = Vector{
			DX: int8(math.Round(m * dx / r)),
			DY: int8(math.Round(m * dy / r)),
		}
	}
}
