package metrics

import "github.com/san-kum/tiltsand/internal/grid"

// Saturated counts full cells in the last observed tick.
type Saturated struct {
	name  string
	count int
}

func NewSaturated() *Saturated {
	return &Saturated{name: "saturated"}
}

func (s *Saturated) Name() string { return s.name }

func (s *Saturated) Observe(g *grid.Grid) {
	cells := g.Cells()
	s.count = 0
	for o := grid.ChanTotal; o < len(cells); o += grid.Channels {
		if cells[o] == grid.MaxTotal {
			s.count++
		}
	}
}

func (s *Saturated) Value() float64 { return float64(s.count) }

func (s *Saturated) Reset() { s.count = 0 }

// Peak is the tallest committed total seen since the last Reset.
type Peak struct {
	name string
	max  uint8
}

func NewPeak() *Peak {
	return &Peak{name: "peak"}
}

func (p *Peak) Name() string { return p.name }

func (p *Peak) Observe(g *grid.Grid) {
	cells := g.Cells()
	for o := grid.ChanTotal; o < len(cells); o += grid.Channels {
		if cells[o] > p.max {
			p.max = cells[o]
		}
	}
}

func (p *Peak) Value() float64 { return float64(p.max) }

func (p *Peak) Reset() { p.max = 0 }
