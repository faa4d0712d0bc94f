package metrics

import "github.com/san-kum/tiltsand/internal/grid"

// Moving counts the particles scheduled to move in the last observed tick.
type Moving struct {
	name  string
	count int
}

func NewMoving() *Moving {
	return &Moving{name: "moving"}
}

func (m *Moving) Name() string { return m.name }

func (m *Moving) Observe(g *grid.Grid) {
	m.count = countChannel(g, grid.ChanLost)
}

func (m *Moving) Value() float64 { return float64(m.count) }

func (m *Moving) Reset() { m.count = 0 }

// Flow is the mean number of moving particles per observed tick.
type Flow struct {
	name    string
	sum     int
	samples int
}

func NewFlow() *Flow {
	return &Flow{name: "flow"}
}

func (f *Flow) Name() string { return f.name }

func (f *Flow) Observe(g *grid.Grid) {
	f.sum += countChannel(g, grid.ChanLost)
	f.samples++
}

func (f *Flow) Value() float64 {
	if f.samples == 0 {
		return 0
	}
	return float64(f.sum) / float64(f.samples)
}

func (f *Flow) Reset() {
	f.sum = 0
	f.samples = 0
}

func countChannel(g *grid.Grid, ch int) int {
	cells := g.Cells()
	n := 0
	for o := ch; o < len(cells); o += grid.Channels {
		if cells[o] != 0 {
			n++
		}
	}
	return n
}
