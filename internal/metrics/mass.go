package metrics

import "github.com/san-kum/tiltsand/internal/grid"

// Mass tracks the particle count after pending transfers commit, and the
// largest deviation from the first observation.
type Mass struct {
	name     string
	initial  int
	current  int
	maxDrift int
	samples  int
}

func NewMass() *Mass {
	return &Mass{name: "mass"}
}

func (m *Mass) Name() string { return m.name }

func (m *Mass) Observe(g *grid.Grid) {
	m.current = g.PendingMass()
	if m.samples == 0 {
		m.initial = m.current
	}
	drift := m.current - m.initial
	if drift < 0 {
		drift = -drift
	}
	if drift > m.maxDrift {
		m.maxDrift = drift
	}
	m.samples++
}

func (m *Mass) Value() float64 { return float64(m.current) }

// Drift is the largest absolute change in mass seen since the last Reset.
func (m *Mass) Drift() int { return m.maxDrift }

func (m *Mass) Reset() {
	m.initial = 0
	m.current = 0
	m.maxDrift = 0
	m.samples = 0
}
