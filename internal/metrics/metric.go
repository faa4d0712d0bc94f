// Package metrics summarizes the grid as ticks go by.
package metrics

import "github.com/san-kum/tiltsand/internal/grid"

// Metric observes the grid once per tick.
type Metric interface {
	Name() string
	Observe(g *grid.Grid)
	Value() float64
	Reset()
}

// Standard returns fresh instances of every metric, in report order.
func Standard() []Metric {
	return []Metric{NewMass(), NewMoving(), NewSaturated(), NewPeak(), NewFlow()}
}
