package grid

import (
	"fmt"
	"math/rand"
	"strings"
)

// Pattern names an initial particle layout.
type Pattern string

const (
	PatternEmpty  Pattern = "empty"
	PatternRamp   Pattern = "ramp"
	PatternRandom Pattern = "random"
	PatternPile   Pattern = "pile"
)

// Patterns lists the supported seed patterns.
func Patterns() []Pattern {
	return []Pattern{PatternEmpty, PatternRamp, PatternRandom, PatternPile}
}

func ParsePattern(s string) (Pattern, error) {
	p := Pattern(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Patterns() {
		if p == known {
			return p, nil
		}
	}
	return PatternEmpty, fmt.Errorf("%w: %q", ErrUnknownPattern, s)
}

// Fill clears the grid and seeds totals according to p. seed drives the
// random pattern only.
func (g *Grid) Fill(p Pattern, seed int64) error {
	g.Clear()
	switch p {
	case PatternEmpty:
	case PatternRamp:
		// Totals climb in steps of four and wrap at 80.
		for i := 0; i < g.Len(); i++ {
			g.cells[i*Channels+ChanTotal] = uint8((i * Channels) % 80)
		}
	case PatternRandom:
		rng := rand.New(rand.NewSource(seed))
		for i := 0; i < g.Len(); i++ {
			g.cells[i*Channels+ChanTotal] = uint8(rng.Intn(MaxTotal + 1))
		}
	case PatternPile:
		side := g.dim / 8
		if side < 1 {
			side = 1
		}
		lo := (g.dim - side) / 2
		for r := lo; r < lo+side; r++ {
			for c := lo; c < lo+side; c++ {
				g.SetTotal(r, c, MaxTotal)
			}
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownPattern, string(p))
	}
	return nil
}
