package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/tiltsand/internal/grid"
)

// RenderHeatmap draws cell totals with upper half blocks: each character
// covers two rows, the foreground shading the upper and the background the
// lower. Grids wider than maxCols are sampled down to fit.
func RenderHeatmap(g *grid.Grid, theme Theme, maxCols int) string {
	dim := g.Dim()
	step := 1
	if maxCols > 0 && dim > maxCols {
		step = (dim + maxCols - 1) / maxCols
	}

	cells := g.Cells()
	total := func(row, col int) uint8 {
		if row >= dim {
			return 0
		}
		return cells[(row*dim+col)*grid.Channels+grid.ChanTotal]
	}

	var b strings.Builder
	for row := 0; row < dim; row += 2 * step {
		for col := 0; col < dim; col += step {
			upper := theme.Shade(total(row, col))
			lower := theme.Shade(total(row+step, col))
			b.WriteString(lipgloss.NewStyle().Foreground(upper).Background(lower).Render("▀"))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// densityRamp orders glyphs from empty to full.
const densityRamp = " .:-=+*#%@"

// Glyph maps a total onto densityRamp.
func Glyph(total uint8) byte {
	if total == 0 {
		return densityRamp[0]
	}
	i := 1 + int(total)*(len(densityRamp)-2)/int(grid.MaxTotal)
	return densityRamp[min(i, len(densityRamp)-1)]
}

// RenderASCII draws totals as density glyphs, one character per sampled
// cell, without colour.
func RenderASCII(g *grid.Grid, maxCols int) string {
	dim := g.Dim()
	step := 1
	if maxCols > 0 && dim > maxCols {
		step = (dim + maxCols - 1) / maxCols
	}
	cells := g.Cells()

	var b strings.Builder
	for row := 0; row < dim; row += 2 * step {
		for col := 0; col < dim; col += step {
			b.WriteByte(Glyph(cells[(row*dim+col)*grid.Channels+grid.ChanTotal]))
		}
		b.WriteByte('\n')
	}
	return b.String()
}
