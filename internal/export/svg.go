// Package export renders saved frames and tick series as standalone SVG.
package export

import (
	"errors"
	"fmt"
	"strings"

	"github.com/san-kum/tiltsand/internal/grid"
	"github.com/san-kum/tiltsand/internal/viz"
)

var ErrFrameSize = errors.New("export: frame size does not match dim")

const svgHeader = `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%[1]v" height="%[2]v" viewBox="0 0 %[1]v %[2]v">
<rect width="100%%" height="100%%" fill="%[3]s"/>
`

// FrameToSVG draws one square per non-empty cell of a dim×dim frame,
// shaded by its total.
func FrameToSVG(frame []byte, dim int, scale float64, theme viz.Theme) (string, error) {
	if dim <= 0 || len(frame) != dim*dim*grid.Channels {
		return "", fmt.Errorf("%w: %d bytes for dim %d", ErrFrameSize, len(frame), dim)
	}
	side := float64(dim) * scale

	var sb strings.Builder
	fmt.Fprintf(&sb, svgHeader, side, side, theme.Background)
	for i := 0; i < dim*dim; i++ {
		total := frame[i*grid.Channels+grid.ChanTotal]
		if total == 0 {
			continue
		}
		row, col := i/dim, i%dim
		fmt.Fprintf(&sb, `<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s"/>`+"\n",
			float64(col)*scale, float64(row)*scale, scale, scale, theme.Shade(total))
	}
	sb.WriteString("</svg>")
	return sb.String(), nil
}

// CanvasToSVG converts a Braille canvas to dots.
func CanvasToSVG(canvas *viz.Canvas, scale float64, fill string) string {
	if canvas == nil {
		return ""
	}

	width := float64(canvas.Width) * scale * 2
	height := float64(canvas.Height) * scale * 4

	var sb strings.Builder
	fmt.Fprintf(&sb, svgHeader, width, height, "#0a0a0a")
	fmt.Fprintf(&sb, "<g fill=\"%s\">\n", fill)

	dotRadius := scale * 0.4
	for y := 0; y < canvas.Height*4; y++ {
		for x := 0; x < canvas.Width*2; x++ {
			if canvas.IsSet(x, y) {
				fmt.Fprintf(&sb, `<circle cx="%.1f" cy="%.1f" r="%.1f"/>`+"\n",
					float64(x)*scale+scale/2, float64(y)*scale+scale/2, dotRadius)
			}
		}
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// SeriesToSVG plots values against their index as a polyline.
func SeriesToSVG(values []float64, width, height int, strokeColor string) string {
	if len(values) < 2 {
		return ""
	}

	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	rng := hi - lo
	if rng == 0 {
		rng = 1
	}
	lo -= rng * 0.1
	rng *= 1.2

	var sb strings.Builder
	fmt.Fprintf(&sb, svgHeader, width, height, "#0a0a0a")
	fmt.Fprintf(&sb, `<path fill="none" stroke="%s" stroke-width="1.5" d="M`, strokeColor)

	last := float64(len(values) - 1)
	for i, v := range values {
		x := float64(i) / last * float64(width)
		y := float64(height) - (v-lo)/rng*float64(height)
		if i == 0 {
			fmt.Fprintf(&sb, "%.1f,%.1f", x, y)
		} else {
			fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
		}
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}
