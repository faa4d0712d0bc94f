package viz

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/tiltsand/internal/grid"
)

// Camera looks straight down the +y axis at the board with a simple
// perspective divide, so edges tipped toward the viewer grow.
type Camera struct {
	Distance float64
	Zoom     float64
}

func NewCamera() *Camera {
	return &Camera{Distance: 4, Zoom: 1}
}

func (c *Camera) ZoomIn()  { c.Zoom = min(4, c.Zoom*1.2) }
func (c *Camera) ZoomOut() { c.Zoom = max(0.25, c.Zoom/1.2) }

// Project maps a board-space point onto a sw×sh dot canvas. It returns the
// dot coordinates and whether the point is in front of the camera.
func (c *Camera) Project(p r3.Vec, sw, sh int) (int, int, bool) {
	if p.Y >= c.Distance {
		return 0, 0, false
	}
	scale := c.Distance / (c.Distance - p.Y) * c.Zoom * float64(min(sw, sh)) / 3
	sx := int(p.X*scale) + sw/2
	sy := int(-p.Z*scale) + sh/2
	return sx, sy, true
}

// boardPoint maps normalized grid coordinates (col, row in [-1, 1]) to
// board space. Columns run along +x and rows along -z, which matches the
// sense of the gravity hints.
func boardPoint(col, row float64) r3.Vec {
	return r3.Vec{X: col, Z: -row}
}

// DrawBoard sketches the board outline under the grid's orientation and an
// arrow pointing downhill, scaled by the gravity bias of each axis.
func DrawBoard(c *Canvas, g *grid.Grid, cam *Camera) {
	sw, sh := c.Width*2, c.Height*4
	project := func(col, row float64) (int, int, bool) {
		return cam.Project(g.Transform(boardPoint(col, row)), sw, sh)
	}
	line := func(c0, r0, c1, r1 float64) {
		x0, y0, ok0 := project(c0, r0)
		x1, y1, ok1 := project(c1, r1)
		if ok0 && ok1 {
			c.DrawLine(x0, y0, x1, y1)
		}
	}

	corners := [][2]float64{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}
	for i, a := range corners {
		b := corners[(i+1)%len(corners)]
		line(a[0], a[1], b[0], b[1])
	}

	dx, dy := Slope(g)
	if dx == 0 && dy == 0 {
		if x, y, ok := project(0, 0); ok {
			c.Set(x, y)
		}
		return
	}
	line(0, 0, dx*0.8, dy*0.8)
}

// Slope returns the downhill direction in grid terms: positive x toward
// higher columns, positive y toward higher rows, each in [-1, 1].
func Slope(g *grid.Grid) (float64, float64) {
	h := (float64(g.GravityBias(grid.Horizontal)) - 100) / 100
	v := (float64(g.GravityBias(grid.Vertical)) - 100) / 100
	return h, v
}
