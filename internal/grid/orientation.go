package grid

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Bias thresholds on the 0..200 gravity scale.
const (
	HintLow  = 41
	HintHigh = 159
)

var (
	gravity        = r3.Vec{X: 0, Y: -1, Z: 0}
	tangentRight   = r3.Vec{X: 1, Y: 0, Z: 0}
	tangentForward = r3.Vec{X: 0, Y: 0, Z: 1}
)

func identity4() *mat.Dense {
	return mat.NewDense(4, 4, []float64{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	})
}

// Rotate composes a rotation of angle radians about axis into the
// orientation, post-multiplied as a model matrix. Axes with a squared length
// of 0.5 or less mean "no rotation" and leave the orientation untouched.
func (g *Grid) Rotate(axis r3.Vec, angle float64) bool {
	if r3.Dot(axis, axis) <= 0.5 {
		return false
	}
	rot := r3.NewRotation(angle, axis)

	r := identity4()
	for j, e := range []r3.Vec{{X: 1}, {Y: 1}, {Z: 1}} {
		v := rot.Rotate(e)
		r.Set(0, j, v.X)
		r.Set(1, j, v.Y)
		r.Set(2, j, v.Z)
	}

	var m mat.Dense
	m.Mul(g.orientation, r)
	g.orientation = &m
	return true
}

// ResetOrientation restores the identity transform.
func (g *Grid) ResetOrientation() { g.orientation = identity4() }

// Orientation returns a copy of the 4×4 transform.
func (g *Grid) Orientation() *mat.Dense { return mat.DenseCopyOf(g.orientation) }

// OrientationGL returns the transform in column-major order.
func (g *Grid) OrientationGL() [16]float32 {
	var out [16]float32
	for c := 0; c < 4; c++ {
		for r := 0; r < 4; r++ {
			out[c*4+r] = float32(g.orientation.At(r, c))
		}
	}
	return out
}

// Transform applies the orientation to direction v (w = 0).
func (g *Grid) Transform(v r3.Vec) r3.Vec {
	m := g.orientation
	return r3.Vec{
		X: m.At(0, 0)*v.X + m.At(0, 1)*v.Y + m.At(0, 2)*v.Z,
		Y: m.At(1, 0)*v.X + m.At(1, 1)*v.Y + m.At(1, 2)*v.Z,
		Z: m.At(2, 0)*v.X + m.At(2, 1)*v.Y + m.At(2, 2)*v.Z,
	}
}

// GravityBias projects the pass tangent onto gravity and maps the result
// from [-1, 1] to the byte scale [0, 200].
func (g *Grid) GravityBias(a Axis) uint8 {
	var aoi float64
	if a == Horizontal {
		aoi = r3.Dot(g.Transform(tangentRight), gravity)
	} else {
		aoi = -r3.Dot(g.Transform(tangentForward), gravity)
	}
	v := math.Max(0, math.Min(255, aoi*100+100))
	return uint8(v)
}

// HintFor converts a gravity bias into the pass-wide direction hint.
func HintFor(bias uint8) Direction {
	switch {
	case bias < HintLow:
		return Negative
	case bias > HintHigh:
		return Positive
	}
	return None
}

// Hint returns the direction hint for a pass along a.
func (g *Grid) Hint(a Axis) Direction { return HintFor(g.GravityBias(a)) }
