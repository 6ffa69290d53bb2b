package collision

import (
	"math"

	"github.com/san-kum/rigid2d/internal/rigidbody"
	"github.com/san-kum/rigid2d/internal/vecmath"
)

// Axes returns the 8 candidate separating axes: the unit edge normals of
// both squares.
func Axes(va, vb [4]vecmath.Vec2) [8]vecmath.Vec2 {
	var axes [8]vecmath.Vec2
	for i := 0; i < 4; i++ {
		axes[i] = va[(i+1)%4].Sub(va[i]).Perp().Normalize()
		axes[4+i] = vb[(i+1)%4].Sub(vb[i]).Perp().Normalize()
	}
	return axes
}

// Project returns the interval covered by the vertices along axis.
func Project(vertices [4]vecmath.Vec2, axis vecmath.Vec2) (min, max float64) {
	min = axis.Dot(vertices[0])
	max = min
	for _, v := range vertices[1:] {
		p := axis.Dot(v)
		min = math.Min(min, p)
		max = math.Max(max, p)
	}
	return min, max
}

// SquareSquare runs the Separating Axis Theorem over both squares' rotated
// edge normals. Intervals that only touch still count as overlapping. The
// contact normal is the axis of least overlap, oriented from a toward b.
func SquareSquare(a, b *rigidbody.Body) (Contact, bool) {
	va, vb := a.Vertices(), b.Vertices()

	best := math.Inf(1)
	var bestAxis vecmath.Vec2
	for _, axis := range Axes(va, vb) {
		min1, max1 := Project(va, axis)
		min2, max2 := Project(vb, axis)
		if max1 < min2 || max2 < min1 {
			return Contact{}, false
		}
		overlap := math.Min(max1, max2) - math.Max(min1, min2)
		if overlap < best {
			best = overlap
			bestAxis = axis
		}
	}

	if bestAxis.Dot(b.Position.Sub(a.Position)) < 0 {
		bestAxis = bestAxis.Neg()
	}
	return Contact{Normal: bestAxis, Depth: best}, true
}
