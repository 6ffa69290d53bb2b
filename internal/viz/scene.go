package viz

import (
	"math"

	"github.com/san-kum/rigid2d/internal/vecmath"
	"github.com/san-kum/rigid2d/internal/world"
)

// Viewport maps world coordinates onto canvas dots. World and canvas are both
// y-down, so the mapping is a uniform scale plus an offset that centers the
// domain.
type Viewport struct {
	Scale   float64
	OffsetX float64
	OffsetY float64
}

// Fit returns the viewport that shows a w x h domain on c without
// distortion. A disabled domain (w or h <= 0) falls back to 800x600.
func Fit(c *Canvas, w, h float64) Viewport {
	if w <= 0 || h <= 0 {
		w, h = 800, 600
	}
	cw, ch := c.Dots()
	scale := math.Min(float64(cw-1)/w, float64(ch-1)/h)
	return Viewport{
		Scale:   scale,
		OffsetX: (float64(cw-1) - w*scale) / 2,
		OffsetY: (float64(ch-1) - h*scale) / 2,
	}
}

func (v Viewport) Project(p vecmath.Vec2) vecmath.Vec2 {
	return vecmath.New(p.X*v.Scale+v.OffsetX, p.Y*v.Scale+v.OffsetY)
}

func (v Viewport) projectInt(p vecmath.Vec2) (int, int) {
	q := v.Project(p)
	return roundInt(q.X), roundInt(q.Y)
}

// Corners returns the world-space corners of a square body, in the same
// order as rigidbody.Body.Vertices.
func Corners(b world.BodyState) [4]vecmath.Vec2 {
	r := b.Radius
	corners := [4]vecmath.Vec2{{X: -r, Y: -r}, {X: r, Y: -r}, {X: r, Y: r}, {X: -r, Y: r}}
	for i, c := range corners {
		corners[i] = b.Position.Add(c.Rotate(b.Angle))
	}
	return corners
}

// DrawBodies renders every body onto c. Circles get a spoke from the center
// so their rotation is visible.
func DrawBodies(c *Canvas, v Viewport, bodies []world.BodyState) {
	for _, b := range bodies {
		switch b.Shape {
		case "square":
			corners := Corners(b)
			pts := make([]vecmath.Vec2, len(corners))
			for i, p := range corners {
				pts[i] = v.Project(p)
			}
			c.DrawPolygon(pts)
		default:
			cx, cy := v.projectInt(b.Position)
			r := roundInt(b.Radius * v.Scale)
			c.DrawCircle(cx, cy, r)
			if r >= 3 {
				ex, ey := v.projectInt(b.Position.Add(vecmath.New(b.Radius, 0).Rotate(b.Angle)))
				c.DrawLine(cx, cy, ex, ey)
			}
		}
	}
}

// DrawBounds draws the domain rectangle.
func DrawBounds(c *Canvas, v Viewport, w, h float64) {
	if w <= 0 || h <= 0 {
		return
	}
	c.DrawPolygon([]vecmath.Vec2{
		v.Project(vecmath.New(0, 0)),
		v.Project(vecmath.New(w, 0)),
		v.Project(vecmath.New(w, h)),
		v.Project(vecmath.New(0, h)),
	})
}
