package world

import (
	"github.com/san-kum/rigid2d/internal/rigidbody"
)

// clampVelocity rescales v to max while keeping its direction.
func clampVelocity(b *rigidbody.Body, max float64) bool {
	if b.Velocity.LenSq() <= max*max {
		return false
	}
	b.Velocity = b.Velocity.Normalize().Scale(max)
	return true
}

// reflectWalls keeps the body inside [0, w] x [0, h] by snapping it back
// to the wall and negating the matching velocity component. Each wall is
// checked on its own, so a body wider than the domain hits both walls of
// an axis in one step and ends up against the far one.
func reflectWalls(b *rigidbody.Body, w, h float64) bool {
	r := b.Radius
	hit := false

	if b.Position.X-r < 0 {
		b.Position.X = r
		b.Velocity.X = -b.Velocity.X
		hit = true
	}
	if b.Position.X+r > w {
		b.Position.X = w - r
		b.Velocity.X = -b.Velocity.X
		hit = true
	}

	if b.Position.Y-r < 0 {
		b.Position.Y = r
		b.Velocity.Y = -b.Velocity.Y
		hit = true
	}
	if b.Position.Y+r > h {
		b.Position.Y = h - r
		b.Velocity.Y = -b.Velocity.Y
		hit = true
	}

	return hit
}
