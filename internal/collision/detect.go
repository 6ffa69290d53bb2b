// Package collision detects overlap between pairs of bodies and resolves
// contacts with impulses.
//
// Detection dispatches on the shape pair: circle-circle, circle-square and
// square-square (Separating Axis Theorem). The circle tests use a strict
// inequality on distances, so a circle that exactly touches another body
// does not collide. The square-square test counts touching projections as
// overlap, so squares in contact collide with zero depth.
// Resolution is sequential and pairwise; see [Resolve].
package collision

import (
	"fmt"
	"math"

	"github.com/san-kum/rigid2d/internal/rigidbody"
	"github.com/san-kum/rigid2d/internal/vecmath"
)

// CircleRectPolicy selects how circle-square tests treat square rotation.
type CircleRectPolicy int

const (
	// PolicyAxisAligned ignores the square's angle and clamps against its
	// unrotated box.
	PolicyAxisAligned CircleRectPolicy = iota
	// PolicyOriented clamps in the square's local frame.
	PolicyOriented
)

func (p CircleRectPolicy) String() string {
	if p == PolicyOriented {
		return "oriented"
	}
	return "axis_aligned"
}

func ParsePolicy(s string) (CircleRectPolicy, error) {
	switch s {
	case "", "axis_aligned", "aabb":
		return PolicyAxisAligned, nil
	case "oriented", "obb":
		return PolicyOriented, nil
	}
	return 0, fmt.Errorf("unknown circle-rect policy: %s", s)
}

// Contact describes an overlap found during one step. Normal is a unit
// vector pointing from the first body toward the second.
type Contact struct {
	A, B   int
	Normal vecmath.Vec2
	Depth  float64
}

// Overlaps reports whether a and b collide under the axis-aligned policy.
func Overlaps(a, b *rigidbody.Body) bool {
	_, ok := Detect(a, b, PolicyAxisAligned)
	return ok
}

// Detect tests a against b and returns the contact geometry on overlap.
// A bounding-circle test runs first; it is conservative for squares because
// it uses the inscribed circle (radius = half-extent).
func Detect(a, b *rigidbody.Body, policy CircleRectPolicy) (Contact, bool) {
	if CircleCircle(a, b) {
		if a.Shape == rigidbody.KindCircle && b.Shape == rigidbody.KindCircle {
			return circleContact(a, b), true
		}
		if c, ok := narrow(a, b, policy); ok {
			return c, true
		}
		return circleContact(a, b), true
	}
	if a.Shape == rigidbody.KindCircle && b.Shape == rigidbody.KindCircle {
		return Contact{}, false
	}
	return narrow(a, b, policy)
}

func narrow(a, b *rigidbody.Body, policy CircleRectPolicy) (Contact, bool) {
	switch {
	case a.Shape == rigidbody.KindSquare && b.Shape == rigidbody.KindSquare:
		return SquareSquare(a, b)
	case a.Shape == rigidbody.KindCircle && b.Shape == rigidbody.KindSquare:
		return CircleSquare(a, b, policy)
	case a.Shape == rigidbody.KindSquare && b.Shape == rigidbody.KindCircle:
		c, ok := CircleSquare(b, a, policy)
		c.Normal = c.Normal.Neg()
		return c, ok
	}
	return Contact{}, false
}

// CircleCircle compares the squared center distance against the squared sum
// of radii.
func CircleCircle(a, b *rigidbody.Body) bool {
	r := a.Radius + b.Radius
	return a.Position.DistSq(b.Position) < r*r
}

func circleContact(a, b *rigidbody.Body) Contact {
	delta := b.Position.Sub(a.Position)
	dist := delta.Len()
	n := vecmath.New(1, 0)
	if dist > 0 {
		n = delta.Scale(1 / dist)
	}
	return Contact{Normal: n, Depth: a.Radius + b.Radius - dist}
}

// CircleSquare tests circle c against square s by clamping the circle center
// into the square's box. The returned normal points from c toward s.
func CircleSquare(c, s *rigidbody.Body, policy CircleRectPolicy) (Contact, bool) {
	center := c.Position
	angle := 0.0
	if policy == PolicyOriented {
		angle = s.Angle
		center = center.Sub(s.Position).Rotate(-angle).Add(s.Position)
	}

	ext := vecmath.New(s.Radius, s.Radius)
	closest := center.Clamp(s.Position.Sub(ext), s.Position.Add(ext))

	delta := closest.Sub(center)
	distSq := delta.LenSq()
	if distSq >= c.Radius*c.Radius {
		return Contact{}, false
	}

	dist := math.Sqrt(distSq)
	var n vecmath.Vec2
	if dist > 0 {
		n = delta.Scale(1 / dist)
	} else {
		// center inside the box: push out along the center line
		n = s.Position.Sub(center).Normalize()
		if n == vecmath.Zero {
			n = vecmath.New(1, 0)
		}
	}
	return Contact{Normal: n.Rotate(angle), Depth: c.Radius - dist}, true
}
