package collision

import (
	"github.com/san-kum/rigid2d/internal/rigidbody"
)

// Impulse reports the magnitudes applied by one resolution.
type Impulse struct {
	Normal   float64
	Friction float64
}

// Applied reports whether the resolution changed any velocity.
func (i Impulse) Applied() bool {
	return i.Normal != 0 || i.Friction != 0
}

// Resolve applies a restitution impulse along c.Normal and a friction
// impulse along the tangent to bodies a and b. It is a no-op when the bodies
// are already separating along the normal (vB-vA)·n >= 0, or when both are
// static.
//
// Friction is a velocity-domain impulse: it removes the fraction mu of the
// relative tangential velocity measured before the normal impulse, shared
// between the bodies by inverse mass.
func Resolve(a, b *rigidbody.Body, c Contact, restitution, friction float64) Impulse {
	invSum := a.InvMass + b.InvMass
	if invSum == 0 {
		return Impulse{}
	}

	n := c.Normal
	rel := b.Velocity.Sub(a.Velocity)
	vn := rel.Dot(n)
	if vn >= 0 {
		return Impulse{}
	}

	j := -(1 + restitution) * vn / invSum
	jn := n.Scale(j)
	a.ApplyImpulse(jn.Neg())
	b.ApplyImpulse(jn)

	out := Impulse{Normal: j}
	if friction == 0 {
		return out
	}

	tangent := rel.Sub(n.Scale(vn))
	jt := tangent.Scale(friction / invSum)
	a.ApplyImpulse(jt)
	b.ApplyImpulse(jt.Neg())
	out.Friction = jt.Len()
	return out
}
