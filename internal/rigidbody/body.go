// Package rigidbody holds per-body physical state and its integration.
//
// A body is either a circle or a square (side 2*Radius). Mass 0 denotes a
// static body: its inverse mass and inverse inertia are zero, so forces,
// torques and impulses never move it.
//
// Forces are accumulated into Acceleration between steps and cleared by
// [Body.Integrate]; they are not persistent.
package rigidbody

import (
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/rigid2d/internal/integrators"
	"github.com/san-kum/rigid2d/internal/vecmath"
)

var (
	// ErrInvalidMass indicates a negative or non-finite mass.
	ErrInvalidMass = errors.New("rigidbody: invalid mass")

	// ErrInvalidShape indicates an unknown shape kind or a non-positive size.
	ErrInvalidShape = errors.New("rigidbody: invalid shape")
)

// DefaultRadius is used when a shape is given without a size.
const DefaultRadius = 1.0

var defaultIntegrator = integrators.NewRK4()

type Body struct {
	Position     vecmath.Vec2
	Velocity     vecmath.Vec2
	Acceleration vecmath.Vec2

	Mass    float64
	InvMass float64

	Angle           float64
	AngularVelocity float64
	Inertia         float64
	InvInertia      float64

	Radius float64
	Shape  ShapeKind

	// Drag is carried as configuration for air resistance; the dynamics do
	// not read it.
	Drag float64
}

// New builds a body at rest. It fails with ErrInvalidMass for negative mass;
// zero mass makes the body static.
func New(mass float64, position vecmath.Vec2, shape Shape, angle, drag float64) (*Body, error) {
	if mass < 0 || math.IsNaN(mass) || math.IsInf(mass, 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMass, mass)
	}
	if shape.Kind != KindCircle && shape.Kind != KindSquare {
		return nil, fmt.Errorf("%w: %s", ErrInvalidShape, shape.Kind)
	}
	if shape.Radius == 0 {
		shape.Radius = DefaultRadius
	}
	if shape.Radius < 0 || math.IsNaN(shape.Radius) || math.IsInf(shape.Radius, 0) {
		return nil, fmt.Errorf("%w: radius %v", ErrInvalidShape, shape.Radius)
	}

	b := &Body{
		Position: position,
		Mass:     mass,
		Angle:    angle,
		Radius:   shape.Radius,
		Shape:    shape.Kind,
		Drag:     drag,
	}
	if mass != 0 {
		b.InvMass = 1.0 / mass
	}
	b.updateInertia()
	return b, nil
}

func (b *Body) updateInertia() {
	b.Inertia = Shape{Kind: b.Shape, Radius: b.Radius}.inertia(b.Mass)
	b.InvInertia = 0
	if b.Inertia != 0 {
		b.InvInertia = 1.0 / b.Inertia
	}
}

func (b *Body) IsStatic() bool { return b.InvMass == 0 }

// ApplyForce accumulates f into this step's acceleration.
func (b *Body) ApplyForce(f vecmath.Vec2) {
	b.Acceleration = b.Acceleration.Add(f.Scale(b.InvMass))
}

// ApplyGravity applies the weight force g*m.
func (b *Body) ApplyGravity(g vecmath.Vec2) {
	b.ApplyForce(g.Scale(b.Mass))
}

// ApplyTorque changes angular velocity directly by t*InvInertia.
func (b *Body) ApplyTorque(t float64) {
	b.AngularVelocity += t * b.InvInertia
}

// ApplyImpulse changes velocity by j*InvMass.
func (b *Body) ApplyImpulse(j vecmath.Vec2) {
	b.Velocity = b.Velocity.Add(j.Scale(b.InvMass))
}

// Integrate advances the body by dt with RK4.
func (b *Body) Integrate(dt float64) {
	b.IntegrateWith(defaultIntegrator, dt)
}

// IntegrateWith advances position and velocity with integ, holding the
// accumulated acceleration constant over dt, then clears the acceleration
// and advances the angle by AngularVelocity*dt.
func (b *Body) IntegrateWith(integ integrators.Integrator, dt float64) {
	next := integ.Step(integrators.State{Position: b.Position, Velocity: b.Velocity}, integrators.Constant(b.Acceleration), dt)
	b.Position = next.Position
	b.Velocity = next.Velocity
	b.Acceleration = vecmath.Vec2{}
	b.Angle += b.AngularVelocity * dt
}

// KineticEnergy returns translational plus rotational kinetic energy.
func (b *Body) KineticEnergy() float64 {
	return 0.5*b.Mass*b.Velocity.LenSq() + 0.5*b.Inertia*b.AngularVelocity*b.AngularVelocity
}

func (b *Body) Momentum() vecmath.Vec2 {
	return b.Velocity.Scale(b.Mass)
}

func (b *Body) Speed() float64 {
	return b.Velocity.Len()
}

// Vertices returns the four square corners (±r, ±r) rotated by Angle and
// translated to Position, in the order (-,-), (+,-), (+,+), (-,+). For
// circles it returns the corners of the enclosing square.
func (b *Body) Vertices() [4]vecmath.Vec2 {
	r := b.Radius
	corners := [4]vecmath.Vec2{{X: -r, Y: -r}, {X: r, Y: -r}, {X: r, Y: r}, {X: -r, Y: r}}
	for i, c := range corners {
		corners[i] = b.Position.Add(c.Rotate(b.Angle))
	}
	return corners
}

// AABB returns the axis-aligned bounds of the body.
func (b *Body) AABB() (min, max vecmath.Vec2) {
	if b.Shape == KindCircle || b.Angle == 0 {
		ext := vecmath.New(b.Radius, b.Radius)
		return b.Position.Sub(ext), b.Position.Add(ext)
	}
	v := b.Vertices()
	min, max = v[0], v[0]
	for _, p := range v[1:] {
		min = vecmath.New(math.Min(min.X, p.X), math.Min(min.Y, p.Y))
		max = vecmath.New(math.Max(max.X, p.X), math.Max(max.Y, p.Y))
	}
	return min, max
}

func (b *Body) IsValid() bool {
	return b.Position.IsFinite() && b.Velocity.IsFinite() &&
		!math.IsNaN(b.Angle) && !math.IsInf(b.Angle, 0) &&
		!math.IsNaN(b.AngularVelocity) && !math.IsInf(b.AngularVelocity, 0)
}
