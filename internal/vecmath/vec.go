// Package vecmath provides the 2D vector type shared by every other package.
//
// [Vec2] is a plain value: all methods return a new vector except the
// explicit *InPlace variants. Degenerate inputs (zero-length vectors in
// normalization, projection and angle computation) fall back to zero values
// instead of failing. Only explicit scalar division reports
// [ErrDivisionByZero].
package vecmath

import (
	"fmt"
	"math"
)

// Vec2 is a 2D vector used for positions, velocities, accelerations and normals.
type Vec2 struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Zero is the zero vector.
var Zero = Vec2{}

func New(x, y float64) Vec2 {
	return Vec2{X: x, Y: y}
}

func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{v.X + o.X, v.Y + o.Y}
}

func (v Vec2) Sub(o Vec2) Vec2 {
	return Vec2{v.X - o.X, v.Y - o.Y}
}

func (v Vec2) Scale(s float64) Vec2 {
	return Vec2{v.X * s, v.Y * s}
}

func (v Vec2) Neg() Vec2 {
	return Vec2{-v.X, -v.Y}
}

// Div divides both components by s.
func (v Vec2) Div(s float64) (Vec2, error) {
	if s == 0 {
		return Vec2{}, ErrDivisionByZero
	}
	return Vec2{v.X / s, v.Y / s}, nil
}

// DivInPlace divides v by s, leaving v untouched on error.
func (v *Vec2) DivInPlace(s float64) error {
	if s == 0 {
		return ErrDivisionByZero
	}
	v.X /= s
	v.Y /= s
	return nil
}

func (v Vec2) Dot(o Vec2) float64 {
	return v.X*o.X + v.Y*o.Y
}

// Cross returns the z component of the 3D cross product.
func (v Vec2) Cross(o Vec2) float64 {
	return v.X*o.Y - v.Y*o.X
}

func (v Vec2) Len() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y)
}

func (v Vec2) LenSq() float64 {
	return v.X*v.X + v.Y*v.Y
}

func (v Vec2) Dist(o Vec2) float64 {
	return v.Sub(o).Len()
}

func (v Vec2) DistSq(o Vec2) float64 {
	return v.Sub(o).LenSq()
}

// Normalize returns the unit vector in the direction of v, or the zero
// vector when v has no length.
func (v Vec2) Normalize() Vec2 {
	l := v.Len()
	if l == 0 {
		return Vec2{}
	}
	return Vec2{v.X / l, v.Y / l}
}

// NormalizeInPlace normalizes v; the zero vector stays zero.
func (v *Vec2) NormalizeInPlace() {
	*v = v.Normalize()
}

// Perp rotates v by 90 degrees counter-clockwise.
func (v Vec2) Perp() Vec2 {
	return Vec2{-v.Y, v.X}
}

// Project returns the projection of v onto o. Projecting onto the zero
// vector yields the zero vector.
func (v Vec2) Project(o Vec2) Vec2 {
	lsq := o.LenSq()
	if lsq == 0 {
		return Vec2{}
	}
	return o.Scale(v.Dot(o) / lsq)
}

// Reflect mirrors v about the line whose unit normal is n.
func (v Vec2) Reflect(n Vec2) Vec2 {
	return v.Sub(n.Scale(2 * v.Dot(n)))
}

// Refract bends v through a surface with unit normal n using the ratio of
// refractive indices eta. Total internal reflection yields the zero vector.
func (v Vec2) Refract(n Vec2, eta float64) Vec2 {
	d := v.Dot(n)
	k := 1 - eta*eta*(1-d*d)
	if k < 0 {
		return Vec2{}
	}
	return v.Scale(eta).Sub(n.Scale(eta*d + math.Sqrt(k)))
}

// Rotate rotates v counter-clockwise by theta radians.
func (v Vec2) Rotate(theta float64) Vec2 {
	s, c := math.Sincos(theta)
	return Vec2{v.X*c - v.Y*s, v.X*s + v.Y*c}
}

// RotateAround rotates v about pivot by theta radians.
func (v Vec2) RotateAround(pivot Vec2, theta float64) Vec2 {
	return v.Sub(pivot).Rotate(theta).Add(pivot)
}

// Angle returns the unsigned angle between v and o in [0, pi]. It is 0 when
// either vector has zero length.
func (v Vec2) Angle(o Vec2) float64 {
	lp := v.Len() * o.Len()
	if lp == 0 {
		return 0
	}
	c := v.Dot(o) / lp
	return math.Acos(math.Max(-1, math.Min(1, c)))
}

// Clamp limits each component to the box [min, max].
func (v Vec2) Clamp(min, max Vec2) Vec2 {
	return Vec2{
		X: math.Max(min.X, math.Min(v.X, max.X)),
		Y: math.Max(min.Y, math.Min(v.Y, max.Y)),
	}
}

func (v *Vec2) ClampInPlace(min, max Vec2) {
	*v = v.Clamp(min, max)
}

// Equal reports whether both components differ by at most tol.
func (v Vec2) Equal(o Vec2, tol float64) bool {
	return math.Abs(v.X-o.X) <= tol && math.Abs(v.Y-o.Y) <= tol
}

func (v Vec2) IsFinite() bool {
	return !math.IsNaN(v.X) && !math.IsNaN(v.Y) && !math.IsInf(v.X, 0) && !math.IsInf(v.Y, 0)
}

func (v Vec2) String() string {
	return fmt.Sprintf("(%g, %g)", v.X, v.Y)
}
