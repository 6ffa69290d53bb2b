package rigidbody

import (
	"fmt"
	"math"
)

type ShapeKind int

const (
	KindCircle ShapeKind = iota
	KindSquare
)

func (k ShapeKind) String() string {
	switch k {
	case KindCircle:
		return "circle"
	case KindSquare:
		return "square"
	default:
		return fmt.Sprintf("shape(%d)", int(k))
	}
}

// ParseShapeKind accepts "circle", "square" and the alias "rectangle".
func ParseShapeKind(s string) (ShapeKind, error) {
	switch s {
	case "circle", "":
		return KindCircle, nil
	case "square", "rectangle", "rect", "box":
		return KindSquare, nil
	}
	return 0, fmt.Errorf("%w: unknown shape %q", ErrInvalidShape, s)
}

// Shape is a tagged variant. Radius is the circle radius, or the half-extent
// of a square whose side is 2*Radius.
type Shape struct {
	Kind   ShapeKind
	Radius float64
}

func Circle(radius float64) Shape {
	return Shape{Kind: KindCircle, Radius: radius}
}

func Square(halfExtent float64) Shape {
	return Shape{Kind: KindSquare, Radius: halfExtent}
}

// ShapeFromSize derives a shape from a bounding width and height: a circle
// takes half the width, a square takes the half-diagonal.
func ShapeFromSize(kind ShapeKind, w, h float64) Shape {
	if kind == KindSquare {
		return Square(math.Hypot(w/2, h/2))
	}
	return Circle(w / 2)
}

// inertia returns the moment of inertia of the shape for mass m.
func (s Shape) inertia(m float64) float64 {
	r := s.Radius
	if s.Kind == KindSquare {
		return m * (r*r + r*r) / 12.0
	}
	return 0.5 * m * r * r
}
