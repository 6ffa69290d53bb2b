package collision

import (
	"math"
	"testing"

	"github.com/san-kum/rigid2d/internal/rigidbody"
	"github.com/san-kum/rigid2d/internal/vecmath"
)

func body(t *testing.T, mass float64, x, y float64, shape rigidbody.Shape, angle float64) *rigidbody.Body {
	t.Helper()
	b, err := rigidbody.New(mass, vecmath.New(x, y), shape, angle, 0)
	if err != nil {
		t.Fatalf("new body: %v", err)
	}
	return b
}

func TestCircleCircleBoundary(t *testing.T) {
	tests := []struct {
		name    string
		dist    float64
		collide bool
	}{
		{"touching", 20.0, false},
		{"overlapping", 19.999, true},
		{"apart", 25, false},
		{"coincident", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := body(t, 1, 0, 0, rigidbody.Circle(10), 0)
			b := body(t, 1, tt.dist, 0, rigidbody.Circle(10), 0)
			if got := Overlaps(a, b); got != tt.collide {
				t.Errorf("Overlaps() = %v, want %v", got, tt.collide)
			}
		})
	}
}

func TestCircleCircleContact(t *testing.T) {
	a := body(t, 1, 0, 0, rigidbody.Circle(10), 0)
	b := body(t, 1, 0, 15, rigidbody.Circle(10), 0)

	c, ok := Detect(a, b, PolicyAxisAligned)
	if !ok {
		t.Fatal("expected contact")
	}
	if !c.Normal.Equal(vecmath.New(0, 1), 1e-12) {
		t.Errorf("normal = %v, want (0, 1)", c.Normal)
	}
	if math.Abs(c.Depth-5) > 1e-12 {
		t.Errorf("depth = %v, want 5", c.Depth)
	}

	same := body(t, 1, 0, 0, rigidbody.Circle(10), 0)
	c, ok = Detect(a, same, PolicyAxisAligned)
	if !ok || c.Normal != vecmath.New(1, 0) {
		t.Errorf("coincident contact = %+v, %v", c, ok)
	}
}

func TestSquareSquareSAT(t *testing.T) {
	tests := []struct {
		name    string
		x       float64
		angle   float64
		collide bool
	}{
		{"overlap by one", 19, 0, true},
		{"gap of one", 21, 0, false},
		{"rotated corner reaches", 23, math.Pi / 4, true},
		{"rotated corner short", 25, math.Pi / 4, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := body(t, 1, 0, 0, rigidbody.Square(10), 0)
			b := body(t, 1, tt.x, 0, rigidbody.Square(10), tt.angle)
			if got := Overlaps(a, b); got != tt.collide {
				t.Errorf("Overlaps() = %v, want %v", got, tt.collide)
			}
		})
	}
}

func TestSquareSquareContactNormal(t *testing.T) {
	a := body(t, 1, 0, 0, rigidbody.Square(10), 0)
	b := body(t, 1, -19, 0, rigidbody.Square(10), 0)

	c, ok := SquareSquare(a, b)
	if !ok {
		t.Fatal("expected overlap")
	}
	if !c.Normal.Equal(vecmath.New(-1, 0), 1e-12) {
		t.Errorf("normal = %v, want (-1, 0)", c.Normal)
	}
	if math.Abs(c.Depth-1) > 1e-9 {
		t.Errorf("depth = %v, want 1", c.Depth)
	}
}

func TestSquareSquareTouching(t *testing.T) {
	// touching intervals count as overlap in the SAT test itself
	a := body(t, 1, 0, 0, rigidbody.Square(10), 0)
	b := body(t, 1, 20, 0, rigidbody.Square(10), 0)
	c, ok := SquareSquare(a, b)
	if !ok {
		t.Fatal("expected touching squares to overlap under SAT")
	}
	if math.Abs(c.Depth) > 1e-12 {
		t.Errorf("depth = %v, want 0", c.Depth)
	}
}

func TestCircleSquare(t *testing.T) {
	tests := []struct {
		name    string
		cx, cy  float64
		collide bool
	}{
		{"face overlap", 14, 0, true},
		{"face touching", 15, 0, false},
		{"corner gap", 14, 14, false},
		{"corner overlap", 13, 13, true},
		{"inside", 1, 1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := body(t, 1, 0, 0, rigidbody.Square(10), 0)
			c := body(t, 1, tt.cx, tt.cy, rigidbody.Circle(5), 0)
			if got := Overlaps(c, s); got != tt.collide {
				t.Errorf("Overlaps(circle, square) = %v, want %v", got, tt.collide)
			}
			if got := Overlaps(s, c); got != tt.collide {
				t.Errorf("Overlaps(square, circle) = %v, want %v", got, tt.collide)
			}
		})
	}
}

func TestCircleSquareNormalDirection(t *testing.T) {
	s := body(t, 1, 0, 0, rigidbody.Square(10), 0)
	c := body(t, 1, 14, 0, rigidbody.Circle(5), 0)

	ab, ok := Detect(c, s, PolicyAxisAligned)
	if !ok || !ab.Normal.Equal(vecmath.New(-1, 0), 1e-12) {
		t.Errorf("circle->square normal = %v (%v), want (-1, 0)", ab.Normal, ok)
	}
	ba, ok := Detect(s, c, PolicyAxisAligned)
	if !ok || !ba.Normal.Equal(vecmath.New(1, 0), 1e-12) {
		t.Errorf("square->circle normal = %v (%v), want (1, 0)", ba.Normal, ok)
	}
}

func TestCircleSquarePolicies(t *testing.T) {
	// a square rotated 45 degrees has no material near its unrotated corner
	s := body(t, 1, 0, 0, rigidbody.Square(10), math.Pi/4)
	c := body(t, 1, 12, 12, rigidbody.Circle(3), 0)

	if _, ok := Detect(c, s, PolicyAxisAligned); !ok {
		t.Error("axis-aligned policy should report the unrotated-box overlap")
	}
	if _, ok := Detect(c, s, PolicyOriented); ok {
		t.Error("oriented policy should see the gap next to the rotated square")
	}

	edge := body(t, 1, 0, 16, rigidbody.Circle(3), 0)
	if _, ok := Detect(edge, s, PolicyOriented); !ok {
		t.Error("oriented policy should hit the rotated corner at (0, 14.14)")
	}
	if _, ok := Detect(edge, s, PolicyAxisAligned); ok {
		t.Error("axis-aligned policy should miss the rotated corner")
	}
}

func TestParsePolicy(t *testing.T) {
	if p, err := ParsePolicy("oriented"); err != nil || p != PolicyOriented {
		t.Errorf("ParsePolicy(oriented) = %v, %v", p, err)
	}
	if p, err := ParsePolicy(""); err != nil || p != PolicyAxisAligned {
		t.Errorf("ParsePolicy(\"\") = %v, %v", p, err)
	}
	if _, err := ParsePolicy("swept"); err == nil {
		t.Error("expected error")
	}
}
