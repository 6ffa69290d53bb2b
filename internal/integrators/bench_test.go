package integrators

import (
	"testing"

	"github.com/san-kum/rigid2d/internal/vecmath"
)

var benchAccel = Constant(vecmath.New(0, 0.9))

func BenchmarkEuler(b *testing.B) {
	integrator := NewEuler()
	s := State{Velocity: vecmath.New(1, 0)}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s = integrator.Step(s, benchAccel, 0.01)
	}
}

func BenchmarkRK4(b *testing.B) {
	integrator := NewRK4()
	s := State{Velocity: vecmath.New(1, 0)}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s = integrator.Step(s, benchAccel, 0.01)
	}
}

func BenchmarkVerlet(b *testing.B) {
	integrator := NewVerlet()
	s := State{Velocity: vecmath.New(1, 0)}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s = integrator.Step(s, benchAccel, 0.01)
	}
}
