// Package integrators advances the translational state of a body over one
// time step.
//
// All integrators share the [Integrator] interface and take the acceleration
// as a function of state so that stage-dependent forces can be plugged in.
// Rigid bodies hold their per-step acceleration constant and pass
// [Constant].
//
//   - [RK4]: four-stage Runge-Kutta (default)
//   - [Euler]: semi-implicit Euler
//   - [Verlet]: velocity Verlet
package integrators

import (
	"fmt"
	"sort"

	"github.com/san-kum/rigid2d/internal/vecmath"
)

// State is the translational state integrated each step.
type State struct {
	Position vecmath.Vec2
	Velocity vecmath.Vec2
}

// Accel returns the acceleration acting on the given state.
type Accel func(s State) vecmath.Vec2

// Constant returns an Accel that ignores the state.
func Constant(a vecmath.Vec2) Accel {
	return func(State) vecmath.Vec2 { return a }
}

type Integrator interface {
	Step(s State, accel Accel, dt float64) State
	Name() string
}

var constructors = map[string]func() Integrator{
	"rk4":    func() Integrator { return NewRK4() },
	"euler":  func() Integrator { return NewEuler() },
	"verlet": func() Integrator { return NewVerlet() },
}

// ByName returns a fresh integrator for name. The empty name selects RK4.
func ByName(name string) (Integrator, error) {
	if name == "" {
		name = "rk4"
	}
	fn, ok := constructors[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s", name)
	}
	return fn(), nil
}

func Names() []string {
	names := make([]string, 0, len(constructors))
	for name := range constructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
