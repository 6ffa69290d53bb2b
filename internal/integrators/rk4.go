package integrators

import "github.com/san-kum/rigid2d/internal/vecmath"

// RK4 is the classic four-stage Runge-Kutta scheme. Each stage derivative is
// evaluated from the state advanced along the previous stage, with the
// acceleration sampled at that stage state.
type RK4 struct{}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) Name() string { return "rk4" }

type derivative struct {
	dx, dv vecmath.Vec2
}

func evaluate(s State, accel Accel, dt float64, d derivative) derivative {
	next := State{
		Position: s.Position.Add(d.dx.Scale(dt)),
		Velocity: s.Velocity.Add(d.dv.Scale(dt)),
	}
	return derivative{dx: next.Velocity, dv: accel(next)}
}

func (r *RK4) Step(s State, accel Accel, dt float64) State {
	k1 := evaluate(s, accel, 0, derivative{})
	k2 := evaluate(s, accel, dt*0.5, k1)
	k3 := evaluate(s, accel, dt*0.5, k2)
	k4 := evaluate(s, accel, dt, k3)

	dt6 := dt / 6.0
	dxdt := k1.dx.Add(k2.dx.Add(k3.dx).Scale(2)).Add(k4.dx)
	dvdt := k1.dv.Add(k2.dv.Add(k3.dv).Scale(2)).Add(k4.dv)

	return State{
		Position: s.Position.Add(dxdt.Scale(dt6)),
		Velocity: s.Velocity.Add(dvdt.Scale(dt6)),
	}
}
