package integrators

// Euler is semi-implicit (symplectic) Euler: velocity first, then position
// with the updated velocity.
type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Name() string { return "euler" }

func (e *Euler) Step(s State, accel Accel, dt float64) State {
	v := s.Velocity.Add(accel(s).Scale(dt))
	return State{
		Position: s.Position.Add(v.Scale(dt)),
		Velocity: v,
	}
}
