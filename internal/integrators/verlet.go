package integrators

// Verlet is velocity Verlet. The acceleration is sampled at the start state
// and again at the drifted position, and the two are averaged for the kick.
type Verlet struct{}

func NewVerlet() *Verlet {
	return &Verlet{}
}

func (v *Verlet) Name() string { return "verlet" }

func (v *Verlet) Step(s State, accel Accel, dt float64) State {
	a0 := accel(s)
	pos := s.Position.Add(s.Velocity.Scale(dt)).Add(a0.Scale(0.5 * dt * dt))

	a1 := accel(State{Position: pos, Velocity: s.Velocity})
	vel := s.Velocity.Add(a0.Add(a1).Scale(0.5 * dt))

	return State{Position: pos, Velocity: vel}
}
