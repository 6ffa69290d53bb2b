// Package world owns the set of bodies and advances them one fixed step at a
// time.
//
// Each [World.Step] runs four phases in a fixed order:
//
//  1. gravity and integration for every body, in index order
//  2. detection and resolution for every pair i<j, in ascending order
//  3. the global velocity cap
//  4. wall reflection against the domain rectangle
//
// Resolution is sequential, so the outcome of a step can depend on the order
// in which pairs are visited. Bodies are addressed by the [BodyID] returned
// from [World.AddBody]; ids are stable for the world's lifetime.
//
// A World is not safe for concurrent use.
package world

import (
	"fmt"
	"math"

	"github.com/san-kum/rigid2d/internal/collision"
	"github.com/san-kum/rigid2d/internal/integrators"
	"github.com/san-kum/rigid2d/internal/rigidbody"
	"github.com/san-kum/rigid2d/internal/vecmath"
)

// BodyID is a stable handle to a body in a World.
type BodyID int

// BodySpec describes a body to add.
type BodySpec struct {
	Mass            float64         `yaml:"mass" json:"mass"`
	Position        vecmath.Vec2    `yaml:"position" json:"position"`
	Velocity        vecmath.Vec2    `yaml:"velocity" json:"velocity"`
	Shape           rigidbody.Shape `yaml:"-" json:"-"`
	Angle           float64         `yaml:"angle" json:"angle"`
	AngularVelocity float64         `yaml:"angular_velocity" json:"angular_velocity"`
	Drag            float64         `yaml:"drag" json:"drag"`
}

// BodyState is a read-only copy of one body.
type BodyState struct {
	ID              BodyID       `json:"id"`
	Shape           string       `json:"shape"`
	Radius          float64      `json:"radius"`
	Mass            float64      `json:"mass"`
	Position        vecmath.Vec2 `json:"position"`
	Velocity        vecmath.Vec2 `json:"velocity"`
	Angle           float64      `json:"angle"`
	AngularVelocity float64      `json:"angular_velocity"`
}

// StepStats summarizes the contacts handled in one step.
type StepStats struct {
	Contacts        int     `json:"contacts"`
	Resolved        int     `json:"resolved"`
	NormalImpulse   float64 `json:"normal_impulse"`
	FrictionImpulse float64 `json:"friction_impulse"`
	Clamped         int     `json:"clamped"`
	WallHits        int     `json:"wall_hits"`
}

func (s *StepStats) add(imp collision.Impulse) {
	s.Contacts++
	if imp.Applied() {
		s.Resolved++
	}
	s.NormalImpulse += imp.Normal
	s.FrictionImpulse += imp.Friction
}

type World struct {
	cfg        Config
	gravity    vecmath.Vec2
	policy     collision.CircleRectPolicy
	integrator integrators.Integrator

	bodies []*rigidbody.Body

	// rows[i] holds the contacts of pairs (i, j>i) found by parallel detection.
	rows [][]collision.Contact

	time  float64
	steps int
}

// New returns an empty world. It fails with ErrInvalidConfig when cfg does
// not validate.
func New(cfg Config) (*World, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	policy, _ := collision.ParsePolicy(cfg.CircleRect)
	integ, _ := integrators.ByName(cfg.Integrator)

	return &World{
		cfg:        cfg,
		gravity:    vecmath.New(0, cfg.Gravity),
		policy:     policy,
		integrator: integ,
	}, nil
}

func (w *World) Config() Config { return w.cfg }

// AddBody creates a body from spec. On error nothing is registered.
func (w *World) AddBody(spec BodySpec) (BodyID, error) {
	b, err := rigidbody.New(spec.Mass, spec.Position, spec.Shape, spec.Angle, spec.Drag)
	if err != nil {
		return -1, fmt.Errorf("add body: %w", err)
	}
	b.Velocity = spec.Velocity
	b.AngularVelocity = spec.AngularVelocity

	w.bodies = append(w.bodies, b)
	return BodyID(len(w.bodies) - 1), nil
}

func (w *World) Len() int { return len(w.bodies) }

// Time returns the simulated time accumulated by Step.
func (w *World) Time() float64 { return w.time }

// Steps returns the number of completed steps.
func (w *World) Steps() int { return w.steps }

func (w *World) body(id BodyID) (*rigidbody.Body, error) {
	if id < 0 || int(id) >= len(w.bodies) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownBody, id)
	}
	return w.bodies[id], nil
}

// ApplyExternalForce accumulates f on the body for the next step only.
func (w *World) ApplyExternalForce(id BodyID, f vecmath.Vec2) error {
	b, err := w.body(id)
	if err != nil {
		return err
	}
	b.ApplyForce(f)
	return nil
}

func (w *World) ApplyTorque(id BodyID, t float64) error {
	b, err := w.body(id)
	if err != nil {
		return err
	}
	b.ApplyTorque(t)
	return nil
}

// Advance runs one step with the configured Dt.
func (w *World) Advance() StepStats {
	return w.Step(w.cfg.Dt)
}

// Step advances every body by dt. A dt that is not positive and finite is
// ignored: nothing moves and the step count is unchanged.
func (w *World) Step(dt float64) StepStats {
	var stats StepStats
	if !(dt > 0) || math.IsInf(dt, 1) {
		return stats
	}

	for _, b := range w.bodies {
		b.ApplyGravity(w.gravity)
		b.IntegrateWith(w.integrator, dt)
	}

	if w.cfg.Workers > 1 {
		w.collideParallel(&stats)
	} else {
		w.collide(&stats)
	}

	if w.cfg.capEnabled() {
		for _, b := range w.bodies {
			if clampVelocity(b, w.cfg.MaxVelocity) {
				stats.Clamped++
			}
		}
	}

	if w.cfg.wallsEnabled() {
		for _, b := range w.bodies {
			if reflectWalls(b, w.cfg.Width, w.cfg.Height) {
				stats.WallHits++
			}
		}
	}

	w.time += dt
	w.steps++
	return stats
}

func (w *World) collide(stats *StepStats) {
	n := len(w.bodies)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			a, b := w.bodies[i], w.bodies[j]
			c, ok := collision.Detect(a, b, w.policy)
			if !ok {
				continue
			}
			c.A, c.B = i, j
			stats.add(collision.Resolve(a, b, c, w.cfg.Restitution, w.cfg.Friction))
		}
	}
}

// collideParallel detects all pairs concurrently, then resolves them in the
// same ascending order as collide. Detection reads only position, angle and
// shape, none of which resolution writes, so the result matches collide.
func (w *World) collideParallel(stats *StepStats) {
	n := len(w.bodies)
	if cap(w.rows) < n {
		w.rows = make([][]collision.Contact, n)
	}
	rows := w.rows[:n]

	parallelFor(n, w.cfg.Workers, func(start, end int) {
		for i := start; i < end; i++ {
			row := rows[i][:0]
			for j := i + 1; j < n; j++ {
				c, ok := collision.Detect(w.bodies[i], w.bodies[j], w.policy)
				if !ok {
					continue
				}
				c.A, c.B = i, j
				row = append(row, c)
			}
			rows[i] = row
		}
	})

	for _, row := range rows {
		for _, c := range row {
			stats.add(collision.Resolve(w.bodies[c.A], w.bodies[c.B], c, w.cfg.Restitution, w.cfg.Friction))
		}
	}
}

func (w *World) Position(id BodyID) (vecmath.Vec2, error) {
	b, err := w.body(id)
	if err != nil {
		return vecmath.Vec2{}, err
	}
	return b.Position, nil
}

func (w *World) Velocity(id BodyID) (vecmath.Vec2, error) {
	b, err := w.body(id)
	if err != nil {
		return vecmath.Vec2{}, err
	}
	return b.Velocity, nil
}

func (w *World) Angle(id BodyID) (float64, error) {
	b, err := w.body(id)
	if err != nil {
		return 0, err
	}
	return b.Angle, nil
}

func (w *World) KineticEnergy(id BodyID) (float64, error) {
	b, err := w.body(id)
	if err != nil {
		return 0, err
	}
	return b.KineticEnergy(), nil
}

// Body returns a copy of the body's state.
func (w *World) Body(id BodyID) (BodyState, error) {
	b, err := w.body(id)
	if err != nil {
		return BodyState{}, err
	}
	return stateOf(id, b), nil
}

// Snapshot copies every body's state in id order.
func (w *World) Snapshot() []BodyState {
	out := make([]BodyState, len(w.bodies))
	for i, b := range w.bodies {
		out[i] = stateOf(BodyID(i), b)
	}
	return out
}

// SnapshotInto is Snapshot reusing dst when it has enough capacity.
func (w *World) SnapshotInto(dst []BodyState) []BodyState {
	if cap(dst) < len(w.bodies) {
		dst = make([]BodyState, len(w.bodies))
	}
	dst = dst[:len(w.bodies)]
	for i, b := range w.bodies {
		dst[i] = stateOf(BodyID(i), b)
	}
	return dst
}

// Bodies exposes the live bodies in id order. Callers must not retain the
// slice across AddBody.
func (w *World) Bodies() []*rigidbody.Body { return w.bodies }

func (w *World) TotalKineticEnergy() float64 {
	sum := 0.0
	for _, b := range w.bodies {
		sum += b.KineticEnergy()
	}
	return sum
}

func (w *World) TotalMomentum() vecmath.Vec2 {
	var p vecmath.Vec2
	for _, b := range w.bodies {
		p = p.Add(b.Momentum())
	}
	return p
}

func stateOf(id BodyID, b *rigidbody.Body) BodyState {
	return BodyState{
		ID:              id,
		Shape:           b.Shape.String(),
		Radius:          b.Radius,
		Mass:            b.Mass,
		Position:        b.Position,
		Velocity:        b.Velocity,
		Angle:           b.Angle,
		AngularVelocity: b.AngularVelocity,
	}
}
