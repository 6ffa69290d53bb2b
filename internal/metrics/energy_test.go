package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/rigid2d/internal/sim"
	"github.com/san-kum/rigid2d/internal/vecmath"
	"github.com/san-kum/rigid2d/internal/world"
)

func frame(energy float64, momentum vecmath.Vec2, stats world.StepStats, bodies ...world.BodyState) *sim.Frame {
	return &sim.Frame{Energy: energy, Momentum: momentum, Stats: stats, Bodies: bodies}
}

func TestEnergy(t *testing.T) {
	m := NewEnergy()

	m.Observe(frame(2, vecmath.Zero, world.StepStats{}))
	m.Observe(frame(4, vecmath.Zero, world.StepStats{}))
	if math.Abs(m.Value()-3) > 1e-12 {
		t.Errorf("expected mean energy 3, got %f", m.Value())
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero energy after reset")
	}
}

func TestEnergyDrift(t *testing.T) {
	m := NewEnergyDrift()

	for _, e := range []float64{10, 10.5, 9, 10} {
		m.Observe(frame(e, vecmath.Zero, world.StepStats{}))
	}
	if math.Abs(m.Value()-0.1) > 1e-12 {
		t.Errorf("expected max drift 0.1, got %f", m.Value())
	}

	m.Reset()
	m.Observe(frame(0, vecmath.Zero, world.StepStats{}))
	m.Observe(frame(5, vecmath.Zero, world.StepStats{}))
	if m.Value() != 0 {
		t.Errorf("drift from zero energy should be 0, got %f", m.Value())
	}
}

func TestMomentumDrift(t *testing.T) {
	m := NewMomentumDrift()

	m.Observe(frame(0, vecmath.New(1, 1), world.StepStats{}))
	m.Observe(frame(0, vecmath.New(4, 5), world.StepStats{}))
	m.Observe(frame(0, vecmath.New(1, 2), world.StepStats{}))
	if math.Abs(m.Value()-5) > 1e-12 {
		t.Errorf("expected max drift 5, got %f", m.Value())
	}
}

func TestImpulseEffortAndContactRate(t *testing.T) {
	effort := NewImpulseEffort()
	rate := NewContactRate()

	frames := []*sim.Frame{
		frame(0, vecmath.Zero, world.StepStats{Contacts: 2, NormalImpulse: 3, FrictionImpulse: 1}),
		frame(0, vecmath.Zero, world.StepStats{}),
	}
	for _, f := range frames {
		effort.Observe(f)
		rate.Observe(f)
	}

	if effort.Value() != 2 {
		t.Errorf("expected impulse effort 2, got %f", effort.Value())
	}
	if rate.Value() != 1 {
		t.Errorf("expected contact rate 1, got %f", rate.Value())
	}
}

func TestStability(t *testing.T) {
	m := NewStability(25)

	slow := world.BodyState{Velocity: vecmath.New(3, 4)}
	fast := world.BodyState{Velocity: vecmath.New(30, 40)}
	broken := world.BodyState{Position: vecmath.New(math.NaN(), 0)}

	m.Observe(frame(0, vecmath.Zero, world.StepStats{}, slow))
	m.Observe(frame(0, vecmath.Zero, world.StepStats{}, slow, fast))
	m.Observe(frame(0, vecmath.Zero, world.StepStats{}, broken))
	m.Observe(frame(0, vecmath.Zero, world.StepStats{}, slow))

	if math.Abs(m.Value()-0.5) > 1e-12 {
		t.Errorf("expected stability 0.5, got %f", m.Value())
	}
	if m.Peak() != 50 {
		t.Errorf("expected peak speed 50, got %f", m.Peak())
	}

	m.Reset()
	if m.Value() != 1 || m.Peak() != 0 {
		t.Errorf("expected 1 and no peak after reset, got %f, %f", m.Value(), m.Peak())
	}
}
