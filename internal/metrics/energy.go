package metrics

import (
	"math"

	"github.com/san-kum/rigid2d/internal/sim"
)

// Energy is the mean total kinetic energy over the observed frames.
type Energy struct {
	sum float64
	n   int
}

func NewEnergy() *Energy { return &Energy{} }

func (e *Energy) Name() string { return "energy" }

func (e *Energy) Observe(f *sim.Frame) {
	e.sum += f.Energy
	e.n++
}

func (e *Energy) Value() float64 {
	if e.n == 0 {
		return 0
	}
	return e.sum / float64(e.n)
}

func (e *Energy) Reset() { *e = Energy{} }

// EnergyDrift is the largest relative deviation of total kinetic energy
// from the first observed frame. A world that starts at rest has no drift.
type EnergyDrift struct {
	initial float64
	drift   float64
	started bool
}

func NewEnergyDrift() *EnergyDrift { return &EnergyDrift{} }

func (e *EnergyDrift) Name() string { return "energy_drift" }

func (e *EnergyDrift) Observe(f *sim.Frame) {
	if !e.started {
		e.initial, e.started = f.Energy, true
	}
	if e.initial == 0 {
		return
	}
	e.drift = math.Max(e.drift, math.Abs(f.Energy-e.initial)/math.Abs(e.initial))
}

func (e *EnergyDrift) Value() float64 { return e.drift }

func (e *EnergyDrift) Reset() { *e = EnergyDrift{} }
