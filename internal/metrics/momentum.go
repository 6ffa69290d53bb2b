package metrics

import (
	"math"

	"github.com/san-kum/rigid2d/internal/sim"
	"github.com/san-kum/rigid2d/internal/vecmath"
)

// MomentumDrift is the largest |P - P0| over the observed frames, where P is
// the total linear momentum. It is zero for a closed system without gravity
// or walls.
type MomentumDrift struct {
	name     string
	initial  vecmath.Vec2
	maxDrift float64
	samples  int
}

func NewMomentumDrift() *MomentumDrift {
	return &MomentumDrift{name: "momentum_drift"}
}

func (m *MomentumDrift) Name() string { return m.name }

func (m *MomentumDrift) Observe(f *sim.Frame) {
	if m.samples == 0 {
		m.initial = f.Momentum
	}
	m.samples++
	m.maxDrift = math.Max(m.maxDrift, f.Momentum.Dist(m.initial))
}

func (m *MomentumDrift) Value() float64 { return m.maxDrift }

func (m *MomentumDrift) Reset() {
	m.initial = vecmath.Zero
	m.maxDrift = 0
	m.samples = 0
}
