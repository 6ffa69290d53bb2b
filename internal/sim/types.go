// Package sim drives a [world.World] for a fixed duration and collects frames,
// metrics and errors.
//
//   - [Simulator]: runs one world, checking the context between steps
//   - [Ensemble]: runs independent seeded worlds concurrently
//   - [Metric], [Observer]: per-step hooks over a [Frame]
//   - [FramePool]: reusable body-state buffers for high-rate consumers
//
// Simulator instances are not thread-safe.
package sim

import (
	"time"

	"github.com/san-kum/rigid2d/internal/vecmath"
	"github.com/san-kum/rigid2d/internal/world"
)

// Frame is the state of a world after one step. Step 0 is the initial state.
type Frame struct {
	Step     int               `json:"step"`
	Time     float64           `json:"time"`
	Bodies   []world.BodyState `json:"bodies"`
	Stats    world.StepStats   `json:"stats"`
	Energy   float64           `json:"energy"`
	Momentum vecmath.Vec2      `json:"momentum"`
	Elapsed  time.Duration     `json:"elapsed_ns"`
}

// IsValid reports whether every body's position, velocity and angle are finite.
func (f *Frame) IsValid() bool {
	for _, b := range f.Bodies {
		if !b.Position.IsFinite() || !b.Velocity.IsFinite() || !finite(b.Angle) {
			return false
		}
	}
	return true
}

// Clone returns a frame that does not share the Bodies slice.
func (f *Frame) Clone() Frame {
	c := *f
	c.Bodies = make([]world.BodyState, len(f.Bodies))
	copy(c.Bodies, f.Bodies)
	return c
}

// Metric accumulates a scalar over the frames of a run.
type Metric interface {
	Name() string
	Observe(f *Frame)
	Value() float64
	Reset()
}

// Observer is notified after every step. The frame and its Bodies slice are
// reused between calls; observers must copy what they keep.
type Observer interface {
	OnStep(f *Frame)
}

type Config struct {
	Duration      float64 `yaml:"duration" json:"duration"`
	Seed          int64   `yaml:"seed" json:"seed"`
	ValidateState bool    `yaml:"validate_state" json:"validate_state"`
	// RecordEvery keeps every n-th frame in the result; 0 keeps none.
	RecordEvery int `yaml:"record_every" json:"record_every"`
}

func DefaultConfig() Config {
	return Config{
		Duration:      100.0,
		ValidateState: true,
		RecordEvery:   1,
	}
}

type Result struct {
	Frames      []Frame
	Times       []float64
	Metrics     map[string]float64
	EnergyDrift float64
	StepsTaken  int
	Errors      []error
}

// Final returns the last recorded frame, or nil when nothing was recorded.
func (r *Result) Final() *Frame {
	if len(r.Frames) == 0 {
		return nil
	}
	return &r.Frames[len(r.Frames)-1]
}
