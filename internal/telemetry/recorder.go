package telemetry

import (
	"github.com/san-kum/rigid2d/internal/sim"
)

// DefaultCapacity matches a 200-sample wide chart.
const DefaultCapacity = 200

// Recorder is a sim.Observer that feeds one sample per body per step into
// its kinematic series and one sample per step into Performance.
type Recorder struct {
	Velocity     *Series
	Position     *Series
	Acceleration *Series
	Force        *Series
	Performance  *Series

	dt      float64
	gravity float64
}

func NewRecorder(capacity int, dt, gravity float64) *Recorder {
	return &Recorder{
		Velocity:     NewSeries("speed |v|", capacity),
		Position:     NewSeries("height y", capacity),
		Acceleration: NewSeries("|v|/dt", capacity),
		Force:        NewSeries("gravity force m*g", capacity),
		Performance:  NewSeries("step time (ms)", capacity),
		dt:           dt,
		gravity:      gravity,
	}
}

func (r *Recorder) OnStep(f *sim.Frame) {
	for _, b := range f.Bodies {
		speed := b.Velocity.Len()
		r.Velocity.Add(speed)
		r.Position.Add(b.Position.Y)
		if r.dt > 0 {
			r.Acceleration.Add(speed / r.dt)
		}
		r.Force.Add(b.Mass * r.gravity)
	}
	r.Performance.Add(float64(f.Elapsed.Microseconds()) / 1000)
}

// Series returns every series in display order.
func (r *Recorder) Series() []*Series {
	return []*Series{r.Velocity, r.Performance, r.Position, r.Acceleration, r.Force}
}

func (r *Recorder) Reset() {
	for _, s := range r.Series() {
		s.Reset()
	}
}
