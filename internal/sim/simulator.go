package sim

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/san-kum/rigid2d/internal/world"
)

type Simulator struct {
	world     *world.World
	metrics   []Metric
	observers []Observer
}

func New(w *world.World) *Simulator {
	return &Simulator{
		world:     w,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

func (s *Simulator) World() *world.World { return s.world }

// Steps returns the number of fixed steps a run of cfg.Duration takes.
func (s *Simulator) Steps(cfg Config) int {
	return int(cfg.Duration/s.world.Config().Dt + 1e-9)
}

// Run advances the world for cfg.Duration in steps of the world's Dt.
// Metrics observe the initial frame and every frame after it. The context is
// checked between steps; on cancellation the partial result is returned
// alongside ctx.Err().
func (s *Simulator) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := s.validateConfig(cfg); err != nil {
		return nil, err
	}

	steps := s.Steps(cfg)
	result := &Result{
		Metrics: make(map[string]float64),
		Errors:  make([]error, 0),
	}
	if cfg.RecordEvery > 0 {
		result.Frames = make([]Frame, 0, steps/cfg.RecordEvery+1)
		result.Times = make([]float64, 0, steps/cfg.RecordEvery+1)
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	frame := &Frame{}
	s.capture(frame, world.StepStats{}, 0)
	s.record(result, frame, cfg)
	for _, m := range s.metrics {
		m.Observe(frame)
	}

	initialEnergy := frame.Energy

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			s.finish(result, frame.Energy, initialEnergy)
			return result, ctx.Err()
		default:
		}

		start := time.Now()
		stats := s.world.Advance()
		s.capture(frame, stats, time.Since(start))

		if cfg.ValidateState && !frame.IsValid() {
			result.Errors = append(result.Errors, &SimulationError{Step: frame.Step, Time: frame.Time, Wrapped: ErrInvalidState})
			break
		}
		result.StepsTaken++

		for _, m := range s.metrics {
			m.Observe(frame)
		}
		for _, obs := range s.observers {
			obs.OnStep(frame)
		}
		if cfg.RecordEvery > 0 && frame.Step%cfg.RecordEvery == 0 {
			s.record(result, frame, cfg)
		}
	}

	s.finish(result, frame.Energy, initialEnergy)
	return result, nil
}

func (s *Simulator) validateConfig(cfg Config) error {
	if !(cfg.Duration > 0) {
		return fmt.Errorf("%w, got %f", ErrInvalidDuration, cfg.Duration)
	}
	if cfg.RecordEvery < 0 {
		return fmt.Errorf("record_every must not be negative, got %d", cfg.RecordEvery)
	}
	return nil
}

func (s *Simulator) capture(f *Frame, stats world.StepStats, elapsed time.Duration) {
	f.Step = s.world.Steps()
	f.Time = s.world.Time()
	f.Bodies = s.world.SnapshotInto(f.Bodies)
	f.Stats = stats
	f.Energy = s.world.TotalKineticEnergy()
	f.Momentum = s.world.TotalMomentum()
	f.Elapsed = elapsed
}

func (s *Simulator) record(r *Result, f *Frame, cfg Config) {
	if cfg.RecordEvery <= 0 {
		return
	}
	r.Frames = append(r.Frames, f.Clone())
	r.Times = append(r.Times, f.Time)
}

func (s *Simulator) finish(r *Result, final, initial float64) {
	if initial != 0 {
		r.EnergyDrift = math.Abs(final-initial) / math.Abs(initial)
	}
	for _, m := range s.metrics {
		r.Metrics[m.Name()] = m.Value()
	}
}
