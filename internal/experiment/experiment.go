// Package experiment turns a scene description and a seed into a populated
// world and runs it.
package experiment

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/san-kum/rigid2d/internal/sim"
	"github.com/san-kum/rigid2d/internal/world"
)

type Config struct {
	Scene    string
	World    world.Config
	Params   SceneParams
	Bodies   []world.BodySpec
	Duration float64
	Seed     int64
	// RecordEvery is passed to sim.Config; 0 means every frame.
	RecordEvery int
}

type Experiment struct {
	cfg       Config
	registry  *Registry
	simulator *sim.Simulator
}

func New(cfg Config, registry *Registry) *Experiment {
	return &Experiment{cfg: cfg, registry: registry}
}

// Build creates a world for cfg with the scene seeded by seed. Generated
// bodies come first, followed by cfg.Bodies in order.
func (r *Registry) Build(cfg Config, seed int64) (*world.World, error) {
	scene := cfg.Scene
	if scene == "" {
		scene = "custom"
	}
	gen, err := r.GetScene(scene)
	if err != nil {
		return nil, err
	}
	if err := cfg.Params.Validate(); err != nil {
		return nil, err
	}
	w, err := world.New(cfg.World)
	if err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(seed))
	specs := append(gen(rng, cfg.Params.withDefaults(), cfg.World), cfg.Bodies...)
	for i, spec := range specs {
		if _, err := w.AddBody(spec); err != nil {
			return nil, fmt.Errorf("body %d: %w", i, err)
		}
	}
	return w, nil
}

// Builder adapts Build to sim.Ensemble.
func (r *Registry) Builder(cfg Config) sim.Builder {
	return func(seed int64) (*world.World, error) {
		return r.Build(cfg, seed)
	}
}

func (e *Experiment) Setup(metrics []sim.Metric) error {
	w, err := e.registry.Build(e.cfg, e.cfg.Seed)
	if err != nil {
		return fmt.Errorf("setup %s: %w", e.cfg.Scene, err)
	}
	e.simulator = sim.New(w)
	for _, m := range metrics {
		e.simulator.AddMetric(m)
	}
	return nil
}

func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	if e.simulator == nil {
		return nil, fmt.Errorf("experiment not setup")
	}

	record := e.cfg.RecordEvery
	if record == 0 {
		record = 1
	}
	simCfg := sim.Config{
		Duration:      e.cfg.Duration,
		Seed:          e.cfg.Seed,
		ValidateState: true,
		RecordEvery:   record,
	}

	return e.simulator.Run(ctx, simCfg)
}

// GetSimulator returns the underlying simulator for adding observers
func (e *Experiment) GetSimulator() *sim.Simulator {
	return e.simulator
}
