package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/rigid2d/internal/integrators"
	"github.com/san-kum/rigid2d/internal/metrics"
	"github.com/san-kum/rigid2d/internal/sim"
	"github.com/san-kum/rigid2d/internal/world"
)

type Registry struct {
	scenes  map[string]SceneFunc
	metrics map[string]func(world.Config) sim.Metric
}

func NewRegistry() *Registry {
	r := &Registry{
		scenes:  make(map[string]SceneFunc),
		metrics: make(map[string]func(world.Config) sim.Metric),
	}

	r.scenes["balls"] = ballsScene
	r.scenes["boxes"] = boxesScene
	r.scenes["mixed"] = mixedScene
	r.scenes["cradle"] = cradleScene
	r.scenes["pile"] = pileScene
	r.scenes["custom"] = emptyScene

	r.metrics["energy"] = func(world.Config) sim.Metric { return metrics.NewEnergy() }
	r.metrics["energy_drift"] = func(world.Config) sim.Metric { return metrics.NewEnergyDrift() }
	r.metrics["momentum_drift"] = func(world.Config) sim.Metric { return metrics.NewMomentumDrift() }
	r.metrics["impulse_effort"] = func(world.Config) sim.Metric { return metrics.NewImpulseEffort() }
	r.metrics["contact_rate"] = func(world.Config) sim.Metric { return metrics.NewContactRate() }
	r.metrics["stability"] = func(cfg world.Config) sim.Metric {
		limit := cfg.MaxVelocity
		if limit <= 0 {
			limit = 1e6
		}
		return metrics.NewStability(limit + 1e-9)
	}

	return r
}

// RegisterScene adds or replaces a scene generator.
func (r *Registry) RegisterScene(name string, fn SceneFunc) {
	r.scenes[name] = fn
}

func (r *Registry) GetScene(name string) (SceneFunc, error) {
	fn, ok := r.scenes[name]
	if !ok {
		return nil, fmt.Errorf("unknown scene: %s", name)
	}
	return fn, nil
}

// GetIntegrator returns a fresh integrator from the integrators package.
func (r *Registry) GetIntegrator(name string) (integrators.Integrator, error) {
	return integrators.ByName(name)
}

func (r *Registry) GetMetric(name string, cfg world.Config) (sim.Metric, error) {
	fn, ok := r.metrics[name]
	if !ok {
		return nil, fmt.Errorf("unknown metric: %s", name)
	}
	return fn(cfg), nil
}

func (r *Registry) ListScenes() []string      { return sortedKeys(r.scenes) }
func (r *Registry) ListIntegrators() []string { return integrators.Names() }
func (r *Registry) ListMetrics() []string     { return sortedKeys(r.metrics) }

// DefaultMetrics returns a fresh instance of every registered metric.
func (r *Registry) DefaultMetrics(cfg world.Config) []sim.Metric {
	out := make([]sim.Metric, 0, len(r.metrics))
	for _, name := range r.ListMetrics() {
		out = append(out, r.metrics[name](cfg))
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
