// Package automation runs scripted batches of simulations: YAML scenarios,
// parameter sweeps over a world setting, and Monte Carlo ensembles over
// scene seeds.
package automation

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/rigid2d/internal/config"
	"github.com/san-kum/rigid2d/internal/experiment"
	"github.com/san-kum/rigid2d/internal/sim"
	"github.com/san-kum/rigid2d/internal/storage"
	"github.com/san-kum/rigid2d/internal/world"
)

// Scenario defines a scripted simulation sequence
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep is one run. The base configuration comes from Preset
// ("scene/name") when set, otherwise from the defaults; the remaining fields
// override it.
type ScenarioStep struct {
	Name     string              `yaml:"name"`
	Preset   string              `yaml:"preset"`
	Scene    string              `yaml:"scene"`
	Duration float64             `yaml:"duration"`
	Seed     int64               `yaml:"seed"`
	Set      map[string]float64  `yaml:"set"`
	Bodies   []config.BodyConfig `yaml:"bodies"`
	// Save stores the run in the runner's store.
	Save bool `yaml:"save"`
	// SaveAs writes the run as JSON to this path.
	SaveAs string `yaml:"save_as"`
}

// StepResult is the outcome of one scenario step.
type StepResult struct {
	Name   string
	Config *config.Config
	Result *sim.Result
	RunID  string
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseScenario(data)
}

func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %q has no steps", scenario.Name)
	}
	return &scenario, nil
}

// Runner executes batches against a registry. Store is optional; steps that
// ask to be saved fail without one.
type Runner struct {
	Registry *experiment.Registry
	Store    *storage.Store
	Logger   *slog.Logger
}

func NewRunner(registry *experiment.Registry, store *storage.Store, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}
	return &Runner{Registry: registry, Store: store, Logger: logger}
}

// SetParam assigns a named world setting.
func SetParam(cfg *world.Config, name string, v float64) error {
	switch name {
	case "gravity":
		cfg.Gravity = v
	case "dt":
		cfg.Dt = v
	case "max_velocity":
		cfg.MaxVelocity = v
	case "restitution":
		cfg.Restitution = v
	case "friction":
		cfg.Friction = v
	case "width":
		cfg.Width = v
	case "height":
		cfg.Height = v
	case "workers":
		cfg.Workers = int(v)
	default:
		return fmt.Errorf("unknown world parameter %q", name)
	}
	return nil
}

// Resolve builds the configuration of a step.
func (s ScenarioStep) Resolve() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if s.Preset != "" {
		scene, name, ok := strings.Cut(s.Preset, "/")
		if !ok {
			return nil, fmt.Errorf("preset %q: want scene/name", s.Preset)
		}
		cfg = config.GetPreset(scene, name)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset %q", s.Preset)
		}
	}

	if s.Scene != "" {
		cfg.Scene = s.Scene
	}
	if s.Duration != 0 {
		cfg.Duration = s.Duration
	}
	if s.Seed != 0 {
		cfg.Seed = s.Seed
	}
	if len(s.Bodies) > 0 {
		cfg.Bodies = append(cfg.Bodies, s.Bodies...)
	}
	for name, v := range s.Set {
		if err := SetParam(&cfg.World, name, v); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (r *Runner) run(ctx context.Context, cfg *config.Config) (*sim.Result, error) {
	expCfg, err := cfg.Experiment()
	if err != nil {
		return nil, err
	}
	exp := experiment.New(expCfg, r.Registry)
	if err := exp.Setup(r.Registry.DefaultMetrics(cfg.World)); err != nil {
		return nil, err
	}
	return exp.Run(ctx)
}

// RunScenario executes all steps in order and stops at the first failure,
// returning the results gathered so far.
func (r *Runner) RunScenario(ctx context.Context, scenario *Scenario) ([]StepResult, error) {
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		name := step.Name
		if name == "" {
			name = fmt.Sprintf("step-%d", i+1)
		}
		log := r.Logger.With("scenario", scenario.Name, "step", name, "index", i+1, "of", len(scenario.Steps))

		cfg, err := step.Resolve()
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		log.Info("running step", "scene", cfg.Scene, "duration", cfg.Duration, "seed", cfg.Seed)

		result, err := r.run(ctx, cfg)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}
		for _, e := range result.Errors {
			log.Warn("simulation error", "err", e)
		}

		sr := StepResult{Name: name, Config: cfg, Result: result}
		meta := storage.RunMetadata{
			Scene:    cfg.Scene,
			Preset:   step.Preset,
			Seed:     cfg.Seed,
			Duration: cfg.Duration,
			World:    cfg.World,
		}

		if step.Save {
			if r.Store == nil {
				return results, fmt.Errorf("step %d: save requested without a store", i+1)
			}
			id, err := r.Store.Save(meta, result)
			if err != nil {
				return results, fmt.Errorf("step %d save: %w", i+1, err)
			}
			sr.RunID = id
			log.Info("saved run", "run_id", id)
		}

		if step.SaveAs != "" {
			meta.Steps = result.StepsTaken
			meta.EnergyDrift = result.EnergyDrift
			meta.Metrics = result.Metrics
			if err := storage.ExportJSON(step.SaveAs, storage.NewExportData(meta, result.Frames)); err != nil {
				return results, fmt.Errorf("step %d export: %w", i+1, err)
			}
			log.Info("exported run", "path", step.SaveAs)
		}

		log.Info("step complete", "steps", result.StepsTaken, "energy_drift", result.EnergyDrift)
		results = append(results, sr)
	}

	return results, nil
}

// ParameterSweep varies one world parameter linearly from Min to Max.
type ParameterSweep struct {
	Base     *config.Config
	Param    string
	Min      float64
	Max      float64
	NumSteps int
}

// SweepResult holds the summary of one sweep point.
type SweepResult struct {
	Value       float64
	EnergyDrift float64
	MinEnergy   float64
	MaxEnergy   float64
	Contacts    int
	Metrics     map[string]float64
}

// Values returns the sweep points. A single step yields Min.
func (s *ParameterSweep) Values() []float64 {
	if s.NumSteps <= 1 {
		return []float64{s.Min}
	}
	out := make([]float64, s.NumSteps)
	step := (s.Max - s.Min) / float64(s.NumSteps-1)
	for i := range out {
		out[i] = s.Min + float64(i)*step
	}
	return out
}

// RunSweep executes a parameter sweep
func (r *Runner) RunSweep(ctx context.Context, sweep *ParameterSweep) ([]SweepResult, error) {
	if sweep.Base == nil {
		return nil, fmt.Errorf("sweep has no base config")
	}
	values := sweep.Values()
	results := make([]SweepResult, 0, len(values))

	for i, v := range values {
		cfg := sweep.Base.Clone()
		if err := SetParam(&cfg.World, sweep.Param, v); err != nil {
			return nil, err
		}
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("%s=%g: %w", sweep.Param, v, err)
		}

		result, err := r.run(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("%s=%g: %w", sweep.Param, v, err)
		}

		sr := SweepResult{
			Value:       v,
			EnergyDrift: result.EnergyDrift,
			MinEnergy:   math.Inf(1),
			MaxEnergy:   math.Inf(-1),
			Metrics:     result.Metrics,
		}
		for _, f := range result.Frames {
			sr.MinEnergy = math.Min(sr.MinEnergy, f.Energy)
			sr.MaxEnergy = math.Max(sr.MaxEnergy, f.Energy)
			sr.Contacts += f.Stats.Contacts
		}
		if len(result.Frames) == 0 {
			sr.MinEnergy, sr.MaxEnergy = 0, 0
		}
		results = append(results, sr)

		r.Logger.Info("sweep point", "index", i+1, "of", len(values), "param", sweep.Param, "value", v,
			"energy_drift", sr.EnergyDrift)
	}

	return results, nil
}

// MonteCarloConfig runs Trials copies of Base with scene seeds Seed,
// Seed+1, ... concurrently.
type MonteCarloConfig struct {
	Base    *config.Config
	Trials  int
	Seed    int64
	Workers int
}

// MonteCarloResult holds the outcome of one trial.
type MonteCarloResult struct {
	TrialID     int
	Seed        int64
	FinalEnergy float64
	EnergyDrift float64
	Metrics     map[string]float64
	// Stable is false when the run hit a non-finite state.
	Stable bool
}

// RunMonteCarlo executes the trials on a sim.Ensemble.
func (r *Runner) RunMonteCarlo(ctx context.Context, mc *MonteCarloConfig) ([]MonteCarloResult, error) {
	if mc.Base == nil || mc.Trials <= 0 {
		return nil, fmt.Errorf("monte carlo needs a base config and at least one trial")
	}
	if err := mc.Base.Validate(); err != nil {
		return nil, err
	}
	expCfg, err := mc.Base.Experiment()
	if err != nil {
		return nil, err
	}

	ens := sim.NewEnsemble(r.Registry.Builder(expCfg), mc.Trials, mc.Seed).
		WithMetrics(func() []sim.Metric { return r.Registry.DefaultMetrics(mc.Base.World) })
	if mc.Workers > 0 {
		ens = ens.WithLimit(mc.Workers)
	}

	record := mc.Base.RecordEvery
	if record == 0 {
		record = 1
	}
	runs, err := ens.Run(ctx, sim.Config{Duration: mc.Base.Duration, ValidateState: true, RecordEvery: record})
	if err != nil {
		return nil, err
	}

	results := make([]MonteCarloResult, len(runs))
	for i, res := range runs {
		mr := MonteCarloResult{
			TrialID:     i,
			Seed:        mc.Seed + int64(i),
			EnergyDrift: res.EnergyDrift,
			Metrics:     res.Metrics,
			Stable:      len(res.Errors) == 0,
		}
		if final := res.Final(); final != nil {
			mr.FinalEnergy = final.Energy
			mr.Stable = mr.Stable && final.IsValid()
		}
		results[i] = mr
	}

	stable, unstable := MonteCarloStats(results)
	r.Logger.Info("monte carlo complete", "trials", mc.Trials, "stable", stable, "unstable", unstable)
	return results, nil
}

// MonteCarloStats counts stable and unstable trials.
func MonteCarloStats(results []MonteCarloResult) (stableCount int, unstableCount int) {
	for _, r := range results {
		if r.Stable {
			stableCount++
		} else {
			unstableCount++
		}
	}
	return
}
