// Package optim searches world parameters for the values that minimise a
// run metric.
package optim

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/rigid2d/internal/automation"
	"github.com/san-kum/rigid2d/internal/config"
	"github.com/san-kum/rigid2d/internal/experiment"
)

// Objective scores one configuration. Lower is better.
type Objective func(ctx context.Context, cfg *config.Config) (float64, error)

// MetricObjective runs cfg with the registry's default metrics and returns
// the named metric.
func MetricObjective(reg *experiment.Registry, metric string) Objective {
	return func(ctx context.Context, cfg *config.Config) (float64, error) {
		expCfg, err := cfg.Experiment()
		if err != nil {
			return 0, err
		}
		exp := experiment.New(expCfg, reg)
		if err := exp.Setup(reg.DefaultMetrics(cfg.World)); err != nil {
			return 0, err
		}
		result, err := exp.Run(ctx)
		if err != nil {
			return 0, err
		}
		v, ok := result.Metrics[metric]
		if !ok {
			return 0, fmt.Errorf("unknown metric: %s", metric)
		}
		return v, nil
	}
}

// Point is one evaluated grid cell.
type Point struct {
	Params map[string]float64
	Value  float64
}

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

// NewGridSearch searches the cartesian product of ranges; ranges[i] holds
// the candidate values of params[i].
func NewGridSearch(params []string, ranges [][]float64) (*GridSearch, error) {
	if len(params) == 0 || len(params) != len(ranges) {
		return nil, fmt.Errorf("grid search needs one range per parameter, got %d params and %d ranges",
			len(params), len(ranges))
	}
	for i, r := range ranges {
		if len(r) == 0 {
			return nil, fmt.Errorf("parameter %s has no values", params[i])
		}
	}
	return &GridSearch{paramNames: params, ranges: ranges}, nil
}

// Size is the number of grid cells.
func (g *GridSearch) Size() int {
	n := 1
	for _, r := range g.ranges {
		n *= len(r)
	}
	return n
}

// Search evaluates every cell in row-major order and returns the best one
// together with all points. Ties keep the earliest cell.
func (g *GridSearch) Search(ctx context.Context, base *config.Config, objective Objective) (Point, []Point, error) {
	best := Point{Value: math.Inf(1)}
	points := make([]Point, 0, g.Size())

	err := g.searchRecursive(ctx, 0, make(map[string]float64), base, objective, &best, &points)
	if err != nil {
		return Point{}, points, err
	}
	return best, points, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	base *config.Config,
	objective Objective,
	best *Point,
	points *[]Point,
) error {
	if depth == len(g.paramNames) {
		if err := ctx.Err(); err != nil {
			return err
		}

		cfg := base.Clone()
		for name, v := range current {
			if err := automation.SetParam(&cfg.World, name, v); err != nil {
				return err
			}
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("%v: %w", current, err)
		}

		val, err := objective(ctx, cfg)
		if err != nil {
			return fmt.Errorf("%v: %w", current, err)
		}

		p := Point{Params: current, Value: val}
		*points = append(*points, p)
		if val < best.Value {
			*best = p
		}
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64, len(current)+1)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, newParams, base, objective, best, points); err != nil {
			return err
		}
	}
	return nil
}
