package sim

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/rigid2d/internal/world"
)

// Builder creates the world for one ensemble member.
type Builder func(seed int64) (*world.World, error)

// Ensemble runs numRuns independent worlds, seeded seedStart, seedStart+1, ...
type Ensemble struct {
	build     Builder
	metrics   func() []Metric
	numRuns   int
	seedStart int64
	limit     int
}

func NewEnsemble(build Builder, numRuns int, seedStart int64) *Ensemble {
	return &Ensemble{build: build, numRuns: numRuns, seedStart: seedStart, limit: runtime.NumCPU()}
}

// WithMetrics sets a constructor for the metrics attached to each run.
// Metrics are stateful, so every run gets its own set.
func (e *Ensemble) WithMetrics(fn func() []Metric) *Ensemble {
	e.metrics = fn
	return e
}

// WithLimit bounds the number of runs in flight.
func (e *Ensemble) WithLimit(n int) *Ensemble {
	e.limit = n
	return e
}

// Run executes every member and returns results in seed order. The first
// failure cancels the remaining runs.
func (e *Ensemble) Run(ctx context.Context, cfg Config) ([]*Result, error) {
	results := make([]*Result, e.numRuns)

	g, ctx := errgroup.WithContext(ctx)
	if e.limit > 0 {
		g.SetLimit(e.limit)
	}

	for i := 0; i < e.numRuns; i++ {
		idx := i
		g.Go(func() error {
			seed := e.seedStart + int64(idx)
			w, err := e.build(seed)
			if err != nil {
				return fmt.Errorf("build run %d (seed %d): %w", idx, seed, err)
			}

			s := New(w)
			if e.metrics != nil {
				for _, m := range e.metrics() {
					s.AddMetric(m)
				}
			}

			runCfg := cfg
			runCfg.Seed = seed
			res, err := s.Run(ctx, runCfg)
			if err != nil {
				return fmt.Errorf("run %d (seed %d): %w", idx, seed, err)
			}
			results[idx] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
