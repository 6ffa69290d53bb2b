package main

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/rigid2d/internal/automation"
	"github.com/san-kum/rigid2d/internal/config"
	"github.com/san-kum/rigid2d/internal/experiment"
	"github.com/san-kum/rigid2d/internal/optim"
	"github.com/san-kum/rigid2d/internal/storage"
	"github.com/san-kum/rigid2d/internal/stream"
	"github.com/san-kum/rigid2d/internal/telemetry"
	"github.com/san-kum/rigid2d/internal/viz"
	"github.com/san-kum/rigid2d/internal/world"
)

func presetName(scene string) string {
	if preset == "" {
		return ""
	}
	return scene + "/" + preset
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	reg, expCfg, err := buildExperiment(cfg)
	if err != nil {
		return err
	}

	store := storage.New(dataDir)
	if err := store.Init(); err != nil {
		return fmt.Errorf("failed to init storage: %w", err)
	}

	exp := experiment.New(expCfg, reg)
	if err := exp.Setup(reg.DefaultMetrics(cfg.World)); err != nil {
		return err
	}

	var recorder *telemetry.Recorder
	if charts {
		recorder = telemetry.NewRecorder(telemetry.DefaultCapacity, cfg.World.Dt, cfg.World.Gravity)
		exp.GetSimulator().AddObserver(recorder)
	}

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("running %s for %.1f time units (dt=%g, seed=%d)...\n", cfg.Scene, cfg.Duration, cfg.World.Dt, cfg.Seed)

	start := time.Now()
	result, err := exp.Run(ctx)
	if err != nil {
		return fmt.Errorf("simulation failed: %w", err)
	}
	elapsed := time.Since(start)

	runID, err := store.Save(storage.RunMetadata{
		Scene:    cfg.Scene,
		Preset:   presetName(cfg.Scene),
		Seed:     cfg.Seed,
		Duration: cfg.Duration,
		World:    cfg.World,
	}, result)
	if err != nil {
		return fmt.Errorf("failed to save: %w", err)
	}

	fmt.Printf("\nrun complete: %s\n", runID)
	fmt.Printf("steps: %d in %v\n", result.StepsTaken, elapsed.Round(time.Millisecond))
	if final := result.Final(); final != nil {
		fmt.Printf("bodies: %d, final energy: %.4f\n", len(final.Bodies), final.Energy)
	}
	fmt.Printf("energy drift: %.6f\n", result.EnergyDrift)

	if len(result.Metrics) > 0 {
		fmt.Println("\nmetrics:")
		for _, name := range sortedKeys(result.Metrics) {
			fmt.Printf("  %-16s %.6f\n", name, result.Metrics[name])
		}
	}

	if len(result.Errors) > 0 {
		fmt.Printf("\nwarnings: %d\n", len(result.Errors))
		for _, e := range result.Errors {
			fmt.Printf("  %v\n", e)
		}
	}

	if recorder != nil {
		fmt.Println()
		fmt.Println(telemetry.RenderAll(recorder, 8, 80))
	}

	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	reg, expCfg, err := buildExperiment(cfg)
	if err != nil {
		return err
	}

	return viz.Run(cfg.Scene, func() (*world.World, error) {
		return reg.Build(expCfg, cfg.Seed)
	})
}

func benchScene(cmd *cobra.Command, args []string) error {
	scene := config.DefaultScene
	if len(args) > 0 {
		scene = args[0]
	}
	reg := experiment.NewRegistry()
	if _, err := reg.GetScene(scene); err != nil {
		return err
	}

	const steps = 500
	counts := []int{10, 50, 100, 200}
	workerCounts := []int{1, 4}

	fmt.Printf("benchmarking %s (%d steps per run)\n\n", scene, steps)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "BODIES\tWORKERS\tSTEPS/SEC\tNS/STEP\tCONTACTS")

	for _, n := range counts {
		for _, workers := range workerCounts {
			cfg := config.DefaultConfig()
			cfg.Scene = scene
			cfg.Params.Count = n
			cfg.World.Workers = workers
			expCfg, err := cfg.Experiment()
			if err != nil {
				return err
			}
			wd, err := reg.Build(expCfg, cfg.Seed)
			if err != nil {
				return err
			}

			contacts := 0
			start := time.Now()
			for i := 0; i < steps; i++ {
				contacts += wd.Advance().Contacts
			}
			elapsed := time.Since(start)

			rate := float64(steps) / elapsed.Seconds()
			fmt.Fprintf(w, "%d\t%d\t%.0f\t%d\t%d\n", wd.Len(), workers, rate, elapsed.Nanoseconds()/steps, contacts)
		}
	}
	return w.Flush()
}

func compareIntegrators(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args[:1])
	if err != nil {
		return err
	}
	names := args[1:]
	reg := experiment.NewRegistry()

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("comparing integrators on %s (duration %.1f, dt %g)\n\n", cfg.Scene, cfg.Duration, cfg.World.Dt)
	fmt.Printf("%-10s %14s %14s %10s  %s\n", "INTEGRATOR", "ENERGY DRIFT", "FINAL ENERGY", "TIME", "ENERGY")
	fmt.Println(strings.Repeat("-", 80))

	for _, name := range names {
		if _, err := reg.GetIntegrator(name); err != nil {
			fmt.Printf("%-10s %s\n", name, err)
			continue
		}

		c := cfg.Clone()
		c.World.Integrator = name
		expCfg, err := c.Experiment()
		if err != nil {
			return err
		}
		exp := experiment.New(expCfg, reg)
		if err := exp.Setup(reg.DefaultMetrics(c.World)); err != nil {
			return err
		}

		start := time.Now()
		result, err := exp.Run(ctx)
		if err != nil {
			fmt.Printf("%-10s failed: %v\n", name, err)
			continue
		}
		elapsed := time.Since(start)

		energies := make([]float64, len(result.Frames))
		for i, f := range result.Frames {
			energies[i] = f.Energy
		}
		final := 0.0
		if f := result.Final(); f != nil {
			final = f.Energy
		}
		fmt.Printf("%-10s %14.6f %14.4f %10v  %s\n", name, result.EnergyDrift, final,
			elapsed.Round(time.Microsecond), viz.Sparkline(energies, 24))
	}
	return nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	store := storage.New(dataDir)
	if err := store.Init(); err != nil {
		return fmt.Errorf("failed to init storage: %w", err)
	}

	ctx, cancel := signalContext()
	defer cancel()

	runner := automation.NewRunner(experiment.NewRegistry(), store, newLogger())
	results, err := runner.RunScenario(ctx, sc)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tSCENE\tSTEPS\tENERGY DRIFT\tRUN")
	for _, r := range results {
		runID := r.RunID
		if runID == "" {
			runID = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%.6f\t%s\n", r.Name, r.Config.Scene, r.Result.StepsTaken, r.Result.EnergyDrift, runID)
	}
	w.Flush()
	return err
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	runner := automation.NewRunner(experiment.NewRegistry(), nil, newLogger())
	results, err := runner.RunSweep(ctx, &automation.ParameterSweep{
		Base:     cfg,
		Param:    sweepParam,
		Min:      sweepMin,
		Max:      sweepMax,
		NumSteps: sweepSteps,
	})
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tENERGY DRIFT\tMIN ENERGY\tMAX ENERGY\tCONTACTS\n", strings.ToUpper(sweepParam))
	for _, r := range results {
		fmt.Fprintf(w, "%g\t%.6f\t%.4f\t%.4f\t%d\n", r.Value, r.EnergyDrift, r.MinEnergy, r.MaxEnergy, r.Contacts)
	}
	return w.Flush()
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	runner := automation.NewRunner(experiment.NewRegistry(), nil, newLogger())
	results, err := runner.RunMonteCarlo(ctx, &automation.MonteCarloConfig{
		Base:    cfg,
		Trials:  trials,
		Seed:    cfg.Seed,
		Workers: cfg.World.Workers,
	})
	if err != nil {
		return err
	}

	drifts := make([]float64, len(results))
	lo, hi, sum := math.Inf(1), math.Inf(-1), 0.0
	for i, r := range results {
		drifts[i] = r.EnergyDrift
		lo = math.Min(lo, r.EnergyDrift)
		hi = math.Max(hi, r.EnergyDrift)
		sum += r.EnergyDrift
	}
	stable, unstable := automation.MonteCarloStats(results)

	fmt.Printf("%d trials of %s from seed %d\n", len(results), cfg.Scene, cfg.Seed)
	fmt.Printf("stable: %d, unstable: %d\n", stable, unstable)
	fmt.Printf("energy drift: min %.6f, mean %.6f, max %.6f\n", lo, sum/float64(len(results)), hi)
	fmt.Printf("per trial: %s\n", viz.Sparkline(drifts, len(drifts)))
	return nil
}

func serve(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	reg, expCfg, err := buildExperiment(cfg)
	if err != nil {
		return err
	}
	wd, err := reg.Build(expCfg, cfg.Seed)
	if err != nil {
		return err
	}
	if fps <= 0 {
		return fmt.Errorf("fps must be positive, got %d", fps)
	}

	logger := newLogger()
	srv := stream.NewServer(wd, time.Second/time.Duration(fps), logger)
	srv.SetForceLimit(forceRate, max(1, int(forceRate/4)))
	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, cancel := signalContext()
	defer cancel()

	go srv.Run(ctx)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("serving", "addr", addr, "scene", cfg.Scene, "bodies", wd.Len(), "fps", fps)
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
	defer done()
	return httpSrv.Shutdown(shutdownCtx)
}

// parseGrid reads "name=v1,v2,..." entries.
func parseGrid(entries []string) ([]string, [][]float64, error) {
	names := make([]string, 0, len(entries))
	ranges := make([][]float64, 0, len(entries))
	for _, e := range entries {
		name, list, ok := strings.Cut(e, "=")
		if !ok || name == "" {
			return nil, nil, fmt.Errorf("grid entry %q: want name=v1,v2,...", e)
		}
		var values []float64
		for _, f := range strings.Split(list, ",") {
			v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
			if err != nil {
				return nil, nil, fmt.Errorf("grid entry %q: %w", e, err)
			}
			values = append(values, v)
		}
		names = append(names, name)
		ranges = append(ranges, values)
	}
	return names, ranges, nil
}

func runTune(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	names, ranges, err := parseGrid(grid)
	if err != nil {
		return err
	}
	search, err := optim.NewGridSearch(names, ranges)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	logger := newLogger()
	logger.Info("grid search", "scene", cfg.Scene, "cells", search.Size(), "metric", metric)
	best, points, err := search.Search(ctx, cfg, optim.MetricObjective(experiment.NewRegistry(), metric))
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\n", strings.ToUpper(strings.Join(names, "\t")), strings.ToUpper(metric))
	for _, p := range points {
		for _, name := range names {
			fmt.Fprintf(w, "%g\t", p.Params[name])
		}
		fmt.Fprintf(w, "%.6f\n", p.Value)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\nbest %s: %.6f at", metric, best.Value)
	for _, name := range names {
		fmt.Printf(" %s=%g", name, best.Params[name])
	}
	fmt.Println()
	return nil
}
