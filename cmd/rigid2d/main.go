package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/san-kum/rigid2d/internal/config"
	"github.com/san-kum/rigid2d/internal/experiment"
)

var (
	dataDir  string
	logLevel string

	dt          float64
	duration    float64
	gravity     float64
	restitution float64
	friction    float64
	maxVelocity float64
	count       int
	seed        int64
	integrator  string
	circleRect  string
	workers     int
	recordEvery int

	configFile string
	preset     string

	charts    bool
	outFile   string
	trails    bool
	scale     float64
	addr      string
	fps       int
	forceRate float64
	show      string

	sweepParam string
	sweepMin   float64
	sweepMax   float64
	sweepSteps int
	trials     int

	grid   []string
	metric string
)

// main registers the commands and their flags, then executes the root
// command. It exits with status 1 if the command fails.
func main() {
	rootCmd := &cobra.Command{
		Use:           "rigid2d",
		Short:         "2D rigid-body simulation lab",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".rigid2d", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	runCmd := &cobra.Command{
		Use:   "run [scene]",
		Short: "run a simulation and store it",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	addWorldFlags(runCmd)
	runCmd.Flags().BoolVar(&charts, "charts", false, "print telemetry charts after the run")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run results",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export per-body frames to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "render the final frame or the trajectories of a run as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().BoolVar(&trails, "trails", false, "draw every body's trajectory")
	exportSVGCmd.Flags().Float64Var(&scale, "scale", 1, "pixels per world unit")
	exportSVGCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	deleteCmd := &cobra.Command{
		Use:   "delete [run_id]",
		Short: "delete a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  deleteRun,
	}

	liveCmd := &cobra.Command{
		Use:   "live [scene]",
		Short: "run simulation with live visualization",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	addWorldFlags(liveCmd)

	presetsCmd := &cobra.Command{
		Use:   "presets [scene]",
		Short: "list available presets",
		Args:  cobra.MaximumNArgs(1),
		RunE:  listPresets,
	}
	presetsCmd.Flags().StringVar(&show, "show", "", "print the named preset as YAML")

	benchCmd := &cobra.Command{
		Use:   "bench [scene]",
		Short: "benchmark the step driver",
		Args:  cobra.MaximumNArgs(1),
		RunE:  benchScene,
	}

	compareCmd := &cobra.Command{
		Use:   "compare [scene] [integrator1] [integrator2] ...",
		Short: "compare integrators on the same scene",
		Args:  cobra.MinimumNArgs(2),
		RunE:  compareIntegrators,
	}
	addWorldFlags(compareCmd)

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a YAML scenario",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep [scene]",
		Short: "sweep a world parameter",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSweep,
	}
	addWorldFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&sweepParam, "param", "restitution", "world parameter to vary")
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 0, "first value")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 1, "last value")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 5, "number of values")

	monteCarloCmd := &cobra.Command{
		Use:   "montecarlo [scene]",
		Short: "run many seeds of a scene concurrently",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runMonteCarlo,
	}
	addWorldFlags(monteCarloCmd)
	monteCarloCmd.Flags().IntVar(&trials, "trials", 16, "number of seeds")

	tuneCmd := &cobra.Command{
		Use:   "tune [scene]",
		Short: "grid-search world parameters for the lowest metric value",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runTune,
	}
	addWorldFlags(tuneCmd)
	tuneCmd.Flags().StringArrayVar(&grid, "grid", nil, "parameter grid, e.g. restitution=0,0.5,1 (repeatable)")
	tuneCmd.Flags().StringVar(&metric, "metric", "energy_drift", "metric to minimise")

	serveCmd := &cobra.Command{
		Use:   "serve [scene]",
		Short: "step a world and stream it over HTTP and websocket",
		Args:  cobra.MaximumNArgs(1),
		RunE:  serve,
	}
	addWorldFlags(serveCmd)
	serveCmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	serveCmd.Flags().IntVar(&fps, "fps", 60, "steps per second")
	serveCmd.Flags().Float64Var(&forceRate, "force-rate", 120, "accepted force requests per second")

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, exportCmd, exportCSVCmd, exportJSONCmd, exportSVGCmd, deleteCmd,
		liveCmd, presetsCmd, benchCmd, compareCmd, scenarioCmd, sweepCmd, monteCarloCmd, tuneCmd, serveCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addWorldFlags(cmd *cobra.Command) {
	d := config.DefaultConfig()
	cmd.Flags().Float64Var(&dt, "dt", d.World.Dt, "timestep")
	cmd.Flags().Float64Var(&duration, "time", d.Duration, "duration")
	cmd.Flags().Float64Var(&gravity, "gravity", d.World.Gravity, "downward acceleration")
	cmd.Flags().Float64Var(&restitution, "restitution", d.World.Restitution, "coefficient of restitution")
	cmd.Flags().Float64Var(&friction, "friction", d.World.Friction, "coefficient of friction")
	cmd.Flags().Float64Var(&maxVelocity, "max-velocity", d.World.MaxVelocity, "speed cap (0 disables)")
	cmd.Flags().IntVar(&count, "count", d.Params.Count, "number of generated bodies")
	cmd.Flags().Int64Var(&seed, "seed", d.Seed, "random seed")
	cmd.Flags().StringVar(&integrator, "integrator", d.World.Integrator, "integrator (euler, rk4, verlet)")
	cmd.Flags().StringVar(&circleRect, "circle-rect", d.World.CircleRect, "circle-square policy (axis_aligned, oriented)")
	cmd.Flags().IntVar(&workers, "workers", d.World.Workers, "detection workers")
	cmd.Flags().IntVar(&recordEvery, "record-every", d.RecordEvery, "keep every n-th frame")
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
}

// resolveConfig builds the configuration of a command: defaults, then the
// preset, then the config file, then any flag set explicitly.
func resolveConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	scene := config.DefaultScene
	if len(args) > 0 {
		scene = args[0]
	}

	cfg := config.DefaultConfig()
	cfg.Scene = scene

	if preset != "" {
		p := config.GetPreset(scene, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(scene))
		}
		cfg = p
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
		if len(args) > 0 {
			cfg.Scene = scene
		}
	}

	flags := cmd.Flags()
	if flags.Changed("dt") {
		cfg.World.Dt = dt
	}
	if flags.Changed("time") {
		cfg.Duration = duration
	}
	if flags.Changed("gravity") {
		cfg.World.Gravity = gravity
	}
	if flags.Changed("restitution") {
		cfg.World.Restitution = restitution
	}
	if flags.Changed("friction") {
		cfg.World.Friction = friction
	}
	if flags.Changed("max-velocity") {
		cfg.World.MaxVelocity = maxVelocity
	}
	if flags.Changed("count") {
		cfg.Params.Count = count
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("integrator") {
		cfg.World.Integrator = integrator
	}
	if flags.Changed("circle-rect") {
		cfg.World.CircleRect = circleRect
	}
	if flags.Changed("workers") {
		cfg.World.Workers = workers
	}
	if flags.Changed("record-every") {
		cfg.RecordEvery = recordEvery
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger() *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(logLevel)); err != nil {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func buildExperiment(cfg *config.Config) (*experiment.Registry, experiment.Config, error) {
	expCfg, err := cfg.Experiment()
	if err != nil {
		return nil, experiment.Config{}, err
	}
	return experiment.NewRegistry(), expCfg, nil
}
