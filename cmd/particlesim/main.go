package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/particlesim/internal/automation"
	"github.com/san-kum/particlesim/internal/config"
	"github.com/san-kum/particlesim/internal/dynamo"
	"github.com/san-kum/particlesim/internal/export"
	"github.com/san-kum/particlesim/internal/integrators"
	"github.com/san-kum/particlesim/internal/metrics"
	"github.com/san-kum/particlesim/internal/sim"
	"github.com/san-kum/particlesim/internal/storage"
	"github.com/san-kum/particlesim/internal/viz"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const runConfigFile = "config.yaml"

var (
	dataDir    string
	configFile string
	preset     string
	runName    string
	verbose    bool

	dt         float64
	steps      int
	seed       int64
	capacity   int
	workers    int
	integrator string
	postImpact string
	eviction   string
	fixedStep  bool

	// sweep
	paramName string
	paramMin  float64
	paramMax  float64
	points    int

	// montecarlo
	trials int

	// export-svg
	outFile   string
	svgSeries string
	svgSize   int
)

// main registers the particlesim commands. With no subcommand it opens the
// interactive preset picker.
func main() {
	rootCmd := &cobra.Command{
		Use:          "particlesim",
		Short:        "particle system simulator",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return viz.RunInteractive()
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".particlesim", "data directory")

	runCmd := &cobra.Command{
		Use:   "run [preset]",
		Short: "run a headless simulation and store the series",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	addConfigFlags(runCmd)
	runCmd.Flags().IntVar(&steps, "steps", config.DefaultSteps, "number of steps")
	runCmd.Flags().StringVar(&runName, "name", "", "run name (default: preset or config file name)")
	runCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log rejected configurations and removed particles")

	liveCmd := &cobra.Command{
		Use:   "live [preset]",
		Short: "run simulation with live visualization",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	addConfigFlags(liveCmd)
	liveCmd.Flags().BoolVar(&fixedStep, "fixed", false, "step by dt instead of the frame delta")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run series",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run series and final particles to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "render the final particles, or a series, to SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default: stdout)")
	exportSVGCmd.Flags().StringVar(&svgSeries, "series", "", "plot a series instead: live, energy, collisions")
	exportSVGCmd.Flags().IntVar(&svgSize, "size", 600, "image size in pixels")

	presetsCmd := &cobra.Command{
		Use:   "presets [name]",
		Short: "list presets, or print one as YAML",
		Args:  cobra.MaximumNArgs(1),
		RunE:  showPresets,
	}

	validateCmd := &cobra.Command{
		Use:   "validate [config]",
		Short: "check a configuration file",
		Args:  cobra.ExactArgs(1),
		RunE:  validateConfig,
	}

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a scripted scenario",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep [preset]",
		Short: "sweep one parameter and compare metrics",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSweep,
	}
	sweepCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	sweepCmd.Flags().StringVar(&paramName, "param", "particle.restitution", "parameter name (see 'info')")
	sweepCmd.Flags().Float64Var(&paramMin, "min", 0, "first value")
	sweepCmd.Flags().Float64Var(&paramMax, "max", 1, "last value")
	sweepCmd.Flags().IntVar(&points, "points", 5, "number of values")
	sweepCmd.Flags().IntVar(&steps, "steps", 500, "steps per run")

	monteCarloCmd := &cobra.Command{
		Use:   "montecarlo [preset]",
		Short: "repeat a configuration over consecutive seeds",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runMonteCarlo,
	}
	monteCarloCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	monteCarloCmd.Flags().IntVar(&trials, "trials", 20, "number of trials")
	monteCarloCmd.Flags().IntVar(&steps, "steps", 500, "steps per trial")
	monteCarloCmd.Flags().Int64Var(&seed, "seed", 1, "first seed")

	infoCmd := &cobra.Command{
		Use:   "info",
		Short: "list integrators, metrics and editable parameters",
		RunE:  showInfo,
	}

	rootCmd.AddCommand(runCmd, liveCmd, listCmd, plotCmd, exportCmd, exportJSONCmd, exportSVGCmd,
		presetsCmd, validateCmd, scenarioCmd, sweepCmd, monteCarloCmd, infoCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addConfigFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	cmd.Flags().Int64Var(&seed, "seed", 42, "random seed")
	cmd.Flags().IntVar(&capacity, "capacity", config.DefaultCapacity, "maximum live particles")
	cmd.Flags().IntVar(&workers, "workers", 1, "parallel workers per step (0 = all CPUs)")
	cmd.Flags().StringVar(&integrator, "integrator", integrators.Default, "integrator")
	cmd.Flags().StringVar(&postImpact, "post-impact", "stop", "after a hit: stop, resume, reflect")
	cmd.Flags().StringVar(&eviction, "eviction", "drop", "when full: drop, oldest")
}

// loadConfig resolves defaults, then the preset, then the config file, then
// any flag the user set explicitly. It also returns a name for the run.
func loadConfig(cmd *cobra.Command, args []string) (*config.Config, string, error) {
	name := "default"
	cfg := config.DefaultConfig()

	if len(args) > 0 {
		preset = args[0]
	}
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, "", fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		name = preset
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, "", fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
		name = strings.TrimSuffix(filepath.Base(configFile), filepath.Ext(configFile))
	}

	flags := cmd.Flags()
	if flags.Changed("dt") {
		cfg.Simulation.Dt = dt
	}
	if flags.Changed("steps") {
		cfg.Simulation.Steps = steps
	}
	if flags.Changed("seed") {
		cfg.Simulation.Seed = seed
	}
	if flags.Changed("capacity") {
		cfg.Simulation.Capacity = capacity
	}
	if flags.Changed("workers") {
		cfg.Simulation.Workers = workers
	}
	if flags.Changed("integrator") {
		cfg.Simulation.Integrator = integrator
	}
	if flags.Changed("post-impact") {
		cfg.Simulation.PostImpact = postImpact
	}
	if flags.Changed("eviction") {
		cfg.Simulation.Eviction = eviction
	}
	if flags.Changed("fixed") {
		cfg.Simulation.FixedStep = fixedStep
	}
	if runName != "" {
		name = runName
	}
	return cfg, name, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, name, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	opts, err := cfg.Options()
	if err != nil {
		return err
	}
	if verbose {
		opts.Logger = log.New(os.Stderr, "particlesim: ", log.LstdFlags)
	}

	s, err := sim.New(opts)
	if err != nil {
		return err
	}
	for _, m := range metrics.Standard(automation.ContainmentBound(cfg)) {
		s.AddMetric(m)
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("running %s for %d steps...\n", name, cfg.Simulation.Steps)
	start := time.Now()

	result, runErr := s.Run(ctx, cfg.Simulation.Steps)
	if result == nil {
		return runErr
	}
	elapsed := time.Since(start)

	runID, err := st.Save(storage.MetadataFor(name, opts), result, s.Particles())
	if err != nil {
		return err
	}
	if err := config.Save(filepath.Join(st.RunDir(runID), runConfigFile), cfg); err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d\n", result.StepsTaken)
	fmt.Printf("live particles: %d\n", s.Total())
	if len(result.Errors) > 0 {
		fmt.Printf("steps with removed particles: %d\n", len(result.Errors))
	}
	printMetrics(result.Metrics)

	if errors.Is(runErr, dynamo.ErrContextCanceled) {
		fmt.Println("\ninterrupted, partial run saved")
		return nil
	}
	return runErr
}

func printMetrics(m map[string]float64) {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Println("\nmetrics:")
	for _, name := range names {
		fmt.Printf("  %s: %.6f\n", name, m[name])
	}
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, name, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	return viz.RunLive(cfg, name)
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTIME\tSTEPS\tDT\tINTEG\tBOUNDARY\tPARTICLES")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.4fs\t%s\t%s\t%d\n",
			run.ID,
			run.Name,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Steps,
			run.Dt,
			run.Integrator,
			run.Boundary,
			run.Particles,
		)
	}

	return w.Flush()
}

type series struct {
	caption string
	values  []float64
}

func seriesOf(result *sim.Result) map[string]series {
	ints := func(xs []int) []float64 {
		out := make([]float64, len(xs))
		for i, x := range xs {
			out[i] = float64(x)
		}
		return out
	}
	return map[string]series{
		"live":       {"live particles", ints(result.Live)},
		"energy":     {"kinetic energy", result.Energy},
		"collisions": {"collisions per step", ints(result.Collisions)},
		"emitted":    {"emitted per step", ints(result.Emitted)},
		"culled":     {"culled per step", ints(result.Culled)},
	}
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	result, err := st.LoadSeries(runID)
	if err != nil {
		return err
	}

	if len(result.Times) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("boundary: %s\n", meta.Boundary)
	fmt.Printf("samples: %d\n\n", len(result.Times))

	all := seriesOf(result)
	for _, key := range []string{"live", "energy", "collisions"} {
		s := all[key]
		graph := asciigraph.Plot(s.values,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(s.caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	result, err := st.LoadSeries(runID)
	if err != nil {
		return err
	}
	particles, err := st.LoadParticles(runID)
	if err != nil {
		return err
	}

	return storage.ExportJSONStdout(*meta, result, particles)
}

func exportSVG(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st := storage.New(dataDir)

	var svg string
	if svgSeries != "" {
		result, err := st.LoadSeries(runID)
		if err != nil {
			return err
		}
		s, ok := seriesOf(result)[svgSeries]
		if !ok {
			return fmt.Errorf("unknown series %q", svgSeries)
		}
		svg = export.SeriesToSVG(result.Times, s.values, svgSize, svgSize/2, dynamo.FastColor)
	} else {
		cfg, err := config.Load(filepath.Join(st.RunDir(runID), runConfigFile))
		if err != nil {
			return err
		}
		boundary, err := cfg.Boundary.BuildBoundary()
		if err != nil {
			return err
		}
		particles, err := st.LoadParticles(runID)
		if err != nil {
			return err
		}
		svg = export.SnapshotSVG(particles, boundary, nil, svgSize, svgSize)
	}

	if outFile == "" {
		fmt.Println(svg)
		return nil
	}
	if err := os.WriteFile(outFile, []byte(svg), 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", outFile)
	return nil
}

func showPresets(cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		cfg := config.GetPreset(args[0])
		if cfg == nil {
			return fmt.Errorf("unknown preset: %s (available: %v)", args[0], config.ListPresets())
		}
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return err
		}
		fmt.Print(string(data))
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tBOUNDARY\tGENERATORS\tDRAG\tLORENZ")
	for _, name := range config.ListPresets() {
		cfg := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%.2f\n",
			name,
			cfg.Boundary.Kind,
			len(cfg.Generators),
			cfg.Environment.Drag,
			cfg.Environment.Lorenz.Factor,
		)
	}
	return w.Flush()
}

func validateConfig(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(args[0])
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		var ce *dynamo.ConfigError
		if errors.As(err, &ce) {
			fmt.Printf("invalid %s: %v\n", ce.Field, ce.Value)
		}
		return err
	}
	fmt.Printf("%s: ok (%d generators, %s boundary)\n", args[0], len(cfg.Generators), cfg.Boundary.Kind)
	return nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("scenario %s: %d steps, %d events\n", sc.Name, sc.Steps, len(sc.Events))
	res, err := automation.RunScenario(ctx, sc, os.Stdout)
	if err != nil {
		return err
	}

	fmt.Printf("applied %d, rejected %d\n", len(res.Applied), len(res.Rejected))
	for _, e := range res.Rejected {
		fmt.Printf("  %v\n", e)
	}
	printMetrics(res.Result.Metrics)

	if sc.SaveAs == "" {
		return nil
	}
	opts, err := res.Config.Options()
	if err != nil {
		return err
	}
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.Save(storage.MetadataFor(sc.SaveAs, opts), res.Result, res.Particles)
	if err != nil {
		return err
	}
	if err := config.Save(filepath.Join(st.RunDir(runID), runConfigFile), res.Config); err != nil {
		return err
	}
	fmt.Printf("\nrun id: %s\n", runID)
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}

	results, err := automation.RunSweep(context.Background(), &automation.ParameterSweep{
		Base:      cfg,
		ParamName: paramName,
		ParamMin:  paramMin,
		ParamMax:  paramMax,
		NumSteps:  points,
		Steps:     steps,
	}, os.Stderr)
	if len(results) == 0 && err != nil {
		return err
	}

	names := metrics.Names()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tLIVE\t%s\n", strings.ToUpper(paramName), strings.ToUpper(strings.Join(names, "\t")))
	for _, r := range results {
		fmt.Fprintf(w, "%.4f\t%d", r.ParamValue, r.FinalLive)
		for _, n := range names {
			if v, ok := r.Metrics[n]; ok {
				fmt.Fprintf(w, "\t%.4f", v)
			} else {
				fmt.Fprint(w, "\t-")
			}
		}
		fmt.Fprintln(w)
	}
	if ferr := w.Flush(); ferr != nil {
		return ferr
	}
	return err
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	cfg, name, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}

	fmt.Printf("monte carlo %s: %d trials x %d steps\n", name, trials, steps)
	start := time.Now()
	results, err := automation.RunMonteCarlo(context.Background(), &automation.MonteCarloConfig{
		Base:      cfg,
		NumTrials: trials,
		Steps:     steps,
		Seed:      seed,
	}, os.Stdout)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TRIAL\tSEED\tPOPULATION\tENERGY\tPEAK_SPEED\tCONTAINED")
	for _, r := range results {
		fmt.Fprintf(w, "%d\t%d\t%.1f\t%.4f\t%.4f\t%v\n",
			r.TrialID, r.Seed,
			r.Metrics["population"], r.Metrics["kinetic_energy"], r.Metrics["peak_speed"],
			r.Contained)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	contained, escaped := automation.MonteCarloStats(results)
	fmt.Printf("\ncontained: %d, escaped: %d (%v)\n", contained, escaped, time.Since(start))
	return nil
}

func showInfo(cmd *cobra.Command, args []string) error {
	fmt.Printf("integrators: %s (default %s)\n", strings.Join(integrators.List(), ", "), integrators.Default)
	fmt.Printf("metrics: %s\n\n", strings.Join(metrics.Names(), ", "))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PARAMETER\tSTEP\tDEFAULT")
	def := config.DefaultConfig()
	for _, p := range config.Params() {
		fmt.Fprintf(w, "%s\t%g\t%g\n", p.Name, p.Step, p.Get(def))
	}
	return w.Flush()
}
