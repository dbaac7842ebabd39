package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/adtzlr/pacopy/internal/branch"
	"github.com/adtzlr/pacopy/internal/config"
	"github.com/adtzlr/pacopy/internal/experiment"
	"github.com/adtzlr/pacopy/internal/export"
	"github.com/adtzlr/pacopy/internal/storage"
	"github.com/adtzlr/pacopy/internal/tracer"
	"github.com/adtzlr/pacopy/internal/viz"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
)

var (
	dataDir      string
	mode         string
	step0        float64
	stepMin      float64
	stepMax      float64
	growFactor   float64
	shrinkFactor float64
	targetIts    int
	maxSteps     int
	tolerance    float64
	newtonIts    int
	lambdaMin    float64
	lambdaMax    float64
	theta        float64
	size         int
	detectFolds  bool
	refineFolds  bool
	foldTol      float64
	// Problem parameters as name=value pairs
	paramFlags   []string
	presetParams map[string]float64
	// Restart source
	fromRun string
	// Explicit starting point
	u0Flag  string
	lambda0 float64
	// Plot component and phase axes
	component int
	xAxis     int
	yAxis     int
	// SVG geometry
	svgWidth  int
	svgHeight int
	svgOut    string
	// Config file
	configFile string
	// Preset name
	preset  string
	verbose bool
)

// main is the entry point for the pacopy CLI; it registers commands and
// flags and executes the root command. It exits the process with status 1
// if command execution returns an error.
func main() {
	rootCmd := &cobra.Command{
		Use:   "pacopy",
		Short: "parameter continuation lab",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".pacopy", "data directory")

	traceCmd := &cobra.Command{
		Use:   "trace [problem]",
		Short: "trace a solution branch",
		Args:  cobra.ExactArgs(1),
		RunE:  runTrace,
	}
	traceCmd.Flags().StringVar(&mode, "mode", "arclength", "continuation mode (natural, arclength)")
	traceCmd.Flags().Float64Var(&step0, "step", 0.05, "initial step size, sign sets direction")
	traceCmd.Flags().Float64Var(&stepMin, "step-min", 1e-8, "minimum step size")
	traceCmd.Flags().Float64Var(&stepMax, "step-max", 1.0, "maximum step size")
	traceCmd.Flags().Float64Var(&growFactor, "grow", 1.5, "step growth after easy convergence")
	traceCmd.Flags().Float64Var(&shrinkFactor, "shrink", 0.5, "step reduction after a failed correction")
	traceCmd.Flags().IntVar(&targetIts, "target-its", 3, "newton iterations considered easy")
	traceCmd.Flags().IntVar(&maxSteps, "steps", 500, "maximum accepted steps")
	traceCmd.Flags().Float64Var(&tolerance, "tol", 1e-10, "newton residual tolerance")
	traceCmd.Flags().IntVar(&newtonIts, "newton-its", 10, "newton iterations per correction")
	traceCmd.Flags().Float64Var(&lambdaMin, "lambda-min", math.Inf(-1), "lower lambda bound")
	traceCmd.Flags().Float64Var(&lambdaMax, "lambda-max", math.Inf(1), "upper lambda bound")
	traceCmd.Flags().Float64Var(&theta, "theta", 1.0, "state weight in the arclength metric")
	traceCmd.Flags().IntVar(&size, "size", 0, "problem size (0 = problem default)")
	traceCmd.Flags().BoolVar(&detectFolds, "folds", true, "detect fold points")
	traceCmd.Flags().BoolVar(&refineFolds, "refine", false, "refine folds by bisection")
	traceCmd.Flags().Float64Var(&foldTol, "fold-tol", 1e-6, "fold refinement tolerance")
	traceCmd.Flags().StringArrayVar(&paramFlags, "param", nil, "problem parameter (name=value)")
	traceCmd.Flags().StringVar(&fromRun, "from", "", "restart from the last point of a stored run")
	traceCmd.Flags().StringVar(&u0Flag, "u0", "", "starting state as comma-separated values")
	traceCmd.Flags().Float64Var(&lambda0, "lambda0", 0, "starting parameter value (with --u0)")
	traceCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	traceCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	traceCmd.Flags().BoolVar(&verbose, "verbose", false, "log every accepted point")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a stored branch",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&component, "component", 0, "state component on the vertical axis")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	benchCmd := &cobra.Command{
		Use:   "bench [problem]",
		Short: "benchmark continuation on a problem",
		Args:  cobra.ExactArgs(1),
		RunE:  benchProblem,
	}
	benchCmd.Flags().IntVar(&maxSteps, "steps", 500, "maximum accepted steps")
	benchCmd.Flags().IntVar(&size, "size", 0, "problem size (0 = problem default)")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "branch structure analysis",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	liveCmd := &cobra.Command{
		Use:   "live [problem]",
		Short: "trace a branch with live visualization",
		Args:  cobra.ExactArgs(1),
		RunE:  runLive,
	}
	liveCmd.Flags().StringVar(&mode, "mode", "arclength", "continuation mode (natural, arclength)")
	liveCmd.Flags().Float64Var(&step0, "step", 0.05, "initial step size, sign sets direction")
	liveCmd.Flags().Float64Var(&stepMin, "step-min", 1e-8, "minimum step size")
	liveCmd.Flags().Float64Var(&stepMax, "step-max", 1.0, "maximum step size")
	liveCmd.Flags().Float64Var(&growFactor, "grow", 1.5, "step growth after easy convergence")
	liveCmd.Flags().Float64Var(&shrinkFactor, "shrink", 0.5, "step reduction after a failed correction")
	liveCmd.Flags().IntVar(&targetIts, "target-its", 3, "newton iterations considered easy")
	liveCmd.Flags().IntVar(&maxSteps, "steps", 500, "maximum accepted steps")
	liveCmd.Flags().Float64Var(&tolerance, "tol", 1e-10, "newton residual tolerance")
	liveCmd.Flags().IntVar(&newtonIts, "newton-its", 10, "newton iterations per correction")
	liveCmd.Flags().Float64Var(&lambdaMin, "lambda-min", math.Inf(-1), "lower lambda bound")
	liveCmd.Flags().Float64Var(&lambdaMax, "lambda-max", math.Inf(1), "upper lambda bound")
	liveCmd.Flags().Float64Var(&theta, "theta", 1.0, "state weight in the arclength metric")
	liveCmd.Flags().IntVar(&size, "size", 0, "problem size (0 = problem default)")
	liveCmd.Flags().BoolVar(&detectFolds, "folds", true, "detect fold points")
	liveCmd.Flags().BoolVar(&refineFolds, "refine", false, "refine folds by bisection")
	liveCmd.Flags().Float64Var(&foldTol, "fold-tol", 1e-6, "fold refinement tolerance")
	liveCmd.Flags().StringArrayVar(&paramFlags, "param", nil, "problem parameter (name=value)")
	liveCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")

	phaseCmd := &cobra.Command{
		Use:   "phase [run_id]",
		Short: "state-space projection of a branch",
		Args:  cobra.ExactArgs(1),
		RunE:  phasePlot,
	}
	phaseCmd.Flags().IntVar(&xAxis, "x-axis", 0, "state component for x-axis")
	phaseCmd.Flags().IntVar(&yAxis, "y-axis", 1, "state component for y-axis")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export branch points to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	compareCmd := &cobra.Command{
		Use:   "compare [problem] [mode1] [mode2] ...",
		Short: "compare continuation modes on the same problem",
		Args:  cobra.MinimumNArgs(2),
		RunE:  compareModes,
	}
	compareCmd.Flags().Float64Var(&step0, "step", 0.05, "initial step size, sign sets direction")
	compareCmd.Flags().IntVar(&maxSteps, "steps", 500, "maximum accepted steps")
	compareCmd.Flags().Float64Var(&lambdaMin, "lambda-min", math.Inf(-1), "lower lambda bound")
	compareCmd.Flags().Float64Var(&lambdaMax, "lambda-max", math.Inf(1), "upper lambda bound")
	compareCmd.Flags().IntVar(&size, "size", 0, "problem size (0 = problem default)")

	presetsCmd := &cobra.Command{
		Use:   "presets [problem]",
		Short: "list available presets for a problem",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			presets := config.ListPresets(args[0])
			if len(presets) == 0 {
				fmt.Printf("no presets for problem: %s\n", args[0])
				return nil
			}
			fmt.Printf("presets for %s:\n", args[0])
			for _, p := range presets {
				fmt.Printf("  %s\n", p)
			}
			return nil
		},
	}

	problemsCmd := &cobra.Command{
		Use:   "problems",
		Short: "list available problems",
		RunE: func(cmd *cobra.Command, args []string) error {
			registry := experiment.NewRegistry()
			for _, name := range registry.ListProblems() {
				fmt.Println(name)
			}
			return nil
		},
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export branch data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "export the bifurcation diagram to SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().IntVar(&component, "component", 0, "state component on the vertical axis")
	exportSVGCmd.Flags().IntVar(&svgWidth, "width", 640, "image width")
	exportSVGCmd.Flags().IntVar(&svgHeight, "height", 480, "image height")
	exportSVGCmd.Flags().StringVar(&svgOut, "out", "", "output file (default stdout)")

	rootCmd.AddCommand(traceCmd, listCmd, plotCmd, exportCmd, benchCmd, analyzeCmd, liveCmd, phaseCmd, exportCSVCmd, compareCmd, presetsCmd, problemsCmd, exportJSONCmd, exportSVGCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runTrace(cmd *cobra.Command, args []string) error {
	problem := args[0]

	// Load preset if specified
	if preset != "" {
		if err := applyPreset(problem); err != nil {
			return err
		}
	}

	// Load config file if specified (overrides preset, CLI flags win)
	if configFile != "" {
		fileCfg, err := config.Load(configFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if !cmd.Flags().Changed("mode") {
			mode = fileCfg.Mode
		}
		if !cmd.Flags().Changed("size") {
			size = fileCfg.Size
		}
		if !cmd.Flags().Changed("steps") {
			maxSteps = fileCfg.MaxSteps
		}
		if !cmd.Flags().Changed("theta") {
			theta = fileCfg.Theta
		}
		if !cmd.Flags().Changed("step") {
			step0 = fileCfg.Step.Initial
		}
		if !cmd.Flags().Changed("step-min") {
			stepMin = fileCfg.Step.Min
		}
		if !cmd.Flags().Changed("step-max") {
			stepMax = fileCfg.Step.Max
		}
		if !cmd.Flags().Changed("grow") {
			growFactor = fileCfg.Step.Grow
		}
		if !cmd.Flags().Changed("shrink") {
			shrinkFactor = fileCfg.Step.Shrink
		}
		if !cmd.Flags().Changed("target-its") {
			targetIts = fileCfg.Step.TargetIterations
		}
		if !cmd.Flags().Changed("tol") {
			tolerance = fileCfg.Newton.Tolerance
		}
		if !cmd.Flags().Changed("newton-its") {
			newtonIts = fileCfg.Newton.MaxIterations
		}
		if !cmd.Flags().Changed("lambda-min") {
			lambdaMin = fileCfg.Lambda.Min
		}
		if !cmd.Flags().Changed("lambda-max") {
			lambdaMax = fileCfg.Lambda.Max
		}
		if !cmd.Flags().Changed("folds") {
			detectFolds = fileCfg.Folds.Detect
		}
		if !cmd.Flags().Changed("refine") {
			refineFolds = fileCfg.Folds.Refine
		}
		if !cmd.Flags().Changed("fold-tol") {
			foldTol = fileCfg.Folds.Tolerance
		}
		if len(fileCfg.Params) > 0 {
			presetParams = fileCfg.Params
		}
	}

	params, err := mergedParams()
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	registry := experiment.NewRegistry()

	expCfg := experiment.Config{
		Problem: problem,
		Size:    size,
		Params:  params,
		Branch:  branchConfig(),
	}

	if fromRun != "" {
		pts, err := st.LoadBranch(fromRun)
		if err != nil {
			return err
		}
		if len(pts) == 0 {
			return fmt.Errorf("run %s has no stored points", fromRun)
		}
		last := pts[len(pts)-1]
		expCfg.U0 = last.U
		expCfg.Lambda0 = last.Lambda
	}
	if u0Flag != "" {
		u0, err := parseState(u0Flag)
		if err != nil {
			return err
		}
		expCfg.U0 = u0
		expCfg.Lambda0 = lambda0
	}

	var log *slog.Logger
	if verbose {
		log = slog.New(tint.NewHandler(os.Stderr, &tint.Options{
			Level:      slog.LevelDebug,
			TimeFormat: "15:04:05",
		}))
	}

	exp := experiment.New(expCfg, log)
	if err := exp.Setup(registry); err != nil {
		return err
	}

	fmt.Printf("tracing %s branch...\n", problem)
	start := time.Now()

	result, runErr := exp.Run(context.Background())
	if result == nil {
		return runErr
	}

	elapsed := time.Since(start)

	runID, err := st.Save(problem, mode, step0, params, result)
	if err != nil {
		return err
	}

	fmt.Printf("finished in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("status: %s\n", result.Status)
	fmt.Printf("steps: %d accepted, %d rejected\n", result.Steps, result.Rejects)
	fmt.Printf("lambda: %.6g -> %.6g\n", result.Points[0].Lambda, result.Last().Lambda)

	if len(result.Folds) > 0 {
		fmt.Println("\nfolds:")
		for _, ev := range result.Folds {
			fmt.Printf("  lambda = %.8g (%s)\n", ev.Lambda, foldKind(ev.Refined))
		}
	}

	fmt.Println("\nmetrics:")
	for name, val := range result.Metrics {
		fmt.Printf("  %s: %.6f\n", name, val)
	}

	if runErr != nil {
		fmt.Printf("\ntrace ended early: %v\n", runErr)
	}

	return nil
}

// applyPreset overwrites the continuation settings with the named preset;
// a config file and explicit flags can still override individual values.
func applyPreset(problem string) error {
	cfg := config.GetPreset(problem, preset)
	if cfg == nil {
		return fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(problem))
	}
	mode = cfg.Mode
	size = cfg.Size
	maxSteps = cfg.MaxSteps
	theta = cfg.Theta
	step0 = cfg.Step.Initial
	stepMin = cfg.Step.Min
	stepMax = cfg.Step.Max
	growFactor = cfg.Step.Grow
	shrinkFactor = cfg.Step.Shrink
	targetIts = cfg.Step.TargetIterations
	tolerance = cfg.Newton.Tolerance
	newtonIts = cfg.Newton.MaxIterations
	lambdaMin = cfg.Lambda.Min
	lambdaMax = cfg.Lambda.Max
	detectFolds = cfg.Folds.Detect
	refineFolds = cfg.Folds.Refine
	foldTol = cfg.Folds.Tolerance
	presetParams = cfg.Params
	return nil
}

func branchConfig() branch.Config {
	return branch.Config{
		Mode:             branch.Mode(mode),
		MaxSteps:         maxSteps,
		Step0:            step0,
		StepMin:          stepMin,
		StepMax:          stepMax,
		GrowFactor:       growFactor,
		ShrinkFactor:     shrinkFactor,
		TargetIterations: targetIts,
		Tolerance:        tolerance,
		MaxIterations:    newtonIts,
		LambdaMin:        lambdaMin,
		LambdaMax:        lambdaMax,
		Theta:            theta,
		DetectFolds:      detectFolds,
		RefineFolds:      refineFolds,
		FoldTolerance:    foldTol,
		ValidateState:    true,
	}
}

// mergedParams resolves problem parameters, preset values first and
// explicit --param pairs on top.
func mergedParams() (map[string]float64, error) {
	params := presetParams
	if len(paramFlags) == 0 {
		return params, nil
	}
	overrides, err := parseParams(paramFlags)
	if err != nil {
		return nil, err
	}
	if params == nil {
		return overrides, nil
	}
	for k, v := range overrides {
		params[k] = v
	}
	return params, nil
}

func parseParams(pairs []string) (map[string]float64, error) {
	params := make(map[string]float64, len(pairs))
	for _, pair := range pairs {
		kv := strings.SplitN(pair, "=", 2)
		if len(kv) != 2 {
			return nil, fmt.Errorf("invalid parameter %q, want name=value", pair)
		}
		val, err := strconv.ParseFloat(kv[1], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid parameter %q: %w", pair, err)
		}
		params[kv[0]] = val
	}
	return params, nil
}

func parseState(s string) (branch.State, error) {
	fields := strings.Split(s, ",")
	u := make(branch.State, 0, len(fields))
	for _, f := range fields {
		val, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid state component %q: %w", f, err)
		}
		u = append(u, val)
	}
	return u, nil
}

func foldKind(refined bool) string {
	if refined {
		return "refined"
	}
	return "bracketed"
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
	fmt.Fprintln(w, "ID\tPROBLEM\tTIME\tMODE\tSTEP0\tSTEPS\tFOLDS\tSTATUS")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.3g\t%d\t%d\t%s\n",
			run.ID,
			run.Problem,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Mode,
			run.Step0,
			run.Steps,
			len(run.Folds),
			run.Status,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	points, err := st.LoadBranch(runID)
	if err != nil {
		return err
	}
	if len(points) == 0 {
		return fmt.Errorf("no data to plot")
	}

	dim := len(points[0].U)
	if component < 0 || component >= dim {
		return fmt.Errorf("component %d out of range for dimension %d", component, dim)
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("problem: %s (%s)\n", meta.Problem, meta.Mode)
	fmt.Printf("points: %d\n\n", len(points))

	// Bifurcation diagram, state component against the parameter.
	plot := viz.NewBranchPlot(80, 20, component)
	fmt.Println(plot.Render(points, foldMarkers(meta, points)))
	xmin, xmax, ymin, ymax := plot.Bounds()
	fmt.Printf("lambda: [%.4g, %.4g]   u[%d]: [%.4g, %.4g]\n\n", xmin, xmax, component, ymin, ymax)

	lambdas := make([]float64, len(points))
	values := make([]float64, len(points))
	for i, p := range points {
		lambdas[i] = p.Lambda
		values[i] = p.U[component]
	}

	graph := asciigraph.Plot(lambdas,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("lambda vs step"),
	)
	fmt.Println(graph)
	fmt.Println()

	graph = asciigraph.Plot(values,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption(fmt.Sprintf("u[%d] vs step", component)),
	)
	fmt.Println(graph)
	fmt.Println()

	if len(meta.Folds) > 0 {
		fmt.Println("folds:")
		for _, f := range meta.Folds {
			fmt.Printf("  lambda = %.8g (%s)\n", f.Lambda, foldKind(f.Refined))
		}
	}

	return nil
}

// foldMarkers rebuilds plottable fold events from stored metadata. The
// stored record has no bracket points, so the nearest stored point stands
// in for both sides.
func foldMarkers(meta *storage.RunMetadata, points []branch.Point) []branch.FoldEvent {
	if len(meta.Folds) == 0 || len(points) == 0 {
		return nil
	}
	events := make([]branch.FoldEvent, 0, len(meta.Folds))
	for _, f := range meta.Folds {
		nearest := points[0]
		for _, p := range points[1:] {
			if math.Abs(p.Lambda-f.Lambda) < math.Abs(nearest.Lambda-f.Lambda) {
				nearest = p
			}
		}
		events = append(events, branch.FoldEvent{
			Before:  nearest,
			After:   nearest,
			Lambda:  f.Lambda,
			Refined: f.Refined,
		})
	}
	return events
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

func benchProblem(cmd *cobra.Command, args []string) error {
	problem := args[0]

	registry := experiment.NewRegistry()

	steps := []float64{0.01, 0.05, 0.1}
	tols := []float64{1e-8, 1e-10, 1e-12}

	fmt.Printf("benchmarking %s\n\n", problem)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tTOL\tACCEPTED\tREJECTED\tTIME\tSTEPS/SEC")

	for _, h := range steps {
		for _, tol := range tols {
			p, err := registry.GetProblem(problem, size)
			if err != nil {
				return err
			}
			starter, ok := p.(branch.Starter)
			if !ok {
				return fmt.Errorf("problem %s needs an explicit starting point", problem)
			}
			u0, lam0 := starter.Start()

			bcfg := branch.DefaultConfig()
			bcfg.Step0 = h
			bcfg.Tolerance = tol
			bcfg.MaxSteps = maxSteps
			bcfg.DetectFolds = false

			tr := tracer.New(p)

			start := time.Now()
			result, err := tr.Trace(context.Background(), u0, lam0, bcfg)
			if result == nil {
				return err
			}
			elapsed := time.Since(start)

			stepsPerSec := float64(result.Steps) / elapsed.Seconds()
			fmt.Fprintf(w, "%.3g\t%.0e\t%d\t%d\t%v\t%.0f\n",
				h, tol, result.Steps, result.Rejects, elapsed, stepsPerSec)
		}
	}

	return w.Flush()
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	points, err := st.LoadBranch(runID)
	if err != nil {
		return err
	}
	if len(points) < 2 {
		return fmt.Errorf("no data")
	}

	fmt.Printf("branch analysis: %s\n", meta.ID)
	fmt.Printf("problem: %s (%s)\n\n", meta.Problem, meta.Mode)

	// Monotonic lambda segments; every boundary between them is a turning
	// point the trace walked around.
	type segment struct{ from, to int }
	segs := []segment{{from: 0}}
	rising := points[1].Lambda >= points[0].Lambda
	for i := 2; i < len(points); i++ {
		r := points[i].Lambda >= points[i-1].Lambda
		if r != rising {
			segs[len(segs)-1].to = i - 1
			segs = append(segs, segment{from: i - 1})
			rising = r
		}
	}
	segs[len(segs)-1].to = len(points) - 1

	fmt.Println("monotonic segments:")
	for i, sg := range segs {
		a, b := points[sg.from], points[sg.to]
		dir := "ascending"
		if b.Lambda < a.Lambda {
			dir = "descending"
		}
		fmt.Printf("  %d: lambda %.6g -> %.6g  (%d points, %s)\n",
			i, a.Lambda, b.Lambda, sg.to-sg.from+1, dir)
	}

	minStep, maxStep, sum := math.Inf(1), 0.0, 0.0
	for i := 1; i < len(points); i++ {
		h := points[i].S - points[i-1].S
		if h < minStep {
			minStep = h
		}
		if h > maxStep {
			maxStep = h
		}
		sum += h
	}
	n := len(points) - 1
	fmt.Printf("\nstep size: min %.3g, mean %.3g, max %.3g\n", minStep, sum/float64(n), maxStep)
	fmt.Printf("arc length: %.6g\n", points[len(points)-1].S)

	if len(meta.Folds) > 0 {
		fmt.Println("\nfolds:")
		for _, f := range meta.Folds {
			fmt.Printf("  lambda = %.8g (%s)\n", f.Lambda, foldKind(f.Refined))
		}
	}

	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	problem := args[0]

	if preset != "" {
		if err := applyPreset(problem); err != nil {
			return err
		}
	}

	params, err := mergedParams()
	if err != nil {
		return err
	}

	registry := experiment.NewRegistry()
	p, err := registry.GetProblem(problem, size)
	if err != nil {
		return err
	}
	if len(params) > 0 {
		c, ok := p.(branch.Configurable)
		if !ok {
			return fmt.Errorf("problem %s has no tunable parameters", problem)
		}
		for name, value := range params {
			if err := c.SetParam(name, value); err != nil {
				return err
			}
		}
	}

	starter, ok := p.(branch.Starter)
	if !ok {
		return fmt.Errorf("problem %s needs an explicit starting point", problem)
	}
	u0, lam0 := starter.Start()

	bcfg := branchConfig()
	tr := tracer.New(p)

	s, err := tr.Session(u0, lam0, bcfg)
	if err != nil {
		return err
	}

	// Initialize TUI Model
	m := viz.NewModel(s, p, bcfg)
	m.SetSnapshot(func(cv *viz.Canvas) error {
		name := fmt.Sprintf("pacopy_%s_%d.svg", problem, time.Now().Unix())
		return os.WriteFile(name, []byte(export.CanvasToSVG(cv, 4)), 0644)
	})
	m.SetRestart(func() (*tracer.Session, error) {
		return tr.Session(u0, lam0, bcfg)
	})

	// Run Bubble Tea Program
	prog := tea.NewProgram(m)
	if _, err := prog.Run(); err != nil {
		return err
	}
	return nil
}

func phasePlot(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	points, err := st.LoadBranch(runID)
	if err != nil {
		return err
	}
	if len(points) == 0 {
		return fmt.Errorf("no data to plot")
	}

	dim := len(points[0].U)
	if dim <= xAxis || dim <= yAxis {
		return fmt.Errorf("state dimension too small for selected axes")
	}

	fmt.Printf("state-space projection: %s\n", meta.ID)
	fmt.Printf("problem: %s\n", meta.Problem)
	fmt.Printf("x-axis: u%d, y-axis: u%d\n\n", xAxis, yAxis)

	// Extract data for the projection
	xData := make([]float64, len(points))
	yData := make([]float64, len(points))
	for i := range points {
		xData[i] = points[i].U[xAxis]
		yData[i] = points[i].U[yAxis]
	}

	// Find bounds
	xMin, xMax := xData[0], xData[0]
	yMin, yMax := yData[0], yData[0]
	for i := range xData {
		if xData[i] < xMin {
			xMin = xData[i]
		}
		if xData[i] > xMax {
			xMax = xData[i]
		}
		if yData[i] < yMin {
			yMin = yData[i]
		}
		if yData[i] > yMax {
			yMax = yData[i]
		}
	}

	xRange := xMax - xMin
	yRange := yMax - yMin
	if xRange == 0 {
		xRange = 1
	}
	if yRange == 0 {
		yRange = 1
	}

	// Create ASCII scatter plot
	width := 70
	height := 20
	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = make([]rune, width)
		for j := range canvas[i] {
			canvas[i][j] = ' '
		}
	}

	// Plot points, marker follows progress along the branch
	for i := range xData {
		px := int(float64(width-1) * (xData[i] - xMin) / xRange)
		py := int(float64(height-1) * (yData[i] - yMin) / yRange)
		py = height - 1 - py // Flip y-axis
		if px >= 0 && px < width && py >= 0 && py < height {
			if i < len(xData)/3 {
				canvas[py][px] = '.'
			} else if i < 2*len(xData)/3 {
				canvas[py][px] = 'o'
			} else {
				canvas[py][px] = '●'
			}
		}
	}

	// Draw frame
	fmt.Printf("  %.2f ┌", yMax)
	for i := 0; i < width; i++ {
		fmt.Print("─")
	}
	fmt.Println("┐")

	for i := range canvas {
		if i == height/2 {
			fmt.Printf("  %.2f │", (yMax+yMin)/2)
		} else {
			fmt.Print("       │")
		}
		fmt.Print(string(canvas[i]))
		fmt.Println("│")
	}

	fmt.Printf("  %.2f └", yMin)
	for i := 0; i < width; i++ {
		fmt.Print("─")
	}
	fmt.Println("┘")

	fmt.Printf("       %.2f", xMin)
	padding := width - 20
	for i := 0; i < padding; i++ {
		fmt.Print(" ")
	}
	fmt.Printf("%.2f\n", xMax)

	fmt.Printf("\nLegend: . = early, o = middle, ● = late\n")

	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	points, err := st.LoadBranch(runID)
	if err != nil {
		return err
	}

	if len(points) == 0 {
		return fmt.Errorf("no data to export")
	}

	return storage.WriteBranchCSV(os.Stdout, points)
}

func compareModes(cmd *cobra.Command, args []string) error {
	problem := args[0]
	modes := args[1:]

	registry := experiment.NewRegistry()

	fmt.Printf("comparing modes for %s (step=%g, max %d steps)\n\n", problem, step0, maxSteps)
	fmt.Printf("%-10s  %-12s  %-12s  %-7s  %-7s  %-5s  %s\n",
		"mode", "final_lambda", "arc_length", "steps", "rejects", "folds", "time")
	fmt.Println(strings.Repeat("-", 72))

	for _, name := range modes {
		p, err := registry.GetProblem(problem, size)
		if err != nil {
			return err
		}
		starter, ok := p.(branch.Starter)
		if !ok {
			return fmt.Errorf("problem %s needs an explicit starting point", problem)
		}
		u0, lam0 := starter.Start()

		bcfg := branchConfig()
		bcfg.Mode = branch.Mode(name)

		tr := tracer.New(p)

		start := time.Now()
		result, err := tr.Trace(context.Background(), u0, lam0, bcfg)
		elapsed := time.Since(start)

		if result == nil {
			fmt.Printf("%-10s  error: %v\n", name, err)
			continue
		}

		last := result.Last()
		fmt.Printf("%-10s  %12.6f  %12.6f  %7d  %7d  %5d  %v\n",
			name, last.Lambda, last.S, result.Steps, result.Rejects, len(result.Folds), elapsed)
	}

	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	points, err := st.LoadBranch(runID)
	if err != nil {
		return err
	}

	result := &branch.Result{
		Points:  points,
		Status:  branch.ParseStatus(meta.Status),
		Steps:   meta.Steps,
		Rejects: meta.Rejects,
		Metrics: meta.Metrics,
	}
	for _, f := range meta.Folds {
		result.Folds = append(result.Folds, branch.FoldEvent{Lambda: f.Lambda, Refined: f.Refined})
	}

	return storage.ExportJSON(os.Stdout, meta.Problem, meta.Mode, result)
}

func exportSVG(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	points, err := st.LoadBranch(runID)
	if err != nil {
		return err
	}
	if len(points) < 2 {
		return fmt.Errorf("not enough data to plot")
	}

	result := &branch.Result{
		Points: points,
		Folds:  foldMarkers(meta, points),
	}

	svg := export.BranchToSVG(result, component, svgWidth, svgHeight)
	if svgOut != "" {
		return os.WriteFile(svgOut, []byte(svg), 0644)
	}
	fmt.Println(svg)
	return nil
}
