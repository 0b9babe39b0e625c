package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/san-kum/optix/internal/analysis"
	"github.com/san-kum/optix/internal/beam"
	"github.com/san-kum/optix/internal/config"
	"github.com/san-kum/optix/internal/optics"
	"github.com/san-kum/optix/internal/optics/legacy"
	"github.com/san-kum/optix/internal/scan"
	"github.com/san-kum/optix/internal/storage"
	"github.com/san-kum/optix/internal/viz"
)

var (
	dataDir string
	verbose bool

	preset string
	gamma  float64

	save       bool
	ellipse    bool
	asJSON     bool
	trackTurns int

	param   string
	from    float64
	to      float64
	steps   int
	pngPath string
	svgPath string

	targetX    float64
	targetY    float64
	tuneMin    float64
	tuneMax    float64
	matchSteps int

	theme string
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "optix",
		Short:         "periodic beam optics lab",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := log.InfoLevel
			if verbose {
				level = log.DebugLevel
			}
			cmd.SetContext(withLogger(cmd.Context(), newLogger(os.Stderr, level)))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand opens the explorer on the preset menu.
			return viz.RunExplorer(optics.Default(), nil, theme)
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".optix", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [lattice-file]",
		Short: "analyze a lattice cell",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runAnalyze,
	}
	latticeFlags(analyzeCmd)
	analyzeCmd.Flags().BoolVar(&save, "save", false, "save the run")
	analyzeCmd.Flags().BoolVar(&ellipse, "ellipse", false, "draw the matched ellipses")
	analyzeCmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	analyzeCmd.Flags().IntVar(&trackTurns, "track", 0, "track a particle for n turns and estimate the tune by FFT")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "show a saved run",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export per-plane results as CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return storage.New(dataDir).ExportCSV(os.Stdout, args[0])
		},
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available lattice presets",
		RunE:  listPresets,
	}

	scanCmd := &cobra.Command{
		Use:   "scan [lattice-file]",
		Short: "sweep one lattice parameter",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runScan,
	}
	latticeFlags(scanCmd)
	scanCmd.Flags().StringVar(&param, "param", "tune-x", "parameter to sweep ("+strings.Join(scan.Params(), ", ")+")")
	scanCmd.Flags().Float64Var(&from, "from", 0.05, "first value")
	scanCmd.Flags().Float64Var(&to, "to", 0.45, "last value")
	scanCmd.Flags().IntVar(&steps, "steps", 41, "number of values")
	scanCmd.Flags().StringVar(&pngPath, "png", "", "write the chart as PNG")
	scanCmd.Flags().StringVar(&svgPath, "svg", "", "write the chart as SVG")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file.yaml]",
		Short: "analyze a batch of lattices",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	liveCmd := &cobra.Command{
		Use:   "live [lattice-file]",
		Short: "interactive lattice explorer",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	latticeFlags(liveCmd)
	liveCmd.Flags().StringVar(&theme, "theme", viz.Themes[0].Name, "color theme ("+strings.Join(viz.ThemeNames(), ", ")+")")

	legacyCmd := &cobra.Command{
		Use:   "legacy [lattice-file]",
		Short: "propagate initial Twiss parameters with the deprecated single-pass method",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLegacy,
	}
	latticeFlags(legacyCmd)

	matchCmd := &cobra.Command{
		Use:   "match [lattice-file]",
		Short: "grid search the transverse tunes closest to a target",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runMatch,
	}
	latticeFlags(matchCmd)
	matchCmd.Flags().Float64Var(&targetX, "target-x", 0.31, "target horizontal tune")
	matchCmd.Flags().Float64Var(&targetY, "target-y", 0.28, "target vertical tune")
	matchCmd.Flags().Float64Var(&tuneMin, "min", 0.05, "lowest tune tried")
	matchCmd.Flags().Float64Var(&tuneMax, "max", 0.45, "highest tune tried")
	matchCmd.Flags().IntVar(&matchSteps, "steps", 21, "grid points per plane")

	rootCmd.AddCommand(analyzeCmd, listCmd, showCmd, exportCmd, exportCSVCmd, presetsCmd, scanCmd, scenarioCmd, liveCmd, legacyCmd, matchCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

func latticeFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&preset, "preset", "", "use preset lattice")
	cmd.Flags().Float64Var(&gamma, "gamma", config.DefaultGamma, "relativistic gamma")
}

// loadLattice resolves the lattice from a file argument, --preset or the
// default, in that order. --gamma overrides the resolved value.
func loadLattice(cmd *cobra.Command, args []string) (*config.Config, error) {
	var cfg *config.Config
	switch {
	case len(args) > 0:
		var err error
		if cfg, err = config.Load(args[0]); err != nil {
			return nil, fmt.Errorf("failed to load lattice: %w", err)
		}
	case preset != "":
		if cfg = config.GetPreset(preset); cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	default:
		cfg = config.DefaultConfig()
	}

	if cmd.Flags().Changed("gamma") {
		cfg.Gamma = gamma
	}
	return cfg, nil
}

func newEngine(cmd *cobra.Command, cfg *config.Config) (*optics.Engine, error) {
	return optics.New(cfg.Thresholds, loggerFromContext(cmd.Context()))
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	logger := loggerFromContext(cmd.Context())

	cfg, err := loadLattice(cmd, args)
	if err != nil {
		return err
	}
	eng, err := newEngine(cmd, cfg)
	if err != nil {
		return err
	}
	cell, err := cfg.Cell()
	if err != nil {
		return err
	}

	prog := newProgress(logger)
	report, err := eng.Analyze(cell)
	if err != nil {
		return err
	}
	logger.Debug("analyzed", "name", cfg.Name, "gamma", cfg.Gamma)

	if asJSON {
		meta := storage.NewRunMetadata(report, cfg.Thresholds)
		if err := storage.ExportJSON(os.Stdout, &meta); err != nil {
			return err
		}
	} else {
		fmt.Println(viz.RenderReport(report))
	}

	if ellipse {
		var blocks []string
		for _, p := range []beam.Plane{beam.X, beam.Y} {
			portrait := analysis.TwissEllipse(p, report.Matched[p], 200)
			if portrait == nil {
				blocks = append(blocks, viz.Subtle.Render(p.String()+": no matched ellipse"))
				continue
			}
			blocks = append(blocks, viz.Title.Render(p.String()+" - "+p.String()+"'")+"\n"+analysis.PortraitToASCII(portrait, 40, 16))
		}
		fmt.Println(viz.SideBySide(blocks...))
	}

	if trackTurns > 0 {
		if err := printTracking(cell.Matrix, report); err != nil {
			return err
		}
	}

	if save {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		id, err := st.Save(report, cfg.Thresholds)
		if err != nil {
			return err
		}
		fmt.Printf("run id: %s\n", id)
	}

	prog.done("analysis complete")
	return nil
}

// printTracking compares the analytic tunes with the FFT of a particle
// tracked 1 mm off the closed orbit.
func printTracking(m beam.PhaseMatrix, r optics.Report) error {
	coords := r.FixedPoint.Coords()
	coords[beam.IndexX] += 1e-3
	coords[beam.IndexY] += 1e-3
	start := beam.NewPhaseVector(coords)

	fmt.Printf("\ntracking %d turns\n", trackTurns)
	for _, p := range []beam.Plane{beam.X, beam.Y} {
		portrait := analysis.Track(m, start, p, trackTurns)
		q, err := analysis.TuneFFT(portrait.Xs())
		if err != nil {
			return fmt.Errorf("plane %s: %w", p, err)
		}
		// The FFT folds tunes above 0.5.
		analytic := r.Tune[p]
		if analytic > 0.5 {
			analytic = 1 - analytic
		}
		fmt.Printf("  %s: fft %.4f  analytic %.4f  (%d turns kept)\n", p, q, analytic, len(portrait.Points))
	}
	return nil
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
	fmt.Fprintln(w, "ID\tNAME\tTIME\tGAMMA\tQX\tQY\tQZ")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%g\t%s\t%s\t%s\n",
			run.ID,
			run.Name,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Gamma,
			viz.Num(float64(run.Tune[0])),
			viz.Num(float64(run.Tune[1])),
			viz.Num(float64(run.Tune[2])),
		)
	}

	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	meta, err := storage.New(dataDir).Load(args[0])
	if err != nil {
		return err
	}
	fmt.Printf("run: %s (%s)\n", meta.ID, meta.Timestamp.Format("2006-01-02 15:04:05"))
	fmt.Println(viz.RenderReport(meta.Report()))
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	meta, err := storage.New(dataDir).Load(args[0])
	if err != nil {
		return err
	}
	return storage.ExportJSON(os.Stdout, meta)
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tGAMMA\tKIND")
	for _, name := range config.ListPresets() {
		cfg := config.GetPreset(name)
		kind := "lattice"
		if len(cfg.Matrix) > 0 {
			kind = "matrix"
		}
		fmt.Fprintf(w, "%s\t%g\t%s\n", name, cfg.Gamma, kind)
	}
	return w.Flush()
}

func runScan(cmd *cobra.Command, args []string) error {
	logger := loggerFromContext(cmd.Context())

	cfg, err := loadLattice(cmd, args)
	if err != nil {
		return err
	}
	eng, err := newEngine(cmd, cfg)
	if err != nil {
		return err
	}

	sweep := &scan.Sweep{Base: cfg, Param: param, From: from, To: to, Steps: steps}
	prog := newProgress(logger)
	points, err := scan.RunSweep(cmd.Context(), eng, sweep)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("swept %s over %d values", param, len(points)))

	_, qx := scan.Series(points, func(r optics.Report) float64 { return r.Tune[beam.X] })
	_, qy := scan.Series(points, func(r optics.Report) float64 { return r.Tune[beam.Y] })
	xs, bx := scan.Series(points, func(r optics.Report) float64 { return r.Matched[beam.X].Beta })
	_, eta := scan.Series(points, func(r optics.Report) float64 { return r.Dispersion[0] })

	fmt.Println(viz.SweepChart("tune x, y vs "+param, 70, 10, qx, qy))
	fmt.Println(viz.Separator(80))
	fmt.Println(viz.SweepChart("beta x vs "+param, 70, 10, bx))
	fmt.Println(viz.Separator(80))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tQX\tQY\tBETA_X\tETA_X\tSTABLE\n", strings.ToUpper(param))
	for i, pt := range points {
		fmt.Fprintf(w, "%.5g\t%s\t%s\t%s\t%s\t%v\n",
			xs[i], viz.Num(qx[i]), viz.Num(qy[i]), viz.Num(bx[i]), viz.Num(eta[i]), pt.Report.Stable)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	chart := analysis.Chart{
		Title:  cfg.Name + ": " + param + " scan",
		XLabel: param,
		YLabel: "tune",
		Series: []analysis.Series{
			{Name: "Qx", X: xs, Y: qx},
			{Name: "Qy", X: xs, Y: qy},
		},
	}
	for _, path := range []string{pngPath, svgPath} {
		if path == "" {
			continue
		}
		if err := analysis.SavePlot(path, chart); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		logger.Info("wrote chart", "path", path)
	}
	return nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	logger := loggerFromContext(cmd.Context())

	sc, err := scan.LoadScenario(args[0])
	if err != nil {
		return fmt.Errorf("failed to load scenario: %w", err)
	}

	prog := newProgress(logger)
	results, err := scan.RunScenario(cmd.Context(), logger, sc, filepath.Dir(args[0]))
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("scenario %s: %d lattices", sc.Name, len(results)))

	if sc.Description != "" {
		fmt.Println(viz.Subtle.Render(sc.Description))
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tGAMMA\tQX\tQY\tQZ\tBETA_X\tBETA_Y\tETA_X")
	for _, res := range results {
		r := res.Report
		fmt.Fprintf(w, "%s\t%g\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.Name, r.Gamma,
			viz.Num(r.Tune[0]), viz.Num(r.Tune[1]), viz.Num(r.Tune[2]),
			viz.Num(r.Matched[0].Beta), viz.Num(r.Matched[1].Beta),
			viz.Num(r.Dispersion[0]),
		)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	var st *storage.Store
	for i, step := range sc.Steps {
		if !step.Save {
			continue
		}
		if st == nil {
			st = storage.New(dataDir)
			if err := st.Init(); err != nil {
				return err
			}
		}
		id, err := st.Save(results[i].Report, results[i].Thresholds)
		if err != nil {
			return err
		}
		fmt.Printf("run id: %s\n", id)
	}
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	var cfg *config.Config
	if len(args) > 0 || preset != "" {
		var err error
		if cfg, err = loadLattice(cmd, args); err != nil {
			return err
		}
	}

	thresholds := optics.DefaultConfig()
	if cfg != nil {
		thresholds = cfg.Thresholds
	}
	// Fallback warnings would tear the alt screen.
	eng, err := optics.New(thresholds, nil)
	if err != nil {
		return err
	}
	return viz.RunExplorer(eng, cfg, theme)
}

func runLegacy(cmd *cobra.Command, args []string) error {
	cfg, err := loadLattice(cmd, args)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	m, err := cfg.PhaseMatrix()
	if err != nil {
		return err
	}
	in, err := cfg.TwissIn()
	if err != nil {
		return err
	}

	out := legacy.PropagateTwiss(m, in, cfg.EnergyGain)
	fmt.Println(viz.RenderLegacy(cfg.Name, in, out))

	if cfg.FinalTwiss != nil {
		fmt.Println(viz.Subtle.Render("configured final_twiss:"))
		for i, t := range cfg.FinalTwiss {
			fmt.Printf("  %d  %s\n", i, t)
		}
	}
	return nil
}

func runMatch(cmd *cobra.Command, args []string) error {
	logger := loggerFromContext(cmd.Context())

	cfg, err := loadLattice(cmd, args)
	if err != nil {
		return err
	}
	eng, err := newEngine(cmd, cfg)
	if err != nil {
		return err
	}

	grid := scan.Linspace(tuneMin, tuneMax, matchSteps)
	search := scan.NewGridSearch([]string{"tune-x", "tune-y"}, [][]float64{grid, grid})

	prog := newProgress(logger)
	best, score, err := search.Search(cmd.Context(), eng, cfg, scan.TuneDistance(targetX, targetY))
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("searched %d lattices", len(grid)*len(grid)))

	fmt.Printf("target:   qx=%.4f qy=%.4f\n", targetX, targetY)
	fmt.Printf("best:     tune-x=%.4f tune-y=%.4f\n", best["tune-x"], best["tune-y"])
	fmt.Printf("distance: %.3g\n", score)
	return nil
}
