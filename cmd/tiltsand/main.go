package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/san-kum/tiltsand/internal/config"
	"github.com/san-kum/tiltsand/internal/experiment"
	"github.com/san-kum/tiltsand/internal/storage"
	"github.com/san-kum/tiltsand/internal/tui"
	"github.com/san-kum/tiltsand/internal/viz"
)

var (
	dataDir    string
	logLevel   string
	logFile    string
	configFile string
	dim        int
	seed       int64
	ticks      int
	workers    int
	pattern    string
	numRuns    int
	parallel   int
	watch      bool
	noSave     bool
	frameRate  int
	benchTicks int
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "tiltsand",
		Short:        "falling sand on a tiltable board",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(logLevel, os.Stderr)
			if err != nil {
				return err
			}
			slog.SetDefault(logger)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, closeLog, err := tuiLogger()
			if err != nil {
				return err
			}
			defer closeLog()
			return viz.RunInteractive(logger)
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".tiltsand", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "log file for the interactive views")

	runCmd := &cobra.Command{
		Use:   "run [pattern/preset]",
		Short: "run a scenario and store the result",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runScenario,
	}
	addScenarioFlags(runCmd)
	runCmd.Flags().IntVar(&numRuns, "runs", 1, "number of runs with consecutive seeds")
	runCmd.Flags().IntVar(&parallel, "parallel", 4, "runs executed at once")
	runCmd.Flags().BoolVar(&watch, "watch", false, "draw the grid while running")
	runCmd.Flags().IntVar(&frameRate, "fps", config.DefaultFPS, "watch frame rate")
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")

	liveCmd := &cobra.Command{
		Use:   "live [pattern/preset]",
		Short: "run a scenario in the interactive viewer",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	addScenarioFlags(liveCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot per-tick statistics of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringSliceVar(&plotMetrics, "metric", []string{"mass", "moving", "saturated"}, "series to plot")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a run as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")
	exportCmd.Flags().BoolVar(&withFrame, "frame", false, "include the final frame")

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "render the final frame or a tick series as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default <run_id>.svg)")
	exportSVGCmd.Flags().StringVar(&series, "series", "", "plot this tick series instead of the frame")
	exportSVGCmd.Flags().Float64Var(&svgScale, "scale", 4, "pixels per cell")
	exportSVGCmd.Flags().StringVar(&themeName, "theme", viz.ThemeDesert.Name, "colour theme ("+strings.Join(viz.ThemeNames(), ", ")+")")

	presetsCmd := &cobra.Command{
		Use:   "presets [pattern]",
		Short: "list available presets",
		Args:  cobra.MaximumNArgs(1),
		RunE:  listPresets,
	}

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "measure tick throughput across grid sizes and worker counts",
		RunE:  bench,
	}
	benchCmd.Flags().IntVar(&benchTicks, "ticks", 200, "ticks per measurement")

	initConfigCmd := &cobra.Command{
		Use:   "init-config [path]",
		Short: "write a configuration file",
		Args:  cobra.ExactArgs(1),
		RunE:  initConfig,
	}
	initConfigCmd.Flags().StringVar(&presetRef, "preset", "", "start from a preset (pattern/name)")

	rootCmd.AddCommand(runCmd, liveCmd, listCmd, plotCmd, exportCmd, exportSVGCmd, presetsCmd, benchCmd, initConfigCmd,
		newScriptCmd(), newSweepCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addScenarioFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().IntVar(&dim, "dim", 0, "grid side")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed")
	cmd.Flags().IntVar(&ticks, "ticks", 0, "ticks to run")
	cmd.Flags().IntVar(&workers, "workers", 0, "worker threads (0 = all cores)")
	cmd.Flags().StringVar(&pattern, "pattern", "", "seed pattern")
}

func newLogger(level string, w io.Writer) (*slog.Logger, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("log level %q: %w", level, err)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: l})), nil
}

// tuiLogger keeps log lines off the alternate screen: they go to --log-file
// when set and are dropped otherwise.
func tuiLogger() (*slog.Logger, func(), error) {
	if logFile == "" {
		return slog.New(slog.NewTextHandler(io.Discard, nil)), func() {}, nil
	}
	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, nil, err
	}
	logger, err := newLogger(logLevel, f)
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	return logger, func() { f.Close() }, nil
}

// loadConfig layers defaults, the preset, the config file and changed flags,
// in that order.
func loadConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if len(args) > 0 {
		p, err := config.LookupPreset(args[0])
		if err != nil {
			return nil, err
		}
		cfg = p
	}
	if configFile != "" {
		c, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = c
	}

	flags := cmd.Flags()
	if flags.Changed("dim") {
		cfg.Dim = dim
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("ticks") {
		cfg.Ticks = ticks
	}
	if flags.Changed("workers") {
		cfg.Workers = workers
	}
	if flags.Changed("pattern") {
		cfg.Pattern = pattern
	}
	return cfg, cfg.Validate()
}

func runScenario(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if numRuns > 1 {
		return runEnsemble(ctx, cfg)
	}

	var opts []experiment.Option
	if watch {
		w := tui.NewWatcher(os.Stdout, frameRate, 120)
		w.Start()
		defer w.Stop()
		opts = append(opts, experiment.WithObserver(w))
	}

	exp, err := experiment.New(cfg, opts...)
	if err != nil {
		return err
	}
	defer exp.Close()

	fmt.Printf("running %s on a %dx%d grid for %d ticks...\n", cfg.Pattern, cfg.Dim, cfg.Dim, cfg.Ticks)
	result, err := exp.Run(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", result.Elapsed)
	if !noSave {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.Save(cfg, result)
		if err != nil {
			return err
		}
		fmt.Printf("run id: %s\n", runID)
	}
	fmt.Printf("ticks: %d  impulses: %d  off-grid: %d\n", len(result.Ticks), result.Impulses, result.OffGrid)
	printMetrics(result.Metrics)
	return nil
}

func runEnsemble(ctx context.Context, cfg *config.Config) error {
	ens := experiment.NewEnsemble(cfg, numRuns, cfg.Seed)
	ens.SetParallel(parallel)

	fmt.Printf("running %d copies of %s...\n", numRuns, cfg.Pattern)
	start := time.Now()
	results, err := ens.Run(ctx)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if !noSave {
		if err := st.Init(); err != nil {
			return err
		}
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SEED\tRUN\tMASS\tDRIFT\tFLOW\tSATURATED\tELAPSED")
	for i, res := range results {
		member := cfg.Clone()
		member.Seed = cfg.Seed + int64(i)
		runID := "-"
		if !noSave {
			if runID, err = st.Save(member, res); err != nil {
				return err
			}
		}
		fmt.Fprintf(w, "%d\t%s\t%.0f\t%.0f\t%.0f\t%.0f\t%v\n",
			member.Seed, runID,
			res.Metrics["mass"], res.Metrics["mass_drift"], res.Metrics["flow"], res.Metrics["saturated"],
			res.Elapsed.Round(time.Millisecond))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("\ncompleted in %v\n", time.Since(start))
	return nil
}

func printMetrics(m map[string]float64) {
	fmt.Println("\nmetrics:")
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, name := range sortedKeys(m) {
		fmt.Fprintf(w, "  %s\t%.2f\n", name, m[name])
	}
	w.Flush()
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	logger, closeLog, err := tuiLogger()
	if err != nil {
		return err
	}
	defer closeLog()

	m, err := viz.NewModel(cfg, viz.WithLogger(logger))
	if err != nil {
		return err
	}
	defer m.Close()

	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err = p.Run()
	return err
}

func listPresets(cmd *cobra.Command, args []string) error {
	patterns := config.PresetPatterns()
	if len(args) > 0 {
		patterns = args
	}
	for _, p := range patterns {
		presets := config.ListPresets(p)
		if len(presets) == 0 {
			fmt.Printf("no presets for pattern: %s\n", p)
			continue
		}
		fmt.Printf("presets for %s:\n", p)
		for _, name := range presets {
			fmt.Printf("  %s/%s\n", p, name)
		}
	}
	return nil
}

func bench(cmd *cobra.Command, args []string) error {
	dims := []int{64, 128, 256, 512}
	workerCounts := []int{1, 2, 4, 0}

	fmt.Printf("benchmarking %d ticks per run\n\n", benchTicks)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DIM\tWORKERS\tTICKS\tTIME\tTICKS/SEC\tCELLS/SEC")

	for _, d := range dims {
		for _, n := range workerCounts {
			cfg := config.DefaultConfig()
			cfg.Dim = d
			cfg.Workers = n
			cfg.Ticks = benchTicks
			cfg.Pattern = "random"
			cfg.Seed = 42

			exp, err := experiment.New(cfg, experiment.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
			if err != nil {
				return err
			}
			result, err := exp.Run(cmd.Context())
			exp.Close()
			if err != nil {
				return err
			}

			secs := result.Elapsed.Seconds()
			label := fmt.Sprintf("%d", n)
			if n == 0 {
				label = "all"
			}
			fmt.Fprintf(w, "%d\t%s\t%d\t%v\t%.0f\t%.3g\n",
				d, label, len(result.Ticks), result.Elapsed.Round(time.Microsecond),
				float64(len(result.Ticks))/secs, float64(len(result.Ticks)*d*d)/secs)
		}
	}
	return w.Flush()
}

func initConfig(cmd *cobra.Command, args []string) error {
	cfg := config.DefaultConfig()
	if presetRef != "" {
		p, err := config.LookupPreset(presetRef)
		if err != nil {
			return err
		}
		cfg = p
	}
	if err := config.Save(args[0], cfg); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", args[0])
	return nil
}
