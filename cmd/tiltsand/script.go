package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/tiltsand/internal/automation"
	"github.com/san-kum/tiltsand/internal/storage"
)

var (
	sweepAxis  []float64
	sweepMin   float64
	sweepMax   float64
	sweepSteps int
)

func newScriptCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "script [scenario.yaml]",
		Short: "run a scripted sequence of scenarios",
		Args:  cobra.ExactArgs(1),
		RunE:  runScript,
	}
}

func newSweepCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep [pattern/preset]",
		Short: "run a scenario across a range of tilt angles",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSweep,
	}
	addScenarioFlags(cmd)
	cmd.Flags().Float64SliceVar(&sweepAxis, "axis", []float64{0, 0, 1}, "rotation axis x,y,z")
	cmd.Flags().Float64Var(&sweepMin, "min", -1.5, "first angle (radians)")
	cmd.Flags().Float64Var(&sweepMax, "max", 1.5, "last angle (radians)")
	cmd.Flags().IntVar(&sweepSteps, "steps", 7, "number of angles")
	return cmd
}

func runScript(cmd *cobra.Command, args []string) error {
	scenario, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("scenario %s: %d steps\n", scenario.Name, len(scenario.Steps))
	results, runErr := automation.RunScenario(ctx, scenario, slog.Default())

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tNAME\tRUN\tMASS\tFLOW\tELAPSED")
	for i, r := range results {
		runID, err := st.Save(r.Config, r.Result)
		if err != nil {
			return err
		}
		name := r.Step.SaveAs
		if name == "" {
			name = r.Step.Preset
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%.0f\t%.2f\t%v\n",
			i+1, name, runID, r.Result.Metrics["mass"], r.Result.Metrics["flow"], r.Result.Elapsed)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return runErr
}

func runSweep(cmd *cobra.Command, args []string) error {
	base, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	if len(sweepAxis) != 3 {
		return fmt.Errorf("axis needs three components, got %d", len(sweepAxis))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	results, err := automation.RunSweep(ctx, &automation.TiltSweep{
		Base:     base,
		Axis:     [3]float64{sweepAxis[0], sweepAxis[1], sweepAxis[2]},
		AngleMin: sweepMin,
		AngleMax: sweepMax,
		NumSteps: sweepSteps,
	}, slog.Default())
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ANGLE\tMASS\tFLOW\tSATURATED\tPEAK")
	for _, r := range results {
		fmt.Fprintf(w, "%+.3f\t%.0f\t%.2f\t%.0f\t%.0f\n", r.Angle, r.Mass, r.Flow, r.Saturated, r.Peak)
	}
	return w.Flush()
}
