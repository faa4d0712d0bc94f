package main

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/tiltsand/internal/experiment"
	"github.com/san-kum/tiltsand/internal/export"
	"github.com/san-kum/tiltsand/internal/storage"
	"github.com/san-kum/tiltsand/internal/viz"
)

var (
	plotMetrics []string
	outPath     string
	withFrame   bool
	series      string
	svgScale    float64
	themeName   string
	presetRef   string
)

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
	fmt.Fprintln(w, "ID\tPATTERN\tTIME\tDIM\tSEED\tTICKS\tMASS\tIMPULSES")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%.0f\t%d/%d\n",
			run.ID,
			run.Pattern,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Dim,
			run.Seed,
			run.Ticks,
			run.Metrics["mass"],
			run.Impulses, run.Impulses+run.OffGrid,
		)
	}

	return w.Flush()
}

// seriesOf extracts one named column of the tick record.
func seriesOf(ticks []experiment.TickStats, name string) ([]float64, error) {
	var pick func(experiment.TickStats) float64
	switch name {
	case "mass":
		pick = func(t experiment.TickStats) float64 { return float64(t.Mass) }
	case "moving":
		pick = func(t experiment.TickStats) float64 { return float64(t.Moving) }
	case "saturated":
		pick = func(t experiment.TickStats) float64 { return float64(t.Saturated) }
	case "peak":
		pick = func(t experiment.TickStats) float64 { return float64(t.Peak) }
	case "bias":
		pick = func(t experiment.TickStats) float64 { return float64(t.Bias) }
	default:
		return nil, fmt.Errorf("unknown series %q (mass, moving, saturated, peak, bias)", name)
	}
	out := make([]float64, len(ticks))
	for i, t := range ticks {
		out[i] = pick(t)
	}
	return out, nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	ticks, err := st.LoadTicks(runID)
	if err != nil {
		return err
	}
	if len(ticks) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("pattern: %s (%dx%d)\n", meta.Pattern, meta.Dim, meta.Dim)
	fmt.Printf("ticks: %d\n\n", len(ticks))

	for _, name := range plotMetrics {
		data, err := seriesOf(ticks, name)
		if err != nil {
			return err
		}
		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(name),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	data, err := st.Export(args[0], withFrame)
	if err != nil {
		return err
	}
	if outPath == "" {
		return storage.WriteJSON(os.Stdout, data)
	}
	if err := storage.ExportJSON(outPath, data); err != nil {
		return err
	}
	fmt.Printf("exported %d ticks to %s\n", len(data.Ticks), outPath)
	return nil
}

func exportSVG(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st := storage.New(dataDir)

	var svg string
	if series != "" {
		ticks, err := st.LoadTicks(runID)
		if err != nil {
			return err
		}
		data, err := seriesOf(ticks, series)
		if err != nil {
			return err
		}
		svg = export.SeriesToSVG(data, 800, 300, string(viz.GetTheme(themeName).Primary))
		if svg == "" {
			return fmt.Errorf("series %s has fewer than two points", series)
		}
	} else {
		meta, err := st.Load(runID)
		if err != nil {
			return err
		}
		frame, err := st.LoadFrame(runID)
		if err != nil {
			return err
		}
		if svg, err = export.FrameToSVG(frame, meta.Dim, svgScale, viz.GetTheme(themeName)); err != nil {
			return err
		}
	}

	path := outPath
	if path == "" {
		path = runID + ".svg"
	}
	if err := os.WriteFile(path, []byte(svg), 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
