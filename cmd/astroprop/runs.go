package main

import (
	"fmt"
	"math"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/astroprop/internal/bodies"
	"github.com/san-kum/astroprop/internal/config"
	"github.com/san-kum/astroprop/internal/dynamo"
	"github.com/san-kum/astroprop/internal/storage"
)

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tGRAVITY\tSPACECRAFT\tDURATION\tTRANSFERS")
	for _, name := range config.ListPresets() {
		cfg := config.GetPreset(name)
		transfers := 0
		for _, sc := range cfg.Spacecraft {
			if sc.Transfer != nil {
				transfers++
			}
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%.0fs\t%d\n", name, cfg.Gravity, len(cfg.Spacecraft), cfg.Duration, transfers)
	}
	return w.Flush()
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir(), nil)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSCENARIO\tTIME\tDURATION\tSPACECRAFT\tEVENTS")

	for _, run := range runs {
		name, dur := "-", 0.0
		if run.Scenario != nil {
			name, dur = run.Scenario.Name, run.Scenario.Duration
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%.0fs\t%d\t%d\n",
			run.ID,
			name,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			dur,
			len(run.Spacecraft),
			len(run.Events),
		)
	}

	return w.Flush()
}

// quantities maps plot variable names to extractors over a sample.
var quantities = map[string]func(dynamo.Sample) float64{
	"radius": func(s dynamo.Sample) float64 { return s.State.Block(0, 3).Norm() },
	"speed":  func(s dynamo.Sample) float64 { return s.State.Block(3, 3).Norm() },
	"x":      func(s dynamo.Sample) float64 { return s.State[0] },
	"y":      func(s dynamo.Sample) float64 { return s.State[1] },
	"z":      func(s dynamo.Sample) float64 { return s.State[2] },
	"vx":     func(s dynamo.Sample) float64 { return s.State[3] },
	"vy":     func(s dynamo.Sample) float64 { return s.State[4] },
	"vz":     func(s dynamo.Sample) float64 { return s.State[5] },
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	extract, ok := quantities[plotVar]
	if !ok {
		return fmt.Errorf("unknown plot variable: %s", plotVar)
	}

	st := storage.New(dataDir(), nil)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	samples, err := st.LoadStates(runID)
	if err != nil {
		return err
	}
	if len(samples) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Println(titleStyle.Render("run: " + meta.ID))
	for _, ev := range meta.Events {
		fmt.Println(dimStyle.Render(fmt.Sprintf("  %s %s at t=%.3f", ev.Spacecraft, ev.Detector, ev.Time)))
	}
	fmt.Println()

	ids := make([]string, 0, len(samples))
	for id := range samples {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		ss := samples[id]
		data := make([]float64, len(ss))
		for i, s := range ss {
			data[i] = extract(s)
		}
		if plotVar == "radius" {
			for i := range data {
				data[i] /= 1000
			}
		}

		first, last := ss[0].T, ss[len(ss)-1].T
		caption := fmt.Sprintf("%s %s vs time (%.0fs to %.0fs)", id, unitLabel(plotVar), first, last)
		graph := asciigraph.Plot(data,
			asciigraph.Height(12),
			asciigraph.Width(plotWidth),
			asciigraph.Caption(caption),
		)
		fmt.Println(graph)
		fmt.Printf("  min %.3f  max %.3f\n\n", minOf(data), maxOf(data))
	}
	return nil
}

func unitLabel(v string) string {
	switch v {
	case "radius":
		return "radius [km]"
	case "speed", "vx", "vy", "vz":
		return v + " [m/s]"
	}
	return v + " [m]"
}

func minOf(data []float64) float64 {
	m := math.Inf(1)
	for _, v := range data {
		m = math.Min(m, v)
	}
	return m
}

func maxOf(data []float64) float64 {
	m := math.Inf(-1)
	for _, v := range data {
		m = math.Max(m, v)
	}
	return m
}

func bodyRadius(meta *storage.RunMetadata) float64 {
	name := config.DefaultBody
	if meta.Scenario != nil {
		name = meta.Scenario.Body
	}
	b, err := bodies.Lookup(name)
	if err != nil {
		return 0
	}
	return b.Radius
}

func exportRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir(), nil)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	samples, err := st.LoadStates(runID)
	if err != nil {
		return err
	}

	out := os.Stdout
	if outFile != "" {
		f, err := os.Create(outFile)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	switch format {
	case "json":
		err = storage.ExportJSON(out, meta, samples)
	case "csv":
		err = storage.ExportCSV(out, samples)
	case "svg":
		err = storage.ExportSVG(out, samples, meta.Events, bodyRadius(meta), 800)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
	if err != nil {
		return err
	}
	if outFile != "" {
		fmt.Fprintf(os.Stderr, "exported to %s\n", outFile)
	}
	return nil
}
