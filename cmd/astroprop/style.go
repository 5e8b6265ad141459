package main

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/astroprop/internal/maneuvers"
	"github.com/san-kum/astroprop/internal/sim"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("242")).Width(16)
	valueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	boxStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1)
)

func row(label, value string) string {
	return labelStyle.Render(label) + valueStyle.Render(value)
}

func renderSummary(runID string, elapsed time.Duration, result *sim.Result) string {
	var lines []string
	if runID != "" {
		lines = append(lines, row("run id", runID))
	}
	lines = append(lines,
		row("wall time", elapsed.Round(time.Millisecond).String()),
		row("checkpoints", fmt.Sprint(len(result.Times))),
		row("events", fmt.Sprint(len(result.Events))),
	)

	for _, ev := range result.Events {
		lines = append(lines, dimStyle.Render(fmt.Sprintf("  %-10s %-14s t=%.3f", ev.Spacecraft, ev.Detector, ev.Time)))
	}

	for _, f := range result.Final {
		lines = append(lines, "", titleStyle.Render(f.ID),
			row("radius", fmt.Sprintf("%.3f km", f.Radius/1000)),
			row("semi-major axis", fmt.Sprintf("%.3f km", f.SemiMajorAxis/1000)),
			row("eccentricity", fmt.Sprintf("%.6f", f.Eccentricity)),
			row("delta-v", fmt.Sprintf("%.3f m/s (%d burns)", f.DeltaV, f.Burns)),
		)
	}

	names := make([]string, 0, len(result.Metrics))
	for name := range result.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	if len(names) > 0 {
		lines = append(lines, "", titleStyle.Render("metrics"))
	}
	for _, name := range names {
		lines = append(lines, row(name, fmt.Sprintf("%.6g", result.Metrics[name])))
	}

	return boxStyle.Render(strings.Join(lines, "\n"))
}

func renderTransfer(kind string, r1, r2 float64, tr maneuvers.Transfer) string {
	lines := []string{
		titleStyle.Render(fmt.Sprintf("%s %.0f km -> %.0f km", kind, r1/1000, r2/1000)),
	}
	for i, dv := range tr.DeltaVs() {
		lines = append(lines, row(fmt.Sprintf("burn %d", i+1), fmt.Sprintf("%+.3f m/s", dv)))
	}
	lines = append(lines,
		row("total delta-v", fmt.Sprintf("%.3f m/s", tr.TotalDeltaV())),
		row("transit", fmt.Sprintf("%.1f s (%.2f h)", tr.TransitTime(), tr.TransitTime()/3600)),
	)
	return boxStyle.Render(strings.Join(lines, "\n"))
}
