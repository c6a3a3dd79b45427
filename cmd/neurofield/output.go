package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/utopianvision/alzheimers-navigation-research/internal/analysis"
	"github.com/utopianvision/alzheimers-navigation-research/internal/simulation"
)

type stageOutput struct {
	simulation.StageResult
	Summary         analysis.Summary          `json:"summary"`
	Regularity      analysis.RegularityResult `json:"regularity"`
	RegularityError string                    `json:"regularity_error,omitempty"`
}

type reportOutput struct {
	Experiment string         `json:"experiment"`
	Seed       uint64         `json:"seed"`
	Size       int            `json:"size"`
	Display    analysis.Range `json:"display"`
	DurationMS int64          `json:"duration_ms"`
	Stages     []stageOutput  `json:"stages"`
}

func newReportOutput(report *simulation.Report, seed uint64, size int) reportOutput {
	out := reportOutput{
		Experiment: report.Experiment,
		Seed:       seed,
		Size:       size,
		Display:    report.Display,
		DurationMS: report.Duration.Milliseconds(),
		Stages:     make([]stageOutput, 0, len(report.Stages)),
	}
	cfg := analysis.DefaultRegularityConfig()
	for _, st := range report.Stages {
		so := stageOutput{StageResult: st, Summary: st.Summary()}
		if reg, err := st.Regularity(cfg); err != nil {
			so.RegularityError = err.Error()
		} else {
			so.Regularity = reg
		}
		out.Stages = append(out.Stages, so)
	}
	return out
}

func writeReport(w io.Writer, jsonOut bool, out reportOutput) error {
	if jsonOut {
		return json.NewEncoder(w).Encode(out)
	}

	fmt.Fprintf(w, "Experiment: %s (seed %d, %dx%d)\n", out.Experiment, out.Seed, out.Size, out.Size)
	fmt.Fprintf(w, "Display range: [%.3f, %.3f]\n\n", out.Display.Min, out.Display.Max)
	fmt.Fprintf(w, "%-10s %-18s %-8s %6s %6s %8s %8s %8s %6s %6s\n",
		"Stage", "Label", "From", "Steps", "Alive", "Mean", "Std", "Max", "Peaks", "Reg")
	fmt.Fprintln(w, strings.Repeat("-", 94))
	for _, st := range out.Stages {
		label := st.Label
		if len(label) > 18 {
			label = label[:15] + "..."
		}
		from := st.From
		if from == "" {
			from = "-"
		}
		fmt.Fprintf(w, "%-10s %-18s %-8s %6d %5.0f%% %8.3f %8.3f %8.3f %6d %6.3f\n",
			st.Name, label, from, st.Steps, st.AliveFraction*100,
			st.Summary.Mean, st.Summary.StdDev, st.Summary.Max,
			st.Regularity.Peaks, st.Regularity.Score)
		if st.Summary.HasNonFinite() {
			fmt.Fprintf(w, "  warning: %d non-finite values\n", st.Summary.NonFinite)
		}
	}
	fmt.Fprintf(w, "\nCompleted in %dms\n", out.DurationMS)
	return nil
}

type snapshotOutput struct {
	simulation.RingSnapshot
	Summary analysis.Summary `json:"summary"`
	Spread  float64          `json:"spread"`
	Peak    int              `json:"peak"`
}

type ringOutput struct {
	Experiment string           `json:"experiment"`
	Units      int              `json:"units"`
	Steps      int              `json:"steps"`
	DurationMS int64            `json:"duration_ms"`
	Snapshots  []snapshotOutput `json:"snapshots"`
}

func newRingOutput(report *simulation.RingReport, units, steps int) ringOutput {
	out := ringOutput{
		Experiment: report.Experiment,
		Units:      units,
		Steps:      steps,
		DurationMS: report.Duration.Milliseconds(),
		Snapshots:  make([]snapshotOutput, 0, len(report.Snapshots)),
	}
	for _, s := range report.Snapshots {
		out.Snapshots = append(out.Snapshots, snapshotOutput{
			RingSnapshot: s,
			Summary:      analysis.Summarize(s.Ring().Data()),
			Spread:       s.Spread(),
			Peak:         s.Peak(),
		})
	}
	return out
}

func writeRing(w io.Writer, jsonOut bool, out ringOutput) error {
	if jsonOut {
		return json.NewEncoder(w).Encode(out)
	}

	fmt.Fprintf(w, "Experiment: %s (%d units, %d steps)\n\n", out.Experiment, out.Units, out.Steps)
	fmt.Fprintf(w, "%-10s %6s %8s %10s %10s %12s %6s\n", "Snapshot", "Step", "Time", "Mean", "Max", "Spread", "Peak")
	fmt.Fprintln(w, strings.Repeat("-", 68))
	for _, s := range out.Snapshots {
		fmt.Fprintf(w, "%-10s %6d %8.2f %10.4f %10.4f %12.3e %6d\n",
			s.Label, s.Step, s.Time, s.Summary.Mean, s.Summary.Max, s.Spread, s.Peak)
	}
	fmt.Fprintf(w, "\nCompleted in %dms\n", out.DurationMS)
	return nil
}
