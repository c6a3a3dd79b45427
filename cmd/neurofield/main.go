package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "0.1.0-dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	notifySignals(sigCh)
	go func() {
		<-sigCh
		cancel()
	}()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "neurofield",
		Short: "Continuous attractor simulations of spatial navigation circuits",
		Long: `neurofield runs rate-based continuous attractor models of the
entorhinal grid-cell sheet and the head-direction ring, and reports how
their activity patterns degrade under simulated neuron loss and synaptic
pathology.

Each experiment prints per-stage summary statistics and a pattern
regularity score. Use --json for machine-readable output.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON")
	rootCmd.PersistentFlags().String("config", "", "Config file (default ~/.neurofield/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: info, debug, or trace")
	rootCmd.PersistentFlags().String("trace-dir", "", "Directory for trace.jsonl (debug and trace levels)")

	rootCmd.AddCommand(
		newVersionCmd(),
		newConfigCmd(),
		newGridCmd(),
		newTimelineCmd(),
		newRingCmd(),
	)

	return rootCmd
}
