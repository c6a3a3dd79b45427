package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/utopianvision/alzheimers-navigation-research/internal/simulation"
)

func newGridCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "grid",
		Short: "Form a grid-cell pattern and degrade it with neuron loss",
		Long: `Run the grid degradation experiment.

A square sheet starts from uniform noise and integrates until a periodic
grid pattern forms (the healthy stage). Each death rate then continues
from the healthy pattern with that fraction of units silenced.

Examples:
  neurofield grid                            # Reference 150x150 run
  neurofield grid --size 64 --json           # Smaller sheet, JSON output
  neurofield grid --death-rates 0,0.5,0.95   # Custom loss levels`,
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			applySeedFlag(cmd, cfg)
			p := &cfg.Grid
			if cmd.Flags().Changed("size") {
				// Keep the grid spacing when only the size changes.
				dx := p.Resolution()
				p.Size, _ = cmd.Flags().GetInt("size")
				p.Extent = dx * float64(p.Size)
			}
			if cmd.Flags().Changed("formation-steps") {
				p.FormationSteps, _ = cmd.Flags().GetInt("formation-steps")
			}
			if cmd.Flags().Changed("degradation-steps") {
				p.DegradationSteps, _ = cmd.Flags().GetInt("degradation-steps")
			}
			if cmd.Flags().Changed("death-rates") {
				p.DeathRates, _ = cmd.Flags().GetFloat64Slice("death-rates")
			}

			env, err := newRunEnv(cmd, cfg)
			if err != nil {
				return err
			}
			defer env.Close()

			exp, err := simulation.GridDegradation(cfg.Grid, cfg.Engine.Sheet, env.method(), env.generator())
			if err != nil {
				return fmt.Errorf("failed to build experiment: %w", err)
			}
			report, err := env.runner().Run(cmd.Context(), exp)
			if err != nil {
				return fmt.Errorf("grid experiment failed: %w", err)
			}

			return writeReport(cmd.OutOrStdout(), jsonOut, newReportOutput(report, cfg.Engine.Seed, cfg.Grid.Size))
		},
	}

	cmd.Flags().Uint64("seed", 0, "Random seed (default from config)")
	cmd.Flags().Int("size", 0, "Units per side, keeping the grid spacing (default from config)")
	cmd.Flags().Int("formation-steps", 0, "Steps of the healthy stage (default from config)")
	cmd.Flags().Int("degradation-steps", 0, "Steps of each death-rate stage (default from config)")
	cmd.Flags().Float64Slice("death-rates", nil, "Neuron loss fractions (default from config)")

	return cmd
}
