package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/utopianvision/alzheimers-navigation-research/internal/constants"
	"github.com/utopianvision/alzheimers-navigation-research/internal/simulation"
)

func newRingCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ring",
		Short: "Run the head-direction ring attractor",
		Long: `Run the head-direction ring experiment.

The ring starts from a uniform rate. Without a perturbation it stays
uniform; --bump nudges the middle unit so an activity bump can form.
The state is reported at t=0, t_max/2 and t_max.

Examples:
  neurofield ring
  neurofield ring --bump --json
  neurofield ring --duration 50`,
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			bump, _ := cmd.Flags().GetBool("bump")

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			p := &cfg.Ring
			if cmd.Flags().Changed("units") {
				p.Weights.Units, _ = cmd.Flags().GetInt("units")
			}
			if cmd.Flags().Changed("duration") {
				p.Duration, _ = cmd.Flags().GetFloat64("duration")
			}
			if bump && p.Perturbation == 0 {
				p.Perturbation = constants.RingPerturbation
			}

			env, err := newRunEnv(cmd, cfg)
			if err != nil {
				return err
			}
			defer env.Close()

			exp, err := simulation.HeadDirection(cfg.Ring)
			if err != nil {
				return fmt.Errorf("failed to build experiment: %w", err)
			}
			report, err := env.runner().RunRing(cmd.Context(), exp)
			if err != nil {
				return fmt.Errorf("ring experiment failed: %w", err)
			}

			return writeRing(cmd.OutOrStdout(), jsonOut, newRingOutput(report, cfg.Ring.Weights.Units, exp.Steps))
		},
	}

	cmd.Flags().Bool("bump", false, "Perturb the middle unit so a bump can form")
	cmd.Flags().Int("units", 0, "Number of ring units (default from config)")
	cmd.Flags().Float64("duration", 0, "Simulated time t_max (default from config)")

	return cmd
}
