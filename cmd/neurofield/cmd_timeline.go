package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/utopianvision/alzheimers-navigation-research/internal/simulation"
)

func newTimelineCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "timeline",
		Short: "Run the healthy, early, moderate and late disease stages",
		Long: `Run the pathology timeline experiment.

A healthy grid pattern is formed first. Three disease stages then each
continue from it: early (weakened inhibition), moderate (weakened
excitation) and late (neuron loss). All stages share a fixed display
range.

Examples:
  neurofield timeline
  neurofield timeline --stage-steps 500 --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			applySeedFlag(cmd, cfg)
			p := &cfg.Timeline
			if cmd.Flags().Changed("size") {
				dx := p.Resolution()
				p.Size, _ = cmd.Flags().GetInt("size")
				p.Extent = dx * float64(p.Size)
			}
			if cmd.Flags().Changed("healthy-steps") {
				p.HealthySteps, _ = cmd.Flags().GetInt("healthy-steps")
			}
			if cmd.Flags().Changed("stage-steps") {
				p.StageSteps, _ = cmd.Flags().GetInt("stage-steps")
			}

			env, err := newRunEnv(cmd, cfg)
			if err != nil {
				return err
			}
			defer env.Close()

			exp, err := simulation.PathologyTimeline(cfg.Timeline, cfg.Engine.Sheet, env.method(), env.generator())
			if err != nil {
				return fmt.Errorf("failed to build experiment: %w", err)
			}
			report, err := env.runner().Run(cmd.Context(), exp)
			if err != nil {
				return fmt.Errorf("timeline experiment failed: %w", err)
			}

			return writeReport(cmd.OutOrStdout(), jsonOut, newReportOutput(report, cfg.Engine.Seed, cfg.Timeline.Size))
		},
	}

	cmd.Flags().Uint64("seed", 0, "Random seed (default from config)")
	cmd.Flags().Int("size", 0, "Units per side, keeping the grid spacing (default from config)")
	cmd.Flags().Int("healthy-steps", 0, "Steps of the healthy stage (default from config)")
	cmd.Flags().Int("stage-steps", 0, "Steps of each disease stage (default from config)")

	return cmd
}
