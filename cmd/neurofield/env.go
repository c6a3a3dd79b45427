package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/utopianvision/alzheimers-navigation-research/internal/config"
	"github.com/utopianvision/alzheimers-navigation-research/internal/logging"
	"github.com/utopianvision/alzheimers-navigation-research/internal/seed"
	"github.com/utopianvision/alzheimers-navigation-research/internal/simulation"
	"github.com/utopianvision/alzheimers-navigation-research/internal/vecmath"
)

// runEnv is the validated configuration plus the loggers built from it.
type runEnv struct {
	cfg    *config.NeurofieldConfig
	logger *slog.Logger
	trace  *logging.TraceLogger
}

// loadConfig loads the config named by --config (or the default location)
// and applies the persistent logging flags on top.
func loadConfig(cmd *cobra.Command) (*config.NeurofieldConfig, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadPath(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.Logging.Level = level
	}
	if dir, _ := cmd.Flags().GetString("trace-dir"); dir != "" {
		cfg.Logging.TraceDir = dir
	}
	return cfg, nil
}

// newRunEnv validates cfg and opens the loggers. Logs go to the command's
// stderr so stdout stays parseable.
func newRunEnv(cmd *cobra.Command, cfg *config.NeurofieldConfig) (*runEnv, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	env := &runEnv{
		cfg:    cfg,
		logger: logging.NewLogger(cfg.Logging.Level, cmd.ErrOrStderr()),
	}
	if cfg.Logging.TraceDir != "" {
		env.trace = logging.NewTraceLogger(cfg.Logging.TraceDir, cfg.Logging.Level)
	}
	return env, nil
}

func (e *runEnv) Close() {
	e.trace.Close()
}

func (e *runEnv) runner() *simulation.Runner {
	return simulation.NewRunner(
		simulation.WithLogger(e.logger),
		simulation.WithTrace(e.trace),
		simulation.WithWorkers(e.cfg.Engine.Workers),
	)
}

func (e *runEnv) method() vecmath.Method {
	// Validate has already parsed it.
	m, _ := e.cfg.Engine.Method()
	return m
}

func (e *runEnv) generator() *seed.Generator {
	return seed.New(e.cfg.Engine.Seed)
}

// applySeedFlag overrides the configured seed when --seed was given.
func applySeedFlag(cmd *cobra.Command, cfg *config.NeurofieldConfig) {
	if cmd.Flags().Changed("seed") {
		cfg.Engine.Seed, _ = cmd.Flags().GetUint64("seed")
	}
}
