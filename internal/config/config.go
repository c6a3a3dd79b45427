// Package config provides unified configuration loading for neurofield.
// It supports loading from YAML files and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/utopianvision/alzheimers-navigation-research/internal/constants"
	"github.com/utopianvision/alzheimers-navigation-research/internal/dynamics"
	"github.com/utopianvision/alzheimers-navigation-research/internal/kernel"
	"github.com/utopianvision/alzheimers-navigation-research/internal/logging"
	"github.com/utopianvision/alzheimers-navigation-research/internal/simulation"
	"github.com/utopianvision/alzheimers-navigation-research/internal/vecmath"
)

// DirName is the per-user configuration directory under $HOME.
const DirName = ".neurofield"

// FileName is the configuration file inside DirName.
const FileName = "config.yaml"

// NeurofieldConfig contains all neurofield configuration settings.
type NeurofieldConfig struct {
	// Grid configures the grid degradation experiment.
	Grid simulation.DegradationParams `json:"grid" yaml:"grid"`

	// Timeline configures the pathology timeline experiment.
	Timeline simulation.TimelineParams `json:"timeline" yaml:"timeline"`

	// Ring configures the head-direction ring experiment.
	Ring simulation.HeadDirectionParams `json:"ring" yaml:"ring"`

	// Engine contains settings shared by every 2D experiment.
	Engine EngineConfig `json:"engine" yaml:"engine"`

	// Logging contains settings for operational and trace logging.
	Logging LoggingConfig `json:"logging" yaml:"logging"`
}

// EngineConfig configures the sheet integrator and the stage runner.
type EngineConfig struct {
	// Seed drives initial noise and survival masks. Default: 10.
	Seed uint64 `json:"seed" yaml:"seed"`

	// Workers bounds how many stages run at once. 0 uses GOMAXPROCS.
	Workers int `json:"workers" yaml:"workers"`

	// Convolution is "auto", "direct" or "spectral". Default: "auto".
	Convolution string `json:"convolution" yaml:"convolution"`

	// Sheet holds tau, dt, drive and the stability clamp.
	Sheet dynamics.SheetParams `json:"sheet" yaml:"sheet"`
}

// Method returns the parsed convolution method.
func (e EngineConfig) Method() (vecmath.Method, error) {
	return vecmath.ParseMethod(e.Convolution)
}

// LoggingConfig configures neurofield's logging behavior.
type LoggingConfig struct {
	// Level sets the log verbosity: "info" (default), "debug", or "trace".
	// "debug" and "trace" also write stage events to TraceDir/trace.jsonl.
	Level string `json:"level" yaml:"level"`

	// TraceDir is where trace.jsonl is written. Empty disables the trace.
	TraceDir string `json:"trace_dir,omitempty" yaml:"trace_dir,omitempty"`
}

// Default returns a NeurofieldConfig with the reference parameters.
func Default() *NeurofieldConfig {
	return &NeurofieldConfig{
		Grid:     simulation.DefaultDegradationParams(),
		Timeline: simulation.DefaultTimelineParams(),
		Ring:     simulation.DefaultHeadDirectionParams(),
		Engine: EngineConfig{
			Seed:        constants.DefaultSeed,
			Workers:     0,
			Convolution: string(vecmath.MethodAuto),
			Sheet:       dynamics.DefaultSheetParams(),
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// DefaultPath returns ~/.neurofield/config.yaml.
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locating home directory: %w", err)
	}
	return filepath.Join(homeDir, DirName, FileName), nil
}

// Load loads configuration from the default locations and environment variables.
// Order: defaults -> ~/.neurofield/config.yaml -> environment variables
func Load() (*NeurofieldConfig, error) {
	return LoadPath("")
}

// LoadPath is Load with an explicit config file. An empty path falls back
// to the default location, which may be absent; an explicit path must exist.
func LoadPath(path string) (*NeurofieldConfig, error) {
	config := Default()

	if path == "" {
		if p, err := DefaultPath(); err == nil {
			if _, statErr := os.Stat(p); statErr == nil {
				path = p
			}
		}
	}
	if path != "" {
		fileConfig, err := LoadFromFile(path)
		if err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
		config = fileConfig
	}

	applyEnvOverrides(config)

	return config, nil
}

// LoadFromFile loads configuration from a specific YAML file. Keys missing
// from the file keep their defaults.
func LoadFromFile(path string) (*NeurofieldConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	return config, nil
}

// Validate checks that the configuration is valid.
func (c *NeurofieldConfig) Validate() error {
	if err := validateSheet(c.Engine.Sheet); err != nil {
		return fmt.Errorf("engine: %w", err)
	}
	if c.Engine.Workers < 0 {
		return fmt.Errorf("engine: workers must be non-negative, got %d", c.Engine.Workers)
	}
	if _, err := c.Engine.Method(); err != nil {
		return fmt.Errorf("engine: %w", err)
	}

	if err := validateGrid(c.Grid); err != nil {
		return fmt.Errorf("grid: %w", err)
	}
	if err := validateTimeline(c.Timeline); err != nil {
		return fmt.Errorf("timeline: %w", err)
	}
	if err := validateRing(c.Ring); err != nil {
		return fmt.Errorf("ring: %w", err)
	}

	if c.Logging.Level != "" && !logging.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("invalid log level: %s (valid: info, debug, trace, or empty for default)", c.Logging.Level)
	}

	return nil
}

// dt >= tau is accepted: the clamp absorbs the resulting overshoot.
func validateSheet(p dynamics.SheetParams) error {
	if !(p.Tau > 0) {
		return fmt.Errorf("tau must be positive, got %v", p.Tau)
	}
	if !(p.Dt > 0) {
		return fmt.Errorf("dt must be positive, got %v", p.Dt)
	}
	if !(p.ClampMin < p.ClampMax) {
		return fmt.Errorf("clamp bounds [%v, %v] are inverted or empty", p.ClampMin, p.ClampMax)
	}
	return nil
}

func validateKernel(p kernel.GaussianParams) error {
	if !(p.ExcWidth > 0) || !(p.InhWidth > 0) {
		return fmt.Errorf("kernel widths must be positive, got exc %v inh %v", p.ExcWidth, p.InhWidth)
	}
	return nil
}

func validateSheetSize(size int, extent float64) error {
	if size <= 0 {
		return fmt.Errorf("size must be positive, got %d", size)
	}
	if !(extent > 0) {
		return fmt.Errorf("extent must be positive, got %v", extent)
	}
	return nil
}

func validateRate(name string, v float64) error {
	if !(v >= 0 && v <= 1) {
		return fmt.Errorf("%s must be between 0 and 1, got %v", name, v)
	}
	return nil
}

func validateGrid(p simulation.DegradationParams) error {
	if err := validateSheetSize(p.Size, p.Extent); err != nil {
		return err
	}
	if p.FormationSteps < 0 || p.DegradationSteps < 0 {
		return fmt.Errorf("steps must be non-negative, got %d and %d", p.FormationSteps, p.DegradationSteps)
	}
	for _, r := range p.DeathRates {
		if err := validateRate("death rate", r); err != nil {
			return err
		}
	}
	if err := validateRate("display_quantile", p.DisplayQuantile); err != nil {
		return err
	}
	if !(p.InitialMax >= 0) {
		return fmt.Errorf("initial_max must be non-negative, got %v", p.InitialMax)
	}
	return validateKernel(p.Kernel)
}

func validateTimeline(p simulation.TimelineParams) error {
	if err := validateSheetSize(p.Size, p.Extent); err != nil {
		return err
	}
	if p.HealthySteps < 0 || p.StageSteps < 0 {
		return fmt.Errorf("steps must be non-negative, got %d and %d", p.HealthySteps, p.StageSteps)
	}
	if err := validateRate("late_death_rate", p.LateDeathRate); err != nil {
		return err
	}
	if !(p.DisplayMax > 0) {
		return fmt.Errorf("display_max must be positive, got %v", p.DisplayMax)
	}
	if !(p.InitialMax >= 0) {
		return fmt.Errorf("initial_max must be non-negative, got %v", p.InitialMax)
	}
	return validateKernel(p.Kernel)
}

func validateRing(p simulation.HeadDirectionParams) error {
	if p.Weights.Units <= 0 {
		return fmt.Errorf("units must be positive, got %d", p.Weights.Units)
	}
	if !(p.Dynamics.Tau > 0) {
		return fmt.Errorf("tau must be positive, got %v", p.Dynamics.Tau)
	}
	if !(p.Dynamics.Step > 0) {
		return fmt.Errorf("step must be positive, got %v", p.Dynamics.Step)
	}
	if !(p.Duration >= 0) {
		return fmt.Errorf("duration must be non-negative, got %v", p.Duration)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides to the config.
// Unparseable numbers are ignored.
func applyEnvOverrides(config *NeurofieldConfig) {
	if v := os.Getenv("NEUROFIELD_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}

	if v := os.Getenv("NEUROFIELD_TRACE_DIR"); v != "" {
		config.Logging.TraceDir = v
	}

	if v := os.Getenv("NEUROFIELD_SEED"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			config.Engine.Seed = n
		}
	}

	if v := os.Getenv("NEUROFIELD_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Engine.Workers = n
		}
	}

	if v := os.Getenv("NEUROFIELD_CONVOLUTION"); v != "" {
		config.Engine.Convolution = v
	}
}
