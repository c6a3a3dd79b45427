package simulation

import (
	"fmt"
	"math"

	"github.com/utopianvision/alzheimers-navigation-research/internal/constants"
	"github.com/utopianvision/alzheimers-navigation-research/internal/dynamics"
	"github.com/utopianvision/alzheimers-navigation-research/internal/field"
	"github.com/utopianvision/alzheimers-navigation-research/internal/kernel"
	"github.com/utopianvision/alzheimers-navigation-research/internal/seed"
	"github.com/utopianvision/alzheimers-navigation-research/internal/vecmath"
)

// Stage names used by the presets.
const (
	StageHealthy  = "healthy"
	StageEarly    = "early"
	StageModerate = "moderate"
	StageLate     = "late"
)

// DegradationParams configures the grid degradation preset: a healthy
// pattern formed from noise, then continued under increasing neuron loss.
type DegradationParams struct {
	// Size is the number of units per side. Default: 150.
	Size int `json:"size" yaml:"size"`

	// Extent is the physical side length L. Default: 100.
	Extent float64 `json:"extent" yaml:"extent"`

	// FormationSteps is the length of the healthy stage. Default: 4000.
	FormationSteps int `json:"formation_steps" yaml:"formation_steps"`

	// DegradationSteps is the length of each death-rate stage. Default: 1000.
	DegradationSteps int `json:"degradation_steps" yaml:"degradation_steps"`

	// DeathRates lists the neuron loss fractions. Default: [0, 0.3, 0.6, 0.9].
	DeathRates []float64 `json:"death_rates" yaml:"death_rates"`

	// DisplayQuantile of the healthy field sets the shared display maximum.
	// Default: 0.99.
	DisplayQuantile float64 `json:"display_quantile" yaml:"display_quantile"`

	// Kernel holds the healthy amplitudes and widths; its Resolution is
	// derived from Size and Extent.
	Kernel kernel.GaussianParams `json:"kernel" yaml:"kernel"`

	// InitialMax bounds the uniform initial noise. Default: 1.
	InitialMax float64 `json:"initial_max" yaml:"initial_max"`
}

// DefaultDegradationParams returns the reference 150x150 degradation setup.
func DefaultDegradationParams() DegradationParams {
	return DegradationParams{
		Size:             constants.DegradationSize,
		Extent:           constants.DegradationExtent,
		FormationSteps:   constants.FormationSteps,
		DegradationSteps: constants.DegradationSteps,
		DeathRates:       []float64{0, 0.3, 0.6, 0.9},
		DisplayQuantile:  constants.DisplayQuantile,
		Kernel:           kernel.DefaultGaussianParams(0),
		InitialMax:       constants.InitialNoiseMax,
	}
}

// Resolution returns the grid spacing Extent/Size.
func (p DegradationParams) Resolution() float64 {
	return p.Extent / float64(p.Size)
}

// DeathStageName returns the stage name for a death rate, e.g. "death-30"
// for 0.3 and "death-30.1" for 0.301. The percentage keeps two decimals.
func DeathStageName(rate float64) string {
	return fmt.Sprintf("death-%g", deathPercent(rate))
}

func deathPercent(rate float64) float64 {
	return math.Round(rate*1e4) / 100
}

// GridDegradation builds the degradation experiment. The initial noise is
// drawn from gen immediately; gen then supplies the survival masks.
func GridDegradation(p DegradationParams, sheet dynamics.SheetParams, method vecmath.Method, gen *seed.Generator) (Experiment, error) {
	if p.Size <= 0 || !(p.Extent > 0) {
		return Experiment{}, fmt.Errorf("grid degradation: size %d and extent %v must be positive", p.Size, p.Extent)
	}
	initial, err := gen.UniformGrid(p.Size, p.Size, 0, p.InitialMax)
	if err != nil {
		return Experiment{}, fmt.Errorf("grid degradation: %w", err)
	}

	stages := make([]Stage, 0, len(p.DeathRates)+1)
	stages = append(stages, Stage{
		Name:   StageHealthy,
		Label:  "Healthy",
		ExcAmp: p.Kernel.ExcAmp,
		InhAmp: p.Kernel.InhAmp,
		Steps:  p.FormationSteps,
	})
	seen := make(map[string]float64, len(p.DeathRates))
	for _, rate := range p.DeathRates {
		name := DeathStageName(rate)
		if prev, dup := seen[name]; dup {
			return Experiment{}, fmt.Errorf("grid degradation: death rates %v and %v share stage name %q", prev, rate, name)
		}
		seen[name] = rate
		stages = append(stages, Stage{
			Name:      name,
			Label:     fmt.Sprintf("%g%% Neuron Loss", deathPercent(rate)),
			ExcAmp:    p.Kernel.ExcAmp,
			InhAmp:    p.Kernel.InhAmp,
			Steps:     p.DegradationSteps,
			DeathRate: rate,
			From:      StageHealthy,
		})
	}

	return Experiment{
		Name:       "grid-degradation",
		Sheet:      sheet,
		ExcWidth:   p.Kernel.ExcWidth,
		InhWidth:   p.Kernel.InhWidth,
		Resolution: p.Resolution(),
		Method:     method,
		Initial:    initial,
		Stages:     stages,
		Masks:      gen,
		Display:    DisplayPolicy{Stage: StageHealthy, Quantile: p.DisplayQuantile},
	}, nil
}

// TimelineParams configures the pathology timeline preset: a healthy
// pattern, then three disease stages that each branch from it.
type TimelineParams struct {
	// Size is the number of units per side. Default: 70.
	Size int `json:"size" yaml:"size"`

	// Extent is the physical side length L. Default: 60.
	Extent float64 `json:"extent" yaml:"extent"`

	// HealthySteps is the length of the healthy stage. Default: 4000.
	HealthySteps int `json:"healthy_steps" yaml:"healthy_steps"`

	// StageSteps is the length of each disease stage. Default: 2000.
	StageSteps int `json:"stage_steps" yaml:"stage_steps"`

	// Kernel holds the healthy amplitudes and widths.
	Kernel kernel.GaussianParams `json:"kernel" yaml:"kernel"`

	// EarlyInhAmp is A_i in the early stage (hyperexcitability). Default: 0.4.
	EarlyInhAmp float64 `json:"early_inh_amp" yaml:"early_inh_amp"`

	// ModerateExcAmp is A_e in the moderate stage (synaptic weakening).
	// Default: 0.8.
	ModerateExcAmp float64 `json:"moderate_exc_amp" yaml:"moderate_exc_amp"`

	// LateDeathRate is the neuron loss of the late stage. Default: 0.5.
	LateDeathRate float64 `json:"late_death_rate" yaml:"late_death_rate"`

	// DisplayMax is the fixed display maximum. Default: 12.
	DisplayMax float64 `json:"display_max" yaml:"display_max"`

	// InitialMax bounds the uniform initial noise. Default: 1.
	InitialMax float64 `json:"initial_max" yaml:"initial_max"`
}

// DefaultTimelineParams returns the reference 70x70 timeline setup.
func DefaultTimelineParams() TimelineParams {
	return TimelineParams{
		Size:           constants.TimelineSize,
		Extent:         constants.TimelineExtent,
		HealthySteps:   constants.FormationSteps,
		StageSteps:     constants.TimelineStageSteps,
		Kernel:         kernel.DefaultGaussianParams(0),
		EarlyInhAmp:    constants.EarlyInhAmp,
		ModerateExcAmp: constants.ModerateExcAmp,
		LateDeathRate:  constants.LateDeathRate,
		DisplayMax:     constants.TimelineDisplayMax,
		InitialMax:     constants.InitialNoiseMax,
	}
}

// Resolution returns the grid spacing Extent/Size.
func (p TimelineParams) Resolution() float64 {
	return p.Extent / float64(p.Size)
}

// PathologyTimeline builds the four-stage disease timeline.
func PathologyTimeline(p TimelineParams, sheet dynamics.SheetParams, method vecmath.Method, gen *seed.Generator) (Experiment, error) {
	if p.Size <= 0 || !(p.Extent > 0) {
		return Experiment{}, fmt.Errorf("pathology timeline: size %d and extent %v must be positive", p.Size, p.Extent)
	}
	initial, err := gen.UniformGrid(p.Size, p.Size, 0, p.InitialMax)
	if err != nil {
		return Experiment{}, fmt.Errorf("pathology timeline: %w", err)
	}

	ae, ai := p.Kernel.ExcAmp, p.Kernel.InhAmp
	stages := []Stage{
		{Name: StageHealthy, Label: "Healthy", ExcAmp: ae, InhAmp: ai, Steps: p.HealthySteps},
		{Name: StageEarly, Label: "Early AD", ExcAmp: ae, InhAmp: p.EarlyInhAmp, Steps: p.StageSteps, From: StageHealthy},
		{Name: StageModerate, Label: "Moderate AD", ExcAmp: p.ModerateExcAmp, InhAmp: ai, Steps: p.StageSteps, From: StageHealthy},
		{Name: StageLate, Label: "Late AD", ExcAmp: ae, InhAmp: ai, Steps: p.StageSteps, DeathRate: p.LateDeathRate, From: StageHealthy},
	}

	return Experiment{
		Name:       "pathology-timeline",
		Sheet:      sheet,
		ExcWidth:   p.Kernel.ExcWidth,
		InhWidth:   p.Kernel.InhWidth,
		Resolution: p.Resolution(),
		Method:     method,
		Initial:    initial,
		Stages:     stages,
		Masks:      gen,
		Display:    DisplayPolicy{Max: p.DisplayMax},
	}, nil
}

// HeadDirectionParams configures the ring preset.
type HeadDirectionParams struct {
	Weights  kernel.CosineParams `json:"weights" yaml:"weights"`
	Dynamics dynamics.RingParams `json:"dynamics" yaml:"dynamics"`

	// InitialRate is the uniform starting rate r0. Default: 3.
	InitialRate float64 `json:"initial_rate" yaml:"initial_rate"`

	// Duration is the simulated time t_max. Default: 200.
	Duration float64 `json:"duration" yaml:"duration"`

	// Perturbation is added to unit n/2 at t=0. Zero keeps the ring
	// uniform. Default: 0.
	Perturbation float64 `json:"perturbation" yaml:"perturbation"`
}

// DefaultHeadDirectionParams returns the reference ring setup.
func DefaultHeadDirectionParams() HeadDirectionParams {
	return HeadDirectionParams{
		Weights:     kernel.DefaultCosineParams(),
		Dynamics:    dynamics.DefaultRingParams(),
		InitialRate: constants.RingInitialRate,
		Duration:    constants.RingDuration,
	}
}

// Steps returns the number of integration steps covering Duration.
func (p HeadDirectionParams) Steps() int {
	return int(math.Round(p.Duration / p.Dynamics.Step))
}

// HeadDirection builds the ring experiment, recording the state at t=0,
// t_max/2 and t_max.
func HeadDirection(p HeadDirectionParams) (RingExperiment, error) {
	if !(p.Dynamics.Step > 0) {
		return RingExperiment{}, fmt.Errorf("head direction: step %v must be positive", p.Dynamics.Step)
	}
	initial, err := field.FilledRing(p.Weights.Units, p.InitialRate)
	if err != nil {
		return RingExperiment{}, fmt.Errorf("head direction: %w", err)
	}
	if p.Perturbation != 0 {
		mid := p.Weights.Units / 2
		initial.Set(mid, initial.At(mid)+p.Perturbation)
	}

	steps := p.Steps()
	return RingExperiment{
		Name:      "head-direction",
		Weights:   p.Weights,
		Params:    p.Dynamics,
		Initial:   initial,
		Steps:     steps,
		Snapshots: []int{0, steps / 2, steps},
	}, nil
}
