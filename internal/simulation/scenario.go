package simulation

import (
	"time"

	"github.com/utopianvision/alzheimers-navigation-research/internal/analysis"
	"github.com/utopianvision/alzheimers-navigation-research/internal/dynamics"
	"github.com/utopianvision/alzheimers-navigation-research/internal/field"
	"github.com/utopianvision/alzheimers-navigation-research/internal/kernel"
	"github.com/utopianvision/alzheimers-navigation-research/internal/vecmath"
)

// MaskSource draws survival masks. seed.Generator implements it.
type MaskSource interface {
	SurvivalMask(shape field.Shape, deathRate float64) (*field.Mask, error)
}

// Stage is one integrator run inside an Experiment.
type Stage struct {
	// Name identifies the stage within the experiment and is referenced by From.
	Name string

	// Label is a human-readable caption (e.g. "Early AD").
	Label string

	// ExcAmp and InhAmp are the kernel amplitudes A_e and A_i for this stage.
	ExcAmp float64
	InhAmp float64

	Steps int

	// DeathRate, when positive, draws a fresh survival mask from the
	// experiment's MaskSource. Ignored when Mask is set.
	DeathRate float64

	// Mask, when non-nil, is used as is.
	Mask *field.Mask

	// From names the stage whose final field seeds this one. Empty means the
	// previous stage, or the experiment's initial field for the first stage.
	From string
}

// DisplayPolicy decides the color range shared by all stage fields.
type DisplayPolicy struct {
	// Stage and Quantile, when Quantile > 0, take the maximum from the
	// Quantile-th quantile of the named stage's field.
	Stage    string
	Quantile float64

	// Max is the fixed maximum used when Quantile is zero.
	Max float64
}

// Experiment is a complete staged 2D sheet simulation.
type Experiment struct {
	Name string

	Sheet dynamics.SheetParams

	// ExcWidth and InhWidth are sigma_e and sigma_i, shared by all stages.
	ExcWidth float64
	InhWidth float64

	// Resolution is the grid spacing dx.
	Resolution float64

	Method vecmath.Method

	// Initial seeds the first stage and fixes the field shape.
	Initial *field.Grid

	Stages []Stage

	// Masks supplies survival masks for stages with a DeathRate.
	Masks MaskSource

	Display DisplayPolicy
}

// kernelParams returns the Gaussian parameters for one stage.
func (e Experiment) kernelParams(st Stage) kernel.GaussianParams {
	return kernel.GaussianParams{
		ExcAmp:     st.ExcAmp,
		InhAmp:     st.InhAmp,
		ExcWidth:   e.ExcWidth,
		InhWidth:   e.InhWidth,
		Resolution: e.Resolution,
	}
}

// StageResult is the recorded outcome of one stage. The field is held
// privately; Field returns a copy so a result never changes once recorded.
type StageResult struct {
	Name          string                `json:"name"`
	Label         string                `json:"label"`
	From          string                `json:"from,omitempty"`
	Steps         int                   `json:"steps"`
	DeathRate     float64               `json:"death_rate"`
	AliveFraction float64               `json:"alive_fraction"`
	Kernel        kernel.GaussianParams `json:"kernel"`
	Duration      time.Duration         `json:"duration"`

	field *field.Grid
}

// Field returns a copy of the stage's final field.
func (r StageResult) Field() *field.Grid { return r.field.Clone() }

// Summary returns summary statistics of the final field.
func (r StageResult) Summary() analysis.Summary {
	return analysis.Summarize(r.field.Data())
}

// Regularity scores the periodicity of the final field.
func (r StageResult) Regularity(cfg analysis.RegularityConfig) (analysis.RegularityResult, error) {
	return analysis.Regularity(r.field, cfg)
}

// Report collects the stage results of one experiment in configuration order.
type Report struct {
	Experiment string         `json:"experiment"`
	Stages     []StageResult  `json:"stages"`
	Display    analysis.Range `json:"display"`
	Duration   time.Duration  `json:"duration"`
}

// Stage returns the result with the given name.
func (r *Report) Stage(name string) (StageResult, bool) {
	for _, st := range r.Stages {
		if st.Name == name {
			return st, true
		}
	}
	return StageResult{}, false
}

// RingExperiment is a single head-direction ring run sampled at chosen steps.
type RingExperiment struct {
	Name    string
	Weights kernel.CosineParams
	Params  dynamics.RingParams
	Initial *field.Ring
	Steps   int

	// Snapshots lists the steps, in [0, Steps], at which the state is recorded.
	// Step 0 is the initial state.
	Snapshots []int

	Mask *field.Mask
}

// RingSnapshot is the ring state at one step.
type RingSnapshot struct {
	Label string  `json:"label"`
	Step  int     `json:"step"`
	Time  float64 `json:"time"`

	ring *field.Ring
}

// Ring returns a copy of the recorded state.
func (s RingSnapshot) Ring() *field.Ring { return s.ring.Clone() }

// Spread returns max - min of the recorded profile.
func (s RingSnapshot) Spread() float64 { return analysis.RingSpread(s.ring) }

// Peak returns the most active unit.
func (s RingSnapshot) Peak() int { return analysis.PeakIndex(s.ring) }

// RingReport holds the snapshots of a ring experiment in step order.
type RingReport struct {
	Experiment string         `json:"experiment"`
	Snapshots  []RingSnapshot `json:"snapshots"`
	Duration   time.Duration  `json:"duration"`
}
