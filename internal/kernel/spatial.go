// Package kernel builds the recurrent connectivity of the two populations:
// a difference-of-Gaussians convolution kernel for the 2D sheet and an
// explicit cosine-tuned weight matrix for the ring.
//
// Kernels are immutable once built. Experiments rebuild them whenever the
// excitatory or inhibitory strengths change between stages.
package kernel

import (
	"math"

	"github.com/utopianvision/alzheimers-navigation-research/internal/constants"
)

// GaussianParams parameterizes the sheet's lateral excitation/inhibition.
type GaussianParams struct {
	// ExcAmp is the excitatory amplitude A_e.
	ExcAmp float64 `json:"exc_amp" yaml:"exc_amp"`

	// InhAmp is the inhibitory amplitude A_i.
	InhAmp float64 `json:"inh_amp" yaml:"inh_amp"`

	// ExcWidth is the excitatory width sigma_e, in physical units.
	ExcWidth float64 `json:"exc_width" yaml:"exc_width"`

	// InhWidth is the inhibitory width sigma_i, in physical units.
	// It also sets the kernel extent.
	InhWidth float64 `json:"inh_width" yaml:"inh_width"`

	// Resolution is the grid spacing dx (extent / units per side).
	Resolution float64 `json:"resolution" yaml:"resolution"`
}

// DefaultGaussianParams returns the healthy reference kernel for a sheet
// with spacing dx.
func DefaultGaussianParams(dx float64) GaussianParams {
	return GaussianParams{
		ExcAmp:     constants.ExcAmp,
		InhAmp:     constants.InhAmp,
		ExcWidth:   constants.ExcWidth,
		InhWidth:   constants.InhWidth,
		Resolution: dx,
	}
}

// HalfWidth returns the kernel half-width in grid units, ceil(3*sigma_i/dx).
func (p GaussianParams) HalfWidth() int {
	return int(math.Ceil(constants.KernelSigmas * p.InhWidth / p.Resolution))
}

// Spatial is a square convolution kernel of odd side 2*w+1, indexed by
// grid offsets in [-w, w].
type Spatial struct {
	params GaussianParams
	half   int
	side   int
	values []float64
}

// BuildSpatial synthesizes the difference-of-Gaussians kernel
//
//	K(x, y) = (A_e*exp(-(x^2+y^2)/(2*sigma_e^2)) - A_i*exp(-(x^2+y^2)/(2*sigma_i^2))) * dx^2
//
// at every grid offset within the half-width. The dx^2 factor makes the
// convolution approximate the continuous spatial integral at any resolution.
func BuildSpatial(p GaussianParams) *Spatial {
	half := p.HalfWidth()
	side := 2*half + 1
	values := make([]float64, side*side)

	dx := p.Resolution
	cell := dx * dx
	twoSe := 2 * p.ExcWidth * p.ExcWidth
	twoSi := 2 * p.InhWidth * p.InhWidth

	for a := -half; a <= half; a++ {
		y := float64(a) * dx
		for b := -half; b <= half; b++ {
			x := float64(b) * dx
			r2 := x*x + y*y
			w := p.ExcAmp*math.Exp(-r2/twoSe) - p.InhAmp*math.Exp(-r2/twoSi)
			values[(a+half)*side+(b+half)] = w * cell
		}
	}

	return &Spatial{params: p, half: half, side: side, values: values}
}

// Params returns the parameters the kernel was built from.
func (k *Spatial) Params() GaussianParams { return k.params }

// HalfWidth returns w.
func (k *Spatial) HalfWidth() int { return k.half }

// Side returns 2*w+1.
func (k *Spatial) Side() int { return k.side }

// At returns the weight at row offset a and column offset b, both in [-w, w].
func (k *Spatial) At(a, b int) float64 {
	return k.values[(a+k.half)*k.side+(b+k.half)]
}

// Values returns a row-major copy of the taps, zero offset at (w, w).
func (k *Spatial) Values() []float64 {
	out := make([]float64, len(k.values))
	copy(out, k.values)
	return out
}

// Sum returns the sum of all taps: the net recurrent gain seen by a
// spatially uniform field.
func (k *Spatial) Sum() float64 {
	var s float64
	for _, v := range k.values {
		s += v
	}
	return s
}
