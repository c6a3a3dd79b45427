package kernel

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/utopianvision/alzheimers-navigation-research/internal/constants"
)

// CosineParams parameterizes the ring's recurrent weights.
type CosineParams struct {
	// Units is the number of neurons n on the ring.
	Units int `json:"units" yaml:"units"`

	// J0 is the uniform weight component (negative for global inhibition).
	J0 float64 `json:"j0" yaml:"j0"`

	// J1 is the amplitude of the cosine-tuned component.
	J1 float64 `json:"j1" yaml:"j1"`
}

// DefaultCosineParams returns the head-direction reference weights.
func DefaultCosineParams() CosineParams {
	return CosineParams{
		Units: constants.RingUnits,
		J0:    constants.RingJ0,
		J1:    constants.RingJ1,
	}
}

// AngularDistance returns the shorter distance between two angles on the
// circle, always in [0, pi].
func AngularDistance(a, b float64) float64 {
	d := math.Mod(math.Abs(a-b), 2*math.Pi)
	if d > math.Pi {
		d = 2*math.Pi - d
	}
	return d
}

// RingWeights is the explicit n x n weight matrix of the ring.
type RingWeights struct {
	params CosineParams
	dtheta float64
	w      *mat.Dense
}

// BuildRing builds W[i][j] = J0 + J1*cos(dtheta_ij), where dtheta_ij is the
// shorter angular distance between units i and j at angles k*2*pi/n.
// Distances are taken from the integer index offset, so every row is an
// exact rotation of the first and the matrix is exactly symmetric.
// Cost is O(n^2) time and memory.
func BuildRing(p CosineParams) *RingWeights {
	n := p.Units
	dtheta := 2 * math.Pi / float64(n)

	// profile[d] is the weight between units d positions apart.
	profile := make([]float64, n)
	for d := 0; d < n; d++ {
		off := d
		if n-d < off {
			off = n - d
		}
		profile[d] = p.J0 + p.J1*math.Cos(float64(off)*dtheta)
	}

	data := make([]float64, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			d := i - j
			if d < 0 {
				d = -d
			}
			data[i*n+j] = profile[d]
		}
	}

	return &RingWeights{
		params: p,
		dtheta: dtheta,
		w:      mat.NewDense(n, n, data),
	}
}

// Params returns the parameters the weights were built from.
func (r *RingWeights) Params() CosineParams { return r.params }

// Len returns the number of units.
func (r *RingWeights) Len() int { return r.params.Units }

// BinWidth returns the angular spacing dtheta = 2*pi/n.
func (r *RingWeights) BinWidth() float64 { return r.dtheta }

// Weight returns W[i][j].
func (r *RingWeights) Weight(i, j int) float64 { return r.w.At(i, j) }

// Row returns the weights onto unit i. The slice aliases the matrix and
// must not be modified.
func (r *RingWeights) Row(i int) []float64 { return r.w.RawRowView(i) }

// Matrix returns a read-only view of the weight matrix.
func (r *RingWeights) Matrix() mat.Matrix { return r.w }

// Angles returns the preferred angle of every unit, i*dtheta.
func (r *RingWeights) Angles() []float64 {
	out := make([]float64, r.params.Units)
	for i := range out {
		out[i] = float64(i) * r.dtheta
	}
	return out
}
