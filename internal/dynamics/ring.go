package dynamics

import (
	"fmt"
	"iter"

	"github.com/utopianvision/alzheimers-navigation-research/internal/activation"
	"github.com/utopianvision/alzheimers-navigation-research/internal/constants"
	"github.com/utopianvision/alzheimers-navigation-research/internal/field"
	"github.com/utopianvision/alzheimers-navigation-research/internal/kernel"
)

// RingParams holds the time constants and drive of the head-direction ring.
type RingParams struct {
	// Tau is the rate time constant. Default: 2.
	Tau float64 `json:"tau" yaml:"tau"`

	// Step is the integration step h. Default: 0.1.
	Step float64 `json:"step" yaml:"step"`

	// Drive is the uniform input I0. Default: 1.
	Drive float64 `json:"drive" yaml:"drive"`
}

// DefaultRingParams returns the reference ring parameters.
func DefaultRingParams() RingParams {
	return RingParams{
		Tau:   constants.RingTau,
		Step:  constants.RingStep,
		Drive: constants.RingDrive,
	}
}

// RingNet advances a ring of n rate units coupled all-to-all through
// RingWeights. The update is
//
//	r <- (1 - h/tau)*r + (h/tau)*phi(dtheta * W r + I0)
//
// with no clamp. Like Sheet, a RingNet owns scratch space and is not safe
// for concurrent use.
type RingNet struct {
	params  RingParams
	weights *kernel.RingWeights
	input   []float64
}

// NewRingNet prepares an integrator over the given weights.
func NewRingNet(p RingParams, w *kernel.RingWeights) *RingNet {
	return &RingNet{
		params:  p,
		weights: w,
		input:   make([]float64, w.Len()),
	}
}

// Params returns the ring parameters.
func (n *RingNet) Params() RingParams { return n.params }

// Weights returns the recurrent weights.
func (n *RingNet) Weights() *kernel.RingWeights { return n.weights }

// Len returns the number of units.
func (n *RingNet) Len() int { return n.weights.Len() }

// Run integrates a copy of initial for the given number of steps.
// Units silenced by mask are zeroed before every step.
func (n *RingNet) Run(initial *field.Ring, steps int, mask *field.Mask) (*field.Ring, error) {
	if err := n.check(initial, mask); err != nil {
		return nil, err
	}
	r := initial.Clone()
	data := r.Data()
	for i := 0; i < steps; i++ {
		n.step(data, mask)
	}
	return r, nil
}

// Step advances r by one step in place.
func (n *RingNet) Step(r *field.Ring, mask *field.Mask) error {
	if err := n.check(r, mask); err != nil {
		return err
	}
	n.step(r.Data(), mask)
	return nil
}

// Trajectory yields (step, state) after every step, 1..steps, starting from
// a fresh copy of initial on each iteration. The yielded ring is reused.
func (n *RingNet) Trajectory(initial *field.Ring, steps int, mask *field.Mask) iter.Seq2[int, *field.Ring] {
	return func(yield func(int, *field.Ring) bool) {
		if n.check(initial, mask) != nil {
			return
		}
		r := initial.Clone()
		data := r.Data()
		for i := 1; i <= steps; i++ {
			n.step(data, mask)
			if !yield(i, r) {
				return
			}
		}
	}
}

func (n *RingNet) check(r *field.Ring, mask *field.Mask) error {
	if r.Len() != n.Len() {
		return fmt.Errorf("ring of %d units given field of %d: %w", n.Len(), r.Len(), field.ErrShape)
	}
	if err := mask.Check(r.Shape()); err != nil {
		return fmt.Errorf("ring: %w", err)
	}
	return nil
}

func (n *RingNet) step(r []float64, mask *field.Mask) {
	mask.Apply(r)
	n.recurrent(r)

	p := n.params
	a := p.Step / p.Tau
	keep := 1 - a
	for i, in := range n.input {
		r[i] = keep*r[i] + a*activation.Phi(in+p.Drive)
	}
}

// recurrent fills n.input with dtheta * W r. Each row is summed starting at
// the diagonal and walking forward around the ring, so rows that are
// rotations of one another see their terms in the same order: a rotationally
// symmetric state produces bit-identical inputs at every unit.
func (n *RingNet) recurrent(r []float64) {
	size := len(r)
	dtheta := n.weights.BinWidth()
	for i := 0; i < size; i++ {
		row := n.weights.Row(i)
		var sum float64
		j := i
		for k := 0; k < size; k++ {
			sum += row[j] * r[j]
			j++
			if j == size {
				j = 0
			}
		}
		n.input[i] = dtheta * sum
	}
}
