// Package dynamics integrates the leaky, rectified rate equation
//
//	tau * dR/dt = -R + phi(W (x) R + I)
//
// for the 2D sheet (periodic convolution, explicit Euler, stability clamp)
// and the 1D ring (dense weights, exponential-Euler form, no clamp).
//
// Integrators are deterministic folds over an initial field: they hold no
// randomness, and Run never modifies the caller's field.
package dynamics

import (
	"fmt"
	"iter"

	"gonum.org/v1/gonum/floats"

	"github.com/utopianvision/alzheimers-navigation-research/internal/activation"
	"github.com/utopianvision/alzheimers-navigation-research/internal/constants"
	"github.com/utopianvision/alzheimers-navigation-research/internal/field"
	"github.com/utopianvision/alzheimers-navigation-research/internal/kernel"
	"github.com/utopianvision/alzheimers-navigation-research/internal/vecmath"
)

// SheetParams holds the time constants, drive and clamp of the 2D sheet.
type SheetParams struct {
	// Tau is the rate time constant. Default: 20.
	Tau float64 `json:"tau" yaml:"tau"`

	// Dt is the Euler step. Default: 0.2. It should be small relative to
	// Tau; marginal choices are absorbed by the clamp, not rejected.
	Dt float64 `json:"dt" yaml:"dt"`

	// Drive is the uniform external input I_ext. Default: 4.
	Drive float64 `json:"drive" yaml:"drive"`

	// ClampMin and ClampMax bound every unit after each step. Default: [0, 20].
	ClampMin float64 `json:"clamp_min" yaml:"clamp_min"`
	ClampMax float64 `json:"clamp_max" yaml:"clamp_max"`
}

// DefaultSheetParams returns the reference sheet parameters.
func DefaultSheetParams() SheetParams {
	return SheetParams{
		Tau:      constants.SheetTau,
		Dt:       constants.SheetDt,
		Drive:    constants.SheetDrive,
		ClampMin: constants.ClampMin,
		ClampMax: constants.ClampMax,
	}
}

// Sheet advances a toroidal rows x cols grid under one fixed kernel.
// A Sheet keeps convolution scratch buffers and is not safe for concurrent
// use; build one per goroutine.
type Sheet struct {
	params SheetParams
	kernel *kernel.Spatial
	shape  field.Shape
	conv   vecmath.Convolver
	input  []float64
}

// NewSheet prepares an integrator for fields of the given shape.
func NewSheet(p SheetParams, k *kernel.Spatial, shape field.Shape, method vecmath.Method) (*Sheet, error) {
	if !shape.Valid() {
		return nil, fmt.Errorf("new sheet %s: %w", shape, field.ErrShape)
	}
	conv, err := vecmath.NewConvolver(method, shape.Rows, shape.Cols, k.Values(), k.HalfWidth())
	if err != nil {
		return nil, fmt.Errorf("new sheet: %w", err)
	}
	return &Sheet{
		params: p,
		kernel: k,
		shape:  shape,
		conv:   conv,
		input:  make([]float64, shape.Len()),
	}, nil
}

// Params returns the sheet parameters.
func (s *Sheet) Params() SheetParams { return s.params }

// Kernel returns the connectivity kernel.
func (s *Sheet) Kernel() *kernel.Spatial { return s.kernel }

// Shape returns the field shape the sheet integrates.
func (s *Sheet) Shape() field.Shape { return s.shape }

// Run integrates a copy of initial for the given number of steps with an
// optional survival mask and returns the final field. Non-positive step
// counts return an unmodified copy.
func (s *Sheet) Run(initial *field.Grid, steps int, mask *field.Mask) (*field.Grid, error) {
	if err := s.check(initial, mask); err != nil {
		return nil, err
	}
	r := initial.Clone()
	data := r.Data()
	for i := 0; i < steps; i++ {
		s.step(data, mask)
	}
	return r, nil
}

// Step advances g by one step in place.
func (s *Sheet) Step(g *field.Grid, mask *field.Mask) error {
	if err := s.check(g, mask); err != nil {
		return err
	}
	s.step(g.Data(), mask)
	return nil
}

// Trajectory returns the fold as a restartable sequence: each iteration
// starts from a fresh copy of initial and yields (step, state) after every
// step, 1..steps. The yielded grid is reused between steps; Clone it to
// keep a snapshot. Shape errors yield nothing.
func (s *Sheet) Trajectory(initial *field.Grid, steps int, mask *field.Mask) iter.Seq2[int, *field.Grid] {
	return func(yield func(int, *field.Grid) bool) {
		if s.check(initial, mask) != nil {
			return
		}
		r := initial.Clone()
		data := r.Data()
		for i := 1; i <= steps; i++ {
			s.step(data, mask)
			if !yield(i, r) {
				return
			}
		}
	}
}

func (s *Sheet) check(g *field.Grid, mask *field.Mask) error {
	if g.Shape() != s.shape {
		return fmt.Errorf("sheet %s given field %s: %w", s.shape, g.Shape(), field.ErrShape)
	}
	if err := mask.Check(s.shape); err != nil {
		return fmt.Errorf("sheet: %w", err)
	}
	return nil
}

// step performs, in order: mask, periodic convolution, drive, phi, Euler update,
// clamp.
func (s *Sheet) step(r []float64, mask *field.Mask) {
	p := s.params

	mask.Apply(r)

	s.conv.Convolve(s.input, r)
	floats.AddConst(p.Drive, s.input)
	activation.PhiTo(s.input, s.input)

	for i, rate := range s.input {
		dr := (-r[i] + rate) / p.Tau
		v := r[i] + p.Dt*dr
		r[i] = clamp(v, p.ClampMin, p.ClampMax)
	}
}

// clamp bounds v to [lo, hi]. Unlike a plain clip, which passes NaN
// through, NaN maps to lo so a non-finite value never survives a step.
func clamp(v, lo, hi float64) float64 {
	if v > hi {
		return hi
	}
	if v >= lo {
		return v
	}
	return lo
}
