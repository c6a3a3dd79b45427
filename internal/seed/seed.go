// Package seed generates the random inputs of an experiment: the bounded
// uniform noise that seeds pattern formation and the Bernoulli survival
// masks that model cell death.
//
// All randomness in the engine flows through a Generator. Integrators never
// draw numbers themselves, so a fixed seed and a fixed draw order reproduce
// a run bit for bit.
package seed

import (
	"fmt"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/utopianvision/alzheimers-navigation-research/internal/field"
)

// Generator draws initial conditions and masks from one random stream.
// It is not safe for concurrent use.
type Generator struct {
	src rand.Source
}

// New returns a Generator seeded with seed.
func New(seed uint64) *Generator {
	return &Generator{src: rand.NewSource(seed)}
}

// UniformGrid returns a rows x cols grid of independent draws from [lo, hi).
func (g *Generator) UniformGrid(rows, cols int, lo, hi float64) (*field.Grid, error) {
	if hi < lo {
		return nil, fmt.Errorf("uniform grid: empty range [%v, %v)", lo, hi)
	}
	grid, err := field.NewGrid(rows, cols)
	if err != nil {
		return nil, fmt.Errorf("uniform grid: %w", err)
	}
	u := distuv.Uniform{Min: lo, Max: hi, Src: g.src}
	data := grid.Data()
	for i := range data {
		data[i] = u.Rand()
	}
	return grid, nil
}

// UniformRing returns n independent draws from [lo, hi) as a ring field.
func (g *Generator) UniformRing(n int, lo, hi float64) (*field.Ring, error) {
	if hi < lo {
		return nil, fmt.Errorf("uniform ring: empty range [%v, %v)", lo, hi)
	}
	r, err := field.NewRing(n)
	if err != nil {
		return nil, fmt.Errorf("uniform ring: %w", err)
	}
	u := distuv.Uniform{Min: lo, Max: hi, Src: g.src}
	data := r.Data()
	for i := range data {
		data[i] = u.Rand()
	}
	return r, nil
}

// SurvivalMask draws a mask in which every unit independently survives
// with probability 1-deathRate.
func (g *Generator) SurvivalMask(shape field.Shape, deathRate float64) (*field.Mask, error) {
	if !(deathRate >= 0 && deathRate <= 1) {
		return nil, fmt.Errorf("survival mask: death rate %v outside [0, 1]", deathRate)
	}
	if !shape.Valid() {
		return nil, fmt.Errorf("survival mask %s: %w", shape, field.ErrShape)
	}
	b := distuv.Bernoulli{P: 1 - deathRate, Src: g.src}
	alive := make([]float64, shape.Len())
	for i := range alive {
		alive[i] = b.Rand()
	}
	return field.NewMask(shape, alive)
}
