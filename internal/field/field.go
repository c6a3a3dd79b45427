// Package field provides the typed firing-rate containers evolved by the
// integrators: a toroidal Grid for the 2D sheet, a periodic Ring for the
// head-direction population, and the binary survival Mask applied to both.
//
// Shapes are checked at construction. Every container owns its storage;
// Clone is the only way values travel between experiment stages.
package field

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// ErrShape is returned when dimensions are non-positive or two shapes that
// must agree do not.
var ErrShape = errors.New("field: shape mismatch")

// Shape is the row/column extent of a field. A ring of n units has shape
// {Rows: 1, Cols: n}.
type Shape struct {
	Rows int
	Cols int
}

// Len returns the number of units in the shape.
func (s Shape) Len() int { return s.Rows * s.Cols }

// Valid reports whether both dimensions are positive.
func (s Shape) Valid() bool { return s.Rows > 0 && s.Cols > 0 }

func (s Shape) String() string { return fmt.Sprintf("%dx%d", s.Rows, s.Cols) }

// Grid is a rows x cols sheet of firing rates with periodic boundaries.
// Storage is a row-major gonum dense matrix.
type Grid struct {
	m *mat.Dense
}

// NewGrid returns a zero-valued grid.
func NewGrid(rows, cols int) (*Grid, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("new grid %dx%d: %w", rows, cols, ErrShape)
	}
	return &Grid{m: mat.NewDense(rows, cols, nil)}, nil
}

// GridFromData returns a grid holding a copy of data in row-major order.
func GridFromData(rows, cols int, data []float64) (*Grid, error) {
	if rows <= 0 || cols <= 0 || len(data) != rows*cols {
		return nil, fmt.Errorf("grid from %d values as %dx%d: %w", len(data), rows, cols, ErrShape)
	}
	buf := make([]float64, len(data))
	copy(buf, data)
	return &Grid{m: mat.NewDense(rows, cols, buf)}, nil
}

// FilledGrid returns a grid with every unit set to v.
func FilledGrid(rows, cols int, v float64) (*Grid, error) {
	g, err := NewGrid(rows, cols)
	if err != nil {
		return nil, err
	}
	g.Fill(v)
	return g, nil
}

// Dims returns the number of rows and columns.
func (g *Grid) Dims() (rows, cols int) { return g.m.Dims() }

// Shape returns the grid shape.
func (g *Grid) Shape() Shape {
	r, c := g.m.Dims()
	return Shape{Rows: r, Cols: c}
}

// At returns the rate at row i, column j.
func (g *Grid) At(i, j int) float64 { return g.m.At(i, j) }

// Set sets the rate at row i, column j.
func (g *Grid) Set(i, j int, v float64) { g.m.Set(i, j, v) }

// Fill sets every unit to v.
func (g *Grid) Fill(v float64) {
	data := g.Data()
	for i := range data {
		data[i] = v
	}
}

// Data returns the backing row-major slice. Writes through it mutate the grid.
func (g *Grid) Data() []float64 { return g.m.RawMatrix().Data }

// Values returns a row-major copy of the rates.
func (g *Grid) Values() []float64 {
	out := make([]float64, len(g.Data()))
	copy(out, g.Data())
	return out
}

// Matrix returns a read-only view of the grid for consumers such as
// renderers. The view aliases the grid storage.
func (g *Grid) Matrix() mat.Matrix { return g.m }

// Clone returns a deep copy.
func (g *Grid) Clone() *Grid { return &Grid{m: mat.DenseCopyOf(g.m)} }

// CopyFrom overwrites g with the rates of src. Shapes must match.
func (g *Grid) CopyFrom(src *Grid) error {
	if g.Shape() != src.Shape() {
		return fmt.Errorf("copy %s into %s: %w", src.Shape(), g.Shape(), ErrShape)
	}
	g.m.Copy(src.m)
	return nil
}

// Equal reports whether two grids have the same shape and bit-identical values.
func (g *Grid) Equal(o *Grid) bool {
	return g.Shape() == o.Shape() && floats.Equal(g.Data(), o.Data())
}

// Ring is a periodic population of n units evenly spaced on [0, 2*pi).
type Ring struct {
	v *mat.VecDense
}

// NewRing returns a zero-valued ring of n units.
func NewRing(n int) (*Ring, error) {
	if n <= 0 {
		return nil, fmt.Errorf("new ring of %d units: %w", n, ErrShape)
	}
	return &Ring{v: mat.NewVecDense(n, nil)}, nil
}

// RingFromData returns a ring holding a copy of data.
func RingFromData(data []float64) (*Ring, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("ring from empty data: %w", ErrShape)
	}
	buf := make([]float64, len(data))
	copy(buf, data)
	return &Ring{v: mat.NewVecDense(len(buf), buf)}, nil
}

// FilledRing returns a ring with every unit set to v.
func FilledRing(n int, v float64) (*Ring, error) {
	r, err := NewRing(n)
	if err != nil {
		return nil, err
	}
	data := r.Data()
	for i := range data {
		data[i] = v
	}
	return r, nil
}

// Len returns the number of units.
func (r *Ring) Len() int { return r.v.Len() }

// Shape returns the ring shape, {1, n}.
func (r *Ring) Shape() Shape { return Shape{Rows: 1, Cols: r.v.Len()} }

// At returns the rate of unit i.
func (r *Ring) At(i int) float64 { return r.v.AtVec(i) }

// Set sets the rate of unit i.
func (r *Ring) Set(i int, v float64) { r.v.SetVec(i, v) }

// Data returns the backing slice. Writes through it mutate the ring.
func (r *Ring) Data() []float64 { return r.v.RawVector().Data }

// Values returns a copy of the rates.
func (r *Ring) Values() []float64 {
	out := make([]float64, r.Len())
	copy(out, r.Data())
	return out
}

// Clone returns a deep copy.
func (r *Ring) Clone() *Ring {
	v := mat.NewVecDense(r.Len(), nil)
	v.CopyVec(r.v)
	return &Ring{v: v}
}

// Equal reports whether two rings have the same length and bit-identical values.
func (r *Ring) Equal(o *Ring) bool {
	return r.Len() == o.Len() && floats.Equal(r.Data(), o.Data())
}
