package seed

import (
	"errors"
	"math"
	"testing"

	"github.com/utopianvision/alzheimers-navigation-research/internal/field"
)

func TestUniformGrid_Reproducible(t *testing.T) {
	a, err := New(10).UniformGrid(30, 30, 0, 1)
	if err != nil {
		t.Fatalf("UniformGrid() error = %v", err)
	}
	b, err := New(10).UniformGrid(30, 30, 0, 1)
	if err != nil {
		t.Fatalf("UniformGrid() error = %v", err)
	}
	if !a.Equal(b) {
		t.Error("same seed produced different grids")
	}

	c, err := New(11).UniformGrid(30, 30, 0, 1)
	if err != nil {
		t.Fatalf("UniformGrid() error = %v", err)
	}
	if a.Equal(c) {
		t.Error("different seeds produced identical grids")
	}
}

func TestUniformGrid_Range(t *testing.T) {
	tests := []struct {
		name   string
		lo, hi float64
	}{
		{"unit", 0, 1},
		{"shifted", -2, 3},
		{"degenerate", 0.5, 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := New(1).UniformGrid(25, 40, tt.lo, tt.hi)
			if err != nil {
				t.Fatalf("UniformGrid() error = %v", err)
			}
			if rows, cols := g.Dims(); rows != 25 || cols != 40 {
				t.Fatalf("Dims() = %dx%d, want 25x40", rows, cols)
			}
			for i, v := range g.Data() {
				if v < tt.lo || v > tt.hi {
					t.Fatalf("value %d = %v outside [%v, %v]", i, v, tt.lo, tt.hi)
				}
			}
		})
	}
}

func TestUniformGrid_Mean(t *testing.T) {
	g, err := New(3).UniformGrid(100, 100, 0, 1)
	if err != nil {
		t.Fatalf("UniformGrid() error = %v", err)
	}
	var sum float64
	for _, v := range g.Data() {
		sum += v
	}
	// Standard error of the mean is about 0.003.
	if mean := sum / 1e4; math.Abs(mean-0.5) > 0.02 {
		t.Errorf("mean = %v, want about 0.5", mean)
	}
}

func TestUniformGrid_Errors(t *testing.T) {
	if _, err := New(1).UniformGrid(0, 5, 0, 1); !errors.Is(err, field.ErrShape) {
		t.Errorf("UniformGrid(0, 5) error = %v, want ErrShape", err)
	}
	if _, err := New(1).UniformGrid(5, 5, 1, 0); err == nil {
		t.Error("expected error for inverted range")
	}
}

func TestUniformRing(t *testing.T) {
	r, err := New(4).UniformRing(64, 0, 2)
	if err != nil {
		t.Fatalf("UniformRing() error = %v", err)
	}
	if r.Len() != 64 {
		t.Fatalf("Len() = %d, want 64", r.Len())
	}
	for i, v := range r.Data() {
		if v < 0 || v > 2 {
			t.Fatalf("unit %d = %v outside [0, 2]", i, v)
		}
	}
}

func TestSurvivalMask(t *testing.T) {
	shape := field.Shape{Rows: 100, Cols: 100}
	tests := []struct {
		name      string
		deathRate float64
		wantLo    float64
		wantHi    float64
	}{
		{"no death", 0, 1, 1},
		{"thirty percent", 0.3, 0.67, 0.73},
		{"ninety percent", 0.9, 0.08, 0.12},
		{"total death", 1, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := New(10).SurvivalMask(shape, tt.deathRate)
			if err != nil {
				t.Fatalf("SurvivalMask() error = %v", err)
			}
			if m.Shape() != shape {
				t.Errorf("Shape() = %v, want %v", m.Shape(), shape)
			}
			if f := m.AliveFraction(); f < tt.wantLo || f > tt.wantHi {
				t.Errorf("AliveFraction() = %v, want in [%v, %v]", f, tt.wantLo, tt.wantHi)
			}
		})
	}
}

func TestSurvivalMask_Reproducible(t *testing.T) {
	shape := field.Shape{Rows: 20, Cols: 20}
	a, _ := New(7).SurvivalMask(shape, 0.5)
	b, _ := New(7).SurvivalMask(shape, 0.5)

	av, bv := a.Values(), b.Values()
	for i := range av {
		if av[i] != bv[i] {
			t.Fatalf("mask entry %d differs across runs with the same seed", i)
		}
	}
}

func TestSurvivalMask_Errors(t *testing.T) {
	shape := field.Shape{Rows: 4, Cols: 4}
	for _, rate := range []float64{-0.1, 1.5, math.NaN()} {
		if _, err := New(1).SurvivalMask(shape, rate); err == nil {
			t.Errorf("SurvivalMask(%v) expected error", rate)
		}
	}
	if _, err := New(1).SurvivalMask(field.Shape{}, 0.5); !errors.Is(err, field.ErrShape) {
		t.Errorf("SurvivalMask(empty) error = %v, want ErrShape", err)
	}
}
