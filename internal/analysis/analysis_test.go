package analysis

import (
	"errors"
	"math"
	"testing"

	"golang.org/x/exp/rand"

	"github.com/utopianvision/alzheimers-navigation-research/internal/field"
)

func mustGrid(t *testing.T, rows, cols int, fn func(i, j int) float64) *field.Grid {
	t.Helper()
	g, err := field.NewGrid(rows, cols)
	if err != nil {
		t.Fatalf("NewGrid() error = %v", err)
	}
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			g.Set(i, j, fn(i, j))
		}
	}
	return g
}

func stripes(period float64) func(i, j int) float64 {
	return func(_, j int) float64 { return math.Cos(2 * math.Pi * float64(j) / period) }
}

func TestSummarize(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   Summary
	}{
		{
			name:   "empty",
			values: nil,
			want:   Summary{},
		},
		{
			name:   "single value",
			values: []float64{3},
			want:   Summary{Count: 1, Mean: 3, Min: 3, Max: 3},
		},
		{
			name:   "population statistics",
			values: []float64{1, 2, 3, 4},
			want:   Summary{Count: 4, Mean: 2.5, StdDev: math.Sqrt(1.25), Min: 1, Max: 4},
		},
		{
			name:   "non-finite values are counted and skipped",
			values: []float64{2, math.NaN(), 4, math.Inf(1)},
			want:   Summary{Count: 4, Mean: 3, StdDev: 1, Min: 2, Max: 4, NonFinite: 2},
		},
		{
			name:   "only non-finite",
			values: []float64{math.NaN(), math.Inf(-1)},
			want:   Summary{Count: 2, NonFinite: 2},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Summarize(tt.values)
			if got.Count != tt.want.Count || got.NonFinite != tt.want.NonFinite {
				t.Errorf("counts = (%d, %d), want (%d, %d)", got.Count, got.NonFinite, tt.want.Count, tt.want.NonFinite)
			}
			for _, f := range []struct {
				name      string
				got, want float64
			}{
				{"Mean", got.Mean, tt.want.Mean},
				{"StdDev", got.StdDev, tt.want.StdDev},
				{"Min", got.Min, tt.want.Min},
				{"Max", got.Max, tt.want.Max},
			} {
				if math.Abs(f.got-f.want) > 1e-12 {
					t.Errorf("%s = %v, want %v", f.name, f.got, f.want)
				}
			}
			if got.HasNonFinite() != (tt.want.NonFinite > 0) {
				t.Errorf("HasNonFinite() = %v", got.HasNonFinite())
			}
		})
	}
}

func TestDisplayRange(t *testing.T) {
	g := mustGrid(t, 10, 100, func(i, j int) float64 { return float64(i*100 + j) })

	tests := []struct {
		name   string
		q      float64
		lo, hi float64
	}{
		{"maximum", 1, 999, 999},
		{"minimum", 0, 0, 0},
		{"99th percentile", 0.99, 980, 999},
		{"median", 0.5, 495, 505},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := DisplayRange(g, tt.q)
			if err != nil {
				t.Fatalf("DisplayRange() error = %v", err)
			}
			if r.Min != 0 {
				t.Errorf("Min = %v, want 0", r.Min)
			}
			if r.Max < tt.lo || r.Max > tt.hi {
				t.Errorf("Max = %v, want in [%v, %v]", r.Max, tt.lo, tt.hi)
			}
		})
	}
}

func TestDisplayRange_Errors(t *testing.T) {
	g := mustGrid(t, 2, 2, func(i, j int) float64 { return 1 })
	for _, q := range []float64{-0.1, 1.1, math.NaN()} {
		if _, err := DisplayRange(g, q); err == nil {
			t.Errorf("DisplayRange(q=%v) expected error", q)
		}
	}

	nan := mustGrid(t, 2, 2, func(i, j int) float64 { return math.NaN() })
	if _, err := DisplayRange(nan, 0.5); !errors.Is(err, ErrNoFiniteValues) {
		t.Errorf("DisplayRange(all NaN) error = %v, want ErrNoFiniteValues", err)
	}
}

func TestAutocorrelation_Stripes(t *testing.T) {
	g := mustGrid(t, 16, 16, stripes(8))

	ac, err := Autocorrelation(g)
	if err != nil {
		t.Fatalf("Autocorrelation() error = %v", err)
	}

	tests := []struct {
		name string
		i, j int
		want float64
	}{
		{"zero lag", 8, 8, 1},
		{"half period", 8, 12, -1},
		{"full period", 8, 0, 1},
		{"quarter period", 8, 10, 0},
		{"along stripes", 3, 8, 1},
	}
	for _, tt := range tests {
		if got := ac.At(tt.i, tt.j); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("%s: At(%d,%d) = %v, want %v", tt.name, tt.i, tt.j, got, tt.want)
		}
	}
}

func TestAutocorrelation_Flat(t *testing.T) {
	g := mustGrid(t, 9, 12, func(i, j int) float64 { return 0.1 })

	ac, err := Autocorrelation(g)
	if err != nil {
		t.Fatalf("Autocorrelation() error = %v", err)
	}
	for i := 0; i < 9; i++ {
		for j := 0; j < 12; j++ {
			want := 0.0
			if i == 4 && j == 6 {
				want = 1
			}
			if got := ac.At(i, j); got != want {
				t.Fatalf("At(%d,%d) = %v, want %v", i, j, got, want)
			}
		}
	}
}

func TestAutocorrelation_NonFinite(t *testing.T) {
	g := mustGrid(t, 4, 4, func(i, j int) float64 { return 1 })
	g.Set(2, 2, math.Inf(1))
	if _, err := Autocorrelation(g); !errors.Is(err, ErrNonFinite) {
		t.Errorf("Autocorrelation() error = %v, want ErrNonFinite", err)
	}
}

func TestRegularity(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	noise := mustGrid(t, 64, 64, func(i, j int) float64 { return rng.Float64() })

	spots := mustGrid(t, 48, 48, func(i, j int) float64 {
		x := 2 * math.Pi * float64(i) / 12
		y := 2 * math.Pi * float64(j) / 12
		return math.Max(math.Cos(x)+math.Cos(y), 0)
	})

	tests := []struct {
		name      string
		g         *field.Grid
		wantPeaks bool
		minScore  float64
		maxScore  float64
	}{
		{"stripes", mustGrid(t, 32, 32, stripes(8)), true, 0.99, 1.01},
		{"square lattice", spots, true, 0.99, 1.01},
		{"white noise", noise, false, 0, 0.3},
		{"flat", mustGrid(t, 16, 16, func(i, j int) float64 { return 2 }), false, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Regularity(tt.g, DefaultRegularityConfig())
			if err != nil {
				t.Fatalf("Regularity() error = %v", err)
			}
			if (got.Peaks > 0) != tt.wantPeaks {
				t.Errorf("Peaks = %d, wantPeaks %v", got.Peaks, tt.wantPeaks)
			}
			if got.Score < tt.minScore || got.Score > tt.maxScore {
				t.Errorf("Score = %v, want in [%v, %v]", got.Score, tt.minScore, tt.maxScore)
			}
		})
	}
}

func TestRingSpreadAndPeak(t *testing.T) {
	uniform, _ := field.FilledRing(16, 0.7)
	if got := RingSpread(uniform); got != 0 {
		t.Errorf("RingSpread(uniform) = %v, want 0", got)
	}

	bump, _ := field.RingFromData([]float64{0, 1, 4, 2, 0, 0})
	if got := RingSpread(bump); got != 4 {
		t.Errorf("RingSpread(bump) = %v, want 4", got)
	}
	if got := PeakIndex(bump); got != 2 {
		t.Errorf("PeakIndex(bump) = %d, want 2", got)
	}
	if got := PeakIndex(uniform); got != 0 {
		t.Errorf("PeakIndex(uniform) = %d, want 0 (first on ties)", got)
	}
}
