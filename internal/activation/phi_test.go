package activation

import (
	"math"
	"testing"
)

func TestPhi(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{"positive", 2.5, 2.5},
		{"zero", 0, 0},
		{"negative", -3, 0},
		{"tiny negative", -1e-300, 0},
		{"large", 1e12, 1e12},
		{"negative infinity", math.Inf(-1), 0},
		{"NaN", math.NaN(), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Phi(tt.in); got != tt.want {
				t.Errorf("Phi(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestPhiTo(t *testing.T) {
	src := []float64{-1, 0, 1, -0.5, 4}
	want := []float64{0, 0, 1, 0, 4}

	got := PhiTo(nil, src)
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("PhiTo()[%d] = %v, want %v", i, got[i], want[i])
		}
	}

	// Source must be untouched when dst is distinct.
	if src[0] != -1 || src[3] != -0.5 {
		t.Errorf("PhiTo mutated src: %v", src)
	}
}

func TestPhiTo_InPlace(t *testing.T) {
	buf := []float64{-2, 3, -4}
	PhiTo(buf, buf)
	if buf[0] != 0 || buf[1] != 3 || buf[2] != 0 {
		t.Errorf("in-place PhiTo = %v, want [0 3 0]", buf)
	}
}

func TestPhiTo_LengthMismatchPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic on length mismatch")
		}
	}()
	PhiTo(make([]float64, 2), make([]float64, 3))
}
