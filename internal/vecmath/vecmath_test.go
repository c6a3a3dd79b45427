package vecmath

import (
	"math"
	"math/cmplx"
	"testing"
)

func TestWrap(t *testing.T) {
	tests := []struct {
		i, n, want int
	}{
		{0, 5, 0},
		{4, 5, 4},
		{5, 5, 0},
		{-1, 5, 4},
		{-6, 5, 4},
		{12, 5, 2},
	}
	for _, tt := range tests {
		if got := Wrap(tt.i, tt.n); got != tt.want {
			t.Errorf("Wrap(%d, %d) = %d, want %d", tt.i, tt.n, got, tt.want)
		}
	}
}

func TestParseMethod(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Method
		wantErr bool
	}{
		{"empty is auto", "", MethodAuto, false},
		{"auto", "auto", MethodAuto, false},
		{"direct", "Direct", MethodDirect, false},
		{"spectral", "SPECTRAL", MethodSpectral, false},
		{"fft alias", "fft", MethodSpectral, false},
		{"unknown", "winograd", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMethod(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseMethod(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseMethod(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestPlan2D_RoundTrip(t *testing.T) {
	rows, cols := 6, 10
	p := NewPlan2D(rows, cols)

	orig := make([]complex128, rows*cols)
	for i := range orig {
		orig[i] = complex(math.Sin(float64(i)), float64(i%3))
	}
	buf := make([]complex128, len(orig))
	copy(buf, orig)

	p.Forward(buf)
	p.Inverse(buf)

	for i := range orig {
		if cmplx.Abs(buf[i]-orig[i]) > 1e-12 {
			t.Fatalf("round trip [%d] = %v, want %v", i, buf[i], orig[i])
		}
	}
}

func TestPlan2D_DCComponent(t *testing.T) {
	rows, cols := 4, 5
	p := NewPlan2D(rows, cols)
	buf := make([]complex128, rows*cols)
	for i := range buf {
		buf[i] = 2
	}
	p.Forward(buf)

	if math.Abs(real(buf[0])-40) > 1e-12 {
		t.Errorf("DC coefficient = %v, want 40", buf[0])
	}
	for i := 1; i < len(buf); i++ {
		if cmplx.Abs(buf[i]) > 1e-12 {
			t.Errorf("coefficient %d = %v, want 0", i, buf[i])
		}
	}
}

// deltaKernel returns a kernel of the given half-width with a single tap
// of value v at offset (a, b).
func deltaKernel(half, a, b int, v float64) []float64 {
	side := 2*half + 1
	k := make([]float64, side*side)
	k[(a+half)*side+(b+half)] = v
	return k
}

func TestConvolve_DeltaShiftsField(t *testing.T) {
	rows, cols := 5, 7
	src := make([]float64, rows*cols)
	for i := range src {
		src[i] = float64(i)
	}

	// A unit tap at offset (1, -2) moves src[i-1, j+2] to dst[i, j].
	kernel := deltaKernel(2, 1, -2, 1)

	for _, method := range []Method{MethodDirect, MethodSpectral} {
		t.Run(string(method), func(t *testing.T) {
			conv, err := NewConvolver(method, rows, cols, kernel, 2)
			if err != nil {
				t.Fatalf("NewConvolver() error = %v", err)
			}
			dst := make([]float64, rows*cols)
			conv.Convolve(dst, src)

			for i := 0; i < rows; i++ {
				for j := 0; j < cols; j++ {
					want := src[Wrap(i-1, rows)*cols+Wrap(j+2, cols)]
					got := dst[i*cols+j]
					if math.Abs(got-want) > 1e-9 {
						t.Errorf("dst[%d,%d] = %v, want %v", i, j, got, want)
					}
				}
			}
		})
	}
}

func TestConvolve_DirectMatchesSpectral(t *testing.T) {
	tests := []struct {
		name       string
		rows, cols int
		half       int
	}{
		{"small square", 9, 9, 2},
		{"rectangular", 12, 20, 3},
		{"kernel wider than field", 5, 6, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			side := 2*tt.half + 1
			kernel := make([]float64, side*side)
			for i := range kernel {
				kernel[i] = math.Cos(float64(i)*0.37) - 0.2
			}
			src := make([]float64, tt.rows*tt.cols)
			for i := range src {
				src[i] = math.Abs(math.Sin(float64(i) * 1.3))
			}

			direct := NewDirectConvolver(tt.rows, tt.cols, kernel, tt.half)
			spectral := NewSpectralConvolver(tt.rows, tt.cols, kernel, tt.half)

			a := make([]float64, len(src))
			b := make([]float64, len(src))
			direct.Convolve(a, src)
			spectral.Convolve(b, src)

			for i := range a {
				if math.Abs(a[i]-b[i]) > 1e-9 {
					t.Fatalf("direct[%d] = %v, spectral[%d] = %v", i, a[i], i, b[i])
				}
			}
		})
	}
}

func TestConvolve_UniformFieldGivesKernelSum(t *testing.T) {
	half := 3
	side := 2*half + 1
	kernel := make([]float64, side*side)
	var sum float64
	for i := range kernel {
		kernel[i] = float64(i%5) - 1.5
		sum += kernel[i]
	}

	rows, cols := 16, 16
	src := make([]float64, rows*cols)
	for i := range src {
		src[i] = 2
	}

	conv := NewDirectConvolver(rows, cols, kernel, half)
	dst := make([]float64, len(src))
	conv.Convolve(dst, src)

	for i, v := range dst {
		if math.Abs(v-2*sum) > 1e-12 {
			t.Fatalf("dst[%d] = %v, want %v", i, v, 2*sum)
		}
	}
}

func TestNewConvolver_Errors(t *testing.T) {
	if _, err := NewConvolver(MethodDirect, 0, 4, []float64{1}, 0); err == nil {
		t.Error("expected error for zero rows")
	}
	if _, err := NewConvolver(MethodDirect, 4, 4, []float64{1, 2}, 1); err == nil {
		t.Error("expected error for wrong kernel length")
	}
	if _, err := NewConvolver(Method("bogus"), 4, 4, []float64{1}, 0); err == nil {
		t.Error("expected error for unknown method")
	}
}

func TestNewConvolver_AutoSelection(t *testing.T) {
	small, err := NewConvolver(MethodAuto, 8, 8, []float64{1}, 0)
	if err != nil {
		t.Fatalf("NewConvolver() error = %v", err)
	}
	if _, ok := small.(*DirectConvolver); !ok {
		t.Errorf("auto on 8x8 = %T, want *DirectConvolver", small)
	}

	large, err := NewConvolver(MethodAuto, 64, 64, []float64{1}, 0)
	if err != nil {
		t.Fatalf("NewConvolver() error = %v", err)
	}
	if _, ok := large.(*SpectralConvolver); !ok {
		t.Errorf("auto on 64x64 = %T, want *SpectralConvolver", large)
	}
}
