package vecmath

import (
	"fmt"
	"strings"
)

// Method selects how the periodic convolution is evaluated.
type Method string

const (
	// MethodAuto picks MethodSpectral for grids of at least AutoSpectralMin
	// units and MethodDirect otherwise.
	MethodAuto Method = "auto"

	// MethodDirect sums kernel taps explicitly: O(N^2 * w^2) per call.
	MethodDirect Method = "direct"

	// MethodSpectral multiplies 2D FFTs: O(N^2 log N) per call.
	MethodSpectral Method = "spectral"
)

// AutoSpectralMin is the grid size (rows*cols) from which MethodAuto
// switches to the spectral path.
const AutoSpectralMin = 32 * 32

// ParseMethod maps a method name to a Method (case-insensitive).
// The empty string maps to MethodAuto.
func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return MethodAuto, nil
	case "direct":
		return MethodDirect, nil
	case "spectral", "fft":
		return MethodSpectral, nil
	default:
		return "", fmt.Errorf("unknown convolution method %q (valid: auto, direct, spectral)", s)
	}
}

// Convolver computes the circular convolution of a row-major field with a
// fixed square kernel on a torus:
//
//	dst[i,j] = sum_{a,b in [-w,w]} K[a,b] * src[(i-a) mod rows, (j-b) mod cols]
//
// dst and src must both have rows*cols elements and must not alias.
// Implementations keep scratch state and are not safe for concurrent use.
type Convolver interface {
	Convolve(dst, src []float64)
}

// NewConvolver returns a convolver for rows x cols fields and the given
// kernel, stored row-major with side 2*half+1 and the zero offset at
// (half, half).
func NewConvolver(method Method, rows, cols int, kernel []float64, half int) (Convolver, error) {
	side := 2*half + 1
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("convolver for %dx%d field: non-positive dimensions", rows, cols)
	}
	if half < 0 || len(kernel) != side*side {
		return nil, fmt.Errorf("convolver kernel has %d taps, want %d", len(kernel), side*side)
	}

	if method == MethodAuto {
		method = MethodDirect
		if rows*cols >= AutoSpectralMin {
			method = MethodSpectral
		}
	}

	switch method {
	case MethodDirect:
		return NewDirectConvolver(rows, cols, kernel, half), nil
	case MethodSpectral:
		return NewSpectralConvolver(rows, cols, kernel, half), nil
	default:
		return nil, fmt.Errorf("unknown convolution method %q", method)
	}
}

// DirectConvolver evaluates the convolution tap by tap with precomputed
// wrapped indices. Kernels wider than the field wrap around more than once.
type DirectConvolver struct {
	rows, cols int
	half, side int
	kernel     []float64
	rowIdx     []int // rowIdx[i*side+a] = (i - (a-half)) mod rows
	colIdx     []int // colIdx[j*side+b] = (j - (b-half)) mod cols
}

// NewDirectConvolver returns a direct-summation convolver.
func NewDirectConvolver(rows, cols int, kernel []float64, half int) *DirectConvolver {
	side := 2*half + 1
	k := make([]float64, len(kernel))
	copy(k, kernel)

	rowIdx := make([]int, rows*side)
	for i := 0; i < rows; i++ {
		for a := 0; a < side; a++ {
			rowIdx[i*side+a] = Wrap(i-(a-half), rows)
		}
	}
	colIdx := make([]int, cols*side)
	for j := 0; j < cols; j++ {
		for b := 0; b < side; b++ {
			colIdx[j*side+b] = Wrap(j-(b-half), cols)
		}
	}

	return &DirectConvolver{
		rows:   rows,
		cols:   cols,
		half:   half,
		side:   side,
		kernel: k,
		rowIdx: rowIdx,
		colIdx: colIdx,
	}
}

// Convolve implements Convolver.
func (c *DirectConvolver) Convolve(dst, src []float64) {
	side := c.side
	for i := 0; i < c.rows; i++ {
		rowTaps := c.rowIdx[i*side : (i+1)*side]
		for j := 0; j < c.cols; j++ {
			colTaps := c.colIdx[j*side : (j+1)*side]
			var sum float64
			for a, ri := range rowTaps {
				krow := c.kernel[a*side : (a+1)*side]
				srow := src[ri*c.cols : (ri+1)*c.cols]
				for b, cj := range colTaps {
					sum += krow[b] * srow[cj]
				}
			}
			dst[i*c.cols+j] = sum
		}
	}
}

// SpectralConvolver evaluates the convolution as a pointwise product of
// 2D spectra. The kernel spectrum is computed once at construction.
type SpectralConvolver struct {
	plan     *Plan2D
	spectrum []complex128
	buf      []complex128
}

// NewSpectralConvolver returns an FFT-based convolver.
func NewSpectralConvolver(rows, cols int, kernel []float64, half int) *SpectralConvolver {
	side := 2*half + 1
	plan := NewPlan2D(rows, cols)

	// Embed the kernel on the torus: offset (a, b) lands at
	// (a mod rows, b mod cols). Taps that alias onto the same cell add up,
	// matching the direct path.
	spectrum := make([]complex128, rows*cols)
	for a := -half; a <= half; a++ {
		for b := -half; b <= half; b++ {
			v := kernel[(a+half)*side+(b+half)]
			idx := Wrap(a, rows)*cols + Wrap(b, cols)
			spectrum[idx] += complex(v, 0)
		}
	}
	plan.Forward(spectrum)

	return &SpectralConvolver{
		plan:     plan,
		spectrum: spectrum,
		buf:      make([]complex128, rows*cols),
	}
}

// Convolve implements Convolver.
func (c *SpectralConvolver) Convolve(dst, src []float64) {
	for i, v := range src {
		c.buf[i] = complex(v, 0)
	}
	c.plan.Forward(c.buf)
	for i, s := range c.spectrum {
		c.buf[i] *= s
	}
	c.plan.Inverse(c.buf)
	for i, v := range c.buf {
		dst[i] = real(v)
	}
}
