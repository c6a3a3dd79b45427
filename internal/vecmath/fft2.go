// Package vecmath provides the periodic array arithmetic behind the sheet
// integrator and the spatial analysis: 2D FFT plans and circular
// convolution on a torus.
package vecmath

import "gonum.org/v1/gonum/dsp/fourier"

// Plan2D computes unnormalized 2D discrete Fourier transforms of row-major
// rows x cols complex arrays, one dimension at a time.
// A Plan2D is not safe for concurrent use.
type Plan2D struct {
	rows, cols int
	rowFFT     *fourier.CmplxFFT
	colFFT     *fourier.CmplxFFT
	col        []complex128
}

// NewPlan2D returns a plan for rows x cols arrays.
func NewPlan2D(rows, cols int) *Plan2D {
	return &Plan2D{
		rows:   rows,
		cols:   cols,
		rowFFT: fourier.NewCmplxFFT(cols),
		colFFT: fourier.NewCmplxFFT(rows),
		col:    make([]complex128, rows),
	}
}

// Dims returns the array dimensions the plan was built for.
func (p *Plan2D) Dims() (rows, cols int) { return p.rows, p.cols }

// Forward transforms buf in place.
func (p *Plan2D) Forward(buf []complex128) {
	p.check(buf)
	for r := 0; r < p.rows; r++ {
		row := buf[r*p.cols : (r+1)*p.cols]
		p.rowFFT.Coefficients(row, row)
	}
	for c := 0; c < p.cols; c++ {
		p.gather(buf, c)
		p.colFFT.Coefficients(p.col, p.col)
		p.scatter(buf, c)
	}
}

// Inverse transforms buf in place and divides by rows*cols, so that
// Inverse(Forward(x)) == x up to rounding.
func (p *Plan2D) Inverse(buf []complex128) {
	p.check(buf)
	for c := 0; c < p.cols; c++ {
		p.gather(buf, c)
		p.colFFT.Sequence(p.col, p.col)
		p.scatter(buf, c)
	}
	for r := 0; r < p.rows; r++ {
		row := buf[r*p.cols : (r+1)*p.cols]
		p.rowFFT.Sequence(row, row)
	}
	scale := complex(1/float64(p.rows*p.cols), 0)
	for i := range buf {
		buf[i] *= scale
	}
}

func (p *Plan2D) check(buf []complex128) {
	if len(buf) != p.rows*p.cols {
		panic("vecmath: buffer length does not match plan")
	}
}

func (p *Plan2D) gather(buf []complex128, c int) {
	for r := 0; r < p.rows; r++ {
		p.col[r] = buf[r*p.cols+c]
	}
}

func (p *Plan2D) scatter(buf []complex128, c int) {
	for r := 0; r < p.rows; r++ {
		buf[r*p.cols+c] = p.col[r]
	}
}

// Wrap returns i modulo n in [0, n).
func Wrap(i, n int) int {
	i %= n
	if i < 0 {
		i += n
	}
	return i
}
