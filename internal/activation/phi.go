// Package activation provides the rate nonlinearity shared by the sheet and
// ring integrators.
package activation

// Phi is the rectified-linear firing-rate function max(x, 0). NaN maps to
// 0 rather than propagating.
func Phi(x float64) float64 {
	if x > 0 {
		return x
	}
	return 0
}

// PhiTo applies Phi elementwise to src, storing the result in dst and
// returning it. Arrays of any shape are passed in their flattened form.
// If dst is nil a new slice is allocated. dst and src may be the same slice.
func PhiTo(dst, src []float64) []float64 {
	if dst == nil {
		dst = make([]float64, len(src))
	}
	if len(dst) != len(src) {
		panic("activation: length mismatch")
	}
	for i, v := range src {
		dst[i] = Phi(v)
	}
	return dst
}
