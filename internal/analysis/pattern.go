package analysis

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/utopianvision/alzheimers-navigation-research/internal/field"
	"github.com/utopianvision/alzheimers-navigation-research/internal/vecmath"
)

const flatTolerance = 1e-12

// Autocorrelation returns the circular spatial autocorrelation of g,
// normalized to 1 at zero lag and shifted so that zero lag sits at
// (rows/2, cols/2). A spatially flat field has no structure: its
// autocorrelation is 1 at the center and 0 elsewhere.
func Autocorrelation(g *field.Grid) (*field.Grid, error) {
	rows, cols := g.Dims()
	data := g.Data()
	if len(finiteValues(data)) != len(data) {
		return nil, fmt.Errorf("autocorrelation: %w", ErrNonFinite)
	}

	out, err := field.NewGrid(rows, cols)
	if err != nil {
		return nil, fmt.Errorf("autocorrelation: %w", err)
	}

	mean := floats.Sum(data) / float64(len(data))
	buf := make([]complex128, len(data))
	for i, v := range data {
		buf[i] = complex(v-mean, 0)
	}

	plan := vecmath.NewPlan2D(rows, cols)
	plan.Forward(buf)
	for i, c := range buf {
		buf[i] = complex(real(c)*real(c)+imag(c)*imag(c), 0)
	}
	plan.Inverse(buf)

	// Zero lag holds the total squared deviation. Below flatTolerance of the
	// total energy the deviations are rounding residue.
	zero := real(buf[0])
	dst := out.Data()
	cr, cc := rows/2, cols/2
	if zero <= flatTolerance*floats.Dot(data, data) {
		dst[cr*cols+cc] = 1
		return out, nil
	}
	for i := 0; i < rows; i++ {
		si := vecmath.Wrap(i+cr, rows)
		for j := 0; j < cols; j++ {
			sj := vecmath.Wrap(j+cc, cols)
			dst[si*cols+sj] = real(buf[i*cols+j]) / zero
		}
	}
	return out, nil
}

// RegularityConfig controls peak detection on an autocorrelation map.
type RegularityConfig struct {
	// Threshold is the minimum correlation for an off-center peak to count.
	// Default: 0.3.
	Threshold float64 `json:"threshold" yaml:"threshold"`

	// ExcludeRadius is the Chebyshev radius, in cells, around zero lag that
	// is ignored. Default: 2.
	ExcludeRadius int `json:"exclude_radius" yaml:"exclude_radius"`
}

// DefaultRegularityConfig returns the default peak detection settings.
func DefaultRegularityConfig() RegularityConfig {
	return RegularityConfig{Threshold: 0.3, ExcludeRadius: 2}
}

// RegularityResult scores how periodic a field is.
type RegularityResult struct {
	// Peaks is the number of off-center local maxima at or above the threshold.
	Peaks int `json:"peaks"`

	// Score is the highest off-center local maximum of the autocorrelation,
	// or 0 when there is none. Values near 1 indicate a regular lattice.
	Score float64 `json:"score"`
}

// Regularity computes the autocorrelation of g and scores its off-center
// peaks. A cell is a local maximum when no wrapped 8-neighbor exceeds it.
func Regularity(g *field.Grid, cfg RegularityConfig) (RegularityResult, error) {
	ac, err := Autocorrelation(g)
	if err != nil {
		return RegularityResult{}, fmt.Errorf("regularity: %w", err)
	}

	rows, cols := ac.Dims()
	data := ac.Data()
	cr, cc := rows/2, cols/2

	var res RegularityResult
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if abs(i-cr) <= cfg.ExcludeRadius && abs(j-cc) <= cfg.ExcludeRadius {
				continue
			}
			v := data[i*cols+j]
			if !isLocalMax(data, rows, cols, i, j) {
				continue
			}
			if v > res.Score {
				res.Score = v
			}
			if v >= cfg.Threshold {
				res.Peaks++
			}
		}
	}
	return res, nil
}

func isLocalMax(data []float64, rows, cols, i, j int) bool {
	v := data[i*cols+j]
	for di := -1; di <= 1; di++ {
		ni := vecmath.Wrap(i+di, rows)
		for dj := -1; dj <= 1; dj++ {
			if di == 0 && dj == 0 {
				continue
			}
			if data[ni*cols+vecmath.Wrap(j+dj, cols)] > v {
				return false
			}
		}
	}
	return true
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// RingSpread returns max - min over the ring; zero for a uniform profile.
func RingSpread(r *field.Ring) float64 {
	data := r.Data()
	return floats.Max(data) - floats.Min(data)
}

// PeakIndex returns the unit with the highest rate (the lowest index on ties).
func PeakIndex(r *field.Ring) int {
	return floats.MaxIdx(r.Data())
}
