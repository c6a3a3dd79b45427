// Package analysis reduces simulated fields to the numbers a reader
// compares across stages: summary statistics, a shared display range,
// spatial autocorrelation and a pattern regularity score.
package analysis

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/utopianvision/alzheimers-navigation-research/internal/field"
)

// ErrNoFiniteValues is returned when a statistic is requested over data
// that contains no finite values.
var ErrNoFiniteValues = errors.New("analysis: no finite values")

// ErrNonFinite is returned by spectral analyses when a field contains NaN
// or infinite values.
var ErrNonFinite = errors.New("analysis: non-finite values")

// Summary describes the distribution of firing rates in a field.
// Statistics are taken over finite values only.
type Summary struct {
	Count     int     `json:"count"`
	Mean      float64 `json:"mean"`
	StdDev    float64 `json:"std_dev"`
	Min       float64 `json:"min"`
	Max       float64 `json:"max"`
	NonFinite int     `json:"non_finite"`
}

// HasNonFinite reports whether any value was NaN or infinite.
func (s Summary) HasNonFinite() bool { return s.NonFinite > 0 }

// Summarize computes a Summary over values. An input with no finite values
// yields a zero Summary carrying only the counts.
func Summarize(values []float64) Summary {
	finite := finiteValues(values)
	s := Summary{Count: len(values), NonFinite: len(values) - len(finite)}
	if len(finite) == 0 {
		return s
	}
	s.Min = floats.Min(finite)
	s.Max = floats.Max(finite)
	if len(finite) == 1 {
		s.Mean = finite[0]
		return s
	}
	s.Mean, s.StdDev = stat.PopMeanStdDev(finite, nil)
	return s
}

// Range is a closed interval of rates used to draw several fields on one
// color scale.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// DisplayRange returns [0, Q(q)] where Q is the linearly interpolated
// q-quantile of the finite values in g.
func DisplayRange(g *field.Grid, q float64) (Range, error) {
	if !(q >= 0 && q <= 1) {
		return Range{}, fmt.Errorf("display range: quantile %v outside [0, 1]", q)
	}
	sorted := finiteValues(g.Data())
	if len(sorted) == 0 {
		return Range{}, fmt.Errorf("display range: %w", ErrNoFiniteValues)
	}
	sort.Float64s(sorted)
	return Range{Min: 0, Max: stat.Quantile(q, stat.LinInterp, sorted, nil)}, nil
}

func finiteValues(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out = append(out, v)
		}
	}
	return out
}
