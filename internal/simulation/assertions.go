package simulation

import (
	"math"
	"testing"

	"github.com/utopianvision/alzheimers-navigation-research/internal/analysis"
)

// AssertFieldBounded asserts that every unit of every stage lies within
// [min, max] and is finite.
func AssertFieldBounded(t *testing.T, report *Report, min, max float64) {
	t.Helper()
	for _, st := range report.Stages {
		s := st.Summary()
		if s.NonFinite > 0 {
			t.Errorf("AssertFieldBounded: stage %s: %d non-finite units", st.Name, s.NonFinite)
			continue
		}
		if s.Min < min || s.Max > max {
			t.Errorf("AssertFieldBounded: stage %s: range [%.4f, %.4f] not in [%.4f, %.4f]", st.Name, s.Min, s.Max, min, max)
		}
	}
}

// AssertStageCount asserts the number of recorded stages.
func AssertStageCount(t *testing.T, report *Report, want int) {
	t.Helper()
	if len(report.Stages) != want {
		t.Fatalf("AssertStageCount: %d stages, want %d", len(report.Stages), want)
	}
}

// AssertRegularityAtLeast asserts that a stage's autocorrelation score
// reaches minScore.
func AssertRegularityAtLeast(t *testing.T, report *Report, stage string, minScore float64) {
	t.Helper()
	reg, ok := stageRegularity(t, report, stage)
	if !ok {
		return
	}
	if score := reg.Score; score < minScore {
		t.Errorf("AssertRegularityAtLeast: stage %s: regularity %.4f < %.4f", stage, score, minScore)
	}
}

// AssertRegularityDecreases asserts that the grid pattern degrades across
// the given stages. Between consecutive stages the number of above-threshold
// autocorrelation peaks must not grow, and while the later stage still has
// peaks its score must not rise. Once no peaks remain the score is
// sub-threshold noise and only the overall trend is checked: the last stage
// must score below the first.
func AssertRegularityDecreases(t *testing.T, report *Report, stages ...string) {
	t.Helper()
	if len(stages) < 2 {
		t.Fatal("AssertRegularityDecreases: need at least two stages")
	}
	results := make([]analysis.RegularityResult, len(stages))
	for i, name := range stages {
		reg, ok := stageRegularity(t, report, name)
		if !ok {
			return
		}
		results[i] = reg
	}
	for i := 1; i < len(stages); i++ {
		prev, cur := results[i-1], results[i]
		if cur.Peaks > prev.Peaks {
			t.Errorf("AssertRegularityDecreases: peaks rose from %d (%s) to %d (%s)", prev.Peaks, stages[i-1], cur.Peaks, stages[i])
		}
		if cur.Peaks > 0 && cur.Score > prev.Score {
			t.Errorf("AssertRegularityDecreases: score rose from %.4f (%s) to %.4f (%s)", prev.Score, stages[i-1], cur.Score, stages[i])
		}
	}
	first, last := results[0], results[len(results)-1]
	if last.Score >= first.Score {
		t.Errorf("AssertRegularityDecreases: %s=%.4f, %s=%.4f", stages[0], first.Score, stages[len(stages)-1], last.Score)
	}
}

// AssertMeanDecreases asserts that the mean firing rate strictly falls
// from each stage to the next.
func AssertMeanDecreases(t *testing.T, report *Report, stages ...string) {
	t.Helper()
	if len(stages) < 2 {
		t.Fatal("AssertMeanDecreases: need at least two stages")
	}
	prev, ok := report.Stage(stages[0])
	if !ok {
		t.Errorf("AssertMeanDecreases: stage %s not found", stages[0])
		return
	}
	for _, name := range stages[1:] {
		cur, ok := report.Stage(name)
		if !ok {
			t.Errorf("AssertMeanDecreases: stage %s not found", name)
			return
		}
		if p, c := prev.Summary().Mean, cur.Summary().Mean; c >= p {
			t.Errorf("AssertMeanDecreases: mean rose from %.4f (%s) to %.4f (%s)", p, prev.Name, c, cur.Name)
		}
		prev = cur
	}
}

// AssertAliveFraction asserts that a stage's mask kept a fraction of units
// within tol of want.
func AssertAliveFraction(t *testing.T, report *Report, stage string, want, tol float64) {
	t.Helper()
	st, ok := report.Stage(stage)
	if !ok {
		t.Errorf("AssertAliveFraction: stage %s not found", stage)
		return
	}
	if math.Abs(st.AliveFraction-want) > tol {
		t.Errorf("AssertAliveFraction: stage %s: alive %.4f, want %.4f +/- %.4f", stage, st.AliveFraction, want, tol)
	}
}

// AssertRingUniform asserts that every snapshot's profile spread is at
// most tol.
func AssertRingUniform(t *testing.T, report *RingReport, tol float64) {
	t.Helper()
	for _, s := range report.Snapshots {
		if spread := s.Spread(); spread > tol || math.IsNaN(spread) {
			t.Errorf("AssertRingUniform: %s: spread %.3g > %.3g", s.Label, spread, tol)
		}
	}
}

// AssertRingPeakAt asserts that the last snapshot peaks at unit want.
func AssertRingPeakAt(t *testing.T, report *RingReport, want int) {
	t.Helper()
	if len(report.Snapshots) == 0 {
		t.Fatal("AssertRingPeakAt: no snapshots")
	}
	last := report.Snapshots[len(report.Snapshots)-1]
	if got := last.Peak(); got != want {
		t.Errorf("AssertRingPeakAt: %s: peak at unit %d, want %d", last.Label, got, want)
	}
}

func stageRegularity(t *testing.T, report *Report, stage string) (analysis.RegularityResult, bool) {
	t.Helper()
	st, ok := report.Stage(stage)
	if !ok {
		t.Errorf("stage %s not found", stage)
		return analysis.RegularityResult{}, false
	}
	reg, err := st.Regularity(analysis.DefaultRegularityConfig())
	if err != nil {
		t.Errorf("stage %s: regularity: %v", stage, err)
		return analysis.RegularityResult{}, false
	}
	return reg, true
}
