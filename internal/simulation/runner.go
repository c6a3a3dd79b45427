package simulation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/utopianvision/alzheimers-navigation-research/internal/analysis"
	"github.com/utopianvision/alzheimers-navigation-research/internal/dynamics"
	"github.com/utopianvision/alzheimers-navigation-research/internal/field"
	"github.com/utopianvision/alzheimers-navigation-research/internal/kernel"
	"github.com/utopianvision/alzheimers-navigation-research/internal/logging"
	"github.com/utopianvision/alzheimers-navigation-research/internal/vecmath"
)

// ErrInvalidExperiment is wrapped by every configuration error detected
// before the first integration step.
var ErrInvalidExperiment = errors.New("invalid experiment")

// Runner executes experiments. A Runner holds no per-experiment state and
// may run several experiments concurrently.
type Runner struct {
	logger  *slog.Logger
	trace   *logging.TraceLogger
	workers int
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the operational logger. Default: discard.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithTrace sets the JSONL trace. A nil trace disables tracing.
func WithTrace(t *logging.TraceLogger) Option {
	return func(r *Runner) { r.trace = t }
}

// WithWorkers bounds the number of stages integrated at once.
// Non-positive values select runtime.GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.workers = n
		}
	}
}

// NewRunner creates a runner.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		logger:  logging.Discard(),
		workers: runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Workers returns the stage concurrency bound.
func (r *Runner) Workers() int { return r.workers }

// stagePlan is a validated stage with its resolved parent and mask.
type stagePlan struct {
	index  int
	stage  Stage
	parent int // -1: the experiment's initial field
	mask   *field.Mask
}

// Run validates exp, draws its masks, integrates every stage and returns
// the results in configuration order.
//
// A stage waits only for the stage it starts from, so stages branching from
// one baseline run concurrently, bounded by the worker count. Cancellation
// of ctx is observed before each stage starts; a running stage completes.
func (r *Runner) Run(ctx context.Context, exp Experiment) (*Report, error) {
	method, err := vecmath.ParseMethod(string(exp.Method))
	if err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrInvalidExperiment, exp.Name, err)
	}
	exp.Method = method

	plans, err := r.plan(exp)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	r.logger.Info("experiment started",
		"experiment", exp.Name,
		"stages", len(plans),
		"shape", exp.Initial.Shape().String(),
		"workers", r.workers,
	)

	results := make([]StageResult, len(plans))
	done := make([]chan struct{}, len(plans))
	for i := range done {
		done[i] = make(chan struct{})
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for _, p := range plans {
		g.Go(func() error {
			initial := exp.Initial
			if p.parent >= 0 {
				select {
				case <-done[p.parent]:
				case <-gctx.Done():
					return gctx.Err()
				}
				initial = results[p.parent].field
			}
			if err := gctx.Err(); err != nil {
				return err
			}

			res, err := r.runStage(gctx, exp, p, initial)
			if err != nil {
				return err
			}
			results[p.index] = res
			close(done[p.index])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("experiment %q: %w", exp.Name, err)
	}

	display, err := displayRange(exp, results)
	if err != nil {
		return nil, fmt.Errorf("experiment %q: %w", exp.Name, err)
	}

	report := &Report{
		Experiment: exp.Name,
		Stages:     results,
		Display:    display,
		Duration:   time.Since(start),
	}
	r.logger.Info("experiment finished",
		"experiment", exp.Name,
		"duration", report.Duration,
		"display_max", display.Max,
	)
	return report, nil
}

func (r *Runner) runStage(ctx context.Context, exp Experiment, p stagePlan, initial *field.Grid) (StageResult, error) {
	st := p.stage
	kp := exp.kernelParams(st)

	sheet, err := dynamics.NewSheet(exp.Sheet, kernel.BuildSpatial(kp), initial.Shape(), exp.Method)
	if err != nil {
		return StageResult{}, fmt.Errorf("stage %q: %w", st.Name, err)
	}

	alive := 1.0
	if p.mask != nil {
		alive = p.mask.AliveFraction()
	}
	r.logger.Debug("stage started",
		"experiment", exp.Name,
		"stage", st.Name,
		"steps", st.Steps,
		"exc_amp", st.ExcAmp,
		"inh_amp", st.InhAmp,
		"death_rate", st.DeathRate,
		"kernel_half_width", sheet.Kernel().HalfWidth(),
		"kernel_sum", sheet.Kernel().Sum(),
	)

	t0 := time.Now()
	out, err := sheet.Run(initial, st.Steps, p.mask)
	if err != nil {
		return StageResult{}, fmt.Errorf("stage %q: %w", st.Name, err)
	}
	elapsed := time.Since(t0)

	from := st.From
	if p.parent >= 0 && from == "" {
		from = exp.Stages[p.parent].Name
	}
	res := StageResult{
		Name:          st.Name,
		Label:         st.Label,
		From:          from,
		Steps:         st.Steps,
		DeathRate:     st.DeathRate,
		AliveFraction: alive,
		Kernel:        kp,
		Duration:      elapsed,
		field:         out,
	}

	sum := res.Summary()
	if sum.HasNonFinite() {
		r.logger.Warn("stage produced non-finite rates",
			"experiment", exp.Name,
			"stage", st.Name,
			"non_finite", sum.NonFinite,
		)
	}
	r.logger.Info("stage finished",
		"experiment", exp.Name,
		"stage", st.Name,
		"duration", elapsed,
		"mean", sum.Mean,
		"alive_fraction", alive,
	)
	r.logger.Log(ctx, logging.LevelTrace, "stage summary",
		"stage", st.Name,
		"min", sum.Min,
		"max", sum.Max,
		"std_dev", sum.StdDev,
	)
	r.trace.Stage(logging.StageEvent{
		Experiment:    exp.Name,
		Stage:         st.Name,
		From:          from,
		Steps:         st.Steps,
		ExcAmp:        st.ExcAmp,
		InhAmp:        st.InhAmp,
		DeathRate:     st.DeathRate,
		AliveFraction: alive,
		DurationMS:    elapsed.Milliseconds(),
		Mean:          sum.Mean,
		Max:           sum.Max,
		NonFinite:     sum.NonFinite,
	})
	return res, nil
}

// plan validates exp and draws stage masks in configuration order.
func (r *Runner) plan(exp Experiment) ([]stagePlan, error) {
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%w %q: %s", ErrInvalidExperiment, exp.Name, fmt.Sprintf(format, args...))
	}

	switch {
	case exp.Initial == nil:
		return nil, invalid("no initial field")
	case len(exp.Stages) == 0:
		return nil, invalid("no stages")
	case !(exp.Resolution > 0):
		return nil, invalid("resolution %v must be positive", exp.Resolution)
	case !(exp.ExcWidth > 0) || !(exp.InhWidth > 0):
		return nil, invalid("kernel widths (%v, %v) must be positive", exp.ExcWidth, exp.InhWidth)
	case !(exp.Sheet.Tau > 0) || !(exp.Sheet.Dt > 0):
		return nil, invalid("tau %v and dt %v must be positive", exp.Sheet.Tau, exp.Sheet.Dt)
	case exp.Sheet.ClampMin > exp.Sheet.ClampMax:
		return nil, invalid("clamp [%v, %v] is inverted", exp.Sheet.ClampMin, exp.Sheet.ClampMax)
	}
	shape := exp.Initial.Shape()
	index := make(map[string]int, len(exp.Stages))
	plans := make([]stagePlan, len(exp.Stages))
	for i, st := range exp.Stages {
		if st.Name == "" {
			return nil, invalid("stage %d has no name", i)
		}
		if _, dup := index[st.Name]; dup {
			return nil, invalid("duplicate stage name %q", st.Name)
		}
		if st.Steps < 0 {
			return nil, invalid("stage %q: negative step count %d", st.Name, st.Steps)
		}
		if !(st.DeathRate >= 0 && st.DeathRate <= 1) {
			return nil, invalid("stage %q: death rate %v outside [0, 1]", st.Name, st.DeathRate)
		}

		parent := i - 1
		if st.From != "" {
			p, ok := index[st.From]
			if !ok {
				return nil, invalid("stage %q starts from unknown or later stage %q", st.Name, st.From)
			}
			parent = p
		}

		if st.Mask != nil {
			if err := st.Mask.Check(shape); err != nil {
				return nil, fmt.Errorf("%w %q: stage %q: %w", ErrInvalidExperiment, exp.Name, st.Name, err)
			}
		} else if st.DeathRate > 0 && exp.Masks == nil {
			return nil, invalid("stage %q has death rate %v but no mask source", st.Name, st.DeathRate)
		}

		index[st.Name] = i
		plans[i] = stagePlan{index: i, stage: st, parent: parent, mask: st.Mask}
	}

	if exp.Display.Quantile > 0 {
		if _, ok := index[exp.Display.Stage]; !ok {
			return nil, invalid("display range refers to unknown stage %q", exp.Display.Stage)
		}
		if exp.Display.Quantile > 1 {
			return nil, invalid("display quantile %v above 1", exp.Display.Quantile)
		}
	}

	// Masks come from one stream; drawing them here, in order, keeps results
	// independent of stage scheduling.
	for i := range plans {
		st := plans[i].stage
		if st.Mask != nil || st.DeathRate == 0 {
			continue
		}
		m, err := exp.Masks.SurvivalMask(shape, st.DeathRate)
		if err != nil {
			return nil, fmt.Errorf("experiment %q: stage %q: %w", exp.Name, st.Name, err)
		}
		plans[i].mask = m
	}
	return plans, nil
}

func displayRange(exp Experiment, results []StageResult) (analysis.Range, error) {
	d := exp.Display
	if d.Quantile == 0 {
		return analysis.Range{Min: 0, Max: d.Max}, nil
	}
	for _, res := range results {
		if res.Name == d.Stage {
			rng, err := analysis.DisplayRange(res.field, d.Quantile)
			if err != nil {
				return analysis.Range{}, fmt.Errorf("display range from %q: %w", d.Stage, err)
			}
			return rng, nil
		}
	}
	return analysis.Range{}, fmt.Errorf("display range: no stage %q", d.Stage)
}

// RunRing integrates a ring experiment and records the requested snapshots.
func (r *Runner) RunRing(ctx context.Context, exp RingExperiment) (*RingReport, error) {
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%w %q: %s", ErrInvalidExperiment, exp.Name, fmt.Sprintf(format, args...))
	}

	switch {
	case exp.Initial == nil:
		return nil, invalid("no initial ring")
	case exp.Weights.Units <= 0:
		return nil, invalid("ring needs at least one unit, got %d", exp.Weights.Units)
	case exp.Initial.Len() != exp.Weights.Units:
		return nil, fmt.Errorf("%w %q: initial ring has %d units, weights %d: %w",
			ErrInvalidExperiment, exp.Name, exp.Initial.Len(), exp.Weights.Units, field.ErrShape)
	case !(exp.Params.Tau > 0) || !(exp.Params.Step > 0):
		return nil, invalid("tau %v and step %v must be positive", exp.Params.Tau, exp.Params.Step)
	case exp.Steps < 0:
		return nil, invalid("negative step count %d", exp.Steps)
	}

	want := slices.Clone(exp.Snapshots)
	slices.Sort(want)
	want = slices.Compact(want)
	if len(want) == 0 {
		want = []int{exp.Steps}
	}
	if want[0] < 0 || want[len(want)-1] > exp.Steps {
		return nil, invalid("snapshot steps %v outside [0, %d]", want, exp.Steps)
	}
	if err := exp.Mask.Check(exp.Initial.Shape()); err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrInvalidExperiment, exp.Name, err)
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("ring experiment %q: %w", exp.Name, err)
	}

	net := dynamics.NewRingNet(exp.Params, kernel.BuildRing(exp.Weights))
	h := exp.Params.Step
	snap := func(step int, ring *field.Ring) RingSnapshot {
		t := float64(step) * h
		return RingSnapshot{Label: fmt.Sprintf("t=%g", t), Step: step, Time: t, ring: ring.Clone()}
	}

	start := time.Now()
	r.logger.Info("ring experiment started",
		"experiment", exp.Name,
		"units", exp.Weights.Units,
		"steps", exp.Steps,
	)

	snapshots := make([]RingSnapshot, 0, len(want))
	next := 0
	if want[0] == 0 {
		snapshots = append(snapshots, snap(0, exp.Initial))
		next++
	}
	if next < len(want) {
		for step, state := range net.Trajectory(exp.Initial, exp.Steps, exp.Mask) {
			if step != want[next] {
				continue
			}
			snapshots = append(snapshots, snap(step, state))
			next++
			if next == len(want) {
				break
			}
		}
	}

	for _, s := range snapshots {
		sum := analysis.Summarize(s.ring.Data())
		if sum.HasNonFinite() {
			r.logger.Warn("ring produced non-finite rates", "experiment", exp.Name, "step", s.Step, "non_finite", sum.NonFinite)
		}
		r.logger.Debug("ring snapshot", "experiment", exp.Name, "label", s.Label, "mean", sum.Mean, "spread", s.Spread(), "peak", s.Peak())
		r.trace.Snapshot(logging.SnapshotEvent{
			Experiment: exp.Name,
			Label:      s.Label,
			Step:       s.Step,
			SimTime:    s.Time,
			Mean:       sum.Mean,
			Spread:     s.Spread(),
			Peak:       s.Peak(),
		})
	}

	report := &RingReport{
		Experiment: exp.Name,
		Snapshots:  snapshots,
		Duration:   time.Since(start),
	}
	r.logger.Info("ring experiment finished", "experiment", exp.Name, "duration", report.Duration)
	return report, nil
}
