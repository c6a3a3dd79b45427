// Package simulation orchestrates multi-stage neural field experiments.
//
// An Experiment is a narrative of stages: form a healthy pattern from noise,
// then continue it under weakened synapses or a survival mask. Each stage
// names its kernel amplitudes, its length and an optional death rate, and
// starts from the final field of the previous stage or of any earlier stage
// named in From. Stages that read one finished baseline are independent and
// run in parallel; results are identical for any worker count because all
// masks are drawn up front in configuration order.
//
// Usage:
//
//	gen := seed.New(10)
//	exp, err := simulation.GridDegradation(simulation.DefaultDegradationParams(), dynamics.DefaultSheetParams(), vecmath.MethodAuto, gen)
//	if err != nil { ... }
//	report, err := simulation.NewRunner(simulation.WithWorkers(4)).Run(ctx, exp)
//	for _, st := range report.Stages {
//	    fmt.Println(st.Label, st.Summary().Mean)
//	}
package simulation
