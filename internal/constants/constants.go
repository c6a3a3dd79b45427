// Package constants provides named constants used throughout the neurofield codebase.
// This centralizes the reference simulation parameters so presets, config defaults
// and tests agree on the same numbers.
package constants

// Stability clamp applied after every 2D integration step.
const (
	// ClampMin is the lower bound of the sheet stability clamp.
	ClampMin = 0.0

	// ClampMax is the upper bound of the sheet stability clamp.
	// Reference outputs depend on this exact value.
	ClampMax = 20.0
)

// Grid sheet reference parameters.
const (
	// SheetTau is the membrane time constant of the 2D sheet.
	SheetTau = 20.0

	// SheetDt is the Euler step size of the 2D sheet.
	SheetDt = 0.2

	// SheetDrive is the uniform external drive I_ext.
	SheetDrive = 4.0

	// ExcWidth is the excitatory Gaussian width sigma_e.
	ExcWidth = 3.0

	// InhWidth is the inhibitory Gaussian width sigma_i.
	InhWidth = 5.0

	// ExcAmp is the healthy excitatory amplitude A_e.
	ExcAmp = 1.0

	// InhAmp is the healthy inhibitory amplitude A_i.
	InhAmp = 0.5

	// KernelSigmas is how many inhibitory widths the kernel extends on each side.
	KernelSigmas = 3.0
)

// Grid degradation experiment.
const (
	// DegradationSize is the side of the square sheet.
	DegradationSize = 150

	// DegradationExtent is the physical side length L of the sheet.
	DegradationExtent = 100.0

	// FormationSteps is the number of steps used to form the healthy pattern.
	FormationSteps = 4000

	// DegradationSteps is the number of steps each death rate runs for.
	DegradationSteps = 1000

	// DisplayQuantile is the quantile of the healthy map used as display maximum.
	DisplayQuantile = 0.99
)

// Pathology timeline experiment.
const (
	// TimelineSize is the side of the square sheet.
	TimelineSize = 70

	// TimelineExtent is the physical side length L of the sheet.
	TimelineExtent = 60.0

	// TimelineStageSteps is the number of steps of each disease stage.
	TimelineStageSteps = 2000

	// TimelineDisplayMax is the fixed display maximum shared by all stages.
	TimelineDisplayMax = 12.0

	// EarlyInhAmp is the weakened inhibitory amplitude of the early stage.
	EarlyInhAmp = 0.4

	// ModerateExcAmp is the weakened excitatory amplitude of the moderate stage.
	ModerateExcAmp = 0.8

	// LateDeathRate is the fraction of units removed in the late stage.
	LateDeathRate = 0.5
)

// Head-direction ring reference parameters.
const (
	// RingUnits is the number of units on the ring.
	RingUnits = 256

	// RingTau is the ring time constant.
	RingTau = 2.0

	// RingStep is the ring integration step h.
	RingStep = 0.1

	// RingJ0 is the uniform (inhibitory) weight component.
	RingJ0 = -5.0

	// RingJ1 is the cosine-tuned weight component.
	RingJ1 = 5.0

	// RingDrive is the uniform external drive I0.
	RingDrive = 1.0

	// RingInitialRate is the uniform initial rate r0.
	RingInitialRate = 3.0

	// RingDuration is the simulated time t_max.
	RingDuration = 200.0

	// RingPerturbation is added to the middle unit to break the ring's
	// rotational symmetry when a bump is wanted.
	RingPerturbation = 0.1
)

// Initial conditions.
const (
	// DefaultSeed is the random seed used by the reference experiments.
	DefaultSeed = 10

	// InitialNoiseMax is the upper bound of the uniform initial noise.
	InitialNoiseMax = 1.0
)
