package branch

import (
	"fmt"
	"math"
)

// Mode selects the branch parametrization.
type Mode string

const (
	// ModeNatural steps lambda directly and corrects at fixed lambda.
	// Cheap, but cannot pass turning points.
	ModeNatural Mode = "natural"
	// ModeArclength steps along the branch tangent and lets lambda vary
	// during correction, so turning points are traversed.
	ModeArclength Mode = "arclength"
)

// Config holds continuation parameters. It is passed by value; a running
// trace never sees later mutations.
type Config struct {
	Mode     Mode
	MaxSteps int // accepted steps before the trace stops

	Step0   float64 // initial step; its sign sets the trace direction
	StepMin float64
	StepMax float64

	GrowFactor       float64 // step growth after easy convergence
	ShrinkFactor     float64 // step reduction after a failed correction
	TargetIterations int     // corrector iterations considered "easy"

	Tolerance     float64 // residual norm demanded by the corrector
	MaxIterations int     // Newton updates per correction attempt

	LambdaMin float64 // trace stops when lambda leaves [LambdaMin, LambdaMax]
	LambdaMax float64

	Theta float64 // state weight in the arclength metric

	DetectFolds   bool
	RefineFolds   bool
	FoldTolerance float64 // lambda bracket width that ends refinement

	ValidateState bool // reject non-finite states after correction
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Mode:             ModeArclength,
		MaxSteps:         500,
		Step0:            0.05,
		StepMin:          1e-8,
		StepMax:          1.0,
		GrowFactor:       1.5,
		ShrinkFactor:     0.5,
		TargetIterations: 3,
		MaxIterations:    10,
		Tolerance:        1e-10,
		LambdaMin:        math.Inf(-1),
		LambdaMax:        math.Inf(1),
		Theta:            1.0,
		DetectFolds:      true,
		RefineFolds:      false,
		FoldTolerance:    1e-6,
		ValidateState:    true,
	}
}

// Validate checks the configuration for internal consistency.
func (c Config) Validate() error {
	switch c.Mode {
	case ModeNatural, ModeArclength:
	default:
		return fmt.Errorf("branch: unknown mode %q", c.Mode)
	}
	if c.MaxSteps <= 0 {
		return fmt.Errorf("branch: max steps must be positive, got %d", c.MaxSteps)
	}
	if c.Step0 == 0 {
		return fmt.Errorf("branch: step0 must be non-zero")
	}
	if c.StepMin <= 0 {
		return fmt.Errorf("branch: minimum step must be positive, got %g", c.StepMin)
	}
	if c.StepMax < c.StepMin {
		return fmt.Errorf("branch: maximum step %g below minimum %g", c.StepMax, c.StepMin)
	}
	if mag := math.Abs(c.Step0); mag < c.StepMin || mag > c.StepMax {
		return fmt.Errorf("branch: step0 magnitude %g outside [%g, %g]", mag, c.StepMin, c.StepMax)
	}
	if c.GrowFactor < 1 {
		return fmt.Errorf("branch: grow factor must be >= 1, got %g", c.GrowFactor)
	}
	if c.ShrinkFactor <= 0 || c.ShrinkFactor >= 1 {
		return fmt.Errorf("branch: shrink factor must be in (0, 1), got %g", c.ShrinkFactor)
	}
	if c.Tolerance <= 0 {
		return fmt.Errorf("branch: tolerance must be positive, got %g", c.Tolerance)
	}
	if c.MaxIterations < 1 {
		return fmt.Errorf("branch: max iterations must be >= 1, got %d", c.MaxIterations)
	}
	if c.TargetIterations < 0 || c.TargetIterations > c.MaxIterations {
		return fmt.Errorf("branch: target iterations %d outside [0, %d]", c.TargetIterations, c.MaxIterations)
	}
	if c.LambdaMin >= c.LambdaMax {
		return fmt.Errorf("branch: lambda range [%g, %g] is empty", c.LambdaMin, c.LambdaMax)
	}
	if c.Theta <= 0 {
		return fmt.Errorf("branch: theta must be positive, got %g", c.Theta)
	}
	if c.RefineFolds && c.FoldTolerance <= 0 {
		return fmt.Errorf("branch: fold tolerance must be positive, got %g", c.FoldTolerance)
	}
	return nil
}
