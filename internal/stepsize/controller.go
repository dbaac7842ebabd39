// Package stepsize adapts the continuation step between corrections.
package stepsize

import (
	"math"

	"github.com/adtzlr/pacopy/internal/branch"
)

// Phase labels the controller state after the latest adaptation.
type Phase int

const (
	// PhaseSteady holds the current step size.
	PhaseSteady Phase = iota
	// PhaseGrowing follows an easy correction.
	PhaseGrowing
	// PhaseShrinking follows a failed correction.
	PhaseShrinking
	// PhaseFailed means a correction failed at the minimum step; the trace
	// cannot continue.
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseSteady:
		return "steady"
	case PhaseGrowing:
		return "growing"
	case PhaseShrinking:
		return "shrinking"
	case PhaseFailed:
		return "failed"
	}
	return "unknown"
}

// Controller adapts the signed continuation step. The sign encodes the
// trace direction and never changes; growth and shrink act on the
// magnitude, clamped to [min, max].
type Controller struct {
	step   float64
	min    float64
	max    float64
	grow   float64
	shrink float64
	target int
	phase  Phase
}

// New returns a controller starting at cfg.Step0.
func New(cfg branch.Config) *Controller {
	return &Controller{
		step:   cfg.Step0,
		min:    cfg.StepMin,
		max:    cfg.StepMax,
		grow:   cfg.GrowFactor,
		shrink: cfg.ShrinkFactor,
		target: cfg.TargetIterations,
	}
}

// Step returns the current signed step.
func (c *Controller) Step() float64 { return c.step }

// Phase returns the controller phase.
func (c *Controller) Phase() Phase { return c.phase }

// OnSuccess adapts the step after an accepted correction that needed the
// given number of iterations. At or below the target count the step grows;
// above it the step holds.
func (c *Controller) OnSuccess(iterations int) {
	if c.phase == PhaseFailed {
		return
	}
	if iterations <= c.target {
		mag := math.Min(math.Abs(c.step)*c.grow, c.max)
		c.step = math.Copysign(mag, c.step)
		c.phase = PhaseGrowing
		return
	}
	c.phase = PhaseSteady
}

// OnFailure shrinks the step after a failed correction. Shrinking is
// strictly monotone and clamped at the minimum, so repeated failures reach
// the minimum in finitely many calls; the failure arriving there returns
// branch.ErrStepExhausted and the controller stays failed.
func (c *Controller) OnFailure() error {
	if c.phase == PhaseFailed {
		return branch.ErrStepExhausted
	}
	mag := math.Abs(c.step)
	if mag <= c.min {
		c.phase = PhaseFailed
		return branch.ErrStepExhausted
	}
	mag = math.Max(mag*c.shrink, c.min)
	c.step = math.Copysign(mag, c.step)
	c.phase = PhaseShrinking
	return nil
}
