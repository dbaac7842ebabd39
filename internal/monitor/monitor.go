// Package monitor watches the fold test function along a branch and turns
// its sign changes into fold events.
//
// The test function is the lambda component of the continuity-oriented unit
// tangent. It passes through zero exactly where the branch turns in lambda,
// so a sign change between consecutive accepted points brackets a fold.
package monitor

import (
	"math"

	"github.com/adtzlr/pacopy/internal/branch"
)

// maxBisections bounds a single refinement.
const maxBisections = 40

// Refiner produces a corrected point and its oriented tangent at a trial
// arclength offset from a reference point. The tracer supplies one wired to
// its own predictor and corrector.
type Refiner func(from branch.Point, dir branch.Tangent, step float64) (branch.Point, branch.Tangent, error)

// Monitor detects folds between consecutive accepted points. It never
// fails a trace: when refinement cannot converge the event is reported
// unrefined.
type Monitor struct {
	refine  bool
	tol     float64
	refiner Refiner

	hasPrev bool
	prev    branch.Point
	prevTan branch.Tangent
}

// New returns a monitor. tol is the lambda bracket width that ends
// refinement; refiner may be nil when refine is false.
func New(refine bool, tol float64, refiner Refiner) *Monitor {
	return &Monitor{refine: refine, tol: tol, refiner: refiner}
}

// Reset clears the stored previous point, e.g. for a fresh trace.
func (m *Monitor) Reset() { m.hasPrev = false }

// Check ingests the latest accepted point and its tangent; step is the
// signed arclength increment that produced the point. A non-nil event
// reports a fold between the previous accepted point and this one.
func (m *Monitor) Check(pt branch.Point, tan branch.Tangent, step float64) *branch.FoldEvent {
	ev := m.check(pt, tan, step)
	m.prev = pt.Clone()
	m.prevTan = tan.Clone()
	m.hasPrev = true
	return ev
}

func (m *Monitor) check(pt branch.Point, tan branch.Tangent, step float64) *branch.FoldEvent {
	if !m.hasPrev || !signFlip(m.prevTan.DLambda, tan.DLambda) {
		return nil
	}
	ev := &branch.FoldEvent{
		Before: m.prev.Clone(),
		After:  pt.Clone(),
		Lambda: (m.prev.Lambda + pt.Lambda) / 2,
	}
	if m.refine && m.refiner != nil {
		if lam, ok := m.bisect(pt, step); ok {
			ev.Lambda = lam
			ev.Refined = true
		}
	}
	return ev
}

// signFlip reports a sign change from a to b. An exact zero counts as a
// flip from either side but never flips again on the way out, so a fold
// sitting on an accepted point fires once.
func signFlip(a, b float64) bool {
	if a == 0 {
		return false
	}
	return (a > 0) != (b > 0) || b == 0
}

// bisect narrows the bracket [0, step], measured as arclength from the
// previous accepted point along its tangent, down to a lambda width of tol.
// It reports the lambda estimate and whether refinement succeeded.
func (m *Monitor) bisect(after branch.Point, step float64) (float64, bool) {
	gLo := m.prevTan.DLambda
	lo, hi := 0.0, step
	loPt, hiPt := m.prev, after

	for i := 0; i < maxBisections && math.Abs(hiPt.Lambda-loPt.Lambda) > m.tol; i++ {
		mid := 0.5 * (lo + hi)
		pt, tan, err := m.refiner(m.prev, m.prevTan, mid)
		if err != nil {
			return 0, false
		}
		if signFlip(gLo, tan.DLambda) {
			hi, hiPt = mid, pt
		} else {
			lo, loPt, gLo = mid, pt, tan.DLambda
		}
	}
	return 0.5 * (loPt.Lambda + hiPt.Lambda), true
}
