package predictor

import (
	"fmt"
	"math"

	"github.com/adtzlr/pacopy/internal/branch"
)

// Tangent extrapolates along the branch tangent. First order; the standard
// predictor for arclength continuation.
type Tangent struct{}

// NewTangent returns a first-order tangent predictor.
func NewTangent() *Tangent { return &Tangent{} }

// Name identifies the scheme.
func (*Tangent) Name() string { return "tangent" }

// Predict extrapolates from an accepted point by the signed arclength step.
// Without a tangent it falls back to a pure lambda bump.
func (*Tangent) Predict(_ branch.Problem, from branch.Point, tan *branch.Tangent, step float64) branch.Point {
	if tan == nil {
		return branch.Point{U: from.U.Clone(), Lambda: from.Lambda + step}
	}
	return branch.Point{
		U:      from.U.AddScaled(step, tan.DU),
		Lambda: from.Lambda + step*tan.DLambda,
	}
}

// ComputeTangent returns the unit tangent of the branch at an accepted
// point. The direction solves J w = -df/dlambda, is normalized so that
// theta^2*Dot(du, du) + dlam^2 == 1, and is oriented to keep a positive
// inner product with prev. With prev == nil the sign of dir picks the
// lambda direction instead.
//
// At a turning point the lambda component passes through zero while the
// orientation rule keeps the tangent continuous, so its sign change is
// exactly the fold indicator.
func ComputeTangent(p branch.Problem, pt branch.Point, prev *branch.Tangent, theta, dir float64) (branch.Tangent, error) {
	w, err := p.SolveJacobian(pt.U, pt.Lambda, p.DLambda(pt.U, pt.Lambda).Scale(-1))
	if err != nil {
		return branch.Tangent{}, fmt.Errorf("tangent at lambda=%.6g: %w", pt.Lambda, err)
	}
	th2 := theta * theta
	dlam := 1 / math.Sqrt(th2*p.Dot(w, w)+1)
	tan := branch.Tangent{DU: w.Scale(dlam), DLambda: dlam}

	orient := dir
	if prev != nil {
		orient = th2*p.Dot(tan.DU, prev.DU) + tan.DLambda*prev.DLambda
	}
	if orient < 0 {
		tan.DU = tan.DU.Scale(-1)
		tan.DLambda = -tan.DLambda
	}
	return tan, nil
}
