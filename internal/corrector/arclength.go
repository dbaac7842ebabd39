package corrector

import "github.com/adtzlr/pacopy/internal/branch"

// Arclength corrects in the hyperplane that sits at arclength distance step
// from the reference point along its tangent. Lambda moves with the state,
// so the iteration stays well posed at turning points where the plain
// Jacobian degenerates along the branch.
//
// Each iteration solves the bordered system
//
//	| J        f_lam | |du  |   |-f|
//	| th2*t_u  t_lam | |dlam| = |-c|
//
// by block elimination with two Jacobian solves, never forming the bordered
// matrix.
type Arclength struct {
	tol     float64
	maxIter int
	theta   float64
}

// NewArclength returns a pseudo-arclength corrector. theta weights the
// state part of the arclength metric.
func NewArclength(tol float64, maxIter int, theta float64) *Arclength {
	return &Arclength{tol: tol, maxIter: maxIter, theta: theta}
}

// Name identifies the scheme.
func (a *Arclength) Name() string { return "arclength" }

// Correct refines predicted subject to the constraint plane through ref
// spanned by tan at signed distance step. Convergence is judged on the
// residual norm alone; the constraint is linear and satisfied by every
// Newton iterate.
func (a *Arclength) Correct(p branch.Problem, predicted branch.Point, ref branch.Point, tan *branch.Tangent, step float64) branch.CorrectorResult {
	if tan == nil {
		return branch.CorrectorResult{Point: predicted.Clone()}
	}
	th2 := a.theta * a.theta
	u := predicted.U.Clone()
	lam := predicted.Lambda
	f := p.Residual(u, lam)
	norm := p.Norm(f)

	for it := 0; it < a.maxIter; it++ {
		if norm <= a.tol {
			return branch.CorrectorResult{
				Point:        branch.Point{U: u, Lambda: lam},
				Converged:    true,
				Iterations:   it,
				ResidualNorm: norm,
			}
		}
		z1, err := p.SolveJacobian(u, lam, f)
		if err != nil {
			return a.fail(u, lam, it, norm)
		}
		z2, err := p.SolveJacobian(u, lam, p.DLambda(u, lam))
		if err != nil {
			return a.fail(u, lam, it, norm)
		}

		// offset from the constraint plane; zero for the prediction itself
		c := th2*p.Dot(u.Sub(ref.U), tan.DU) + (lam-ref.Lambda)*tan.DLambda - step

		den := tan.DLambda - th2*p.Dot(tan.DU, z2)
		if den == 0 {
			return a.fail(u, lam, it, norm)
		}
		dlam := (th2*p.Dot(tan.DU, z1) - c) / den
		du := z1.AddScaled(dlam, z2).Scale(-1)

		u, lam, f, norm = damp(p, u, lam, du, dlam, norm)
	}

	return branch.CorrectorResult{
		Point:        branch.Point{U: u, Lambda: lam},
		Converged:    norm <= a.tol,
		Iterations:   a.maxIter,
		ResidualNorm: norm,
	}
}

func (a *Arclength) fail(u branch.State, lam float64, it int, norm float64) branch.CorrectorResult {
	return branch.CorrectorResult{
		Point:        branch.Point{U: u, Lambda: lam},
		Iterations:   it,
		ResidualNorm: norm,
	}
}
