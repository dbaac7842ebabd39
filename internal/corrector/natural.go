// Package corrector implements the Newton schemes that pull predicted
// points back onto the solution set of f(u, lambda) = 0.
package corrector

import "github.com/adtzlr/pacopy/internal/branch"

// Natural corrects at fixed lambda with damped Newton iteration.
type Natural struct {
	tol     float64
	maxIter int
}

// NewNatural returns a fixed-lambda corrector that stops when the residual
// norm drops below tol, giving up after maxIter Newton updates.
func NewNatural(tol float64, maxIter int) *Natural {
	return &Natural{tol: tol, maxIter: maxIter}
}

// Name identifies the scheme.
func (n *Natural) Name() string { return "natural" }

// Correct refines predicted.U at predicted.Lambda. The reference point,
// tangent and step are ignored; lambda never moves.
func (n *Natural) Correct(p branch.Problem, predicted branch.Point, _ branch.Point, _ *branch.Tangent, _ float64) branch.CorrectorResult {
	u := predicted.U.Clone()
	lam := predicted.Lambda
	f := p.Residual(u, lam)
	norm := p.Norm(f)

	for it := 0; it < n.maxIter; it++ {
		if norm <= n.tol {
			return branch.CorrectorResult{
				Point:        branch.Point{U: u, Lambda: lam},
				Converged:    true,
				Iterations:   it,
				ResidualNorm: norm,
			}
		}
		x, err := p.SolveJacobian(u, lam, f)
		if err != nil {
			return branch.CorrectorResult{
				Point:        branch.Point{U: u, Lambda: lam},
				Iterations:   it,
				ResidualNorm: norm,
			}
		}
		u, lam, f, norm = damp(p, u, lam, x.Scale(-1), 0, norm)
	}

	return branch.CorrectorResult{
		Point:        branch.Point{U: u, Lambda: lam},
		Converged:    norm <= n.tol,
		Iterations:   n.maxIter,
		ResidualNorm: norm,
	}
}
