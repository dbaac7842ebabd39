package corrector

import (
	"errors"
	"math"
	"testing"

	"github.com/adtzlr/pacopy/internal/branch"
)

// circleProblem is f(u, lambda) = u^2 + lambda^2 - 1, whose branch is the
// unit circle with turning points at lambda = +-1.
type circleProblem struct{}

func (circleProblem) Dim() int { return 1 }
func (circleProblem) Residual(u branch.State, lam float64) branch.State {
	return branch.State{u[0]*u[0] + lam*lam - 1}
}
func (circleProblem) SolveJacobian(u branch.State, _ float64, rhs branch.State) (branch.State, error) {
	j := 2 * u[0]
	if math.Abs(j) < 1e-14 {
		return nil, errors.New("circle: singular jacobian")
	}
	return branch.State{rhs[0] / j}, nil
}
func (circleProblem) DLambda(_ branch.State, lam float64) branch.State {
	return branch.State{2 * lam}
}
func (circleProblem) Norm(v branch.State) float64   { return math.Abs(v[0]) }
func (circleProblem) Dot(a, b branch.State) float64 { return a[0] * b[0] }
func (circleProblem) Name() string                  { return "circle" }

// circleTangent returns the unit tangent at a circle point, oriented with
// increasing lambda on the upper half.
func circleTangent(u, lam float64) branch.Tangent {
	w := -lam / u
	nrm := math.Sqrt(w*w + 1)
	return branch.Tangent{DU: branch.State{w / nrm}, DLambda: 1 / nrm}
}

func TestArclengthStaysOnCircle(t *testing.T) {
	a := NewArclength(1e-12, 10, 1.0)
	p := circleProblem{}
	ref := branch.Point{U: branch.State{1}, Lambda: 0}
	tan := circleTangent(1, 0)

	step := 0.1
	pred := branch.Point{
		U:      ref.U.AddScaled(step, tan.DU),
		Lambda: ref.Lambda + step*tan.DLambda,
	}
	res := a.Correct(p, pred, ref, &tan, step)
	if !res.Converged {
		t.Fatalf("correction off a clean prediction must converge, residual %g", res.ResidualNorm)
	}
	if r := p.Norm(p.Residual(res.Point.U, res.Point.Lambda)); r > 1e-10 {
		t.Errorf("corrected point off the circle, |f| = %g", r)
	}
	// tangent at (1, 0) is pure lambda motion, so the constraint pins lambda
	if math.Abs(res.Point.Lambda-0.1) > 1e-10 {
		t.Errorf("lambda = %g, want 0.1", res.Point.Lambda)
	}
	if math.Abs(res.Point.U[0]-math.Sqrt(1-0.01)) > 1e-8 {
		t.Errorf("u = %g, want sqrt(0.99)", res.Point.U[0])
	}
}

func TestArclengthConstraintPlane(t *testing.T) {
	a := NewArclength(1e-12, 10, 1.0)
	p := circleProblem{}
	lam := math.Sqrt(1 - 0.01)
	ref := branch.Point{U: branch.State{0.1}, Lambda: lam}
	tan := circleTangent(0.1, lam)

	step := 0.05
	pred := branch.Point{
		U:      ref.U.AddScaled(step, tan.DU),
		Lambda: ref.Lambda + step*tan.DLambda,
	}
	res := a.Correct(p, pred, ref, &tan, step)
	if !res.Converged {
		t.Fatalf("correction near the fold must converge, residual %g", res.ResidualNorm)
	}
	c := p.Dot(res.Point.U.Sub(ref.U), tan.DU) + (res.Point.Lambda-ref.Lambda)*tan.DLambda - step
	if math.Abs(c) > 1e-9 {
		t.Errorf("constraint violated by %g", c)
	}
	if r := p.Norm(p.Residual(res.Point.U, res.Point.Lambda)); r > 1e-10 {
		t.Errorf("corrected point off the circle, |f| = %g", r)
	}
}

func TestArclengthNilTangent(t *testing.T) {
	a := NewArclength(1e-12, 10, 1.0)
	pred := branch.Point{U: branch.State{1}, Lambda: 0}

	res := a.Correct(circleProblem{}, pred, branch.Point{}, nil, 0.1)
	if res.Converged {
		t.Errorf("correction without a tangent must fail")
	}
}

func TestArclengthSingularJacobian(t *testing.T) {
	a := NewArclength(1e-12, 10, 1.0)
	ref := branch.Point{U: branch.State{0}, Lambda: 0.5}
	tan := branch.Tangent{DU: branch.State{1}, DLambda: 0}
	pred := branch.Point{U: branch.State{0}, Lambda: 0.5}

	res := a.Correct(circleProblem{}, pred, ref, &tan, 0.1)
	if res.Converged {
		t.Errorf("singular solve must not report convergence")
	}
}

func TestArclengthThetaWeighting(t *testing.T) {
	theta := 2.0
	a := NewArclength(1e-12, 10, theta)
	p := circleProblem{}
	ref := branch.Point{U: branch.State{1}, Lambda: 0}
	// unit tangent in the theta metric: theta^2*du^2 + dlam^2 = 1
	tan := branch.Tangent{DU: branch.State{0}, DLambda: 1}

	step := 0.1
	pred := branch.Point{
		U:      ref.U.AddScaled(step, tan.DU),
		Lambda: ref.Lambda + step*tan.DLambda,
	}
	res := a.Correct(p, pred, ref, &tan, step)
	if !res.Converged {
		t.Fatalf("weighted correction must converge, residual %g", res.ResidualNorm)
	}
	c := theta*theta*p.Dot(res.Point.U.Sub(ref.U), tan.DU) +
		(res.Point.Lambda-ref.Lambda)*tan.DLambda - step
	if math.Abs(c) > 1e-9 {
		t.Errorf("weighted constraint violated by %g", c)
	}
}
