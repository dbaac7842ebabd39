package predictor

import (
	"errors"
	"math"
	"testing"

	"github.com/adtzlr/pacopy/internal/branch"
)

// circleProblem is f(u, lambda) = u^2 + lambda^2 - 1.
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

func TestNaturalPredict(t *testing.T) {
	p := NewNatural()
	from := branch.Point{U: branch.State{2.5}, Lambda: 0.3}

	got := p.Predict(circleProblem{}, from, nil, 0.1)
	if math.Abs(got.Lambda-0.4) > 1e-15 {
		t.Errorf("lambda = %g, want 0.4", got.Lambda)
	}
	if got.U[0] != 2.5 {
		t.Errorf("u = %g, want unchanged 2.5", got.U[0])
	}
	got.U[0] = 0
	if from.U[0] != 2.5 {
		t.Errorf("prediction aliases the source state")
	}
}

func TestTangentPredict(t *testing.T) {
	p := NewTangent()
	from := branch.Point{U: branch.State{1}, Lambda: 0}
	tan := branch.Tangent{DU: branch.State{-0.6}, DLambda: 0.8}

	got := p.Predict(circleProblem{}, from, &tan, 0.5)
	if math.Abs(got.U[0]-0.7) > 1e-15 {
		t.Errorf("u = %g, want 0.7", got.U[0])
	}
	if math.Abs(got.Lambda-0.4) > 1e-15 {
		t.Errorf("lambda = %g, want 0.4", got.Lambda)
	}
}

func TestTangentPredictWithoutTangent(t *testing.T) {
	p := NewTangent()
	from := branch.Point{U: branch.State{1}, Lambda: 0}

	got := p.Predict(circleProblem{}, from, nil, 0.5)
	if got.U[0] != 1 || math.Abs(got.Lambda-0.5) > 1e-15 {
		t.Errorf("fallback prediction = (%g, %g), want (1, 0.5)", got.U[0], got.Lambda)
	}
}

func TestComputeTangentDirection(t *testing.T) {
	pt := branch.Point{U: branch.State{1}, Lambda: 0}

	up, err := ComputeTangent(circleProblem{}, pt, nil, 1.0, 1)
	if err != nil {
		t.Fatalf("tangent at (1, 0): %v", err)
	}
	if math.Abs(up.DLambda-1) > 1e-12 || math.Abs(up.DU[0]) > 1e-12 {
		t.Errorf("tangent at (1, 0) = (%g, %g), want (0, 1)", up.DU[0], up.DLambda)
	}

	down, err := ComputeTangent(circleProblem{}, pt, nil, 1.0, -1)
	if err != nil {
		t.Fatalf("tangent at (1, 0): %v", err)
	}
	if down.DLambda >= 0 {
		t.Errorf("negative direction should give dlambda < 0, got %g", down.DLambda)
	}
}

func TestComputeTangentUnitNorm(t *testing.T) {
	p := circleProblem{}
	pt := branch.Point{U: branch.State{0.6}, Lambda: 0.8}
	for _, theta := range []float64{0.5, 1.0, 2.0} {
		tan, err := ComputeTangent(p, pt, nil, theta, 1)
		if err != nil {
			t.Fatalf("theta %g: %v", theta, err)
		}
		n := theta*theta*p.Dot(tan.DU, tan.DU) + tan.DLambda*tan.DLambda
		if math.Abs(n-1) > 1e-12 {
			t.Errorf("theta %g: tangent norm^2 = %g, want 1", theta, n)
		}
	}
}

func TestComputeTangentContinuity(t *testing.T) {
	p := circleProblem{}
	pt := branch.Point{U: branch.State{0.6}, Lambda: 0.8}

	prev := branch.Tangent{DU: branch.State{-0.8}, DLambda: 0.6}
	tan, err := ComputeTangent(p, pt, &prev, 1.0, 1)
	if err != nil {
		t.Fatalf("tangent: %v", err)
	}
	if math.Abs(tan.DU[0]+0.8) > 1e-12 || math.Abs(tan.DLambda-0.6) > 1e-12 {
		t.Errorf("tangent = (%g, %g), want (-0.8, 0.6)", tan.DU[0], tan.DLambda)
	}

	// a previous tangent pointing the other way must flip the result
	flipped := branch.Tangent{DU: branch.State{0.8}, DLambda: -0.6}
	tan, err = ComputeTangent(p, pt, &flipped, 1.0, 1)
	if err != nil {
		t.Fatalf("tangent: %v", err)
	}
	if math.Abs(tan.DU[0]-0.8) > 1e-12 || math.Abs(tan.DLambda+0.6) > 1e-12 {
		t.Errorf("tangent = (%g, %g), want (0.8, -0.6)", tan.DU[0], tan.DLambda)
	}
}

func TestComputeTangentFlipsSignAcrossFold(t *testing.T) {
	p := circleProblem{}
	lam := math.Sqrt(1 - 0.01)

	before := branch.Point{U: branch.State{0.1}, Lambda: lam}
	tb, err := ComputeTangent(p, before, nil, 1.0, 1)
	if err != nil {
		t.Fatalf("tangent before fold: %v", err)
	}
	if tb.DLambda <= 0 {
		t.Fatalf("approaching the fold, dlambda = %g, want > 0", tb.DLambda)
	}

	after := branch.Point{U: branch.State{-0.1}, Lambda: lam}
	ta, err := ComputeTangent(p, after, &tb, 1.0, 1)
	if err != nil {
		t.Fatalf("tangent after fold: %v", err)
	}
	if ta.DLambda >= 0 {
		t.Errorf("past the fold, dlambda = %g, want < 0", ta.DLambda)
	}
	if ta.DU[0] >= 0 {
		t.Errorf("past the fold, du = %g, want < 0 for continuous motion", ta.DU[0])
	}
}

func TestComputeTangentSingular(t *testing.T) {
	pt := branch.Point{U: branch.State{0}, Lambda: 1}
	if _, err := ComputeTangent(circleProblem{}, pt, nil, 1.0, 1); err == nil {
		t.Errorf("tangent at the exact fold should fail, the Jacobian is singular")
	}
}
