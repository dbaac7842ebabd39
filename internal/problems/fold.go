package problems

import (
	"fmt"
	"math"

	"github.com/adtzlr/pacopy/internal/branch"
)

// Fold is f(u, lambda) = a*u^2 + lambda, the parabola lambda = -a*u^2 with
// a single turning point at the origin. Solutions exist for lambda <= 0
// only, which makes it the canonical problem natural continuation cannot
// finish and arclength continuation rounds in stride.
type Fold struct {
	A float64
}

// NewFold returns the parabola with unit curvature.
func NewFold() *Fold {
	return &Fold{A: 1}
}

func (f *Fold) Name() string { return "fold" }
func (f *Fold) Dim() int     { return 1 }

func (f *Fold) Residual(u branch.State, lam float64) branch.State {
	return branch.State{f.A*u[0]*u[0] + lam}
}

func (f *Fold) SolveJacobian(u branch.State, _ float64, rhs branch.State) (branch.State, error) {
	j := 2 * f.A * u[0]
	if math.Abs(j) < 1e-14 {
		return nil, fmt.Errorf("fold: singular jacobian at u=%g", u[0])
	}
	return branch.State{rhs[0] / j}, nil
}

func (f *Fold) DLambda(branch.State, float64) branch.State {
	return branch.State{1}
}

func (f *Fold) Norm(v branch.State) float64   { return math.Abs(v[0]) }
func (f *Fold) Dot(a, b branch.State) float64 { return a[0] * b[0] }

// Start begins on the upper half of the parabola, clear of the fold.
func (f *Fold) Start() (branch.State, float64) {
	return branch.State{0.5}, -0.25 * f.A
}

func (f *Fold) GetParams() map[string]float64 {
	return map[string]float64{"curvature": f.A}
}

func (f *Fold) SetParam(name string, value float64) error {
	if name != "curvature" {
		return fmt.Errorf("fold: unknown parameter %q", name)
	}
	f.A = value
	return nil
}
