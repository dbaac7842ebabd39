package problems

import (
	"fmt"
	"math"

	"github.com/adtzlr/pacopy/internal/branch"
)

// Linear is f(u, lambda) = a*u - b*lambda, the straight branch u = (b/a)*lambda.
type Linear struct {
	A float64
	B float64
}

// NewLinear returns the identity branch u = lambda.
func NewLinear() *Linear {
	return &Linear{A: 1, B: 1}
}

func (l *Linear) Name() string { return "linear" }
func (l *Linear) Dim() int     { return 1 }

func (l *Linear) Residual(u branch.State, lam float64) branch.State {
	return branch.State{l.A*u[0] - l.B*lam}
}

func (l *Linear) SolveJacobian(_ branch.State, _ float64, rhs branch.State) (branch.State, error) {
	if l.A == 0 {
		return nil, fmt.Errorf("linear: zero slope")
	}
	return branch.State{rhs[0] / l.A}, nil
}

func (l *Linear) DLambda(branch.State, float64) branch.State {
	return branch.State{-l.B}
}

func (l *Linear) Norm(v branch.State) float64   { return math.Abs(v[0]) }
func (l *Linear) Dot(a, b branch.State) float64 { return a[0] * b[0] }

// Start begins at the origin.
func (l *Linear) Start() (branch.State, float64) {
	return branch.State{0}, 0
}

func (l *Linear) GetParams() map[string]float64 {
	return map[string]float64{"a": l.A, "b": l.B}
}

func (l *Linear) SetParam(name string, value float64) error {
	switch name {
	case "a":
		l.A = value
	case "b":
		l.B = value
	default:
		return fmt.Errorf("linear: unknown parameter %q", name)
	}
	return nil
}
