package problems

import (
	"fmt"
	"math"

	"github.com/adtzlr/pacopy/internal/branch"
)

// Cubic is f(u, lambda) = u^3 - a*u + lambda, an S-shaped branch with two
// turning points at lambda = +-2a/3*sqrt(a/3). The classic hysteresis
// curve: three coexisting solutions between the folds.
type Cubic struct {
	A float64
}

// NewCubic returns the S-curve with folds at lambda ~ +-0.385.
func NewCubic() *Cubic {
	return &Cubic{A: 1}
}

func (c *Cubic) Name() string { return "cubic" }
func (c *Cubic) Dim() int     { return 1 }

func (c *Cubic) Residual(u branch.State, lam float64) branch.State {
	return branch.State{u[0]*u[0]*u[0] - c.A*u[0] + lam}
}

func (c *Cubic) SolveJacobian(u branch.State, _ float64, rhs branch.State) (branch.State, error) {
	j := 3*u[0]*u[0] - c.A
	if math.Abs(j) < 1e-14 {
		return nil, fmt.Errorf("cubic: singular jacobian at u=%g", u[0])
	}
	return branch.State{rhs[0] / j}, nil
}

func (c *Cubic) DLambda(branch.State, float64) branch.State {
	return branch.State{1}
}

func (c *Cubic) Norm(v branch.State) float64   { return math.Abs(v[0]) }
func (c *Cubic) Dot(a, b branch.State) float64 { return a[0] * b[0] }

// Start begins on the lower leg of the S, well outside both folds. A
// negative initial step heads through them.
func (c *Cubic) Start() (branch.State, float64) {
	u := -2.0
	return branch.State{u}, c.A*u - u*u*u
}

func (c *Cubic) GetParams() map[string]float64 {
	return map[string]float64{"stiffness": c.A}
}

func (c *Cubic) SetParam(name string, value float64) error {
	if name != "stiffness" {
		return fmt.Errorf("cubic: unknown parameter %q", name)
	}
	c.A = value
	return nil
}
