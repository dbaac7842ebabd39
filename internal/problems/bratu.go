package problems

import (
	"fmt"
	"math"

	"github.com/adtzlr/pacopy/internal/branch"
)

// Bratu is the 1-D Bratu-Gelfand boundary value problem
//
//	u'' + lambda*exp(u) = 0,  u(0) = u(1) = 0,
//
// discretized with second-order central differences on n interior nodes.
// The branch starts at the trivial solution (0, 0) and folds back at
// lambda ~ 3.5138, the classic benchmark for arclength continuation.
type Bratu struct {
	n int
	h float64
}

// NewBratu returns the problem on n interior nodes.
func NewBratu(n int) *Bratu {
	return &Bratu{n: n, h: 1 / float64(n+1)}
}

func (b *Bratu) Name() string { return "bratu" }
func (b *Bratu) Dim() int     { return b.n }

func (b *Bratu) Residual(u branch.State, lam float64) branch.State {
	h2 := b.h * b.h
	r := make(branch.State, b.n)
	for i := 0; i < b.n; i++ {
		left, right := 0.0, 0.0
		if i > 0 {
			left = u[i-1]
		}
		if i < b.n-1 {
			right = u[i+1]
		}
		r[i] = (left-2*u[i]+right)/h2 + lam*math.Exp(u[i])
	}
	return r
}

// SolveJacobian solves the tridiagonal Newton system with the Thomas
// algorithm in O(n).
func (b *Bratu) SolveJacobian(u branch.State, lam float64, rhs branch.State) (branch.State, error) {
	h2 := b.h * b.h
	off := 1 / h2

	// forward sweep
	cp := make([]float64, b.n)
	dp := make([]float64, b.n)
	den := -2/h2 + lam*math.Exp(u[0])
	if math.Abs(den) < 1e-14 {
		return nil, fmt.Errorf("bratu: singular pivot at node 0")
	}
	cp[0] = off / den
	dp[0] = rhs[0] / den
	for i := 1; i < b.n; i++ {
		den = -2/h2 + lam*math.Exp(u[i]) - off*cp[i-1]
		if math.Abs(den) < 1e-14 {
			return nil, fmt.Errorf("bratu: singular pivot at node %d", i)
		}
		cp[i] = off / den
		dp[i] = (rhs[i] - off*dp[i-1]) / den
	}

	// back substitution
	x := make(branch.State, b.n)
	x[b.n-1] = dp[b.n-1]
	for i := b.n - 2; i >= 0; i-- {
		x[i] = dp[i] - cp[i]*x[i+1]
	}
	return x, nil
}

func (b *Bratu) DLambda(u branch.State, _ float64) branch.State {
	d := make(branch.State, b.n)
	for i, v := range u {
		d[i] = math.Exp(v)
	}
	return d
}

// Dot is the mesh-weighted inner product, so norms approximate the
// continuum L2 norm and stay comparable across resolutions.
func (b *Bratu) Dot(x, y branch.State) float64 {
	s := 0.0
	for i := range x {
		s += x[i] * y[i]
	}
	return b.h * s
}

func (b *Bratu) Norm(v branch.State) float64 {
	return math.Sqrt(b.Dot(v, v))
}

// Start begins at the trivial solution.
func (b *Bratu) Start() (branch.State, float64) {
	return make(branch.State, b.n), 0
}
