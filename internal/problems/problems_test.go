package problems

import (
	"math"
	"testing"

	"github.com/adtzlr/pacopy/internal/branch"
)

var (
	_ branch.Problem      = (*Linear)(nil)
	_ branch.Problem      = (*Fold)(nil)
	_ branch.Problem      = (*Cubic)(nil)
	_ branch.Problem      = (*Bratu)(nil)
	_ branch.Starter      = (*Linear)(nil)
	_ branch.Starter      = (*Fold)(nil)
	_ branch.Starter      = (*Cubic)(nil)
	_ branch.Starter      = (*Bratu)(nil)
	_ branch.Configurable = (*Linear)(nil)
	_ branch.Configurable = (*Fold)(nil)
	_ branch.Configurable = (*Cubic)(nil)
)

func bratuGuess(n int) branch.State {
	u := make(branch.State, n)
	for i := range u {
		x := float64(i+1) / float64(n+1)
		u[i] = 1.2 * x * (1 - x)
	}
	return u
}

func testCases() []struct {
	name string
	p    branch.Problem
	u    branch.State
	lam  float64
} {
	return []struct {
		name string
		p    branch.Problem
		u    branch.State
		lam  float64
	}{
		{"linear", NewLinear(), branch.State{0.7}, 0.4},
		{"fold", NewFold(), branch.State{0.5}, -0.1},
		{"cubic", NewCubic(), branch.State{-1.8}, 4},
		{"bratu", NewBratu(16), bratuGuess(16), 1.2},
	}
}

func TestStartOnBranch(t *testing.T) {
	for _, tt := range testCases() {
		t.Run(tt.name, func(t *testing.T) {
			s, ok := tt.p.(branch.Starter)
			if !ok {
				t.Fatalf("%s should suggest a start", tt.name)
			}
			u0, lam0 := s.Start()
			if len(u0) != tt.p.Dim() {
				t.Fatalf("start dimension %d, want %d", len(u0), tt.p.Dim())
			}
			if r := tt.p.Norm(tt.p.Residual(u0, lam0)); r > 1e-12 {
				t.Errorf("start residual = %g, want 0", r)
			}
		})
	}
}

func TestDLambdaMatchesFiniteDifference(t *testing.T) {
	const eps = 1e-6
	for _, tt := range testCases() {
		t.Run(tt.name, func(t *testing.T) {
			d := tt.p.DLambda(tt.u, tt.lam)
			hi := tt.p.Residual(tt.u, tt.lam+eps)
			lo := tt.p.Residual(tt.u, tt.lam-eps)
			for i := range d {
				fd := (hi[i] - lo[i]) / (2 * eps)
				if math.Abs(fd-d[i]) > 1e-5*(1+math.Abs(d[i])) {
					t.Errorf("component %d: dlambda = %g, finite difference %g", i, d[i], fd)
				}
			}
		})
	}
}

func TestSolveJacobianConsistent(t *testing.T) {
	const delta = 1e-6
	for _, tt := range testCases() {
		t.Run(tt.name, func(t *testing.T) {
			rhs := make(branch.State, tt.p.Dim())
			for i := range rhs {
				rhs[i] = math.Sin(float64(i) + 1)
			}
			x, err := tt.p.SolveJacobian(tt.u, tt.lam, rhs)
			if err != nil {
				t.Fatalf("solve: %v", err)
			}
			// J*x by directional finite difference must reproduce rhs
			hi := tt.p.Residual(tt.u.AddScaled(delta, x), tt.lam)
			lo := tt.p.Residual(tt.u.AddScaled(-delta, x), tt.lam)
			jx := hi.Sub(lo).Scale(1 / (2 * delta))
			diff := jx.Sub(rhs)
			if n := tt.p.Norm(diff); n > 1e-4*(1+tt.p.Norm(rhs)) {
				t.Errorf("|J*x - rhs| = %g", n)
			}
		})
	}
}

func TestNormMatchesDot(t *testing.T) {
	for _, tt := range testCases() {
		t.Run(tt.name, func(t *testing.T) {
			n := tt.p.Norm(tt.u)
			d := math.Sqrt(tt.p.Dot(tt.u, tt.u))
			if math.Abs(n-d) > 1e-12*(1+d) {
				t.Errorf("norm = %g, sqrt(dot) = %g", n, d)
			}
		})
	}
}

func TestParamsRoundTrip(t *testing.T) {
	for _, tt := range testCases() {
		c, ok := tt.p.(branch.Configurable)
		if !ok {
			continue
		}
		t.Run(tt.name, func(t *testing.T) {
			for name := range c.GetParams() {
				if err := c.SetParam(name, 2.5); err != nil {
					t.Fatalf("set %q: %v", name, err)
				}
				if got := c.GetParams()[name]; got != 2.5 {
					t.Errorf("param %q = %g after set, want 2.5", name, got)
				}
			}
			if err := c.SetParam("no-such-knob", 1); err == nil {
				t.Errorf("unknown parameter should error")
			}
		})
	}
}

func TestSingularJacobianAtFolds(t *testing.T) {
	f := NewFold()
	if _, err := f.SolveJacobian(branch.State{0}, 0, branch.State{1}); err == nil {
		t.Errorf("fold jacobian at u=0 must report singularity")
	}
	c := NewCubic()
	at := math.Sqrt(c.A / 3)
	if _, err := c.SolveJacobian(branch.State{at}, 0, branch.State{1}); err == nil {
		t.Errorf("cubic jacobian at the fold must report singularity")
	}
}
