package problems

import (
	"context"
	"math"
	"testing"

	"github.com/adtzlr/pacopy/internal/branch"
	"github.com/adtzlr/pacopy/internal/tracer"
)

func TestBratuThomasSolve(t *testing.T) {
	b := NewBratu(16)
	u := bratuGuess(16)
	lam := 1.2

	rhs := make(branch.State, b.Dim())
	for i := range rhs {
		rhs[i] = math.Cos(float64(i))
	}
	x, err := b.SolveJacobian(u, lam, rhs)
	if err != nil {
		t.Fatalf("solve: %v", err)
	}

	// multiply the tridiagonal Jacobian back explicitly
	h2 := 1.0 / (17.0 * 17.0)
	for i := 0; i < b.Dim(); i++ {
		left, right := 0.0, 0.0
		if i > 0 {
			left = x[i-1]
		}
		if i < b.Dim()-1 {
			right = x[i+1]
		}
		jx := (left-2*x[i]+right)/h2 + lam*math.Exp(u[i])*x[i]
		if math.Abs(jx-rhs[i]) > 1e-9 {
			t.Fatalf("row %d: J*x = %g, rhs = %g", i, jx, rhs[i])
		}
	}
}

func TestBratuFoldLocation(t *testing.T) {
	b := NewBratu(50)
	cfg := branch.DefaultConfig()
	cfg.Step0 = 0.1
	cfg.StepMax = 0.3
	cfg.MaxSteps = 60
	cfg.RefineFolds = true
	cfg.FoldTolerance = 1e-8

	u0, lam0 := b.Start()
	res, err := tracer.New(b).Trace(context.Background(), u0, lam0, cfg)
	if err != nil {
		t.Fatalf("trace: %v", err)
	}
	if res.Status != branch.StatusMaxSteps {
		t.Errorf("status = %v, want max-steps after rounding the fold", res.Status)
	}
	if len(res.Folds) != 1 {
		t.Fatalf("folds = %d, want 1", len(res.Folds))
	}
	ev := res.Folds[0]
	if !ev.Refined {
		t.Errorf("fold refinement failed")
	}
	// the continuum fold sits at 3.51383; n=50 shifts it by O(h^2)
	if math.Abs(ev.Lambda-3.51383) > 0.01 {
		t.Errorf("fold at lambda = %g, want 3.5138 +- 0.01", ev.Lambda)
	}
	mid := b.Dim() / 2
	if res.Last().U[mid] < 1.39 {
		t.Errorf("final midpoint %g, want beyond the critical profile on the upper branch", res.Last().U[mid])
	}
	for _, p := range res.Points {
		if p.Lambda > ev.Lambda+0.01 {
			t.Errorf("point %d at lambda %g beyond the fold", p.Index, p.Lambda)
		}
	}
}

func TestBratuNaturalToBound(t *testing.T) {
	b := NewBratu(50)
	cfg := branch.DefaultConfig()
	cfg.Mode = branch.ModeNatural
	cfg.Step0 = 0.2
	cfg.StepMax = 0.5
	cfg.LambdaMax = 3.0
	cfg.MaxSteps = 100

	u0, lam0 := b.Start()
	res, err := tracer.New(b).Trace(context.Background(), u0, lam0, cfg)
	if err != nil {
		t.Fatalf("trace: %v", err)
	}
	if res.Status != branch.StatusCompleted {
		t.Fatalf("status = %v, want completed at lambda = 3", res.Status)
	}
	if res.Last().Lambda != 3.0 {
		t.Errorf("final lambda = %g, the clamped natural step should land on the bound", res.Last().Lambda)
	}
	if r := b.Norm(b.Residual(res.Last().U, res.Last().Lambda)); r > 1e-9 {
		t.Errorf("final residual = %g", r)
	}
}

func BenchmarkBratuTrace(b *testing.B) {
	prob := NewBratu(64)
	cfg := branch.DefaultConfig()
	cfg.Step0 = 0.1
	cfg.StepMax = 0.3
	cfg.MaxSteps = 40

	u0, lam0 := prob.Start()
	tr := tracer.New(prob)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := tr.Trace(context.Background(), u0, lam0, cfg); err != nil {
			b.Fatal(err)
		}
	}
}
