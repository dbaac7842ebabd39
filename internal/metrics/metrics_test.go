package metrics

import (
	"math"
	"testing"

	"github.com/adtzlr/pacopy/internal/branch"
)

var (
	_ branch.Metric = (*Iterations)(nil)
	_ branch.Metric = (*ArcLength)(nil)
	_ branch.Metric = (*StepSpread)(nil)
	_ branch.Metric = (*LambdaSpan)(nil)
	_ branch.Metric = (*Amplitude)(nil)
)

func pt(lam, s float64) branch.Point {
	return branch.Point{U: branch.State{0}, Lambda: lam, S: s}
}

func TestIterationsMean(t *testing.T) {
	m := NewIterations()
	if m.Value() != 0 {
		t.Errorf("empty metric = %g, want 0", m.Value())
	}
	m.Observe(pt(0, 0), 2, 0.1)
	m.Observe(pt(0, 0), 4, 0.1)
	m.Observe(pt(0, 0), 3, 0.1)
	if got := m.Value(); got != 3 {
		t.Errorf("mean = %g, want 3", got)
	}
	m.Reset()
	if m.Value() != 0 {
		t.Errorf("reset metric = %g, want 0", m.Value())
	}
}

func TestArcLengthTracksLast(t *testing.T) {
	m := NewArcLength()
	m.Observe(pt(0, 0.5), 1, 0.5)
	m.Observe(pt(0, 1.25), 1, 0.75)
	if got := m.Value(); got != 1.25 {
		t.Errorf("arc length = %g, want 1.25", got)
	}
}

func TestStepSpreadRatio(t *testing.T) {
	m := NewStepSpread()
	m.Observe(pt(0, 0), 1, 0) // starting point arrives with no step
	m.Observe(pt(0, 0), 1, 0.1)
	m.Observe(pt(0, 0), 1, -0.4) // sign must not matter
	m.Observe(pt(0, 0), 1, 0.2)
	if got := m.Value(); math.Abs(got-4) > 1e-12 {
		t.Errorf("spread = %g, want 4", got)
	}
	m.Reset()
	m.Observe(pt(0, 0), 1, 0.3)
	if got := m.Value(); got != 1 {
		t.Errorf("single-step spread = %g, want 1", got)
	}
}

func TestLambdaSpan(t *testing.T) {
	m := NewLambdaSpan()
	if m.Value() != 0 {
		t.Errorf("empty span = %g, want 0", m.Value())
	}
	m.Observe(pt(-0.25, 0), 1, 0.1)
	m.Observe(pt(0.75, 0), 1, 0.1)
	m.Observe(pt(0.1, 0), 1, 0.1)
	if got := m.Value(); math.Abs(got-1) > 1e-12 {
		t.Errorf("span = %g, want 1", got)
	}
}

func TestAmplitude(t *testing.T) {
	m := NewAmplitude()
	m.Observe(branch.Point{U: branch.State{0.5, -2.5}}, 1, 0.1)
	m.Observe(branch.Point{U: branch.State{1.5, 0}}, 1, 0.1)
	if got := m.Value(); got != 2.5 {
		t.Errorf("amplitude = %g, want 2.5", got)
	}
	m.Reset()
	if m.Value() != 0 {
		t.Errorf("reset amplitude = %g, want 0", m.Value())
	}
}
