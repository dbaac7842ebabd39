package metrics

import (
	"math"

	"github.com/adtzlr/pacopy/internal/branch"
)

// StepSpread reports the ratio of the largest to the smallest accepted step
// magnitude. A value of 1 means the controller never adapted.
type StepSpread struct {
	min float64
	max float64
}

// NewStepSpread returns the metric.
func NewStepSpread() *StepSpread { return &StepSpread{} }

func (m *StepSpread) Name() string { return "step-spread" }

func (m *StepSpread) Observe(_ branch.Point, _ int, step float64) {
	mag := math.Abs(step)
	if m.max == 0 || mag > m.max {
		m.max = mag
	}
	if m.min == 0 || mag < m.min {
		m.min = mag
	}
}

func (m *StepSpread) Value() float64 {
	if m.min == 0 {
		return 0
	}
	return m.max / m.min
}

func (m *StepSpread) Reset() {
	m.min, m.max = 0, 0
}

// LambdaSpan reports the width of the parameter interval the trace
// covered.
type LambdaSpan struct {
	seen bool
	min  float64
	max  float64
}

// NewLambdaSpan returns the metric.
func NewLambdaSpan() *LambdaSpan { return &LambdaSpan{} }

func (m *LambdaSpan) Name() string { return "lambda-span" }

func (m *LambdaSpan) Observe(p branch.Point, _ int, _ float64) {
	if !m.seen || p.Lambda < m.min {
		m.min = p.Lambda
	}
	if !m.seen || p.Lambda > m.max {
		m.max = p.Lambda
	}
	m.seen = true
}

func (m *LambdaSpan) Value() float64 {
	if !m.seen {
		return 0
	}
	return m.max - m.min
}

func (m *LambdaSpan) Reset() {
	m.seen = false
	m.min, m.max = 0, 0
}
