// Package metrics provides run statistics that accumulate over the emitted
// points of a trace, the corrected starting point included.
package metrics

import "github.com/adtzlr/pacopy/internal/branch"

// Iterations tracks the mean corrector iterations per corrected point, a
// direct read on how hard the trace worked.
type Iterations struct {
	sum int
	n   int
}

// NewIterations returns the metric.
func NewIterations() *Iterations { return &Iterations{} }

func (m *Iterations) Name() string { return "newton-iterations" }

func (m *Iterations) Observe(_ branch.Point, iterations int, _ float64) {
	m.sum += iterations
	m.n++
}

func (m *Iterations) Value() float64 {
	if m.n == 0 {
		return 0
	}
	return float64(m.sum) / float64(m.n)
}

func (m *Iterations) Reset() {
	m.sum, m.n = 0, 0
}
