package metrics

import "github.com/adtzlr/pacopy/internal/branch"

// ArcLength reports the total arclength covered by the trace.
type ArcLength struct {
	last float64
}

// NewArcLength returns the metric.
func NewArcLength() *ArcLength { return &ArcLength{} }

func (m *ArcLength) Name() string { return "arc-length" }

func (m *ArcLength) Observe(p branch.Point, _ int, _ float64) {
	m.last = p.S
}

func (m *ArcLength) Value() float64 { return m.last }

func (m *ArcLength) Reset() { m.last = 0 }
