package metrics

import (
	"math"

	"github.com/adtzlr/pacopy/internal/branch"
)

// Amplitude reports the largest state component magnitude seen along the
// branch, a quick read on how far the solution family reaches.
type Amplitude struct {
	max float64
}

// NewAmplitude returns the metric.
func NewAmplitude() *Amplitude { return &Amplitude{} }

func (m *Amplitude) Name() string { return "amplitude" }

func (m *Amplitude) Observe(p branch.Point, _ int, _ float64) {
	for _, v := range p.U {
		if mag := math.Abs(v); mag > m.max {
			m.max = mag
		}
	}
}

func (m *Amplitude) Value() float64 { return m.max }

func (m *Amplitude) Reset() { m.max = 0 }
