package viz

import (
	"math/bits"
	"strings"
	"testing"

	"github.com/adtzlr/pacopy/internal/branch"
)

// litPixels counts lit braille dots, not characters.
func litPixels(s string) int {
	n := 0
	for _, r := range s {
		if r > 0x2800 && r <= 0x28FF {
			n += bits.OnesCount8(uint8(r - 0x2800))
		}
	}
	return n
}

func TestCanvasSetUnset(t *testing.T) {
	c := NewCanvas(4, 4)

	c.Set(0, 0)
	if c.Grid[0][0] == 0x2800 {
		t.Error("pixel not set")
	}

	c.Unset(0, 0)
	if c.Grid[0][0] != 0x2800 {
		t.Error("pixel not cleared")
	}
}

func TestCanvasIgnoresOutOfBounds(t *testing.T) {
	c := NewCanvas(2, 2)

	c.Set(-1, 0)
	c.Set(0, -5)
	c.Set(100, 0)
	c.Set(0, 100)

	if litPixels(c.String()) != 0 {
		t.Error("out-of-bounds writes should be dropped")
	}
}

func TestCanvasDrawLine(t *testing.T) {
	c := NewCanvas(4, 2)
	c.DrawLine(0, 0, 7, 7)

	if litPixels(c.String()) < 8 {
		t.Errorf("diagonal line lit %d pixels, want at least 8", litPixels(c.String()))
	}
}

func TestBranchPlotRender(t *testing.T) {
	p := NewBranchPlot(20, 10, 0)
	points := []branch.Point{
		{U: branch.State{0}, Lambda: 0},
		{U: branch.State{0.5}, Lambda: 0.5},
		{U: branch.State{1}, Lambda: 1},
	}

	out := p.Render(points, nil)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 10 {
		t.Errorf("rendered %d rows, want 10", len(lines))
	}
	if litPixels(out) == 0 {
		t.Error("branch line left the canvas blank")
	}

	xmin, xmax, _, _ := p.Bounds()
	if xmin >= 0 || xmax <= 1 {
		t.Errorf("bounds [%g, %g] missing the padding margin", xmin, xmax)
	}
}

func TestBranchPlotEmpty(t *testing.T) {
	p := NewBranchPlot(10, 5, 0)
	if litPixels(p.Render(nil, nil)) != 0 {
		t.Error("empty branch should render a blank canvas")
	}
}

func TestBranchPlotDegenerateRange(t *testing.T) {
	p := NewBranchPlot(10, 5, 0)
	points := []branch.Point{{U: branch.State{2}, Lambda: 3}}

	out := p.Render(points, nil)
	if litPixels(out) == 0 {
		t.Error("single point should still appear")
	}
}

func TestBranchPlotFoldMarkers(t *testing.T) {
	p := NewBranchPlot(20, 10, 0)
	points := []branch.Point{
		{U: branch.State{0.5}, Lambda: -0.25},
		{U: branch.State{0.1}, Lambda: -0.01},
		{U: branch.State{-0.1}, Lambda: -0.01},
		{U: branch.State{-0.5}, Lambda: -0.25},
	}
	folds := []branch.FoldEvent{{
		Before: points[1],
		After:  points[2],
		Lambda: 0,
	}}

	plain := p.Render(points, nil)
	marked := p.Render(points, folds)
	if litPixels(marked) <= litPixels(plain) {
		t.Error("fold marker should add pixels to the diagram")
	}
}
