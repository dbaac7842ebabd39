package export

import (
	"strings"
	"testing"

	"github.com/adtzlr/pacopy/internal/branch"
	"github.com/adtzlr/pacopy/internal/viz"
)

func TestCanvasToSVG(t *testing.T) {
	c := viz.NewCanvas(4, 4)
	c.DrawLine(0, 0, 7, 15)

	svg := CanvasToSVG(c, 4)
	if !strings.HasPrefix(svg, `<?xml`) || !strings.Contains(svg, "<svg") {
		t.Error("missing svg preamble")
	}
	if strings.Count(svg, "<circle") == 0 {
		t.Error("lit pixels should emit dots")
	}

	if CanvasToSVG(nil, 4) != "" {
		t.Error("nil canvas should render empty")
	}
}

func TestBranchToSVG(t *testing.T) {
	res := &branch.Result{
		Points: []branch.Point{
			{U: branch.State{0.5}, Lambda: -0.25},
			{U: branch.State{0.1}, Lambda: -0.01},
			{U: branch.State{-0.1}, Lambda: -0.01},
			{U: branch.State{-0.5}, Lambda: -0.25},
		},
		Folds: []branch.FoldEvent{{
			Before: branch.Point{U: branch.State{0.1}, Lambda: -0.01},
			After:  branch.Point{U: branch.State{-0.1}, Lambda: -0.01},
			Lambda: 0,
		}},
	}

	svg := BranchToSVG(res, 0, 640, 480)
	if !strings.Contains(svg, "<path") {
		t.Error("branch path missing")
	}
	if strings.Count(svg, "<circle") != 1 {
		t.Errorf("expected 1 fold marker, got %d", strings.Count(svg, "<circle"))
	}
	if strings.Count(svg, " L") != len(res.Points)-1 {
		t.Errorf("path has %d segments, want %d", strings.Count(svg, " L"), len(res.Points)-1)
	}
}

func TestBranchToSVGTooShort(t *testing.T) {
	res := &branch.Result{Points: []branch.Point{{U: branch.State{0}, Lambda: 0}}}
	if BranchToSVG(res, 0, 100, 100) != "" {
		t.Error("a single point is not a branch")
	}
	if BranchToSVG(nil, 0, 100, 100) != "" {
		t.Error("nil result should render empty")
	}
}
