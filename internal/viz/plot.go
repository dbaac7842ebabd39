package viz

import (
	"math"

	"github.com/adtzlr/pacopy/internal/branch"
)

// BranchPlot renders a bifurcation diagram, lambda against one state
// component, onto a braille canvas.
type BranchPlot struct {
	Component int

	canvas                 *Canvas
	xmin, xmax, ymin, ymax float64
}

func NewBranchPlot(width, height, component int) *BranchPlot {
	return &BranchPlot{
		Component: component,
		canvas:    NewCanvas(width, height),
	}
}

// Canvas exposes the backing canvas for snapshots.
func (p *BranchPlot) Canvas() *Canvas {
	return p.canvas
}

// Bounds returns the data window of the last render.
func (p *BranchPlot) Bounds() (xmin, xmax, ymin, ymax float64) {
	return p.xmin, p.xmax, p.ymin, p.ymax
}

// Render redraws the branch with cross markers at detected folds and
// returns the canvas text. The data window follows the traced points with
// a tenth of padding on each side.
func (p *BranchPlot) Render(points []branch.Point, folds []branch.FoldEvent) string {
	p.canvas.Clear()
	if len(points) == 0 {
		return p.canvas.String()
	}

	p.fitBounds(points)

	px, py := p.pixel(points[0])
	p.canvas.Set(px, py)
	for _, pt := range points[1:] {
		x, y := p.pixel(pt)
		p.canvas.DrawLine(px, py, x, y)
		px, py = x, y
	}

	for _, ev := range folds {
		x, y := p.pixelAt(ev.Lambda, p.foldValue(ev))
		p.canvas.DrawCross(x, y, 3)
	}

	return p.canvas.String()
}

func (p *BranchPlot) value(pt branch.Point) float64 {
	if p.Component < len(pt.U) {
		return pt.U[p.Component]
	}
	return 0
}

// foldValue places a fold marker between the bracketing points.
func (p *BranchPlot) foldValue(ev branch.FoldEvent) float64 {
	return (p.value(ev.Before) + p.value(ev.After)) / 2
}

func (p *BranchPlot) fitBounds(points []branch.Point) {
	xmin, xmax := points[0].Lambda, points[0].Lambda
	v := p.value(points[0])
	ymin, ymax := v, v
	for _, pt := range points {
		xmin = math.Min(xmin, pt.Lambda)
		xmax = math.Max(xmax, pt.Lambda)
		v = p.value(pt)
		ymin = math.Min(ymin, v)
		ymax = math.Max(ymax, v)
	}

	rangeX := xmax - xmin
	rangeY := ymax - ymin
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	p.xmin = xmin - rangeX*0.1
	p.xmax = xmax + rangeX*0.1
	p.ymin = ymin - rangeY*0.1
	p.ymax = ymax + rangeY*0.1
}

func (p *BranchPlot) pixel(pt branch.Point) (int, int) {
	return p.pixelAt(pt.Lambda, p.value(pt))
}

// pixelAt maps data coordinates to sub-pixel coordinates, y growing
// upward on screen.
func (p *BranchPlot) pixelAt(x, y float64) (int, int) {
	w := p.canvas.Width * 2
	h := p.canvas.Height * 4
	cx := int((x - p.xmin) / (p.xmax - p.xmin) * float64(w-1))
	cy := int((1 - (y-p.ymin)/(p.ymax-p.ymin)) * float64(h-1))
	return cx, cy
}
