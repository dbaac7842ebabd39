package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/adtzlr/pacopy/internal/branch"
	"github.com/adtzlr/pacopy/internal/tracer"
)

const (
	plotWidth       = 80
	plotHeight      = 24
	historyCapacity = 600
	lambdaInset     = 60
)

var (
	canvasStyle = lipgloss.NewStyle().Padding(1, 2)
	statsStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(45)
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(12)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(2)
)

type TickMsg time.Time

// SnapshotFunc receives the plot canvas when the user asks for a snapshot.
type SnapshotFunc func(*Canvas) error

// RestartFunc builds a fresh session for the restart key.
type RestartFunc func() (*tracer.Session, error)

// Model drives a continuation session tick by tick and renders the growing
// bifurcation diagram beside live solver statistics.
type Model struct {
	session *tracer.Session
	problem branch.Problem
	name    string
	mode    string

	maxSteps int
	plot     *BranchPlot
	points   []branch.Point
	folds    []branch.FoldEvent

	stepHistory []float64
	iterHistory []float64

	running      bool
	stepsPerTick int
	frame        int
	showHelp     bool
	notice       string

	snapshot SnapshotFunc
	restart  RestartFunc
}

// NewModel wraps a prepared session. The plotted component defaults to the
// middle of the state vector, which for discretized problems is the peak.
func NewModel(s *tracer.Session, p branch.Problem, cfg branch.Config) Model {
	m := Model{
		session:      s,
		problem:      p,
		name:         p.Name(),
		mode:         string(cfg.Mode),
		maxSteps:     cfg.MaxSteps,
		plot:         NewBranchPlot(plotWidth, plotHeight, p.Dim()/2),
		points:       make([]branch.Point, 0, cfg.MaxSteps+1),
		stepHistory:  make([]float64, 0, historyCapacity),
		iterHistory:  make([]float64, 0, historyCapacity),
		running:      true,
		stepsPerTick: 1,
	}
	m.points = append(m.points, s.Current())
	return m
}

// SetSnapshot wires the snapshot key to a sink, usually an SVG writer.
func (m *Model) SetSnapshot(fn SnapshotFunc) { m.snapshot = fn }

// SetRestart wires the restart key to a session factory.
func (m *Model) SetRestart(fn RestartFunc) { m.restart = fn }

func (m Model) Init() tea.Cmd {
	return tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Update handles input events and advances the trace.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			if !m.session.Done() {
				m.running = !m.running
			}
		case "r":
			m.doRestart()
		case "c":
			m.cycleComponent()
		case "+", "=":
			if m.stepsPerTick < 50 {
				m.stepsPerTick++
			}
		case "-", "_":
			if m.stepsPerTick > 1 {
				m.stepsPerTick--
			}
		case "s":
			m.takeSnapshot()
		case "t":
			names := ThemeNames()
			for i, name := range names {
				if name == CurrentTheme.Name {
					SetTheme(names[(i+1)%len(names)])
					break
				}
			}
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		m.frame++
		if m.running {
			m.advance()
		}
		return m, tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return TickMsg(t) })
	}
	return m, nil
}

// advance takes up to stepsPerTick accepted steps.
func (m *Model) advance() {
	for i := 0; i < m.stepsPerTick && !m.session.Done(); i++ {
		pt, ok := m.session.Step()
		if !ok {
			break
		}
		m.record(pt)
	}
	if m.session.Done() {
		m.running = false
	}
}

func (m *Model) record(pt branch.Point) {
	m.points = append(m.points, pt)
	m.folds = m.session.Result().Folds

	m.stepHistory = append(m.stepHistory, math.Abs(m.session.StepSize()))
	if len(m.stepHistory) > historyCapacity {
		m.stepHistory = m.stepHistory[1:]
	}
	m.iterHistory = append(m.iterHistory, float64(m.session.LastIterations()))
	if len(m.iterHistory) > historyCapacity {
		m.iterHistory = m.iterHistory[1:]
	}
}

func (m *Model) cycleComponent() {
	m.plot.Component = (m.plot.Component + 1) % m.problem.Dim()
}

func (m *Model) takeSnapshot() {
	if m.snapshot == nil {
		return
	}
	if err := m.snapshot(m.plot.Canvas()); err != nil {
		m.notice = "snapshot failed: " + err.Error()
		return
	}
	m.notice = "snapshot saved"
}

// doRestart replaces the session with a fresh one and clears the diagram.
func (m *Model) doRestart() {
	if m.restart == nil {
		return
	}
	s, err := m.restart()
	if err != nil {
		m.notice = "restart failed: " + err.Error()
		return
	}
	m.session = s
	m.points = m.points[:0]
	m.points = append(m.points, s.Current())
	m.folds = nil
	m.stepHistory = m.stepHistory[:0]
	m.iterHistory = m.iterHistory[:0]
	m.running = true
	m.notice = ""
}

func (m Model) statusLine() string {
	if !m.session.Done() {
		if m.running {
			return StatusTracing.Render(AnimatedSpinner(m.frame) + " TRACING")
		}
		return StatusPaused.Render("◼ PAUSED")
	}
	status := strings.ToUpper(m.session.Status().String())
	switch m.session.Status() {
	case branch.StatusCompleted:
		return StatusTracing.Render("● " + status)
	case branch.StatusStepExhausted, branch.StatusCanceled:
		return StatusStopped.Render("● " + status)
	}
	return StatusPaused.Render("● " + status)
}

// View renders the TUI interface.
func (m Model) View() string {
	if m.showHelp {
		return helpOverlay
	}

	plotStyle := lipgloss.NewStyle().Foreground(CurrentTheme.Primary)
	diagram := plotStyle.Render(m.plot.Render(m.points, m.folds))
	xmin, xmax, ymin, ymax := m.plot.Bounds()
	axis := Subtle.Render(fmt.Sprintf("lambda: [%.4g, %.4g]   u[%d]: [%.4g, %.4g]",
		xmin, xmax, m.plot.Component, ymin, ymax))
	canvasView := canvasStyle.Render(diagram + "\n" + axis)

	cur := m.session.Current()
	var s strings.Builder
	s.WriteString(headerStyle.Render(strings.ToUpper(m.name)+" BRANCH") + "\n")
	s.WriteString(m.statusLine() + "\n")
	if m.notice != "" {
		s.WriteString(Subtle.Render(m.notice) + "\n")
	}
	s.WriteString("\n")

	if len(m.points) > 1 {
		tail := m.lambdaTail()
		chart := asciigraph.Plot(tail, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("lambda"))
		s.WriteString(graphStyle.Render(chart) + "\n\n")
	}

	s.WriteString(labelStyle.Render("Lambda") + valueStyle.Render(fmt.Sprintf("%.6g", cur.Lambda)) + "\n")
	s.WriteString(labelStyle.Render("Value") + valueStyle.Render(fmt.Sprintf("u[%d] = %.6g", m.plot.Component, m.componentOf(cur))) + "\n")
	s.WriteString(labelStyle.Render("Arc length") + valueStyle.Render(fmt.Sprintf("%.6g", cur.S)) + "\n")
	s.WriteString(labelStyle.Render("Step size") + valueStyle.Render(fmt.Sprintf("%.3g (%s)", m.session.StepSize(), m.session.Phase())) + "\n")
	s.WriteString(labelStyle.Render("Iterations") + valueStyle.Render(fmt.Sprintf("%d", m.session.LastIterations())) + "\n")

	s.WriteString("\n" + Separator(40) + "\n\n")

	steps := len(m.points) - 1
	s.WriteString(labelStyle.Render("Steps") + valueStyle.Render(fmt.Sprintf("%d / %d  ", steps, m.maxSteps)))
	s.WriteString(ProgressBar(float64(steps)/float64(m.maxSteps), 16) + "\n")
	s.WriteString(labelStyle.Render("Rejects") + valueStyle.Render(fmt.Sprintf("%d", m.session.Result().Rejects)) + "\n")
	s.WriteString(labelStyle.Render("Folds") + valueStyle.Render(m.foldSummary()) + "\n")

	if len(m.stepHistory) > 1 {
		s.WriteString("\n" + MetricLabel.Render("step history") + "\n")
		s.WriteString(SparklineChart(m.stepHistory, 36) + "\n")
	}
	if len(m.iterHistory) > 1 {
		s.WriteString(MetricLabel.Render("newton iterations") + "\n")
		s.WriteString(SparklineChart(m.iterHistory, 36) + "\n")
	}

	s.WriteString(helpStyle.Render("\nSP:Pause R:Restart C:Component S:Snapshot\nT:Theme +/-:Speed ?:Help Q:Quit"))

	statsView := statsStyle.Render(s.String())
	return lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsView)
}

func (m Model) componentOf(pt branch.Point) float64 {
	if m.plot.Component < len(pt.U) {
		return pt.U[m.plot.Component]
	}
	return 0
}

func (m Model) lambdaTail() []float64 {
	start := 0
	if len(m.points) > lambdaInset {
		start = len(m.points) - lambdaInset
	}
	tail := make([]float64, 0, len(m.points)-start)
	for _, p := range m.points[start:] {
		tail = append(tail, p.Lambda)
	}
	return tail
}

func (m Model) foldSummary() string {
	if len(m.folds) == 0 {
		return "none"
	}
	last := m.folds[len(m.folds)-1]
	return fmt.Sprintf("%d (last at lambda = %.6g)", len(m.folds), last.Lambda)
}

const helpOverlay = `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume trace       ║
║  R        - Restart from the start   ║
║  C        - Cycle plotted component  ║
║  S        - Save plot snapshot       ║
║  T        - Cycle color themes       ║
║  + / -    - Steps per tick           ║
║  ?        - Toggle this help         ║
║  Q        - Quit                     ║
╚══════════════════════════════════════╝
`
