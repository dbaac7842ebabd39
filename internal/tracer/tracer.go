// Package tracer drives the predict-correct-adapt loop that turns a
// Problem into a traced branch.
package tracer

import (
	"context"
	"math"

	"github.com/adtzlr/pacopy/internal/branch"
	"github.com/adtzlr/pacopy/internal/corrector"
	"github.com/adtzlr/pacopy/internal/monitor"
	"github.com/adtzlr/pacopy/internal/predictor"
	"github.com/adtzlr/pacopy/internal/stepsize"
)

// Tracer traces solution branches of a problem. Observers, metrics and the
// fold callback are shared by every trace it starts.
type Tracer struct {
	problem   branch.Problem
	predictor branch.Predictor
	corrector branch.Corrector
	observers []branch.Observer
	metrics   []branch.Metric
	onFold    branch.FoldFunc
}

// New returns a tracer for the problem. Predictor and corrector default to
// the schemes matching the configured mode.
func New(p branch.Problem) *Tracer {
	return &Tracer{problem: p}
}

// AddObserver registers an observer for accepted points.
func (t *Tracer) AddObserver(o branch.Observer) {
	t.observers = append(t.observers, o)
}

// AddMetric registers a metric, reset at the start of every trace.
func (t *Tracer) AddMetric(m branch.Metric) {
	t.metrics = append(t.metrics, m)
}

// OnFold registers a callback for detected folds.
func (t *Tracer) OnFold(fn branch.FoldFunc) {
	t.onFold = fn
}

// UsePredictor overrides the mode-default predictor.
func (t *Tracer) UsePredictor(p branch.Predictor) {
	t.predictor = p
}

// UseCorrector overrides the mode-default corrector.
func (t *Tracer) UseCorrector(c branch.Corrector) {
	t.corrector = c
}

// Trace runs a full continuation from (u0, lam0) under cfg. The returned
// result is valid even when err is non-nil, except for setup failures.
func (t *Tracer) Trace(ctx context.Context, u0 branch.State, lam0 float64, cfg branch.Config) (*branch.Result, error) {
	return t.TraceFunc(ctx, u0, lam0, cfg, nil)
}

// TraceFunc is Trace with a per-step callback. fn runs after every accepted
// point; returning false ends the trace with StatusCallbackStop.
func (t *Tracer) TraceFunc(ctx context.Context, u0 branch.State, lam0 float64, cfg branch.Config, fn branch.StepFunc) (*branch.Result, error) {
	s, err := t.Session(u0, lam0, cfg)
	if err != nil {
		return nil, err
	}
	for !s.Done() {
		select {
		case <-ctx.Done():
			s.Cancel()
			return s.Result(), ctx.Err()
		default:
		}
		pt, ok := s.Step()
		if ok && fn != nil && !fn(pt) {
			s.Stop()
		}
	}
	return s.Result(), s.Err()
}

// Session verifies the starting point and returns a stepwise session. The
// start is corrected at fixed lambda in either mode; a start that cannot be
// corrected is ErrInvalidStart.
func (t *Tracer) Session(u0 branch.State, lam0 float64, cfg branch.Config) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(u0) != t.problem.Dim() {
		return nil, dimensionError(len(u0), t.problem.Dim())
	}

	pred := t.predictor
	if pred == nil {
		pred = defaultPredictor(cfg)
	}
	corr := t.corrector
	if corr == nil {
		corr = defaultCorrector(cfg)
	}

	start := corrector.NewNatural(cfg.Tolerance, cfg.MaxIterations)
	res := start.Correct(t.problem, branch.Point{U: u0.Clone(), Lambda: lam0}, branch.Point{}, nil, 0)
	if !res.Converged || (cfg.ValidateState && !res.Point.U.IsValid()) {
		return nil, &branch.StepError{
			Lambda: lam0, StepSize: 0,
			Err: branch.ErrInvalidStart,
		}
	}
	cur := res.Point
	cur.Index, cur.S = 0, 0

	// The sign of Step0 picks the initial direction. Natural stepping keeps
	// it on the step itself; arclength stepping moves it onto the tangent
	// and steps by positive arclength.
	sc := cfg
	if cfg.Mode == branch.ModeArclength {
		sc.Step0 = math.Abs(cfg.Step0)
	}

	s := &Session{
		problem:   t.problem,
		predictor: pred,
		corrector: corr,
		ctrl:      stepsize.New(sc),
		cfg:       cfg,
		dir:       sign(cfg.Step0),
		cur:       cur,
		lastIts:   res.Iterations,
		observers: t.observers,
		metrics:   t.metrics,
		onFold:    t.onFold,
		status:    branch.StatusRunning,
		result: &branch.Result{
			Points:  []branch.Point{cur},
			Status:  branch.StatusRunning,
			Metrics: map[string]float64{},
		},
	}

	if cfg.Mode == branch.ModeArclength {
		tan, err := predictor.ComputeTangent(t.problem, cur, nil, cfg.Theta, s.dir)
		if err != nil {
			return nil, &branch.StepError{Lambda: cur.Lambda, Err: branch.ErrInvalidStart}
		}
		s.tan = &tan
		if cfg.DetectFolds {
			s.mon = monitor.New(cfg.RefineFolds, cfg.FoldTolerance, s.refine)
			s.mon.Check(cur, tan, 0)
		}
	}

	for _, m := range s.metrics {
		m.Reset()
		m.Observe(cur, res.Iterations, 0)
	}
	for _, o := range s.observers {
		o.OnAccept(cur)
	}
	return s, nil
}

func defaultPredictor(cfg branch.Config) branch.Predictor {
	if cfg.Mode == branch.ModeArclength {
		return predictor.NewTangent()
	}
	return predictor.NewNatural()
}

func defaultCorrector(cfg branch.Config) branch.Corrector {
	if cfg.Mode == branch.ModeArclength {
		return corrector.NewArclength(cfg.Tolerance, cfg.MaxIterations, cfg.Theta)
	}
	return corrector.NewNatural(cfg.Tolerance, cfg.MaxIterations)
}
