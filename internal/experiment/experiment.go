package experiment

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/adtzlr/pacopy/internal/branch"
	"github.com/adtzlr/pacopy/internal/tracer"
)

type Config struct {
	Problem string
	Size    int
	Params  map[string]float64
	U0      branch.State // optional; overrides the problem's suggested start
	Lambda0 float64      // used together with U0
	Branch  branch.Config
}

type Experiment struct {
	cfg     Config
	problem branch.Problem
	tracer  *tracer.Tracer
	log     *slog.Logger
}

func New(cfg Config, log *slog.Logger) *Experiment {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Experiment{cfg: cfg, log: log}
}

// Setup resolves the problem, applies parameter overrides and assembles the
// tracer with the default metrics.
func (e *Experiment) Setup(reg *Registry) error {
	p, err := reg.GetProblem(e.cfg.Problem, e.cfg.Size)
	if err != nil {
		return err
	}
	if len(e.cfg.Params) > 0 {
		c, ok := p.(branch.Configurable)
		if !ok {
			return fmt.Errorf("problem %s has no tunable parameters", e.cfg.Problem)
		}
		for name, value := range e.cfg.Params {
			if err := c.SetParam(name, value); err != nil {
				return err
			}
		}
	}

	e.problem = p
	e.tracer = tracer.New(p)
	for _, m := range reg.DefaultMetrics() {
		e.tracer.AddMetric(m)
	}
	e.tracer.AddObserver(&logObserver{log: e.log})
	e.tracer.OnFold(func(ev branch.FoldEvent) {
		e.log.Info("fold detected", "lambda", ev.Lambda, "refined", ev.Refined)
	})
	return nil
}

func (e *Experiment) Run(ctx context.Context) (*branch.Result, error) {
	if e.tracer == nil {
		return nil, fmt.Errorf("experiment not setup")
	}

	u0, lam0, err := e.start()
	if err != nil {
		return nil, err
	}

	e.log.Info("tracing branch",
		"problem", e.problem.Name(),
		"mode", string(e.cfg.Branch.Mode),
		"lambda0", lam0,
		"step0", e.cfg.Branch.Step0)

	res, err := e.tracer.Trace(ctx, u0, lam0, e.cfg.Branch)
	if res != nil {
		e.log.Info("trace finished",
			"status", res.Status.String(),
			"steps", res.Steps,
			"rejects", res.Rejects,
			"folds", len(res.Folds))
	}
	return res, err
}

func (e *Experiment) start() (branch.State, float64, error) {
	if e.cfg.U0 != nil {
		return e.cfg.U0.Clone(), e.cfg.Lambda0, nil
	}
	s, ok := e.problem.(branch.Starter)
	if !ok {
		return nil, 0, fmt.Errorf("problem %s needs an explicit starting point", e.cfg.Problem)
	}
	u0, lam0 := s.Start()
	return u0, lam0, nil
}

// GetTracer returns the underlying tracer for adding observers
func (e *Experiment) GetTracer() *tracer.Tracer {
	return e.tracer
}

// GetProblem returns the resolved problem after Setup.
func (e *Experiment) GetProblem() branch.Problem {
	return e.problem
}

type logObserver struct {
	log *slog.Logger
}

func (o *logObserver) OnAccept(p branch.Point) {
	o.log.Debug("accepted", "index", p.Index, "lambda", p.Lambda, "s", p.S)
}
