package tracer

import (
	"fmt"
	"math"

	"github.com/adtzlr/pacopy/internal/branch"
	"github.com/adtzlr/pacopy/internal/monitor"
	"github.com/adtzlr/pacopy/internal/predictor"
	"github.com/adtzlr/pacopy/internal/stepsize"
)

// boundSlack absorbs float accumulation when testing lambda against a
// configured bound.
const boundSlack = 1e-12

// Session advances a single trace one accepted point at a time. The tracer
// drives it in a tight loop; interactive frontends drive it tick by tick.
type Session struct {
	problem   branch.Problem
	predictor branch.Predictor
	corrector branch.Corrector
	ctrl      *stepsize.Controller
	mon       *monitor.Monitor
	cfg       branch.Config
	dir       float64

	cur     branch.Point
	tan     *branch.Tangent
	lastIts int

	observers []branch.Observer
	metrics   []branch.Metric
	onFold    branch.FoldFunc

	result *branch.Result
	status branch.Status
	err    error
}

// Current returns the latest accepted point.
func (s *Session) Current() branch.Point { return s.cur.Clone() }

// Tangent returns the tangent at the latest accepted point, or nil in
// natural mode.
func (s *Session) Tangent() *branch.Tangent {
	if s.tan == nil {
		return nil
	}
	t := s.tan.Clone()
	return &t
}

// StepSize returns the current signed step.
func (s *Session) StepSize() float64 { return s.ctrl.Step() }

// Phase returns the step controller phase.
func (s *Session) Phase() stepsize.Phase { return s.ctrl.Phase() }

// LastIterations returns the corrector iterations of the latest accepted
// step.
func (s *Session) LastIterations() int { return s.lastIts }

// Status returns the session status; StatusRunning until a terminal state.
func (s *Session) Status() branch.Status { return s.status }

// Done reports whether the session reached a terminal state.
func (s *Session) Done() bool { return s.status != branch.StatusRunning }

// Err returns the terminal error, non-nil only for StatusStepExhausted.
func (s *Session) Err() error { return s.err }

// Stop ends a running session on behalf of the step callback.
func (s *Session) Stop() {
	if s.status == branch.StatusRunning {
		s.status = branch.StatusCallbackStop
	}
}

// Cancel ends a running session on behalf of a canceled context.
func (s *Session) Cancel() {
	if s.status == branch.StatusRunning {
		s.status = branch.StatusCanceled
	}
}

// Result returns the traced branch so far. Metric values are refreshed on
// every call; the final call carries the terminal status.
func (s *Session) Result() *branch.Result {
	s.result.Status = s.status
	for _, m := range s.metrics {
		s.result.Metrics[m.Name()] = m.Value()
	}
	return s.result
}

// Step attempts to produce the next accepted point, retrying internally
// with shrunken steps after failed corrections. ok reports a new point;
// once the session is terminal, Step keeps returning ok == false.
func (s *Session) Step() (branch.Point, bool) {
	if s.status != branch.StatusRunning {
		return branch.Point{}, false
	}
	if s.result.Steps >= s.cfg.MaxSteps {
		s.status = branch.StatusMaxSteps
		return branch.Point{}, false
	}

	for {
		step := s.ctrl.Step()
		pred := s.predict(step)
		res := s.corrector.Correct(s.problem, pred, s.cur, s.tan, step)

		tan, err := s.admit(res)
		if err == nil {
			return s.accept(res, tan, step), true
		}

		s.result.Rejects++
		s.result.Errors = append(s.result.Errors, &branch.StepError{
			Step:     s.result.Steps + 1,
			Lambda:   s.cur.Lambda,
			StepSize: step,
			Err:      err,
		})
		if ferr := s.ctrl.OnFailure(); ferr != nil {
			s.err = &branch.StepError{
				Step:     s.result.Steps + 1,
				Lambda:   s.cur.Lambda,
				StepSize: step,
				Err:      ferr,
			}
			s.status = branch.StatusStepExhausted
			return branch.Point{}, false
		}
	}
}

// predict extrapolates by step. Natural stepping lands exactly on a lambda
// bound instead of overshooting it.
func (s *Session) predict(step float64) branch.Point {
	pred := s.predictor.Predict(s.problem, s.cur, s.tan, step)
	if s.cfg.Mode == branch.ModeNatural {
		if step > 0 && pred.Lambda > s.cfg.LambdaMax {
			pred.Lambda = s.cfg.LambdaMax
		}
		if step < 0 && pred.Lambda < s.cfg.LambdaMin {
			pred.Lambda = s.cfg.LambdaMin
		}
	}
	return pred
}

// admit decides whether a correction outcome becomes the next accepted
// point and, in arclength mode, computes the fresh tangent that acceptance
// requires.
func (s *Session) admit(res branch.CorrectorResult) (*branch.Tangent, error) {
	if !res.Converged {
		return nil, branch.ErrConvergence
	}
	if s.cfg.ValidateState && !res.Point.U.IsValid() {
		return nil, branch.ErrDiverged
	}
	if s.tan == nil {
		return nil, nil
	}
	nt, err := predictor.ComputeTangent(s.problem, res.Point, s.tan, s.cfg.Theta, s.dir)
	if err != nil {
		return nil, err
	}
	return &nt, nil
}

func (s *Session) accept(res branch.CorrectorResult, tan *branch.Tangent, step float64) branch.Point {
	pt := res.Point
	pt.Index = s.cur.Index + 1
	pt.S = s.cur.S + s.distance(s.cur, pt)

	s.cur = pt
	if tan != nil {
		s.tan = tan
	}
	s.lastIts = res.Iterations
	s.result.Steps++
	s.result.Points = append(s.result.Points, pt)
	s.result.StepSizes = append(s.result.StepSizes, step)
	s.result.Iterations = append(s.result.Iterations, res.Iterations)
	s.ctrl.OnSuccess(res.Iterations)

	for _, m := range s.metrics {
		m.Observe(pt, res.Iterations, step)
	}
	for _, o := range s.observers {
		o.OnAccept(pt)
	}
	if s.mon != nil && tan != nil {
		if ev := s.mon.Check(pt, *tan, step); ev != nil {
			s.result.Folds = append(s.result.Folds, *ev)
			if s.onFold != nil {
				s.onFold(*ev)
			}
		}
	}

	if s.boundReached(pt.Lambda) {
		s.status = branch.StatusCompleted
	}
	return pt
}

// distance is the theta-metric length of the segment between consecutive
// accepted points, accumulated into Point.S.
func (s *Session) distance(a, b branch.Point) float64 {
	du := b.U.Sub(a.U)
	dl := b.Lambda - a.Lambda
	th2 := s.cfg.Theta * s.cfg.Theta
	return math.Sqrt(th2*s.problem.Dot(du, du) + dl*dl)
}

func (s *Session) boundReached(lam float64) bool {
	if hi := s.cfg.LambdaMax; !math.IsInf(hi, 1) && lam >= hi-boundSlack*(1+math.Abs(hi)) {
		return true
	}
	if lo := s.cfg.LambdaMin; !math.IsInf(lo, -1) && lam <= lo+boundSlack*(1+math.Abs(lo)) {
		return true
	}
	return false
}

// refine recomputes a point and tangent at a trial arclength offset on
// behalf of fold bisection.
func (s *Session) refine(from branch.Point, dir branch.Tangent, step float64) (branch.Point, branch.Tangent, error) {
	pred := s.predictor.Predict(s.problem, from, &dir, step)
	res := s.corrector.Correct(s.problem, pred, from, &dir, step)
	if !res.Converged {
		return branch.Point{}, branch.Tangent{}, branch.ErrConvergence
	}
	tan, err := predictor.ComputeTangent(s.problem, res.Point, &dir, s.cfg.Theta, s.dir)
	if err != nil {
		return branch.Point{}, branch.Tangent{}, err
	}
	return res.Point, tan, nil
}

func sign(x float64) float64 {
	if x < 0 {
		return -1
	}
	return 1
}

func dimensionError(got, want int) error {
	return fmt.Errorf("%w: got %d, want %d", branch.ErrDimension, got, want)
}
