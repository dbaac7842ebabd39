package branch

import "math"

// State is a solution vector u.
type State []float64

// Clone returns a deep copy of the state.
func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

// Add returns s + o as a new state.
func (s State) Add(o State) State {
	r := s.Clone()
	for i := range o {
		r[i] += o[i]
	}
	return r
}

// Sub returns s - o as a new state.
func (s State) Sub(o State) State {
	r := s.Clone()
	for i := range o {
		r[i] -= o[i]
	}
	return r
}

// Scale returns a*s as a new state.
func (s State) Scale(a float64) State {
	r := make(State, len(s))
	for i, v := range s {
		r[i] = a * v
	}
	return r
}

// AddScaled returns s + a*o as a new state.
func (s State) AddScaled(a float64, o State) State {
	r := s.Clone()
	for i := range o {
		r[i] += a * o[i]
	}
	return r
}

// IsValid reports whether every component is finite.
func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Point is an accepted solution on a branch.
type Point struct {
	U      State
	Lambda float64
	S      float64 // cumulative arclength from the starting point
	Index  int     // 0 is the corrected starting point
}

// Clone returns a deep copy of the point.
func (p Point) Clone() Point {
	c := p
	c.U = p.U.Clone()
	return c
}

// Tangent is a direction (du/ds, dlambda/ds) along a branch, normalized so
// that theta^2*Dot(DU, DU) + DLambda^2 == 1.
type Tangent struct {
	DU      State
	DLambda float64
}

// Clone returns a deep copy of the tangent.
func (t Tangent) Clone() Tangent {
	c := t
	c.DU = t.DU.Clone()
	return c
}

// Problem defines f(u, lambda) = 0 together with the linear algebra the
// continuation needs. Implementations own their solver and their geometry;
// Norm and Dot must agree (Norm(v) == sqrt(Dot(v, v))).
type Problem interface {
	// Dim returns the length of the state vector.
	Dim() int
	// Residual evaluates f(u, lambda).
	Residual(u State, lambda float64) State
	// SolveJacobian solves J(u, lambda) x = rhs for x. An error marks the
	// Jacobian as effectively singular at (u, lambda).
	SolveJacobian(u State, lambda float64, rhs State) (State, error)
	// DLambda evaluates the partial derivative df/dlambda at (u, lambda).
	DLambda(u State, lambda float64) State
	// Norm returns the problem norm of v.
	Norm(v State) float64
	// Dot returns the problem inner product of a and b.
	Dot(a, b State) float64
	// Name returns a short identifier for the problem.
	Name() string
}

// Configurable problems expose tunable parameters beyond lambda.
type Configurable interface {
	// GetParams returns the current parameter values.
	GetParams() map[string]float64
	// SetParam updates a parameter by name.
	SetParam(name string, value float64) error
}

// Starter problems suggest a point to begin tracing from.
type Starter interface {
	// Start returns an initial guess (u0, lambda0).
	Start() (State, float64)
}

// CorrectorResult reports the outcome of one correction.
type CorrectorResult struct {
	Point        Point
	Converged    bool
	Iterations   int // Newton updates applied
	ResidualNorm float64
}

// Corrector drives a predicted point back onto the solution set.
type Corrector interface {
	// Correct refines predicted until the residual norm drops below the
	// corrector's tolerance. Arclength correctors constrain the update to
	// the hyperplane through ref spanned by tan at distance step; natural
	// correctors ignore ref, tan and step and keep lambda fixed.
	Correct(p Problem, predicted Point, ref Point, tan *Tangent, step float64) CorrectorResult
	// Name returns a short identifier for the scheme.
	Name() string
}

// Predictor produces the initial guess for the next point.
type Predictor interface {
	// Predict extrapolates from an accepted point by step. tan may be nil
	// for predictors that do not use tangent information.
	Predict(p Problem, from Point, tan *Tangent, step float64) Point
	// Name returns a short identifier for the scheme.
	Name() string
}

// Observer receives every accepted point.
type Observer interface {
	OnAccept(p Point)
}

// Metric accumulates a scalar over a run.
type Metric interface {
	Name() string
	Observe(p Point, iterations int, step float64)
	Value() float64
	Reset()
}

// FoldEvent records a sign change of the fold test function between two
// consecutive accepted points. Lambda is the parameter estimate for the
// fold; when Refined is false it is the midpoint of the bracket.
type FoldEvent struct {
	Before  Point
	After   Point
	Lambda  float64
	Refined bool
}

// StepFunc is invoked after every accepted point. Returning false ends the
// trace with StatusCallbackStop.
type StepFunc func(p Point) bool

// FoldFunc is invoked for every detected fold event.
type FoldFunc func(ev FoldEvent)
