package branch

// Status describes how a trace ended.
type Status int

const (
	// StatusRunning means the trace has not reached a terminal state yet.
	StatusRunning Status = iota
	// StatusCompleted means lambda reached the configured bound.
	StatusCompleted
	// StatusMaxSteps means the accepted-step budget was spent.
	StatusMaxSteps
	// StatusCallbackStop means the step callback asked to stop.
	StatusCallbackStop
	// StatusStepExhausted means corrections kept failing at the minimum
	// step size.
	StatusStepExhausted
	// StatusCanceled means the context was canceled between steps.
	StatusCanceled
)

func (s Status) String() string {
	switch s {
	case StatusRunning:
		return "running"
	case StatusCompleted:
		return "completed"
	case StatusMaxSteps:
		return "max-steps"
	case StatusCallbackStop:
		return "callback-stop"
	case StatusStepExhausted:
		return "step-exhausted"
	case StatusCanceled:
		return "canceled"
	}
	return "unknown"
}

// ParseStatus is the inverse of String. Unrecognized strings map to
// StatusRunning.
func ParseStatus(s string) Status {
	switch s {
	case "completed":
		return StatusCompleted
	case "max-steps":
		return StatusMaxSteps
	case "callback-stop":
		return StatusCallbackStop
	case "step-exhausted":
		return StatusStepExhausted
	case "canceled":
		return StatusCanceled
	}
	return StatusRunning
}

// Result holds a traced branch. StepSizes and Iterations run parallel to
// the accepted steps: entry i belongs to the step that produced
// Points[i+1].
type Result struct {
	Points     []Point
	StepSizes  []float64
	Iterations []int
	Folds      []FoldEvent
	Status     Status
	Steps      int // accepted steps, excluding the starting point
	Rejects    int // correction attempts that failed and were retried
	Metrics    map[string]float64
	Errors     []error // recoverable errors the trace survived
}

// Last returns the final accepted point.
func (r *Result) Last() Point {
	return r.Points[len(r.Points)-1]
}

// Lambdas returns the parameter value of every accepted point.
func (r *Result) Lambdas() []float64 {
	out := make([]float64, len(r.Points))
	for i, p := range r.Points {
		out[i] = p.Lambda
	}
	return out
}

// Component returns component i of the state at every accepted point.
func (r *Result) Component(i int) []float64 {
	out := make([]float64, len(r.Points))
	for j, p := range r.Points {
		out[j] = p.U[i]
	}
	return out
}

// ArcLengths returns the cumulative arclength at every accepted point.
func (r *Result) ArcLengths() []float64 {
	out := make([]float64, len(r.Points))
	for i, p := range r.Points {
		out[i] = p.S
	}
	return out
}
