package branch

import (
	"errors"
	"fmt"
)

var (
	// ErrConvergence indicates a correction ran out of iterations or hit a
	// singular Jacobian. Recoverable: the driver retries with a smaller
	// step.
	ErrConvergence = errors.New("branch: corrector did not converge")

	// ErrStepExhausted indicates a correction failed with the step size
	// already at its minimum. Terminal for the trace.
	ErrStepExhausted = errors.New("branch: step size exhausted at minimum")

	// ErrInvalidStart indicates the starting point could not be corrected
	// onto the branch.
	ErrInvalidStart = errors.New("branch: starting point does not satisfy the system")

	// ErrDimension indicates a state vector of the wrong length.
	ErrDimension = errors.New("branch: state dimension mismatch")

	// ErrDiverged indicates a corrected state with NaN or Inf components.
	ErrDiverged = errors.New("branch: state diverged")
)

// StepError wraps an error with the continuation context it occurred in.
type StepError struct {
	Step     int
	Lambda   float64
	StepSize float64
	Err      error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("branch: step %d (lambda=%.6g, step=%.4g): %v",
		e.Step, e.Lambda, e.StepSize, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }
