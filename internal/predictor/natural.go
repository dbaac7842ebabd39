// Package predictor produces initial guesses for the next branch point and
// computes branch tangents.
package predictor

import "github.com/adtzlr/pacopy/internal/branch"

// Natural reuses the last state and bumps lambda by the step. Zeroth order;
// needs no derivative information.
type Natural struct{}

// NewNatural returns a zeroth-order predictor.
func NewNatural() *Natural { return &Natural{} }

// Name identifies the scheme.
func (*Natural) Name() string { return "natural" }

// Predict returns (u, lambda+step). The tangent is ignored.
func (*Natural) Predict(_ branch.Problem, from branch.Point, _ *branch.Tangent, step float64) branch.Point {
	return branch.Point{U: from.U.Clone(), Lambda: from.Lambda + step}
}
