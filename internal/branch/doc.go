// Package branch defines the shared vocabulary of the continuation engine:
// solution states, branch points and tangents, the Problem interface a caller
// implements, and the configuration, error and result types every run
// exchanges.
//
// A branch is a connected set of solutions of f(u, lambda) = 0 traced point
// by point. The packages corrector, predictor, stepsize, monitor and tracer
// build on the types here; none of them factors a matrix itself, all linear
// algebra goes through Problem.SolveJacobian.
package branch
