// Package problems provides built-in systems to trace: a linear sanity
// check, two polynomial folds and a discretized Bratu boundary value
// problem. They double as the reference problems for the CLI and the test
// suite.
package problems
