// Package viz provides terminal-based visualization for continuation runs.
//
// The package implements an interactive TUI using the Bubble Tea framework:
//
//   - [Model]: live session view drawing the bifurcation diagram as the
//     tracer walks the branch
//   - [BranchPlot]: lambda against one state component with fold markers
//   - [Canvas]: Braille-based pixel canvas for high-fidelity rendering
//   - Theme selection with 3 built-in color schemes
//
// # Key Bindings
//
//	Space - Pause/Resume the trace
//	R     - Restart from the starting point
//	C     - Cycle the plotted state component
//	S     - Save a plot snapshot
//	T     - Cycle color themes
//	+/-   - Accepted steps per tick
//	?     - Show help overlay
package viz
