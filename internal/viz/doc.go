// Package viz renders the sand grid in the terminal.
//
// The package implements an interactive TUI using the Bubble Tea framework:
//
//   - [Model]: live view that ticks the automaton and takes tilt input
//   - [Menu]: preset picker that launches a live view
//   - [Canvas]: Braille-based pixel canvas, one dot per grid cell
//   - [RenderHeatmap]: half-block colour rendering of cell totals
//   - [DrawBoard]: perspective sketch of the tilted board and its slope
//
// # Key Bindings
//
//	Arrows  - Tilt: up/down about x, right/left about y
//	h/j/k/l - Move the impulse cursor
//	I       - Fire an impulse at the cursor
//	Space   - Pause/Resume
//	.       - Single tick while paused
//	R       - Reset to the configured start
//	V       - Cycle views
//	T       - Cycle colour themes
//	G       - Toggle GIF recording
//	?       - Show help overlay
//
// # Recording
//
// Recordings are written to the current directory as tiltsand_<unix>.gif,
// one frame per tick, each cell a square of pixels shaded by its total.
package viz
