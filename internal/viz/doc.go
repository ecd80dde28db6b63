// Package viz renders a running particle simulation in the terminal.
//
// The package implements an interactive TUI using the Bubble Tea framework:
//
//   - [Model]: live view of one simulator with run/pause, single step,
//     reset and live parameter edits
//   - [App]: preset picker in front of a [Model]
//   - [Canvas]: Braille-based dot canvas with per-cell speed colors
//   - [Camera]: orbiting perspective projection of the z-up world
//
// # Key Bindings
//
//	Space - Start/Pause simulation
//	N     - Single step while paused
//	R     - Reset particles, generators and clock
//	Tab   - Select next parameter, Up/Down to edit it
//	T     - Cycle color themes
//	?     - Show help overlay
//
// Parameter edits that fail validation are shown in the status line and
// leave the running configuration untouched.
package viz
