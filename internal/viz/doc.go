// Package viz renders a running simulation in the terminal.
//
// A [Feed] observes the simulator and hands every measurement, together
// with an x-z projection of the cloud, to the Bubble Tea [Model]. The
// model draws the projection on a braille [Canvas] and plots the history
// of one measurement column with asciigraph.
//
// # Key Bindings
//
//	Space - Pause/Resume (the simulation blocks while paused)
//	Tab   - Cycle the plotted column
//	?     - Show help
//	Q     - Quit and cancel the run
package viz
