// Package viz renders optics results for the terminal.
//
// Static output ([RenderReport], [RenderLegacy], [SweepChart]) is plain
// styled text for the CLI. [Explorer] is a Bubble Tea model that re-runs the
// engine as lattice parameters are adjusted and tracks a particle around the
// matched ellipse on a braille [Canvas].
//
// # Key Bindings
//
//	j/k   - Select parameter
//	h/l   - Decrease/increase parameter
//	P     - Cycle plane
//	Space - Pause/Resume tracking
//	R     - Reset parameters
//	T     - Cycle color themes
//	Esc   - Back to preset menu
package viz
