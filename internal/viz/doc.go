// Package viz renders rigid-body worlds in the terminal.
//
// The live view is a Bubble Tea program built around a [Model], which
// advances a world one configured step per frame and draws it on a
// braille [Canvas]:
//
//   - circles are drawn as outlines with a spoke showing their angle
//   - squares are drawn as their rotated outline
//   - the domain rectangle frames the scene
//
// # Key Bindings
//
//	Space  - Pause/Resume simulation
//	S      - Single step while paused
//	R      - Rebuild the world from its builder
//	Tab    - Select the next body
//	Arrows - Push the selected body for one step
//	[ ]    - Time travel (rewind/forward)
//	T      - Cycle color themes
//	?      - Show help overlay
package viz
