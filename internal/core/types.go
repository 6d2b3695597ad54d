package core

import "image"

// Viewport carries the pixel dimensions and host context a unit renders
// under. Hosts revise it on container resize and fullscreen transitions, so a
// unit must never assume the values are constant across its lifetime.
type Viewport struct {
	Width      int
	Height     int
	Mobile     bool
	Fullscreen bool
}

// Valid reports whether the viewport describes a drawable area.
func (v Viewport) Valid() bool { return v.Width > 0 && v.Height > 0 }

// Unit is the contract every embedded simulation satisfies. A unit owns its
// model and its raster; it never touches another unit's state or anything
// global, so any number of instances can run side by side on one page.
type Unit interface {
	// Layout sizes the model and frame to the viewport. Called once before
	// the first Step and again whenever the host viewport changes. Units
	// keep accumulated state across calls where the model is independent of
	// pixel dimensions; grid units re-derive their cell counts and re-seed.
	Layout(vp Viewport)

	// Step advances the model by one fixed conceptual tick (1/60 s
	// regardless of wall time) and redraws the frame from scratch.
	Step()

	// Frame returns the raster produced by the last Step, sized exactly to
	// the viewport passed to Layout.
	Frame() *image.RGBA
}

// Factory constructs a Unit for the given viewport using an optional
// configuration map of marker attribute values.
type Factory func(vp Viewport, cfg map[string]string) Unit

// PointerHandler is implemented by units that react to pointer input.
// Coordinates are pixels in the unit's own frame. Calls are synchronous with
// the frame loop; there is no deferred input queue.
type PointerHandler interface {
	PointerDown(x, y int)
	PointerDrag(x, y int)
	PointerUp(x, y int)
}
