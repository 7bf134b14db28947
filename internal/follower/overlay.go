package follower

import "gonav/internal/core"

// Overlay is the presentation state of a follower: the path being walked
// and a marker on its destination. It only holds data; drawing it is up to
// the caller.
type Overlay struct {
	visible bool
	path    []core.Vector2D
	marker  core.Vector2D
	active  bool
}

// NewOverlay creates an overlay with the given visibility
func NewOverlay(visible bool) *Overlay {
	return &Overlay{visible: visible}
}

// SetVisible toggles the overlay; hiding it drops the current content
func (o *Overlay) SetVisible(visible bool) {
	o.visible = visible
	if !visible {
		o.Clear()
	}
}

// Visible reports whether the overlay is shown
func (o *Overlay) Visible() bool { return o.visible }

// Show records the active path and destination marker
func (o *Overlay) Show(path []core.Vector2D) {
	if !o.visible || len(path) == 0 {
		return
	}
	o.path = append(o.path[:0], path...)
	o.marker = path[len(path)-1]
	o.active = true
}

// Clear removes the path and marker
func (o *Overlay) Clear() {
	o.path = o.path[:0]
	o.active = false
}

// Path returns the displayed path
func (o *Overlay) Path() []core.Vector2D {
	if !o.active {
		return nil
	}
	return o.path
}

// Marker returns the destination marker position
func (o *Overlay) Marker() (core.Vector2D, bool) {
	return o.marker, o.active
}
