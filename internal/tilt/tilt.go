package tilt

import (
	"fmt"
	"sync"

	"github.com/ivlev/folio/internal/geom"
)

const (
	// DefaultMaxTilt is the rotation in degrees at the element's edges.
	DefaultMaxTilt = 5.0
	// TiltedScale is applied while the pointer is over the element.
	TiltedScale = 0.95
	// Perspective is the viewer distance used when formatting the transform.
	Perspective = 700
)

// Transform is a 3D rotation and uniform scale of an element.
type Transform struct {
	TiltX float64 // degrees around the X axis
	TiltY float64 // degrees around the Y axis
	Scale float64
}

// Neutral is the untilted transform.
var Neutral = Transform{Scale: 1}

// IsNeutral reports whether t is the resting transform.
func (t Transform) IsNeutral() bool {
	return t == Neutral
}

// String formats the transform as a CSS transform value.
func (t Transform) String() string {
	return fmt.Sprintf("perspective(%dpx) rotateX(%gdeg) rotateY(%gdeg) scale3d(%g, %g, %g)",
		Perspective, t.TiltX, t.TiltY, t.Scale, t.Scale, t.Scale)
}

// Relative returns the pointer position as a fraction of the element box.
// Values are not clamped; a pointer just past an edge yields a value outside [0,1].
// An empty box maps to its centre.
func Relative(pointer geom.Point, bounds geom.Rect) (rx, ry float64) {
	if bounds.W == 0 || bounds.H == 0 {
		return 0.5, 0.5
	}
	return (pointer.X - bounds.X) / bounds.W, (pointer.Y - bounds.Y) / bounds.H
}

// Compute maps the pointer position over bounds to a tilt transform.
func Compute(pointer geom.Point, bounds geom.Rect, maxTilt float64) Transform {
	rx, ry := Relative(pointer, bounds)
	return Transform{
		TiltX: (ry - 0.5) * maxTilt,
		TiltY: (rx - 0.5) * -maxTilt,
		Scale: TiltedScale,
	}
}

// Reset returns the neutral transform.
func Reset() Transform {
	return Neutral
}

// Glow is the hover highlight position inside an element, in element-local pixels.
type Glow struct {
	X, Y    float64
	Opacity float64
}

// State tracks the transform and hover glow of one element between pointer events.
type State struct {
	mu        sync.Mutex
	maxTilt   float64
	transform Transform
	glow      Glow
}

// NewState creates a neutral state. maxTilt <= 0 uses DefaultMaxTilt.
func NewState(maxTilt float64) *State {
	if maxTilt <= 0 {
		maxTilt = DefaultMaxTilt
	}
	return &State{maxTilt: maxTilt, transform: Neutral}
}

// Move recomputes the transform for a pointer over bounds.
func (s *State) Move(pointer geom.Point, bounds geom.Rect) Transform {
	t := Compute(pointer, bounds, s.maxTilt)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transform = t
	s.glow = Glow{X: pointer.X - bounds.X, Y: pointer.Y - bounds.Y, Opacity: 1}
	return t
}

// Leave snaps back to neutral and hides the glow.
func (s *State) Leave() Transform {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transform = Reset()
	s.glow.Opacity = 0
	return s.transform
}

// Transform returns the current transform.
func (s *State) Transform() Transform {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transform
}

// Glow returns the current hover glow.
func (s *State) Glow() Glow {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.glow
}
