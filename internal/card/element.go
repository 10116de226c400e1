package card

import (
	"sync"

	"github.com/ivlev/folio/internal/timeline"
)

// Element is a generic animatable visual node: a card box, an image, a
// footer line. Timelines write properties, the renderer reads them.
type Element struct {
	mu      sync.Mutex
	props   map[string]float64
	removed bool
}

func NewElement() *Element {
	return &Element{props: make(map[string]float64)}
}

// Set implements timeline.Target.
func (e *Element) Set(property string, value float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.removed {
		return timeline.ErrStaleTarget
	}
	e.props[property] = value
	return nil
}

// Value returns the property or def when it was never written.
func (e *Element) Value(property string, def float64) float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	if v, ok := e.props[property]; ok {
		return v
	}
	return def
}

// Remove detaches the element; later writes fail with timeline.ErrStaleTarget.
func (e *Element) Remove() {
	e.mu.Lock()
	e.removed = true
	e.mu.Unlock()
}

// Removed reports whether Remove was called.
func (e *Element) Removed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.removed
}
