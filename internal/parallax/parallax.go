package parallax

import (
	"math"
	"sync"

	"github.com/ivlev/folio/internal/timeline"
)

// Epsilon is the smallest offset change that is written to a sink.
const Epsilon = 0.01

// Sink receives a binding's offset, typically a translateY in pixels.
type Sink func(offset float64)

// Binding maps a scroll range onto an offset range.
type Binding struct {
	StartScrollY float64
	EndScrollY   float64
	MinOffset    float64
	MaxOffset    float64
	Easing       timeline.EasingFunc // nil means linear
	Sink         Sink

	last    float64
	written bool
}

// Offset is the pure mapping from scroll position to offset. A zero-length
// scroll range always maps to MinOffset.
func (b *Binding) Offset(scrollY float64) float64 {
	span := b.EndScrollY - b.StartScrollY
	t := 0.0
	if span != 0 {
		t = timeline.Clamp01((scrollY - b.StartScrollY) / span)
	}
	if b.Easing != nil {
		t = b.Easing(t)
	}
	return timeline.Lerp(b.MinOffset, b.MaxOffset, t)
}

// Update computes the offset and writes it to the sink unless it is unchanged
// since the last write. The range endpoints are always written exactly.
func (b *Binding) Update(scrollY float64) (float64, bool) {
	offset := b.Offset(scrollY)
	edge := offset == b.MinOffset || offset == b.MaxOffset
	if b.written && (offset == b.last || (!edge && math.Abs(offset-b.last) < Epsilon)) {
		return b.last, false
	}
	b.last = offset
	b.written = true
	if b.Sink != nil {
		b.Sink(offset)
	}
	return offset, true
}

// Engine holds the parallax bindings of one card or section.
type Engine struct {
	mu       sync.Mutex
	bindings []*Binding
	closed   bool
}

// NewEngine creates an empty engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Bind adds a binding; it is evaluated on every Update.
func (e *Engine) Bind(b *Binding) *Binding {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.closed {
		e.bindings = append(e.bindings, b)
	}
	return b
}

// Unbind removes a binding.
func (e *Engine) Unbind(b *Binding) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i, x := range e.bindings {
		if x == b {
			e.bindings = append(e.bindings[:i], e.bindings[i+1:]...)
			return
		}
	}
}

// Update evaluates every binding and returns how many wrote a new offset.
func (e *Engine) Update(scrollY float64) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := 0
	for _, b := range e.bindings {
		if _, changed := b.Update(scrollY); changed {
			n++
		}
	}
	return n
}

// Close drops all bindings; later Binds are ignored.
func (e *Engine) Close() {
	e.mu.Lock()
	e.bindings = nil
	e.closed = true
	e.mu.Unlock()
}

// Len returns the number of bindings.
func (e *Engine) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.bindings)
}
