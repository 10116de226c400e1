package trigger

import (
	"sync"
	"sync/atomic"

	"github.com/ivlev/folio/internal/geom"
	"github.com/ivlev/folio/internal/timeline"
)

// Registration subscribes an element to scroll position.
//
// With Scrub set, OnProgress receives the clamped fraction of the scroll
// position between Start and End and no enter/exit actions fire.
// Without Scrub, OnEnter fires when the scroll position enters [Start, End]
// and OnExit when it leaves after having entered. Both repeat.
type Registration struct {
	Bounds     geom.Rect
	Start      Anchor
	End        Anchor
	OnEnter    func()
	OnExit     func()
	OnProgress func(p float64)
	Scrub      bool
}

// Handle identifies a live registration.
type Handle struct {
	id     uint64
	active atomic.Bool

	mu        sync.Mutex
	reg       Registration
	inside    bool
	lastP     float64
	delivered bool
}

// Active reports whether the handle still receives callbacks.
func (h *Handle) Active() bool {
	return h.active.Load()
}

// Scheduler evaluates every registration against the scroll position once per frame.
// It is the only object shared by all cards; registering and unregistering are
// safe from any goroutine and from inside callbacks.
type Scheduler struct {
	mu          sync.Mutex
	entries     []*Handle
	pending     []*Handle
	dirty       bool
	dispatching bool
	queued      []float64
	viewportH   float64
	scrollY     float64
	nextID      uint64
}

// NewScheduler creates a scheduler for a viewport of the given height.
func NewScheduler(viewportHeight float64) *Scheduler {
	return &Scheduler{viewportH: viewportHeight}
}

// SetViewport changes the viewport height used to resolve anchors.
func (s *Scheduler) SetViewport(height float64) {
	s.mu.Lock()
	s.viewportH = height
	s.mu.Unlock()
}

// ScrollY returns the most recent scroll position passed to Tick.
func (s *Scheduler) ScrollY() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scrollY
}

// Register adds a registration. During a tick it takes effect after the current pass.
func (s *Scheduler) Register(reg Registration) *Handle {
	h := &Handle{reg: reg}
	h.active.Store(true)

	s.mu.Lock()
	s.nextID++
	h.id = s.nextID
	if s.dispatching {
		s.pending = append(s.pending, h)
	} else {
		s.entries = append(s.entries, h)
	}
	s.mu.Unlock()
	return h
}

// Unregister stops all further callbacks to h immediately, including the rest
// of an in-flight tick. Structural removal is deferred while a tick runs.
// Calling it twice is a no-op.
func (s *Scheduler) Unregister(h *Handle) {
	if h == nil || !h.active.Swap(false) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dispatching {
		s.dirty = true
		return
	}
	s.compact()
}

// UpdateBounds moves the element of a registration, e.g. after a relayout.
func (s *Scheduler) UpdateBounds(h *Handle, bounds geom.Rect) {
	if h == nil {
		return
	}
	h.mu.Lock()
	h.reg.Bounds = bounds
	h.mu.Unlock()
}

// Len returns the number of live registrations.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, h := range s.entries {
		if h.Active() {
			n++
		}
	}
	for _, h := range s.pending {
		if h.Active() {
			n++
		}
	}
	return n
}

// Tick evaluates all registrations, in registration order, against scrollY.
// A Tick issued while another is dispatching (from a callback or another
// goroutine) is queued and runs right after the current pass. Queued
// positions are evaluated in order, none is collapsed.
func (s *Scheduler) Tick(scrollY float64) {
	s.mu.Lock()
	if s.dispatching {
		s.queued = append(s.queued, scrollY)
		s.mu.Unlock()
		return
	}
	s.dispatching = true

	for {
		s.scrollY = scrollY
		entries := append([]*Handle(nil), s.entries...)
		vh := s.viewportH
		s.mu.Unlock()

		for _, h := range entries {
			if !h.Active() {
				continue
			}
			s.evaluate(h, scrollY, vh)
		}

		s.mu.Lock()
		if s.dirty {
			s.compact()
		}
		if len(s.pending) > 0 {
			s.entries = append(s.entries, s.pending...)
			s.pending = nil
			s.compact()
		}
		if len(s.queued) == 0 {
			break
		}
		scrollY = s.queued[0]
		s.queued = s.queued[1:]
	}

	s.dispatching = false
	s.mu.Unlock()
}

// Must be called with lock held
func (s *Scheduler) compact() {
	live := s.entries[:0]
	for _, h := range s.entries {
		if h.Active() {
			live = append(live, h)
		}
	}
	for i := len(live); i < len(s.entries); i++ {
		s.entries[i] = nil
	}
	s.entries = live
	s.dirty = false
}

func (s *Scheduler) evaluate(h *Handle, scrollY, vh float64) {
	h.mu.Lock()
	reg := h.reg
	start := reg.Start.ScrollY(reg.Bounds, vh)
	end := reg.End.ScrollY(reg.Bounds, vh)
	if end < start {
		start, end = end, start
	}
	inZone := scrollY >= start && scrollY <= end

	if reg.Scrub {
		p := progress(scrollY, start, end)
		deliver := inZone || !h.delivered || p != h.lastP
		h.inside = inZone
		if deliver {
			h.lastP = p
			h.delivered = true
		}
		h.mu.Unlock()

		if deliver && reg.OnProgress != nil && h.Active() {
			reg.OnProgress(p)
		}
		return
	}

	var action func()
	switch {
	case inZone && !h.inside:
		h.inside = true
		action = reg.OnEnter
	case !inZone && h.inside:
		h.inside = false
		action = reg.OnExit
	}
	h.mu.Unlock()

	if action != nil && h.Active() {
		action()
	}
}

func progress(scrollY, start, end float64) float64 {
	if end == start {
		if scrollY >= start {
			return 1
		}
		return 0
	}
	return timeline.Clamp01((scrollY - start) / (end - start))
}
