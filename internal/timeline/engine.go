package timeline

import (
	"log"
	"math"
	"sync"
	"time"
)

// Engine owns the timelines of one card and advances them on every frame.
// Each card gets its own Engine; there is no process-wide timeline.
type Engine struct {
	mu        sync.Mutex
	timelines []*Timeline
	followers []*Follower
	last      time.Time
	logger    *log.Logger
}

// NewEngine creates an engine. A nil logger means log.Default().
func NewEngine(logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.Default()
	}
	return &Engine{logger: logger}
}

// Create builds a timeline owned by the engine.
func (e *Engine) Create(steps ...Step) *Timeline {
	tl := New(e.logger, steps...)
	e.mu.Lock()
	e.timelines = append(e.timelines, tl)
	e.mu.Unlock()
	return tl
}

// Follow attaches a lagging seek driver to tl (scroll scrub smoothing).
func (e *Engine) Follow(tl *Timeline, lag time.Duration) *Follower {
	f := &Follower{tl: tl, lag: lag}
	e.mu.Lock()
	e.followers = append(e.followers, f)
	e.mu.Unlock()
	return f
}

// Update advances every playing timeline by the wall-clock time since the previous call.
// The first call only records the reference time.
func (e *Engine) Update(now time.Time) {
	e.mu.Lock()
	if e.last.IsZero() || now.Before(e.last) {
		e.last = now
		e.mu.Unlock()
		return
	}
	dt := now.Sub(e.last)
	e.last = now
	e.prune()
	timelines := append([]*Timeline(nil), e.timelines...)
	followers := append([]*Follower(nil), e.followers...)
	e.mu.Unlock()

	e.advance(timelines, followers, dt)
}

// Step advances everything by a fixed dt, independent of the wall clock.
func (e *Engine) Step(dt time.Duration) {
	e.mu.Lock()
	e.prune()
	timelines := append([]*Timeline(nil), e.timelines...)
	followers := append([]*Follower(nil), e.followers...)
	e.mu.Unlock()

	e.advance(timelines, followers, dt)
}

func (e *Engine) advance(timelines []*Timeline, followers []*Follower, dt time.Duration) {
	for _, f := range followers {
		f.Advance(dt)
	}
	for _, tl := range timelines {
		tl.Advance(dt)
	}
}

// Active reports whether any timeline is playing or any follower is still catching up.
func (e *Engine) Active() bool {
	e.mu.Lock()
	timelines := append([]*Timeline(nil), e.timelines...)
	followers := append([]*Follower(nil), e.followers...)
	e.mu.Unlock()

	for _, tl := range timelines {
		if tl.IsPlaying() {
			return true
		}
	}
	for _, f := range followers {
		if f.Settling() {
			return true
		}
	}
	return false
}

// Len returns the number of live timelines.
func (e *Engine) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.prune()
	return len(e.timelines)
}

// DestroyAll destroys every timeline and detaches every follower.
func (e *Engine) DestroyAll() {
	e.mu.Lock()
	timelines := e.timelines
	followers := e.followers
	e.timelines = nil
	e.followers = nil
	e.mu.Unlock()

	for _, f := range followers {
		f.Detach()
	}
	for _, tl := range timelines {
		tl.Destroy()
	}
}

// Must be called with lock held
func (e *Engine) prune() {
	live := e.timelines[:0]
	for _, tl := range e.timelines {
		if !tl.Destroyed() {
			live = append(live, tl)
		}
	}
	for i := len(live); i < len(e.timelines); i++ {
		e.timelines[i] = nil
	}
	e.timelines = live

	fl := e.followers[:0]
	for _, f := range e.followers {
		if !f.detached() {
			fl = append(fl, f)
		}
	}
	for i := len(fl); i < len(e.followers); i++ {
		e.followers[i] = nil
	}
	e.followers = fl
}

// settleEpsilon is how close a follower must get before it snaps to its target.
const settleEpsilon = 1e-4

// Follower seeks a timeline toward a target progress with exponential lag,
// the way a scrubbed animation trails the scroll position.
type Follower struct {
	mu       sync.Mutex
	tl       *Timeline
	lag      time.Duration
	target   float64
	current  float64
	started  bool
	settling bool
	gone     bool
}

// SetTarget sets the progress the timeline should converge to.
// Without lag, or on the first call, the timeline is sought immediately.
func (f *Follower) SetTarget(p float64) {
	f.mu.Lock()
	if f.gone {
		f.mu.Unlock()
		return
	}
	p = Clamp01(p)
	f.target = p
	immediate := f.lag <= 0 || !f.started
	if immediate {
		f.current = p
		f.started = true
		f.settling = false
	} else {
		f.settling = math.Abs(f.target-f.current) > settleEpsilon
	}
	tl := f.tl
	f.mu.Unlock()

	if immediate {
		tl.Seek(p)
	}
}

// Advance moves the current progress toward the target.
func (f *Follower) Advance(dt time.Duration) {
	f.mu.Lock()
	if f.gone || !f.settling {
		f.mu.Unlock()
		return
	}
	k := 1 - math.Exp(-dt.Seconds()/f.lag.Seconds())
	f.current += (f.target - f.current) * k
	if math.Abs(f.target-f.current) <= settleEpsilon {
		f.current = f.target
		f.settling = false
	}
	p := f.current
	tl := f.tl
	f.mu.Unlock()

	tl.Seek(p)
}

// Current returns the progress last applied to the timeline.
func (f *Follower) Current() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current
}

// Settling reports whether the follower has not yet reached its target.
func (f *Follower) Settling() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.settling
}

// Detach stops the follower from seeking its timeline.
func (f *Follower) Detach() {
	f.mu.Lock()
	f.gone = true
	f.settling = false
	f.mu.Unlock()
}

func (f *Follower) detached() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.gone || f.tl.Destroyed()
}
