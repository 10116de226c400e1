package carousel

import (
	"errors"
	"sync"
	"time"
)

// DefaultRotationPeriod is how long each image stays up before auto-advance.
const DefaultRotationPeriod = 5 * time.Second

var ErrNoImages = errors.New("carousel needs at least one image")

// Cause says what moved the carousel.
type Cause int

const (
	CauseTick Cause = iota
	CauseNext
	CausePrevious
	CauseJump
	CauseReset
)

func (c Cause) String() string {
	switch c {
	case CauseTick:
		return "tick"
	case CauseNext:
		return "next"
	case CausePrevious:
		return "previous"
	case CauseJump:
		return "jump"
	case CauseReset:
		return "reset"
	}
	return "unknown"
}

// Change describes a transition of the displayed image.
type Change struct {
	Index int
	Image string
	Cause Cause
}

// Controller owns one card's image index and its rotation timer.
//
// Every transition, manual or automatic, restarts the timer from zero so a
// manual move is never followed by an early automatic one. With a single
// image no timer runs and navigation is a no-op.
type Controller struct {
	mu       sync.Mutex
	images   []string
	index    int
	period   time.Duration
	clock    Clock
	timer    Timer
	gen      uint64
	closed   bool
	onChange func(Change)
}

// New creates a controller showing images[0]. The rotation timer starts on Start.
func New(images []string, period time.Duration, clock Clock) (*Controller, error) {
	if len(images) == 0 {
		return nil, ErrNoImages
	}
	if period <= 0 {
		period = DefaultRotationPeriod
	}
	if clock == nil {
		clock = RealClock
	}
	return &Controller{
		images: append([]string(nil), images...),
		period: period,
		clock:  clock,
	}, nil
}

// OnChange sets the callback invoked after every transition, outside the lock.
func (c *Controller) OnChange(fn func(Change)) {
	c.mu.Lock()
	c.onChange = fn
	c.mu.Unlock()
}

// Start arms the rotation timer.
func (c *Controller) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.restartTimer()
}

// Index returns the displayed image index.
func (c *Controller) Index() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.index
}

// Current returns the displayed image reference.
func (c *Controller) Current() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.images[c.index]
}

// Images returns a copy of the image list.
func (c *Controller) Images() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.images...)
}

// Len returns the number of images.
func (c *Controller) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.images)
}

// Running reports whether a rotation timer is armed.
func (c *Controller) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.timer != nil
}

// Next shows the following image, wrapping to the first.
func (c *Controller) Next() {
	c.transition(CauseNext, func(i, n int) int { return (i + 1) % n })
}

// Previous shows the preceding image, wrapping to the last.
func (c *Controller) Previous() {
	c.transition(CausePrevious, func(i, n int) int { return (i - 1 + n) % n })
}

// JumpTo shows image k. k is reduced modulo the image count; jumping to the
// current image only restarts the timer.
func (c *Controller) JumpTo(k int) {
	c.transition(CauseJump, func(_, n int) int { return ((k % n) + n) % n })
}

// SetImages replaces the image set, shows the first image and replaces the timer.
func (c *Controller) SetImages(images []string) error {
	if len(images) == 0 {
		return ErrNoImages
	}
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.images = append([]string(nil), images...)
	c.index = 0
	c.restartTimer()
	ch := Change{Index: 0, Image: c.images[0], Cause: CauseReset}
	fn := c.onChange
	c.mu.Unlock()

	if fn != nil {
		fn(ch)
	}
	return nil
}

// Close cancels the timer. No change is delivered afterwards, even from a
// timer that already fired. Safe to call more than once.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.gen++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

// Closed reports whether Close was called.
func (c *Controller) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *Controller) transition(cause Cause, next func(i, n int) int) {
	c.mu.Lock()
	ch, fn, ok := c.move(cause, next)
	c.mu.Unlock()

	if ok && fn != nil {
		fn(ch)
	}
}

// move advances the index and rearms the timer. ok is false when nothing
// visible changed.
// Must be called with lock held
func (c *Controller) move(cause Cause, next func(i, n int) int) (ch Change, fn func(Change), ok bool) {
	if c.closed {
		return Change{}, nil, false
	}
	n := len(c.images)
	if n == 1 {
		return Change{}, nil, false
	}
	prev := c.index
	c.index = next(c.index, n)
	c.restartTimer()
	ch = Change{Index: c.index, Image: c.images[c.index], Cause: cause}
	return ch, c.onChange, c.index != prev
}

// restartTimer cancels the armed timer and schedules a fresh one.
// Must be called with lock held
func (c *Controller) restartTimer() {
	c.gen++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	if len(c.images) < 2 {
		return
	}
	gen := c.gen
	c.timer = c.clock.AfterFunc(c.period, func() { c.tick(gen) })
}

// tick fires from the timer goroutine. The generation check and the advance
// share one critical section, so a manual move that lands first turns the
// tick into a no-op.
func (c *Controller) tick(gen uint64) {
	c.mu.Lock()
	if c.closed || gen != c.gen {
		c.mu.Unlock()
		return
	}
	c.timer = nil
	ch, fn, ok := c.move(CauseTick, func(i, n int) int { return (i + 1) % n })
	c.mu.Unlock()

	if ok && fn != nil {
		fn(ch)
	}
}
