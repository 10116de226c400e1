package card

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/ivlev/folio/internal/carousel"
	"github.com/ivlev/folio/internal/config"
	"github.com/ivlev/folio/internal/effects"
	"github.com/ivlev/folio/internal/geom"
	"github.com/ivlev/folio/internal/parallax"
	"github.com/ivlev/folio/internal/textsplit"
	"github.com/ivlev/folio/internal/tilt"
	"github.com/ivlev/folio/internal/timeline"
	"github.com/ivlev/folio/internal/trigger"
)

const (
	// FadeDuration is the image cross-fade after a carousel change.
	FadeDuration = 0.3
	// EntranceLag is how far the scrubbed entrance trails the scroll position.
	EntranceLag = time.Second
)

var (
	// Reveal window: plays when the card top passes 100px below the viewport centre.
	revealStart = trigger.Anchor{Element: 0, Viewport: 0.5, Offset: 100}
	revealEnd   = trigger.BottomCenter
)

// Options configure a card before it is mounted.
type Options struct {
	Spec   config.Card
	Layout string
	Params config.CardParams
	Bounds geom.Rect
	// Frames are the expanded carousel images; Spec.Images when empty.
	Frames []string
	Effect effects.Effect
	Clock  carousel.Clock
	Logger *log.Logger
}

// Card is the runtime of one service or project tile. It owns its timelines,
// trigger registrations, parallax binding and carousel from mount to unmount.
type Card struct {
	spec   config.Card
	layout string
	params config.CardParams
	effect effects.Effect
	logger *log.Logger

	// Wrapper carries the scrubbed entrance and the parallax drift,
	// Box the toggled reveal, Image the carousel fade.
	Wrapper *Element
	Box     *Element
	Image   *Element

	carousel *carousel.Controller
	tilt     *tilt.State

	mu        sync.Mutex
	bounds    geom.Rect
	viewport  float64
	mounted   bool
	unmounted bool
	played    bool
	hovered   bool

	anim     *timeline.Engine
	reveal   *effects.Reveal
	revealTL *timeline.Timeline
	follower *timeline.Follower
	fade     *timeline.Timeline
	parallax *parallax.Engine
	binding  *parallax.Binding
	sched    *trigger.Scheduler
	handles  []*trigger.Handle
}

// New prepares a card. Nothing animates until Mount.
func New(opts Options) (*Card, error) {
	frames := opts.Frames
	if len(frames) == 0 {
		frames = opts.Spec.Images
	}
	cl, err := carousel.New(frames, opts.Params.RotationPeriod, opts.Clock)
	if err != nil {
		return nil, fmt.Errorf("card %q: %w", opts.Spec.Title, err)
	}
	eff := opts.Effect
	if eff == nil {
		eff = &effects.DefaultEffect{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Card{
		spec:     opts.Spec,
		layout:   opts.Layout,
		params:   opts.Params,
		effect:   eff,
		logger:   logger,
		Wrapper:  NewElement(),
		Box:      NewElement(),
		Image:    NewElement(),
		carousel: cl,
		tilt:     tilt.NewState(opts.Params.MaxTilt),
		bounds:   opts.Bounds,
	}, nil
}

// Mount builds the card's timelines and registers its scroll triggers with s.
// A card can be mounted once; later calls are no-ops.
func (c *Card) Mount(s *trigger.Scheduler, viewportHeight float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mounted || c.unmounted {
		return nil
	}

	c.anim = timeline.NewEngine(c.logger)
	reveal, err := c.effect.Build(effects.Targets{
		Card:        c.Box,
		Image:       c.Image,
		Title:       c.spec.Title,
		Description: c.spec.Description,
	}, c.params)
	if err != nil {
		return fmt.Errorf("card %q: reveal: %w", c.spec.Title, err)
	}
	c.reveal = reveal
	c.revealTL = c.anim.Create(reveal.Steps...)
	c.sched = s
	c.viewport = viewportHeight

	entrance := c.anim.Create(c.entranceStep())
	c.parallax = parallax.NewEngine()

	if c.params.ReducedMotion {
		c.revealTL.Seek(1)
		entrance.Seek(1)
	} else {
		c.revealTL.Seek(0)
		c.registerReveal()

		c.follower = c.anim.Follow(entrance, EntranceLag)
		c.handles = append(c.handles, s.Register(trigger.Registration{
			Bounds:     c.bounds,
			Start:      trigger.TopBottom,
			End:        trigger.TopCenter,
			Scrub:      true,
			OnProgress: c.follower.SetTarget,
		}))
		c.binding = c.parallax.Bind(c.newBinding())
	}

	c.carousel.OnChange(c.onImageChange)
	c.carousel.Start()
	c.mounted = true
	return nil
}

func (c *Card) entranceStep() timeline.Step {
	st := timeline.Step{
		Target:   c.Wrapper,
		From:     timeline.PropertySet{"y": 100, "opacity": 0},
		To:       timeline.PropertySet{"y": 0, "opacity": 1},
		Duration: 1,
	}
	if c.layout == "projects" {
		st.From = timeline.PropertySet{"y": 50, "opacity": 1}
	}
	return st
}

// Must be called with lock held
func (c *Card) registerReveal() {
	var h *trigger.Handle
	h = c.sched.Register(trigger.Registration{
		Bounds: c.bounds,
		Start:  revealStart,
		End:    revealEnd,
		OnEnter: func() {
			c.mu.Lock()
			if !c.mounted {
				c.mu.Unlock()
				return
			}
			once := c.params.Once
			first := !c.played
			c.played = true
			tl := c.revealTL
			sched := c.sched
			c.mu.Unlock()

			if once && !first {
				return
			}
			tl.Play(timeline.Forward)
			if once {
				sched.Unregister(h)
			}
		},
		OnExit: func() {
			c.mu.Lock()
			ok := c.mounted && !c.params.Once
			tl := c.revealTL
			c.mu.Unlock()
			if ok {
				tl.Play(timeline.Reverse)
			}
		},
	})
	c.handles = append(c.handles, h)
}

// Must be called with lock held
func (c *Card) newBinding() *parallax.Binding {
	return &parallax.Binding{
		StartScrollY: trigger.TopBottom.ScrollY(c.bounds, c.viewport),
		EndScrollY:   trigger.BottomTop.ScrollY(c.bounds, c.viewport),
		MinOffset:    0,
		MaxOffset:    c.params.ParallaxPercent / 100 * c.bounds.H,
		Sink:         func(v float64) { c.Wrapper.Set("parallaxY", v) },
	}
}

func (c *Card) onImageChange(ch carousel.Change) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.mounted {
		return
	}
	if c.fade != nil {
		c.fade.Destroy()
	}
	if c.params.ReducedMotion {
		c.Image.Set("opacity", 1)
		c.fade = nil
		return
	}
	c.fade = c.anim.Create(timeline.Step{
		Target:   c.Image,
		From:     timeline.PropertySet{"opacity": 0},
		To:       timeline.PropertySet{"opacity": 1},
		Duration: FadeDuration,
		Easing:   timeline.EaseOutQuad,
	})
	c.fade.Play(timeline.Forward)
}

// Unmount releases everything the card holds: trigger registrations,
// timelines, the carousel timer, the parallax binding and the split text.
// Safe to call more than once.
func (c *Card) Unmount() {
	c.mu.Lock()
	if !c.mounted {
		c.unmounted = true
		c.mu.Unlock()
		c.carousel.Close()
		return
	}
	c.mounted = false
	c.unmounted = true
	handles := c.handles
	c.handles = nil
	sched := c.sched
	c.mu.Unlock()

	for _, h := range handles {
		sched.Unregister(h)
	}
	c.carousel.Close()
	c.anim.DestroyAll()
	c.parallax.Close()
	c.reveal.Teardown()
	c.tilt.Leave()
	c.Wrapper.Remove()
	c.Box.Remove()
	c.Image.Remove()
}

// Mounted reports whether the card is live.
func (c *Card) Mounted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mounted
}

// Update advances the card's timelines to now.
func (c *Card) Update(now time.Time) {
	c.mu.Lock()
	anim := c.anim
	ok := c.mounted
	c.mu.Unlock()
	if ok {
		anim.Update(now)
	}
}

// Animating reports whether any of the card's timelines still moves.
func (c *Card) Animating() bool {
	c.mu.Lock()
	anim := c.anim
	ok := c.mounted
	c.mu.Unlock()
	return ok && anim.Active()
}

// OnScroll applies the parallax drift for the scroll position.
func (c *Card) OnScroll(scrollY float64) {
	c.mu.Lock()
	p := c.parallax
	ok := c.mounted
	c.mu.Unlock()
	if ok {
		p.Update(scrollY)
	}
}

// Relayout moves the card to new document bounds after a resize.
func (c *Card) Relayout(bounds geom.Rect, viewportHeight float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bounds = bounds
	c.viewport = viewportHeight
	if !c.mounted {
		return
	}
	for _, h := range c.handles {
		c.sched.UpdateBounds(h, bounds)
	}
	if c.binding != nil {
		c.parallax.Unbind(c.binding)
		c.binding = c.parallax.Bind(c.newBinding())
	}
}

// Bounds returns the card's layout bounds in document coordinates.
func (c *Card) Bounds() geom.Rect {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.bounds
}

// VisualBounds returns the bounds translated by the card's current vertical offset.
func (c *Card) VisualBounds() geom.Rect {
	return c.Bounds().Translate(0, c.OffsetY())
}

// OffsetY is the sum of entrance, parallax and reveal offsets.
func (c *Card) OffsetY() float64 {
	return c.Wrapper.Value("y", 0) + c.Wrapper.Value("parallaxY", 0) + c.Box.Value("y", 0)
}

// Tilts reports whether the card reacts to the pointer.
func (c *Card) Tilts() bool {
	return c.layout == "projects" || c.spec.Tilt != nil
}

// PointerMove updates tilt and hover glow for a pointer in document
// coordinates. It returns true while the pointer is over the card.
func (c *Card) PointerMove(p geom.Point) bool {
	if !c.Tilts() || !c.Mounted() {
		return false
	}
	b := c.VisualBounds()
	inside := b.Contains(p)

	c.mu.Lock()
	was := c.hovered
	c.hovered = inside
	c.mu.Unlock()

	if inside {
		c.tilt.Move(p, b)
	} else if was {
		c.tilt.Leave()
	}
	return inside
}

// PointerLeave snaps the tilt back to neutral.
func (c *Card) PointerLeave() {
	c.mu.Lock()
	c.hovered = false
	c.mu.Unlock()
	c.tilt.Leave()
}

// Frames returns the carousel images in rotation order.
func (c *Card) Frames() []string { return c.carousel.Images() }

func (c *Card) Next()        { c.carousel.Next() }
func (c *Card) Previous()    { c.carousel.Previous() }
func (c *Card) JumpTo(k int) { c.carousel.JumpTo(k) }

// View is a snapshot of everything the renderer needs to draw a card.
type View struct {
	Spec         config.Card
	Layout       string
	Bounds       geom.Rect // visual bounds, offsets applied
	Opacity      float64
	ImageLeft    bool
	Image        string
	ImageIndex   int
	ImageCount   int
	ImageOpacity float64
	Transform    tilt.Transform
	Glow         tilt.Glow
	Title        []*textsplit.Unit
	Description  []*textsplit.Unit
	Revealed     float64
}

// View snapshots the card.
func (c *Card) View() View {
	c.mu.Lock()
	var title, desc []*textsplit.Unit
	revealed := 1.0
	if c.reveal != nil {
		title = c.reveal.Title.Units()
		desc = c.reveal.Description.Units()
	}
	if c.revealTL != nil && c.mounted {
		revealed = c.revealTL.Progress()
	}
	c.mu.Unlock()

	return View{
		Spec:         c.spec,
		Layout:       c.layout,
		Bounds:       c.VisualBounds(),
		Opacity:      c.Wrapper.Value("opacity", 1),
		ImageLeft:    c.params.ImageLeft,
		Image:        c.carousel.Current(),
		ImageIndex:   c.carousel.Index(),
		ImageCount:   c.carousel.Len(),
		ImageOpacity: c.Image.Value("opacity", 1),
		Transform:    c.tilt.Transform(),
		Glow:         c.tilt.Glow(),
		Title:        title,
		Description:  desc,
		Revealed:     revealed,
	}
}
