package engine

import (
	"context"
	"fmt"
	"log"
	"math"
	"sync"
	"time"

	"github.com/ivlev/folio/internal/card"
	"github.com/ivlev/folio/internal/carousel"
	"github.com/ivlev/folio/internal/config"
	"github.com/ivlev/folio/internal/contact"
	"github.com/ivlev/folio/internal/director"
	"github.com/ivlev/folio/internal/effects"
	"github.com/ivlev/folio/internal/geom"
	"github.com/ivlev/folio/internal/parallax"
	"github.com/ivlev/folio/internal/source"
	"github.com/ivlev/folio/internal/timeline"
	"github.com/ivlev/folio/internal/trigger"
)

// NoticeDuration is how long a toast stays visible.
const NoticeDuration = 4 * time.Second

// Options are the collaborators of a Site. All are optional.
type Options struct {
	Library   *source.Library
	Clock     carousel.Clock
	Deliverer contact.Deliverer
	Logger    *log.Logger
}

// Site is the page runtime. The render host feeds it scroll, pointer and
// lifecycle events plus one Frame call per display refresh.
type Site struct {
	Config  *config.Config
	Spec    *config.Site
	Library *source.Library

	clock  carousel.Clock
	logger *log.Logger

	sched    *trigger.Scheduler
	anim     *timeline.Engine
	parallax *parallax.Engine
	modal    *Modal

	mu       sync.Mutex
	layout   *director.Layout
	cards    []*card.Card
	sections []*sectionRuntime
	footer   *footerRuntime
	handles  []*trigger.Handle
	scroll   *timeline.Timeline
	scrollY  float64
	mounted  bool
	hover    int
	focus    int
	notice   *contact.Notice
	noticeAt time.Time
	stats    Stats
}

// Stats are runtime counters for the host's status line.
type Stats struct {
	Frames    int
	FPS       float64
	Cards     int
	Animating int
	Triggers  int
	LastFrame time.Time
}

// NewSite lays the page out. Nothing animates until OnMount.
func NewSite(cfg *config.Config, spec *config.Site, opts Options) (*Site, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	layout, err := director.NewDirector(float64(cfg.ViewportWidth), float64(cfg.ViewportHeight)).Layout(spec)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	clock := opts.Clock
	if clock == nil {
		clock = carousel.RealClock
	}

	s := &Site{
		Config:  cfg,
		Spec:    spec,
		Library: opts.Library,
		clock:   clock,
		logger:  logger,
		layout:  layout,
		hover:   -1,
		focus:   -1,
	}
	deliverer := opts.Deliverer
	if deliverer == nil {
		deliverer = contact.NewRelayClient(cfg.RelayEndpoint, cfg.RelayService, cfg.RelayTemplate, cfg.RelayKey)
	}
	s.modal = newModal(spec.Contact, contact.NewSubmitter(deliverer, contact.NotifierFunc(s.notify), logger), cfg.ReducedMotion, logger)
	return s, nil
}

// OnMount builds every card, page reveal and parallax binding, then
// evaluates them at the current scroll position.
func (s *Site) OnMount() error {
	s.mu.Lock()
	if s.mounted {
		s.mu.Unlock()
		return nil
	}
	layout := s.layout
	s.mu.Unlock()

	// Один планировщик на страницу, движок анимаций и параллакса тоже общие
	vh := layout.Viewport
	s.sched = trigger.NewScheduler(vh)
	s.anim = timeline.NewEngine(s.logger)
	s.parallax = parallax.NewEngine()

	var cards []*card.Card
	for i, sec := range s.Spec.Sections {
		box := layout.Sections[i]
		for j, spec := range sec.Cards {
			c, err := s.newCard(sec, spec, box.Cards[j])
			if err == nil {
				err = c.Mount(s.sched, vh)
			}
			if err != nil {
				// Откатываем уже смонтированные карточки, чтобы не оставить таймеры
				for _, m := range cards {
					m.Unmount()
				}
				return fmt.Errorf("section %s: %w", sec.ID, err)
			}
			cards = append(cards, c)
		}
	}

	sections := make([]*sectionRuntime, len(s.Spec.Sections))
	for i, sec := range s.Spec.Sections {
		sections[i] = newSectionRuntime(sec, layout.Sections[i])
	}
	footer := newFooterRuntime(s.Spec.Footer, layout.Footer)

	s.mu.Lock()
	s.cards = cards
	s.sections = sections
	s.footer = footer
	s.mounted = true
	y := s.scrollY
	s.mu.Unlock()

	// Заголовки секций, футер и параллакс фонов
	s.bindPage(vh)
	s.logger.Printf("[*] mounted %d sections, %d cards, document %.0fpx", len(sections), len(cards), layout.Height)
	// Сразу вычисляем состояние для текущей прокрутки (страница могла открыться не сверху)
	s.applyScroll(y)
	return nil
}

func (s *Site) newCard(sec config.Section, spec config.Card, box director.CardBox) (*card.Card, error) {
	eff, err := effects.ForLayout(sec.Layout, spec.Reveal)
	if err != nil {
		return nil, fmt.Errorf("card %q: %w", spec.Title, err)
	}
	params := s.Config.Params(spec, box.Index, box.Bounds.W, box.Bounds.H)
	params.ImageLeft = box.ImageLeft

	// PDF раскрывается в кадры по страницам, удалённые ссылки остаются как есть
	var frames []string
	if s.Library != nil {
		frames = s.Library.Expand(spec.Images)
	}
	return card.New(card.Options{
		Spec:   spec,
		Layout: sec.Layout,
		Params: params,
		Bounds: box.Bounds,
		Frames: frames,
		Effect: eff,
		Clock:  s.clock,
		Logger: s.logger,
	})
}

// OnUnmount tears everything down: trigger registrations, timelines, carousel
// timers and parallax bindings. Safe to call more than once.
func (s *Site) OnUnmount() {
	s.mu.Lock()
	if !s.mounted {
		s.mu.Unlock()
		return
	}
	s.mounted = false
	cards := s.cards
	handles := s.handles
	s.handles = nil
	s.scroll = nil
	s.mu.Unlock()

	// Сначала карточки с их таймерами и триггерами, затем триггеры страницы
	for _, c := range cards {
		c.Unmount()
	}
	for _, h := range handles {
		s.sched.Unregister(h)
	}
	s.anim.DestroyAll()
	s.parallax.Close()
	s.modal.Close()
	s.logger.Printf("[*] unmounted")
}

// Mounted reports whether the page is live.
func (s *Site) Mounted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mounted
}

// OnScroll handles a user scroll to document position y. It cancels a
// running smooth scroll.
func (s *Site) OnScroll(y float64) {
	s.mu.Lock()
	tl := s.scroll
	s.scroll = nil
	s.mu.Unlock()
	if tl != nil {
		tl.Destroy()
	}
	s.applyScroll(y)
}

// ScrollBy scrolls relative to the current position.
func (s *Site) ScrollBy(dy float64) {
	s.OnScroll(s.ScrollY() + dy)
}

// ScrollY returns the current document scroll position.
func (s *Site) ScrollY() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scrollY
}

func (s *Site) applyScroll(y float64) {
	s.mu.Lock()
	y = math.Max(0, math.Min(y, s.layout.MaxScroll()))
	s.scrollY = y
	if !s.mounted {
		s.mu.Unlock()
		return
	}
	cards := s.cards
	s.mu.Unlock()

	s.sched.Tick(y)
	s.parallax.Update(y)
	for _, c := range cards {
		c.OnScroll(y)
	}
}

// OnPointerMove takes a pointer position in viewport coordinates.
func (s *Site) OnPointerMove(p geom.Point) {
	s.mu.Lock()
	if !s.mounted {
		s.mu.Unlock()
		return
	}
	doc := geom.Point{X: p.X, Y: p.Y + s.scrollY}
	cards := s.cards
	s.mu.Unlock()

	hover := -1
	for i, c := range cards {
		if c.PointerMove(doc) && hover < 0 {
			hover = i
		}
	}
	if hover < 0 {
		// Обычные карточки не наклоняются, но фокус получают
		for i, c := range cards {
			if c.VisualBounds().Contains(doc) {
				hover = i
				break
			}
		}
	}

	s.mu.Lock()
	s.hover = hover
	if hover >= 0 {
		s.focus = hover
	}
	s.mu.Unlock()
}

// OnPointerLeave resets every tilt when the pointer leaves the window.
func (s *Site) OnPointerLeave() {
	s.mu.Lock()
	cards := s.cards
	s.hover = -1
	s.mu.Unlock()
	for _, c := range cards {
		c.PointerLeave()
	}
}

// Frame advances all timelines to now.
func (s *Site) Frame(now time.Time) {
	s.mu.Lock()
	if !s.mounted {
		s.mu.Unlock()
		return
	}
	cards := s.cards
	if s.notice != nil && now.Sub(s.noticeAt) > NoticeDuration {
		s.notice = nil
	}
	s.mu.Unlock()

	// Таймлайны страницы и модального окна живут в разных движках
	s.anim.Update(now)
	s.modal.anim.Update(now)
	animating := 0
	for _, c := range cards {
		c.Update(now)
		if c.Animating() {
			animating++
		}
	}

	s.mu.Lock()
	st := &s.stats
	if !st.LastFrame.IsZero() {
		if dt := now.Sub(st.LastFrame).Seconds(); dt > 0 {
			// Сглаженный FPS
			st.FPS = st.FPS*0.9 + 0.1/dt
		}
	}
	st.LastFrame = now
	st.Frames++
	st.Cards = len(cards)
	st.Animating = animating
	st.Triggers = s.sched.Len()
	s.mu.Unlock()
}

// Stats returns a copy of the runtime counters.
func (s *Site) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// Resize lays the page out for a new viewport and moves every trigger and binding.
func (s *Site) Resize(width, height float64) error {
	layout, err := director.NewDirector(width, height).Layout(s.Spec)
	if err != nil {
		return fmt.Errorf("layout: %w", err)
	}

	s.mu.Lock()
	s.layout = layout
	mounted := s.mounted
	cards := s.cards
	y := s.scrollY
	s.mu.Unlock()
	if !mounted {
		return nil
	}

	// Карточки идут в том же порядке, что и в раскладке
	s.sched.SetViewport(height)
	i := 0
	for _, box := range layout.Sections {
		for _, cb := range box.Cards {
			cards[i].Relayout(cb.Bounds, height)
			i++
		}
	}
	s.relayoutPage(layout)
	s.applyScroll(y)
	return nil
}

// Layout returns the current page layout.
func (s *Site) Layout() *director.Layout {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.layout
}

// Cards returns the mounted cards in page order.
func (s *Site) Cards() []*card.Card {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*card.Card(nil), s.cards...)
}

// Focused returns the card under the pointer, else the last one hovered,
// else the card crossing the viewport centre. -1 when none.
func (s *Site) Focused() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.hover >= 0 {
		return s.hover
	}
	if s.focus >= 0 {
		return s.focus
	}
	mid := s.scrollY + s.layout.Viewport/2
	for i, c := range s.cards {
		b := c.Bounds()
		if mid >= b.Top() && mid < b.Bottom()+32 {
			return i
		}
	}
	return -1
}

// SetFocus moves the keyboard focus to card i.
func (s *Site) SetFocus(i int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i >= 0 && i < len(s.cards) {
		s.focus = i
		s.hover = -1
	}
}

// FocusNext moves the focus by delta cards, wrapping around.
func (s *Site) FocusNext(delta int) {
	n := len(s.Cards())
	if n == 0 {
		return
	}
	cur := s.Focused()
	if cur < 0 {
		cur = 0
		delta = 0
	}
	s.SetFocus(((cur+delta)%n + n) % n)
}

// Navigate runs fn on the focused card.
func (s *Site) Navigate(fn func(c *card.Card)) {
	i := s.Focused()
	cards := s.Cards()
	if i >= 0 && i < len(cards) {
		fn(cards[i])
	}
}

// Preload renders every carousel frame's thumbnail with the given number of workers.
func (s *Site) Preload(ctx context.Context, workers int) error {
	if s.Library == nil {
		return nil
	}
	var frames []string
	for _, c := range s.Cards() {
		frames = append(frames, c.Frames()...)
	}
	// Миниатюры рендерятся заранее, иначе первый показ кадра PDF тормозит отрисовку
	start := time.Now()
	if err := s.Library.Preload(ctx, frames, workers); err != nil {
		return err
	}
	s.logger.Printf("[*] preloaded %d frames in %.2fs", len(frames), time.Since(start).Seconds())
	return nil
}

// Modal returns the contact modal.
func (s *Site) Modal() *Modal { return s.modal }

func (s *Site) notify(n contact.Notice) {
	s.mu.Lock()
	s.notice = &n
	s.noticeAt = s.clock.Now()
	s.mu.Unlock()
	if n.Status == contact.Sent {
		s.modal.resetForm()
	}
}

// Notice returns the visible toast, if any.
func (s *Site) Notice() *contact.Notice {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.notice
}
