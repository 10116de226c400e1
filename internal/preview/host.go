// Package preview runs a site in the terminal: tcell input drives the page
// runtime and every tick paints a frame.
package preview

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"golang.org/x/sync/errgroup"

	"github.com/ivlev/folio/internal/card"
	"github.com/ivlev/folio/internal/engine"
	"github.com/ivlev/folio/internal/renderer"
)

// WheelStep is the scroll distance of one wheel notch in document pixels.
const WheelStep = 64.0

var errQuit = errors.New("quit")

// Options configure a Host.
type Options struct {
	FrameInterval time.Duration
	Workers       int // media preload workers; 0 skips preloading
	Logger        *log.Logger
	Now           func() time.Time
}

// Host connects a terminal screen to a site.
type Host struct {
	Screen  tcell.Screen
	Site    *engine.Site
	Painter *renderer.Painter

	interval time.Duration
	workers  int
	logger   *log.Logger
	now      func() time.Time

	mu      sync.Mutex
	buttons tcell.ButtonMask
	frames  int
}

// NewHost creates a host. The screen must already be initialised.
func NewHost(screen tcell.Screen, site *engine.Site, painter *renderer.Painter, opts Options) *Host {
	h := &Host{
		Screen:   screen,
		Site:     site,
		Painter:  painter,
		interval: opts.FrameInterval,
		workers:  opts.Workers,
		logger:   opts.Logger,
		now:      opts.Now,
	}
	if h.interval <= 0 {
		h.interval = time.Second / 30
	}
	if h.logger == nil {
		h.logger = log.Default()
	}
	if h.now == nil {
		h.now = time.Now
	}
	return h
}

// Frames returns the number of frames painted so far.
func (h *Host) Frames() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.frames
}

// Run mounts the site and serves input and frames until q is pressed or ctx
// ends. The site is unmounted on return.
func (h *Host) Run(ctx context.Context) error {
	h.Screen.EnableMouse()
	h.Screen.EnableFocus()
	h.Screen.HideCursor()

	w, hh := h.Painter.Viewport()
	if err := h.Site.Resize(w, hh); err != nil {
		return fmt.Errorf("resize: %w", err)
	}
	if !h.Site.Mounted() {
		if err := h.Site.OnMount(); err != nil {
			return fmt.Errorf("mount: %w", err)
		}
	}
	defer h.Site.OnUnmount()

	g, ctx := errgroup.WithContext(ctx)
	events := make(chan tcell.Event, 64)

	// input pump
	g.Go(func() error {
		for {
			ev := h.Screen.PollEvent()
			if ev == nil {
				return nil
			}
			if _, ok := ev.(*tcell.EventInterrupt); ok && ctx.Err() != nil {
				return nil
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				return nil
			}
		}
	})

	// wakes the pump once the loop is done
	g.Go(func() error {
		<-ctx.Done()
		h.Screen.PostEvent(tcell.NewEventInterrupt(nil))
		return nil
	})

	if h.workers > 0 {
		g.Go(func() error {
			if err := h.Site.Preload(ctx, h.workers); err != nil && ctx.Err() == nil {
				h.logger.Printf("[!] preload: %v", err)
			}
			return nil
		})
	}

	// frame loop
	g.Go(func() error {
		ticker := time.NewTicker(h.interval)
		defer ticker.Stop()
		h.paint()
		for {
			select {
			case <-ctx.Done():
				return nil
			case ev := <-events:
				if err := h.handle(ctx, g, ev); err != nil {
					return err
				}
			case <-ticker.C:
				h.paint()
			}
		}
	})

	err := g.Wait()
	if errors.Is(err, errQuit) {
		h.logger.Printf("[*] preview closed after %d frames", h.Frames())
		return nil
	}
	return err
}

func (h *Host) paint() {
	h.Site.Frame(h.now())
	h.Painter.Paint(h.Site.View())
	h.mu.Lock()
	h.frames++
	h.mu.Unlock()
}

func (h *Host) handle(ctx context.Context, g *errgroup.Group, ev tcell.Event) error {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		h.Screen.Sync()
		w, hh := h.Painter.Viewport()
		if err := h.Site.Resize(w, hh); err != nil {
			h.logger.Printf("[!] resize to %.0fx%.0f: %v", w, hh, err)
		}
	case *tcell.EventFocus:
		if !ev.Focused {
			h.Site.OnPointerLeave()
		}
	case *tcell.EventMouse:
		h.mouse(ev)
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyCtrlC {
			return errQuit
		}
		if m := h.Site.Modal(); m.IsOpen() {
			h.modalKey(ctx, g, m, ev)
			return nil
		}
		return h.key(ev)
	}
	return nil
}

func (h *Host) mouse(ev *tcell.EventMouse) {
	btn := ev.Buttons()
	h.mu.Lock()
	pressed := btn&tcell.Button1 != 0 && h.buttons&tcell.Button1 == 0
	h.buttons = btn
	h.mu.Unlock()

	switch {
	case btn&tcell.WheelUp != 0:
		h.Site.ScrollBy(-WheelStep)
		return
	case btn&tcell.WheelDown != 0:
		h.Site.ScrollBy(WheelStep)
		return
	}
	if h.Site.Modal().IsOpen() {
		return
	}
	x, y := ev.Position()
	h.Site.OnPointerMove(h.Painter.Point(x, y))
	if pressed {
		h.Site.Navigate(func(c *card.Card) { c.Next() })
	}
}

func (h *Host) key(ev *tcell.EventKey) error {
	_, rows := h.Screen.Size()
	page := float64(rows) * h.Painter.CellH * 0.9

	switch ev.Key() {
	case tcell.KeyUp:
		h.Site.ScrollBy(-WheelStep)
	case tcell.KeyDown:
		h.Site.ScrollBy(WheelStep)
	case tcell.KeyPgUp:
		h.Site.ScrollBy(-page)
	case tcell.KeyPgDn:
		h.Site.ScrollBy(page)
	case tcell.KeyHome:
		h.scrollTo("top")
	case tcell.KeyEnd:
		h.scrollTo("footer")
	case tcell.KeyLeft:
		h.Site.Navigate(func(c *card.Card) { c.Previous() })
	case tcell.KeyRight:
		h.Site.Navigate(func(c *card.Card) { c.Next() })
	case tcell.KeyTab:
		h.Site.FocusNext(1)
	case tcell.KeyBacktab:
		h.Site.FocusNext(-1)
	case tcell.KeyRune:
		return h.rune(ev.Rune(), page)
	}
	return nil
}

func (h *Host) rune(r rune, page float64) error {
	switch {
	case r == 'q':
		return errQuit
	case r == 'j':
		h.Site.ScrollBy(WheelStep)
	case r == 'k':
		h.Site.ScrollBy(-WheelStep)
	case r == ' ':
		h.Site.ScrollBy(page)
	case r == 'g':
		h.scrollTo("top")
	case r == 'G':
		h.scrollTo("footer")
	case r == 'h':
		h.Site.Navigate(func(c *card.Card) { c.Previous() })
	case r == 'l':
		h.Site.Navigate(func(c *card.Card) { c.Next() })
	case r >= '1' && r <= '9':
		k := int(r - '1')
		h.Site.Navigate(func(c *card.Card) { c.JumpTo(k) })
	case r == 'c':
		h.Site.Modal().Open()
	case r == 's':
		h.Painter.ShowStats = !h.Painter.ShowStats
	}
	return nil
}

func (h *Host) scrollTo(target string) {
	if err := h.Site.ScrollTo(target); err != nil {
		h.logger.Printf("[!] scroll to %s: %v", target, err)
	}
}

func (h *Host) modalKey(ctx context.Context, g *errgroup.Group, m *engine.Modal, ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyEsc:
		m.Close()
	case tcell.KeyTab, tcell.KeyDown:
		m.NextField(1)
	case tcell.KeyBacktab, tcell.KeyUp:
		m.NextField(-1)
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		m.Backspace()
	case tcell.KeyEnter:
		if m.Busy() {
			return
		}
		g.Go(func() error {
			if err := m.Submit(ctx); err != nil {
				h.logger.Printf("[!] contact: %v", err)
			}
			return nil
		})
	case tcell.KeyRune:
		m.Type(string(ev.Rune()))
	}
}
