package engine

import (
	"github.com/ivlev/folio/internal/card"
	"github.com/ivlev/folio/internal/config"
	"github.com/ivlev/folio/internal/director"
	"github.com/ivlev/folio/internal/geom"
	"github.com/ivlev/folio/internal/parallax"
	"github.com/ivlev/folio/internal/timeline"
	"github.com/ivlev/folio/internal/trigger"
)

// headerStart is "top center+=100".
var headerStart = trigger.Anchor{Element: 0, Viewport: 0.5, Offset: 100}

type sectionRuntime struct {
	spec config.Section
	box  director.SectionBox

	Background *card.Element
	Content    *card.Element
	Header     []*card.Element // title, subtitle

	reveal  *timeline.Timeline
	handle  *trigger.Handle
	bg      *parallax.Binding
	content *parallax.Binding
}

func newSectionRuntime(spec config.Section, box director.SectionBox) *sectionRuntime {
	r := &sectionRuntime{
		spec:       spec,
		box:        box,
		Background: card.NewElement(),
		Content:    card.NewElement(),
		Header:     []*card.Element{card.NewElement()},
	}
	if spec.Subtitle != "" {
		r.Header = append(r.Header, card.NewElement())
	}
	return r
}

type footerRuntime struct {
	spec config.Footer
	box  director.FooterBox

	Line   *card.Element
	Social []*card.Element
	Text   []*card.Element // tagline, then links

	timelines []*timeline.Timeline
	handle    *trigger.Handle
}

func newFooterRuntime(spec config.Footer, box director.FooterBox) *footerRuntime {
	r := &footerRuntime{spec: spec, box: box, Line: card.NewElement()}
	for range spec.Social {
		r.Social = append(r.Social, card.NewElement())
	}
	for i := 0; i < 1+len(spec.Links); i++ {
		r.Text = append(r.Text, card.NewElement())
	}
	return r
}

func targets(elems []*card.Element) []timeline.Target {
	out := make([]timeline.Target, len(elems))
	for i, e := range elems {
		out[i] = e
	}
	return out
}

// once registers fn to run the first time the scroll reaches start. Jumping
// past the whole range still fires it.
func (s *Site) once(bounds geom.Rect, start, end trigger.Anchor, fn func()) *trigger.Handle {
	var h *trigger.Handle
	h = s.sched.Register(trigger.Registration{
		Bounds: bounds,
		Start:  start,
		End:    end,
		Scrub:  true,
		OnProgress: func(p float64) {
			if p <= 0 || !h.Active() {
				return
			}
			s.sched.Unregister(h)
			fn()
		},
	})
	return h
}

// bindPage creates the section header reveals, the section parallax and the
// footer reveal.
func (s *Site) bindPage(vh float64) {
	s.mu.Lock()
	sections := s.sections
	footer := s.footer
	s.mu.Unlock()
	reduced := s.Config.ReducedMotion

	var handles []*trigger.Handle
	for _, sec := range sections {
		sec.reveal = s.anim.Create(timeline.Stagger(targets(sec.Header),
			timeline.PropertySet{"y": 100},
			timeline.PropertySet{"y": 0},
			1, timeline.EaseInOutQuint, 0, 0.2)...)

		if reduced {
			sec.reveal.Seek(1)
			continue
		}
		sec.reveal.Seek(0)
		tl := sec.reveal
		sec.handle = s.once(sec.box.Header, headerStart, trigger.BottomTop, func() {
			tl.Play(timeline.Forward)
		})
		handles = append(handles, sec.handle)
		s.bindSectionParallax(sec, vh)
	}

	footer.timelines = []*timeline.Timeline{
		s.anim.Create(timeline.Step{
			Target:   footer.Line,
			From:     timeline.PropertySet{"scaleX": 0},
			To:       timeline.PropertySet{"scaleX": 1},
			Duration: 2,
			Easing:   timeline.EaseOutExpo,
		}),
		s.anim.Create(timeline.Stagger(targets(footer.Social),
			timeline.PropertySet{"y": 100, "opacity": 0},
			timeline.PropertySet{"y": 0, "opacity": 1},
			1, timeline.BackOut(1.7), 0, 0.2)...),
		s.anim.Create(timeline.Stagger(targets(footer.Text),
			timeline.PropertySet{"y": 30, "opacity": 0},
			timeline.PropertySet{"y": 0, "opacity": 1},
			1, timeline.EaseOutQuint, 0, 0.15)...),
	}
	for _, tl := range footer.timelines {
		if reduced {
			tl.Seek(1)
		} else {
			tl.Seek(0)
		}
	}
	if !reduced {
		tls := footer.timelines
		footer.handle = s.once(footer.box.Bounds, trigger.TopBottom, trigger.BottomTop, func() {
			for _, tl := range tls {
				tl.Play(timeline.Forward)
			}
		})
		handles = append(handles, footer.handle)
	}

	s.mu.Lock()
	s.handles = append(s.handles, handles...)
	s.mu.Unlock()
}

// Background drifts from "top top", content from "top bottom"; both end at "bottom top".
func (s *Site) bindSectionParallax(sec *sectionRuntime, vh float64) {
	b := sec.box.Bounds
	if pct := sec.spec.BackgroundParallax; pct != 0 {
		bg := sec.Background
		sec.bg = s.parallax.Bind(&parallax.Binding{
			StartScrollY: trigger.TopTop.ScrollY(b, vh),
			EndScrollY:   trigger.BottomTop.ScrollY(b, vh),
			MaxOffset:    pct / 100 * b.H,
			Sink:         func(v float64) { bg.Set("y", v) },
		})
	}
	if pct := sec.spec.ContentParallax; pct != 0 {
		content := sec.Content
		sec.content = s.parallax.Bind(&parallax.Binding{
			StartScrollY: trigger.TopBottom.ScrollY(b, vh),
			EndScrollY:   trigger.BottomTop.ScrollY(b, vh),
			MaxOffset:    pct / 100 * b.H,
			Sink:         func(v float64) { content.Set("y", v) },
		})
	}
}

func (s *Site) relayoutPage(layout *director.Layout) {
	s.mu.Lock()
	sections := s.sections
	footer := s.footer
	s.mu.Unlock()

	for i, sec := range sections {
		sec.box = layout.Sections[i]
		s.sched.UpdateBounds(sec.handle, sec.box.Header)
		if sec.bg != nil {
			s.parallax.Unbind(sec.bg)
			sec.bg = nil
		}
		if sec.content != nil {
			s.parallax.Unbind(sec.content)
			sec.content = nil
		}
		if !s.Config.ReducedMotion {
			s.bindSectionParallax(sec, layout.Viewport)
		}
	}
	footer.box = layout.Footer
	s.sched.UpdateBounds(footer.handle, footer.box.Bounds)
}
