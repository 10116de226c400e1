package engine

import (
	"fmt"
	"math"

	"github.com/ivlev/folio/internal/timeline"
)

// ScrollDuration is the length of a smooth scroll in seconds.
const ScrollDuration = 1.0

// scrollTarget lets a timeline drive the page scroll position.
type scrollTarget struct{ s *Site }

func (t scrollTarget) Set(property string, value float64) error {
	if property != "y" {
		return fmt.Errorf("scroll has no property %q", property)
	}
	if !t.s.Mounted() {
		return timeline.ErrStaleTarget
	}
	t.s.applyScroll(value)
	return nil
}

// Anchor returns the document position of a named target: "top", a section
// id, "contact" or "footer".
func (s *Site) Anchor(target string) (float64, error) {
	s.mu.Lock()
	l := s.layout
	s.mu.Unlock()

	switch target {
	case "", "top", "hero":
		return 0, nil
	case "contact":
		return l.Contact.Y, nil
	case "footer":
		return l.Footer.Bounds.Y, nil
	}
	if sec, ok := l.Section(target); ok {
		return sec.Bounds.Y, nil
	}
	return 0, fmt.Errorf("unknown scroll target %q", target)
}

// ScrollTo smoothly scrolls to target. A user scroll cancels it.
func (s *Site) ScrollTo(target string) error {
	y, err := s.Anchor(target)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if !s.mounted {
		s.mu.Unlock()
		return nil
	}
	y = math.Min(y, s.layout.MaxScroll())
	from := s.scrollY
	prev := s.scroll
	s.scroll = nil
	s.mu.Unlock()

	if prev != nil {
		prev.Destroy()
	}
	if s.Config.ReducedMotion || from == y {
		s.applyScroll(y)
		return nil
	}

	tl := s.anim.Create(timeline.Step{
		Target:   scrollTarget{s},
		From:     timeline.PropertySet{"y": from},
		To:       timeline.PropertySet{"y": y},
		Duration: ScrollDuration,
		Easing:   timeline.EaseInOutCubic,
	})
	s.mu.Lock()
	s.scroll = tl
	s.mu.Unlock()
	tl.Play(timeline.Forward)
	return nil
}

// Scrolling reports whether a smooth scroll is running.
func (s *Site) Scrolling() bool {
	s.mu.Lock()
	tl := s.scroll
	s.mu.Unlock()
	return tl != nil && tl.IsPlaying()
}
