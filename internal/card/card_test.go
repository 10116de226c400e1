package card

import (
	"bytes"
	"log"
	"math"
	"testing"
	"time"

	"github.com/ivlev/folio/internal/carousel"
	"github.com/ivlev/folio/internal/config"
	"github.com/ivlev/folio/internal/geom"
	"github.com/ivlev/folio/internal/trigger"
)

const viewport = 800.0

var (
	epoch  = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bounds = geom.Rect{X: 0, Y: 2000, W: 1200, H: 400}
)

func newTestCard(t *testing.T, layout string, once bool, images ...string) (*Card, *trigger.Scheduler, *carousel.FakeClock) {
	t.Helper()
	clock := carousel.NewFakeClock(epoch)
	spec := config.Card{Title: "Web Dev", Description: "Modern web apps", Images: images}
	c, err := New(Options{
		Spec:   spec,
		Layout: layout,
		Params: config.CardParams{
			RotationPeriod:  5 * time.Second,
			MaxTilt:         5,
			ParallaxPercent: -20,
			Once:            once,
			ImageLeft:       true,
		},
		Bounds: bounds,
		Clock:  clock,
		Logger: log.New(&bytes.Buffer{}, "", 0),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	s := trigger.NewScheduler(viewport)
	if err := c.Mount(s, viewport); err != nil {
		t.Fatalf("Mount: %v", err)
	}
	return c, s, clock
}

// run advances the card's timelines for d in 50ms frames.
func run(c *Card, from time.Time, d time.Duration) time.Time {
	now := from
	c.Update(now)
	for end := from.Add(d); now.Before(end); {
		now = now.Add(50 * time.Millisecond)
		c.Update(now)
	}
	return now
}

func TestRevealPlaysAndReverses(t *testing.T) {
	c, s, _ := newTestCard(t, "services", false, "a.png")
	defer c.Unmount()

	if got := c.Box.Value("y", -1); got != 100 {
		t.Fatalf("box y before reveal = %v, expected 100", got)
	}

	// Reveal zone is [1500, 2000].
	s.Tick(0)
	s.Tick(1700)
	now := run(c, epoch, 3*time.Second)

	if got := c.Box.Value("y", -1); math.Abs(got) > 1e-6 {
		t.Errorf("box y after reveal = %v, expected 0", got)
	}
	v := c.View()
	for _, u := range v.Title {
		if !u.Space && math.Abs(u.Value("opacity", 0)-1) > 1e-6 {
			t.Errorf("title char %q opacity %v", u.Text, u.Value("opacity", 0))
		}
	}
	if v.Revealed != 1 {
		t.Errorf("revealed = %v, expected 1", v.Revealed)
	}

	s.Tick(2500)
	run(c, now, 3*time.Second)
	if got := c.Box.Value("y", -1); got != 100 {
		t.Errorf("box y after leaving = %v, expected 100 (reversed)", got)
	}
}

func TestRevealOnce(t *testing.T) {
	c, s, _ := newTestCard(t, "projects", true, "a.png")
	defer c.Unmount()

	before := s.Len()
	s.Tick(1700)
	if s.Len() != before-1 {
		t.Errorf("once reveal should unregister itself: %d -> %d", before, s.Len())
	}
	now := run(c, epoch, 2*time.Second)
	s.Tick(3000)
	run(c, now, 2*time.Second)

	if got := c.Box.Value("y", -1); math.Abs(got) > 1e-6 {
		t.Errorf("once reveal must not reverse, box y = %v", got)
	}
}

func TestEntranceScrubFollowsScroll(t *testing.T) {
	c, s, _ := newTestCard(t, "services", false, "a.png")
	defer c.Unmount()

	s.Tick(1000)
	if c.Wrapper.Value("opacity", -1) != 0 {
		t.Fatalf("entrance should start hidden, opacity %v", c.Wrapper.Value("opacity", -1))
	}

	// Entrance window is [1200, 1600]; 1400 is halfway.
	s.Tick(1400)
	now := run(c, epoch, 100*time.Millisecond)
	mid := c.Wrapper.Value("opacity", -1)
	if mid <= 0 || mid >= 0.5 {
		t.Errorf("lagging entrance at 100ms = %v, expected between 0 and 0.5", mid)
	}
	run(c, now, 10*time.Second)
	if got := c.Wrapper.Value("opacity", -1); math.Abs(got-0.5) > 1e-3 {
		t.Errorf("settled entrance = %v, expected 0.5", got)
	}
}

func TestParallaxOffset(t *testing.T) {
	c, _, _ := newTestCard(t, "services", false, "a.png")
	defer c.Unmount()

	// Range "top bottom" (1200) -> "bottom top" (2400), drift -20% of 400px.
	c.OnScroll(1800)
	if got := c.Wrapper.Value("parallaxY", 0); math.Abs(got+40) > 1e-9 {
		t.Errorf("parallax at midpoint = %v, expected -40", got)
	}
	c.OnScroll(9000)
	if got := c.Wrapper.Value("parallaxY", 0); math.Abs(got+80) > 1e-9 {
		t.Errorf("parallax past the range = %v, expected -80", got)
	}

	c.Relayout(bounds.Translate(0, 1000), viewport)
	c.OnScroll(2800)
	if got := c.Wrapper.Value("parallaxY", 0); math.Abs(got+40) > 1e-9 {
		t.Errorf("parallax after relayout = %v, expected -40", got)
	}
}

func TestCarouselChangeFades(t *testing.T) {
	c, _, clock := newTestCard(t, "services", false, "a.png", "b.png")
	defer c.Unmount()

	clock.Advance(5 * time.Second)
	v := c.View()
	if v.Image != "b.png" || v.ImageIndex != 1 || v.ImageCount != 2 {
		t.Fatalf("after one period view = %s %d/%d", v.Image, v.ImageIndex, v.ImageCount)
	}
	if v.ImageOpacity != 0 {
		t.Errorf("fade should start transparent, got %v", v.ImageOpacity)
	}
	run(c, epoch, 400*time.Millisecond)
	if got := c.Image.Value("opacity", -1); math.Abs(got-1) > 1e-9 {
		t.Errorf("image opacity after fade = %v", got)
	}

	c.Previous()
	if c.View().Image != "a.png" {
		t.Error("Previous should wrap back to a.png")
	}
}

func TestUnmountReleasesEverything(t *testing.T) {
	c, s, clock := newTestCard(t, "services", false, "a.png", "b.png", "c.png")

	if clock.Pending() != 1 {
		t.Fatalf("expected the rotation timer to be armed")
	}

	c.Unmount()
	c.Unmount()

	if s.Len() != 0 {
		t.Errorf("%d trigger registrations left", s.Len())
	}
	if clock.Pending() != 0 {
		t.Errorf("%d timers left", clock.Pending())
	}
	if c.Mounted() {
		t.Error("card still mounted")
	}

	// Nothing may move after unmount.
	clock.Advance(time.Minute)
	s.Tick(1700)
	run(c, epoch, time.Second)
	if c.View().ImageIndex != 0 {
		t.Error("carousel advanced after unmount")
	}
	if err := c.Box.Set("y", 1); err == nil {
		t.Error("elements should be detached after unmount")
	}

	// Remounting is refused.
	if err := c.Mount(s, viewport); err != nil || c.Mounted() {
		t.Errorf("Mount after Unmount = %v, mounted %v", err, c.Mounted())
	}
}

func TestTiltOnlyForProjects(t *testing.T) {
	svc, _, _ := newTestCard(t, "services", false, "a.png")
	defer svc.Unmount()
	if svc.PointerMove(geom.Point{X: 600, Y: 2200}) {
		t.Error("service cards do not tilt")
	}

	proj, _, _ := newTestCard(t, "projects", true, "a.png")
	defer proj.Unmount()

	// The unrevealed box sits 100px low; aim at the visual bounds.
	vb := proj.VisualBounds()
	p := geom.Point{X: vb.X, Y: vb.Y}
	if !proj.PointerMove(p) {
		t.Fatal("pointer at the corner should be inside")
	}
	if tr := proj.View().Transform; tr.TiltX != -2.5 || tr.TiltY != 2.5 {
		t.Errorf("corner tilt = %+v", tr)
	}
	proj.PointerMove(geom.Point{X: -100, Y: -100})
	if !proj.View().Transform.IsNeutral() {
		t.Error("leaving the card should reset the tilt")
	}
}

func TestNoImages(t *testing.T) {
	if _, err := New(Options{Spec: config.Card{Title: "empty"}}); err == nil {
		t.Error("a card without images must fail")
	}
}
